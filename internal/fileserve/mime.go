/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package fileserve

import "strings"

const DefaultMIME = "application/octet-stream"

var extMIME = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".js":    "application/javascript",
	".mjs":   "application/javascript",
	".json":  "application/json",
	".xml":   "application/xml",
	".xhtml": "application/xhtml+xml",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".txt":   "text/plain",
	".pdf":   "application/pdf",
	".doc":   "application/msword",
	".docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",
	".wasm":  "application/wasm",
	".map":   "application/json",
}

// MIMEByExtension derives a MIME type from the file's extension, falling
// back to DefaultMIME for anything not in the fixed table.
func MIMEByExtension(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return DefaultMIME
	}
	ext := strings.ToLower(path[i:])
	if mt, ok := extMIME[ext]; ok {
		return mt
	}
	return DefaultMIME
}

// CacheControlByExtension selects the Cache-Control header value per
// the policy keyed on file extension.
func CacheControlByExtension(path string) string {
	i := strings.LastIndexByte(path, '.')
	ext := ""
	if i >= 0 {
		ext = strings.ToLower(path[i:])
	}

	switch ext {
	case ".css", ".js", ".mjs":
		return "public, max-age=86400"
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico", ".svg":
		return "public, max-age=604800, immutable"
	case ".html", ".htm":
		return "public, max-age=300, must-revalidate"
	case ".pdf", ".doc", ".docx":
		return "public, max-age=86400"
	default:
		return "public, max-age=3600"
	}
}
