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

// Package compressor produces in-memory gzip or deflate bodies for the
// request handler, using klauspost/compress for both codecs. Level
// selection is driven by MIME type, not by request negotiation: the
// negotiated encoding only decides gzip vs. deflate vs. identity.
package compressor

import (
	"bytes"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	liberr "github.com/nabbar/staticd/internal/errors"
)

// Encoding is a negotiated content-coding token.
type Encoding string

const (
	Identity Encoding = "none"
	Gzip     Encoding = "gzip"
	Deflate  Encoding = "deflate"

	MaxSourceBytes = 10 * 1024 * 1024

	memLevel = 8
)

// Negotiate scans an Accept-Encoding header value and returns the
// preferred supported encoding: gzip over deflate, else identity. No
// q-value parsing is performed.
func Negotiate(acceptEncoding string) Encoding {
	lower := strings.ToLower(acceptEncoding)
	if strings.Contains(lower, "gzip") {
		return Gzip
	}
	if strings.Contains(lower, "deflate") {
		return Deflate
	}
	return Identity
}

var compressibleMIME = map[string]bool{
	"application/javascript": true,
	"application/json":       true,
	"application/xml":        true,
	"application/xhtml+xml":  true,
	"image/svg+xml":          true,
}

// Compressible reports whether mime is eligible for compression: any
// text/* type, the compressible application/* subtypes, image/svg+xml,
// or any font/* type.
func Compressible(mime string) bool {
	base := mime
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		base = mime[:i]
	}
	base = strings.TrimSpace(base)

	if strings.HasPrefix(base, "text/") || strings.HasPrefix(base, "font/") || strings.HasPrefix(base, "application/font") {
		return true
	}
	return compressibleMIME[base]
}

// LevelFor selects the compression level for mime per the configured
// policy: minimum for images and generic binary, maximum for
// application/font* types and SVG, default otherwise (font/* included).
func LevelFor(mime string) int {
	base := mime
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		base = mime[:i]
	}
	base = strings.TrimSpace(base)

	switch {
	case strings.HasPrefix(base, "image/") && base != "image/svg+xml":
		return gzip.BestSpeed
	case base == "application/octet-stream":
		return gzip.BestSpeed
	case strings.HasPrefix(base, "application/font") || base == "image/svg+xml":
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

// Compress encodes body with enc at the given level. The first attempt
// sizes the output buffer at len(body)+128; if the stream is not fully
// flushed by the writer's Close, it retries once with a buffer of
// 2*len(body). A second failure is a hard error and the caller should
// fall back to identity encoding.
func Compress(body []byte, enc Encoding, level int) ([]byte, liberr.Error) {
	if len(body) > MaxSourceBytes {
		return nil, ErrorTooLarge.Error(nil)
	}

	out, err := compressOnce(body, enc, level, len(body)+128)
	if err == nil {
		return out, nil
	}

	out, err = compressOnce(body, enc, level, 2*len(body))
	if err == nil {
		return out, nil
	}

	return nil, ErrorCompressFailed.Error(liberr.New(0, err.Error()))
}

func compressOnce(body []byte, enc Encoding, level, hint int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, hint))

	switch enc {
	case Gzip:
		w, werr := gzip.NewWriterLevel(buf, level)
		if werr != nil {
			return nil, werr
		}
		if _, werr = w.Write(body); werr != nil {
			return nil, werr
		}
		if werr = w.Close(); werr != nil {
			return nil, werr
		}
	case Deflate:
		w, werr := zlib.NewWriterLevel(buf, level)
		if werr != nil {
			return nil, werr
		}
		if _, werr = w.Write(body); werr != nil {
			return nil, werr
		}
		if werr = w.Close(); werr != nil {
			return nil, werr
		}
	default:
		return body, nil
	}

	return buf.Bytes(), nil
}
