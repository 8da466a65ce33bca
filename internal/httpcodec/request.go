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

// Package httpcodec parses HTTP/1.x requests off a per-connection buffer
// and frames responses for a kernel-assisted write. It never reads or
// writes a request body: this server only ever sees GET and HEAD.
package httpcodec

import (
	"strings"

	liberr "github.com/nabbar/staticd/internal/errors"
)

const (
	MaxHeaderCount  = 64
	MaxHeaderBytes  = 8 * 1024
	MaxStartLineLen = 8 * 1024
	MaxURILen       = 2047
)

// Header is one request or response header, preserving insertion order.
type Header struct {
	Name  string
	Value string
}

// Request is a parsed HTTP/1.x request line plus headers. Bodies are
// never consumed: only GET and HEAD are supported.
type Request struct {
	Method    string
	URI       string
	Major     int
	Minor     int
	Headers   []Header
	KeepAlive bool
}

// Proto returns the request's protocol version as it appeared on the
// start line.
func (r *Request) Proto() string {
	if r.Major == 1 && r.Minor == 0 {
		return "HTTP/1.0"
	}
	return "HTTP/1.1"
}

// Header looks up the first header matching name, case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for _, h := range r.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// ParseRequest reads a start line and headers from buf, a byte slice
// containing at least one complete request (terminated by CRLF CRLF).
// It returns the number of bytes consumed so the caller can slide the
// connection's read buffer forward.
func ParseRequest(buf []byte) (*Request, int, liberr.Error) {
	if len(buf) > MaxHeaderBytes && !containsHeaderEnd(buf) {
		return nil, 0, ErrorHeadersTooLarge.Error(nil)
	}

	end := indexHeaderEnd(buf)
	if end < 0 {
		return nil, 0, nil
	}

	head := buf[:end]
	consumed := end + 4

	lineEnd := indexCRLF(head)
	if lineEnd < 0 {
		return nil, 0, ErrorMalformedRequest.Error(nil)
	}
	if lineEnd > MaxStartLineLen {
		return nil, 0, ErrorMalformedRequest.Error(nil)
	}

	req, err := parseStartLine(string(head[:lineEnd]))
	if err != nil {
		return nil, 0, err
	}

	rest := head[lineEnd+2:]
	count := 0
	for len(rest) > 0 {
		i := indexCRLF(rest)
		if i < 0 {
			return nil, 0, ErrorMalformedRequest.Error(nil)
		}
		line := rest[:i]
		rest = rest[i+2:]

		if len(line) > 0 {
			count++
			if count > MaxHeaderCount {
				return nil, 0, ErrorHeadersTooLarge.Error(nil)
			}
			h, herr := parseHeaderLine(string(line))
			if herr != nil {
				return nil, 0, herr
			}
			req.Headers = append(req.Headers, *h)
		}
	}

	req.KeepAlive = deriveKeepAlive(req)

	return req, consumed, nil
}

func parseStartLine(line string) (*Request, liberr.Error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, ErrorMalformedRequest.Error(nil)
	}

	method, uri, version := parts[0], parts[1], parts[2]
	if method == "" || uri == "" || version == "" {
		return nil, ErrorMalformedRequest.Error(nil)
	}
	if uri[0] != '/' {
		return nil, ErrorMalformedRequest.Error(nil)
	}
	if len(uri) > MaxURILen {
		return nil, ErrorMalformedRequest.Error(nil)
	}

	major, minor, ok := parseVersion(version)
	if !ok {
		return nil, ErrorUnknownVersion.Error(nil)
	}

	switch method {
	case "GET", "HEAD":
	default:
		return nil, ErrorUnsupportedMethod.Error(nil)
	}

	return &Request{
		Method: method,
		URI:    uri,
		Major:  major,
		Minor:  minor,
	}, nil
}

func parseVersion(v string) (major, minor int, ok bool) {
	if !strings.HasPrefix(v, "HTTP/") {
		return 0, 0, false
	}
	v = v[len("HTTP/"):]
	switch v {
	case "1.0":
		return 1, 0, true
	case "1.1":
		return 1, 1, true
	default:
		return 0, 0, false
	}
}

func parseHeaderLine(line string) (*Header, liberr.Error) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return nil, ErrorMalformedRequest.Error(nil)
	}
	name := line[:i]
	value := strings.TrimLeft(line[i+1:], " ")
	if name == "" {
		return nil, ErrorMalformedRequest.Error(nil)
	}
	return &Header{Name: name, Value: value}, nil
}

func deriveKeepAlive(r *Request) bool {
	conn, has := r.Header("Connection")

	if r.Major == 1 && r.Minor == 1 {
		if has && strings.EqualFold(strings.TrimSpace(conn), "close") {
			return false
		}
		return true
	}

	if has && strings.EqualFold(strings.TrimSpace(conn), "keep-alive") {
		return true
	}
	return false
}

func indexCRLF(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' {
			return i
		}
	}
	return -1
}

func indexHeaderEnd(b []byte) int {
	for i := 0; i+3 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' && b[i+2] == '\r' && b[i+3] == '\n' {
			return i
		}
	}
	return -1
}

func containsHeaderEnd(b []byte) bool {
	return indexHeaderEnd(b) >= 0
}
