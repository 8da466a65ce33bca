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

package httpcodec

import (
	"bytes"
	"strconv"
)

const ServerHeader = "staticd"

var statusText = map[int]string{
	200: "OK",
	304: "Not Modified",
	400: "Bad Request",
	403: "Forbidden",
	404: "Not Found",
	501: "Not Implemented",
	505: "HTTP Version Not Supported",
}

// StatusText returns the reason phrase for code, or "Unknown" if unset.
func StatusText(code int) string {
	if t, ok := statusText[code]; ok {
		return t
	}
	return "Unknown"
}

// Response is an outgoing HTTP/1.1 response under construction by the
// handler. Body is the in-memory payload, if any; a response destined
// for kernel-assisted transfer leaves it nil and the caller streams the
// file separately after the framed header is written.
type Response struct {
	Status    int
	Headers   []Header
	Body      []byte
	KeepAlive bool
}

// NewResponse builds a response with the Server header pre-populated.
func NewResponse(status int) *Response {
	return &Response{
		Status:  status,
		Headers: []Header{{Name: "Server", Value: ServerHeader}},
	}
}

// Set appends a header, replacing any existing header with the same
// name (case-insensitive).
func (r *Response) Set(name, value string) {
	for i := range r.Headers {
		if equalFold(r.Headers[i].Name, name) {
			r.Headers[i].Value = value
			return
		}
	}
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

// Get returns the value of the first header matching name.
func (r *Response) Get(name string) (string, bool) {
	for _, h := range r.Headers {
		if equalFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// FrameHeader writes the status line, headers, and the single
// Connection header (keep-alive or close) followed by the blank line
// that ends the header block. It never writes Body: callers write the
// body (or stream the file) separately.
func FrameHeader(r *Response) []byte {
	var buf bytes.Buffer

	buf.WriteString("HTTP/1.1 ")
	buf.WriteString(strconv.Itoa(r.Status))
	buf.WriteByte(' ')
	buf.WriteString(StatusText(r.Status))
	buf.WriteString("\r\n")

	for _, h := range r.Headers {
		if equalFold(h.Name, "Connection") {
			continue
		}
		buf.WriteString(h.Name)
		buf.WriteString(": ")
		buf.WriteString(h.Value)
		buf.WriteString("\r\n")
	}

	if r.KeepAlive {
		buf.WriteString("Connection: keep-alive\r\n")
	} else {
		buf.WriteString("Connection: close\r\n")
	}

	buf.WriteString("\r\n")

	return buf.Bytes()
}

// Frame writes the header block followed by Body, for the in-memory
// (non-sendfile) response path.
func Frame(r *Response) []byte {
	head := FrameHeader(r)
	out := make([]byte, 0, len(head)+len(r.Body))
	out = append(out, head...)
	out = append(out, r.Body...)
	return out
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
