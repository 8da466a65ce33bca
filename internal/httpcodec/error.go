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

import "github.com/nabbar/staticd/internal/errors"

const (
	ErrorMalformedRequest errors.CodeError = iota + errors.MinPkgHTTPCodec
	ErrorUnknownVersion
	ErrorUnsupportedMethod
	ErrorHeadersTooLarge
)

func init() {
	errors.RegisterIdFctMessage(ErrorMalformedRequest, getMessage)
	errors.RegisterIdFctMessage(ErrorUnknownVersion, getMessage)
	errors.RegisterIdFctMessage(ErrorUnsupportedMethod, getMessage)
	errors.RegisterIdFctMessage(ErrorHeadersTooLarge, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case ErrorMalformedRequest:
		return "malformed request line or header"
	case ErrorUnknownVersion:
		return "unknown HTTP version"
	case ErrorUnsupportedMethod:
		return "unsupported HTTP method"
	case ErrorHeadersTooLarge:
		return "request headers exceed the allowed size"
	}

	return ""
}

// StatusFor maps a parse error to the status code the handler must send.
func StatusFor(code errors.CodeError) int {
	switch code {
	case ErrorUnknownVersion:
		return 505
	case ErrorUnsupportedMethod:
		return 501
	default:
		return 400
	}
}
