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

package handler

import (
	"strings"
	"time"
)

// asctimeLayout is the format used by ctime(3) and accepted by HTTP/1.1
// servers for legacy If-Modified-Since values, e.g. "Sun Nov  6 08:49:37 1994".
const asctimeLayout = "Mon Jan _2 15:04:05 2006"

var dateLayouts = []string{
	time.RFC1123,
	time.RFC850,
	asctimeLayout,
}

// MatchETag reports whether any token in the comma-separated If-None-Match
// header value matches etag. Both sides are stripped of a leading weak
// marker ("W/") and surrounding quotes before comparison; a bare "*"
// token always matches.
func MatchETag(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}

	target := unwrapETag(etag)

	for _, tok := range strings.Split(ifNoneMatch, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "*" {
			return true
		}
		if unwrapETag(tok) == target {
			return true
		}
	}

	return false
}

func unwrapETag(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "W/")
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

// ParseIfModifiedSince parses value against RFC 1123, RFC 850, and
// asctime layouts, in that order, and normalizes the result to UTC. It
// returns false if value matches none of the accepted formats.
func ParseIfModifiedSince(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NotModifiedSince reports whether fileModTime is not after since,
// truncated to whole seconds per HTTP's one-second date resolution.
func NotModifiedSince(fileModTime, since time.Time) bool {
	return !fileModTime.UTC().Truncate(time.Second).After(since)
}
