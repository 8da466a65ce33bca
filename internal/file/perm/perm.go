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

// Package perm provides a file-permission type that parses and formats
// octal permission strings ("0644", "0755") for use in configuration
// structs, so a mode can be written as a quoted string in JSON or YAML
// instead of a bare integer that decodes as decimal.
package perm

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Perm wraps os.FileMode with string-based parsing and encoding.
type Perm os.FileMode

// Parse reads an octal permission string such as "0644". Surrounding
// quotes and whitespace are tolerated, since config decoders commonly
// hand over the raw quoted token.
func Parse(s string) (Perm, error) {
	return parseString(s)
}

// ParseByte parses a byte-slice form of the same octal string.
func ParseByte(p []byte) (Perm, error) {
	return parseString(string(p))
}

// ParseFileMode converts an os.FileMode obtained from a stat call into
// a Perm.
func ParseFileMode(p os.FileMode) Perm {
	return Perm(p)
}

func parseString(s string) (Perm, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")

	v, e := strconv.ParseUint(s, 8, 32)
	if e != nil {
		return Perm(0), fmt.Errorf("perm: invalid permission %q", s)
	}

	return Perm(v), nil
}

// FileMode returns the permission as an os.FileMode, for use with
// os.OpenFile and friends.
func (p Perm) FileMode() os.FileMode {
	return os.FileMode(p.Uint32())
}

// String renders the permission as a zero-prefixed octal literal.
func (p Perm) String() string {
	return fmt.Sprintf("%#o", p.Uint64())
}

func (p Perm) Uint64() uint64 {
	return uint64(p)
}

func (p Perm) Uint32() uint32 {
	if uint64(p) > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(p)
}
