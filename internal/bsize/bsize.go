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

// Package bsize provides a byte-size type that parses and formats
// human-readable sizes ("8KiB", "100MiB", "1.5GB") for use in
// configuration structs, mirroring the duration package's approach
// to human-readable time spans.
package bsize

import (
	"fmt"
	"strconv"
	"strings"
)

// Size holds a count of bytes.
type Size int64

const (
	Byte Size = 1

	KiB = Byte * 1024
	MiB = KiB * 1024
	GiB = MiB * 1024
	TiB = GiB * 1024

	KB = Byte * 1000
	MB = KB * 1000
	GB = MB * 1000
	TB = GB * 1000
)

var units = []struct {
	suffix string
	scale  Size
}{
	{"TiB", TiB},
	{"GiB", GiB},
	{"MiB", MiB},
	{"KiB", KiB},
	{"TB", TB},
	{"GB", GB},
	{"MB", MB},
	{"KB", KB},
	{"B", Byte},
}

// Parse reads a human size string such as "8KiB", "100MiB", "1.5GB" or a
// bare integer (interpreted as bytes). It is case-insensitive on the unit.
func Parse(s string) (Size, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("bsize: empty value")
	}

	upper := strings.ToUpper(raw)
	for _, u := range units {
		suf := strings.ToUpper(u.suffix)
		if strings.HasSuffix(upper, suf) {
			numPart := strings.TrimSpace(raw[:len(raw)-len(u.suffix)])
			if numPart == "" {
				continue
			}
			f, err := strconv.ParseFloat(numPart, 64)
			if err != nil {
				return 0, fmt.Errorf("bsize: invalid numeric part %q: %w", numPart, err)
			}
			return Size(f * float64(u.scale)), nil
		}
	}

	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bsize: cannot parse %q", s)
	}
	return Size(i), nil
}

// String renders the size using the largest binary unit that divides it
// evenly, falling back to a plain byte count.
func (s Size) String() string {
	v := int64(s)
	switch {
	case v != 0 && v%int64(TiB) == 0:
		return fmt.Sprintf("%dTiB", v/int64(TiB))
	case v != 0 && v%int64(GiB) == 0:
		return fmt.Sprintf("%dGiB", v/int64(GiB))
	case v != 0 && v%int64(MiB) == 0:
		return fmt.Sprintf("%dMiB", v/int64(MiB))
	case v != 0 && v%int64(KiB) == 0:
		return fmt.Sprintf("%dKiB", v/int64(KiB))
	default:
		return fmt.Sprintf("%dB", v)
	}
}

func (s Size) Bytes() int64 {
	return int64(s)
}

func (s *Size) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func (s Size) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
