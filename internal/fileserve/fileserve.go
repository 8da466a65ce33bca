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

// Package fileserve opens a resolved filesystem path non-blocking,
// derives the headers a response needs from it, and decides whether the
// body should be read fully into memory (to allow compression) or left
// as an open file handle for a kernel-assisted transfer.
package fileserve

import (
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	liberr "github.com/nabbar/staticd/internal/errors"
)

// File describes an opened, stat'd static file ready to be served. Body
// is non-nil only when the handler requested an in-memory read (for
// compression); otherwise Handle is the open file, positioned at 0, left
// for the caller to stream and close.
type File struct {
	Path    string
	MIME    string
	Size    int64
	ModTime time.Time
	ETag    string
	Body    []byte
	Handle  *os.File
}

// Open opens path non-blocking, rejects non-regular files, and — when
// readBody is true — reads the full contents into memory and closes the
// handle. When readBody is false the returned Handle stays open and the
// caller is responsible for closing it once the body is sent.
func Open(path string, readBody bool) (*File, liberr.Error) {
	f, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrorNotFound.Error(liberr.New(0, err.Error()))
		}
		return nil, ErrorOpenFailed.Error(liberr.New(0, err.Error()))
	}

	info, serr := f.Stat()
	if serr != nil {
		_ = f.Close()
		return nil, ErrorOpenFailed.Error(liberr.New(0, serr.Error()))
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, ErrorNotRegular.Error(nil)
	}

	sf := &File{
		Path:    path,
		MIME:    MIMEByExtension(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		ETag:    computeETag(info),
	}

	if !readBody {
		sf.Handle = f
		return sf, nil
	}

	body := make([]byte, info.Size())
	if _, rerr := io.ReadFull(f, body); rerr != nil {
		_ = f.Close()
		return nil, ErrorOpenFailed.Error(liberr.New(0, rerr.Error()))
	}
	_ = f.Close()

	sf.Body = body
	return sf, nil
}

// computeETag builds "<hex inode>-<hex size>-<hex mtime>" per the
// format used by conditional-GET matching.
func computeETag(info os.FileInfo) string {
	var inode uint64
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		inode = st.Ino
	}
	return fmt.Sprintf("\"%x-%x-%x\"", inode, info.Size(), info.ModTime().Unix())
}

// httpTimeLayout is RFC 1123 with the zone fixed to the literal "GMT"
// HTTP dates require; time.RFC1123 would render a UTC time's zone as
// "UTC", which is not a valid HTTP-date.
const httpTimeLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// LastModifiedHeader formats t as an RFC 1123 GMT HTTP-date, per the
// Last-Modified header contract.
func LastModifiedHeader(t time.Time) string {
	return t.UTC().Format(httpTimeLayout)
}
