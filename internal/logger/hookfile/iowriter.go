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

// Package hookfile provides file-based logging hooks for logrus.
// This file implements the io.Writer/io.Closer side of the hook: a plain
// append-mode file handle guarded by a mutex, no background goroutine.
package hookfile

import (
	"context"
)

// Write writes the given byte slice to the underlying log file.
// Implements the io.Writer interface.
func (o *hkf) Write(p []byte) (n int, err error) {
	o.m.Lock()
	defer o.m.Unlock()

	return o.w.Write(p)
}

// Close closes the underlying file handle and marks the hook as stopped.
func (o *hkf) Close() error {
	o.m.Lock()
	defer o.m.Unlock()

	o.r.Store(false)
	return o.w.Close()
}

// IsRunning reports whether the hook's file handle is still open.
func (o *hkf) IsRunning() bool {
	return o.r.Load()
}

// Run blocks until ctx is cancelled, then closes the file handle. There is
// no buffering goroutine: every Fire() writes synchronously, so Run only
// needs to release the handle on shutdown.
func (o *hkf) Run(ctx context.Context) {
	<-ctx.Done()
	_ = o.Close()
}
