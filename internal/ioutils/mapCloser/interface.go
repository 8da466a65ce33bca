/*
MIT License

Copyright (c) 2025 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package mapCloser provides a thread-safe, context-aware manager for
// multiple io.Closer instances. It automatically closes all registered
// closers when a context is cancelled or when manually triggered, making
// resource cleanup safe and predictable in concurrent applications. The
// logger package uses one of these per hook so every stdout/file/syslog
// destination gets torn down when the process context ends.
package mapCloser

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	libctx "github.com/nabbar/staticd/internal/context"
)

// Closer is a thread-safe manager for multiple io.Closer instances.
type Closer interface {
	// Add registers one or more io.Closer instances for management.
	Add(clo ...io.Closer)

	// Get returns a copy of all registered io.Closer instances, excluding nil values.
	Get() []io.Closer

	// Len returns the total count of closers that have been added.
	Len() int

	// Clean removes all registered closers without closing them.
	Clean()

	// Clone creates an independent copy of this Closer with the same state.
	Clone() Closer

	// Close cancels the context and closes all registered io.Closer instances.
	Close() error
}

// New creates a new Closer that monitors the provided context. A background
// goroutine polls the context every 100ms and triggers automatic cleanup
// once it is done. All methods of the returned Closer are thread-safe.
func New(ctx context.Context) Closer {
	var x, n = context.WithCancel(ctx)

	c := &closer{
		f: n,
		i: new(atomic.Uint64),
		c: new(atomic.Bool),
		x: libctx.New[uint64](x),
	}

	c.c.Store(false)
	c.i.Store(0)

	go func() {
		for !c.c.Load() {
			select {
			case <-c.x.Done():
				_ = c.Close()
				return
			default:
				time.Sleep(time.Millisecond * 100)
			}
		}
	}()

	return c
}
