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

// Package bufpool implements a fixed-size slab of reusable read buffers for
// a single worker's connections. Lending is O(1) and never allocates once
// the slab is warm; a worker that cannot acquire a buffer must reject the
// new connection rather than grow the pool.
package bufpool

import (
	liberr "github.com/nabbar/staticd/internal/errors"
)

const DefaultBufferSize = 8 * 1024

// Pool hands out fixed-size byte buffers. It is safe for concurrent use,
// though a worker's event loop is expected to be the sole caller.
type Pool struct {
	size int
	free chan []byte
}

// New allocates a pool of n buffers, each bufSize bytes, up front.
func New(n, bufSize int) *Pool {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	if n <= 0 {
		n = 1
	}

	p := &Pool{
		size: bufSize,
		free: make(chan []byte, n),
	}

	for i := 0; i < n; i++ {
		p.free <- make([]byte, bufSize)
	}

	return p
}

// BufferSize returns the fixed size of every buffer in the pool.
func (p *Pool) BufferSize() int {
	return p.size
}

// Cap returns the pool's total slot count.
func (p *Pool) Cap() int {
	return cap(p.free)
}

// Len returns the number of buffers currently available.
func (p *Pool) Len() int {
	return len(p.free)
}

// Acquire lends one buffer. It returns ErrorPoolExhausted when the slab is
// fully checked out; callers must reject the connection in that case
// rather than block.
func (p *Pool) Acquire() ([]byte, liberr.Error) {
	select {
	case b := <-p.free:
		return b[:p.size], nil
	default:
		return nil, ErrorPoolExhausted.Error(nil)
	}
}

// Release returns a buffer to the pool. A buffer whose capacity differs from
// the pool's buffer size is dropped, and so is any buffer released while the
// free list is already full; where a buffer came from is not checked.
func (p *Pool) Release(buf []byte) {
	if cap(buf) != p.size {
		return
	}

	select {
	case p.free <- buf[:p.size]:
	default:
		// pool is full (double-release); drop it.
	}
}
