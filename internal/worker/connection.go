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

package worker

import (
	"os"
	"time"
)

// state is a connection's position in the reading/dispatching/writing
// state machine.
type state int

const (
	stateReading state = iota
	stateDispatching
	stateWritingPending
	stateClosed
)

const (
	connBufferSize    = 8*1024 - 1
	slowLorisWindow   = 5 * time.Second
	slowLorisGrace    = 10 * time.Second
	slowLorisMinBytes = 4
	slowLorisMaxTiny  = 100
)

// connection is one accepted client socket and its in-flight state.
type connection struct {
	fd      int
	timerFd int
	state   state

	remoteIP string

	buf           []byte
	bufLen        int
	bytesReceived int64

	pending     []byte
	pendingOff  int
	pendingFile *os.File
	fileOff     int64
	fileSize    int64

	keepAlive bool

	created      time.Time
	lastActivity time.Time

	tinyReads int
}

func newConnection(fd, timerFd int, remoteIP string, buf []byte) *connection {
	now := time.Now()
	return &connection{
		fd:           fd,
		timerFd:      timerFd,
		state:        stateReading,
		remoteIP:     remoteIP,
		buf:          buf,
		keepAlive:    true,
		created:      now,
		lastActivity: now,
	}
}

// setPending attaches a not-yet-fully-written response to the
// connection, switching its bookkeeping so the write path resumes from
// the start of header, then body, then file.
func (c *connection) setPending(framed []byte, file *os.File, fileSize int64) {
	c.pending = framed
	c.pendingOff = 0
	c.pendingFile = file
	c.fileOff = 0
	c.fileSize = fileSize
}

// clearPending drops the connection's in-flight response state once it
// has been fully drained to the socket.
func (c *connection) clearPending() {
	c.pending = nil
	c.pendingOff = 0
	c.pendingFile = nil
	c.fileOff = 0
	c.fileSize = 0
}

// recordRead updates slow-loris bookkeeping for a read of n bytes.
func (c *connection) recordRead(n int) {
	c.lastActivity = time.Now()
	c.bytesReceived += int64(n)
	if n == 1 {
		c.tinyReads++
	}
}

// isSlowLoris reports whether this connection should be dropped under
// the slow-loris heuristic: too few bytes after the grace period, or
// too many single-byte reads early on.
func (c *connection) isSlowLoris(now time.Time) bool {
	age := now.Sub(c.created)
	if age >= slowLorisGrace && c.bytesReceived < slowLorisMinBytes {
		return true
	}
	if age <= slowLorisWindow && c.tinyReads > slowLorisMaxTiny {
		return true
	}
	return false
}

// idleTimedOut reports whether the connection has been idle longer than
// timeout since its last activity.
func (c *connection) idleTimedOut(now time.Time, timeout time.Duration) bool {
	return now.Sub(c.lastActivity) > timeout
}

// hasPending reports whether a response is still being drained to the
// socket (in-memory tail or a file still being sent).
func (c *connection) hasPending() bool {
	return c.pendingOff < len(c.pending) || c.pendingFile != nil
}
