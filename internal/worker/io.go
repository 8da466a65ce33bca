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

	"golang.org/x/sys/unix"

	"github.com/nabbar/staticd/internal/handler"
	"github.com/nabbar/staticd/internal/httpcodec"
)

// onReadable drains fd edge-triggered: reads until the socket would
// block, then parses and dispatches every complete request the buffer
// now holds.
func (w *Worker) onReadable(c *connection) {
	for c.bufLen < len(c.buf) {
		n, err := unix.Read(c.fd, c.buf[c.bufLen:])
		if err != nil {
			if isWouldBlock(err) {
				break
			}
			if !isPeerClosed(err) && w.log != nil {
				w.log.Debug("read failed", err)
			}
			w.closeConnection(c)
			return
		}
		if n == 0 {
			w.closeConnection(c)
			return
		}

		c.recordRead(n)
		c.bufLen += n

		if c.isSlowLoris(time.Now()) {
			w.closeConnection(c)
			return
		}
	}

	w.processBuffer(c)
}

// processBuffer parses and dispatches every complete request currently
// in the connection's buffer, in order, sliding consumed bytes to the
// front as it goes. It stops as soon as a response cannot be fully
// flushed immediately, preserving response ordering for pipelined
// requests.
func (w *Worker) processBuffer(c *connection) {
	for {
		if c.state == stateClosed || c.hasPending() {
			return
		}

		req, n, perr := httpcodec.ParseRequest(c.buf[:c.bufLen])
		if perr != nil {
			w.respondAndMaybeClose(c, httpcodec.StatusFor(perr.GetCode()), false)
			w.closeConnection(c)
			return
		}
		if req == nil {
			if c.bufLen >= len(c.buf) {
				w.respondAndMaybeClose(c, 400, false)
				w.closeConnection(c)
			}
			return
		}

		start := time.Now()
		res := w.hdlr.Handle(req)
		w.dispatchResult(c, req, res, time.Since(start))

		if c.state == stateClosed {
			return
		}

		c.bufLen = copy(c.buf, c.buf[n:c.bufLen])
	}
}

// dispatchResult sends one handled response, records access-log and
// metrics observations, and queues it for deferred write if the socket
// cannot take it all immediately.
func (w *Worker) dispatchResult(c *connection, req *httpcodec.Request, res *handler.Result, latency time.Duration) {
	w.reqSinceLog++

	if w.metrics != nil {
		w.metrics.RequestsTotal.Inc()
		w.metrics.ObserveStatus(res.Status)
	}
	if w.log != nil {
		w.log.Access(c.remoteIP, "", time.Now(), latency, req.Method, req.URI, req.Proto(), res.Status, res.Size).Log()
	}

	w.sendResult(c, res, req.KeepAlive)
}

// respondAndMaybeClose frames and attempts to send a minimal error
// response for requests the codec itself rejected, before the
// connection is torn down.
func (w *Worker) respondAndMaybeClose(c *connection, status int, keepAlive bool) {
	resp := httpcodec.NewResponse(status)
	resp.KeepAlive = keepAlive
	framed := httpcodec.Frame(resp)
	_, _ = writeAll(c.fd, framed)

	if w.metrics != nil {
		w.metrics.ObserveStatus(status)
	}
}

// sendResult writes a handled response to the socket, switching the
// connection to write-pending monitoring if the kernel's send buffer
// cannot take it all in one shot.
func (w *Worker) sendResult(c *connection, res *handler.Result, keepAlive bool) {
	var out []byte
	if res.File == nil {
		out = make([]byte, 0, len(res.Header)+len(res.Body))
		out = append(out, res.Header...)
		out = append(out, res.Body...)
	} else {
		out = res.Header
	}

	n, err := writeAll(c.fd, out)
	if err == errWouldBlock {
		c.setPending(out[n:], res.File, res.Size)
		c.keepAlive = keepAlive
		w.switchToWrite(c)
		return
	}
	if err != nil {
		if res.File != nil {
			_ = res.File.Close()
		}
		if !isPeerClosed(err) && w.log != nil {
			w.log.Debug("write failed", err)
		}
		w.closeConnection(c)
		return
	}

	if res.File != nil {
		w.sendFileOrQueue(c, res.File, 0, res.Size, keepAlive)
		return
	}

	w.finishResponse(c, keepAlive)
}

// sendFileOrQueue streams a response body directly from an open file
// handle via sendfile, queuing the remainder for write-readiness if the
// socket cannot take it all at once.
func (w *Worker) sendFileOrQueue(c *connection, f *os.File, off, size int64, keepAlive bool) {
	sent, err := sendFileAll(c.fd, f, off, size)
	if err == errWouldBlock {
		c.setPending(nil, f, size-sent)
		c.fileOff = off + sent
		c.keepAlive = keepAlive
		w.switchToWrite(c)
		return
	}
	_ = f.Close()
	if err != nil {
		if !isPeerClosed(err) && w.log != nil {
			w.log.Debug("sendfile failed", err)
		}
		w.closeConnection(c)
		return
	}

	w.finishResponse(c, keepAlive)
}

// onWritable resumes a connection's pending response from wherever it
// left off: the remaining in-memory tail first, then any attached file
// via sendfile.
func (w *Worker) onWritable(c *connection) {
	if c.pendingOff < len(c.pending) {
		n, err := writeAll(c.fd, c.pending[c.pendingOff:])
		c.pendingOff += n
		if err == errWouldBlock {
			return
		}
		if err != nil {
			if c.pendingFile != nil {
				_ = c.pendingFile.Close()
			}
			if !isPeerClosed(err) && w.log != nil {
				w.log.Debug("write failed", err)
			}
			w.closeConnection(c)
			return
		}
	}

	if c.pendingFile != nil {
		remaining := c.fileSize
		sent, err := sendFileAll(c.fd, c.pendingFile, c.fileOff, remaining)
		c.fileOff += sent
		c.fileSize -= sent
		if err == errWouldBlock {
			return
		}
		_ = c.pendingFile.Close()
		if err != nil {
			if !isPeerClosed(err) && w.log != nil {
				w.log.Debug("sendfile failed", err)
			}
			w.closeConnection(c)
			return
		}
	}

	keepAlive := c.keepAlive
	c.clearPending()
	w.finishResponse(c, keepAlive)
}

// finishResponse completes one response cycle: closes the connection
// for a non-keep-alive request, or resumes read monitoring, resets the
// idle timer, and tries any already-buffered pipelined request.
func (w *Worker) finishResponse(c *connection, keepAlive bool) {
	if !keepAlive {
		w.closeConnection(c)
		return
	}

	_ = armTimer(c.timerFd, w.cfg.KeepAliveTimeout)

	if c.state == stateWritingPending {
		w.switchToRead(c)
	}

	if c.bufLen > 0 {
		w.processBuffer(c)
	}
}

func (w *Worker) switchToWrite(c *connection) {
	c.state = stateWritingPending
	_ = w.ep.modify(c.fd, writeEvents)
}

func (w *Worker) switchToRead(c *connection) {
	c.state = stateReading
	_ = w.ep.modify(c.fd, readEvents)
}

// closeConnection tears down a connection: removes both its descriptors
// from epoll, closes them, returns its buffer to the pool, and releases
// its rate-limit slot.
func (w *Worker) closeConnection(c *connection) {
	if c.state == stateClosed {
		return
	}
	c.state = stateClosed

	w.ep.remove(c.fd)
	w.ep.remove(c.timerFd)

	_ = unix.Close(c.fd)
	_ = unix.Close(c.timerFd)

	if c.pendingFile != nil {
		_ = c.pendingFile.Close()
	}

	w.pool.Release(c.buf)
	w.limiter.ReleaseConnection(c.remoteIP)

	delete(w.bySocket, c.fd)
	delete(w.byTimer, c.timerFd)
}
