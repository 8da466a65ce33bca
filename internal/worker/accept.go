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
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// acceptBatch drains the listening socket's backlog, up to the worker's
// configured batch size per iteration, admitting each connection
// through the rate limiter before it is ever registered for I/O.
func (w *Worker) acceptBatch() {
	for i := 0; i < w.cfg.AcceptBatch; i++ {
		fd, sa, err := unix.Accept4(w.listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			if isWouldBlock(err) {
				return
			}
			if isFDExhaustion(err) {
				w.relieveFDPressure()
				return
			}
			if w.log != nil {
				w.log.Error("accept failed", err)
			}
			time.Sleep(fdExhaustionBackoff)
			return
		}

		ip := remoteIP(sa)

		if !w.limiter.CheckAndAdmit(ip) {
			_ = unix.Close(fd)
			continue
		}

		buf, perr := w.pool.Acquire()
		if perr != nil {
			w.limiter.ReleaseConnection(ip)
			_ = unix.Close(fd)
			if w.log != nil {
				w.log.Warning("buffer pool exhausted, rejecting connection", nil)
			}
			continue
		}

		w.registerConnection(fd, ip, buf)
	}
}

// registerConnection builds a connection record for fd around its
// pool-lent buffer, arms its idle timer, and adds both descriptors to
// the worker's epoll set: the socket with edge-triggered read readiness,
// the timer level-triggered.
func (w *Worker) registerConnection(fd int, ip string, buf []byte) {
	setClientSocketOptions(fd)

	// The first expiry fires at the slow-loris grace period rather than
	// the keep-alive timeout, so a client trickling its first request is
	// cut off long before a normal idle connection would be.
	timerFd, terr := newIdleTimer(slowLorisGrace)
	if terr != nil {
		w.pool.Release(buf)
		w.limiter.ReleaseConnection(ip)
		_ = unix.Close(fd)
		if w.log != nil {
			w.log.Warning("unable to create connection timer", terr)
		}
		return
	}

	c := newConnection(fd, timerFd, ip, buf)

	if err := w.ep.add(fd, readEvents); err != nil {
		w.pool.Release(buf)
		_ = unix.Close(fd)
		_ = unix.Close(timerFd)
		w.limiter.ReleaseConnection(ip)
		return
	}
	if err := w.ep.add(timerFd, unix.EPOLLIN); err != nil {
		w.ep.remove(fd)
		w.pool.Release(buf)
		_ = unix.Close(fd)
		_ = unix.Close(timerFd)
		w.limiter.ReleaseConnection(ip)
		return
	}

	w.bySocket[fd] = c
	w.byTimer[timerFd] = c
}

// relieveFDPressure closes up to maxEmergencyClosed connections that
// have been idle for more than emergencyIdleAfter, freeing descriptors
// so a subsequent accept can succeed under EMFILE/ENFILE.
func (w *Worker) relieveFDPressure() {
	now := time.Now()
	closed := 0
	for _, c := range w.bySocket {
		if closed >= maxEmergencyClosed {
			break
		}
		if now.Sub(c.lastActivity) > emergencyIdleAfter {
			w.closeConnection(c)
			closed++
		}
	}
	if w.log != nil {
		w.log.Warning("file descriptor pressure: emergency-closed idle connections", closed)
	}
}

// remoteIP extracts the dotted-quad client address from an accepted
// socket's peer address.
func remoteIP(sa unix.Sockaddr) string {
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		ip := net.IPv4(in4.Addr[0], in4.Addr[1], in4.Addr[2], in4.Addr[3])
		return ip.String()
	}
	return ""
}
