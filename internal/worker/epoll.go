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
	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/staticd/internal/errors"
)

// epoller wraps one epoll instance. Socket registrations (readEvents,
// writeEvents) are edge-triggered per the worker's readiness model: the
// event loop must drain a ready socket until it would-block before
// waiting again. Connection timers are registered level-triggered.
type epoller struct {
	fd int
}

func newEpoller() (*epoller, liberr.Error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, ErrorEpollCreate.Error(liberr.New(0, err.Error()))
	}
	return &epoller{fd: fd}, nil
}

func (e *epoller) close() {
	_ = unix.Close(e.fd)
}

func (e *epoller) add(fd int, events uint32) liberr.Error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return ErrorEpollCtl.Error(liberr.New(0, err.Error()))
	}
	return nil
}

func (e *epoller) modify(fd int, events uint32) liberr.Error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(e.fd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return ErrorEpollCtl.Error(liberr.New(0, err.Error()))
	}
	return nil
}

func (e *epoller) remove(fd int) {
	_ = unix.EpollCtl(e.fd, unix.EPOLL_CTL_DEL, fd, nil)
}

// wait blocks for up to timeoutMs for ready descriptors, retrying
// transparently on EINTR (a signal delivered while blocked).
func (e *epoller) wait(events []unix.EpollEvent, timeoutMs int) (int, error) {
	for {
		n, err := unix.EpollWait(e.fd, events, timeoutMs)
		if err == unix.EINTR {
			continue
		}
		return n, err
	}
}

const (
	readEvents  = unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLET
	writeEvents = unix.EPOLLOUT | unix.EPOLLRDHUP | unix.EPOLLET
)
