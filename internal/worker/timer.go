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
	"time"

	"golang.org/x/sys/unix"
)

// newIdleTimer creates a timerfd armed to fire once after d, giving each
// connection the dedicated timer handle the state machine requires
// alongside its socket.
func newIdleTimer(d time.Duration) (int, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return -1, err
	}
	if err := armTimer(fd, d); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

// armTimer (re)arms a timerfd to fire once after d from now, replacing
// any previous pending expiry.
func armTimer(fd int, d time.Duration) error {
	spec := &unix.ItimerSpec{
		Value: unix.NsecToTimespec(d.Nanoseconds()),
	}
	return unix.TimerfdSettime(fd, 0, spec, nil)
}

// drainTimer reads and discards a timerfd's expiration count so the
// descriptor stops reporting ready; epoll is level-triggered for timers
// even though sockets are registered edge-triggered.
func drainTimer(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}
