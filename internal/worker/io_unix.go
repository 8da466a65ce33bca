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

	"golang.org/x/sys/unix"
)

// isWouldBlock reports whether err is the non-blocking "try again"
// signal from a read/write/accept syscall.
func isWouldBlock(err error) bool {
	errno, ok := err.(unix.Errno)
	return ok && (errno == unix.EAGAIN || errno == unix.EWOULDBLOCK)
}

// isPeerClosed reports whether err is an ordinary, silent peer
// disconnect rather than a condition worth logging above debug level.
func isPeerClosed(err error) bool {
	errno, ok := err.(unix.Errno)
	return ok && (errno == unix.EPIPE || errno == unix.ECONNRESET)
}

// isFDExhaustion reports whether err indicates the process or system is
// out of file descriptors.
func isFDExhaustion(err error) bool {
	errno, ok := err.(unix.Errno)
	return ok && (errno == unix.EMFILE || errno == unix.ENFILE)
}

// writeAll writes as much of buf to fd as the socket will currently
// accept. It returns the number of bytes written and, when the socket
// would block before the whole buffer is drained, errWouldBlock.
func writeAll(fd int, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := unix.Write(fd, buf[total:])
		if n > 0 {
			total += n
		}
		if err != nil {
			if isWouldBlock(err) {
				return total, errWouldBlock
			}
			return total, err
		}
		if n == 0 {
			return total, errWouldBlock
		}
	}
	return total, nil
}

// sendFileAll transfers up to remaining bytes of f, starting at off,
// directly to fd via the kernel's sendfile path, without copying
// through user space. It returns the number of bytes actually sent.
func sendFileAll(fd int, f *os.File, off, remaining int64) (int64, error) {
	var sent int64
	srcFd := int(f.Fd())

	for remaining > 0 {
		fileOff := off + sent
		n, err := unix.Sendfile(fd, srcFd, &fileOff, int(remaining))
		if n > 0 {
			sent += int64(n)
			remaining -= int64(n)
		}
		if err != nil {
			if isWouldBlock(err) {
				return sent, errWouldBlock
			}
			return sent, err
		}
		if n == 0 {
			return sent, errWouldBlock
		}
	}
	return sent, nil
}
