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
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/staticd/internal/errors"
)

// listen builds a non-blocking IPv4 listening socket bound to addr
// ("host:port" or ":port") with SO_REUSEADDR and SO_REUSEPORT set, so
// every worker process in the fleet can bind the same port and let the
// kernel distribute incoming connections across them.
func listen(addr string, backlog int) (int, liberr.Error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return -1, ErrorListenSetup.Error(liberr.New(0, err.Error()))
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return -1, ErrorListenSetup.Error(liberr.New(0, err.Error()))
	}

	fd, serr := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if serr != nil {
		return -1, ErrorListenSetup.Error(liberr.New(0, serr.Error()))
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return -1, ErrorListenSetup.Error(liberr.New(0, err.Error()))
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		_ = unix.Close(fd)
		return -1, ErrorListenSetup.Error(liberr.New(0, err.Error()))
	}

	var addr4 [4]byte
	if host != "" && host != "0.0.0.0" && !strings.EqualFold(host, "localhost") {
		if ip := net.ParseIP(host); ip != nil {
			copy(addr4[:], ip.To4())
		}
	}

	sa := &unix.SockaddrInet4{Port: port, Addr: addr4}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, ErrorListenSetup.Error(liberr.New(0, err.Error()))
	}
	if backlog <= 0 {
		backlog = 1024
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return -1, ErrorListenSetup.Error(liberr.New(0, err.Error()))
	}

	return fd, nil
}

// setClientSocketOptions enables TCP keep-alive and disables Nagle's
// algorithm on a freshly accepted client socket, matching the "configure
// TCP options" step of the accept path.
func setClientSocketOptions(fd int) {
	_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
}
