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

package master

import (
	"runtime"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/staticd/internal/errors"
	"github.com/nabbar/staticd/internal/logger"
)

// raisedFileLimit is the ceiling requested for RLIMIT_NOFILE: each
// connection holds a socket and a timer fd, so the fleet's practical
// connection capacity is roughly half of this value times worker count.
const raisedFileLimit = 1 << 20

// raiseFileLimit raises the process's open file descriptor limit to
// raisedFileLimit (or the kernel hard ceiling, whichever is lower)
// before any worker is forked, so every child inherits the new limit.
func raiseFileLimit() liberr.Error {
	var rl unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return ErrorRlimitSet.Error(liberr.New(0, err.Error()))
	}

	want := uint64(raisedFileLimit)
	if rl.Max < want {
		want = rl.Max
	}
	if rl.Cur >= want {
		return nil
	}

	rl.Cur = want
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rl); err != nil {
		return ErrorRlimitSet.Error(liberr.New(0, err.Error()))
	}

	return nil
}

// pinToCPU pins pid's scheduling affinity to a single CPU chosen
// round-robin by worker id, spreading the fleet across cores. Platforms
// without CPU affinity support (or a core count of one) are left
// unpinned; this is a scheduling hint, never a hard requirement.
func pinToCPU(pid, workerID int, log logger.Logger) {
	n := runtime.NumCPU()
	if n <= 1 {
		return
	}

	cpu := workerID % n

	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)

	if err := unix.SchedSetaffinity(pid, &set); err != nil {
		if log != nil {
			log.Warning("failed to pin worker to CPU", map[string]interface{}{
				"worker_id": workerID,
				"pid":       pid,
				"cpu":       cpu,
				"error":     err.Error(),
			})
		}
	}
}
