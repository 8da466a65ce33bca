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
	"os/exec"
	"sync"
	"time"

	"github.com/nabbar/staticd/internal/logger"
)

// worker tracks one supervised child process across restarts. exited
// is closed by the goroutine that owns cmd.Wait() once the process has
// exited, so other goroutines can observe completion without calling
// Wait a second time.
type worker struct {
	id         int
	cmd        *exec.Cmd
	instanceID string
	startedAt  time.Time
	restarts   int
	exited     chan struct{}
}

// exitReport is sent on exitCh by the goroutine watching a worker's
// cmd.Wait() once the process has exited.
type exitReport struct {
	id  int
	err error
}

// mst is the default Master implementation.
type mst struct {
	cfg Config
	log logger.Logger

	m       sync.Mutex
	workers map[int]*worker

	exitCh chan exitReport
	done   bool
}

func (o *mst) logInfo(msg string, data map[string]interface{}) {
	if o.log != nil {
		o.log.Info(msg, data)
	}
}

func (o *mst) logError(msg string, err error) {
	if o.log != nil {
		o.log.Error(msg, err)
	}
}
