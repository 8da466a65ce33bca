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
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"github.com/hashicorp/go-uuid"

	liberr "github.com/nabbar/staticd/internal/errors"
)

// spawn starts worker id as a fresh child process of the running
// binary, in worker mode, and launches the goroutine that waits for
// its exit.
func (o *mst) spawn(id int) (*worker, liberr.Error) {
	instanceID, e := uuid.GenerateUUID()
	if e != nil {
		return nil, ErrorInstanceID.Error(liberr.New(0, e.Error()))
	}

	args := append([]string{}, o.cfg.ExtraArgs...)
	if o.cfg.ConfigPath != "" {
		args = append(args, o.cfg.ConfigPath)
	}

	cmd := exec.Command(o.cfg.BinaryPath, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		EnvMode+"="+EnvModeWorker,
		EnvWorkerID+"="+strconv.Itoa(id),
		EnvInstanceID+"="+instanceID,
	)

	if err := cmd.Start(); err != nil {
		return nil, ErrorWorkerSpawn.Error(liberr.New(0, err.Error()))
	}

	w := &worker{
		id:         id,
		cmd:        cmd,
		instanceID: instanceID,
		startedAt:  time.Now(),
		exited:     make(chan struct{}),
	}

	go o.watch(w)

	if o.cfg.CPUPin {
		pinToCPU(cmd.Process.Pid, id, o.log)
	}

	o.logInfo("worker started", map[string]interface{}{
		"worker_id":   id,
		"pid":         cmd.Process.Pid,
		"instance_id": instanceID,
	})

	return w, nil
}

// watch blocks on w.cmd.Wait, closes w.exited so other goroutines can
// observe completion without a second Wait, and reports the exit on
// o.exitCh so Run's select loop can decide whether to restart.
func (o *mst) watch(w *worker) {
	err := w.cmd.Wait()
	close(w.exited)

	o.m.Lock()
	closed := o.done
	o.m.Unlock()

	if closed {
		return
	}

	o.exitCh <- exitReport{id: w.id, err: err}
}

// restart replaces a dead worker. A worker that exited within
// CrashLoopWindow of starting is backed off exponentially, capped at
// maxRestartBackoff, to avoid a hot-looping fork bomb; anything else
// restarts immediately.
func (o *mst) restart(id int) {
	o.m.Lock()
	prev := o.workers[id]
	o.m.Unlock()

	crashLooping := prev != nil && time.Since(prev.startedAt) < o.cfg.CrashLoopWindow

	if crashLooping {
		backoff := time.Duration(1<<uint(prev.restarts)) * time.Second
		if backoff > maxRestartBackoff {
			backoff = maxRestartBackoff
		}
		o.logInfo("worker crash-looping, backing off", map[string]interface{}{
			"worker_id": id,
			"backoff":   backoff.String(),
		})
		time.Sleep(backoff)
	}

	w, err := o.spawn(id)
	if err != nil {
		o.logError("failed to restart worker", err)
		return
	}

	// A worker that ran stably resets the counter so one late crash
	// does not inherit an old backoff.
	if prev != nil && time.Since(prev.startedAt) < stableUptime {
		w.restarts = prev.restarts + 1
	}

	o.m.Lock()
	o.workers[id] = w
	o.m.Unlock()
}

// signalAll forwards sig to every live worker process.
func (o *mst) signalAll(sig syscall.Signal) {
	o.m.Lock()
	defer o.m.Unlock()

	for _, w := range o.workers {
		if w.cmd.Process == nil {
			continue
		}
		if err := w.cmd.Process.Signal(sig); err != nil {
			o.logError("failed to signal worker", err)
		}
	}
}

// shutdown sends SIGTERM to every worker, waits up to ShutdownGrace for
// them to exit, then escalates to SIGKILL for stragglers.
func (o *mst) shutdown() {
	o.m.Lock()
	o.done = true
	workers := make([]*worker, 0, len(o.workers))
	for _, w := range o.workers {
		workers = append(workers, w)
	}
	o.m.Unlock()

	o.signalAll(syscall.SIGTERM)

	deadline := time.Now().Add(o.cfg.ShutdownGrace)
	for _, w := range workers {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		waitOrKill(w, remaining)
	}
}

// waitOrKill waits up to d for w to exit on its own; if it doesn't, the
// process is killed and its watch goroutine's Wait reaps it.
func waitOrKill(w *worker, d time.Duration) {
	select {
	case <-w.exited:
		return
	case <-time.After(d):
		if w.cmd.Process != nil {
			_ = w.cmd.Process.Kill()
		}
		<-w.exited
	}
}
