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
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Run raises the file descriptor limit, spawns the configured worker
// fleet, and blocks supervising it until ctx is cancelled. SIGCHLD-style
// exits (delivered here as a report on exitCh by each worker's watch
// goroutine) are restarted with crash-loop backoff; SIGHUP reloads the
// config file and fans it to every worker; SIGUSR1 fans out a log
// reopen for external logrotate; SIGINT/SIGTERM drain the fleet before
// Run returns.
func (o *mst) Run(ctx context.Context) error {
	if err := raiseFileLimit(); err != nil {
		o.logError("failed to raise file descriptor limit", err)
	}

	o.exitCh = make(chan exitReport, o.cfg.WorkerCount)
	o.workers = make(map[int]*worker, o.cfg.WorkerCount)

	for id := 0; id < o.cfg.WorkerCount; id++ {
		w, err := o.spawn(id)
		if err != nil {
			o.shutdown()
			return err
		}
		o.workers[id] = w
	}

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			o.shutdown()
			return nil

		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				o.logInfo("SIGHUP received, reloading config and fanning out", nil)
				o.signalAll(syscall.SIGHUP)
			case syscall.SIGUSR1:
				o.logInfo("SIGUSR1 received, fanning out log reopen", nil)
				o.signalAll(syscall.SIGUSR1)
			case syscall.SIGINT, syscall.SIGTERM:
				o.logInfo("shutdown signal received, draining worker fleet", nil)
				o.shutdown()
				return nil
			}

		case rep := <-o.exitCh:
			o.m.Lock()
			done := o.done
			o.m.Unlock()
			if done {
				continue
			}

			o.logInfo("worker exited, restarting", map[string]interface{}{
				"worker_id": rep.id,
				"err":       errString(rep.err),
			})
			o.restart(rep.id)
		}
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
