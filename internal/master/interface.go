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
	"time"

	"github.com/nabbar/staticd/internal/logger"
)

// Environment variables the re-exec'd binary inspects on startup to
// decide whether it should run as a worker instead of as the master.
const (
	EnvMode       = "STATICD_MODE"
	EnvModeWorker = "worker"
	EnvWorkerID   = "STATICD_WORKER_ID"
	EnvInstanceID = "STATICD_INSTANCE_ID"
)

const (
	// defaultCrashLoopWindow is how soon after start a worker's exit is
	// treated as crash-looping rather than a normal restart.
	defaultCrashLoopWindow = time.Second

	// defaultShutdownGrace is how long workers get to exit after SIGTERM
	// before the master escalates to SIGKILL.
	defaultShutdownGrace = 5 * time.Second

	// maxRestartBackoff caps the exponential crash-loop backoff.
	maxRestartBackoff = 30 * time.Second

	// stableUptime is how long a worker must run before its restart
	// counter resets, so one late crash doesn't inherit an old backoff.
	stableUptime = 60 * time.Second
)

// Config holds everything the master needs to supervise a fleet of
// worker processes. BinaryPath and ExtraArgs describe how to re-exec
// the running program in worker mode; the rest mirrors the server's
// own configuration file.
type Config struct {
	BinaryPath       string
	ExtraArgs        []string
	ConfigPath       string
	WorkerCount      int
	CPUPin           bool
	ShutdownGrace    time.Duration
	CrashLoopWindow  time.Duration
	DevMode          bool
}

// Master supervises the worker fleet: spawning it, restarting workers
// that die, and fanning out reload/reopen/shutdown signals.
type Master interface {
	// Run spawns the configured worker fleet and blocks, supervising it,
	// until ctx is cancelled or SIGINT/SIGTERM arrives. A failed restart
	// is logged and supervision continues; an error is returned only when
	// the initial fleet cannot be spawned. It always attempts a graceful
	// shutdown of any running workers before returning.
	Run(ctx context.Context) error
}

// New validates cfg's defaults and returns a Master ready to Run.
func New(cfg Config, log logger.Logger) Master {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = defaultShutdownGrace
	}
	if cfg.CrashLoopWindow <= 0 {
		cfg.CrashLoopWindow = defaultCrashLoopWindow
	}

	return &mst{
		cfg: cfg,
		log: log,
	}
}
