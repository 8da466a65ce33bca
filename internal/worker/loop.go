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

// Package worker implements one worker process's event loop: a single
// goroutine cooperatively multiplexed over epoll, driving every accepted
// connection through the reading/dispatching/writing-pending state
// machine described for the server's core. Concurrency inside a worker
// is single-threaded by design — suspension only ever happens at a
// would-block return from accept, read, or send.
package worker

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/staticd/internal/bufpool"
	"github.com/nabbar/staticd/internal/cache"
	liberr "github.com/nabbar/staticd/internal/errors"
	"github.com/nabbar/staticd/internal/handler"
	"github.com/nabbar/staticd/internal/logger"
	"github.com/nabbar/staticd/internal/metrics"
	"github.com/nabbar/staticd/internal/ratelimit"
)

// errWouldBlock signals that a partial write/sendfile has hit the
// socket's send buffer and the connection must wait for write
// readiness before resuming.
var errWouldBlock = errors.New("worker: would block")

const (
	defaultAcceptBatch  = 2000
	defaultEpollTimeout = 1000 * time.Millisecond
	maxEmergencyClosed  = 10
	emergencyIdleAfter  = 5 * time.Second
	fdExhaustionBackoff = 20 * time.Millisecond
	metricsLogInterval  = 10 * time.Second
)

// idleBackoff maps consecutive empty epoll_wait cycles to a sleep
// duration, reducing wake-ups when the worker has nothing to do. Index
// 0 is the first idle cycle; the last entry repeats for every cycle
// beyond it.
var idleBackoff = []time.Duration{
	1 * time.Millisecond,
	5 * time.Millisecond,
	10 * time.Millisecond,
}

// Config holds the parameters one worker's event loop needs. It is a
// narrow projection of the process-wide Config (see internal/config),
// resolved once at worker start.
type Config struct {
	ListenAddr       string
	WorkerID         int
	MaxConnections   int
	BufferSize       int
	KeepAliveTimeout time.Duration
	AcceptBatch      int
	DevMode          bool
}

// Worker owns one epoll instance, its listening socket, and every
// connection accepted on it. Nothing here is shared with another
// worker process: each has its own cache, limiter, and buffer pool.
type Worker struct {
	cfg Config

	ep       *epoller
	listenFd int

	pool    *bufpool.Pool
	limiter *ratelimit.Limiter
	cache   *cache.Cache
	hdlr    *handler.Handler
	metrics *metrics.Registry
	log     logger.Logger

	bySocket map[int]*connection
	byTimer  map[int]*connection

	idleCycles int

	lastMetricsLog time.Time
	reqSinceLog    uint64
	lastCacheHits  uint64
	lastCacheMiss  uint64
	lastBans       uint64
	lastDenies     uint64

	shuttingDown bool
}

// New wires a worker's event loop around its own cache, rate limiter,
// buffer pool, and request handler. The listening socket is opened by
// Run, not here, so construction never fails on a transient bind error.
func New(cfg Config, pool *bufpool.Pool, limiter *ratelimit.Limiter, c *cache.Cache, h *handler.Handler, m *metrics.Registry, log logger.Logger) *Worker {
	if cfg.AcceptBatch <= 0 {
		cfg.AcceptBatch = defaultAcceptBatch
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = connBufferSize
	}
	if cfg.KeepAliveTimeout <= 0 {
		cfg.KeepAliveTimeout = 60 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		pool:     pool,
		limiter:  limiter,
		cache:    c,
		hdlr:     h,
		metrics:  m,
		log:      log,
		bySocket: make(map[int]*connection, cfg.MaxConnections),
		byTimer:  make(map[int]*connection, cfg.MaxConnections),
	}
}

// Run opens the listening socket and drives the event loop until stop
// is closed, then closes every live connection and returns.
func (w *Worker) Run(stop <-chan struct{}) liberr.Error {
	fd, err := listen(w.cfg.ListenAddr, w.cfg.MaxConnections)
	if err != nil {
		return err
	}
	w.listenFd = fd
	defer func() { _ = unix.Close(w.listenFd) }()

	ep, eerr := newEpoller()
	if eerr != nil {
		return eerr
	}
	w.ep = ep
	defer w.ep.close()

	if aerr := w.ep.add(w.listenFd, readEvents); aerr != nil {
		return aerr
	}

	w.lastMetricsLog = time.Now()
	events := make([]unix.EpollEvent, 1024)

	for {
		select {
		case <-stop:
			w.shuttingDown = true
		default:
		}

		if w.shuttingDown {
			w.closeAll()
			return nil
		}

		n, werr := w.ep.wait(events, int(defaultEpollTimeout.Milliseconds()))
		if werr != nil && !isWouldBlock(werr) {
			if w.log != nil {
				w.log.Error("epoll_wait failed", werr)
			}
			continue
		}

		if n == 0 {
			w.backoffIdle()
		} else {
			w.idleCycles = 0
		}

		for i := 0; i < n; i++ {
			w.dispatch(events[i])
		}

		w.periodicMaintenance()
	}
}

// backoffIdle sleeps an adaptive amount after an epoll_wait cycle that
// found nothing ready, lengthening the sleep with consecutive idle
// cycles to cut down on pointless wake-ups.
func (w *Worker) backoffIdle() {
	idx := w.idleCycles
	if idx >= len(idleBackoff) {
		idx = len(idleBackoff) - 1
	}
	time.Sleep(idleBackoff[idx])
	if w.idleCycles < len(idleBackoff) {
		w.idleCycles++
	}
}

// dispatch routes one ready epoll event to the listening socket, a
// connection's socket, or a connection's idle timer.
func (w *Worker) dispatch(ev unix.EpollEvent) {
	fd := int(ev.Fd)

	if fd == w.listenFd {
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			if w.log != nil {
				w.log.Error("listening socket reported an error, shutting down worker", nil)
			}
			w.shuttingDown = true
			return
		}
		w.acceptBatch()
		return
	}

	if c, ok := w.byTimer[fd]; ok {
		drainTimer(fd)
		now := time.Now()
		if c.isSlowLoris(now) || c.idleTimedOut(now, w.cfg.KeepAliveTimeout) {
			w.closeConnection(c)
			return
		}
		// The timerfd is one-shot; keep the expiry chain alive for a
		// connection that is still within its idle allowance.
		_ = armTimer(fd, w.cfg.KeepAliveTimeout)
		return
	}

	c, ok := w.bySocket[fd]
	if !ok {
		return
	}

	if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		w.closeConnection(c)
		return
	}

	if ev.Events&unix.EPOLLOUT != 0 {
		w.onWritable(c)
		if c.state == stateClosed {
			return
		}
	}

	if ev.Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0 {
		w.onReadable(c)
	}
}

// periodicMaintenance runs the rate limiter's idle sweep and logs a
// request-rate sample every metricsLogInterval, as the worker loop does
// between accept iterations.
func (w *Worker) periodicMaintenance() {
	now := time.Now()
	if now.Sub(w.lastMetricsLog) < metricsLogInterval {
		return
	}

	elapsed := now.Sub(w.lastMetricsLog).Seconds()
	rate := float64(w.reqSinceLog) / elapsed

	w.limiter.SweepIdle()

	if w.metrics != nil {
		hits, misses := w.cache.Stats()
		if d := hits - w.lastCacheHits; d > 0 {
			w.metrics.CacheHits.Add(float64(d))
		}
		if d := misses - w.lastCacheMiss; d > 0 {
			w.metrics.CacheMisses.Add(float64(d))
		}
		w.lastCacheHits, w.lastCacheMiss = hits, misses

		bans, denies := w.limiter.Stats()
		if d := bans - w.lastBans; d > 0 {
			w.metrics.RateLimitBans.Add(float64(d))
		}
		if d := denies - w.lastDenies; d > 0 {
			w.metrics.RateLimitDenies.Add(float64(d))
		}
		w.lastBans, w.lastDenies = bans, denies
	}

	if w.log != nil {
		w.log.Info("worker request rate", map[string]interface{}{
			"worker_id":   w.cfg.WorkerID,
			"req_per_sec": rate,
			"connections": len(w.bySocket),
		})
	}

	w.reqSinceLog = 0
	w.lastMetricsLog = now
}

// closeAll tears down every live connection for cooperative shutdown:
// each socket is half-closed first so the peer sees a clean FIN on any
// in-flight response, then fully closed and released.
func (w *Worker) closeAll() {
	for _, c := range w.bySocket {
		_ = unix.Shutdown(c.fd, unix.SHUT_WR)
		w.closeConnection(c)
	}
	w.cache.PurgeAll()
}
