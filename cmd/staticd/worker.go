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

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nabbar/staticd/internal/bufpool"
	"github.com/nabbar/staticd/internal/cache"
	"github.com/nabbar/staticd/internal/config"
	"github.com/nabbar/staticd/internal/handler"
	"github.com/nabbar/staticd/internal/logger"
	"github.com/nabbar/staticd/internal/master"
	"github.com/nabbar/staticd/internal/metrics"
	"github.com/nabbar/staticd/internal/pathresolver"
	"github.com/nabbar/staticd/internal/ratelimit"
	"github.com/nabbar/staticd/internal/worker"
)

// runWorker wires one worker process's independent cache, rate
// limiter, buffer pool, and request handler around a path resolver
// rooted at cfg.DocumentRoot, then runs its epoll event loop until
// SIGINT/SIGTERM. SIGHUP and SIGUSR1 are logged but otherwise a no-op
// here: table sizes and the listening socket are fixed for a worker's
// lifetime, so the master reloads by cycling the fleet rather than by
// asking a live worker to resize itself in place.
func runWorker(path string, dev bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config %q: %w", path, err)
	}
	if dev {
		cfg.Development = true
	}

	workerID, _ := strconv.Atoi(os.Getenv(master.EnvWorkerID))

	log, lerr := newLogger(cfg, "worker")
	if lerr != nil {
		return lerr
	}

	resolver, rerr := pathresolver.New(cfg.DocumentRoot)
	if rerr != nil {
		return fmt.Errorf("resolving document root %q: %w", cfg.DocumentRoot, rerr)
	}

	c := cache.New(cfg.CacheTableSize, cfg.CacheTTL.Time())
	limiter := ratelimit.New(cfg.RateLimitTable, cfg.Development)
	pool := bufpool.New(cfg.BufferPoolCount, int(cfg.BufferSize))
	hdlr := handler.New(resolver, c)
	reg := metrics.New(workerID)

	var metricsSrv *http.Server
	if cfg.MetricsListen != "" {
		metricsSrv = &http.Server{Addr: cfg.MetricsListen, Handler: reg.Handler()}
		go serveMetrics(metricsSrv, log)
	}

	w := worker.New(worker.Config{
		ListenAddr:       cfg.Listen,
		WorkerID:         workerID,
		MaxConnections:   cfg.BufferPoolCount,
		BufferSize:       int(cfg.BufferSize),
		KeepAliveTimeout: cfg.KeepAliveTimeout.Time(),
		DevMode:          cfg.Development,
	}, pool, limiter, c, hdlr, reg, log)

	stop := make(chan struct{})
	go watchWorkerSignals(stop, log)

	werr := w.Run(stop)

	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}

	if werr != nil {
		return werr
	}
	return nil
}

// watchWorkerSignals closes stop on SIGINT/SIGTERM to trigger the
// worker's cooperative shutdown.
func watchWorkerSignals(stop chan<- struct{}, log logger.Logger) {
	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			log.Info("SIGHUP received: per-worker config is fixed, master will cycle the fleet to apply changes", nil)
		case syscall.SIGUSR1:
			log.Info("SIGUSR1 received: log reopen is handled transparently by the file hook", nil)
		case syscall.SIGINT, syscall.SIGTERM:
			close(stop)
			return
		}
	}
}

// serveMetrics runs the optional Prometheus debug listener. It shares
// no socket, goroutine, or data structure with the worker's own accept
// loop; a failure here is logged, not fatal, since metrics are an
// operational nicety, not part of the request path's contract.
func serveMetrics(srv *http.Server, log logger.Logger) {
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Warning("metrics listener failed", err)
	}
}
