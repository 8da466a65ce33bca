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

// Package metrics exposes optional Prometheus instrumentation for a
// worker process: cache hit/miss counters, rate-limit ban counters, and
// a request-rate counter. It is entirely separate from the request
// path's hot loop — the worker updates these counters inline but serves
// them on its own debug listener, never the accept socket.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the counters one worker process reports.
type Registry struct {
	reg *prometheus.Registry

	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	RateLimitBans   prometheus.Counter
	RateLimitDenies prometheus.Counter
	RequestsTotal   prometheus.Counter
	ResponseStatus  *prometheus.CounterVec
}

// New builds a worker-scoped metrics registry, tagging every series
// with a "worker" label so a scraper can distinguish processes.
func New(workerID int) *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "staticd",
			Subsystem:   "cache",
			Name:        "hits_total",
			Help:        "Response cache hits.",
			ConstLabels: prometheus.Labels{"worker": strconv.Itoa(workerID)},
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "staticd",
			Subsystem:   "cache",
			Name:        "misses_total",
			Help:        "Response cache misses.",
			ConstLabels: prometheus.Labels{"worker": strconv.Itoa(workerID)},
		}),
		RateLimitBans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "staticd",
			Subsystem:   "ratelimit",
			Name:        "bans_total",
			Help:        "Client IPs placed under a temporary ban.",
			ConstLabels: prometheus.Labels{"worker": strconv.Itoa(workerID)},
		}),
		RateLimitDenies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "staticd",
			Subsystem:   "ratelimit",
			Name:        "denies_total",
			Help:        "Connections rejected by the rate limiter.",
			ConstLabels: prometheus.Labels{"worker": strconv.Itoa(workerID)},
		}),
		RequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "staticd",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Requests dispatched by the handler.",
			ConstLabels: prometheus.Labels{"worker": strconv.Itoa(workerID)},
		}),
		ResponseStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "staticd",
			Subsystem:   "http",
			Name:        "responses_total",
			Help:        "Responses by status code.",
			ConstLabels: prometheus.Labels{"worker": strconv.Itoa(workerID)},
		}, []string{"status"}),
	}

	reg.MustRegister(r.CacheHits, r.CacheMisses, r.RateLimitBans, r.RateLimitDenies, r.RequestsTotal, r.ResponseStatus)

	return r
}

// Handler returns the HTTP handler the worker's debug listener serves.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// ObserveStatus records one response of the given status code.
func (r *Registry) ObserveStatus(status int) {
	r.ResponseStatus.WithLabelValues(strconv.Itoa(status)).Inc()
}

