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

// Package ratelimit implements the per-IP admission control described for
// the worker's accept path: a fixed, single-slot open-addressed table
// keyed by a hash of the client IP, a sliding request-count window, a
// concurrent-connection cap, and escalating bans. Collisions between
// distinct IPs are an accepted approximation: the newer IP simply
// overwrites the slot, which bounds memory and keeps admission O(1).
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultTableSize     = 4096
	Window               = 60 * time.Second
	MaxRequestsPerWindow = 1000
	MaxConcurrentPerIP   = 50
	ViolationsBeforeBan  = 3
	BanDuration          = 600 * time.Second
)

type entry struct {
	ip          string
	windowStart time.Time
	count       int
	lastRequest time.Time
	conns       int
	violations  int
	banUntil    time.Time
}

// Limiter gates new connections by client IP. Dev mode disables admission
// checks entirely while still tracking connection releases.
type Limiter struct {
	mu      sync.Mutex
	table   []*entry
	devMode bool
	bans    uint64
	denies  uint64
}

// New builds a limiter with a table of size slots. devMode, when true,
// makes CheckAndAdmit always allow (per the configured development mode).
func New(size int, devMode bool) *Limiter {
	if size <= 0 {
		size = DefaultTableSize
	}
	return &Limiter{
		table:   make([]*entry, size),
		devMode: devMode,
	}
}

func (l *Limiter) slot(ip string) int {
	return int(djb2(ip) % uint64(len(l.table)))
}

// CheckAndAdmit evaluates whether a new connection from ip may proceed. It
// increments the window's request and connection counters on admission,
// and also when it denies a connection for exceeding MaxRequestsPerWindow;
// a denial at the MaxConcurrentPerIP cap or during a ban increments neither.
func (l *Limiter) CheckAndAdmit(ip string) bool {
	if l.devMode {
		return true
	}

	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.slot(ip)
	e := l.table[idx]

	if e != nil && e.ip == ip {
		if !e.banUntil.IsZero() && now.Before(e.banUntil) {
			l.denies++
			return false
		}
		if !e.banUntil.IsZero() && !now.Before(e.banUntil) {
			e.banUntil = time.Time{}
			e.violations = 0
		}
	}

	if e == nil || e.ip != ip || now.Sub(e.windowStart) > 2*Window {
		l.table[idx] = &entry{
			ip:          ip,
			windowStart: now,
			count:       1,
			lastRequest: now,
			conns:       1,
		}
		return true
	}

	if e.conns >= MaxConcurrentPerIP {
		l.denies++
		return false
	}

	if now.Sub(e.windowStart) >= Window {
		e.windowStart = now
		e.count = 1
		e.conns++
		e.lastRequest = now
		return true
	}

	e.count++
	e.conns++
	e.lastRequest = now

	if e.count > MaxRequestsPerWindow {
		e.violations++
		if e.violations >= ViolationsBeforeBan {
			e.banUntil = now.Add(BanDuration)
			l.bans++
		}
		l.denies++
		return false
	}

	return true
}

// ReleaseConnection decrements the connection count for ip, if the slot
// still belongs to it. No-op for an absent entry (including dev mode,
// where entries are never created).
func (l *Limiter) ReleaseConnection(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.slot(ip)
	e := l.table[idx]
	if e == nil || e.ip != ip {
		return
	}
	if e.conns > 0 {
		e.conns--
	}
}

// Stats returns the cumulative ban and deny counts observed so far.
func (l *Limiter) Stats() (bans, denies uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bans, l.denies
}

// SweepIdle clears any unbanned entry that has been idle for more than
// 4x the window, called periodically by the worker loop.
func (l *Limiter) SweepIdle() {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.table {
		if e == nil {
			continue
		}
		if e.banUntil.IsZero() && now.Sub(e.lastRequest) > 4*Window {
			l.table[i] = nil
		}
	}
}

func djb2(s string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) + uint64(s[i])
	}
	return h
}
