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

// Package cache holds the worker's in-memory response cache: a fixed-size
// open-addressed table keyed by a hash of the vary key ("<resolved
// path>:<encoding-token>"), storing the fully framed HTTP/1.1 response
// bytes for a fast, header-free replay on a cache hit. A single mutex
// guards the table and the memory-usage counters; the stored bytes
// themselves never mutate after insert.
package cache

import (
	"sync"
	"time"
)

const (
	DefaultTableSize = 10000
	DefaultTTL       = 3600 * time.Second
	MaxEntryBytes    = 5 * 1024 * 1024
	MaxTotalBytes    = 100 * 1024 * 1024
	SweepInterval    = 300 * time.Second
)

// Entry is one cached, fully framed HTTP response.
type Entry struct {
	Path     string
	VaryKey  string
	Body     []byte
	ETag     string
	Inserted time.Time
}

type slot struct {
	entry *Entry
}

// Cache is the worker-owned response cache. Zero value is not usable;
// build one with New.
type Cache struct {
	mu         sync.Mutex
	table      []slot
	ttl        time.Duration
	totalBytes int64
	cursor     int
	lastSweep  time.Time
	hits       uint64
	misses     uint64
}

// New builds a cache with size slots (DefaultTableSize when size <= 0)
// and the given entry TTL (DefaultTTL when ttl <= 0).
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultTableSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		table:     make([]slot, size),
		ttl:       ttl,
		lastSweep: time.Time{},
	}
}

// VaryKey builds the composite cache key from a resolved filesystem path
// and a normalized content-encoding token ("gzip", "deflate", or "none").
func VaryKey(resolvedPath, encodingToken string) string {
	return resolvedPath + ":" + encodingToken
}

func (c *Cache) idx(key string) int {
	return int(djb2(key) % uint64(len(c.table)))
}

// Lookup returns the cached entry for key, or nil on a miss. It runs a
// cleanup sweep first if the sweep interval has elapsed.
func (c *Cache) Lookup(path, key string) *Entry {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= SweepInterval {
		c.sweepLocked(now)
	}

	if e := c.findLocked(path, key, now); e != nil {
		c.hits++
		return e
	}

	c.misses++
	return nil
}

func (c *Cache) findLocked(path, key string, now time.Time) *Entry {
	i := c.idx(key)
	if s := c.table[i].entry; s != nil && s.Path == path && s.VaryKey == key && now.Sub(s.Inserted) < c.ttl {
		return s
	}

	for n := range c.table {
		s := c.table[n].entry
		if s == nil {
			continue
		}
		if s.Path == path && s.VaryKey == key && now.Sub(s.Inserted) < c.ttl {
			return s
		}
	}

	return nil
}

// Insert stores framed, a complete framed HTTP response, under key. It
// rejects bodies over MaxEntryBytes, and bodies that would push the
// global total over MaxTotalBytes even after a cleanup sweep.
func (c *Cache) Insert(path, key string, framed []byte, etag string) {
	if len(framed) > MaxEntryBytes {
		return
	}

	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.totalBytes+int64(len(framed)) > MaxTotalBytes {
		c.sweepLocked(now)
		if c.totalBytes+int64(len(framed)) > MaxTotalBytes {
			return
		}
	}

	body := make([]byte, len(framed))
	copy(body, framed)

	entry := &Entry{
		Path:     path,
		VaryKey:  key,
		Body:     body,
		ETag:     etag,
		Inserted: now,
	}

	i := c.idx(key)
	if existing := c.table[i].entry; existing == nil || existing.VaryKey == key {
		c.freeLocked(i)
		c.table[i].entry = entry
		c.totalBytes += int64(len(body))
		return
	}

	start := c.cursor
	for n := 0; n < len(c.table); n++ {
		j := (start + n) % len(c.table)
		c.cursor = (j + 1) % len(c.table)
		if c.table[j].entry == nil {
			c.table[j].entry = entry
			c.totalBytes += int64(len(body))
			return
		}
	}

	j := c.cursor
	c.cursor = (j + 1) % len(c.table)
	c.freeLocked(j)
	c.table[j].entry = entry
	c.totalBytes += int64(len(body))
}

func (c *Cache) freeLocked(i int) {
	if s := c.table[i].entry; s != nil {
		c.totalBytes -= int64(len(s.Body))
		c.table[i].entry = nil
	}
}

func (c *Cache) sweepLocked(now time.Time) {
	for i, s := range c.table {
		if s.entry != nil && now.Sub(s.entry.Inserted) >= c.ttl {
			c.freeLocked(i)
		}
	}
	c.lastSweep = now
}

// PurgeAll frees every entry, for use at worker shutdown.
func (c *Cache) PurgeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.table {
		c.freeLocked(i)
	}
}

// Stats returns the hit and miss counters observed so far.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// TotalBytes returns the current global memory usage of cached bodies.
func (c *Cache) TotalBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}

func djb2(s string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = ((h << 5) + h) + uint64(s[i])
	}
	return h
}
