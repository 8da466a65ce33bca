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

// Package handler implements the per-request dispatch sequence: path
// resolution, cache consult, conditional evaluation, file serving, and
// compression, producing a framed response ready for the connection
// loop to write.
package handler

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/nabbar/staticd/internal/cache"
	"github.com/nabbar/staticd/internal/compressor"
	"github.com/nabbar/staticd/internal/fileserve"
	"github.com/nabbar/staticd/internal/httpcodec"
	"github.com/nabbar/staticd/internal/pathresolver"
)

const maxCacheableFramed = 1024 * 1024

// Result is what the connection loop writes back: a framed header
// block, followed by either an in-memory body or a streamed file.
type Result struct {
	Status int
	Header []byte
	Body   []byte
	File   *os.File
	Size   int64
}

// Handler dispatches parsed requests against a document root's resolver
// and the worker's response cache.
type Handler struct {
	resolver *pathresolver.Resolver
	cache    *cache.Cache
}

// New builds a Handler serving resolver's root, consulting c for cached
// responses.
func New(resolver *pathresolver.Resolver, c *cache.Cache) *Handler {
	return &Handler{resolver: resolver, cache: c}
}

// Handle runs the full dispatch sequence for req and returns the result
// to write back to the client.
func (h *Handler) Handle(req *httpcodec.Request) *Result {
	resp := httpcodec.NewResponse(200)
	resp.KeepAlive = req.KeepAlive

	if req.Method != "GET" && req.Method != "HEAD" {
		resp.Status = 501
		return finalize(resp, req, nil, nil)
	}

	uri := req.URI
	if strings.HasSuffix(uri, "/") {
		uri += "index.html"
	}

	path, rerr := h.resolver.Resolve(uri)
	if rerr != nil {
		resp.Status = 403
		return finalize(resp, req, nil, nil)
	}

	acceptEncoding, _ := req.Header("Accept-Encoding")
	encoding := compressor.Negotiate(acceptEncoding)
	key := cache.VaryKey(path, string(encoding))

	if entry := h.cache.Lookup(path, key); entry != nil {
		if ifNoneMatch, ok := req.Header("If-None-Match"); ok && MatchETag(ifNoneMatch, entry.ETag) {
			notModified := httpcodec.NewResponse(304)
			notModified.KeepAlive = req.KeepAlive
			notModified.Set("ETag", entry.ETag)
			return finalize(notModified, req, nil, nil)
		}
		return finalizeFromCache(entry, req)
	}

	sf, ferr := fileserve.Open(path, false)
	if ferr != nil {
		resp.Status = 404
		return finalize(resp, req, nil, nil)
	}

	if ifNoneMatch, ok := req.Header("If-None-Match"); ok && MatchETag(ifNoneMatch, sf.ETag) {
		closeIfOpen(sf)
		notModified := httpcodec.NewResponse(304)
		notModified.KeepAlive = req.KeepAlive
		notModified.Set("ETag", sf.ETag)
		notModified.Set("Cache-Control", fileserve.CacheControlByExtension(path))
		notModified.Set("Vary", "Accept-Encoding, User-Agent")
		return finalize(notModified, req, nil, nil)
	}

	if ims, ok := req.Header("If-Modified-Since"); ok {
		if since, pok := ParseIfModifiedSince(ims); pok && NotModifiedSince(sf.ModTime, since) {
			closeIfOpen(sf)
			notModified := httpcodec.NewResponse(304)
			notModified.KeepAlive = req.KeepAlive
			notModified.Set("ETag", sf.ETag)
			notModified.Set("Cache-Control", fileserve.CacheControlByExtension(path))
			notModified.Set("Vary", "Accept-Encoding, User-Agent")
			return finalize(notModified, req, nil, nil)
		}
	}

	wantBody := compressor.Compressible(sf.MIME) && encoding != compressor.Identity && sf.Size <= compressor.MaxSourceBytes
	if wantBody && sf.Handle != nil {
		body := make([]byte, sf.Size)
		if _, rderr := io.ReadFull(sf.Handle, body); rderr == nil {
			sf.Body = body
		}
		closeIfOpen(sf)
	}

	resp.Set("Content-Type", sf.MIME)
	resp.Set("Last-Modified", fileserve.LastModifiedHeader(sf.ModTime))
	resp.Set("ETag", sf.ETag)
	resp.Set("Vary", "Accept-Encoding, User-Agent")
	resp.Set("Cache-Control", fileserve.CacheControlByExtension(path))

	freshRead := sf.Body != nil

	if freshRead && encoding != compressor.Identity {
		if compressed, cerr := compressor.Compress(sf.Body, encoding, compressor.LevelFor(sf.MIME)); cerr == nil {
			sf.Body = compressed
			resp.Set("Content-Encoding", string(encoding))
		}
	}

	if sf.Body != nil {
		resp.Body = sf.Body
		resp.Set("Content-Length", strconv.FormatInt(int64(len(sf.Body)), 10))
	} else {
		resp.Set("Content-Length", strconv.FormatInt(sf.Size, 10))
	}

	return finalize(resp, req, sf.Handle, cacheInsertFn(h, freshRead, path, key))
}

// cacheInsertFn returns a closure that inserts the finalized response
// into the cache when the body was read fresh and the framed response
// stays under the cacheable size cap; nil when insertion cannot apply.
func cacheInsertFn(h *Handler, freshRead bool, path, key string) func(resp *httpcodec.Response) {
	if !freshRead {
		return nil
	}
	return func(resp *httpcodec.Response) {
		alwaysKeepAlive := *resp
		alwaysKeepAlive.KeepAlive = true
		framed := httpcodec.Frame(&alwaysKeepAlive)
		if len(framed) < maxCacheableFramed {
			etag, _ := resp.Get("ETag")
			h.cache.Insert(path, key, framed, etag)
		}
	}
}

func finalize(resp *httpcodec.Response, req *httpcodec.Request, file *os.File, onFinal func(*httpcodec.Response)) *Result {
	if onFinal != nil {
		onFinal(resp)
	}

	body := resp.Body
	if req.Method == "HEAD" {
		body = nil
	}

	size := int64(len(resp.Body))
	if file != nil {
		if cl, ok := resp.Get("Content-Length"); ok {
			if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
				size = n
			}
		}
	}
	if req.Method == "HEAD" {
		file = nil
	}

	return &Result{
		Status: resp.Status,
		Header: httpcodec.FrameHeader(resp),
		Body:   body,
		File:   file,
		Size:   size,
	}
}

// finalizeFromCache serves a cached, fully framed response directly,
// overriding its baked-in keep-alive to match the current request and
// stripping the body for HEAD.
func finalizeFromCache(entry *cache.Entry, req *httpcodec.Request) *Result {
	header, body := splitFramedHeaderBody(entry.Body)
	header = rewriteConnectionHeader(header, req.KeepAlive)

	if req.Method == "HEAD" {
		body = nil
	}

	return &Result{
		Status: 200,
		Header: header,
		Body:   body,
		Size:   int64(len(body)),
	}
}

func splitFramedHeaderBody(framed []byte) (header, body []byte) {
	sep := []byte("\r\n\r\n")
	for i := 0; i+len(sep) <= len(framed); i++ {
		if string(framed[i:i+len(sep)]) == string(sep) {
			return framed[:i+len(sep)], framed[i+len(sep):]
		}
	}
	return framed, nil
}

func rewriteConnectionHeader(header []byte, keepAlive bool) []byte {
	s := string(header)
	if keepAlive {
		return []byte(strings.Replace(s, "Connection: close\r\n", "Connection: keep-alive\r\n", 1))
	}
	return []byte(strings.Replace(s, "Connection: keep-alive\r\n", "Connection: close\r\n", 1))
}

func closeIfOpen(sf *fileserve.File) {
	if sf.Handle != nil {
		_ = sf.Handle.Close()
		sf.Handle = nil
	}
}
