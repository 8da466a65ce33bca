/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
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

package errors

// Package code offsets, one block per package that registers its own
// CodeError values. Each package adds its codes starting at its offset
// via iota, mirroring the upstream MinPkg* convention.
const (
	MinPkgConfig      = 100
	MinPkgConsole     = 200
	MinPkgLogger      = 300
	MinPkgMaster      = 400
	MinPkgWorker      = 500
	MinPkgBufPool     = 600
	MinPkgCache       = 700
	MinPkgRateLimit   = 800
	MinPkgPathResolve = 900
	MinPkgHTTPCodec   = 1000
	MinPkgCompressor  = 1100
	MinPkgHandler     = 1200
	MinPkgFileServe   = 1300

	MinAvailable = 2000
)
