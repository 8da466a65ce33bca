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

/*
Package hookfile provides a logrus hook for writing log entries to a file,
with configurable field filtering and formatting options.

# Behavior

Each hook opens its own file handle in append mode at New() time and holds
it for the hook's lifetime; there is no shared aggregator or background
flush goroutine between hooks pointed at the same path. Fire serializes
one entry at a time under a mutex and writes synchronously, so a Fire call
only returns once the bytes have reached the file (subject to the OS
page cache).

In normal mode, the formatter renders entry.Data (the Message field is
ignored); in access-log mode (EnableAccessLog), the raw Message is written
instead, one line per entry.

Run blocks until its context is cancelled, then closes the file handle;
it exists so the owning logger can stop every hook uniformly through
mapCloser without needing to know which ones buffer and which don't.
*/
package hookfile
