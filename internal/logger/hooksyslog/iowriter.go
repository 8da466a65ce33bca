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

package hooksyslog

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Write implements io.Writer by forwarding p to syslog at info severity.
// It exists to satisfy logtps.Hook; Fire is the normal entry point and
// picks the severity matching the log entry's level.
func (o *hks) Write(p []byte) (n int, err error) {
	if e := o.writeLevel(logrus.InfoLevel, string(p)); e != nil {
		return 0, e
	}
	return len(p), nil
}

// Close closes the underlying syslog connection and marks the hook as
// stopped.
func (o *hks) Close() error {
	o.m.Lock()
	defer o.m.Unlock()

	o.r.Store(false)
	return o.w.Close()
}

// IsRunning reports whether the hook's syslog connection is still open.
func (o *hks) IsRunning() bool {
	return o.r.Load()
}

// Run blocks until ctx is cancelled, then closes the syslog connection.
func (o *hks) Run(ctx context.Context) {
	<-ctx.Done()
	_ = o.Close()
}
