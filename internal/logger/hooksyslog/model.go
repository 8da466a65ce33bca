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
	"strings"
	"sync"
	"sync/atomic"

	logtps "github.com/nabbar/staticd/internal/logger/types"
	"github.com/sirupsen/logrus"
)

// ohks contains the configuration options for the syslog hook. It's an
// unexported type to ensure immutability after creation.
type ohks struct {
	format           logrus.Formatter
	levels           []logrus.Level
	disableStack     bool
	disableTimestamp bool
	enableTrace      bool
	enableAccessLog  bool
}

// hks is the main implementation of the HookSyslog interface. Writes are
// forwarded to the syslogWriter opened at New() time, one priority call
// per Fire() so each entry lands at its matching syslog severity.
type hks struct {
	m sync.Mutex
	o ohks
	w syslogWriter
	r atomic.Bool
}

// Levels returns the log levels that this hook is configured to handle.
func (o *hks) Levels() []logrus.Level {
	return o.o.levels
}

// RegisterHook registers this hook with the provided logrus Logger.
func (o *hks) RegisterHook(log *logrus.Logger) {
	log.AddHook(o)
}

// Fire processes a log entry and forwards it to syslog at the matching
// severity.
func (o *hks) Fire(entry *logrus.Entry) error {
	levelAccepted := false
	for _, l := range o.o.levels {
		if l == entry.Level {
			levelAccepted = true
			break
		}
	}
	if !levelAccepted {
		return nil
	}

	ent := entry.Dup()
	ent.Level = entry.Level

	if o.o.disableStack {
		ent.Data = o.filterKey(ent.Data, logtps.FieldStack)
	}

	if o.o.disableTimestamp {
		ent.Data = o.filterKey(ent.Data, logtps.FieldTime)
	}

	if !o.o.enableTrace {
		ent.Data = o.filterKey(ent.Data, logtps.FieldCaller)
		ent.Data = o.filterKey(ent.Data, logtps.FieldFile)
		ent.Data = o.filterKey(ent.Data, logtps.FieldLine)
	}

	var (
		p []byte
		e error
	)

	if o.o.enableAccessLog {
		if len(entry.Message) < 1 {
			return nil
		}
		p = []byte(strings.TrimSuffix(entry.Message, "\n"))
	} else {
		if len(ent.Data) < 1 {
			return nil
		}

		if f := o.o.format; f != nil {
			p, e = f.Format(ent)
		} else {
			p, e = ent.Bytes()
		}

		if e != nil {
			return e
		}
		p = []byte(strings.TrimSuffix(string(p), "\n"))
	}

	return o.writeLevel(entry.Level, string(p))
}

// filterKey removes a specific key from the logrus.Fields map if it exists.
func (o *hks) filterKey(f logrus.Fields, key string) logrus.Fields {
	if len(f) < 1 {
		return f
	}

	if _, ok := f[key]; !ok {
		return f
	}

	delete(f, key)
	return f
}

// writeLevel forwards msg to the syslog daemon at the severity matching
// lvl, serializing access since the underlying syslog client is not
// guaranteed safe for concurrent writes.
func (o *hks) writeLevel(lvl logrus.Level, msg string) error {
	o.m.Lock()
	defer o.m.Unlock()

	return o.w.writeLevel(lvl, msg)
}
