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

// Package hooksyslog provides a logrus hook implementation for forwarding
// logs to the local or a remote syslog daemon. It supports custom
// formatters and per-target log levels, mirroring the options the file
// and stdout hooks expose.
package hooksyslog

import (
	"errors"

	logcfg "github.com/nabbar/staticd/internal/logger/config"
	loglvl "github.com/nabbar/staticd/internal/logger/level"
	logtps "github.com/nabbar/staticd/internal/logger/types"
	"github.com/sirupsen/logrus"
)

// errMissingHost is returned when New is called with a non-local network
// transport but no host to dial.
var errMissingHost = errors.New("hooksyslog: missing host for network transport")

// HookSyslog defines the interface for a logrus hook that forwards logs to
// syslog.
type HookSyslog interface {
	logtps.Hook
}

// New creates and initializes a new syslog hook with the specified options
// and formatter.
//
// Network/Host follow the net.Dial convention: an empty Network dials the
// local syslog daemon over its Unix socket; any other value ("tcp", "udp")
// requires Host to be set. Facility defaults to LOG_DAEMON and Tag to the
// running binary's name when left blank.
func New(opt logcfg.OptionsSyslog, format logrus.Formatter) (HookSyslog, error) {
	if opt.Network != "" && opt.Host == "" {
		return nil, errMissingHost
	}

	var lvls = make([]logrus.Level, 0)

	if len(opt.LogLevel) > 0 {
		for _, ls := range opt.LogLevel {
			lvls = append(lvls, loglvl.Parse(ls).Logrus())
		}
	} else {
		lvls = logrus.AllLevels
	}

	w, e := dial(opt)
	if e != nil {
		return nil, e
	}

	n := &hks{
		o: ohks{
			format:           format,
			levels:           lvls,
			disableStack:     opt.DisableStack,
			disableTimestamp: opt.DisableTimestamp,
			enableTrace:      opt.EnableTrace,
			enableAccessLog:  opt.EnableAccessLog,
		},
		w: w,
	}
	n.r.Store(true)

	return n, nil
}
