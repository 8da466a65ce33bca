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

// Package hookfile provides a logrus hook implementation for writing logs to
// files with various formatting options. It supports custom formatters and
// per-file log levels. The hook can be configured to enable/disable stack
// traces, timestamps, and access log formatting.
//
// # Important Usage Notes
//
// When using this hook in normal mode (not access log mode), all log data
// MUST be passed via the logrus.Entry.Data field. The Message parameter is
// ignored by the formatter. For example:
//
//	logger.WithField("msg", "User logged in").WithField("user", "john").Info("")
//
// NOT:
//
//	logger.Info("User logged in") // This message will be ignored!
package hookfile

import (
	"errors"
	"os"
	"sync/atomic"

	libiot "github.com/nabbar/staticd/internal/ioutils"
	logcfg "github.com/nabbar/staticd/internal/logger/config"
	loglvl "github.com/nabbar/staticd/internal/logger/level"
	logtps "github.com/nabbar/staticd/internal/logger/types"
	"github.com/sirupsen/logrus"
)

// errMissingFilePath is returned when New is called with an empty Filepath.
var errMissingFilePath = errors.New("hookfile: missing file path")

// HookFile defines the interface for a logrus hook that writes logs to files.
// It embeds the base Hook interface from the logger's types package.
type HookFile interface {
	logtps.Hook
}

// New creates and initializes a new file hook with the specified options and
// formatter.
//
// The function creates the parent directory when CreatePath is set, and
// opens (or creates) the target file in append mode. If no log levels are
// specified, it logs all levels by default.
func New(opt logcfg.OptionsFile, format logrus.Formatter) (HookFile, error) {
	if opt.Filepath == "" {
		return nil, errMissingFilePath
	}

	var LVLs = make([]logrus.Level, 0)

	if len(opt.LogLevel) > 0 {
		for _, ls := range opt.LogLevel {
			LVLs = append(LVLs, loglvl.Parse(ls).Logrus())
		}
	} else {
		LVLs = logrus.AllLevels
	}

	if opt.FileMode == 0 {
		opt.FileMode = 0644
	}

	if opt.PathMode == 0 {
		opt.PathMode = 0755
	}

	if opt.CreatePath {
		if e := libiot.PathCheckCreate(true, opt.Filepath, opt.FileMode.FileMode(), opt.PathMode.FileMode()); e != nil {
			return nil, e
		}
	}

	flags := os.O_APPEND | os.O_WRONLY
	if opt.Create {
		flags |= os.O_CREATE
	}

	fh, e := os.OpenFile(opt.Filepath, flags, opt.FileMode.FileMode())
	if e != nil {
		return nil, e
	}

	n := &hkf{
		o: ohkf{
			format:           format,
			levels:           LVLs,
			disableStack:     opt.DisableStack,
			disableTimestamp: opt.DisableTimestamp,
			enableTrace:      opt.EnableTrace,
			enableAccessLog:  opt.EnableAccessLog,
			filepath:         opt.Filepath,
			filemode:         opt.FileMode.FileMode(),
			filecreate:       opt.Create,
		},
		w: fh,
		r: new(atomic.Bool),
	}
	n.r.Store(true)

	return n, nil
}
