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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/nabbar/staticd/internal/config"
	"github.com/nabbar/staticd/internal/logger"
	logcfg "github.com/nabbar/staticd/internal/logger/config"
	logfld "github.com/nabbar/staticd/internal/logger/fields"
)

const logFieldRole = "role"
const logFieldPID = "pid"

// newLogger builds the process-wide logger: stderr always, plus a file
// hook when cfg.LogFile is set. Both master and worker processes build
// their own instance since log state is never shared across processes
// (only the underlying file path is).
func newLogger(cfg *config.Config, role string) (logger.Logger, error) {
	log := logger.New(context.Background())

	opt := &logcfg.Options{
		InheritDefault: true,
		Stdout: &logcfg.OptionsStd{
			EnableAccessLog: true,
		},
	}

	if cfg.LogFile != "" {
		opt.LogFile = logcfg.OptionsFiles{
			{
				LogLevel:   nil,
				Filepath:   cfg.LogFile,
				Create:     true,
				CreatePath: true,
				FileMode:   0o644,
				PathMode:   0o755,
			},
		}
	}

	if err := log.SetOptions(opt); err != nil {
		return nil, fmt.Errorf("configuring %s logger: %w", role, err)
	}

	// Tags every entry with its role (master/worker) and pid, so a
	// shared log file can be filtered per process even though each
	// worker holds no state about its siblings.
	fields := logfld.New(context.Background()).Add(logFieldRole, role).Add(logFieldPID, os.Getpid())
	log.SetFields(fields)

	return log, nil
}
