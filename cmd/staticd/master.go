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

	"github.com/fatih/color"

	"github.com/nabbar/staticd/internal/config"
	"github.com/nabbar/staticd/internal/console"
	"github.com/nabbar/staticd/internal/master"
)

func init() {
	console.SetColor(console.ColorPrint, int(color.FgGreen))
}

// runMaster loads the configuration, prints the startup banner, and
// hands off to the master supervisor, which re-execs this same binary
// in worker mode once per configured worker and blocks until a clean
// shutdown.
func runMaster(path string, dev bool) error {
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config %q: %w", path, err)
	}
	if dev {
		cfg.Development = true
	}

	log, lerr := newLogger(cfg, "master")
	if lerr != nil {
		return lerr
	}

	console.ColorPrint.PrintLnf("staticd master starting: %d worker(s), listening on %s, root %s",
		cfg.Workers, cfg.Listen, cfg.DocumentRoot)

	bin, eerr := os.Executable()
	if eerr != nil {
		return fmt.Errorf("resolving own executable path: %w", eerr)
	}

	// Watch the config file alongside SIGHUP: workers re-read the file
	// when they (re)start, so a change takes effect as the fleet cycles.
	// A file that no longer decodes keeps the last-good config.
	if watcher, werr := config.Watch(path, func(next *config.Config) {
		log.Info("configuration file changed; values apply to workers as they restart", map[string]interface{}{
			"workers": next.Workers,
			"listen":  next.Listen,
		})
	}, func(err error) {
		log.Warning("configuration reload failed, keeping last good config", err)
	}); werr == nil {
		defer func() { _ = watcher.Close() }()
	} else {
		log.Warning("unable to watch configuration file", werr)
	}

	var extra []string
	if cfg.Development {
		extra = append(extra, "--dev")
	}

	m := master.New(master.Config{
		BinaryPath:  bin,
		ExtraArgs:   extra,
		ConfigPath:  path,
		WorkerCount: cfg.Workers,
		CPUPin:      true,
		DevMode:     cfg.Development,
	}, log)

	return m.Run(context.Background())
}
