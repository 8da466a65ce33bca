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

package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	liberr "github.com/nabbar/staticd/internal/errors"
)

// Watcher reloads a configuration file on write and rename events
// (editors commonly replace a file rather than writing in place) and
// delivers the freshly decoded Config to onChange. Decode or validation
// failures are left for the caller to observe via errs and do not
// replace the last-good configuration.
type Watcher struct {
	fsw *fsnotify.Watcher
	v   *viper.Viper
}

// Watch starts watching the directory containing path for changes to
// that file. The caller must call Close when done.
func Watch(path string, onChange func(*Config), errs func(error)) (*Watcher, liberr.Error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ErrorConfigWatch.Error(liberr.New(0, err.Error()))
	}

	dir := filepath.Dir(path)
	if err = fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, ErrorConfigWatch.Error(liberr.New(0, err.Error()))
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	w := &Watcher{fsw: fsw, v: v}

	go w.loop(path, onChange, errs)

	return w, nil
}

func (w *Watcher) loop(path string, onChange func(*Config), errs func(error)) {
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if err := w.v.ReadInConfig(); err != nil {
				if errs != nil {
					errs(err)
				}
				continue
			}

			cfg, derr := decode(w.v)
			if derr != nil {
				if errs != nil {
					errs(derr)
				}
				continue
			}

			onChange(cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errs != nil {
				errs(err)
			}
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
