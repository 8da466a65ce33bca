//go:build !windows && !plan9 && !js

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
	"log/syslog"
	"os"
	"path/filepath"

	logcfg "github.com/nabbar/staticd/internal/logger/config"
	"github.com/sirupsen/logrus"
)

// syslogWriter abstracts the platform syslog client so model.go and
// iowriter.go never import log/syslog directly.
type syslogWriter interface {
	writeLevel(lvl logrus.Level, msg string) error
	Close() error
}

// sysWriter wraps a *syslog.Writer opened at the facility requested in
// options. The daemon is a Unix process by design (it already relies on
// golang.org/x/sys/unix elsewhere), so the standard library's syslog
// client is the natural fit and needs no network/protocol abstraction
// layer of its own.
type sysWriter struct {
	w *syslog.Writer
}

func dial(opt logcfg.OptionsSyslog) (syslogWriter, error) {
	facility, e := parseFacility(opt.Facility)
	if e != nil {
		return nil, e
	}

	tag := opt.Tag
	if tag == "" {
		tag = filepath.Base(os.Args[0])
	}

	w, err := syslog.Dial(opt.Network, opt.Host, facility, tag)
	if err != nil {
		return nil, err
	}

	return &sysWriter{w: w}, nil
}

// parseFacility maps the configured facility name to its syslog.Priority,
// defaulting to LOG_DAEMON for an empty or unrecognized value.
func parseFacility(name string) (syslog.Priority, error) {
	switch name {
	case "kern":
		return syslog.LOG_KERN, nil
	case "user", "":
		return syslog.LOG_USER, nil
	case "mail":
		return syslog.LOG_MAIL, nil
	case "daemon":
		return syslog.LOG_DAEMON, nil
	case "auth":
		return syslog.LOG_AUTH, nil
	case "syslog":
		return syslog.LOG_SYSLOG, nil
	case "lpr":
		return syslog.LOG_LPR, nil
	case "news":
		return syslog.LOG_NEWS, nil
	case "uucp":
		return syslog.LOG_UUCP, nil
	case "cron":
		return syslog.LOG_CRON, nil
	case "authpriv":
		return syslog.LOG_AUTHPRIV, nil
	case "ftp":
		return syslog.LOG_FTP, nil
	case "local0":
		return syslog.LOG_LOCAL0, nil
	case "local1":
		return syslog.LOG_LOCAL1, nil
	case "local2":
		return syslog.LOG_LOCAL2, nil
	case "local3":
		return syslog.LOG_LOCAL3, nil
	case "local4":
		return syslog.LOG_LOCAL4, nil
	case "local5":
		return syslog.LOG_LOCAL5, nil
	case "local6":
		return syslog.LOG_LOCAL6, nil
	case "local7":
		return syslog.LOG_LOCAL7, nil
	default:
		return syslog.LOG_DAEMON, nil
	}
}

func (s *sysWriter) writeLevel(lvl logrus.Level, msg string) error {
	switch lvl {
	case logrus.PanicLevel:
		return s.w.Emerg(msg)
	case logrus.FatalLevel:
		return s.w.Crit(msg)
	case logrus.ErrorLevel:
		return s.w.Err(msg)
	case logrus.WarnLevel:
		return s.w.Warning(msg)
	case logrus.InfoLevel:
		return s.w.Info(msg)
	case logrus.DebugLevel, logrus.TraceLevel:
		return s.w.Debug(msg)
	default:
		return s.w.Info(msg)
	}
}

func (s *sysWriter) Close() error {
	return s.w.Close()
}
