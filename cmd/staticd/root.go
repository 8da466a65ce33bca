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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nabbar/staticd/internal/master"
)

const defaultConfigPath = "config/server.conf"

// newRootCmd builds the `staticd [-d|--dev] [-h|--help] [config_file]`
// command described for the CLI collaborator: a positional config path
// defaulting to config/server.conf, and a development-mode flag that
// is threaded through to the rate limiter (unconditional admission).
func newRootCmd() *cobra.Command {
	var dev bool

	cmd := &cobra.Command{
		Use:           "staticd [config_file]",
		Short:         "A multi-process, event-driven static file server",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// A peer resetting mid-write must surface as EPIPE on the
			// syscall, never as a process-killing signal.
			signal.Ignore(syscall.SIGPIPE)

			path := defaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if isWorkerProcess() {
				return runWorker(path, dev)
			}
			return runMaster(path, dev)
		},
	}

	cmd.Flags().BoolVarP(&dev, "dev", "d", false, "run in development mode: the rate limiter admits every connection unconditionally")

	return cmd
}

// isWorkerProcess reports whether this process was re-exec'd by a
// master as one of its worker children.
func isWorkerProcess() bool {
	return os.Getenv(master.EnvMode) == master.EnvModeWorker
}
