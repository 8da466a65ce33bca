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

// Command staticd is the server's entrypoint. It is a single binary
// that re-execs itself once per worker: the first instance started by
// an operator runs in master mode (supervising the fleet); each child
// it forks is the same binary in worker mode, selected by the
// STATICD_MODE environment variable set on the child's process. This
// mirrors the source daemon's fork/exec-self model without requiring a
// separate worker binary.
package main

import (
	"fmt"
	"os"

	"github.com/nabbar/staticd/internal/console"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		console.ColorPrint.Println(fmt.Sprintf("staticd: %s", err.Error()))
		os.Exit(1)
	}
}
