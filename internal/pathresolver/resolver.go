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

// Package pathresolver maps a request URI to an absolute filesystem path
// guaranteed to sit under the configured document root, rejecting any
// attempt at traversal or embedded-NUL smuggling before a single syscall
// touches the filesystem.
package pathresolver

import (
	"strings"

	liberr "github.com/nabbar/staticd/internal/errors"

	"path/filepath"
)

// MaxPathLen mirrors the common platform PATH_MAX; requests resolving to a
// longer path are rejected rather than risk a truncated open.
const MaxPathLen = 4096

// Resolver maps request URIs to paths beneath a fixed, canonicalized root.
type Resolver struct {
	root      string
	canonRoot string
}

// New canonicalizes root once at startup; root must already be an absolute
// path with the directory guaranteed to exist.
func New(root string) (*Resolver, liberr.Error) {
	cr, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, ErrorCanonicalize.Error(liberr.New(0, err.Error()))
	}

	return &Resolver{
		root:      root,
		canonRoot: filepath.Clean(cr),
	}, nil
}

// Root returns the configured (non-canonicalized) document root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve turns a request URI (beginning with "/", no query string) into an
// absolute filesystem path under the document root, or an error describing
// why the request must be rejected with 403.
func (r *Resolver) Resolve(uri string) (string, liberr.Error) {
	if strings.Contains(uri, "..") {
		return "", ErrorTraversal.Error(nil)
	}
	if strings.IndexByte(uri, 0) >= 0 {
		return "", ErrorNullByte.Error(nil)
	}

	joined := filepath.Join(r.root, filepath.FromSlash(uri))
	if len(joined) > MaxPathLen {
		return "", ErrorTooLong.Error(nil)
	}

	canon, cerr := canonicalizeExistingOrParent(joined)
	if cerr != nil {
		return "", ErrorCanonicalize.Error(liberr.New(0, cerr.Error()))
	}

	if !underRoot(canon, r.canonRoot) {
		return "", ErrorOutsideRoot.Error(nil)
	}

	return canon, nil
}

// canonicalizeExistingOrParent resolves symlinks on the full path; if the
// leaf does not exist yet, it canonicalizes the parent directory instead
// and reattaches the leaf, mirroring the create-before-exists semantics
// this server never itself exercises but preserves for resolver parity.
func canonicalizeExistingOrParent(path string) (string, error) {
	if c, err := filepath.EvalSymlinks(path); err == nil {
		return filepath.Clean(c), nil
	}

	dir, leaf := filepath.Split(path)
	cdir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", err
	}

	return filepath.Join(cdir, leaf), nil
}

// underRoot reports whether canon is the root itself or a path strictly
// beneath it, preventing a sibling-prefix bypass such as "/rootfoo".
func underRoot(canon, canonRoot string) bool {
	if canon == canonRoot {
		return true
	}

	if !strings.HasPrefix(canon, canonRoot) {
		return false
	}

	rest := canon[len(canonRoot):]
	return strings.HasPrefix(rest, string(filepath.Separator))
}
