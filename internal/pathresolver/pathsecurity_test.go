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

package pathresolver_test

import (
	"os"
	"path/filepath"

	"github.com/nabbar/staticd/internal/pathresolver"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolver", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(root, "index.html"), []byte("hi"), 0o644)).To(Succeed())
		Expect(os.Mkdir(filepath.Join(root, "sub"), 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(root, "sub", "page.html"), []byte("sub"), 0o644)).To(Succeed())
	})

	Describe("Traversal protection", func() {
		It("rejects a path containing ..", func() {
			r, err := pathresolver.New(root)
			Expect(err).To(BeNil())

			_, rerr := r.Resolve("/../../etc/passwd")
			Expect(rerr).ToNot(BeNil())
		})

		It("rejects a path containing an embedded NUL byte", func() {
			r, err := pathresolver.New(root)
			Expect(err).To(BeNil())

			_, rerr := r.Resolve("/index.html\x00.png")
			Expect(rerr).ToNot(BeNil())
		})

		It("allows a plain file beneath the root", func() {
			r, err := pathresolver.New(root)
			Expect(err).To(BeNil())

			p, rerr := r.Resolve("/sub/page.html")
			Expect(rerr).To(BeNil())
			Expect(p).To(HavePrefix(r.Root()))
		})
	})

	Describe("Sibling-prefix bypass", func() {
		It("rejects a sibling directory sharing the root as a string prefix", func() {
			sibling := root + "foo"
			Expect(os.MkdirAll(sibling, 0o755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(sibling, "secret.txt"), []byte("x"), 0o644)).To(Succeed())

			r, err := pathresolver.New(root)
			Expect(err).To(BeNil())

			_, rerr := r.Resolve("/../" + filepath.Base(sibling) + "/secret.txt")
			Expect(rerr).ToNot(BeNil())
		})
	})
})
