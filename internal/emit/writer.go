// Package emit turns a resolved driver.Document into C header/source pairs
// and Markdown documentation. Text generation is deterministic and
// line-oriented: every writer buffers into memory and flushes once per
// module, the append-aware discipline §9 calls for (acquire on first write,
// guaranteed flush/clear on exit of the packet emission scope).
package emit

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// writer is the shared append-aware buffer behind HeaderWriter and
// SourceWriter: it tracks whether the target file already existed (so a
// second emission pass can append new content between a closing guard
// instead of truncating), and the set of include directives already
// written to this buffer (so writeIncludeDirective is idempotent).
type writer struct {
	buf        bytes.Buffer
	path       string
	appending  bool
	includes   map[string]bool
	wroteAny   bool
}

func newWriter(path string) *writer {
	w := &writer{path: path, includes: map[string]bool{}}
	if _, err := os.Stat(path); err == nil {
		w.appending = true
	}
	return w
}

// isAppending reports whether this buffer's target file already existed
// when the writer was created.
func (w *writer) isAppending() bool { return w.appending }

// prepareToAppend loads the existing file's content (minus its trailing
// end-guard sentinel line) so new content lands before that guard is
// re-emitted, rather than after it. Include directives already in that
// content are recorded so writeIncludeDirective does not repeat them.
func (w *writer) prepareToAppend(endGuardSentinel string) error {
	if !w.appending {
		return nil
	}
	existing, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("reading existing file %q to append: %w", w.path, err)
	}
	text := string(existing)
	if idx := strings.LastIndex(text, endGuardSentinel); idx >= 0 {
		text = text[:idx]
	}
	for _, line := range strings.Split(text, "\n") {
		if name, ok := strings.CutPrefix(line, "#include "); ok {
			if unquoted, err := strconv.Unquote(name); err == nil {
				name = unquoted
			}
			w.includes[name] = true
		}
	}
	w.buf.WriteString(text)
	return nil
}

// write appends text verbatim followed by a newline.
func (w *writer) write(text string) {
	w.buf.WriteString(text)
	w.buf.WriteString("\n")
	if strings.TrimSpace(text) != "" {
		w.wroteAny = true
	}
}

// makeLineSeparator ensures exactly one blank line separates the previous
// content from whatever is written next.
func (w *writer) makeLineSeparator() {
	content := w.buf.String()
	trimmed := strings.TrimRight(content, "\n")
	w.buf.Reset()
	w.buf.WriteString(trimmed)
	w.buf.WriteString("\n\n")
}

// writeIncludeDirective emits #include "name" (or <name> when name looks
// like a system header) exactly once per buffer.
func (w *writer) writeIncludeDirective(name string) {
	if w.includes[name] {
		return
	}
	w.includes[name] = true
	if strings.HasPrefix(name, "<") {
		w.write(fmt.Sprintf("#include %s", name))
		return
	}
	w.write(fmt.Sprintf("#include %q", name))
}

// flush writes the accumulated buffer to disk, creating parent directories
// as needed.
func (w *writer) flush() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("creating output directory for %q: %w", w.path, err)
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening %q for write: %w", w.path, err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if _, err := bw.Write(w.buf.Bytes()); err != nil {
		return fmt.Errorf("writing %q: %w", w.path, err)
	}
	return bw.Flush()
}

// clear discards the accumulated buffer without writing it, the
// diagnostic-only exit path §5 requires every scope to guarantee.
func (w *writer) clear() {
	w.buf.Reset()
	w.wroteAny = false
}

// HeaderWriter accumulates one module's .h file: Doxygen banner (only when
// not appending), include guard, includes, enum declarations, struct
// declaration, and function prototypes.
type HeaderWriter struct {
	*writer
	guardName string
}

// NewHeaderWriter opens a header buffer for path, whose include-guard macro
// is derived from the file's base name.
func NewHeaderWriter(path string) *HeaderWriter {
	base := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return &HeaderWriter{writer: newWriter(path), guardName: base + "_H"}
}

// WriteBanner emits the Doxygen file banner, skipped entirely when this
// buffer is appending to an existing file (the banner already exists).
func (h *HeaderWriter) WriteBanner(fileName, comment string) {
	if h.isAppending() {
		return
	}
	h.write("/*!")
	h.write(" * \\file")
	h.write(" * \\brief " + comment)
	h.write(" */")
}

// WriteGuardOpen emits the #ifndef/#define include-guard pair, skipped when
// appending (the guard is already open in the file being appended to).
func (h *HeaderWriter) WriteGuardOpen() {
	if h.isAppending() {
		return
	}
	h.write("#ifndef " + h.guardName)
	h.write("#define " + h.guardName)
}

// WriteGuardClose emits the closing #endif sentinel line used by
// prepareToAppend to find where to splice new content back in.
func (h *HeaderWriter) WriteGuardClose() {
	h.write("#endif // " + h.guardName)
}

// EndGuardSentinel is the exact text PrepareToAppend searches for to strip
// the trailing guard before re-emitting new content.
func (h *HeaderWriter) EndGuardSentinel() string {
	return "#endif // " + h.guardName
}

// PrepareToAppend loads existing content (if any) minus its closing guard.
func (h *HeaderWriter) PrepareToAppend() error {
	return h.prepareToAppend(h.EndGuardSentinel())
}

// SourceWriter accumulates one module's .c file: includes (first emission
// only), static prototypes for sub-structure encoders/decoders, then the
// main encode/decode functions.
type SourceWriter struct {
	*writer
}

// NewSourceWriter opens a source buffer for path.
func NewSourceWriter(path string) *SourceWriter {
	return &SourceWriter{writer: newWriter(path)}
}

// WriteRuntimeIncludes emits the fieldencode.h, fielddecode.h and
// bitfieldspecial.h runtime headers (the ones generated code calls into),
// once per buffer, only on first emission of this file.
func (s *SourceWriter) WriteRuntimeIncludes() {
	if s.isAppending() {
		return
	}
	for _, h := range []string{"fieldencode.h", "fielddecode.h", "bitfieldspecial.h"} {
		s.writeIncludeDirective(h)
	}
}
