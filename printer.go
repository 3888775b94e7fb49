package markdown

import (
	"bytes"

	"golang.org/x/net/html"
)

// Printer is the HTML serializer's output sink: a thin wrapper around
// bytes.Buffer, typed so plugin authors get a stable surface instead of a
// raw buffer.
type Printer struct {
	buf bytes.Buffer
}

// NewPrinter returns an empty Printer.
func NewPrinter() *Printer { return &Printer{} }

// WriteString writes s verbatim, with no escaping.
func (w *Printer) WriteString(s string) { w.buf.WriteString(s) }

// WriteByte writes a single byte verbatim.
func (w *Printer) WriteByte(b byte) { w.buf.WriteByte(b) }

// WriteEscaped HTML-escapes s before writing it — the path every piece of
// user-supplied text content takes on its way to the page.
func (w *Printer) WriteEscaped(s string) { w.buf.WriteString(html.EscapeString(s)) }

// String returns the accumulated output.
func (w *Printer) String() string { return w.buf.String() }
