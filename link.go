package markdown

import (
	"fmt"
	"strings"
)

// Link renderer seam: the serializer delegates every URL-bearing node to a
// LinkRenderer instead of writing <a>/<img> markup inline, so callers can
// subclass-by-embedding to add attributes (rel="nofollow" and the like).

// LinkRenderer controls how link-like nodes turn into HTML.
// MarkdownToHTML falls back to DefaultLinkRenderer when nil.
type LinkRenderer interface {
	Link(w *Printer, s *HTMLSerializer, n *Node, url, title string)
	Image(w *Printer, s *HTMLSerializer, n *Node, url, title, alt string)
	AutoLink(w *Printer, s *HTMLSerializer, n *Node, url string, isEmail bool)
	WikiLink(w *Printer, s *HTMLSerializer, n *Node, page, text string)
	Anchor(w *Printer, s *HTMLSerializer, id string)
}

// DefaultLinkRenderer is the built-in LinkRenderer: plain <a>/<img> tags,
// wiki page names turned into relative URLs, name-carrying anchors for
// headings, and entity-scrambling obfuscation for email autolinks.
type DefaultLinkRenderer struct{}

var _ LinkRenderer = DefaultLinkRenderer{}

func (DefaultLinkRenderer) Link(w *Printer, s *HTMLSerializer, n *Node, url, title string) {
	attrs := NewAttributesBuilder()
	attrs.Add("href", sanitizeURL(url))
	if title != "" {
		attrs.Add("title", title)
	}
	w.WriteString("<a")
	attrs.WriteTo(w)
	w.WriteByte('>')
	s.renderChildren(w, n)
	w.WriteString(`</a>`)
}

func (DefaultLinkRenderer) Image(w *Printer, s *HTMLSerializer, n *Node, url, title, alt string) {
	attrs := NewAttributesBuilder()
	attrs.Add("src", sanitizeURL(url))
	attrs.Add("alt", alt)
	if title != "" {
		attrs.Add("title", title)
	}
	w.WriteString("<img")
	attrs.WriteTo(w)
	w.WriteString(` />`)
}

// AutoLink renders a bare URL or an angle-bracket autolink. An email
// address is obfuscated by writing both the href and the visible text
// through entity-coded bytes, one "&#x..;" per byte, which defeats naive
// scrapers without hiding the address from a browser or screen reader.
func (DefaultLinkRenderer) AutoLink(w *Printer, s *HTMLSerializer, n *Node, url string, isEmail bool) {
	if isEmail {
		w.WriteString(`<a href="`)
		writeObfuscatedMailto(w, url)
		w.WriteString(`">`)
		writeObfuscatedText(w, url)
		w.WriteString(`</a>`)
		return
	}
	attrs := NewAttributesBuilder()
	attrs.Add("href", sanitizeURL(url))
	w.WriteString("<a")
	attrs.WriteTo(w)
	w.WriteByte('>')
	w.WriteEscaped(url)
	w.WriteString(`</a>`)
}

func (DefaultLinkRenderer) WikiLink(w *Printer, s *HTMLSerializer, n *Node, page, text string) {
	attrs := NewAttributesBuilder()
	attrs.Add("href", wikiLinkURL(page))
	w.WriteString("<a")
	attrs.WriteTo(w)
	w.WriteByte('>')
	w.WriteEscaped(text)
	w.WriteString(`</a>`)
}

// Anchor emits the empty named anchor a heading carries when anchor links
// are enabled.
func (DefaultLinkRenderer) Anchor(w *Printer, s *HTMLSerializer, id string) {
	w.WriteString(`<a name="`)
	w.WriteEscaped(id)
	w.WriteString(`"></a>`)
}

// sanitizeURL percent-encodes spaces, the one character that routinely
// slips into markdown link targets and breaks href parsing, without
// attempting a full URL-encoding pass that would double-encode targets
// that are already percent-encoded.
func sanitizeURL(url string) string {
	return strings.ReplaceAll(url, " ", "%20")
}

// wikiLinkURL turns a wiki page name into a relative page URL: spaces
// become dashes, each path byte outside the unreserved set is
// percent-encoded, ".html" is appended, and a trailing "#fragment" (if the
// page name carried one) survives as the URL fragment.
func wikiLinkURL(page string) string {
	page = strings.TrimSpace(page)
	fragment := ""
	if idx := strings.IndexByte(page, '#'); idx >= 0 {
		fragment = page[idx:]
		page = page[:idx]
	}
	page = strings.ReplaceAll(page, " ", "-")
	var b strings.Builder
	for i := 0; i < len(page); i++ {
		c := page[i]
		if isalnum(c) || c == '-' || c == '_' || c == '.' || c == '~' || c == '/' {
			b.WriteByte(c)
		} else {
			b.WriteString(percentEncode(c))
		}
	}
	return b.String() + ".html" + fragment
}

func writeObfuscatedMailto(w *Printer, address string) {
	w.WriteString("mailto:")
	writeObfuscatedText(w, address)
}

// writeObfuscatedText entity-encodes every byte of s as "&#xHH;".
func writeObfuscatedText(w *Printer, s string) {
	for i := 0; i < len(s); i++ {
		w.WriteString(fmt.Sprintf("&#x%x;", s[i]))
	}
}
