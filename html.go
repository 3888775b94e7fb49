package markdown

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// HTML serializer: a depth-first visitor over the AST that writes markup
// through a Printer, delegating link/image/autolink/wikilink rendering to
// a LinkRenderer, verbatim rendering to per-language VerbatimSerializer
// plugins, and falling back to SerializerPlugin for any node kind it
// doesn't recognize.
//
// Reference, abbreviation, and footnote side tables are resolved here, at
// serialization time, not during parsing: definitions can appear anywhere
// in a document, including after their first use.

// HTMLSerializer renders a parsed Root to an HTML fragment.
type HTMLSerializer struct {
	ext                 Extensions
	linkRenderer        LinkRenderer
	verbatimSerializers map[string]VerbatimSerializer
	Plugins             []SerializerPlugin
	HeaderIDComputer    HeaderIDComputer

	root       *Node
	usedIDs    map[string]int
	headingIDs map[*Node]string

	inTableHeader bool

	footnoteOrder []string
	footnoteNums  map[string]int

	abbrevKeysCache []string
}

// NewHTMLSerializer constructs a serializer for one Render call. A nil
// linkRenderer selects DefaultLinkRenderer.
func NewHTMLSerializer(ext Extensions, linkRenderer LinkRenderer, verbatimSerializers map[string]VerbatimSerializer) *HTMLSerializer {
	if linkRenderer == nil {
		linkRenderer = DefaultLinkRenderer{}
	}
	return &HTMLSerializer{
		ext:                 ext,
		linkRenderer:        linkRenderer,
		verbatimSerializers: verbatimSerializers,
	}
}

// Render walks root and returns the serialized HTML fragment. Heading
// anchor ids are computed in one document-order pass before any HTML is
// emitted, so they are stable no matter where a [TOC] marker sits.
func (s *HTMLSerializer) Render(root *Node) string {
	s.root = root
	w := NewPrinter()

	if s.needsHeadingIDs() {
		s.headingIDs = make(map[*Node]string)
		root.Walk(func(n *Node) bool {
			if n.Kind == KindHeading {
				s.headingIDs[n] = s.computeHeadingID(n)
			}
			return true
		})
	}

	s.renderChildren(w, root)
	s.renderFootnoteSection(w)
	return w.String()
}

func (s *HTMLSerializer) needsHeadingIDs() bool {
	return s.ext.Has(EXT_ANCHORLINKS) || s.ext.Has(EXT_EXTANCHORLINKS) || s.ext.Has(EXT_TOC)
}

// renderChildren renders every child of n in order. LinkRenderer
// implementations call this to render a link's inline content.
func (s *HTMLSerializer) renderChildren(w *Printer, n *Node) {
	for _, c := range n.Children {
		s.renderNode(w, c)
	}
}

func (s *HTMLSerializer) renderNode(w *Printer, n *Node) {
	switch n.Kind {
	case KindRoot:
		s.renderChildren(w, n)
	case KindPara:
		w.WriteString("<p>")
		s.renderChildren(w, n)
		w.WriteString("</p>\n")
	case KindBlockQuote:
		w.WriteString("<blockquote>\n")
		s.renderChildren(w, n)
		w.WriteString("</blockquote>\n")
	case KindVerbatim:
		s.renderVerbatim(w, n)
	case KindHTMLBlock:
		if n.Text != "" {
			w.WriteString(n.Text)
			w.WriteByte('\n')
		}
	case KindInlineHTML:
		w.WriteString(n.Text)
	case KindHeading:
		s.renderHeading(w, n)
	case KindBulletList:
		w.WriteString("<ul>\n")
		s.renderChildren(w, n)
		w.WriteString("</ul>\n")
	case KindOrderedList:
		w.WriteString("<ol>\n")
		s.renderChildren(w, n)
		w.WriteString("</ol>\n")
	case KindListItem:
		w.WriteString("<li>")
		s.renderChildren(w, n)
		w.WriteString("</li>\n")
	case KindTaskListItem:
		s.renderTaskListItem(w, n)
	case KindDefinitionList:
		w.WriteString("<dl>\n")
		s.renderChildren(w, n)
		w.WriteString("</dl>\n")
	case KindDefinitionTerm:
		w.WriteString("<dt>")
		s.renderChildren(w, n)
		w.WriteString("</dt>\n")
	case KindDefinition:
		w.WriteString("<dd>")
		s.renderChildren(w, n)
		w.WriteString("</dd>\n")
	case KindTable:
		w.WriteString("<table>\n")
		s.renderChildren(w, n)
		w.WriteString("</table>\n")
	case KindTableHeader:
		w.WriteString("<thead>\n")
		s.inTableHeader = true
		s.renderChildren(w, n)
		s.inTableHeader = false
		w.WriteString("</thead>\n")
	case KindTableBody:
		w.WriteString("<tbody>\n")
		s.renderChildren(w, n)
		w.WriteString("</tbody>\n")
	case KindTableRow:
		w.WriteString("<tr>\n")
		s.renderChildren(w, n)
		w.WriteString("</tr>\n")
	case KindTableCell:
		s.renderTableCell(w, n)
	case KindTableColumn:
		s.renderTableColumn(w, n)
	case KindTableCaption:
		w.WriteString("<caption>")
		s.renderChildren(w, n)
		w.WriteString("</caption>\n")
	case KindHorizontalRule:
		w.WriteString("<hr />\n")
	case KindLineBreak:
		w.WriteString("<br />\n")
	case KindEllipsis:
		w.WriteString("&hellip;")
	case KindEmdash:
		w.WriteString("&mdash;")
	case KindEndash:
		w.WriteString("&ndash;")
	case KindApostrophe:
		w.WriteString("&rsquo;")
	case KindNbsp:
		w.WriteString("&nbsp;")
	case KindText:
		s.renderText(w, n)
	case KindSpecialText:
		w.WriteEscaped(n.Text)
	case KindEmphasis:
		s.renderEmphLike(w, n, "em")
	case KindStrong:
		s.renderEmphLike(w, n, "strong")
	case KindStrike:
		w.WriteString("<del>")
		s.renderChildren(w, n)
		w.WriteString("</del>")
	case KindQuoted:
		s.renderQuoted(w, n)
	case KindCode:
		w.WriteString("<code>")
		w.WriteEscaped(n.Text)
		w.WriteString("</code>")
	case KindAutoLink:
		s.linkRenderer.AutoLink(w, s, n, n.URL, false)
	case KindMailLink:
		s.linkRenderer.AutoLink(w, s, n, n.URL, true)
	case KindAnchorLink:
		s.linkRenderer.Anchor(w, s, n.Label)
	case KindWikiLink:
		s.linkRenderer.WikiLink(w, s, n, n.URL, n.Text)
	case KindExpLink:
		s.linkRenderer.Link(w, s, n, n.URL, n.Title)
	case KindExpImage:
		s.linkRenderer.Image(w, s, n, n.URL, n.Title, n.Text)
	case KindRefLink:
		s.renderRefLink(w, n)
	case KindRefImage:
		s.renderRefImage(w, n)
	case KindFootnoteDef, KindAbbreviation, KindReference:
		// Side-table-only definitions: never tree children under normal
		// parsing, kept here only so a plugin that does splice one in
		// renders as a no-op instead of hitting the unknown-node
		// fallback.
	case KindFootnoteRef:
		s.renderFootnoteRef(w, n)
	case KindToc:
		s.renderToc(w, n)
	default:
		s.renderViaPlugin(w, n)
	}
}

// renderEmphLike emits <em>/<strong>, or, for a node that never found a
// valid close, the literal opening characters followed by its children.
func (s *HTMLSerializer) renderEmphLike(w *Printer, n *Node, tag string) {
	if !n.Closed {
		w.WriteEscaped(n.OpenChars)
		s.renderChildren(w, n)
		return
	}
	w.WriteByte('<')
	w.WriteString(tag)
	w.WriteByte('>')
	s.renderChildren(w, n)
	w.WriteString("</")
	w.WriteString(tag)
	w.WriteByte('>')
}

// --- Headings & anchor links ---

func (s *HTMLSerializer) renderHeading(w *Printer, n *Node) {
	id := s.headingIDs[n]
	tag := "h" + strconv.Itoa(n.Level)
	attrs := NewAttributesBuilder()
	if id != "" && s.ext.Has(EXT_TOC) && !s.ext.Has(EXT_ANCHORLINKS) && !s.ext.Has(EXT_EXTANCHORLINKS) {
		// With only the TOC extension active there is no named anchor to
		// point at, so the heading itself carries the id.
		attrs.Add("id", id)
	}
	w.WriteByte('<')
	w.WriteString(tag)
	attrs.WriteTo(w)
	w.WriteByte('>')
	switch {
	case id != "" && s.ext.Has(EXT_EXTANCHORLINKS) && s.ext.Has(EXT_EXTANCHORLINKS_WRAP):
		w.WriteString(`<a name="`)
		w.WriteEscaped(id)
		w.WriteString(`">`)
		s.renderChildren(w, n)
		w.WriteString(`</a>`)
	case id != "" && s.ext.Has(EXT_EXTANCHORLINKS):
		s.linkRenderer.Anchor(w, s, id)
		s.renderChildren(w, n)
	case id != "" && s.ext.Has(EXT_ANCHORLINKS):
		s.linkRenderer.Anchor(w, s, id)
		s.renderChildren(w, n)
	default:
		s.renderChildren(w, n)
	}
	w.WriteString(`</`)
	w.WriteString(tag)
	w.WriteString(">\n")
}

// computeHeadingID derives a heading's anchor id. A HeaderIDComputer may
// override the derived slug entirely; either way, collisions within one
// document are disambiguated with a numeric suffix.
func (s *HTMLSerializer) computeHeadingID(n *Node) string {
	derived := s.deriveHeadingID(n)
	id := derived
	if s.HeaderIDComputer != nil {
		existing := ""
		for _, c := range n.Children {
			if c.Kind == KindAnchorLink {
				existing = c.Label
			}
		}
		id = s.HeaderIDComputer.ComputeID(n, existing, derived)
		if id == "" {
			kept := n.Children[:0]
			for _, c := range n.Children {
				if c.Kind != KindAnchorLink {
					kept = append(kept, c)
				}
			}
			n.Children = kept
		}
	}
	if id == "" {
		return ""
	}
	if s.usedIDs == nil {
		s.usedIDs = make(map[string]int)
	}
	base := id
	for {
		if _, exists := s.usedIDs[id]; !exists {
			break
		}
		s.usedIDs[base]++
		id = base + "-" + strconv.Itoa(s.usedIDs[base])
	}
	s.usedIDs[id] = 0
	return id
}

// deriveHeadingID picks the id algorithm by extension: ext-anchor-links
// keeps letters and digits (lowercased) and collapses every other run
// into a single dash; plain anchor-links takes the first contiguous
// alphanumeric-and-space range of the heading text.
func (s *HTMLSerializer) deriveHeadingID(n *Node) string {
	text := plainText(n)
	if !s.ext.Has(EXT_EXTANCHORLINKS) && s.ext.Has(EXT_ANCHORLINKS) {
		return anchorLinkID(text)
	}
	return slugify(text)
}

// slugify produces a lowercase, hyphen-separated id from arbitrary text.
func slugify(text string) string {
	var b strings.Builder
	lastDash := true // suppresses a leading dash
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// anchorLinkID takes the first contiguous run of alphanumerics and spaces
// from text, lowercased with interior whitespace collapsed.
func anchorLinkID(text string) string {
	start, end := -1, -1
	for i := 0; i < len(text); i++ {
		c := text[i]
		if isalnum(c) || c == ' ' {
			if start < 0 {
				start = i
			}
			end = i + 1
			continue
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return ""
	}
	return strings.ToLower(strings.Join(strings.Fields(text[start:end]), " "))
}

// plainText extracts a node subtree's rendered text content, ignoring
// markup — used for heading slugs, TOC labels, and reference-key fallback
// resolution (a bracketed link with no explicit key resolves against its
// own text).
func plainText(n *Node) string {
	var b strings.Builder
	var walk func(*Node)
	walk = func(n *Node) {
		switch n.Kind {
		case KindText, KindSpecialText, KindCode:
			b.WriteString(n.Text)
		case KindEllipsis:
			b.WriteString("...")
		case KindEmdash:
			b.WriteString("--")
		case KindEndash:
			b.WriteString("-")
		case KindApostrophe:
			b.WriteString("'")
		case KindNbsp:
			b.WriteByte(' ')
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// --- TOC (extension) ---

func (s *HTMLSerializer) renderToc(w *Printer, n *Node) {
	w.WriteString("<nav class=\"toc\">\n<ul>\n")
	for _, h := range n.Headings {
		if h.Level > n.Level {
			continue
		}
		id := s.headingIDs[h]
		w.WriteString("<li>")
		if id != "" {
			w.WriteString(`<a href="#`)
			w.WriteEscaped(id)
			w.WriteString(`">`)
		}
		w.WriteEscaped(plainText(h))
		if id != "" {
			w.WriteString(`</a>`)
		}
		w.WriteString("</li>\n")
	}
	w.WriteString("</ul>\n</nav>\n")
}

// --- Verbatim ---

// renderVerbatim delegates to the per-language serializer registry (exact
// language tag first, then the default key); with no registry entry at
// all, the built-in form replaces the raw text's leading newlines with
// <br/> and HTML-encodes the remainder.
func (s *HTMLSerializer) renderVerbatim(w *Printer, n *Node) {
	if vs, ok := s.verbatimSerializers[n.Lang]; ok {
		vs.Serialize(w, n)
		return
	}
	if vs, ok := s.verbatimSerializers[VerbatimDefaultKey]; ok {
		vs.Serialize(w, n)
		return
	}
	w.WriteString("<pre><code")
	if n.Lang != "" {
		w.WriteString(` class="`)
		w.WriteEscaped(n.Lang)
		w.WriteByte('"')
	}
	w.WriteByte('>')
	text := n.Text
	for len(text) > 0 && text[0] == '\n' {
		w.WriteString("<br/>")
		text = text[1:]
	}
	w.WriteEscaped(text)
	w.WriteString("</code></pre>\n")
}

// --- Task list items (extension) ---

func (s *HTMLSerializer) renderTaskListItem(w *Printer, n *Node) {
	w.WriteString(`<li class="task-list-item"><input type="checkbox" disabled`)
	if n.Done {
		w.WriteString(" checked")
	}
	w.WriteString(" /> ")
	s.renderChildren(w, n)
	w.WriteString("</li>\n")
}

// --- Smart quotes ---

func (s *HTMLSerializer) renderQuoted(w *Printer, n *Node) {
	var open, close string
	switch n.QuoteKind {
	case QuoteDouble:
		open, close = "&ldquo;", "&rdquo;"
	case QuoteSingle:
		open, close = "&lsquo;", "&rsquo;"
	case QuoteDoubleAngle:
		open, close = "&laquo;", "&raquo;"
	}
	w.WriteString(open)
	s.renderChildren(w, n)
	w.WriteString(close)
}

// --- Tables ---

func (s *HTMLSerializer) renderTableCell(w *Printer, n *Node) {
	tag := "td"
	if s.inTableHeader {
		tag = "th"
	}
	attrs := NewAttributesBuilder()
	if align := alignAttr(n.Align); align != "" {
		attrs.Add("align", align)
	}
	if n.ColSpan > 1 {
		attrs.Add("colspan", strconv.Itoa(n.ColSpan))
	}
	w.WriteByte('<')
	w.WriteString(tag)
	attrs.WriteTo(w)
	w.WriteByte('>')
	s.renderChildren(w, n)
	w.WriteString(`</`)
	w.WriteString(tag)
	w.WriteString(">\n")
}

func (s *HTMLSerializer) renderTableColumn(w *Printer, n *Node) {
	attrs := NewAttributesBuilder()
	if align := alignAttr(n.Align); align != "" {
		attrs.Add("align", align)
	}
	w.WriteString("<col")
	attrs.WriteTo(w)
	w.WriteString(" />\n")
}

func alignAttr(a Alignment) string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	}
	return ""
}

// --- Plain text & abbreviations (extension) ---

// renderText prints Text content as-is: every byte that needs encoding
// was routed to a SpecialText node during parsing, and encoding here as
// well would double-escape entities that passed through verbatim.
func (s *HTMLSerializer) renderText(w *Printer, n *Node) {
	if s.ext.Has(EXT_ABBREVIATIONS) && len(s.root.Abbreviations) > 0 {
		s.writeTextWithAbbreviations(w, n.Text)
		return
	}
	w.WriteString(n.Text)
}

func (s *HTMLSerializer) abbrevKeysSorted() []string {
	if s.abbrevKeysCache != nil {
		return s.abbrevKeysCache
	}
	keys := make([]string, 0, len(s.root.Abbreviations))
	for k := range s.root.Abbreviations {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	s.abbrevKeysCache = keys
	return keys
}

// writeTextWithAbbreviations wraps whole-word occurrences of a defined
// abbreviation in <abbr title="...">, longest label first so "HTML5"
// isn't shadowed by a shorter "HTML" definition.
func (s *HTMLSerializer) writeTextWithAbbreviations(w *Printer, text string) {
	keys := s.abbrevKeysSorted()
	i, start := 0, 0
	for i < len(text) {
		matched := ""
		for _, k := range keys {
			if !strings.HasPrefix(text[i:], k) {
				continue
			}
			before := i == 0 || !isalnum(text[i-1])
			afterIdx := i + len(k)
			after := afterIdx >= len(text) || !isalnum(text[afterIdx])
			if before && after {
				matched = k
				break
			}
		}
		if matched == "" {
			i++
			continue
		}
		if i > start {
			w.WriteString(text[start:i])
		}
		abbr := s.root.Abbreviations[matched]
		w.WriteString(`<abbr title="`)
		w.WriteString(escapeAttrValue(abbr.Title))
		w.WriteString(`">`)
		w.WriteString(matched)
		w.WriteString(`</abbr>`)
		i += len(matched)
		start = i
	}
	if start < len(text) {
		w.WriteString(text[start:])
	}
}

// --- Reference-style links & images ---

// resolveReferenceKey: an explicit key ("[x][key]") is used verbatim; a
// dummy key ("[x][]") or no key at all ("[x]") resolves against the
// node's own text.
func (s *HTMLSerializer) resolveReferenceKey(n *Node, fallbackText string) string {
	if n.HasReferenceKey() && !n.IsDummyReferenceKey() {
		return n.ReferenceKey
	}
	return normalizeLabel(fallbackText)
}

func (s *HTMLSerializer) renderRefLink(w *Printer, n *Node) {
	key := s.resolveReferenceKey(n, plainText(n))
	ref := s.root.References[key]
	if ref == nil {
		// No definition: the original bracketed text stays visible,
		// second bracket pair included when the node carries a key
		// ("[x][]" without the dummy-reference-key extension carries
		// none and prints as "[x]").
		w.WriteByte('[')
		s.renderChildren(w, n)
		w.WriteByte(']')
		if n.HasReferenceKey() {
			w.WriteByte('[')
			w.WriteString(n.KeyText)
			w.WriteByte(']')
		}
		return
	}
	s.linkRenderer.Link(w, s, n, ref.URL, ref.Title)
}

func (s *HTMLSerializer) renderRefImage(w *Printer, n *Node) {
	key := s.resolveReferenceKey(n, n.Text)
	ref := s.root.References[key]
	if ref == nil {
		w.WriteString("![")
		w.WriteEscaped(n.Text)
		w.WriteByte(']')
		if n.HasReferenceKey() {
			w.WriteByte('[')
			w.WriteString(n.KeyText)
			w.WriteByte(']')
		}
		return
	}
	s.linkRenderer.Image(w, s, n, ref.URL, ref.Title, n.Text)
}

// --- Footnotes (extension) ---

// footnoteNumber allocates or reuses a footnote's 1-based number,
// assigned in first-reference order.
func (s *HTMLSerializer) footnoteNumber(label string) int {
	if s.footnoteNums == nil {
		s.footnoteNums = make(map[string]int)
	}
	if num, ok := s.footnoteNums[label]; ok {
		return num
	}
	s.footnoteOrder = append(s.footnoteOrder, label)
	num := len(s.footnoteOrder)
	s.footnoteNums[label] = num
	return num
}

func (s *HTMLSerializer) renderFootnoteRef(w *Printer, n *Node) {
	num := strconv.Itoa(s.footnoteNumber(n.Label))
	w.WriteString(`<sup id="fnref-`)
	w.WriteString(num)
	w.WriteString(`"><a href="#fn-`)
	w.WriteString(num)
	w.WriteString(`">`)
	w.WriteString(num)
	w.WriteString(`</a></sup>`)
}

// renderFootnoteSection emits the footnote list after the document body:
// one <li id="fn-N"> per referenced footnote, in numeric order.
// Defined-but-never-referenced footnotes are omitted.
func (s *HTMLSerializer) renderFootnoteSection(w *Printer) {
	if len(s.footnoteOrder) == 0 {
		return
	}
	w.WriteString("<div class=\"footnotes\">\n<hr />\n<ol>\n")
	for i, label := range s.footnoteOrder {
		def := s.root.Footnotes[label]
		num := strconv.Itoa(i + 1)
		w.WriteString(`<li id="fn-`)
		w.WriteString(num)
		w.WriteString(`">`)
		if def != nil {
			s.renderChildren(w, def)
		}
		w.WriteString(` <a href="#fnref-`)
		w.WriteString(num)
		w.WriteString(`" class="footnote-backref">&#8617;</a>`)
		w.WriteString("</li>\n")
	}
	w.WriteString("</ol>\n</div>\n")
}

// --- Plugin fallback ---

func (s *HTMLSerializer) renderViaPlugin(w *Printer, n *Node) {
	for _, pl := range s.Plugins {
		if pl.Render(w, n, s) {
			return
		}
	}
	log.WithField("kind", int(n.Kind)).Debug("markdown: no serializer plugin handled node kind")
	panic(errors.Wrapf(ErrParseFailure, "markdown: no serializer plugin handled node kind %d", int(n.Kind)))
}
