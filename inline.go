package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Inline-level grammar: emphasis/strong, links, code spans, smart
// punctuation, and the leaf-level catch-all that turns unmatched bytes
// into Text. Dispatch is by trigger character through
// Parser.inlineDispatch (parser.go).
//
// Every inlineRule here receives data/offset in the SAME coordinate system
// as the data slice handed to parseInlinesInto: offset 0 corresponds to
// data[0], not to any outer buffer position. parseInlinesInto shifts the
// produced node (and its children) by base before splicing it into the
// parent.

// intelliJDummyByte is the sentinel byte recognized in place of
// IntelliJ's private-use "dummy identifier" placeholder character: callers
// that need to round-trip IntelliJ editing buffers translate the
// placeholder to this byte before parsing, and it is silently dropped from
// output.
const intelliJDummyByte = 0x01

// parseInlinesInto is the inline driver and one of the deadline poll
// points. It walks data byte by byte, dispatching on trigger characters
// and otherwise accumulating plain Text, coalescing adjacent Text children
// via Node.Append.
func (p *Parser) parseInlinesInto(parent *Node, data []byte, base int) {
	p.checkDeadline()
	p.pushNesting("inline")
	defer p.popNesting()

	textStart := 0
	flush := func(end int) {
		if end <= textStart {
			return
		}
		t := NewNode(KindText, base+textStart, base+end)
		t.Text = string(data[textStart:end])
		parent.Append(t)
	}

	i := 0
	for i < len(data) {
		c := data[i]
		if rule := p.inlineDispatch[c]; rule != nil {
			if node, consumed, ok := rule(p, data, i); ok && consumed > 0 {
				flush(i)
				if node != nil {
					node.Shift(base)
					parent.Append(node)
				}
				i += consumed
				textStart = i
				continue
			}
		}
		if p.ext.Has(EXT_AUTOLINKS) && !p.insideLink {
			if node, consumed, ok := ruleBareAutolink(p, data, i); ok {
				flush(i)
				node.Shift(base)
				parent.Append(node)
				i += consumed
				textStart = i
				continue
			}
		}
		i++
	}
	flush(len(data))
}

// --- Escapes & entities ---

func ruleEscape(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+1 >= len(data) || !ispunct(data[offset+1]) {
		return nil, 0, false
	}
	node := NewNode(KindSpecialText, offset, offset+2)
	node.Text = string(data[offset+1])
	return node, 2, true
}

// ruleEntity recognizes "&name;", "&#NNN;", "&#xHHHH;".
// html.UnescapeString validates a named match; numeric references are
// accepted on syntax alone. A valid entity passes through verbatim as
// Text, while a bare ampersand (or an unrecognized name) becomes a
// SpecialText that gets encoded on emit.
func ruleEntity(p *Parser, data []byte, offset int) (*Node, int, bool) {
	j := offset + 1
	numeric := false
	valid := true
	if j < len(data) && data[j] == '#' {
		numeric = true
		j++
		if j < len(data) && (data[j] == 'x' || data[j] == 'X') {
			j++
			start := j
			for j < len(data) && isHexDigit(data[j]) {
				j++
			}
			if j == start {
				valid = false
			}
		} else {
			start := j
			for j < len(data) && isdigit(data[j]) {
				j++
			}
			if j == start {
				valid = false
			}
		}
	} else {
		start := j
		for j < len(data) && isalnum(data[j]) {
			j++
		}
		if j == start {
			valid = false
		}
	}
	if valid && (j >= len(data) || data[j] != ';') {
		valid = false
	}
	if valid {
		j++
		raw := string(data[offset:j])
		if !numeric && html.UnescapeString(raw) == raw {
			valid = false
		} else {
			lower := strings.ToLower(raw)
			if lower == "&nbsp;" || lower == "&#160;" || lower == "&#xa0;" {
				return NewNode(KindNbsp, offset, j), j - offset, true
			}
			node := NewNode(KindText, offset, j)
			node.Text = raw
			return node, j - offset, true
		}
	}
	node := NewNode(KindSpecialText, offset, offset+1)
	node.Text = "&"
	return node, 1, true
}

func isHexDigit(c byte) bool {
	return isdigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// --- Angle-bracket forms: autolink, mail link, inline HTML ---

func ruleLAngle(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if node, consumed, ok := ruleAutolinkAngle(p, data, offset); ok {
		return node, consumed, true
	}
	if node, consumed, ok := ruleMailAngle(p, data, offset); ok {
		return node, consumed, true
	}
	if node, consumed, ok := ruleInlineHTML(p, data, offset); ok {
		return node, consumed, true
	}
	// A '<' that opens nothing still can't reach the page raw.
	node := NewNode(KindSpecialText, offset, offset+1)
	node.Text = "<"
	return node, 1, true
}

var autolinkSchemes = []string{"http://", "https://", "ftp://", "mailto:", "news:", "irc://"}

func ruleAutolinkAngle(p *Parser, data []byte, offset int) (*Node, int, bool) {
	j := offset + 1
	start := j
	for j < len(data) && data[j] != '>' && data[j] != ' ' && data[j] != '\t' && data[j] != '\n' {
		j++
	}
	if j >= len(data) || data[j] != '>' || j == start {
		return nil, 0, false
	}
	raw := string(data[start:j])
	matched := false
	for _, sc := range autolinkSchemes {
		if strings.HasPrefix(raw, sc) {
			matched = true
			break
		}
	}
	if !matched {
		return nil, 0, false
	}
	node := NewNode(KindAutoLink, offset, j+1)
	node.URL = raw
	node.Text = raw
	return node, j + 1 - offset, true
}

func ruleMailAngle(p *Parser, data []byte, offset int) (*Node, int, bool) {
	j := offset + 1
	start := j
	sawAt := false
	for j < len(data) && data[j] != '>' && data[j] != ' ' && data[j] != '\t' && data[j] != '\n' {
		if data[j] == '@' {
			sawAt = true
		}
		j++
	}
	if !sawAt || j >= len(data) || data[j] != '>' {
		return nil, 0, false
	}
	raw := string(data[start:j])
	if strings.Contains(raw, "://") {
		return nil, 0, false
	}
	node := NewNode(KindMailLink, offset, j+1)
	node.URL = raw
	node.Text = raw
	return node, j + 1 - offset, true
}

// ruleInlineHTML passes through a bare tag, closing tag, or comment
// verbatim. The node is produced whether or not inline HTML is
// suppressed; suppression just empties its text.
func ruleInlineHTML(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+3 < len(data) && data[offset+1] == '!' && data[offset+2] == '-' && data[offset+3] == '-' {
		end := offset + 4
		for end+2 < len(data) && !(data[end] == '-' && data[end+1] == '-' && data[end+2] == '>') {
			end++
		}
		if end+2 >= len(data) {
			return nil, 0, false
		}
		end += 3
		return newInlineHTMLNode(p, data, offset, end), end - offset, true
	}
	j := offset + 1
	if j < len(data) && data[j] == '/' {
		j++
	}
	tagStart := j
	for j < len(data) && isalnum(data[j]) {
		j++
	}
	if j == tagStart {
		return nil, 0, false
	}
	for j < len(data) && data[j] != '>' && data[j] != '\n' {
		j++
	}
	if j >= len(data) || data[j] != '>' {
		return nil, 0, false
	}
	end := j + 1
	return newInlineHTMLNode(p, data, offset, end), end - offset, true
}

func newInlineHTMLNode(p *Parser, data []byte, offset, end int) *Node {
	node := NewNode(KindInlineHTML, offset, end)
	if !p.ext.Has(EXT_SUPPRESS_INLINE_HTML) {
		node.Text = string(data[offset:end])
	}
	return node
}

// --- Bare-URL autolinking (autolinks extension) ---

var bareAutolinkSchemes = []string{"https://", "http://", "ftp://"}

func ruleBareAutolink(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset > 0 && isalnum(data[offset-1]) {
		return nil, 0, false
	}
	matched := ""
	for _, sc := range bareAutolinkSchemes {
		if hasPrefixAt(data, offset, sc) {
			matched = sc
			break
		}
	}
	if matched == "" {
		return nil, 0, false
	}
	end := offset + len(matched)
	for end < len(data) && !isspace(data[end]) && data[end] != '<' && data[end] != '>' && data[end] != '"' {
		end++
	}
	for end > offset+len(matched) {
		switch data[end-1] {
		case '.', ',', ';', ':', '!', '?', ')', ']':
			end--
			continue
		}
		break
	}
	if end <= offset+len(matched) {
		return nil, 0, false
	}
	url := string(data[offset:end])
	node := NewNode(KindAutoLink, offset, end)
	node.URL = url
	node.Text = url
	return node, end - offset, true
}

func hasPrefixAt(data []byte, offset int, s string) bool {
	if offset+len(s) > len(data) {
		return false
	}
	return string(data[offset:offset+len(s)]) == s
}

// --- Code spans ---

func ruleCodeSpan(p *Parser, data []byte, offset int) (*Node, int, bool) {
	runLen := 0
	for offset+runLen < len(data) && data[offset+runLen] == '`' {
		runLen++
	}
	i := offset + runLen
	for i < len(data) {
		if data[i] == '`' {
			closeStart := i
			closeLen := 0
			for i < len(data) && data[i] == '`' {
				closeLen++
				i++
			}
			if closeLen == runLen {
				content := data[offset+runLen : closeStart]
				node := NewNode(KindCode, offset, i)
				node.Text = string(trimCodeSpanContent(content))
				return node, i - offset, true
			}
			continue
		}
		i++
	}
	return nil, 0, false
}

// trimCodeSpanContent strips one leading and one trailing space when the
// content both starts and ends with a space and isn't all whitespace, so
// "`` `x` ``" round-trips the surrounding backticks.
func trimCodeSpanContent(b []byte) []byte {
	if len(b) >= 2 && b[0] == ' ' && b[len(b)-1] == ' ' && len(bytes.TrimSpace(b)) > 0 {
		return b[1 : len(b)-1]
	}
	return b
}

// --- Line breaks ---

func ruleLineBreak(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset >= len(data)-1 {
		return nil, 0, false
	}
	if p.ext.Has(EXT_HARDWRAPS) {
		return NewNode(KindLineBreak, offset, offset+1), 1, true
	}
	if offset >= 2 && data[offset-1] == ' ' && data[offset-2] == ' ' {
		return NewNode(KindLineBreak, offset, offset+1), 1, true
	}
	return nil, 0, false
}

// --- Emphasis & strong ---

func ruleEmphStar(p *Parser, data []byte, offset int) (*Node, int, bool) {
	return p.parseEmphOrStrong(data, offset, '*')
}

func ruleEmphUnderscore(p *Parser, data []byte, offset int) (*Node, int, bool) {
	return p.parseEmphOrStrong(data, offset, '_')
}

// parseEmphOrStrong is the shared emphasis/strong rule: it decides
// whether to attempt strong (2 markers), emphasis (1 marker), or, when 3+
// markers run together, the close-char-stealing "***x*** = strong(em(x))"
// nesting.
func (p *Parser) parseEmphOrStrong(data []byte, offset int, char byte) (*Node, int, bool) {
	runLen := 0
	for offset+runLen < len(data) && data[offset+runLen] == char {
		runLen++
	}
	if runLen == 0 || !p.mayEnterEmph(data, offset, char) {
		return nil, 0, false
	}
	if runLen >= 3 {
		if node, consumed, ok := p.closeStolenEmphStrong(data, offset, char); ok {
			return node, consumed, true
		}
	}
	if runLen >= 2 {
		if node, consumed, ok := p.matchEmphDelim(data, offset, char, 2, KindStrong); ok {
			return node, consumed, true
		}
	}
	return p.matchEmphDelim(data, offset, char, 1, KindEmphasis)
}

// mayEnterEmph: the preceding token must be whitespace or start of
// input; with relaxed-strong-emphasis-rules, any non-alphanumeric opens
// '*', and a non-alphanumeric non-underscore opens '_'.
func (p *Parser) mayEnterEmph(data []byte, offset int, char byte) bool {
	if offset == 0 {
		return true
	}
	prev := data[offset-1]
	if isspace(prev) {
		return true
	}
	if !p.ext.Has(EXT_RELAXED_STRONG_EMPHASIS_RULES) {
		return false
	}
	if char == '*' {
		return !isalnum(prev)
	}
	return !isalnum(prev) && prev != '_'
}

// mayCloseEmph is the "may close" contract: never preceded by whitespace,
// and an underscore close may not touch a following alphanumeric unless
// relaxed-strong-emphasis-rules is on.
func (p *Parser) mayCloseEmph(data []byte, closeStart, closeEnd int, char byte) bool {
	if closeStart > 0 && isspace(data[closeStart-1]) {
		return false
	}
	if char == '_' && closeEnd < len(data) && isalnum(data[closeEnd]) && !p.ext.Has(EXT_RELAXED_STRONG_EMPHASIS_RULES) {
		return false
	}
	return true
}

// findEmphClose scans from start for the first run of char with length >=
// markerLen satisfying mayCloseEmph, stopping at a blank line (an emphasis
// span cannot cross a paragraph break).
func (p *Parser) findEmphClose(data []byte, start int, char byte, markerLen int) (int, bool) {
	i := start
	for i < len(data) {
		if data[i] == '\n' && isBlankLine(data, i+1) {
			return 0, false
		}
		if data[i] == char {
			run := 0
			for i+run < len(data) && data[i+run] == char {
				run++
			}
			if run >= markerLen && p.mayCloseEmph(data, i, i+run, char) {
				return i, true
			}
			i += run
			continue
		}
		i++
	}
	return 0, false
}

func (p *Parser) matchEmphDelim(data []byte, offset int, char byte, markerLen int, kind Kind) (*Node, int, bool) {
	contentStart := offset + markerLen
	closeIdx, ok := p.findEmphClose(data, contentStart, char, markerLen)
	if !ok || closeIdx == contentStart {
		return nil, 0, false
	}
	node := NewNode(kind, offset, closeIdx+markerLen)
	node.OpenChars = strings.Repeat(string(char), markerLen)
	node.Closed = true
	p.parseInlinesInto(node, data[contentStart:closeIdx], contentStart)
	return node, (closeIdx + markerLen) - offset, true
}

// closeStolenEmphStrong handles a 3-run delimiter: the outer Strong
// consumes 2 of the 3 opening chars, the inner Emphasis takes the third,
// and both close against the same 3-char closing run. One closing char is
// reassigned from the inner node to the outer, which is what makes
// "***x***" come out as strong(em(x)) without unbounded look-ahead.
func (p *Parser) closeStolenEmphStrong(data []byte, offset int, char byte) (*Node, int, bool) {
	contentStart := offset + 3
	closeIdx, ok := p.findEmphClose(data, contentStart, char, 3)
	if !ok || closeIdx == contentStart {
		return nil, 0, false
	}
	em := NewNode(KindEmphasis, offset+2, closeIdx+1)
	em.OpenChars = string(char)
	em.Closed = true
	p.parseInlinesInto(em, data[contentStart:closeIdx], contentStart)

	strong := NewNode(KindStrong, offset, closeIdx+3)
	strong.OpenChars = strings.Repeat(string(char), 2)
	strong.Closed = true
	strong.Append(em)
	return strong, (closeIdx + 3) - offset, true
}

// --- Strikethrough (extension) ---

func ruleStrike(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+1 >= len(data) || data[offset+1] != '~' {
		return nil, 0, false
	}
	i := offset + 2
	for i+1 < len(data) {
		if data[i] == '\n' && isBlankLine(data, i) {
			return nil, 0, false
		}
		if data[i] == '~' && data[i+1] == '~' {
			node := NewNode(KindStrike, offset, i+2)
			p.parseInlinesInto(node, data[offset+2:i], offset+2)
			return node, (i + 2) - offset, true
		}
		i++
	}
	return nil, 0, false
}

// --- Smart quotes & smarts (extensions) ---

func ruleQuoteDouble(p *Parser, data []byte, offset int) (*Node, int, bool) {
	i := offset + 1
	for i < len(data) {
		if data[i] == '\n' && isBlankLine(data, i) {
			return nil, 0, false
		}
		if data[i] == '"' {
			node := NewNode(KindQuoted, offset, i+1)
			node.QuoteKind = QuoteDouble
			p.parseInlinesInto(node, data[offset+1:i], offset+1)
			return node, i + 1 - offset, true
		}
		i++
	}
	return nil, 0, false
}

// ruleQuoteSingleOrApostrophe distinguishes a contraction/possessive
// apostrophe (preceded directly by a letter or digit) from an opening
// single quote, per the smarts/quotes extensions sharing the same trigger
// byte.
func ruleQuoteSingleOrApostrophe(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset > 0 && isalnum(data[offset-1]) {
		return NewNode(KindApostrophe, offset, offset+1), 1, true
	}
	i := offset + 1
	for i < len(data) {
		if data[i] == '\n' && isBlankLine(data, i) {
			return nil, 0, false
		}
		if data[i] == '\'' {
			node := NewNode(KindQuoted, offset, i+1)
			node.QuoteKind = QuoteSingle
			p.parseInlinesInto(node, data[offset+1:i], offset+1)
			return node, i + 1 - offset, true
		}
		i++
	}
	return nil, 0, false
}

// ruleGuillemet recognizes «...» (QuoteDoubleAngle), dispatched off the
// lead byte (0xC2) of the two-byte UTF-8 encoding of U+00AB.
func ruleGuillemet(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+1 >= len(data) || data[offset] != 0xC2 || data[offset+1] != 0xAB {
		return nil, 0, false
	}
	i := offset + 2
	for i+1 < len(data) {
		if data[i] == 0xC2 && data[i+1] == 0xBB {
			node := NewNode(KindQuoted, offset, i+2)
			node.QuoteKind = QuoteDoubleAngle
			p.parseInlinesInto(node, data[offset+2:i], offset+2)
			return node, (i + 2) - offset, true
		}
		i++
	}
	return nil, 0, false
}

func ruleEllipsis(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+2 < len(data) && data[offset+1] == '.' && data[offset+2] == '.' {
		return NewNode(KindEllipsis, offset, offset+3), 3, true
	}
	return nil, 0, false
}

func ruleDashes(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+2 < len(data) && data[offset+1] == '-' && data[offset+2] == '-' {
		return NewNode(KindEmdash, offset, offset+3), 3, true
	}
	if offset+1 < len(data) && data[offset+1] == '-' {
		return NewNode(KindEndash, offset, offset+2), 2, true
	}
	return nil, 0, false
}

// --- IntelliJ dummy identifier placeholder (extension) ---

func ruleIntelliJDummyIdentifier(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if data[offset] != intelliJDummyByte {
		return nil, 0, false
	}
	return nil, 1, true
}

// --- Links, images, footnote refs, wiki links ---

func ruleLink(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if p.ext.Has(EXT_FOOTNOTES) {
		if node, consumed, ok := ruleFootnoteRef(p, data, offset); ok {
			return node, consumed, true
		}
	}
	if p.ext.Has(EXT_WIKILINKS) {
		if node, consumed, ok := ruleWikiLink(p, data, offset); ok {
			return node, consumed, true
		}
	}
	return p.ruleBracketLink(data, offset, false)
}

func ruleImage(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+1 >= len(data) || data[offset+1] != '[' {
		return nil, 0, false
	}
	node, consumed, ok := p.ruleBracketLink(data, offset+1, true)
	if !ok {
		return nil, 0, false
	}
	node.Start = offset
	return node, consumed + 1, true
}

func ruleFootnoteRef(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+1 >= len(data) || data[offset+1] != '^' {
		return nil, 0, false
	}
	i := offset + 2
	start := i
	for i < len(data) && data[i] != ']' && data[i] != '\n' {
		i++
	}
	if i >= len(data) || data[i] != ']' || i == start {
		return nil, 0, false
	}
	node := NewNode(KindFootnoteRef, offset, i+1)
	node.Label = string(data[start:i])
	return node, i + 1 - offset, true
}

func ruleWikiLink(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset+1 >= len(data) || data[offset+1] != '[' {
		return nil, 0, false
	}
	start := offset + 2
	i := start
	for i+1 < len(data) && !(data[i] == ']' && data[i+1] == ']') {
		if data[i] == '\n' && isBlankLine(data, i) {
			return nil, 0, false
		}
		i++
	}
	if i+1 >= len(data) {
		return nil, 0, false
	}
	inner := string(data[start:i])
	page, text := inner, inner
	if idx := strings.IndexByte(inner, '|'); idx >= 0 {
		page, text = inner[:idx], inner[idx+1:]
	}
	node := NewNode(KindWikiLink, offset, i+2)
	node.URL = page
	node.Text = text
	return node, (i + 2) - offset, true
}

// findBalancedBracketClose returns the index of the ']' matching the '['
// whose content starts at start (start is already past the opening '['),
// honoring nested brackets and backslash escapes. A blank line inside the
// brackets kills the match.
func findBalancedBracketClose(data []byte, start int) (int, bool) {
	depth := 1
	i := start
	for i < len(data) {
		switch data[i] {
		case '\\':
			i += 2
			continue
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		case '\n':
			if isBlankLine(data, i+1) {
				return 0, false
			}
		}
		i++
	}
	return 0, false
}

// ruleBracketLink implements both explicit and reference links and
// images: offset points at the '[' (for an image, the caller has already
// stepped past the leading '!'). isImage suppresses recursive inline
// parsing of the bracketed text; alt text is plain.
func (p *Parser) ruleBracketLink(data []byte, offset int, isImage bool) (*Node, int, bool) {
	if p.insideLink && !isImage {
		return nil, 0, false
	}
	p.checkDeadline()
	textStart := offset + 1
	textEnd, ok := findBalancedBracketClose(data, textStart)
	if !ok {
		return nil, 0, false
	}
	after := textEnd + 1

	if after < len(data) && data[after] == '(' {
		if isImage && p.ext.Has(EXT_MULTI_LINE_IMAGE_URLS) {
			if node, consumed, ok := p.tryMultiLineImageURL(data, offset, textStart, textEnd, after); ok {
				return node, consumed, true
			}
		}
		url, title, end, ok := parseParenURLTitle(data, after)
		if !ok {
			return nil, 0, false
		}
		kind := KindExpLink
		if isImage {
			kind = KindExpImage
		}
		node := NewNode(kind, offset, end)
		node.URL = url
		node.Title = title
		p.fillLinkBody(node, data, textStart, textEnd, isImage)
		return node, end - offset, true
	}

	key, rawKey, hasKey, dummy := "", "", false, false
	end := after
	if after < len(data) && data[after] == '[' {
		keyStart := after + 1
		keyEnd, ok := findBalancedBracketClose(data, keyStart)
		if !ok {
			return nil, 0, false
		}
		hasKey = true
		if keyEnd == keyStart {
			dummy = true
		} else {
			rawKey = string(data[keyStart:keyEnd])
			key = normalizeLabel(rawKey)
		}
		end = keyEnd + 1
	}

	kind := KindRefLink
	if isImage {
		kind = KindRefImage
	}
	node := NewNode(kind, offset, end)
	if hasKey {
		if dummy {
			if p.ext.Has(EXT_DUMMY_REFERENCE_KEY) {
				node.SetDummyReferenceKey()
			}
		} else {
			node.SetReferenceKey(key)
			node.KeyText = rawKey
		}
	}
	p.fillLinkBody(node, data, textStart, textEnd, isImage)
	return node, end - offset, true
}

func (p *Parser) fillLinkBody(node *Node, data []byte, textStart, textEnd int, isImage bool) {
	if isImage {
		node.Text = string(data[textStart:textEnd])
		return
	}
	wasInside := p.insideLink
	p.insideLink = true
	p.parseInlinesInto(node, data[textStart:textEnd], textStart)
	p.insideLink = wasInside
}

// parseParenURLTitle parses "(url title)" starting at openParenIdx,
// returning the byte index just past the closing ')'.
func parseParenURLTitle(data []byte, openParenIdx int) (url, title string, end int, ok bool) {
	j := openParenIdx + 1
	for j < len(data) && (data[j] == ' ' || data[j] == '\t' || data[j] == '\n') {
		j++
	}
	angle := j < len(data) && data[j] == '<'
	if angle {
		j++
	}
	urlStart := j
	depth := 0
	for j < len(data) {
		c := data[j]
		if angle {
			if c == '>' {
				break
			}
		} else {
			if c == '(' {
				depth++
			} else if c == ')' {
				if depth == 0 {
					break
				}
				depth--
			} else if c == ' ' || c == '\t' || c == '\n' {
				break
			}
		}
		j++
	}
	urlEnd := j
	if angle {
		if j >= len(data) || data[j] != '>' {
			return "", "", 0, false
		}
		j++
	}
	for j < len(data) && (data[j] == ' ' || data[j] == '\t' || data[j] == '\n') {
		j++
	}
	if j < len(data) && (data[j] == '"' || data[j] == '\'' || data[j] == '(') {
		openT := data[j]
		closeT := openT
		if openT == '(' {
			closeT = ')'
		}
		j++
		tStart := j
		for j < len(data) && data[j] != closeT {
			j++
		}
		if j >= len(data) {
			return "", "", 0, false
		}
		title = string(data[tStart:j])
		j++
		for j < len(data) && (data[j] == ' ' || data[j] == '\t') {
			j++
		}
	}
	if j >= len(data) || data[j] != ')' {
		return "", "", 0, false
	}
	url = string(data[urlStart:urlEnd])
	end = j + 1
	return url, title, end, true
}

// tryMultiLineImageURL implements the multi-line-image-urls extension:
// the URL opens as the final segment of the "![alt](" line and closes with
// ")" or `"title")` as the first non-indented segment of a later line;
// everything between (including blank lines) is absorbed verbatim into
// the URL.
func (p *Parser) tryMultiLineImageURL(data []byte, bangOffset, textStart, textEnd, parenOffset int) (*Node, int, bool) {
	restOfLine := data[parenOffset+1 : lineEnd(data, parenOffset)]
	if bytes.IndexByte(restOfLine, ')') >= 0 {
		return nil, 0, false // closes on the same line; not multi-line
	}
	urlStart := parenOffset + 1
	pos := nextLine(data, parenOffset)
	for pos < len(data) {
		lend := lineEnd(data, pos)
		line := data[pos:lend]
		trimmed := bytes.TrimLeft(line, " \t")
		indentLen := len(line) - len(trimmed)
		if len(trimmed) > 0 && trimmed[0] == ')' {
			node := NewNode(KindExpImage, bangOffset, pos+indentLen+1)
			node.URL = strings.TrimSpace(string(data[urlStart:pos]))
			node.Text = string(data[textStart:textEnd])
			return node, node.End - bangOffset, true
		}
		if len(trimmed) > 1 && trimmed[0] == '"' {
			j := 1
			tStart := j
			for j < len(trimmed) && trimmed[j] != '"' {
				j++
			}
			if j < len(trimmed) && j+1 < len(trimmed) && trimmed[j+1] == ')' {
				node := NewNode(KindExpImage, bangOffset, pos+indentLen+j+2)
				node.URL = strings.TrimSpace(string(data[urlStart:pos]))
				node.Title = string(trimmed[tStart:j])
				node.Text = string(data[textStart:textEnd])
				return node, node.End - bangOffset, true
			}
		}
		pos = nextLine(data, pos)
	}
	return nil, 0, false
}
