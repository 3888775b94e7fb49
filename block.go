package markdown

import "strings"

// Block-level grammar: headings, horizontal rules, block quotes,
// verbatim/fenced code, HTML passthrough, the [TOC] marker, and the
// paragraph catch-all. Lists live in lists.go, tables in tables.go, and
// reference/abbreviation/footnote/definition-list parsing in defs.go.

// blockTags are the HTML block-level tag names recognized as the start of
// an HTML block.
var blockTags = map[string]bool{
	"p": true, "dl": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "ol": true, "ul": true, "del": true, "div": true,
	"ins": true, "pre": true, "form": true, "math": true, "table": true,
	"iframe": true, "script": true, "fieldset": true, "noscript": true,
	"blockquote": true,
}

// lineEnd returns the index of the newline terminating the line starting
// at i, or len(data) if the line runs to end of input.
func lineEnd(data []byte, i int) int {
	j := i
	for j < len(data) && data[j] != '\n' {
		j++
	}
	return j
}

// nextLine returns the start of the line following the one at i (i.e.
// just past its newline), or len(data) at end of input.
func nextLine(data []byte, i int) int {
	j := lineEnd(data, i)
	if j < len(data) {
		j++
	}
	return j
}

// skipBlankLines advances i past any run of blank lines.
func skipBlankLines(data []byte, i int) int {
	for i < len(data) {
		j := lineEnd(data, i)
		if !isBlankLine(data, i) {
			break
		}
		if j >= len(data) {
			return j
		}
		i = j + 1
	}
	return i
}

// parseBlocks parses a sequence of blocks from data, appending each to
// parent.Children. Indices recorded here are always relative to data
// itself; a sub-parse remaps them to the original buffer afterward.
func (p *Parser) parseBlocks(parent *Node, data []byte, base int) {
	i := skipBlankLines(data, 0)
	for i < len(data) {
		consumed := p.parseOneBlock(parent, data, i)
		if consumed <= 0 {
			// Should not happen: Para is a universal catch-all. Guard
			// against infinite loops from a misbehaving plugin.
			consumed = nextLine(data, i) - i
			if consumed <= 0 {
				break
			}
		}
		i += consumed
		i = skipBlankLines(data, i)
	}
}

// parseOneBlock tries each block alternative in order, first match wins,
// and returns the number of bytes consumed.
func (p *Parser) parseOneBlock(parent *Node, data []byte, i int) int {
	p.pushNesting("block")
	defer p.popNesting()

	for _, pl := range p.blockPlugins {
		if node, n, ok := pl.MatchBlock(p, data, i); ok {
			parent.Append(node)
			return n
		}
	}
	if n := p.parseBlockQuote(parent, data, i); n > 0 {
		return n
	}
	if n := p.parseFencedCode(parent, data, i); n > 0 {
		return n
	}
	if n := p.parseVerbatim(parent, data, i); n > 0 {
		return n
	}
	if p.ext.Has(EXT_FOOTNOTES) {
		if n := p.parseFootnoteDef(data, i); n > 0 {
			return n
		}
	}
	if p.ext.Has(EXT_ABBREVIATIONS) {
		if n := p.parseAbbreviationDef(data, i); n > 0 {
			return n
		}
	}
	if n := p.parseReferenceDef(data, i); n > 0 {
		return n
	}
	if n := p.parseHorizontalRule(parent, data, i); n > 0 {
		return n
	}
	if n := p.parseHeading(parent, data, i); n > 0 {
		return n
	}
	if n := p.parseOrderedList(parent, data, i); n > 0 {
		return n
	}
	if n := p.parseBulletList(parent, data, i); n > 0 {
		return n
	}
	if n := p.parseHTMLBlock(parent, data, i); n > 0 {
		return n
	}
	if p.ext.Has(EXT_TABLES) {
		if n := p.parseTable(parent, data, i); n > 0 {
			return n
		}
	}
	if p.ext.Has(EXT_DEFINITIONS) {
		if n := p.parseDefinitionList(parent, data, i); n > 0 {
			return n
		}
	}
	if p.ext.Has(EXT_TOC) {
		if n := p.parseTocMarker(parent, data, i); n > 0 {
			return n
		}
	}
	return p.parsePara(parent, data, i)
}

// --- Headings ---

func (p *Parser) parseHeading(parent *Node, data []byte, i int) int {
	if n := p.parseATXHeading(parent, data, i); n > 0 {
		return n
	}
	return p.parseSetextHeading(parent, data, i)
}

func (p *Parser) parseATXHeading(parent *Node, data []byte, i int) int {
	j := i
	level := 0
	for j < len(data) && data[j] == '#' && level < 6 {
		level++
		j++
	}
	if level == 0 {
		return 0
	}
	if j < len(data) && data[j] == '#' {
		// more than 6 #'s: not a heading
		return 0
	}
	if p.ext.Has(EXT_ATXHEADERSPACE) {
		if j >= len(data) || (data[j] != ' ' && data[j] != '\t' && data[j] != '\n') {
			return 0
		}
	}
	end := lineEnd(data, j)
	text := data[j:end]
	text = bytesTrimLeadingSpace(text)
	text = trimTrailingATXHashes(text)

	h := NewNode(KindHeading, i, nextLine(data, i))
	h.Level = level
	p.parseInlinesInto(h, text, i+(j-i)+leadingSpaceLen(data[j:end]))
	parent.Append(h)
	return nextLine(data, i) - i
}

func leadingSpaceLen(b []byte) int {
	n := 0
	for n < len(b) && (b[n] == ' ' || b[n] == '\t') {
		n++
	}
	return n
}

func bytesTrimLeadingSpace(b []byte) []byte {
	n := leadingSpaceLen(b)
	return b[n:]
}

// trimTrailingATXHashes discards an optional trailing run of '#' and the
// whitespace before it.
func trimTrailingATXHashes(text []byte) []byte {
	t := strings.TrimRight(string(text), " \t\r")
	j := len(t)
	for j > 0 && t[j-1] == '#' {
		j--
	}
	if j < len(t) && j > 0 && (t[j-1] == ' ' || t[j-1] == '\t') {
		t = strings.TrimRight(t[:j], " \t")
	} else if j == len(t) {
		// no trailing hashes
	} else {
		t = t[:j]
	}
	return []byte(strings.TrimRight(t, " \t"))
}

// parseSetextHeading accepts a non-empty line followed by a line of ≥3 '='
// (level 1) or '-' (level 2), optionally trailing spaces, then newline.
func (p *Parser) parseSetextHeading(parent *Node, data []byte, i int) int {
	end := lineEnd(data, i)
	if end == i || isBlankLine(data, i) {
		return 0
	}
	if end >= len(data) {
		return 0
	}
	underlineStart := end + 1
	underlineEnd := lineEnd(data, underlineStart)
	if underlineStart >= len(data) {
		return 0
	}
	line := data[underlineStart:underlineEnd]
	trimmed := strings.TrimRight(string(line), " \t\r")
	if len(trimmed) < 3 {
		return 0
	}
	var level int
	switch trimmed[0] {
	case '=':
		level = 1
	case '-':
		level = 2
	default:
		return 0
	}
	for _, c := range trimmed {
		if byte(c) != trimmed[0] {
			return 0
		}
	}
	h := NewNode(KindHeading, i, nextLine(data, underlineStart))
	h.Level = level
	h.IsSetext = true
	text := data[i:end]
	p.parseInlinesInto(h, text, i)
	parent.Append(h)
	return nextLine(data, underlineStart) - i
}

// --- Horizontal rule ---

func (p *Parser) parseHorizontalRule(parent *Node, data []byte, i int) int {
	end := lineEnd(data, i)
	line := string(data[i:end])
	trimmed := strings.TrimRight(strings.ReplaceAll(line, " ", ""), "\r")
	if len(trimmed) < 3 {
		return 0
	}
	c := trimmed[0]
	if c != '*' && c != '-' && c != '_' {
		return 0
	}
	for _, r := range trimmed {
		if byte(r) != c {
			return 0
		}
	}
	after := nextLine(data, i)
	if !p.ext.Has(EXT_RELAXEDHRULES) {
		if after < len(data) && !isBlankLine(data, after) {
			return 0
		}
	}
	parent.Append(NewNode(KindHorizontalRule, i, after))
	return after - i
}

// --- Block quote ---

func (p *Parser) parseBlockQuote(parent *Node, data []byte, i int) int {
	_, n := leadingIndent(data[i:min(i+3, len(data))])
	if i+n >= len(data) || data[i+n] != '>' {
		return 0
	}

	var raw []byte
	var ixMap []int
	start := i
	pos := i
	for pos < len(data) {
		lend := lineEnd(data, pos)
		line := data[pos:lend]
		_, trimN := leadingIndent(line[:min(3, len(line))])
		hasMarker := trimN < len(line) && line[trimN] == '>'
		if !hasMarker {
			if isBlankLine(data, pos) {
				// Trailing blank lines are included only when followed
				// by another '>' line.
				k := pos
				for k < len(data) && isBlankLine(data, k) {
					k = nextLine(data, k)
				}
				if k < len(data) {
					kl := lineEnd(data, k)
					_, n2 := leadingIndent(data[k:min(k+3, len(data))])
					if k+n2 < kl && data[k+n2] == '>' {
						for pos < k {
							raw = append(raw, '\n')
							ixMap = append(ixMap, lineEnd(data, pos))
							pos = nextLine(data, pos)
						}
						continue
					}
				}
			}
			break
		}
		stripped := trimN + 1
		if stripped < len(line) && line[stripped] == ' ' {
			stripped++
		}
		for k := pos + stripped; k < lend; k++ {
			raw = append(raw, data[k])
			ixMap = append(ixMap, k)
		}
		raw = append(raw, '\n')
		ixMap = append(ixMap, lend)
		pos = nextLine(data, pos)
	}
	if len(raw) == 0 {
		return 0
	}
	raw = append(raw, '\n', '\n')
	ixMap = append(ixMap, pos, pos)

	bq := NewNode(KindBlockQuote, start, pos)
	p.subParseInto(bq, raw, ixMap)
	parent.Append(bq)
	return pos - start
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// --- Verbatim: indented code ---

func (p *Parser) parseVerbatim(parent *Node, data []byte, i int) int {
	start := i
	var raw []byte
	pos := i
	sawContent := false
	for pos < len(data) {
		lend := lineEnd(data, pos)
		line := data[pos:lend]
		if isBlankLine(data, pos) {
			if pos >= len(data) {
				break
			}
			// Peek ahead: keep blank lines only if more indented content
			// follows.
			k := nextLine(data, pos)
			for k < len(data) && isBlankLine(data, k) {
				k = nextLine(data, k)
			}
			if k < len(data) {
				col, _ := leadingIndent(data[k:lineEnd(data, k)])
				if col >= TAB_SIZE {
					raw = append(raw, '\n')
					pos = nextLine(data, pos)
					continue
				}
			}
			break
		}
		col, n := leadingIndent(line)
		if col < TAB_SIZE {
			break
		}
		sawContent = true
		// strip exactly one indent level (4 columns worth of leading
		// space/tab bytes).
		stripped := stripIndentBytes(line, n, TAB_SIZE)
		raw = append(raw, stripped...)
		raw = append(raw, '\n')
		pos = nextLine(data, pos)
	}
	if !sawContent {
		return 0
	}
	v := NewNode(KindVerbatim, start, pos)
	v.Text = string(raw)
	parent.Append(v)
	return pos - start
}

// stripIndentBytes removes leading indent bytes worth up to targetCol
// columns of the n available indent bytes, returning the remainder of the
// line (indent consumed + rest).
func stripIndentBytes(line []byte, n, targetCol int) []byte {
	col := 0
	k := 0
	for k < n && col < targetCol {
		col = columnAfter(line[k], col)
		k++
	}
	return line[k:]
}

// --- Fenced code ---

func (p *Parser) parseFencedCode(parent *Node, data []byte, i int) int {
	if !p.ext.Has(EXT_FENCED_CODE_BLOCKS) {
		return 0
	}
	j := i
	for j < len(data) && (data[j] == ' ') && j-i < 3 {
		j++
	}
	if j >= len(data) {
		return 0
	}
	fenceChar := data[j]
	if fenceChar != '`' && fenceChar != '~' {
		return 0
	}
	fenceLen := 0
	k := j
	for k < len(data) && data[k] == fenceChar {
		fenceLen++
		k++
	}
	if fenceLen < 3 {
		return 0
	}
	lend := lineEnd(data, i)
	lang := strings.TrimSpace(string(data[k:lend]))
	if strings.ContainsRune(lang, rune(fenceChar)) {
		return 0
	}

	pos := nextLine(data, i)
	var raw []byte
	for pos < len(data) {
		cl := lineEnd(data, pos)
		line := data[pos:cl]
		trimmed := strings.TrimLeft(string(line), " ")
		run := 0
		for run < len(trimmed) && trimmed[run] == fenceChar {
			run++
		}
		// A closing fence must use the same character and be at least as
		// long as the opening one; a shorter run is content.
		if run >= fenceLen && strings.Trim(trimmed[run:], " \t\r") == "" {
			pos = nextLine(data, pos)
			break
		}
		raw = append(raw, line...)
		raw = append(raw, '\n')
		pos = nextLine(data, pos)
	}
	// An unterminated fence runs to EOF and is still a valid verbatim
	// block.
	v := NewNode(KindVerbatim, i, pos)
	v.Lang = lang
	v.Text = string(raw)
	parent.Append(v)
	return pos - i
}

// --- HTML block passthrough ---

func (p *Parser) parseHTMLBlock(parent *Node, data []byte, i int) int {
	if i >= len(data) || data[i] != '<' {
		return 0
	}
	j := i + 1
	if j < len(data) && data[j] == '/' {
		j++
	}
	tagStart := j
	for j < len(data) && isalnum(data[j]) {
		j++
	}
	tag := strings.ToLower(string(data[tagStart:j]))
	if !blockTags[tag] {
		return 0
	}
	pos := i
	for pos < len(data) {
		if isBlankLine(data, pos) {
			break
		}
		pos = nextLine(data, pos)
	}
	raw := data[i:pos]
	h := NewNode(KindHTMLBlock, i, pos)
	if p.ext.Has(EXT_SUPPRESS_HTML_BLOCKS) {
		h.Text = ""
	} else {
		h.Text = string(raw)
	}
	parent.Append(h)
	return pos - i
}

// --- [TOC] marker (extension) ---

func (p *Parser) parseTocMarker(parent *Node, data []byte, i int) int {
	end := lineEnd(data, i)
	line := strings.TrimSpace(string(data[i:end]))
	level := 6
	switch line {
	case "[TOC]":
		level = 6
	default:
		return 0
	}
	t := NewNode(KindToc, i, nextLine(data, i))
	t.Level = level
	parent.Append(t)
	return nextLine(data, i) - i
}

// attachToc collects every Heading in document order and attaches the
// list to every Toc node found, so a [TOC] marker sees the same heading
// list no matter where in the document it appears.
func attachToc(root *Node) {
	var headings []*Node
	root.Walk(func(n *Node) bool {
		if n.Kind == KindHeading {
			headings = append(headings, n)
		}
		return true
	})
	root.Walk(func(n *Node) bool {
		if n.Kind == KindToc {
			n.Headings = headings
		}
		return true
	})
}

// --- Paragraph ---

func (p *Parser) parsePara(parent *Node, data []byte, i int) int {
	pos := i
	for pos < len(data) {
		if isBlankLine(data, pos) {
			// The blank line is not consumed; it stays available for
			// the next block's matcher.
			break
		}
		next := nextLine(data, pos)
		// A line that itself starts a higher-priority block (setext
		// underline aside, handled by parseSetextHeading winning earlier
		// in parseOneBlock) terminates the paragraph lookahead.
		if pos > i && p.looksLikeBlockStart(data, pos) {
			break
		}
		pos = next
	}
	if pos == i {
		pos = nextLine(data, i)
	}
	text := data[i:pos]
	para := NewNode(KindPara, i, pos)
	p.parseInlinesInto(para, text, i)
	parent.Append(para)
	return pos - i
}

// looksLikeBlockStart is a light heuristic paragraph-interrupt check: a
// following line that opens a blockquote, ATX heading, hr, or list item
// ends the paragraph rather than being swallowed as a lazy continuation
// line.
func (p *Parser) looksLikeBlockStart(data []byte, pos int) bool {
	if pos >= len(data) {
		return false
	}
	c := data[pos]
	if c == '>' {
		return true
	}
	if c == '#' {
		return true
	}
	if (c == '*' || c == '-' || c == '_') && p.parseHorizontalRule(&Node{}, data, pos) > 0 {
		return true
	}
	if _, ok := bulletMarker(data, pos); ok {
		return true
	}
	if _, ok := orderedMarker(data, pos); ok {
		return true
	}
	return false
}
