package markdown

import "strings"

// Reference, abbreviation, and footnote definitions, plus the
// definition-list extension. The three definition rules populate
// p.refs/p.abbrevs/p.footnotes directly as a side effect of matching, in
// document-discovery order.

// normalizeLabel lowercases and strips spaces/tabs/newlines. Reference
// lookups go through this on both the definition and use sides, so it
// must be idempotent.
func normalizeLabel(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseReferenceDef recognizes "[label]: url \"title\"" and records a
// Reference node in the side table. The definition line itself produces no
// tree output.
func (p *Parser) parseReferenceDef(data []byte, i int) int {
	end := lineEnd(data, i)
	line := data[i:end]
	col, n := leadingIndent(line)
	if col > 3 {
		return 0
	}
	j := n
	if j >= len(line) || line[j] != '[' {
		return 0
	}
	j++
	labelStart := j
	for j < len(line) && line[j] != ']' {
		j++
	}
	if j >= len(line) {
		return 0
	}
	labelEnd := j
	j++
	if j >= len(line) || line[j] != ':' {
		return 0
	}
	j++
	for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
		j++
	}
	urlStart := j
	angle := j < len(line) && line[j] == '<'
	if angle {
		j++
		urlStart = j
	}
	for j < len(line) && line[j] != ' ' && line[j] != '\t' {
		if angle && line[j] == '>' {
			break
		}
		j++
	}
	urlEnd := j
	if angle && j < len(line) && line[j] == '>' {
		j++
	}
	for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
		j++
	}
	title := ""
	if j < len(line) && (line[j] == '"' || line[j] == '\'' || line[j] == '(') {
		open := line[j]
		close := open
		if open == '(' {
			close = ')'
		}
		j++
		titleStart := j
		for j < len(line) && line[j] != close {
			j++
		}
		title = string(line[titleStart:j])
	}

	label := normalizeLabel(string(line[labelStart:labelEnd]))
	ref := NewNode(KindReference, i, nextLine(data, i))
	ref.Label = label
	ref.URL = string(line[urlStart:urlEnd])
	ref.Title = title
	if p.refs == nil {
		p.refs = make(map[string]*Node)
	}
	p.refs[label] = ref
	return nextLine(data, i) - i
}

// parseAbbreviationDef recognizes the abbreviation-definition form:
//
//	*[HTML]: HyperText Markup Language
func (p *Parser) parseAbbreviationDef(data []byte, i int) int {
	end := lineEnd(data, i)
	line := data[i:end]
	if len(line) < 2 || line[0] != '*' || line[1] != '[' {
		return 0
	}
	j := 2
	labelStart := j
	for j < len(line) && line[j] != ']' {
		j++
	}
	if j >= len(line) {
		return 0
	}
	labelEnd := j
	j++
	if j >= len(line) || line[j] != ':' {
		return 0
	}
	j++
	for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
		j++
	}
	expansion := strings.TrimRight(string(line[j:]), " \t\r")
	label := string(line[labelStart:labelEnd])

	abbr := NewNode(KindAbbreviation, i, nextLine(data, i))
	abbr.Label = label
	abbr.Title = expansion
	if p.abbrevs == nil {
		p.abbrevs = make(map[string]*Node)
	}
	p.abbrevs[label] = abbr
	p.abbrevOrder = append(p.abbrevOrder, label)
	return nextLine(data, i) - i
}

// parseFootnoteDef recognizes "[^label]: body text...", possibly spanning
// indented continuation lines.
func (p *Parser) parseFootnoteDef(data []byte, i int) int {
	end := lineEnd(data, i)
	line := data[i:end]
	col, n := leadingIndent(line)
	if col > 3 {
		return 0
	}
	j := n
	if j+1 >= len(line) || line[j] != '[' || line[j+1] != '^' {
		return 0
	}
	j += 2
	labelStart := j
	for j < len(line) && line[j] != ']' {
		j++
	}
	if j >= len(line) {
		return 0
	}
	labelEnd := j
	j++
	if j >= len(line) || line[j] != ':' {
		return 0
	}
	j++
	for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
		j++
	}
	label := string(line[labelStart:labelEnd])

	var raw []byte
	var ixMap []int
	for k := i + j; k < end; k++ {
		raw = append(raw, data[k])
		ixMap = append(ixMap, k)
	}
	raw = append(raw, '\n')
	ixMap = append(ixMap, end)
	pos := nextLine(data, i)
	for pos < len(data) {
		if isBlankLine(data, pos) {
			k := nextLine(data, pos)
			if k < len(data) {
				lcol, _ := leadingIndent(data[k:lineEnd(data, k)])
				if lcol >= TAB_SIZE {
					raw = append(raw, '\n')
					ixMap = append(ixMap, lineEnd(data, pos))
					pos = k
					continue
				}
			}
			break
		}
		lcol, lindent := leadingIndent(data[pos:lineEnd(data, pos)])
		if lcol < TAB_SIZE {
			break
		}
		lend := lineEnd(data, pos)
		stripN := 0
		col := 0
		for stripN < lindent && col < TAB_SIZE {
			col = columnAfter(data[pos+stripN], col)
			stripN++
		}
		for k := pos + stripN; k < lend; k++ {
			raw = append(raw, data[k])
			ixMap = append(ixMap, k)
		}
		raw = append(raw, '\n')
		ixMap = append(ixMap, lend)
		pos = nextLine(data, pos)
	}

	def := NewNode(KindFootnoteDef, i, pos)
	def.Label = label
	body := NewNode(KindRoot, i, pos)
	p.subParseBodyInto(body, raw, data, i, pos, ixMap)
	def.Children = body.Children
	if p.footnotes == nil {
		p.footnotes = make(map[string]*Node)
	}
	p.footnotes[label] = def
	p.footnoteOrder = append(p.footnoteOrder, label)
	return pos - i
}

// --- Definition list (extension) ---
//
// Term
// :   Definition text, possibly spanning multiple lines.

func (p *Parser) parseDefinitionList(parent *Node, data []byte, i int) int {
	termEnd := lineEnd(data, i)
	if termEnd == i || isBlankLine(data, i) {
		return 0
	}
	markStart := nextLine(data, i)
	if markStart >= len(data) {
		return 0
	}
	mline := data[markStart:lineEnd(data, markStart)]
	col, n := leadingIndent(mline)
	if col > 3 || n >= len(mline) || mline[n] != ':' {
		return 0
	}

	dl := NewNode(KindDefinitionList, i, i)
	pos := i
	for pos < len(data) {
		tEnd := lineEnd(data, pos)
		if tEnd == pos || isBlankLine(data, pos) {
			break
		}
		mStart := nextLine(data, pos)
		if mStart >= len(data) {
			break
		}
		ml := data[mStart:lineEnd(data, mStart)]
		mcol, mn := leadingIndent(ml)
		if mcol > 3 || mn >= len(ml) || ml[mn] != ':' {
			break
		}
		term := NewNode(KindDefinitionTerm, pos, tEnd)
		p.parseInlinesInto(term, data[pos:tEnd], pos)
		dl.Append(term)

		dpos := mStart
		for dpos < len(data) {
			dl2 := lineEnd(data, dpos)
			dline := data[dpos:dl2]
			dcol, dn := leadingIndent(dline)
			if dcol > 3 || dn >= len(dline) || dline[dn] != ':' {
				break
			}
			contentStart := dn + 1
			for contentStart < len(dline) && dline[contentStart] == ' ' {
				contentStart++
			}
			def := NewNode(KindDefinition, dpos, dl2)
			p.parseInlinesInto(def, dline[contentStart:], dpos+contentStart)
			dl.Append(def)
			dpos = nextLine(data, dpos)
		}
		pos = dpos
		pos = skipBlankLines(data, pos)
		if pos >= len(data) {
			break
		}
		nextTermEnd := lineEnd(data, pos)
		if nextTermEnd == pos {
			break
		}
		peek := nextLine(data, pos)
		if peek >= len(data) {
			break
		}
		pl := data[peek:lineEnd(data, peek)]
		pcol, pn := leadingIndent(pl)
		if pcol > 3 || pn >= len(pl) || pl[pn] != ':' {
			break
		}
	}
	dl.End = pos
	if len(dl.Children) == 0 {
		return 0
	}
	parent.Append(dl)
	return pos - i
}
