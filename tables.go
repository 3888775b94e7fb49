package markdown

import "strings"

// GFM-style table extension: a header row, a divider row of
// dashes/colons that fixes column count and alignment, and zero or more
// body rows, all pipe-delimited.

// parseTable recognizes a table starting at i: the header row must be
// immediately followed by a divider row, or this isn't a table at all and
// parseOneBlock falls through to the next alternative.
func (p *Parser) parseTable(parent *Node, data []byte, i int) int {
	headerEnd := lineEnd(data, i)
	if headerEnd == i || isBlankLine(data, i) {
		return 0
	}
	dividerStart := nextLine(data, i)
	if dividerStart >= len(data) {
		return 0
	}
	dividerEnd := lineEnd(data, dividerStart)
	aligns, ok := parseTableDivider(data[dividerStart:dividerEnd])
	if !ok {
		return 0
	}

	tbl := NewNode(KindTable, i, i)
	header := NewNode(KindTableHeader, i, headerEnd)
	header.Append(p.parseTableRow(data, i, headerEnd, aligns))
	tbl.Append(header)

	body := NewNode(KindTableBody, dividerEnd, dividerEnd)
	pos := nextLine(data, dividerStart)
	for pos < len(data) {
		if isBlankLine(data, pos) {
			break
		}
		lend := lineEnd(data, pos)
		if !bytesContainUnescapedPipe(data[pos:lend]) {
			break
		}
		body.Append(p.parseTableRow(data, pos, lend, aligns))
		pos = nextLine(data, pos)
	}
	body.End = pos
	tbl.Append(body)
	tbl.End = pos
	parent.Append(tbl)
	return pos - i
}

// parseTableDivider validates a line of the form "| --- | :---: | ---: |"
// (leading/trailing pipes optional) and extracts each column's alignment.
// A lone dash-and-colon cell with no pipe anywhere is not a divider; the
// line needs at least two cells or an outer pipe to read as one, or plain
// text such as "Foo" over ":---:" would turn into a one-column table.
func parseTableDivider(line []byte) ([]Alignment, bool) {
	s := strings.TrimSpace(string(line))
	if s == "" {
		return nil, false
	}
	outerPipe := s[0] == '|' || s[len(s)-1] == '|'
	s = strings.Trim(s, "|")
	if s == "" {
		return nil, false
	}
	cells := strings.Split(s, "|")
	if !outerPipe && len(cells) < 2 {
		return nil, false
	}
	aligns := make([]Alignment, len(cells))
	for idx, cell := range cells {
		c := strings.TrimSpace(cell)
		if c == "" || strings.Trim(c, "-:") != "" {
			return nil, false
		}
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			aligns[idx] = AlignCenter
		case left:
			aligns[idx] = AlignLeft
		case right:
			aligns[idx] = AlignRight
		default:
			aligns[idx] = AlignNone
		}
	}
	return aligns, true
}

// isEscapedAt reports whether the byte at idx in full is preceded by an
// odd run of backslashes (and so is itself an escaped literal, not an
// unescaped delimiter).
func isEscapedAt(full []byte, idx int) bool {
	n := 0
	for k := idx - 1; k >= 0 && full[k] == '\\'; k-- {
		n++
	}
	return n%2 == 1
}

func bytesContainUnescapedPipe(line []byte) bool {
	for i, c := range line {
		if c == '|' && !isEscapedAt(line, i) {
			return true
		}
	}
	return false
}

// tableCellSpan is one pipe-delimited cell's span, still expressed in the
// coordinates of the full source line it came from. colSpan counts the
// cell's trailing pipes: "a ||" spans two columns.
type tableCellSpan struct {
	start, end int // indices into line, post outer-pipe trim
	colSpan    int
}

// splitRowCells finds the unescaped-pipe-delimited spans within line,
// after trimming one leading and one trailing pipe (GFM allows but doesn't
// require the outer pipes). Indices are relative to line itself.
func splitRowCells(line []byte) []tableCellSpan {
	lo, hi := 0, len(line)
	for lo < hi && isspace(line[lo]) {
		lo++
	}
	for hi > lo && isspace(line[hi-1]) {
		hi--
	}
	if lo < hi && line[lo] == '|' {
		lo++
	}
	if hi > lo && line[hi-1] == '|' && !isEscapedAt(line, hi-1) {
		hi--
	}

	var spans []tableCellSpan
	start := lo
	i := lo
	for i < hi {
		if line[i] == '|' && !isEscapedAt(line, i) {
			span := tableCellSpan{start: start, end: i, colSpan: 1}
			for i+1 < hi && line[i+1] == '|' {
				span.colSpan++
				i++
			}
			spans = append(spans, span)
			start = i + 1
		}
		i++
	}
	if start >= hi && len(spans) > 0 {
		// A trailing unconsumed pipe widens the last cell rather than
		// opening an empty one.
		spans[len(spans)-1].colSpan++
		return spans
	}
	spans = append(spans, tableCellSpan{start: start, end: hi, colSpan: 1})
	return spans
}

// parseTableRow splits the source line [lineStart,lineEnd) into TableCell
// children, assigning each cell the corresponding divider-derived
// alignment and parsing its content as inline. Consecutive pipes attach to
// the preceding cell as extra column span rather than producing empty
// cells.
func (p *Parser) parseTableRow(data []byte, lineStart, lineEnd int, aligns []Alignment) *Node {
	line := data[lineStart:lineEnd]
	spans := splitRowCells(line)
	row := NewNode(KindTableRow, lineStart, lineEnd)
	for idx, span := range spans {
		align := AlignNone
		if idx < len(aligns) {
			align = aligns[idx]
		}
		raw := line[span.start:span.end]
		trimStart := 0
		for trimStart < len(raw) && isspace(raw[trimStart]) {
			trimStart++
		}
		trimEnd := len(raw)
		for trimEnd > trimStart && isspace(raw[trimEnd-1]) {
			trimEnd--
		}
		cellText := raw[trimStart:trimEnd]
		cellBase := lineStart + span.start + trimStart
		cell := NewNode(KindTableCell, lineStart+span.start, lineStart+span.end)
		cell.Align = align
		cell.ColSpan = span.colSpan
		// A literal "\|" inside a cell is left for ruleEscape (inline.go)
		// to turn into a SpecialText "|" during the normal inline pass,
		// rather than pre-unescaped here — that would desync cellText's
		// byte indices from cellBase.
		p.parseInlinesInto(cell, cellText, cellBase)
		row.Append(cell)
	}
	return row
}
