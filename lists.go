package markdown

import "strings"

// List parsing: marker detection, item body assembly, tight/loose
// looseness decided per list, and the GFM task-list-item extension.

// bulletMarker reports whether data[i] starts a bullet list item marker
// at column 0–3 ("-", "+", or "*" followed by a space).
func bulletMarker(data []byte, i int) (markerLen int, ok bool) {
	col, n := leadingIndent(data[i:min(i+4, len(data))])
	if col > 3 {
		return 0, false
	}
	j := i + n
	if j >= len(data) {
		return 0, false
	}
	c := data[j]
	if c != '-' && c != '+' && c != '*' {
		return 0, false
	}
	j++
	k := j
	for k < len(data) && (data[k] == ' ' || data[k] == '\t') {
		k++
	}
	if k == j {
		// An empty item ("-" alone on its line) still counts.
		if k < len(data) && data[k] == '\n' {
			return k - i, true
		}
		return 0, false
	}
	return k - i, true
}

// orderedMarker reports whether data[i] starts an ordered list item marker
// at column 0–3 (one or more digits, then '.' or ')', then a space).
func orderedMarker(data []byte, i int) (markerLen int, ok bool) {
	col, n := leadingIndent(data[i:min(i+4, len(data))])
	if col > 3 {
		return 0, false
	}
	j := i + n
	start := j
	for j < len(data) && isdigit(data[j]) {
		j++
	}
	if j == start {
		return 0, false
	}
	if j >= len(data) || (data[j] != '.' && data[j] != ')') {
		return 0, false
	}
	j++
	k := j
	for k < len(data) && (data[k] == ' ' || data[k] == '\t') {
		k++
	}
	if k == j {
		if k < len(data) && data[k] == '\n' {
			return k - i, true
		}
		return 0, false
	}
	return k - i, true
}

func (p *Parser) parseBulletList(parent *Node, data []byte, i int) int {
	if _, ok := bulletMarker(data, i); !ok {
		return 0
	}
	return p.parseList(parent, data, i, KindBulletList, bulletMarker)
}

func (p *Parser) parseOrderedList(parent *Node, data []byte, i int) int {
	if _, ok := orderedMarker(data, i); !ok {
		return 0
	}
	return p.parseList(parent, data, i, KindOrderedList, orderedMarker)
}

type markerFn func(data []byte, i int) (int, bool)

// parseList assembles the run of same-kind items starting at i: consume
// the marker line, then continuation lines that are either
// non-blank-non-list-starting or indented by at least one level; blank
// lines terminate an item only when the following non-blank line isn't
// indented and isn't itself a list-item start. Looseness is decided per
// list, not per item: once any item is loose, every item's first child is
// wrapped in Para.
func (p *Parser) parseList(parent *Node, data []byte, i int, kind Kind, marker markerFn) int {
	p.pushNesting("list")
	defer p.popNesting()

	start := i
	pos := i
	type item struct {
		raw        []byte
		ixMap      []int
		base       int
		end        int
		loose      bool
		done       bool
		isTask     bool
		taskMarker string
	}
	var items []item
	anyLoose := false

	for pos < len(data) {
		mlen, ok := marker(data, pos)
		if !ok {
			break
		}
		itemStart := pos
		markerLineEnd := lineEnd(data, pos)
		contentStart := pos + mlen
		col, _ := leadingIndent(data[pos : pos+mlen])

		var raw []byte
		var ixMap []int
		for k := contentStart; k < markerLineEnd; k++ {
			raw = append(raw, data[k])
			ixMap = append(ixMap, k)
		}
		raw = append(raw, '\n')
		ixMap = append(ixMap, markerLineEnd)
		cur := nextLine(data, pos)

		trailingBlank := false
		for cur < len(data) {
			if isBlankLine(data, cur) {
				k := cur
				for k < len(data) && isBlankLine(data, k) {
					k = nextLine(data, k)
				}
				if k >= len(data) {
					cur = k
					trailingBlank = true
					break
				}
				lcol, _ := leadingIndent(data[k:lineEnd(data, k)])
				_, isNewItem := marker(data, k)
				if lcol < col+1 && !isNewItem {
					trailingBlank = true
					break
				}
				if isNewItem && lcol < col+1 {
					trailingBlank = true
					break
				}
				for b := cur; b < k; b++ {
					bend := lineEnd(data, b)
					raw = append(raw, '\n')
					ixMap = append(ixMap, bend)
				}
				cur = k
				continue
			}
			lcol, lindent := leadingIndent(data[cur:lineEnd(data, cur)])
			if _, isNewItem := marker(data, cur); isNewItem && lcol < col+1 {
				break
			}
			if lcol < col && !isBlankLine(data, cur) {
				if _, isNewItem := marker(data, cur); !isNewItem {
					break
				}
			}
			// Strip one indent level from continuation lines so a
			// nested marker lands at column 0 of the sub-parse buffer.
			stripN := 0
			c := 0
			for stripN < lindent && c < TAB_SIZE {
				c = columnAfter(data[cur+stripN], c)
				stripN++
			}
			line := lineEnd(data, cur)
			for k := cur + stripN; k < line; k++ {
				raw = append(raw, data[k])
				ixMap = append(ixMap, k)
			}
			raw = append(raw, '\n')
			ixMap = append(ixMap, line)
			cur = nextLine(data, cur)
		}

		loose := trailingBlank && cur < len(data)
		if loose {
			anyLoose = true
		}

		done, taskMarker, isTask := false, "", false
		if p.ext.Has(EXT_TASKLISTITEMS) {
			done, taskMarker, isTask = detectTaskMarker(raw)
			if isTask {
				raw, ixMap = stripTaskMarker(raw, ixMap, taskMarker)
			}
		}

		it := item{raw: raw, ixMap: ixMap, base: itemStart, end: cur, loose: loose, done: done, isTask: isTask, taskMarker: taskMarker}
		items = append(items, it)
		pos = cur
		pos = skipBlankLines(data, pos)
		if pos >= len(data) {
			break
		}
		if _, ok := marker(data, pos); !ok {
			break
		}
	}

	if len(items) == 0 {
		return 0
	}

	list := NewNode(kind, start, items[len(items)-1].end)
	for _, it := range items {
		li := NewNode(KindListItem, it.base, it.end)
		if it.isTask {
			li.Kind = KindTaskListItem
			li.Done = it.done
			li.Marker = it.taskMarker
		}
		p.subParseListItemInto(li, it.raw, it.ixMap, anyLoose || it.loose)
		list.Append(li)
	}
	parent.Append(list)
	return list.End - start
}

// detectTaskMarker reports whether raw begins (after optional leading
// space) with a GFM task-list marker "[ ] " or "[x] "/"[X] ".
func detectTaskMarker(raw []byte) (done bool, marker string, ok bool) {
	s := string(raw)
	t := strings.TrimLeft(s, " \t")
	if len(t) < 4 || t[0] != '[' || t[2] != ']' {
		return false, "", false
	}
	if t[3] != ' ' && t[3] != '\t' {
		return false, "", false
	}
	switch t[1] {
	case ' ':
		return false, t[0:3], true
	case 'x', 'X':
		return true, t[0:3], true
	}
	return false, "", false
}

// stripTaskMarker removes the leading "[ ]"/"[x]" marker (and any
// surrounding space) from raw, keeping ixMap aligned byte-for-byte with
// the result.
func stripTaskMarker(raw []byte, ixMap []int, marker string) ([]byte, []int) {
	s := string(raw)
	idx := strings.Index(s, marker)
	if idx < 0 {
		return raw, ixMap
	}
	skip := idx + len(marker)
	for skip < len(raw) && (raw[skip] == ' ' || raw[skip] == '\t') {
		skip++
	}
	return raw[skip:], ixMap[skip:]
}
