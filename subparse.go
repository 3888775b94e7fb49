package markdown

// Recursive sub-parse driver. BlockQuote, ListItem, and footnote-definition
// bodies collect raw text that must be reparsed as block sequences while
// keeping source indices pointing into the original input. block.go,
// lists.go, and defs.go build the (raw, ixMap) pair byte-for-byte as they
// scan — marker and indent prefix bytes are simply never copied into raw,
// so ixMap maps each raw byte straight back to its original position. This
// file drives the inner parse and remaps the result.

// subParseInto runs a block-level sub-parse over raw and splices the
// resulting children into dst, with every index remapped back to the
// outer buffer via ixMap. Used by BlockQuote, whose body is itself a
// sequence of blocks.
func (p *Parser) subParseInto(dst *Node, raw []byte, ixMap []int) {
	p.pushNesting("blockquote-subparse")
	defer p.popNesting()

	sub := newSubParser(p, raw)
	root := NewNode(KindRoot, 0, len(raw))
	sub.parseBlocks(root, raw, 0)
	root.Remap(ixMap)
	dst.Children = root.Children
}

// subParseListItemInto runs a block-level sub-parse over a list item's
// body. When the list is tight (not loose, and force-list-item-para is
// off) and the body's first block is a bare paragraph, that paragraph
// wrapper is removed so the item's direct children are the paragraph's own
// children — tight lists omit <p> around item content. A loose list, or
// the force-list-item-para extension, keeps the paragraph wrapper.
func (p *Parser) subParseListItemInto(li *Node, raw []byte, ixMap []int, loose bool) {
	p.pushNesting("listitem-subparse")
	defer p.popNesting()

	sub := newSubParser(p, raw)
	root := NewNode(KindRoot, 0, len(raw))
	sub.parseBlocks(root, raw, 0)
	children := root.Children

	tight := !loose && !p.ext.Has(EXT_FORCELISTITEMPARA)
	if tight && len(children) > 0 && children[0].Kind == KindPara {
		unwrapped := make([]*Node, 0, len(children)-1+len(children[0].Children))
		unwrapped = append(unwrapped, children[0].Children...)
		unwrapped = append(unwrapped, children[1:]...)
		children = unwrapped
	}
	root.Children = children
	root.Remap(ixMap)
	li.Children = root.Children
}

// subParseBodyInto is like subParseInto but for a footnote definition's
// body, which is always treated as block content: a footnote body always
// gets at least one paragraph, so there is no tight/loose decision to make
// here.
func (p *Parser) subParseBodyInto(dst *Node, raw []byte, data []byte, start, end int, ixMap []int) {
	p.pushNesting("body-subparse")
	defer p.popNesting()

	sub := newSubParser(p, raw)
	root := NewNode(KindRoot, 0, len(raw))
	sub.parseBlocks(root, raw, 0)
	root.Remap(ixMap)
	dst.Children = root.Children
}
