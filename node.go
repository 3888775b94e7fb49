package markdown

// Kind tags the variant a Node carries. Rather than one Go type per node
// kind (which would force the serializer into an interface-dispatch jungle
// for ~45 leaf-heavy kinds), Node is a single tagged-variant struct; Kind
// selects which of its fields are meaningful.
type Kind int

const (
	KindRoot Kind = iota
	KindPara
	KindBlockQuote
	KindVerbatim
	KindHTMLBlock
	KindInlineHTML
	KindHeading
	KindBulletList
	KindOrderedList
	KindListItem
	KindTaskListItem
	KindDefinitionList
	KindDefinitionTerm
	KindDefinition
	KindTable
	KindTableHeader
	KindTableBody
	KindTableRow
	KindTableCell
	KindTableColumn
	KindTableCaption
	KindHorizontalRule
	KindLineBreak
	KindEllipsis
	KindEmdash
	KindEndash
	KindApostrophe
	KindNbsp
	KindText
	KindSpecialText
	KindEmphasis
	KindStrong
	KindStrike
	KindQuoted
	KindCode
	KindAutoLink
	KindMailLink
	KindAnchorLink
	KindWikiLink
	KindExpLink
	KindExpImage
	KindRefLink
	KindRefImage
	KindFootnoteDef
	KindFootnoteRef
	KindAbbreviation
	KindReference
	KindToc
	KindPlugin
)

// QuoteKind distinguishes the three Quoted variants.
type QuoteKind int

const (
	QuoteSingle QuoteKind = iota
	QuoteDouble
	QuoteDoubleAngle
)

// Alignment is a table column's horizontal alignment.
type Alignment int

const (
	AlignNone Alignment = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// dummyReferenceKey marks a RefLink/RefImage written in the empty-bracket
// "[x][]" form, which must stay distinguishable from one with no trailing
// brackets at all when the dummy-reference-key extension is enabled.
const dummyReferenceKey = "\x00dummy\x00"

// Node is one tree element. Every node carries [Start,End) indices into
// the original source; parent kinds carry an ordered Children slice.
type Node struct {
	Kind     Kind
	Start    int
	End      int
	Children []*Node

	// Root-only side tables. Keyed by normalized reference label /
	// abbreviation text / footnote label respectively.
	References    map[string]*Node
	Abbreviations map[string]*Node
	Footnotes     map[string]*Node

	// FootnoteOrder and AbbrevOrder preserve first-discovery document
	// order for the two maps above, whose Go map iteration order is
	// otherwise unspecified.
	FootnoteOrder []string
	AbbrevOrder   []string

	// Text/SpecialText/Verbatim/HTMLBlock/InlineHtml/Code literal payload.
	Text string
	// Verbatim language tag, when present.
	Lang string

	// Heading / Toc.
	Level    int
	IsToc    bool
	IsSetext bool
	Headings []*Node // Toc: collected heading list, document order

	// TaskListItem.
	Done   bool
	Marker string

	// Emphasis / Strong. An unclosed node keeps Closed == false and
	// renders as its literal OpenChars followed by its children.
	OpenChars string
	Closed    bool

	// Quoted.
	QuoteKind QuoteKind

	// Table cell/column.
	Align   Alignment
	ColSpan int

	// Link-like nodes. ReferenceKey holds the normalized lookup key;
	// KeyText keeps the second bracket pair's original text so an
	// unresolved reference can echo the source back verbatim.
	URL          string
	Title        string
	ReferenceKey string
	KeyText      string
	hasRefKey    bool

	// FootnoteDef / Abbreviation / Reference.
	Label string

	// Plugin-produced node kinds, the serializer's unknown-node escape
	// hatch.
	PluginName string
	PluginData interface{}
}

// NewNode constructs a bare node of the given kind spanning [start,end).
func NewNode(kind Kind, start, end int) *Node {
	return &Node{Kind: kind, Start: start, End: end}
}

// NewRoot constructs an empty Root with initialized side tables.
func NewRoot() *Node {
	return &Node{
		Kind:          KindRoot,
		References:    make(map[string]*Node),
		Abbreviations: make(map[string]*Node),
		Footnotes:     make(map[string]*Node),
	}
}

// Append adds a child. Adjacent Text children of the same parent are
// merged into one; SpecialText never coalesces with Text.
func (n *Node) Append(child *Node) {
	if child == nil {
		return
	}
	if child.Kind == KindText && len(n.Children) > 0 {
		last := n.Children[len(n.Children)-1]
		if last.Kind == KindText {
			last.Text += child.Text
			last.End = child.End
			return
		}
	}
	n.Children = append(n.Children, child)
}

// SetDummyReferenceKey marks n's ReferenceKey as the dummy sentinel, used
// for the empty-bracket "[x][]" form when the dummy-reference-key
// extension is enabled.
func (n *Node) SetDummyReferenceKey() {
	n.ReferenceKey = dummyReferenceKey
	n.hasRefKey = true
}

// SetReferenceKey records an explicit (non-dummy) reference key.
func (n *Node) SetReferenceKey(key string) {
	n.ReferenceKey = key
	n.hasRefKey = true
}

// HasReferenceKey reports whether n carries any reference key at all,
// dummy or explicit — as opposed to an absent key (a bare "[x]" form with
// no brackets following, which resolves against the link text itself).
func (n *Node) HasReferenceKey() bool { return n.hasRefKey }

// IsDummyReferenceKey reports whether n's key is the dummy sentinel.
func (n *Node) IsDummyReferenceKey() bool {
	return n.hasRefKey && n.ReferenceKey == dummyReferenceKey
}

// Shift adds delta to every index in the subtree rooted at n.
func (n *Node) Shift(delta int) {
	if n == nil {
		return
	}
	n.Start += delta
	n.End += delta
	for _, c := range n.Children {
		c.Shift(delta)
	}
	for _, c := range n.Headings {
		c.Shift(delta)
	}
}

// remapIndex maps a compacted-buffer index back to the original buffer
// using the ixMap produced during sub-parse collection. An index at or
// past the end of the compacted buffer maps to one past the last known
// original position, so a node's End that lands exactly at EOF of the
// sub-parse buffer still remaps sensibly.
func remapIndex(ixMap []int, i int) int {
	if len(ixMap) == 0 {
		return i
	}
	if i < len(ixMap) {
		return ixMap[i]
	}
	return ixMap[len(ixMap)-1] + 1
}

// Remap replaces each index in the subtree with its mapped original-buffer
// position.
func (n *Node) Remap(ixMap []int) {
	if n == nil {
		return
	}
	n.Start = remapIndex(ixMap, n.Start)
	n.End = remapIndex(ixMap, n.End)
	for _, c := range n.Children {
		c.Remap(ixMap)
	}
	for _, c := range n.Headings {
		c.Remap(ixMap)
	}
}

// Walk performs a depth-first pre-order traversal, invoking fn on every
// node including n itself. fn returning false prunes n's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
