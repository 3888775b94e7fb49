package markdown

// Plugin seams. Each is a small strategy interface: parser-side grammar
// extension (block and inline), serializer-side fallback for unknown node
// kinds, per-language verbatim rendering, and heading anchor-id override.

// InlinePlugin contributes additional alternatives to the inline rule set
// and registers the trigger characters the parser's dispatch table should
// route to it.
type InlinePlugin interface {
	// TriggerChars returns the bytes that can start a match for this
	// plugin, so the parser can route to it from its inline dispatch
	// table the same way it routes '*', '_', '[', etc.
	TriggerChars() []byte
	// Match attempts to parse an inline construct starting at
	// data[offset]. It returns the node produced and the number of bytes
	// consumed, or ok=false if this plugin does not match here.
	Match(p *Parser, data []byte, offset int) (node *Node, consumed int, ok bool)
}

// BlockPlugin contributes additional alternatives to the block rule set.
type BlockPlugin interface {
	// MatchBlock attempts to parse a block construct starting at the
	// current line. It returns the node produced and bytes consumed, or
	// ok=false if this plugin does not match here.
	MatchBlock(p *Parser, data []byte, offset int) (node *Node, consumed int, ok bool)
}

// SerializerPlugin is offered a chance to emit HTML for a node the
// built-in serializer does not recognize (KindPlugin nodes, or any kind a
// BlockPlugin/InlinePlugin produced that isn't one of the built-ins). The
// first plugin in the list whose Render returns true wins; if none do, the
// serializer panics.
type SerializerPlugin interface {
	Render(w *Printer, n *Node, s *HTMLSerializer) bool
}

// VerbatimSerializer renders the contents of a Verbatim node for one
// specific language tag. The registry handed to MarkdownToHTML is keyed by
// language tag, with a default registered under VerbatimDefaultKey.
type VerbatimSerializer interface {
	Serialize(w *Printer, n *Node)
}

// VerbatimDefaultKey is the sentinel key the default VerbatimSerializer is
// registered under.
const VerbatimDefaultKey = ""

// HeaderIDComputer lets a caller override heading anchor-id computation.
// existingID is any id already carried by a pre-existing anchor child
// (e.g. produced by a plugin); derivedID is what the built-in algorithm
// computed. Returning "" means "no id; strip any existing anchor child."
type HeaderIDComputer interface {
	ComputeID(n *Node, existingID, derivedID string) string
}
