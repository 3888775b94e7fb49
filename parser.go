package markdown

import "time"

// maxNesting bounds recursive block/inline descent, guarding against
// pathological input (thousands of nested blockquotes) blowing the Go call
// stack.
const maxNesting = 16

// inlineRule is one inline grammar alternative, dispatched from
// Parser.inlineDispatch by the byte that can start it. It returns the node
// produced (nil to consume silently), the number of bytes consumed, and
// whether it matched at all.
type inlineRule func(p *Parser, data []byte, offset int) (node *Node, consumed int, ok bool)

// Parser owns one parse run: the source buffer, the extension bitset, the
// parsing deadline, the nesting guard, and the three side tables a
// top-level parse accumulates. Block and inline rule methods hang off
// Parser so grammar actions can reach all of this.
type Parser struct {
	src []byte
	ext Extensions

	startTime time.Time
	deadline  time.Duration

	root *Node

	// Side tables, populated by rule actions as definitions are
	// discovered. Only the outermost parser's tables end up attached to
	// the Root; a sub-parser's tables are fresh and thrown away, because
	// definitions are only recognized at top level.
	refs      map[string]*Node
	abbrevs   map[string]*Node
	footnotes map[string]*Node

	nesting    stack[string]
	insideLink bool

	blockPlugins  []BlockPlugin
	inlinePlugins []InlinePlugin

	inlineDispatch [256]inlineRule

	// footnoteOrder and abbrevOrder preserve first-discovery document
	// order for definitions whose storage (a Go map) does not.
	footnoteOrder []string
	abbrevOrder   []string
}

// newParser builds the outermost Parser for a fresh top-level parse.
func newParser(src []byte, ext Extensions, maxParsingTime time.Duration, blockPlugins []BlockPlugin, inlinePlugins []InlinePlugin) *Parser {
	p := &Parser{
		src:            src,
		ext:            ext,
		startTime:      time.Now(),
		deadline:       maxParsingTime,
		refs:           make(map[string]*Node),
		abbrevs:        make(map[string]*Node),
		footnotes:      make(map[string]*Node),
		blockPlugins:   blockPlugins,
		inlinePlugins:  inlinePlugins,
	}
	p.registerInlineDispatch()
	return p
}

// newSubParser builds a Parser for a recursive sub-parse over an
// already-compacted buffer. It shares the extension bitset, deadline
// clock, and plugin lists with outer, but gets fresh, throwaway side
// tables: a blockquote or list item that happens to contain what looks
// like a reference definition does not pollute the outer document's
// tables.
func newSubParser(outer *Parser, compactedSrc []byte) *Parser {
	p := &Parser{
		src:            compactedSrc,
		ext:            outer.ext,
		startTime:      outer.startTime,
		deadline:       outer.deadline,
		refs:           make(map[string]*Node),
		abbrevs:        make(map[string]*Node),
		footnotes:      make(map[string]*Node),
		blockPlugins:   outer.blockPlugins,
		inlinePlugins:  outer.inlinePlugins,
	}
	p.nesting = outer.nesting
	p.registerInlineDispatch()
	return p
}

// registerInlineDispatch wires the trigger-character dispatch table:
// inline parsing routes each byte that can start a construct to the one
// rule that handles it, and everything else down the plain-text fast path.
func (p *Parser) registerInlineDispatch() {
	d := &p.inlineDispatch
	d['\\'] = ruleEscape
	d['&'] = ruleEntity
	d['<'] = ruleLAngle
	d['`'] = ruleCodeSpan
	d['*'] = ruleEmphStar
	d['_'] = ruleEmphUnderscore
	d['['] = ruleLink
	d['!'] = ruleImage
	d['\n'] = ruleLineBreak
	if p.ext.Has(EXT_STRIKETHROUGH) {
		d['~'] = ruleStrike
	}
	// Footnote refs share '[' with links; ruleLink tries the footnote-ref
	// form first when EXT_FOOTNOTES is set. Bare-URL autolinking is
	// attempted from parseInlinesInto's fallback, since a bare URL can
	// start with any scheme letter, not one fixed byte.
	if p.ext.Has(EXT_QUOTES) {
		d['"'] = ruleQuoteDouble
		d['\''] = ruleQuoteSingleOrApostrophe
		d[0xC2] = ruleGuillemet
	}
	if p.ext.Has(EXT_SMARTS) {
		d['.'] = ruleEllipsis
		d['-'] = ruleDashes
	}
	if p.ext.Has(EXT_INTELLIJ_DUMMY_IDENTIFIER) {
		d[intelliJDummyByte] = ruleIntelliJDummyIdentifier
	}
	for _, pl := range p.inlinePlugins {
		for _, c := range pl.TriggerChars() {
			plugin := pl
			d[c] = func(p *Parser, data []byte, offset int) (*Node, int, bool) {
				return plugin.Match(p, data, offset)
			}
		}
	}
}

// checkDeadline is polled at the hot recursion points: inline entry, link
// label, and image alt. On exceed it panics with timeoutSignal, unwound by
// Processor.Parse's recover.
func (p *Parser) checkDeadline() {
	if p.deadline > 0 && time.Since(p.startTime) > p.deadline {
		panic(timeoutSignal{})
	}
}

// pushNesting increments the nesting guard, panicking with a
// parseFailureSignal if maxNesting is exceeded.
func (p *Parser) pushNesting(what string) {
	if p.nesting.len() >= maxNesting {
		panic(parseFailureSignal{reason: "max nesting exceeded in " + what})
	}
	p.nesting.push(what)
}

func (p *Parser) popNesting() { p.nesting.pop() }

// parseDocument parses the full source into a Root node.
func (p *Parser) parseDocument() *Node {
	root := NewRoot()
	p.root = root
	p.parseBlocks(root, p.src, 0)
	root.References = p.refs
	root.Abbreviations = p.abbrevs
	root.Footnotes = p.footnotes
	root.FootnoteOrder = p.footnoteOrder
	root.AbbrevOrder = p.abbrevOrder
	if p.ext.Has(EXT_TOC) {
		attachToc(root)
	}
	return root
}
