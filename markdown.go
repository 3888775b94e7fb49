//
// Blackfriday Markdown Processor
// Forked from the original at http://github.com/russross/blackfriday
//
// Copyright © 2011 Russ Ross <russ@russross.com>.
// Distributed under the Simplified BSD License.
// See README.md for details.
//

package markdown

import (
	"time"

	"github.com/pkg/errors"
)

const VERSION = "1.0"

// Extensions selects the optional grammar alternatives a Processor
// recognizes. Each bit is independent; OR them together to select
// multiple.
type Extensions uint64

const (
	EXT_SMARTS Extensions = 1 << iota
	EXT_QUOTES
	EXT_ABBREVIATIONS
	EXT_HARDWRAPS
	EXT_AUTOLINKS
	EXT_TABLES
	EXT_DEFINITIONS
	EXT_FENCED_CODE_BLOCKS
	EXT_SUPPRESS_HTML_BLOCKS
	EXT_SUPPRESS_INLINE_HTML
	EXT_WIKILINKS
	EXT_STRIKETHROUGH
	EXT_ANCHORLINKS
	EXT_ATXHEADERSPACE
	EXT_FORCELISTITEMPARA
	EXT_RELAXEDHRULES
	EXT_TASKLISTITEMS
	EXT_EXTANCHORLINKS
	EXT_EXTANCHORLINKS_WRAP
	EXT_TOC
	EXT_DUMMY_REFERENCE_KEY
	EXT_MULTI_LINE_IMAGE_URLS
	EXT_RELAXED_STRONG_EMPHASIS_RULES
	EXT_FOOTNOTES
	EXT_INTELLIJ_DUMMY_IDENTIFIER

	// EXT_SMARTYPANTS is a convenience alias for EXT_SMARTS|EXT_QUOTES.
	EXT_SMARTYPANTS = EXT_SMARTS | EXT_QUOTES
)

// Has reports whether every bit in flag is set.
func (e Extensions) Has(flag Extensions) bool { return e&flag == flag }

// DefaultMaxParsingTime is the deadline used when a Processor is built
// with maxParsingTime == 0.
const DefaultMaxParsingTime = 2000 * time.Millisecond

// Processor wraps parser construction, the active extension bitset, and
// the parsing deadline. It exposes Parse and MarkdownToHTML as its two
// operations. A Processor is not safe for concurrent use; reuse
// sequentially or build one per goroutine.
type Processor struct {
	Extensions     Extensions
	MaxParsingTime time.Duration

	BlockPlugins  []BlockPlugin
	InlinePlugins []InlinePlugin
}

// New constructs a Processor. maxParsingTime of 0 selects
// DefaultMaxParsingTime.
func New(extensions Extensions, maxParsingTime time.Duration, plugins ...interface{}) *Processor {
	p := &Processor{Extensions: extensions, MaxParsingTime: maxParsingTime}
	if p.MaxParsingTime <= 0 {
		p.MaxParsingTime = DefaultMaxParsingTime
	}
	for _, pl := range plugins {
		switch v := pl.(type) {
		case BlockPlugin:
			p.BlockPlugins = append(p.BlockPlugins, v)
		case InlinePlugin:
			p.InlinePlugins = append(p.InlinePlugins, v)
		}
	}
	return p
}

// Parse parses source into a Root node, or returns ErrTimeout if the
// parsing deadline was exceeded. A non-timeout parse failure is returned
// as an error wrapping ErrParseFailure.
func (proc *Processor) Parse(source []byte) (root *Node, err error) {
	p := newParser(source, proc.Extensions, proc.MaxParsingTime, proc.BlockPlugins, proc.InlinePlugins)
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case timeoutSignal:
				log.WithField("elapsed", time.Since(p.startTime)).Debug("markdown: parse deadline exceeded")
				root, err = nil, ErrTimeout
			case parseFailureSignal:
				root, err = nil, errors.Wrapf(ErrParseFailure, "%v", r)
			default:
				panic(r)
			}
		}
	}()
	root = p.parseDocument()
	return root, nil
}

// MarkdownToHTML parses source and renders it to an HTML fragment string.
// linkRenderer and verbatimSerializers may be nil to use the built-in
// defaults. Returns ("", ErrTimeout) if the parsing deadline was exceeded.
func (proc *Processor) MarkdownToHTML(source []byte, linkRenderer LinkRenderer, verbatimSerializers map[string]VerbatimSerializer) (string, error) {
	root, err := proc.Parse(source)
	if err != nil {
		return "", err
	}
	s := NewHTMLSerializer(proc.Extensions, linkRenderer, verbatimSerializers)
	for _, pl := range serializerPluginsOf(proc) {
		s.Plugins = append(s.Plugins, pl)
	}
	s.HeaderIDComputer = headerIDComputerOf(proc)
	return s.Render(root), nil
}

// headerIDComputerOf extracts the first registered plugin that also
// implements HeaderIDComputer; only one heading-id override can be active
// at a time.
func headerIDComputerOf(proc *Processor) HeaderIDComputer {
	for _, pl := range proc.BlockPlugins {
		if hc, ok := pl.(HeaderIDComputer); ok {
			return hc
		}
	}
	for _, pl := range proc.InlinePlugins {
		if hc, ok := pl.(HeaderIDComputer); ok {
			return hc
		}
	}
	return nil
}

// serializerPluginsOf extracts any plugin that also implements
// SerializerPlugin from the Processor's registered plugins, so a single
// plugin value can contribute to both grammar and rendering.
func serializerPluginsOf(proc *Processor) []SerializerPlugin {
	var out []SerializerPlugin
	seen := make(map[interface{}]bool)
	for _, pl := range proc.BlockPlugins {
		if sp, ok := pl.(SerializerPlugin); ok && !seen[pl] {
			out = append(out, sp)
			seen[pl] = true
		}
	}
	for _, pl := range proc.InlinePlugins {
		if sp, ok := pl.(SerializerPlugin); ok && !seen[pl] {
			out = append(out, sp)
			seen[pl] = true
		}
	}
	return out
}
