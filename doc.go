//
// Blackfriday Markdown Processor
// Forked from the original at http://github.com/russross/blackfriday
//
// Copyright © 2011 Russ Ross <russ@russross.com>.
// Distributed under the Simplified BSD License.
// See README.md for details.
//

// Package markdown parses Markdown source into a tree of typed document
// nodes and renders that tree to HTML. It supports standard Markdown plus a
// fixed, user-selectable set of extensions (tables, footnotes, definition
// lists, smart quotes, wiki links, and more — see the Extension bits).
//
// A Processor owns the parser configuration (which extensions are active,
// the parsing deadline, and any plugins) and is not safe for concurrent use;
// callers that need concurrency should build one Processor per goroutine.
//
//	proc := markdown.New(markdown.EXT_TABLES|markdown.EXT_FOOTNOTES, 0)
//	html, err := proc.MarkdownToHTML(source, nil, nil)
package markdown
