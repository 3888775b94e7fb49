package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseDoc(t *testing.T, ext Extensions, src string) *Node {
	t.Helper()
	root, err := New(ext, 0).Parse([]byte(src))
	require.NoError(t, err)
	return root
}

func TestATXHeadingLevels(t *testing.T) {
	root := parseDoc(t, 0, "### three\n")
	require.Len(t, root.Children, 1)
	h := root.Children[0]
	assert.Equal(t, KindHeading, h.Kind)
	assert.Equal(t, 3, h.Level)
	assert.False(t, h.IsSetext)
}

func TestATXHeadingTrailingHashes(t *testing.T) {
	out := render(t, 0, "## title ##\n")
	assert.Equal(t, "<h2>title</h2>\n", out)
}

func TestATXHeaderSpaceExtension(t *testing.T) {
	root := parseDoc(t, EXT_ATXHEADERSPACE, "#nospace\n")
	require.Len(t, root.Children, 1)
	assert.Equal(t, KindPara, root.Children[0].Kind)

	root = parseDoc(t, EXT_ATXHEADERSPACE, "# spaced\n")
	assert.Equal(t, KindHeading, root.Children[0].Kind)
}

func TestSetextHeading(t *testing.T) {
	root := parseDoc(t, 0, "Title\n===\n")
	require.Len(t, root.Children, 1)
	h := root.Children[0]
	assert.Equal(t, KindHeading, h.Kind)
	assert.Equal(t, 1, h.Level)
	assert.True(t, h.IsSetext)

	root = parseDoc(t, 0, "Title\n----\n")
	assert.Equal(t, 2, root.Children[0].Level)
}

func TestSetextUnderHyphens(t *testing.T) {
	// Fewer than three underline characters is not a setext heading.
	root := parseDoc(t, 0, "Title\n--\n")
	for _, c := range root.Children {
		assert.NotEqual(t, KindHeading, c.Kind)
	}
}

func TestHorizontalRule(t *testing.T) {
	out := render(t, 0, "* * *\n")
	assert.Equal(t, "<hr />\n", out)

	// Without relaxed-hrules a following non-blank line kills the rule.
	root := parseDoc(t, 0, "---\ntext\n")
	assert.NotEqual(t, KindHorizontalRule, root.Children[0].Kind)

	root = parseDoc(t, EXT_RELAXEDHRULES, "---\ntext\n")
	assert.Equal(t, KindHorizontalRule, root.Children[0].Kind)
}

func TestBlockQuoteBasic(t *testing.T) {
	out := render(t, 0, "> quoted\n")
	assert.Equal(t, "<blockquote>\n<p>quoted\n</p>\n</blockquote>\n", out)
}

func TestBlockQuoteBlankLineContinuation(t *testing.T) {
	// A blank line inside the quote survives only when another '>' line
	// follows it.
	root := parseDoc(t, 0, "> a\n\n> b\n")
	require.Len(t, root.Children, 1)
	bq := root.Children[0]
	require.Equal(t, KindBlockQuote, bq.Kind)
	assert.Len(t, bq.Children, 2)
}

func TestIndentedVerbatim(t *testing.T) {
	root := parseDoc(t, 0, "    code line\n")
	require.Len(t, root.Children, 1)
	v := root.Children[0]
	assert.Equal(t, KindVerbatim, v.Kind)
	assert.Equal(t, "code line\n", v.Text)
	assert.Empty(t, v.Lang)
}

func TestIndentedVerbatimKeepsInteriorBlanks(t *testing.T) {
	root := parseDoc(t, 0, "    a\n\n    b\n")
	require.Len(t, root.Children, 1)
	assert.Equal(t, "a\n\nb\n", root.Children[0].Text)
}

func TestTabIndentedVerbatim(t *testing.T) {
	root := parseDoc(t, 0, "\tcode\n")
	require.Len(t, root.Children, 1)
	assert.Equal(t, KindVerbatim, root.Children[0].Kind)
	assert.Equal(t, "code\n", root.Children[0].Text)
}

func TestFencedCode(t *testing.T) {
	root := parseDoc(t, EXT_FENCED_CODE_BLOCKS, "```go\nx := 1\n```\n")
	require.Len(t, root.Children, 1)
	v := root.Children[0]
	assert.Equal(t, KindVerbatim, v.Kind)
	assert.Equal(t, "go", v.Lang)
	assert.Equal(t, "x := 1\n", v.Text)
}

func TestFenceLengthMismatch(t *testing.T) {
	// A shorter close run is content; an equal-or-longer one closes.
	root := parseDoc(t, EXT_FENCED_CODE_BLOCKS, "````\ncode\n```\nmore\n````\n")
	require.Len(t, root.Children, 1)
	assert.Equal(t, "code\n```\nmore\n", root.Children[0].Text)

	root = parseDoc(t, EXT_FENCED_CODE_BLOCKS, "```\ncode\n````\nafter\n")
	require.Len(t, root.Children, 2)
	assert.Equal(t, "code\n", root.Children[0].Text)
	assert.Equal(t, KindPara, root.Children[1].Kind)
}

func TestFenceOtherCharDoesNotClose(t *testing.T) {
	root := parseDoc(t, EXT_FENCED_CODE_BLOCKS, "```\ncode\n~~~\n")
	require.Len(t, root.Children, 1)
	assert.Equal(t, "code\n~~~\n", root.Children[0].Text)
}

func TestHTMLBlockPassthroughAndSuppression(t *testing.T) {
	src := "<div>\nhi\n</div>\n\npara\n"
	out := render(t, 0, src)
	assert.Contains(t, out, "<div>")
	assert.Contains(t, out, "<p>para\n</p>")

	out = render(t, EXT_SUPPRESS_HTML_BLOCKS, src)
	assert.NotContains(t, out, "<div>")
	assert.Contains(t, out, "<p>para\n</p>")
}

func TestTocMarkerOnly(t *testing.T) {
	root := parseDoc(t, EXT_TOC, "[TOC]\n")
	require.Len(t, root.Children, 1)
	toc := root.Children[0]
	assert.Equal(t, KindToc, toc.Kind)
	assert.Empty(t, toc.Headings)
}

func TestTocSeesHeadingsInDocumentOrder(t *testing.T) {
	src := "# A\n\n[TOC]\n\n# B\n"
	root := parseDoc(t, EXT_TOC, src)
	var toc *Node
	root.Walk(func(n *Node) bool {
		if n.Kind == KindToc {
			toc = n
		}
		return true
	})
	require.NotNil(t, toc)
	require.Len(t, toc.Headings, 2)

	out := render(t, EXT_TOC, src)
	assert.Contains(t, out, `<a href="#a">A</a>`)
	assert.Contains(t, out, `<a href="#b">B</a>`)
	assert.Contains(t, out, `<h1 id="a">`)
}

func TestParagraphLookaheadLeavesBlankLine(t *testing.T) {
	root := parseDoc(t, 0, "one\n\ntwo\n")
	require.Len(t, root.Children, 2)
	assert.Equal(t, KindPara, root.Children[0].Kind)
	assert.Equal(t, KindPara, root.Children[1].Kind)
}
