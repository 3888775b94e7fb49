package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, ext Extensions, src string) string {
	t.Helper()
	out, err := New(ext, 0).MarkdownToHTML([]byte(src), nil, nil)
	require.NoError(t, err)
	return out
}

func TestEmptyInput(t *testing.T) {
	root, err := New(0, 0).Parse(nil)
	require.NoError(t, err)
	require.Equal(t, KindRoot, root.Kind)
	assert.Empty(t, root.Children)
	assert.Empty(t, root.References)
	assert.Empty(t, root.Footnotes)

	out := render(t, 0, "")
	assert.Equal(t, "", out)
}

func TestSimpleParagraph(t *testing.T) {
	out := render(t, 0, "hello world\n")
	assert.Equal(t, "<p>hello world\n</p>\n", out)
}

func TestHeadingAnchorLinks(t *testing.T) {
	out := render(t, EXT_EXTANCHORLINKS, "# H1\n")
	assert.Equal(t, "<h1><a name=\"h1\"></a>H1</h1>\n", out)

	out = render(t, EXT_EXTANCHORLINKS|EXT_EXTANCHORLINKS_WRAP, "# H1\n")
	assert.Equal(t, "<h1><a name=\"h1\">H1</a></h1>\n", out)
}

func TestEmphasisAfterCodeSpan(t *testing.T) {
	out := render(t, 0, "`x`_y_\n")
	assert.Contains(t, out, "<code>x</code>_y_")
	assert.NotContains(t, out, "<em>")

	out = render(t, EXT_RELAXED_STRONG_EMPHASIS_RULES, "`x`_y_\n")
	assert.Contains(t, out, "<code>x</code><em>y</em>")
}

func TestFootnoteNumberingIsFirstReferenceOrder(t *testing.T) {
	src := "A[^a] B[^b]\n\n[^b]: bee\n[^a]: ay\n"
	out := render(t, EXT_FOOTNOTES, src)
	assert.Contains(t, out, `<sup id="fnref-1"><a href="#fn-1">1</a></sup>`)
	assert.Contains(t, out, `<sup id="fnref-2"><a href="#fn-2">2</a></sup>`)
	assert.Contains(t, out, "<li id=\"fn-1\"><p>ay\n</p>")
	assert.Contains(t, out, "<li id=\"fn-2\"><p>bee\n</p>")
}

func TestReferenceLabelNormalization(t *testing.T) {
	out := render(t, 0, "[x][Y]\n\n[y]: http://e\n")
	assert.Contains(t, out, `<a href="http://e">x</a>`)
}

func TestTimeoutSurfacesAsErrTimeout(t *testing.T) {
	proc := New(0, time.Nanosecond)
	root, err := proc.Parse([]byte("hello *world*\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.False(t, errors.Is(err, ErrParseFailure))
	assert.Nil(t, root)

	out, err := proc.MarkdownToHTML([]byte("hello *world*\n"), nil, nil)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, "", out)
}

// structurallyEqual compares two subtrees field-by-field, ignoring the
// side tables.
func structurallyEqual(a, b *Node) bool {
	if a.Kind != b.Kind || a.Start != b.Start || a.End != b.End ||
		a.Text != b.Text || a.Level != b.Level || a.URL != b.URL ||
		len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !structurallyEqual(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func TestParseIsDeterministic(t *testing.T) {
	src := []byte("# T\n\npara *em* **strong** `code`\n\n- a\n- b\n\n> quote\n")
	ext := EXT_TABLES | EXT_FOOTNOTES | EXT_FENCED_CODE_BLOCKS
	proc := New(ext, 0)
	first, err := proc.Parse(src)
	require.NoError(t, err)
	second, err := proc.Parse(src)
	require.NoError(t, err)
	assert.True(t, structurallyEqual(first, second))
}

func assertIndexInvariants(t *testing.T, root *Node, srcLen int) {
	t.Helper()
	root.Walk(func(n *Node) bool {
		assert.GreaterOrEqual(t, n.Start, 0)
		assert.LessOrEqual(t, n.Start, n.End)
		assert.LessOrEqual(t, n.End, srcLen)
		for i := 1; i < len(n.Children); i++ {
			assert.LessOrEqual(t, n.Children[i-1].End, n.Children[i].Start,
				"sibling order at child %d of kind %d", i, n.Kind)
		}
		return true
	})
}

func TestIndexInvariants(t *testing.T) {
	srcs := []string{
		"plain para\n",
		"# head\n\npara with *em* and [link](http://e) text\n",
		"> a\n> > b\n> c\n",
		"- one\n- two\n\n    continued\n",
		"| a | b |\n|---|--:|\n| 1 | 2 |\n",
	}
	for _, src := range srcs {
		root, err := New(EXT_TABLES, 0).Parse([]byte(src))
		require.NoError(t, err)
		assertIndexInvariants(t, root, len(src))
	}
}

func TestTextCoalescence(t *testing.T) {
	// The dummy-identifier byte splits the text flush in two; the pieces
	// must come back as one Text node.
	root, err := New(EXT_INTELLIJ_DUMMY_IDENTIFIER, 0).Parse([]byte("a\x01b\n"))
	require.NoError(t, err)
	root.Walk(func(n *Node) bool {
		for i := 1; i < len(n.Children); i++ {
			if n.Children[i].Kind == KindText {
				assert.NotEqual(t, KindText, n.Children[i-1].Kind)
			}
		}
		return true
	})
	out := render(t, EXT_INTELLIJ_DUMMY_IDENTIFIER, "a\x01b\n")
	assert.Contains(t, out, "ab")
}

func TestBlockQuoteIndicesPointAtOriginalBuffer(t *testing.T) {
	src := "> a\n> > b\n> c\n"
	root, err := New(0, 0).Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	bq := root.Children[0]
	require.Equal(t, KindBlockQuote, bq.Kind)
	require.Len(t, bq.Children, 3)
	assert.Equal(t, KindPara, bq.Children[0].Kind)
	assert.Equal(t, KindBlockQuote, bq.Children[1].Kind)
	assert.Equal(t, KindPara, bq.Children[2].Kind)

	var inner *Node
	bq.Children[1].Walk(func(n *Node) bool {
		if n.Kind == KindText && strings.HasPrefix(n.Text, "b") {
			inner = n
		}
		return true
	})
	require.NotNil(t, inner)
	assert.Equal(t, 8, inner.Start, "inner text must index the original buffer")
	assert.Equal(t, byte('b'), src[inner.Start])
}

type nofollowRenderer struct {
	DefaultLinkRenderer
}

func (nofollowRenderer) Link(w *Printer, s *HTMLSerializer, n *Node, url, title string) {
	attrs := NewAttributesBuilder()
	attrs.Add("href", url)
	attrs.Add("rel", "nofollow")
	w.WriteString("<a")
	attrs.WriteTo(w)
	w.WriteByte('>')
	s.renderChildren(w, n)
	w.WriteString("</a>")
}

func TestCustomLinkRenderer(t *testing.T) {
	out, err := New(0, 0).MarkdownToHTML([]byte("[x](http://e)\n"), nofollowRenderer{}, nil)
	require.NoError(t, err)
	assert.Contains(t, out, `rel="nofollow"`)
}
