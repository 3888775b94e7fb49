package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingIDCollisionsGetSuffixes(t *testing.T) {
	out := render(t, EXT_EXTANCHORLINKS, "# Dup\n\n# Dup\n")
	assert.Contains(t, out, `<a name="dup">`)
	assert.Contains(t, out, `<a name="dup-1">`)
}

func TestHeadingIDMatchesTocID(t *testing.T) {
	src := "[TOC]\n\n# Alpha Beta\n"
	out := render(t, EXT_TOC|EXT_EXTANCHORLINKS, src)
	assert.Contains(t, out, `<a name="alpha-beta">`)
	assert.Contains(t, out, `<a href="#alpha-beta">`)
}

func TestPlainAnchorLinksIDAlgorithm(t *testing.T) {
	// Plain anchor-links takes the first alphanumeric-and-space run.
	out := render(t, EXT_ANCHORLINKS, "# Alpha Beta: rest\n")
	assert.Contains(t, out, `<a name="alpha beta">`)
}

type fixedIDComputer struct{}

func (fixedIDComputer) ComputeID(n *Node, existingID, derivedID string) string {
	if derivedID == "skip" {
		return ""
	}
	return "custom-" + derivedID
}

func (fixedIDComputer) MatchBlock(p *Parser, data []byte, offset int) (*Node, int, bool) {
	return nil, 0, false
}

func TestHeaderIDComputerOverride(t *testing.T) {
	proc := New(EXT_EXTANCHORLINKS, 0, fixedIDComputer{})
	out, err := proc.MarkdownToHTML([]byte("# Title\n\n# skip\n"), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, `<a name="custom-title">`)
	// Empty id means no anchor at all for that heading.
	assert.Contains(t, out, "<h1>skip</h1>")
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "a-b-c", slugify("A  b!!c"))
	assert.Equal(t, "h1", slugify("H1"))
	assert.Equal(t, "", slugify("!!!"))
}

func TestVerbatimLeadingNewlinesBecomeBreaks(t *testing.T) {
	root := NewRoot()
	v := NewNode(KindVerbatim, 0, 0)
	v.Text = "\n\ncode\n"
	root.Append(v)
	out := NewHTMLSerializer(0, nil, nil).Render(root)
	assert.Equal(t, "<pre><code><br/><br/>code\n</code></pre>\n", out)
}

func TestVerbatimLanguageClass(t *testing.T) {
	out := render(t, EXT_FENCED_CODE_BLOCKS, "```go\nx\n```\n")
	assert.Contains(t, out, `<pre><code class="go">x`)
}

type upperVerbatim struct{}

func (upperVerbatim) Serialize(w *Printer, n *Node) {
	w.WriteString("<pre class=\"upper\">")
	w.WriteEscaped(strings.ToUpper(n.Text))
	w.WriteString("</pre>")
}

func TestVerbatimSerializerRegistry(t *testing.T) {
	vs := map[string]VerbatimSerializer{"shout": upperVerbatim{}}
	out, err := New(EXT_FENCED_CODE_BLOCKS, 0).MarkdownToHTML([]byte("```shout\nhi\n```\n"), nil, vs)
	require.NoError(t, err)
	assert.Contains(t, out, `<pre class="upper">HI`)

	// An unregistered language falls back to the default key when present.
	vs[VerbatimDefaultKey] = upperVerbatim{}
	out, err = New(EXT_FENCED_CODE_BLOCKS, 0).MarkdownToHTML([]byte("```other\nlow\n```\n"), nil, vs)
	require.NoError(t, err)
	assert.Contains(t, out, "LOW")
}

func TestUnclosedEmphasisNodeRendersOpenChars(t *testing.T) {
	root := NewRoot()
	em := NewNode(KindEmphasis, 0, 0)
	em.OpenChars = "*"
	em.Closed = false
	txt := NewNode(KindText, 0, 0)
	txt.Text = "body"
	em.Append(txt)
	root.Append(em)
	out := NewHTMLSerializer(0, nil, nil).Render(root)
	assert.Equal(t, "*body", out)
}

func TestUnreferencedFootnotesOmitted(t *testing.T) {
	src := "A[^used]\n\n[^used]: yes\n[^lost]: no\n"
	out := render(t, EXT_FOOTNOTES, src)
	assert.Contains(t, out, "yes")
	assert.NotContains(t, out, "no\n</p>")
	assert.NotContains(t, out, "fn-2")
}

func TestRepeatedFootnoteRefReusesNumber(t *testing.T) {
	src := "A[^a] and again[^a]\n\n[^a]: ay\n"
	out := render(t, EXT_FOOTNOTES, src)
	assert.Equal(t, 2, strings.Count(out, `href="#fn-1"`))
	assert.Equal(t, 1, strings.Count(out, `<li id="fn-1">`))
	assert.NotContains(t, out, "fn-2")
}

type boxPlugin struct{}

func (boxPlugin) MatchBlock(p *Parser, data []byte, offset int) (*Node, int, bool) {
	if offset >= len(data) || data[offset] != '%' {
		return nil, 0, false
	}
	end := offset
	for end < len(data) && data[end] != '\n' {
		end++
	}
	n := NewNode(KindPlugin, offset, end)
	n.PluginName = "box"
	n.Text = string(data[offset+1 : end])
	if end < len(data) {
		end++
	}
	return n, end - offset, true
}

func (boxPlugin) Render(w *Printer, n *Node, s *HTMLSerializer) bool {
	if n.PluginName != "box" {
		return false
	}
	w.WriteString(`<div class="box">`)
	w.WriteEscaped(n.Text)
	w.WriteString("</div>\n")
	return true
}

func TestBlockPluginWithSerializer(t *testing.T) {
	proc := New(0, 0, boxPlugin{})
	out, err := proc.MarkdownToHTML([]byte("% boxed\n\npara\n"), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="box"> boxed</div>`)
	assert.Contains(t, out, "<p>para\n</p>")
}

func TestUnknownNodeWithoutPluginPanics(t *testing.T) {
	root := NewRoot()
	root.Append(&Node{Kind: KindPlugin, PluginName: "nobody"})
	assert.Panics(t, func() {
		NewHTMLSerializer(0, nil, nil).Render(root)
	})
}

func TestQuotedRendering(t *testing.T) {
	out := render(t, EXT_QUOTES, "«guillemets»\n")
	assert.Contains(t, out, "&laquo;guillemets&raquo;")
}
