package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLabelIdempotent(t *testing.T) {
	for _, s := range []string{"Foo Bar", "  A\tB\nC  ", "already", "MiXeD case"} {
		once := normalizeLabel(s)
		assert.Equal(t, once, normalizeLabel(once))
	}
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "foobar", normalizeLabel("Foo Bar"))
	assert.Equal(t, "abc", normalizeLabel("a\tb\nc"))
}

func TestReferenceDefinitionPopulatesTable(t *testing.T) {
	root := parseDoc(t, 0, "[Label One]: http://e \"t\"\n")
	assert.Empty(t, root.Children, "a definition line produces no tree output")
	ref := root.References["labelone"]
	require.NotNil(t, ref)
	assert.Equal(t, "http://e", ref.URL)
	assert.Equal(t, "t", ref.Title)
}

func TestReferenceAngleURL(t *testing.T) {
	root := parseDoc(t, 0, "[a]: <http://e/x>\n")
	ref := root.References["a"]
	require.NotNil(t, ref)
	assert.Equal(t, "http://e/x", ref.URL)
}

func TestAbbreviationDefinitionAndExpansion(t *testing.T) {
	src := "*[HTML]: HyperText Markup Language\n\nHTML is neat. XHTML is not HTML5.\n"
	root := parseDoc(t, EXT_ABBREVIATIONS, src)
	abbr := root.Abbreviations["HTML"]
	require.NotNil(t, abbr)
	assert.Equal(t, "HyperText Markup Language", abbr.Title)

	out := render(t, EXT_ABBREVIATIONS, src)
	assert.Contains(t, out, `<abbr title="HyperText Markup Language">HTML</abbr> is neat.`)
	// Word boundaries: no expansion inside XHTML or HTML5.
	assert.Contains(t, out, "XHTML is not HTML5.")
}

func TestFootnoteDefinitionMultiLine(t *testing.T) {
	src := "X[^n]\n\n[^n]: first\n    second\n"
	root := parseDoc(t, EXT_FOOTNOTES, src)
	def := root.Footnotes["n"]
	require.NotNil(t, def)
	require.NotEmpty(t, def.Children)

	out := render(t, EXT_FOOTNOTES, src)
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
}

func TestDefinitionsInsideBlockQuoteStayLocal(t *testing.T) {
	// Definitions are only recognized at top level; one inside a quote
	// does not reach the document's table.
	src := "> [a]: http://e\n\n[x][a]\n"
	root := parseDoc(t, 0, src)
	_, ok := root.References["a"]
	assert.False(t, ok)
}

func TestDefinitionList(t *testing.T) {
	src := "Term\n:   meaning one\n:   meaning two\n"
	root := parseDoc(t, EXT_DEFINITIONS, src)
	require.Len(t, root.Children, 1)
	dl := root.Children[0]
	require.Equal(t, KindDefinitionList, dl.Kind)
	require.Len(t, dl.Children, 3)
	assert.Equal(t, KindDefinitionTerm, dl.Children[0].Kind)
	assert.Equal(t, KindDefinition, dl.Children[1].Kind)
	assert.Equal(t, KindDefinition, dl.Children[2].Kind)

	out := render(t, EXT_DEFINITIONS, src)
	assert.Contains(t, out, "<dl>")
	assert.Contains(t, out, "<dt>Term</dt>")
	assert.Contains(t, out, "<dd>meaning one</dd>")
}

func TestDefinitionListRequiresExtension(t *testing.T) {
	root := parseDoc(t, 0, "Term\n:   meaning\n")
	for _, c := range root.Children {
		assert.NotEqual(t, KindDefinitionList, c.Kind)
	}
}
