package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTightBulletList(t *testing.T) {
	out := render(t, 0, "- a\n- b\n")
	assert.Equal(t, "<ul>\n<li>a\n</li>\n<li>b\n</li>\n</ul>\n", out)
}

func TestLooseListWrapsItemsInParagraphs(t *testing.T) {
	out := render(t, 0, "- a\n\n- b\n")
	assert.Contains(t, out, "<li><p>a\n</p>\n</li>")
	assert.Contains(t, out, "<li><p>b\n</p>\n</li>")
}

func TestLoosenessIsPerList(t *testing.T) {
	// One loose boundary makes every item of the list loose.
	root := parseDoc(t, 0, "- a\n\n- b\n- c\n")
	require.Len(t, root.Children, 1)
	list := root.Children[0]
	require.Equal(t, KindBulletList, list.Kind)
	for _, li := range list.Children {
		require.NotEmpty(t, li.Children)
		assert.Equal(t, KindPara, li.Children[0].Kind)
	}
}

func TestOrderedList(t *testing.T) {
	out := render(t, 0, "1. a\n2. b\n")
	assert.Equal(t, "<ol>\n<li>a\n</li>\n<li>b\n</li>\n</ol>\n", out)
}

func TestNestedList(t *testing.T) {
	root := parseDoc(t, 0, "- a\n    - b\n")
	require.Len(t, root.Children, 1)
	outer := root.Children[0]
	require.Equal(t, KindBulletList, outer.Kind)
	require.Len(t, outer.Children, 1)
	var nested *Node
	outer.Children[0].Walk(func(n *Node) bool {
		if n.Kind == KindBulletList {
			nested = n
		}
		return true
	})
	require.NotNil(t, nested, "indented item must become a nested list")
}

func TestListItemContinuationLine(t *testing.T) {
	out := render(t, 0, "- first\n  still first\n- second\n")
	root := parseDoc(t, 0, "- first\n  still first\n- second\n")
	require.Len(t, root.Children, 1)
	assert.Len(t, root.Children[0].Children, 2)
	assert.Contains(t, out, "still first")
}

func TestForceListItemPara(t *testing.T) {
	out := render(t, EXT_FORCELISTITEMPARA, "- a\n")
	assert.Contains(t, out, "<li><p>a\n</p>\n</li>")
}

func TestTaskListItems(t *testing.T) {
	src := "- [x] done\n- [ ] todo\n"
	root := parseDoc(t, EXT_TASKLISTITEMS, src)
	require.Len(t, root.Children, 1)
	list := root.Children[0]
	require.Len(t, list.Children, 2)
	assert.Equal(t, KindTaskListItem, list.Children[0].Kind)
	assert.True(t, list.Children[0].Done)
	assert.Equal(t, KindTaskListItem, list.Children[1].Kind)
	assert.False(t, list.Children[1].Done)

	out := render(t, EXT_TASKLISTITEMS, src)
	assert.Contains(t, out, `<input type="checkbox" disabled checked />`)
	assert.Contains(t, out, `<input type="checkbox" disabled />`)

	// Without the extension the marker is plain text.
	root = parseDoc(t, 0, src)
	assert.Equal(t, KindListItem, root.Children[0].Children[0].Kind)
}

func TestListInterruptsParagraph(t *testing.T) {
	root := parseDoc(t, 0, "text\n- item\n")
	require.Len(t, root.Children, 2)
	assert.Equal(t, KindPara, root.Children[0].Kind)
	assert.Equal(t, KindBulletList, root.Children[1].Kind)
}
