package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textNode(s string, start int) *Node {
	n := NewNode(KindText, start, start+len(s))
	n.Text = s
	return n
}

func TestAppendCoalescesAdjacentText(t *testing.T) {
	p := NewNode(KindPara, 0, 10)
	p.Append(textNode("ab", 0))
	p.Append(textNode("cd", 2))
	require.Len(t, p.Children, 1)
	assert.Equal(t, "abcd", p.Children[0].Text)
	assert.Equal(t, 0, p.Children[0].Start)
	assert.Equal(t, 4, p.Children[0].End)
}

func TestSpecialTextNeverCoalesces(t *testing.T) {
	p := NewNode(KindPara, 0, 10)
	p.Append(textNode("ab", 0))
	sp := NewNode(KindSpecialText, 2, 3)
	sp.Text = "*"
	p.Append(sp)
	p.Append(textNode("cd", 3))
	assert.Len(t, p.Children, 3)
}

func TestShift(t *testing.T) {
	p := NewNode(KindPara, 0, 4)
	p.Append(textNode("ab", 0))
	p.Shift(10)
	assert.Equal(t, 10, p.Start)
	assert.Equal(t, 14, p.End)
	assert.Equal(t, 10, p.Children[0].Start)
	assert.Equal(t, 12, p.Children[0].End)
}

func TestRemap(t *testing.T) {
	// Compacted indices 0..3 map to scattered original positions.
	ixMap := []int{5, 6, 9, 10}
	p := NewNode(KindPara, 0, 4)
	p.Append(textNode("ab", 0))
	p.Remap(ixMap)
	assert.Equal(t, 5, p.Start)
	// End == len(ixMap) maps one past the last original position.
	assert.Equal(t, 11, p.End)
	assert.Equal(t, 5, p.Children[0].Start)
	assert.Equal(t, 9, p.Children[0].End)
}

func TestDummyReferenceKeyDistinguishable(t *testing.T) {
	n := NewNode(KindRefLink, 0, 0)
	assert.False(t, n.HasReferenceKey())
	n.SetDummyReferenceKey()
	assert.True(t, n.HasReferenceKey())
	assert.True(t, n.IsDummyReferenceKey())

	m := NewNode(KindRefLink, 0, 0)
	m.SetReferenceKey("k")
	assert.True(t, m.HasReferenceKey())
	assert.False(t, m.IsDummyReferenceKey())
}

func TestWalkPruning(t *testing.T) {
	root := NewRoot()
	p := NewNode(KindPara, 0, 2)
	p.Append(textNode("x", 0))
	root.Append(p)
	var kinds []Kind
	root.Walk(func(n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != KindPara
	})
	assert.Equal(t, []Kind{KindRoot, KindPara}, kinds)
}
