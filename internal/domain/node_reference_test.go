package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildReferenceTestTree() (root, left, right, leftChild *Node) {
	table := NewNodeTable()
	root = NewNode("Root", NodeTypeList, nil, table)
	left = NewNode("Left", NodeTypeList, root, table)
	right = NewNode("Right", NodeTypeCommand, root, table)
	leftChild = NewNode("LeftChild", NodeTypeEmpty, left, table)
	return
}

func TestNodeReferenceResolveHops(t *testing.T) {
	root, left, right, leftChild := buildReferenceTestTree()

	self := NodeReference{Steps: []RefStep{{Kind: RefSelf}}}
	n, ok := self.Resolve(leftChild)
	require.True(t, ok)
	assert.Same(t, leftChild, n)

	toParent := NodeReference{Steps: []RefStep{{Kind: RefParent}}}
	n, ok = toParent.Resolve(leftChild)
	require.True(t, ok)
	assert.Same(t, left, n)

	toChild := NodeReference{Steps: []RefStep{{Kind: RefChild, Name: "LeftChild"}}}
	n, ok = toChild.Resolve(left)
	require.True(t, ok)
	assert.Same(t, leftChild, n)

	toSibling := NodeReference{Steps: []RefStep{{Kind: RefSibling, Name: "Right"}}}
	n, ok = toSibling.Resolve(left)
	require.True(t, ok)
	assert.Same(t, right, n)

	multiHop := NodeReference{Steps: []RefStep{{Kind: RefParent}, {Kind: RefChild, Name: "Right"}}}
	n, ok = multiHop.Resolve(leftChild)
	require.True(t, ok)
	assert.Same(t, right, n)

	_ = root
}

func TestNodeReferenceResolveFailsOnUnknownName(t *testing.T) {
	_, left, _, _ := buildReferenceTestTree()
	bad := NodeReference{Steps: []RefStep{{Kind: RefChild, Name: "NoSuchChild"}}}
	_, ok := bad.Resolve(left)
	assert.False(t, ok)
}

func TestNodeReferenceResolveFailsPastRoot(t *testing.T) {
	root, _, _, _ := buildReferenceTestTree()
	pastRoot := NodeReference{Steps: []RefStep{{Kind: RefParent}}}
	_, ok := pastRoot.Resolve(root)
	assert.False(t, ok, "the root node has no parent")
}

func TestResolveCommandHandleVariableRejectsNonCommandNode(t *testing.T) {
	_, left, right, _ := buildReferenceTestTree()

	toRight := NodeReference{Steps: []RefStep{{Kind: RefSibling, Name: "Right"}}}
	v, err := toRight.ResolveCommandHandleVariable(left)
	require.NoError(t, err)
	assert.Same(t, right.CommandHandleVariable(), v)

	toLeft := NodeReference{Steps: []RefStep{{Kind: RefSibling, Name: "Left"}}}
	_, err = toLeft.ResolveCommandHandleVariable(right)
	assert.Error(t, err, "a CommandHandleVariable reference to a non-Command node must be rejected")
}

func TestResolveStateVariableOnUnresolvedReferenceErrors(t *testing.T) {
	_, left, _, _ := buildReferenceTestTree()
	bad := NodeReference{Steps: []RefStep{{Kind: RefChild, Name: "Ghost"}}}
	_, err := bad.ResolveStateVariable(left)
	assert.Error(t, err)
}
