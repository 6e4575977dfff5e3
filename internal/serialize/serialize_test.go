package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type node struct {
	Name     string  `json:"name"`
	Next     *node   `json:"next"`
	Children []*node `json:"children"`
	hidden   int
}

type wrapped struct {
	Value int
}

func (w wrapped) Structure() any { return map[string]int{"wrapped": w.Value} }

type embedded struct {
	Inner
	Outer string `json:"outer"`
	Skip  string `json:"-"`
}

type Inner struct {
	A string `json:"a"`
}

func TestValueScalarsAndRecords(t *testing.T) {
	got, err := Value(embedded{Inner: Inner{A: "x"}, Outer: "y", Skip: "z"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "x", "outer": "y"}, got)

	got, err = Value([]any{1, "s", true, nil, 2.5, uint8(3)})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), "s", true, nil, 2.5, uint64(3)}, got)

	got, err = Value(wrapped{Value: 7})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"wrapped": int64(7)}, got)
}

func TestValueNilCollections(t *testing.T) {
	got, err := Value(node{Name: "leaf"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "leaf", "next": nil, "children": []any{}}, got)
}

func TestSharedValueIsNotCircular(t *testing.T) {
	leaf := &node{Name: "leaf"}
	root := &node{Name: "root", Children: []*node{leaf, leaf}}
	_, err := Value(root)
	assert.NoError(t, err)
}

func TestCircularReference(t *testing.T) {
	a := &node{Name: "a"}
	b := &node{Name: "b", Next: a}
	a.Next = b
	_, err := Value(a)
	assert.ErrorIs(t, err, ErrCircularReference)

	self := &node{Name: "self"}
	self.Children = []*node{self}
	_, err = Marshal(self)
	assert.ErrorIs(t, err, ErrCircularReference)
}

func TestUnsupportedValues(t *testing.T) {
	for _, v := range []any{
		make(chan int),
		func() {},
		complex(1, 2),
		map[int]string{1: "a"},
	} {
		_, err := Value(v)
		assert.ErrorIs(t, err, ErrUnsupportedValue, "%T", v)
	}
}

func TestMarshalSortedIndented(t *testing.T) {
	out, err := Marshal(map[string]any{"b": 1, "a": []string{"<x>"}})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": [\n    \"<x>\"\n  ],\n  \"b\": 1\n}\n", string(out))
}
