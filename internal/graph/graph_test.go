package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qfparse/internal/parser"
)

func TestProjectParams(t *testing.T) {
	res, err := parser.NewCSVImporter().ParseBytes([]byte(
		"#dig label(stairs) start(2;2)\nd\n#>\nj\n#>\nu\n#notes\nhello\n",
	))
	require.NoError(t, err)

	sections, layers, links := projectParams("h", res.Project)
	require.Len(t, sections, 2)
	assert.Equal(t, "h:1", sections[0]["key"])
	assert.Equal(t, "h:2", sections[1]["key"])

	props := sections[0]["props"].(map[string]any)
	assert.Equal(t, "dig", props["mode"])
	assert.Equal(t, "stairs", props["label"])
	assert.Equal(t, "(1, 1)", props["start"])
	assert.Equal(t, int64(1), props["ordinal"])
	assert.Equal(t, "Empty", sections[1]["props"].(map[string]any)["start"])

	require.Len(t, layers, 3)
	for i, l := range layers {
		assert.Equal(t, LayerKey("h:1", i), l["key"])
		assert.Equal(t, "h:1", l["section"])
		assert.Equal(t, int64(i), l["props"].(map[string]any)["relative_z"])
	}

	assert.Equal(t, []map[string]any{
		{"from": "h:1:0", "to": "h:1:1"},
		{"from": "h:1:1", "to": "h:1:2"},
	}, links)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "abc:3", SectionKey("abc", 3))
	assert.Equal(t, "abc:3:0", LayerKey(SectionKey("abc", 3), 0))
}
