package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumLookup(t *testing.T) {
	d, ok := ParseDesignation("bc")
	require.True(t, ok)
	assert.Equal(t, Claim, d)
	assert.Equal(t, "claim", d.Name())

	_, ok = ParseDesignation("zz")
	assert.False(t, ok)

	m, ok := ParseSectionMode("aliases")
	require.True(t, ok)
	assert.Equal(t, ModeAliases, m)
	_, ok = ParseSectionMode("DIG")
	assert.False(t, ok, "lookup is exact match")

	mk, ok := ParseMarker("label")
	require.True(t, ok)
	assert.Equal(t, MarkerLabel, mk)
}

func TestEnumValuesSorted(t *testing.T) {
	assert.Len(t, DesignationValues(), 29)
	assert.IsNonDecreasing(t, DesignationValues())
	assert.Equal(t, []string{"hidden", "label", "message", "start"}, MarkerValues())
	assert.Equal(t,
		[]string{"aliases", "build", "dig", "ignore", "meta", "notes", "place", "query", "zone"},
		SectionModeValues())
}

func TestSectionModeKinds(t *testing.T) {
	for _, m := range []SectionMode{ModeDig, ModeBuild, ModePlace, ModeQuery, ModeZone} {
		assert.True(t, m.IsGrid(), m)
	}
	for _, m := range []SectionMode{ModeMeta, ModeNotes, ModeIgnore, ModeAliases} {
		assert.False(t, m.IsGrid(), m)
	}
	assert.True(t, ModeDig.UsesDesignations())
	assert.False(t, ModeBuild.UsesDesignations())
}

func TestIDOrdering(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -b.Compare(a), a.Compare(b))
	assert.False(t, a.IsZero())
	assert.True(t, ID{}.IsZero())
}

func TestSectionStartString(t *testing.T) {
	var nilStart *SectionStart
	assert.Equal(t, "Empty", nilStart.String())
	assert.Equal(t, "Empty", (&SectionStart{}).String())
	assert.Equal(t, "(1, 2)", NewSectionStart(1, 2, "").String())
	assert.Equal(t, "(1, 2) on the stairs", NewSectionStart(1, 2, "on the stairs").String())
	assert.Equal(t, "upper left", (&SectionStart{Comment: "upper left"}).String())
}

func TestSectionLabelDefaultsToID(t *testing.T) {
	s := NewRawSection(Header{Mode: ModeNotes}, nil)
	assert.Equal(t, s.ID().String(), s.Label())
	assert.Nil(t, s.Start())
	assert.Empty(t, s.Layer().Rows())
}

func TestGridSectionStartNormalized(t *testing.T) {
	s := NewGridSection(Header{Mode: ModeDig, Label: "a"}, nil)
	start := s.Start()
	require.NotNil(t, start)
	require.NotNil(t, start.X)
	require.NotNil(t, start.Y)
	assert.Equal(t, 0, *start.X)
	assert.Equal(t, 0, *start.Y)
	assert.Empty(t, start.Comment)

	s = NewGridSection(Header{Mode: ModeDig, Start: &SectionStart{}}, nil)
	assert.Equal(t, "(0, 0)", s.Start().String())
}

func TestSectionStartIsCopied(t *testing.T) {
	h := Header{Mode: ModeBuild, Start: NewSectionStart(3, 4, "")}
	s := NewGridSection(h, nil)
	*h.Start.X = 9
	got := s.Start()
	assert.Equal(t, 3, *got.X)
	*got.Y = 9
	assert.Equal(t, 4, *s.Start().Y)
}

func TestGridLayerBounds(t *testing.T) {
	l := NewGridLayer(2, nil)
	assert.Equal(t, 1, l.Width())
	assert.Equal(t, 1, l.Height())
	assert.Equal(t, 2, l.RelativeZ())
	assert.Equal(t, 0, l.CellCount())

	first := &DesignationCell{CellSource: OriginSource("d"), Designation: Mine, Priority: 4}
	second := &DesignationCell{CellSource: OriginSource("h"), Designation: Channel, Priority: 4}
	l = NewGridLayer(0, []PlacedCell{
		{X: 2, Y: 1, Cell: first},
		{X: 2, Y: 1, Cell: second},
		{X: 0, Y: 0, Cell: &DesignationCell{CellSource: ContinuationSource(), Designation: Mine, Priority: 4}},
	})
	assert.Equal(t, 3, l.Width())
	assert.Equal(t, 2, l.Height())
	assert.Same(t, second, l.Cell(2, 1))
	assert.Nil(t, l.Cell(1, 1))
	assert.Nil(t, l.Cell(5, 5))
	assert.Equal(t, 2, l.CellCount())
	assert.Equal(t, []string{" , , ", " , ,h"}, l.Rows())
}

func twoLayerProject(t *testing.T) (*Project, []LayerKey) {
	t.Helper()
	grid := NewGridSection(Header{Mode: ModeDig, Label: "g"}, []*GridLayer{
		NewGridLayer(0, nil),
		NewGridLayer(1, nil),
	})
	raw := NewRawSection(Header{Mode: ModeNotes, Label: "n"}, NewRawLayer([][]string{{"hi"}}))
	p := NewProject([]Section{grid, raw})
	keys := p.LayerKeys()
	require.Len(t, keys, 2)
	return p, keys
}

func TestProjectIndex(t *testing.T) {
	p, keys := twoLayerProject(t)
	sections := p.Sections()
	require.Len(t, sections, 2)

	s, ok := p.Section(sections[1].ID())
	require.True(t, ok)
	assert.Equal(t, "n", s.Label())

	l, ok := p.GridLayer(keys[1])
	require.True(t, ok)
	assert.Equal(t, 1, l.RelativeZ())

	start, ok := p.SectionStart(sections[0].ID())
	require.True(t, ok)
	assert.Equal(t, "(0, 0)", start.String())

	start, ok = p.SectionStart(sections[1].ID())
	require.True(t, ok)
	assert.Nil(t, start)

	_, ok = p.Section(NewID())
	assert.False(t, ok)
}

func TestProjectVisibility(t *testing.T) {
	p, keys := twoLayerProject(t)
	assert.Empty(t, p.VisibleLayers())

	require.NoError(t, p.ShowLayers(keys[1], keys[0]))
	assert.Equal(t, keys, p.VisibleLayers())
	l, _ := p.GridLayer(keys[0])
	assert.True(t, l.Visible())

	bogus := LayerKey{Section: NewID(), Layer: NewID()}
	err := p.HideLayers(keys[0], bogus)
	require.ErrorIs(t, err, ErrUnknownLayer)
	assert.True(t, p.IsLayerVisible(keys[0]), "failed call changes nothing")

	require.NoError(t, p.SetVisibleLayers([]LayerKey{keys[1]}))
	assert.Equal(t, []LayerKey{keys[1]}, p.VisibleLayers())
	assert.False(t, l.Visible())

	p.ClearVisibleLayers()
	assert.Empty(t, p.VisibleLayers())
}
