package parser

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"qfparse/internal/model"
)

const (
	layerUp   = "#>"
	layerDown = "#<"
)

// splitter walks the rows of one file, cutting them into sections at each
// header row. A file whose first row is not a header starts with an
// implicit dig section.
type splitter struct {
	maxExpansion int

	sections []model.Section
	diags    []Diagnostic

	started int
	current *model.Header
	buf     [][]string
}

func splitSections(rows [][]string, maxExpansion int) ([]model.Section, []Diagnostic) {
	s := &splitter{maxExpansion: maxExpansion}
	s.run(rows)
	return s.sections, s.diags
}

func (s *splitter) run(rows [][]string) {
	for i, row := range rows {
		var next *model.Header
		if len(row) > 0 {
			if h, ok := ParseHeader(row[0], strconv.Itoa(s.started+1)); ok {
				next = &h
			}
		}
		if next == nil {
			s.buf = append(s.buf, row)
			if i != 0 {
				continue
			}
			next = &model.Header{Mode: model.ModeDig, Label: strconv.Itoa(s.started + 1)}
		}

		s.started++
		if s.current != nil {
			s.finalize()
		}
		s.current = next
	}
	if s.current != nil && len(s.buf) > 0 {
		s.finalize()
	}
}

func (s *splitter) finalize() {
	h := *s.current
	rows := s.buf
	s.buf = nil

	if !h.Mode.IsGrid() {
		s.sections = append(s.sections, model.NewRawSection(h, model.NewRawLayer(rows)))
		return
	}
	s.sections = append(s.sections, model.NewGridSection(h, s.gridLayers(h, rows)))
}

// gridLayers cuts a grid section body into elevations. "#>" moves one level
// up and "#<" one level down; other comment rows are dropped.
func (s *splitter) gridLayers(h model.Header, rows [][]string) []*model.GridLayer {
	lp := NewGridLayerParser(CellParserFor(h.Mode, s.maxExpansion), s.maxExpansion)

	var (
		layers []*model.GridLayer
		chunk  [][]string
		z      int
	)
	flush := func() {
		if len(chunk) == 0 {
			return
		}
		layer, diags := lp.Parse(z, chunk)
		layers = append(layers, layer)
		s.report(h.Label, diags)
		chunk = nil
	}

	for _, row := range rows {
		first := ""
		if len(row) > 0 {
			first = row[0]
		}
		switch {
		case first == layerUp:
			flush()
			z++
		case first == layerDown:
			flush()
			z--
		case strings.HasPrefix(first, "#"):
		default:
			chunk = append(chunk, row)
		}
	}
	flush()
	return layers
}

func (s *splitter) report(label string, diags []Diagnostic) {
	for _, d := range diags {
		d.Section = label
		log.Debug().
			Str("section", label).
			Int("z", d.Z).
			Int("x", d.X).
			Int("y", d.Y).
			Str("cell", d.Text).
			Err(d.Err).
			Msg("Skipped malformed cell")
		s.diags = append(s.diags, d)
	}
}
