package parser

import (
	"fmt"

	"qfparse/internal/model"
)

// GridLayerParser assembles one elevation of a grid section. Row index is
// y and field index is x.
type GridLayerParser struct {
	cells   CellParser
	maxArea int
}

// NewGridLayerParser returns a layer parser whose bounding box may cover at
// most maxArea slots. A maxArea of zero or less disables the limit.
func NewGridLayerParser(cells CellParser, maxArea int) *GridLayerParser {
	if cells == nil {
		cells = &UnprocessedCellParser{}
	}
	return &GridLayerParser{cells: cells, maxArea: maxArea}
}

// Parse builds the layer at relativeZ. Rejected cells are left empty and
// returned as diagnostics. A cell group that would grow the layer past the
// area limit is rejected with ErrExpansionTooLarge.
func (p *GridLayerParser) Parse(relativeZ int, rows [][]string) (*model.GridLayer, []Diagnostic) {
	var placed []model.PlacedCell
	var diags []Diagnostic
	var width, height int
	for y, row := range rows {
		for x, raw := range row {
			cells, err := p.cells.Parse(x, y, raw)
			if err == nil {
				w, h := extent(width, height, cells)
				if p.tooLarge(w, h) {
					err = fmt.Errorf("%w: layer would span %dx%d", ErrExpansionTooLarge, w, h)
				} else {
					width, height = w, h
				}
			}
			if err != nil {
				diags = append(diags, Diagnostic{Z: relativeZ, X: x, Y: y, Text: raw, Err: err})
				continue
			}
			placed = append(placed, cells...)
		}
	}
	return model.NewGridLayer(relativeZ, placed), diags
}

// extent grows a width x height bounding box to cover cells.
func extent(width, height int, cells []model.PlacedCell) (int, int) {
	for _, c := range cells {
		width = max(width, c.X+1)
		height = max(height, c.Y+1)
	}
	return width, height
}

func (p *GridLayerParser) tooLarge(width, height int) bool {
	if p.maxArea <= 0 || width == 0 || height == 0 {
		return false
	}
	return width > p.maxArea/height
}
