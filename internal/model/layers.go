package model

import "strings"

// Layer is either a *RawLayer or a *GridLayer.
type Layer interface {
	ID() ID
	isLayer()
}

// RawLayer holds the rows of a section without spatial meaning.
type RawLayer struct {
	id   ID
	rows [][]string
}

// NewRawLayer wraps rows verbatim.
func NewRawLayer(rows [][]string) *RawLayer {
	return &RawLayer{id: NewID(), rows: rows}
}

func (l *RawLayer) ID() ID { return l.id }

// Rows returns the captured rows in file order.
func (l *RawLayer) Rows() [][]string { return l.rows }

func (*RawLayer) isLayer() {}

// Structure implements the structural serialization hook.
func (l *RawLayer) Structure() any {
	rows := make([][]string, len(l.rows))
	for i, r := range l.rows {
		if r == nil {
			r = []string{}
		}
		rows[i] = r
	}
	return rawLayerDoc{RawLines: rows}
}

type rawLayerDoc struct {
	RawLines [][]string `json:"raw_lines"`
}

// GridLayer is one elevation of a grid section. The grid is dense and
// indexed [x][y]; empty slots are nil.
type GridLayer struct {
	id        ID
	width     int
	height    int
	relativeZ int
	visible   bool
	active    bool
	cells     [][]Cell
}

// NewGridLayer builds a layer sized to the bounding box of cells (at least 1x1).
// When two cells share a slot the later one wins.
func NewGridLayer(relativeZ int, cells []PlacedCell) *GridLayer {
	width, height := 1, 1
	for _, c := range cells {
		width = max(width, c.X+1)
		height = max(height, c.Y+1)
	}

	grid := make([][]Cell, width)
	for x := range grid {
		grid[x] = make([]Cell, height)
	}
	for _, c := range cells {
		if c.X < 0 || c.Y < 0 {
			continue
		}
		grid[c.X][c.Y] = c.Cell
	}

	return &GridLayer{
		id:        NewID(),
		width:     width,
		height:    height,
		relativeZ: relativeZ,
		cells:     grid,
	}
}

func (l *GridLayer) ID() ID         { return l.id }
func (l *GridLayer) Width() int     { return l.width }
func (l *GridLayer) Height() int    { return l.height }
func (l *GridLayer) RelativeZ() int { return l.relativeZ }

func (l *GridLayer) Visible() bool     { return l.visible }
func (l *GridLayer) SetVisible(v bool) { l.visible = v }
func (l *GridLayer) Active() bool      { return l.active }
func (l *GridLayer) SetActive(v bool)  { l.active = v }

// Cell returns the cell at (x, y), or nil when the slot is empty or out of range.
func (l *GridLayer) Cell(x, y int) Cell {
	if x < 0 || y < 0 || x >= l.width || y >= l.height {
		return nil
	}
	return l.cells[x][y]
}

// CellCount returns the number of populated slots.
func (l *GridLayer) CellCount() int {
	n := 0
	for _, col := range l.cells {
		for _, c := range col {
			if c != nil {
				n++
			}
		}
	}
	return n
}

// Each calls fn for every populated slot, column by column.
func (l *GridLayer) Each(fn func(x, y int, c Cell)) {
	for x, col := range l.cells {
		for y, c := range col {
			if c != nil {
				fn(x, y, c)
			}
		}
	}
}

// Rows renders every row as comma-joined origin text. Continuation and
// empty slots both render as a single space.
func (l *GridLayer) Rows() []string {
	rows := make([]string, l.height)
	parts := make([]string, l.width)
	for y := 0; y < l.height; y++ {
		for x := 0; x < l.width; x++ {
			parts[x] = " "
			c := l.cells[x][y]
			if c == nil || c.FromExpansion() {
				continue
			}
			if raw, ok := c.RawText(); ok {
				parts[x] = raw
			}
		}
		rows[y] = strings.Join(parts, ",")
	}
	return rows
}

func (*GridLayer) isLayer() {}

// Structure implements the structural serialization hook.
func (l *GridLayer) Structure() any {
	return gridLayerDoc{
		RelativeZ: l.relativeZ,
		Width:     l.width,
		Height:    l.height,
		Rows:      l.Rows(),
	}
}

type gridLayerDoc struct {
	RelativeZ int      `json:"relative_z"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Rows      []string `json:"rows"`
}
