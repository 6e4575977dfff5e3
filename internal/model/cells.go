package model

// Cell is one populated grid slot. It is either a *DesignationCell or an
// *UnprocessedCell.
type Cell interface {
	// RawText is the literal source text. Only the origin cell of an
	// expansion group carries it.
	RawText() (string, bool)
	// FromExpansion is true for every cell of an expansion group except its origin.
	FromExpansion() bool

	isCell()
}

// CellSource carries the provenance shared by every cell kind.
type CellSource struct {
	Raw      string
	HasRaw   bool
	Expanded bool
}

// OriginSource is the provenance of a cell that holds its own source text.
func OriginSource(raw string) CellSource { return CellSource{Raw: raw, HasRaw: true} }

// ContinuationSource is the provenance of a non-origin expansion cell.
func ContinuationSource() CellSource { return CellSource{Expanded: true} }

func (s CellSource) RawText() (string, bool) { return s.Raw, s.HasRaw }
func (s CellSource) FromExpansion() bool     { return s.Expanded }

// DesignationCell is a dig-mode cell validated against the designation vocabulary.
type DesignationCell struct {
	CellSource
	Designation Designation
	Priority    int
}

// UnprocessedCell keeps the code text of non-dig grid modes verbatim.
type UnprocessedCell struct {
	CellSource
	CodeText string
}

func (*DesignationCell) isCell() {}
func (*UnprocessedCell) isCell() {}

// PlacedCell is a cell together with its layer coordinates.
type PlacedCell struct {
	X, Y int
	Cell Cell
}
