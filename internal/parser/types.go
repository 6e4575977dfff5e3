package parser

import (
	"fmt"

	"qfparse/internal/model"
)

// Diagnostic records a grid cell that was rejected during import. The
// rest of the layer is still built; the cell is simply left empty.
type Diagnostic struct {
	// Section is the label of the section holding the cell.
	Section string
	// Z is the relative elevation of the layer.
	Z int
	// X and Y are the 0-based column and row within the layer.
	X, Y int
	// Text is the raw cell text.
	Text string
	Err  error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("section %s z=%d (%d, %d) %q: %v", d.Section, d.Z, d.X, d.Y, d.Text, d.Err)
}

// ParseResult holds the import output for a single file.
type ParseResult struct {
	// FilePath is the path the blueprint was read from, empty for in-memory input.
	FilePath string
	// Hash is the hex SHA-256 of the file content.
	Hash string
	// Project is the parsed document.
	Project *model.Project
	// Diagnostics lists rejected cells in file order.
	Diagnostics []Diagnostic
}

// Importer is the interface for blueprint file formats.
type Importer interface {
	// CanParse returns true if this importer handles the given file extension.
	CanParse(ext string) bool
	// Parse reads a blueprint file into a project.
	Parse(filePath string) (*ParseResult, error)
}
