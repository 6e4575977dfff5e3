package parser

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"qfparse/internal/model"
)

var (
	// ErrMalformedCell is reported for cell text that does not follow the
	// CODE or CODE(WxH) shape.
	ErrMalformedCell = errors.New("malformed cell")
	// ErrUnknownDesignation is reported for well-formed codes outside the
	// designation vocabulary.
	ErrUnknownDesignation = errors.New("unknown designation")
	// ErrExpansionTooLarge is reported when WxH, or the layer it would
	// grow, exceeds the configured limit.
	ErrExpansionTooLarge = errors.New("expansion too large")
)

// DefaultMaxExpansion caps the number of cells one expansion group may emit
// and the area of one grid layer.
const DefaultMaxExpansion = 1 << 16

// emptyCellPattern matches cells that hold nothing but blanks and the
// spreadsheet placeholders ~ and `.
var emptyCellPattern = regexp.MustCompile("^[~`\\s]*$")

var designationPattern = regexp.MustCompile(`^(?P<designation>[A-Za-z]{1,2})?(?P<priority>[1-7])?$`)

// Code text is printable ASCII without whitespace or parentheses. An open
// parenthesis switches to the expansion state until the matching close.
var cellLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: `Whitespace`, Pattern: `[ \t\r\n]+`, Action: nil},
		{Name: `Open`, Pattern: `\(`, Action: lexer.Push("Expansion")},
		{Name: `Code`, Pattern: `[!-'*-~]+`, Action: nil},
	},
	"Expansion": {
		{Name: `Whitespace`, Pattern: `[ \t\r\n]+`, Action: nil},
		{Name: `Int`, Pattern: `[0-9]+`, Action: nil},
		{Name: `By`, Pattern: `x`, Action: nil},
		{Name: `Close`, Pattern: `\)`, Action: lexer.Pop()},
	},
})

type cellExpr struct {
	Code      string         `parser:"@Code"`
	Expansion *expansionExpr `parser:"( \"(\" @@ \")\" )?"`
}

type expansionExpr struct {
	Width  string `parser:"@Int \"x\""`
	Height string `parser:"@Int"`
}

var cellGrammar = participle.MustBuild[cellExpr](
	participle.Lexer(cellLexer),
	participle.Elide("Whitespace"),
)

// CellParser turns the text of one spreadsheet cell into zero or more
// placed cells. Empty cells yield nothing and no error; malformed cells
// yield nothing and an error describing the rejection.
type CellParser interface {
	Parse(x, y int, raw string) ([]model.PlacedCell, error)
}

// CellParserFor returns the cell parser used by grid sections of mode.
func CellParserFor(mode model.SectionMode, maxExpansion int) CellParser {
	base := expandingParser{maxCells: maxExpansion}
	if mode.UsesDesignations() {
		return &DesignationCellParser{expandingParser: base}
	}
	return &UnprocessedCellParser{expandingParser: base}
}

// IsEmptyCell reports whether raw holds no designation at all.
func IsEmptyCell(raw string) bool {
	return emptyCellPattern.MatchString(raw)
}

type expandingParser struct {
	maxCells int
}

func (p expandingParser) parseRaw(raw string) (code string, width, height int, err error) {
	expr, err := cellGrammar.ParseString("", raw)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformedCell, raw)
	}
	width, height = 1, 1
	if expr.Expansion != nil {
		width, err = strconv.Atoi(expr.Expansion.Width)
		if err == nil {
			height, err = strconv.Atoi(expr.Expansion.Height)
		}
		if err != nil {
			return "", 0, 0, fmt.Errorf("%w: %q", ErrMalformedCell, raw)
		}
	}
	if p.tooLarge(width, height) {
		return "", 0, 0, fmt.Errorf("%w: %q (%dx%d)", ErrExpansionTooLarge, raw, width, height)
	}
	return expr.Code, width, height, nil
}

func (p expandingParser) tooLarge(width, height int) bool {
	limit := p.maxCells
	if limit <= 0 {
		limit = math.MaxInt
	}
	if width == 0 || height == 0 {
		return false
	}
	return width > limit/height
}

// expand covers the width x height rectangle anchored at (x, y), x-major.
// The first cell is the origin and keeps the raw text.
func expand(raw string, x, y, width, height int, build func(model.CellSource) model.Cell) []model.PlacedCell {
	out := make([]model.PlacedCell, 0, width*height)
	for dx := 0; dx < width; dx++ {
		for dy := 0; dy < height; dy++ {
			src := model.ContinuationSource()
			if dx == 0 && dy == 0 {
				src = model.OriginSource(raw)
			}
			out = append(out, model.PlacedCell{X: x + dx, Y: y + dy, Cell: build(src)})
		}
	}
	return out
}

// DesignationCellParser validates codes against the designation vocabulary.
// A code may carry a designation, a priority 1-7, both or neither; the
// defaults are mine and 4.
type DesignationCellParser struct {
	expandingParser
}

func (p *DesignationCellParser) Parse(x, y int, raw string) ([]model.PlacedCell, error) {
	if IsEmptyCell(raw) {
		return nil, nil
	}
	code, width, height, err := p.parseRaw(raw)
	if err != nil {
		return nil, err
	}

	m := designationPattern.FindStringSubmatch(code)
	if m == nil {
		return nil, fmt.Errorf("%w: %q", ErrMalformedCell, raw)
	}

	designation := model.Mine
	if m[1] != "" {
		d, ok := model.ParseDesignation(m[1])
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDesignation, m[1])
		}
		designation = d
	}
	priority := 4
	if m[2] != "" {
		priority, _ = strconv.Atoi(m[2])
	}

	return expand(raw, x, y, width, height, func(src model.CellSource) model.Cell {
		return &model.DesignationCell{CellSource: src, Designation: designation, Priority: priority}
	}), nil
}

// UnprocessedCellParser keeps the code text of build, place, query and zone
// cells without interpreting it.
type UnprocessedCellParser struct {
	expandingParser
}

func (p *UnprocessedCellParser) Parse(x, y int, raw string) ([]model.PlacedCell, error) {
	if IsEmptyCell(raw) {
		return nil, nil
	}
	code, width, height, err := p.parseRaw(raw)
	if err != nil {
		return nil, err
	}
	return expand(raw, x, y, width, height, func(src model.CellSource) model.Cell {
		return &model.UnprocessedCell{CellSource: src, CodeText: code}
	}), nil
}
