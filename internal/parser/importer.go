package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"qfparse/internal/model"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// CSVImporter reads comma separated Quickfort blueprints.
type CSVImporter struct {
	maxExpansion int
}

// Option configures a CSVImporter.
type Option func(*CSVImporter)

// WithMaxExpansion caps the cells one WxH group may emit and the slots a
// layer's bounding box may cover. Zero or less removes both caps.
func WithMaxExpansion(n int) Option {
	return func(p *CSVImporter) { p.maxExpansion = n }
}

// NewCSVImporter creates a CSVImporter.
func NewCSVImporter(opts ...Option) *CSVImporter {
	p := &CSVImporter{maxExpansion: DefaultMaxExpansion}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *CSVImporter) CanParse(ext string) bool {
	return ext == ".csv"
}

func (p *CSVImporter) Parse(filePath string) (*ParseResult, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read blueprint: %w", err)
	}
	res, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}
	res.FilePath = filePath
	log.Debug().
		Str("file", filePath).
		Int("sections", len(res.Project.Sections())).
		Int("diagnostics", len(res.Diagnostics)).
		Msg("Parsed blueprint")
	return res, nil
}

// ParseReader imports a blueprint from r.
func (p *CSVImporter) ParseReader(r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read blueprint: %w", err)
	}
	return p.ParseBytes(data)
}

// ParseBytes imports a blueprint held in memory.
func (p *CSVImporter) ParseBytes(data []byte) (*ParseResult, error) {
	rows, err := readRows(data)
	if err != nil {
		return nil, err
	}
	sections, diags := splitSections(rows, p.maxExpansion)
	return &ParseResult{
		Hash:        ContentHash(data),
		Project:     model.NewProject(sections),
		Diagnostics: diags,
	}, nil
}

// ContentHash returns the hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// readRows splits data into records. Blank lines become empty rows so that
// row index keeps matching the blueprint's y coordinate.
func readRows(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	lastLine := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		line, _ := r.FieldPos(0)
		for ; lastLine+1 < line; lastLine++ {
			rows = append(rows, []string{})
		}
		last := len(rec) - 1
		endLine, _ := r.FieldPos(last)
		lastLine = endLine + strings.Count(rec[last], "\n")
		rows = append(rows, rec)
	}

	total := bytes.Count(data, []byte("\n"))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		total++
	}
	for ; lastLine < total; lastLine++ {
		rows = append(rows, []string{})
	}
	return rows, nil
}
