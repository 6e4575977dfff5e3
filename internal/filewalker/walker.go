package filewalker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"qfparse/internal/parser"

	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists blueprint file types handled by the tool.
var SupportedExtensions = map[string]bool{
	".csv": true,
}

// Walker traverses directories and dispatches blueprints to the matching importer.
type Walker struct {
	importers []parser.Importer
}

// NewWalker creates a Walker. With no importers it uses a default CSVImporter.
func NewWalker(importers ...parser.Importer) *Walker {
	if len(importers) == 0 {
		importers = []parser.Importer{parser.NewCSVImporter()}
	}
	return &Walker{importers: importers}
}

// FileEntry represents a discovered blueprint ready for parsing.
type FileEntry struct {
	Path     string
	Ext      string
	Importer parser.Importer
}

// Walk discovers all supported files under root, sorted by path.
func (w *Walker) Walk(root string) ([]FileEntry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var entries []FileEntry

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !SupportedExtensions[ext] {
			return nil
		}

		if imp := w.importerFor(ext); imp != nil {
			entries = append(entries, FileEntry{Path: path, Ext: ext, Importer: imp})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	log.Info().Int("count", len(entries)).Str("root", root).Msg("Discovered blueprints")
	return entries, nil
}

func (w *Walker) importerFor(ext string) parser.Importer {
	for _, imp := range w.importers {
		if imp.CanParse(ext) {
			return imp
		}
	}
	return nil
}

// ParseFile parses a single blueprint using its importer.
func (w *Walker) ParseFile(entry FileEntry) (*parser.ParseResult, error) {
	return entry.Importer.Parse(entry.Path)
}
