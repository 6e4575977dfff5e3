package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"qfparse/internal/model"
)

// SectionResult is a stored section found by a graph query.
type SectionResult struct {
	Path    string
	Hash    string
	Ordinal int64
	Label   string
	Layers  int64
}

// GraphQuerier reads blueprint structure back from Neo4j.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// SectionsByMode lists every stored section of the given mode, ordered by
// blueprint path then position in the file.
func (gq *GraphQuerier) SectionsByMode(ctx context.Context, mode model.SectionMode) ([]SectionResult, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (b:Blueprint)-[:HAS_SECTION]->(s:Section {mode: $mode})
		OPTIONAL MATCH (s)-[:HAS_LAYER]->(l:Layer)
		RETURN b.path AS path, b.hash AS hash, s.ordinal AS ordinal, s.label AS label, count(l) AS layers
		ORDER BY path, ordinal
	`, map[string]any{"mode": mode.String()})
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}

	var sections []SectionResult
	for result.Next(ctx) {
		record := result.Record()
		path, _ := record.Get("path")
		hash, _ := record.Get("hash")
		label, _ := record.Get("label")
		ordinal, _, err := neo4j.GetRecordValue[int64](record, "ordinal")
		if err != nil {
			return nil, fmt.Errorf("read ordinal: %w", err)
		}
		layers, _, err := neo4j.GetRecordValue[int64](record, "layers")
		if err != nil {
			return nil, fmt.Errorf("read layer count: %w", err)
		}

		sections = append(sections, SectionResult{
			Path:    fmt.Sprintf("%v", path),
			Hash:    fmt.Sprintf("%v", hash),
			Ordinal: ordinal,
			Label:   fmt.Sprintf("%v", label),
			Layers:  layers,
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}

	log.Debug().Str("mode", mode.String()).Int("count", len(sections)).Msg("Graph query complete")
	return sections, nil
}
