package graph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"qfparse/internal/model"
)

// GraphBuilder mirrors blueprint structure into Neo4j:
//
//	(:Blueprint)-[:HAS_SECTION]->(:Section)-[:HAS_LAYER]->(:Layer)
//	(:Layer)-[:NEXT]->(:Layer)
//
// Node keys derive from the blueprint content hash, so re-ingesting the
// same file updates the same nodes.
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (b:Blueprint) REQUIRE b.hash IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (s:Section) REQUIRE s.key IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (l:Layer) REQUIRE l.key IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// SectionKey identifies the ordinal-th (1-based) section of a blueprint.
func SectionKey(hash string, ordinal int) string {
	return hash + ":" + strconv.Itoa(ordinal)
}

// LayerKey identifies the index-th layer of a section.
func LayerKey(sectionKey string, index int) string {
	return sectionKey + ":" + strconv.Itoa(index)
}

// projectParams flattens p into Cypher parameters. Sections and layers keep
// file order; links chain consecutive layers of a section.
func projectParams(hash string, p *model.Project) (sections []map[string]any, layers []map[string]any, links []map[string]any) {
	for i, s := range p.Sections() {
		key := SectionKey(hash, i+1)
		props := map[string]any{
			"ordinal": int64(i + 1),
			"mode":    s.Mode().String(),
			"label":   s.Label(),
			"hidden":  s.Hidden(),
			"start":   s.Start().String(),
			"message": s.Message(),
			"comment": s.Comment(),
		}
		sections = append(sections, map[string]any{"key": key, "props": props})

		gs, ok := s.(*model.GridSection)
		if !ok {
			continue
		}
		var prev string
		for j, l := range gs.Layers() {
			lk := LayerKey(key, j)
			layers = append(layers, map[string]any{
				"key":     lk,
				"section": key,
				"props": map[string]any{
					"relative_z": int64(l.RelativeZ()),
					"width":      int64(l.Width()),
					"height":     int64(l.Height()),
					"cells":      int64(l.CellCount()),
				},
			})
			if prev != "" {
				links = append(links, map[string]any{"from": prev, "to": lk})
			}
			prev = lk
		}
	}
	return sections, layers, links
}

// UpsertProject merges the blueprint, its sections and layers.
func (gb *GraphBuilder) UpsertProject(ctx context.Context, hash, path string, p *model.Project) error {
	sections, layers, links := projectParams(hash, p)

	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (b:Blueprint {hash: $hash})
		SET b.path = $path, b.sections = $count
		WITH b
		UNWIND $sections AS s
		MERGE (sec:Section {key: s.key})
		SET sec += s.props
		MERGE (b)-[:HAS_SECTION]->(sec)
	`, map[string]any{
		"hash":     hash,
		"path":     path,
		"count":    int64(len(sections)),
		"sections": sections,
	})
	if err != nil {
		return fmt.Errorf("upsert blueprint %s: %w", path, err)
	}

	if len(layers) > 0 {
		_, err = session.Run(ctx, `
			UNWIND $layers AS l
			MATCH (sec:Section {key: l.section})
			MERGE (ly:Layer {key: l.key})
			SET ly += l.props
			MERGE (sec)-[:HAS_LAYER]->(ly)
		`, map[string]any{"layers": layers})
		if err != nil {
			return fmt.Errorf("upsert layers of %s: %w", path, err)
		}
	}

	if len(links) > 0 {
		_, err = session.Run(ctx, `
			UNWIND $links AS ln
			MATCH (a:Layer {key: ln.from})
			MATCH (b:Layer {key: ln.to})
			MERGE (a)-[:NEXT]->(b)
		`, map[string]any{"links": links})
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Failed to link layers")
		}
	}

	log.Debug().
		Str("file", path).
		Int("sections", len(sections)).
		Int("layers", len(layers)).
		Msg("Upserted blueprint graph")
	return nil
}
