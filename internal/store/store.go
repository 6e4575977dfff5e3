// Package store keeps parsed blueprints in PostgreSQL, with a pgvector
// designation fingerprint per blueprint for similarity search.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"

	"qfparse/internal/fingerprint"
	"qfparse/internal/parser"
	"qfparse/internal/serialize"
)

// Querier is the subset of *pgxpool.Pool the store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Record is one stored blueprint.
type Record struct {
	Hash        string
	Path        string
	Document    []byte
	Fingerprint []float32
	Sections    int
	Diagnostics int
}

// Match is a similarity search hit. Distance is the cosine distance, 0 for
// identical designation mixes.
type Match struct {
	Hash     string  `db:"hash"`
	Path     string  `db:"path"`
	Sections int     `db:"sections"`
	Distance float64 `db:"distance"`
}

// NewRecord builds the stored form of a parse result.
func NewRecord(res *parser.ParseResult) (Record, error) {
	doc, err := serialize.Marshal(res.Project)
	if err != nil {
		return Record{}, fmt.Errorf("serialize %s: %w", res.FilePath, err)
	}
	return Record{
		Hash:        res.Hash,
		Path:        res.FilePath,
		Document:    doc,
		Fingerprint: fingerprint.Of(res.Project),
		Sections:    len(res.Project.Sections()),
		Diagnostics: len(res.Diagnostics),
	}, nil
}

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS blueprints (
		hash        TEXT PRIMARY KEY,
		path        TEXT NOT NULL,
		document    JSONB NOT NULL,
		fingerprint vector(%d),
		sections    INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL DEFAULT 0,
		ingested_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, fingerprint.Dimensions),
}

// BlueprintStore handles blueprint persistence and fingerprint search.
type BlueprintStore struct {
	db Querier
}

// NewBlueprintStore creates a store over db, usually a *pgxpool.Pool.
func NewBlueprintStore(db Querier) *BlueprintStore {
	return &BlueprintStore{db: db}
}

// EnsureSchema creates the vector extension and the blueprints table.
func (s *BlueprintStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	log.Info().Msg("Blueprint schema ensured")
	return nil
}

// Upsert inserts a record. An existing hash keeps its document and takes the
// new path and diagnostics count.
func (s *BlueprintStore) Upsert(ctx context.Context, r Record) error {
	var vec any
	if !fingerprint.IsZero(r.Fingerprint) {
		vec = pgvector.NewVector(r.Fingerprint)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO blueprints (hash, path, document, fingerprint, sections, diagnostics)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (hash) DO UPDATE
		SET path = EXCLUDED.path,
		    diagnostics = EXCLUDED.diagnostics,
		    ingested_at = now()
	`, r.Hash, r.Path, string(r.Document), vec, r.Sections, r.Diagnostics)
	if err != nil {
		return fmt.Errorf("upsert blueprint %s: %w", r.Hash, err)
	}
	return nil
}

// UpdatePath records that a stored blueprint now lives at path.
func (s *BlueprintStore) UpdatePath(ctx context.Context, hash, path string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE blueprints SET path = $2
		WHERE hash = $1 AND path IS DISTINCT FROM $2
	`, hash, path)
	if err != nil {
		return fmt.Errorf("update path of %s: %w", hash, err)
	}
	return nil
}

// Has reports whether a blueprint with this hash is stored.
func (s *BlueprintStore) Has(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM blueprints WHERE hash = $1)`, hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup blueprint %s: %w", hash, err)
	}
	return exists, nil
}

// ListHashes returns every stored hash.
func (s *BlueprintStore) ListHashes(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT hash FROM blueprints`)
	if err != nil {
		return nil, fmt.Errorf("list blueprints: %w", err)
	}
	hashes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list blueprints: %w", err)
	}
	return hashes, nil
}

// ErrNoFingerprint is returned by Similar for an all-zero query vector.
var ErrNoFingerprint = errors.New("blueprint has no designation cells")

// Similar returns the topK stored blueprints closest to vec, skipping
// excludeHash.
func (s *BlueprintStore) Similar(ctx context.Context, vec []float32, excludeHash string, topK int) ([]Match, error) {
	if fingerprint.IsZero(vec) {
		return nil, ErrNoFingerprint
	}
	rows, err := s.db.Query(ctx, `
		SELECT hash, path, sections, fingerprint <=> $1 AS distance
		FROM blueprints
		WHERE fingerprint IS NOT NULL AND hash <> $2
		ORDER BY distance
		LIMIT $3
	`, pgvector.NewVector(vec), excludeHash, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	matches, err := pgx.CollectRows(rows, pgx.RowToStructByName[Match])
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	return matches, nil
}
