package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qfparse/internal/fingerprint"
	"qfparse/internal/parser"
)

type execCall struct {
	sql  string
	args []any
}

type fakeDB struct {
	execs  []execCall
	exists bool
	err    error
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return pgconn.NewCommandTag("INSERT 0 1"), f.err
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return fakeRow{value: f.exists, err: f.err}
}

type fakeRow struct {
	value bool
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.value
	return nil
}

func parse(t *testing.T, src string) *parser.ParseResult {
	t.Helper()
	res, err := parser.NewCSVImporter().ParseBytes([]byte(src))
	require.NoError(t, err)
	res.FilePath = "mem.csv"
	return res
}

func TestNewRecord(t *testing.T) {
	res := parse(t, "#dig label(a)\nd,zz\n#notes\nhi\n")
	rec, err := NewRecord(res)
	require.NoError(t, err)

	assert.Equal(t, res.Hash, rec.Hash)
	assert.Equal(t, "mem.csv", rec.Path)
	assert.Equal(t, 2, rec.Sections)
	assert.Equal(t, 1, rec.Diagnostics)
	assert.Len(t, rec.Fingerprint, fingerprint.Dimensions)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Document, &doc))
	assert.Len(t, doc["sections"], 2)
}

func TestEnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewBlueprintStore(db).EnsureSchema(context.Background()))
	require.Len(t, db.execs, 2)
	assert.Contains(t, db.execs[1].sql, "vector(29)")

	failing := NewBlueprintStore(&fakeDB{err: errors.New("denied")})
	assert.ErrorContains(t, failing.EnsureSchema(context.Background()), "ensure schema")
}

func TestUpsertArguments(t *testing.T) {
	db := &fakeDB{}
	s := NewBlueprintStore(db)

	rec, err := NewRecord(parse(t, "d,h\n"))
	require.NoError(t, err)
	require.NoError(t, s.Upsert(context.Background(), rec))
	require.Len(t, db.execs, 1)
	assert.True(t, strings.Contains(db.execs[0].sql, "ON CONFLICT (hash)"))

	args := db.execs[0].args
	assert.Equal(t, rec.Hash, args[0])
	vec, ok := args[3].(pgvector.Vector)
	require.True(t, ok)
	assert.Equal(t, rec.Fingerprint, vec.Slice())

	rec, err = NewRecord(parse(t, "#notes\nno cells\n"))
	require.NoError(t, err)
	require.NoError(t, s.Upsert(context.Background(), rec))
	assert.Nil(t, db.execs[1].args[3], "zero fingerprint is stored as NULL")
}

func TestHas(t *testing.T) {
	found, err := NewBlueprintStore(&fakeDB{exists: true}).Has(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, found)

	_, err = NewBlueprintStore(&fakeDB{err: errors.New("down")}).Has(context.Background(), "abc")
	assert.ErrorContains(t, err, "lookup blueprint abc")
}

func TestSimilarRejectsZeroVector(t *testing.T) {
	_, err := NewBlueprintStore(&fakeDB{}).Similar(context.Background(), make([]float32, fingerprint.Dimensions), "", 5)
	assert.ErrorIs(t, err, ErrNoFingerprint)
}

func TestUpdatePath(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewBlueprintStore(db).UpdatePath(context.Background(), "abc", "moved/stairs.csv"))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0].sql, "UPDATE blueprints SET path")
	assert.Equal(t, []any{"abc", "moved/stairs.csv"}, db.execs[0].args)

	err := NewBlueprintStore(&fakeDB{err: errors.New("down")}).UpdatePath(context.Background(), "abc", "x.csv")
	assert.ErrorContains(t, err, "update path of abc")
}
