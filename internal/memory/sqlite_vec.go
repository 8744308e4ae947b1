package memory

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteVecStore implements VectorStore on a single SQLite database file.
// Embeddings are stored as BLOBs (little-endian float32 arrays); cosine
// similarity is computed in Go, which is sub-millisecond at <10K rows.
// Metadata is a JSON column so collections can carry heterogeneous payloads.
type SQLiteVecStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS memory_items (
	id         TEXT NOT NULL,
	collection TEXT NOT NULL,
	content    TEXT NOT NULL,
	embedding  BLOB,
	metadata   TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (id, collection)
);
CREATE INDEX IF NOT EXISTS idx_memory_items_collection ON memory_items(collection);
`

// OpenSQLiteVecStore opens (or creates) the store under the given directory.
func OpenSQLiteVecStore(dir string) (*SQLiteVecStore, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, "memory.db"))
	if err != nil {
		return nil, fmt.Errorf("open memory db: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// under concurrent runs.
	db.SetMaxOpenConns(1)
	store := &SQLiteVecStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteVecStore wraps an existing database connection (used by tests).
func NewSQLiteVecStore(db *sql.DB) (*SQLiteVecStore, error) {
	store := &SQLiteVecStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteVecStore) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate memory schema: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteVecStore) Close() error {
	return s.db.Close()
}

// Upsert stores or updates an item with its embedding and metadata.
func (s *SQLiteVecStore) Upsert(ctx context.Context, collection, id string, vector []float32, payload map[string]any) error {
	content, _ := payload["content"].(string)
	meta, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	var blob []byte
	if len(vector) > 0 {
		blob = encodeFloat32s(vector)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory_items (id, collection, content, embedding, metadata)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id, collection) DO UPDATE SET
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`, id, collection, content, blob, string(meta))
	if err != nil {
		return fmt.Errorf("upsert memory item: %w", err)
	}
	return nil
}

// Search finds the top-k most similar items by cosine similarity, reported
// as distance = 1 - similarity so callers sort ascending.
func (s *SQLiteVecStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, embedding, metadata
		FROM memory_items
		WHERE collection = ? AND embedding IS NOT NULL
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query memory items: %w", err)
	}
	defer rows.Close()

	var candidates []Result
	for rows.Next() {
		var id, content, meta string
		var blob []byte
		if err := rows.Scan(&id, &content, &blob, &meta); err != nil {
			continue
		}

		stored := decodeFloat32s(blob)
		if len(stored) != len(vector) {
			continue // dimension mismatch, skip
		}

		candidates = append(candidates, Result{
			ID:       id,
			Content:  content,
			Distance: 1 - cosineSimilarity(vector, stored),
			Metadata: decodeMetadata(meta),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// SearchText matches items whose content contains any word of the query.
// Crude, but keeps recall working when no embedder is configured.
func (s *SQLiteVecStore) SearchText(ctx context.Context, collection, query string, limit int) ([]Result, error) {
	all, err := s.List(ctx, collection)
	if err != nil {
		return nil, err
	}

	words := strings.Fields(strings.ToLower(query))
	type scored struct {
		result Result
		hits   int
	}
	var candidates []scored
	for _, item := range all {
		content := strings.ToLower(item.Content)
		hits := 0
		for _, w := range words {
			if strings.Contains(content, w) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		item.Distance = 1 - float32(hits)/float32(len(words))
		candidates = append(candidates, scored{result: item, hits: hits})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].hits > candidates[j].hits
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results := make([]Result, len(candidates))
	for i, c := range candidates {
		results[i] = c.result
	}
	return results, nil
}

// List returns all items in a collection.
func (s *SQLiteVecStore) List(ctx context.Context, collection string) ([]Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content, metadata
		FROM memory_items
		WHERE collection = ?
		ORDER BY created_at
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("list memory items: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var id, content, meta string
		if err := rows.Scan(&id, &content, &meta); err != nil {
			continue
		}
		results = append(results, Result{
			ID:       id,
			Content:  content,
			Metadata: decodeMetadata(meta),
		})
	}
	return results, rows.Err()
}

// Delete removes the given IDs from a collection.
func (s *SQLiteVecStore) Delete(ctx context.Context, collection string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, 0, len(ids)+1)
	args = append(args, collection)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM memory_items WHERE collection = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("delete memory items: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Count returns the number of items in a collection.
func (s *SQLiteVecStore) Count(ctx context.Context, collection string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memory_items WHERE collection = ?`, collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count memory items: %w", err)
	}
	return n, nil
}

func decodeMetadata(meta string) map[string]any {
	var m map[string]any
	if json.Unmarshal([]byte(meta), &m) != nil {
		return map[string]any{}
	}
	return m
}

// encodeFloat32s converts a float32 slice to little-endian bytes.
func encodeFloat32s(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeFloat32s converts little-endian bytes back to a float32 slice.
func decodeFloat32s(b []byte) []float32 {
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		normA += ai * ai
		normB += bi * bi
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}
