package memory

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	vecs, err := NewSQLiteVecStore(db)
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(vecs, hashEmbedder{})
}

// hashEmbedder produces deterministic 8-dim vectors from character counts so
// tests run without a model endpoint.
type hashEmbedder struct{}

func (hashEmbedder) Embed(_ context.Context, input string) ([]float32, error) {
	v := make([]float32, 8)
	for i, r := range input {
		v[i%8] += float32(r%13) / 13
	}
	return v, nil
}

func TestAddAndSearchConversations(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id, err := store.AddConversation(ctx, "what are digital twins", "a digital twin is a virtual model", nil)
	if err != nil {
		t.Fatal(err)
	}
	if id != "conv_0" {
		t.Errorf("expected conv_0, got %q", id)
	}

	id2, err := store.AddConversation(ctx, "explain data governance", "data governance is...", nil)
	if err != nil {
		t.Fatal(err)
	}
	if id2 != "conv_1" {
		t.Errorf("expected conv_1, got %q", id2)
	}

	results, err := store.SearchConversations(ctx, "what are digital twins", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if q, _ := results[0].Metadata["query"].(string); q != "what are digital twins" {
		t.Errorf("expected query metadata preserved, got %q", q)
	}
}

func TestStoreDocument_ChunkOrdinalsContiguous(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	content := strings.Repeat("The pipeline produces structured deliverables. ", 75) // ~3.5k chars
	docID, err := store.StoreDocument(ctx, Document{
		Filename: "strategy.txt",
		FileType: "txt",
		Content:  content,
	})
	if err != nil {
		t.Fatal(err)
	}
	if docID != DocumentID("strategy.txt") {
		t.Errorf("expected deterministic document ID")
	}
	if len(docID) != 12 {
		t.Errorf("expected 12-hex document ID, got %q", docID)
	}

	chunks, err := store.GetDocument(ctx, docID)
	if err != nil {
		t.Fatal(err)
	}
	want := len(ChunkText(content, DefaultChunkSize, DefaultChunkOverlap))
	if len(chunks) != want {
		t.Fatalf("expected %d chunks, got %d", want, len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: ordinal %d, want %d", i, c.Index, i)
		}
		if c.Total != want {
			t.Errorf("chunk %d: total %d, want %d", i, c.Total, want)
		}
		if c.ID != docID+"_chunk_"+strconv.Itoa(i) {
			t.Errorf("chunk %d: unexpected ID %q", i, c.ID)
		}
	}
}

func TestSearchDocuments_ReturnsMatchingChunk(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	docID, err := store.StoreDocument(ctx, Document{
		Filename: "notes.md",
		FileType: "md",
		Content:  strings.Repeat("Metadata management requires a catalog. ", 100),
	})
	if err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchDocuments(ctx, "metadata catalog", 1, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if id, _ := results[0].Metadata["document_id"].(string); id != docID {
		t.Errorf("expected document_id %q, got %q", docID, id)
	}
}

func TestSearchDocuments_FileTypeFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, _ = store.StoreDocument(ctx, Document{Filename: "a.txt", FileType: "txt", Content: "alpha content"})
	_, _ = store.StoreDocument(ctx, Document{Filename: "b.md", FileType: "md", Content: "alpha content too"})

	results, err := store.SearchDocuments(ctx, "alpha", 5, "md")
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if ft, _ := r.Metadata["file_type"].(string); ft != "md" {
			t.Errorf("filter leaked file type %q", ft)
		}
	}
	if len(results) == 0 {
		t.Error("expected at least one md result")
	}
}

func TestListAndDeleteDocuments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	docID, err := store.StoreDocument(ctx, Document{
		Filename: "report.txt",
		FileType: "txt",
		Content:  "tiny document",
	})
	if err != nil {
		t.Fatal(err)
	}

	infos, err := store.ListDocuments(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 {
		t.Fatalf("expected 1 document, got %d", len(infos))
	}
	if infos[0].Filename != "report.txt" || infos[0].TotalChunks != 1 {
		t.Errorf("unexpected document info %+v", infos[0])
	}

	ok, err := store.DeleteDocument(ctx, docID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("expected delete to report success")
	}

	ok, err = store.DeleteDocument(ctx, docID)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("second delete should report not found")
	}
}

func TestStats(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, _ = store.AddConversation(ctx, "q1", "r1", nil)
	_, _ = store.AddConversation(ctx, "q2", "r2", nil)
	_, _ = store.StoreDocument(ctx, Document{Filename: "d.txt", FileType: "txt", Content: "doc"})

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalConversations != 2 {
		t.Errorf("expected 2 conversations, got %d", stats.TotalConversations)
	}
	if stats.TotalDocuments != 1 {
		t.Errorf("expected 1 document, got %d", stats.TotalDocuments)
	}
	if stats.TotalChunks != 1 {
		t.Errorf("expected 1 chunk, got %d", stats.TotalChunks)
	}
}

func TestClearConversations_LeavesDocuments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, _ = store.AddConversation(ctx, "q", "r", nil)
	_, _ = store.StoreDocument(ctx, Document{Filename: "d.txt", FileType: "txt", Content: "doc"})

	n, err := store.ClearConversations(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 conversation cleared, got %d", n)
	}

	stats, _ := store.Stats(ctx)
	if stats.TotalConversations != 0 || stats.TotalChunks != 1 {
		t.Errorf("clear should not touch documents: %+v", stats)
	}
}

func TestStore_TextFallbackWithoutEmbedder(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	vecs, err := NewSQLiteVecStore(db)
	if err != nil {
		t.Fatal(err)
	}
	store := NewStore(vecs, nil)
	ctx := context.Background()

	if _, err := store.AddConversation(ctx, "tender response deadlines", "respond within 30 days", nil); err != nil {
		t.Fatal(err)
	}

	results, err := store.SearchConversations(ctx, "tender deadlines", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected text fallback to find 1 result, got %d", len(results))
	}
}
