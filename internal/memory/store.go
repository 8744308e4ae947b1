package memory

import (
	"context"
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/consultcrew/consultcrew/internal/provider"
)

// Document is the normalized record produced by a document parser: one
// uploaded file, ready for chunking.
type Document struct {
	Filename string
	FileType string
	Content  string
}

// Chunk is a windowed sub-string of an uploaded document.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Total      int
	Text       string
}

// DocumentInfo summarizes a stored document.
type DocumentInfo struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	FileType    string `json:"file_type"`
	TotalChunks int    `json:"total_chunks"`
}

// Stats reports store-wide counters.
type Stats struct {
	TotalConversations int `json:"total_conversations"`
	TotalDocuments     int `json:"total_documents"`
	TotalChunks        int `json:"total_chunks"`
}

// Store is the semantic store: conversations and document chunks in two
// logical collections of one vector index. If embedder is nil all operations
// degrade to text matching rather than failing.
type Store struct {
	vectors      VectorStore
	embedder     provider.Embedder
	chunkSize    int
	chunkOverlap int
	now          func() time.Time
}

// NewStore creates a semantic store over the given vector backend.
func NewStore(vectors VectorStore, embedder provider.Embedder) *Store {
	return &Store{
		vectors:      vectors,
		embedder:     embedder,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		now:          time.Now,
	}
}

// AddConversation stores a completed query/response pair and returns its ID.
func (s *Store) AddConversation(ctx context.Context, query, response string, metadata map[string]any) (string, error) {
	count, err := s.vectors.Count(ctx, CollectionConversations)
	if err != nil {
		return "", fmt.Errorf("count conversations: %w", err)
	}
	id := fmt.Sprintf("conv_%d", count)

	payload := map[string]any{
		"type":      "conversation",
		"query":     query,
		"response":  response,
		"content":   "Query: " + query + "\nResponse: " + response,
		"timestamp": s.now().Format(time.RFC3339),
	}
	for k, v := range metadata {
		payload[k] = v
	}

	vector, err := s.embed(ctx, query+" "+response)
	if err != nil {
		return "", fmt.Errorf("embed conversation: %w", err)
	}
	if err := s.vectors.Upsert(ctx, CollectionConversations, id, vector, payload); err != nil {
		return "", fmt.Errorf("store conversation: %w", err)
	}
	return id, nil
}

// SearchConversations finds past conversations similar to the query, ordered
// by ascending distance. Results are best-effort; empty is a valid answer.
func (s *Store) SearchConversations(ctx context.Context, query string, limit int) ([]Result, error) {
	return s.search(ctx, CollectionConversations, query, limit)
}

// StoreDocument chunks the document and persists every chunk. Returns the
// deterministic document ID (12 hex chars of the filename hash).
func (s *Store) StoreDocument(ctx context.Context, doc Document) (string, error) {
	docID := DocumentID(doc.Filename)
	chunks := ChunkText(doc.Content, s.chunkSize, s.chunkOverlap)

	for i, text := range chunks {
		chunkID := fmt.Sprintf("%s_chunk_%d", docID, i)
		vector, err := s.embed(ctx, text)
		if err != nil {
			return "", fmt.Errorf("embed chunk %d: %w", i, err)
		}
		payload := map[string]any{
			"type":         "document_chunk",
			"content":      text,
			"document_id":  docID,
			"chunk_index":  i,
			"total_chunks": len(chunks),
			"filename":     doc.Filename,
			"file_type":    doc.FileType,
		}
		if err := s.vectors.Upsert(ctx, CollectionDocuments, chunkID, vector, payload); err != nil {
			return "", fmt.Errorf("store chunk %d: %w", i, err)
		}
	}
	return docID, nil
}

// SearchDocuments finds document chunks similar to the query. fileType, when
// non-empty, filters results to that file type.
func (s *Store) SearchDocuments(ctx context.Context, query string, limit int, fileType string) ([]Result, error) {
	fetch := limit
	if fileType != "" {
		fetch = limit * 3 // over-fetch to compensate for filtering
	}
	results, err := s.search(ctx, CollectionDocuments, query, fetch)
	if err != nil {
		return nil, err
	}
	if fileType == "" {
		return results, nil
	}

	var filtered []Result
	for _, r := range results {
		if ft, _ := r.Metadata["file_type"].(string); ft == fileType {
			filtered = append(filtered, r)
			if len(filtered) >= limit {
				break
			}
		}
	}
	return filtered, nil
}

// GetDocument returns all chunks of a document ordered by chunk index.
func (s *Store) GetDocument(ctx context.Context, docID string) ([]Chunk, error) {
	all, err := s.vectors.List(ctx, CollectionDocuments)
	if err != nil {
		return nil, fmt.Errorf("list document chunks: %w", err)
	}

	var chunks []Chunk
	for _, r := range all {
		if id, _ := r.Metadata["document_id"].(string); id != docID {
			continue
		}
		chunks = append(chunks, Chunk{
			ID:         r.ID,
			DocumentID: docID,
			Index:      metaInt(r.Metadata, "chunk_index"),
			Total:      metaInt(r.Metadata, "total_chunks"),
			Text:       r.Content,
		})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// ListDocuments returns a summary of every stored document.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	all, err := s.vectors.List(ctx, CollectionDocuments)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	seen := map[string]DocumentInfo{}
	var order []string
	for _, r := range all {
		docID, _ := r.Metadata["document_id"].(string)
		if docID == "" {
			continue
		}
		if _, ok := seen[docID]; !ok {
			filename, _ := r.Metadata["filename"].(string)
			fileType, _ := r.Metadata["file_type"].(string)
			seen[docID] = DocumentInfo{
				DocumentID:  docID,
				Filename:    filename,
				FileType:    fileType,
				TotalChunks: metaInt(r.Metadata, "total_chunks"),
			}
			order = append(order, docID)
		}
	}

	infos := make([]DocumentInfo, 0, len(order))
	for _, id := range order {
		infos = append(infos, seen[id])
	}
	return infos, nil
}

// DeleteDocument removes all chunks of a document. Returns false when the
// document was not present.
func (s *Store) DeleteDocument(ctx context.Context, docID string) (bool, error) {
	chunks, err := s.GetDocument(ctx, docID)
	if err != nil {
		return false, err
	}
	if len(chunks) == 0 {
		return false, nil
	}
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}
	n, err := s.vectors.Delete(ctx, CollectionDocuments, ids)
	if err != nil {
		return false, fmt.Errorf("delete document %s: %w", docID, err)
	}
	return n > 0, nil
}

// ClearConversations removes all conversation memory. Document memory is
// untouched.
func (s *Store) ClearConversations(ctx context.Context) (int, error) {
	all, err := s.vectors.List(ctx, CollectionConversations)
	if err != nil {
		return 0, fmt.Errorf("list conversations: %w", err)
	}
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	return s.vectors.Delete(ctx, CollectionConversations, ids)
}

// Stats returns store-wide counters.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	convs, err := s.vectors.Count(ctx, CollectionConversations)
	if err != nil {
		return Stats{}, err
	}
	docs, err := s.ListDocuments(ctx)
	if err != nil {
		return Stats{}, err
	}
	chunkCount, err := s.vectors.Count(ctx, CollectionDocuments)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		TotalConversations: convs,
		TotalDocuments:     len(docs),
		TotalChunks:        chunkCount,
	}, nil
}

func (s *Store) search(ctx context.Context, collection, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 5
	}
	if s.embedder == nil {
		return s.vectors.SearchText(ctx, collection, query, limit)
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		// Degrade gracefully when embedding the query fails.
		return s.vectors.SearchText(ctx, collection, query, limit)
	}
	return s.vectors.Search(ctx, collection, vector, limit)
}

func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedder == nil {
		return nil, nil
	}
	return s.embedder.Embed(ctx, text)
}

// DocumentID derives the deterministic 12-hex document ID from a filename.
func DocumentID(filename string) string {
	h := sha256.Sum256([]byte(filename))
	return fmt.Sprintf("%x", h[:6])
}

// ReadDocument loads a plain-text or markdown file into a Document. Richer
// formats (PDF, DOCX, spreadsheets) are the document parser's job upstream.
func ReadDocument(path string, read func(string) ([]byte, error)) (Document, error) {
	data, err := read(path)
	if err != nil {
		return Document{}, fmt.Errorf("read document: %w", err)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		ext = "txt"
	}
	return Document{
		Filename: filepath.Base(path),
		FileType: ext,
		Content:  string(data),
	}, nil
}

func metaInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
