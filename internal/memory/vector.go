// Package memory implements the semantic store: a persistent vector index
// holding past conversations and chunked uploaded documents.
package memory

import "context"

// Collection names for the two logical stores sharing one index.
const (
	CollectionConversations = "conversation_memory"
	CollectionDocuments     = "document_memory"
)

// VectorStore is the persistence layer beneath the semantic store.
type VectorStore interface {
	// Upsert stores a text with its embedding and metadata in a collection.
	Upsert(ctx context.Context, collection, id string, vector []float32, payload map[string]any) error

	// Search finds the most similar items in a collection, ordered by
	// ascending distance.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]Result, error)

	// SearchText is the degraded path used when no embedder is available.
	SearchText(ctx context.Context, collection, query string, limit int) ([]Result, error)

	// List returns all items in a collection without scoring.
	List(ctx context.Context, collection string) ([]Result, error)

	// Delete removes items by ID. Returns the number of rows removed.
	Delete(ctx context.Context, collection string, ids []string) (int, error)

	// Count returns the number of items in a collection.
	Count(ctx context.Context, collection string) (int, error)
}

// Result is a single stored item, with Distance populated by Search.
type Result struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Distance float32        `json:"distance"`
	Metadata map[string]any `json:"metadata"`
}
