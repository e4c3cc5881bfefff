package embedding

import "context"

// Embedder turns text into a fixed-length vector. Identical text must rank consistently.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	// ModelID names the model and dimension; it is stored with snapshots.
	ModelID() string
}
