package ingest

import (
	"fmt"
	"strings"

	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
)

// Chunk is one window of a document. Start and End are rune offsets, End exclusive.
type Chunk struct {
	Ordinal int
	Text    string
	Start   int
	End     int
}

// Chunker cuts text into fixed windows of Size runes, each sharing Overlap runes with the previous one.
// The same configuration always yields the same boundaries.
type Chunker struct {
	Size    int
	Overlap int
}

func NewChunker(size, overlap int) (Chunker, error) {
	if size <= 0 {
		return Chunker{}, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return Chunker{}, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return Chunker{Size: size, Overlap: overlap}, nil
}

func (c Chunker) step() int {
	return c.Size - c.Overlap
}

// Count returns how many windows a text of n runes produces.
func (c Chunker) Count(n int) int {
	if n <= 0 {
		return 0
	}
	if n <= c.Size {
		return 1
	}
	step := c.step()
	return (n-c.Size+step-1)/step + 1
}

// Split returns the windows of text. Blank text is rejected.
func (c Chunker) Split(text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, indexErrors.InvalidInput("chunk", "", "document text is empty")
	}

	runes := []rune(text)
	n := len(runes)
	count := c.Count(n)
	chunks := make([]Chunk, 0, count)
	for i := 0; i < count; i++ {
		start := i * c.step()
		end := start + c.Size
		if end > n || i == count-1 {
			end = n
		}
		chunks = append(chunks, Chunk{
			Ordinal: i,
			Text:    string(runes[start:end]),
			Start:   start,
			End:     end,
		})
	}
	return chunks, nil
}
