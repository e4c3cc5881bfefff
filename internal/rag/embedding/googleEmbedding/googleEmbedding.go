package googleEmbedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/GoIndex/internal/customHttpClient"
	"github.com/akolanti/GoIndex/internal/rag/embedding"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"google.golang.org/genai"
)

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewGoogleEmbedder(ctx context.Context, modelName string, apikey string, dimension int32) (embedding.Embedder, error) {
	logger := logger_i.NewLogger("google_embedding")
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI, HTTPClient: customHttpClient.NewClient(0)})
	if err != nil {
		logger.Error("Error creating Google Embedding client", "error", err)
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	logger.Info("Google Embedding client created", "model", modelName, "dimension", dimension)
	return &client{
		genAi:     c,
		model:     modelName,
		dimension: dimension,
		logger:    logger,
	}, nil
}

func (c *client) ModelID() string {
	return fmt.Sprintf("google/%s@%d", c.model, c.dimension)
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	log := c.logger.WithTrace(ctx)
	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, err
	}
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errors.New("google embedding response carried no vector")
	}
	return result.Embeddings[0].Values, nil
}
