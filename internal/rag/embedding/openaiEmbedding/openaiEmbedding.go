package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/GoIndex/internal/customHttpClient"
	"github.com/akolanti/GoIndex/internal/rag/embedding"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api    openai.Client
	model  string
	logger *logger_i.Logger
}

// NewOpenAIEmbedder builds an embedder for any OpenAI-compatible endpoint. An empty baseURL uses the default.
func NewOpenAIEmbedder(modelName, apikey, baseURL string) embedding.Embedder {
	opts := []option.RequestOption{option.WithAPIKey(apikey), option.WithMaxRetries(0), option.WithHTTPClient(customHttpClient.NewClient(0))}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	logger := logger_i.NewLogger("openai_embedding")
	logger.Info("OpenAI Embedding client created", "model", modelName)
	return &client{
		api:    openai.NewClient(opts...),
		model:  modelName,
		logger: logger,
	}
}

func (c *client) ModelID() string {
	return "openai/" + c.model
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error getting Embeddings from OpenAI", "error", err)
		return nil, err
	}
	if len(res.Data) == 0 {
		return nil, errors.New("openai embedding response carried no vector")
	}
	return toFloat32(res.Data[0].Embedding)
}

func toFloat32(values []float64) ([]float32, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return out, nil
}
