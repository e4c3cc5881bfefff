package gateway

import (
	"context"
	"fmt"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/rag/embedding"
	"github.com/akolanti/GoIndex/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/GoIndex/internal/rag/embedding/hashEmbedding"
	"github.com/akolanti/GoIndex/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/GoIndex/internal/rag/llm"
	"github.com/akolanti/GoIndex/internal/rag/llm/extractive"
	"github.com/akolanti/GoIndex/internal/rag/llm/gemini"
	"github.com/akolanti/GoIndex/internal/rag/llm/openaiLLM"
)

// NewFromSettings builds the gateway for the configured provider.
func NewFromSettings(ctx context.Context, settings config.Settings) (*Gateway, error) {
	var (
		embedder embedding.Embedder
		synth    llm.Provider
		err      error
	)
	gw := settings.Gateway
	switch gw.Provider {
	case config.GatewayGemini:
		embedder, err = googleEmbedding.NewGoogleEmbedder(ctx, gw.EmbeddingModel, gw.GoogleAPIKey, config.EmbeddingOutputDimensionality)
		if err != nil {
			return nil, err
		}
		synth, err = gemini.NewGeminiClient(ctx, gw.ChatModel, gw.GoogleAPIKey)
		if err != nil {
			return nil, err
		}
	case config.GatewayOpenAI:
		embedder = openaiEmbedding.NewOpenAIEmbedder(gw.EmbeddingModel, gw.OpenAIAPIKey, gw.OpenAIBaseURL)
		synth = openaiLLM.NewOpenAIClient(gw.ChatModel, gw.OpenAIAPIKey, gw.OpenAIBaseURL)
	case config.GatewayLocal:
		embedder = hashEmbedding.NewHashEmbedder(config.LocalEmbeddingDimension)
		synth = extractive.NewExtractive(settings.Index.DefaultTopK)
	default:
		return nil, fmt.Errorf("unknown gateway provider %q", gw.Provider)
	}
	return New(embedder, synth, settings.Index.GatewayCallTimeout), nil
}
