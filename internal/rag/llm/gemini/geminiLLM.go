package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/customHttpClient"
	"github.com/akolanti/GoIndex/internal/rag/llm"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewGeminiClient(ctx context.Context, modelName string, apikey string) (llm.Provider, error) {
	logger := logger_i.NewLogger("llm_gemini")
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey, Backend: genai.BackendGeminiAPI, HTTPClient: customHttpClient.NewClient(0)})
	if err != nil {
		logger.Error("Error creating Gemini client", "error", err)
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{client: c, modelName: modelName, logger: logger}, nil
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, passages []string) (string, error) {
	log := c.logger.WithTrace(ctx)
	temperature := config.ModelTemperature
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: config.ModelContext}},
		},
		Temperature: &temperature,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(llm.BuildPrompt(userQuery, passages)), contentConfig)
	if err != nil {
		log.Error("Error generating answer with Gemini", "error", err)
		return "", err
	}
	if result == nil {
		return "", errors.New("gemini returned no candidates")
	}
	return result.Text(), nil
}
