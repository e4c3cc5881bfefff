package openaiLLM

import (
	"context"
	"errors"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/customHttpClient"
	"github.com/akolanti/GoIndex/internal/rag/llm"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api       openai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewOpenAIClient(modelName, apikey, baseURL string) llm.Provider {
	opts := []option.RequestOption{option.WithAPIKey(apikey), option.WithMaxRetries(0), option.WithHTTPClient(customHttpClient.NewClient(0))}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	logger := logger_i.NewLogger("llm_openai")
	logger.Info("OpenAI chat client created", "model", modelName)
	return &llmClient{api: openai.NewClient(opts...), modelName: modelName, logger: logger}
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, passages []string) (string, error) {
	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(config.ModelContext),
			openai.UserMessage(llm.BuildPrompt(userQuery, passages)),
		},
		Temperature: openai.Float(float64(config.ModelTemperature)),
	})
	if err != nil {
		c.logger.WithTrace(ctx).Error("Error generating answer with OpenAI", "error", err)
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
