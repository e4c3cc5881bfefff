// Package gateway fronts the embedding and synthesis backends. Every call is bounded by a deadline,
// timed, and its failure converted into a GatewayError that says whether a retry can help.
package gateway

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/akolanti/GoIndex/internal/domain/indexErrors"
	"github.com/akolanti/GoIndex/internal/metrics"
	"github.com/akolanti/GoIndex/internal/rag/embedding"
	"github.com/akolanti/GoIndex/internal/rag/llm"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Gateway struct {
	embedder embedding.Embedder
	synth    llm.Provider
	timeout  time.Duration
	logger   *logger_i.Logger
}

func New(embedder embedding.Embedder, synth llm.Provider, timeout time.Duration) *Gateway {
	return &Gateway{
		embedder: embedder,
		synth:    synth,
		timeout:  timeout,
		logger:   logger_i.NewLogger("gateway"),
	}
}

func (g *Gateway) ModelID() string {
	return g.embedder.ModelID()
}

// Embed vectorizes text. docId only labels the error.
func (g *Gateway) Embed(ctx context.Context, docId, text string) ([]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	vec, err := g.embedder.GetEmbedding(callCtx, text)
	metrics.CaptureExecutionMetrics("embed", time.Since(start))
	if err != nil {
		metrics.IncrementDependencyErrors("embed")
		g.logger.WithTrace(ctx).Warn("embedding call failed", "docId", docId, "error", err)
		return nil, indexErrors.Gateway("embed", docId, IsRetryable(err), err)
	}
	if len(vec) == 0 {
		return nil, indexErrors.Gateway("embed", docId, false, errors.New("embedding backend returned an empty vector"))
	}
	return vec, nil
}

func (g *Gateway) Synthesize(ctx context.Context, query string, passages []string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	answer, err := g.synth.Generate(callCtx, query, passages)
	metrics.CaptureExecutionMetrics("synthesize", time.Since(start))
	if err != nil {
		metrics.IncrementDependencyErrors("synthesize")
		g.logger.WithTrace(ctx).Warn("synthesis call failed", "error", err)
		return "", indexErrors.Gateway("synthesize", "", IsRetryable(err), err)
	}
	return answer, nil
}

// IsRetryable classifies a backend failure: deadlines, throttling and server-side faults are worth a retry,
// malformed requests and auth failures are not.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if s, ok := status.FromError(err); ok && s.Code() != codes.OK && s.Code() != codes.Unknown {
		switch s.Code() {
		case codes.ResourceExhausted, codes.Unavailable, codes.DeadlineExceeded, codes.Aborted, codes.Internal:
			return true
		default:
			return false
		}
	}
	var googleErr genai.APIError
	if errors.As(err, &googleErr) {
		return retryableHTTP(googleErr.Code)
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return retryableHTTP(openaiErr.StatusCode)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

func retryableHTTP(code int) bool {
	return code == 429 || code == 408 || code >= 500
}
