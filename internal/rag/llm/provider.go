package llm

import (
	"context"
	"fmt"
	"strings"
)

// Provider synthesizes an answer to query from the retrieved passages, best first.
type Provider interface {
	Generate(ctx context.Context, query string, passages []string) (string, error)
}

// BuildPrompt is the user prompt shared by the hosted providers.
func BuildPrompt(query string, passages []string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, p)
	}
	fmt.Fprintf(&b, "User Question: %s", query)
	return b.String()
}
