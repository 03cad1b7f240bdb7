package llm

import (
	"context"
	"time"
)

// deadline bounds every Generate call.
type deadline struct {
	Provider
	timeout time.Duration
}

func (d *deadline) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.Provider.Generate(ctx, system, user, maxTokens)
}
