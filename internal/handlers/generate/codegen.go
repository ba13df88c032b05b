package generate

import (
	"context"
	"time"

	"forge-api/internal/metrics"
	"forge-api/internal/upstream"
)

const codeSystemPrompt = "You are an expert programmer. Write clean, working code " +
	"for the prompt you are given. Return only the code."

// CodeStage feeds the refined prompt to the coder upstream and returns the
// generated code exactly as the model produced it.
type CodeStage struct {
	Client   *upstream.Client
	Endpoint Endpoint
	Policy   upstream.RetryPolicy
}

func (s *CodeStage) Generate(ctx context.Context, refinedPrompt string) (string, error) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("generate").Observe(time.Since(start).Seconds())
	}()

	spec, err := buildChatSpec(s.Endpoint, codeSystemPrompt, refinedPrompt)
	if err != nil {
		return "", err
	}

	body, err := s.Client.Do(ctx, s.Endpoint.URL, spec, s.Policy)
	if err != nil {
		return "", err
	}

	// No trimming here, code is returned verbatim.
	return extractContent(body)
}
