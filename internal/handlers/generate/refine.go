package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"forge-api/internal/metrics"
	"forge-api/internal/shared"
	"forge-api/internal/upstream"
)

const refineSystemPrompt = "You are a prompt engineer. Rewrite raw user requirements " +
	"into a clear, specific prompt for a code-generation model. " +
	"Return only the improved prompt text, nothing else."

// RefineStage turns a raw requirement into a refined code-generation prompt
// by calling the prompt-engineer upstream.
type RefineStage struct {
	Client   *upstream.Client
	Endpoint Endpoint
	Policy   upstream.RetryPolicy
}

func (s *RefineStage) Refine(ctx context.Context, req shared.GenerationRequest) (string, error) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("refine").Observe(time.Since(start).Seconds())
	}()

	user := fmt.Sprintf(
		"Language: %s\nTask type: %s\nRequirement: %s\n\nReturn only the refined prompt.",
		req.Language, req.TaskType, req.Prompt,
	)
	spec, err := buildChatSpec(s.Endpoint, refineSystemPrompt, user)
	if err != nil {
		return "", err
	}

	body, err := s.Client.Do(ctx, s.Endpoint.URL, spec, s.Policy)
	if err != nil {
		return "", err
	}

	content, err := extractContent(body)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}
