package generate

import (
	"encoding/json"
	"net/http"

	"forge-api/internal/shared"
	"forge-api/internal/upstream"
)

// Endpoint is the injected configuration for one upstream chat-completion
// service. Credentials are passed in here, never read from the environment by
// the stages themselves.
type Endpoint struct {
	URL    string
	APIKey string
	Model  string
}

func buildChatSpec(endpoint Endpoint, system, user string) (upstream.CallSpec, error) {
	body, err := json.Marshal(shared.ChatRequest{
		Model: endpoint.Model,
		Messages: []shared.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: shared.DefaultTemperature,
		MaxTokens:   shared.DefaultMaxTokens,
	})
	if err != nil {
		return upstream.CallSpec{}, err
	}
	return upstream.CallSpec{
		Method: http.MethodPost,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + endpoint.APIKey,
		},
		Body: body,
	}, nil
}

func extractContent(body []byte) (string, error) {
	var res shared.ChatResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", &upstream.ParseError{Field: "chat completion body"}
	}
	if len(res.Choices) == 0 {
		return "", &upstream.ParseError{Field: "choices[0]"}
	}
	if res.Choices[0].Message.Content == "" {
		return "", &upstream.ParseError{Field: "choices[0].message.content"}
	}
	return res.Choices[0].Message.Content, nil
}
