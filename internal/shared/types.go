package shared

import "time"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ChatRequest is the body shared by both upstream chat-completion services.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type ChatResponse struct {
	ID      string   `json:"id,omitempty"`
	Object  string   `json:"object,omitempty"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
}

type Choice struct {
	Message Message `json:"message"`
}

type Message struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content"`
}

type GenerationRequest struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language"`
	TaskType string `json:"taskType"`
}

type GenerationResponse struct {
	Success bool   `json:"success"`
	Prompt  string `json:"prompt,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

// GenerationRecord is the per-request history row buffered by records and
// written by database. Prompt and code bodies are never stored, only sizes.
type GenerationRecord struct {
	ID          string
	Language    string
	TaskType    string
	PromptChars int
	CodeChars   int
	Duration    time.Duration
	CreatedAt   time.Time
}
