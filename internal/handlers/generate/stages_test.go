package generate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"forge-api/internal/shared"
	"forge-api/internal/upstream"

	"go.uber.org/zap"
)

func chatBody(content string) []byte {
	body, _ := json.Marshal(shared.ChatResponse{
		Choices: []shared.Choice{{Message: shared.Message{Role: "assistant", Content: content}}},
	})
	return body
}

func fastPolicy() upstream.RetryPolicy {
	return upstream.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}
}

func TestRefineStage_TrimsAndSendsChatRequest(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer refine-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var gotReq shared.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed decoding chat request: %v", err)
		}
		if gotReq.Model != "refiner-1" {
			t.Errorf("unexpected model %q", gotReq.Model)
		}
		if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" || gotReq.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", gotReq.Messages)
		}
		if _, err := w.Write(chatBody("  refined prompt \n")); err != nil {
			panic(err)
		}
	}))
	defer ts.Close()

	stage := &RefineStage{
		Client:   upstream.NewClient(zap.NewNop().Sugar()),
		Endpoint: Endpoint{URL: ts.URL, APIKey: "refine-key", Model: "refiner-1"},
		Policy:   fastPolicy(),
	}

	out, err := stage.Refine(context.Background(), shared.GenerationRequest{
		Prompt: "sort a list", Language: "python", TaskType: "function",
	})
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}
	if out != "refined prompt" {
		t.Fatalf("expected trimmed prompt, got %q", out)
	}
}

func TestCodeStage_ReturnsContentVerbatim(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var gotReq shared.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("failed decoding chat request: %v", err)
		}
		if len(gotReq.Messages) != 2 || gotReq.Messages[1].Content != "refined prompt" {
			t.Errorf("refined prompt not forwarded verbatim: %+v", gotReq.Messages)
		}
		if _, err := w.Write(chatBody("\ndef f():\n    pass\n")); err != nil {
			panic(err)
		}
	}))
	defer ts.Close()

	stage := &CodeStage{
		Client:   upstream.NewClient(zap.NewNop().Sugar()),
		Endpoint: Endpoint{URL: ts.URL, APIKey: "code-key", Model: "coder-1"},
		Policy:   fastPolicy(),
	}

	out, err := stage.Generate(context.Background(), "refined prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "\ndef f():\n    pass\n" {
		t.Fatalf("code was not returned verbatim: %q", out)
	}
}

func TestRefineStage_MissingChoicesIsParseError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"choices":[]}`)); err != nil {
			panic(err)
		}
	}))
	defer ts.Close()

	stage := &RefineStage{
		Client:   upstream.NewClient(zap.NewNop().Sugar()),
		Endpoint: Endpoint{URL: ts.URL, APIKey: "k"},
		Policy:   fastPolicy(),
	}

	_, err := stage.Refine(context.Background(), shared.GenerationRequest{Prompt: "p", Language: "go", TaskType: "cli"})
	if err == nil {
		t.Fatal("expected parse error")
	}
	var parseErr *upstream.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *upstream.ParseError, got %T: %v", err, err)
	}
}

func TestCodeStage_UpstreamStatusBubbles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	stage := &CodeStage{
		Client:   upstream.NewClient(zap.NewNop().Sugar()),
		Endpoint: Endpoint{URL: ts.URL, APIKey: "k"},
		Policy:   fastPolicy(),
	}

	_, err := stage.Generate(context.Background(), "prompt")
	var statusErr *upstream.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *upstream.StatusError, got %T: %v", err, err)
	}
	if statusErr.Status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", statusErr.Status)
	}
}
