package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/infrastructure/resilience"
)

// Client talks to an OpenRouter-compatible chat completions endpoint.
// The model is instructed to answer with a strict JSON object carrying
// an assistant message and an optional search action.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor

	// OnCall, when set, observes the outcome of every completed chat
	// call. A nil error means the endpoint answered.
	OnCall func(err error)
}

type Options struct {
	Timeout            time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, apiKey, model string) *Client {
	return NewWithOptions(baseURL, apiKey, model, Options{})
}

func NewWithOptions(baseURL, apiKey, model string, options Options) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) Chat(ctx context.Context, history []domain.ConversationTurn, chatCtx domain.ChatContext) (*domain.IntentReply, error) {
	request := map[string]any{
		"model":           c.model,
		"messages":        buildMessages(history, chatCtx),
		"response_format": map[string]any{"type": "json_object"},
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	call := func(ctx context.Context) error {
		return c.postJSON(ctx, "/chat/completions", request, &response, "chat")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "openrouter.chat", call, classifyIntentError)
	} else {
		err = call(ctx)
	}
	if c.OnCall != nil {
		c.OnCall(err)
	}
	if err != nil {
		return nil, wrapTemporaryIfNeeded("openrouter chat", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("openrouter chat: empty choices")
	}

	var reply domain.IntentReply
	raw := extractJSONObject(response.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("parse intent json: %w", err)
	}
	if strings.TrimSpace(reply.Message) == "" && reply.Action == nil {
		return nil, fmt.Errorf("openrouter chat: reply carries neither message nor action")
	}
	return &reply, nil
}

// Models sometimes wrap the JSON object in prose or code fences.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
