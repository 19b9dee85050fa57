package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

func chatResponse(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	body, _ := json.Marshal(payload)
	return string(body)
}

func TestChatSendsSystemPromptAndHistory(t *testing.T) {
	var captured struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(chatResponse(`{"message":"¡Hola!","action":null}`)))
	}))
	defer server.Close()

	client := New(server.URL, "test-key", "test-model")
	history := []domain.ConversationTurn{
		{Role: domain.RoleAssistant, Content: "Hola"},
		{Role: domain.RoleUser, Content: "busco una farmacia"},
	}
	reply, err := client.Chat(context.Background(), history, domain.ChatContext{
		Coords: &domain.Coordinates{Lat: -12.05, Lng: -77.03},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Message != "¡Hola!" {
		t.Fatalf("unexpected message: %q", reply.Message)
	}

	if captured.Model != "test-model" {
		t.Fatalf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 3 {
		t.Fatalf("expected system prompt plus 2 turns, got %d messages", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || !strings.Contains(captured.Messages[0].Content, "ServiciosPE") {
		t.Fatalf("unexpected system message: %+v", captured.Messages[0])
	}
	if captured.Messages[2].Content != "busco una farmacia" {
		t.Fatalf("history not forwarded: %+v", captured.Messages)
	}
}

func TestChatParsesSearchAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"message":"Buscando","action":{"type":"search","q":"farmacia 24h","category":"farmacia","distance":800,"openNow":true}}`
		_, _ = w.Write([]byte(chatResponse(content)))
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")
	reply, err := client.Chat(context.Background(), nil, domain.ChatContext{})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Action == nil || reply.Action.Type != "search" {
		t.Fatalf("expected search action, got %+v", reply.Action)
	}
	if reply.Action.Query != "farmacia 24h" || reply.Action.Distance != 800 || !reply.Action.OpenNow {
		t.Fatalf("unexpected action fields: %+v", reply.Action)
	}
}

func TestChatUnwrapsFencedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := "```json\n{\"message\":\"ok\",\"action\":null}\n```"
		_, _ = w.Write([]byte(chatResponse(content)))
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")
	reply, err := client.Chat(context.Background(), nil, domain.ChatContext{})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if reply.Message != "ok" {
		t.Fatalf("unexpected message: %q", reply.Message)
	}
}

func TestChatWrapsServerErrorsAsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")
	_, err := client.Chat(context.Background(), nil, domain.ChatContext{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if !strings.Contains(err.Error(), "model unavailable") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestChatReportsOutcomeToOnCall(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(`{"message":"ok","action":null}`)))
	}))
	defer healthy.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusBadGateway)
	}))
	defer broken.Close()

	var outcomes []error
	onCall := func(err error) {
		outcomes = append(outcomes, err)
	}

	client := New(healthy.URL, "", "test-model")
	client.OnCall = onCall
	if _, err := client.Chat(context.Background(), nil, domain.ChatContext{}); err != nil {
		t.Fatalf("Chat() error = %v", err)
	}

	client = New(broken.URL, "", "test-model")
	client.OnCall = onCall
	if _, err := client.Chat(context.Background(), nil, domain.ChatContext{}); err == nil {
		t.Fatal("expected error")
	}

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 observed calls, got %d", len(outcomes))
	}
	if outcomes[0] != nil {
		t.Fatalf("successful call must report nil, got %v", outcomes[0])
	}
	if outcomes[1] == nil {
		t.Fatal("failed call must report its error")
	}
}

func TestChatRejectsEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := New(server.URL, "", "test-model")
	if _, err := client.Chat(context.Background(), nil, domain.ChatContext{}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
