package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/core/ports"
)

type fakeHandler struct {
	mu             sync.Mutex
	result         *domain.TurnResult
	err            error
	messages       []string
	contextUpdates []domain.ChatContext
}

func (f *fakeHandler) HandleTurn(_ context.Context, text string) (*domain.TurnResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.TurnResult{Reply: "ok", Branch: domain.BranchFreeform}, nil
}

func (f *fakeHandler) UpdateContext(chatCtx domain.ChatContext) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contextUpdates = append(f.contextUpdates, chatCtx)
}

func (f *fakeHandler) Transcript() []domain.ConversationTurn { return nil }

type capturingPublisher struct {
	mu     sync.Mutex
	events []domain.TurnEvent
	done   chan struct{}
}

func (p *capturingPublisher) PublishTurnCompleted(_ context.Context, event domain.TurnEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	if p.done != nil {
		p.done <- struct{}{}
	}
	return nil
}

func (p *capturingPublisher) SubscribeTurnCompleted(_ context.Context, _ func(context.Context, domain.TurnEvent) error) error {
	return nil
}

func newTestRouter(handler *fakeHandler, options RouterOptions) (*Router, *SessionRegistry) {
	registry := NewSessionRegistry(func(domain.ChatContext) ports.ConversationHandler {
		return handler
	}, time.Minute)
	return NewRouter(registry, options), registry
}

func postChat(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestChatCreatesSessionAndReturnsReply(t *testing.T) {
	handler := &fakeHandler{result: &domain.TurnResult{
		Reply:           "Recomendación\n1. Farmacia Inka",
		Branch:          domain.BranchSearch,
		Picks:           1,
		SearchPerformed: true,
	}}
	router, _ := newTestRouter(handler, RouterOptions{})

	recorder := postChat(t, router.Handler(), `{"message":"una farmacia cerca","context":{"coords":{"lat":-12.05,"lng":-77.03}}}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var resp chatResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatal("expected server-issued session id")
	}
	if resp.Branch != domain.BranchSearch || resp.Picks != 1 || !resp.SearchPerformed {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(handler.contextUpdates) != 1 || handler.contextUpdates[0].Coords == nil {
		t.Fatalf("expected context forwarded to handler, got %+v", handler.contextUpdates)
	}
}

func TestChatReusesSessionByID(t *testing.T) {
	handler := &fakeHandler{}
	router, registry := newTestRouter(handler, RouterOptions{})
	h := router.Handler()

	first := postChat(t, h, `{"message":"hola"}`)
	var resp chatResponse
	if err := json.NewDecoder(first.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	second := postChat(t, h, `{"session_id":"`+resp.SessionID+`","message":"otra"}`)
	if second.Code != http.StatusOK {
		t.Fatalf("status = %d", second.Code)
	}
	if registry.Len() != 1 {
		t.Fatalf("expected one session, got %d", registry.Len())
	}
	if len(handler.messages) != 2 {
		t.Fatalf("expected both turns on one handler, got %v", handler.messages)
	}
}

func TestChatRejectsMissingMessage(t *testing.T) {
	router, _ := newTestRouter(&fakeHandler{}, RouterOptions{})
	recorder := postChat(t, router.Handler(), `{"message":"  "}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "error") {
		t.Fatalf("expected json error body, got %s", recorder.Body.String())
	}
}

func TestChatMapsGuardErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{domain.WrapError(domain.ErrInvalidInput, "turn", domain.ErrInvalidInput), http.StatusBadRequest},
		{domain.ErrTurnInProgress, http.StatusConflict},
	}
	for _, tc := range cases {
		handler := &fakeHandler{err: tc.err}
		router, _ := newTestRouter(handler, RouterOptions{})
		recorder := postChat(t, router.Handler(), `{"message":"hola"}`)
		if recorder.Code != tc.status {
			t.Fatalf("error %v: status = %d, want %d", tc.err, recorder.Code, tc.status)
		}
	}
}

func TestChatPublishesTurnEvent(t *testing.T) {
	publisher := &capturingPublisher{done: make(chan struct{}, 1)}
	handler := &fakeHandler{result: &domain.TurnResult{
		Reply:  "listo",
		Branch: domain.BranchSearch,
		Picks:  2,
	}}
	router, _ := newTestRouter(handler, RouterOptions{Publisher: publisher})

	recorder := postChat(t, router.Handler(), `{"message":"dos farmacias"}`)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}

	select {
	case <-publisher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("turn event was never published")
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if len(publisher.events) != 1 {
		t.Fatalf("expected one event, got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.Branch != domain.BranchSearch || event.Picks != 2 || event.SessionID == "" {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestDeleteSession(t *testing.T) {
	router, registry := newTestRouter(&fakeHandler{}, RouterOptions{})
	h := router.Handler()

	first := postChat(t, h, `{"message":"hola"}`)
	var resp chatResponse
	if err := json.NewDecoder(first.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+resp.SessionID, nil)
	recorder := httptest.NewRecorder()
	h.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("delete status = %d", recorder.Code)
	}
	if registry.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", registry.Len())
	}

	recorder = httptest.NewRecorder()
	h.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", recorder.Code)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(&fakeHandler{}, RouterOptions{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	router.Handler().ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if got := recorder.Header().Get("X-Request-Id"); got == "" {
		t.Fatal("expected request id header")
	}
}
