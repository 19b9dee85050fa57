package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/core/ports"
)

// TurnObserver receives one callback per completed turn, for metrics.
type TurnObserver func(branch domain.TurnBranch, picks int, duration time.Duration)

type Router struct {
	sessions    *SessionRegistry
	publisher   ports.TurnEventPublisher
	observeTurn TurnObserver
	metrics     http.Handler
}

type RouterOptions struct {
	Publisher      ports.TurnEventPublisher
	ObserveTurn    TurnObserver
	MetricsHandler http.Handler
}

func NewRouter(sessions *SessionRegistry, options RouterOptions) *Router {
	return &Router{
		sessions:    sessions,
		publisher:   options.Publisher,
		observeTurn: options.ObserveTurn,
		metrics:     options.MetricsHandler,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/chat", rt.chat)
	mux.HandleFunc("/v1/sessions/", rt.deleteSession)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics)
	}
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatContextPayload struct {
	Coords  *domain.Coordinates   `json:"coords"`
	Filters *domain.SearchFilters `json:"filters"`
}

type chatRequest struct {
	SessionID string              `json:"session_id"`
	Message   string              `json:"message"`
	Context   *chatContextPayload `json:"context"`
}

type chatResponse struct {
	SessionID       string            `json:"session_id"`
	Reply           string            `json:"reply"`
	Branch          domain.TurnBranch `json:"branch"`
	Picks           int               `json:"picks"`
	SearchPerformed bool              `json:"search_performed"`
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	chatCtx := toChatContext(req.Context)
	sessionID, handler := rt.sessions.Resolve(req.SessionID, chatCtx)
	if req.Context != nil {
		handler.UpdateContext(chatCtx)
	}

	start := time.Now()
	result, err := handler.HandleTurn(r.Context(), req.Message)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	duration := time.Since(start)

	if rt.observeTurn != nil {
		rt.observeTurn(result.Branch, result.Picks, duration)
	}
	rt.publishTurn(sessionID, result, duration)

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:       sessionID,
		Reply:           result.Reply,
		Branch:          result.Branch,
		Picks:           result.Picks,
		SearchPerformed: result.SearchPerformed,
	})
}

func (rt *Router) deleteSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session id is required"})
		return
	}

	if err := rt.sessions.Delete(id); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Turn events are fire-and-forget; a publish failure is logged and
// never surfaces to the client.
func (rt *Router) publishTurn(sessionID string, result *domain.TurnResult, duration time.Duration) {
	if rt.publisher == nil {
		return
	}
	event := domain.TurnEvent{
		SessionID:  sessionID,
		Branch:     result.Branch,
		Picks:      result.Picks,
		DurationMS: float64(duration.Microseconds()) / 1000.0,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rt.publisher.PublishTurnCompleted(ctx, event); err != nil {
			slog.Warn("turn_event_publish_failed", "session_id", sessionID, "error", err)
		}
	}()
}

func toChatContext(payload *chatContextPayload) domain.ChatContext {
	if payload == nil {
		return domain.ChatContext{}
	}
	chatCtx := domain.ChatContext{Coords: payload.Coords}
	if payload.Filters != nil {
		chatCtx.Filters = *payload.Filters
	}
	return chatCtx
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
