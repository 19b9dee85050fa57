package httpadapter

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/core/ports"
)

// HandlerFactory builds a fresh conversation handler for a new session.
type HandlerFactory func(chatCtx domain.ChatContext) ports.ConversationHandler

// SessionRegistry owns the live conversation sessions. Sessions are
// keyed by server-issued UUIDs and evicted after SessionTTL of
// inactivity; expired sessions are swept lazily on access.
type SessionRegistry struct {
	factory HandlerFactory
	ttl     time.Duration
	now     func() time.Time

	// OnOpen and OnClose, when set, track the live session count.
	OnOpen  func()
	OnClose func()

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	handler  ports.ConversationHandler
	lastSeen time.Time
}

func NewSessionRegistry(factory HandlerFactory, ttl time.Duration) *SessionRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRegistry{
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Resolve returns the handler for sessionID, creating a new session
// when the id is empty or unknown. The returned id is the one the
// client must echo on subsequent turns.
func (r *SessionRegistry) Resolve(sessionID string, chatCtx domain.ChatContext) (string, ports.ConversationHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweepLocked()

	id := strings.TrimSpace(sessionID)
	if id != "" {
		if entry, ok := r.sessions[id]; ok {
			entry.lastSeen = r.now()
			return id, entry.handler
		}
	}

	id = uuid.NewString()
	handler := r.factory(chatCtx)
	r.sessions[id] = &sessionEntry{handler: handler, lastSeen: r.now()}
	if r.OnOpen != nil {
		r.OnOpen()
	}
	return id, handler
}

func (r *SessionRegistry) Delete(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sessionID]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	if r.OnClose != nil {
		r.OnClose()
	}
	return nil
}

func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *SessionRegistry) sweepLocked() {
	cutoff := r.now().Add(-r.ttl)
	for id, entry := range r.sessions {
		if entry.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			if r.OnClose != nil {
				r.OnClose()
			}
		}
	}
}
