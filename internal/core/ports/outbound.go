package ports

import (
	"context"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

// IntentService is the NL intent collaborator. It turns the transcript
// plus the caller's context into a free-text reply and, optionally, a
// structured search action. Consumed, never implemented in core.
type IntentService interface {
	Chat(ctx context.Context, history []domain.ConversationTurn, chatCtx domain.ChatContext) (*domain.IntentReply, error)
}

// GeoSearcher is the geosearch collaborator.
type GeoSearcher interface {
	Search(ctx context.Context, req domain.SearchRequest) ([]domain.SearchResultItem, error)
}

// TurnEventPublisher emits one event per completed assistant turn.
type TurnEventPublisher interface {
	PublishTurnCompleted(ctx context.Context, event domain.TurnEvent) error
	SubscribeTurnCompleted(ctx context.Context, handler func(context.Context, domain.TurnEvent) error) error
}
