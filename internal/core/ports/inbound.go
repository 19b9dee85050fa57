package ports

import (
	"context"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
)

// ConversationHandler is the inbound contract for one chat session.
type ConversationHandler interface {
	HandleTurn(ctx context.Context, text string) (*domain.TurnResult, error)
	UpdateContext(chatCtx domain.ChatContext)
	Transcript() []domain.ConversationTurn
}
