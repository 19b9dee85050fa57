package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/core/ports"
)

var (
	errNoCoordinates = errors.New("no coordinates in context")
	errEmptyReply    = errors.New("empty collaborator reply")
)

const (
	defaultSearchRadius = 500
	defaultSearchLimit  = 5
	maxSearchLimit      = 5
)

const (
	msgWelcome = "Hola 👋 Soy tu asistente de ServiciosPE. Dime qué necesitas (ej. “una farmacia abierta cerca”, “lavandería económica a 500 m”)."

	msgOutOfDomain = "Soy el asistente de ServiciosPE y solo puedo ayudarte a encontrar negocios y servicios cercanos. " +
		"Prueba con algo como “una farmacia abierta cerca” o “restaurantes a 500 m”."

	msgMissingLocation = "Necesito tu ubicación para buscar lugares cercanos. " +
		"Comparte tu ubicación o dime en qué distrito estás."

	msgEmptyResults = "No encontré resultados con esos filtros. " +
		"¿Quieres que amplíe el radio de búsqueda o que quite algún filtro?"

	msgRetry = "Lo siento, hubo un problema procesando tu mensaje. Intenta de nuevo."
)

// ConversationController runs the turn-taking state machine for one
// chat session. It owns the transcript, the recommendation state, and
// the dedup registry; both are discarded with the session and are only
// overwritten whole on a successful search turn, never partially.
type ConversationController struct {
	intent ports.IntentService
	search ports.GeoSearcher
	limit  int

	mu         sync.Mutex
	processing bool
	chatCtx    domain.ChatContext
	transcript []domain.ConversationTurn
	state      domain.RecommendationState
	dedup      *DedupTracker
}

func NewConversationController(
	intent ports.IntentService,
	search ports.GeoSearcher,
	chatCtx domain.ChatContext,
	limit int,
) *ConversationController {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return &ConversationController{
		intent:  intent,
		search:  search,
		limit:   limit,
		chatCtx: chatCtx,
		transcript: []domain.ConversationTurn{
			{Role: domain.RoleAssistant, Content: msgWelcome},
		},
		dedup: NewDedupTracker(),
	}
}

// UpdateContext replaces the session's location and filter context.
// The widget resends it on every turn; coordinates may appear mid
// conversation once the user grants location access.
func (c *ConversationController) UpdateContext(chatCtx domain.ChatContext) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chatCtx = chatCtx
}

// Transcript returns a copy of the conversation so far.
func (c *ConversationController) Transcript() []domain.ConversationTurn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.ConversationTurn(nil), c.transcript...)
}

// HandleTurn processes one user message. Collaborator failures never
// escape: every branch resolves to an appended assistant message. The
// only errors returned are the guards, which leave the transcript
// untouched: empty input and a turn submitted while one is running.
func (c *ConversationController) HandleTurn(ctx context.Context, text string) (*domain.TurnResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "handle turn", fmt.Errorf("empty message"))
	}

	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return nil, domain.ErrTurnInProgress
	}
	c.processing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
	}()

	c.append(domain.RoleUser, trimmed)
	intent := ClassifyIntent(Normalize(trimmed))

	if intent.Kind == domain.IntentOutOfDomain {
		return c.respond(msgOutOfDomain, domain.BranchOutOfDomain, 0, false), nil
	}

	isWhy := intent.Kind == domain.IntentWhyQuestion
	if isWhy && !c.state.Empty() {
		return c.respond(ExplainWhy(c.state), domain.BranchWhyQuestion, 0, false), nil
	}

	reply, err := c.intent.Chat(ctx, c.Transcript(), c.currentContext())
	if err != nil {
		return c.resolveFailure(domain.WrapError(domain.ErrCollaborator, "intent chat", err), isWhy), nil
	}

	if reply.Action != nil && strings.EqualFold(reply.Action.Type, "search") {
		intent.Kind = domain.IntentSearch
		intent.Query = reply.Action.Query
		intent.RequestedIndex = NormalizeExplicitIndex(reply.Action.Index)
		intent.SearchParams = &domain.SearchFilters{
			Distance: reply.Action.Distance,
			Category: reply.Action.Category,
			OpenNow:  reply.Action.OpenNow,
		}
		return c.runSearch(ctx, intent, isWhy), nil
	}

	message := strings.TrimSpace(StripEmphasis(reply.Message))
	if message == "" {
		return c.resolveFailure(domain.WrapError(domain.ErrCollaborator, "intent chat", errEmptyReply), isWhy), nil
	}
	return c.respond(message, domain.BranchFreeform, 0, false), nil
}

func (c *ConversationController) runSearch(ctx context.Context, intent domain.StructuredIntent, isWhy bool) *domain.TurnResult {
	chatCtx := c.currentContext()
	if chatCtx.Coords == nil {
		return c.resolveFailure(domain.WrapError(domain.ErrMissingLocation, "run search", errNoCoordinates), isWhy)
	}

	radius := intent.SearchParams.Distance
	if radius <= 0 {
		radius = chatCtx.Filters.Distance
	}
	if radius <= 0 {
		radius = defaultSearchRadius
	}
	category := intent.SearchParams.Category
	if category == "" {
		category = chatCtx.Filters.Category
	}

	results, err := c.search.Search(ctx, domain.SearchRequest{
		Lat:      chatCtx.Coords.Lat,
		Lng:      chatCtx.Coords.Lng,
		Radius:   radius,
		Category: category,
		Query:    intent.Query,
		OpenNow:  intent.SearchParams.OpenNow || chatCtx.Filters.OpenNow,
		Page:     1,
		Limit:    c.limit,
	})
	if err != nil {
		return c.resolveFailure(domain.WrapError(domain.ErrCollaborator, "geosearch", err), isWhy)
	}
	if len(results) == 0 {
		return c.respond(msgEmptyResults, domain.BranchEmptySearch, 0, true)
	}

	ranked := Rank(results)
	fingerprint := domain.Fingerprint(results)

	want := intent.Quantity
	index := intent.RequestedIndex
	if index != nil {
		want = 1
	}

	picks := c.dedup.Select(ranked, fingerprint, want, index)
	replyText := Summarize(chatCtx.Coords, ranked, picks, want)

	mode := domain.ModeTop
	if want == 1 {
		mode = domain.ModeSingle
	}
	c.mu.Lock()
	c.state = domain.RecommendationState{Items: picks, Mode: mode}
	c.mu.Unlock()

	return c.respond(replyText, domain.BranchSearch, len(picks), true)
}

// resolveFailure maps a classified turn error to the assistant message
// for its branch. A missing location asks for one; a collaborator
// failure during a why-question can still be answered from stored
// state; anything else gets the generic retry message. State stays
// untouched either way.
func (c *ConversationController) resolveFailure(err error, isWhy bool) *domain.TurnResult {
	if domain.IsKind(err, domain.ErrMissingLocation) {
		return c.respond(msgMissingLocation, domain.BranchNoLocation, 0, false)
	}
	slog.Warn("turn_collaborator_failure", "error", err)
	if isWhy && !c.state.Empty() {
		return c.respond(ExplainWhy(c.state), domain.BranchWhyQuestion, 0, false)
	}
	return c.respond(msgRetry, domain.BranchCollaborator, 0, false)
}

func (c *ConversationController) currentContext() domain.ChatContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chatCtx
}

func (c *ConversationController) append(role domain.Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = append(c.transcript, domain.ConversationTurn{Role: role, Content: content})
}

func (c *ConversationController) respond(message string, branch domain.TurnBranch, picks int, searched bool) *domain.TurnResult {
	c.append(domain.RoleAssistant, message)
	return &domain.TurnResult{
		Reply:           message,
		Branch:          branch,
		Picks:           picks,
		SearchPerformed: searched,
	}
}
