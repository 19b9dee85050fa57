package bootstrap

import (
	"fmt"
	"time"

	httpadapter "github.com/serviciospe/discovery-assistant/internal/adapters/http"
	"github.com/serviciospe/discovery-assistant/internal/config"
	"github.com/serviciospe/discovery-assistant/internal/core/domain"
	"github.com/serviciospe/discovery-assistant/internal/core/ports"
	"github.com/serviciospe/discovery-assistant/internal/core/usecase"
	"github.com/serviciospe/discovery-assistant/internal/infrastructure/geosearch/httpapi"
	"github.com/serviciospe/discovery-assistant/internal/infrastructure/intent/openrouter"
	"github.com/serviciospe/discovery-assistant/internal/infrastructure/queue/nats"
	"github.com/serviciospe/discovery-assistant/internal/infrastructure/resilience"
	"github.com/serviciospe/discovery-assistant/internal/observability/metrics"
)

const serviceName = "discovery-assistant"

type App struct {
	Config config.Config

	Queue    *nats.Queue
	Sessions *httpadapter.SessionRegistry
	Router   *httpadapter.Router
	Metrics  *metrics.HTTPServerMetrics

	closeFn func()
}

func New(cfg config.Config) (*App, error) {
	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled: cfg.BreakerEnabled,
	})

	intentClient := openrouter.NewWithOptions(cfg.IntentAPIURL, cfg.IntentAPIKey, cfg.IntentModel, openrouter.Options{
		ResilienceExecutor: executor,
	})
	intentClient.OnCall = func(err error) {
		serverMetrics.RecordCollaboratorCall(serviceName, "intent", err)
	}

	searchClient := httpapi.NewWithOptions(cfg.GeosearchURL, httpapi.Options{
		ResilienceExecutor: executor,
	})
	searchClient.OnCall = func(err error) {
		serverMetrics.RecordCollaboratorCall(serviceName, "geosearch", err)
	}
	nearbyCache := httpapi.NewNearbyCache(searchClient, time.Duration(cfg.NearbyCacheTTLSeconds)*time.Second)
	nearbyCache.OnLookup = func(hit bool) {
		serverMetrics.RecordCacheLookup(serviceName, hit)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	sessions := httpadapter.NewSessionRegistry(func(chatCtx domain.ChatContext) ports.ConversationHandler {
		if chatCtx.Filters.Distance <= 0 {
			chatCtx.Filters.Distance = cfg.DefaultRadiusMeters
		}
		return usecase.NewConversationController(intentClient, nearbyCache, chatCtx, cfg.SearchLimit)
	}, time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	sessions.OnOpen = serverMetrics.SessionOpened
	sessions.OnClose = serverMetrics.SessionClosed

	router := httpadapter.NewRouter(sessions, httpadapter.RouterOptions{
		Publisher:      queue,
		MetricsHandler: serverMetrics.Handler(),
		ObserveTurn: func(branch domain.TurnBranch, picks int, duration time.Duration) {
			serverMetrics.RecordTurn(serviceName, string(branch), picks, duration)
		},
	})

	return &App{
		Config:   cfg,
		Queue:    queue,
		Sessions: sessions,
		Router:   router,
		Metrics:  serverMetrics,

		closeFn: func() {
			queue.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
