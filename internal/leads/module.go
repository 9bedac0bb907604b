// Package leads provides the lead enrichment bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/leads/handler"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/internal/leads/service"
	"leadflow_backend/internal/providers/businessinfo"
	"leadflow_backend/internal/providers/contact"
	"leadflow_backend/internal/providers/social"
	"leadflow_backend/internal/providers/websitetech"
	"leadflow_backend/internal/providers/whatsapp"
	"leadflow_backend/platform/ai/gemini"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

// Outbound calls to enrichment sources share one limiter so a large batch
// cannot hammer external sites.
const (
	providerRequestsPerSecond = 5
	providerBurst             = 10
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	svc     *service.Service
	pipe    *pipeline.Pipeline
	repo    repository.LeadsRepository
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(ctx context.Context, pool *pgxpool.Pool, val *validator.Validator, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	limiter := rate.NewLimiter(rate.Limit(providerRequestsPerSecond), providerBurst)
	timeout := cfg.GetProviderTimeout()

	techDetector := websitetech.New(timeout, limiter, log)
	socialSearcher := social.New(timeout, limiter, log)
	businessClient := businessinfo.New(cfg.GetEnrichmentAPIURL(), cfg.GetEnrichmentAPIKey(), timeout, limiter, log)
	whatsappClient := whatsapp.New(cfg.GetWhatsAppAPIURL(), cfg.GetWhatsAppAPIKey(), cfg.GetWhatsAppBusinessID(), timeout, limiter, log)
	contactExtractor := contact.New(timeout, limiter, log)

	// Without an API key the scorer runs deterministic-only.
	var generator ports.TextGenerationProvider
	if cfg.IsAIScoringEnabled() {
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.GetGeminiAPIKey(),
			Model:   cfg.GetGeminiModel(),
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		generator = client
	}
	scorer := scoring.NewService(generator, log)

	pipe := pipeline.New(pipeline.Config{
		Repo:        repo,
		Tech:        techDetector,
		Social:      socialSearcher,
		Business:    businessClient,
		Messaging:   whatsappClient,
		Contacts:    contactExtractor,
		Scorer:      scorer,
		Logger:      log,
		Concurrency: int64(cfg.GetBatchConcurrency()),
		StepTimeout: timeout,
	})

	svc := service.New(pipe, repo, log)

	return &Module{
		handler: handler.New(svc, val),
		svc:     svc,
		pipe:    pipe,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string { return "leads" }

// RegisterRoutes mounts the leads endpoints under the v1 API group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"))
}

// Pipeline exposes the enrichment pipeline for background task handlers.
func (m *Module) Pipeline() *pipeline.Pipeline { return m.pipe }

// Repository exposes the lead store for background task handlers.
func (m *Module) Repository() repository.LeadsRepository { return m.repo }

var _ apphttp.Module = (*Module)(nil)
