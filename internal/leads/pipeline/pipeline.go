// Package pipeline orchestrates the lead enrichment run: a fixed ordered
// sequence of steps with per-step failure isolation. A provider failure is
// recorded in the step trace and the run continues with whatever upstream
// data survived; only record creation failure or a failed normalize/score
// stage ends in FAILED.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/normalize"
	"leadflow_backend/internal/leads/ports"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

const (
	defaultConcurrency = 3
	defaultStepTimeout = 30 * time.Second
)

// Scorer is the scoring adapter contract the pipeline consumes.
type Scorer interface {
	ScoreAndEnrich(ctx context.Context, in scoring.Input) (domain.LeadScoringResult, domain.EnrichedInsights)
}

// Config carries the pipeline's injected dependencies. Providers are
// constructed once at process start; the pipeline holds no other state.
type Config struct {
	Repo      repository.LeadsRepository
	Tech      ports.TechnologyProvider
	Social    ports.SocialProvider
	Business  ports.BusinessInfoProvider
	Messaging ports.MessagingStatusProvider
	Contacts  ports.ContactExtractor
	Scorer    Scorer
	Logger    *logger.Logger

	// Concurrency bounds ProcessBatch; zero means the default of 3.
	Concurrency int64
	// StepTimeout bounds each provider call; zero means 30s.
	StepTimeout time.Duration
}

type Pipeline struct {
	repo      repository.LeadsRepository
	tech      ports.TechnologyProvider
	social    ports.SocialProvider
	business  ports.BusinessInfoProvider
	messaging ports.MessagingStatusProvider
	contacts  ports.ContactExtractor
	scorer    Scorer
	log       *logger.Logger

	concurrency int64
	stepTimeout time.Duration
}

func New(cfg Config) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = defaultStepTimeout
	}
	return &Pipeline{
		repo:        cfg.Repo,
		tech:        cfg.Tech,
		social:      cfg.Social,
		business:    cfg.Business,
		messaging:   cfg.Messaging,
		contacts:    cfg.Contacts,
		scorer:      cfg.Scorer,
		log:         cfg.Logger,
		concurrency: cfg.Concurrency,
		stepTimeout: cfg.StepTimeout,
	}
}

// run accumulates the state of one pipeline execution.
type run struct {
	lead  domain.Lead
	steps []domain.ProcessingStep
}

// executeStep wraps one pipeline stage: records started_at, runs fn under
// the step timeout, stores data and terminal status. A failed step never
// aborts the run.
func (p *Pipeline) executeStep(ctx context.Context, r *run, name string, fn func(ctx context.Context) (interface{}, error)) bool {
	step := domain.ProcessingStep{
		StepName:  name,
		Status:    domain.StepInProgress,
		StartedAt: time.Now().UTC(),
	}

	stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout)
	data, err := fn(stepCtx)
	cancel()

	step.CompletedAt = time.Now().UTC()
	if err != nil {
		step.Status = domain.StepFailed
		step.Error = err.Error()
		p.log.StepFailed(r.lead.ID.String(), name, err)
	} else {
		step.Status = domain.StepCompleted
		step.Data = data
	}

	r.steps = append(r.steps, step)
	return err == nil
}

// ProcessLead runs the full enrichment pipeline for one lead. It returns an
// error only for invalid input, record creation failure, or a failed
// normalize/score stage.
func (p *Pipeline) ProcessLead(ctx context.Context, input domain.LeadInput) (*domain.Lead, error) {
	if strings.TrimSpace(input.CompanyName) == "" {
		return nil, apperr.Validation("company_name is required").WithOp("leads.ProcessLead")
	}

	lead, err := p.repo.Create(ctx, input)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create lead record", err).WithOp("leads.ProcessLead")
	}

	log := p.log.WithLeadID(lead.ID.String())
	log.Info("lead processing started", "company", input.CompanyName)

	r := &run{lead: lead, steps: make([]domain.ProcessingStep, 0, len(domain.StepOrder))}

	var tech *domain.WebsiteTechData
	p.executeStep(ctx, r, domain.StepWebsiteTech, func(ctx context.Context) (interface{}, error) {
		if input.WebsiteURL == "" {
			return nil, errors.New("no website url provided")
		}
		detected, err := p.tech.Detect(ctx, input.WebsiteURL)
		if err != nil {
			return nil, err
		}
		tech = &detected
		return detected, nil
	})

	var social domain.SocialMediaInfo
	p.executeStep(ctx, r, domain.StepSocialMedia, func(ctx context.Context) (interface{}, error) {
		found, err := p.social.Search(ctx, input.CompanyName, input.WebsiteURL)
		if err != nil {
			return nil, err
		}
		social = found
		return found, nil
	})

	var company *domain.CompanyEnrichmentData
	p.executeStep(ctx, r, domain.StepCompanyInfo, func(ctx context.Context) (interface{}, error) {
		enriched, err := p.business.Enrich(ctx, input.CompanyName, input.WebsiteURL, input.Location, input.Industry)
		if err != nil {
			return nil, err
		}
		company = &enriched
		return enriched, nil
	})

	company = p.backfillContacts(ctx, input, company)

	var messaging *domain.MessagingStatus
	p.executeStep(ctx, r, domain.StepMessagingStatus, func(ctx context.Context) (interface{}, error) {
		phone := ""
		if company != nil {
			phone = company.Phone
		}
		status, err := p.messaging.Check(ctx, phone, input.CompanyName)
		if err != nil {
			return nil, err
		}
		messaging = &status
		return status, nil
	})

	whatsappEnabled := messaging != nil && messaging.HasBusinessAccount

	var normalized *domain.NormalizedRecord
	normalizeOK := p.executeStep(ctx, r, domain.StepNormalize, func(ctx context.Context) (interface{}, error) {
		record := normalize.Record(input, tech, social, company, whatsappEnabled)
		normalized = &record
		return record, nil
	})

	var scoringResult *domain.LeadScoringResult
	var insights *domain.EnrichedInsights
	scoringOK := p.executeStep(ctx, r, domain.StepScoring, func(ctx context.Context) (interface{}, error) {
		result, enriched := p.scorer.ScoreAndEnrich(ctx, scoring.Input{
			CompanyName:     input.CompanyName,
			Tech:            tech,
			Social:          social,
			Company:         company,
			Normalized:      normalized,
			WhatsAppEnabled: whatsappEnabled,
		})
		scoringResult = &result
		insights = &enriched
		return result, nil
	})

	if !normalizeOK || !scoringOK {
		stage := lastFailedStep(r.steps)
		if err := p.repo.FinalizeFailed(ctx, lead.ID, stage, r.steps); err != nil {
			log.DatabaseError("finalize_failed", err)
		}
		return nil, apperr.Internal("lead processing failed at "+stage).WithOp("leads.ProcessLead")
	}

	lead.WebsiteTech = tech
	lead.SocialMediaInfo = social
	lead.MessagingStatus = messaging
	lead.CompanyInfo = company
	lead.NormalizedData = normalized
	lead.Scoring = scoringResult
	lead.Insights = insights
	lead.ProcessingSteps = r.steps

	finalized, err := p.repo.FinalizeCompleted(ctx, lead)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist processed lead", err).WithOp("leads.ProcessLead")
	}

	p.appendHistory(ctx, domain.HistoryEntry{
		LeadID:   finalized.ID,
		Action:   domain.ActionLeadProcessed,
		NewScore: &scoringResult.Score,
		Changes: map[string]interface{}{
			"status":        string(finalized.Status),
			"potential_tag": string(scoringResult.PotentialTag),
		},
	})

	log.Info("lead processing completed",
		"score", scoringResult.Score,
		"potential_tag", string(scoringResult.PotentialTag),
	)
	return &finalized, nil
}

// backfillContacts scrapes phone and email from the website when enrichment
// left them empty. Enrichment provider values always win; a scraped value
// only fills an absent field.
func (p *Pipeline) backfillContacts(ctx context.Context, input domain.LeadInput, company *domain.CompanyEnrichmentData) *domain.CompanyEnrichmentData {
	if input.WebsiteURL == "" || p.contacts == nil {
		return company
	}
	if company != nil && company.Phone != "" && company.Email != "" {
		return company
	}

	scrapeCtx, cancel := context.WithTimeout(ctx, p.stepTimeout)
	defer cancel()

	var phone, email string
	if company == nil || company.Phone == "" {
		found, err := p.contacts.ExtractPhone(scrapeCtx, input.WebsiteURL)
		if err != nil {
			p.log.ProviderError("contact_extractor", err)
		} else {
			phone = found
		}
	}
	if company == nil || company.Email == "" {
		found, err := p.contacts.ExtractEmail(scrapeCtx, input.WebsiteURL)
		if err != nil {
			p.log.ProviderError("contact_extractor", err)
		} else {
			email = found
		}
	}

	if phone == "" && email == "" {
		return company
	}
	if company == nil {
		company = &domain.CompanyEnrichmentData{Name: input.CompanyName}
	}
	if company.Phone == "" {
		company.Phone = phone
	}
	if company.Email == "" {
		company.Email = email
	}
	return company
}

// ProcessBatch runs the pipeline for multiple leads with bounded concurrency.
// One lead's failure never cancels its siblings. The returned slice contains
// only successes, in the relative order of their inputs.
func (p *Pipeline) ProcessBatch(ctx context.Context, inputs []domain.LeadInput) []*domain.Lead {
	sem := semaphore.NewWeighted(p.concurrency)
	results := make([]*domain.Lead, len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		if err := sem.Acquire(ctx, 1); err != nil {
			p.log.Error("batch aborted", "error", err)
			break
		}

		wg.Add(1)
		go func(idx int, in domain.LeadInput) {
			defer wg.Done()
			defer sem.Release(1)

			lead, err := p.ProcessLead(ctx, in)
			if err != nil {
				p.log.Error("batch lead failed", "company", in.CompanyName, "error", err)
				return
			}
			results[idx] = lead
		}(i, input)
	}
	wg.Wait()

	succeeded := make([]*domain.Lead, 0, len(inputs))
	for _, lead := range results {
		if lead != nil {
			succeeded = append(succeeded, lead)
		}
	}
	return succeeded
}

// RetryFailed discards the persisted record entirely and reprocesses the
// lead from its original input. This is a full restart, not a resume.
func (p *Pipeline) RetryFailed(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	lead, err := p.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found").WithOp("leads.RetryFailed")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp("leads.RetryFailed")
	}

	input := lead.Input()
	if err := p.repo.Delete(ctx, id); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to discard lead record", err).WithOp("leads.RetryFailed")
	}

	return p.ProcessLead(ctx, input)
}

// UpdateScore re-runs only the scoring stage against already-persisted data.
// No provider is called again.
func (p *Pipeline) UpdateScore(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	lead, err := p.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found").WithOp("leads.UpdateScore")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp("leads.UpdateScore")
	}

	whatsappEnabled := lead.NormalizedData != nil && lead.NormalizedData.WhatsAppEnabled

	scoringResult, insights := p.scorer.ScoreAndEnrich(ctx, scoring.Input{
		CompanyName:     lead.CompanyName,
		Tech:            lead.WebsiteTech,
		Social:          lead.SocialMediaInfo,
		Company:         lead.CompanyInfo,
		Normalized:      lead.NormalizedData,
		WhatsAppEnabled: whatsappEnabled,
	})

	var previousScore *int
	if lead.Scoring != nil {
		previous := lead.Scoring.Score
		previousScore = &previous
	}

	updated, err := p.repo.UpdateScoring(ctx, id, scoringResult, insights)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to persist new score", err).WithOp("leads.UpdateScore")
	}

	p.appendHistory(ctx, domain.HistoryEntry{
		LeadID:        id,
		Action:        domain.ActionScoreUpdated,
		PreviousScore: previousScore,
		NewScore:      &scoringResult.Score,
		Changes: map[string]interface{}{
			"potential_tag": string(scoringResult.PotentialTag),
		},
	})

	return &updated, nil
}

func (p *Pipeline) appendHistory(ctx context.Context, entry domain.HistoryEntry) {
	if err := p.repo.AppendHistory(ctx, entry); err != nil {
		p.log.DatabaseError("append_history", err)
	}
}

func lastFailedStep(steps []domain.ProcessingStep) string {
	stage := "unknown"
	for _, step := range steps {
		if step.Status == domain.StepFailed {
			stage = step.StepName
		}
	}
	return stage
}
