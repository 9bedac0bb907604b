package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/scoring"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

type fakeRepo struct {
	mu        sync.Mutex
	leads     map[uuid.UUID]domain.Lead
	history   []domain.HistoryEntry
	createErr map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		leads:     make(map[uuid.UUID]domain.Lead),
		createErr: make(map[string]error),
	}
}

func (f *fakeRepo) Create(_ context.Context, input domain.LeadInput) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.createErr[input.CompanyName]; err != nil {
		return domain.Lead{}, err
	}
	lead := domain.Lead{
		ID:          uuid.New(),
		CompanyName: input.CompanyName,
		WebsiteURL:  input.WebsiteURL,
		Location:    input.Location,
		Industry:    input.Industry,
		Status:      domain.StatusProcessing,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) FinalizeCompleted(_ context.Context, lead domain.Lead) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[lead.ID]; !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.Status = domain.StatusCompleted
	now := time.Now().UTC()
	lead.LastProcessedAt = &now
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeRepo) FinalizeFailed(_ context.Context, id uuid.UUID, stage string, steps []domain.ProcessingStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.Status = domain.StatusFailed
	lead.ProcessingStage = stage
	lead.ProcessingSteps = steps
	f.leads[id] = lead
	return nil
}

func (f *fakeRepo) UpdateScoring(_ context.Context, id uuid.UUID, scoringResult domain.LeadScoringResult, insights domain.EnrichedInsights) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	lead.Scoring = &scoringResult
	lead.Insights = &insights
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ repository.ListParams) ([]domain.Lead, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListCompleted(_ context.Context) ([]domain.Lead, error) { return nil, nil }

func (f *fakeRepo) TopLeads(_ context.Context, _ int) ([]domain.Lead, error) { return nil, nil }

func (f *fakeRepo) CountCreatedSince(_ context.Context, _ time.Time) (int, error) { return 0, nil }

func (f *fakeRepo) AppendHistory(_ context.Context, entry domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeRepo) ListHistory(_ context.Context, leadID uuid.UUID) ([]domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]domain.HistoryEntry, 0)
	for _, e := range f.history {
		if e.LeadID == leadID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

type fakeProviders struct {
	techErr      error
	socialErr    error
	businessErr  error
	messagingErr error

	tech      domain.WebsiteTechData
	social    domain.SocialMediaInfo
	business  domain.CompanyEnrichmentData
	messaging domain.MessagingStatus

	phone string
	email string
}

func (f *fakeProviders) Detect(_ context.Context, _ string) (domain.WebsiteTechData, error) {
	if f.techErr != nil {
		return domain.WebsiteTechData{}, f.techErr
	}
	return f.tech, nil
}

func (f *fakeProviders) Search(_ context.Context, _, _ string) (domain.SocialMediaInfo, error) {
	if f.socialErr != nil {
		return nil, f.socialErr
	}
	return f.social, nil
}

func (f *fakeProviders) Enrich(_ context.Context, name, _, _, _ string) (domain.CompanyEnrichmentData, error) {
	if f.businessErr != nil {
		return domain.CompanyEnrichmentData{}, f.businessErr
	}
	if f.business.Name == "" {
		return domain.CompanyEnrichmentData{Name: name}, nil
	}
	return f.business, nil
}

func (f *fakeProviders) Check(_ context.Context, _, _ string) (domain.MessagingStatus, error) {
	if f.messagingErr != nil {
		return domain.MessagingStatus{}, f.messagingErr
	}
	return f.messaging, nil
}

func (f *fakeProviders) ExtractPhone(_ context.Context, _ string) (string, error) {
	return f.phone, nil
}

func (f *fakeProviders) ExtractEmail(_ context.Context, _ string) (string, error) {
	return f.email, nil
}

func newTestPipeline(repo *fakeRepo, providers *fakeProviders) *Pipeline {
	log := logger.New("test")
	return New(Config{
		Repo:      repo,
		Tech:      providers,
		Social:    providers,
		Business:  providers,
		Messaging: providers,
		Contacts:  providers,
		Scorer:    scoring.NewService(nil, log),
		Logger:    log,
	})
}

func TestProcessLeadRecordsSixStepsInOrder(t *testing.T) {
	repo := newFakeRepo()
	pipe := newTestPipeline(repo, &fakeProviders{})

	lead, err := pipe.ProcessLead(context.Background(), domain.LeadInput{
		CompanyName: "Acme Corp.",
		WebsiteURL:  "acme.com",
	})
	if err != nil {
		t.Fatalf("ProcessLead: %v", err)
	}

	if len(lead.ProcessingSteps) != len(domain.StepOrder) {
		t.Fatalf("got %d steps, want %d", len(lead.ProcessingSteps), len(domain.StepOrder))
	}
	for i, want := range domain.StepOrder {
		step := lead.ProcessingSteps[i]
		if step.StepName != want {
			t.Errorf("step[%d] = %q, want %q", i, step.StepName, want)
		}
		if step.Status != domain.StepCompleted && step.Status != domain.StepFailed {
			t.Errorf("step[%d] status %q is not terminal", i, step.Status)
		}
		if step.StartedAt.IsZero() || step.CompletedAt.IsZero() {
			t.Errorf("step[%d] missing timestamps", i)
		}
	}
	if lead.Status != domain.StatusCompleted {
		t.Errorf("Status = %q, want COMPLETED", lead.Status)
	}
}

func TestProcessLeadAllProvidersFailStillCompletes(t *testing.T) {
	repo := newFakeRepo()
	down := errors.New("network down")
	pipe := newTestPipeline(repo, &fakeProviders{
		techErr:      down,
		socialErr:    down,
		businessErr:  down,
		messagingErr: down,
	})

	lead, err := pipe.ProcessLead(context.Background(), domain.LeadInput{
		CompanyName: "Acme",
		WebsiteURL:  "acme.com",
	})
	if err != nil {
		t.Fatalf("ProcessLead: %v", err)
	}

	if lead.Status != domain.StatusCompleted {
		t.Fatalf("Status = %q, want COMPLETED despite provider failures", lead.Status)
	}

	failed := 0
	for _, step := range lead.ProcessingSteps {
		if step.Status == domain.StepFailed {
			failed++
			if step.Error == "" {
				t.Errorf("failed step %q has no error message", step.StepName)
			}
		}
	}
	if failed != 4 {
		t.Errorf("failed steps = %d, want 4", failed)
	}

	if lead.Scoring == nil {
		t.Fatal("Scoring must be set")
	}
	// Missing business messaging is the only contributing signal.
	if lead.Scoring.ScoringFactors.AutomationPotential != 5 {
		t.Errorf("AutomationPotential = %d, want 5", lead.Scoring.ScoringFactors.AutomationPotential)
	}
	if lead.Scoring.Score != 5 {
		t.Errorf("Score = %d, want 5", lead.Scoring.Score)
	}
}

func TestProcessLeadValidation(t *testing.T) {
	repo := newFakeRepo()
	pipe := newTestPipeline(repo, &fakeProviders{})

	_, err := pipe.ProcessLead(context.Background(), domain.LeadInput{CompanyName: "   "})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(repo.leads) != 0 {
		t.Error("no record may be persisted for invalid input")
	}
}

func TestProcessLeadCreateFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr["Broken"] = errors.New("connection refused")
	pipe := newTestPipeline(repo, &fakeProviders{})

	_, err := pipe.ProcessLead(context.Background(), domain.LeadInput{CompanyName: "Broken"})
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("err = %v, want internal error", err)
	}
}

func TestProcessLeadContactBackfill(t *testing.T) {
	repo := newFakeRepo()
	providers := &fakeProviders{
		business: domain.CompanyEnrichmentData{Name: "Acme", Phone: "+1 212 555 0100"},
		phone:    "+1 999 999 9999",
		email:    "info@acme.com",
	}
	pipe := newTestPipeline(repo, providers)

	lead, err := pipe.ProcessLead(context.Background(), domain.LeadInput{
		CompanyName: "Acme",
		WebsiteURL:  "acme.com",
	})
	if err != nil {
		t.Fatalf("ProcessLead: %v", err)
	}

	// Enrichment phone wins over the scraped one; missing email is filled.
	if lead.CompanyInfo.Phone != "+1 212 555 0100" {
		t.Errorf("Phone = %q, scraped value must not overwrite enrichment", lead.CompanyInfo.Phone)
	}
	if lead.CompanyInfo.Email != "info@acme.com" {
		t.Errorf("Email = %q, want scraped backfill", lead.CompanyInfo.Email)
	}
}

func TestProcessLeadHistoryEntry(t *testing.T) {
	repo := newFakeRepo()
	pipe := newTestPipeline(repo, &fakeProviders{})

	lead, err := pipe.ProcessLead(context.Background(), domain.LeadInput{CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("ProcessLead: %v", err)
	}

	entries, _ := repo.ListHistory(context.Background(), lead.ID)
	if len(entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(entries))
	}
	if entries[0].Action != domain.ActionLeadProcessed {
		t.Errorf("action = %q, want %q", entries[0].Action, domain.ActionLeadProcessed)
	}
	if entries[0].NewScore == nil || *entries[0].NewScore != lead.Scoring.Score {
		t.Errorf("NewScore = %v, want %d", entries[0].NewScore, lead.Scoring.Score)
	}
}

func TestProcessBatchDropsFailuresKeepsOrder(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr["Third"] = errors.New("insert failed")
	pipe := newTestPipeline(repo, &fakeProviders{})

	inputs := []domain.LeadInput{
		{CompanyName: "First"},
		{CompanyName: "Second"},
		{CompanyName: "Third"},
		{CompanyName: "Fourth"},
		{CompanyName: "Fifth"},
	}

	results := pipe.ProcessBatch(context.Background(), inputs)

	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	wantOrder := []string{"First", "Second", "Fourth", "Fifth"}
	for i, want := range wantOrder {
		if results[i].CompanyName != want {
			t.Errorf("results[%d] = %q, want %q", i, results[i].CompanyName, want)
		}
	}
}

func TestRetryFailedReprocessesFromScratch(t *testing.T) {
	repo := newFakeRepo()
	pipe := newTestPipeline(repo, &fakeProviders{})

	original, err := pipe.ProcessLead(context.Background(), domain.LeadInput{CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("ProcessLead: %v", err)
	}

	retried, err := pipe.RetryFailed(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("RetryFailed: %v", err)
	}

	if retried.ID == original.ID {
		t.Error("retry must create a fresh record, not reuse the old id")
	}
	if _, err := repo.GetByID(context.Background(), original.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Error("original record must be discarded")
	}
	if retried.CompanyName != "Acme" {
		t.Errorf("CompanyName = %q", retried.CompanyName)
	}
}

func TestRetryFailedUnknownID(t *testing.T) {
	pipe := newTestPipeline(newFakeRepo(), &fakeProviders{})

	_, err := pipe.RetryFailed(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateScoreAppendsHistory(t *testing.T) {
	repo := newFakeRepo()
	pipe := newTestPipeline(repo, &fakeProviders{
		messaging: domain.MessagingStatus{HasBusinessAccount: true, APIEnabled: true},
	})

	lead, err := pipe.ProcessLead(context.Background(), domain.LeadInput{CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("ProcessLead: %v", err)
	}
	previousScore := lead.Scoring.Score

	updated, err := pipe.UpdateScore(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("UpdateScore: %v", err)
	}
	if updated.Scoring == nil {
		t.Fatal("Scoring must be set after rescore")
	}

	entries, _ := repo.ListHistory(context.Background(), lead.ID)
	var scoreUpdates []domain.HistoryEntry
	for _, e := range entries {
		if e.Action == domain.ActionScoreUpdated {
			scoreUpdates = append(scoreUpdates, e)
		}
	}
	if len(scoreUpdates) != 1 {
		t.Fatalf("SCORE_UPDATED entries = %d, want 1", len(scoreUpdates))
	}
	entry := scoreUpdates[0]
	if entry.PreviousScore == nil || *entry.PreviousScore != previousScore {
		t.Errorf("PreviousScore = %v, want %d", entry.PreviousScore, previousScore)
	}
	if entry.NewScore == nil || *entry.NewScore != updated.Scoring.Score {
		t.Errorf("NewScore = %v, want %d", entry.NewScore, updated.Scoring.Score)
	}
}
