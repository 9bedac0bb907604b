package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"leadflow_backend/internal/leads/domain"
)

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
	ListCompleted(ctx context.Context) ([]domain.Lead, error)
	TopLeads(ctx context.Context, limit int) ([]domain.Lead, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

// LeadWriter provides write operations on the lead aggregate.
type LeadWriter interface {
	Create(ctx context.Context, input domain.LeadInput) (domain.Lead, error)
	FinalizeCompleted(ctx context.Context, lead domain.Lead) (domain.Lead, error)
	FinalizeFailed(ctx context.Context, id uuid.UUID, stage string, steps []domain.ProcessingStep) error
	UpdateScoring(ctx context.Context, id uuid.UUID, scoring domain.LeadScoringResult, insights domain.EnrichedInsights) (domain.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HistoryStore records and reads the append-only scoring audit trail.
type HistoryStore interface {
	AppendHistory(ctx context.Context, entry domain.HistoryEntry) error
	ListHistory(ctx context.Context, leadID uuid.UUID) ([]domain.HistoryEntry, error)
}

// LeadsRepository is the full persistence surface the pipeline and API use.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	HistoryStore
}
