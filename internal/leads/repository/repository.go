// Package repository persists lead aggregates in PostgreSQL. Enrichment
// fragments live in JSONB columns; the score and potential tag are
// denormalized into plain columns for filtering and ordering.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadflow_backend/internal/leads/domain"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, company_name, website_url, location, industry, status, processing_stage,
	website_tech, social_media_info, whatsapp_status, company_info, normalized_data,
	scoring, insights, processing_steps, last_processed_at, created_at, updated_at`

// Create inserts a new lead in PROCESSING state.
func (r *Repository) Create(ctx context.Context, input domain.LeadInput) (domain.Lead, error) {
	steps, err := json.Marshal([]domain.ProcessingStep{})
	if err != nil {
		return domain.Lead{}, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (id, company_name, website_url, location, industry, status, processing_steps)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+leadColumns,
		uuid.New(), input.CompanyName, input.WebsiteURL, input.Location, input.Industry,
		domain.StatusProcessing, steps,
	)
	return scanLead(row)
}

// FinalizeCompleted writes every enrichment fragment, the scoring outcome and
// the full step trace, and flips the lead to COMPLETED.
func (r *Repository) FinalizeCompleted(ctx context.Context, lead domain.Lead) (domain.Lead, error) {
	websiteTech, err := marshalPtr(lead.WebsiteTech)
	if err != nil {
		return domain.Lead{}, err
	}
	social, err := marshalMap(lead.SocialMediaInfo)
	if err != nil {
		return domain.Lead{}, err
	}
	messaging, err := marshalPtr(lead.MessagingStatus)
	if err != nil {
		return domain.Lead{}, err
	}
	company, err := marshalPtr(lead.CompanyInfo)
	if err != nil {
		return domain.Lead{}, err
	}
	normalized, err := marshalPtr(lead.NormalizedData)
	if err != nil {
		return domain.Lead{}, err
	}
	scoring, err := marshalPtr(lead.Scoring)
	if err != nil {
		return domain.Lead{}, err
	}
	insights, err := marshalPtr(lead.Insights)
	if err != nil {
		return domain.Lead{}, err
	}
	steps, err := json.Marshal(lead.ProcessingSteps)
	if err != nil {
		return domain.Lead{}, err
	}

	var score *int
	var tag *string
	if lead.Scoring != nil {
		score = &lead.Scoring.Score
		tagValue := string(lead.Scoring.PotentialTag)
		tag = &tagValue
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			status = $2,
			processing_stage = NULL,
			website_tech = $3,
			social_media_info = $4,
			whatsapp_status = $5,
			company_info = $6,
			normalized_data = $7,
			scoring = $8,
			insights = $9,
			processing_steps = $10,
			score = $11,
			potential_tag = $12,
			last_processed_at = now(),
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		lead.ID, domain.StatusCompleted,
		websiteTech, social, messaging, company, normalized, scoring, insights, steps,
		score, tag,
	)

	updated, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return updated, err
}

// FinalizeFailed marks the lead FAILED at the given stage and stores whatever
// step trace was accumulated before the failure.
func (r *Repository) FinalizeFailed(ctx context.Context, id uuid.UUID, stage string, steps []domain.ProcessingStep) error {
	trace, err := json.Marshal(steps)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			status = $2,
			processing_stage = $3,
			processing_steps = $4,
			last_processed_at = now(),
			updated_at = now()
		WHERE id = $1
	`, id, domain.StatusFailed, stage, trace)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateScoring replaces the scoring outcome and insights of an existing lead
// without touching the enrichment fragments.
func (r *Repository) UpdateScoring(ctx context.Context, id uuid.UUID, scoring domain.LeadScoringResult, insights domain.EnrichedInsights) (domain.Lead, error) {
	scoringJSON, err := json.Marshal(scoring)
	if err != nil {
		return domain.Lead{}, err
	}
	insightsJSON, err := json.Marshal(insights)
	if err != nil {
		return domain.Lead{}, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			scoring = $2,
			insights = $3,
			score = $4,
			potential_tag = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, scoringJSON, insightsJSON, scoring.Score, string(scoring.PotentialTag),
	)

	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListParams filters the lead listing. Zero values mean "no filter".
type ListParams struct {
	Status   string
	Tag      string
	MinScore *int
	MaxScore *int
	Limit    int
	Offset   int
}

// List returns scored leads ordered by score descending, unscored leads last,
// plus the total count for the filter.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 6)

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if params.Status != "" {
		addCondition("status = $%d", params.Status)
	}
	if params.Tag != "" {
		addCondition("potential_tag = $%d", params.Tag)
	}
	if params.MinScore != nil {
		addCondition("score >= $%d", *params.MinScore)
	}
	if params.MaxScore != nil {
		addCondition("score <= $%d", *params.MaxScore)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, params.Offset)

	query := fmt.Sprintf(`SELECT %s FROM leads%s
		ORDER BY score DESC NULLS LAST, created_at DESC
		LIMIT $%d OFFSET $%d`, leadColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListCompleted returns every COMPLETED lead, oldest first. Used by the
// nightly rescore job.
func (r *Repository) ListCompleted(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE status = $1
		ORDER BY created_at ASC
	`, domain.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// TopLeads returns the highest scoring completed leads.
func (r *Repository) TopLeads(ctx context.Context, limit int) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE status = $1 AND score IS NOT NULL
		ORDER BY score DESC, created_at DESC
		LIMIT $2
	`, domain.StatusCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

func (r *Repository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE created_at >= $1`, since).Scan(&count)
	return count, err
}

// AppendHistory records one scoring audit event.
func (r *Repository) AppendHistory(ctx context.Context, entry domain.HistoryEntry) error {
	changes, err := marshalMap(entry.Changes)
	if err != nil {
		return err
	}

	id := entry.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO lead_history (id, lead_id, action, previous_score, new_score, changes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, entry.LeadID, entry.Action, entry.PreviousScore, entry.NewScore, changes)
	return err
}

// ListHistory returns the audit trail for a lead, newest first.
func (r *Repository) ListHistory(ctx context.Context, leadID uuid.UUID) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, action, previous_score, new_score, changes, performed_at
		FROM lead_history
		WHERE lead_id = $1
		ORDER BY performed_at DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.HistoryEntry, 0)
	for rows.Next() {
		var entry domain.HistoryEntry
		var changes []byte
		if err := rows.Scan(
			&entry.ID, &entry.LeadID, &entry.Action,
			&entry.PreviousScore, &entry.NewScore, &changes, &entry.PerformedAt,
		); err != nil {
			return nil, err
		}
		if err := unmarshalInto(changes, &entry.Changes); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var stage *string
	var websiteTech, social, messaging, company, normalized, scoring, insights, steps []byte

	err := row.Scan(
		&lead.ID, &lead.CompanyName, &lead.WebsiteURL, &lead.Location, &lead.Industry,
		&lead.Status, &stage,
		&websiteTech, &social, &messaging, &company, &normalized, &scoring, &insights, &steps,
		&lead.LastProcessedAt, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}

	if stage != nil {
		lead.ProcessingStage = *stage
	}
	if err := unmarshalInto(websiteTech, &lead.WebsiteTech); err != nil {
		return domain.Lead{}, err
	}
	if err := unmarshalInto(social, &lead.SocialMediaInfo); err != nil {
		return domain.Lead{}, err
	}
	if err := unmarshalInto(messaging, &lead.MessagingStatus); err != nil {
		return domain.Lead{}, err
	}
	if err := unmarshalInto(company, &lead.CompanyInfo); err != nil {
		return domain.Lead{}, err
	}
	if err := unmarshalInto(normalized, &lead.NormalizedData); err != nil {
		return domain.Lead{}, err
	}
	if err := unmarshalInto(scoring, &lead.Scoring); err != nil {
		return domain.Lead{}, err
	}
	if err := unmarshalInto(insights, &lead.Insights); err != nil {
		return domain.Lead{}, err
	}
	lead.ProcessingSteps = make([]domain.ProcessingStep, 0)
	if err := unmarshalInto(steps, &lead.ProcessingSteps); err != nil {
		return domain.Lead{}, err
	}

	return lead, nil
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

// marshalPtr marshals a pointer to JSON, mapping nil to SQL NULL.
func marshalPtr[T any](value *T) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

// marshalMap marshals a map to JSON, mapping nil to SQL NULL.
func marshalMap[K comparable, V any](value map[K]V) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	return json.Marshal(value)
}

func unmarshalInto(data []byte, target interface{}) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
