// Package service bridges the HTTP surface to the enrichment pipeline and
// the repository.
package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"leadflow_backend/internal/exports"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
)

// exportPageSize bounds how many leads one CSV export fetches.
const exportPageSize = 10_000

type Service struct {
	pipe *pipeline.Pipeline
	repo repository.LeadsRepository
	log  *logger.Logger
}

func New(pipe *pipeline.Pipeline, repo repository.LeadsRepository, log *logger.Logger) *Service {
	return &Service{pipe: pipe, repo: repo, log: log}
}

// Create runs the full enrichment pipeline for one lead synchronously.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (*domain.Lead, error) {
	return s.pipe.ProcessLead(ctx, req.Input())
}

// CreateBatch runs the pipeline for multiple leads with bounded concurrency.
// Failures are dropped from the response, not surfaced as an error.
func (s *Service) CreateBatch(ctx context.Context, req transport.BatchCreateRequest) transport.BatchCreateResponse {
	inputs := make([]domain.LeadInput, 0, len(req.Leads))
	for _, lead := range req.Leads {
		inputs = append(inputs, lead.Input())
	}

	processed := s.pipe.ProcessBatch(ctx, inputs)
	return transport.BatchCreateResponse{
		Requested: len(inputs),
		Processed: len(processed),
		Leads:     processed,
	}
}

func (s *Service) List(ctx context.Context, query transport.ListLeadsQuery) (transport.ListLeadsResponse, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	leads, total, err := s.repo.List(ctx, repository.ListParams{
		Status:   query.Status,
		Tag:      query.Tag,
		MinScore: query.MinScore,
		MaxScore: query.MaxScore,
		Limit:    limit,
		Offset:   query.Offset,
	})
	if err != nil {
		return transport.ListLeadsResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list leads", err).WithOp("leads.List")
	}

	return transport.ListLeadsResponse{
		Leads:  leads,
		Total:  total,
		Limit:  limit,
		Offset: query.Offset,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound("lead not found").WithOp("leads.GetByID")
		}
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp("leads.GetByID")
	}
	return lead, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found").WithOp("leads.Delete")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete lead", err).WithOp("leads.Delete")
	}
	return nil
}

// Retry discards the stored record and reprocesses the lead from its
// original input.
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	return s.pipe.RetryFailed(ctx, id)
}

// Rescore re-runs only the scoring stage against the stored data.
func (s *Service) Rescore(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	return s.pipe.UpdateScore(ctx, id)
}

func (s *Service) History(ctx context.Context, id uuid.UUID) (transport.HistoryResponse, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return transport.HistoryResponse{}, err
	}

	entries, err := s.repo.ListHistory(ctx, id)
	if err != nil {
		return transport.HistoryResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load history", err).WithOp("leads.History")
	}
	return transport.HistoryResponse{LeadID: id.String(), History: entries}, nil
}

// ExportCSV streams every lead as CSV, highest score first.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	leads, _, err := s.repo.List(ctx, repository.ListParams{Limit: exportPageSize})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load leads for export", err).WithOp("leads.ExportCSV")
	}
	return exports.WriteCSV(w, leads)
}
