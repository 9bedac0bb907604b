package scheduler

import (
	"context"
	"time"

	"github.com/hibiken/asynq"

	"leadflow_backend/internal/email"
	"leadflow_backend/internal/leads/pipeline"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

const (
	topLeadsPerReport = 10
	reportLookback    = 7 * 24 * time.Hour
)

// Worker consumes the background tasks: periodic rescoring of completed
// leads and the weekly report email.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	pipe     *pipeline.Pipeline
	repo     repository.LeadsRepository
	reporter *email.Reporter
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pipe *pipeline.Pipeline, repo repository.LeadsRepository, reporter *email.Reporter, log *logger.Logger) (*Worker, error) {
	opt, queue, err := schedulerConn(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		pipe:     pipe,
		repo:     repo,
		reporter: reporter,
		log:      log,
	}

	mux.HandleFunc(TaskRescoreAll, w.handleRescoreAll)
	mux.HandleFunc(TaskWeeklyReport, w.handleWeeklyReport)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

// handleRescoreAll re-scores every completed lead against its stored data.
// Per-lead failures are logged and skipped so one bad record cannot stall
// the sweep.
func (w *Worker) handleRescoreAll(ctx context.Context, _ *asynq.Task) error {
	leads, err := w.repo.ListCompleted(ctx)
	if err != nil {
		return err
	}

	rescored := 0
	for _, lead := range leads {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := w.pipe.UpdateScore(ctx, lead.ID); err != nil {
			w.log.Warn("rescore failed", "lead_id", lead.ID.String(), "error", err)
			continue
		}
		rescored++
	}

	w.log.Info("rescore sweep finished", "total", len(leads), "rescored", rescored)
	return nil
}

func (w *Worker) handleWeeklyReport(ctx context.Context, _ *asynq.Task) error {
	newLeads, err := w.repo.CountCreatedSince(ctx, time.Now().Add(-reportLookback))
	if err != nil {
		return err
	}

	top, err := w.repo.TopLeads(ctx, topLeadsPerReport)
	if err != nil {
		return err
	}

	return w.reporter.SendWeeklyReport(ctx, email.WeeklyReport{
		NewLeads:    int64(newLeads),
		TopLeads:    top,
		GeneratedAt: time.Now(),
	})
}
