package scheduler

import (
	"context"

	"github.com/hibiken/asynq"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
)

// Cron entries for the recurring tasks. Rescoring runs nightly off-peak;
// the report goes out Monday morning.
const (
	cronRescoreAll   = "0 2 * * *"
	cronWeeklyReport = "0 9 * * 1"
)

// Periodic enqueues the recurring tasks on their cron schedule.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, log *logger.Logger) (*Periodic, error) {
	opt, queue, err := schedulerConn(cfg)
	if err != nil {
		return nil, err
	}

	sched := asynq.NewScheduler(opt, nil)

	if _, err := sched.Register(cronRescoreAll, NewRescoreAllTask(), asynq.Queue(queue)); err != nil {
		return nil, err
	}
	if _, err := sched.Register(cronWeeklyReport, NewWeeklyReportTask(), asynq.Queue(queue)); err != nil {
		return nil, err
	}

	return &Periodic{scheduler: sched, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.scheduler == nil {
		return
	}

	go func() {
		<-ctx.Done()
		p.scheduler.Shutdown()
	}()

	p.log.Info("periodic scheduler started",
		"rescore_cron", cronRescoreAll,
		"report_cron", cronWeeklyReport,
	)
	if err := p.scheduler.Run(); err != nil {
		p.log.Error("periodic scheduler stopped", "error", err)
	}
}
