package scheduler

import (
	"github.com/hibiken/asynq"
)

const TaskRescoreAll = "leads.rescore_all"

const TaskWeeklyReport = "leads.weekly_report"

func NewRescoreAllTask() *asynq.Task {
	return asynq.NewTask(TaskRescoreAll, nil)
}

func NewWeeklyReportTask() *asynq.Task {
	return asynq.NewTask(TaskWeeklyReport, nil)
}
