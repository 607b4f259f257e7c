package api

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"sonar/logging"
	"sonar/scanner"
)

// StartWorkers launches a goroutine pool that processes queued scan tasks.
// Each worker blocks on the queue, runs one scan at a time and streams
// progress counters back into the store.
func StartWorkers(store TaskStore, services *scanner.Directory, numWorkers int) (*ants.Pool, error) {
	pool, err := ants.NewPool(numWorkers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	for i := 0; i < numWorkers; i++ {
		if err := pool.Submit(func() { workerLoop(store, services) }); err != nil {
			pool.Release()
			return nil, fmt.Errorf("submit worker: %w", err)
		}
	}
	return pool, nil
}

func workerLoop(store TaskStore, services *scanner.Directory) {
	logger := logging.Logger()
	for {
		taskID, err := store.PopFromQueue()
		if err != nil {
			logger.Error("worker failed to pop task", "error", err)
			time.Sleep(time.Second)
			continue
		}

		task, err := store.GetTask(taskID)
		if err != nil {
			if err == ErrTaskNotFound {
				logger.Warn("worker task disappeared", "task_id", taskID)
				continue
			}
			logger.Error("worker failed to load task", "task_id", taskID, "error", err)
			continue
		}

		runTask(store, services, task)
	}
}

func runTask(store TaskStore, services *scanner.Directory, task *ScanTask) {
	logger := logging.Logger()

	task.Status = "running"
	task.Error = ""
	task.Results = nil
	task.Report = ""
	task.Done = 0
	task.CompletedAt = nil
	if err := store.UpdateTask(task); err != nil {
		logger.Error("worker failed to mark task running", "task_id", task.ID, "error", err)
		return
	}

	portRange, err := scanner.ParsePortRange(task.Ports)
	if err != nil {
		failTask(store, task, err)
		return
	}

	coord := scanner.New(services)
	total := portRange.Count()
	task.Total = total

	// Progress is persisted only when the integer percentage moves, so a
	// 65k-port scan doesn't turn into 65k store writes.
	var done atomic.Int64
	var lastPercent atomic.Int64
	lastPercent.Store(-1)
	coord.OnProgress = func() {
		d := done.Add(1)
		percent := d * 100 / int64(total)
		if prev := lastPercent.Load(); percent > prev && lastPercent.CompareAndSwap(prev, percent) {
			if err := store.SetProgress(task.ID, int(d), total); err != nil {
				logger.Warn("worker failed to persist progress", "task_id", task.ID, "error", err)
			}
		}
	}

	report, err := coord.Start(context.Background(), task.Host, portRange)
	if err != nil {
		failTask(store, task, err)
		return
	}

	task.Status = "completed"
	task.Done = total
	task.Results = report
	task.Report = report.String()
	now := time.Now().UTC()
	task.CompletedAt = &now

	if err := store.UpdateTask(task); err != nil {
		logger.Error("worker failed to update task", "task_id", task.ID, "error", err)
		return
	}
	logger.Info("scan task completed", "task_id", task.ID, "host", task.Host, "open", len(report))
}

func failTask(store TaskStore, task *ScanTask, err error) {
	logger := logging.Logger()
	logger.Error("worker task failed", "task_id", task.ID, "error", err)
	task.Status = "failed"
	task.Error = err.Error()
	task.Results = nil
	task.Report = ""
	now := time.Now().UTC()
	task.CompletedAt = &now
	if updateErr := store.UpdateTask(task); updateErr != nil {
		logger.Error("worker failed to persist failed task", "task_id", task.ID, "error", updateErr)
	}
}
