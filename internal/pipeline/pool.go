package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoangvq/summarize-be/internal/domain"
	"github.com/hoangvq/summarize-be/internal/events"
)

// Start spawns the worker pool. Workers run on ctx, which must outlive the
// requests that trigger submissions; a background unit's lifetime is tied
// to the process, never to the HTTP request that created its record.
func (o *Orchestrator) Start(ctx context.Context) {
	o.logger.Info("Spawning pipeline worker pool",
		slog.Int("concurrency", o.concurrency),
		slog.Int("queue_size", cap(o.tasks)),
	)

	for i := 0; i < o.concurrency; i++ {
		o.wg.Add(1)
		go o.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (o *Orchestrator) workerLoop(ctx context.Context, workerNum int) {
	defer o.wg.Done()

	workerName := fmt.Sprintf("pipeline-worker-%d", workerNum)
	o.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-o.stopChan:
			o.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			o.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case t := <-o.tasks:
			o.runTask(ctx, workerName, t)
		}
	}
}

// runTask executes one background unit with an error boundary: any
// failure, including a panic, is converted into a best-effort failed
// status so a partial run never corrupts the record.
func (o *Orchestrator) runTask(ctx context.Context, workerName string, t *task) {
	o.logger.Info("Processing summary",
		slog.String("worker_name", workerName),
		slog.String("summary_id", t.SummaryID),
	)

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Panic in background unit",
				slog.String("summary_id", t.SummaryID),
				slog.Any("panic", r),
			)
			o.markFailed(ctx, t)
		}
	}()

	start := time.Now()

	text, err := o.extractor.Extract(ctx, t.FileURL)
	if err != nil {
		o.logger.Error("Extraction failed",
			slog.String("summary_id", t.SummaryID),
			slog.Any("error", err),
		)
		o.markFailed(ctx, t)
		return
	}

	summaryText, err := o.summarizer.Summarize(ctx, text)
	if err != nil {
		o.logger.Error("Summarization failed",
			slog.String("summary_id", t.SummaryID),
			slog.Any("error", err),
		)
		o.markFailed(ctx, t)
		return
	}

	if err := o.store.Complete(ctx, t.SummaryID, summaryText); err != nil {
		o.logger.Error("Failed to persist completed summary",
			slog.String("summary_id", t.SummaryID),
			slog.Any("error", err),
		)
		o.markFailed(ctx, t)
		return
	}

	o.logger.Info("Summary completed",
		slog.String("worker_name", workerName),
		slog.String("summary_id", t.SummaryID),
		slog.Duration("elapsed", time.Since(start)),
	)

	o.publisher.PublishSummaryEvent(ctx, &events.SummaryEvent{
		SummaryID:  t.SummaryID,
		UserID:     t.UserID,
		Status:     domain.StatusCompleted,
		OccurredAt: time.Now().UTC(),
	})
}

// markFailed applies the failed terminal status best-effort. If the write
// itself fails the record stays pending; that bounded inconsistency is
// accepted and only logged.
func (o *Orchestrator) markFailed(ctx context.Context, t *task) {
	if err := o.store.Fail(ctx, t.SummaryID); err != nil {
		o.logger.Error("Failed to mark summary failed, record stays pending",
			slog.String("summary_id", t.SummaryID),
			slog.Any("error", err),
		)
		return
	}

	o.publisher.PublishSummaryEvent(ctx, &events.SummaryEvent{
		SummaryID:  t.SummaryID,
		UserID:     t.UserID,
		Status:     domain.StatusFailed,
		OccurredAt: time.Now().UTC(),
	})
}
