package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hoangvq/summarize-be/internal/domain"
	"github.com/hoangvq/summarize-be/internal/events"
	"github.com/hoangvq/summarize-be/internal/extract"
)

// SummaryStore is the persistence port used by the pipeline
type SummaryStore interface {
	Create(ctx context.Context, summary *domain.Summary) error
	Complete(ctx context.Context, summaryID, summaryText string) error
	Fail(ctx context.Context, summaryID string) error
	GetByID(ctx context.Context, summaryID string) (*domain.Summary, error)
}

// Summarizer is the summary generation port (implemented by summarize.Gateway)
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SubmitRequest carries one summarization submission
type SubmitRequest struct {
	UserID   string
	FileURL  string
	FileName string
	Title    string
}

// task is one background unit of work: extract, summarize, persist
type task struct {
	SummaryID string
	UserID    string
	FileURL   string
}

// Config holds orchestrator configuration
type Config struct {
	Store       SummaryStore
	Extractor   extract.Extractor
	Summarizer  Summarizer
	Publisher   events.Publisher
	Logger      *slog.Logger
	Concurrency int
	QueueSize   int
}

// Orchestrator owns the summary state machine. It creates pending records
// synchronously, hands the id back immediately, and runs the
// extract-summarize-persist sequence on its worker pool. It is the only
// writer of status transitions: pending goes to exactly one of completed
// or failed and terminal states are never left.
type Orchestrator struct {
	store      SummaryStore
	extractor  extract.Extractor
	summarizer Summarizer
	publisher  events.Publisher
	logger     *slog.Logger

	concurrency int
	tasks       chan *task
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// NewOrchestrator creates an orchestrator instance
func NewOrchestrator(cfg *Config) *Orchestrator {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &Orchestrator{
		store:       cfg.Store,
		extractor:   cfg.Extractor,
		summarizer:  cfg.Summarizer,
		publisher:   publisher,
		logger:      cfg.Logger,
		concurrency: concurrency,
		tasks:       make(chan *task, queueSize),
		stopChan:    make(chan struct{}),
	}
}

// Submit creates a pending summary record and dispatches the background
// unit. The returned id is durable and pollable before Submit returns; the
// caller never waits on extraction or summarization.
func (o *Orchestrator) Submit(ctx context.Context, req *SubmitRequest) (string, error) {
	now := time.Now().UTC()
	summary := &domain.Summary{
		SummaryID:   uuid.New().String(),
		UserID:      req.UserID,
		FileURL:     req.FileURL,
		FileName:    req.FileName,
		Title:       req.Title,
		SummaryText: "",
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := o.store.Create(ctx, summary); err != nil {
		return "", fmt.Errorf("failed to create summary record: %w", err)
	}

	o.logger.Info("Summary submitted",
		slog.String("summary_id", summary.SummaryID),
		slog.String("user_id", req.UserID),
		slog.String("file_name", req.FileName),
	)

	o.dispatch(&task{
		SummaryID: summary.SummaryID,
		UserID:    req.UserID,
		FileURL:   req.FileURL,
	})

	return summary.SummaryID, nil
}

// dispatch enqueues a task without ever blocking the foreground path. When
// the buffer is full the handoff moves to its own goroutine; the record
// already exists, so the id stays valid while the task waits.
func (o *Orchestrator) dispatch(t *task) {
	select {
	case o.tasks <- t:
	default:
		o.logger.Warn("Task queue full, deferring dispatch",
			slog.String("summary_id", t.SummaryID),
		)
		go func() {
			select {
			case o.tasks <- t:
			case <-o.stopChan:
				o.logger.Warn("Dropped task during shutdown, record stays pending",
					slog.String("summary_id", t.SummaryID),
				)
			}
		}()
	}
}

// Get returns the current summary record for polling callers
func (o *Orchestrator) Get(ctx context.Context, summaryID string) (*domain.Summary, error) {
	return o.store.GetByID(ctx, summaryID)
}

// Stop drains in-flight workers and shuts the pool down
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.logger.Info("Stopping pipeline...")
		close(o.stopChan)
	})
	o.wg.Wait()
	o.logger.Info("Pipeline stopped")
}
