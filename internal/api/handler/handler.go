package handler

import (
	"context"
	"log/slog"

	"github.com/hoangvq/summarize-be/internal/domain"
	"github.com/hoangvq/summarize-be/internal/pipeline"
	"github.com/hoangvq/summarize-be/internal/store"
)

// Pipeline is the submission/polling surface exposed by the orchestrator
type Pipeline interface {
	Submit(ctx context.Context, req *pipeline.SubmitRequest) (string, error)
	Get(ctx context.Context, summaryID string) (*domain.Summary, error)
}

// SummaryStore is the read/maintenance surface the handlers use directly
type SummaryStore interface {
	List(ctx context.Context, filter store.SummaryFilter) ([]domain.Summary, error)
	Delete(ctx context.Context, summaryID string) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger   *slog.Logger
	Pipeline Pipeline
	Store    SummaryStore
}

// SummaryHandler handles summary-related HTTP requests
type SummaryHandler struct {
	logger   *slog.Logger
	pipeline Pipeline
	store    SummaryStore
}

// NewSummaryHandler creates a new SummaryHandler instance
func NewSummaryHandler(deps *Dependencies) *SummaryHandler {
	return &SummaryHandler{
		logger:   deps.Logger,
		pipeline: deps.Pipeline,
		store:    deps.Store,
	}
}
