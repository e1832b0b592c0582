package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hoangvq/summarize-be/internal/domain"
	"github.com/hoangvq/summarize-be/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu          sync.Mutex
	records     map[string]*domain.Summary
	createErr   error
	completeErr error
	failErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]*domain.Summary{}}
}

func (s *fakeStore) Create(ctx context.Context, summary *domain.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	cp := *summary
	s.records[summary.SummaryID] = &cp
	return nil
}

func (s *fakeStore) Complete(ctx context.Context, summaryID, summaryText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completeErr != nil {
		return s.completeErr
	}
	rec, ok := s.records[summaryID]
	if !ok {
		return domain.ErrSummaryNotFound
	}
	rec.Status = domain.StatusCompleted
	rec.SummaryText = summaryText
	return nil
}

func (s *fakeStore) Fail(ctx context.Context, summaryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	rec, ok := s.records[summaryID]
	if !ok {
		return domain.ErrSummaryNotFound
	}
	rec.Status = domain.StatusFailed
	rec.SummaryText = ""
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, summaryID string) (*domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[summaryID]
	if !ok {
		return nil, domain.ErrSummaryNotFound
	}
	cp := *rec
	return &cp, nil
}

type fakeExtractor struct {
	mu       sync.Mutex
	text     string
	err      error
	calls    int
	panicMsg string
	block    chan struct{} // if set, Extract waits until closed
}

func (e *fakeExtractor) Extract(ctx context.Context, fileURL string) (string, error) {
	e.mu.Lock()
	e.calls++
	block := e.block
	e.mu.Unlock()

	if block != nil {
		<-block
	}
	if e.panicMsg != "" {
		panic(e.panicMsg)
	}
	if e.err != nil {
		return "", e.err
	}
	return e.text, nil
}

func (e *fakeExtractor) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

type fakeSummarizer struct {
	mu      sync.Mutex
	summary string
	err     error
	calls   int
}

func (s *fakeSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.summary, nil
}

func (s *fakeSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []*events.SummaryEvent
}

func (p *capturingPublisher) PublishSummaryEvent(ctx context.Context, event *events.SummaryEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturingPublisher) published() []*events.SummaryEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*events.SummaryEvent(nil), p.events...)
}

func newTestOrchestrator(t *testing.T, store SummaryStore, extractor *fakeExtractor, summarizer *fakeSummarizer, publisher events.Publisher) *Orchestrator {
	t.Helper()

	o := NewOrchestrator(&Config{
		Store:       store,
		Extractor:   extractor,
		Summarizer:  summarizer,
		Publisher:   publisher,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Concurrency: 2,
		QueueSize:   8,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	o.Start(ctx)
	t.Cleanup(o.Stop)

	return o
}

func submitReq() *SubmitRequest {
	return &SubmitRequest{
		UserID:   "user-1",
		FileURL:  "https://files.example.com/doc.pdf",
		FileName: "doc.pdf",
		Title:    "doc.pdf",
	}
}

func waitForTerminal(t *testing.T, store SummaryStore, id string) *domain.Summary {
	t.Helper()

	var rec *domain.Summary
	require.Eventually(t, func() bool {
		var err error
		rec, err = store.GetByID(context.Background(), id)
		if err != nil {
			return false
		}
		return domain.IsTerminal(rec.Status)
	}, 2*time.Second, 5*time.Millisecond, "summary never reached a terminal status")

	return rec
}

func TestOrchestrator_Submit_ReturnsPendingImmediately(t *testing.T) {
	store := newFakeStore()
	block := make(chan struct{})
	extractor := &fakeExtractor{text: "Hello world", block: block}
	summarizer := &fakeSummarizer{summary: "Summary A"}
	o := newTestOrchestrator(t, store, extractor, summarizer, nil)

	id, err := o.Submit(context.Background(), submitReq())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// The background unit is blocked inside extraction; the record must
	// already be pollable and pending with no summary.
	rec, err := o.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.Empty(t, rec.SummaryText)

	close(block)
	waitForTerminal(t, store, id)
}

func TestOrchestrator_SuccessPath(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{text: "Hello world"}
	summarizer := &fakeSummarizer{summary: "Summary A"}
	publisher := &capturingPublisher{}
	o := newTestOrchestrator(t, store, extractor, summarizer, publisher)

	id, err := o.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	rec := waitForTerminal(t, store, id)
	assert.Equal(t, domain.StatusCompleted, rec.Status)
	assert.Equal(t, "Summary A", rec.SummaryText)

	evts := publisher.published()
	require.Len(t, evts, 1)
	assert.Equal(t, id, evts[0].SummaryID)
	assert.Equal(t, domain.StatusCompleted, evts[0].Status)
}

func TestOrchestrator_ExtractionFailure(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{err: fmt.Errorf("%w: unreachable", domain.ErrExtractionFailed)}
	summarizer := &fakeSummarizer{summary: "Summary A"}
	publisher := &capturingPublisher{}
	o := newTestOrchestrator(t, store, extractor, summarizer, publisher)

	id, err := o.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	rec := waitForTerminal(t, store, id)
	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Empty(t, rec.SummaryText)
	assert.Equal(t, 0, summarizer.callCount(), "summarizer must not run after a failed extraction")

	evts := publisher.published()
	require.Len(t, evts, 1)
	assert.Equal(t, domain.StatusFailed, evts[0].Status)
}

func TestOrchestrator_SummarizationFailure(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{text: "Hello world"}
	summarizer := &fakeSummarizer{err: fmt.Errorf("%w: both providers exhausted", domain.ErrSummarizationFailed)}
	o := newTestOrchestrator(t, store, extractor, summarizer, nil)

	id, err := o.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	rec := waitForTerminal(t, store, id)
	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Empty(t, rec.SummaryText)
	assert.Equal(t, 1, extractor.callCount())
}

func TestOrchestrator_CompleteWriteFailure(t *testing.T) {
	store := newFakeStore()
	store.completeErr = errors.New("connection reset")
	extractor := &fakeExtractor{text: "Hello world"}
	summarizer := &fakeSummarizer{summary: "Summary A"}
	o := newTestOrchestrator(t, store, extractor, summarizer, nil)

	id, err := o.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	rec := waitForTerminal(t, store, id)
	assert.Equal(t, domain.StatusFailed, rec.Status)
	assert.Empty(t, rec.SummaryText)
}

func TestOrchestrator_FailWriteFailureLeavesPending(t *testing.T) {
	store := newFakeStore()
	store.failErr = errors.New("connection reset")
	extractor := &fakeExtractor{err: errors.New("boom")}
	summarizer := &fakeSummarizer{summary: "Summary A"}
	publisher := &capturingPublisher{}
	o := newTestOrchestrator(t, store, extractor, summarizer, publisher)

	id, err := o.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return extractor.callCount() == 1
	}, 2*time.Second, 5*time.Millisecond)

	// The terminal write failed; the record stays pending and no event is
	// published for it.
	time.Sleep(50 * time.Millisecond)
	rec, err := o.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, rec.Status)
	assert.Empty(t, publisher.published())
}

func TestOrchestrator_PanicInBackgroundUnit(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{panicMsg: "unexpected"}
	summarizer := &fakeSummarizer{summary: "Summary A"}
	o := newTestOrchestrator(t, store, extractor, summarizer, nil)

	id, err := o.Submit(context.Background(), submitReq())
	require.NoError(t, err)

	rec := waitForTerminal(t, store, id)
	assert.Equal(t, domain.StatusFailed, rec.Status)
}

func TestOrchestrator_Submit_CreateFailure(t *testing.T) {
	store := newFakeStore()
	store.createErr = errors.New("insert failed")
	extractor := &fakeExtractor{text: "Hello world"}
	summarizer := &fakeSummarizer{summary: "Summary A"}
	o := newTestOrchestrator(t, store, extractor, summarizer, nil)

	_, err := o.Submit(context.Background(), submitReq())

	require.Error(t, err)
	assert.Equal(t, 0, extractor.callCount(), "no background work without a durable record")
}

func TestOrchestrator_ConcurrentSubmissions(t *testing.T) {
	store := newFakeStore()
	extractor := &fakeExtractor{text: "Hello world"}
	summarizer := &fakeSummarizer{summary: "Summary A"}
	o := newTestOrchestrator(t, store, extractor, summarizer, nil)

	ids := make([]string, 20)
	for i := range ids {
		id, err := o.Submit(context.Background(), submitReq())
		require.NoError(t, err)
		ids[i] = id
	}

	for _, id := range ids {
		rec := waitForTerminal(t, store, id)
		assert.Equal(t, domain.StatusCompleted, rec.Status)
		assert.Equal(t, "Summary A", rec.SummaryText)
	}
}

func TestOrchestrator_Get_NotFound(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(t, store, &fakeExtractor{}, &fakeSummarizer{}, nil)

	_, err := o.Get(context.Background(), "3b451d13-1f4e-4f3c-9f5e-24cbcb7c71f0")

	assert.ErrorIs(t, err, domain.ErrSummaryNotFound)
}
