package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/vuhoang/marketplace-backend/pkg/config"
	"github.com/vuhoang/marketplace-backend/pkg/db/models"
	"github.com/vuhoang/marketplace-backend/pkg/enums"
	"github.com/vuhoang/marketplace-backend/pkg/logger"
)

type stubOutboxRepo struct {
	events    []models.OutboxEvent
	fetchErr  error
	published []uuid.UUID
	failed    map[uuid.UUID]error
}

func (s *stubOutboxRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) > limit {
		return s.events[:limit], nil
	}
	return s.events, nil
}

func (s *stubOutboxRepo) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubOutboxRepo) MarkFailed(id uuid.UUID, cause error) error {
	if s.failed == nil {
		s.failed = make(map[uuid.UUID]error)
	}
	s.failed[id] = cause
	return nil
}

type stubPublisher struct {
	messages []*gcppubsub.Message
	errFor   map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	s.messages = append(s.messages, msg)
	if err, ok := s.errFor[msg.Attributes["aggregate_id"]]; ok {
		return stubResult{err: err}
	}
	return stubResult{id: "server-id"}
}

type stubResult struct {
	id  string
	err error
}

func (r stubResult) Get(ctx context.Context) (string, error) {
	return r.id, r.err
}

func outboxEvent(eventType enums.OutboxEventType) models.OutboxEvent {
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":1}`),
		CreatedAt:     time.Now(),
	}
}

func newTestService(t *testing.T, repo *stubOutboxRepo, pub *stubPublisher) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Config:     &config.Config{},
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Repository: repo,
		Publisher:  pub,
	})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	first := outboxEvent(enums.EventOrderCreated)
	second := outboxEvent(enums.EventOrderPaid)
	repo := &stubOutboxRepo{events: []models.OutboxEvent{first, second}}
	pub := &stubPublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if processed != 2 {
		t.Fatalf("expected 2 processed got %d", processed)
	}
	if len(repo.published) != 2 || repo.published[0] != first.ID || repo.published[1] != second.ID {
		t.Fatalf("unexpected published ids %v", repo.published)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("unexpected failures %v", repo.failed)
	}
	if len(pub.messages) != 2 {
		t.Fatalf("expected 2 messages got %d", len(pub.messages))
	}
	msg := pub.messages[0]
	if string(msg.Data) != `{"version":1}` {
		t.Fatalf("payload must pass through verbatim, got %s", msg.Data)
	}
	if msg.Attributes["event_type"] != string(enums.EventOrderCreated) {
		t.Fatalf("unexpected event_type attribute %q", msg.Attributes["event_type"])
	}
	if msg.Attributes["aggregate_id"] != first.AggregateID.String() {
		t.Fatal("aggregate_id attribute mismatch")
	}
}

func TestProcessBatchMarksFailuresAndContinues(t *testing.T) {
	broken := outboxEvent(enums.EventOrderCreated)
	healthy := outboxEvent(enums.EventOrderPaid)
	repo := &stubOutboxRepo{events: []models.OutboxEvent{broken, healthy}}
	pub := &stubPublisher{errFor: map[string]error{
		broken.AggregateID.String(): errors.New("topic unavailable"),
	}}
	svc := newTestService(t, repo, pub)

	processed, err := svc.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if processed != 2 {
		t.Fatalf("expected 2 processed got %d", processed)
	}
	if len(repo.failed) != 1 || repo.failed[broken.ID] == nil {
		t.Fatalf("broken event not marked failed: %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != healthy.ID {
		t.Fatalf("healthy event not published: %v", repo.published)
	}
}

func TestProcessBatchPropagatesFetchError(t *testing.T) {
	repo := &stubOutboxRepo{fetchErr: errors.New("db down")}
	svc := newTestService(t, repo, &stubPublisher{})

	if _, err := svc.ProcessBatch(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	repo := &stubOutboxRepo{}
	pub := &stubPublisher{}
	svc := newTestService(t, repo, pub)

	processed, err := svc.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if processed != 0 || len(pub.messages) != 0 {
		t.Fatal("empty queue must publish nothing")
	}
}

func TestNewServiceDefaults(t *testing.T) {
	svc := newTestService(t, &stubOutboxRepo{}, &stubPublisher{})
	if svc.batchSize != defaultBatchSize {
		t.Fatalf("unexpected batch size %d", svc.batchSize)
	}
	if svc.maxAttempts != defaultMaxAttempts {
		t.Fatalf("unexpected max attempts %d", svc.maxAttempts)
	}
	if svc.pollInterval != time.Duration(defaultPollMs)*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", svc.pollInterval)
	}
}

func TestNextBackoff(t *testing.T) {
	base := 500 * time.Millisecond
	if got := nextBackoff(0, base, maxBackoff); got != base*2 {
		t.Fatalf("zero current must restart from base, got %s", got)
	}
	if got := nextBackoff(base, base, maxBackoff); got != time.Second {
		t.Fatalf("backoff must double, got %s", got)
	}
	if got := nextBackoff(maxBackoff, base, maxBackoff); got != maxBackoff {
		t.Fatalf("backoff must cap at %s, got %s", maxBackoff, got)
	}
}
