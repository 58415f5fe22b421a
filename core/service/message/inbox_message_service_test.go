package message

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	messages map[uuid.UUID]*domain.Message
	createN  int
}

func (f *fakeRepo) GetMessage(_ context.Context, id uuid.UUID) (*domain.Message, error) {
	return f.messages[id], nil
}

func (f *fakeRepo) CreateMessage(_ context.Context, msg *domain.Message) error {
	f.createN++
	// idempotent per (user, platform, platform message id): a duplicate
	// resolves to the id of the row already stored
	for _, existing := range f.messages {
		if existing.UserID == msg.UserID && existing.Platform == msg.Platform &&
			existing.PlatformMessageID == msg.PlatformMessageID {
			msg.ID = existing.ID
			return nil
		}
	}
	f.messages[msg.ID] = msg
	return nil
}

func (f *fakeRepo) GetThread(_ context.Context, _ uuid.UUID, _ string) ([]*domain.Message, error) {
	return nil, nil
}


type fakeProducer struct {
	jobs []*out.AnalyzeJob
	err  error
}

func (f *fakeProducer) PublishAnalyze(_ context.Context, job *out.AnalyzeJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func validRequest() *IngestRequest {
	return &IngestRequest{
		Platform:          domain.PlatformMail,
		PlatformMessageID: "pm-1",
		Sender:            "alice@example.com",
		Subject:           "Hello",
		Content:           "How are you?",
		Timestamp:         time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestIngestStoresAndQueues(t *testing.T) {
	repo := &fakeRepo{messages: map[uuid.UUID]*domain.Message{}}
	producer := &fakeProducer{}
	svc := NewService(repo, producer)
	userID := uuid.New()

	msg, err := svc.Ingest(context.Background(), userID, validRequest())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if repo.createN != 1 {
		t.Errorf("createN = %d", repo.createN)
	}
	if len(producer.jobs) != 1 {
		t.Fatalf("jobs = %d, want 1", len(producer.jobs))
	}
	job := producer.jobs[0]
	if job.MessageID != msg.ID || job.UserID != userID || job.Reanalyze {
		t.Errorf("job = %+v", job)
	}
}

func TestIngestValidation(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*IngestRequest)
		wantCode string
	}{
		{"bad platform", func(r *IngestRequest) { r.Platform = "sms" }, apperr.CodeInvalidInput},
		{"no platform message id", func(r *IngestRequest) { r.PlatformMessageID = " " }, apperr.CodeMissingField},
		{"no sender", func(r *IngestRequest) { r.Sender = "" }, apperr.CodeMissingField},
		{"no content or subject", func(r *IngestRequest) { r.Content = ""; r.Subject = "" }, apperr.CodeMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{messages: map[uuid.UUID]*domain.Message{}}
			svc := NewService(repo, &fakeProducer{})

			req := validRequest()
			tt.mutate(req)

			_, err := svc.Ingest(context.Background(), uuid.New(), req)
			if !apperr.HasCode(err, tt.wantCode) {
				t.Errorf("err = %v, want code %s", err, tt.wantCode)
			}
			if repo.createN != 0 {
				t.Error("invalid message must not be stored")
			}
		})
	}
}

func TestIngestQueueFailure(t *testing.T) {
	repo := &fakeRepo{messages: map[uuid.UUID]*domain.Message{}}
	svc := NewService(repo, &fakeProducer{err: errors.New("stream down")})

	_, err := svc.Ingest(context.Background(), uuid.New(), validRequest())
	if !apperr.HasCode(err, apperr.CodeExternalError) {
		t.Errorf("err = %v, want external error", err)
	}
	// the stored message stays so a later retry can re-queue it
	if repo.createN != 1 {
		t.Errorf("createN = %d, want 1", repo.createN)
	}
}

func TestQueueReanalysis(t *testing.T) {
	repo := &fakeRepo{messages: map[uuid.UUID]*domain.Message{}}
	producer := &fakeProducer{}
	svc := NewService(repo, producer)
	userID := uuid.New()

	msg := &domain.Message{ID: uuid.New(), UserID: userID}
	repo.messages[msg.ID] = msg

	if err := svc.QueueReanalysis(context.Background(), msg.ID, userID); err != nil {
		t.Fatalf("QueueReanalysis: %v", err)
	}
	if len(producer.jobs) != 1 || !producer.jobs[0].Reanalyze {
		t.Errorf("jobs = %+v", producer.jobs)
	}

	if err := svc.QueueReanalysis(context.Background(), msg.ID, uuid.New()); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("foreign user: err = %v, want not found", err)
	}
}

func TestIngestDuplicateResolvesCanonicalID(t *testing.T) {
	repo := &fakeRepo{messages: map[uuid.UUID]*domain.Message{}}
	producer := &fakeProducer{}
	svc := NewService(repo, producer)
	userID := uuid.New()

	first, err := svc.Ingest(context.Background(), userID, validRequest())
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	second, err := svc.Ingest(context.Background(), userID, validRequest())
	if err != nil {
		t.Fatalf("duplicate Ingest: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("duplicate ingestion returned id %s, want canonical %s", second.ID, first.ID)
	}
	if len(repo.messages) != 1 {
		t.Errorf("stored %d messages, want 1", len(repo.messages))
	}
	if len(producer.jobs) != 2 {
		t.Fatalf("published %d jobs, want 2", len(producer.jobs))
	}
	for i, job := range producer.jobs {
		if job.MessageID != first.ID {
			t.Errorf("job %d references %s, want stored message %s", i, job.MessageID, first.ID)
		}
	}
}
