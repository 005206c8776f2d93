package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
	"github.com/mockview-ai/backend/repository"
)

// newActiveSession seeds a store with an active session recording and returns
// the stored copy so tests can derive timestamps from its CreatedAt.
func newActiveSession(t *testing.T, store repository.Store, ownerID string) *models.SessionRecording {
	t.Helper()
	ctx := context.Background()
	session := &models.SessionRecording{
		ID:            uuid.New().String(),
		InterviewID:   uuid.New().String(),
		OwnerID:       ownerID,
		Transcript:    []models.TranscriptEntry{},
		Processing:    models.NewProcessingStatus(time.Now()),
		SessionStatus: models.SessionStatusActive,
		Version:       1,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}
	stored, err := store.GetSession(ctx, session.ID)
	if err != nil || stored == nil {
		t.Fatalf("get session: %v", err)
	}
	return stored
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestAppendValidation(t *testing.T) {
	store := repository.NewMemoryRepository()
	ownerID := uuid.New().String()
	session := newActiveSession(t, store, ownerID)
	svc := NewTranscriptService(store)
	ctx := context.Background()

	tests := []struct {
		name  string
		input AppendEntryInput
	}{
		{"invalid speaker", AppendEntryInput{Speaker: "narrator", Text: "hi"}},
		{"empty text", AppendEntryInput{Speaker: models.SpeakerUser, Text: "   "}},
		{"negative duration", AppendEntryInput{Speaker: models.SpeakerUser, Text: "hi", DurationMs: int64Ptr(-1)}},
		{"confidence above one", AppendEntryInput{Speaker: models.SpeakerUser, Text: "hi", Confidence: float64Ptr(1.1)}},
		{"confidence below zero", AppendEntryInput{Speaker: models.SpeakerUser, Text: "hi", Confidence: float64Ptr(-0.1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Append(ctx, session.ID, ownerID, tt.input)
			if !apperrors.IsKind(err, apperrors.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	// Validation failures must not have touched the transcript.
	stored, _ := store.GetSession(ctx, session.ID)
	if len(stored.Transcript) != 0 {
		t.Errorf("transcript has %d entries after rejected appends", len(stored.Transcript))
	}
}

func TestAppendAssignsMonotonicTimestamps(t *testing.T) {
	store := repository.NewMemoryRepository()
	ownerID := uuid.New().String()
	session := newActiveSession(t, store, ownerID)
	ctx := context.Background()

	svc := NewTranscriptService(store)
	clock := session.CreatedAt
	svc.now = func() time.Time { return clock }

	clock = session.CreatedAt.Add(2 * time.Second)
	first, err := svc.Append(ctx, session.ID, ownerID, AppendEntryInput{
		Speaker:    models.SpeakerAI,
		Text:       "Tell me about yourself.",
		DurationMs: int64Ptr(1500),
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.Entry.TimestampMs != 2000 {
		t.Errorf("timestamp = %d, expected 2000", first.Entry.TimestampMs)
	}
	if first.CumulativeDurationMs != 3500 {
		t.Errorf("cumulative duration = %d, expected 3500", first.CumulativeDurationMs)
	}

	clock = session.CreatedAt.Add(5 * time.Second)
	second, err := svc.Append(ctx, session.ID, ownerID, AppendEntryInput{
		Speaker: models.SpeakerUser,
		Text:    "I am a CS senior.",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if second.Entry.TimestampMs != 5000 {
		t.Errorf("timestamp = %d, expected 5000", second.Entry.TimestampMs)
	}
	if second.EntryCount != 2 {
		t.Errorf("entry count = %d, expected 2", second.EntryCount)
	}

	// A clock that moves backwards clamps to the last entry's timestamp.
	clock = session.CreatedAt.Add(1 * time.Second)
	third, err := svc.Append(ctx, session.ID, ownerID, AppendEntryInput{
		Speaker: models.SpeakerAI,
		Text:    "Go on.",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if third.Entry.TimestampMs != 5000 {
		t.Errorf("timestamp = %d, expected clamp to 5000", third.Entry.TimestampMs)
	}

	stored, _ := store.GetSession(ctx, session.ID)
	for i := 1; i < len(stored.Transcript); i++ {
		if stored.Transcript[i].TimestampMs < stored.Transcript[i-1].TimestampMs {
			t.Errorf("transcript timestamps decrease at entry %d", i)
		}
	}
}

func TestAppendGuards(t *testing.T) {
	store := repository.NewMemoryRepository()
	ownerID := uuid.New().String()
	session := newActiveSession(t, store, ownerID)
	svc := NewTranscriptService(store)
	ctx := context.Background()

	entry := AppendEntryInput{Speaker: models.SpeakerUser, Text: "hello"}

	if _, err := svc.Append(ctx, "missing-session", ownerID, entry); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := svc.Append(ctx, session.ID, uuid.New().String(), entry); !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	closed, _ := updateSession(ctx, store, session.ID, func(rec *models.SessionRecording) error {
		rec.SessionStatus = models.SessionStatusCompleted
		return nil
	})
	if closed.SessionStatus != models.SessionStatusCompleted {
		t.Fatalf("failed to close session")
	}
	if _, err := svc.Append(ctx, session.ID, ownerID, entry); !apperrors.IsKind(err, apperrors.KindInvalidState) {
		t.Errorf("expected invalid state appending to completed session, got %v", err)
	}
}

func TestGetSessionLookups(t *testing.T) {
	store := repository.NewMemoryRepository()
	ownerID := uuid.New().String()
	session := newActiveSession(t, store, ownerID)
	svc := NewTranscriptService(store)
	ctx := context.Background()

	got, err := svc.GetSession(ctx, session.ID, ownerID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.ID != session.ID {
		t.Errorf("got session %s, expected %s", got.ID, session.ID)
	}

	byInterview, err := svc.GetSessionByInterview(ctx, session.InterviewID, ownerID)
	if err != nil {
		t.Fatalf("get by interview: %v", err)
	}
	if byInterview.ID != session.ID {
		t.Errorf("got session %s, expected %s", byInterview.ID, session.ID)
	}

	if _, err := svc.GetSession(ctx, session.ID, uuid.New().String()); !apperrors.IsKind(err, apperrors.KindForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
	if _, err := svc.GetSessionByInterview(ctx, "no-such-interview", ownerID); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
