package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
)

func newTestInterview(ownerID string) *models.Interview {
	return &models.Interview{
		ID:                     uuid.New().String(),
		OwnerID:                ownerID,
		Type:                   models.InterviewTypeBehavioral,
		Difficulty:             models.DifficultyIntermediate,
		PlannedDurationMinutes: 30,
		SessionToken:           "mvtok_" + uuid.New().String(),
		Status:                 models.InterviewStatusPending,
	}
}

func newTestSession(interviewID, ownerID string) *models.SessionRecording {
	return &models.SessionRecording{
		ID:            uuid.New().String(),
		InterviewID:   interviewID,
		OwnerID:       ownerID,
		Transcript:    []models.TranscriptEntry{},
		SessionStatus: models.SessionStatusActive,
		Version:       1,
	}
}

func TestMemoryInterviewRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	interview := newTestInterview("owner-1")
	if err := repo.CreateInterview(ctx, interview); err != nil {
		t.Fatalf("create interview: %v", err)
	}

	got, err := repo.GetInterview(ctx, interview.ID)
	if err != nil {
		t.Fatalf("get interview: %v", err)
	}
	if got == nil {
		t.Fatalf("expected interview, got nil")
	}
	if got.SessionToken != interview.SessionToken {
		t.Errorf("session token = %q, expected %q", got.SessionToken, interview.SessionToken)
	}

	missing, err := repo.GetInterview(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("get missing interview: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing interview, got %+v", missing)
	}
}

func TestMemoryCreateSessionExclusive(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	interview := newTestInterview("owner-1")
	if err := repo.CreateInterview(ctx, interview); err != nil {
		t.Fatalf("create interview: %v", err)
	}

	first := newTestSession(interview.ID, interview.OwnerID)
	if err := repo.CreateSession(ctx, first); err != nil {
		t.Fatalf("create first session: %v", err)
	}

	second := newTestSession(interview.ID, interview.OwnerID)
	err := repo.CreateSession(ctx, second)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for duplicate session, got %v", err)
	}

	// The stored session must be the first one, untouched
	stored, err := repo.GetSessionByInterviewID(ctx, interview.ID)
	if err != nil {
		t.Fatalf("get session by interview: %v", err)
	}
	if stored.ID != first.ID {
		t.Errorf("stored session = %s, expected %s", stored.ID, first.ID)
	}
}

func TestMemorySaveSessionVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	session := newTestSession(uuid.New().String(), "owner-1")
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	// Two readers take the same version
	a, _ := repo.GetSession(ctx, session.ID)
	b, _ := repo.GetSession(ctx, session.ID)

	a.Transcript = append(a.Transcript, models.TranscriptEntry{Speaker: models.SpeakerUser, Text: "first writer"})
	if err := repo.SaveSession(ctx, a); err != nil {
		t.Fatalf("first save: %v", err)
	}

	b.Transcript = append(b.Transcript, models.TranscriptEntry{Speaker: models.SpeakerUser, Text: "stale writer"})
	err := repo.SaveSession(ctx, b)
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for stale save, got %v", err)
	}

	// The winning write is intact
	stored, _ := repo.GetSession(ctx, session.ID)
	if len(stored.Transcript) != 1 || stored.Transcript[0].Text != "first writer" {
		t.Errorf("unexpected transcript after stale save: %+v", stored.Transcript)
	}
}

func TestMemoryClonesIsolateCallers(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	session := newTestSession(uuid.New().String(), "owner-1")
	session.Transcript = []models.TranscriptEntry{{Speaker: models.SpeakerUser, Text: "original"}}
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	got, _ := repo.GetSession(ctx, session.ID)
	got.Transcript[0].Text = "mutated by caller"

	fresh, _ := repo.GetSession(ctx, session.ID)
	if fresh.Transcript[0].Text != "original" {
		t.Errorf("store state leaked to caller mutation: %q", fresh.Transcript[0].Text)
	}
}

func TestMemoryUserByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	user := &models.User{ID: uuid.New().String(), Email: "candidate@example.com", FullName: "Test Candidate"}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	dup := &models.User{ID: uuid.New().String(), Email: "candidate@example.com"}
	if err := repo.CreateUser(ctx, dup); !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, "candidate@example.com")
	if err != nil {
		t.Fatalf("get user by email: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Errorf("unexpected user lookup result: %+v", got)
	}
}
