package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
)

func newSQLiteRepo(t *testing.T) *GORMRepository {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mockview.db")
	db, err := OpenGORM("sqlite", path, OpenOptions{LogLevel: "silent"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	repo := NewGORMRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repo
}

func TestOpenGORMInvalidDriver(t *testing.T) {
	if _, err := OpenGORM("oracle", "x", OpenOptions{}); err == nil {
		t.Fatalf("expected invalid driver error")
	}
}

func TestGORMInterviewRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	interview := newTestInterview("owner-1")
	interview.Tags = []string{"leadership", "conflict"}
	interview.Questions = []string{"Tell me about a project you led."}
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
	if len(got.Tags) != 2 || got.Tags[1] != "conflict" {
		t.Errorf("tags did not round-trip: %+v", got.Tags)
	}
	if len(got.Questions) != 1 {
		t.Errorf("questions did not round-trip: %+v", got.Questions)
	}

	got.Status = models.InterviewStatusActive
	if err := repo.SaveInterview(ctx, got); err != nil {
		t.Fatalf("save interview: %v", err)
	}
	reloaded, _ := repo.GetInterview(ctx, interview.ID)
	if reloaded.Status != models.InterviewStatusActive {
		t.Errorf("status = %s, expected active", reloaded.Status)
	}
}

func TestGORMSessionTokenUnique(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	first := newTestInterview("owner-1")
	if err := repo.CreateInterview(ctx, first); err != nil {
		t.Fatalf("create first interview: %v", err)
	}

	second := newTestInterview("owner-1")
	second.SessionToken = first.SessionToken
	if err := repo.CreateInterview(ctx, second); !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for duplicate session token, got %v", err)
	}
}

func TestGORMCreateSessionExclusive(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	interview := newTestInterview("owner-1")
	if err := repo.CreateInterview(ctx, interview); err != nil {
		t.Fatalf("create interview: %v", err)
	}

	first := newTestSession(interview.ID, interview.OwnerID)
	if err := repo.CreateSession(ctx, first); err != nil {
		t.Fatalf("create first session: %v", err)
	}

	second := newTestSession(interview.ID, interview.OwnerID)
	if err := repo.CreateSession(ctx, second); !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for duplicate session, got %v", err)
	}

	stored, err := repo.GetSessionByInterviewID(ctx, interview.ID)
	if err != nil {
		t.Fatalf("get session by interview: %v", err)
	}
	if stored.ID != first.ID {
		t.Errorf("stored session = %s, expected %s", stored.ID, first.ID)
	}
}

func TestGORMSessionDocumentRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	session := newTestSession(uuid.New().String(), "owner-1")
	session.Processing = models.NewProcessingStatus(session.CreatedAt)
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	loaded, err := repo.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}

	duration := int64(4200)
	confidence := 0.93
	loaded.Transcript = append(loaded.Transcript, models.TranscriptEntry{
		Speaker:     models.SpeakerUser,
		Text:        "I led a team of five",
		TimestampMs: 1200,
		DurationMs:  &duration,
		Confidence:  &confidence,
	})
	loaded.Processing.Feedback.Status = models.StageCompleted
	loaded.Report = &models.FeedbackReport{
		OverallRating: 8,
		Strengths:     []string{"clear structure"},
		Weaknesses:    []string{"few metrics"},
		Summary:       "Strong showing overall.",
		DetailedScores: models.DetailedScores{
			Communication: 80, TechnicalKnowledge: 75, ProblemSolving: 82, Structure: 78, Confidence: 71,
		},
	}
	if err := repo.SaveSession(ctx, loaded); err != nil {
		t.Fatalf("save session: %v", err)
	}

	reloaded, err := repo.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if len(reloaded.Transcript) != 1 {
		t.Fatalf("transcript did not round-trip: %+v", reloaded.Transcript)
	}
	if reloaded.Transcript[0].DurationMs == nil || *reloaded.Transcript[0].DurationMs != 4200 {
		t.Errorf("entry duration did not round-trip")
	}
	if reloaded.Processing.Feedback.Status != models.StageCompleted {
		t.Errorf("feedback stage = %s, expected completed", reloaded.Processing.Feedback.Status)
	}
	if reloaded.Report == nil || reloaded.Report.OverallRating != 8 {
		t.Errorf("feedback report did not round-trip: %+v", reloaded.Report)
	}
	if reloaded.Version != loaded.Version {
		t.Errorf("version = %d, expected %d", reloaded.Version, loaded.Version)
	}
}

func TestGORMSaveSessionVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	session := newTestSession(uuid.New().String(), "owner-1")
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	a, _ := repo.GetSession(ctx, session.ID)
	b, _ := repo.GetSession(ctx, session.ID)

	a.DurationMs = 1000
	if err := repo.SaveSession(ctx, a); err != nil {
		t.Fatalf("first save: %v", err)
	}

	b.DurationMs = 2000
	if err := repo.SaveSession(ctx, b); !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for stale save, got %v", err)
	}

	stored, _ := repo.GetSession(ctx, session.ID)
	if stored.DurationMs != 1000 {
		t.Errorf("duration = %d, expected the winning write 1000", stored.DurationMs)
	}
}
