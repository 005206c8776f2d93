package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
	"github.com/mockview-ai/backend/repository"
)

const (
	minDurationMinutes = 5
	maxDurationMinutes = 120
	maxPromptLength    = 500
	maxTags            = 10
	maxTagLength       = 50
	sessionTokenPrefix = "mvtok_"
)

// QuestionGenerator produces interview questions for a given interview.
// The Gemini service implements it; it stays optional so the pipeline runs
// without an AI key configured.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, interview *models.Interview, count int) ([]string, error)
}

// InterviewService owns the interview lifecycle state machine:
// pending -> active -> completed | cancelled.
type InterviewService struct {
	store     repository.Store
	questions QuestionGenerator
}

func NewInterviewService(store repository.Store, questions QuestionGenerator) *InterviewService {
	return &InterviewService{store: store, questions: questions}
}

type CreateInterviewInput struct {
	OwnerID         string
	Type            models.InterviewType
	Difficulty      models.Difficulty
	DurationMinutes int
	CustomPrompt    string
	Tags            []string
}

// Create validates the request and returns a new interview in pending with a
// freshly minted session token.
func (s *InterviewService) Create(ctx context.Context, input CreateInterviewInput) (*models.Interview, error) {
	if input.OwnerID == "" {
		return nil, apperrors.Validation("owner is required")
	}
	if !input.Type.Valid() {
		return nil, apperrors.Validation("invalid interview type %q", input.Type)
	}
	if !input.Difficulty.Valid() {
		return nil, apperrors.Validation("invalid difficulty %q", input.Difficulty)
	}
	if input.DurationMinutes < minDurationMinutes || input.DurationMinutes > maxDurationMinutes {
		return nil, apperrors.Validation("duration must be between %d and %d minutes", minDurationMinutes, maxDurationMinutes)
	}
	if len(input.CustomPrompt) > maxPromptLength {
		return nil, apperrors.Validation("custom prompt must be at most %d characters", maxPromptLength)
	}
	if len(input.Tags) > maxTags {
		return nil, apperrors.Validation("at most %d tags are allowed", maxTags)
	}
	for _, tag := range input.Tags {
		if tag == "" || len(tag) > maxTagLength {
			return nil, apperrors.Validation("each tag must be 1-%d characters", maxTagLength)
		}
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to generate session token")
	}

	interview := &models.Interview{
		ID:                     uuid.New().String(),
		OwnerID:                input.OwnerID,
		Type:                   input.Type,
		Difficulty:             input.Difficulty,
		PlannedDurationMinutes: input.DurationMinutes,
		SessionToken:           token,
		Status:                 models.InterviewStatusPending,
		CustomPrompt:           input.CustomPrompt,
		Tags:                   input.Tags,
	}

	if err := s.store.CreateInterview(ctx, interview); err != nil {
		return nil, err
	}

	slog.Info("Interview created", "interview_id", interview.ID, "owner_id", interview.OwnerID, "type", interview.Type, "difficulty", interview.Difficulty)
	return interview, nil
}

// Get returns an interview after confirming the requester owns it.
func (s *InterviewService) Get(ctx context.Context, interviewID, requesterID string) (*models.Interview, error) {
	interview, err := s.load(ctx, interviewID, requesterID)
	if err != nil {
		return nil, err
	}
	return interview, nil
}

// ListByOwner returns the requester's interviews.
func (s *InterviewService) ListByOwner(ctx context.Context, requesterID string) ([]models.Interview, error) {
	return s.store.GetInterviewsByOwner(ctx, requesterID)
}

// Start transitions a pending interview to active and creates its session
// recording. The recording may already exist if a previous Start saved it but
// failed before activating the interview; that leftover is reused so the
// operation can be retried safely.
func (s *InterviewService) Start(ctx context.Context, interviewID, requesterID string) (*models.Interview, *models.SessionRecording, error) {
	interview, err := s.load(ctx, interviewID, requesterID)
	if err != nil {
		return nil, nil, err
	}
	if interview.Status != models.InterviewStatusPending {
		return nil, nil, apperrors.InvalidState("interview is %s, only pending interviews can be started", interview.Status)
	}

	now := time.Now()
	session := &models.SessionRecording{
		ID:            uuid.New().String(),
		InterviewID:   interview.ID,
		OwnerID:       interview.OwnerID,
		Transcript:    []models.TranscriptEntry{},
		Processing:    models.NewProcessingStatus(now),
		SessionStatus: models.SessionStatusActive,
		Version:       1,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		if !apperrors.IsKind(err, apperrors.KindConflict) {
			return nil, nil, err
		}
		existing, getErr := s.store.GetSessionByInterviewID(ctx, interview.ID)
		if getErr != nil {
			return nil, nil, getErr
		}
		if existing == nil {
			return nil, nil, err
		}
		session = existing
	}

	interview.Status = models.InterviewStatusActive
	interview.StartedAt = &now
	if err := s.store.SaveInterview(ctx, interview); err != nil {
		return nil, nil, err
	}

	slog.Info("Interview started", "interview_id", interview.ID, "session_id", session.ID, "owner_id", interview.OwnerID)
	return interview, session, nil
}

// Complete transitions an active interview to completed, records the actual
// duration and closes the session recording.
func (s *InterviewService) Complete(ctx context.Context, interviewID, requesterID string) (*models.Interview, error) {
	interview, err := s.load(ctx, interviewID, requesterID)
	if err != nil {
		return nil, err
	}
	if interview.Status != models.InterviewStatusActive {
		return nil, apperrors.InvalidState("interview is %s, only active interviews can be completed", interview.Status)
	}

	now := time.Now()
	interview.Status = models.InterviewStatusCompleted
	interview.CompletedAt = &now
	if interview.StartedAt != nil {
		interview.ActualDurationSeconds = int(now.Sub(*interview.StartedAt).Seconds())
	}
	if err := s.store.SaveInterview(ctx, interview); err != nil {
		return nil, err
	}

	if err := s.closeSession(ctx, interview.ID); err != nil {
		slog.Error("Failed to close session recording", "error", err, "interview_id", interview.ID)
	}

	slog.Info("Interview completed", "interview_id", interview.ID, "duration_seconds", interview.ActualDurationSeconds)
	return interview, nil
}

// Cancel moves a pending or active interview to the terminal cancelled
// status and closes the session recording if one exists.
func (s *InterviewService) Cancel(ctx context.Context, interviewID, requesterID string) (*models.Interview, error) {
	interview, err := s.load(ctx, interviewID, requesterID)
	if err != nil {
		return nil, err
	}
	if interview.Terminal() {
		return nil, apperrors.InvalidState("interview is already %s", interview.Status)
	}

	interview.Status = models.InterviewStatusCancelled
	if err := s.store.SaveInterview(ctx, interview); err != nil {
		return nil, err
	}

	if err := s.closeSession(ctx, interview.ID); err != nil {
		slog.Error("Failed to close session recording", "error", err, "interview_id", interview.ID)
	}

	slog.Info("Interview cancelled", "interview_id", interview.ID, "owner_id", interview.OwnerID)
	return interview, nil
}

// AddQuestions appends questions from the question-generation collaborator.
// Questions can be added while the interview is pending or active.
func (s *InterviewService) AddQuestions(ctx context.Context, interviewID, requesterID string, questions []string) (*models.Interview, error) {
	if len(questions) == 0 {
		return nil, apperrors.Validation("at least one question is required")
	}
	for _, q := range questions {
		if strings.TrimSpace(q) == "" {
			return nil, apperrors.Validation("questions must not be empty")
		}
	}

	interview, err := s.load(ctx, interviewID, requesterID)
	if err != nil {
		return nil, err
	}
	if interview.Terminal() {
		return nil, apperrors.InvalidState("cannot add questions to a %s interview", interview.Status)
	}

	interview.Questions = append(interview.Questions, questions...)
	if err := s.store.SaveInterview(ctx, interview); err != nil {
		return nil, err
	}

	slog.Info("Questions added to interview", "interview_id", interview.ID, "count", len(questions), "total", len(interview.Questions))
	return interview, nil
}

// GenerateQuestions asks the configured generator for questions matching the
// interview's type and difficulty, then appends them.
func (s *InterviewService) GenerateQuestions(ctx context.Context, interviewID, requesterID string, count int) (*models.Interview, error) {
	if s.questions == nil {
		return nil, apperrors.Upstream("question generation is not configured")
	}
	if count <= 0 || count > 20 {
		return nil, apperrors.Validation("question count must be between 1 and 20")
	}

	interview, err := s.load(ctx, interviewID, requesterID)
	if err != nil {
		return nil, err
	}
	if interview.Terminal() {
		return nil, apperrors.InvalidState("cannot generate questions for a %s interview", interview.Status)
	}

	questions, err := s.questions.GenerateQuestions(ctx, interview, count)
	if err != nil {
		return nil, err
	}
	return s.AddQuestions(ctx, interviewID, requesterID, questions)
}

// load fetches the interview and runs the access guard. Existence is checked
// before ownership so a missing resource always reads as NotFound.
func (s *InterviewService) load(ctx context.Context, interviewID, requesterID string) (*models.Interview, error) {
	interview, err := s.store.GetInterview(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if interview == nil {
		return nil, apperrors.NotFound("interview %s not found", interviewID)
	}
	if err := assertOwnership(interview.OwnerID, requesterID); err != nil {
		return nil, err
	}
	return interview, nil
}

func (s *InterviewService) closeSession(ctx context.Context, interviewID string) error {
	session, err := s.store.GetSessionByInterviewID(ctx, interviewID)
	if err != nil {
		return err
	}
	if session == nil || session.SessionStatus == models.SessionStatusCompleted {
		return nil
	}
	_, err = updateSession(ctx, s.store, session.ID, func(rec *models.SessionRecording) error {
		rec.SessionStatus = models.SessionStatusCompleted
		return nil
	})
	return err
}

// generateSessionToken mints a unique, prefixed token from a
// cryptographically secure random source.
func generateSessionToken() (string, error) {
	bytes := make([]byte, 24)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return sessionTokenPrefix + hex.EncodeToString(bytes), nil
}
