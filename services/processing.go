package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
	"github.com/mockview-ai/backend/repository"
)

// ProcessingTracker manages the three independent pipeline stages
// (transcription, analysis, feedback) of a session recording. Each stage is
// a small state machine: pending -> processing -> completed, with failed
// reachable from pending or processing. Completed is terminal per stage.
// Failed stages may be retried through a new BeginStage, which increments the
// attempt counter while keeping the previous failure reason on record until
// the retry resolves.
type ProcessingTracker struct {
	store repository.Store
	now   func() time.Time
}

func NewProcessingTracker(store repository.Store) *ProcessingTracker {
	return &ProcessingTracker{store: store, now: time.Now}
}

// BeginStage moves a stage to processing. Beginning a completed stage is a
// conflict (the work already produced its result); beginning a stage that is
// currently processing is likewise rejected so concurrent workers cannot
// double-run it.
func (t *ProcessingTracker) BeginStage(ctx context.Context, sessionID string, stage models.Stage) (*models.SessionRecording, error) {
	return t.transition(ctx, sessionID, stage, func(state *models.StageState) error {
		switch state.Status {
		case models.StageCompleted:
			return apperrors.Conflict("%s stage is already completed", stage)
		case models.StageProcessing:
			return apperrors.Conflict("%s stage is already processing", stage)
		}
		state.Status = models.StageProcessing
		state.Attempts++
		return nil
	})
}

// CompleteStage moves a processing stage to completed and applies the stage
// result to the session document in the same atomic save. The apply callback
// may be nil for stages whose result lives elsewhere.
func (t *ProcessingTracker) CompleteStage(ctx context.Context, sessionID string, stage models.Stage, apply func(*models.SessionRecording)) (*models.SessionRecording, error) {
	return t.transition(ctx, sessionID, stage, func(state *models.StageState) error {
		if state.Status != models.StageProcessing {
			return apperrors.InvalidState("%s stage is %s, only processing stages can be completed", stage, state.Status)
		}
		state.Status = models.StageCompleted
		state.LastError = ""
		return nil
	}, apply)
}

// FailStage marks a pending or processing stage as failed, recording the
// reason. The failure is surfaced, never silently retried.
func (t *ProcessingTracker) FailStage(ctx context.Context, sessionID string, stage models.Stage, reason string) (*models.SessionRecording, error) {
	return t.transition(ctx, sessionID, stage, func(state *models.StageState) error {
		if state.Status == models.StageCompleted {
			return apperrors.InvalidState("%s stage is already completed and cannot fail", stage)
		}
		state.Status = models.StageFailed
		state.LastError = reason
		return nil
	})
}

func (t *ProcessingTracker) transition(ctx context.Context, sessionID string, stage models.Stage, step func(*models.StageState) error, apply ...func(*models.SessionRecording)) (*models.SessionRecording, error) {
	if !stage.Valid() {
		return nil, apperrors.Validation("unknown processing stage %q", stage)
	}

	session, err := updateSession(ctx, t.store, sessionID, func(rec *models.SessionRecording) error {
		state := rec.Processing.Stage(stage)
		if err := step(state); err != nil {
			return err
		}
		state.UpdatedAt = t.now()
		for _, fn := range apply {
			if fn != nil {
				fn(rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	state := session.Processing.Stage(stage)
	slog.Info("Processing stage transitioned",
		"session_id", sessionID,
		"stage", stage,
		"status", state.Status,
		"attempts", state.Attempts)
	return session, nil
}
