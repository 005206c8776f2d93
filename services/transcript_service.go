package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
	"github.com/mockview-ai/backend/repository"
)

// TranscriptService owns the append-only, time-ordered transcript of a
// session recording. Timestamps are assigned from the server clock relative
// to the recording's creation, never taken from the client, so out-of-order
// or spoofed submissions cannot break the ordering invariant.
type TranscriptService struct {
	store repository.Store
	now   func() time.Time
}

func NewTranscriptService(store repository.Store) *TranscriptService {
	return &TranscriptService{store: store, now: time.Now}
}

type AppendEntryInput struct {
	Speaker    models.Speaker
	Text       string
	DurationMs *int64
	Confidence *float64
	AudioURL   string
}

type AppendResult struct {
	Entry                models.TranscriptEntry `json:"entry"`
	EntryCount           int                    `json:"entry_count"`
	CumulativeDurationMs int64                  `json:"cumulative_duration_ms"`
}

// Append validates the entry, assigns a monotonic timestamp and appends it to
// the session's transcript. The save retries on version conflicts so
// concurrent appends serialize instead of losing updates.
func (s *TranscriptService) Append(ctx context.Context, sessionID, requesterID string, input AppendEntryInput) (*AppendResult, error) {
	if !input.Speaker.Valid() {
		return nil, apperrors.Validation("invalid speaker %q", input.Speaker)
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, apperrors.Validation("transcript text must not be empty")
	}
	if input.DurationMs != nil && *input.DurationMs < 0 {
		return nil, apperrors.Validation("duration must not be negative")
	}
	if input.Confidence != nil && (*input.Confidence < 0 || *input.Confidence > 1) {
		return nil, apperrors.Validation("confidence must be between 0 and 1")
	}

	var result AppendResult
	_, err := updateSession(ctx, s.store, sessionID, func(rec *models.SessionRecording) error {
		if err := assertOwnership(rec.OwnerID, requesterID); err != nil {
			return err
		}
		if rec.SessionStatus != models.SessionStatusActive {
			return apperrors.InvalidState("session is %s, transcript entries can only be appended to active sessions", rec.SessionStatus)
		}

		timestampMs := s.now().Sub(rec.CreatedAt).Milliseconds()
		if last := rec.LastEntry(); last != nil && timestampMs < last.TimestampMs {
			// Clock anomalies must not break the non-decreasing invariant.
			timestampMs = last.TimestampMs
		}

		entry := models.TranscriptEntry{
			Speaker:     input.Speaker,
			Text:        input.Text,
			TimestampMs: timestampMs,
			DurationMs:  input.DurationMs,
			Confidence:  input.Confidence,
			AudioURL:    input.AudioURL,
		}
		rec.Transcript = append(rec.Transcript, entry)

		var entryDuration int64
		if input.DurationMs != nil {
			entryDuration = *input.DurationMs
		}
		rec.DurationMs = timestampMs + entryDuration

		result = AppendResult{
			Entry:                entry,
			EntryCount:           len(rec.Transcript),
			CumulativeDurationMs: rec.DurationMs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Transcript entry appended",
		"session_id", sessionID,
		"speaker", input.Speaker,
		"entry_count", result.EntryCount,
		"timestamp_ms", result.Entry.TimestampMs)
	return &result, nil
}

// GetSessionByInterview resolves a session recording through its interview,
// guarded by ownership.
func (s *TranscriptService) GetSessionByInterview(ctx context.Context, interviewID, requesterID string) (*models.SessionRecording, error) {
	session, err := s.store.GetSessionByInterviewID(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound("no session recording exists for interview %s", interviewID)
	}
	if err := assertOwnership(session.OwnerID, requesterID); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession returns a session recording by its own ID, guarded by ownership.
func (s *TranscriptService) GetSession(ctx context.Context, sessionID, requesterID string) (*models.SessionRecording, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperrors.NotFound("session %s not found", sessionID)
	}
	if err := assertOwnership(session.OwnerID, requesterID); err != nil {
		return nil, err
	}
	return session, nil
}
