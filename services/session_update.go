package services

import (
	"context"
	"log/slog"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
	"github.com/mockview-ai/backend/repository"
)

// maxSaveRetries bounds the optimistic read-modify-write loop on a session
// document. Writers that keep losing the version race past this give up with
// the conflict error.
const maxSaveRetries = 3

// updateSession re-reads the session and re-applies mutate until the
// version-checked save succeeds or the retry budget runs out. mutate may
// return a typed error to abort the loop without retrying.
func updateSession(ctx context.Context, store repository.Store, sessionID string, mutate func(*models.SessionRecording) error) (*models.SessionRecording, error) {
	var lastErr error
	for attempt := 0; attempt < maxSaveRetries; attempt++ {
		session, err := store.GetSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, apperrors.NotFound("session %s not found", sessionID)
		}

		if err := mutate(session); err != nil {
			return nil, err
		}

		if err := store.SaveSession(ctx, session); err != nil {
			if apperrors.IsKind(err, apperrors.KindConflict) {
				lastErr = err
				slog.Warn("Session save lost version race, retrying", "session_id", sessionID, "attempt", attempt+1)
				continue
			}
			return nil, err
		}
		return session, nil
	}
	return nil, lastErr
}
