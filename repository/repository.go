package repository

import (
	"context"

	"github.com/mockview-ai/backend/models"
)

// Store is the storage gateway the pipeline runs against. Both backends
// (GORM over postgres/sqlite, and the in-memory fallback) satisfy identical
// semantics; no business logic branches on which one is active.
//
// Lookup methods return (nil, nil) when the record is absent. CreateSession
// returns a conflict error when a recording already exists for the interview.
// SaveSession writes the whole session document atomically and rejects a save
// whose Version is stale with a retryable conflict error.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	CreateInterview(ctx context.Context, interview *models.Interview) error
	GetInterview(ctx context.Context, id string) (*models.Interview, error)
	GetInterviewsByOwner(ctx context.Context, ownerID string) ([]models.Interview, error)
	SaveInterview(ctx context.Context, interview *models.Interview) error

	CreateSession(ctx context.Context, session *models.SessionRecording) error
	GetSession(ctx context.Context, id string) (*models.SessionRecording, error)
	GetSessionByInterviewID(ctx context.Context, interviewID string) (*models.SessionRecording, error)
	SaveSession(ctx context.Context, session *models.SessionRecording) error
}
