package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
)

type GORMRepository struct {
	db *gorm.DB
}

func NewGORMRepository(db *gorm.DB) *GORMRepository {
	return &GORMRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GORMRepository) AutoMigrate() error {
	return r.db.AutoMigrate(
		&models.User{},
		&models.Interview{},
		&models.SessionRecording{},
	)
}

// DB exposes the underlying GORM handle for health checks.
func (r *GORMRepository) DB() *gorm.DB {
	return r.db
}

// User operations
func (r *GORMRepository) CreateUser(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("user with email %s already exists", user.Email)
		}
		slog.Error("Failed to create user", "error", err)
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to create user")
	}
	slog.Info("User created", "user_id", user.ID, "email", user.Email)
	return nil
}

func (r *GORMRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get user")
	}
	return &user, nil
}

func (r *GORMRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by email", "error", err, "email", email)
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get user")
	}
	return &user, nil
}

// Interview operations
func (r *GORMRepository) CreateInterview(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Create(interview).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("interview %s already exists", interview.ID)
		}
		slog.Error("Failed to create interview", "error", err)
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to create interview")
	}
	slog.Info("Interview created", "interview_id", interview.ID, "owner_id", interview.OwnerID)
	return nil
}

func (r *GORMRepository) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&interview).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get interview", "error", err, "interview_id", id)
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get interview")
	}
	return &interview, nil
}

func (r *GORMRepository) GetInterviewsByOwner(ctx context.Context, ownerID string) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&interviews).Error
	if err != nil {
		slog.Error("Failed to get interviews", "error", err, "owner_id", ownerID)
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get interviews")
	}
	return interviews, nil
}

func (r *GORMRepository) SaveInterview(ctx context.Context, interview *models.Interview) error {
	if err := r.db.WithContext(ctx).Save(interview).Error; err != nil {
		slog.Error("Failed to save interview", "error", err, "interview_id", interview.ID)
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to save interview")
	}
	return nil
}

// Session operations

// CreateSession enforces the one-recording-per-interview invariant. The
// duplicate check runs inside a transaction with the unique index on
// interview_id backstopping concurrent creators.
func (r *GORMRepository) CreateSession(ctx context.Context, session *models.SessionRecording) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.SessionRecording
		err := tx.Where("interview_id = ?", session.InterviewID).First(&existing).Error
		if err == nil {
			return apperrors.Conflict("session %s already exists for interview %s", existing.ID, session.InterviewID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Wrap(apperrors.KindInternal, err, "failed to check existing session")
		}
		if err := tx.Create(session).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("session already exists for interview %s", session.InterviewID)
			}
			return apperrors.Wrap(apperrors.KindInternal, err, "failed to create session")
		}
		return nil
	})
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindConflict) {
			return err
		}
		slog.Error("Failed to create session recording", "error", err, "interview_id", session.InterviewID)
		return err
	}
	slog.Info("Session recording created", "session_id", session.ID, "interview_id", session.InterviewID)
	return nil
}

func (r *GORMRepository) GetSession(ctx context.Context, id string) (*models.SessionRecording, error) {
	var session models.SessionRecording
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get session recording", "error", err, "session_id", id)
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get session")
	}
	return &session, nil
}

func (r *GORMRepository) GetSessionByInterviewID(ctx context.Context, interviewID string) (*models.SessionRecording, error) {
	var session models.SessionRecording
	if err := r.db.WithContext(ctx).Where("interview_id = ?", interviewID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get session recording by interview", "error", err, "interview_id", interviewID)
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get session")
	}
	return &session, nil
}

// SaveSession writes the whole session document in one statement, guarded by
// the version column. A zero rows-affected result means the caller read a
// stale version; the conflict is retryable by re-reading and re-applying.
func (r *GORMRepository) SaveSession(ctx context.Context, session *models.SessionRecording) error {
	next := *session
	next.Version = session.Version + 1
	next.UpdatedAt = time.Now()

	res := r.db.WithContext(ctx).
		Model(&models.SessionRecording{}).
		Where("id = ? AND version = ?", session.ID, session.Version).
		Select("*").
		Omit("id", "created_at", "deleted_at").
		Updates(&next)
	if res.Error != nil {
		slog.Error("Failed to save session recording", "error", res.Error, "session_id", session.ID)
		return apperrors.Wrap(apperrors.KindInternal, res.Error, "failed to save session")
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict("session %s was modified concurrently", session.ID)
	}

	session.Version = next.Version
	session.UpdatedAt = next.UpdatedAt
	return nil
}
