package repository

import (
	"context"
	"sync"
	"time"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
)

// MemoryRepository is the in-memory storage gateway. It mirrors the GORM
// backend's semantics exactly: interview_id uniqueness on session creation
// and version-checked session saves. Values are deep-copied on the way in
// and out so callers never share state with the store.
type MemoryRepository struct {
	mu                 sync.RWMutex
	users              map[string]*models.User
	usersByEmail       map[string]string
	interviews         map[string]*models.Interview
	sessions           map[string]*models.SessionRecording
	sessionByInterview map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:              make(map[string]*models.User),
		usersByEmail:       make(map[string]string),
		interviews:         make(map[string]*models.Interview),
		sessions:           make(map[string]*models.SessionRecording),
		sessionByInterview: make(map[string]string),
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return apperrors.Conflict("user with email %s already exists", user.Email)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	r.users[user.ID] = &clone
	r.usersByEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	clone := *user
	return &clone, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.usersByEmail[email]
	if !ok {
		return nil, nil
	}
	clone := *r.users[id]
	return &clone, nil
}

func (r *MemoryRepository) CreateInterview(ctx context.Context, interview *models.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.interviews[interview.ID]; exists {
		return apperrors.Conflict("interview %s already exists", interview.ID)
	}
	now := time.Now()
	interview.CreatedAt = now
	interview.UpdatedAt = now
	r.interviews[interview.ID] = cloneInterview(interview)
	return nil
}

func (r *MemoryRepository) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	interview, ok := r.interviews[id]
	if !ok {
		return nil, nil
	}
	return cloneInterview(interview), nil
}

func (r *MemoryRepository) GetInterviewsByOwner(ctx context.Context, ownerID string) ([]models.Interview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var interviews []models.Interview
	for _, interview := range r.interviews {
		if interview.OwnerID == ownerID {
			interviews = append(interviews, *cloneInterview(interview))
		}
	}
	return interviews, nil
}

func (r *MemoryRepository) SaveInterview(ctx context.Context, interview *models.Interview) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.interviews[interview.ID]; !exists {
		return apperrors.NotFound("interview %s not found", interview.ID)
	}
	interview.UpdatedAt = time.Now()
	r.interviews[interview.ID] = cloneInterview(interview)
	return nil
}

func (r *MemoryRepository) CreateSession(ctx context.Context, session *models.SessionRecording) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existingID, exists := r.sessionByInterview[session.InterviewID]; exists {
		return apperrors.Conflict("session %s already exists for interview %s", existingID, session.InterviewID)
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.Version == 0 {
		session.Version = 1
	}
	r.sessions[session.ID] = cloneSession(session)
	r.sessionByInterview[session.InterviewID] = session.ID
	return nil
}

func (r *MemoryRepository) GetSession(ctx context.Context, id string) (*models.SessionRecording, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (r *MemoryRepository) GetSessionByInterviewID(ctx context.Context, interviewID string) (*models.SessionRecording, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.sessionByInterview[interviewID]
	if !ok {
		return nil, nil
	}
	return cloneSession(r.sessions[id]), nil
}

func (r *MemoryRepository) SaveSession(ctx context.Context, session *models.SessionRecording) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.sessions[session.ID]
	if !ok {
		return apperrors.NotFound("session %s not found", session.ID)
	}
	if current.Version != session.Version {
		return apperrors.Conflict("session %s was modified concurrently", session.ID)
	}
	session.Version++
	session.UpdatedAt = time.Now()
	r.sessions[session.ID] = cloneSession(session)
	return nil
}

func cloneInterview(interview *models.Interview) *models.Interview {
	clone := *interview
	clone.Tags = append([]string(nil), interview.Tags...)
	clone.Questions = append([]string(nil), interview.Questions...)
	if interview.StartedAt != nil {
		t := *interview.StartedAt
		clone.StartedAt = &t
	}
	if interview.CompletedAt != nil {
		t := *interview.CompletedAt
		clone.CompletedAt = &t
	}
	clone.Owner = nil
	clone.Session = nil
	return &clone
}

func cloneSession(session *models.SessionRecording) *models.SessionRecording {
	clone := *session
	clone.Transcript = make([]models.TranscriptEntry, len(session.Transcript))
	for i, entry := range session.Transcript {
		clone.Transcript[i] = entry
		if entry.DurationMs != nil {
			d := *entry.DurationMs
			clone.Transcript[i].DurationMs = &d
		}
		if entry.Confidence != nil {
			c := *entry.Confidence
			clone.Transcript[i].Confidence = &c
		}
	}
	if session.VocalAnalysis != nil {
		va := *session.VocalAnalysis
		clone.VocalAnalysis = &va
	}
	if session.Report != nil {
		report := *session.Report
		report.Strengths = append([]string(nil), session.Report.Strengths...)
		report.Weaknesses = append([]string(nil), session.Report.Weaknesses...)
		report.Recommendations = append([]models.Recommendation(nil), session.Report.Recommendations...)
		clone.Report = &report
	}
	return &clone
}
