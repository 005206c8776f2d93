package models

import (
	"time"

	"gorm.io/gorm"
)

type InterviewType string

const (
	InterviewTypeBehavioral InterviewType = "behavioral"
	InterviewTypeTechnical  InterviewType = "technical"
	InterviewTypeCaseStudy  InterviewType = "case-study"
	InterviewTypeGeneral    InterviewType = "general"
)

func (t InterviewType) Valid() bool {
	switch t {
	case InterviewTypeBehavioral, InterviewTypeTechnical, InterviewTypeCaseStudy, InterviewTypeGeneral:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type InterviewStatus string

const (
	InterviewStatusPending   InterviewStatus = "pending"
	InterviewStatusActive    InterviewStatus = "active"
	InterviewStatusCompleted InterviewStatus = "completed"
	InterviewStatusCancelled InterviewStatus = "cancelled"
)

// Interview represents one planned mock-interview session. Rows are never
// deleted by the pipeline, only moved to a terminal status.
type Interview struct {
	ID                     string          `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID                string          `gorm:"type:uuid;not null;index" json:"owner_id"`
	Type                   InterviewType   `gorm:"size:50;not null;check:type IN ('behavioral', 'technical', 'case-study', 'general')" json:"type"`
	Difficulty             Difficulty      `gorm:"size:50;not null;check:difficulty IN ('beginner', 'intermediate', 'advanced')" json:"difficulty"`
	PlannedDurationMinutes int             `gorm:"not null" json:"planned_duration_minutes"`
	SessionToken           string          `gorm:"size:100;uniqueIndex;not null" json:"session_token"` // immutable after creation
	Status                 InterviewStatus `gorm:"size:20;not null;default:'pending';check:status IN ('pending', 'active', 'completed', 'cancelled')" json:"status"`
	CustomPrompt           string          `gorm:"type:text" json:"custom_prompt,omitempty"`
	Tags                   []string        `gorm:"serializer:json" json:"tags,omitempty"`
	Questions              []string        `gorm:"serializer:json" json:"questions,omitempty"`
	StartedAt              *time.Time      `json:"started_at,omitempty"`
	CompletedAt            *time.Time      `json:"completed_at,omitempty"`
	ActualDurationSeconds  int             `json:"actual_duration_seconds"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
	DeletedAt              gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Owner   *User             `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Session *SessionRecording `gorm:"foreignKey:InterviewID" json:"session,omitempty"`
}

// Terminal reports whether the interview reached a final status.
// Completed and cancelled interviews accept no further transitions.
func (i *Interview) Terminal() bool {
	return i.Status == InterviewStatusCompleted || i.Status == InterviewStatusCancelled
}
