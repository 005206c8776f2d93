package models

import (
	"time"

	"gorm.io/gorm"
)

type Speaker string

const (
	SpeakerUser   Speaker = "user"
	SpeakerAI     Speaker = "ai"
	SpeakerSystem Speaker = "system"
)

func (s Speaker) Valid() bool {
	switch s {
	case SpeakerUser, SpeakerAI, SpeakerSystem:
		return true
	}
	return false
}

type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusCompleted SessionStatus = "completed"
)

// TranscriptEntry is one turn of dialogue. TimestampMs is assigned by the
// server at append time and never decreases across the sequence.
type TranscriptEntry struct {
	Speaker     Speaker  `json:"speaker"`
	Text        string   `json:"text"`
	TimestampMs int64    `json:"timestamp_ms"`
	DurationMs  *int64   `json:"duration_ms,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	AudioURL    string   `json:"audio_url,omitempty"`
}

type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageProcessing StageStatus = "processing"
	StageCompleted  StageStatus = "completed"
	StageFailed     StageStatus = "failed"
)

// Stage names one of the three independently tracked pipeline stages.
type Stage string

const (
	StageTranscription Stage = "transcription"
	StageAnalysis      Stage = "analysis"
	StageFeedback      Stage = "feedback"
)

func (s Stage) Valid() bool {
	switch s {
	case StageTranscription, StageAnalysis, StageFeedback:
		return true
	}
	return false
}

// StageState tracks one pipeline stage. A completed stage never regresses;
// a failed stage may be retried but keeps LastError until the retry resolves.
type StageState struct {
	Status    StageStatus `json:"status"`
	Attempts  int         `json:"attempts"`
	LastError string      `json:"last_error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ProcessingStatus holds the three independent stage trackers for a session.
type ProcessingStatus struct {
	Transcription StageState `json:"transcription"`
	Analysis      StageState `json:"analysis"`
	Feedback      StageState `json:"feedback"`
}

// NewProcessingStatus returns all three stages in pending.
func NewProcessingStatus(now time.Time) ProcessingStatus {
	initial := StageState{Status: StagePending, UpdatedAt: now}
	return ProcessingStatus{Transcription: initial, Analysis: initial, Feedback: initial}
}

// Stage returns a pointer to the tracker for the named stage, or nil for an
// unknown stage.
func (p *ProcessingStatus) Stage(stage Stage) *StageState {
	switch stage {
	case StageTranscription:
		return &p.Transcription
	case StageAnalysis:
		return &p.Analysis
	case StageFeedback:
		return &p.Feedback
	}
	return nil
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Recommendation struct {
	Area       string   `json:"area"`
	Suggestion string   `json:"suggestion"`
	Priority   Priority `json:"priority"`
}

// DetailedScores holds the five category scores, each 0-100.
type DetailedScores struct {
	Communication      float64 `json:"communication"`
	TechnicalKnowledge float64 `json:"technical_knowledge"`
	ProblemSolving     float64 `json:"problem_solving"`
	Structure          float64 `json:"structure"`
	Confidence         float64 `json:"confidence"`
}

// FeedbackReport is the structured analysis of one session. Once persisted
// it is immutable; a second generation attempt is rejected, never overwritten.
type FeedbackReport struct {
	OverallRating   int              `json:"overall_rating"` // 1-10
	Strengths       []string         `json:"strengths"`
	Weaknesses      []string         `json:"weaknesses"`
	Recommendations []Recommendation `json:"recommendations"`
	DetailedScores  DetailedScores   `json:"detailed_scores"`
	Summary         string           `json:"summary"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// VocalAnalysis is produced by an external voice analyzer and stored as-is.
type VocalAnalysis struct {
	PaceWPM         float64 `json:"pace_wpm,omitempty"`
	FillerWordCount int     `json:"filler_word_count,omitempty"`
	ClarityScore    float64 `json:"clarity_score,omitempty"`
	ToneNotes       string  `json:"tone_notes,omitempty"`
}

// SessionRecording is the runtime record of what was said during one
// interview. The transcript, processing status and feedback report persist
// as JSON columns on this row so a single save writes the whole document.
// Version implements optimistic locking: a save against a stale version is
// rejected, which serializes concurrent writers per session.
type SessionRecording struct {
	ID            string            `gorm:"type:uuid;primaryKey" json:"id"`
	InterviewID   string            `gorm:"type:uuid;not null;uniqueIndex" json:"interview_id"`
	OwnerID       string            `gorm:"type:uuid;not null;index" json:"owner_id"`
	Transcript    []TranscriptEntry `gorm:"serializer:json" json:"transcript"`
	VocalAnalysis *VocalAnalysis    `gorm:"serializer:json" json:"vocal_analysis,omitempty"`
	Report        *FeedbackReport   `gorm:"serializer:json" json:"feedback_report,omitempty"`
	Processing    ProcessingStatus  `gorm:"serializer:json" json:"processing_status"`
	SessionStatus SessionStatus     `gorm:"size:20;not null;default:'active';check:session_status IN ('active', 'completed')" json:"session_status"`
	DurationMs    int64             `json:"duration_ms"`
	Version       int64             `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt    `gorm:"index" json:"-"`
}

// LastEntry returns the most recently appended transcript entry, or nil for
// an empty transcript.
func (s *SessionRecording) LastEntry() *TranscriptEntry {
	if len(s.Transcript) == 0 {
		return nil
	}
	return &s.Transcript[len(s.Transcript)-1]
}

// HasUserEntry reports whether any transcript entry was spoken by the user.
func (s *SessionRecording) HasUserEntry() bool {
	for i := range s.Transcript {
		if s.Transcript[i].Speaker == SpeakerUser {
			return true
		}
	}
	return false
}
