package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
	"github.com/mockview-ai/backend/repository"
)

// AnalysisRequest is what the analysis collaborator receives: transcript
// entries only (never audio), the interview context and optional profile
// hints about the candidate.
type AnalysisRequest struct {
	Entries   []models.TranscriptEntry
	Interview InterviewContext
	Profile   *CandidateProfile
}

type InterviewContext struct {
	Type                   models.InterviewType
	Difficulty             models.Difficulty
	PlannedDurationMinutes int
	CustomPrompt           string
	Tags                   []string
	Questions              []string
}

type CandidateProfile struct {
	FullName string
	Major    string
}

// Analyzer is the external analysis collaborator. Implementations return a
// feedback report or a typed error (rate limited, auth failed, or a generic
// upstream failure).
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*models.FeedbackReport, error)
}

// FeedbackService orchestrates feedback generation: precondition checks,
// the collaborator call under a bounded timeout, and the atomic commit of
// report plus stage status.
type FeedbackService struct {
	store    repository.Store
	tracker  *ProcessingTracker
	analyzer Analyzer
	timeout  time.Duration
	now      func() time.Time
}

func NewFeedbackService(store repository.Store, tracker *ProcessingTracker, analyzer Analyzer, timeout time.Duration) *FeedbackService {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &FeedbackService{
		store:    store,
		tracker:  tracker,
		analyzer: analyzer,
		timeout:  timeout,
		now:      time.Now,
	}
}

type FeedbackResult struct {
	Report       models.FeedbackReport `json:"report"`
	OverallScore float64               `json:"overall_score"` // overall_rating x 10, for summary display
}

// GenerateFeedback runs the feedback pipeline for one session. Preconditions
// are checked in order, each with its own failure: the session must exist,
// belong to the requester, not already have completed feedback, and contain
// at least one user turn. A collaborator failure marks the stage failed and
// surfaces a typed error; the caller retries by invoking this again, which is
// safe because a completed stage always answers with a conflict.
func (s *FeedbackService) GenerateFeedback(ctx context.Context, sessionID, requesterID string) (*FeedbackResult, error) {
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
	if session.Processing.Feedback.Status == models.StageCompleted {
		return nil, apperrors.Conflict("feedback already generated")
	}
	if !session.HasUserEntry() {
		return nil, apperrors.Validation("no user responses to analyze")
	}
	if s.analyzer == nil {
		return nil, apperrors.Upstream("analysis collaborator is not configured")
	}

	if _, err := s.tracker.BeginStage(ctx, sessionID, models.StageFeedback); err != nil {
		return nil, err
	}

	req, err := s.buildRequest(ctx, session)
	if err != nil {
		s.failStage(ctx, sessionID, err.Error())
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	report, err := s.analyzer.Analyze(callCtx, req)
	if err != nil {
		typed := typedAnalyzerError(err)
		s.failStage(ctx, sessionID, apperrors.MessageOf(typed))
		slog.Error("Analysis collaborator failed", "error", err, "session_id", sessionID)
		return nil, typed
	}

	if err := validateReport(report); err != nil {
		s.failStage(ctx, sessionID, apperrors.MessageOf(err))
		slog.Error("Analysis collaborator returned a non-conforming report", "error", err, "session_id", sessionID)
		return nil, err
	}
	report.GeneratedAt = s.now()

	if _, err := s.tracker.CompleteStage(ctx, sessionID, models.StageFeedback, func(rec *models.SessionRecording) {
		rec.Report = report
	}); err != nil {
		return nil, err
	}

	slog.Info("Feedback report generated",
		"session_id", sessionID,
		"overall_rating", report.OverallRating,
		"strengths", len(report.Strengths),
		"weaknesses", len(report.Weaknesses))

	return &FeedbackResult{
		Report:       *report,
		OverallScore: float64(report.OverallRating) * 10,
	}, nil
}

func (s *FeedbackService) buildRequest(ctx context.Context, session *models.SessionRecording) (AnalysisRequest, error) {
	interview, err := s.store.GetInterview(ctx, session.InterviewID)
	if err != nil {
		return AnalysisRequest{}, err
	}
	if interview == nil {
		return AnalysisRequest{}, apperrors.Internal("interview %s referenced by session %s is missing", session.InterviewID, session.ID)
	}

	req := AnalysisRequest{
		Entries: session.Transcript,
		Interview: InterviewContext{
			Type:                   interview.Type,
			Difficulty:             interview.Difficulty,
			PlannedDurationMinutes: interview.PlannedDurationMinutes,
			CustomPrompt:           interview.CustomPrompt,
			Tags:                   interview.Tags,
			Questions:              interview.Questions,
		},
	}

	// Profile hints are optional; a lookup failure only loses the hints.
	user, err := s.store.GetUserByID(ctx, session.OwnerID)
	if err != nil {
		slog.Warn("Failed to load user profile hints", "error", err, "owner_id", session.OwnerID)
	} else if user != nil && (user.FullName != "" || user.Major != "") {
		req.Profile = &CandidateProfile{FullName: user.FullName, Major: user.Major}
	}
	return req, nil
}

func (s *FeedbackService) failStage(ctx context.Context, sessionID, reason string) {
	if _, err := s.tracker.FailStage(ctx, sessionID, models.StageFeedback, reason); err != nil {
		slog.Error("Failed to mark feedback stage failed", "error", err, "session_id", sessionID)
	}
}

// typedAnalyzerError preserves the collaborator's typed failures and folds
// everything else (including timeouts) into a generic upstream error.
func typedAnalyzerError(err error) error {
	switch apperrors.KindOf(err) {
	case apperrors.KindRateLimit, apperrors.KindUpstreamAuth, apperrors.KindUpstream:
		return err
	}
	return apperrors.Wrap(apperrors.KindUpstream, err, "analysis collaborator failed")
}

// validateReport rejects any non-conforming collaborator response as an
// upstream error instead of guessing at partial acceptance.
func validateReport(report *models.FeedbackReport) error {
	if report == nil {
		return apperrors.Upstream("analysis collaborator returned no report")
	}
	if report.OverallRating < 1 || report.OverallRating > 10 {
		return apperrors.Upstream("analysis collaborator returned an out-of-range overall rating %d", report.OverallRating)
	}
	if report.Summary == "" {
		return apperrors.Upstream("analysis collaborator returned an empty summary")
	}
	for _, score := range []float64{
		report.DetailedScores.Communication,
		report.DetailedScores.TechnicalKnowledge,
		report.DetailedScores.ProblemSolving,
		report.DetailedScores.Structure,
		report.DetailedScores.Confidence,
	} {
		if score < 0 || score > 100 {
			return apperrors.Upstream("analysis collaborator returned an out-of-range detailed score %.1f", score)
		}
	}
	for _, rec := range report.Recommendations {
		if !rec.Priority.Valid() {
			return apperrors.Upstream("analysis collaborator returned an invalid recommendation priority %q", rec.Priority)
		}
	}
	if report.Strengths == nil {
		report.Strengths = []string{}
	}
	if report.Weaknesses == nil {
		report.Weaknesses = []string{}
	}
	if report.Recommendations == nil {
		report.Recommendations = []models.Recommendation{}
	}
	return nil
}
