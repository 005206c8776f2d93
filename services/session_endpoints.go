package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
)

type SessionEndpoints struct {
	transcripts *TranscriptService
	feedback    *FeedbackService
}

func NewSessionEndpoints(transcripts *TranscriptService, feedback *FeedbackService) *SessionEndpoints {
	return &SessionEndpoints{
		transcripts: transcripts,
		feedback:    feedback,
	}
}

type AppendTranscriptRequest struct {
	Speaker    models.Speaker `json:"speaker"`
	Text       string         `json:"text"`
	DurationMs *int64         `json:"duration_ms,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	AudioURL   string         `json:"audio_url,omitempty"`
}

func (e *SessionEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/{id}", e.GetSessionHandler)
		r.Post("/{id}/transcript", e.AppendTranscriptHandler)
		r.Post("/{id}/feedback", e.GenerateFeedbackHandler)
	})

	// Session lookup through its interview
	r.Get("/interviews/{id}/session", e.GetSessionByInterviewHandler)
}

func (e *SessionEndpoints) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	session, err := e.transcripts.GetSession(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (e *SessionEndpoints) GetSessionByInterviewHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	session, err := e.transcripts.GetSessionByInterview(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

func (e *SessionEndpoints) AppendTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req AppendTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	sessionID := chi.URLParam(r, "id")
	result, err := e.transcripts.Append(r.Context(), sessionID, user.ID, AppendEntryInput{
		Speaker:    req.Speaker,
		Text:       req.Text,
		DurationMs: req.DurationMs,
		Confidence: req.Confidence,
		AudioURL:   req.AudioURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (e *SessionEndpoints) GenerateFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	result, err := e.feedback.GenerateFeedback(r.Context(), sessionID, user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Feedback generation completed", "session_id", sessionID, "user_id", user.ID, "overall_score", result.OverallScore)
	writeJSON(w, http.StatusOK, result)
}
