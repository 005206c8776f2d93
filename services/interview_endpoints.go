package services

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
)

type InterviewEndpoints struct {
	interviews *InterviewService
}

func NewInterviewEndpoints(interviews *InterviewService) *InterviewEndpoints {
	return &InterviewEndpoints{interviews: interviews}
}

type CreateInterviewRequest struct {
	Type            models.InterviewType `json:"type"`
	Difficulty      models.Difficulty    `json:"difficulty"`
	DurationMinutes int                  `json:"duration_minutes"`
	CustomPrompt    string               `json:"custom_prompt,omitempty"`
	Tags            []string             `json:"tags,omitempty"`
}

type AddQuestionsRequest struct {
	Questions []string `json:"questions"`
}

type GenerateQuestionsRequest struct {
	Count int `json:"count"`
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interviews", func(r chi.Router) {
		r.Post("/", e.CreateHandler)
		r.Get("/", e.ListHandler)
		r.Get("/{id}", e.GetHandler)
		r.Post("/{id}/start", e.StartHandler)
		r.Post("/{id}/complete", e.CompleteHandler)
		r.Post("/{id}/cancel", e.CancelHandler)
		r.Post("/{id}/questions", e.AddQuestionsHandler)
		r.Post("/{id}/questions/generate", e.GenerateQuestionsHandler)
	})
}

func (e *InterviewEndpoints) CreateHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req CreateInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	interview, err := e.interviews.Create(r.Context(), CreateInterviewInput{
		OwnerID:         user.ID,
		Type:            req.Type,
		Difficulty:      req.Difficulty,
		DurationMinutes: req.DurationMinutes,
		CustomPrompt:    req.CustomPrompt,
		Tags:            req.Tags,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"interview": interview})
}

func (e *InterviewEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	interviews, err := e.interviews.ListByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"interviews": interviews,
		"count":      len(interviews),
	})
}

func (e *InterviewEndpoints) GetHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	interview, err := e.interviews.Get(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interview": interview})
}

func (e *InterviewEndpoints) StartHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	interview, session, err := e.interviews.Start(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"interview": interview,
		"session":   session,
	})
}

func (e *InterviewEndpoints) CompleteHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	interview, err := e.interviews.Complete(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interview": interview})
}

func (e *InterviewEndpoints) CancelHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	interview, err := e.interviews.Cancel(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interview": interview})
}

func (e *InterviewEndpoints) AddQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	var req AddQuestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Validation("invalid request body"))
		return
	}

	interview, err := e.interviews.AddQuestions(r.Context(), chi.URLParam(r, "id"), user.ID, req.Questions)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interview": interview})
}

func (e *InterviewEndpoints) GenerateQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	req := GenerateQuestionsRequest{Count: 5}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperrors.Validation("invalid request body"))
			return
		}
	}

	interview, err := e.interviews.GenerateQuestions(r.Context(), chi.URLParam(r, "id"), user.ID, req.Count)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Interview questions generated", "interview_id", interview.ID, "user_id", user.ID, "count", req.Count)
	writeJSON(w, http.StatusOK, map[string]any{"interview": interview})
}
