package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/mockview-ai/backend/apperrors"
	"github.com/mockview-ai/backend/models"
)

const ModelName = "gemini-2.5-flash"

// GeminiService is the genai-backed analysis collaborator. It implements
// both Analyzer (transcript -> feedback report) and QuestionGenerator.
type GeminiService struct {
	genaiClient *genai.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}
	return &GeminiService{genaiClient: genaiClient}
}

// Analyze turns a session transcript into a structured feedback report. Any
// non-conforming model response is reported as an upstream error.
func (g *GeminiService) Analyze(ctx context.Context, req AnalysisRequest) (*models.FeedbackReport, error) {
	if g.genaiClient == nil {
		return nil, apperrors.Upstream("genai client not initialized")
	}

	prompt := buildAnalysisPrompt(req)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			"You are an expert interview coach. You analyze mock-interview transcripts and respond with strict JSON only, no markdown fences and no commentary.",
			genai.RoleUser,
		),
		ResponseMIMEType: "application/json",
	}

	result, err := g.genaiClient.Models.GenerateContent(ctx, ModelName, genai.Text(prompt), config)
	if err != nil {
		return nil, mapGenAIError(err)
	}

	report, err := parseFeedbackJSON(result.Text())
	if err != nil {
		slog.Error("Failed to parse analysis response", "error", err)
		return nil, err
	}

	slog.Info("Generated feedback analysis",
		"overall_rating", report.OverallRating,
		"entries", len(req.Entries),
		"type", req.Interview.Type)
	return report, nil
}

// GenerateQuestions produces interview questions matching the interview's
// type and difficulty.
func (g *GeminiService) GenerateQuestions(ctx context.Context, interview *models.Interview, count int) ([]string, error) {
	if g.genaiClient == nil {
		return nil, apperrors.Upstream("genai client not initialized")
	}

	prompt := fmt.Sprintf(`Generate %d %s interview questions at %s difficulty for a mock interview lasting about %d minutes.`,
		count, interview.Type, interview.Difficulty, interview.PlannedDurationMinutes)
	if interview.CustomPrompt != "" {
		prompt += fmt.Sprintf("\nAdditional focus requested by the candidate: %s", interview.CustomPrompt)
	}
	if len(interview.Tags) > 0 {
		prompt += fmt.Sprintf("\nTopics to cover: %s", strings.Join(interview.Tags, ", "))
	}
	prompt += "\nRespond with a JSON array of question strings and nothing else."

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	result, err := g.genaiClient.Models.GenerateContent(ctx, ModelName, genai.Text(prompt), config)
	if err != nil {
		return nil, mapGenAIError(err)
	}

	var questions []string
	if err := json.Unmarshal([]byte(stripJSONFences(result.Text())), &questions); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstream, err, "question generator returned malformed output")
	}
	if len(questions) == 0 {
		return nil, apperrors.Upstream("question generator returned no questions")
	}

	slog.Info("Generated interview questions", "interview_id", interview.ID, "count", len(questions))
	return questions, nil
}

func buildAnalysisPrompt(req AnalysisRequest) string {
	var transcript strings.Builder
	for _, entry := range req.Entries {
		transcript.WriteString(fmt.Sprintf("[%dms] %s: %s\n", entry.TimestampMs, entry.Speaker, entry.Text))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze this %s mock interview conducted at %s difficulty (planned %d minutes).\n",
		req.Interview.Type, req.Interview.Difficulty, req.Interview.PlannedDurationMinutes)
	if req.Profile != nil {
		if req.Profile.FullName != "" {
			fmt.Fprintf(&b, "Candidate: %s.\n", req.Profile.FullName)
		}
		if req.Profile.Major != "" {
			fmt.Fprintf(&b, "Field of study: %s.\n", req.Profile.Major)
		}
	}
	if req.Interview.CustomPrompt != "" {
		fmt.Fprintf(&b, "Candidate requested focus: %s\n", req.Interview.CustomPrompt)
	}
	if len(req.Interview.Questions) > 0 {
		fmt.Fprintf(&b, "Planned questions:\n- %s\n", strings.Join(req.Interview.Questions, "\n- "))
	}

	b.WriteString(`
Transcript:
`)
	b.WriteString(transcript.String())
	b.WriteString(`
Respond with a single JSON object using exactly these keys:
{
  "overall_rating": <integer 1-10>,
  "strengths": [<strings>],
  "weaknesses": [<strings>],
  "recommendations": [{"area": <string>, "suggestion": <string>, "priority": "high"|"medium"|"low"}],
  "detailed_scores": {
    "communication": <0-100>,
    "technical_knowledge": <0-100>,
    "problem_solving": <0-100>,
    "structure": <0-100>,
    "confidence": <0-100>
  },
  "summary": <non-empty string>
}`)
	return b.String()
}

// parseFeedbackJSON decodes the model's JSON into a feedback report. The
// orchestrator validates ranges afterwards; here we only reject responses
// that are not valid JSON for the expected shape.
func parseFeedbackJSON(text string) (*models.FeedbackReport, error) {
	var report models.FeedbackReport
	if err := json.Unmarshal([]byte(stripJSONFences(text)), &report); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstream, err, "analysis collaborator returned malformed JSON")
	}
	return &report, nil
}

// stripJSONFences removes markdown code fences the model sometimes wraps
// around JSON output despite instructions.
func stripJSONFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

// mapGenAIError translates genai API failures into the pipeline's typed
// errors so callers can distinguish retryable rate limits from permanent
// auth failures.
func mapGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return apperrors.Wrap(apperrors.KindRateLimit, err, "analysis collaborator rate limited the request")
		case http.StatusUnauthorized, http.StatusForbidden:
			return apperrors.Wrap(apperrors.KindUpstreamAuth, err, "analysis collaborator rejected the credentials")
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Wrap(apperrors.KindUpstream, err, "analysis collaborator timed out")
	}
	return apperrors.Wrap(apperrors.KindUpstream, err, "analysis collaborator is unavailable")
}
