package advisor

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/careerlens/careerlens-api/internal/config"
	"github.com/careerlens/careerlens-api/internal/metrics"
	"github.com/careerlens/careerlens-api/internal/models"
)

// Operation names used in logs, metrics and ProviderError.Op
const (
	OpSkillGaps          = "analyze_skill_gaps"
	OpLearningRoadmap    = "generate_learning_roadmap"
	OpInterviewFeedback  = "analyze_interview_performance"
	OpCoachChat          = "chat_with_coach"
	OpInterviewQuestions = "generate_interview_questions"
	OpTestQuestions      = "generate_test_questions"
)

// Defaults applied to generator requests
const (
	DefaultInterviewDifficulty = models.DifficultyMedium
	DefaultInterviewCount      = 5
	DefaultTestTopic           = "general programming"
	DefaultTestDifficulty      = "mixed"
	DefaultTestCount           = 4
	DefaultTestLanguage        = "javascript"
)

// Advisor is the AI advisory gateway. Every operation is a single
// prompt/parse round trip with fixed sampling parameters.
type Advisor struct {
	client        Completer
	model         string
	questionModel string
}

// New creates an advisor from configuration. Without an API key the
// advisor is disabled and every operation returns ErrNotConfigured.
func New(cfg config.AIConfig) *Advisor {
	a := &Advisor{model: cfg.Model, questionModel: cfg.QuestionModel}
	if cfg.Enabled() {
		a.client = NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	}
	return a
}

// NewWithCompleter creates an enabled advisor over an arbitrary completer
func NewWithCompleter(c Completer, model, questionModel string) *Advisor {
	return &Advisor{client: c, model: model, questionModel: questionModel}
}

// Enabled reports whether a provider is configured
func (a *Advisor) Enabled() bool {
	return a != nil && a.client != nil
}

func (a *Advisor) call(ctx context.Context, op, message string, req ChatRequest) (string, error) {
	if !a.Enabled() {
		metrics.AdvisorCalls.WithLabelValues(op, "disabled").Inc()
		return "", &ProviderError{Op: op, Message: message, Err: ErrNotConfigured}
	}

	start := time.Now()
	content, err := a.client.Complete(ctx, req)
	metrics.AdvisorDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AdvisorCalls.WithLabelValues(op, "error").Inc()
		slog.Error("advisor call failed", "op", op, "model", req.Model, "error", err)
		return "", &ProviderError{Op: op, Message: message, Err: err}
	}

	slog.Debug("advisor call completed", "op", op, "model", req.Model, "duration_ms", time.Since(start).Milliseconds())
	return content, nil
}

// completeJSON runs req and parses the reply into T
func completeJSON[T any, PT interface {
	*T
	validatable
}](ctx context.Context, a *Advisor, op, message string, req ChatRequest) (*T, error) {
	content, err := a.call(ctx, op, message, req)
	if err != nil {
		return nil, err
	}
	v, err := parseReply[T, PT](content)
	if err != nil {
		metrics.AdvisorCalls.WithLabelValues(op, "invalid").Inc()
		slog.Error("advisor reply rejected", "op", op, "error", err)
		return nil, &ProviderError{Op: op, Message: message, Err: err}
	}
	metrics.AdvisorCalls.WithLabelValues(op, "ok").Inc()
	return v, nil
}

// AnalyzeSkillGaps produces a skill-gap analysis for a scored assessment
func (a *Advisor) AnalyzeSkillGaps(ctx context.Context, assessment *models.Assessment) (*models.SkillGapAnalysis, error) {
	return completeJSON[models.SkillGapAnalysis](ctx, a, OpSkillGaps, "Failed to analyze skill gaps", ChatRequest{
		Model: a.model,
		Messages: []Message{
			{Role: "system", Content: systemSkillGaps},
			{Role: "user", Content: skillGapsPrompt(assessment)},
		},
		Temperature:    0.7,
		MaxTokens:      2000,
		ResponseFormat: jsonObject,
	})
}

// GenerateLearningRoadmap builds an 8-week plan from an analysis
func (a *Advisor) GenerateLearningRoadmap(ctx context.Context, analysis *models.SkillGapAnalysis, roleID string) (*models.LearningRoadmap, error) {
	return completeJSON[models.LearningRoadmap](ctx, a, OpLearningRoadmap, "Failed to generate learning roadmap", ChatRequest{
		Model: a.model,
		Messages: []Message{
			{Role: "system", Content: systemRoadmap},
			{Role: "user", Content: roadmapPrompt(analysis, roleID)},
		},
		Temperature:    0.7,
		MaxTokens:      2000,
		ResponseFormat: jsonObject,
	})
}

// AnalyzeInterview scores one interview answer
func (a *Advisor) AnalyzeInterview(ctx context.Context, req *models.InterviewFeedbackRequest) (*models.InterviewFeedback, error) {
	return completeJSON[models.InterviewFeedback](ctx, a, OpInterviewFeedback, "Failed to analyze interview performance", ChatRequest{
		Model: a.model,
		Messages: []Message{
			{Role: "system", Content: systemInterview},
			{Role: "user", Content: interviewPrompt(req)},
		},
		Temperature:    0.7,
		MaxTokens:      1500,
		ResponseFormat: jsonObject,
	})
}

// ChatWithCoach continues a coach conversation and returns the reply text
func (a *Advisor) ChatWithCoach(ctx context.Context, messages []models.ChatMessage, coachCtx *models.CoachContext) (string, error) {
	const message = "Failed to get coach response"

	chat := make([]Message, 0, len(messages)+1)
	chat = append(chat, Message{Role: "system", Content: coachSystemPrompt(coachCtx)})
	for _, m := range messages {
		role := m.Role
		if role == "" {
			role = "user"
		}
		chat = append(chat, Message{Role: role, Content: m.Content})
	}

	content, err := a.call(ctx, OpCoachChat, message, ChatRequest{
		Model:       a.model,
		Messages:    chat,
		Temperature: 0.8,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", err
	}
	metrics.AdvisorCalls.WithLabelValues(OpCoachChat, "ok").Inc()
	return content, nil
}

// GenerateInterviewQuestions writes interview prompts for a role.
// Empty difficulty and non-positive count take the defaults.
func (a *Advisor) GenerateInterviewQuestions(ctx context.Context, req *models.GenerateInterviewQuestionsRequest) (*models.InterviewQuestionSet, error) {
	r := *req
	if r.Difficulty == "" {
		r.Difficulty = DefaultInterviewDifficulty
	}
	if r.Count <= 0 {
		r.Count = DefaultInterviewCount
	}

	return completeJSON[models.InterviewQuestionSet](ctx, a, OpInterviewQuestions, "Failed to generate interview questions", ChatRequest{
		Model: a.model,
		Messages: []Message{
			{Role: "system", Content: systemQuestions},
			{Role: "user", Content: interviewQuestionsPrompt(&r)},
		},
		Temperature:    0.8,
		MaxTokens:      2000,
		ResponseFormat: jsonObject,
	})
}

// GenerateTestQuestions writes a practice test with answer keys.
// The reply is normalized so every question has an id, type, difficulty
// and, for coding items, a language.
func (a *Advisor) GenerateTestQuestions(ctx context.Context, req *models.GenerateTestQuestionsRequest) (*models.GeneratedTestSet, error) {
	r := *req
	if r.Topic == "" {
		r.Topic = DefaultTestTopic
	}
	if r.Difficulty == "" {
		r.Difficulty = DefaultTestDifficulty
	}
	if r.Count <= 0 {
		r.Count = DefaultTestCount
	}

	set, err := completeJSON[models.GeneratedTestSet](ctx, a, OpTestQuestions, "Failed to generate test questions", ChatRequest{
		Model: a.questionModel,
		Messages: []Message{
			{Role: "system", Content: systemTestWriter},
			{Role: "user", Content: testQuestionsPrompt(&r)},
		},
		Temperature: 0.7,
		MaxTokens:   6000,
	})
	if err != nil {
		return nil, err
	}
	normalizeTestSet(set)
	return set, nil
}

func normalizeTestSet(set *models.GeneratedTestSet) {
	for i := range set.Questions {
		q := &set.Questions[i]
		if len(q.ID) == 0 || string(q.ID) == "null" {
			q.ID = json.RawMessage(strconv.Itoa(i + 1))
		}
		if q.Type == "" {
			q.Type = models.QuestionCoding
			if len(q.Options) > 0 {
				q.Type = models.QuestionMCQ
			}
		}
		if q.Difficulty == "" {
			q.Difficulty = models.DifficultyMedium
		}
		if q.Type == models.QuestionCoding && q.Language == "" {
			q.Language = DefaultTestLanguage
		}
		if q.Type == models.QuestionMCQ && q.CorrectAnswer == nil {
			zero := 0
			q.CorrectAnswer = &zero
		}
	}
}
