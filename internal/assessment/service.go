package assessment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/careerlens/careerlens-api/internal/metrics"
	"github.com/careerlens/careerlens-api/internal/models"
	"github.com/careerlens/careerlens-api/internal/storage"
)

// Common errors
var (
	ErrNotFound   = errors.New("Assessment not found")
	ErrValidation = errors.New("validation failed")

	ErrMissingIDs     = &ValidationError{Message: "Company ID and Role ID are required"}
	ErrMissingAnswers = &ValidationError{Message: "Answers array is required"}
)

// ValidationError carries the user-facing message of a rejected request
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ListLimit caps the list endpoint
const ListLimit = 100

// ListMessage accompanies the list endpoint response
const ListMessage = "Use POST /api/assessments to create a new assessment"

// Enricher attaches AI analysis to a scored assessment
type Enricher interface {
	Enabled() bool
	AnalyzeSkillGaps(ctx context.Context, a *models.Assessment) (*models.SkillGapAnalysis, error)
	GenerateLearningRoadmap(ctx context.Context, analysis *models.SkillGapAnalysis, roleID string) (*models.LearningRoadmap, error)
}

// Service runs the create → submit → get lifecycle of assessments
type Service struct {
	repo     storage.Repository
	enricher Enricher
	now      func() time.Time
}

// NewService creates an assessment service; enricher may be nil
func NewService(repo storage.Repository, enricher Enricher) *Service {
	return &Service{repo: repo, enricher: enricher, now: time.Now}
}

// Create persists a new open assessment under a fresh session id
func (s *Service) Create(ctx context.Context, req *models.CreateAssessmentRequest) (*models.Assessment, error) {
	if req.CompanyID == "" || req.RoleID == "" {
		return nil, ErrMissingIDs
	}

	skills := req.SelectedSkills
	if skills == nil {
		skills = []string{}
	}

	now := s.now().UTC()
	a := &models.Assessment{
		SessionID:      models.NewSessionID(),
		CompanyID:      req.CompanyID,
		RoleID:         req.RoleID,
		SelectedSkills: skills,
		Answers:        []models.Answer{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("create assessment: %w", err)
	}

	slog.Info("assessment created",
		"session_id", a.SessionID,
		"company_id", a.CompanyID,
		"role_id", a.RoleID,
	)
	return a, nil
}

// Submit scores answers and completes the assessment. A second submit
// rescores from scratch and replaces the previous result.
func (s *Service) Submit(ctx context.Context, sessionID string, answers []models.AnswerInput) (*models.SubmitResult, error) {
	if len(answers) == 0 {
		return nil, ErrMissingAnswers
	}

	a, err := s.repo.GetAssessment(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}

	scored, score, err := s.score(ctx, answers)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a.Answers = scored
	a.Score = score
	a.TotalQuestions = len(answers)
	a.Percentage = models.Percentage(score, a.TotalQuestions)
	a.SkillGapAnalysis = nil
	a.LearningRoadmap = nil
	a.CompletedAt = &now
	a.UpdatedAt = now

	s.enrich(ctx, a)

	if err := s.repo.UpdateAssessment(ctx, a); err != nil {
		return nil, fmt.Errorf("update assessment: %w", err)
	}
	metrics.AssessmentsSubmitted.Inc()

	slog.Info("assessment submitted",
		"session_id", a.SessionID,
		"score", a.Score,
		"total_questions", a.TotalQuestions,
		"ai_analysis", a.SkillGapAnalysis != nil,
	)

	return &models.SubmitResult{
		SessionID:        a.SessionID,
		Score:            a.Score,
		TotalQuestions:   a.TotalQuestions,
		Percentage:       a.Percentage,
		SkillGapAnalysis: a.SkillGapAnalysis,
		LearningRoadmap:  a.LearningRoadmap,
	}, nil
}

// score resolves each answer's question. Unknown questions are dropped
// from the stored answers but still count toward the total.
func (s *Service) score(ctx context.Context, answers []models.AnswerInput) ([]models.Answer, int, error) {
	scored := make([]models.Answer, 0, len(answers))
	correct := 0

	for _, in := range answers {
		q, err := s.repo.GetQuestionByID(ctx, in.QuestionID)
		if err != nil {
			return nil, 0, fmt.Errorf("get question %s: %w", in.QuestionID, err)
		}
		if q == nil {
			slog.Debug("skipping answer for unknown question", "question_id", in.QuestionID)
			continue
		}

		ok := q.IsCorrect(in.Answer)
		if ok {
			correct++
		}

		timeSpent := 0
		if in.TimeSpent != nil {
			timeSpent = *in.TimeSpent
		}
		scored = append(scored, models.Answer{
			QuestionID: in.QuestionID,
			Answer:     in.Answer,
			IsCorrect:  ok,
			TimeSpent:  timeSpent,
		})
	}

	return scored, correct, nil
}

// enrich attaches skill gaps and a roadmap. Failures are logged only;
// the roadmap is skipped when the analysis fails.
func (s *Service) enrich(ctx context.Context, a *models.Assessment) {
	if s.enricher == nil || !s.enricher.Enabled() {
		return
	}

	analysis, err := s.enricher.AnalyzeSkillGaps(ctx, a)
	if err != nil {
		slog.Warn("skill gap analysis skipped", "session_id", a.SessionID, "error", err)
		return
	}
	a.SkillGapAnalysis = analysis

	roadmap, err := s.enricher.GenerateLearningRoadmap(ctx, analysis, a.RoleID)
	if err != nil {
		slog.Warn("learning roadmap skipped", "session_id", a.SessionID, "error", err)
		return
	}
	a.LearningRoadmap = roadmap
}

// Get returns an assessment by session id
func (s *Service) Get(ctx context.Context, sessionID string) (*models.Assessment, error) {
	a, err := s.repo.GetAssessment(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// List returns the most recent assessments
func (s *Service) List(ctx context.Context) ([]*models.Assessment, error) {
	list, err := s.repo.ListAssessments(ctx, ListLimit)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	return list, nil
}
