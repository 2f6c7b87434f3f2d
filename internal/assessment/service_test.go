package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens-api/internal/models"
	"github.com/careerlens/careerlens-api/internal/storage"
)

type fakeEnricher struct {
	enabled     bool
	analysisErr error
	roadmapErr  error
	calls       int
}

func (f *fakeEnricher) Enabled() bool { return f.enabled }

func (f *fakeEnricher) AnalyzeSkillGaps(_ context.Context, a *models.Assessment) (*models.SkillGapAnalysis, error) {
	f.calls++
	if f.analysisErr != nil {
		return nil, f.analysisErr
	}
	return &models.SkillGapAnalysis{OverallConfidence: float64(a.Percentage), Recommendations: "practice"}, nil
}

func (f *fakeEnricher) GenerateLearningRoadmap(_ context.Context, _ *models.SkillGapAnalysis, roleID string) (*models.LearningRoadmap, error) {
	if f.roadmapErr != nil {
		return nil, f.roadmapErr
	}
	return &models.LearningRoadmap{Roadmap: []models.RoadmapWeek{{Week: 1, Title: roleID}}}, nil
}

func newRepo() *storage.MemoryRepository {
	repo := storage.NewMemoryRepository()
	repo.Load(&models.Dataset{
		Questions: []*models.Question{
			{ID: "Q1", Question: "Binary search complexity?", Type: models.QuestionMCQ, Options: []string{"O(n)", "O(log n)"}, CorrectAnswer: 1, IsActive: true},
			{ID: "Q2", Question: "SQL filter clause?", Type: models.QuestionMCQ, Options: []string{"SELECT", "FROM", "WHERE"}, CorrectAnswer: 2, IsActive: true},
			{ID: "C1", Question: "Two Sum", Type: models.QuestionCoding, IsActive: true},
		},
	})
	return repo
}

func answer(id, raw string) models.AnswerInput {
	return models.AnswerInput{QuestionID: id, Answer: json.RawMessage(raw)}
}

func TestCreateValidation(t *testing.T) {
	repo := newRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateAssessmentRequest
	}{
		{"missing both", models.CreateAssessmentRequest{}},
		{"missing role", models.CreateAssessmentRequest{CompanyID: "google"}},
		{"missing company", models.CreateAssessmentRequest{RoleID: "software-engineer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, "Company ID and Role ID are required")
		})
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "nothing persisted")
}

func TestCreateThenSubmit(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newRepo(), nil)

	a, err := svc.Create(ctx, &models.CreateAssessmentRequest{
		CompanyID: "google", RoleID: "software-engineer", SelectedSkills: []string{"algorithms"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, a.SessionID)
	assert.Equal(t, models.AssessmentOpen, a.Status())

	answers := []models.AnswerInput{answer("Q1", `1`), answer("Q2", `0`)}
	res, err := svc.Submit(ctx, a.SessionID, answers)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.TotalQuestions)
	assert.Equal(t, 50, res.Percentage)
	assert.Nil(t, res.SkillGapAnalysis)

	got, err := svc.Get(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Equal(t, res.Score, got.Score)
	assert.Equal(t, res.Percentage, got.Percentage)
	assert.Equal(t, models.AssessmentCompleted, got.Status())

	// resubmitting the same answers yields the same score
	again, err := svc.Submit(ctx, a.SessionID, answers)
	require.NoError(t, err)
	assert.Equal(t, res.Score, again.Score)
	assert.Equal(t, res.TotalQuestions, again.TotalQuestions)

	got, err = svc.Get(ctx, a.SessionID)
	require.NoError(t, err)
	assert.Len(t, got.Answers, 2)
}

func TestSubmitScoring(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		answers   []models.AnswerInput
		wantScore int
		wantTotal int
		wantPct   int
	}{
		{"coding always correct", []models.AnswerInput{answer("C1", `"function f() {}"`)}, 1, 1, 100},
		{"unknown question counted in total", []models.AnswerInput{answer("Q1", `1`), answer("missing", `1`)}, 1, 2, 50},
		{"string index is wrong", []models.AnswerInput{answer("Q1", `"1"`)}, 0, 1, 0},
		{"rounding", []models.AnswerInput{answer("Q1", `1`), answer("Q2", `2`), answer("Q2", `1`)}, 2, 3, 67},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newRepo(), nil)
			a, err := svc.Create(ctx, &models.CreateAssessmentRequest{CompanyID: "google", RoleID: "software-engineer"})
			require.NoError(t, err)

			res, err := svc.Submit(ctx, a.SessionID, tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.wantTotal, res.TotalQuestions)
			assert.Equal(t, tt.wantPct, res.Percentage)
			assert.LessOrEqual(t, res.Score, res.TotalQuestions)
		})
	}
}

func TestSubmitErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newRepo(), nil)

	_, err := svc.Submit(ctx, "unknown", []models.AnswerInput{answer("Q1", `1`)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Submit(ctx, "unknown", nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Answers array is required")

	_, err = svc.Get(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitEnrichment(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		enricher    *fakeEnricher
		wantGaps    bool
		wantRoadmap bool
	}{
		{"disabled", &fakeEnricher{}, false, false},
		{"enabled", &fakeEnricher{enabled: true}, true, true},
		{"analysis fails", &fakeEnricher{enabled: true, analysisErr: errors.New("Failed to analyze skill gaps")}, false, false},
		{"roadmap fails", &fakeEnricher{enabled: true, roadmapErr: errors.New("Failed to generate learning roadmap")}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newRepo(), tt.enricher)
			a, err := svc.Create(ctx, &models.CreateAssessmentRequest{CompanyID: "google", RoleID: "software-engineer"})
			require.NoError(t, err)

			res, err := svc.Submit(ctx, a.SessionID, []models.AnswerInput{answer("Q1", `1`)})
			require.NoError(t, err, "AI failure never fails the submit")
			assert.Equal(t, 1, res.Score)
			assert.Equal(t, tt.wantGaps, res.SkillGapAnalysis != nil)
			assert.Equal(t, tt.wantRoadmap, res.LearningRoadmap != nil)

			stored, err := svc.Get(ctx, a.SessionID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantGaps, stored.SkillGapAnalysis != nil)
		})
	}
}
