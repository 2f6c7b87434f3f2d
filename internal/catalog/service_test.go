package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens-api/internal/cache"
	"github.com/careerlens/careerlens-api/internal/models"
	"github.com/careerlens/careerlens-api/internal/storage"
)

func newTestService(t *testing.T, questions int) (*Service, *storage.MemoryRepository) {
	t.Helper()

	ds := &models.Dataset{
		Companies: []*models.Company{
			{ID: "google", Name: "Google", Category: models.CompanyTech, IsActive: true},
			{ID: "goldman", Name: "Goldman Sachs", Category: models.CompanyFinance, IsActive: true},
		},
		Roles: []*models.Role{
			{ID: "software-engineer", Name: "Software Engineer", Category: "Engineering", IsActive: true},
		},
		Skills: []*models.Skill{
			{ID: "python", Name: "Python", Category: models.SkillLanguages, Level: models.LevelBeginner, IsActive: true},
		},
		HRQuestions: []*models.HRQuestion{
			{ID: "hr1", Question: "Tell me about yourself", IsActive: true},
		},
	}
	for i := 0; i < questions; i++ {
		q := &models.Question{
			ID:         fmt.Sprintf("q%02d", i),
			Question:   fmt.Sprintf("Question %d", i),
			Type:       models.QuestionMCQ,
			Difficulty: models.DifficultyEasy,
			Options:    []string{"a", "b", "c"},
			IsActive:   true,
		}
		ds.Questions = append(ds.Questions, q)
	}
	ds.Questions = append(ds.Questions, &models.Question{
		ID: "coding", Question: "Two Sum", Type: models.QuestionCoding, Difficulty: models.DifficultyHard, IsActive: false,
	})

	repo := storage.NewMemoryRepository()
	repo.Load(ds)
	c := cache.New(context.Background(), cache.Options{TTL: time.Minute})
	return NewService(repo, c), repo
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		def  int
		want int
	}{
		{"empty uses default", "", 20, 20},
		{"zero uses default", "0", 20, 20},
		{"negative uses default", "-3", 10, 10},
		{"garbage uses default", "abc", 20, 20},
		{"plain value", "5", 20, 5},
		{"capped", "1000", 20, MaxSample},
		{"whitespace", " 7 ", 20, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCount(tt.raw, tt.def))
		})
	}
}

func TestRandomQuestionsClamp(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 3)

	t.Run("count=0 never returns zero", func(t *testing.T) {
		got, err := svc.RandomQuestions(ctx, ParseCount("0", DefaultQuestionSize))
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("count=1000 clamps to corpus", func(t *testing.T) {
		got, err := svc.RandomQuestions(ctx, ParseCount("1000", DefaultQuestionSize))
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("count=1", func(t *testing.T) {
		got, err := svc.RandomQuestions(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("empty bank", func(t *testing.T) {
		empty, _ := newTestService(t, 0)
		got, err := empty.RandomQuestions(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	_, err := svc.GetCompany(ctx, "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, "Company not found")

	_, err = svc.GetRole(ctx, "nope")
	assert.EqualError(t, err, "Role not found")

	_, err = svc.GetSkill(ctx, "nope")
	assert.EqualError(t, err, "Skill not found")

	_, err = svc.GetQuestion(ctx, "coding")
	assert.ErrorIs(t, err, ErrQuestionNotFound, "inactive question is hidden")
}

func TestValidateAnswer(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, 1)

	tests := []struct {
		name        string
		id          string
		answer      string
		wantCorrect bool
		wantKey     *int
	}{
		{"mcq correct", "q00", `0`, true, intPtr(0)},
		{"mcq wrong", "q00", `2`, false, intPtr(0)},
		{"mcq string answer", "q00", `"0"`, false, intPtr(0)},
		{"mcq null answer", "q00", `null`, false, intPtr(0)},
		{"coding always correct, even inactive", "coding", `"anything"`, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ValidateAnswer(ctx, tt.id, json.RawMessage(tt.answer))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, got.IsCorrect)
			assert.Equal(t, tt.wantKey, got.CorrectAnswer)
		})
	}

	_, err := svc.ValidateAnswer(ctx, "missing", json.RawMessage(`1`))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCompaniesCached(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, 0)

	first, err := svc.ListCompanies(ctx, models.CatalogFilters{Category: models.CategoryAll})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// cached result survives a corpus change until invalidated
	repo.Load(&models.Dataset{})
	cached, err := svc.ListCompanies(ctx, models.CatalogFilters{})
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	require.NoError(t, svc.InvalidateCache(ctx))
	fresh, err := svc.ListCompanies(ctx, models.CatalogFilters{})
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestRandomHRQuestions(t *testing.T) {
	svc, _ := newTestService(t, 0)
	got, err := svc.RandomHRQuestions(context.Background(), ParseCount("", DefaultHRSize))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func intPtr(i int) *int { return &i }
