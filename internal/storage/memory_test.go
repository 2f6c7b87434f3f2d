package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens-api/internal/models"
)

func strPtr(s string) *string { return &s }

func testDataset() *models.Dataset {
	return &models.Dataset{
		Companies: []*models.Company{
			{ID: "google", Name: "Google", Category: models.CompanyTech, IsActive: true},
			{ID: "goldman", Name: "Goldman Sachs", Category: models.CompanyFinance, IsActive: true},
			{ID: "gone", Name: "Gone Corp", Category: models.CompanyTech, IsActive: false},
		},
		Roles: []*models.Role{
			{ID: "software-engineer", Name: "Software Engineer", Category: "Engineering", RequiredSkills: []string{"algorithms"}, IsActive: true},
			{ID: "data-analyst", Name: "Data Analyst", Category: "Data", IsActive: true},
		},
		Skills: []*models.Skill{
			{ID: "python", Name: "Python", Category: models.SkillLanguages, Level: models.LevelBeginner, IsActive: true},
			{ID: "algorithms", Name: "Algorithms", Category: models.SkillTechnical, Level: models.LevelAdvanced, IsActive: true},
			{ID: "java", Name: "Java", Category: models.SkillLanguages, Level: models.LevelIntermediate, IsActive: true},
		},
		Questions: []*models.Question{
			{ID: "q1", Question: "Binary search?", Type: models.QuestionMCQ, Difficulty: models.DifficultyEasy, Options: []string{"a", "b"}, CorrectAnswer: 1, RoleID: strPtr("software-engineer"), IsActive: true},
			{ID: "q2", Question: "Two Sum", Type: models.QuestionCoding, Difficulty: models.DifficultyHard, IsActive: true},
			{ID: "q3", Question: "Retired", Type: models.QuestionMCQ, Difficulty: models.DifficultyMedium, IsActive: false},
		},
		HRQuestions: []*models.HRQuestion{
			{ID: "hr1", Question: "Tell me about yourself", IsActive: true},
			{ID: "hr2", Question: "Why this company?", IsActive: true},
		},
		TechQuestions: []*models.TechQuestion{
			{ID: "t1", Question: "What is a process?", Difficulty: models.DifficultyEasy, IsActive: true},
		},
	}
}

func TestMemoryCatalog(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.Load(testDataset())

	t.Run("companies filter and order", func(t *testing.T) {
		all, err := repo.ListCompanies(ctx, models.CatalogFilters{Category: models.CategoryAll})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Goldman Sachs", all[0].Name)
		assert.Equal(t, "Google", all[1].Name)

		tech, err := repo.ListCompanies(ctx, models.CatalogFilters{Category: models.CompanyTech})
		require.NoError(t, err)
		require.Len(t, tech, 1)
		assert.Equal(t, "google", tech[0].ID)

		search, err := repo.ListCompanies(ctx, models.CatalogFilters{Search: "GOLD"})
		require.NoError(t, err)
		require.Len(t, search, 1)
		assert.Equal(t, "goldman", search[0].ID)
	})

	t.Run("inactive company is not found", func(t *testing.T) {
		c, err := repo.GetCompany(ctx, "gone")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("skills sort by category then name", func(t *testing.T) {
		skills, err := repo.ListSkills(ctx, models.CatalogFilters{})
		require.NoError(t, err)
		ids := make([]string, len(skills))
		for i, s := range skills {
			ids[i] = s.ID
		}
		assert.Equal(t, []string{"java", "python", "algorithms"}, ids)

		beginner, err := repo.ListSkills(ctx, models.CatalogFilters{Level: models.LevelBeginner})
		require.NoError(t, err)
		require.Len(t, beginner, 1)
		assert.Equal(t, "python", beginner[0].ID)
	})

	t.Run("role result does not alias storage", func(t *testing.T) {
		rl, err := repo.GetRole(ctx, "software-engineer")
		require.NoError(t, err)
		rl.RequiredSkills[0] = "mutated"

		again, err := repo.GetRole(ctx, "software-engineer")
		require.NoError(t, err)
		assert.Equal(t, "algorithms", again.RequiredSkills[0])
	})
}

func TestMemoryQuestions(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	repo.Load(testDataset())

	list, err := repo.ListQuestions(ctx, models.CatalogFilters{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "q1", list[0].ID)

	// role-agnostic questions match every role
	byRole, err := repo.ListQuestions(ctx, models.CatalogFilters{RoleID: "software-engineer"})
	require.NoError(t, err)
	require.Len(t, byRole, 2)

	other, err := repo.ListQuestions(ctx, models.CatalogFilters{RoleID: "data-analyst"})
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "q2", other[0].ID)

	q, err := repo.GetQuestion(ctx, "q3")
	require.NoError(t, err)
	assert.Nil(t, q)

	q, err = repo.GetQuestionByID(ctx, "q3")
	require.NoError(t, err)
	require.NotNil(t, q)

	n, err := repo.CountQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	random, err := repo.RandomQuestions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, random, 2)
	assert.NotEqual(t, random[0].ID, random[1].ID)

	hr, err := repo.RandomHRQuestions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, hr, 1)

	tech, err := repo.RandomTechQuestions(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, tech, 1)
}

func TestMemoryAssessments(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	now := time.Now()
	older := &models.Assessment{SessionID: "s1", CompanyID: "google", RoleID: "software-engineer", CreatedAt: now.Add(-time.Minute)}
	newer := &models.Assessment{SessionID: "s2", CompanyID: "google", RoleID: "software-engineer", CreatedAt: now}

	require.NoError(t, repo.CreateAssessment(ctx, older))
	require.NoError(t, repo.CreateAssessment(ctx, newer))
	assert.Error(t, repo.CreateAssessment(ctx, older))

	got, err := repo.GetAssessment(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{}, got.SelectedSkills)
	assert.Equal(t, models.AssessmentOpen, got.Status())

	got.Score = 1
	got.TotalQuestions = 1
	got.CompletedAt = &now
	require.NoError(t, repo.UpdateAssessment(ctx, got))

	got, err = repo.GetAssessment(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.AssessmentCompleted, got.Status())

	list, err := repo.ListAssessments(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s2", list[0].SessionID)

	missing, err := repo.GetAssessment(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, repo.UpdateAssessment(ctx, &models.Assessment{SessionID: "nope"}))
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"go", "%go%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`c:\`, `%c:\\%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeLike(tt.in))
		})
	}
}

func TestWhereBuilder(t *testing.T) {
	var w where
	assert.Equal(t, "", w.String())

	w.add("category = $%d", "Tech")
	w.add("name ILIKE $%d", "%g%")
	assert.Equal(t, " AND category = $1 AND name ILIKE $2", w.String())
	assert.Equal(t, []any{"Tech", "%g%"}, w.args)
}
