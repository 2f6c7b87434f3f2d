package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens-api/internal/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadCorpus(t *testing.T) {
	dir := filepath.Join("..", "..", "seed")
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Skip("seed directory not found, skipping")
	}

	ds, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Len(t, ds.Companies, 6)
	assert.Len(t, ds.Roles, 6)
	assert.Len(t, ds.Skills, 15)
	assert.NotEmpty(t, ds.Questions)
	assert.NotEmpty(t, ds.HRQuestions)

	var popular []string
	for _, r := range ds.Roles {
		assert.Equal(t, models.DefaultRoleCategory, r.Category)
		assert.True(t, r.IsActive)
		if r.Popular {
			popular = append(popular, r.ID)
		}
	}
	assert.Equal(t, []string{"software-engineer"}, popular)

	for _, q := range ds.HRQuestions {
		assert.Equal(t, []string{"hr", "behavioral"}, q.Tags)
	}

	var twoSum *models.TechQuestion
	for _, q := range ds.TechQuestions {
		assert.Equal(t, models.DifficultyEasy, q.Difficulty)
		if q.Question == "Two Sum" {
			twoSum = q
		}
	}
	require.NotNil(t, twoSum)
	assert.Equal(t, models.QuestionCoding, twoSum.Type)
	assert.Len(t, twoSum.TestCases, 6)
	assert.Equal(t, "[0,1]", twoSum.TestCases[0].ExpectedOutput)
	assert.Len(t, twoSum.Hints, 3)
}

func TestQuestionIDIsDeterministic(t *testing.T) {
	a := QuestionID("question", "What is a stack?")
	assert.Equal(t, a, QuestionID("question", "What is a stack?"))
	assert.NotEqual(t, a, QuestionID("hr", "What is a stack?"))
	assert.Len(t, a, 36)
}

func TestLoaderMergesFilesAndAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
roles:
  - id: sre
    name: Site Reliability Engineer
questions:
  - question: Which port does HTTPS use?
    type: mcq
    difficulty: easy
    options: ["80", "443"]
    correct_answer: 1
`)
	writeFile(t, dir, "b.yml", `
tech_questions:
  - question: What is a mutex?
hr_questions:
  - question: Tell me about yourself.
`)
	writeFile(t, dir, "ignored.txt", "not yaml")

	ds, err := LoadDir(dir)
	require.NoError(t, err)

	require.Len(t, ds.Roles, 1)
	assert.Equal(t, "General", ds.Roles[0].Category)
	assert.Equal(t, []string{}, ds.Roles[0].RequiredSkills)

	require.Len(t, ds.Questions, 1)
	assert.Equal(t, QuestionID("question", "Which port does HTTPS use?"), ds.Questions[0].ID)
	assert.Equal(t, 1, ds.Questions[0].CorrectAnswer)
	assert.True(t, ds.Questions[0].IsActive)

	require.Len(t, ds.TechQuestions, 1)
	assert.Equal(t, "easy", ds.TechQuestions[0].Difficulty)
	require.Len(t, ds.HRQuestions, 1)
	assert.True(t, ds.HRQuestions[0].IsActive)
}

func TestLoaderRejectsInvalidCorpus(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown company category",
			content: "companies:\n  - {id: acme, name: Acme, category: Retail}\n",
			wantErr: `unknown category "Retail"`,
		},
		{
			name:    "duplicate skill",
			content: "skills:\n  - {id: go, name: Go, category: Languages, level: advanced}\n  - {id: go, name: Golang, category: Languages, level: advanced}\n",
			wantErr: "duplicate id",
		},
		{
			name:    "mcq answer out of range",
			content: "questions:\n  - {question: Q?, type: mcq, difficulty: easy, options: [a, b], correct_answer: 2}\n",
			wantErr: "out of range",
		},
		{
			name:    "unknown question type",
			content: "questions:\n  - {question: Q?, type: essay, difficulty: easy}\n",
			wantErr: `unknown type "essay"`,
		},
		{
			name:    "missing role name",
			content: "roles:\n  - {id: pm}\n",
			wantErr: "id and name are required",
		},
		{
			name:    "duplicate hr question",
			content: "hr_questions:\n  - {question: Why us?}\n  - {question: Why us?}\n",
			wantErr: "duplicate id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "corpus.yaml", tt.content)

			_, err := LoadDir(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoaderErrors(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.ErrorContains(t, err, "no seed files")

	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "companies: [")
	_, err = LoadDir(dir)
	assert.ErrorContains(t, err, "bad.yaml")
}
