package practice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func TestSuggestRoles(t *testing.T) {
	tests := []struct {
		pct  int
		want string
	}{
		{100, "Tech Lead"},
		{85, "Senior Software Engineer"},
		{84, "Software Engineer II"},
		{65, "Backend Engineer"},
		{40, "Junior Software Engineer"},
		{39, "Intern"},
		{0, "Associate Support Engineer"},
	}
	for _, tt := range tests {
		assert.Contains(t, SuggestRoles(tt.pct), tt.want, "pct=%d", tt.pct)
	}
}

func TestScore(t *testing.T) {
	questions := []PracticeQuestion{
		{ID: "1", Type: "mcq", Difficulty: "easy", Options: []string{"a", "b"}, CorrectAnswer: intp(1)},
		{ID: "2", Type: "mcq", Difficulty: "easy", Options: []string{"a", "b"}, CorrectAnswer: intp(0)},
		{ID: "3", Type: "coding", Difficulty: "hard"},
		{ID: "4", Type: "coding"},
	}
	answers := []*int{intp(1), intp(1), intp(1), nil}

	r := Score(questions, answers, true, time.Now())

	assert.Equal(t, 3, r.Score, "coding questions always score")
	assert.Equal(t, 4, r.TotalQuestions)
	assert.Equal(t, 75, r.Percentage)
	assert.Equal(t, 68, r.Confidence)
	assert.True(t, r.AutoSubmitted)
	assert.Contains(t, r.SuggestedRoles, "Software Engineer II")

	assert.Equal(t, DifficultyStat{Total: 2, Correct: 1, Accuracy: 50}, r.DifficultyStats["easy"])
	assert.Equal(t, DifficultyStat{Total: 1, Correct: 1, Accuracy: 100}, r.DifficultyStats["hard"])
	assert.Equal(t, DifficultyStat{Total: 1, Correct: 0, Accuracy: 0}, r.DifficultyStats["medium"])

	require.Len(t, r.Missed, 2)
	assert.Equal(t, "2", r.Missed[0].QuestionID)
	assert.Equal(t, "b", r.Missed[0].AnswerText)
	assert.Equal(t, 0, *r.Missed[0].CorrectAnswer)
	assert.Equal(t, "Not submitted", r.Missed[1].AnswerText)

	assert.Equal(t, []string{
		"Improve easy questions - accuracy 50%",
		"Improve medium questions - accuracy 0%",
		"Review missed questions and related topics",
	}, r.FocusAreas)
}

func TestScoreEmptyAndPerfect(t *testing.T) {
	empty := Score(nil, nil, false, time.Now())
	assert.Zero(t, empty.Percentage)
	assert.Equal(t, 20, empty.Confidence)
	assert.Equal(t, []string{"Keep practicing to maintain performance"}, empty.FocusAreas)

	perfect := Score([]PracticeQuestion{
		{ID: "1", Type: "mcq", Difficulty: "medium", Options: []string{"x"}, CorrectAnswer: intp(0)},
	}, []*int{intp(0)}, false, time.Now())
	assert.Equal(t, 100, perfect.Percentage)
	assert.Equal(t, 90, perfect.Confidence)
	assert.Empty(t, perfect.Missed)
}

func TestScoreUnansweredCoding(t *testing.T) {
	tests := []struct {
		name        string
		answer      *int
		wantCorrect int
		wantMissed  int
	}{
		{name: "not submitted", answer: nil, wantCorrect: 0, wantMissed: 1},
		{name: "submitted", answer: intp(1), wantCorrect: 1, wantMissed: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Score([]PracticeQuestion{{ID: "c1", Type: "coding"}}, []*int{tt.answer}, false, time.Now())

			assert.Equal(t, 1, r.Score)
			assert.Equal(t, 100, r.Percentage)
			assert.Equal(t, tt.wantCorrect, r.DifficultyStats["medium"].Correct)
			assert.Len(t, r.Missed, tt.wantMissed)
		})
	}
}

func TestEvaluateCode(t *testing.T) {
	long := "function twoSum(nums, target) {\n  const seen = {};\n  return [];\n}"
	assert.True(t, EvaluateCode(long).Passed)
	assert.Equal(t, RunPassedMessage, EvaluateCode(long).Message)

	assert.False(t, EvaluateCode("return 1").Passed, "too short")
	assert.False(t, EvaluateCode("function twoSum(nums, target) { const seen = {}; console.log(seen) }").Passed, "no return")
	assert.Equal(t, RunFailedMessage, EvaluateCode("").Message)
}
