package practice

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// Results is the scored view of a submitted practice test
type Results struct {
	Score           int                       `json:"score"`
	TotalQuestions  int                       `json:"totalQuestions"`
	Percentage      int                       `json:"percentage"`
	Confidence      int                       `json:"confidence"`
	DifficultyStats map[string]DifficultyStat `json:"difficultyStats"`
	Missed          []MissedQuestion          `json:"missed"`
	SuggestedRoles  []string                  `json:"suggestedRoles"`
	FocusAreas      []string                  `json:"focusAreas"`
	AutoSubmitted   bool                      `json:"autoSubmitted"`
	SubmittedAt     time.Time                 `json:"submittedAt"`
}

type DifficultyStat struct {
	Total    int `json:"total"`
	Correct  int `json:"correct"`
	Accuracy int `json:"accuracy"`
}

// MissedQuestion is a question answered wrongly or not at all.
// CorrectAnswer is only revealed once the test is submitted.
type MissedQuestion struct {
	Index         int    `json:"index"`
	QuestionID    string `json:"questionId"`
	Question      string `json:"question"`
	Type          string `json:"type"`
	Difficulty    string `json:"difficulty"`
	Answer        *int   `json:"answer"`
	AnswerText    string `json:"answerText"`
	CorrectAnswer *int   `json:"correctAnswer,omitempty"`
}

// Role suggestion tiers by percentage
var roleTiers = []struct {
	min   int
	roles []string
}{
	{85, []string{"Senior Software Engineer", "Senior Backend Engineer", "Tech Lead"}},
	{65, []string{"Software Engineer II", "Full-stack Engineer", "Backend Engineer"}},
	{40, []string{"Junior Software Engineer", "Associate Developer", "QA Engineer"}},
	{0, []string{"Intern", "Associate Support Engineer"}},
}

// SuggestRoles maps a percentage to a role list
func SuggestRoles(percentage int) []string {
	for _, tier := range roleTiers {
		if percentage >= tier.min {
			return slices.Clone(tier.roles)
		}
	}
	return slices.Clone(roleTiers[len(roleTiers)-1].roles)
}

// countsTowardScore reports whether a question adds to the score. Coding
// questions always count; only MCQ answers are graded.
func countsTowardScore(q *PracticeQuestion, answer *int) bool {
	if !q.IsMCQ() {
		return true
	}
	return answeredCorrectly(q, answer)
}

// answeredCorrectly drives the difficulty stats and the missed list. Coding
// questions count once their code has been submitted, which records the value 1.
func answeredCorrectly(q *PracticeQuestion, answer *int) bool {
	if answer == nil {
		return false
	}
	if q.IsMCQ() {
		return q.CorrectAnswer != nil && *answer == *q.CorrectAnswer
	}
	return *answer == 1
}

func answerText(q *PracticeQuestion, answer *int) string {
	if q.IsMCQ() {
		if answer == nil {
			return "Not answered"
		}
		if *answer >= 0 && *answer < len(q.Options) {
			return q.Options[*answer]
		}
		return fmt.Sprint(*answer)
	}
	switch {
	case answer == nil:
		return "Not submitted"
	case *answer == 1:
		return "Submitted (auto-graded pass)"
	default:
		return "Submitted"
	}
}

// Score computes the results view for questions and answers
func Score(questions []PracticeQuestion, answers []*int, autoSubmitted bool, at time.Time) *Results {
	r := &Results{
		TotalQuestions:  len(questions),
		DifficultyStats: make(map[string]DifficultyStat),
		Missed:          []MissedQuestion{},
		AutoSubmitted:   autoSubmitted,
		SubmittedAt:     at,
	}

	for i := range questions {
		q := &questions[i]
		var answer *int
		if i < len(answers) {
			answer = answers[i]
		}

		diff := q.Difficulty
		if diff == "" {
			diff = "medium"
		}
		stat := r.DifficultyStats[diff]
		stat.Total++

		if countsTowardScore(q, answer) {
			r.Score++
		}
		if answeredCorrectly(q, answer) {
			stat.Correct++
		} else {
			r.Missed = append(r.Missed, MissedQuestion{
				Index:         i,
				QuestionID:    q.ID,
				Question:      q.Question,
				Type:          q.Type,
				Difficulty:    diff,
				Answer:        answer,
				AnswerText:    answerText(q, answer),
				CorrectAnswer: q.CorrectAnswer,
			})
		}
		r.DifficultyStats[diff] = stat
	}

	r.Percentage = int(math.Round(float64(r.Score) / float64(max(len(questions), 1)) * 100))
	r.Confidence = min(100, max(20, int(math.Round(float64(r.Percentage)*0.9))))
	r.SuggestedRoles = SuggestRoles(r.Percentage)

	diffs := make([]string, 0, len(r.DifficultyStats))
	for diff, stat := range r.DifficultyStats {
		stat.Accuracy = int(math.Round(float64(stat.Correct) / float64(stat.Total) * 100))
		r.DifficultyStats[diff] = stat
		diffs = append(diffs, diff)
	}
	slices.Sort(diffs)

	r.FocusAreas = []string{}
	for _, diff := range diffs {
		if acc := r.DifficultyStats[diff].Accuracy; acc < 60 {
			r.FocusAreas = append(r.FocusAreas, fmt.Sprintf("Improve %s questions - accuracy %d%%", diff, acc))
		}
	}
	if len(r.Missed) > 0 {
		r.FocusAreas = append(r.FocusAreas, "Review missed questions and related topics")
	} else {
		r.FocusAreas = append(r.FocusAreas, "Keep practicing to maintain performance")
	}

	return r
}
