package models

import "encoding/json"

// Question types
const (
	QuestionMCQ    = "mcq"
	QuestionCoding = "coding"
)

// Difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Example is a worked input/output pair shown with a coding problem
type Example struct {
	Input       string `json:"input" yaml:"input"`
	Output      string `json:"output" yaml:"output"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation"`
}

// TestCase is an input with its expected output
type TestCase struct {
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"expectedOutput,omitempty" yaml:"expected_output"`
	Output         string `json:"output,omitempty" yaml:"output"`
	Explanation    string `json:"explanation,omitempty" yaml:"explanation"`
}

// Question is an assessment question. CorrectAnswer is the zero-based option
// index for MCQ questions and is never serialized.
type Question struct {
	ID            string     `json:"id" yaml:"id"`
	Question      string     `json:"question" yaml:"question"`
	Type          string     `json:"type" yaml:"type"`
	Difficulty    string     `json:"difficulty" yaml:"difficulty"`
	Options       []string   `json:"options,omitempty" yaml:"options"`
	CorrectAnswer int        `json:"-" yaml:"correct_answer"`
	Language      string     `json:"language,omitempty" yaml:"language"`
	Examples      []Example  `json:"examples,omitempty" yaml:"examples"`
	Constraints   []string   `json:"constraints,omitempty" yaml:"constraints"`
	StarterCode   string     `json:"starterCode,omitempty" yaml:"starter_code"`
	TestCases     []TestCase `json:"testCases,omitempty" yaml:"test_cases"`
	Tags          []string   `json:"tags,omitempty" yaml:"tags"`
	RoleID        *string    `json:"roleId" yaml:"role_id"`
	IsActive      bool       `json:"isActive" yaml:"-"`
}

// IsMCQ reports whether the question is scored by option index
func (q *Question) IsMCQ() bool {
	return q.Type == QuestionMCQ
}

// IsCorrect reports whether the raw JSON answer is correct.
// MCQ answers must be a JSON number equal to the stored index.
// Coding answers are not executed and always count as correct.
func (q *Question) IsCorrect(answer json.RawMessage) bool {
	if !q.IsMCQ() {
		return true
	}
	var idx *float64
	if err := json.Unmarshal(answer, &idx); err != nil || idx == nil {
		return false
	}
	return *idx == float64(q.CorrectAnswer)
}

// ValidationResult is returned by the single-question validate endpoint.
// CorrectAnswer is nil for coding questions.
type ValidationResult struct {
	IsCorrect     bool `json:"isCorrect"`
	CorrectAnswer *int `json:"correctAnswer"`
}

// HRQuestion is a behavioral prompt from the HR bank
type HRQuestion struct {
	ID         string   `json:"id" yaml:"id"`
	Question   string   `json:"question" yaml:"question"`
	Tags       []string `json:"tags" yaml:"tags"`
	Difficulty string   `json:"difficulty,omitempty" yaml:"difficulty"`
	IsActive   bool     `json:"isActive" yaml:"-"`
}

// TechQuestion is a CS fundamentals prompt, optionally with a full coding problem
type TechQuestion struct {
	ID          string     `json:"id" yaml:"id"`
	Question    string     `json:"question" yaml:"question"`
	Type        string     `json:"type,omitempty" yaml:"type"`
	Tags        []string   `json:"tags" yaml:"tags"`
	Difficulty  string     `json:"difficulty" yaml:"difficulty"`
	Description string     `json:"description,omitempty" yaml:"description"`
	Constraints []string   `json:"constraints,omitempty" yaml:"constraints"`
	Examples    []Example  `json:"examples,omitempty" yaml:"examples"`
	TestCases   []TestCase `json:"testCases,omitempty" yaml:"test_cases"`
	StarterCode string     `json:"starterCode,omitempty" yaml:"starter_code"`
	Hints       []string   `json:"hints,omitempty" yaml:"hints"`
	IsActive    bool       `json:"isActive" yaml:"-"`
}
