package models

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

// AssessmentStatus represents the lifecycle state of an assessment
type AssessmentStatus string

const (
	AssessmentOpen      AssessmentStatus = "open"      // Created, no answers yet
	AssessmentCompleted AssessmentStatus = "completed" // Answers scored
)

// Assessment is one candidate's test session, addressed by SessionID.
// SessionID is assigned at creation and never reassigned.
type Assessment struct {
	SessionID        string            `json:"sessionId"`
	CompanyID        string            `json:"companyId"`
	RoleID           string            `json:"roleId"`
	SelectedSkills   []string          `json:"selectedSkills"`
	Answers          []Answer          `json:"answers"`
	Score            int               `json:"score"`
	TotalQuestions   int               `json:"totalQuestions"`
	Percentage       int               `json:"percentage"`
	SkillGapAnalysis *SkillGapAnalysis `json:"skillGapAnalysis,omitempty"`
	LearningRoadmap  *LearningRoadmap  `json:"learningRoadmap,omitempty"`
	CompletedAt      *time.Time        `json:"completedAt"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// Status derives the lifecycle state from CompletedAt
func (a *Assessment) Status() AssessmentStatus {
	if a.CompletedAt == nil {
		return AssessmentOpen
	}
	return AssessmentCompleted
}

// Answer is one scored answer inside an assessment
type Answer struct {
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
	IsCorrect  bool            `json:"isCorrect"`
	TimeSpent  int             `json:"timeSpent"`
}

// AnswerInput is one answer as submitted by the client
type AnswerInput struct {
	QuestionID string          `json:"questionId"`
	Answer     json.RawMessage `json:"answer"`
	TimeSpent  *int            `json:"timeSpent,omitempty"`
}

// CreateAssessmentRequest starts a new assessment
type CreateAssessmentRequest struct {
	CompanyID      string   `json:"companyId" validate:"required"`
	RoleID         string   `json:"roleId" validate:"required"`
	SelectedSkills []string `json:"selectedSkills"`
}

// CreateAssessmentResponse is returned after creating an assessment
type CreateAssessmentResponse struct {
	SessionID  string      `json:"sessionId"`
	Assessment *Assessment `json:"assessment"`
}

// SubmitAssessmentRequest carries the candidate's answers
type SubmitAssessmentRequest struct {
	Answers []AnswerInput `json:"answers" validate:"required,min=1"`
}

// SubmitResult is returned after scoring a submission
type SubmitResult struct {
	SessionID        string            `json:"sessionId"`
	Score            int               `json:"score"`
	TotalQuestions   int               `json:"totalQuestions"`
	Percentage       int               `json:"percentage"`
	SkillGapAnalysis *SkillGapAnalysis `json:"skillGapAnalysis"`
	LearningRoadmap  *LearningRoadmap  `json:"learningRoadmap"`
}

// Percentage returns round(score/total*100), or 0 when total is 0
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(total) * 100))
}

// NewSessionID returns a random v4 UUID used as an assessment session identifier
func NewSessionID() string {
	return uuid.NewString()
}
