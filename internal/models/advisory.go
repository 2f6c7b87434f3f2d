package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Payloads produced by the AI advisory gateway. Each type validates its own
// shape so that provider output is checked before it reaches handlers or storage.

// SkillGapAnalysis is the AI opinion attached to a completed assessment
type SkillGapAnalysis struct {
	OverallConfidence float64            `json:"overallConfidence"`
	SkillBreakdown    []SkillProficiency `json:"skillBreakdown"`
	MissingSkills     []MissingSkill     `json:"missingSkills"`
	Recommendations   string             `json:"recommendations"`
}

type SkillProficiency struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Proficiency float64 `json:"proficiency"`
	Level       string  `json:"level"`
	Note        string  `json:"note"`
	NoteType    string  `json:"noteType"`
}

type MissingSkill struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// Validate checks ranges and required names
func (a *SkillGapAnalysis) Validate() error {
	if err := checkPercent("overallConfidence", a.OverallConfidence); err != nil {
		return err
	}
	for i, s := range a.SkillBreakdown {
		if s.Name == "" {
			return fmt.Errorf("skillBreakdown[%d]: name is empty", i)
		}
		if err := checkPercent(fmt.Sprintf("skillBreakdown[%d].proficiency", i), s.Proficiency); err != nil {
			return err
		}
	}
	for i, m := range a.MissingSkills {
		if m.Name == "" {
			return fmt.Errorf("missingSkills[%d]: name is empty", i)
		}
	}
	return nil
}

// LearningRoadmap is a week-by-week study plan derived from a skill-gap analysis
type LearningRoadmap struct {
	Roadmap             []RoadmapWeek `json:"roadmap"`
	TotalEstimatedHours float64       `json:"totalEstimatedHours"`
	KeyMilestones       []string      `json:"keyMilestones"`
}

type RoadmapWeek struct {
	Week           int      `json:"week"`
	Title          string   `json:"title"`
	FocusSkills    []string `json:"focusSkills"`
	Activities     []string `json:"activities"`
	Resources      []string `json:"resources"`
	EstimatedHours float64  `json:"estimatedHours"`
}

func (r *LearningRoadmap) Validate() error {
	if len(r.Roadmap) == 0 {
		return errors.New("roadmap is empty")
	}
	for i, w := range r.Roadmap {
		if w.Week < 1 {
			return fmt.Errorf("roadmap[%d]: week must be positive", i)
		}
		if w.EstimatedHours < 0 {
			return fmt.Errorf("roadmap[%d]: negative estimatedHours", i)
		}
	}
	if r.TotalEstimatedHours < 0 {
		return errors.New("negative totalEstimatedHours")
	}
	return nil
}

// InterviewFeedback scores one answered interview question
type InterviewFeedback struct {
	Scores         InterviewScores `json:"scores"`
	Feedback       FeedbackNotes   `json:"feedback"`
	OverallScore   float64         `json:"overallScore"`
	Recommendation string          `json:"recommendation"`
}

type InterviewScores struct {
	AnswerRelevance      float64 `json:"answerRelevance"`
	TechnicalKnowledge   float64 `json:"technicalKnowledge"`
	CommunicationClarity float64 `json:"communicationClarity"`
	Confidence           float64 `json:"confidence"`
}

type FeedbackNotes struct {
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	Improvements []string `json:"improvements"`
}

func (f *InterviewFeedback) Validate() error {
	checks := map[string]float64{
		"scores.answerRelevance":      f.Scores.AnswerRelevance,
		"scores.technicalKnowledge":   f.Scores.TechnicalKnowledge,
		"scores.communicationClarity": f.Scores.CommunicationClarity,
		"scores.confidence":           f.Scores.Confidence,
		"overallScore":                f.OverallScore,
	}
	for name, v := range checks {
		if err := checkPercent(name, v); err != nil {
			return err
		}
	}
	return nil
}

// InterviewQuestionSet is a generated list of interview prompts
type InterviewQuestionSet struct {
	Questions []InterviewQuestion `json:"questions"`
}

type InterviewQuestion struct {
	Question   string `json:"question"`
	Type       string `json:"type"`
	Difficulty string `json:"difficulty"`
	Tips       string `json:"tips"`
}

func (s *InterviewQuestionSet) Validate() error {
	if s.Questions == nil {
		return errors.New("questions array is missing")
	}
	for i, q := range s.Questions {
		if q.Question == "" {
			return fmt.Errorf("questions[%d]: question is empty", i)
		}
	}
	return nil
}

// GeneratedTestSet is a generated practice test. Unlike bank questions,
// generated questions carry their answer key because the client scores them.
type GeneratedTestSet struct {
	Questions []GeneratedQuestion `json:"questions"`
}

type GeneratedQuestion struct {
	ID            json.RawMessage `json:"id,omitempty"`
	Question      string          `json:"question"`
	Type          string          `json:"type"`
	Difficulty    string          `json:"difficulty"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer *int            `json:"correctAnswer,omitempty"`
	StarterCode   string          `json:"starterCode,omitempty"`
	Language      string          `json:"language,omitempty"`
	Examples      []Example       `json:"examples,omitempty"`
	Constraints   []string        `json:"constraints,omitempty"`
	TestCases     []TestCase      `json:"testCases,omitempty"`
}

func (s *GeneratedTestSet) Validate() error {
	if s.Questions == nil {
		return errors.New("questions array is missing")
	}
	for i, q := range s.Questions {
		if q.CorrectAnswer != nil && len(q.Options) > 0 && (*q.CorrectAnswer < 0 || *q.CorrectAnswer >= len(q.Options)) {
			return fmt.Errorf("questions[%d]: correctAnswer %d out of range", i, *q.CorrectAnswer)
		}
	}
	return nil
}

// ChatMessage is one turn of a coach conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CoachContext narrows the coach's system prompt
type CoachContext struct {
	RoleID    string          `json:"roleId,omitempty"`
	CompanyID string          `json:"companyId,omitempty"`
	SkillGaps json.RawMessage `json:"skillGaps,omitempty"`
}

// CoachReply is returned by the coach chat endpoint. Context echoes the
// request context, or the string "mock" for the canned reply.
type CoachReply struct {
	Message string `json:"message"`
	Context any    `json:"context"`
}

// InterviewFeedbackRequest is the body of the interview feedback endpoint
type InterviewFeedbackRequest struct {
	Transcript    string          `json:"transcript"`
	RoleID        string          `json:"roleId" validate:"required"`
	QuestionAsked string          `json:"questionAsked" validate:"required"`
	AnswerGiven   string          `json:"answerGiven" validate:"required"`
	VideoAnalysis json.RawMessage `json:"videoAnalysis,omitempty"`
}

// GenerateInterviewQuestionsRequest is the body of the interview question generator
type GenerateInterviewQuestionsRequest struct {
	RoleID     string `json:"roleId" validate:"required"`
	CompanyID  string `json:"companyId"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// CoachChatRequest is the body of the coach chat endpoint
type CoachChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1"`
	Context  *CoachContext `json:"context"`
}

// GenerateTestQuestionsRequest is the body of the practice-test generator
type GenerateTestQuestionsRequest struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

func checkPercent(name string, v float64) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s out of range: %v", name, v)
	}
	return nil
}
