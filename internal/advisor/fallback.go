package advisor

import "github.com/careerlens/careerlens-api/internal/models"

// Envelope messages for canned replies
const (
	MockDataMessage      = "OpenAI not configured - returning mock data"
	MockResponseMessage  = "OpenAI not configured - returning mock response"
	EmptyQuestionMessage = "OpenAI not configured - returning empty question set"
)

const mockCoachReply = "I'm here to help you with your career preparation! However, OpenAI API is not configured. " +
	"Please set up your OPENAI_API_KEY to get personalized AI coaching."

// MockInterviewFeedback is returned by the feedback route without a provider key
func MockInterviewFeedback() *models.InterviewFeedback {
	return &models.InterviewFeedback{
		Scores: models.InterviewScores{
			AnswerRelevance:      75,
			TechnicalKnowledge:   70,
			CommunicationClarity: 80,
			Confidence:           72,
		},
		Feedback: models.FeedbackNotes{
			Strengths:    []string{"Clear articulation", "Good structure"},
			Weaknesses:   []string{"Could use more examples", "Technical depth could improve"},
			Improvements: []string{"Provide specific examples", "Explain technical concepts in detail"},
		},
		OverallScore:   74,
		Recommendation: "Good performance overall. Focus on providing more concrete examples and deeper technical explanations.",
	}
}

// MockInterviewQuestions is returned by the question generator without a provider key
func MockInterviewQuestions() *models.InterviewQuestionSet {
	return &models.InterviewQuestionSet{
		Questions: []models.InterviewQuestion{
			{
				Question:   "Tell me about yourself and why you're interested in this role.",
				Type:       "behavioral",
				Difficulty: models.DifficultyEasy,
				Tips:       "Look for clear communication, relevant experience, and genuine interest",
			},
			{
				Question:   "Describe a challenging project you worked on.",
				Type:       "behavioral",
				Difficulty: models.DifficultyMedium,
				Tips:       "Look for problem-solving skills, technical depth, and results",
			},
		},
	}
}

// MockCoachReply is returned by coach chat without a provider key
func MockCoachReply() *models.CoachReply {
	return &models.CoachReply{Message: mockCoachReply, Context: "mock"}
}

// EmptyTestSet is returned by the test generator without a provider key
func EmptyTestSet() *models.GeneratedTestSet {
	return &models.GeneratedTestSet{Questions: []models.GeneratedQuestion{}}
}
