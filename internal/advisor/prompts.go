package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/careerlens/careerlens-api/internal/models"
)

const (
	systemSkillGaps  = "You are an experienced technical recruiter and career coach. Reply with a single valid JSON object."
	systemRoadmap    = "You design practical study plans. Reply with a single valid JSON object."
	systemInterview  = "You evaluate technical interviews and give constructive feedback. Reply with a single valid JSON object."
	systemQuestions  = "You write realistic interview questions. Reply with a single valid JSON object."
	systemTestWriter = "You are a JSON generator for interview questions."
)

func skillGapsPrompt(a *models.Assessment) string {
	var b strings.Builder
	b.WriteString("Analyze the skill gaps of a candidate from their assessment.\n\n")
	fmt.Fprintf(&b, "Company: %s\nRole: %s\n", a.CompanyID, a.RoleID)
	fmt.Fprintf(&b, "Selected skills: %s\n", strings.Join(a.SelectedSkills, ", "))
	fmt.Fprintf(&b, "Score: %d/%d (%d%%)\n\n", a.Score, a.TotalQuestions, models.Percentage(a.Score, a.TotalQuestions))
	b.WriteString(`Return JSON:
{
  "overallConfidence": 0-100,
  "skillBreakdown": [{"name": "", "category": "", "proficiency": 0-100, "level": "BEGINNER|INTERMEDIATE|ADVANCED", "note": "", "noteType": "success|info|warning"}],
  "missingSkills": [{"name": "", "priority": "HIGH|MEDIUM|LOW", "reason": ""}],
  "recommendations": ""
}
Prioritize gaps that matter most for this role at this company.`)
	return b.String()
}

func roadmapPrompt(analysis *models.SkillGapAnalysis, roleID string) string {
	data, _ := json.MarshalIndent(analysis, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Build an 8-week learning roadmap for the role %q from this skill-gap analysis:\n\n", roleID)
	b.Write(data)
	b.WriteString(`

Return JSON:
{
  "roadmap": [{"week": 1, "title": "", "focusSkills": [], "activities": [], "resources": [], "estimatedHours": 0}],
  "totalEstimatedHours": 0,
  "keyMilestones": []
}`)
	return b.String()
}

func interviewPrompt(req *models.InterviewFeedbackRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Role: %s\nQuestion: %s\nAnswer: %s\n", req.RoleID, req.QuestionAsked, req.AnswerGiven)
	if req.Transcript != "" {
		fmt.Fprintf(&b, "\nFull transcript:\n%s\n", req.Transcript)
	}
	if len(req.VideoAnalysis) > 0 && string(req.VideoAnalysis) != "null" {
		fmt.Fprintf(&b, "\nVideo analysis:\n%s\n", req.VideoAnalysis)
	}
	b.WriteString(`
Score the answer from 0 to 100 on relevance, technical knowledge, communication clarity and confidence.
Return JSON:
{
  "scores": {"answerRelevance": 0, "technicalKnowledge": 0, "communicationClarity": 0, "confidence": 0},
  "feedback": {"strengths": [], "weaknesses": [], "improvements": []},
  "overallScore": 0,
  "recommendation": ""
}`)
	return b.String()
}

func coachSystemPrompt(ctx *models.CoachContext) string {
	var b strings.Builder
	b.WriteString("You are an AI career coach helping job seekers build skills and prepare for interviews.\n")
	if ctx != nil {
		if ctx.RoleID != "" {
			fmt.Fprintf(&b, "The user is preparing for: %s\n", ctx.RoleID)
		}
		if ctx.CompanyID != "" {
			fmt.Fprintf(&b, "Target company: %s\n", ctx.CompanyID)
		}
		if len(ctx.SkillGaps) > 0 && string(ctx.SkillGaps) != "null" {
			fmt.Fprintf(&b, "Skill gaps identified: %s\n", ctx.SkillGaps)
		}
	}
	b.WriteString("Give practical, honest and encouraging advice with concrete next steps.")
	return b.String()
}

func interviewQuestionsPrompt(req *models.GenerateInterviewQuestionsRequest) string {
	at := ""
	if req.CompanyID != "" {
		at = " at " + req.CompanyID
	}
	return fmt.Sprintf(`Write %d interview questions for the role %q%s.
Difficulty: %s
Mix technical, behavioral and problem-solving questions.
Return JSON:
{
  "questions": [{"question": "", "type": "technical|behavioral|problem-solving", "difficulty": "easy|medium|hard", "tips": ""}]
}`, req.Count, req.RoleID, at, req.Difficulty)
}

func testQuestionsPrompt(req *models.GenerateTestQuestionsRequest) string {
	return fmt.Sprintf(`Generate %d interview/test questions about %q with %s difficulty.
Return ONLY valid JSON in this format:
{ "questions": [ { "id": 1, "question": "", "type": "mcq"|"coding", "difficulty": "easy"|"medium"|"hard",
  "options": ["a","b","c","d"], "correctAnswer": 0,
  "starterCode": "", "language": "javascript", "testCases": [{"input": "", "output": ""}] } ] }
MCQ items need options and a 0-based correctAnswer. Coding items need language and testCases.`,
		req.Count, req.Topic, req.Difficulty)
}
