package api

import (
	"net/http"

	"github.com/careerlens/careerlens-api/internal/advisor"
	"github.com/careerlens/careerlens-api/internal/models"
)

// AI advisory handlers. Without a provider key each route answers with its
// canned payload instead of failing.

func (s *Server) handleInterviewFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.InterviewFeedbackRequest
	if !s.bind(w, r, &req, "Role ID, question, and answer are required") {
		return
	}

	if !s.advisor.Enabled() {
		respondWithMessage(w, advisor.MockInterviewFeedback(), advisor.MockDataMessage)
		return
	}

	feedback, err := s.advisor.AnalyzeInterview(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to analyze interview performance")
		return
	}
	respondJSON(w, http.StatusOK, feedback)
}

func (s *Server) handleGenerateInterviewQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateInterviewQuestionsRequest
	if !s.bind(w, r, &req, "Role ID is required") {
		return
	}

	if !s.advisor.Enabled() {
		respondWithMessage(w, advisor.MockInterviewQuestions(), advisor.MockDataMessage)
		return
	}

	set, err := s.advisor.GenerateInterviewQuestions(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate interview questions")
		return
	}
	respondJSON(w, http.StatusOK, set)
}

func (s *Server) handleCoachChat(w http.ResponseWriter, r *http.Request) {
	var req models.CoachChatRequest
	if !s.bind(w, r, &req, "Messages array is required") {
		return
	}

	if !s.advisor.Enabled() {
		respondWithMessage(w, advisor.MockCoachReply(), advisor.MockResponseMessage)
		return
	}

	reply, err := s.advisor.ChatWithCoach(r.Context(), req.Messages, req.Context)
	if err != nil {
		respondServiceError(w, r, err, "Failed to get coach response")
		return
	}

	var echo any = map[string]any{}
	if req.Context != nil {
		echo = req.Context
	}
	respondJSON(w, http.StatusOK, models.CoachReply{Message: reply, Context: echo})
}

func (s *Server) handleGenerateTestQuestions(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateTestQuestionsRequest
	if !s.bind(w, r, &req, "Invalid request") {
		return
	}

	if !s.advisor.Enabled() {
		respondWithMessage(w, advisor.EmptyTestSet(), advisor.EmptyQuestionMessage)
		return
	}

	set, err := s.advisor.GenerateTestQuestions(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to generate test questions")
		return
	}
	respondJSON(w, http.StatusOK, set)
}
