package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careerlens/careerlens-api/internal/assessment"
	"github.com/careerlens/careerlens-api/internal/models"
)

func (s *Server) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	list, err := s.assessments.List(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch assessments")
		return
	}
	respondWithMessage(w, list, assessment.ListMessage)
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssessmentRequest
	if !s.bind(w, r, &req, assessment.ErrMissingIDs.Message) {
		return
	}

	a, err := s.assessments.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, r, err, "Failed to create assessment")
		return
	}
	respondJSON(w, http.StatusOK, models.CreateAssessmentResponse{
		SessionID:  a.SessionID,
		Assessment: a,
	})
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.assessments.Get(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch assessment")
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleSubmitAssessment(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAssessmentRequest
	if !s.bind(w, r, &req, assessment.ErrMissingAnswers.Message) {
		return
	}

	result, err := s.assessments.Submit(r.Context(), chi.URLParam(r, "sessionId"), req.Answers)
	if err != nil {
		respondServiceError(w, r, err, "Failed to submit assessment")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
