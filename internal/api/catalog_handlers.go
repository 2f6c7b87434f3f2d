package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careerlens/careerlens-api/internal/catalog"
	"github.com/careerlens/careerlens-api/internal/models"
)

// Catalog handlers: companies, roles, skills, questions and the HR/tech banks

func filtersFromQuery(r *http.Request) models.CatalogFilters {
	q := r.URL.Query()
	return models.CatalogFilters{
		Category:   q.Get("category"),
		Search:     q.Get("search"),
		Level:      q.Get("level"),
		RoleID:     q.Get("roleId"),
		Type:       q.Get("type"),
		Difficulty: q.Get("difficulty"),
	}
}

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.catalog.ListCompanies(r.Context(), filtersFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch companies")
		return
	}
	respondJSON(w, http.StatusOK, companies)
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.catalog.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch company")
		return
	}
	respondJSON(w, http.StatusOK, company)
}

func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.catalog.ListRoles(r.Context(), filtersFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch roles")
		return
	}
	respondJSON(w, http.StatusOK, roles)
}

func (s *Server) handleGetRole(w http.ResponseWriter, r *http.Request) {
	role, err := s.catalog.GetRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch role")
		return
	}
	respondJSON(w, http.StatusOK, role)
}

func (s *Server) handleListSkills(w http.ResponseWriter, r *http.Request) {
	skills, err := s.catalog.ListSkills(r.Context(), filtersFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch skills")
		return
	}
	respondJSON(w, http.StatusOK, skills)
}

func (s *Server) handleGetSkill(w http.ResponseWriter, r *http.Request) {
	skill, err := s.catalog.GetSkill(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch skill")
		return
	}
	respondJSON(w, http.StatusOK, skill)
}

func (s *Server) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := s.catalog.ListQuestions(r.Context(), filtersFromQuery(r))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch questions")
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

func (s *Server) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := s.catalog.GetQuestion(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch question")
		return
	}
	respondJSON(w, http.StatusOK, question)
}

func (s *Server) handleRandomQuestions(w http.ResponseWriter, r *http.Request) {
	count := catalog.ParseCount(r.URL.Query().Get("count"), catalog.DefaultQuestionSize)
	questions, err := s.catalog.RandomQuestions(r.Context(), count)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch random questions")
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

type validateAnswerRequest struct {
	Answer json.RawMessage `json:"answer"`
}

func (s *Server) handleValidateAnswer(w http.ResponseWriter, r *http.Request) {
	var req validateAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := s.catalog.ValidateAnswer(r.Context(), chi.URLParam(r, "id"), req.Answer)
	if err != nil {
		respondServiceError(w, r, err, "Failed to validate answer")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRandomHRQuestions(w http.ResponseWriter, r *http.Request) {
	count := catalog.ParseCount(r.URL.Query().Get("count"), catalog.DefaultHRSize)
	questions, err := s.catalog.RandomHRQuestions(r.Context(), count)
	if err != nil {
		respondServiceError(w, r, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, questions)
}

func (s *Server) handleRandomTechQuestions(w http.ResponseWriter, r *http.Request) {
	count := catalog.ParseCount(r.URL.Query().Get("count"), catalog.DefaultTechSize)
	questions, err := s.catalog.RandomTechQuestions(r.Context(), count)
	if err != nil {
		respondServiceError(w, r, err, "Server error")
		return
	}
	respondJSON(w, http.StatusOK, questions)
}
