package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/careerlens/careerlens-api/internal/practice"
)

// respondPracticeError maps practice and interview session errors
func respondPracticeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, practice.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "Practice session not found")
		return
	case errors.Is(err, practice.ErrOutOfRange),
		errors.Is(err, practice.ErrInvalidAnswer),
		errors.Is(err, practice.ErrWrongType):
		status = http.StatusBadRequest
	case errors.Is(err, practice.ErrNotReady),
		errors.Is(err, practice.ErrAlreadyEnded),
		errors.Is(err, practice.ErrLoadFailed),
		errors.Is(err, practice.ErrCodeNotPassed),
		errors.Is(err, practice.ErrMediaNotReady),
		errors.Is(err, practice.ErrNoAudioTrack),
		errors.Is(err, practice.ErrAlreadyRecording),
		errors.Is(err, practice.ErrNotRecording),
		errors.Is(err, practice.ErrInterviewEnded):
		status = http.StatusConflict
	default:
		respondServiceError(w, r, err, "Practice session error")
		return
	}
	respondError(w, status, capitalize(err.Error()))
}

func capitalize(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func (s *Server) testSession(w http.ResponseWriter, r *http.Request) (*practice.TestSession, bool) {
	session, err := s.practice.Test(chi.URLParam(r, "id"))
	if err != nil {
		respondPracticeError(w, r, err)
		return nil, false
	}
	return session, true
}

func (s *Server) interviewSession(w http.ResponseWriter, r *http.Request) (*practice.InterviewSession, bool) {
	session, err := s.practice.Interview(chi.URLParam(r, "id"))
	if err != nil {
		respondPracticeError(w, r, err)
		return nil, false
	}
	return session, true
}

// Practice test handlers

func (s *Server) handleStartTest(w http.ResponseWriter, r *http.Request) {
	var opts practice.StartOptions
	if !s.bind(w, r, &opts, "Invalid practice test options") {
		return
	}
	session := s.practice.StartTest(opts)
	respondJSON(w, http.StatusCreated, session.View())
}

func (s *Server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	session, ok := s.testSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

type selectAnswerRequest struct {
	Option *int `json:"option" validate:"required,min=0"`
}

func (s *Server) handleSelectAnswer(w http.ResponseWriter, r *http.Request) {
	session, ok := s.testSession(w, r)
	if !ok {
		return
	}
	var req selectAnswerRequest
	if !s.bind(w, r, &req, "Option index is required") {
		return
	}
	if err := session.SelectAnswer(*req.Option); err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

type runCodeRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleRunCode(w http.ResponseWriter, r *http.Request) {
	session, ok := s.testSession(w, r)
	if !ok {
		return
	}
	var req runCodeRequest
	if !s.bind(w, r, &req, "Code is required") {
		return
	}
	result, err := session.RunCode(req.Code)
	if err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSubmitCode(w http.ResponseWriter, r *http.Request) {
	session, ok := s.testSession(w, r)
	if !ok {
		return
	}
	if err := session.SubmitCode(); err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

type navigateRequest struct {
	Action string `json:"action" validate:"required,oneof=next previous jump"`
	Index  *int   `json:"index" validate:"required_if=Action jump"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	session, ok := s.testSession(w, r)
	if !ok {
		return
	}
	var req navigateRequest
	if !s.bind(w, r, &req, "Action must be next, previous or jump with an index") {
		return
	}

	var err error
	switch req.Action {
	case "next":
		err = session.Next()
	case "previous":
		err = session.Previous()
	case "jump":
		err = session.Jump(*req.Index)
	}
	if err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

func (s *Server) handleSubmitTest(w http.ResponseWriter, r *http.Request) {
	session, ok := s.testSession(w, r)
	if !ok {
		return
	}
	results, err := session.Submit()
	if err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (s *Server) handleTestResults(w http.ResponseWriter, r *http.Request) {
	session, ok := s.testSession(w, r)
	if !ok {
		return
	}
	results, err := session.Results()
	if err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

// Mock interview handlers

func (s *Server) handleOpenInterview(w http.ResponseWriter, r *http.Request) {
	session := s.practice.OpenInterview(r.Context())
	respondJSON(w, http.StatusCreated, session.View())
}

func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

func (s *Server) handleInterviewMedia(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	var grant practice.MediaGrant
	if !s.bind(w, r, &grant, "Invalid media grant") {
		return
	}
	if err := session.MediaGranted(grant); err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

func (s *Server) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	rec, err := session.StartRecording()
	if err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

type stopRecordingRequest struct {
	ClientRef string `json:"blobUrl"`
}

func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	var req stopRecordingRequest
	if !s.bind(w, r, &req, "Invalid recording reference") {
		return
	}
	rec, err := session.StopRecording(req.ClientRef)
	if err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

type clientRefRequest struct {
	ClientRef string `json:"blobUrl" validate:"required"`
}

func (s *Server) handleAttachClientRef(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	var req clientRefRequest
	if !s.bind(w, r, &req, "blobUrl is required") {
		return
	}
	if !session.AttachClientRef(chi.URLParam(r, "recordingId"), req.ClientRef) {
		respondError(w, http.StatusNotFound, "Recording not found")
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

func (s *Server) handleInterviewNext(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	if err := session.Next(); err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

func (s *Server) handleInterviewPrevious(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	if err := session.Previous(); err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, session.View())
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	prompt, err := session.Speak()
	if err != nil {
		respondPracticeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"prompt": prompt})
}

func (s *Server) handleEndInterview(w http.ResponseWriter, r *http.Request) {
	session, ok := s.interviewSession(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"sessionId":  session.ID,
		"recordings": session.End(),
	})
}
