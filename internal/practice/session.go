package practice

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/careerlens/careerlens-api/internal/models"
)

// Errors returned by session operations
var (
	ErrSessionNotFound = errors.New("practice session not found")
	ErrNotReady        = errors.New("practice session is still loading")
	ErrAlreadyEnded    = errors.New("practice session already submitted")
	ErrOutOfRange      = errors.New("question index out of range")
	ErrInvalidAnswer   = errors.New("answer is not a valid option")
	ErrWrongType       = errors.New("operation does not apply to this question type")
	ErrCodeNotPassed   = errors.New("run the code successfully before submitting")
	ErrLoadFailed      = errors.New("practice session failed to load")
)

// TestState is the lifecycle state of a practice test
type TestState string

const (
	TestLoading    TestState = "loading"
	TestInProgress TestState = "in_progress"
	TestSubmitted  TestState = "submitted"
	TestFailed     TestState = "failed" // no question set could be loaded
)

// Run heuristic messages
const (
	RunPassedMessage = "All test cases passed!"
	RunFailedMessage = "Test cases failed. Check your solution."

	minCodeLength = 50
)

// PracticeQuestion is one question of a practice test. The answer key stays
// server-side until results are computed.
type PracticeQuestion struct {
	ID            string            `json:"id"`
	Question      string            `json:"question"`
	Type          string            `json:"type"`
	Difficulty    string            `json:"difficulty"`
	Options       []string          `json:"options,omitempty"`
	CorrectAnswer *int              `json:"-"`
	Language      string            `json:"language,omitempty"`
	StarterCode   string            `json:"starterCode,omitempty"`
	Examples      []models.Example  `json:"examples,omitempty"`
	Constraints   []string          `json:"constraints,omitempty"`
	TestCases     []models.TestCase `json:"testCases,omitempty"`
}

func (q *PracticeQuestion) IsMCQ() bool {
	return q.Type == models.QuestionMCQ
}

// FromBank converts a bank question
func FromBank(q *models.Question) PracticeQuestion {
	pq := PracticeQuestion{
		ID:          q.ID,
		Question:    q.Question,
		Type:        q.Type,
		Difficulty:  q.Difficulty,
		Options:     q.Options,
		Language:    q.Language,
		StarterCode: q.StarterCode,
		Examples:    q.Examples,
		Constraints: q.Constraints,
		TestCases:   q.TestCases,
	}
	if q.IsMCQ() {
		answer := q.CorrectAnswer
		pq.CorrectAnswer = &answer
	}
	return pq
}

// FromGenerated converts a normalized generated question. Generated ids may
// be numbers or strings.
func FromGenerated(q *models.GeneratedQuestion, index int) PracticeQuestion {
	id := strings.Trim(strings.TrimSpace(string(q.ID)), `"`)
	if id == "" || id == "null" {
		id = strconv.Itoa(index + 1)
	}
	return PracticeQuestion{
		ID:            id,
		Question:      q.Question,
		Type:          q.Type,
		Difficulty:    q.Difficulty,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Language:      q.Language,
		StarterCode:   q.StarterCode,
		Examples:      q.Examples,
		Constraints:   q.Constraints,
		TestCases:     q.TestCases,
	}
}

// RunResult is the outcome of the run-code heuristic
type RunResult struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// EvaluateCode applies the run heuristic: the code must contain a return
// statement and be longer than 50 characters.
func EvaluateCode(code string) RunResult {
	if strings.Contains(code, "return") && len(code) > minCodeLength {
		return RunResult{Passed: true, Message: RunPassedMessage}
	}
	return RunResult{Passed: false, Message: RunFailedMessage}
}

// TestSession is a timed practice test. All methods are safe for concurrent use.
type TestSession struct {
	ID        string
	CreatedAt time.Time

	mu            sync.Mutex
	state         TestState
	source        string
	loadErr       string
	questions     []PracticeQuestion
	answers       []*int
	code          []string
	runs          []*RunResult
	index         int
	results       *Results
	submittedAt   time.Time
	autoSubmitted bool

	countdown *Countdown
	events    *broadcaster
	ready     chan struct{}
}

func newTestSession(id string, total time.Duration) *TestSession {
	s := &TestSession{
		ID:        id,
		CreatedAt: time.Now(),
		state:     TestLoading,
		events:    newBroadcaster(),
		ready:     make(chan struct{}),
	}
	s.countdown = NewCountdown(total, time.Second,
		func(remaining time.Duration) { s.events.publish(tickEvent(seconds(remaining))) },
		func(uint64) { s.expire() },
	)
	return s
}

func seconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}

// load moves the session to InProgress with a fresh answer sheet and starts
// the global countdown
func (s *TestSession) load(questions []PracticeQuestion, source string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != TestLoading {
		return
	}
	s.questions = questions
	s.source = source
	s.answers = make([]*int, len(questions))
	s.code = make([]string, len(questions))
	for i, q := range questions {
		s.code[i] = q.StarterCode
	}
	s.runs = make([]*RunResult, len(questions))
	s.index = 0
	s.state = TestInProgress
	s.countdown.Start()
	close(s.ready)

	s.events.publish(Event{Type: EventReady})
	slog.Info("practice test ready", "session_id", s.ID, "questions", len(questions), "source", source)
}

func (s *TestSession) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != TestLoading {
		return
	}
	s.state = TestFailed
	s.loadErr = err.Error()
	close(s.ready)
	s.events.close()
	slog.Error("practice test failed to load", "session_id", s.ID, "error", err)
}

// Ready is closed once the session leaves Loading
func (s *TestSession) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe returns the session's event feed
func (s *TestSession) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// active checks the session accepts answers; callers hold mu
func (s *TestSession) active() error {
	switch s.state {
	case TestLoading:
		return ErrNotReady
	case TestSubmitted:
		return ErrAlreadyEnded
	case TestFailed:
		return fmt.Errorf("%w: %s", ErrLoadFailed, s.loadErr)
	}
	return nil
}

// SelectAnswer records an option for the current MCQ question
func (s *TestSession) SelectAnswer(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active(); err != nil {
		return err
	}
	q := &s.questions[s.index]
	if !q.IsMCQ() {
		return ErrWrongType
	}
	if option < 0 || option >= len(q.Options) {
		return ErrInvalidAnswer
	}
	s.answers[s.index] = &option
	return nil
}

// RunCode stores code for the current coding question and evaluates it
func (s *TestSession) RunCode(code string) (RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active(); err != nil {
		return RunResult{}, err
	}
	if s.questions[s.index].IsMCQ() {
		return RunResult{}, ErrWrongType
	}
	s.code[s.index] = code
	if strings.TrimSpace(code) == "" {
		s.runs[s.index] = nil
		return EvaluateCode(code), nil
	}
	result := EvaluateCode(code)
	s.runs[s.index] = &result
	return result, nil
}

// SubmitCode marks the current coding question answered and advances unless
// it is the last question. It requires a passing run.
func (s *TestSession) SubmitCode() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.active(); err != nil {
		return err
	}
	if s.questions[s.index].IsMCQ() {
		return ErrWrongType
	}
	if run := s.runs[s.index]; run == nil || !run.Passed {
		return ErrCodeNotPassed
	}
	answered := 1
	s.answers[s.index] = &answered
	if s.index < len(s.questions)-1 {
		s.index++
	}
	return nil
}

// Jump moves to question i
func (s *TestSession) Jump(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.jumpLocked(i)
}

func (s *TestSession) Next() error {
	return s.step(1)
}

func (s *TestSession) Previous() error {
	return s.step(-1)
}

func (s *TestSession) step(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jumpLocked(s.index + delta)
}

func (s *TestSession) jumpLocked(i int) error {
	if err := s.active(); err != nil {
		return err
	}
	if i < 0 || i >= len(s.questions) {
		return ErrOutOfRange
	}
	s.index = i
	return nil
}

// Submit scores the test and moves it to Submitted. Only the first call
// transitions; later calls return the same results.
func (s *TestSession) Submit() (*Results, error) {
	return s.submit(false)
}

func (s *TestSession) expire() {
	if _, err := s.submit(true); err != nil {
		slog.Warn("practice auto-submit skipped", "session_id", s.ID, "error", err)
	}
}

func (s *TestSession) submit(auto bool) (*Results, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case TestSubmitted:
		return s.results, nil
	case TestLoading:
		return nil, ErrNotReady
	case TestFailed:
		return nil, fmt.Errorf("%w: %s", ErrLoadFailed, s.loadErr)
	}

	s.countdown.Stop()
	s.state = TestSubmitted
	s.submittedAt = time.Now()
	s.autoSubmitted = auto
	s.results = Score(s.questions, s.answers, auto, s.submittedAt)

	s.events.publish(Event{Type: EventSubmitted, AutoSubmitted: &auto})
	s.events.close()

	slog.Info("practice test submitted",
		"session_id", s.ID,
		"score", s.results.Score,
		"total", s.results.TotalQuestions,
		"auto", auto,
	)
	return s.results, nil
}

// Results returns the scored view once submitted
func (s *TestSession) Results() (*Results, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != TestSubmitted {
		if err := s.active(); err != nil {
			return nil, err
		}
		return nil, ErrNotReady
	}
	return s.results, nil
}

// release stops the countdown and closes subscribers
func (s *TestSession) release() {
	s.countdown.Stop()
	s.events.close()
}

// finishedBefore reports whether the session ended before t
func (s *TestSession) finishedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case TestSubmitted:
		return s.submittedAt.Before(t)
	case TestFailed:
		return s.CreatedAt.Before(t)
	}
	return false
}

// TestView is the client-facing snapshot of a practice test
type TestView struct {
	ID               string             `json:"id"`
	State            TestState          `json:"state"`
	Source           string             `json:"source,omitempty"`
	Error            string             `json:"error,omitempty"`
	Questions        []PracticeQuestion `json:"questions"`
	CurrentIndex     int                `json:"currentIndex"`
	Answers          []*int             `json:"answers"`
	Code             []string           `json:"code"`
	LastRun          *RunResult         `json:"lastRun"`
	AnsweredCount    int                `json:"answeredCount"`
	RemainingSeconds int                `json:"remainingSeconds"`
	AutoSubmitted    bool               `json:"autoSubmitted"`
	CreatedAt        time.Time          `json:"createdAt"`
	SubmittedAt      *time.Time         `json:"submittedAt,omitempty"`
}

// View returns a snapshot of the session
func (s *TestSession) View() *TestView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &TestView{
		ID:               s.ID,
		State:            s.state,
		Source:           s.source,
		Error:            s.loadErr,
		Questions:        append([]PracticeQuestion{}, s.questions...),
		CurrentIndex:     s.index,
		Answers:          append([]*int{}, s.answers...),
		Code:             append([]string{}, s.code...),
		RemainingSeconds: seconds(s.countdown.Remaining()),
		AutoSubmitted:    s.autoSubmitted,
		CreatedAt:        s.CreatedAt,
	}
	if s.state == TestInProgress {
		v.LastRun = s.runs[s.index]
	}
	for _, a := range s.answers {
		if a != nil {
			v.AnsweredCount++
		}
	}
	if !s.submittedAt.IsZero() {
		at := s.submittedAt
		v.SubmittedAt = &at
	}
	return v
}

// MarshalJSON encodes the session as its view
func (s *TestSession) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View())
}
