package practice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careerlens/careerlens-api/internal/metrics"
	"github.com/careerlens/careerlens-api/internal/models"
)

// Question set defaults for a practice test
const (
	DefaultTopic          = "software engineering and programming"
	DefaultDifficulty     = "mixed"
	DefaultCount          = 10
	MaxCount              = 50
	InterviewQuestionSize = 10

	sourceGenerated = "generated"
	sourceBank      = "bank"
)

// Generator produces practice question sets
type Generator interface {
	Enabled() bool
	GenerateTestQuestions(ctx context.Context, req *models.GenerateTestQuestionsRequest) (*models.GeneratedTestSet, error)
}

// QuestionBank samples stored questions
type QuestionBank interface {
	RandomQuestions(ctx context.Context, count int) ([]*models.Question, error)
	RandomHRQuestions(ctx context.Context, count int) ([]*models.HRQuestion, error)
}

// StartOptions selects the question set of a practice test
type StartOptions struct {
	Topic      string `json:"topic"`
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

func (o *StartOptions) applyDefaults() {
	if o.Topic == "" {
		o.Topic = DefaultTopic
	}
	if o.Difficulty == "" {
		o.Difficulty = DefaultDifficulty
	}
	if o.Count <= 0 {
		o.Count = DefaultCount
	}
	o.Count = min(o.Count, MaxCount)
}

// Options configures a Manager
type Options struct {
	TotalTime    time.Duration // practice test countdown
	QuestionTime time.Duration // mock interview per-question countdown
	LoadTimeout  time.Duration
}

// Manager owns the in-memory practice tests and mock interviews
type Manager struct {
	gen  Generator
	bank QuestionBank
	opts Options

	mu         sync.RWMutex
	tests      map[string]*TestSession
	interviews map[string]*InterviewSession

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewManager creates a manager. gen may be nil.
func NewManager(gen Generator, bank QuestionBank, opts Options) *Manager {
	if opts.TotalTime <= 0 {
		opts.TotalTime = 2 * time.Hour
	}
	if opts.QuestionTime <= 0 {
		opts.QuestionTime = 60 * time.Second
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 90 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		gen:        gen,
		bank:       bank,
		opts:       opts,
		tests:      make(map[string]*TestSession),
		interviews: make(map[string]*InterviewSession),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// StartTest creates a practice test in Loading and loads its question set in
// the background. Wait on Ready to observe the transition.
func (m *Manager) StartTest(opts StartOptions) *TestSession {
	opts.applyDefaults()

	s := newTestSession(uuid.NewString(), m.opts.TotalTime)

	m.mu.Lock()
	m.tests[s.ID] = s
	m.mu.Unlock()
	metrics.PracticeSessions.WithLabelValues("test").Inc()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loadTest(s, opts)
	}()

	slog.Info("practice test started", "session_id", s.ID, "topic", opts.Topic, "count", opts.Count)
	return s
}

func (m *Manager) loadTest(s *TestSession, opts StartOptions) {
	ctx, cancel := context.WithTimeout(m.ctx, m.opts.LoadTimeout)
	defer cancel()

	questions, source, err := m.questionSet(ctx, opts)
	if err != nil {
		s.fail(err)
		return
	}
	s.load(questions, source)
}

// questionSet prefers a generated set and falls back to the question bank
func (m *Manager) questionSet(ctx context.Context, opts StartOptions) ([]PracticeQuestion, string, error) {
	if m.gen != nil && m.gen.Enabled() {
		set, err := m.gen.GenerateTestQuestions(ctx, &models.GenerateTestQuestionsRequest{
			Topic:      opts.Topic,
			Difficulty: opts.Difficulty,
			Count:      opts.Count,
		})
		switch {
		case err != nil:
			slog.Warn("question generation failed, using question bank", "error", err)
		case len(set.Questions) == 0:
			slog.Warn("question generation returned no questions, using question bank")
		default:
			questions := make([]PracticeQuestion, len(set.Questions))
			for i := range set.Questions {
				questions[i] = FromGenerated(&set.Questions[i], i)
			}
			return questions, sourceGenerated, nil
		}
	}

	if ctx.Err() != nil {
		return nil, "", ctx.Err()
	}
	bank, err := m.bank.RandomQuestions(ctx, opts.Count)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sample question bank: %w", err)
	}
	if len(bank) == 0 {
		return nil, "", errors.New("question bank is empty")
	}
	questions := make([]PracticeQuestion, len(bank))
	for i, q := range bank {
		questions[i] = FromBank(q)
	}
	return questions, sourceBank, nil
}

// Test returns a practice test by id
func (m *Manager) Test(id string) (*TestSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.tests[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// OpenInterview creates a mock interview over HR bank questions, or the
// default list when the bank is empty or unavailable
func (m *Manager) OpenInterview(ctx context.Context) *InterviewSession {
	var questions []string
	bank, err := m.bank.RandomHRQuestions(ctx, InterviewQuestionSize)
	if err != nil {
		slog.Warn("failed to fetch HR questions, using defaults", "error", err)
	}
	for _, q := range bank {
		if q.Question != "" {
			questions = append(questions, q.Question)
		}
	}

	s := newInterviewSession(uuid.NewString(), questions, m.opts.QuestionTime)

	m.mu.Lock()
	m.interviews[s.ID] = s
	m.mu.Unlock()
	metrics.PracticeSessions.WithLabelValues("interview").Inc()

	slog.Info("interview opened", "session_id", s.ID, "questions", len(s.questions))
	return s
}

// Interview returns a mock interview by id
func (m *Manager) Interview(id string) (*InterviewSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.interviews[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Counts returns the number of held tests and interviews
func (m *Manager) Counts() (tests, interviews int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tests), len(m.interviews)
}

// Reap drops sessions that finished more than retention ago and returns how
// many were removed. Interviews that were never ended are ended once they are
// older than retention plus one full test run.
func (m *Manager) Reap(retention time.Duration) int {
	now := time.Now()
	cutoff := now.Add(-retention)
	staleCutoff := cutoff.Add(-m.opts.TotalTime)

	m.mu.Lock()
	var tests []*TestSession
	for id, s := range m.tests {
		if s.finishedBefore(cutoff) {
			tests = append(tests, s)
			delete(m.tests, id)
		}
	}
	var interviews []*InterviewSession
	for id, s := range m.interviews {
		if s.endedBefore(cutoff) || s.CreatedAt.Before(staleCutoff) {
			interviews = append(interviews, s)
			delete(m.interviews, id)
		}
	}
	m.mu.Unlock()

	for _, s := range tests {
		s.release()
		metrics.PracticeSessions.WithLabelValues("test").Dec()
		slog.Debug("practice test reaped", "session_id", s.ID)
	}
	for _, s := range interviews {
		s.End()
		metrics.PracticeSessions.WithLabelValues("interview").Dec()
		slog.Debug("interview reaped", "session_id", s.ID)
	}
	return len(tests) + len(interviews)
}

// Shutdown cancels pending loads, releases every timer and drops all sessions
func (m *Manager) Shutdown() {
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	tests, interviews := m.tests, m.interviews
	m.tests = make(map[string]*TestSession)
	m.interviews = make(map[string]*InterviewSession)
	m.mu.Unlock()

	for _, s := range tests {
		s.release()
	}
	for _, s := range interviews {
		s.End()
	}
	metrics.PracticeSessions.WithLabelValues("test").Set(0)
	metrics.PracticeSessions.WithLabelValues("interview").Set(0)
	slog.Info("practice sessions released", "tests", len(tests), "interviews", len(interviews))
}
