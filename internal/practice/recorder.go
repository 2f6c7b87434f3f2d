package practice

import (
	"errors"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Recorder errors
var (
	ErrMediaNotReady    = errors.New("media is not ready")
	ErrNoAudioTrack     = errors.New("no audio track available")
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
	ErrInterviewEnded   = errors.New("interview already ended")
)

// Media error messages shown to the candidate
const (
	DefaultMediaError   = "Permission denied or no devices available."
	NoAudioTrackMessage = "No audio track available."
)

// InterviewState is the lifecycle state of a mock interview
type InterviewState string

const (
	InterviewInitializing InterviewState = "initializing"
	InterviewReady        InterviewState = "ready"
	InterviewRecording    InterviewState = "recording"
	InterviewNotRecording InterviewState = "not_recording"
	InterviewEnded        InterviewState = "ended"
)

// DefaultInterviewQuestions is used when the HR bank is empty
var DefaultInterviewQuestions = []string{
	"Tell me about yourself and your background.",
	"Why are you interested in this role and our company?",
	"Describe a challenging problem you solved and how you approached it.",
	"How do you prioritize tasks when working on multiple projects?",
	"Do you have any questions for me about the role or team?",
}

// Recording capture formats in probing order
var mimePreference = []string{"audio/webm;codecs=opus", "audio/webm", "audio/ogg"}

// ChooseMimeType returns the first preferred format the client supports,
// or "" to let the browser pick its default
func ChooseMimeType(supported []string) string {
	for _, m := range mimePreference {
		if slices.Contains(supported, m) {
			return m
		}
	}
	return ""
}

// MediaGrant describes the outcome of the client's capture permission request
type MediaGrant struct {
	Video              bool     `json:"video"`
	Audio              bool     `json:"audio"`
	SupportedMimeTypes []string `json:"supportedMimeTypes"`
	Error              string   `json:"error,omitempty"`
}

// Recording is one finished audio take. The audio itself stays on the client;
// ClientRef is the client's handle for it (a blob URL).
type Recording struct {
	ID            string    `json:"recordingId"`
	QuestionIndex int       `json:"questionIndex"`
	MimeType      string    `json:"mimeType"`
	ClientRef     string    `json:"blobUrl,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	StoppedAt     time.Time `json:"stoppedAt"`
}

type activeRecording struct {
	id            string
	questionIndex int
	startedAt     time.Time
}

// InterviewSession models a mock interview: a fixed question list, a
// per-question countdown, and audio takes keyed to the question they began on.
type InterviewSession struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	state        InterviewState
	questions    []string
	index        int
	video        bool
	audio        bool
	mimeType     string
	mediaError   string
	speakCount   int
	recording    *activeRecording
	recordings   []Recording
	endedAt      time.Time
	timerToken   uint64
	timerExpired bool

	countdown *Countdown
	events    *broadcaster
}

func newInterviewSession(id string, questions []string, perQuestion time.Duration) *InterviewSession {
	if len(questions) == 0 {
		questions = slices.Clone(DefaultInterviewQuestions)
	}
	s := &InterviewSession{
		ID:         id,
		CreatedAt:  time.Now(),
		state:      InterviewInitializing,
		questions:  questions,
		recordings: []Recording{},
		events:     newBroadcaster(),
	}
	s.countdown = NewCountdown(perQuestion, time.Second,
		func(remaining time.Duration) { s.events.publish(tickEvent(seconds(remaining))) },
		s.expire,
	)
	return s
}

// Subscribe returns the session's event feed
func (s *InterviewSession) Subscribe() (<-chan Event, func()) {
	return s.events.subscribe()
}

// restartTimerLocked starts a fresh question countdown
func (s *InterviewSession) restartTimerLocked() {
	s.timerExpired = false
	s.timerToken = s.countdown.Start()
}

// speakLocked makes the current question the spoken prompt
func (s *InterviewSession) speakLocked() {
	s.speakCount++
}

// MediaGranted attaches the client's capture stream. A grant carrying an
// error, or with no tracks at all, leaves the session initializing.
func (s *InterviewSession) MediaGranted(g MediaGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == InterviewEnded {
		return ErrInterviewEnded
	}
	if g.Error != "" || (!g.Video && !g.Audio) {
		s.mediaError = g.Error
		if s.mediaError == "" {
			s.mediaError = DefaultMediaError
		}
		return nil
	}
	if s.state != InterviewInitializing {
		return nil
	}

	s.video = g.Video
	s.audio = g.Audio
	s.mimeType = ChooseMimeType(g.SupportedMimeTypes)
	s.mediaError = ""
	s.state = InterviewReady
	s.speakLocked()
	s.restartTimerLocked()

	slog.Info("interview media ready", "session_id", s.ID, "video", g.Video, "audio", g.Audio, "mime_type", s.mimeType)
	return nil
}

// StartRecording begins an audio take on the current question
func (s *InterviewSession) StartRecording() (*Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case InterviewEnded:
		return nil, ErrInterviewEnded
	case InterviewInitializing:
		return nil, ErrMediaNotReady
	case InterviewRecording:
		return nil, ErrAlreadyRecording
	}
	if !s.audio {
		s.mediaError = NoAudioTrackMessage
		return nil, ErrNoAudioTrack
	}

	s.recording = &activeRecording{id: uuid.NewString(), questionIndex: s.index, startedAt: time.Now()}
	s.state = InterviewRecording
	s.mediaError = ""
	s.restartTimerLocked()

	return &Recording{
		ID:            s.recording.id,
		QuestionIndex: s.recording.questionIndex,
		MimeType:      s.mimeType,
		StartedAt:     s.recording.startedAt,
	}, nil
}

// StopRecording finishes the active take and stores it
func (s *InterviewSession) StopRecording(clientRef string) (*Recording, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == InterviewEnded {
		return nil, ErrInterviewEnded
	}
	if s.recording == nil {
		return nil, ErrNotRecording
	}
	rec := s.stopRecordingLocked(clientRef)
	s.restartTimerLocked()
	return &rec, nil
}

func (s *InterviewSession) stopRecordingLocked(clientRef string) Recording {
	rec := Recording{
		ID:            s.recording.id,
		QuestionIndex: s.recording.questionIndex,
		MimeType:      s.mimeType,
		ClientRef:     clientRef,
		StartedAt:     s.recording.startedAt,
		StoppedAt:     time.Now(),
	}
	s.recordings = append(s.recordings, rec)
	s.recording = nil
	s.state = InterviewNotRecording

	idx := rec.QuestionIndex
	s.events.publish(Event{Type: EventStopped, QuestionIndex: &idx})
	return rec
}

// AttachClientRef records the client's handle for a finished take
func (s *InterviewSession) AttachClientRef(recordingID, clientRef string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.recordings {
		if s.recordings[i].ID == recordingID {
			s.recordings[i].ClientRef = clientRef
			return true
		}
	}
	return false
}

func (s *InterviewSession) Next() error {
	return s.move(1)
}

func (s *InterviewSession) Previous() error {
	return s.move(-1)
}

func (s *InterviewSession) move(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == InterviewEnded {
		return ErrInterviewEnded
	}
	i := s.index + delta
	if i < 0 || i >= len(s.questions) {
		return ErrOutOfRange
	}
	s.index = i
	s.speakLocked()
	if s.state != InterviewInitializing {
		s.restartTimerLocked()
	}
	return nil
}

// Speak repeats the current question prompt
func (s *InterviewSession) Speak() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == InterviewEnded {
		return "", ErrInterviewEnded
	}
	s.speakLocked()
	return s.questions[s.index], nil
}

// expire handles the question countdown reaching zero: any active take
// stops, then the session advances unless on the last question
func (s *InterviewSession) expire(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == InterviewEnded || token != s.timerToken {
		return
	}
	s.timerExpired = true
	if s.recording != nil {
		s.stopRecordingLocked("")
	}
	if s.index >= len(s.questions)-1 {
		slog.Debug("interview countdown expired on last question", "session_id", s.ID)
		return
	}
	s.index++
	s.speakLocked()
	s.restartTimerLocked()

	idx := s.index
	s.events.publish(Event{Type: EventAdvanced, QuestionIndex: &idx})
}

// End stops any take, releases the countdown and returns the recordings.
// Calling it again returns the same list.
func (s *InterviewSession) End() []Recording {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InterviewEnded {
		if s.recording != nil {
			s.stopRecordingLocked("")
		}
		s.countdown.Stop()
		s.state = InterviewEnded
		s.endedAt = time.Now()
		s.events.publish(Event{Type: EventEnded})
		s.events.close()
		slog.Info("interview ended", "session_id", s.ID, "recordings", len(s.recordings))
	}
	return slices.Clone(s.recordings)
}

func (s *InterviewSession) endedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == InterviewEnded && s.endedAt.Before(t)
}

// InterviewView is the client-facing snapshot of a mock interview
type InterviewView struct {
	ID               string         `json:"id"`
	State            InterviewState `json:"state"`
	Questions        []string       `json:"questions"`
	CurrentIndex     int            `json:"currentIndex"`
	Prompt           string         `json:"prompt"`
	SpeakCount       int            `json:"speakCount"`
	CameraEnabled    bool           `json:"cameraEnabled"`
	MicEnabled       bool           `json:"micEnabled"`
	MimeType         string         `json:"mimeType"`
	MediaError       string         `json:"mediaError,omitempty"`
	Recording        bool           `json:"isRecording"`
	Recordings       []Recording    `json:"recordings"`
	RemainingSeconds int            `json:"remainingSeconds"`
	Progress         int            `json:"progress"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// View returns a snapshot of the session
func (s *InterviewSession) View() *InterviewView {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := seconds(s.countdown.Total())
	switch {
	case s.countdown.Running():
		remaining = seconds(s.countdown.Remaining())
	case s.timerExpired || s.state == InterviewEnded:
		remaining = 0
	}

	return &InterviewView{
		ID:               s.ID,
		State:            s.state,
		Questions:        slices.Clone(s.questions),
		CurrentIndex:     s.index,
		Prompt:           s.questions[s.index],
		SpeakCount:       s.speakCount,
		CameraEnabled:    s.video,
		MicEnabled:       s.audio,
		MimeType:         s.mimeType,
		MediaError:       s.mediaError,
		Recording:        s.recording != nil,
		Recordings:       slices.Clone(s.recordings),
		RemainingSeconds: remaining,
		Progress:         int(math.Round(float64(s.index+1) / float64(len(s.questions)) * 100)),
		CreatedAt:        s.CreatedAt,
	}
}
