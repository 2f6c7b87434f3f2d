package practice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseMimeType(t *testing.T) {
	tests := []struct {
		supported []string
		want      string
	}{
		{[]string{"audio/ogg", "audio/webm", "audio/webm;codecs=opus"}, "audio/webm;codecs=opus"},
		{[]string{"audio/ogg", "audio/webm"}, "audio/webm"},
		{[]string{"audio/ogg"}, "audio/ogg"},
		{[]string{"audio/mp4"}, ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChooseMimeType(tt.supported), "%v", tt.supported)
	}
}

func newInterview(t *testing.T, perQuestion time.Duration) *InterviewSession {
	t.Helper()
	s := newInterviewSession("i1", []string{"Q1", "Q2", "Q3"}, perQuestion)
	t.Cleanup(func() { s.End() })
	return s
}

func TestInterviewMediaGrant(t *testing.T) {
	s := newInterview(t, time.Minute)

	_, err := s.StartRecording()
	assert.ErrorIs(t, err, ErrMediaNotReady)

	require.NoError(t, s.MediaGranted(MediaGrant{Error: "NotAllowedError"}))
	v := s.View()
	assert.Equal(t, InterviewInitializing, v.State)
	assert.Equal(t, "NotAllowedError", v.MediaError)

	require.NoError(t, s.MediaGranted(MediaGrant{}))
	assert.Equal(t, DefaultMediaError, s.View().MediaError)

	require.NoError(t, s.MediaGranted(MediaGrant{Video: true, Audio: true, SupportedMimeTypes: []string{"audio/webm"}}))
	v = s.View()
	assert.Equal(t, InterviewReady, v.State)
	assert.Equal(t, "audio/webm", v.MimeType)
	assert.Equal(t, "Q1", v.Prompt)
	assert.Equal(t, 1, v.SpeakCount)
	assert.Empty(t, v.MediaError)
	assert.InDelta(t, 60, v.RemainingSeconds, 1)
}

func TestInterviewRequiresAudio(t *testing.T) {
	s := newInterview(t, time.Minute)
	require.NoError(t, s.MediaGranted(MediaGrant{Video: true}))

	_, err := s.StartRecording()
	assert.ErrorIs(t, err, ErrNoAudioTrack)
	assert.Equal(t, NoAudioTrackMessage, s.View().MediaError)
}

func TestInterviewRecordingKeyedToStartQuestion(t *testing.T) {
	s := newInterview(t, time.Minute)
	require.NoError(t, s.MediaGranted(MediaGrant{Audio: true, SupportedMimeTypes: []string{"audio/ogg"}}))

	started, err := s.StartRecording()
	require.NoError(t, err)
	assert.Equal(t, 0, started.QuestionIndex)
	assert.Equal(t, "audio/ogg", started.MimeType)

	_, err = s.StartRecording()
	assert.ErrorIs(t, err, ErrAlreadyRecording)

	require.NoError(t, s.Next())
	rec, err := s.StopRecording("blob:http://localhost/abc")
	require.NoError(t, err)
	assert.Equal(t, started.ID, rec.ID)
	assert.Equal(t, 0, rec.QuestionIndex)
	assert.Equal(t, "blob:http://localhost/abc", rec.ClientRef)

	_, err = s.StopRecording("")
	assert.ErrorIs(t, err, ErrNotRecording)

	v := s.View()
	assert.Equal(t, InterviewNotRecording, v.State)
	assert.Equal(t, 1, v.CurrentIndex)
	assert.Equal(t, 2, v.SpeakCount)
	assert.Len(t, v.Recordings, 1)
}

func TestInterviewNavigationBounds(t *testing.T) {
	s := newInterview(t, time.Minute)
	require.NoError(t, s.MediaGranted(MediaGrant{Audio: true}))

	assert.ErrorIs(t, s.Previous(), ErrOutOfRange)
	require.NoError(t, s.Next())
	require.NoError(t, s.Next())
	assert.ErrorIs(t, s.Next(), ErrOutOfRange)
	assert.Equal(t, 100, s.View().Progress)

	prompt, err := s.Speak()
	require.NoError(t, err)
	assert.Equal(t, "Q3", prompt)
}

func TestInterviewCountdownAdvancesAndStops(t *testing.T) {
	s := newInterview(t, 40*time.Millisecond)
	events, cancel := s.Subscribe()
	defer cancel()

	require.NoError(t, s.MediaGranted(MediaGrant{Audio: true}))
	_, err := s.StartRecording()
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.View().CurrentIndex == 2 }, 2*time.Second, 5*time.Millisecond)

	v := s.View()
	assert.False(t, v.Recording)
	require.Len(t, v.Recordings, 1)
	assert.Equal(t, 0, v.Recordings[0].QuestionIndex)

	time.Sleep(80 * time.Millisecond)
	v = s.View()
	assert.Equal(t, 2, v.CurrentIndex, "no advance past the last question")
	assert.Zero(t, v.RemainingSeconds)

	var advanced []int
	stopped := 0
drain:
	for {
		select {
		case e := <-events:
			switch e.Type {
			case EventAdvanced:
				advanced = append(advanced, *e.QuestionIndex)
			case EventStopped:
				stopped++
			}
		default:
			break drain
		}
	}
	assert.Equal(t, []int{1, 2}, advanced)
	assert.Equal(t, 1, stopped)
}

func TestInterviewEnd(t *testing.T) {
	s := newInterview(t, time.Minute)
	require.NoError(t, s.MediaGranted(MediaGrant{Audio: true}))
	_, err := s.StartRecording()
	require.NoError(t, err)

	recordings := s.End()
	require.Len(t, recordings, 1)
	assert.Equal(t, 0, recordings[0].QuestionIndex)
	assert.False(t, s.countdown.Running())

	assert.Equal(t, recordings, s.End())
	assert.ErrorIs(t, s.Next(), ErrInterviewEnded)
	_, err = s.StartRecording()
	assert.ErrorIs(t, err, ErrInterviewEnded)
	assert.Equal(t, InterviewEnded, s.View().State)
	assert.True(t, s.AttachClientRef(recordings[0].ID, "blob:x"))
}
