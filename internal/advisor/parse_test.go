package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens-api/internal/models"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"plain object", `{"recommendation":"ok"}`, "ok", false},
		{"fenced", "```json\n{\"recommendation\":\"fenced\"}\n```", "fenced", false},
		{"fence without language", "```\n{\"recommendation\":\"bare\"}\n```", "bare", false},
		{"prose around object", "Sure! Here you go:\n{\"recommendation\":\"extracted\"}\nGood luck.", "extracted", false},
		{"not json", "I cannot help with that.", "", true},
		{"broken block", "prefix {\"recommendation\": } suffix", "", true},
		{"empty", "   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out models.InterviewFeedback
			err := decodeJSON(tt.content, &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Recommendation)
		})
	}
}

func TestParseReplyValidates(t *testing.T) {
	_, err := parseReply[models.InterviewFeedback](`{"overallScore": 140}`)
	assert.ErrorContains(t, err, "invalid reply shape")

	_, err = parseReply[models.LearningRoadmap](`{"roadmap": []}`)
	assert.ErrorContains(t, err, "roadmap is empty")

	set, err := parseReply[models.InterviewQuestionSet](`{"questions":[{"question":"Why Go?"}]}`)
	require.NoError(t, err)
	assert.Len(t, set.Questions, 1)
}
