package conversation

import (
	"testing"

	"voicedesk/models"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestCandidateTextJoinsParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"intent":`), genai.Text(`"book"}`)}}},
		},
	}

	assert.Equal(t, `{"intent":"book"}`, candidateText(resp))
}

func TestCandidateTextEmptyOnNoCandidates(t *testing.T) {
	// Safety-blocked responses carry no candidates.
	assert.Equal(t, "", candidateText(&genai.GenerateContentResponse{}))
	assert.Equal(t, "", candidateText(nil))
}

func TestCandidateTextEmptyOnNilContent(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: nil}},
	}

	assert.Equal(t, "", candidateText(resp))
}

func TestParseExtractionPlainJSON(t *testing.T) {
	extraction, err := parseExtraction(`{"intent":"book","slots":{"date":"2026-03-03","time":"14:00"}}`)

	assert.NoError(t, err)
	assert.Equal(t, models.IntentBook, extraction.Intent)
	assert.Equal(t, "2026-03-03", extraction.Slots[SlotDate])
}

func TestParseExtractionStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"intent\":\"cancel\",\"slots\":{},\"negative\":false}\n```"
	extraction, err := parseExtraction(raw)

	assert.NoError(t, err)
	assert.Equal(t, models.IntentCancel, extraction.Intent)
}

func TestParseExtractionNormalizesUnknownIntent(t *testing.T) {
	extraction, err := parseExtraction(`{"intent":"order_pizza"}`)

	assert.NoError(t, err)
	assert.Equal(t, models.IntentUnknown, extraction.Intent)
	assert.NotNil(t, extraction.Slots)
}

func TestParseExtractionRejectsProse(t *testing.T) {
	_, err := parseExtraction("The caller wants to book an appointment.")

	assert.Error(t, err)
}
