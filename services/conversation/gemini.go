package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"voicedesk/models"
	"voicedesk/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const extractionPrompt = `You are the intent extractor for an appointment booking assistant.
Analyze the caller's utterance and reply with ONLY a JSON object, no prose:
{
  "intent": one of "book", "check_availability", "list_appointments", "cancel", "unknown",
  "slots": { optional keys "date" (YYYY-MM-DD), "time" (HH:MM 24h), "duration" (minutes), "email", "name", "phone", "company", "inquiry" },
  "affirmative": true if the utterance is a plain confirmation,
  "negative": true if the utterance declines or aborts
}
Conversation intent so far: %s
Utterance: %q`

// GeminiExtractor asks a Gemini model for intent and slots, falling back to
// rule matching whenever the model is unreachable or returns something
// unparseable.
type GeminiExtractor struct {
	model    *genai.GenerativeModel
	fallback *RuleExtractor
}

func NewGeminiExtractor(apiKey string) (*GeminiExtractor, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiExtractor{
		model:    model,
		fallback: &RuleExtractor{},
	}, nil
}

func (g *GeminiExtractor) Extract(ctx context.Context, message string, convCtx *models.ConversationContext) (*models.Extraction, error) {
	prompt := fmt.Sprintf(extractionPrompt, convCtx.Intent, message)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		utils.GetLogger().Warn("gemini extraction failed, using rule extractor", zap.Error(err))
		return g.fallback.Extract(ctx, message, convCtx)
	}

	raw := candidateText(resp)
	if raw == "" {
		utils.GetLogger().Warn("empty gemini response, using rule extractor")
		return g.fallback.Extract(ctx, message, convCtx)
	}

	extraction, err := parseExtraction(raw)
	if err != nil {
		utils.GetLogger().Warn("unparseable gemini extraction, using rule extractor",
			zap.String("raw", raw),
			zap.Error(err),
		)
		return g.fallback.Extract(ctx, message, convCtx)
	}
	return extraction, nil
}

// candidateText collects the text parts of the first candidate. Safety-blocked
// responses arrive with no candidates or a nil content; those yield "".
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String()
}

// parseExtraction tolerates markdown fences around the model's JSON reply.
func parseExtraction(raw string) (*models.Extraction, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var extraction models.Extraction
	if err := json.Unmarshal([]byte(cleaned), &extraction); err != nil {
		return nil, err
	}
	if extraction.Slots == nil {
		extraction.Slots = make(map[string]string)
	}
	switch extraction.Intent {
	case models.IntentBook, models.IntentCheckAvailability, models.IntentListAppointments, models.IntentCancel:
	default:
		extraction.Intent = models.IntentUnknown
	}
	return &extraction, nil
}
