package conversation

import (
	"context"

	"voicedesk/models"
)

// ConversationService drives one dialogue turn: intent and slot extraction,
// clarifying questions, confirmation, and fulfilment through the voice
// function bridge.
type ConversationService interface {
	ProcessMessage(ctx context.Context, sessionID, message string) (*models.ConversationReply, error)
}

// IntentExtractor turns one utterance into a best-guess intent (possibly
// unknown) plus extracted slot values. The extraction technique is pluggable;
// the state machine only depends on this contract.
type IntentExtractor interface {
	Extract(ctx context.Context, message string, convCtx *models.ConversationContext) (*models.Extraction, error)
}

// ContextStore keeps per-session dialogue state between turns. Sessions are
// ephemeral: implementations evict idle sessions and a reused id simply
// starts over.
type ContextStore interface {
	Get(ctx context.Context, sessionID string) (*models.ConversationContext, error)
	Set(ctx context.Context, sessionID string, convCtx *models.ConversationContext) error
	Clear(ctx context.Context, sessionID string) error
}
