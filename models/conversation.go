package models

import "time"

// Conversation intents.
const (
	IntentBook              = "book"
	IntentCheckAvailability = "check_availability"
	IntentListAppointments  = "list_appointments"
	IntentCancel            = "cancel"
	IntentUnknown           = "unknown"
)

// Conversation states.
const (
	StateIdle            = "idle"
	StateCollectingSlots = "collecting_slots"
	StateConfirming      = "confirming"
	StateFulfilled       = "fulfilled"
)

// ConversationTurn is one prior exchange, kept for context.
type ConversationTurn struct {
	Role string    `json:"role"` // "caller" or "agent"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// ConversationContext is the per-session dialogue state. It lives in the
// context store under the caller-supplied session id and is evicted after the
// configured idle window.
type ConversationContext struct {
	SessionID string             `json:"session_id"`
	State     string             `json:"state"`
	Intent    string             `json:"intent"`
	Slots     map[string]string  `json:"slots"`
	History   []ConversationTurn `json:"history"`
}

// Extraction is the best-guess output of an intent extractor for one
// utterance: a detected intent (possibly unknown) plus extracted slot values.
type Extraction struct {
	Intent      string            `json:"intent"`
	Slots       map[string]string `json:"slots"`
	Affirmative bool              `json:"affirmative"`
	Negative    bool              `json:"negative"`
}

// ConversationReply is what the state machine hands back for one turn.
type ConversationReply struct {
	Response string               `json:"response"`
	Context  *ConversationContext `json:"context"`
}
