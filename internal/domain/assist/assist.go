// Package assist provides the domain model for the assistant request path:
// utterances, classified intents, expert results, and the final response.
package assist

import "time"

// Mode is an optional caller-supplied hint about how to treat the utterance.
type Mode string

const (
	ModeAuto         Mode = ""             // classifier decides
	ModeConversation Mode = "conversation" // prefer narration
	ModeTask         Mode = "task"         // prefer action execution
)

// Utterance is a single incoming user request. Immutable once received.
type Utterance struct {
	Text       string    `json:"text"`
	SessionID  string    `json:"session_id"`
	Mode       Mode      `json:"mode,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Slots holds key/value pairs extracted during classification
// (item names, dates, times, entity ids, ...).
type Slots map[string]string

// Get returns the slot value or "" when absent.
func (s Slots) Get(key string) string {
	if s == nil {
		return ""
	}
	return s[key]
}

// IntentMatch is one ranked classification result. A compound utterance
// yields several matches, one per sub-clause.
type IntentMatch struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Expert     string  `json:"expert"` // registered expert name, "" for unknown
	Slots      Slots   `json:"slots,omitempty"`
	Clause     string  `json:"clause"`      // the sub-clause this match came from
	DependsOn  int     `json:"depends_on"`  // index of a prior match this one needs, -1 if none
	ClauseIdx  int     `json:"clause_idx"`  // extraction order
}

// LabelUnknown is the label emitted when no pattern clears the confidence
// threshold. Unknown intents route to the model router only.
const LabelUnknown = "unknown"

// ErrorKind classifies an expert failure per the orchestration error taxonomy.
type ErrorKind string

const (
	ErrorNone        ErrorKind = ""
	ErrorValidation  ErrorKind = "validation"  // bad/missing slot, never retried
	ErrorTransient   ErrorKind = "transient"   // timeout/5xx, retried once
	ErrorUnavailable ErrorKind = "unavailable" // collaborator down, reported
)

// ExpertResult is the outcome of a single expert execution. Consumed once by
// the orchestrator.
type ExpertResult struct {
	Expert  string    `json:"expert"`
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Action  string    `json:"action,omitempty"` // executed-action tag, "" for pure failures
	Payload any       `json:"payload,omitempty"`
	Err     ErrorKind `json:"error_kind,omitempty"`
}

// Executed reports whether this result represents an applied action
// (successful writes and successful reads both count).
func (r ExpertResult) Executed() bool {
	return r.Success && r.Action != ""
}

// FinalResponse is the single payload delivered to the caller. Always
// populated: failures become coherent natural-language messages.
type FinalResponse struct {
	SessionID string         `json:"session_id"`
	Message   string         `json:"message"`
	Actions   []string       `json:"actions,omitempty"` // executed-action tags, extraction order
	Partial   bool           `json:"partial"`           // some but not all sub-intents succeeded
	Results   []ExpertResult `json:"results,omitempty"`
	ModelUsed string         `json:"model_used,omitempty"` // "provider/model" when narration ran
}

// Fixed user-facing fallback messages. These are product copy, not errors.
const (
	MsgApology         = "I'm sorry, I'm having trouble reaching my language services right now. Please try again in a moment."
	MsgNoUnderstanding = "I don't have enough information to help with that yet. Could you rephrase?"
)
