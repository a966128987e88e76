// Package expert defines the capability-expert port: the interface every
// domain handler implements, the trigger patterns experts contribute to the
// classifier, and the static registry they are looked up in.
package expert

import (
	"context"
	"regexp"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/session"
)

// SlotExtractor derives slots from a clause and its regexp submatches.
// Submatches are indexed as returned by FindStringSubmatch on the pattern.
type SlotExtractor func(clause string, submatches []string) assist.Slots

// Pattern is one trigger an expert contributes to the intent classifier.
// Patterns are matched case-insensitively against a single clause.
type Pattern struct {
	Label      string         // intent label, e.g. "reminder.create"
	Re         *regexp.Regexp // compiled trigger
	Confidence float64        // base confidence when the pattern matches
	Extract    SlotExtractor  // optional slot extraction, may be nil
}

// Expert is the port interface for a single capability domain.
// Experts are stateless beyond a call; persistent effects go through the
// store ports. Execute must be synchronous: the result it returns is the
// truth the composer reports.
type Expert interface {
	// Name returns the unique registry name, e.g. "reminders".
	Name() string

	// Priority breaks exact confidence ties: higher wins. Side-effecting
	// experts outrank pure-query experts, which outrank anything that could
	// fall through to free-text generation.
	Priority() int

	// Patterns returns the trigger patterns this expert contributes to the
	// classifier, in decreasing specificity.
	Patterns() []Pattern

	// CanHandle reports whether the expert accepts the given match.
	CanHandle(m assist.IntentMatch) bool

	// Execute applies the intent. Errors are reported inside the result
	// (ErrorKind), never raised: collaborators return outcomes, not panics.
	Execute(ctx context.Context, m assist.IntentMatch, sess *session.Session) assist.ExpertResult
}
