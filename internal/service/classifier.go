// Package service wires the assistant core: intent classification, session
// ownership, model routing, orchestration and response composition.
package service

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/Strob0t/Hearth/internal/config"
	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/nlp"
	"github.com/Strob0t/Hearth/internal/port/expert"
)

// reAnaphora marks clauses that refer back to a prior clause's result
// ("remind me about it"). Such sub-intents execute sequentially with the
// prior payload forwarded.
var reAnaphora = regexp.MustCompile(`(?i)\b(it|them|that one)\b`)

// ClassifierService maps raw utterances onto ranked intent matches using
// the patterns the registered experts contribute. Matching is deterministic:
// highest confidence wins, exact ties fall to expert priority.
type ClassifierService struct {
	registry *expert.Registry
	cfg      config.Classifier
}

// NewClassifierService creates a classifier over the expert registry.
func NewClassifierService(registry *expert.Registry, cfg config.Classifier) *ClassifierService {
	return &ClassifierService{registry: registry, cfg: cfg}
}

// Classify segments the utterance into clauses and picks the best expert
// pattern per clause. When no clause clears the confidence threshold the
// result is a single unknown match that routes to the model router only.
// An explicit conversation mode hint bypasses expert matching entirely.
func (c *ClassifierService) Classify(u assist.Utterance, _ *session.Session) []assist.IntentMatch {
	if u.Mode == assist.ModeConversation {
		return []assist.IntentMatch{unknownMatch(u.Text)}
	}

	clauses := nlp.Segment(u.Text)
	if max := c.cfg.MaxIntents; max > 0 && len(clauses) > max {
		clauses = clauses[:max]
	}

	var matches []assist.IntentMatch
	for idx, clause := range clauses {
		m, ok := c.matchClause(clause)
		if !ok {
			continue
		}
		m.ClauseIdx = idx
		m.DependsOn = -1
		if len(matches) > 0 && reAnaphora.MatchString(clause) {
			m.DependsOn = len(matches) - 1
		}
		matches = append(matches, m)
	}

	if len(matches) == 0 {
		slog.Debug("no intent matched, routing to model", "text_len", len(u.Text))
		return []assist.IntentMatch{unknownMatch(u.Text)}
	}
	return matches
}

// matchClause finds the best (confidence, priority) pattern for one clause.
// Registry order is descending priority, so on exact confidence ties the
// first hit wins: side-effecting experts beat pure-query experts, which
// beat anything that could fall through to free-text generation.
func (c *ClassifierService) matchClause(clause string) (assist.IntentMatch, bool) {
	best := assist.IntentMatch{Confidence: -1}

	for _, e := range c.registry.All() {
		for _, p := range e.Patterns() {
			sm := p.Re.FindStringSubmatch(clause)
			if sm == nil {
				continue
			}
			if p.Confidence <= best.Confidence {
				continue
			}
			m := assist.IntentMatch{
				Label:      p.Label,
				Confidence: p.Confidence,
				Expert:     e.Name(),
				Clause:     clause,
			}
			if p.Extract != nil {
				m.Slots = p.Extract(clause, sm)
			}
			best = m
		}
	}

	if best.Confidence < c.cfg.MinConfidence {
		return assist.IntentMatch{}, false
	}
	return best, true
}

func unknownMatch(text string) assist.IntentMatch {
	return assist.IntentMatch{
		Label:      assist.LabelUnknown,
		Confidence: 0,
		Clause:     strings.TrimSpace(text),
		DependsOn:  -1,
	}
}
