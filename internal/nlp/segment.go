package nlp

import (
	"regexp"
	"strings"
)

// clause connectors that separate independent sub-intents. " and " alone is
// ambiguous ("bananas and apples"), so it only splits when the right-hand
// side starts with its own verb.
var (
	reHardSplit = regexp.MustCompile(`(?i)\s*(?:,\s*and\s+|;\s*|\.\s+|,\s+then\s+|\s+and\s+then\s+|\s+then\s+|\s+also\s+)`)
	reSoftAnd   = regexp.MustCompile(`(?i)\s+and\s+`)
)

// clauseVerbs are the leading verbs that mark the start of a new command
// clause. Kept deliberately small: false negatives merge clauses (harmless,
// the classifier still sees the text), false positives split item names.
var clauseVerbs = []string{
	"add", "put", "remove", "delete", "remind", "set", "create", "schedule",
	"turn", "switch", "dim", "remember", "tell", "show", "what", "whats",
	"what's", "journal", "write", "plan", "check", "list",
}

// Segment splits an utterance into command clauses. Single-clause
// utterances come back unchanged as a one-element slice.
func Segment(text string) []string {
	parts := reHardSplit.Split(text, -1)

	var clauses []string
	for _, part := range parts {
		clauses = append(clauses, splitSoftAnd(part)...)
	}

	out := clauses[:0]
	for _, c := range clauses {
		c = strings.TrimSpace(strings.Trim(strings.TrimSpace(c), ".!?"))
		if c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return []string{strings.TrimSpace(text)}
	}
	return out
}

// splitSoftAnd splits on " and " only where the right side opens with a
// clause verb, so "add bananas and apples" stays whole while "add bananas
// and remind me to buy them" splits.
func splitSoftAnd(text string) []string {
	locs := reSoftAnd.FindAllStringIndex(text, -1)
	if locs == nil {
		return []string{text}
	}

	var clauses []string
	start := 0
	for _, loc := range locs {
		rhs := text[loc[1]:]
		if !startsWithClauseVerb(rhs) {
			continue
		}
		clauses = append(clauses, text[start:loc[0]])
		start = loc[1]
	}
	clauses = append(clauses, text[start:])
	return clauses
}

func startsWithClauseVerb(s string) bool {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return false
	}
	first := strings.Trim(fields[0], ",.!?")
	for _, v := range clauseVerbs {
		if first == v {
			return true
		}
	}
	return false
}
