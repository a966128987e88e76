// Package nlp provides the deterministic text utilities the intent
// classifier relies on: date/time slot parsing and clause segmentation.
// Everything here is pure and reference-time driven so classification stays
// reproducible in tests.
package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeSpec is the result of parsing temporal phrases out of a clause.
type TimeSpec struct {
	Date       string // YYYY-MM-DD, "" when no date phrase found
	Time       string // HH:MM 24h, "" when no time phrase found
	Recurrence string // "daily", "weekly", "monthly", "" for one-shot
}

var (
	reClockTime = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	reBareTime  = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\b`)
	reWeekday   = regexp.MustCompile(`(?i)\b(?:on\s+|next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	reRecurring = regexp.MustCompile(`(?i)\bevery\s+(day|morning|evening|night|week|month|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	reISODate   = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseTimeSpec extracts date, time and recurrence phrases from text,
// resolving relative words against ref.
func ParseTimeSpec(text string, ref time.Time) TimeSpec {
	var spec TimeSpec
	lower := strings.ToLower(text)

	if m := reRecurring.FindStringSubmatch(lower); m != nil {
		switch m[1] {
		case "day", "morning", "evening", "night":
			spec.Recurrence = "daily"
		case "week":
			spec.Recurrence = "weekly"
		case "month":
			spec.Recurrence = "monthly"
		default: // a weekday name
			spec.Recurrence = "weekly"
			spec.Date = nextWeekday(ref, weekdays[m[1]]).Format(time.DateOnly)
		}
	}

	if m := reISODate.FindStringSubmatch(text); m != nil {
		spec.Date = m[1]
	}

	switch {
	case spec.Date != "":
	case strings.Contains(lower, "day after tomorrow"):
		spec.Date = ref.AddDate(0, 0, 2).Format(time.DateOnly)
	case strings.Contains(lower, "tomorrow"):
		spec.Date = ref.AddDate(0, 0, 1).Format(time.DateOnly)
	case strings.Contains(lower, "today"), strings.Contains(lower, "tonight"):
		spec.Date = ref.Format(time.DateOnly)
	default:
		if m := reWeekday.FindStringSubmatch(lower); m != nil && spec.Recurrence == "" {
			spec.Date = nextWeekday(ref, weekdays[m[1]]).Format(time.DateOnly)
		}
	}

	if m := reClockTime.FindStringSubmatch(text); m != nil {
		spec.Time = clockTime(m[1], m[2], m[3])
	} else if m := reBareTime.FindStringSubmatch(text); m != nil {
		spec.Time = clockTime(m[1], m[2], "")
	} else if strings.Contains(lower, "tonight") {
		spec.Time = "20:00"
	}

	// A bare time implies today unless a date was already found.
	if spec.Time != "" && spec.Date == "" {
		spec.Date = ref.Format(time.DateOnly)
	}

	return spec
}

// clockTime normalizes hour/minute/meridiem captures into HH:MM.
func clockTime(hourStr, minStr, meridiem string) string {
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour > 23 {
		return ""
	}
	minute := 0
	if minStr != "" {
		minute, err = strconv.Atoi(minStr)
		if err != nil || minute > 59 {
			return ""
		}
	}

	switch strings.ToLower(meridiem) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	return pad2(hour) + ":" + pad2(minute)
}

// nextWeekday returns the next occurrence of wd strictly after ref's day
// unless ref already falls on wd, in which case it returns the following week.
func nextWeekday(ref time.Time, wd time.Weekday) time.Time {
	days := int(wd-ref.Weekday()+7) % 7
	if days == 0 {
		days = 7
	}
	return ref.AddDate(0, 0, days)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// reStripWeekday swallows the preposition in front of a weekday so
// "dentist for friday" strips to "dentist", not "dentist for".
var reStripWeekday = regexp.MustCompile(`(?i)\b(?:for\s+|on\s+|next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

// StripTimePhrases removes the temporal phrases ParseTimeSpec understands,
// leaving the part of the clause that names the thing to act on.
func StripTimePhrases(text string) string {
	out := reClockTime.ReplaceAllString(text, "")
	out = reRecurring.ReplaceAllString(out, "")
	out = reStripWeekday.ReplaceAllString(out, "")
	out = reISODate.ReplaceAllString(out, "")
	for _, phrase := range []string{"day after tomorrow", "tomorrow", "tonight", "today"} {
		out = removeWordCI(out, phrase)
	}

	fields := strings.Fields(out)
	for len(fields) > 0 && isConnector(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// isConnector reports whether w is a preposition left dangling after a
// temporal phrase was removed.
func isConnector(w string) bool {
	switch strings.ToLower(w) {
	case "for", "on", "at", "in", "by":
		return true
	default:
		return false
	}
}

// removeWordCI removes whole-word, case-insensitive occurrences of phrase.
func removeWordCI(text, phrase string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
	return re.ReplaceAllString(text, "")
}
