package calendarx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Strob0t/Hearth/internal/domain"
	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/calendar"
)

// ref is a Wednesday.
var ref = time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)

type fakeStore struct {
	saved     []calendar.Event
	events    []calendar.Event
	createErr error
	queryErr  error
	lastRange calendar.Range
}

func (s *fakeStore) CreateEvent(_ context.Context, ev *calendar.Event) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.saved = append(s.saved, *ev)
	return nil
}

func (s *fakeStore) QueryEvents(_ context.Context, r calendar.Range) ([]calendar.Event, error) {
	s.lastRange = r
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.events, nil
}

func newExpert(store *fakeStore) *Expert {
	e := New(store, 0)
	e.now = func() time.Time { return ref }
	return e
}

func createMatch(body string) assist.IntentMatch {
	return assist.IntentMatch{
		Label:     LabelCreate,
		Expert:    "calendar",
		Slots:     assist.Slots{"body": body},
		DependsOn: -1,
	}
}

func TestCreateEvent(t *testing.T) {
	store := &fakeStore{}
	e := newExpert(store)

	r := e.Execute(context.Background(), createMatch("dentist for friday at 3pm"), nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d events", len(store.saved))
	}
	got := store.saved[0]
	if got.Date != "2026-09-04" {
		t.Errorf("date = %q, want next Friday", got.Date)
	}
	if got.Time != "15:00" {
		t.Errorf("time = %q, want 15:00", got.Time)
	}
	if got.Title != "dentist" {
		t.Errorf("title = %q, want dentist", got.Title)
	}

	payload, ok := r.Payload.(*calendar.Event)
	if !ok {
		t.Fatalf("payload type = %T, want *calendar.Event", r.Payload)
	}
	if payload.Date != "2026-09-04" {
		t.Errorf("payload date = %q", payload.Date)
	}
}

func TestCreateAllDayEvent(t *testing.T) {
	store := &fakeStore{}
	e := newExpert(store)

	r := e.Execute(context.Background(), createMatch("family picnic tomorrow"), nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	got := store.saved[0]
	if got.Date != "2026-09-03" {
		t.Errorf("date = %q, want tomorrow", got.Date)
	}
	if got.Time != "" {
		t.Errorf("time = %q, want empty for all-day", got.Time)
	}
}

func TestCreateForwardedSlots(t *testing.T) {
	store := &fakeStore{}
	e := newExpert(store)

	m := createMatch("prep for the appointment")
	m.Slots["date"] = "2026-09-10"
	m.Slots["time"] = "09:00"

	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	got := store.saved[0]
	if got.Date != "2026-09-10" || got.Time != "09:00" {
		t.Errorf("event = %+v, want forwarded slots applied", got)
	}
}

func TestCreateWithoutDateIsValidation(t *testing.T) {
	e := newExpert(&fakeStore{})

	r := e.Execute(context.Background(), createMatch("a meeting with the team"), nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err != assist.ErrorValidation {
		t.Errorf("error kind = %q, want validation", r.Err)
	}
}

func TestCreateStoreUnavailable(t *testing.T) {
	store := &fakeStore{createErr: domain.ErrUnavailable}
	e := newExpert(store)

	r := e.Execute(context.Background(), createMatch("dentist tomorrow at 3pm"), nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err != assist.ErrorUnavailable {
		t.Errorf("error kind = %q, want unavailable", r.Err)
	}
}

func TestQueryToday(t *testing.T) {
	store := &fakeStore{events: []calendar.Event{
		{Title: "standup", Date: "2026-09-02", Time: "09:30"},
	}}
	e := newExpert(store)

	r := e.Execute(context.Background(), assist.IntentMatch{Label: LabelQuery}, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if !strings.Contains(r.Message, "standup (2026-09-02 09:30)") {
		t.Errorf("message = %q", r.Message)
	}
	if store.lastRange.From != "2026-09-02" || store.lastRange.To != "2026-09-02" {
		t.Errorf("range = %+v, want today only", store.lastRange)
	}
}

func TestQueryThisWeekRange(t *testing.T) {
	store := &fakeStore{}
	e := newExpert(store)

	m := assist.IntentMatch{Label: LabelQuery, Slots: assist.Slots{"range": "this week"}}
	e.Execute(context.Background(), m, nil)

	if store.lastRange.From != "2026-09-02" || store.lastRange.To != "2026-09-09" {
		t.Errorf("range = %+v, want a seven-day window", store.lastRange)
	}
}

func TestQueryEmpty(t *testing.T) {
	e := newExpert(&fakeStore{})

	r := e.Execute(context.Background(), assist.IntentMatch{Label: LabelQuery}, nil)

	if !r.Success || r.Message != "Nothing on your calendar for that period." {
		t.Errorf("result = %+v", r)
	}
}

func TestPatternMatching(t *testing.T) {
	e := newExpert(&fakeStore{})

	tests := []struct {
		clause string
		label  string
	}{
		{"schedule dentist for friday at 3pm", LabelCreate},
		{"book a meeting with sarah tomorrow", LabelCreate},
		{"what's on my calendar today", LabelQuery},
		{"what do i have tomorrow", LabelQuery},
	}
	for _, tt := range tests {
		matched := ""
		for _, p := range e.Patterns() {
			if p.Re.MatchString(tt.clause) {
				matched = p.Label
				break
			}
		}
		if matched != tt.label {
			t.Errorf("%q matched %q, want %q", tt.clause, matched, tt.label)
		}
	}
}
