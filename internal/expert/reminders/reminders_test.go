package reminders

import (
	"context"
	"testing"
	"time"

	"github.com/Strob0t/Hearth/internal/domain"
	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/reminder"
)

// ref is a Wednesday.
var ref = time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)

type fakeStore struct {
	saved      []reminder.Reminder
	due        []reminder.Reminder
	createErr  error
	queryErr   error
	createHits int
}

func (s *fakeStore) CreateReminder(_ context.Context, r *reminder.Reminder) error {
	s.createHits++
	if s.createErr != nil {
		return s.createErr
	}
	s.saved = append(s.saved, *r)
	return nil
}

func (s *fakeStore) QueryDue(_ context.Context, _ string) ([]reminder.Reminder, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.due, nil
}

func newExpert(store *fakeStore) *Expert {
	e := New(store, 0)
	e.now = func() time.Time { return ref }
	return e
}

func createMatch(body string) assist.IntentMatch {
	return assist.IntentMatch{
		Label:     LabelCreate,
		Expert:    "reminders",
		Slots:     assist.Slots{"body": body},
		DependsOn: -1,
	}
}

func TestCreateTomorrowAtTime(t *testing.T) {
	store := &fakeStore{}
	e := newExpert(store)

	r := e.Execute(context.Background(), createMatch("tomorrow at 10am to go shopping"), nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d reminders", len(store.saved))
	}
	got := store.saved[0]
	if got.DueDate != "2026-09-03" {
		t.Errorf("due date = %q, want 2026-09-03", got.DueDate)
	}
	if got.DueTime != "10:00" {
		t.Errorf("due time = %q, want 10:00", got.DueTime)
	}
	if got.Title != "go shopping" {
		t.Errorf("title = %q, want go shopping", got.Title)
	}
}

func TestCreateWeekday(t *testing.T) {
	store := &fakeStore{}
	e := newExpert(store)

	r := e.Execute(context.Background(), createMatch("on friday to take out the trash"), nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if store.saved[0].DueDate != "2026-09-04" {
		t.Errorf("due date = %q, want next Friday", store.saved[0].DueDate)
	}
}

func TestCreateRecurring(t *testing.T) {
	store := &fakeStore{}
	e := newExpert(store)

	r := e.Execute(context.Background(), createMatch("every morning at 7 to stretch"), nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	got := store.saved[0]
	if got.Recurrence != reminder.RecurrenceDaily {
		t.Errorf("recurrence = %q, want daily", got.Recurrence)
	}
	if got.DueTime != "07:00" {
		t.Errorf("due time = %q, want 07:00", got.DueTime)
	}
}

func TestCreateForwardedSlots(t *testing.T) {
	store := &fakeStore{}
	e := newExpert(store)

	m := createMatch("about it an hour before")
	m.Slots["date"] = "2026-09-04"
	m.Slots["time"] = "15:00"

	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	got := store.saved[0]
	if got.DueDate != "2026-09-04" {
		t.Errorf("due date = %q, want forwarded date", got.DueDate)
	}
	if got.DueTime != "15:00" {
		t.Errorf("due time = %q, want forwarded time", got.DueTime)
	}
}

func TestCreateWithoutDateIsValidation(t *testing.T) {
	e := newExpert(&fakeStore{})

	r := e.Execute(context.Background(), createMatch("to water the plants"), nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err != assist.ErrorValidation {
		t.Errorf("error kind = %q, want validation", r.Err)
	}
	if r.Message != "When should I remind you?" {
		t.Errorf("message = %q", r.Message)
	}
}

func TestCreateRetriesTransient(t *testing.T) {
	store := &fakeStore{createErr: domain.ErrTransient}
	e := newExpert(store)

	r := e.Execute(context.Background(), createMatch("tomorrow to call mom"), nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if store.createHits != 2 {
		t.Errorf("create attempts = %d, want 2", store.createHits)
	}
}

func TestQueryDueToday(t *testing.T) {
	store := &fakeStore{due: []reminder.Reminder{
		{Title: "call mom", DueTime: "10:00"},
		{Title: "water plants"},
	}}
	e := newExpert(store)

	r := e.Execute(context.Background(), assist.IntentMatch{Label: LabelQuery}, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if r.Message != "Due today: call mom at 10:00; water plants." {
		t.Errorf("message = %q", r.Message)
	}
}

func TestQueryNoneDue(t *testing.T) {
	e := newExpert(&fakeStore{})

	r := e.Execute(context.Background(), assist.IntentMatch{Label: LabelQuery}, nil)

	if !r.Success || r.Message != "You have no reminders due today." {
		t.Errorf("result = %+v", r)
	}
}

func TestPatternMatching(t *testing.T) {
	e := newExpert(&fakeStore{})

	tests := []struct {
		clause string
		label  string
	}{
		{"remind me tomorrow at 10am to go shopping", LabelCreate},
		{"set a reminder for friday to pay rent", LabelCreate},
		{"what are my reminders", LabelQuery},
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
