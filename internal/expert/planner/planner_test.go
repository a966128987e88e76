package planner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Strob0t/Hearth/internal/domain"
	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/calendar"
	"github.com/Strob0t/Hearth/internal/domain/list"
	"github.com/Strob0t/Hearth/internal/domain/reminder"
)

var ref = time.Date(2026, 9, 2, 7, 0, 0, 0, time.UTC)

type fakeCal struct {
	events []calendar.Event
	err    error
}

func (s *fakeCal) CreateEvent(context.Context, *calendar.Event) error { return nil }
func (s *fakeCal) QueryEvents(context.Context, calendar.Range) ([]calendar.Event, error) {
	return s.events, s.err
}

type fakeRem struct {
	due []reminder.Reminder
	err error
}

func (s *fakeRem) CreateReminder(context.Context, *reminder.Reminder) error { return nil }
func (s *fakeRem) QueryDue(context.Context, string) ([]reminder.Reminder, error) {
	return s.due, s.err
}

type fakeLst struct {
	items []list.Item
	err   error
}

func (s *fakeLst) CreateItem(context.Context, *list.Item) error { return nil }
func (s *fakeLst) QueryItems(context.Context, list.Filter) ([]list.Item, error) {
	return s.items, s.err
}
func (s *fakeLst) UpdateItem(context.Context, *list.Item) error { return nil }
func (s *fakeLst) DeleteItem(context.Context, string) error     { return nil }

func newExpert(cal *fakeCal, rem *fakeRem, lst *fakeLst) *Expert {
	e := New(cal, rem, lst, 0)
	e.now = func() time.Time { return ref }
	return e
}

func dayMatch() assist.IntentMatch {
	return assist.IntentMatch{Label: LabelDay, Expert: "planner", DependsOn: -1}
}

func TestPlanFullDay(t *testing.T) {
	e := newExpert(
		&fakeCal{events: []calendar.Event{{Title: "standup", Date: "2026-09-02", Time: "09:30"}}},
		&fakeRem{due: []reminder.Reminder{{Title: "call mom"}}},
		&fakeLst{items: []list.Item{{Name: "milk"}, {Name: "bread"}}},
	)

	r := e.Execute(context.Background(), dayMatch(), nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	for _, want := range []string{"09:30 standup", "call mom", "2 open list items"} {
		if !strings.Contains(r.Message, want) {
			t.Errorf("message %q missing %q", r.Message, want)
		}
	}
}

func TestPlanEmptyDay(t *testing.T) {
	e := newExpert(&fakeCal{}, &fakeRem{}, &fakeLst{})

	r := e.Execute(context.Background(), dayMatch(), nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if r.Message != "Nothing scheduled today." {
		t.Errorf("message = %q", r.Message)
	}
}

func TestPlanDegradesOnPartialOutage(t *testing.T) {
	e := newExpert(
		&fakeCal{events: []calendar.Event{{Title: "standup", Time: "09:30"}}},
		&fakeRem{err: domain.ErrUnavailable},
		&fakeLst{},
	)

	r := e.Execute(context.Background(), dayMatch(), nil)

	if !r.Success {
		t.Fatalf("partial outage must degrade, not fail: %+v", r)
	}
	if !strings.Contains(r.Message, "standup") {
		t.Errorf("message %q missing readable section", r.Message)
	}
	if !strings.Contains(r.Message, "I couldn't read: reminders") {
		t.Errorf("message %q missing outage note", r.Message)
	}
}

func TestPlanFailsWhenEverythingDown(t *testing.T) {
	e := newExpert(
		&fakeCal{err: domain.ErrUnavailable},
		&fakeRem{err: domain.ErrUnavailable},
		&fakeLst{err: domain.ErrUnavailable},
	)

	r := e.Execute(context.Background(), dayMatch(), nil)

	if r.Success {
		t.Fatal("expected failure when no store is reachable")
	}
	if r.Err != assist.ErrorUnavailable {
		t.Errorf("error kind = %q, want unavailable", r.Err)
	}
}

func TestPlanPattern(t *testing.T) {
	e := newExpert(&fakeCal{}, &fakeRem{}, &fakeLst{})

	for _, clause := range []string{"plan my day", "what does my day look like", "daily briefing"} {
		matched := false
		for _, p := range e.Patterns() {
			if p.Re.MatchString(clause) {
				matched = true
			}
		}
		if !matched {
			t.Errorf("%q did not match", clause)
		}
	}
}
