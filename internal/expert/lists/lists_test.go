package lists

import (
	"context"
	"strings"
	"testing"

	"github.com/Strob0t/Hearth/internal/domain"
	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/list"
)

// fakeStore is an in-memory liststore.Store with scriptable failures.
type fakeStore struct {
	items      []list.Item
	createErr  error
	queryErr   error
	deleteErr  error
	createHits int
}

func (s *fakeStore) CreateItem(_ context.Context, item *list.Item) error {
	s.createHits++
	if s.createErr != nil {
		return s.createErr
	}
	s.items = append(s.items, *item)
	return nil
}

func (s *fakeStore) QueryItems(_ context.Context, f list.Filter) ([]list.Item, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	var out []list.Item
	for _, it := range s.items {
		if f.List != "" && it.List != f.List {
			continue
		}
		if it.Done && !f.IncludeDone {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *fakeStore) UpdateItem(_ context.Context, item *list.Item) error { return nil }

func (s *fakeStore) DeleteItem(_ context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for i, it := range s.items {
		if it.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func matchFor(t *testing.T, e *Expert, clause string) assist.IntentMatch {
	t.Helper()
	for _, p := range e.Patterns() {
		if sm := p.Re.FindStringSubmatch(clause); sm != nil {
			m := assist.IntentMatch{Label: p.Label, Expert: e.Name(), Clause: clause, DependsOn: -1}
			if p.Extract != nil {
				m.Slots = p.Extract(clause, sm)
			}
			return m
		}
	}
	t.Fatalf("no pattern matched %q", clause)
	return assist.IntentMatch{}
}

func TestPatternsExtractSlots(t *testing.T) {
	e := New(&fakeStore{}, 0)

	tests := []struct {
		clause   string
		label    string
		item     string
		listName string
	}{
		{"add milk to my shopping list", LabelAdd, "milk", "shopping"},
		{"put bananas and apples on the list", LabelAdd, "bananas and apples", ""},
		{"add call mom to my todo list", LabelAdd, "call mom", "todo"},
		{"i need to buy coffee", LabelAdd, "coffee", ""},
		{"remove milk from my shopping list", LabelRemove, "milk", "shopping"},
	}

	for _, tt := range tests {
		t.Run(tt.clause, func(t *testing.T) {
			m := matchFor(t, e, tt.clause)
			if m.Label != tt.label {
				t.Errorf("label = %q, want %q", m.Label, tt.label)
			}
			if got := m.Slots.Get("item"); got != tt.item {
				t.Errorf("item = %q, want %q", got, tt.item)
			}
			if got := m.Slots.Get("list"); got != tt.listName {
				t.Errorf("list = %q, want %q", got, tt.listName)
			}
		})
	}
}

func TestQueryPattern(t *testing.T) {
	e := New(&fakeStore{}, 0)

	for _, clause := range []string{
		"what's on my shopping list",
		"show me the shopping list",
		"show my todo list",
	} {
		m := matchFor(t, e, clause)
		if m.Label != LabelQuery {
			t.Errorf("%q: label = %q, want %q", clause, m.Label, LabelQuery)
		}
	}
}

func TestAddItem(t *testing.T) {
	store := &fakeStore{}
	e := New(store, 0)

	m := matchFor(t, e, "add milk to my shopping list")
	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if r.Action != LabelAdd {
		t.Errorf("action = %q", r.Action)
	}
	if r.Message != "Added milk to your shopping list." {
		t.Errorf("message = %q", r.Message)
	}
	if len(store.items) != 1 || store.items[0].Name != "milk" {
		t.Errorf("stored items = %+v", store.items)
	}
}

func TestAddDefaultsListName(t *testing.T) {
	store := &fakeStore{}
	e := New(store, 0)

	m := matchFor(t, e, "i need to buy coffee")
	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if store.items[0].List != list.DefaultList {
		t.Errorf("list = %q, want default", store.items[0].List)
	}
}

func TestAddMissingItemIsValidation(t *testing.T) {
	e := New(&fakeStore{}, 0)

	r := e.Execute(context.Background(), assist.IntentMatch{Label: LabelAdd}, nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err != assist.ErrorValidation {
		t.Errorf("error kind = %q, want validation", r.Err)
	}
}

func TestAddRetriesTransientOnce(t *testing.T) {
	store := &fakeStore{createErr: domain.ErrTransient}
	e := New(store, 0)

	m := matchFor(t, e, "add milk to my shopping list")
	r := e.Execute(context.Background(), m, nil)

	if r.Success {
		t.Fatal("expected failure after retry")
	}
	if r.Err != assist.ErrorTransient {
		t.Errorf("error kind = %q, want transient", r.Err)
	}
	if store.createHits != 2 {
		t.Errorf("create attempts = %d, want 2", store.createHits)
	}
}

func TestAddUnavailableNotRetried(t *testing.T) {
	store := &fakeStore{createErr: domain.ErrUnavailable}
	e := New(store, 0)

	m := matchFor(t, e, "add milk to my shopping list")
	r := e.Execute(context.Background(), m, nil)

	if r.Err != assist.ErrorUnavailable {
		t.Errorf("error kind = %q, want unavailable", r.Err)
	}
	if store.createHits != 1 {
		t.Errorf("create attempts = %d, want 1 (no retry)", store.createHits)
	}
}

func TestQueryItems(t *testing.T) {
	store := &fakeStore{items: []list.Item{
		{ID: "1", List: "shopping", Name: "milk"},
		{ID: "2", List: "shopping", Name: "bread"},
		{ID: "3", List: "shopping", Name: "done thing", Done: true},
	}}
	e := New(store, 0)

	m := matchFor(t, e, "what's on my shopping list")
	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if !strings.Contains(r.Message, "milk, bread") {
		t.Errorf("message = %q", r.Message)
	}
	if strings.Contains(r.Message, "done thing") {
		t.Error("completed items must not be listed")
	}
}

func TestQueryEmptyList(t *testing.T) {
	e := New(&fakeStore{}, 0)

	m := matchFor(t, e, "what's on my shopping list")
	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if r.Message != "Your shopping list is empty." {
		t.Errorf("message = %q", r.Message)
	}
}

func TestRemoveItem(t *testing.T) {
	store := &fakeStore{items: []list.Item{
		{ID: "1", List: "shopping", Name: "Milk"},
	}}
	e := New(store, 0)

	m := matchFor(t, e, "remove milk from my shopping list")
	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if len(store.items) != 0 {
		t.Errorf("items left = %+v", store.items)
	}
}

func TestRemoveUnknownItem(t *testing.T) {
	e := New(&fakeStore{}, 0)

	m := matchFor(t, e, "remove milk from my shopping list")
	r := e.Execute(context.Background(), m, nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err != assist.ErrorValidation {
		t.Errorf("error kind = %q, want validation", r.Err)
	}
}

func TestCanHandle(t *testing.T) {
	e := New(&fakeStore{}, 0)

	if !e.CanHandle(assist.IntentMatch{Label: LabelAdd}) {
		t.Error("expected list.add to be handled")
	}
	if e.CanHandle(assist.IntentMatch{Label: "calendar.create"}) {
		t.Error("expected foreign label to be rejected")
	}
}
