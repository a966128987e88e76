package smarthomex

import (
	"context"
	"testing"

	"github.com/Strob0t/Hearth/internal/domain"
	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/home"
)

type fakeBridge struct {
	calls  []home.ServiceCall
	result home.Result
	err    error
	hits   int
}

func (b *fakeBridge) InvokeService(_ context.Context, call home.ServiceCall) (home.Result, error) {
	b.hits++
	b.calls = append(b.calls, call)
	if b.err != nil {
		return home.Result{}, b.err
	}
	return b.result, nil
}

func okBridge() *fakeBridge {
	return &fakeBridge{result: home.Result{OK: true}}
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

func TestTurnOnLights(t *testing.T) {
	bridge := okBridge()
	e := New(bridge, 0)

	m := matchFor(t, e, "turn on the living room lights")
	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if r.Action != LabelTurnOn {
		t.Errorf("action = %q", r.Action)
	}
	call := bridge.calls[0]
	if call.Service != "light.turn_on" {
		t.Errorf("service = %q", call.Service)
	}
	if call.Entity != "light.living_room" {
		t.Errorf("entity = %q", call.Entity)
	}
}

func TestTurnOffAltWordOrder(t *testing.T) {
	bridge := okBridge()
	e := New(bridge, 0)

	m := matchFor(t, e, "switch the kitchen lamp off")
	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	if r.Action != LabelTurnOff {
		t.Errorf("action = %q, want turn_off", r.Action)
	}
	if bridge.calls[0].Service != "light.turn_off" {
		t.Errorf("service = %q", bridge.calls[0].Service)
	}
}

func TestDimWithBrightness(t *testing.T) {
	bridge := okBridge()
	e := New(bridge, 0)

	m := matchFor(t, e, "dim the bedroom lights to 30%")
	r := e.Execute(context.Background(), m, nil)

	if !r.Success {
		t.Fatalf("Execute failed: %+v", r)
	}
	call := bridge.calls[0]
	if call.Service != "light.turn_on" {
		t.Errorf("service = %q", call.Service)
	}
	if call.Parameters["brightness_pct"] != "30" {
		t.Errorf("parameters = %v", call.Parameters)
	}
}

func TestUnknownDeviceFallsBackToSwitch(t *testing.T) {
	bridge := okBridge()
	e := New(bridge, 0)

	m := matchFor(t, e, "turn on the coffee maker")
	e.Execute(context.Background(), m, nil)

	if bridge.calls[0].Service != "switch.turn_on" {
		t.Errorf("service = %q, want switch domain fallback", bridge.calls[0].Service)
	}
	if bridge.calls[0].Entity != "switch.coffee_maker" {
		t.Errorf("entity = %q", bridge.calls[0].Entity)
	}
}

func TestBridgeRejection(t *testing.T) {
	bridge := &fakeBridge{result: home.Result{OK: false, Detail: "entity not found"}}
	e := New(bridge, 0)

	m := matchFor(t, e, "turn on the garage lights")
	r := e.Execute(context.Background(), m, nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err != assist.ErrorValidation {
		t.Errorf("error kind = %q, want validation", r.Err)
	}
}

func TestBridgeUnreachable(t *testing.T) {
	bridge := &fakeBridge{err: domain.ErrUnavailable}
	e := New(bridge, 0)

	m := matchFor(t, e, "turn on the lights")
	r := e.Execute(context.Background(), m, nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if r.Err != assist.ErrorUnavailable {
		t.Errorf("error kind = %q, want unavailable", r.Err)
	}
	if bridge.hits != 1 {
		t.Errorf("bridge hits = %d, want 1 (unavailable is not retried)", bridge.hits)
	}
}

func TestBridgeTransientRetriedOnce(t *testing.T) {
	bridge := &fakeBridge{err: domain.ErrTransient}
	e := New(bridge, 0)

	m := matchFor(t, e, "turn on the lights")
	r := e.Execute(context.Background(), m, nil)

	if r.Success {
		t.Fatal("expected failure")
	}
	if bridge.hits != 2 {
		t.Errorf("bridge hits = %d, want 2", bridge.hits)
	}
}

func TestMissingDeviceIsValidation(t *testing.T) {
	e := New(okBridge(), 0)

	r := e.Execute(context.Background(), assist.IntentMatch{Label: LabelTurnOn}, nil)

	if r.Err != assist.ErrorValidation {
		t.Errorf("error kind = %q, want validation", r.Err)
	}
}
