// Package smarthomex implements the capability expert for smart-home
// device actions, mapping spoken device names onto bridge service calls.
package smarthomex

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/home"
	"github.com/Strob0t/Hearth/internal/domain/session"
	"github.com/Strob0t/Hearth/internal/expert/storecall"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/port/smarthome"
)

const (
	LabelTurnOn  = "home.turn_on"
	LabelTurnOff = "home.turn_off"
	LabelDim     = "home.dim"
)

var (
	reTurn    = regexp.MustCompile(`(?i)^(?:turn|switch)\s+(on|off)\s+(?:the\s+)?(.+)$`)
	reTurnAlt = regexp.MustCompile(`(?i)^(?:turn|switch)\s+(?:the\s+)?(.+?)\s+(on|off)$`)
	reDim     = regexp.MustCompile(`(?i)^dim\s+(?:the\s+)?(.+?)(?:\s+to\s+(\d{1,3})\s*(?:%|percent))?$`)
)

// deviceDomains maps device words to their bridge domain. Anything not
// listed falls back to the generic switch domain.
var deviceDomains = map[string]string{
	"light":      "light",
	"lights":     "light",
	"lamp":       "light",
	"fan":        "fan",
	"thermostat": "climate",
	"heating":    "climate",
	"tv":         "media_player",
	"speaker":    "media_player",
}

// Expert handles smart-home intents through the bridge.
type Expert struct {
	bridge  smarthome.Bridge
	backoff time.Duration
}

// New creates the smart-home expert.
func New(bridge smarthome.Bridge, backoff time.Duration) *Expert {
	return &Expert{bridge: bridge, backoff: backoff}
}

// Name implements expert.Expert.
func (e *Expert) Name() string { return "smarthome" }

// Priority implements expert.Expert.
func (e *Expert) Priority() int { return 80 }

// Patterns implements expert.Expert.
func (e *Expert) Patterns() []expert.Pattern {
	return []expert.Pattern{
		{Label: LabelTurnOn, Re: reTurn, Confidence: 0.95, Extract: extractTurn},
		{Label: LabelTurnOn, Re: reTurnAlt, Confidence: 0.9, Extract: extractTurnAlt},
		{Label: LabelDim, Re: reDim, Confidence: 0.9, Extract: extractDim},
	}
}

func extractTurn(_ string, sm []string) assist.Slots {
	return assist.Slots{"state": strings.ToLower(sm[1]), "device": strings.TrimSpace(sm[2])}
}

func extractTurnAlt(_ string, sm []string) assist.Slots {
	return assist.Slots{"state": strings.ToLower(sm[2]), "device": strings.TrimSpace(sm[1])}
}

func extractDim(_ string, sm []string) assist.Slots {
	s := assist.Slots{"device": strings.TrimSpace(sm[1])}
	if sm[2] != "" {
		s["brightness"] = sm[2]
	}
	return s
}

// CanHandle implements expert.Expert.
func (e *Expert) CanHandle(m assist.IntentMatch) bool {
	return strings.HasPrefix(m.Label, "home.")
}

// Execute implements expert.Expert. Device actions are synchronous: the
// bridge result is the truth reported to the user.
func (e *Expert) Execute(ctx context.Context, m assist.IntentMatch, _ *session.Session) assist.ExpertResult {
	device := m.Slots.Get("device")
	if device == "" {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: "Which device should I control?",
			Err:     assist.ErrorValidation,
		}
	}

	call, label, verb := e.buildCall(m, device)

	var result home.Result
	kind := storecall.Do(ctx, e.backoff, func(ctx context.Context) error {
		var err error
		result, err = e.bridge.InvokeService(ctx, call)
		return err
	})
	if kind != assist.ErrorNone {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: fmt.Sprintf("I couldn't reach the %s.", device),
			Err:     kind,
		}
	}
	if !result.OK {
		return assist.ExpertResult{
			Expert:  e.Name(),
			Message: fmt.Sprintf("The %s didn't accept that: %s", device, result.Detail),
			Err:     assist.ErrorValidation,
		}
	}

	return assist.ExpertResult{
		Expert:  e.Name(),
		Success: true,
		Message: fmt.Sprintf("%s the %s.", verb, device),
		Action:  label,
		Payload: call,
	}
}

// buildCall maps the match onto a concrete bridge service call.
func (e *Expert) buildCall(m assist.IntentMatch, device string) (home.ServiceCall, string, string) {
	domain := domainFor(device)
	entity := domain + "." + entityID(device)

	if m.Label == LabelDim {
		call := home.ServiceCall{
			Service: "light.turn_on",
			Entity:  "light." + entityID(device),
		}
		if b := m.Slots.Get("brightness"); b != "" {
			call.Parameters = map[string]string{"brightness_pct": b}
		}
		return call, LabelDim, "Dimmed"
	}

	if m.Slots.Get("state") == "off" {
		return home.ServiceCall{Service: domain + ".turn_off", Entity: entity}, LabelTurnOff, "Turned off"
	}
	return home.ServiceCall{Service: domain + ".turn_on", Entity: entity}, LabelTurnOn, "Turned on"
}

// domainFor picks the bridge domain from the last device word.
func domainFor(device string) string {
	fields := strings.Fields(strings.ToLower(device))
	for i := len(fields) - 1; i >= 0; i-- {
		if d, ok := deviceDomains[fields[i]]; ok {
			return d
		}
	}
	return "switch"
}

// entityID normalizes a spoken device name into an entity id, dropping the
// trailing device word: "living room lights" -> "living_room".
func entityID(device string) string {
	fields := strings.Fields(strings.ToLower(device))
	if len(fields) > 1 {
		if _, ok := deviceDomains[fields[len(fields)-1]]; ok {
			fields = fields[:len(fields)-1]
		}
	}
	return strings.Join(fields, "_")
}
