// Package home provides the domain model for smart-home device actions.
package home

// ServiceCall is one synchronous device action routed through the bridge,
// in the shape of a Home-Assistant-style service invocation.
type ServiceCall struct {
	Service    string            `json:"service"`     // e.g. "light.turn_on"
	Entity     string            `json:"entity"`      // e.g. "light.living_room"
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Result is the outcome reported by the bridge.
type Result struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}
