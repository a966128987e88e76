// Package routing provides the domain model for dynamic model selection:
// complexity tiers, candidate routes, and routing decisions.
package routing

import "time"

// Tier is the coarse complexity bucket used to pick a candidate chain.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierLow || t == TierMedium || t == TierHigh
}

// ModelRoute is one statically configured (provider, model) candidate.
// Routes are immutable at runtime; only breaker counters move.
type ModelRoute struct {
	Provider string `yaml:"provider" json:"provider"` // registered backend name, e.g. "ollama"
	Model    string `yaml:"model" json:"model"`
	Tier     Tier   `yaml:"tier" json:"tier"`
}

// Key returns the unique identity of the route used for breaker counters
// and no-revisit tracking.
func (r ModelRoute) Key() string {
	return r.Provider + "/" + r.Model
}

// Reason explains why a particular route was chosen for a request.
type Reason string

const (
	ReasonPrimary     Reason = "primary"
	ReasonFallback    Reason = "fallback"
	ReasonCircuitOpen Reason = "circuit_open" // previous candidate skipped, circuit open
)

// Decision records which route answered a narration request. Observability
// only, never authoritative state.
type Decision struct {
	Route     ModelRoute `json:"route"`
	Reason    Reason     `json:"reason"`
	Attempt   int        `json:"attempt"` // 1-based position in the chain
	Timestamp time.Time  `json:"timestamp"`
}
