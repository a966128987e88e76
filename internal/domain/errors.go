// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnavailable indicates a downstream collaborator could not be reached.
var ErrUnavailable = errors.New("collaborator unavailable")

// ErrTransient indicates a downstream call failed in a way that is safe to
// retry once (timeout, 5xx).
var ErrTransient = errors.New("transient failure")
