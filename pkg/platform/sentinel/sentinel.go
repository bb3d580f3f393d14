package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store (or its TTL elapsed)
// - ErrConflict: insert violated a uniqueness constraint
// - ErrExpired: entry lifetime elapsed; wrapped alongside ErrNotFound
// - ErrUnavailable: backing state is unusable (e.g. a corrupt stored hash)
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrUnavailable = errors.New("unavailable")
)
