// Package pfcore holds the identifier types and error kinds shared by
// every reconstruction package, so that internal/cluster, internal/track,
// internal/merge and the rest don't each invent their own.
package pfcore

import "errors"

// CaloHitID identifies a calo hit owned by a hit manager. Hits are never
// compared by pointer identity; only by this id.
type CaloHitID uint64

// ClusterID identifies a cluster owned by a cluster.Manager.
type ClusterID uint64

// TrackID identifies a track owned by a track.Manager.
type TrackID uint64

// The five error kinds a core operation can return. Recoverable marks
// ErrNotFound and ErrNotInitialised as the skippable ones; the operators
// in this module do not call it and return every error they receive,
// which ends that operator's pass.
var (
	ErrNotFound         = errors.New("pfreco: not found")
	ErrInvalidParameter = errors.New("pfreco: invalid parameter")
	ErrAlreadyPresent   = errors.New("pfreco: already present")
	ErrFailure          = errors.New("pfreco: failure")
	ErrNotInitialised   = errors.New("pfreco: not initialised")
)

// Recoverable reports whether err represents a condition an operator's
// main loop should treat as "skip this candidate" rather than aborting
// the whole pass.
func Recoverable(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotInitialised)
}
