package ep

import (
	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
)

// HistoryEntry is one recorded optimisation outcome for a factor.
type HistoryEntry struct {
	Approx *EPMeanField
	Status Status
}

// FactorHistory tracks the sequence of approximations produced for one
// factor across optimisation rounds. Every outcome is appended to the full
// log; successful outcomes are additionally tracked in a successful
// subsequence from which the divergence metrics are computed. Failures are
// therefore transparent to LatestSuccessful and PreviousSuccessful.
//
// The history is an owned, append-only log passed by reference to whatever
// records outcomes; it holds no global state.
type FactorHistory struct {
	factor     *graph.Factor
	entries    []HistoryEntry
	successful []*EPMeanField
}

// NewFactorHistory creates an empty history for a factor.
func NewFactorHistory(factor *graph.Factor) *FactorHistory {
	return &FactorHistory{factor: factor}
}

// Factor returns the factor this history tracks.
func (h *FactorHistory) Factor() *graph.Factor {
	return h.factor
}

// Record appends an outcome to the log. Successful outcomes also extend
// the successful subsequence.
func (h *FactorHistory) Record(approx *EPMeanField, status Status) {
	h.entries = append(h.entries, HistoryEntry{Approx: approx, Status: status})
	if status.OK() {
		h.successful = append(h.successful, approx)
	}
}

// Len returns the total number of recorded outcomes.
func (h *FactorHistory) Len() int {
	return len(h.entries)
}

// SuccessCount returns the number of successful outcomes.
func (h *FactorHistory) SuccessCount() int {
	return len(h.successful)
}

// LatestSuccessful returns the most recent successful approximation.
// Querying an empty history is a logic error.
func (h *FactorHistory) LatestSuccessful() (*EPMeanField, error) {
	if len(h.successful) == 0 {
		return nil, errors.Wrapf(errors.ErrNoSuccesses, "factor %q", h.factor.Name())
	}
	return h.successful[len(h.successful)-1], nil
}

// PreviousSuccessful returns the successful approximation before the
// latest one. Querying with fewer than two successes is a logic error.
func (h *FactorHistory) PreviousSuccessful() (*EPMeanField, error) {
	if len(h.successful) < 2 {
		return nil, errors.Wrapf(errors.ErrInsufficientHistory, "factor %q", h.factor.Name())
	}
	return h.successful[len(h.successful)-2], nil
}

// KLDivergence computes KL(latest || previous) between the joint mean
// fields of the two most recent successful approximations. Exactly zero
// when the two snapshots are value-identical; this is the convergence
// signal the optimiser consumes.
func (h *FactorHistory) KLDivergence() (float64, error) {
	latest, err := h.LatestSuccessful()
	if err != nil {
		return 0, err
	}
	previous, err := h.PreviousSuccessful()
	if err != nil {
		return 0, err
	}
	latestMF, err := latest.MeanField()
	if err != nil {
		return 0, err
	}
	previousMF, err := previous.MeanField()
	if err != nil {
		return 0, err
	}
	return latestMF.KLDivergence(previousMF)
}

// EvidenceDivergence computes the difference in log evidence between the
// two most recent successful approximations. Exactly zero when the two
// snapshots are value-identical.
func (h *FactorHistory) EvidenceDivergence() (float64, error) {
	latest, err := h.LatestSuccessful()
	if err != nil {
		return 0, err
	}
	previous, err := h.PreviousSuccessful()
	if err != nil {
		return 0, err
	}
	latestEvidence, err := latest.LogEvidence()
	if err != nil {
		return 0, err
	}
	previousEvidence, err := previous.LogEvidence()
	if err != nil {
		return 0, err
	}
	return latestEvidence - previousEvidence, nil
}
