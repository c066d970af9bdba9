package ep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/message"
)

func TestFactorHistoryEmpty(t *testing.T) {
	_, prior, _, _ := sharedVariableGraph(t)
	history := NewFactorHistory(prior)

	assert.Equal(t, 0, history.Len())
	assert.Equal(t, 0, history.SuccessCount())

	_, err := history.LatestSuccessful()
	assert.ErrorIs(t, err, errors.ErrNoSuccesses)

	_, err = history.PreviousSuccessful()
	assert.ErrorIs(t, err, errors.ErrInsufficientHistory)

	_, err = history.KLDivergence()
	assert.Error(t, err)
}

func TestFactorHistorySingleSuccess(t *testing.T) {
	_, prior, _, approx := sharedVariableGraph(t)
	history := NewFactorHistory(prior)
	history.Record(approx, StatusOK())

	latest, err := history.LatestSuccessful()
	require.NoError(t, err)
	assert.Same(t, approx, latest)

	// One success is not enough for divergence metrics.
	_, err = history.PreviousSuccessful()
	assert.ErrorIs(t, err, errors.ErrInsufficientHistory)
}

func TestFactorHistoryIdenticalSnapshotsHaveZeroDivergence(t *testing.T) {
	_, prior, _, approx := sharedVariableGraph(t)
	history := NewFactorHistory(prior)
	history.Record(approx, StatusOK())
	history.Record(approx, StatusOK())

	kl, err := history.KLDivergence()
	require.NoError(t, err)
	assert.Zero(t, kl)

	evidence, err := history.EvidenceDivergence()
	require.NoError(t, err)
	assert.Zero(t, evidence)
}

func TestFactorHistoryFailuresAreTransparent(t *testing.T) {
	_, prior, _, first := sharedVariableGraph(t)
	fa, err := first.FactorApproximation(prior)
	require.NoError(t, err)
	second, err := first.ProjectFactorApprox(fa)
	require.NoError(t, err)

	history := NewFactorHistory(prior)
	history.Record(first, StatusOK())
	history.Record(first, StatusFailed("optimiser diverged"))
	history.Record(second, StatusOK())

	assert.Equal(t, 3, history.Len())
	assert.Equal(t, 2, history.SuccessCount())

	latest, err := history.LatestSuccessful()
	require.NoError(t, err)
	assert.Same(t, second, latest)

	previous, err := history.PreviousSuccessful()
	require.NoError(t, err)
	assert.Same(t, first, previous)

	// Both snapshots carry the same values, so divergences stay zero
	// despite the interleaved failure.
	kl, err := history.KLDivergence()
	require.NoError(t, err)
	assert.Zero(t, kl)
}

func TestFactorHistoryTracksChangedSnapshot(t *testing.T) {
	x, prior, _, first := sharedVariableGraph(t)
	fa, err := first.FactorApproximation(prior)
	require.NoError(t, err)

	updated, err := first.ProjectFactorApprox(fa.WithFactorDist(
		message.MeanField{x: message.NewNormalMessage(2, 0.5, 1)},
	))
	require.NoError(t, err)

	history := NewFactorHistory(prior)
	history.Record(first, StatusOK())
	history.Record(updated, StatusOK())

	kl, err := history.KLDivergence()
	require.NoError(t, err)
	assert.Positive(t, kl)

	evidence, err := history.EvidenceDivergence()
	require.NoError(t, err)
	assert.NotZero(t, evidence)
}
