package ep

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
	"github.com/teranos/graphfit/message"
)

// countingOptimiser wraps another optimiser and records how often it ran.
type countingOptimiser struct {
	inner FactorOptimiser
	calls int
}

func (c *countingOptimiser) OptimiseFactor(approx *FactorApproximation) (message.MeanField, Status) {
	c.calls++
	return c.inner.OptimiseFactor(approx)
}

// failingOptimiser always reports failure.
type failingOptimiser struct{}

func (failingOptimiser) OptimiseFactor(*FactorApproximation) (message.MeanField, Status) {
	return nil, StatusFailed("deliberately refused")
}

func TestIdentityOptimiserRoundPreservesJoint(t *testing.T) {
	x, prior, likelihood, approx := sharedVariableGraph(t)
	fg := approx.FactorGraph()

	optimiser := NewEPOptimiser(fg, IdentityOptimiser{}, nil, Options{MaxSteps: 8})
	result, err := optimiser.Run(approx)
	require.NoError(t, err)

	// Identity updates leave every snapshot equal, so the run converges
	// right after divergence metrics become available.
	joint, err := result.MeanField()
	require.NoError(t, err)
	m := joint[x].(*message.NormalMessage)
	assert.InDelta(t, 2.0, m.Precision()[0], 1e-12)
	mean, err := m.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 0.0, mean[0], 1e-12)

	for _, factor := range []*graph.Factor{prior, likelihood} {
		history, err := optimiser.History(factor)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, history.SuccessCount(), 2)

		kl, err := history.KLDivergence()
		require.NoError(t, err)
		assert.Zero(t, kl)
	}
}

func TestExactOptimiserReplacesFactorBelief(t *testing.T) {
	x := graph.NewVariable("x", 1)
	prior := graph.NewFactor("prior", nil, x)
	fg := graph.NewFactorGraph(prior)

	approx, err := FromApproxDists(fg, message.MeanField{
		x: message.NewNormalMessage(0, 10, 1),
	})
	require.NoError(t, err)

	exact := message.MeanField{x: message.NewNormalMessage(1, 0.5, 1)}
	optimiser := NewEPOptimiser(fg, NewExactOptimiser(exact), nil, Options{MaxSteps: 8})
	result, err := optimiser.Run(approx)
	require.NoError(t, err)

	joint, err := result.MeanField()
	require.NoError(t, err)
	m := joint[x].(*message.NormalMessage)
	mean, err := m.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mean[0], 1e-12)
	assert.InDelta(t, 4.0, m.Precision()[0], 1e-12)
}

func TestExactOptimiserMissingVariableFails(t *testing.T) {
	x := graph.NewVariable("x", 1)
	prior := graph.NewFactor("prior", nil, x)
	fg := graph.NewFactorGraph(prior)

	approx, err := FromApproxDists(fg, message.MeanField{
		x: message.NewNormalMessage(0, 1, 1),
	})
	require.NoError(t, err)
	fa, err := approx.FactorApproximation(prior)
	require.NoError(t, err)

	// Exact field covers a different variable, so the update cannot be
	// restricted to the factor.
	exact := message.MeanField{
		graph.NewVariable("y", 1): message.NewNormalMessage(0, 1, 1),
	}
	dist, status := NewExactOptimiser(exact).OptimiseFactor(fa)
	assert.Nil(t, dist)
	assert.False(t, status.OK())
	assert.Contains(t, status.String(), "x")
}

func TestPerFactorOptimiserSelection(t *testing.T) {
	_, prior, _, approx := sharedVariableGraph(t)
	fg := approx.FactorGraph()

	dedicated := &countingOptimiser{inner: IdentityOptimiser{}}
	fallback := &countingOptimiser{inner: IdentityOptimiser{}}
	optimiser := NewEPOptimiser(fg, fallback, map[*graph.Factor]FactorOptimiser{
		prior: dedicated,
	}, Options{MaxSteps: 4})

	_, err := optimiser.Run(approx)
	require.NoError(t, err)

	assert.Positive(t, dedicated.calls)
	assert.Positive(t, fallback.calls)
	// Each round visits both factors once, through their own optimisers.
	assert.Equal(t, dedicated.calls, fallback.calls)
}

func TestFailedOptimiserRecordsAndContinues(t *testing.T) {
	_, prior, _, approx := sharedVariableGraph(t)
	fg := approx.FactorGraph()

	optimiser := NewEPOptimiser(fg, failingOptimiser{}, nil, Options{MaxSteps: 3})
	result, err := optimiser.Run(approx)
	require.NoError(t, err)
	assert.Same(t, approx, result)

	history, err := optimiser.History(prior)
	require.NoError(t, err)
	assert.Equal(t, 3, history.Len())
	assert.Equal(t, 0, history.SuccessCount())

	_, err = history.LatestSuccessful()
	assert.ErrorIs(t, err, errors.ErrNoSuccesses)
}

func TestObserverSeesEveryUpdate(t *testing.T) {
	_, _, _, approx := sharedVariableGraph(t)
	fg := approx.FactorGraph()

	var updates int
	optimiser := NewEPOptimiser(fg, IdentityOptimiser{}, nil, Options{MaxSteps: 2})
	optimiser.SetObserver(func(step int, factor *graph.Factor, status Status, logEvidence float64) {
		updates++
		assert.True(t, status.OK())
		assert.True(t, fg.Contains(factor))
		assert.False(t, math.IsNaN(logEvidence), "log evidence should be finite here")
	})

	_, err := optimiser.Run(approx)
	require.NoError(t, err)

	// Identity updates converge after round two: 2 factors x 2 rounds.
	assert.Equal(t, 4, updates)
}

func TestHistoryUnknownFactor(t *testing.T) {
	_, _, _, approx := sharedVariableGraph(t)
	fg := approx.FactorGraph()

	optimiser := NewEPOptimiser(fg, IdentityOptimiser{}, nil, Options{})
	stranger := graph.NewFactor("stranger", nil, graph.NewVariable("z", 1))
	_, err := optimiser.History(stranger)
	assert.ErrorIs(t, err, errors.ErrUnknownFactor)
}

func TestRunIDsAreUnique(t *testing.T) {
	fg := graph.NewFactorGraph(graph.NewFactor("prior", nil, graph.NewVariable("x", 1)))

	a := NewEPOptimiser(fg, IdentityOptimiser{}, nil, Options{})
	b := NewEPOptimiser(fg, IdentityOptimiser{}, nil, Options{})
	assert.NotEmpty(t, a.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestUpdateOptions(t *testing.T) {
	fg := graph.NewFactorGraph(graph.NewFactor("prior", nil, graph.NewVariable("x", 1)))

	optimiser := NewEPOptimiser(fg, IdentityOptimiser{}, nil, Options{})
	assert.Equal(t, DefaultOptions(), optimiser.Options())

	optimiser.UpdateOptions(Options{MaxSteps: 5, KLTol: 0.5})
	opts := optimiser.Options()
	assert.Equal(t, 5, opts.MaxSteps)
	assert.InDelta(t, 0.5, opts.KLTol, 0)
	// Fields left at zero keep their current values.
	assert.InDelta(t, DefaultOptions().EvidenceTol, opts.EvidenceTol, 0)

	optimiser.UpdateOptions(Options{MaxSteps: -3, EvidenceTol: 1e-2})
	opts = optimiser.Options()
	assert.Equal(t, 5, opts.MaxSteps)
	assert.InDelta(t, 1e-2, opts.EvidenceTol, 0)
}
