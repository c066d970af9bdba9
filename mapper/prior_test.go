package mapper

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphfit/message"
)

func TestGaussianPriorQuantile(t *testing.T) {
	p, err := NewGaussianPrior(2, 3)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, p.ValueForUnit(0.5), 1e-12)
	// Symmetry of the quantile function around the mean.
	assert.InDelta(t, 4.0, p.ValueForUnit(0.25)+p.ValueForUnit(0.75), 1e-9)
	assert.Less(t, p.ValueForUnit(0.01), p.ValueForUnit(0.99))
}

func TestGaussianPriorMessage(t *testing.T) {
	p, err := NewGaussianPrior(1, 0.5)
	require.NoError(t, err)

	m := p.Message(2).(*message.NormalMessage)
	mean, err := m.Mean()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, mean)
	assert.InDelta(t, 4.0, m.Precision()[0], 1e-12)
}

func TestGaussianPriorRejectsBadSigma(t *testing.T) {
	_, err := NewGaussianPrior(0, 0)
	assert.Error(t, err)
	_, err = NewGaussianPrior(0, -1)
	assert.Error(t, err)
}

func TestUniformPriorQuantile(t *testing.T) {
	p, err := NewUniformPrior(-1, 3)
	require.NoError(t, err)

	assert.InDelta(t, -1.0, p.ValueForUnit(0), 1e-12)
	assert.InDelta(t, 1.0, p.ValueForUnit(0.5), 1e-12)
	assert.InDelta(t, 3.0, p.ValueForUnit(1), 1e-12)
	assert.InDelta(t, 1.0, p.Mean(), 1e-12)
}

func TestUniformPriorMomentMatchedMessage(t *testing.T) {
	p, err := NewUniformPrior(0, 1)
	require.NoError(t, err)

	m := p.Message(1).(*message.NormalMessage)
	mean, err := m.Mean()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, mean[0], 1e-12)
	variance, err := m.Variance()
	require.NoError(t, err)
	assert.InDelta(t, 1.0/12, variance[0], 1e-12)
}

func TestUniformPriorRejectsEmptyInterval(t *testing.T) {
	_, err := NewUniformPrior(1, 1)
	assert.Error(t, err)
	_, err = NewUniformPrior(2, 1)
	assert.Error(t, err)
}

func TestLogUniformPriorQuantile(t *testing.T) {
	p, err := NewLogUniformPrior(0.01, 100)
	require.NoError(t, err)

	assert.InDelta(t, 0.01, p.ValueForUnit(0), 1e-12)
	assert.InDelta(t, 100, p.ValueForUnit(1), 1e-9)
	// Midpoint in log space is the geometric mean of the bounds.
	assert.InDelta(t, 1.0, p.ValueForUnit(0.5), 1e-9)
}

func TestLogUniformPriorMoments(t *testing.T) {
	lower, upper := 1.0, math.E
	p, err := NewLogUniformPrior(lower, upper)
	require.NoError(t, err)

	// For [1, e] the log ratio is 1, so the mean is e - 1.
	assert.InDelta(t, math.E-1, p.Mean(), 1e-12)

	m := p.Message(1).(*message.NormalMessage)
	mean, err := m.Mean()
	require.NoError(t, err)
	assert.InDelta(t, math.E-1, mean[0], 1e-12)
	assert.True(t, m.IsProper())
}

func TestLogUniformPriorRejectsBadBounds(t *testing.T) {
	_, err := NewLogUniformPrior(0, 1)
	assert.Error(t, err)
	_, err = NewLogUniformPrior(-1, 1)
	assert.Error(t, err)
	_, err = NewLogUniformPrior(2, 2)
	assert.Error(t, err)
}
