package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
)

func TestProductUnionOfKeys(t *testing.T) {
	x := graph.NewVariable("x", 1)
	y := graph.NewVariable("y", 1)
	z := graph.NewVariable("z", 1)

	a := MeanField{
		x: NewNormalMessage(0, 1, 1),
		y: NewNormalMessage(1, 1, 1),
	}
	b := MeanField{
		y: NewNormalMessage(1, 1, 1),
		z: NewNormalMessage(2, 1, 1),
	}

	product, err := a.Product(b)
	require.NoError(t, err)
	require.Len(t, product, 3)

	// Exclusive keys pass through unchanged
	assert.Equal(t, a[x], product[x])
	assert.Equal(t, b[z], product[z])

	// Overlapping key is multiplied: two unit-variance beliefs -> precision 2
	combined := product[y].(*NormalMessage)
	assert.Equal(t, []float64{2}, combined.Precision())
}

func TestProductIsCommutative(t *testing.T) {
	x := graph.NewVariable("x", 1)

	a := MeanField{x: NewNormalMessage(1, 2, 1)}
	b := MeanField{x: NewNormalMessage(-1, 0.5, 1)}

	ab, err := a.Product(b)
	require.NoError(t, err)
	ba, err := b.Product(a)
	require.NoError(t, err)

	meanAB, err := ab[x].(*NormalMessage).Mean()
	require.NoError(t, err)
	meanBA, err := ba[x].(*NormalMessage).Mean()
	require.NoError(t, err)
	assert.InDelta(t, meanAB[0], meanBA[0], 1e-12)
}

func TestProductDoesNotMutateOperands(t *testing.T) {
	x := graph.NewVariable("x", 1)
	a := MeanField{x: NewNormalMessage(0, 1, 1)}
	b := MeanField{x: NewNormalMessage(0, 1, 1)}

	_, err := a.Product(b)
	require.NoError(t, err)

	assert.Equal(t, []float64{1}, a[x].(*NormalMessage).Precision())
	assert.Equal(t, []float64{1}, b[x].(*NormalMessage).Precision())
}

func TestIdentitySeedsProduct(t *testing.T) {
	x := graph.NewVariable("x", 1)
	y := graph.NewVariable("y", 2)

	seed := Identity(x, y)
	require.Len(t, seed, 2)

	mf := MeanField{x: NewNormalMessage(3, 1, 1), y: NewNormalMessage(0, 2, 2)}
	product, err := seed.Product(mf)
	require.NoError(t, err)

	mean, err := product[x].(*NormalMessage).Mean()
	require.NoError(t, err)
	assert.InDelta(t, 3, mean[0], 1e-12)
}

func TestRestrictMissingVariableFails(t *testing.T) {
	x := graph.NewVariable("x", 1)
	y := graph.NewVariable("y", 1)

	mf := MeanField{x: NewNormalMessage(0, 1, 1)}

	_, err := mf.Restrict(x, y)
	assert.True(t, errors.Is(err, errors.ErrMissingMessage))

	restricted, err := mf.Restrict(x)
	require.NoError(t, err)
	assert.Len(t, restricted, 1)
}

func TestLogNormSumsVariables(t *testing.T) {
	x := graph.NewVariable("x", 1)
	y := graph.NewVariable("y", 1)

	mf := MeanField{
		x: NewNormalMessage(0, 1, 1),
		y: NewNormalMessage(5, 2, 1),
	}

	logNorm, err := mf.LogNorm()
	require.NoError(t, err)
	// Both messages are normalised
	assert.InDelta(t, 0, logNorm, 1e-12)
}

func TestLogNormImproperFails(t *testing.T) {
	x := graph.NewVariable("x", 1)
	mf := MeanField{x: NormalIdentity(1)}

	_, err := mf.LogNorm()
	assert.True(t, errors.IsSingular(err))
}

func TestKLDivergenceIdenticalFieldsIsZero(t *testing.T) {
	x := graph.NewVariable("x", 1)
	y := graph.NewVariable("y", 3)

	a := MeanField{x: NewNormalMessage(0, 1, 1), y: NewNormalMessage(1, 2, 3)}
	b := MeanField{x: NewNormalMessage(0, 1, 1), y: NewNormalMessage(1, 2, 3)}

	kl, err := a.KLDivergence(b)
	require.NoError(t, err)
	assert.Equal(t, 0.0, kl)
}

func TestDivideRemovesBelief(t *testing.T) {
	x := graph.NewVariable("x", 1)

	a := MeanField{x: NewNormalMessage(0, 1, 1)}
	product, err := a.Product(a)
	require.NoError(t, err)

	back, err := product.Divide(a)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, back[x].(*NormalMessage).Precision())
}
