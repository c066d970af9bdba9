package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrMissingMessage,
		ErrUnknownFactor,
		ErrShapeMismatch,
		ErrFamilyMismatch,
		ErrSingular,
		ErrNoSuccesses,
		ErrInsufficientHistory,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				assert.True(t, Is(a, b))
			} else {
				assert.False(t, Is(a, b), "sentinel %d matched sentinel %d", i, j)
			}
		}
	}
}

func TestIsSingular(t *testing.T) {
	assert.False(t, IsSingular(nil))
	assert.False(t, IsSingular(New("other")))
	assert.True(t, IsSingular(ErrSingular))
	assert.True(t, IsSingular(Wrap(ErrSingular, "evidence computation")))
}

func TestIsPrecondition(t *testing.T) {
	assert.False(t, IsPrecondition(nil))
	assert.False(t, IsPrecondition(ErrSingular))
	assert.True(t, IsPrecondition(Wrapf(ErrMissingMessage, "variable %q", "x")))
	assert.True(t, IsPrecondition(ErrUnknownFactor))
	assert.True(t, IsPrecondition(ErrShapeMismatch))
}
