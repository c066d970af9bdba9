// Package message provides parametrised probability distributions over
// variable domains and the factorised mean-field approximations built from
// them.
//
// Messages form an algebra: multiplying two messages of the same family
// combines independent beliefs, division removes a belief, and dividing a
// message by itself yields the family's identity ("no information"). The
// algebra is closed under the exponential-family natural-parameter
// arithmetic, so products and quotients of Gaussian messages are Gaussian.
package message

// Message is a parametrised distribution over one variable's domain.
//
// Implementations must be immutable value objects: Multiply and Divide
// return new messages and never mutate their operands. All methods are
// named rather than relying on arithmetic conventions; Apply-style
// operator sugar is deliberately absent.
type Message interface {
	// Multiply combines this belief with another of the same family.
	Multiply(other Message) (Message, error)

	// Divide removes another belief of the same family from this one.
	// Dividing a message by an identical message yields Identity().
	Divide(other Message) (Message, error)

	// LogNorm returns the log normalisation constant of the message.
	// Improper messages (non-positive precision) return ErrSingular.
	LogNorm() (float64, error)

	// Identity returns the multiplicative identity of this message's
	// family and shape.
	Identity() Message

	// KLDivergence computes KL(this || other). Both messages must be
	// proper and of the same family and shape.
	KLDivergence(other Message) (float64, error)

	// Size returns the number of elements in the message's domain.
	Size() int
}
