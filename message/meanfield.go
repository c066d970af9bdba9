package message

import (
	"math"

	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
)

// MeanField is a factorised joint distribution: one message per variable.
// Keys are variable identities; the message stored under a variable is
// always a distribution over that variable's domain.
//
// MeanField values are treated as immutable. Product and Restrict return
// new maps and never modify their receivers, which is what lets EP keep
// multiple approximation snapshots alive for convergence comparison.
type MeanField map[*graph.Variable]Message

// Identity returns a mean field mapping every variable to the Gaussian
// multiplicative identity over its domain. Used as the seed when folding
// products so that an empty product is well defined.
func Identity(variables ...*graph.Variable) MeanField {
	mf := make(MeanField, len(variables))
	for _, v := range variables {
		mf[v] = NormalIdentity(v.Size())
	}
	return mf
}

// Restrict returns the sub-field over exactly the given variables. A
// variable without a message is a structural error, never a silent default.
func (mf MeanField) Restrict(variables ...*graph.Variable) (MeanField, error) {
	out := make(MeanField, len(variables))
	for _, v := range variables {
		m, ok := mf[v]
		if !ok {
			return nil, errors.Wrapf(errors.ErrMissingMessage, "variable %q", v.Name())
		}
		out[v] = m
	}
	return out, nil
}

// Product computes the pointwise product of this mean field with others.
// Variables shared between operands have their messages multiplied;
// variables present in only one operand pass through unchanged. The
// operation is associative and commutative given the message algebra's own
// associativity and commutativity.
func (mf MeanField) Product(others ...MeanField) (MeanField, error) {
	out := make(MeanField, len(mf))
	for v, m := range mf {
		out[v] = m
	}
	for _, other := range others {
		for v, m := range other {
			existing, ok := out[v]
			if !ok {
				out[v] = m
				continue
			}
			combined, err := existing.Multiply(m)
			if err != nil {
				return nil, errors.Wrapf(err, "product over variable %q", v.Name())
			}
			out[v] = combined
		}
	}
	return out, nil
}

// Divide removes another mean field's beliefs pointwise. Every variable of
// other must be present in mf.
func (mf MeanField) Divide(other MeanField) (MeanField, error) {
	out := make(MeanField, len(mf))
	for v, m := range mf {
		out[v] = m
	}
	for v, m := range other {
		existing, ok := out[v]
		if !ok {
			return nil, errors.Wrapf(errors.ErrMissingMessage, "variable %q", v.Name())
		}
		quotient, err := existing.Divide(m)
		if err != nil {
			return nil, errors.Wrapf(err, "quotient over variable %q", v.Name())
		}
		out[v] = quotient
	}
	return out, nil
}

// LogNorm sums the per-variable log normalisation constants. Any improper
// message makes the whole field improper.
func (mf MeanField) LogNorm() (float64, error) {
	total := 0.0
	for v, m := range mf {
		logNorm, err := m.LogNorm()
		if err != nil {
			return math.NaN(), errors.Wrapf(err, "log norm of variable %q", v.Name())
		}
		total += logNorm
	}
	return total, nil
}

// KLDivergence sums KL(mf[v] || other[v]) over the variables of mf. The two
// fields must cover the same variables.
func (mf MeanField) KLDivergence(other MeanField) (float64, error) {
	if len(mf) != len(other) {
		return math.NaN(), errors.Wrapf(errors.ErrShapeMismatch,
			"mean fields cover %d and %d variables", len(mf), len(other))
	}
	total := 0.0
	for v, m := range mf {
		o, ok := other[v]
		if !ok {
			return math.NaN(), errors.Wrapf(errors.ErrMissingMessage, "variable %q", v.Name())
		}
		kl, err := m.KLDivergence(o)
		if err != nil {
			return math.NaN(), errors.Wrapf(err, "KL divergence of variable %q", v.Name())
		}
		total += kl
	}
	return total, nil
}

// Variables returns the variables covered by the mean field. Order is not
// defined; callers needing determinism should order against a graph.
func (mf MeanField) Variables() []*graph.Variable {
	vars := make([]*graph.Variable, 0, len(mf))
	for v := range mf {
		vars = append(vars, v)
	}
	return vars
}
