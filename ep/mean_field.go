package ep

import (
	"fmt"
	"math"

	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
	"github.com/teranos/graphfit/logger"
	"github.com/teranos/graphfit/message"
)

// EPMeanField encodes the EP mean-field approximation to a factor graph:
// one mean field per factor, over exactly that factor's variables, plus the
// graph they all refer to.
//
// EPMeanField is logically immutable. Projecting an updated factor
// approximation produces a new EPMeanField; the original stays valid, which
// is what lets FactorHistory compare successive snapshots for convergence.
// The factor graph itself is shared between snapshots, never copied.
type EPMeanField struct {
	factorGraph     *graph.FactorGraph
	factorMeanField map[*graph.Factor]message.MeanField
}

// FromApproxDists builds the initial approximation for a graph by
// restricting a variable-to-message mapping to each factor's variables.
// Every variable touched by any factor must have a message; a missing entry
// is a structural error (ErrMissingMessage), never a silent default.
func FromApproxDists(
	factorGraph *graph.FactorGraph,
	approxDists message.MeanField,
) (*EPMeanField, error) {
	factorMeanField := make(map[*graph.Factor]message.MeanField)
	for _, factor := range factorGraph.Factors() {
		mf, err := approxDists.Restrict(factor.AllVariables()...)
		if err != nil {
			return nil, errors.Wrapf(err, "building mean field for factor %q", factor.Name())
		}
		factorMeanField[factor] = mf
	}
	return &EPMeanField{
		factorGraph:     factorGraph,
		factorMeanField: factorMeanField,
	}, nil
}

// FactorGraph returns the approximated graph (shared, read-only).
func (a *EPMeanField) FactorGraph() *graph.FactorGraph {
	return a.factorGraph
}

// Variables returns the free variables of the underlying graph.
func (a *EPMeanField) Variables() []*graph.Variable {
	return a.factorGraph.Variables()
}

// DeterministicVariables returns the deterministic variables of the
// underlying graph.
func (a *EPMeanField) DeterministicVariables() []*graph.Variable {
	return a.factorGraph.DeterministicVariables()
}

// FactorMeanField returns the mean field currently associated with a
// factor. Requesting a factor outside the graph is a programming error.
func (a *EPMeanField) FactorMeanField(factor *graph.Factor) (message.MeanField, error) {
	mf, ok := a.factorMeanField[factor]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownFactor, "factor %q", factor.Name())
	}
	return mf, nil
}

// FactorApproximation assembles the one-factor update unit: the factor's
// own distribution, the cavity built from every other factor's mean field
// restricted to this factor's variables, and their product as the model
// distribution. The cavity is seeded with the identity over the factor's
// variables, so a factor with no peers still yields a well-defined,
// non-empty cavity.
func (a *EPMeanField) FactorApproximation(factor *graph.Factor) (*FactorApproximation, error) {
	factorDist, ok := a.factorMeanField[factor]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownFactor, "factor %q", factor.Name())
	}

	variables := factor.AllVariables()
	cavity := message.Identity(variables...)
	for other, mf := range a.factorMeanField {
		if other == factor {
			continue
		}
		product, err := cavity.Product(mf)
		if err != nil {
			return nil, errors.Wrapf(err, "cavity for factor %q", factor.Name())
		}
		cavity = product
	}
	cavity, err := cavity.Restrict(variables...)
	if err != nil {
		return nil, errors.Wrapf(err, "cavity for factor %q", factor.Name())
	}

	model, err := factorDist.Product(cavity)
	if err != nil {
		return nil, errors.Wrapf(err, "model distribution for factor %q", factor.Name())
	}

	return &FactorApproximation{
		Factor:     factor,
		Cavity:     cavity,
		FactorDist: factorDist,
		Model:      model,
	}, nil
}

// ProjectFactorApprox returns a new EPMeanField whose mapping equals the
// old one with the projection's factor replaced by its updated factor
// distribution. The receiver is not modified.
func (a *EPMeanField) ProjectFactorApprox(projection *FactorApproximation) (*EPMeanField, error) {
	if _, ok := a.factorMeanField[projection.Factor]; !ok {
		return nil, errors.Wrapf(errors.ErrUnknownFactor, "factor %q", projection.Factor.Name())
	}
	factorMeanField := make(map[*graph.Factor]message.MeanField, len(a.factorMeanField))
	for factor, mf := range a.factorMeanField {
		factorMeanField[factor] = mf
	}
	factorMeanField[projection.Factor] = projection.FactorDist

	return &EPMeanField{
		factorGraph:     a.factorGraph,
		factorMeanField: factorMeanField,
	}, nil
}

// MeanField returns the current best joint approximation: the product of
// every factor's mean field, seeded with the identity over all graph
// variables.
func (a *EPMeanField) MeanField() (message.MeanField, error) {
	joint := message.Identity(a.factorGraph.AllVariables()...)
	for factor, mf := range a.factorMeanField {
		product, err := joint.Product(mf)
		if err != nil {
			return nil, errors.Wrapf(err, "joint mean field at factor %q", factor.Name())
		}
		joint = product
	}
	return joint, nil
}

// variableMessages collects, per variable, the message every factor's mean
// field holds about it.
func (a *EPMeanField) variableMessages() map[*graph.Variable][]message.Message {
	messages := make(map[*graph.Variable][]message.Message)
	for _, v := range a.factorGraph.AllVariables() {
		messages[v] = nil
	}
	for _, mf := range a.factorMeanField {
		for v, m := range mf {
			messages[v] = append(messages[v], m)
		}
	}
	return messages
}

// variableEvidence computes, per variable, the log normalisation of the
// product of all messages referencing it.
func (a *EPMeanField) variableEvidence() (map[*graph.Variable]float64, error) {
	evidence := make(map[*graph.Variable]float64)
	for v, messages := range a.variableMessages() {
		product := message.Message(message.NormalIdentity(v.Size()))
		for _, m := range messages {
			combined, err := product.Multiply(m)
			if err != nil {
				return nil, errors.Wrapf(err, "evidence for variable %q", v.Name())
			}
			product = combined
		}
		logNorm, err := product.LogNorm()
		if err != nil {
			return nil, errors.Wrapf(err, "evidence for variable %q", v.Name())
		}
		evidence[v] = logNorm
	}
	return evidence, nil
}

// LogEvidence computes the EP evidence decomposition.
//
// Evidence for a variable i is the normalisation of the product of every
// factor's message about it,
//
//	Zᵢ = ∫ ∏ₐ m_{a→i}(xᵢ) dxᵢ
//
// Evidence for a factor a is its own mean field's normalisation with the
// double-counted variable evidence removed,
//
//	log Zₐ = log-norm(mₐ) − Σ_{i∈a} log Zᵢ
//
// and the model evidence is log Z = Σᵢ log Zᵢ + Σₐ log Zₐ. The result does
// not depend on the order factors are enumerated in.
//
// Numerically degenerate approximations (improper products) return
// ErrSingular; diagnostic callers should catch and degrade to NaN rather
// than abort the run.
func (a *EPMeanField) LogEvidence() (float64, error) {
	variableEvidence, err := a.variableEvidence()
	if err != nil {
		return math.NaN(), err
	}

	total := 0.0
	for _, logZ := range variableEvidence {
		total += logZ
	}
	for factor, mf := range a.factorMeanField {
		logNorm, err := mf.LogNorm()
		if err != nil {
			return math.NaN(), errors.Wrapf(err, "evidence for factor %q", factor.Name())
		}
		total += logNorm
		for _, v := range factor.AllVariables() {
			total -= variableEvidence[v]
		}
	}
	return total, nil
}

// String renders a diagnostic summary. Evidence failures are logged and
// degrade to NaN here rather than propagating; display must never crash
// the optimisation loop.
func (a *EPMeanField) String() string {
	logEvidence, err := a.LogEvidence()
	if err != nil {
		logger.Logger.Named("ep").Warnw("log evidence unavailable", "error", err)
		logEvidence = math.NaN()
	}
	return fmt.Sprintf("EPMeanField(%s, log_evidence=%v)", a.factorGraph.Name(), logEvidence)
}
