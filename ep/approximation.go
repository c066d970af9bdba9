package ep

import (
	"fmt"

	"github.com/teranos/graphfit/graph"
	"github.com/teranos/graphfit/message"
)

// FactorApproximation is the unit of work for one EP update step: a factor
// together with the three distributions the local optimiser needs.
//
//   - Cavity: the belief about the factor's variables contributed by all
//     other factors. Updating against the cavity rather than the full model
//     is what prevents a factor from double-counting its own contribution.
//   - FactorDist: the factor's own current mean-field approximation.
//   - Model: the product of cavity and factor distribution, i.e. the
//     current joint belief restricted to this factor's variables.
//
// The bundle is immutable; an optimiser produces an updated factor
// distribution and wraps it with WithFactorDist before projection.
type FactorApproximation struct {
	Factor     *graph.Factor
	Cavity     message.MeanField
	FactorDist message.MeanField
	Model      message.MeanField
}

// WithFactorDist returns a copy of the approximation carrying an updated
// factor distribution, the payload for EPMeanField.ProjectFactorApprox.
func (fa *FactorApproximation) WithFactorDist(dist message.MeanField) *FactorApproximation {
	return &FactorApproximation{
		Factor:     fa.Factor,
		Cavity:     fa.Cavity,
		FactorDist: dist,
		Model:      fa.Model,
	}
}

func (fa *FactorApproximation) String() string {
	return fmt.Sprintf("FactorApproximation(%s)", fa.Factor.Name())
}
