package message

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/teranos/graphfit/errors"
)

var lnTwoPi = math.Log(2 * math.Pi)

// NormalMessage is a Gaussian distribution in natural parametrisation,
// elementwise over an array-valued domain:
//
//	m(x) = exp(logFactor) * prod_i exp(eta_i*x_i - lam_i*x_i^2/2)
//
// eta is the first natural parameter (precision-weighted mean) and lam the
// precision. A normalised message carries logFactor = -sum_i A(eta_i, lam_i)
// where A is the log partition function, so its LogNorm is zero; products
// accumulate the normalisation constants of the combined beliefs in
// logFactor, which is what the EP evidence computation reads off.
//
// lam_i == 0 denotes "no information" for that element. Messages with any
// non-positive precision are improper: they are legal intermediate values
// of the algebra but have no normalisation constant or moments.
type NormalMessage struct {
	eta       []float64
	lam       []float64
	logFactor float64
}

// NewNormalMessage creates a normalised Gaussian message with the same mean
// and standard deviation for each of size elements.
func NewNormalMessage(mean, sigma float64, size int) *NormalMessage {
	means := make([]float64, size)
	sigmas := make([]float64, size)
	for i := range means {
		means[i] = mean
		sigmas[i] = sigma
	}
	m, err := NormalFromMeanSigma(means, sigmas)
	if err != nil {
		// Uniform construction can only fail on sigma <= 0
		panic(err)
	}
	return m
}

// NormalFromMeanSigma creates a normalised Gaussian message from per-element
// means and standard deviations.
func NormalFromMeanSigma(means, sigmas []float64) (*NormalMessage, error) {
	if len(means) != len(sigmas) {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"means has %d elements, sigmas has %d", len(means), len(sigmas))
	}
	eta := make([]float64, len(means))
	lam := make([]float64, len(means))
	logFactor := 0.0
	for i, mu := range means {
		sigma := sigmas[i]
		if sigma <= 0 {
			return nil, errors.Wrapf(errors.ErrSingular, "sigma[%d] = %v", i, sigma)
		}
		lam[i] = 1 / (sigma * sigma)
		eta[i] = mu * lam[i]
		logFactor -= logPartition(eta[i], lam[i])
	}
	return &NormalMessage{eta: eta, lam: lam, logFactor: logFactor}, nil
}

// NormalFromNatural creates a message directly from natural parameters and
// an explicit log factor. No properness requirement is imposed.
func NormalFromNatural(eta, lam []float64, logFactor float64) (*NormalMessage, error) {
	if len(eta) != len(lam) {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"eta has %d elements, lam has %d", len(eta), len(lam))
	}
	return &NormalMessage{
		eta:       append([]float64(nil), eta...),
		lam:       append([]float64(nil), lam...),
		logFactor: logFactor,
	}, nil
}

// NormalIdentity returns the multiplicative identity over size elements:
// zero natural parameters, unit constant.
func NormalIdentity(size int) *NormalMessage {
	return &NormalMessage{
		eta: make([]float64, size),
		lam: make([]float64, size),
	}
}

// logPartition is the Gaussian log partition function A(eta, lam) for a
// single element. Requires lam > 0.
func logPartition(eta, lam float64) float64 {
	return eta*eta/(2*lam) + 0.5*(lnTwoPi-math.Log(lam))
}

// Size returns the number of elements in the message's domain.
func (m *NormalMessage) Size() int {
	return len(m.eta)
}

// Multiply combines two Gaussian beliefs by adding natural parameters.
func (m *NormalMessage) Multiply(other Message) (Message, error) {
	o, err := m.sameFamily(other)
	if err != nil {
		return nil, err
	}
	out := m.clone()
	floats.Add(out.eta, o.eta)
	floats.Add(out.lam, o.lam)
	out.logFactor += o.logFactor
	return out, nil
}

// Divide removes a Gaussian belief by subtracting natural parameters.
// Dividing a message by itself yields the identity.
func (m *NormalMessage) Divide(other Message) (Message, error) {
	o, err := m.sameFamily(other)
	if err != nil {
		return nil, err
	}
	out := m.clone()
	floats.Sub(out.eta, o.eta)
	floats.Sub(out.lam, o.lam)
	out.logFactor -= o.logFactor
	return out, nil
}

// Identity returns the identity message of the same shape.
func (m *NormalMessage) Identity() Message {
	return NormalIdentity(len(m.eta))
}

// IsProper reports whether every element has strictly positive precision.
func (m *NormalMessage) IsProper() bool {
	for _, l := range m.lam {
		if l <= 0 {
			return false
		}
	}
	return true
}

// LogNorm returns the log of the message's integral over its domain. For a
// normalised message this is zero; for a product of normalised messages it
// is the log of the product's normalisation constant. Improper messages
// have no finite integral and return ErrSingular.
func (m *NormalMessage) LogNorm() (float64, error) {
	logNorm := m.logFactor
	for i, l := range m.lam {
		if l <= 0 {
			return math.NaN(), errors.Wrapf(errors.ErrSingular,
				"element %d has precision %v", i, l)
		}
		logNorm += logPartition(m.eta[i], l)
	}
	return logNorm, nil
}

// Mean returns the per-element means. Improper messages have no mean.
func (m *NormalMessage) Mean() ([]float64, error) {
	if !m.IsProper() {
		return nil, errors.Wrap(errors.ErrSingular, "mean of improper message")
	}
	mean := make([]float64, len(m.eta))
	for i := range mean {
		mean[i] = m.eta[i] / m.lam[i]
	}
	return mean, nil
}

// Variance returns the per-element variances. Improper messages have no
// variance.
func (m *NormalMessage) Variance() ([]float64, error) {
	if !m.IsProper() {
		return nil, errors.Wrap(errors.ErrSingular, "variance of improper message")
	}
	variance := make([]float64, len(m.lam))
	for i, l := range m.lam {
		variance[i] = 1 / l
	}
	return variance, nil
}

// Precision returns a copy of the per-element precisions.
func (m *NormalMessage) Precision() []float64 {
	return append([]float64(nil), m.lam...)
}

// KLDivergence computes KL(m || other), summed over elements. Both
// messages must be proper.
func (m *NormalMessage) KLDivergence(other Message) (float64, error) {
	o, err := m.sameFamily(other)
	if err != nil {
		return math.NaN(), err
	}
	if !m.IsProper() || !o.IsProper() {
		return math.NaN(), errors.Wrap(errors.ErrSingular, "KL divergence of improper message")
	}
	kl := 0.0
	for i := range m.lam {
		mup, muq := m.eta[i]/m.lam[i], o.eta[i]/o.lam[i]
		varp, varq := 1/m.lam[i], 1/o.lam[i]
		d := mup - muq
		kl += 0.5 * (math.Log(varq/varp) + (varp+d*d)/varq - 1)
	}
	return kl, nil
}

func (m *NormalMessage) String() string {
	if mean, err := m.Mean(); err == nil {
		variance, _ := m.Variance()
		if len(mean) == 1 {
			return fmt.Sprintf("NormalMessage(mean=%.4g, sigma=%.4g)", mean[0], math.Sqrt(variance[0]))
		}
		return fmt.Sprintf("NormalMessage(size=%d)", len(mean))
	}
	return fmt.Sprintf("NormalMessage(improper, size=%d)", len(m.eta))
}

func (m *NormalMessage) clone() *NormalMessage {
	return &NormalMessage{
		eta:       append([]float64(nil), m.eta...),
		lam:       append([]float64(nil), m.lam...),
		logFactor: m.logFactor,
	}
}

func (m *NormalMessage) sameFamily(other Message) (*NormalMessage, error) {
	o, ok := other.(*NormalMessage)
	if !ok {
		return nil, errors.Wrapf(errors.ErrFamilyMismatch,
			"NormalMessage combined with %T", other)
	}
	if len(o.eta) != len(m.eta) {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"message has %d elements, other has %d", len(m.eta), len(o.eta))
	}
	return o, nil
}
