// Package mapper bridges parameter-space model definitions and the message
// algebra: priors describe single parameters, a ModelMapper collects them
// into graph variables and produces the initial messages and unit-cube
// transforms that samplers and the optimiser consume.
package mapper

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/message"
)

// Prior describes the belief about one scalar parameter before any data is
// seen. Priors serve two roles: they seed the message algebra with an
// initial (Gaussian or moment-matched) belief, and they map unit-cube
// samples into physical parameter values via their quantile function.
type Prior interface {
	// Message returns the prior's belief as a Gaussian message over size
	// elements. Non-Gaussian priors return their moment-matched Gaussian.
	Message(size int) message.Message

	// ValueForUnit maps u in (0, 1) through the prior's quantile function.
	// Values at the boundary may map to infinities for unbounded priors.
	ValueForUnit(u float64) float64

	// Mean returns the prior's expected value.
	Mean() float64

	fmt.Stringer
}

// GaussianPrior is a normal belief with the given mean and standard
// deviation.
type GaussianPrior struct {
	mean  float64
	sigma float64
	dist  distuv.Normal
}

// NewGaussianPrior creates a Gaussian prior. Sigma must be positive.
func NewGaussianPrior(mean, sigma float64) (*GaussianPrior, error) {
	if sigma <= 0 {
		return nil, errors.Wrapf(errors.ErrSingular, "gaussian prior sigma = %v", sigma)
	}
	return &GaussianPrior{
		mean:  mean,
		sigma: sigma,
		dist:  distuv.Normal{Mu: mean, Sigma: sigma},
	}, nil
}

func (p *GaussianPrior) Message(size int) message.Message {
	return message.NewNormalMessage(p.mean, p.sigma, size)
}

func (p *GaussianPrior) ValueForUnit(u float64) float64 {
	return p.dist.Quantile(u)
}

func (p *GaussianPrior) Mean() float64 {
	return p.mean
}

func (p *GaussianPrior) Sigma() float64 {
	return p.sigma
}

func (p *GaussianPrior) String() string {
	return fmt.Sprintf("GaussianPrior(mean=%g, sigma=%g)", p.mean, p.sigma)
}

// UniformPrior is a flat belief over [lower, upper].
type UniformPrior struct {
	lower float64
	upper float64
}

// NewUniformPrior creates a uniform prior. The interval must be non-empty.
func NewUniformPrior(lower, upper float64) (*UniformPrior, error) {
	if upper <= lower {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"uniform prior interval [%v, %v] is empty", lower, upper)
	}
	return &UniformPrior{lower: lower, upper: upper}, nil
}

// Message returns the moment-matched Gaussian: same mean and variance as
// the uniform distribution.
func (p *UniformPrior) Message(size int) message.Message {
	sigma := (p.upper - p.lower) / math.Sqrt(12)
	return message.NewNormalMessage(p.Mean(), sigma, size)
}

func (p *UniformPrior) ValueForUnit(u float64) float64 {
	return p.lower + u*(p.upper-p.lower)
}

func (p *UniformPrior) Mean() float64 {
	return (p.lower + p.upper) / 2
}

func (p *UniformPrior) String() string {
	return fmt.Sprintf("UniformPrior(lower=%g, upper=%g)", p.lower, p.upper)
}

// LogUniformPrior is flat in log space over [lower, upper], for strictly
// positive scale parameters.
type LogUniformPrior struct {
	lower float64
	upper float64
}

// NewLogUniformPrior creates a log-uniform prior. Both bounds must be
// positive and the interval non-empty.
func NewLogUniformPrior(lower, upper float64) (*LogUniformPrior, error) {
	if lower <= 0 {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"log-uniform prior lower bound %v must be positive", lower)
	}
	if upper <= lower {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"log-uniform prior interval [%v, %v] is empty", lower, upper)
	}
	return &LogUniformPrior{lower: lower, upper: upper}, nil
}

// Message returns the moment-matched Gaussian, using the closed-form mean
// and variance of the log-uniform distribution.
func (p *LogUniformPrior) Message(size int) message.Message {
	logRatio := math.Log(p.upper / p.lower)
	mean := (p.upper - p.lower) / logRatio
	secondMoment := (p.upper*p.upper - p.lower*p.lower) / (2 * logRatio)
	sigma := math.Sqrt(secondMoment - mean*mean)
	return message.NewNormalMessage(mean, sigma, size)
}

func (p *LogUniformPrior) ValueForUnit(u float64) float64 {
	return p.lower * math.Pow(p.upper/p.lower, u)
}

func (p *LogUniformPrior) Mean() float64 {
	return (p.upper - p.lower) / math.Log(p.upper/p.lower)
}

func (p *LogUniformPrior) String() string {
	return fmt.Sprintf("LogUniformPrior(lower=%g, upper=%g)", p.lower, p.upper)
}
