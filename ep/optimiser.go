package ep

import (
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
	"github.com/teranos/graphfit/internal/util"
	"github.com/teranos/graphfit/logger"
	"github.com/teranos/graphfit/message"
)

// FactorOptimiser refines one factor's distribution given its current
// approximation. Implementations return the updated factor distribution and
// a status; a failed status carries diagnostics and a nil distribution.
//
// Richer optimisers (Laplace, sampling) plug in here; the engine only
// requires this capability.
type FactorOptimiser interface {
	OptimiseFactor(approx *FactorApproximation) (message.MeanField, Status)
}

// IdentityOptimiser returns each factor's distribution unchanged. Useful
// for tests and for freezing factors during a fit.
type IdentityOptimiser struct{}

func (IdentityOptimiser) OptimiseFactor(approx *FactorApproximation) (message.MeanField, Status) {
	return approx.FactorDist, StatusOK()
}

// ExactOptimiser handles conjugate factors whose true contribution is a
// known Gaussian mean field (prior factors, linear-Gaussian likelihoods).
// The update replaces the factor's approximation with the exact
// distribution directly; moment matching is exact in the conjugate case.
type ExactOptimiser struct {
	Exact message.MeanField
}

// NewExactOptimiser creates an optimiser around a factor's exact Gaussian
// mean field.
func NewExactOptimiser(exact message.MeanField) *ExactOptimiser {
	return &ExactOptimiser{Exact: exact}
}

func (o *ExactOptimiser) OptimiseFactor(approx *FactorApproximation) (message.MeanField, Status) {
	exact, err := o.Exact.Restrict(approx.Factor.AllVariables()...)
	if err != nil {
		return nil, StatusFailed(err.Error())
	}
	return exact, StatusOK()
}

// Options configures an optimiser run.
type Options struct {
	// MaxSteps bounds the number of full rounds across all factors.
	MaxSteps int
	// EvidenceTol is the per-factor absolute evidence change below which
	// a factor counts as converged.
	EvidenceTol float64
	// KLTol is the per-factor KL divergence below which a factor counts
	// as converged.
	KLTol float64
}

// DefaultOptions returns the tolerances used when none are configured.
func DefaultOptions() Options {
	return Options{
		MaxSteps:    32,
		EvidenceTol: 1e-6,
		KLTol:       1e-6,
	}
}

// RoundObserver is called after every factor update with the step index,
// the factor just updated, its status and the current log evidence (NaN if
// unavailable). Display layers hook in here.
type RoundObserver func(step int, factor *graph.Factor, status Status, logEvidence float64)

// EPOptimiser drives iterative refinement across all factors of a graph
// until convergence.
//
// Update ordering is Gauss-Seidel: factors are visited sequentially within
// a round and each update is projected immediately, so later factors in
// the same round see the already-updated mean fields of earlier ones. This
// is a deliberate, fixed choice; Jacobi-style batch updates from the
// previous round's snapshot are not mixed in.
type EPOptimiser struct {
	factorGraph      *graph.FactorGraph
	runID            string
	defaultOptimiser FactorOptimiser
	factorOptimisers map[*graph.Factor]FactorOptimiser
	histories        map[*graph.Factor]*FactorHistory
	observer         RoundObserver

	mu   sync.RWMutex
	opts Options
}

// NewEPOptimiser creates an optimiser for a graph. factorOptimisers may be
// nil or partial; factors without a dedicated optimiser use the default.
func NewEPOptimiser(
	factorGraph *graph.FactorGraph,
	defaultOptimiser FactorOptimiser,
	factorOptimisers map[*graph.Factor]FactorOptimiser,
	opts Options,
) *EPOptimiser {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultOptions().MaxSteps
	}
	if opts.EvidenceTol <= 0 {
		opts.EvidenceTol = DefaultOptions().EvidenceTol
	}
	if opts.KLTol <= 0 {
		opts.KLTol = DefaultOptions().KLTol
	}
	histories := make(map[*graph.Factor]*FactorHistory)
	for _, factor := range factorGraph.Factors() {
		histories[factor] = NewFactorHistory(factor)
	}
	return &EPOptimiser{
		factorGraph:      factorGraph,
		runID:            uuid.NewString(),
		defaultOptimiser: defaultOptimiser,
		factorOptimisers: factorOptimisers,
		histories:        histories,
		opts:             opts,
	}
}

// RunID returns the unique identifier of this optimiser run.
func (o *EPOptimiser) RunID() string {
	return o.runID
}

// SetObserver installs a per-update callback. Must be called before Run.
func (o *EPOptimiser) SetObserver(observer RoundObserver) {
	o.observer = observer
}

// UpdateOptions applies the positive fields of opts, leaving the rest
// unchanged. Safe to call while Run is in progress (config reload hooks do
// this); changes take effect from the next factor update.
func (o *EPOptimiser) UpdateOptions(opts Options) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if opts.MaxSteps > 0 {
		o.opts.MaxSteps = opts.MaxSteps
	}
	if opts.EvidenceTol > 0 {
		o.opts.EvidenceTol = opts.EvidenceTol
	}
	if opts.KLTol > 0 {
		o.opts.KLTol = opts.KLTol
	}
}

// Options returns a snapshot of the current run options.
func (o *EPOptimiser) Options() Options {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.opts
}

// History returns the recorded history for a factor.
func (o *EPOptimiser) History(factor *graph.Factor) (*FactorHistory, error) {
	h, ok := o.histories[factor]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownFactor, "factor %q", factor.Name())
	}
	return h, nil
}

func (o *EPOptimiser) optimiserFor(factor *graph.Factor) FactorOptimiser {
	if opt, ok := o.factorOptimisers[factor]; ok {
		return opt
	}
	return o.defaultOptimiser
}

// Run refines the approximation until every factor's evidence and KL
// divergence fall below the configured tolerances or MaxSteps rounds have
// elapsed. Optimiser-level failures are recorded in the factor's history
// and skipped; structural errors abort the run.
func (o *EPOptimiser) Run(approx *EPMeanField) (*EPMeanField, error) {
	log := logger.Logger.Named("ep.optimiser")
	log.Infow("starting EP run",
		"run_id", o.runID,
		"factors", len(o.factorGraph.Factors()),
		"max_steps", o.Options().MaxSteps,
	)

	for step := 0; step < o.Options().MaxSteps; step++ {
		for _, factor := range o.factorGraph.Factors() {
			fa, err := approx.FactorApproximation(factor)
			if err != nil {
				return nil, errors.Wrapf(err, "step %d", step)
			}

			dist, status := o.optimiserFor(factor).OptimiseFactor(fa)
			if status.OK() {
				next, err := approx.ProjectFactorApprox(fa.WithFactorDist(dist))
				if err != nil {
					return nil, errors.Wrapf(err, "projecting factor %q at step %d", factor.Name(), step)
				}
				approx = next
			} else {
				log.Warnw("factor optimisation failed",
					"run_id", o.runID,
					"factor", factor.Name(),
					"step", step,
					"status", status.String(),
				)
			}
			o.histories[factor].Record(approx, status)

			if o.observer != nil {
				o.observer(step, factor, status, o.safeLogEvidence(approx))
			}
		}

		if o.converged() {
			log.Infow("EP run converged",
				"run_id", o.runID,
				"steps", step+1,
				"log_evidence", o.safeLogEvidence(approx),
			)
			return approx, nil
		}
	}

	log.Warnw("EP run reached max steps without convergence",
		"run_id", o.runID,
		"max_steps", o.Options().MaxSteps,
	)
	return approx, nil
}

// converged reports whether every factor's divergence metrics are below
// tolerance. Factors without enough successful history are not converged.
func (o *EPOptimiser) converged() bool {
	opts := o.Options()
	for _, factor := range o.factorGraph.Factors() {
		history := o.histories[factor]
		kl, err := history.KLDivergence()
		if err != nil || math.IsNaN(kl) || util.AbsFloat64(kl) > opts.KLTol {
			return false
		}
		evidence, err := history.EvidenceDivergence()
		if err != nil || math.IsNaN(evidence) || util.AbsFloat64(evidence) > opts.EvidenceTol {
			return false
		}
	}
	return true
}

// safeLogEvidence degrades evidence failures to NaN for logging and
// observer callbacks; the raw computation's error is only worth a debug
// line here.
func (o *EPOptimiser) safeLogEvidence(approx *EPMeanField) float64 {
	logEvidence, err := approx.LogEvidence()
	if err != nil {
		logger.Logger.Named("ep.optimiser").Debugw("log evidence unavailable",
			"run_id", o.runID, "error", err)
		return math.NaN()
	}
	return logEvidence
}
