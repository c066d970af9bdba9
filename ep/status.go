// Package ep implements the expectation-propagation mean-field engine: the
// per-factor approximation state (EPMeanField), the one-factor update unit
// (FactorApproximation), per-factor convergence bookkeeping (FactorHistory)
// and the optimiser loop that drives rounds across all factors.
package ep

import "strings"

// Status reports whether one local optimisation round succeeded, with
// diagnostic messages describing why it failed if it did not. Optimiser
// failures surface as a failed Status rather than an error so the
// surrounding loop can continue with other factors.
type Status struct {
	Success  bool
	Messages []string
}

// StatusOK returns a successful status.
func StatusOK() Status {
	return Status{Success: true}
}

// StatusFailed returns a failed status carrying diagnostic messages.
func StatusFailed(messages ...string) Status {
	return Status{Success: false, Messages: messages}
}

// OK reports whether the optimisation succeeded.
func (s Status) OK() bool {
	return s.Success
}

func (s Status) String() string {
	if s.Success {
		return "optimisation succeeded"
	}
	return "optimisation failed: " + strings.Join(s.Messages, "; ")
}
