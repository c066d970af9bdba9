package am

import "github.com/teranos/graphfit/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Fit steps: 0 = use default, negative = invalid
	if c.Fit.MaxSteps < 0 {
		return errors.Newf("fit.max_steps must be >= 0, got %d", c.Fit.MaxSteps)
	}

	// Tolerances: 0 = use default, negative = invalid
	if c.Fit.EvidenceTol < 0 {
		return errors.Newf("fit.evidence_tol must be >= 0, got %g", c.Fit.EvidenceTol)
	}
	if c.Fit.KLTol < 0 {
		return errors.Newf("fit.kl_tol must be >= 0, got %g", c.Fit.KLTol)
	}

	switch c.Display.Theme {
	case "", "gruvbox", "everforest":
	default:
		return errors.Newf("display.theme must be gruvbox or everforest, got %q", c.Display.Theme)
	}

	return nil
}
