package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Fit defaults match the optimiser's own fallbacks
	v.SetDefault("fit.max_steps", 32)
	v.SetDefault("fit.evidence_tol", 1e-6)
	v.SetDefault("fit.kl_tol", 1e-6)

	// Model defaults
	v.SetDefault("model.path", "model.yaml")

	// Output defaults
	v.SetDefault("output.dir", "output")
	v.SetDefault("output.json", false)

	// Display defaults
	v.SetDefault("display.theme", "everforest")
	v.SetDefault("display.progress", true)
}

// BindEnvOverrides explicitly binds configuration to environment variables
// beyond the automatic GRAPHFIT_* mapping.
func BindEnvOverrides(v *viper.Viper) {
	v.BindEnv("model.path", "GRAPHFIT_MODEL_PATH")
	v.BindEnv("output.dir", "GRAPHFIT_OUTPUT_DIR")
}

// GetModelPath returns the configured model definition path
func (c *Config) GetModelPath() string {
	if c.Model.Path == "" {
		return "model.yaml"
	}
	return c.Model.Path
}

// GetOutputDir returns the configured output directory
func (c *Config) GetOutputDir() string {
	if c.Output.Dir == "" {
		return "output"
	}
	return c.Output.Dir
}

// GetDisplayTheme returns the display theme (default: everforest)
func (c *Config) GetDisplayTheme() string {
	if c.Display.Theme == "" {
		return "everforest"
	}
	return c.Display.Theme
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Fit: {MaxSteps: %d, EvidenceTol: %g, KLTol: %g}, Model: %s, Display: {Theme: %s}}",
		c.Fit.MaxSteps, c.Fit.EvidenceTol, c.Fit.KLTol, c.GetModelPath(), c.GetDisplayTheme())
}
