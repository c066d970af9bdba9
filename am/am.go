// Package am loads and watches graphfit configuration. Settings merge in
// precedence order: system config, then user config under ~/.graphfit, then
// the persisted overrides file (written by `graphfit am set-*`), then the
// nearest project graphfit.toml, then GRAPHFIT_* environment variables.
package am

// Config is the core graphfit configuration.
type Config struct {
	Fit     FitConfig     `mapstructure:"fit"`
	Model   ModelConfig   `mapstructure:"model"`
	Output  OutputConfig  `mapstructure:"output"`
	Display DisplayConfig `mapstructure:"display"`
}

// FitConfig controls the EP optimisation loop.
type FitConfig struct {
	MaxSteps    int     `mapstructure:"max_steps"`    // full rounds across all factors (default: 32)
	EvidenceTol float64 `mapstructure:"evidence_tol"` // per-factor evidence change tolerance (default: 1e-6)
	KLTol       float64 `mapstructure:"kl_tol"`       // per-factor KL divergence tolerance (default: 1e-6)
}

// ModelConfig locates the model definition.
type ModelConfig struct {
	Path string `mapstructure:"path"` // YAML model definition (default: model.yaml)
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir  string `mapstructure:"dir"`  // result directory (default: output)
	JSON bool   `mapstructure:"json"` // machine-readable output instead of terminal rendering
}

// DisplayConfig controls terminal rendering.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme"`    // color theme: gruvbox, everforest
	Progress bool   `mapstructure:"progress"` // live per-round progress (default: true)
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
