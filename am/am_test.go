package am

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var config Config
	require.NoError(t, v.Unmarshal(&config))

	assert.Equal(t, 32, config.Fit.MaxSteps)
	assert.InDelta(t, 1e-6, config.Fit.EvidenceTol, 0)
	assert.InDelta(t, 1e-6, config.Fit.KLTol, 0)
	assert.Equal(t, "model.yaml", config.Model.Path)
	assert.Equal(t, "output", config.Output.Dir)
	assert.False(t, config.Output.JSON)
	assert.Equal(t, "everforest", config.Display.Theme)
	assert.True(t, config.Display.Progress)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphfit.toml")
	content := `
[fit]
max_steps = 100
kl_tol = 0.001

[display]
theme = "gruvbox"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 100, config.Fit.MaxSteps)
	assert.InDelta(t, 0.001, config.Fit.KLTol, 0)
	// Unset keys keep their defaults.
	assert.InDelta(t, 1e-6, config.Fit.EvidenceTol, 0)
	assert.Equal(t, "gruvbox", config.Display.Theme)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Fit:     FitConfig{MaxSteps: 10, EvidenceTol: 1e-6, KLTol: 1e-6},
		Display: DisplayConfig{Theme: "gruvbox"},
	}
	assert.NoError(t, valid.Validate())

	zeroes := &Config{}
	assert.NoError(t, zeroes.Validate())

	cases := map[string]Config{
		"negative steps":        {Fit: FitConfig{MaxSteps: -1}},
		"negative evidence tol": {Fit: FitConfig{EvidenceTol: -1}},
		"negative kl tol":       {Fit: FitConfig{KLTol: -1}},
		"unknown theme":         {Display: DisplayConfig{Theme: "solarized"}},
	}
	for name, config := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, config.Validate())
		})
	}
}

func TestAccessorFallbacks(t *testing.T) {
	empty := &Config{}
	assert.Equal(t, "model.yaml", empty.GetModelPath())
	assert.Equal(t, "output", empty.GetOutputDir())
	assert.Equal(t, "everforest", empty.GetDisplayTheme())

	set := &Config{
		Model:   ModelConfig{Path: "gaussian.yaml"},
		Output:  OutputConfig{Dir: "runs"},
		Display: DisplayConfig{Theme: "gruvbox"},
	}
	assert.Equal(t, "gaussian.yaml", set.GetModelPath())
	assert.Equal(t, "runs", set.GetOutputDir())
	assert.Equal(t, "gruvbox", set.GetDisplayTheme())
}

func TestOverridesRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	Reset()
	t.Cleanup(Reset)

	require.NoError(t, UpdateFitMaxSteps(99))
	require.NoError(t, UpdateDisplayTheme("gruvbox"))

	// A fresh Load must see the persisted overrides.
	Reset()
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 99, cfg.Fit.MaxSteps)
	assert.Equal(t, "gruvbox", cfg.Display.Theme)
	// Untouched keys keep their defaults.
	assert.InDelta(t, 1e-6, cfg.Fit.EvidenceTol, 0)
	assert.Equal(t, "model.yaml", cfg.Model.Path)
}

func TestWatchOverridesCreatesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	Reset()
	t.Cleanup(func() {
		Reset()
		SetGlobalWatcher(nil)
	})

	watcher, err := WatchOverrides()
	require.NoError(t, err)
	defer watcher.Stop()

	_, err = os.Stat(GetOverridesPath())
	require.NoError(t, err)
	assert.Same(t, watcher, GetGlobalWatcher())
}

func TestConfigWatcherReloadsOnExternalWrite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	Reset()
	t.Cleanup(func() {
		Reset()
		SetGlobalWatcher(nil)
	})

	// Seed the overrides file so there is something to watch.
	require.NoError(t, UpdateFitMaxSteps(5))

	watcher, err := NewConfigWatcher(GetOverridesPath())
	require.NoError(t, err)
	defer watcher.Stop()
	watcher.debouncePeriod = 10 * time.Millisecond
	SetGlobalWatcher(watcher)

	reloaded := make(chan *Config, 1)
	watcher.OnReload(func(cfg *Config) error {
		select {
		case reloaded <- cfg:
		default:
		}
		return nil
	})
	watcher.Start()

	require.NoError(t, os.WriteFile(GetOverridesPath(), []byte("[fit]\nmax_steps = 7\n"), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 7, cfg.Fit.MaxSteps)
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback was not called")
	}
}

func TestWatcherOwnWriteFlag(t *testing.T) {
	cw := &ConfigWatcher{}
	assert.False(t, cw.checkOwnWrite())

	cw.MarkOwnWrite()
	assert.True(t, cw.checkOwnWrite())
	// The flag is consumed by the check.
	assert.False(t, cw.checkOwnWrite())
}

func TestCreateBackupRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graphfit.toml")

	// No file yet: backup is a no-op.
	require.NoError(t, createBackup(path))

	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	require.NoError(t, createBackup(path))

	back1, err := os.ReadFile(path + ".back1")
	require.NoError(t, err)
	assert.Equal(t, "a", string(back1))

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))
	require.NoError(t, createBackup(path))

	back1, err = os.ReadFile(path + ".back1")
	require.NoError(t, err)
	assert.Equal(t, "b", string(back1))
	back2, err := os.ReadFile(path + ".back2")
	require.NoError(t, err)
	assert.Equal(t, "a", string(back2))
}

func TestIsBackupFile(t *testing.T) {
	assert.True(t, isBackupFile("/home/u/.graphfit/graphfit.toml.back1"))
	assert.True(t, isBackupFile("config.toml.back3"))
	assert.False(t, isBackupFile("graphfit.toml"))
}
