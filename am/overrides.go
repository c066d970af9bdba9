package am

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/graphfit/errors"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before
// modifying a config file
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		// Deletion failures don't block the save
		fmt.Printf("⚠️  Failed to delete old backup %s: %v\n", back3, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// GetOverridesPath returns the path to the machine-managed overrides file
// in ~/.graphfit/graphfit_overrides.toml
func GetOverridesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".graphfit", "graphfit_overrides.toml")
}

// loadOrInitializeOverrides loads the overrides file, or starts an empty one
func loadOrInitializeOverrides() (map[string]interface{}, string, error) {
	configPath := GetOverridesPath()
	if configPath == "" {
		return nil, "", errors.New("could not determine home directory")
	}

	userDir := filepath.Dir(configPath)
	if err := os.MkdirAll(userDir, DefaultDirPermissions); err != nil {
		return nil, "", errors.Wrap(err, "failed to create .graphfit directory")
	}

	var config map[string]interface{}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, "", errors.Wrap(err, "failed to parse overrides")
		}
	} else {
		config = make(map[string]interface{})
	}

	return config, configPath, nil
}

// saveOverrides writes the overrides file with backup rotation
func saveOverrides(config map[string]interface{}, configPath string) error {
	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to create backup")
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal overrides")
	}

	// Mark this as our own write to prevent reload loops
	globalWatcherMu.Lock()
	if globalWatcher != nil {
		globalWatcher.MarkOwnWrite()
	}
	globalWatcherMu.Unlock()

	if err := os.WriteFile(configPath, data, DefaultFilePermissions); err != nil {
		return errors.Wrap(err, "failed to write overrides")
	}

	return nil
}

// section returns the named table of the overrides map, creating it if absent.
func section(config map[string]interface{}, name string) map[string]interface{} {
	if s, ok := config[name].(map[string]interface{}); ok {
		return s
	}
	s := make(map[string]interface{})
	config[name] = s
	return s
}

// UpdateFitMaxSteps persists a fit.max_steps override
func UpdateFitMaxSteps(maxSteps int) error {
	config, configPath, err := loadOrInitializeOverrides()
	if err != nil {
		return errors.Wrap(err, "failed to load overrides")
	}

	section(config, "fit")["max_steps"] = maxSteps
	return saveOverrides(config, configPath)
}

// UpdateFitTolerances persists fit.evidence_tol and fit.kl_tol overrides
func UpdateFitTolerances(evidenceTol, klTol float64) error {
	config, configPath, err := loadOrInitializeOverrides()
	if err != nil {
		return errors.Wrap(err, "failed to load overrides")
	}

	fit := section(config, "fit")
	fit["evidence_tol"] = evidenceTol
	fit["kl_tol"] = klTol
	return saveOverrides(config, configPath)
}

// UpdateDisplayTheme persists a display.theme override
func UpdateDisplayTheme(theme string) error {
	config, configPath, err := loadOrInitializeOverrides()
	if err != nil {
		return errors.Wrap(err, "failed to load overrides")
	}

	section(config, "display")["theme"] = theme
	return saveOverrides(config, configPath)
}
