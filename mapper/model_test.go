package mapper

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gaussianModelYAML = `
parameters:
  - name: centre
    type: gaussian
    mean: 0
    sigma: 1
  - name: intensity
    type: log_uniform
    lower: 0.01
    upper: 100
  - name: widths
    type: uniform
    lower: 0
    upper: 10
    size: 2
`

func TestParseModel(t *testing.T) {
	m, err := ParseModel([]byte(gaussianModelYAML))
	require.NoError(t, err)

	vars := m.Variables()
	require.Len(t, vars, 3)
	assert.Equal(t, "centre", vars[0].Name())
	assert.Equal(t, "intensity", vars[1].Name())
	assert.Equal(t, "widths", vars[2].Name())
	assert.Equal(t, 2, vars[2].Size())
	assert.Equal(t, 4, m.PriorCount())

	prior, err := m.PriorOf(vars[0])
	require.NoError(t, err)
	assert.IsType(t, &GaussianPrior{}, prior)
}

func TestParseModelRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":          `parameters: []`,
		"unnamed":        "parameters:\n  - type: gaussian\n    sigma: 1",
		"duplicate":      "parameters:\n  - {name: x, type: gaussian, sigma: 1}\n  - {name: x, type: gaussian, sigma: 1}",
		"missing type":   "parameters:\n  - {name: x}",
		"unknown type":   "parameters:\n  - {name: x, type: cauchy}",
		"bad sigma":      "parameters:\n  - {name: x, type: gaussian, sigma: 0}",
		"empty interval": "parameters:\n  - {name: x, type: uniform, lower: 2, upper: 1}",
		"not yaml":       "{{{{",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseModel([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(gaussianModelYAML), 0o644))

	m, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, 4, m.PriorCount())

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
