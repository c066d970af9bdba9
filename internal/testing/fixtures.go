// Package testing provides shared fixtures for graphfit tests.
package testing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/teranos/graphfit/ep"
	"github.com/teranos/graphfit/graph"
	"github.com/teranos/graphfit/message"
)

// WriteModelFile writes a YAML model definition to a temp file and returns
// its path. The file is removed with the test's temp dir.
func WriteModelFile(t *testing.T, yaml string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "model.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}
	return path
}

// UnitGaussianPair builds the standard two-factor fixture: a prior and a
// likelihood factor sharing one scalar variable, each seeded with a unit
// Gaussian belief.
func UnitGaussianPair(t *testing.T) (*graph.Variable, *graph.FactorGraph, *ep.EPMeanField) {
	t.Helper()

	x := graph.NewVariable("x", 1)
	prior := graph.NewFactor("prior", nil, x)
	likelihood := graph.NewFactor("likelihood", nil, x)
	fg := graph.NewFactorGraph(prior, likelihood)

	approx, err := ep.FromApproxDists(fg, message.MeanField{
		x: message.NewNormalMessage(0, 1, 1),
	})
	if err != nil {
		t.Fatalf("failed to build approximation: %v", err)
	}
	return x, fg, approx
}
