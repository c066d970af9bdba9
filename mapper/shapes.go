package mapper

import (
	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
)

// VariableShapes fixes an ordering over variables so that structured
// per-variable values and flat parameter vectors can be converted both
// ways. Samplers and dense linear algebra work on the flat form; factors
// and messages work on the structured form.
type VariableShapes struct {
	variables []*graph.Variable
	total     int
}

// NewVariableShapes fixes the given variable order.
func NewVariableShapes(variables ...*graph.Variable) *VariableShapes {
	total := 0
	for _, v := range variables {
		total += v.Size()
	}
	return &VariableShapes{
		variables: append([]*graph.Variable(nil), variables...),
		total:     total,
	}
}

// Variables returns the fixed variable order.
func (s *VariableShapes) Variables() []*graph.Variable {
	return append([]*graph.Variable(nil), s.variables...)
}

// TotalSize returns the length of the flat vector form.
func (s *VariableShapes) TotalSize() int {
	return s.total
}

// Flatten concatenates per-variable values in the fixed order. Every
// variable must be present with values of its declared size.
func (s *VariableShapes) Flatten(values graph.Values) ([]float64, error) {
	flat := make([]float64, 0, s.total)
	for _, v := range s.variables {
		vals, ok := values[v]
		if !ok {
			return nil, errors.Wrapf(errors.ErrMissingMessage, "variable %q", v.Name())
		}
		if len(vals) != v.Size() {
			return nil, errors.Wrapf(errors.ErrShapeMismatch,
				"variable %q has %d values, expected %d", v.Name(), len(vals), v.Size())
		}
		flat = append(flat, vals...)
	}
	return flat, nil
}

// Unflatten splits a flat vector back into per-variable values in the
// fixed order. The vector length must match TotalSize exactly.
func (s *VariableShapes) Unflatten(flat []float64) (graph.Values, error) {
	if len(flat) != s.total {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"vector has %d elements, expected %d", len(flat), s.total)
	}
	values := make(graph.Values, len(s.variables))
	offset := 0
	for _, v := range s.variables {
		values[v] = append([]float64(nil), flat[offset:offset+v.Size()]...)
		offset += v.Size()
	}
	return values, nil
}
