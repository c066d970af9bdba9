package mapper

import (
	"github.com/teranos/graphfit/errors"
	"github.com/teranos/graphfit/graph"
	"github.com/teranos/graphfit/message"
)

// ModelMapper collects named, prior-attached parameters into graph
// variables. It preserves declaration order, which fixes the layout of the
// flat parameter vector used by unit-cube sampling.
type ModelMapper struct {
	shapes *VariableShapes
	priors map[*graph.Variable]Prior
}

// NewModelMapper creates an empty mapper.
func NewModelMapper() *ModelMapper {
	return &ModelMapper{
		shapes: NewVariableShapes(),
		priors: make(map[*graph.Variable]Prior),
	}
}

// AddVariable declares a parameter of the given size under a prior and
// returns its variable. The prior applies elementwise.
func (m *ModelMapper) AddVariable(name string, prior Prior, size int) *graph.Variable {
	v := graph.NewVariable(name, size)
	m.shapes = NewVariableShapes(append(m.shapes.Variables(), v)...)
	m.priors[v] = prior
	return v
}

// Variables returns the declared variables in declaration order.
func (m *ModelMapper) Variables() []*graph.Variable {
	return m.shapes.Variables()
}

// Shapes returns the mapper's flat-vector layout.
func (m *ModelMapper) Shapes() *VariableShapes {
	return m.shapes
}

// PriorOf returns the prior attached to a variable.
func (m *ModelMapper) PriorOf(v *graph.Variable) (Prior, error) {
	prior, ok := m.priors[v]
	if !ok {
		return nil, errors.Wrapf(errors.ErrMissingMessage, "variable %q has no prior", v.Name())
	}
	return prior, nil
}

// PriorCount returns the total parameter dimension across all variables.
func (m *ModelMapper) PriorCount() int {
	return m.shapes.TotalSize()
}

// MessageDict builds the variable-to-message mapping that seeds an EP run:
// each variable mapped to its prior's (moment-matched) Gaussian message.
func (m *ModelMapper) MessageDict() message.MeanField {
	mf := make(message.MeanField, len(m.priors))
	for _, v := range m.shapes.Variables() {
		mf[v] = m.priors[v].Message(v.Size())
	}
	return mf
}

// InstanceFromUnitVector maps a unit-cube vector through each prior's
// quantile function into physical parameter values. The vector length must
// equal PriorCount.
func (m *ModelMapper) InstanceFromUnitVector(unit []float64) (graph.Values, error) {
	if len(unit) != m.PriorCount() {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"unit vector has %d elements, expected %d", len(unit), m.PriorCount())
	}
	values := make(graph.Values, len(m.priors))
	offset := 0
	for _, v := range m.shapes.Variables() {
		prior := m.priors[v]
		vals := make([]float64, v.Size())
		for i := range vals {
			vals[i] = prior.ValueForUnit(unit[offset+i])
		}
		values[v] = vals
		offset += v.Size()
	}
	return values, nil
}

// InstanceFromVector splits a flat vector of physical parameter values into
// per-variable values, without any prior transform.
func (m *ModelMapper) InstanceFromVector(vector []float64) (graph.Values, error) {
	return m.shapes.Unflatten(vector)
}
