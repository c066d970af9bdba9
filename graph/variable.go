// Package graph provides the factor-graph substrate for graphfit: variables,
// factors and the bipartite structure connecting them.
//
// Variables are identity objects shared by reference between every factor
// and message that involves them. Factors are immutable local terms of a
// factorised joint model. A FactorGraph owns a set of factors and derives
// the distinct variable sets from them.
package graph

import "fmt"

// Variable is an opaque identifier for a scalar or array-valued unknown.
// Equality is pointer identity: two variables are the same unknown only if
// they are the same object. A variable carries no distributional state.
type Variable struct {
	name string
	size int
}

// NewVariable creates a variable with the given display name and element
// count. size is 1 for scalar unknowns, >1 for array-valued unknowns.
func NewVariable(name string, size int) *Variable {
	if size < 1 {
		size = 1
	}
	return &Variable{name: name, size: size}
}

// Name returns the display name of the variable.
func (v *Variable) Name() string {
	return v.name
}

// Size returns the number of elements in the variable's domain.
func (v *Variable) Size() int {
	return v.size
}

func (v *Variable) String() string {
	if v.size == 1 {
		return v.name
	}
	return fmt.Sprintf("%s[%d]", v.name, v.size)
}
