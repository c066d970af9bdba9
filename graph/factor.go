package graph

import "strings"

// Values maps variables to their current array values when evaluating a
// factor's log density.
type Values map[*Variable][]float64

// LogFactorFn evaluates the log density of a local likelihood or prior term
// at the given variable values.
type LogFactorFn func(values Values) float64

// Factor is a local term of a factorised joint model. It associates a log
// density function with a fixed, ordered set of free variables and
// optionally deterministic variables computed from the free ones.
// Factors are immutable once constructed.
type Factor struct {
	name          string
	fn            LogFactorFn
	variables     []*Variable
	deterministic []*Variable
}

// NewFactor creates a factor over the given free variables.
func NewFactor(name string, fn LogFactorFn, variables ...*Variable) *Factor {
	return &Factor{
		name:      name,
		fn:        fn,
		variables: append([]*Variable(nil), variables...),
	}
}

// NewFactorWithDeterministic creates a factor whose output also fixes
// deterministic variables, i.e. variables computed from the free ones
// rather than directly parametrised.
func NewFactorWithDeterministic(
	name string,
	fn LogFactorFn,
	variables []*Variable,
	deterministic []*Variable,
) *Factor {
	return &Factor{
		name:          name,
		fn:            fn,
		variables:     append([]*Variable(nil), variables...),
		deterministic: append([]*Variable(nil), deterministic...),
	}
}

// Name returns the factor's display name.
func (f *Factor) Name() string {
	return f.name
}

// Variables returns the factor's free variables in declaration order.
func (f *Factor) Variables() []*Variable {
	return append([]*Variable(nil), f.variables...)
}

// Deterministic returns the factor's deterministic variables.
func (f *Factor) Deterministic() []*Variable {
	return append([]*Variable(nil), f.deterministic...)
}

// AllVariables returns free then deterministic variables. This is the set
// of variables the factor touches, and the exact key set of any mean field
// associated with the factor.
func (f *Factor) AllVariables() []*Variable {
	all := make([]*Variable, 0, len(f.variables)+len(f.deterministic))
	all = append(all, f.variables...)
	all = append(all, f.deterministic...)
	return all
}

// LogValue evaluates the factor's log density at the given values.
// Factors constructed without a function return 0 (a constant factor).
func (f *Factor) LogValue(values Values) float64 {
	if f.fn == nil {
		return 0
	}
	return f.fn(values)
}

func (f *Factor) String() string {
	names := make([]string, len(f.variables))
	for i, v := range f.variables {
		names[i] = v.Name()
	}
	return f.name + "(" + strings.Join(names, ", ") + ")"
}
