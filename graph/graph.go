package graph

import "strings"

// FactorGraph is the undirected bipartite structure connecting factors to
// the variables they touch. The graph owns its factor list; the distinct
// variable sets are derived from the factors rather than stored redundantly.
type FactorGraph struct {
	factors []*Factor
}

// NewFactorGraph creates a graph over the given factors.
func NewFactorGraph(factors ...*Factor) *FactorGraph {
	return &FactorGraph{factors: append([]*Factor(nil), factors...)}
}

// Factors returns the graph's factors in construction order.
func (g *FactorGraph) Factors() []*Factor {
	return append([]*Factor(nil), g.factors...)
}

// Contains reports whether f is one of the graph's factors.
func (g *FactorGraph) Contains(f *Factor) bool {
	for _, other := range g.factors {
		if other == f {
			return true
		}
	}
	return false
}

// Variables returns the distinct free variables of the graph in first-seen
// order across factors.
func (g *FactorGraph) Variables() []*Variable {
	return distinct(func(f *Factor) []*Variable { return f.variables })(g.factors)
}

// DeterministicVariables returns the distinct deterministic variables of
// the graph in first-seen order.
func (g *FactorGraph) DeterministicVariables() []*Variable {
	return distinct(func(f *Factor) []*Variable { return f.deterministic })(g.factors)
}

// AllVariables returns free then deterministic variables, each distinct and
// in first-seen order.
func (g *FactorGraph) AllVariables() []*Variable {
	return append(g.Variables(), g.DeterministicVariables()...)
}

// FactorsTouching returns the factors whose variable set includes v.
func (g *FactorGraph) FactorsTouching(v *Variable) []*Factor {
	var touching []*Factor
	for _, f := range g.factors {
		for _, u := range f.AllVariables() {
			if u == v {
				touching = append(touching, f)
				break
			}
		}
	}
	return touching
}

// Name returns a display name built from the factor names, e.g. "(prior*likelihood)".
func (g *FactorGraph) Name() string {
	names := make([]string, len(g.factors))
	for i, f := range g.factors {
		names[i] = f.name
	}
	return "(" + strings.Join(names, "*") + ")"
}

func (g *FactorGraph) String() string {
	return "FactorGraph" + g.Name()
}

// distinct builds a first-seen-order deduplicator over a per-factor
// variable selector.
func distinct(sel func(*Factor) []*Variable) func([]*Factor) []*Variable {
	return func(factors []*Factor) []*Variable {
		seen := make(map[*Variable]struct{})
		var out []*Variable
		for _, f := range factors {
			for _, v := range sel(f) {
				if _, ok := seen[v]; ok {
					continue
				}
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
		return out
	}
}
