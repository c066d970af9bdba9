package linop

import (
	"gonum.org/v1/gonum/mat"
)

// IdentityOperator is the n-dimensional identity map. All operations pass
// values through unchanged; the log determinant is zero.
type IdentityOperator struct {
	n int
}

// NewIdentity creates the identity operator of dimension n.
func NewIdentity(n int) *IdentityOperator {
	return &IdentityOperator{n: n}
}

func (id *IdentityOperator) Apply(x *mat.VecDense) *mat.VecDense {
	checkDim(id, x)
	return cloneVec(x)
}

func (id *IdentityOperator) TransposeApply(x *mat.VecDense) *mat.VecDense {
	checkDim(id, x)
	return cloneVec(x)
}

func (id *IdentityOperator) Solve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(id, x)
	return cloneVec(x), nil
}

func (id *IdentityOperator) TransposeSolve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(id, x)
	return cloneVec(x), nil
}

func (id *IdentityOperator) LogDet() (float64, error) {
	return 0, nil
}

func (id *IdentityOperator) Dims() (int, int) {
	return id.n, id.n
}

func (id *IdentityOperator) Dense() *mat.Dense {
	out := mat.NewDense(id.n, id.n, nil)
	for i := 0; i < id.n; i++ {
		out.Set(i, i, 1)
	}
	return out
}
