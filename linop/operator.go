// Package linop provides linear operators used when Gaussian message
// covariances and precisions must be applied to vectors without forming a
// dense matrix when avoidable.
//
// Every operator implements the same named-method interface: apply,
// transpose-apply, solve, transpose-solve, log-determinant and dense
// materialisation. Variants cover dense matrices, the identity, diagonal
// scaling, Cholesky whitening transforms and Sherman-Morrison low-rank
// updates.
package linop

import (
	"gonum.org/v1/gonum/mat"

	"github.com/teranos/graphfit/errors"
)

// Operator is a square linear map over vectors.
//
// Apply computes A*x, TransposeApply computes Aᵀ*x, Solve computes A⁻¹*x
// and TransposeSolve computes A⁻ᵀ*x. Dense materialises the matrix whose
// action equals Apply; it is intended for diagnostics and tests, not hot
// paths.
type Operator interface {
	Apply(x *mat.VecDense) *mat.VecDense
	TransposeApply(x *mat.VecDense) *mat.VecDense
	Solve(x *mat.VecDense) (*mat.VecDense, error)
	TransposeSolve(x *mat.VecDense) (*mat.VecDense, error)

	// LogDet returns the log of the absolute determinant. Singular
	// operators return ErrSingular.
	LogDet() (float64, error)

	// Dims returns the row and column counts.
	Dims() (r, c int)

	Dense() *mat.Dense
}

// Quad computes the quadratic form xᵀ*A*x.
func Quad(op Operator, x *mat.VecDense) float64 {
	return mat.Dot(x, op.Apply(x))
}

// InvQuad computes the inverse quadratic form xᵀ*A⁻¹*x.
func InvQuad(op Operator, x *mat.VecDense) (float64, error) {
	solved, err := op.Solve(x)
	if err != nil {
		return 0, err
	}
	return mat.Dot(x, solved), nil
}

// checkDim verifies x matches the operator's column count.
func checkDim(op Operator, x *mat.VecDense) {
	_, c := op.Dims()
	if x.Len() != c {
		panic(errors.Newf("linop: vector length %d does not match operator dimension %d", x.Len(), c))
	}
}

func cloneVec(x *mat.VecDense) *mat.VecDense {
	out := mat.NewVecDense(x.Len(), nil)
	out.CopyVec(x)
	return out
}
