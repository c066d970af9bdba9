package linop

import (
	"gonum.org/v1/gonum/mat"

	"github.com/teranos/graphfit/errors"
)

// CholeskyOperator is the whitening transform built from the Cholesky
// factor U of a positive-definite precision/Hessian matrix H = UᵀU.
// Applying the operator maps a vector into whitened coordinates where the
// Hessian is the identity; solving maps back.
//
// See https://en.wikipedia.org/wiki/Whitening_transformation
type CholeskyOperator struct {
	upper *mat.TriDense
	chol  *mat.Cholesky
}

// NewCholesky factorises a positive-definite matrix and returns its
// whitening operator. Non-positive-definite input returns ErrSingular.
func NewCholesky(h *mat.SymDense) (*CholeskyOperator, error) {
	chol := &mat.Cholesky{}
	if ok := chol.Factorize(h); !ok {
		return nil, errors.Wrap(errors.ErrSingular, "matrix is not positive definite")
	}
	upper := mat.NewTriDense(h.SymmetricDim(), mat.Upper, nil)
	chol.UTo(upper)
	return &CholeskyOperator{upper: upper, chol: chol}, nil
}

func (c *CholeskyOperator) Apply(x *mat.VecDense) *mat.VecDense {
	checkDim(c, x)
	out := mat.NewVecDense(x.Len(), nil)
	out.MulVec(c.upper, x)
	return out
}

func (c *CholeskyOperator) TransposeApply(x *mat.VecDense) *mat.VecDense {
	checkDim(c, x)
	out := mat.NewVecDense(x.Len(), nil)
	out.MulVec(c.upper.T(), x)
	return out
}

func (c *CholeskyOperator) Solve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(c, x)
	out := mat.NewVecDense(x.Len(), nil)
	if err := out.SolveVec(c.upper, x); err != nil {
		return nil, errors.Wrap(errors.ErrSingular, err.Error())
	}
	return out, nil
}

func (c *CholeskyOperator) TransposeSolve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(c, x)
	out := mat.NewVecDense(x.Len(), nil)
	if err := out.SolveVec(c.upper.T(), x); err != nil {
		return nil, errors.Wrap(errors.ErrSingular, err.Error())
	}
	return out, nil
}

// LogDet returns the log determinant of the whitening factor U, which is
// half the log determinant of the factorised matrix.
func (c *CholeskyOperator) LogDet() (float64, error) {
	return 0.5 * c.chol.LogDet(), nil
}

func (c *CholeskyOperator) Dims() (int, int) {
	return c.upper.Dims()
}

func (c *CholeskyOperator) Dense() *mat.Dense {
	out := &mat.Dense{}
	out.CloneFrom(c.upper)
	return out
}
