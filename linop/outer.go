package linop

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/teranos/graphfit/errors"
)

// OuterProduct is the rank-1 operator u*vᵀ. It is singular by
// construction: solves fail and the log determinant is -Inf.
type OuterProduct struct {
	u *mat.VecDense
	v *mat.VecDense
}

// NewOuterProduct creates the operator u*uᵀ.
func NewOuterProduct(u *mat.VecDense) *OuterProduct {
	return &OuterProduct{u: cloneVec(u), v: cloneVec(u)}
}

// NewOuterProductOf creates the operator u*vᵀ. The vectors must have the
// same length.
func NewOuterProductOf(u, v *mat.VecDense) (*OuterProduct, error) {
	if u.Len() != v.Len() {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"outer product of vectors with lengths %d and %d", u.Len(), v.Len())
	}
	return &OuterProduct{u: cloneVec(u), v: cloneVec(v)}, nil
}

func (o *OuterProduct) Apply(x *mat.VecDense) *mat.VecDense {
	checkDim(o, x)
	out := cloneVec(o.u)
	out.ScaleVec(mat.Dot(o.v, x), out)
	return out
}

func (o *OuterProduct) TransposeApply(x *mat.VecDense) *mat.VecDense {
	checkDim(o, x)
	out := cloneVec(o.v)
	out.ScaleVec(mat.Dot(o.u, x), out)
	return out
}

func (o *OuterProduct) Solve(x *mat.VecDense) (*mat.VecDense, error) {
	return nil, errors.Wrap(errors.ErrSingular, "rank-1 operator is not invertible")
}

func (o *OuterProduct) TransposeSolve(x *mat.VecDense) (*mat.VecDense, error) {
	return nil, errors.Wrap(errors.ErrSingular, "rank-1 operator is not invertible")
}

// LogDet is -Inf: a rank-1 operator on more than one dimension has zero
// determinant.
func (o *OuterProduct) LogDet() (float64, error) {
	return math.Inf(-1), nil
}

func (o *OuterProduct) Dims() (int, int) {
	return o.u.Len(), o.v.Len()
}

func (o *OuterProduct) Dense() *mat.Dense {
	out := mat.NewDense(o.u.Len(), o.v.Len(), nil)
	out.Outer(1, o.u, o.v)
	return out
}
