package linop

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/teranos/graphfit/errors"
)

// DenseOperator wraps a square dense matrix. Solves go through an LU
// factorisation computed once on first use.
type DenseOperator struct {
	m  *mat.Dense
	lu *mat.LU
}

// NewDense creates an operator from a square matrix. The matrix is not
// copied; callers must not modify it afterwards.
func NewDense(m *mat.Dense) (*DenseOperator, error) {
	r, c := m.Dims()
	if r != c {
		return nil, errors.Wrapf(errors.ErrShapeMismatch, "dense operator must be square, got %dx%d", r, c)
	}
	return &DenseOperator{m: m}, nil
}

func (d *DenseOperator) factorise() *mat.LU {
	if d.lu == nil {
		d.lu = &mat.LU{}
		d.lu.Factorize(d.m)
	}
	return d.lu
}

func (d *DenseOperator) Apply(x *mat.VecDense) *mat.VecDense {
	checkDim(d, x)
	out := mat.NewVecDense(x.Len(), nil)
	out.MulVec(d.m, x)
	return out
}

func (d *DenseOperator) TransposeApply(x *mat.VecDense) *mat.VecDense {
	checkDim(d, x)
	out := mat.NewVecDense(x.Len(), nil)
	out.MulVec(d.m.T(), x)
	return out
}

func (d *DenseOperator) Solve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(d, x)
	out := mat.NewVecDense(x.Len(), nil)
	if err := d.factorise().SolveVecTo(out, false, x); err != nil {
		return nil, errors.Wrap(errors.ErrSingular, err.Error())
	}
	return out, nil
}

func (d *DenseOperator) TransposeSolve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(d, x)
	out := mat.NewVecDense(x.Len(), nil)
	if err := d.factorise().SolveVecTo(out, true, x); err != nil {
		return nil, errors.Wrap(errors.ErrSingular, err.Error())
	}
	return out, nil
}

func (d *DenseOperator) LogDet() (float64, error) {
	logDet, _ := d.factorise().LogDet()
	if math.IsInf(logDet, -1) || math.IsNaN(logDet) {
		return math.NaN(), errors.Wrap(errors.ErrSingular, "dense operator has zero determinant")
	}
	return logDet, nil
}

func (d *DenseOperator) Dims() (int, int) {
	return d.m.Dims()
}

func (d *DenseOperator) Dense() *mat.Dense {
	out := &mat.Dense{}
	out.CloneFrom(d.m)
	return out
}
