package linop

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/teranos/graphfit/errors"
)

// DiagonalOperator scales each element independently. Symmetric, so apply
// and transpose-apply coincide.
type DiagonalOperator struct {
	scale []float64
}

// NewDiagonal creates a diagonal operator from per-element scales.
func NewDiagonal(scale []float64) *DiagonalOperator {
	return &DiagonalOperator{scale: append([]float64(nil), scale...)}
}

func (d *DiagonalOperator) Apply(x *mat.VecDense) *mat.VecDense {
	checkDim(d, x)
	out := mat.NewVecDense(x.Len(), nil)
	for i, s := range d.scale {
		out.SetVec(i, s*x.AtVec(i))
	}
	return out
}

func (d *DiagonalOperator) TransposeApply(x *mat.VecDense) *mat.VecDense {
	return d.Apply(x)
}

func (d *DiagonalOperator) Solve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(d, x)
	out := mat.NewVecDense(x.Len(), nil)
	for i, s := range d.scale {
		if s == 0 {
			return nil, errors.Wrapf(errors.ErrSingular, "diagonal element %d is zero", i)
		}
		out.SetVec(i, x.AtVec(i)/s)
	}
	return out, nil
}

func (d *DiagonalOperator) TransposeSolve(x *mat.VecDense) (*mat.VecDense, error) {
	return d.Solve(x)
}

func (d *DiagonalOperator) LogDet() (float64, error) {
	logDet := 0.0
	for i, s := range d.scale {
		if s <= 0 {
			return math.NaN(), errors.Wrapf(errors.ErrSingular, "diagonal element %d is %v", i, s)
		}
		logDet += math.Log(s)
	}
	return logDet, nil
}

func (d *DiagonalOperator) Dims() (int, int) {
	return len(d.scale), len(d.scale)
}

func (d *DiagonalOperator) Dense() *mat.Dense {
	n := len(d.scale)
	out := mat.NewDense(n, n, nil)
	for i, s := range d.scale {
		out.Set(i, i, s)
	}
	return out
}
