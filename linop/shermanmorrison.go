package linop

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/teranos/graphfit/errors"
)

// ShermanMorrison represents the rank-1 update A + u*uᵀ of a base operator
// without materialising the sum. Solves use the Sherman-Morrison identity
//
//	(A + u uᵀ)⁻¹ x = A⁻¹x - A⁻¹u (uᵀA⁻¹x) / (1 + uᵀA⁻¹u)
//
// and the determinant satisfies
//
//	log det(A + u uᵀ) = log det(A) + log(1 + uᵀA⁻¹u)
type ShermanMorrison struct {
	base     Operator
	outer    *OuterProduct
	u        *mat.VecDense
	invScale float64
}

// NewShermanMorrison creates the rank-1 update base + u*uᵀ. The base must
// be invertible; the update must keep 1 + uᵀA⁻¹u positive for the
// determinant identity to hold.
func NewShermanMorrison(base Operator, u *mat.VecDense) (*ShermanMorrison, error) {
	r, c := base.Dims()
	if r != c || u.Len() != c {
		return nil, errors.Wrapf(errors.ErrShapeMismatch,
			"rank-1 update of %dx%d operator with vector of length %d", r, c, u.Len())
	}
	quad, err := InvQuad(base, u)
	if err != nil {
		return nil, errors.Wrap(err, "rank-1 update requires an invertible base")
	}
	return &ShermanMorrison{
		base:     base,
		outer:    NewOuterProduct(u),
		u:        cloneVec(u),
		invScale: 1 + quad,
	}, nil
}

// NewShermanMorrisonRank folds a rank-k update base + Σ uᵢ*uᵢᵀ as a chain
// of rank-1 updates.
func NewShermanMorrisonRank(base Operator, us ...*mat.VecDense) (Operator, error) {
	op := base
	for _, u := range us {
		next, err := NewShermanMorrison(op, u)
		if err != nil {
			return nil, err
		}
		op = next
	}
	return op, nil
}

func (sm *ShermanMorrison) Apply(x *mat.VecDense) *mat.VecDense {
	checkDim(sm, x)
	out := sm.base.Apply(x)
	out.AddVec(out, sm.outer.Apply(x))
	return out
}

func (sm *ShermanMorrison) TransposeApply(x *mat.VecDense) *mat.VecDense {
	checkDim(sm, x)
	out := sm.base.TransposeApply(x)
	out.AddVec(out, sm.outer.TransposeApply(x))
	return out
}

func (sm *ShermanMorrison) Solve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(sm, x)
	y, err := sm.base.Solve(x)
	if err != nil {
		return nil, err
	}
	uy := mat.Dot(sm.u, y)
	correction, err := sm.base.Solve(sm.u)
	if err != nil {
		return nil, err
	}
	correction.ScaleVec(uy/sm.invScale, correction)
	y.SubVec(y, correction)
	return y, nil
}

func (sm *ShermanMorrison) TransposeSolve(x *mat.VecDense) (*mat.VecDense, error) {
	checkDim(sm, x)
	y, err := sm.base.TransposeSolve(x)
	if err != nil {
		return nil, err
	}
	w, err := sm.base.TransposeSolve(sm.u)
	if err != nil {
		return nil, err
	}
	// Transposed system has its own scale, uᵀA⁻ᵀu, which only coincides
	// with invScale for symmetric bases.
	scale := 1 + mat.Dot(sm.u, w)
	w.ScaleVec(mat.Dot(sm.u, y)/scale, w)
	y.SubVec(y, w)
	return y, nil
}

func (sm *ShermanMorrison) LogDet() (float64, error) {
	baseLogDet, err := sm.base.LogDet()
	if err != nil {
		return math.NaN(), err
	}
	if sm.invScale <= 0 {
		return math.NaN(), errors.Wrapf(errors.ErrSingular,
			"rank-1 update scale is %v", sm.invScale)
	}
	return baseLogDet + math.Log(sm.invScale), nil
}

func (sm *ShermanMorrison) Dims() (int, int) {
	return sm.base.Dims()
}

func (sm *ShermanMorrison) Dense() *mat.Dense {
	out := sm.base.Dense()
	out.Add(out, sm.outer.Dense())
	return out
}
