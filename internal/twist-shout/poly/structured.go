package poly

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
	"github.com/zkmem/twist-shout/internal/twist-shout/utils"
)

// EvalEq evaluates the eq polynomial, the MLE of equality on the hypercube:
// eq(x,y) = prod_i (x_i*y_i + (1-x_i)*(1-y_i)).
func EvalEq(x, y []fr.Element) (fr.Element, error) {
	var res fr.Element
	if len(x) != len(y) {
		return res, errcode.New(errcode.ShapeMismatch,
			"eq arguments have %d and %d coordinates", len(x), len(y))
	}
	var one, a, b, term fr.Element
	one.SetOne()
	res.SetOne()
	for i := range x {
		a.Mul(&x[i], &y[i])
		b.Sub(&one, &x[i])
		term.Sub(&one, &y[i])
		b.Mul(&b, &term)
		term.Add(&a, &b)
		res.Mul(&res, &term)
	}
	return res, nil
}

// EqEvals returns the dense table b -> eq(r, b) over all Boolean points b,
// built by the standard doubling pass in O(2^n).
func EqEvals(r []fr.Element) []fr.Element {
	var one fr.Element
	one.SetOne()
	out := make([]fr.Element, 1, 1<<len(r))
	out[0].SetOne()
	for i := range r {
		next := make([]fr.Element, 2*len(out))
		var ri1 fr.Element
		ri1.Sub(&one, &r[i])
		for j := range out {
			next[2*j].Mul(&out[j], &ri1)
			next[2*j+1].Mul(&out[j], &r[i])
		}
		out = next
	}
	return out
}

// EvalOneHotAt evaluates the one-hot indicator MLE of an index at a point in
// O(n), straight from the index's binary expansion. The full 2^n table is
// never materialized.
func EvalOneHotAt(index uint64, numVars int, point []fr.Element) (fr.Element, error) {
	var res fr.Element
	if len(point) != numVars {
		return res, errcode.New(errcode.ShapeMismatch,
			"point has %d coordinates, expected %d", len(point), numVars)
	}
	if index >= uint64(1)<<numVars {
		return res, errcode.New(errcode.IndexOutOfBounds,
			"index %d out of bounds for %d variables", index, numVars)
	}
	return evalBasis(index, numVars, point), nil
}

// LessThan is the MLE of strict "<" on pairs of n-bit indices, compared most
// significant bit first. It expresses "this write precedes this read" without
// materializing a sort; evaluation is O(n) from binary expansions.
type LessThan struct {
	NumVars int
}

// NewLessThan creates a less-than polynomial over n-bit indices.
func NewLessThan(numVars int) LessThan {
	return LessThan{NumVars: numVars}
}

// Evaluate computes lt(x, y) at arbitrary field points:
// lt(x,y) = sum_i (prod_{j<i} eq(x_j,y_j)) * (1-x_i) * y_i.
// At Boolean points this is exactly the numeric comparison x < y.
func (lt LessThan) Evaluate(x, y []fr.Element) (fr.Element, error) {
	var res fr.Element
	if len(x) != lt.NumVars || len(y) != lt.NumVars {
		return res, errcode.New(errcode.ShapeMismatch,
			"arguments have %d and %d coordinates, expected %d", len(x), len(y), lt.NumVars)
	}
	var one, prefix, term, a, b fr.Element
	one.SetOne()
	prefix.SetOne()
	for i := 0; i < lt.NumVars; i++ {
		// (1-x_i) * y_i, weighted by the equal-prefix product
		term.Sub(&one, &x[i])
		term.Mul(&term, &y[i])
		term.Mul(&term, &prefix)
		res.Add(&res, &term)

		// prefix *= eq(x_i, y_i)
		a.Mul(&x[i], &y[i])
		b.Sub(&one, &x[i])
		term.Sub(&one, &y[i])
		b.Mul(&b, &term)
		a.Add(&a, &b)
		prefix.Mul(&prefix, &a)
	}
	return res, nil
}

// TableAt returns the dense table t -> lt(bits(t), y) over all Boolean t.
// This is what the Twist prover sums over; the verifier never needs it and
// evaluates lt directly instead.
func (lt LessThan) TableAt(y []fr.Element) ([]fr.Element, error) {
	if len(y) != lt.NumVars {
		return nil, errcode.New(errcode.ShapeMismatch,
			"point has %d coordinates, expected %d", len(y), lt.NumVars)
	}
	size := uint64(1) << lt.NumVars
	out := make([]fr.Element, size)
	var zero, one fr.Element
	one.SetOne()
	x := make([]fr.Element, lt.NumVars)
	for t := uint64(0); t < size; t++ {
		for i := 0; i < lt.NumVars; i++ {
			if utils.Bit(t, i, lt.NumVars) == 1 {
				x[i] = one
			} else {
				x[i] = zero
			}
		}
		v, err := lt.Evaluate(x, y)
		if err != nil {
			return nil, err
		}
		out[t] = v
	}
	return out, nil
}
