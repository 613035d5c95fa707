package poly

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// EvalUnivariate evaluates a coefficient-form univariate polynomial at a
// point using Horner's method.
func EvalUnivariate(coeffs []fr.Element, x fr.Element) fr.Element {
	var res fr.Element
	if len(coeffs) == 0 {
		return res
	}
	res = coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		res.Mul(&res, &x)
		res.Add(&res, &coeffs[i])
	}
	return res
}

// InterpolateOnRange interpolates the unique polynomial of degree < len(evals)
// through the points (0, evals[0]), (1, evals[1]), ... and returns its
// coefficients. Sum-check round polynomials are produced as evaluations on
// this range and shipped in coefficient form.
func InterpolateOnRange(evals []fr.Element) []fr.Element {
	n := len(evals)
	if n == 0 {
		return nil
	}

	coeffs := make([]fr.Element, n)
	var node, denom, denomInv, tmp fr.Element

	for i := 0; i < n; i++ {
		// Lagrange basis L_i(X) = prod_{j!=i} (X - j) / (i - j)
		basis := make([]fr.Element, 1, n)
		basis[0].SetOne()
		denom.SetOne()
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			// basis *= (X - j)
			node.SetUint64(uint64(j))
			next := make([]fr.Element, len(basis)+1)
			for k := range basis {
				next[k+1].Add(&next[k+1], &basis[k])
				tmp.Mul(&basis[k], &node)
				next[k].Sub(&next[k], &tmp)
			}
			basis = next

			// denom *= (i - j)
			tmp.SetUint64(uint64(i))
			tmp.Sub(&tmp, &node)
			denom.Mul(&denom, &tmp)
		}
		denomInv.Inverse(&denom)
		for k := range basis {
			tmp.Mul(&basis[k], &denomInv)
			tmp.Mul(&tmp, &evals[i])
			coeffs[k].Add(&coeffs[k], &tmp)
		}
	}
	return coeffs
}
