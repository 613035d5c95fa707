package kzg

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
	"github.com/zkmem/twist-shout/internal/twist-shout/poly"
)

// OpeningProof certifies one evaluation of a committed polynomial: one
// quotient commitment per bound variable.
type OpeningProof struct {
	Quotients []bn254.G1Affine
}

// Committer is the prover-side commitment capability. Protocol logic is
// written against this interface so commitment backends stay pluggable.
type Committer interface {
	MaxVars() int
	Commit(m *poly.MLE) (Digest, error)
	Open(m *poly.MLE, point []fr.Element) (fr.Element, OpeningProof, error)
}

// Verifier is the verifier-side commitment capability.
type Verifier interface {
	MaxVars() int
	Verify(d Digest, point []fr.Element, value fr.Element, proof OpeningProof) bool
}

// Commit deterministically commits to an MLE against the level matching its
// variable count. Sparse polynomials multi-exponentiate over their support
// only. Fails with SizeMismatch when the key is too small.
func (pk *ProverKey) Commit(m *poly.MLE) (Digest, error) {
	var d Digest
	k := m.NumVars()
	if k > pk.maxVars {
		return d, errcode.New(errcode.SizeMismatch,
			"polynomial has %d variables, key supports %d", k, pk.maxVars)
	}

	var points []bn254.G1Affine
	var scalars []fr.Element
	if m.Repr() == poly.ReprSparse {
		entries := m.Entries()
		if len(entries) == 0 {
			return d, nil // zero polynomial commits to the identity
		}
		points = make([]bn254.G1Affine, len(entries))
		scalars = make([]fr.Element, len(entries))
		for i, e := range entries {
			points[i] = pk.lagrange[k][e.Index]
			scalars[i] = e.Value
		}
	} else {
		points = pk.lagrange[k]
		scalars = m.Evals()
	}

	if _, err := d.MultiExp(points, scalars, ecc.MultiExpConfig{}); err != nil {
		return Digest{}, errcode.Wrap(errcode.Unknown, err, "commitment multiexp")
	}
	return d, nil
}

// Open evaluates the polynomial at a point and produces the opening proof.
// The i-th quotient is the difference table of the fold sequence: binding
// variables in order, f(X) - f(z) = sum_i (X_i - z_i)·q_i(X_{i+1..k}).
func (pk *ProverKey) Open(m *poly.MLE, point []fr.Element) (fr.Element, OpeningProof, error) {
	var value fr.Element
	k := m.NumVars()
	if len(point) != k {
		return value, OpeningProof{}, errcode.New(errcode.ShapeMismatch,
			"point has %d coordinates, polynomial has %d variables", len(point), k)
	}
	if k > pk.maxVars {
		return value, OpeningProof{}, errcode.New(errcode.SizeMismatch,
			"polynomial has %d variables, key supports %d", k, pk.maxVars)
	}

	cur := m.Dense().Clone()
	proof := OpeningProof{Quotients: make([]bn254.G1Affine, k)}
	for i := 0; i < k; i++ {
		evs := cur.Evals()
		mid := len(evs) / 2
		q := make([]fr.Element, mid)
		for j := 0; j < mid; j++ {
			q[j].Sub(&evs[mid+j], &evs[j])
		}
		if _, err := proof.Quotients[i].MultiExp(pk.lagrange[k-1-i], q, ecc.MultiExpConfig{}); err != nil {
			return fr.Element{}, OpeningProof{}, errcode.Wrap(errcode.Unknown, err, "quotient multiexp")
		}
		if err := cur.Bind(point[i]); err != nil {
			return fr.Element{}, OpeningProof{}, err
		}
	}
	value = cur.Evals()[0]
	return value, proof, nil
}

// Verify checks an opening against a commitment via one product-of-pairings
// equation. It never errors: any malformed shape is simply a false outcome.
func (vk *VerifierKey) Verify(d Digest, point []fr.Element, value fr.Element, proof OpeningProof) bool {
	k := len(point)
	if k != len(proof.Quotients) || k > vk.maxVars {
		return false
	}
	off := vk.maxVars - k

	// C - value·G1, paired against -G2
	var vBig big.Int
	value.BigInt(&vBig)
	var vG bn254.G1Affine
	vG.ScalarMultiplication(&vk.G1, &vBig)
	var lhsJac, vGJac bn254.G1Jac
	lhsJac.FromAffine(&d)
	vGJac.FromAffine(&vG)
	lhsJac.SubAssign(&vGJac)

	g1s := make([]bn254.G1Affine, 0, k+1)
	g2s := make([]bn254.G2Affine, 0, k+1)

	var lhs bn254.G1Affine
	lhs.FromJacobian(&lhsJac)
	var negG2 bn254.G2Affine
	negG2.Neg(&vk.G2)
	g1s = append(g1s, lhs)
	g2s = append(g2s, negG2)

	// one pair e(q_i, [tau_i - z_i]·G2) per variable
	var zBig big.Int
	for i := 0; i < k; i++ {
		point[i].BigInt(&zBig)
		var zG2 bn254.G2Affine
		zG2.ScalarMultiplication(&vk.G2, &zBig)
		var tJac, zJac bn254.G2Jac
		tJac.FromAffine(&vk.TauG2[off+i])
		zJac.FromAffine(&zG2)
		tJac.SubAssign(&zJac)
		var rhs bn254.G2Affine
		rhs.FromJacobian(&tJac)
		g1s = append(g1s, proof.Quotients[i])
		g2s = append(g2s, rhs)
	}

	ok, err := bn254.PairingCheck(g1s, g2s)
	return err == nil && ok
}
