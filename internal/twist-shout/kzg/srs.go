// Package kzg implements a KZG-style polynomial commitment scheme for
// multilinear polynomials over BN254. A commitment is a single G1 point; an
// opening proof carries one quotient commitment per variable and verifies
// with a single product-of-pairings check, in time independent of the
// polynomial size.
//
// The structured reference string is derived from a secret vector
// tau = (tau_1..tau_N). Binding rests on the discrete-log/pairing assumptions
// standard for KZG; the secret must be discarded after setup.
package kzg

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
)

// MaxSupportedVars bounds the size classes setup will produce. Beyond this
// the SRS no longer fits in memory comfortably.
const MaxSupportedVars = 24

// Digest is a commitment to one multilinear polynomial.
type Digest = bn254.G1Affine

// ProverKey holds the G1 side of the SRS: for every level k <= N, the
// Lagrange basis {[L_b(tau)]·G1 : b in {0,1}^k} over the last k secrets.
// A k-variable polynomial commits against level k, so one key serves every
// size class up to N. Immutable after Setup.
type ProverKey struct {
	maxVars  int
	lagrange [][]bn254.G1Affine
}

// VerifierKey holds the G2 side of the SRS plus the group generators.
// Immutable after Setup.
type VerifierKey struct {
	maxVars int
	G1      bn254.G1Affine
	G2      bn254.G2Affine
	TauG2   []bn254.G2Affine // TauG2[i] = [tau_{i+1}]·G2
}

// MaxVars returns the largest variable count the key supports.
func (pk *ProverKey) MaxVars() int { return pk.maxVars }

// MaxVars returns the largest variable count the key supports.
func (vk *VerifierKey) MaxVars() int { return vk.maxVars }

// Setup derives a reference string sized for numVars-variable polynomials.
// The secret vector is sampled internally and discarded on return; a
// production deployment would substitute the output of a setup ceremony.
func Setup(numVars int) (*ProverKey, *VerifierKey, error) {
	if numVars < 1 || numVars > MaxSupportedVars {
		return nil, nil, errcode.New(errcode.UnsupportedSize,
			"setup supports 1..%d variables, got %d", MaxSupportedVars, numVars)
	}

	tau := make([]fr.Element, numVars)
	for i := range tau {
		if _, err := tau[i].SetRandom(); err != nil {
			return nil, nil, errcode.Wrap(errcode.Unknown, err, "sampling setup secret")
		}
	}

	_, _, g1Aff, g2Aff := bn254.Generators()

	// Level k is the multilinear Lagrange basis over tau_{N-k+1..N}, ordered
	// with the first variable as the most significant index bit. Level k is
	// obtained from level k-1 by prepending variable tau_{N-k+1}.
	var one fr.Element
	one.SetOne()
	levels := make([][]fr.Element, numVars+1)
	levels[0] = []fr.Element{one}
	for k := 1; k <= numVars; k++ {
		t := tau[numVars-k]
		var tNeg fr.Element
		tNeg.Sub(&one, &t)
		prev := levels[k-1]
		cur := make([]fr.Element, 2*len(prev))
		for j := range prev {
			cur[j].Mul(&prev[j], &tNeg)
			cur[len(prev)+j].Mul(&prev[j], &t)
		}
		levels[k] = cur
	}

	pk := &ProverKey{
		maxVars:  numVars,
		lagrange: make([][]bn254.G1Affine, numVars+1),
	}
	pk.lagrange[0] = []bn254.G1Affine{g1Aff}
	for k := 1; k <= numVars; k++ {
		pk.lagrange[k] = bn254.BatchScalarMultiplicationG1(&g1Aff, levels[k])
	}

	vk := &VerifierKey{
		maxVars: numVars,
		G1:      g1Aff,
		G2:      g2Aff,
		TauG2:   make([]bn254.G2Affine, numVars),
	}
	var tBig big.Int
	for i := range tau {
		tau[i].BigInt(&tBig)
		vk.TauG2[i].ScalarMultiplication(&g2Aff, &tBig)
	}

	return pk, vk, nil
}
