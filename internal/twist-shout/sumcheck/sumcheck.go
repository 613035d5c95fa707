// Package sumcheck implements the generic sum-check reduction: a claim that a
// multivariate polynomial sums to V over the Boolean hypercube is compressed,
// one variable per round, into a single point-evaluation claim at the
// transcript's challenge point. The caller certifies that final claim through
// commitment openings, never by recomputation.
package sumcheck

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
	"github.com/zkmem/twist-shout/internal/twist-shout/poly"
	"github.com/zkmem/twist-shout/internal/twist-shout/transcript"
	"github.com/zkmem/twist-shout/internal/twist-shout/utils"
)

// minParallelSize is the hypercube half-size below which the round reduction
// stays serial; goroutine overhead dominates under this.
const minParallelSize = 1 << 10

// Combiner evaluates the summed polynomial from one value per table. It must
// respect the instance's per-variable degree bound.
type Combiner func(vals []fr.Element) fr.Element

// Instance describes one sum-check run: the polynomial is
// Combine(T1(x),...,Tk(x)) over equal-arity multilinear tables.
type Instance struct {
	Tables  []*poly.MLE
	Combine Combiner
	Degree  int
}

// Proof is the ordered list of round polynomials in coefficient form,
// consumed in production order against the same transcript.
type Proof struct {
	RoundPolys [][]fr.Element
}

// Prove runs the prover side of the reduction. It returns the proof, the
// challenge point (r1..rn), and the final value of each table at that point.
// The round-by-round fold of every table is sequential; the reduction inside
// a round is spread over cfg.NbTasks workers with a deterministic merge, so
// the transcript is identical regardless of worker count.
func Prove(inst Instance, claimedSum fr.Element, tr *transcript.Transcript, cfg *utils.Config) (Proof, []fr.Element, []fr.Element, error) {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	if err := validate(inst); err != nil {
		return Proof{}, nil, nil, err
	}

	numVars := inst.Tables[0].NumVars()
	tables := make([]*poly.MLE, len(inst.Tables))
	for i, t := range inst.Tables {
		tables[i] = t.Dense().Clone()
	}

	proof := Proof{RoundPolys: make([][]fr.Element, 0, numVars)}
	challenges := make([]fr.Element, 0, numVars)
	claim := claimedSum

	for round := 0; round < numVars; round++ {
		// one evaluation beyond the bound detects a combiner that violates it
		evals, err := roundEvals(tables, inst.Combine, inst.Degree+2, cfg.NbTasks)
		if err != nil {
			return Proof{}, nil, nil, err
		}

		coeffs := poly.InterpolateOnRange(evals[:inst.Degree+1])
		var extra fr.Element
		extra.SetUint64(uint64(inst.Degree + 1))
		predicted := poly.EvalUnivariate(coeffs, extra)
		if !predicted.Equal(&evals[inst.Degree+1]) {
			return Proof{}, nil, nil, errcode.New(errcode.DegreeViolation,
				"combiner exceeds declared per-variable degree %d in round %d", inst.Degree, round)
		}

		var g0g1 fr.Element
		g0g1.Add(&evals[0], &evals[1])
		if !g0g1.Equal(&claim) {
			return Proof{}, nil, nil, errcode.New(errcode.ProofGeneration,
				"round %d consistency check failed: the claimed sum is false", round)
		}

		tr.AppendScalars("sumcheck.round", coeffs)
		r := tr.ChallengeScalar("sumcheck.challenge")

		for _, t := range tables {
			if err := t.Bind(r); err != nil {
				return Proof{}, nil, nil, err
			}
		}
		claim = poly.EvalUnivariate(coeffs, r)
		proof.RoundPolys = append(proof.RoundPolys, coeffs)
		challenges = append(challenges, r)
	}

	finals := make([]fr.Element, len(tables))
	for i, t := range tables {
		finals[i] = t.Evals()[0]
	}
	if numVars == 0 {
		// degenerate instance: the sum is the single evaluation
		got := inst.Combine(finals)
		if !got.Equal(&claim) {
			return Proof{}, nil, nil, errcode.New(errcode.ProofGeneration,
				"0-variable claim does not match the evaluation")
		}
	}
	return proof, challenges, finals, nil
}

// Verify replays the verifier side: per round the polynomial must stay within
// the degree bound and satisfy g(0)+g(1) == claim, after which the claim
// becomes g(r) for the transcript challenge r. All rounds are processed
// before answering, and the final claim is returned for the caller to check
// against commitment openings.
func Verify(claimedSum fr.Element, proof Proof, numVars, degree int, tr *transcript.Transcript) (bool, []fr.Element, fr.Element) {
	claim := claimedSum
	challenges := make([]fr.Element, 0, numVars)
	ok := len(proof.RoundPolys) == numVars

	// Always replay numVars rounds so the returned challenge point has the
	// arity callers slice by, even against a malformed proof.
	for i := 0; i < numVars; i++ {
		var coeffs []fr.Element
		if i < len(proof.RoundPolys) {
			coeffs = proof.RoundPolys[i]
		}
		if len(coeffs) == 0 || len(coeffs) > degree+1 {
			ok = false
		}
		var zero, one, g0g1 fr.Element
		one.SetOne()
		g0 := poly.EvalUnivariate(coeffs, zero)
		g1 := poly.EvalUnivariate(coeffs, one)
		g0g1.Add(&g0, &g1)
		if !g0g1.Equal(&claim) {
			ok = false
		}

		tr.AppendScalars("sumcheck.round", coeffs)
		r := tr.ChallengeScalar("sumcheck.challenge")
		claim = poly.EvalUnivariate(coeffs, r)
		challenges = append(challenges, r)
	}
	return ok, challenges, claim
}

func validate(inst Instance) error {
	if len(inst.Tables) == 0 {
		return errcode.New(errcode.ShapeMismatch, "sum-check instance has no tables")
	}
	if inst.Degree < 1 {
		return errcode.New(errcode.DegreeViolation, "degree bound must be at least 1, got %d", inst.Degree)
	}
	n := inst.Tables[0].NumVars()
	for i, t := range inst.Tables {
		if t.NumVars() != n {
			return errcode.New(errcode.ShapeMismatch,
				"table %d has %d variables, expected %d", i, t.NumVars(), n)
		}
	}
	return nil
}

// roundEvals computes g(0), g(1), ..., g(nbPoints-1) where
// g(X) = sum over Boolean suffixes of Combine with the first free variable
// at X. Tables enter split as bottom/top halves; evaluations at successive X
// are reached by repeatedly adding the per-table delta.
func roundEvals(tables []*poly.MLE, combine Combiner, nbPoints, nbTasks int) ([]fr.Element, error) {
	mid := len(tables[0].Evals()) / 2

	if nbTasks <= 1 || mid < minParallelSize {
		out := make([]fr.Element, nbPoints)
		accumulate(tables, combine, 0, mid, out)
		return out, nil
	}

	if nbTasks > mid/minParallelSize {
		nbTasks = mid / minParallelSize
	}
	chunk := (mid + nbTasks - 1) / nbTasks
	partial := make([][]fr.Element, nbTasks)

	var g errgroup.Group
	for w := 0; w < nbTasks; w++ {
		start := w * chunk
		end := start + chunk
		if end > mid {
			end = mid
		}
		out := make([]fr.Element, nbPoints)
		partial[w] = out
		g.Go(func() error {
			accumulate(tables, combine, start, end, out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// merge in chunk order: the transcript must not depend on scheduling
	out := make([]fr.Element, nbPoints)
	for _, p := range partial {
		for t := range out {
			out[t].Add(&out[t], &p[t])
		}
	}
	return out, nil
}

func accumulate(tables []*poly.MLE, combine Combiner, start, end int, out []fr.Element) {
	k := len(tables)
	vals := make([]fr.Element, k)
	deltas := make([]fr.Element, k)
	for j := start; j < end; j++ {
		for i, tb := range tables {
			evs := tb.Evals()
			mid := len(evs) / 2
			vals[i] = evs[j]
			deltas[i].Sub(&evs[mid+j], &evs[j])
		}
		v := combine(vals)
		out[0].Add(&out[0], &v)
		for t := 1; t < len(out); t++ {
			for i := range vals {
				vals[i].Add(&vals[i], &deltas[i])
			}
			v = combine(vals)
			out[t].Add(&out[t], &v)
		}
	}
}
