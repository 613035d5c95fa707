package protocols

import (
	"encoding/binary"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
	"github.com/zkmem/twist-shout/internal/twist-shout/kzg"
	"github.com/zkmem/twist-shout/internal/twist-shout/logger"
	"github.com/zkmem/twist-shout/internal/twist-shout/poly"
	"github.com/zkmem/twist-shout/internal/twist-shout/sumcheck"
	"github.com/zkmem/twist-shout/internal/twist-shout/transcript"
	"github.com/zkmem/twist-shout/internal/twist-shout/utils"
)

const shoutLabel = "twist-shout.shout"

// Shout proves batches of lookups against a read-only table. The claimed
// values V, the table T and the one-hot selector matrix OH are committed,
// and a sum-check reduces the batched identity
//
//	V(r) = sum_{j,a} eq(r,j) · OH(j,a) · T(a)
//
// to openings. Two further sum-checks pin OH to a valid selector: every row
// sums to 1 and every entry is 0 or 1, so each lookup row selects exactly
// one table address.
type Shout struct {
	pk  kzg.Committer
	cfg *utils.Config
}

// NewShout creates a Shout prover over a commitment key.
func NewShout(pk kzg.Committer, cfg *utils.Config) *Shout {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	return &Shout{pk: pk, cfg: cfg}
}

// Prove generates a proof that every lookup recorded on the table returned
// the table's value at its index. A table with a false recorded value cannot
// be proven: the run fails with ProofGeneration instead of emitting a proof.
func (s *Shout) Prove(table *LookupTable) (*ShoutProof, error) {
	log := logger.Logger().With().Str("protocol", "shout").Logger()
	start := time.Now()

	n := utils.Log2(int(table.PaddedSize()))
	lookups := table.Lookups()
	padded := utils.NextPowerOfTwo(max(len(lookups), 1))
	m := utils.Log2(padded)
	if m+n > s.pk.MaxVars() {
		return nil, errcode.New(errcode.SizeMismatch,
			"instance needs %d variables, key supports %d", m+n, s.pk.MaxVars())
	}
	for _, lk := range lookups {
		if lk.Index >= table.PaddedSize() {
			return nil, errcode.New(errcode.IndexOutOfBounds,
				"lookup index %d out of bounds for table size %d", lk.Index, table.PaddedSize())
		}
	}

	// Pad the sequence by replaying index 0; padded rows then satisfy the
	// identity with value T(0).
	tEvals := make([]fr.Element, table.PaddedSize())
	copy(tEvals, table.Entries)
	vEvals := make([]fr.Element, padded)
	var one fr.Element
	one.SetOne()
	ohEntries := make([]poly.Entry, padded)
	for j := 0; j < padded; j++ {
		op := LookupOp{Index: 0, Value: tEvals[0]}
		if j < len(lookups) {
			op = lookups[j]
		}
		vEvals[j] = op.Value
		ohEntries[j] = poly.Entry{Index: uint64(j)<<n | op.Index, Value: one}
	}

	tMLE, err := poly.NewDense(tEvals)
	if err != nil {
		return nil, err
	}
	vMLE, err := poly.NewDense(vEvals)
	if err != nil {
		return nil, err
	}
	ohMLE, err := poly.NewSparse(m+n, ohEntries)
	if err != nil {
		return nil, err
	}

	proof := &ShoutProof{TableVars: n, LookupVars: m}
	if proof.TableComm, err = s.pk.Commit(tMLE); err != nil {
		return nil, err
	}
	if proof.SelectorComm, err = s.pk.Commit(ohMLE); err != nil {
		return nil, err
	}
	if proof.ValueComm, err = s.pk.Commit(vMLE); err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Msg("commitments done")

	tr := transcript.New(shoutLabel, s.cfg.HashFunction)
	appendShoutShape(tr, proof)
	r := tr.ChallengeScalars("shout.batch", m)

	claim, err := vMLE.Evaluate(r)
	if err != nil {
		return nil, err
	}
	tr.AppendScalar("shout.value", claim)

	// All three factors live on the full (j,a) cube: eq(r,j) is constant in
	// a, T(a) is constant in j.
	eqTab := expandTime(poly.EqEvals(r), n)
	eqMLE, err := poly.NewDense(eqTab)
	if err != nil {
		return nil, err
	}
	tTiled, err := poly.NewDense(expandAddr(tEvals, m))
	if err != nil {
		return nil, err
	}

	inst := sumcheck.Instance{
		Tables:  []*poly.MLE{eqMLE, ohMLE, tTiled},
		Combine: productOf3,
		Degree:  2,
	}
	scProof, rho, _, err := sumcheck.Prove(inst, claim, tr, s.cfg)
	if err != nil {
		return nil, err
	}
	proof.Lookup = scProof

	if proof.Selector.Value, proof.Selector.Proof, err = s.pk.Open(ohMLE, rho); err != nil {
		return nil, err
	}
	if proof.Table.Value, proof.Table.Proof, err = s.pk.Open(tMLE, rho[m:]); err != nil {
		return nil, err
	}
	if proof.Value.Value, proof.Value.Proof, err = s.pk.Open(vMLE, r); err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Msg("lookup check done")

	// Row weight: sum_{j,a} eq(z,j) · OH(j,a) = 1 for every row j, including
	// the padding rows, which replay lookup 0.
	z := tr.ChallengeScalars("shout.rowsum.time", m)
	eqZ, err := poly.NewDense(expandTime(poly.EqEvals(z), n))
	if err != nil {
		return nil, err
	}
	rowInst := sumcheck.Instance{
		Tables:  []*poly.MLE{eqZ, ohMLE},
		Combine: productOf2,
		Degree:  2,
	}
	var rowTarget fr.Element
	rowTarget.SetOne()
	var rhoRow []fr.Element
	if proof.RowSum, rhoRow, _, err = sumcheck.Prove(rowInst, rowTarget, tr, s.cfg); err != nil {
		return nil, err
	}
	if proof.SelectorRow.Value, proof.SelectorRow.Proof, err = s.pk.Open(ohMLE, rhoRow); err != nil {
		return nil, err
	}

	// Booleanity: 0 = sum_x eq(sB,x) · OH(x)·(1-OH(x)).
	sB := tr.ChallengeScalars("shout.bool.point", m+n)
	eqS, err := poly.NewDense(poly.EqEvals(sB))
	if err != nil {
		return nil, err
	}
	boolInst := sumcheck.Instance{
		Tables:  []*poly.MLE{eqS, ohMLE},
		Combine: selectorBooleanity,
		Degree:  3,
	}
	var zero fr.Element
	var sigma []fr.Element
	if proof.Booleanity, sigma, _, err = sumcheck.Prove(boolInst, zero, tr, s.cfg); err != nil {
		return nil, err
	}
	if proof.SelectorBool.Value, proof.SelectorBool.Proof, err = s.pk.Open(ohMLE, sigma); err != nil {
		return nil, err
	}

	log.Info().
		Int("lookups", len(lookups)).
		Int("tableVars", n).
		Int("lookupVars", m).
		Dur("took", time.Since(start)).
		Msg("proof generated")
	return proof, nil
}

// VerifyShout checks a Shout proof against the verifier key. The sum-check
// transcripts are replayed in full before any verdict; final claims are
// certified through the five openings plus direct eq evaluations.
func VerifyShout(vk kzg.Verifier, proof *ShoutProof, cfg *utils.Config) bool {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	m, n := proof.LookupVars, proof.TableVars
	if m < 0 || n < 0 || m+n > vk.MaxVars() {
		return false
	}

	tr := transcript.New(shoutLabel, cfg.HashFunction)
	appendShoutShape(tr, proof)
	r := tr.ChallengeScalars("shout.batch", m)
	claim := proof.Value.Value
	tr.AppendScalar("shout.value", claim)

	ok, rho, finalClaim := sumcheck.Verify(claim, proof.Lookup, m+n, 2, tr)

	eqv, err := poly.EvalEq(r, rho[:m])
	if err != nil {
		return false
	}
	var expect fr.Element
	expect.Mul(&eqv, &proof.Selector.Value)
	expect.Mul(&expect, &proof.Table.Value)
	ok = ok && expect.Equal(&finalClaim)

	// Row weight.
	z := tr.ChallengeScalars("shout.rowsum.time", m)
	var rowTarget fr.Element
	rowTarget.SetOne()
	okRow, rhoRow, rowClaim := sumcheck.Verify(rowTarget, proof.RowSum, m+n, 2, tr)
	eqz, err := poly.EvalEq(z, rhoRow[:m])
	if err != nil {
		return false
	}
	expect.Mul(&eqz, &proof.SelectorRow.Value)
	ok = ok && okRow && expect.Equal(&rowClaim)

	// Booleanity.
	sB := tr.ChallengeScalars("shout.bool.point", m+n)
	var zero fr.Element
	okBool, sigma, boolClaim := sumcheck.Verify(zero, proof.Booleanity, m+n, 3, tr)
	eqs, err := poly.EvalEq(sB, sigma)
	if err != nil {
		return false
	}
	expect = selectorBooleanity([]fr.Element{eqs, proof.SelectorBool.Value})
	ok = ok && okBool && expect.Equal(&boolClaim)

	ok = ok && vk.Verify(proof.SelectorComm, rho, proof.Selector.Value, proof.Selector.Proof)
	ok = ok && vk.Verify(proof.TableComm, rho[m:], proof.Table.Value, proof.Table.Proof)
	ok = ok && vk.Verify(proof.ValueComm, r, proof.Value.Value, proof.Value.Proof)
	ok = ok && vk.Verify(proof.SelectorComm, rhoRow, proof.SelectorRow.Value, proof.SelectorRow.Proof)
	ok = ok && vk.Verify(proof.SelectorComm, sigma, proof.SelectorBool.Value, proof.SelectorBool.Proof)
	return ok
}

func appendShoutShape(tr *transcript.Transcript, proof *ShoutProof) {
	var dims [16]byte
	binary.BigEndian.PutUint64(dims[0:8], uint64(proof.LookupVars))
	binary.BigEndian.PutUint64(dims[8:16], uint64(proof.TableVars))
	tr.Append("shout.dims", dims[:])
	tr.AppendPoint("shout.table", &proof.TableComm)
	tr.AppendPoint("shout.selector", &proof.SelectorComm)
	tr.AppendPoint("shout.values", &proof.ValueComm)
}

func productOf3(vals []fr.Element) fr.Element {
	var res fr.Element
	res.Mul(&vals[0], &vals[1])
	res.Mul(&res, &vals[2])
	return res
}

func productOf2(vals []fr.Element) fr.Element {
	var res fr.Element
	res.Mul(&vals[0], &vals[1])
	return res
}

// selectorBooleanity is eq · x·(1-x); vals are (eq, x).
func selectorBooleanity(vals []fr.Element) fr.Element {
	var one, res fr.Element
	one.SetOne()
	res.Sub(&one, &vals[1])
	res.Mul(&res, &vals[1])
	res.Mul(&res, &vals[0])
	return res
}

// expandTime tiles a 2^m time table over the address cube: the result on the
// (t,a) cube is constant in a.
func expandTime(vals []fr.Element, memVars int) []fr.Element {
	k := 1 << memVars
	out := make([]fr.Element, len(vals)*k)
	for j := range vals {
		row := out[j*k : (j+1)*k]
		for a := range row {
			row[a] = vals[j]
		}
	}
	return out
}

// expandAddr tiles a 2^n address table over the time cube: the result on the
// (t,a) cube is constant in t.
func expandAddr(vals []fr.Element, timeVars int) []fr.Element {
	reps := 1 << timeVars
	out := make([]fr.Element, len(vals)*reps)
	for j := 0; j < reps; j++ {
		copy(out[j*len(vals):], vals)
	}
	return out
}
