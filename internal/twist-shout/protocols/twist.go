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

const twistLabel = "twist-shout.twist"

// Twist proves read-write memory consistency. The trace is encoded as seven
// committed polynomials over time variables t and address variables a:
//
//	ra(t,a)   one-hot read selector
//	wa(t,a)   one-hot write selector
//	inc(t)    value delta applied by the write at step t
//	rv(t)     value each read claims to have seen
//	Val(t,a)  memory contents just before step t
//	rf(t)     read flag, 1 iff step t reads
//	wf(t)     write flag, 1 iff step t writes
//
// Five chained sum-checks reduce the consistency statement to openings: the
// read check ties rv to Val through ra, value formation ties Val to the
// write history through the less-than polynomial, the booleanity check pins
// both selectors to {0,1} on the hypercube, the row-sum check ties each
// selector's row sums to its committed flag, and the flag-booleanity check
// pins the flags to {0,1}. Together the last three force every selector row
// to pick at most one address.
type Twist struct {
	pk  kzg.Committer
	cfg *utils.Config
}

// NewTwist creates a Twist prover over a commitment key.
func NewTwist(pk kzg.Committer, cfg *utils.Config) *Twist {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	return &Twist{pk: pk, cfg: cfg}
}

// twistWitness is the encoded trace: the dense and sparse tables the
// sum-checks run over.
type twistWitness struct {
	timeVars, memVars int

	ra, wa   *poly.MLE // sparse, timeVars+memVars variables
	inc, rv  *poly.MLE // dense, timeVars variables
	rf, wf   *poly.MLE // dense, timeVars variables
	val      *poly.MLE // dense, timeVars+memVars variables
	writeOps []MemoryOp
}

// encode replays the trace into the five witness polynomials. Timestamp gaps
// become all-zero rows, which satisfy every identity vacuously.
func (tw *Twist) encode(trace *MemoryTrace) (*twistWitness, error) {
	n := utils.Log2(int(trace.MemorySize))
	ops := trace.Ops()

	var maxTs uint64
	var prev int64 = -1
	for _, op := range ops {
		if op.Address >= trace.MemorySize {
			return nil, errcode.New(errcode.TraceOutOfBounds,
				"address %d out of bounds for memory size %d", op.Address, trace.MemorySize)
		}
		if int64(op.Timestamp) <= prev {
			return nil, errcode.New(errcode.TraceOutOfBounds,
				"timestamps must be strictly increasing")
		}
		prev = int64(op.Timestamp)
		maxTs = op.Timestamp
	}

	timeSteps := utils.NextPowerOfTwo(int(maxTs) + 1)
	m := utils.Log2(timeSteps)
	if m+n > tw.pk.MaxVars() {
		return nil, errcode.New(errcode.SizeMismatch,
			"instance needs %d variables, key supports %d", m+n, tw.pk.MaxVars())
	}

	w := &twistWitness{timeVars: m, memVars: n}
	var one fr.Element
	one.SetOne()

	mem := make([]fr.Element, trace.MemorySize)
	valTab := make([]fr.Element, timeSteps*int(trace.MemorySize))
	rvTab := make([]fr.Element, timeSteps)
	incTab := make([]fr.Element, timeSteps)
	rfTab := make([]fr.Element, timeSteps)
	wfTab := make([]fr.Element, timeSteps)
	var raEntries, waEntries []poly.Entry

	next := 0
	for t := uint64(0); t < uint64(timeSteps); t++ {
		copy(valTab[t*trace.MemorySize:(t+1)*trace.MemorySize], mem)
		if next >= len(ops) || ops[next].Timestamp != t {
			continue
		}
		op := ops[next]
		next++
		cell := uint64(t)<<n | op.Address
		switch op.Kind {
		case OpRead:
			raEntries = append(raEntries, poly.Entry{Index: cell, Value: one})
			rvTab[t] = op.Value
			rfTab[t] = one
		case OpWrite:
			waEntries = append(waEntries, poly.Entry{Index: cell, Value: one})
			incTab[t].Sub(&op.Value, &mem[op.Address])
			mem[op.Address] = op.Value
			w.writeOps = append(w.writeOps, op)
			wfTab[t] = one
		}
	}

	var err error
	if w.ra, err = poly.NewSparse(m+n, raEntries); err != nil {
		return nil, err
	}
	if w.wa, err = poly.NewSparse(m+n, waEntries); err != nil {
		return nil, err
	}
	if w.inc, err = poly.NewDense(incTab); err != nil {
		return nil, err
	}
	if w.rv, err = poly.NewDense(rvTab); err != nil {
		return nil, err
	}
	if w.rf, err = poly.NewDense(rfTab); err != nil {
		return nil, err
	}
	if w.wf, err = poly.NewDense(wfTab); err != nil {
		return nil, err
	}
	if w.val, err = poly.NewDense(valTab); err != nil {
		return nil, err
	}
	return w, nil
}

// Prove generates a consistency proof for the trace. A trace whose recorded
// read values contradict its write history cannot be proven; the run fails
// with ProofGeneration instead of emitting a proof.
func (tw *Twist) Prove(trace *MemoryTrace) (*TwistProof, error) {
	log := logger.Logger().With().Str("protocol", "twist").Logger()
	start := time.Now()

	w, err := tw.encode(trace)
	if err != nil {
		return nil, err
	}
	m, n := w.timeVars, w.memVars

	proof := &TwistProof{TimeVars: m, MemVars: n}
	if proof.ReadSelComm, err = tw.pk.Commit(w.ra); err != nil {
		return nil, err
	}
	if proof.WriteSelComm, err = tw.pk.Commit(w.wa); err != nil {
		return nil, err
	}
	if proof.IncComm, err = tw.pk.Commit(w.inc); err != nil {
		return nil, err
	}
	if proof.ReadValComm, err = tw.pk.Commit(w.rv); err != nil {
		return nil, err
	}
	if proof.ValComm, err = tw.pk.Commit(w.val); err != nil {
		return nil, err
	}
	if proof.ReadFlagComm, err = tw.pk.Commit(w.rf); err != nil {
		return nil, err
	}
	if proof.WriteFlagComm, err = tw.pk.Commit(w.wf); err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Msg("commitments done")

	tr := transcript.New(twistLabel, tw.cfg.HashFunction)
	appendTwistShape(tr, proof)

	// Read check: rv(rT) = sum_{t,a} eq(rT,t) · ra(t,a) · Val(t,a).
	rT := tr.ChallengeScalars("twist.time", m)
	if proof.ReadValue.Value, proof.ReadValue.Proof, err = tw.pk.Open(w.rv, rT); err != nil {
		return nil, err
	}
	tr.AppendScalar("twist.readvalue", proof.ReadValue.Value)

	eqMLE, err := poly.NewDense(expandTime(poly.EqEvals(rT), n))
	if err != nil {
		return nil, err
	}
	// Time variables hit all three factors, so the per-variable degree is 3.
	readInst := sumcheck.Instance{
		Tables:  []*poly.MLE{eqMLE, w.ra, w.val},
		Combine: productOf3,
		Degree:  3,
	}
	var rho []fr.Element
	if proof.ReadCheck, rho, _, err = sumcheck.Prove(readInst, proof.ReadValue.Value, tr, tw.cfg); err != nil {
		return nil, err
	}
	if proof.ReadSel.Value, proof.ReadSel.Proof, err = tw.pk.Open(w.ra, rho); err != nil {
		return nil, err
	}
	if proof.Val.Value, proof.Val.Proof, err = tw.pk.Open(w.val, rho); err != nil {
		return nil, err
	}
	tr.AppendScalar("twist.readsel", proof.ReadSel.Value)
	tr.AppendScalar("twist.val", proof.Val.Value)
	log.Debug().Dur("took", time.Since(start)).Msg("read check done")

	// Value formation: Val(rho_t,rho_a) = sum_{t'} lt(t',rho_t) · wa(t',rho_a) · inc(t').
	rhoT, rhoA := rho[:m], rho[m:]
	ltTab, err := poly.NewLessThan(m).TableAt(rhoT)
	if err != nil {
		return nil, err
	}
	ltMLE, err := poly.NewDense(ltTab)
	if err != nil {
		return nil, err
	}
	waAtA := make([]fr.Element, 1<<m)
	for _, op := range w.writeOps {
		basis, err := poly.EvalOneHotAt(op.Address, n, rhoA)
		if err != nil {
			return nil, err
		}
		waAtA[op.Timestamp] = basis
	}
	waAtAMLE, err := poly.NewDense(waAtA)
	if err != nil {
		return nil, err
	}
	formInst := sumcheck.Instance{
		Tables:  []*poly.MLE{ltMLE, waAtAMLE, w.inc},
		Combine: productOf3,
		Degree:  3,
	}
	var rhoT2 []fr.Element
	if proof.ValueForm, rhoT2, _, err = sumcheck.Prove(formInst, proof.Val.Value, tr, tw.cfg); err != nil {
		return nil, err
	}
	waPoint := append(append([]fr.Element(nil), rhoT2...), rhoA...)
	if proof.WriteSel.Value, proof.WriteSel.Proof, err = tw.pk.Open(w.wa, waPoint); err != nil {
		return nil, err
	}
	if proof.Inc.Value, proof.Inc.Proof, err = tw.pk.Open(w.inc, rhoT2); err != nil {
		return nil, err
	}
	tr.AppendScalar("twist.writesel", proof.WriteSel.Value)
	tr.AppendScalar("twist.inc", proof.Inc.Value)
	log.Debug().Dur("took", time.Since(start)).Msg("value formation done")

	// Booleanity: 0 = sum_x eq(s,x) · (ra(1-ra) + gamma·wa(1-wa)).
	s := tr.ChallengeScalars("twist.bool.point", m+n)
	gamma := tr.ChallengeScalar("twist.bool.gamma")
	eqS, err := poly.NewDense(poly.EqEvals(s))
	if err != nil {
		return nil, err
	}
	boolInst := sumcheck.Instance{
		Tables:  []*poly.MLE{eqS, w.ra.Dense(), w.wa.Dense()},
		Combine: booleanityCombiner(gamma),
		Degree:  3,
	}
	var zero fr.Element
	var sigma []fr.Element
	if proof.Booleanity, sigma, _, err = sumcheck.Prove(boolInst, zero, tr, tw.cfg); err != nil {
		return nil, err
	}
	if proof.ReadSelBool.Value, proof.ReadSelBool.Proof, err = tw.pk.Open(w.ra, sigma); err != nil {
		return nil, err
	}
	if proof.WriteSelBin.Value, proof.WriteSelBin.Proof, err = tw.pk.Open(w.wa, sigma); err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Msg("booleanity done")

	// Row sums: rf(z) + gamma2·wf(z) = sum_{t,a} eq(z,t) · (ra + gamma2·wa),
	// tying each selector's row weight to its committed flag.
	z := tr.ChallengeScalars("twist.rowsum.time", m)
	gamma2 := tr.ChallengeScalar("twist.rowsum.gamma")
	if proof.ReadFlag.Value, proof.ReadFlag.Proof, err = tw.pk.Open(w.rf, z); err != nil {
		return nil, err
	}
	if proof.WriteFlag.Value, proof.WriteFlag.Proof, err = tw.pk.Open(w.wf, z); err != nil {
		return nil, err
	}
	tr.AppendScalar("twist.readflag", proof.ReadFlag.Value)
	tr.AppendScalar("twist.writeflag", proof.WriteFlag.Value)

	var rowClaim fr.Element
	rowClaim.Mul(&gamma2, &proof.WriteFlag.Value)
	rowClaim.Add(&rowClaim, &proof.ReadFlag.Value)
	eqZ, err := poly.NewDense(expandTime(poly.EqEvals(z), n))
	if err != nil {
		return nil, err
	}
	rowInst := sumcheck.Instance{
		Tables:  []*poly.MLE{eqZ, w.ra.Dense(), w.wa.Dense()},
		Combine: rowSumCombiner(gamma2),
		Degree:  2,
	}
	var rhoRow []fr.Element
	if proof.RowSum, rhoRow, _, err = sumcheck.Prove(rowInst, rowClaim, tr, tw.cfg); err != nil {
		return nil, err
	}
	if proof.ReadSelRow.Value, proof.ReadSelRow.Proof, err = tw.pk.Open(w.ra, rhoRow); err != nil {
		return nil, err
	}
	if proof.WriteSelRow.Value, proof.WriteSelRow.Proof, err = tw.pk.Open(w.wa, rhoRow); err != nil {
		return nil, err
	}

	// Flag booleanity: 0 = sum_t eq(s2,t) · (rf(1-rf) + gamma3·wf(1-wf)).
	// With the row-sum check this caps every selector row's weight at one.
	s2 := tr.ChallengeScalars("twist.flagbool.point", m)
	gamma3 := tr.ChallengeScalar("twist.flagbool.gamma")
	eqS2, err := poly.NewDense(poly.EqEvals(s2))
	if err != nil {
		return nil, err
	}
	flagInst := sumcheck.Instance{
		Tables:  []*poly.MLE{eqS2, w.rf, w.wf},
		Combine: booleanityCombiner(gamma3),
		Degree:  3,
	}
	var sigma2 []fr.Element
	if proof.FlagBool, sigma2, _, err = sumcheck.Prove(flagInst, zero, tr, tw.cfg); err != nil {
		return nil, err
	}
	if proof.ReadFlagBool.Value, proof.ReadFlagBool.Proof, err = tw.pk.Open(w.rf, sigma2); err != nil {
		return nil, err
	}
	if proof.WriteFlagBool.Value, proof.WriteFlagBool.Proof, err = tw.pk.Open(w.wf, sigma2); err != nil {
		return nil, err
	}

	log.Info().
		Int("ops", len(trace.Ops())).
		Int("timeVars", m).
		Int("memVars", n).
		Dur("took", time.Since(start)).
		Msg("proof generated")
	return proof, nil
}

// VerifyTwist checks a Twist proof against the verifier key. Each sum-check
// transcript is replayed in full before any verdict; final claims are
// certified through the thirteen openings plus direct eq and less-than
// evaluations.
func VerifyTwist(vk kzg.Verifier, proof *TwistProof, cfg *utils.Config) bool {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}
	m, n := proof.TimeVars, proof.MemVars
	if m < 0 || n < 0 || m+n > vk.MaxVars() {
		return false
	}

	tr := transcript.New(twistLabel, cfg.HashFunction)
	appendTwistShape(tr, proof)

	// Read check.
	rT := tr.ChallengeScalars("twist.time", m)
	tr.AppendScalar("twist.readvalue", proof.ReadValue.Value)
	ok, rho, c1 := sumcheck.Verify(proof.ReadValue.Value, proof.ReadCheck, m+n, 3, tr)
	rhoT, rhoA := rho[:m], rho[m:]

	eqv, err := poly.EvalEq(rT, rhoT)
	if err != nil {
		return false
	}
	var expect fr.Element
	expect.Mul(&eqv, &proof.ReadSel.Value)
	expect.Mul(&expect, &proof.Val.Value)
	ok = ok && expect.Equal(&c1)
	tr.AppendScalar("twist.readsel", proof.ReadSel.Value)
	tr.AppendScalar("twist.val", proof.Val.Value)

	// Value formation.
	ok2, rhoT2, c2 := sumcheck.Verify(proof.Val.Value, proof.ValueForm, m, 3, tr)
	ltv, err := poly.NewLessThan(m).Evaluate(rhoT2, rhoT)
	if err != nil {
		return false
	}
	expect.Mul(&ltv, &proof.WriteSel.Value)
	expect.Mul(&expect, &proof.Inc.Value)
	ok = ok && ok2 && expect.Equal(&c2)
	tr.AppendScalar("twist.writesel", proof.WriteSel.Value)
	tr.AppendScalar("twist.inc", proof.Inc.Value)

	// Booleanity.
	s := tr.ChallengeScalars("twist.bool.point", m+n)
	gamma := tr.ChallengeScalar("twist.bool.gamma")
	var zero fr.Element
	ok3, sigma, c3 := sumcheck.Verify(zero, proof.Booleanity, m+n, 3, tr)
	eqs, err := poly.EvalEq(s, sigma)
	if err != nil {
		return false
	}
	expect = booleanityCombiner(gamma)([]fr.Element{eqs, proof.ReadSelBool.Value, proof.WriteSelBin.Value})
	ok = ok && ok3 && expect.Equal(&c3)

	// Row sums.
	z := tr.ChallengeScalars("twist.rowsum.time", m)
	gamma2 := tr.ChallengeScalar("twist.rowsum.gamma")
	tr.AppendScalar("twist.readflag", proof.ReadFlag.Value)
	tr.AppendScalar("twist.writeflag", proof.WriteFlag.Value)
	var rowClaim fr.Element
	rowClaim.Mul(&gamma2, &proof.WriteFlag.Value)
	rowClaim.Add(&rowClaim, &proof.ReadFlag.Value)
	ok4, rhoRow, c4 := sumcheck.Verify(rowClaim, proof.RowSum, m+n, 2, tr)
	eqz, err := poly.EvalEq(z, rhoRow[:m])
	if err != nil {
		return false
	}
	expect = rowSumCombiner(gamma2)([]fr.Element{eqz, proof.ReadSelRow.Value, proof.WriteSelRow.Value})
	ok = ok && ok4 && expect.Equal(&c4)

	// Flag booleanity.
	s2 := tr.ChallengeScalars("twist.flagbool.point", m)
	gamma3 := tr.ChallengeScalar("twist.flagbool.gamma")
	ok5, sigma2, c5 := sumcheck.Verify(zero, proof.FlagBool, m, 3, tr)
	eqs2, err := poly.EvalEq(s2, sigma2)
	if err != nil {
		return false
	}
	expect = booleanityCombiner(gamma3)([]fr.Element{eqs2, proof.ReadFlagBool.Value, proof.WriteFlagBool.Value})
	ok = ok && ok5 && expect.Equal(&c5)

	// Certify every final claim against the commitments.
	waPoint := append(append([]fr.Element(nil), rhoT2...), rhoA...)
	ok = ok && vk.Verify(proof.ReadValComm, rT, proof.ReadValue.Value, proof.ReadValue.Proof)
	ok = ok && vk.Verify(proof.ReadSelComm, rho, proof.ReadSel.Value, proof.ReadSel.Proof)
	ok = ok && vk.Verify(proof.ValComm, rho, proof.Val.Value, proof.Val.Proof)
	ok = ok && vk.Verify(proof.WriteSelComm, waPoint, proof.WriteSel.Value, proof.WriteSel.Proof)
	ok = ok && vk.Verify(proof.IncComm, rhoT2, proof.Inc.Value, proof.Inc.Proof)
	ok = ok && vk.Verify(proof.ReadSelComm, sigma, proof.ReadSelBool.Value, proof.ReadSelBool.Proof)
	ok = ok && vk.Verify(proof.WriteSelComm, sigma, proof.WriteSelBin.Value, proof.WriteSelBin.Proof)
	ok = ok && vk.Verify(proof.ReadFlagComm, z, proof.ReadFlag.Value, proof.ReadFlag.Proof)
	ok = ok && vk.Verify(proof.WriteFlagComm, z, proof.WriteFlag.Value, proof.WriteFlag.Proof)
	ok = ok && vk.Verify(proof.ReadSelComm, rhoRow, proof.ReadSelRow.Value, proof.ReadSelRow.Proof)
	ok = ok && vk.Verify(proof.WriteSelComm, rhoRow, proof.WriteSelRow.Value, proof.WriteSelRow.Proof)
	ok = ok && vk.Verify(proof.ReadFlagComm, sigma2, proof.ReadFlagBool.Value, proof.ReadFlagBool.Proof)
	ok = ok && vk.Verify(proof.WriteFlagComm, sigma2, proof.WriteFlagBool.Value, proof.WriteFlagBool.Proof)
	return ok
}

func appendTwistShape(tr *transcript.Transcript, proof *TwistProof) {
	var dims [16]byte
	binary.BigEndian.PutUint64(dims[0:8], uint64(proof.TimeVars))
	binary.BigEndian.PutUint64(dims[8:16], uint64(proof.MemVars))
	tr.Append("twist.dims", dims[:])
	tr.AppendPoint("twist.readsel", &proof.ReadSelComm)
	tr.AppendPoint("twist.writesel", &proof.WriteSelComm)
	tr.AppendPoint("twist.inc", &proof.IncComm)
	tr.AppendPoint("twist.readval", &proof.ReadValComm)
	tr.AppendPoint("twist.val", &proof.ValComm)
	tr.AppendPoint("twist.readflag", &proof.ReadFlagComm)
	tr.AppendPoint("twist.writeflag", &proof.WriteFlagComm)
}

// rowSumCombiner builds eq · (ra + gamma·wa), the batched row-weight
// polynomial. vals are (eq, ra, wa).
func rowSumCombiner(gamma fr.Element) sumcheck.Combiner {
	return func(vals []fr.Element) fr.Element {
		var res fr.Element
		res.Mul(&gamma, &vals[2])
		res.Add(&res, &vals[1])
		res.Mul(&res, &vals[0])
		return res
	}
}

// booleanityCombiner builds eq · (ra·(1-ra) + gamma·wa·(1-wa)), the batched
// selector-booleanity polynomial. vals are (eq, ra, wa).
func booleanityCombiner(gamma fr.Element) sumcheck.Combiner {
	return func(vals []fr.Element) fr.Element {
		var one, t1, t2, tmp fr.Element
		one.SetOne()
		tmp.Sub(&one, &vals[1])
		t1.Mul(&vals[1], &tmp)
		tmp.Sub(&one, &vals[2])
		t2.Mul(&vals[2], &tmp)
		t2.Mul(&t2, &gamma)
		t1.Add(&t1, &t2)
		t1.Mul(&t1, &vals[0])
		return t1
	}
}
