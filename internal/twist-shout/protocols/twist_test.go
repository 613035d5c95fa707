package protocols

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
	"github.com/zkmem/twist-shout/internal/twist-shout/poly"
	"github.com/zkmem/twist-shout/internal/twist-shout/sumcheck"
	"github.com/zkmem/twist-shout/internal/twist-shout/transcript"
	"github.com/zkmem/twist-shout/internal/twist-shout/utils"
)

func TestTwistWriteThenRead(t *testing.T) {
	pk, vk := testKeys(t, 5)
	trace, err := NewMemoryTrace(4)
	if err != nil {
		t.Fatal(err)
	}
	if err := trace.Write(0, fe(42)); err != nil {
		t.Fatal(err)
	}
	if err := trace.Write(1, fe(100)); err != nil {
		t.Fatal(err)
	}
	got, err := trace.Read(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := fe(42); !got.Equal(&want) {
		t.Fatalf("read %s, want 42", got.String())
	}

	proof, err := NewTwist(pk, nil).Prove(trace)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyTwist(vk, proof, nil) {
		t.Fatal("honest proof rejected")
	}
}

func TestTwistTamperedReadValueRejected(t *testing.T) {
	pk, vk := testKeys(t, 5)
	trace, err := NewMemoryTrace(8)
	if err != nil {
		t.Fatal(err)
	}
	if err := trace.Write(3, fe(42)); err != nil {
		t.Fatal(err)
	}
	if _, err := trace.Read(3); err != nil {
		t.Fatal(err)
	}
	proof, err := NewTwist(pk, nil).Prove(trace)
	if err != nil {
		t.Fatal(err)
	}

	// claim the read saw 41 instead of 42
	var one fr.Element
	one.SetOne()
	tampered := *proof
	tampered.ReadValue.Value.Sub(&tampered.ReadValue.Value, &one)
	if VerifyTwist(vk, &tampered, nil) {
		t.Fatal("accepted a falsified read value")
	}
}

func TestTwistOverwrites(t *testing.T) {
	pk, vk := testKeys(t, 6)
	trace, err := NewMemoryTrace(4)
	if err != nil {
		t.Fatal(err)
	}
	steps := []struct {
		write bool
		addr  uint64
		value uint64
	}{
		{true, 0, 7},
		{true, 1, 9},
		{true, 0, 13}, // overwrite
		{false, 0, 13},
		{false, 1, 9},
		{true, 1, 0}, // write an explicit zero
		{false, 1, 0},
	}
	for _, s := range steps {
		if s.write {
			if err := trace.Write(s.addr, fe(s.value)); err != nil {
				t.Fatal(err)
			}
			continue
		}
		got, err := trace.Read(s.addr)
		if err != nil {
			t.Fatal(err)
		}
		if want := fe(s.value); !got.Equal(&want) {
			t.Fatalf("read addr %d = %s, want %d", s.addr, got.String(), s.value)
		}
	}

	proof, err := NewTwist(pk, nil).Prove(trace)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyTwist(vk, proof, nil) {
		t.Fatal("honest proof rejected")
	}
}

func TestTwistGappedTimestamps(t *testing.T) {
	// explicit timestamps with gaps: pad rows are no-ops and the identities
	// must hold unchanged
	pk, vk := testKeys(t, 6)
	trace, err := NewMemoryTrace(4)
	if err != nil {
		t.Fatal(err)
	}
	// writes at 0, 2, 5 and reads at 1, 3, 6 against the same address: each
	// read must see exactly the preceding write
	writes := []struct {
		ts    uint64
		value uint64
	}{{0, 5}, {2, 6}, {5, 7}}
	readTs := []uint64{1, 3, 6}
	for i, wr := range writes {
		if err := trace.WriteAt(wr.ts, 2, fe(wr.value)); err != nil {
			t.Fatal(err)
		}
		got, err := trace.ReadAt(readTs[i], 2)
		if err != nil {
			t.Fatal(err)
		}
		if want := fe(wr.value); !got.Equal(&want) {
			t.Fatalf("read at %d = %s, want %d", readTs[i], got.String(), wr.value)
		}
	}

	proof, err := NewTwist(pk, nil).Prove(trace)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyTwist(vk, proof, nil) {
		t.Fatal("honest proof over a gapped trace rejected")
	}
}

func TestTwistReadBeforeWriteIsZero(t *testing.T) {
	pk, vk := testKeys(t, 5)
	trace, err := NewMemoryTrace(8)
	if err != nil {
		t.Fatal(err)
	}
	got, err := trace.Read(6)
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsZero() {
		t.Fatal("unwritten cell should read as zero")
	}
	proof, err := NewTwist(pk, nil).Prove(trace)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyTwist(vk, proof, nil) {
		t.Fatal("honest proof rejected")
	}
}

func TestTraceValidation(t *testing.T) {
	if _, err := NewMemoryTrace(0); errcode.CodeOf(err) != errcode.TraceOutOfBounds {
		t.Fatalf("expected TraceOutOfBounds for size 0, got %v", err)
	}
	if _, err := NewMemoryTrace(6); errcode.CodeOf(err) != errcode.TraceOutOfBounds {
		t.Fatalf("expected TraceOutOfBounds for non-power-of-2 size, got %v", err)
	}

	trace, err := NewMemoryTrace(4)
	if err != nil {
		t.Fatal(err)
	}
	if err := trace.Write(4, fe(1)); errcode.CodeOf(err) != errcode.TraceOutOfBounds {
		t.Fatalf("expected TraceOutOfBounds for address 4, got %v", err)
	}
	if err := trace.WriteAt(3, 0, fe(1)); err != nil {
		t.Fatal(err)
	}
	if err := trace.WriteAt(3, 1, fe(2)); errcode.CodeOf(err) != errcode.TraceOutOfBounds {
		t.Fatalf("expected TraceOutOfBounds for a repeated timestamp, got %v", err)
	}
	if err := trace.WriteAt(1, 1, fe(2)); errcode.CodeOf(err) != errcode.TraceOutOfBounds {
		t.Fatalf("expected TraceOutOfBounds for a rewound timestamp, got %v", err)
	}
}

func TestTwistKeyTooSmall(t *testing.T) {
	pk, _ := testKeys(t, 2)
	trace, err := NewMemoryTrace(8)
	if err != nil {
		t.Fatal(err)
	}
	if err := trace.Write(0, fe(1)); err != nil {
		t.Fatal(err)
	}
	_, err = NewTwist(pk, nil).Prove(trace)
	if errcode.CodeOf(err) != errcode.SizeMismatch {
		t.Fatalf("expected SizeMismatch, got %v", err)
	}
}

func TestTwistVerifyRejectsTampering(t *testing.T) {
	pk, vk := testKeys(t, 6)
	trace, err := NewMemoryTrace(4)
	if err != nil {
		t.Fatal(err)
	}
	if err := trace.Write(1, fe(3)); err != nil {
		t.Fatal(err)
	}
	if _, err := trace.Read(1); err != nil {
		t.Fatal(err)
	}
	if err := trace.Write(2, fe(8)); err != nil {
		t.Fatal(err)
	}
	if _, err := trace.Read(2); err != nil {
		t.Fatal(err)
	}
	proof, err := NewTwist(pk, nil).Prove(trace)
	if err != nil {
		t.Fatal(err)
	}
	var one fr.Element
	one.SetOne()

	t.Run("val opening", func(t *testing.T) {
		tampered := *proof
		tampered.Val.Value.Add(&tampered.Val.Value, &one)
		if VerifyTwist(vk, &tampered, nil) {
			t.Fatal("accepted a shifted pre-state opening")
		}
	})
	t.Run("inc opening", func(t *testing.T) {
		tampered := *proof
		tampered.Inc.Value.Add(&tampered.Inc.Value, &one)
		if VerifyTwist(vk, &tampered, nil) {
			t.Fatal("accepted a shifted increment opening")
		}
	})
	t.Run("selector commitment", func(t *testing.T) {
		tampered := *proof
		tampered.ReadSelComm = vk.G1
		if VerifyTwist(vk, &tampered, nil) {
			t.Fatal("accepted a swapped selector commitment")
		}
	})
	t.Run("flag opening", func(t *testing.T) {
		tampered := *proof
		tampered.ReadFlag.Value.Add(&tampered.ReadFlag.Value, &one)
		if VerifyTwist(vk, &tampered, nil) {
			t.Fatal("accepted a shifted read-flag opening")
		}
	})
	t.Run("booleanity opening", func(t *testing.T) {
		tampered := *proof
		tampered.WriteSelBin.Value.Add(&tampered.WriteSelBin.Value, &one)
		if VerifyTwist(vk, &tampered, nil) {
			t.Fatal("accepted a shifted booleanity opening")
		}
	})
	t.Run("sum-check round", func(t *testing.T) {
		tampered := *proof
		tampered.ValueForm.RoundPolys = make([][]fr.Element, len(proof.ValueForm.RoundPolys))
		for i := range proof.ValueForm.RoundPolys {
			tampered.ValueForm.RoundPolys[i] = append([]fr.Element(nil), proof.ValueForm.RoundPolys[i]...)
		}
		tampered.ValueForm.RoundPolys[0][0].Add(&tampered.ValueForm.RoundPolys[0][0], &one)
		if VerifyTwist(vk, &tampered, nil) {
			t.Fatal("accepted a tampered sum-check round")
		}
	})
	t.Run("oversized shape", func(t *testing.T) {
		tampered := *proof
		tampered.TimeVars = vk.MaxVars()
		if VerifyTwist(vk, &tampered, nil) {
			t.Fatal("accepted a shape larger than the key")
		}
	})
}

func TestTwistRejectsDoubleReadRow(t *testing.T) {
	// A read row selecting two addresses at once reports the sum of both
	// cells. Entry booleanity holds and every arithmetic identity balances;
	// the committed read flag must then carry the row weight 2, which the
	// flag-booleanity check rejects.
	pk, vk := testKeys(t, 3)
	cfg := utils.DefaultConfig()
	m, n := 2, 1
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	var one, zero fr.Element
	one.SetOne()

	// writes 7 -> addr 0 at step 0 and 9 -> addr 1 at step 1, then a forged
	// read at step 2 claiming both addresses with value 7+9
	raMLE, err := poly.NewSparse(m+n, []poly.Entry{
		{Index: 4, Value: one}, // (t=2, a=0)
		{Index: 5, Value: one}, // (t=2, a=1)
	})
	must(err)
	waMLE, err := poly.NewSparse(m+n, []poly.Entry{
		{Index: 0, Value: one}, // (t=0, a=0)
		{Index: 3, Value: one}, // (t=1, a=1)
	})
	must(err)
	writeAddrs := []uint64{0, 1} // step t writes writeAddrs[t]
	incMLE, err := poly.NewDense([]fr.Element{fe(7), fe(9), fe(0), fe(0)})
	must(err)
	rvMLE, err := poly.NewDense([]fr.Element{fe(0), fe(0), fe(16), fe(0)})
	must(err)
	valMLE, err := poly.NewDense([]fr.Element{
		fe(0), fe(0), // before step 0
		fe(7), fe(0), // before step 1
		fe(7), fe(9), // before step 2
		fe(7), fe(9), // before step 3
	})
	must(err)
	// the true row sums: consistent with the row-sum check but not boolean
	rfEvals := []fr.Element{fe(0), fe(0), fe(2), fe(0)}
	wfEvals := []fr.Element{fe(1), fe(1), fe(0), fe(0)}
	rfMLE, err := poly.NewDense(rfEvals)
	must(err)
	wfMLE, err := poly.NewDense(wfEvals)
	must(err)

	proof := &TwistProof{TimeVars: m, MemVars: n}
	proof.ReadSelComm, err = pk.Commit(raMLE)
	must(err)
	proof.WriteSelComm, err = pk.Commit(waMLE)
	must(err)
	proof.IncComm, err = pk.Commit(incMLE)
	must(err)
	proof.ReadValComm, err = pk.Commit(rvMLE)
	must(err)
	proof.ValComm, err = pk.Commit(valMLE)
	must(err)
	proof.ReadFlagComm, err = pk.Commit(rfMLE)
	must(err)
	proof.WriteFlagComm, err = pk.Commit(wfMLE)
	must(err)

	tr := transcript.New(twistLabel, cfg.HashFunction)
	appendTwistShape(tr, proof)

	// Read check: both selected cells sum to the claimed 16, so the identity
	// genuinely holds for the forged witness.
	rT := tr.ChallengeScalars("twist.time", m)
	proof.ReadValue.Value, proof.ReadValue.Proof, err = pk.Open(rvMLE, rT)
	must(err)
	tr.AppendScalar("twist.readvalue", proof.ReadValue.Value)
	eqMLE, err := poly.NewDense(expandTime(poly.EqEvals(rT), n))
	must(err)
	var rho []fr.Element
	proof.ReadCheck, rho, _, err = sumcheck.Prove(sumcheck.Instance{
		Tables:  []*poly.MLE{eqMLE, raMLE, valMLE},
		Combine: productOf3,
		Degree:  3,
	}, proof.ReadValue.Value, tr, cfg)
	must(err)
	proof.ReadSel.Value, proof.ReadSel.Proof, err = pk.Open(raMLE, rho)
	must(err)
	proof.Val.Value, proof.Val.Proof, err = pk.Open(valMLE, rho)
	must(err)
	tr.AppendScalar("twist.readsel", proof.ReadSel.Value)
	tr.AppendScalar("twist.val", proof.Val.Value)

	// Value formation: the writes are honest.
	rhoT, rhoA := rho[:m], rho[m:]
	ltTab, err := poly.NewLessThan(m).TableAt(rhoT)
	must(err)
	ltMLE, err := poly.NewDense(ltTab)
	must(err)
	waAtA := make([]fr.Element, 1<<m)
	for ts, addr := range writeAddrs {
		waAtA[ts], err = poly.EvalOneHotAt(addr, n, rhoA)
		must(err)
	}
	waAtAMLE, err := poly.NewDense(waAtA)
	must(err)
	var rhoT2 []fr.Element
	proof.ValueForm, rhoT2, _, err = sumcheck.Prove(sumcheck.Instance{
		Tables:  []*poly.MLE{ltMLE, waAtAMLE, incMLE},
		Combine: productOf3,
		Degree:  3,
	}, proof.Val.Value, tr, cfg)
	must(err)
	waPoint := append(append([]fr.Element(nil), rhoT2...), rhoA...)
	proof.WriteSel.Value, proof.WriteSel.Proof, err = pk.Open(waMLE, waPoint)
	must(err)
	proof.Inc.Value, proof.Inc.Proof, err = pk.Open(incMLE, rhoT2)
	must(err)
	tr.AppendScalar("twist.writesel", proof.WriteSel.Value)
	tr.AppendScalar("twist.inc", proof.Inc.Value)

	// Entry booleanity: every selector entry is 0 or 1, so this passes too.
	s := tr.ChallengeScalars("twist.bool.point", m+n)
	gamma := tr.ChallengeScalar("twist.bool.gamma")
	eqS, err := poly.NewDense(poly.EqEvals(s))
	must(err)
	var sigma []fr.Element
	proof.Booleanity, sigma, _, err = sumcheck.Prove(sumcheck.Instance{
		Tables:  []*poly.MLE{eqS, raMLE.Dense(), waMLE.Dense()},
		Combine: booleanityCombiner(gamma),
		Degree:  3,
	}, zero, tr, cfg)
	must(err)
	proof.ReadSelBool.Value, proof.ReadSelBool.Proof, err = pk.Open(raMLE, sigma)
	must(err)
	proof.WriteSelBin.Value, proof.WriteSelBin.Proof, err = pk.Open(waMLE, sigma)
	must(err)

	// Row sums: the committed flags match the real row weights exactly.
	z := tr.ChallengeScalars("twist.rowsum.time", m)
	gamma2 := tr.ChallengeScalar("twist.rowsum.gamma")
	proof.ReadFlag.Value, proof.ReadFlag.Proof, err = pk.Open(rfMLE, z)
	must(err)
	proof.WriteFlag.Value, proof.WriteFlag.Proof, err = pk.Open(wfMLE, z)
	must(err)
	tr.AppendScalar("twist.readflag", proof.ReadFlag.Value)
	tr.AppendScalar("twist.writeflag", proof.WriteFlag.Value)
	var rowClaim fr.Element
	rowClaim.Mul(&gamma2, &proof.WriteFlag.Value)
	rowClaim.Add(&rowClaim, &proof.ReadFlag.Value)
	eqZ, err := poly.NewDense(expandTime(poly.EqEvals(z), n))
	must(err)
	var rhoRow []fr.Element
	proof.RowSum, rhoRow, _, err = sumcheck.Prove(sumcheck.Instance{
		Tables:  []*poly.MLE{eqZ, raMLE.Dense(), waMLE.Dense()},
		Combine: rowSumCombiner(gamma2),
		Degree:  2,
	}, rowClaim, tr, cfg)
	must(err)
	proof.ReadSelRow.Value, proof.ReadSelRow.Proof, err = pk.Open(raMLE, rhoRow)
	must(err)
	proof.WriteSelRow.Value, proof.WriteSelRow.Proof, err = pk.Open(waMLE, rhoRow)
	must(err)

	// Flag booleanity: rf(2) = 2 makes the sum nonzero; prove it at its real
	// value so the run completes with well-formed rounds.
	s2 := tr.ChallengeScalars("twist.flagbool.point", m)
	gamma3 := tr.ChallengeScalar("twist.flagbool.gamma")
	eqTab := poly.EqEvals(s2)
	comb := booleanityCombiner(gamma3)
	var flagSum fr.Element
	for i := range eqTab {
		v := comb([]fr.Element{eqTab[i], rfEvals[i], wfEvals[i]})
		flagSum.Add(&flagSum, &v)
	}
	eqS2, err := poly.NewDense(eqTab)
	must(err)
	var sigma2 []fr.Element
	proof.FlagBool, sigma2, _, err = sumcheck.Prove(sumcheck.Instance{
		Tables:  []*poly.MLE{eqS2, rfMLE, wfMLE},
		Combine: comb,
		Degree:  3,
	}, flagSum, tr, cfg)
	must(err)
	proof.ReadFlagBool.Value, proof.ReadFlagBool.Proof, err = pk.Open(rfMLE, sigma2)
	must(err)
	proof.WriteFlagBool.Value, proof.WriteFlagBool.Proof, err = pk.Open(wfMLE, sigma2)
	must(err)

	if VerifyTwist(vk, proof, cfg) {
		t.Fatal("accepted a read row selecting two addresses")
	}
}

func TestTwistEmptyTrace(t *testing.T) {
	// no operations: every identity is vacuous but the pipeline still runs
	pk, vk := testKeys(t, 4)
	trace, err := NewMemoryTrace(4)
	if err != nil {
		t.Fatal(err)
	}
	proof, err := NewTwist(pk, nil).Prove(trace)
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyTwist(vk, proof, nil) {
		t.Fatal("proof over an empty trace rejected")
	}
}
