package poly

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestEvalEqOnHypercube(t *testing.T) {
	var one fr.Element
	one.SetOne()
	for x := uint64(0); x < 8; x++ {
		for y := uint64(0); y < 8; y++ {
			got, err := EvalEq(boolPoint(x, 3), boolPoint(y, 3))
			if err != nil {
				t.Fatal(err)
			}
			if x == y && !got.Equal(&one) {
				t.Fatalf("eq(%d,%d) != 1", x, y)
			}
			if x != y && !got.IsZero() {
				t.Fatalf("eq(%d,%d) != 0", x, y)
			}
		}
	}
}

func TestEvalEqShapeMismatch(t *testing.T) {
	_, err := EvalEq(make([]fr.Element, 2), make([]fr.Element, 3))
	if err == nil {
		t.Fatal("expected an error for mismatched arities")
	}
}

func TestEqEvalsMatchesEvalEq(t *testing.T) {
	r := make([]fr.Element, 3)
	for i := range r {
		if _, err := r[i].SetRandom(); err != nil {
			t.Fatal(err)
		}
	}
	tab := EqEvals(r)
	if len(tab) != 8 {
		t.Fatalf("table has %d entries, want 8", len(tab))
	}
	for b := uint64(0); b < 8; b++ {
		want, err := EvalEq(r, boolPoint(b, 3))
		if err != nil {
			t.Fatal(err)
		}
		if !tab[b].Equal(&want) {
			t.Fatalf("table entry %d disagrees with direct evaluation", b)
		}
	}
}

func TestEqEvalsPartitionOfUnity(t *testing.T) {
	// sum_b eq(r,b) == 1 for any r
	r := make([]fr.Element, 4)
	for i := range r {
		if _, err := r[i].SetRandom(); err != nil {
			t.Fatal(err)
		}
	}
	var sum, one fr.Element
	one.SetOne()
	for _, v := range EqEvals(r) {
		sum.Add(&sum, &v)
	}
	if !sum.Equal(&one) {
		t.Fatal("eq table does not sum to 1")
	}
}

func TestEvalOneHotAtMatchesMLE(t *testing.T) {
	m, err := OneHot(4, 11)
	if err != nil {
		t.Fatal(err)
	}
	pt := make([]fr.Element, 4)
	for i := range pt {
		if _, err := pt[i].SetRandom(); err != nil {
			t.Fatal(err)
		}
	}
	want, err := m.Evaluate(pt)
	if err != nil {
		t.Fatal(err)
	}
	got, err := EvalOneHotAt(11, 4, pt)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(&want) {
		t.Fatal("closed-form one-hot evaluation disagrees with the MLE")
	}

	if _, err := EvalOneHotAt(16, 4, pt); err == nil {
		t.Fatal("expected an error for an out-of-range index")
	}
}

func TestLessThanOnHypercube(t *testing.T) {
	lt := NewLessThan(3)
	var one fr.Element
	one.SetOne()
	for x := uint64(0); x < 8; x++ {
		for y := uint64(0); y < 8; y++ {
			got, err := lt.Evaluate(boolPoint(x, 3), boolPoint(y, 3))
			if err != nil {
				t.Fatal(err)
			}
			if x < y && !got.Equal(&one) {
				t.Fatalf("lt(%d,%d) != 1", x, y)
			}
			if x >= y && !got.IsZero() {
				t.Fatalf("lt(%d,%d) != 0", x, y)
			}
		}
	}
}

func TestLessThanTableAt(t *testing.T) {
	lt := NewLessThan(3)
	y := make([]fr.Element, 3)
	for i := range y {
		if _, err := y[i].SetRandom(); err != nil {
			t.Fatal(err)
		}
	}
	tab, err := lt.TableAt(y)
	if err != nil {
		t.Fatal(err)
	}
	for x := uint64(0); x < 8; x++ {
		want, err := lt.Evaluate(boolPoint(x, 3), y)
		if err != nil {
			t.Fatal(err)
		}
		if !tab[x].Equal(&want) {
			t.Fatalf("table entry %d disagrees with direct evaluation", x)
		}
	}
}
