package transcript

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestDeterminism(t *testing.T) {
	run := func() fr.Element {
		tr := New("test", "sha3")
		var a fr.Element
		a.SetUint64(7)
		tr.AppendScalar("a", a)
		tr.Append("msg", []byte("hello"))
		return tr.ChallengeScalar("c")
	}
	c1, c2 := run(), run()
	if !c1.Equal(&c2) {
		t.Fatal("identical transcripts produced different challenges")
	}
}

func TestDivergence(t *testing.T) {
	var seven fr.Element
	seven.SetUint64(7)

	base := New("test", "sha3")
	base.AppendScalar("a", seven)
	c0 := base.ChallengeScalar("c")

	tests := []struct {
		name  string
		build func() *Transcript
	}{
		{"different seed label", func() *Transcript {
			tr := New("other", "sha3")
			tr.AppendScalar("a", seven)
			return tr
		}},
		{"different append label", func() *Transcript {
			tr := New("test", "sha3")
			tr.AppendScalar("b", seven)
			return tr
		}},
		{"different data", func() *Transcript {
			tr := New("test", "sha3")
			var eight fr.Element
			eight.SetUint64(8)
			tr.AppendScalar("a", eight)
			return tr
		}},
		{"different hash function", func() *Transcript {
			tr := New("test", "sha256")
			tr.AppendScalar("a", seven)
			return tr
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.build().ChallengeScalar("c")
			if c.Equal(&c0) {
				t.Fatal("diverging transcripts produced the same challenge")
			}
		})
	}
}

func TestSequentialDrawsDiffer(t *testing.T) {
	tr := New("test", "sha3")
	c1 := tr.ChallengeScalar("c")
	c2 := tr.ChallengeScalar("c")
	if c1.Equal(&c2) {
		t.Fatal("consecutive draws under the same label repeated")
	}
}

func TestChallengeAdvancesState(t *testing.T) {
	tr := New("test", "sha3")
	before := tr.State()
	tr.ChallengeScalar("c")
	if bytes.Equal(before, tr.State()) {
		t.Fatal("drawing a challenge did not advance the state")
	}
}

func TestChallengeScalars(t *testing.T) {
	tr := New("test", "sha3")
	cs := tr.ChallengeScalars("batch", 4)
	if len(cs) != 4 {
		t.Fatalf("expected 4 challenges, got %d", len(cs))
	}
	for i := 0; i < len(cs); i++ {
		for j := i + 1; j < len(cs); j++ {
			if cs[i].Equal(&cs[j]) {
				t.Fatalf("challenges %d and %d collide", i, j)
			}
		}
	}
}
