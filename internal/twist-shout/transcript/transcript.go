// Package transcript implements the Fiat-Shamir transform as an explicit,
// owned state object. Prover and verifier feed it the same message sequence
// and therefore derive the same challenges, which is what turns the
// interactive sum-check into a single-pass proof.
package transcript

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/crypto/sha3"
)

// Transcript is a hash-chained Fiat-Shamir transcript. Every Append and every
// Challenge* call advances the state; no draw can repeat or rewind.
type Transcript struct {
	state    []byte
	hashFunc string
}

// New creates a transcript seeded with a domain-separation label.
func New(label string, hashFunc string) *Transcript {
	if hashFunc == "" {
		hashFunc = "sha3"
	}
	t := &Transcript{
		state:    []byte{0},
		hashFunc: hashFunc,
	}
	t.Append(label, nil)
	return t
}

// Append mixes domain-separated data into the transcript state.
func (t *Transcript) Append(label string, data []byte) {
	msg := make([]byte, 0, len(t.state)+len(label)+len(data))
	msg = append(msg, t.state...)
	msg = append(msg, label...)
	msg = append(msg, data...)
	t.state = t.hash(msg)
}

// AppendScalar mixes one field element into the transcript.
func (t *Transcript) AppendScalar(label string, e fr.Element) {
	t.Append(label, e.Marshal())
}

// AppendScalars mixes a sequence of field elements under one label.
func (t *Transcript) AppendScalars(label string, es []fr.Element) {
	buf := make([]byte, 0, len(es)*fr.Bytes)
	for i := range es {
		buf = append(buf, es[i].Marshal()...)
	}
	t.Append(label, buf)
}

// AppendPoint mixes a G1 point (e.g. a commitment) into the transcript.
func (t *Transcript) AppendPoint(label string, p *bn254.G1Affine) {
	t.Append(label, p.Marshal())
}

// ChallengeScalar derives a pseudorandom field element from all prior
// appends. The derived digest becomes the new state, so subsequent draws
// differ even under identical labels.
func (t *Transcript) ChallengeScalar(label string) fr.Element {
	msg := make([]byte, 0, len(t.state)+len(label))
	msg = append(msg, t.state...)
	msg = append(msg, label...)
	t.state = t.hash(msg)

	var e fr.Element
	e.SetBytes(t.state)
	return e
}

// ChallengeScalars draws n challenges under one label.
func (t *Transcript) ChallengeScalars(label string, n int) []fr.Element {
	out := make([]fr.Element, n)
	for i := range out {
		out[i] = t.ChallengeScalar(label)
	}
	return out
}

// State returns a copy of the current transcript state.
func (t *Transcript) State() []byte {
	return append([]byte(nil), t.state...)
}

func (t *Transcript) hash(data []byte) []byte {
	switch t.hashFunc {
	case "sha256":
		h := sha256.Sum256(data)
		return h[:]
	default:
		h := sha3.Sum256(data)
		return h[:]
	}
}
