package twistshout

import (
	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
	"github.com/zkmem/twist-shout/internal/twist-shout/kzg"
	"github.com/zkmem/twist-shout/internal/twist-shout/protocols"
)

// Setup derives a reference string for instances of up to numVars variables.
// A Twist instance over 2^m time steps and 2^n memory cells, or a Shout
// instance over 2^m lookups and 2^n table entries, needs m+n variables.
//
// The setup secret is sampled internally and discarded on return; a
// production deployment substitutes the output of a setup ceremony.
func Setup(numVars int) (*ProverKey, *VerifierKey, error) {
	return kzg.Setup(numVars)
}

// TwistProver generates memory-consistency proofs.
type TwistProver struct {
	inner *protocols.Twist
}

// NewTwistProver creates a Twist prover. A nil config means DefaultConfig.
func NewTwistProver(pk *ProverKey, cfg *Config) *TwistProver {
	return &TwistProver{inner: protocols.NewTwist(pk, cfg)}
}

// Prove generates a proof that every read in the trace returned the value of
// the most recent prior write to the same address. A trace that violates
// this cannot be proven: Prove fails with ErrProofGeneration instead of
// emitting a proof.
func (p *TwistProver) Prove(trace *MemoryTrace) (*TwistProof, error) {
	if trace == nil {
		return nil, errcode.New(errcode.TraceOutOfBounds, "trace is nil")
	}
	return p.inner.Prove(trace)
}

// VerifyTwist checks a memory-consistency proof. The config's hash function
// must match the prover's.
func VerifyTwist(vk *VerifierKey, proof *TwistProof, cfg *Config) bool {
	if vk == nil || proof == nil {
		return false
	}
	return protocols.VerifyTwist(vk, proof, cfg)
}

// ShoutProver generates lookup-consistency proofs.
type ShoutProver struct {
	inner *protocols.Shout
}

// NewShoutProver creates a Shout prover. A nil config means DefaultConfig.
func NewShoutProver(pk *ProverKey, cfg *Config) *ShoutProver {
	return &ShoutProver{inner: protocols.NewShout(pk, cfg)}
}

// Prove generates a proof that every recorded lookup returned the committed
// table's value at its index.
func (p *ShoutProver) Prove(table *LookupTable) (*ShoutProof, error) {
	if table == nil {
		return nil, errcode.New(errcode.IndexOutOfBounds, "table is nil")
	}
	return p.inner.Prove(table)
}

// VerifyShout checks a lookup-consistency proof. The config's hash function
// must match the prover's.
func VerifyShout(vk *VerifierKey, proof *ShoutProof, cfg *Config) bool {
	if vk == nil || proof == nil {
		return false
	}
	return protocols.VerifyShout(vk, proof, cfg)
}
