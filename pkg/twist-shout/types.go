package twistshout

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/kzg"
	"github.com/zkmem/twist-shout/internal/twist-shout/protocols"
	"github.com/zkmem/twist-shout/internal/twist-shout/utils"
)

// FieldElement is an element of the BN254 scalar field, the field all
// committed polynomials live over.
type FieldElement = fr.Element

// ProverKey is the G1 side of the structured reference string.
type ProverKey = kzg.ProverKey

// VerifierKey is the G2 side of the structured reference string.
type VerifierKey = kzg.VerifierKey

// MemoryTrace records an ordered sequence of reads and writes over a
// power-of-two sized memory.
type MemoryTrace = protocols.MemoryTrace

// MemoryOp is one recorded step of a memory trace.
type MemoryOp = protocols.MemoryOp

// OpKind discriminates memory operations.
type OpKind = protocols.OpKind

const (
	// OpRead reads the current value of an address
	OpRead = protocols.OpRead

	// OpWrite replaces the value of an address
	OpWrite = protocols.OpWrite
)

// LookupTable is a fixed table of field elements plus the lookups performed
// against it.
type LookupTable = protocols.LookupTable

// LookupOp is one recorded lookup.
type LookupOp = protocols.LookupOp

// TwistProof is a memory-consistency proof.
type TwistProof = protocols.TwistProof

// ShoutProof is a lookup-consistency proof.
type ShoutProof = protocols.ShoutProof

// Config represents the configuration for proof generation and verification.
// Prover and verifier must agree on the transcript hash function.
type Config = utils.Config

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return utils.DefaultConfig()
}

// NewMemoryTrace creates an empty trace over a memory of the given
// power-of-two size.
func NewMemoryTrace(memorySize uint64) (*MemoryTrace, error) {
	return protocols.NewMemoryTrace(memorySize)
}

// NewLookupTable creates a lookup table from its entries. The table is
// padded with zeros to the next power of two.
func NewLookupTable(entries []FieldElement) (*LookupTable, error) {
	return protocols.NewLookupTable(entries)
}
