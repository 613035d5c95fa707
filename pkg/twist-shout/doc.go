// Package twistshout provides zero-knowledge memory-consistency proofs: the
// Twist argument for read-write memories and the Shout argument for read-only
// lookup tables.
//
// Both arguments follow the same pipeline: the witness is encoded as a small
// set of multilinear polynomials, the polynomials are committed with a
// KZG-style multilinear commitment over BN254, and sum-check reductions turn
// the consistency identities into a handful of commitment openings. Proofs
// are non-interactive via a Fiat-Shamir transcript.
//
// # Features
//
// - Twist: proves every read of a memory trace returned the value of the most
// recent prior write
// - Shout: proves every lookup against a fixed table returned the committed
// table value
// - Multilinear KZG commitments with constant-size commitments and
// logarithmic opening proofs
// - One trusted setup serves every instance up to its size class
//
// # Quick Start
//
// Proving a memory trace:
//
//	pk, vk, err := twistshout.Setup(16)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	trace, err := twistshout.NewMemoryTrace(256)
//	if err != nil {
//		log.Fatal(err)
//	}
//	var v twistshout.FieldElement
//	v.SetUint64(42)
//	trace.Write(3, v)
//	trace.Read(3)
//
//	prover := twistshout.NewTwistProver(pk, twistshout.DefaultConfig())
//	proof, err := prover.Prove(trace)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if twistshout.VerifyTwist(vk, proof, twistshout.DefaultConfig()) {
//		fmt.Println("trace is consistent")
//	}
//
// Proving lookups against a table:
//
//	table, err := twistshout.NewLookupTable(entries)
//	if err != nil {
//		log.Fatal(err)
//	}
//	table.Lookup(1)
//
//	prover := twistshout.NewShoutProver(pk, twistshout.DefaultConfig())
//	proof, err := prover.Prove(table)
//	if err != nil {
//		log.Fatal(err)
//	}
//	ok := twistshout.VerifyShout(vk, proof, twistshout.DefaultConfig())
//
// # Architecture
//
// - pkg/twist-shout/: Public API (this package)
// - internal/twist-shout/: Private implementation (not importable)
//
// The internal packages split along the pipeline: transcript (Fiat-Shamir),
// poly (multilinear extensions and structured polynomials), kzg (commitment
// scheme and trusted setup), sumcheck (the generic reduction), and protocols
// (the Twist and Shout instantiations).
//
// # Security
//
// Setup samples its secret vector internally and discards it; a production
// deployment substitutes the output of a multi-party ceremony. Verification
// failures are reported as a boolean, never as an error: errors always mean
// the caller violated a contract (bad shapes, out-of-range indices,
// oversized instances).
package twistshout
