// Package protocols implements the Twist (read-write memory) and Shout
// (read-only lookup) consistency proofs on top of the transcript, MLE,
// sum-check and commitment packages.
package protocols

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
	"github.com/zkmem/twist-shout/internal/twist-shout/utils"
)

// OpKind discriminates memory operations.
type OpKind uint8

const (
	// OpRead reads the current value of an address
	OpRead OpKind = iota

	// OpWrite replaces the value of an address
	OpWrite
)

// MemoryOp is one step of a memory trace. Timestamps are strictly increasing
// across the trace but may have gaps; the gaps are padded with no-ops at
// encoding time.
type MemoryOp struct {
	Kind      OpKind
	Timestamp uint64
	Address   uint64
	Value     fr.Element
}

// MemoryTrace records an ordered sequence of reads and writes over a memory
// of power-of-two size. Cells start at zero; a read returns the value of the
// most recent prior write to the same address. Once handed to the prover the
// trace must no longer be mutated.
type MemoryTrace struct {
	MemorySize uint64

	ops    []MemoryOp
	mem    []fr.Element
	nextTs uint64
}

// NewMemoryTrace creates an empty trace over a memory of the given size.
func NewMemoryTrace(memorySize uint64) (*MemoryTrace, error) {
	if memorySize == 0 || !utils.IsPowerOfTwo(int(memorySize)) {
		return nil, errcode.New(errcode.TraceOutOfBounds,
			"memory size %d is not a power of 2", memorySize)
	}
	return &MemoryTrace{
		MemorySize: memorySize,
		mem:        make([]fr.Element, memorySize),
	}, nil
}

// Write records a write at the next free timestamp.
func (t *MemoryTrace) Write(address uint64, value fr.Element) error {
	return t.WriteAt(t.nextTs, address, value)
}

// WriteAt records a write at an explicit timestamp, which must not precede
// any already recorded operation.
func (t *MemoryTrace) WriteAt(timestamp, address uint64, value fr.Element) error {
	if err := t.checkOp(timestamp, address); err != nil {
		return err
	}
	t.mem[address] = value
	t.ops = append(t.ops, MemoryOp{Kind: OpWrite, Timestamp: timestamp, Address: address, Value: value})
	t.nextTs = timestamp + 1
	return nil
}

// Read records a read at the next free timestamp and returns the value seen.
func (t *MemoryTrace) Read(address uint64) (fr.Element, error) {
	return t.ReadAt(t.nextTs, address)
}

// ReadAt records a read at an explicit timestamp.
func (t *MemoryTrace) ReadAt(timestamp, address uint64) (fr.Element, error) {
	if err := t.checkOp(timestamp, address); err != nil {
		return fr.Element{}, err
	}
	value := t.mem[address]
	t.ops = append(t.ops, MemoryOp{Kind: OpRead, Timestamp: timestamp, Address: address, Value: value})
	t.nextTs = timestamp + 1
	return value, nil
}

// Ops returns the recorded operations in timestamp order.
func (t *MemoryTrace) Ops() []MemoryOp {
	return t.ops
}

func (t *MemoryTrace) checkOp(timestamp, address uint64) error {
	if address >= t.MemorySize {
		return errcode.New(errcode.TraceOutOfBounds,
			"address %d out of bounds for memory size %d", address, t.MemorySize)
	}
	if len(t.ops) > 0 && timestamp < t.nextTs {
		return errcode.New(errcode.TraceOutOfBounds,
			"timestamp %d is not after the previous operation", timestamp)
	}
	return nil
}

// LookupOp is one recorded lookup: an index and the table value reported for
// it.
type LookupOp struct {
	Index uint64
	Value fr.Element
}

// LookupTable is a fixed table of field elements plus the sequence of
// lookups performed against it. The table is padded with zeros to the next
// power of two; indices range over the padded size.
type LookupTable struct {
	Entries []fr.Element

	lookups []LookupOp
}

// NewLookupTable creates a lookup table from its entries.
func NewLookupTable(entries []fr.Element) (*LookupTable, error) {
	if len(entries) == 0 {
		return nil, errcode.New(errcode.IndexOutOfBounds, "lookup table cannot be empty")
	}
	return &LookupTable{Entries: append([]fr.Element(nil), entries...)}, nil
}

// PaddedSize returns the power-of-two domain size the table is encoded over.
func (t *LookupTable) PaddedSize() uint64 {
	return uint64(utils.NextPowerOfTwo(len(t.Entries)))
}

// Lookup records a lookup and returns the table value at the index. Indices
// beyond the padded size fail with IndexOutOfBounds, never wrapped.
func (t *LookupTable) Lookup(index uint64) (fr.Element, error) {
	if index >= t.PaddedSize() {
		return fr.Element{}, errcode.New(errcode.IndexOutOfBounds,
			"lookup index %d out of bounds for table size %d", index, t.PaddedSize())
	}
	var value fr.Element
	if index < uint64(len(t.Entries)) {
		value = t.Entries[index]
	}
	t.lookups = append(t.lookups, LookupOp{Index: index, Value: value})
	return value, nil
}

// Lookups returns the recorded lookups in order.
func (t *LookupTable) Lookups() []LookupOp {
	return t.lookups
}
