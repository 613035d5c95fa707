// Package poly implements multilinear extensions and the structured
// polynomial families (one-hot, eq, less-than) the Twist and Shout protocols
// are built from.
//
// Variable order: variable x1 of an n-variable MLE is the most significant
// bit of the evaluation index, and Bind fixes variables in that order. The
// round-trip law is that binding all n coordinates of a point, in order,
// equals a direct Evaluate at that point.
package poly

import (
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/errcode"
	"github.com/zkmem/twist-shout/internal/twist-shout/utils"
)

// Repr tags the representation of an MLE.
type Repr uint8

const (
	// ReprDense stores all 2^n evaluations over the Boolean hypercube
	ReprDense Repr = iota

	// ReprSparse stores only the nonzero (index, value) entries
	ReprSparse
)

// Entry is one nonzero evaluation of a sparse MLE.
type Entry struct {
	Index uint64
	Value fr.Element
}

// MLE is the multilinear extension of a function {0,1}^n -> F. The
// representation is a tagged variant behind one evaluation interface;
// operations dispatch on the tag.
type MLE struct {
	repr    Repr
	numVars int
	evals   []fr.Element // ReprDense
	entries []Entry      // ReprSparse, sorted by Index, distinct indices
}

// NewDense creates a dense MLE from its 2^n hypercube evaluations. The slice
// is owned by the MLE afterwards.
func NewDense(evals []fr.Element) (*MLE, error) {
	if !utils.IsPowerOfTwo(len(evals)) {
		return nil, errcode.New(errcode.ShapeMismatch,
			"evaluation vector length %d is not a power of 2", len(evals))
	}
	return &MLE{
		repr:    ReprDense,
		numVars: utils.Log2(len(evals)),
		evals:   evals,
	}, nil
}

// NewSparse creates a sparse MLE over n variables from its nonzero entries.
func NewSparse(numVars int, entries []Entry) (*MLE, error) {
	if numVars < 0 || numVars > 62 {
		return nil, errcode.New(errcode.ShapeMismatch, "invalid variable count %d", numVars)
	}
	size := uint64(1) << numVars
	sorted := append([]Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })
	for i := range sorted {
		if sorted[i].Index >= size {
			return nil, errcode.New(errcode.ShapeMismatch,
				"entry index %d out of bounds for size %d", sorted[i].Index, size)
		}
		if i > 0 && sorted[i].Index == sorted[i-1].Index {
			return nil, errcode.New(errcode.ShapeMismatch,
				"duplicate entry index %d", sorted[i].Index)
		}
	}
	return &MLE{
		repr:    ReprSparse,
		numVars: numVars,
		entries: sorted,
	}, nil
}

// OneHot creates the indicator MLE for an index: 1 at the Boolean point equal
// to the index's binary encoding, 0 elsewhere.
func OneHot(numVars int, index uint64) (*MLE, error) {
	var one fr.Element
	one.SetOne()
	return NewSparse(numVars, []Entry{{Index: index, Value: one}})
}

// NumVars returns the number of free variables.
func (m *MLE) NumVars() int {
	return m.numVars
}

// Repr returns the representation tag.
func (m *MLE) Repr() Repr {
	return m.repr
}

// Entries returns the nonzero entries of a sparse MLE, nil for a dense one.
func (m *MLE) Entries() []Entry {
	return m.entries
}

// Evals returns the dense evaluation table, nil for a sparse MLE.
func (m *MLE) Evals() []fr.Element {
	return m.evals
}

// Clone deep-copies the MLE.
func (m *MLE) Clone() *MLE {
	c := &MLE{repr: m.repr, numVars: m.numVars}
	if m.evals != nil {
		c.evals = append([]fr.Element(nil), m.evals...)
	}
	if m.entries != nil {
		c.entries = append([]Entry(nil), m.entries...)
	}
	return c
}

// Dense returns a dense view of the MLE: the receiver itself when already
// dense, otherwise a fresh densified copy.
func (m *MLE) Dense() *MLE {
	if m.repr == ReprDense {
		return m
	}
	evals := make([]fr.Element, uint64(1)<<m.numVars)
	for _, e := range m.entries {
		evals[e.Index] = e.Value
	}
	return &MLE{repr: ReprDense, numVars: m.numVars, evals: evals}
}

// Evaluate computes the multilinear interpolation at an arbitrary field
// point: O(2^n) dense, O(k·n) sparse with k nonzero entries.
func (m *MLE) Evaluate(point []fr.Element) (fr.Element, error) {
	var res fr.Element
	if len(point) != m.numVars {
		return res, errcode.New(errcode.ShapeMismatch,
			"point has %d coordinates, polynomial has %d variables", len(point), m.numVars)
	}

	switch m.repr {
	case ReprSparse:
		for _, e := range m.entries {
			basis := evalBasis(e.Index, m.numVars, point)
			basis.Mul(&basis, &e.Value)
			res.Add(&res, &basis)
		}
		return res, nil
	default:
		c := m.Clone()
		for i := range point {
			c.fold(point[i])
		}
		return c.evals[0], nil
	}
}

// Bind partially evaluates the first free variable at r, yielding an
// (n-1)-variable MLE in place. This is the operation driving each sum-check
// round. A sparse MLE is densified first.
func (m *MLE) Bind(r fr.Element) error {
	if m.numVars == 0 {
		return errcode.New(errcode.ShapeMismatch, "cannot bind a 0-variable polynomial")
	}
	if m.repr == ReprSparse {
		d := m.Dense()
		m.repr = ReprDense
		m.evals = d.evals
		m.entries = nil
	}
	m.fold(r)
	return nil
}

// fold implements table[i] <- table[i] + r*(table[i+mid] - table[i]) and
// halves the table, following the bookkeeping-table folding idiom.
func (m *MLE) fold(r fr.Element) {
	mid := len(m.evals) / 2
	bottom, top := m.evals[:mid], m.evals[mid:]
	for i := range bottom {
		top[i].Sub(&top[i], &bottom[i])
		top[i].Mul(&top[i], &r)
		bottom[i].Add(&bottom[i], &top[i])
	}
	m.evals = m.evals[:mid]
	m.numVars--
}

// evalBasis computes the Lagrange basis polynomial of a hypercube index at a
// point: for index bits (b1..bn), the product of point[i] where bi=1 and
// (1-point[i]) where bi=0.
func evalBasis(index uint64, numVars int, point []fr.Element) fr.Element {
	var res, one, term fr.Element
	res.SetOne()
	one.SetOne()
	for i := 0; i < numVars; i++ {
		if utils.Bit(index, i, numVars) == 1 {
			term = point[i]
		} else {
			term.Sub(&one, &point[i])
		}
		res.Mul(&res, &term)
	}
	return res
}
