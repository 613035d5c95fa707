package protocols

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkmem/twist-shout/internal/twist-shout/kzg"
	"github.com/zkmem/twist-shout/internal/twist-shout/sumcheck"
)

// Opening bundles one certified evaluation: the claimed value and the proof
// that the committed polynomial takes it at the agreed point.
type Opening struct {
	Value fr.Element
	Proof kzg.OpeningProof
}

// ShoutProof attests that every recorded lookup returned the committed
// table's value at its index.
type ShoutProof struct {
	// TableVars and LookupVars fix the encoding shape: the table spans
	// 2^TableVars entries and the padded lookup sequence 2^LookupVars steps.
	TableVars  int
	LookupVars int

	TableComm    kzg.Digest // table polynomial T, TableVars variables
	SelectorComm kzg.Digest // one-hot selector matrix, LookupVars+TableVars variables
	ValueComm    kzg.Digest // claimed lookup values V, LookupVars variables

	Lookup     sumcheck.Proof // V(r) == sum eq·OH·T
	RowSum     sumcheck.Proof // every selector row sums to 1
	Booleanity sumcheck.Proof // selector takes only 0/1 on the hypercube

	Selector     Opening // selector at the lookup sum-check point
	Table        Opening // T at the address suffix of the lookup point
	Value        Opening // V at the batching point, doubling as the claimed sum
	SelectorRow  Opening // selector at the row-sum point
	SelectorBool Opening // selector at the booleanity point
}

// TwistProof attests that every read of a committed memory trace returned
// the value of the most recent prior write to the same address.
type TwistProof struct {
	// TimeVars and MemVars fix the encoding shape: 2^TimeVars padded time
	// steps over a memory of 2^MemVars cells.
	TimeVars int
	MemVars  int

	ReadSelComm   kzg.Digest // one-hot read-address matrix ra
	WriteSelComm  kzg.Digest // one-hot write-address matrix wa
	IncComm       kzg.Digest // per-step write increments
	ReadValComm   kzg.Digest // claimed read values rv
	ValComm       kzg.Digest // pre-state table Val(t,a)
	ReadFlagComm  kzg.Digest // per-step read flag rf, the row sums of ra
	WriteFlagComm kzg.Digest // per-step write flag wf, the row sums of wa

	ReadCheck  sumcheck.Proof // rv(r) == sum eq·ra·Val
	ValueForm  sumcheck.Proof // Val(rho) == sum lt·wa·inc
	Booleanity sumcheck.Proof // selectors take only 0/1 on the hypercube
	RowSum     sumcheck.Proof // selector row sums equal the committed flags
	FlagBool   sumcheck.Proof // flags take only 0/1 on the hypercube

	ReadValue     Opening // rv at the time batching point
	ReadSel       Opening // ra at the read-check point
	Val           Opening // Val at the read-check point
	WriteSel      Opening // wa at the value-formation point
	Inc           Opening // inc at the value-formation point
	ReadSelBool   Opening // ra at the booleanity point
	WriteSelBin   Opening // wa at the booleanity point
	ReadFlag      Opening // rf at the row-sum batching point
	WriteFlag     Opening // wf at the row-sum batching point
	ReadSelRow    Opening // ra at the row-sum point
	WriteSelRow   Opening // wa at the row-sum point
	ReadFlagBool  Opening // rf at the flag-booleanity point
	WriteFlagBool Opening // wf at the flag-booleanity point
}
