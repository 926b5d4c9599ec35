package txgraph

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// TxId is the content hash identifying a transaction. Two transactions with
// identical bytes have identical ids; the zero value never identifies a
// real transaction.
type TxId = chainhash.Hash

// AddressSpecHash identifies a spendable address specification (the hash of
// a pubkey script, witness program, or shard-local equivalent). It is its
// own type rather than an alias for TxId so the two id spaces can never be
// confused at a call site.
type AddressSpecHash [32]byte

// String returns the hex encoding of the hash.
func (h AddressSpecHash) String() string {
	return hex.EncodeToString(h[:])
}

// OutPoint identifies a single output of a transaction by its source
// transaction id and output index. OutPoints are total-ordered so callers
// that need a deterministic iteration order (tests, audit logs) can sort
// them without inventing a comparator.
type OutPoint struct {
	TxId  TxId
	Index uint32
}

// String renders the OutPoint as "txid:index".
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxId.String(), o.Index)
}

// Less reports whether o sorts before other: by TxId bytes, then by Index.
func (o OutPoint) Less(other OutPoint) bool {
	if o.TxId != other.TxId {
		return outPointHashLess(o.TxId, other.TxId)
	}
	return o.Index < other.Index
}

func outPointHashLess(a, b TxId) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// TxInput is one consumed output, carrying the information needed both to
// look it up in the UTXO trie (src tx id, out index, spec hash, value) and
// to index the spending address.
type TxInput struct {
	Outpoint OutPoint
	SpecHash AddressSpecHash
	Value    uint64
}

// TxOutput is one produced output.
type TxOutput struct {
	Value             uint64
	RecipientSpecHash AddressSpecHash
	TargetShard       uint32
}

// DecodedTx is the structured view of a transaction's inner body: its
// inputs, outputs, and the fee it claims to pay. The fee is supplied by the
// transaction itself (sum of input values minus sum of output values); the
// mempool never computes it independently, since doing so would require
// resolving every input against the UTXO trie before the fee could even be
// checked for sanity.
type DecodedTx struct {
	Inputs  []TxInput
	Outputs []TxOutput
	Fee     uint64
}

// Tx is a candidate transaction as received from a peer or local client:
// its wire-format bytes plus a Decode method that parses the inner body.
// Decode is the only place a malformed transaction can be detected by
// TxInfo construction; the wire format itself is the concern of the node's
// transaction codec, not this package.
type Tx interface {
	TxId() TxId
	Bytes() []byte
	Decode() (*DecodedTx, error)
}

// ErrMalformedTx indicates a transaction's inner body could not be decoded.
var ErrMalformedTx = errors.New("malformed transaction")

// TxInfo is the cached, decoded view of one transaction: everything the
// mempool needs to index, order, and re-validate it without touching the
// raw bytes again. It is immutable after construction.
type TxInfo struct {
	tx                Tx
	decoded           *DecodedTx
	sizeBytes         uint32
	involvedAddresses map[AddressSpecHash]struct{}
}

// NewTxInfo decodes tx and builds its cached view. It fails with
// ErrMalformedTx (wrapped with the underlying decode error) if the inner
// body cannot be decoded.
func NewTxInfo(tx Tx) (*TxInfo, error) {
	decoded, err := tx.Decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTx, err)
	}

	involved := make(map[AddressSpecHash]struct{})
	for _, in := range decoded.Inputs {
		involved[in.SpecHash] = struct{}{}
	}
	for _, out := range decoded.Outputs {
		involved[out.RecipientSpecHash] = struct{}{}
	}

	return &TxInfo{
		tx:                tx,
		decoded:           decoded,
		sizeBytes:         uint32(len(tx.Bytes())),
		involvedAddresses: involved,
	}, nil
}

// TxId returns the transaction's content hash.
func (ti *TxInfo) TxId() TxId { return ti.tx.TxId() }

// Tx returns the underlying raw transaction.
func (ti *TxInfo) Tx() Tx { return ti.tx }

// Inputs returns the inputs this transaction consumes, in declared order.
func (ti *TxInfo) Inputs() []TxInput { return ti.decoded.Inputs }

// Outputs returns this transaction's outputs, in declared order.
func (ti *TxInfo) Outputs() []TxOutput { return ti.decoded.Outputs }

// Fee returns the fee the transaction claims to pay.
func (ti *TxInfo) Fee() uint64 { return ti.decoded.Fee }

// SizeBytes returns the transaction's serialized length.
func (ti *TxInfo) SizeBytes() uint32 { return ti.sizeBytes }

// FeeDensity returns fee/size as a float, the mempool's priority metric. A
// zero-size transaction (impossible for any decoded tx, but guarded here
// anyway) reports zero density rather than dividing by zero.
func (ti *TxInfo) FeeDensity() float64 {
	if ti.sizeBytes == 0 {
		return 0
	}
	return float64(ti.decoded.Fee) / float64(ti.sizeBytes)
}

// InvolvedAddresses returns the set of address-spec-hashes drawn from every
// input's SpecHash and every output's RecipientSpecHash.
func (ti *TxInfo) InvolvedAddresses() map[AddressSpecHash]struct{} {
	return ti.involvedAddresses
}
