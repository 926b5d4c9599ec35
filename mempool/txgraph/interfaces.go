package txgraph

// Params carries the network parameters a cluster build needs to simulate
// a transaction sequence against a synthesized next-block header: the
// fee-density floor below which a transaction is "low fee", and the height
// at which shard-aware transaction versioning activates.
type Params struct {
	LowFeeDensity          float64
	ActivationHeightShards uint64
}

// BlockHeader is the synthesized next-block header deep validation runs
// against during cluster simulation. Height is always one past the
// current chain height; Version is 2 once shard activation height is
// reached, 1 before it.
type BlockHeader struct {
	Height    uint64
	Timestamp int64
	Version   uint32
}

// UtxoTrie is the persistent, content-addressed UTXO set. Lookup must be
// safe to call concurrently with independent readers at arbitrary roots;
// the mempool never mutates the trie itself, only the scratch buffers it
// hands out via NewBuffer.
type UtxoTrie interface {
	// Lookup returns the output bytes stored under key at root, or
	// ok=false if no such output exists (spent or never produced).
	Lookup(root [32]byte, key []byte) (value []byte, ok bool)

	// NewBuffer returns a mutable scratch buffer snapshotted at root. Deep
	// validation consumes inputs from and produces outputs into this
	// buffer as it replays a cluster's transactions in order.
	NewBuffer(root [32]byte) UtxoBuffer
}

// UtxoBuffer is an opaque, mutable UTXO simulation buffer. Its contents and
// methods are owned entirely by the Validator implementation that mutates
// it; ClusterBuilder only threads it through unexamined.
type UtxoBuffer interface{}

// UtxoKey derives the UTXO-trie lookup key for a given input. The trie's
// exact key encoding is that collaborator's contract; this is one
// deterministic encoding that satisfies it for a locally-paired
// UtxoTrie/Validator implementation. A node wiring in a foreign trie
// implementation must match its encoding instead.
func UtxoKey(op OutPoint, specHash AddressSpecHash, value uint64) []byte {
	key := make([]byte, 0, 32+4+32+8)
	key = append(key, op.TxId[:]...)
	key = appendUint32(key, op.Index)
	key = append(key, specHash[:]...)
	key = appendUint64(key, value)
	return key
}

func appendUint32(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func appendUint64(b []byte, v uint64) []byte {
	return append(b,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// ChainStateSource exposes the chain-tip context a cluster build needs:
// which shard this node is, which shards it covers, how tall the chain is,
// and the active network parameters. ShardCoverSet is immutable after
// startup.
type ChainStateSource interface {
	ShardID() uint32
	ShardCoverSet() map[uint32]struct{}
	Height() uint64
	NetworkParams() Params
}

// Validator performs the two tiers of transaction validation the mempool
// delegates entirely to an external collaborator: a pure, stateless sanity
// pass, and a deep pass that actually consumes/produces UTXO-buffer state.
type Validator interface {
	// ValidateBasics performs stateless checks: well-formedness
	// invariants that don't require any chain or UTXO context. The
	// mempool calls it before NewTxInfo decodes the transaction.
	ValidateBasics(tx Tx) error

	// ValidateDeep validates tx against buffer, header, params, and
	// shardCover, consuming tx's inputs from and producing tx's outputs
	// into buffer on success. exportMap carries any per-shard export
	// records a cross-shard transaction contributes; the mempool never
	// inspects it, only threads it through.
	ValidateDeep(tx Tx, buffer UtxoBuffer, header BlockHeader,
		params Params, shardCover map[uint32]struct{},
		exportMap map[uint32][]byte) error
}
