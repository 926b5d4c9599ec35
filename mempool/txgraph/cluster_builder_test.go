package txgraph

import (
	"errors"
	"testing"
	"time"
)

// --- test fixtures -----------------------------------------------------

type fakeTx struct {
	id      TxId
	size    int
	decoded *DecodedTx
	decErr  error
}

func (f *fakeTx) TxId() TxId              { return f.id }
func (f *fakeTx) Bytes() []byte           { return make([]byte, f.size) }
func (f *fakeTx) Decode() (*DecodedTx, error) {
	return f.decoded, f.decErr
}

func idOf(b byte) TxId {
	var h TxId
	h[31] = b
	return h
}

// idOfIndex encodes an arbitrary non-negative index into a TxId's low two
// bytes, giving a cheap source of guaranteed-unique ids for tests that
// build long chains.
func idOfIndex(i int) TxId {
	var h TxId
	h[30] = byte(i >> 8)
	h[31] = byte(i)
	return h
}

func newTxInfoWithID(t *testing.T, id TxId, size int, inputs []TxInput,
	outputs []TxOutput, fee uint64) *TxInfo {

	tx := &fakeTx{
		id:   id,
		size: size,
		decoded: &DecodedTx{
			Inputs:  inputs,
			Outputs: outputs,
			Fee:     fee,
		},
	}
	ti, err := NewTxInfo(tx)
	if err != nil {
		t.Fatalf("NewTxInfo: %v", err)
	}
	return ti
}

func newTxInfo(t *testing.T, id byte, size int, inputs []TxInput,
	outputs []TxOutput, fee uint64) *TxInfo {

	return newTxInfoWithID(t, idOf(id), size, inputs, outputs, fee)
}

type fakeTrie struct {
	confirmed map[string][]byte
}

func newFakeTrie() *fakeTrie {
	return &fakeTrie{confirmed: make(map[string][]byte)}
}

func (f *fakeTrie) confirm(op OutPoint, spec AddressSpecHash, value uint64) {
	key := UtxoKey(op, spec, value)
	f.confirmed[string(key)] = []byte{1}
}

func (f *fakeTrie) Lookup(root [32]byte, key []byte) ([]byte, bool) {
	v, ok := f.confirmed[string(key)]
	return v, ok
}

func (f *fakeTrie) NewBuffer(root [32]byte) UtxoBuffer {
	return &struct{}{}
}

type fakeKnown struct {
	txs map[TxId]*TxInfo
}

func newFakeKnown() *fakeKnown {
	return &fakeKnown{txs: make(map[TxId]*TxInfo)}
}

func (f *fakeKnown) add(ti *TxInfo) { f.txs[ti.TxId()] = ti }

func (f *fakeKnown) Get(id TxId) (*TxInfo, bool) {
	ti, ok := f.txs[id]
	return ti, ok
}

type fakeChainState struct {
	shardID uint32
	cover   map[uint32]struct{}
	height  uint64
	params  Params
}

func (f *fakeChainState) ShardID() uint32                  { return f.shardID }
func (f *fakeChainState) ShardCoverSet() map[uint32]struct{} { return f.cover }
func (f *fakeChainState) Height() uint64                   { return f.height }
func (f *fakeChainState) NetworkParams() Params             { return f.params }

type fakeValidator struct {
	failTx map[TxId]error
	calls  []TxId
}

func newFakeValidator() *fakeValidator {
	return &fakeValidator{failTx: make(map[TxId]error)}
}

func (f *fakeValidator) ValidateBasics(tx Tx) error { return nil }

func (f *fakeValidator) ValidateDeep(tx Tx, buffer UtxoBuffer, header BlockHeader,
	params Params, shardCover map[uint32]struct{},
	exportMap map[uint32][]byte) error {

	f.calls = append(f.calls, tx.TxId())
	if err, ok := f.failTx[tx.TxId()]; ok {
		return err
	}
	return nil
}

func defaultChainState() *fakeChainState {
	return &fakeChainState{
		shardID: 0,
		cover:   map[uint32]struct{}{0: {}},
		height:  100,
		params:  Params{LowFeeDensity: 0.01, ActivationHeightShards: 1_000_000},
	}
}

// --- tests ---------------------------------------------------------------

// TestBuildSingleTxConfirmedInput covers S1: a transaction spending a
// confirmed output builds a one-member cluster with no ancestors pulled in.
func TestBuildSingleTxConfirmedInput(t *testing.T) {
	t.Parallel()

	trie := newFakeTrie()
	srcOP := OutPoint{TxId: idOf(0xAA), Index: 0}
	spec := AddressSpecHash{0x01}
	trie.confirm(srcOP, spec, 100)

	target := newTxInfo(t, 0x01, 100,
		[]TxInput{{Outpoint: srcOP, SpecHash: spec, Value: 100}},
		[]TxOutput{{Value: 95, RecipientSpecHash: AddressSpecHash{0x02}}},
		5,
	)

	known := newFakeKnown()
	validator := newFakeValidator()
	builder := NewClusterBuilder(trie, known, defaultChainState(), validator)
	builder.now = func() time.Time { return time.Unix(0, 0) }

	var root [32]byte
	cluster, err := builder.Build(root, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(cluster.Txs) != 1 {
		t.Fatalf("expected 1 tx in cluster, got %d", len(cluster.Txs))
	}
	if cluster.Txs[0].TxId() != target.TxId() {
		t.Fatalf("expected target as only member")
	}
	if cluster.TotalFee != 5 || cluster.TotalSize != 100 {
		t.Fatalf("unexpected aggregate: fee=%d size=%d", cluster.TotalFee,
			cluster.TotalSize)
	}
}

// TestBuildChildPaysForParent covers S2: a child spending an unconfirmed
// parent pulls the parent into the cluster, ordered before the child.
func TestBuildChildPaysForParent(t *testing.T) {
	t.Parallel()

	trie := newFakeTrie()
	grandparentOP := OutPoint{TxId: idOf(0xFF), Index: 0}
	spec := AddressSpecHash{0x01}
	trie.confirm(grandparentOP, spec, 100)

	parent := newTxInfo(t, 0xA1, 100,
		[]TxInput{{Outpoint: grandparentOP, SpecHash: spec, Value: 100}},
		[]TxOutput{{Value: 99, RecipientSpecHash: AddressSpecHash{0x02}}},
		1,
	)

	child := newTxInfo(t, 0xB2, 100,
		[]TxInput{{
			Outpoint: OutPoint{TxId: parent.TxId(), Index: 0},
			SpecHash: AddressSpecHash{0x02}, Value: 99,
		}},
		[]TxOutput{{Value: 89, RecipientSpecHash: AddressSpecHash{0x03}}},
		10,
	)

	known := newFakeKnown()
	known.add(parent)
	validator := newFakeValidator()
	builder := NewClusterBuilder(trie, known, defaultChainState(), validator)

	var root [32]byte
	cluster, err := builder.Build(root, child)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(cluster.Txs) != 2 {
		t.Fatalf("expected 2 txs, got %d", len(cluster.Txs))
	}
	if cluster.Txs[0].TxId() != parent.TxId() {
		t.Fatalf("expected parent first, got %v", cluster.Txs[0].TxId())
	}
	if cluster.Txs[1].TxId() != child.TxId() {
		t.Fatalf("expected child last, got %v", cluster.Txs[1].TxId())
	}

	wantFee := parent.Fee() + child.Fee()
	wantSize := uint64(parent.SizeBytes()) + uint64(child.SizeBytes())
	if cluster.TotalFee != wantFee || cluster.TotalSize != wantSize {
		t.Fatalf("unexpected aggregate: fee=%d size=%d", cluster.TotalFee,
			cluster.TotalSize)
	}

	combinedDensity := float64(wantFee) / float64(wantSize)
	if combinedDensity <= defaultChainState().params.LowFeeDensity {
		t.Fatalf("expected combined density above LowFeeDensity, got %v",
			combinedDensity)
	}
}

// TestBuildUnknownInput covers S6: an input with no matching confirmed
// output and no matching pool transaction fails with UnknownInput.
func TestBuildUnknownInput(t *testing.T) {
	t.Parallel()

	trie := newFakeTrie()
	target := newTxInfo(t, 0x01, 100,
		[]TxInput{{
			Outpoint: OutPoint{TxId: idOf(0x99), Index: 0},
			SpecHash: AddressSpecHash{0x01}, Value: 100,
		}},
		[]TxOutput{{Value: 95, RecipientSpecHash: AddressSpecHash{0x02}}},
		5,
	)

	known := newFakeKnown()
	validator := newFakeValidator()
	builder := NewClusterBuilder(trie, known, defaultChainState(), validator)

	var root [32]byte
	_, err := builder.Build(root, target)
	if err == nil {
		t.Fatal("expected error")
	}
	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *BuildError, got %T: %v", err, err)
	}
	if buildErr.Kind != UnknownInput {
		t.Fatalf("expected UnknownInput, got %v", buildErr.Kind)
	}
}

// TestBuildCrossShardDependency verifies that an ancestor whose spent
// output targets an uncovered shard fails the build.
func TestBuildCrossShardDependency(t *testing.T) {
	t.Parallel()

	trie := newFakeTrie()
	parent := newTxInfo(t, 0xA1, 100, nil,
		[]TxOutput{{Value: 99, RecipientSpecHash: AddressSpecHash{0x02},
			TargetShard: 7}},
		1,
	)
	child := newTxInfo(t, 0xB2, 100,
		[]TxInput{{
			Outpoint: OutPoint{TxId: parent.TxId(), Index: 0},
			SpecHash: AddressSpecHash{0x02}, Value: 99,
		}},
		[]TxOutput{{Value: 89, RecipientSpecHash: AddressSpecHash{0x03}}},
		10,
	)

	known := newFakeKnown()
	known.add(parent)
	validator := newFakeValidator()

	cs := defaultChainState()
	cs.cover = map[uint32]struct{}{0: {}} // shard 7 not covered

	builder := NewClusterBuilder(trie, known, cs, validator)
	var root [32]byte
	_, err := builder.Build(root, child)

	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *BuildError, got %T: %v", err, err)
	}
	if buildErr.Kind != CrossShardDependency {
		t.Fatalf("expected CrossShardDependency, got %v", buildErr.Kind)
	}
}

// TestBuildInvalidCluster verifies that a deep-validation failure surfaces
// as InvalidCluster and identifies the offending transaction.
func TestBuildInvalidCluster(t *testing.T) {
	t.Parallel()

	trie := newFakeTrie()
	target := newTxInfo(t, 0x01, 100, nil,
		[]TxOutput{{Value: 95, RecipientSpecHash: AddressSpecHash{0x02}}},
		5,
	)

	known := newFakeKnown()
	validator := newFakeValidator()
	validator.failTx[target.TxId()] = errors.New("double spend in buffer")

	builder := NewClusterBuilder(trie, known, defaultChainState(), validator)
	var root [32]byte
	_, err := builder.Build(root, target)

	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *BuildError, got %T: %v", err, err)
	}
	if buildErr.Kind != InvalidCluster {
		t.Fatalf("expected InvalidCluster, got %v", buildErr.Kind)
	}
	if buildErr.TxId != target.TxId() {
		t.Fatalf("expected failing tx id to be target")
	}
}

// TestBuildDeepChain exercises an unbounded-depth chain (spec.md notes
// depth is unbounded by design) to make sure the iterative walk and sort
// don't regress to recursion-depth limits.
func TestBuildDeepChain(t *testing.T) {
	t.Parallel()

	trie := newFakeTrie()
	known := newFakeKnown()
	validator := newFakeValidator()

	const chainLen = 500

	// The confirmed root's id must not collide with any chain member's
	// idOfIndex id, or the walk would see it as an in-pool ancestor.
	rootOP := OutPoint{TxId: idOfIndex(chainLen + 1), Index: 0}
	spec := AddressSpecHash{0x00}
	trie.confirm(rootOP, spec, 1000)

	prevOP := rootOP
	prevSpec := spec
	for i := 0; i < chainLen; i++ {
		spec := AddressSpecHash{byte(i), byte(i >> 8)}
		tx := newTxInfoWithID(t, idOfIndex(i), 50,
			[]TxInput{{Outpoint: prevOP, SpecHash: prevSpec, Value: 1000}},
			[]TxOutput{{Value: 999, RecipientSpecHash: spec}},
			1,
		)
		known.add(tx)
		prevOP = OutPoint{TxId: tx.TxId(), Index: 0}
		prevSpec = spec
	}

	target := newTxInfoWithID(t, idOfIndex(chainLen), 50,
		[]TxInput{{Outpoint: prevOP, SpecHash: prevSpec, Value: 999}},
		[]TxOutput{{Value: 900, RecipientSpecHash: AddressSpecHash{0xFE}}},
		99,
	)

	builder := NewClusterBuilder(trie, known, defaultChainState(), validator)
	var root [32]byte
	cluster, err := builder.Build(root, target)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(cluster.Txs) != chainLen+1 {
		t.Fatalf("expected %d txs, got %d", chainLen+1, len(cluster.Txs))
	}
	if cluster.Txs[len(cluster.Txs)-1].TxId() != target.TxId() {
		t.Fatalf("expected target last in ordering")
	}
}
