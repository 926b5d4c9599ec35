package mempool

import (
	"github.com/stretchr/testify/mock"

	"github.com/meshchain/node/mempool/txgraph"
)

// MockUtxoTrie is a mock of txgraph.UtxoTrie for tests that exercise
// ClusterBuilder or MemPool without a real persistent UTXO store.
type MockUtxoTrie struct {
	mock.Mock
}

var _ txgraph.UtxoTrie = (*MockUtxoTrie)(nil)

func (m *MockUtxoTrie) Lookup(root [32]byte, key []byte) ([]byte, bool) {
	args := m.Called(root, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]byte), args.Bool(1)
}

func (m *MockUtxoTrie) NewBuffer(root [32]byte) txgraph.UtxoBuffer {
	args := m.Called(root)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(txgraph.UtxoBuffer)
}

// MockChainStateSource is a mock of txgraph.ChainStateSource.
type MockChainStateSource struct {
	mock.Mock
}

var _ txgraph.ChainStateSource = (*MockChainStateSource)(nil)

func (m *MockChainStateSource) ShardID() uint32 {
	return m.Called().Get(0).(uint32)
}

func (m *MockChainStateSource) ShardCoverSet() map[uint32]struct{} {
	return m.Called().Get(0).(map[uint32]struct{})
}

func (m *MockChainStateSource) Height() uint64 {
	return m.Called().Get(0).(uint64)
}

func (m *MockChainStateSource) NetworkParams() txgraph.Params {
	return m.Called().Get(0).(txgraph.Params)
}

// MockValidator is a mock of txgraph.Validator.
type MockValidator struct {
	mock.Mock
}

var _ txgraph.Validator = (*MockValidator)(nil)

func (m *MockValidator) ValidateBasics(tx txgraph.Tx) error {
	return m.Called(tx).Error(0)
}

func (m *MockValidator) ValidateDeep(tx txgraph.Tx, buffer txgraph.UtxoBuffer,
	header txgraph.BlockHeader, params txgraph.Params,
	shardCover map[uint32]struct{}, exportMap map[uint32][]byte) error {

	return m.Called(tx, buffer, header, params, shardCover, exportMap).Error(0)
}

// MockPeerage is a mock of Peerage, for asserting GossipDriver's
// broadcast behavior.
type MockPeerage struct {
	mock.Mock
}

var _ Peerage = (*MockPeerage)(nil)

func (m *MockPeerage) Broadcast(tx txgraph.Tx) {
	m.Called(tx)
}
