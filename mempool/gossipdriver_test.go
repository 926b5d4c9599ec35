package mempool

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/meshchain/node/mempool/txgraph"
)

func TestGossipDriverClampsPeriod(t *testing.T) {
	t.Parallel()

	mp := newTestPool(newFakeTrie(), defaultChainState(), newFakeValidator())

	tooShort := NewGossipDriver(mp, nil, 0)
	require.Equal(t, MinGossipPeriod, tooShort.period)

	tooLong := NewGossipDriver(mp, nil, DefaultGossipPeriod*10)
	require.Equal(t, DefaultGossipPeriod, tooLong.period)
}

func TestGossipDriverNoOpWithoutPeerage(t *testing.T) {
	t.Parallel()

	trie := newFakeTrie()
	srcOP := txgraph.OutPoint{TxId: idOf(0xD2), Index: 0}
	spec := txgraph.AddressSpecHash{0x01}
	trie.confirm(srcOP, spec, 100)

	mp := newTestPool(trie, defaultChainState(), newFakeValidator())
	var root [32]byte
	mp.RebuildPriorityMap(root)

	txA := newTx(0xA, 100,
		[]txgraph.TxInput{{Outpoint: srcOP, SpecHash: spec, Value: 100}},
		[]txgraph.TxOutput{{Value: 95, RecipientSpecHash: txgraph.AddressSpecHash{0x02}}},
		5,
	)
	_, err := mp.Admit(txA, false)
	require.NoError(t, err)

	driver := NewGossipDriver(mp, nil, MinGossipPeriod)
	driver.tick() // must not panic with a nil peerage
}

func TestGossipDriverBroadcastsThenSuppressesSeen(t *testing.T) {
	t.Parallel()

	trie := newFakeTrie()
	srcOP := txgraph.OutPoint{TxId: idOf(0xD3), Index: 0}
	spec := txgraph.AddressSpecHash{0x01}
	trie.confirm(srcOP, spec, 100)

	mp := newTestPool(trie, defaultChainState(), newFakeValidator())
	var root [32]byte
	mp.RebuildPriorityMap(root)

	txA := newTx(0xA, 100,
		[]txgraph.TxInput{{Outpoint: srcOP, SpecHash: spec, Value: 100}},
		[]txgraph.TxOutput{{Value: 95, RecipientSpecHash: txgraph.AddressSpecHash{0x02}}},
		5,
	)
	_, err := mp.Admit(txA, false)
	require.NoError(t, err)

	peerage := &MockPeerage{}
	peerage.On("Broadcast", mock.Anything).Once()

	driver := NewGossipDriver(mp, peerage, MinGossipPeriod)
	driver.tick()
	driver.tick() // second sample of the same lone tx must be suppressed

	peerage.AssertExpectations(t)
}
