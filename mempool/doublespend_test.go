package mempool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meshchain/node/mempool/txgraph"
)

func TestDoubleSpendIndexClaimAndRelease(t *testing.T) {
	t.Parallel()

	idx := NewDoubleSpendIndex()
	op := txgraph.OutPoint{TxId: idOf(0x01), Index: 0}
	txId := idOf(0xA1)

	_, claimed := idx.ClaimedBy(op)
	require.False(t, claimed)

	idx.Claim(txId, []txgraph.TxInput{{Outpoint: op}})
	claimant, claimed := idx.ClaimedBy(op)
	require.True(t, claimed)
	require.Equal(t, txId, claimant)
	require.Equal(t, 1, idx.Len())

	idx.Release([]txgraph.TxInput{{Outpoint: op}})
	_, claimed = idx.ClaimedBy(op)
	require.False(t, claimed)
	require.Equal(t, 0, idx.Len())
}

func TestDoubleSpendIndexDistinctClaims(t *testing.T) {
	t.Parallel()

	idx := NewDoubleSpendIndex()
	opA := txgraph.OutPoint{TxId: idOf(0x01), Index: 0}
	opB := txgraph.OutPoint{TxId: idOf(0x02), Index: 1}
	txId := idOf(0xA1)

	idx.Claim(txId, []txgraph.TxInput{{Outpoint: opA}, {Outpoint: opB}})
	require.Equal(t, 2, idx.Len())

	cA, _ := idx.ClaimedBy(opA)
	cB, _ := idx.ClaimedBy(opB)
	require.Equal(t, txId, cA)
	require.Equal(t, txId, cB)
}
