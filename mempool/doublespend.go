// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/meshchain/node/mempool/txgraph"
)

// DoubleSpendIndex maps an OutPoint to the single known transaction
// claiming it. An OutPoint key is present iff some known transaction
// claims it; no two distinct known transactions may share one. The index
// holds no lock of its own — callers hold the pool lock.
type DoubleSpendIndex struct {
	claims map[txgraph.OutPoint]txgraph.TxId
}

// NewDoubleSpendIndex returns an empty index.
func NewDoubleSpendIndex() *DoubleSpendIndex {
	return &DoubleSpendIndex{
		claims: make(map[txgraph.OutPoint]txgraph.TxId),
	}
}

// ClaimedBy returns the transaction claiming op, if any.
func (idx *DoubleSpendIndex) ClaimedBy(op txgraph.OutPoint) (txgraph.TxId, bool) {
	id, ok := idx.claims[op]
	return id, ok
}

// Claim records the OutPoint of every input in inputs as claimed by id. Callers must have
// already checked for conflicting claims; Claim does not itself guard
// against double-claiming an OutPoint.
func (idx *DoubleSpendIndex) Claim(id txgraph.TxId, inputs []txgraph.TxInput) {
	for _, in := range inputs {
		idx.claims[in.Outpoint] = id
	}
}

// Release removes every claim belonging to inputs. Used when a
// transaction is dropped so its formerly claimed OutPoints become
// available again.
func (idx *DoubleSpendIndex) Release(inputs []txgraph.TxInput) {
	for _, in := range inputs {
		delete(idx.claims, in.Outpoint)
	}
}

// Len returns the number of claimed OutPoints.
func (idx *DoubleSpendIndex) Len() int {
	return len(idx.claims)
}
