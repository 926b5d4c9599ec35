// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/meshchain/node/mempool/txgraph"
)

// PriorityMap is a sorted multimap from fee-density ratio to Cluster, tied
// to the UTXO root it was computed against (BuiltForRoot). Any caller that
// needs ordering must first check BuiltForRoot against its own notion of
// the current root; a mismatch means the map is stale and a full rebuild
// is required before trusting its contents.
type PriorityMap struct {
	queue        *txgraph.PriorityQueue[*txgraph.Cluster]
	byTx         map[txgraph.TxId]*txgraph.Cluster
	builtForRoot [32]byte
	haveRoot     bool
}

// NewPriorityMap returns an empty map ordered by descending fee density,
// ties broken by Cluster.Nonce.
func NewPriorityMap() *PriorityMap {
	return &PriorityMap{
		queue: txgraph.NewPriorityQueue[*txgraph.Cluster](clusterLess),
		byTx:  make(map[txgraph.TxId]*txgraph.Cluster),
	}
}

// clusterLess implements the max-heap comparator: higher fee density sorts
// first; equal densities fall back to Nonce so the ordering is still a
// strict order and heap operations stay well defined.
func clusterLess(a, b *txgraph.Cluster) bool {
	da, db := a.FeeDensity(), b.FeeDensity()
	if da != db {
		return da > db
	}
	return a.Nonce > b.Nonce
}

// nonceFromUUID derives PriorityMap's per-cluster tie-break value from a
// freshly generated UUID, folding its 16 bytes into a uint64. A monotonic
// counter would serve the same purpose deterministically; this pool uses a
// UUID so tie-break values stay unique across concurrent rebuilds without
// any shared counter state.
func nonceFromUUID() uint64 {
	id := uuid.New()
	lo := binary.BigEndian.Uint64(id[:8])
	hi := binary.BigEndian.Uint64(id[8:])
	return lo ^ hi
}

// BuiltForRoot returns the UTXO root this map was computed against.
func (pm *PriorityMap) BuiltForRoot() ([32]byte, bool) {
	return pm.builtForRoot, pm.haveRoot
}

// Reset clears the map and retags it for root.
func (pm *PriorityMap) Reset(root [32]byte) {
	pm.queue.Clear()
	pm.byTx = make(map[txgraph.TxId]*txgraph.Cluster)
	pm.builtForRoot = root
	pm.haveRoot = true
}

// Insert adds cluster, assigning it a fresh tie-break nonce, and indexes it
// by every member transaction id so ClusterFor can find it directly.
func (pm *PriorityMap) Insert(cluster *txgraph.Cluster) {
	cluster.Nonce = nonceFromUUID()
	pm.queue.Push(cluster)
	for id := range cluster.TxIds() {
		pm.byTx[id] = cluster
	}
}

// ClusterFor returns the cluster containing id, if any.
func (pm *PriorityMap) ClusterFor(id txgraph.TxId) (*txgraph.Cluster, bool) {
	c, ok := pm.byTx[id]
	return c, ok
}

// Len returns the number of clusters currently held.
func (pm *PriorityMap) Len() int {
	return pm.queue.Len()
}

// snapshot returns a drainable copy of the map's queue, for block assembly
// to walk without holding the pool lock for the whole pass.
func (pm *PriorityMap) snapshot() *txgraph.PriorityQueue[*txgraph.Cluster] {
	return pm.queue.Clone()
}
