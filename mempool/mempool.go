// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"math/rand"
	"sync"

	"github.com/meshchain/node/mempool/txgraph"
)

// MemPool is the transaction mempool of a single shard's node. A single
// mutex serializes all reads and writes of knownTxs, the two indices, and
// the priority map; cluster construction issues UTXO-trie reads while
// that lock is held, trading suspension risk for a simple, linearizable
// admission path.
type MemPool struct {
	cfg *Config

	mtx      sync.RWMutex
	knownTxs map[txgraph.TxId]*txgraph.TxInfo

	doubleSpend *DoubleSpendIndex
	addresses   *AddressIndex
	priority    *PriorityMap
	builder     *txgraph.ClusterBuilder

	listenersMtx sync.RWMutex
	listeners    []Listener
}

// New constructs an empty MemPool. cfg.UtxoTrie, cfg.ChainState, and
// cfg.Validator must be non-nil.
func New(cfg *Config) *MemPool {
	mp := &MemPool{
		cfg:         cfg,
		knownTxs:    make(map[txgraph.TxId]*txgraph.TxInfo),
		doubleSpend: NewDoubleSpendIndex(),
		addresses:   NewAddressIndex(),
		priority:    NewPriorityMap(),
	}
	mp.builder = txgraph.NewClusterBuilder(cfg.UtxoTrie, mp, cfg.ChainState,
		cfg.Validator)
	return mp
}

// Get implements txgraph.KnownTxSource so ClusterBuilder can fall back to
// the pool's own known transactions when the UTXO trie doesn't have an
// input. Callers of Get already hold mtx, directly or via Admit/Rebuild;
// it takes no lock of its own.
func (mp *MemPool) Get(id txgraph.TxId) (*txgraph.TxInfo, bool) {
	ti, ok := mp.knownTxs[id]
	return ti, ok
}

// Subscribe registers a callback invoked, under the pool lock, whenever a
// transaction is admitted. Implementations must not block or call back
// into the pool; defer real work by enqueuing it and returning.
func (mp *MemPool) Subscribe(l Listener) {
	mp.listenersMtx.Lock()
	mp.listeners = append(mp.listeners, l)
	mp.listenersMtx.Unlock()
}

func (mp *MemPool) notify(tx txgraph.Tx, addrs map[txgraph.AddressSpecHash]struct{}) {
	mp.listenersMtx.RLock()
	defer mp.listenersMtx.RUnlock()
	for _, l := range mp.listeners {
		l(tx, addrs)
	}
}

// Admit validates and, on success, inserts tx into the pool. It returns
// (false, nil) for a duplicate transaction or a transaction rejected
// solely for arriving over p2p when the pool doesn't accept that, (false,
// err) for any other rejected transaction, and (true, nil) on acceptance.
// fromP2P must be true when the transaction arrived over the
// peer-to-peer layer rather than from a local client. ValidateBasics runs
// unconditionally, before the p2p-acceptance decision.
func (mp *MemPool) Admit(tx txgraph.Tx, fromP2P bool) (bool, error) {
	if err := mp.cfg.Validator.ValidateBasics(tx); err != nil {
		return false, txRuleError(ErrMalformedTx, "validate_basics: %v", err)
	}

	if fromP2P && !mp.cfg.AcceptsP2PTx {
		return false, nil
	}

	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	txId := tx.TxId()
	if _, exists := mp.knownTxs[txId]; exists {
		return false, nil
	}

	if uint64(len(mp.knownTxs)) >= mp.cfg.maxPoolSize() {
		return false, txRuleError(ErrPoolFull,
			"mempool already holds %d transactions", len(mp.knownTxs))
	}

	info, err := txgraph.NewTxInfo(tx)
	if err != nil {
		return false, txRuleError(ErrMalformedTx, "%v", err)
	}

	lowFee := info.FeeDensity() < mp.cfg.ChainState.NetworkParams().LowFeeDensity
	if lowFee && uint64(len(mp.knownTxs)) >= mp.cfg.maxPoolSizeLowFee() {
		return false, txRuleError(ErrPoolFullLowFee,
			"mempool already holds %d transactions, no room for a low-fee-density arrival",
			len(mp.knownTxs))
	}

	for _, in := range info.Inputs() {
		if claimant, claimed := mp.doubleSpend.ClaimedBy(in.Outpoint); claimed && claimant != txId {
			return false, txRuleError(ErrDoubleSpend,
				"input %s already claimed by %s", in.Outpoint, claimant)
		}
	}

	if root, have := mp.priority.BuiltForRoot(); have {
		cluster, err := mp.builder.Build(root, info)
		if err != nil {
			return false, mp.wrapBuildError(err)
		}
		mp.priority.Insert(cluster)
	}

	mp.knownTxs[txId] = info
	mp.addresses.Add(txId, info.InvolvedAddresses())
	mp.doubleSpend.Claim(txId, info.Inputs())

	mp.notify(tx, info.InvolvedAddresses())

	log.Debugf("admitted tx %s (fee density %.6f, %d bytes)", txId,
		info.FeeDensity(), info.SizeBytes())

	return true, nil
}

func (mp *MemPool) wrapBuildError(err error) error {
	var kind ErrorCode
	if be, ok := err.(*txgraph.BuildError); ok {
		kind = errorCodeFromBuildErrorKind(be.Kind)
	} else {
		kind = ErrInvalidCluster
	}
	return txRuleError(kind, "%v", err)
}

// RebuildPriorityMap retags the pool at newRoot and rebuilds the priority
// map from scratch, dropping every known transaction whose cluster can no
// longer be built (typically because it confirmed, or because one of its
// inputs was spent by a confirmed transaction).
func (mp *MemPool) RebuildPriorityMap(newRoot [32]byte) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	mp.priority.Reset(newRoot)

	var dropped []*txgraph.TxInfo
	for _, info := range mp.knownTxs {
		cluster, err := mp.builder.Build(newRoot, info)
		if err != nil {
			log.Debugf("dropping tx %s on rebuild: %v", info.TxId(), err)
			dropped = append(dropped, info)
			continue
		}
		mp.priority.Insert(cluster)
	}

	for _, info := range dropped {
		delete(mp.knownTxs, info.TxId())
		mp.addresses.Remove(info.TxId(), info.InvolvedAddresses())
		mp.doubleSpend.Release(info.Inputs())
	}

	log.Debugf("rebuilt priority map at root %x: %d live, %d dropped",
		newRoot, mp.priority.Len(), len(dropped))
}

// AssembleBlock drains the priority map in descending fee-density order,
// returning an ordered, deduplicated list of transactions whose combined
// size is at most maxBytes. Once the accumulated low-fee-density bytes
// reach cfg.LowFeeMaxBytes, no further low-fee-density cluster is
// admitted, though the cluster that crosses the threshold is kept (the
// check runs pre-addition, not look-ahead, so the final low-fee-density
// total may exceed LowFeeMaxBytes by up to one cluster's size). If
// utxoRoot does not match the map's current tag, it rebuilds first.
func (mp *MemPool) AssembleBlock(utxoRoot [32]byte, maxBytes uint64) []txgraph.Tx {
	mp.mtx.Lock()
	if root, have := mp.priority.BuiltForRoot(); !have || root != utxoRoot {
		mp.mtx.Unlock()
		mp.RebuildPriorityMap(utxoRoot)
		mp.mtx.Lock()
	}
	snapshot := mp.priority.snapshot()
	lowFeeDensity := mp.cfg.ChainState.NetworkParams().LowFeeDensity
	mp.mtx.Unlock()

	var (
		result     []txgraph.Tx
		emitted    = make(map[txgraph.TxId]struct{})
		cumulative uint64
		lowFeeUsed uint64
		lowFeeMax  = mp.cfg.LowFeeMaxBytes
	)

	for {
		cluster, ok := snapshot.Pop()
		if !ok {
			break
		}

		if cumulative+cluster.TotalSize > maxBytes {
			continue
		}

		density := cluster.FeeDensity()
		if density < lowFeeDensity && lowFeeUsed >= lowFeeMax {
			continue
		}

		for _, tx := range cluster.Txs {
			id := tx.TxId()
			if _, already := emitted[id]; already {
				continue
			}
			emitted[id] = struct{}{}
			result = append(result, tx.Tx())
			cumulative += uint64(tx.SizeBytes())
			if density < lowFeeDensity {
				lowFeeUsed += uint64(tx.SizeBytes())
			}
		}
	}

	return result
}

// GetTransaction returns the known transaction with the given id.
func (mp *MemPool) GetTransaction(id txgraph.TxId) (txgraph.Tx, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	ti, ok := mp.knownTxs[id]
	if !ok {
		return nil, false
	}
	return ti.Tx(), true
}

// PoolSize returns the number of known transactions.
func (mp *MemPool) PoolSize() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return len(mp.knownTxs)
}

// PoolHashes returns a snapshot of every known transaction id.
func (mp *MemPool) PoolHashes() []txgraph.TxId {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	ids := make([]txgraph.TxId, 0, len(mp.knownTxs))
	for id := range mp.knownTxs {
		ids = append(ids, id)
	}
	return ids
}

// TransactionsForAddress returns the known transaction ids that involve
// addr, either as a spender or a recipient.
func (mp *MemPool) TransactionsForAddress(addr txgraph.AddressSpecHash) []txgraph.TxId {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return mp.addresses.TransactionsForAddress(addr)
}

// ClusterFor returns the ordered transaction sequence of the cluster
// containing id, if the priority map currently holds one.
func (mp *MemPool) ClusterFor(id txgraph.TxId) ([]txgraph.Tx, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	cluster, ok := mp.priority.ClusterFor(id)
	if !ok {
		return nil, false
	}
	txs := make([]txgraph.Tx, len(cluster.Txs))
	for i, ti := range cluster.Txs {
		txs[i] = ti.Tx()
	}
	return txs, true
}

// RandomPoolTx returns one uniformly sampled known transaction, used by
// GossipDriver. It returns (nil, false) when the pool is empty.
func (mp *MemPool) RandomPoolTx() (*txgraph.TxInfo, bool) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	if len(mp.knownTxs) == 0 {
		return nil, false
	}
	skip := rand.Intn(len(mp.knownTxs))
	i := 0
	for _, ti := range mp.knownTxs {
		if i == skip {
			return ti, true
		}
		i++
	}
	return nil, false
}
