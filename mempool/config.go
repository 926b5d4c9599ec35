// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/meshchain/node/mempool/txgraph"
)

const (
	// DefaultMaxPoolSize is MEM_POOL_MAX: the default maximum number of
	// transactions the pool will hold.
	DefaultMaxPoolSize = 80000

	// DefaultMaxPoolSizeLowFee is MEM_POOL_MAX_LOW: the default total pool
	// size at or above which low-fee-density arrivals are rejected.
	DefaultMaxPoolSizeLowFee = 5000
)

// Peerage is the broadcast surface the mempool hands gossiped transactions
// to. It may be left nil, in which case GossipDriver becomes a no-op.
type Peerage interface {
	Broadcast(tx txgraph.Tx)
}

// Listener is a callback registered with MemPool.Subscribe, invoked under
// the pool lock whenever a transaction is admitted. Implementations must
// not block or re-enter the mempool; defer any real work (enqueue, then
// return).
type Listener func(tx txgraph.Tx, involvedAddresses map[txgraph.AddressSpecHash]struct{})

// Config is a descriptor containing the mempool's tunables and the
// external collaborators it validates transactions against. All three
// collaborator fields are required; Peerage may be nil.
type Config struct {
	// MaxPoolSize caps the number of transactions known_txs may hold.
	// Zero selects DefaultMaxPoolSize.
	MaxPoolSize uint64

	// MaxPoolSizeLowFee rejects low-fee-density arrivals once the pool
	// holds this many transactions in total, whatever their fee density.
	// Zero selects DefaultMaxPoolSizeLowFee.
	MaxPoolSizeLowFee uint64

	// LowFeeMaxBytes bounds how many bytes of low-fee-density clusters
	// AssembleBlock will include in a single candidate (LOW_FEE_SIZE_IN_BLOCK).
	LowFeeMaxBytes uint64

	// AcceptsP2PTx controls whether Admit accepts transactions flagged
	// as arriving from the p2p layer.
	AcceptsP2PTx bool

	// UtxoTrie resolves confirmed UTXO lookups during cluster builds.
	UtxoTrie txgraph.UtxoTrie

	// ChainState exposes shard coverage, chain height, and network
	// parameters (including the LOW_FEE density floor).
	ChainState txgraph.ChainStateSource

	// Validator runs the basic and deep validation passes.
	Validator txgraph.Validator

	// Peerage is carried for the caller's convenience; neither MemPool
	// nor GossipDriver reads it. GossipDriver broadcasts through the
	// Peerage passed to NewGossipDriver.
	Peerage Peerage
}

func (c *Config) maxPoolSize() uint64 {
	if c.MaxPoolSize == 0 {
		return DefaultMaxPoolSize
	}
	return c.MaxPoolSize
}

func (c *Config) maxPoolSizeLowFee() uint64 {
	if c.MaxPoolSizeLowFee == 0 {
		return DefaultMaxPoolSizeLowFee
	}
	return c.MaxPoolSizeLowFee
}
