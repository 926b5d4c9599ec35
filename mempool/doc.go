// Package mempool implements the transaction mempool of a UTXO-based,
// sharded chain node: a content-addressed transaction store, a
// double-spend index over outputs, an address index, a dependency-cluster
// builder (package txgraph) that lets unconfirmed parent/child chains ride
// the same block, a fee-density priority ordering over clusters, and two
// background drivers that rebuild state on chain-tip advance and gossip
// transactions to peers.
//
// A single pool-wide mutex serializes all mutation and read access to the
// known-transaction set, the indices, and the priority map. Admission
// (MemPool.Admit) and block assembly (MemPool.AssembleBlock) are the two
// operations callers reach for; TipDriver and GossipDriver are background
// workers a node starts once and leaves running.
package mempool
