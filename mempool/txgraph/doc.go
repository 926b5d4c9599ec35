// Package txgraph builds the dependency-closed, topologically ordered
// transaction cluster a mempool needs before it can let an unconfirmed
// parent and its unconfirmed children ride the same block.
//
// # Cluster construction
//
// Build starts from one target transaction and walks its inputs backward:
// an input satisfied by the confirmed UTXO set needs no further work, an
// input satisfied by another pool transaction pulls that transaction (and
// transitively its own unsatisfied inputs) into the working set, and an
// input satisfied by neither fails the build. Once the working set is
// closed, its members are ordered so every dependency precedes its
// dependents, then replayed against a scratch UTXO buffer to confirm the
// whole sequence is simultaneously valid.
//
// Both the frontier walk and the topological sort are iterative, built on
// the Queue and Stack in collections.go, to keep a pathologically long
// unconfirmed chain from blowing the goroutine stack.
//
// # Example
//
//	builder := txgraph.NewClusterBuilder(utxoTrie, knownTxs, chainState, validator)
//	cluster, err := builder.Build(root, target)
//	if err != nil {
//	    // *BuildError (UnknownInput, CrossShardDependency, or InvalidCluster),
//	    // or ErrCycleDetected
//	}
package txgraph
