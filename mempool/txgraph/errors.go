package txgraph

import (
	"errors"
	"fmt"
)

// ErrCycleDetected is returned when the topological sort exceeds its
// defensive visit bound, which a cycle in the dependency edges would
// cause (revisits at an equal-or-better level are skipped, but a cycle
// keeps lowering levels). A true cycle can't
// occur in a UTXO system (an output must exist before it can be spent), so
// tripping this guard indicates a bug in the walk, not malicious input.
var ErrCycleDetected = errors.New("cycle detected while ordering cluster")

// BuildErrorKind classifies why ClusterBuilder.Build failed.
type BuildErrorKind int

const (
	// UnknownInput means an input's source transaction is neither in the
	// confirmed UTXO trie nor in the known-transaction set the builder
	// was given.
	UnknownInput BuildErrorKind = iota

	// CrossShardDependency means an ancestor's output lies in a shard
	// this node does not cover.
	CrossShardDependency

	// InvalidCluster means the ordered sequence failed deep validation
	// when simulated against the UTXO buffer.
	InvalidCluster
)

func (k BuildErrorKind) String() string {
	switch k {
	case UnknownInput:
		return "UnknownInput"
	case CrossShardDependency:
		return "CrossShardDependency"
	case InvalidCluster:
		return "InvalidCluster"
	default:
		return "Unknown"
	}
}

// BuildError reports why a cluster failed to build. TxId identifies the
// transaction the failure is attributed to (the unknown input's source
// tx, or the cross-shard ancestor, or the tx that failed deep validation).
type BuildError struct {
	Kind   BuildErrorKind
	TxId   TxId
	Reason string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (tx %s)", e.Kind, e.Reason, e.TxId)
	}
	return fmt.Sprintf("%s: tx %s", e.Kind, e.TxId)
}

func (e *BuildError) Unwrap() error { return e.Err }
