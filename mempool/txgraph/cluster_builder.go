package txgraph

import (
	"sort"
	"time"

	"github.com/decred/dcrd/lru"
)

// KnownTxSource is the fallback lookup ClusterBuilder uses when an input
// isn't satisfied by the confirmed UTXO trie: the mempool's own
// known-transaction set. It is read-only from the builder's perspective.
type KnownTxSource interface {
	Get(id TxId) (*TxInfo, bool)
}

// defaultNegativeLookupCacheSize bounds the builder's memoization of
// confirmed-UTXO misses across every build at the same root (the cache is
// reset only when Build is called with a different root). Sized the
// same order of magnitude as the default mempool capacity, since a full
// rebuild re-derives every pool transaction's cluster.
const defaultNegativeLookupCacheSize = 20000

// ClusterBuilder produces a minimal ordered set of transactions such that,
// replayed in order against a UTXO snapshot, a target transaction and all
// of its unconfirmed ancestors become valid. See the package doc for the
// algorithm shape.
type ClusterBuilder struct {
	trie       UtxoTrie
	known      KnownTxSource
	chainState ChainStateSource
	validator  Validator

	// now returns the current time for the synthesized next-block
	// header. Overridable in tests; defaults to time.Now.
	now func() time.Time

	// negLookups memoizes confirmed-UTXO misses seen at lastRoot, so a
	// rebuild pass that re-derives many clusters sharing ancestors
	// doesn't repeat the same trie miss for every descendant.
	negLookups lru.Cache
	lastRoot   [32]byte
	haveRoot   bool
}

// NewClusterBuilder constructs a ClusterBuilder. All four collaborators are
// required.
func NewClusterBuilder(trie UtxoTrie, known KnownTxSource,
	chainState ChainStateSource, validator Validator) *ClusterBuilder {

	return &ClusterBuilder{
		trie:       trie,
		known:      known,
		chainState: chainState,
		validator:  validator,
		now:        time.Now,
		negLookups: lru.NewCache(defaultNegativeLookupCacheSize),
	}
}

// frontierItem is one pending input to resolve, tagged with the
// transaction that will depend on its resolution.
type frontierItem struct {
	owner TxId
	input TxInput
}

// Build runs the frontier walk, topological sort, and simulation described
// in the package doc, returning the target's cluster, a *BuildError, or
// ErrCycleDetected if the topological sort exceeds its visit bound.
func (b *ClusterBuilder) Build(root [32]byte, target *TxInfo) (*Cluster, error) {
	if !b.haveRoot || root != b.lastRoot {
		b.negLookups = lru.NewCache(defaultNegativeLookupCacheSize)
		b.lastRoot = root
		b.haveRoot = true
	}

	working := map[TxId]*TxInfo{target.TxId(): target}
	parentsOf := make(map[TxId]map[TxId]struct{})

	queue := NewQueue[frontierItem]()
	for _, in := range target.Inputs() {
		queue.Enqueue(frontierItem{owner: target.TxId(), input: in})
	}

	shardCover := b.chainState.ShardCoverSet()

	for {
		item, ok := queue.Dequeue()
		if !ok {
			break
		}

		srcId := item.input.Outpoint.TxId
		if _, already := working[srcId]; already {
			addEdge(parentsOf, item.owner, srcId)
			continue
		}

		key := UtxoKey(item.input.Outpoint, item.input.SpecHash,
			item.input.Value)

		if cached := b.negLookups.Contains(item.input.Outpoint); !cached {
			if _, found := b.trie.Lookup(root, key); found {
				// Satisfied by confirmed state; no dependency
				// edge and no further work for this input.
				continue
			}
			b.negLookups.Add(item.input.Outpoint)
		}

		srcTx, isKnown := b.known.Get(srcId)
		if !isKnown {
			return nil, &BuildError{Kind: UnknownInput, TxId: srcId}
		}

		outputs := srcTx.Outputs()
		if int(item.input.Outpoint.Index) >= len(outputs) {
			return nil, &BuildError{
				Kind:   UnknownInput,
				TxId:   srcId,
				Reason: "output index out of range",
			}
		}
		spentOutput := outputs[item.input.Outpoint.Index]
		if _, covered := shardCover[spentOutput.TargetShard]; !covered {
			return nil, &BuildError{Kind: CrossShardDependency, TxId: srcId}
		}

		working[srcId] = srcTx
		addEdge(parentsOf, item.owner, srcId)

		for _, in := range srcTx.Inputs() {
			queue.Enqueue(frontierItem{owner: srcId, input: in})
		}
	}

	ordered, err := topologicalOrder(target.TxId(), working, parentsOf)
	if err != nil {
		return nil, err
	}

	if err := b.simulate(root, ordered); err != nil {
		return nil, err
	}

	return newCluster(root, ordered), nil
}

func addEdge(parentsOf map[TxId]map[TxId]struct{}, child, parent TxId) {
	set, ok := parentsOf[child]
	if !ok {
		set = make(map[TxId]struct{})
		parentsOf[child] = set
	}
	set[parent] = struct{}{}
}

// levelItem is a pending (transaction, level) pair during the iterative
// reverse topological sort.
type levelItem struct {
	id    TxId
	level int
}

// topologicalOrder computes a level map by DFS from target at level 0,
// parents at level -1, grandparents at -2, and so on, keeping the minimum
// (most negative) level seen per transaction. It returns working's members
// sorted ascending by level, which places every dependency before its
// dependents and the target last.
func topologicalOrder(target TxId, working map[TxId]*TxInfo,
	parentsOf map[TxId]map[TxId]struct{}) ([]*TxInfo, error) {

	levels := make(map[TxId]int, len(working))
	stack := NewStack[levelItem]()
	stack.Push(levelItem{id: target, level: 0})

	// visits bounds the walk defensively: a true cycle is impossible in a
	// UTXO system (an output must pre-exist to be spent), but a bug in
	// the edge-building above could otherwise spin forever.
	maxVisits := len(working)*len(working) + len(working) + 1
	visits := 0

	for {
		item, ok := stack.Pop()
		if !ok {
			break
		}

		visits++
		if visits > maxVisits {
			log.Warnf("cluster build aborted: %d parent-edge visits exceeded bound of %d for target %s",
				visits, maxVisits, target)
			return nil, ErrCycleDetected
		}

		if existing, seen := levels[item.id]; seen && item.level >= existing {
			continue
		}
		levels[item.id] = item.level

		for parent := range parentsOf[item.id] {
			stack.Push(levelItem{id: parent, level: item.level - 1})
		}
	}

	ordered := make([]*TxInfo, 0, len(working))
	for id := range working {
		ordered = append(ordered, working[id])
	}
	sort.Slice(ordered, func(i, j int) bool {
		li, lj := levels[ordered[i].TxId()], levels[ordered[j].TxId()]
		if li != lj {
			return li < lj
		}
		return outPointIDLess(ordered[i].TxId(), ordered[j].TxId())
	})

	return ordered, nil
}

func outPointIDLess(a, b TxId) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// simulate replays ordered against a fresh UTXO buffer snapshotted at
// root, deep-validating each transaction against a synthesized next-block
// header in turn.
func (b *ClusterBuilder) simulate(root [32]byte, ordered []*TxInfo) error {
	buffer := b.trie.NewBuffer(root)
	params := b.chainState.NetworkParams()

	header := BlockHeader{
		Height:    b.chainState.Height() + 1,
		Timestamp: b.now().Unix(),
		Version:   1,
	}
	if header.Height >= params.ActivationHeightShards {
		header.Version = 2
	}

	shardCover := b.chainState.ShardCoverSet()

	for _, tx := range ordered {
		err := b.validator.ValidateDeep(tx.Tx(), buffer, header, params,
			shardCover, nil)
		if err != nil {
			log.Debugf("dropping cluster: tx %s failed deep validation: %v",
				tx.TxId(), err)
			return &BuildError{
				Kind:   InvalidCluster,
				TxId:   tx.TxId(),
				Reason: err.Error(),
				Err:    err,
			}
		}
	}

	return nil
}
