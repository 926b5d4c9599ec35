package txgraph

// Cluster is a dependency-closed, topologically ordered bundle of pool
// transactions that must commit together. Every dependency of a member
// appears earlier in Txs than the member itself; the transaction the
// cluster was built for is always last.
type Cluster struct {
	// Txs is the ordered sequence: dependencies before dependents, target
	// last. Replaying it in order against the UTXO snapshot the cluster
	// was built at must deep-validate with no failures.
	Txs []*TxInfo

	// BuiltForRoot is the UTXO root this cluster was validated against.
	BuiltForRoot [32]byte

	// TotalSize is the sum of every member's SizeBytes.
	TotalSize uint64

	// TotalFee is the sum of every member's Fee.
	TotalFee uint64

	// Nonce breaks ties between clusters of equal fee density in
	// PriorityMap. newCluster leaves it zero; PriorityMap.Insert assigns
	// it when the cluster is inserted.
	Nonce uint64
}

// newCluster builds a Cluster from an ordered transaction sequence,
// computing its aggregate size and fee.
func newCluster(root [32]byte, txs []*TxInfo) *Cluster {
	c := &Cluster{
		Txs:          txs,
		BuiltForRoot: root,
	}
	for _, tx := range txs {
		c.TotalSize += uint64(tx.SizeBytes())
		c.TotalFee += tx.Fee()
	}
	return c
}

// FeeDensity returns TotalFee/TotalSize as a float, the ordering key used
// by PriorityMap. A cluster is never empty in practice (Build always
// includes the target), but an empty cluster reports zero density rather
// than dividing by zero.
func (c *Cluster) FeeDensity() float64 {
	if c.TotalSize == 0 {
		return 0
	}
	return float64(c.TotalFee) / float64(c.TotalSize)
}

// TxIds returns the set of transaction ids in the cluster.
func (c *Cluster) TxIds() map[TxId]struct{} {
	ids := make(map[TxId]struct{}, len(c.Txs))
	for _, tx := range c.Txs {
		ids[tx.TxId()] = struct{}{}
	}
	return ids
}

// Contains reports whether id is a member of this cluster.
func (c *Cluster) Contains(id TxId) bool {
	for _, tx := range c.Txs {
		if tx.TxId() == id {
			return true
		}
	}
	return false
}
