// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/meshchain/node/mempool/txgraph"
)

// AddressIndex maps an address spec hash to the set of known transaction
// ids that involve it, either as an input's previous output owner or as
// an output owner. TxId is a member of AddressIndex[A] iff A is a member
// of the involved-address set the pool recorded for that transaction at
// admission time.
type AddressIndex struct {
	byAddress map[txgraph.AddressSpecHash]map[txgraph.TxId]struct{}
}

// NewAddressIndex returns an empty index.
func NewAddressIndex() *AddressIndex {
	return &AddressIndex{
		byAddress: make(map[txgraph.AddressSpecHash]map[txgraph.TxId]struct{}),
	}
}

// Add records id against every address in addrs.
func (idx *AddressIndex) Add(id txgraph.TxId, addrs map[txgraph.AddressSpecHash]struct{}) {
	for addr := range addrs {
		set, ok := idx.byAddress[addr]
		if !ok {
			set = make(map[txgraph.TxId]struct{})
			idx.byAddress[addr] = set
		}
		set[id] = struct{}{}
	}
}

// Remove drops id from every address in addrs, pruning any address whose
// set becomes empty.
func (idx *AddressIndex) Remove(id txgraph.TxId, addrs map[txgraph.AddressSpecHash]struct{}) {
	for addr := range addrs {
		set, ok := idx.byAddress[addr]
		if !ok {
			continue
		}
		delete(set, id)
		if len(set) == 0 {
			delete(idx.byAddress, addr)
		}
	}
}

// TransactionsForAddress returns the known transaction ids involving addr.
// The returned slice is a fresh copy; mutating it does not affect the
// index.
func (idx *AddressIndex) TransactionsForAddress(addr txgraph.AddressSpecHash) []txgraph.TxId {
	set, ok := idx.byAddress[addr]
	if !ok {
		return nil
	}
	ids := make([]txgraph.TxId, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
