// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"fmt"

	"github.com/meshchain/node/mempool/txgraph"
)

// ErrorCode identifies the kind of rejection admit returned, mirroring the
// disposition table in the mempool's design notes: Duplicate is not among
// these, since a duplicate is reported as (false, nil), not an error.
type ErrorCode int

const (
	// ErrMalformedTx indicates decoding or basic invariant checks failed.
	ErrMalformedTx ErrorCode = iota

	// ErrPoolFull indicates the pool already holds MaxPoolSize entries.
	ErrPoolFull

	// ErrPoolFullLowFee indicates a low-fee-density transaction arrived
	// once the pool already holds MaxPoolSizeLowFee entries in total
	// (not MaxPoolSizeLowFee low-fee entries specifically).
	ErrPoolFullLowFee

	// ErrDoubleSpend indicates an input's OutPoint is already claimed by
	// a different transaction in the pool.
	ErrDoubleSpend

	// ErrUnknownInput indicates an input is satisfied by neither the
	// UTXO trie nor the known-transaction set.
	ErrUnknownInput

	// ErrCrossShardDependency indicates an ancestor's output lies in a
	// shard this node does not cover.
	ErrCrossShardDependency

	// ErrInvalidCluster indicates deep validation failed when the
	// transaction's cluster was simulated.
	ErrInvalidCluster
)

var errorCodeStrings = map[ErrorCode]string{
	ErrMalformedTx:          "MalformedTx",
	ErrPoolFull:             "PoolFull",
	ErrPoolFullLowFee:       "PoolFullLowFee",
	ErrDoubleSpend:          "DoubleSpend",
	ErrUnknownInput:         "UnknownInput",
	ErrCrossShardDependency: "CrossShardDependency",
	ErrInvalidCluster:       "InvalidCluster",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeStrings[c]; ok {
		return s
	}
	return "Unknown"
}

// TxRuleError identifies a transaction that was rejected from the mempool
// because it violates one of the admission rules. It mirrors the shape of
// blockchain.RuleError: a stable code callers can switch on, plus a
// human-readable description.
type TxRuleError struct {
	Code        ErrorCode
	Description string
}

func (e TxRuleError) Error() string {
	return e.Description
}

// txRuleError creates a TxRuleError with the given code and a formatted
// description.
func txRuleError(code ErrorCode, format string, args ...interface{}) TxRuleError {
	return TxRuleError{
		Code:        code,
		Description: fmt.Sprintf(format, args...),
	}
}

// errorCodeFromBuildErrorKind translates a cluster-build failure kind into
// the matching admission ErrorCode.
func errorCodeFromBuildErrorKind(kind txgraph.BuildErrorKind) ErrorCode {
	switch kind {
	case txgraph.UnknownInput:
		return ErrUnknownInput
	case txgraph.CrossShardDependency:
		return ErrCrossShardDependency
	case txgraph.InvalidCluster:
		return ErrInvalidCluster
	default:
		return ErrInvalidCluster
	}
}
