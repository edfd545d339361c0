// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger - the read-only chain view the consensus core
// consumes
//
// the surrounding daemon owns the real UTXO set, spent index and
// block machinery; the validators only ever reach them through this
// interface.  validators must never see the mempool: an unconfirmed
// transaction is reported with an empty block digest and treated as
// absent by every consensus path
package ledger

import (
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/transaction"
)

// Spend - where and when an output was consumed
type Spend struct {
	TxId   merkle.Digest // the spending transaction
	Vin    int           // input index within the spender
	Height int32         // block height of the spender
}

// Store - synchronous reads from the chain state
type Store interface {

	// GetTx - load a transaction; the block digest is empty when the
	// transaction is known but unconfirmed
	GetTx(txid merkle.Digest) (*transaction.Transaction, merkle.Digest, error)

	// SpentOf - resolve the spender of an output
	SpentOf(txid merkle.Digest, n uint32) (Spend, error)

	// UtxoValue - value of an output, false if spent or absent
	UtxoValue(txid merkle.Digest, n uint32) (int64, bool)

	// CurrentHeight - height of the chain tip
	CurrentHeight() int32

	// TipMedianTime - median time past of the chain tip
	TipMedianTime() uint32
}

// MemPoolView - restricted mempool access for construction paths
//
// the settlement driver may look here; validators never do
type MemPoolView interface {

	// Contains - transaction is pending
	Contains(txid merkle.Digest) bool

	// SpendsOutput - some pending transaction consumes this output
	SpendsOutput(txid merkle.Digest, n uint32) bool
}
