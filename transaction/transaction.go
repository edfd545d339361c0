// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transaction - the minimal transaction model the consensus
// core operates on
//
// the full ledger keeps its own richer representation; only the
// fields the marmara validators inspect are carried here
package transaction

import (
	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/script"
)

// UnlockKind - how an input unlocks its previous output
type UnlockKind byte

// possible unlock kinds
const (
	Normal          UnlockKind = iota // ordinary signature spend
	CryptoCondition                   // threshold condition fulfilment
)

// coinbaseN - the previous output index marking a coinbase input
const coinbaseN uint32 = 0xffffffff

// OutPoint - reference to a previous output
type OutPoint struct {
	TxId merkle.Digest `json:"txid"`
	N    uint32        `json:"n"`
}

// TxIn - a transaction input
type TxIn struct {
	PrevOut OutPoint          `json:"prevOut"`
	Kind    UnlockKind        `json:"kind"`
	Eval    byte              `json:"eval,omitempty"`   // condition eval code, cc spends only
	Signer  account.PublicKey `json:"signer,omitempty"` // key that signed the fulfilment
}

// IsCC - input spends a crypto-condition output
func (in *TxIn) IsCC() bool {
	return CryptoCondition == in.Kind
}

// IsMarmara - input spends a marmara condition output
func (in *TxIn) IsMarmara() bool {
	return CryptoCondition == in.Kind && constants.EvalCode == in.Eval
}

// TxOut - a transaction output
type TxOut struct {
	Value  int64         `json:"value"`
	Script script.Script `json:"script"`
}

// Transaction - inputs and outputs, nothing more
type Transaction struct {
	In  []TxIn  `json:"in"`
	Out []TxOut `json:"out"`
}

// CoinbaseIn - build the marker input of a coinbase transaction
func CoinbaseIn() TxIn {
	return TxIn{
		PrevOut: OutPoint{N: coinbaseN},
	}
}

// IsCoinBase - coinbase has exactly one input spending nothing
func (tx *Transaction) IsCoinBase() bool {
	if 1 != len(tx.In) {
		return false
	}
	in := tx.In[0]
	return coinbaseN == in.N() && in.PrevOut.TxId.IsEmpty()
}

// N - previous output index of an input
func (in *TxIn) N() uint32 {
	return in.PrevOut.N
}

// HasMarmaraCCVin - at least one input spends a marmara condition
func (tx *Transaction) HasMarmaraCCVin() bool {
	for i := range tx.In {
		if tx.In[i].IsMarmara() {
			return true
		}
	}
	return false
}

// TxId - digest of the packed transaction
func (tx *Transaction) TxId() merkle.Digest {
	return merkle.NewDigest(tx.Pack())
}

// LastOut - the final output or nil if there are no outputs
func (tx *Transaction) LastOut() *TxOut {
	if 0 == len(tx.Out) {
		return nil
	}
	return &tx.Out[len(tx.Out)-1]
}
