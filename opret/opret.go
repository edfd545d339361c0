// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package opret - typed metadata attached to marmara outputs
//
// every marmara output carries an opret: a byte string whose first
// three bytes are eval code, function id and version, followed by a
// function specific payload.  an opret rides either inside the
// output's crypto-condition data blob or as the transaction's last
// null data vout; which carrier is acceptable depends on the check
// being made and is part of the network rules
package opret

import (
	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/currency"
	"github.com/marmarachain/marmara/merkle"
)

// FuncID - the function id byte of an opret
type FuncID byte

// all recognised function ids
const (
	Coinbase         FuncID = 'C'
	Coinbase3x       FuncID = 'E' // triple reward coinbase variant
	Activated        FuncID = 'A'
	ActivatedInitial FuncID = 'N'
	Pool             FuncID = 'P'
	CreateLoop       FuncID = 'B'
	Request          FuncID = 'R'
	Issue            FuncID = 'I'
	Transfer         FuncID = 'T'
	Locked           FuncID = 'K'
	Settle           FuncID = 'S'
	SettlePartial    FuncID = 'D'
	Release          FuncID = 'O'
	Loop             FuncID = 'L' // legacy lock marker
)

// IsActivated - function ids whose outputs count toward stake weight
func (f FuncID) IsActivated() bool {
	switch f {
	case Coinbase, Coinbase3x, Activated, ActivatedInitial, Pool:
		return true
	default:
		return false
	}
}

// IsLoop - function ids belonging to the credit loop lifecycle
func (f FuncID) IsLoop() bool {
	switch f {
	case CreateLoop, Request, Issue, Transfer, Locked, Settle, SettlePartial, Loop:
		return true
	default:
		return false
	}
}

// String - printable form of a function id
func (f FuncID) String() string {
	return string([]byte{byte(f)})
}

// ActivatedData - the payload of a coinbase or activated opret
type ActivatedData struct {
	FuncID       FuncID            `json:"funcid"`
	Version      byte              `json:"version"`
	PublicKey    account.PublicKey `json:"publicKey"`
	Height       int32             `json:"height"`
	UnlockHeight int32             `json:"unlockHeight"`
}

// IssuerParams - optional credit terms carried by an issue opret
type IssuerParams struct {
	AutoSettlement bool  `json:"autoSettlement"`
	AutoInsurance  bool  `json:"autoInsurance"`
	AvalCount      int32 `json:"avalCount"`
	DisputeExpires int32 `json:"disputeExpires"`
	EscrowOn       bool  `json:"escrowOn"`
	BlockageAmount int64 `json:"blockageAmount"`
}

// DefaultIssuerParams - terms applied when an issuer specifies none
func DefaultIssuerParams() IssuerParams {
	return IssuerParams{
		AutoSettlement: true,
		AutoInsurance:  true,
	}
}

// LoopData - accumulated data from the oprets of one credit loop
//
// a single value is filled progressively: the create opret supplies
// amount, maturity and currency; issue and transfer oprets supply the
// running endorser; a settlement opret supplies the remainder.  the
// Has flags record which oprets have been merged in
type LoopData struct {
	FuncID  FuncID `json:"funcid"`
	Version byte   `json:"version"`

	HasCreate     bool `json:"-"`
	HasIssuance   bool `json:"-"`
	HasSettlement bool `json:"-"`

	// create tx data
	Amount   int64             `json:"amount"`
	Matures  int32             `json:"matures"`
	Currency currency.Currency `json:"currency"`

	// issuer data
	Params IssuerParams `json:"params"`

	// last issuer/endorser/receiver data
	CreateTxId merkle.Digest     `json:"createTxid"`
	PublicKey  account.PublicKey `json:"publicKey"`
	AvalCount  int32             `json:"avalCount"`

	// settlement data
	Remaining int64 `json:"remaining"`
}

// NewLoopData - loop data with issuer defaults applied
func NewLoopData() LoopData {
	return LoopData{
		Params: DefaultIssuerParams(),
	}
}
