// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marmara

import (
	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/ledger"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/script"
	"github.com/marmarachain/marmara/transaction"
)

// Settlement - an assembled settlement transaction
type Settlement struct {
	Tx        *transaction.Transaction
	Holder    account.PublicKey
	Settled   int64 // paid to the holder
	Remaining int64 // outstanding after a partial settlement
}

// IsPartial - the pot fell short of the loop amount
func (s *Settlement) IsPartial() bool {
	return 0 != s.Remaining
}

// CreateSettlement - assemble the settlement of a matured loop
//
// the pot is every unspent locked-in-loop output along the loop.  a
// pot covering the loop amount yields a full settlement paying the
// amount to the holder with the surplus returned to the issuer; a
// short pot yields a partial settlement paying everything collected.
// input 0 spends the issue tx's open/close marker, which is what
// makes the loop terminal
//
// mempool is optional: when given, a pending spend of the marker
// counts as already settled.  the validators never take this path
func CreateSettlement(store ledger.Store, mempool ledger.MemPoolView, batonTxid merkle.Digest) (*Settlement, error) {

	loop, err := GetBaton(store, batonTxid)
	if nil != err {
		return nil, fault.ErrBadBatonTxid
	}
	if loop.IsEmpty() {
		return nil, fault.ErrBadBatonTxid
	}

	creation := opret.NewLoopData()
	if err := loopCreationData(store, loop.CreateTxId, &creation); nil != err {
		return nil, fault.ErrLoopCreationData
	}

	if store.CurrentHeight() < creation.Matures {
		return nil, fault.ErrLoopNotMatured
	}

	// the issue tx follows the create tx in the chain; a loop of one
	// endorsement has its issue tx as the baton
	issueTxid := loop.Baton
	if len(loop.Chain) > 1 {
		issueTxid = loop.Chain[1]
	}

	if _, err := store.SpentOf(issueTxid, constants.OpenCloseVout); nil == err {
		return nil, fault.ErrLoopAlreadySettled
	}
	if nil != mempool && mempool.SpendsOutput(issueTxid, constants.OpenCloseVout) {
		return nil, fault.ErrLoopAlreadySettled
	}

	// the holder is named by the latest baton's opret
	batonTx, _, err := store.GetTx(loop.Baton)
	if nil != err {
		return nil, fault.ErrBatonTxUnavailable
	}
	batonData := opret.NewLoopData()
	lastOutOpret(batonTx, &batonData)
	if opret.Issue != batonData.FuncID && opret.Transfer != batonData.FuncID {
		return nil, fault.ErrBatonNotIssueTransfer
	}
	holderKey := batonData.PublicKey

	// walk the loop back collecting the unspent locked pot
	pot := int64(0)
	ins := []transaction.TxIn{
		{
			PrevOut: transaction.OutPoint{TxId: issueTxid, N: constants.OpenCloseVout},
			Kind:    transaction.CryptoCondition,
			Eval:    constants.EvalCode,
			Signer:  holderKey,
		},
	}

	loopTxids := append([]merkle.Digest{}, loop.Chain...)
	loopTxids = append(loopTxids, loop.Baton)
	for _, txid := range loopTxids {
		tx, _, err := store.GetTx(txid)
		if nil != err {
			continue
		}
		for n := range tx.Out {
			if _, ok := IsLockedInLoopVout(tx, n); !ok {
				continue
			}
			value, unspent := store.UtxoValue(txid, uint32(n))
			if !unspent {
				continue
			}
			pot += value
			ins = append(ins, transaction.TxIn{
				PrevOut: transaction.OutPoint{TxId: txid, N: uint32(n)},
				Kind:    transaction.CryptoCondition,
				Eval:    constants.EvalCode,
				Signer:  holderKey,
			})
		}
	}

	if 0 == pot {
		return nil, fault.ErrEmptyLoopPot
	}

	funcID := opret.Settle
	settled := creation.Amount
	remaining := int64(0)
	if pot < creation.Amount {
		funcID = opret.SettlePartial
		settled = pot
		remaining = creation.Amount - pot
	}

	outs := []transaction.TxOut{
		{Value: settled, Script: script.P2PKH(holderKey)},
	}
	if surplus := pot - settled; surplus > 0 {
		// anything over the loop amount goes back to the issuer
		outs = append(outs, transaction.TxOut{
			Value:  surplus,
			Script: script.P2PKH(creation.PublicKey),
		})
	}

	settleOpret, err := opret.EncodeSettle(funcID, constants.OpretVersionDefault, loop.CreateTxId, holderKey, remaining)
	if nil != err {
		return nil, err
	}
	outs = append(outs, transaction.TxOut{Script: script.OpReturn(settleOpret)})

	return &Settlement{
		Tx: &transaction.Transaction{
			In:  ins,
			Out: outs,
		},
		Holder:    holderKey,
		Settled:   settled,
		Remaining: remaining,
	}, nil
}
