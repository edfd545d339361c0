// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marmara

import (
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/ledger"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/transaction"
)

// Loop - a reconstructed credit loop
type Loop struct {
	CreateTxId merkle.Digest   // the loop creation transaction
	Chain      []merkle.Digest // create tx plus every endorsement except the final baton
	Baton      merkle.Digest   // the latest baton transaction
	Endorsers  int             // issuer plus endorsers, length of Chain
	FalseBaton bool            // baton value differs from the fixed amount
}

// IsEmpty - a loop with a create tx but no issuance yet
func (l *Loop) IsEmpty() bool {
	return 0 == l.Endorsers
}

// lastOutOpret - decode the trailing vout opret of a transaction into
// loop data; zero funcid if there is none
func lastOutOpret(tx *transaction.Transaction, ld *opret.LoopData) opret.FuncID {
	last := tx.LastOut()
	if nil == last {
		return 0
	}
	data := last.Script.OpReturnData()
	if nil == data {
		return 0
	}
	funcID, err := opret.DecodeLoop(data, constants.OpretVersionAny, ld)
	if nil != err {
		return 0
	}
	return funcID
}

// CreateTxidOf - resolve the loop creation txid from any transaction
// in the loop
//
// request, issue, transfer and locked oprets embed the creation txid;
// the create tx resolves to itself.  only confirmed transactions
// qualify
func CreateTxidOf(store ledger.Store, txid merkle.Digest) (merkle.Digest, error) {
	tx, blockHash, err := store.GetTx(txid)
	if nil != err {
		return merkle.Digest{}, err
	}
	if blockHash.IsEmpty() || len(tx.Out) < 2 {
		return merkle.Digest{}, fault.ErrTransactionNotFound
	}

	ld := opret.NewLoopData()
	switch lastOutOpret(tx, &ld) {
	case opret.Issue, opret.Transfer, opret.Request, opret.Locked:
		return ld.CreateTxId, nil
	case opret.CreateLoop:
		return txid, nil
	default:
		return merkle.Digest{}, fault.ErrNotLoopOpret
	}
}

// GetBaton - walk a credit loop forward to its latest unspent baton
//
// starting anywhere in the loop the walk resolves the creation txid,
// then repeatedly follows the spender of the baton vout.  the chain
// collects the create tx and every endorsement whose baton was spent;
// the first spender whose baton vout is still unspent terminates the
// walk.  a baton of the wrong value is accepted as terminal but
// flagged false
func GetBaton(store ledger.Store, queryTxid merkle.Digest) (*Loop, error) {
	createTxid, err := CreateTxidOf(store, queryTxid)
	if nil != err {
		return nil, err
	}

	loop := &Loop{CreateTxId: createTxid}

	txid := createTxid
	for {
		spend, err := store.SpentOf(txid, constants.BatonVout)
		if nil != err {
			break // current baton is unspent
		}

		loop.Chain = append(loop.Chain, txid)
		loop.Endorsers += 1

		value, unspent := store.UtxoValue(spend.TxId, constants.BatonVout)
		if unspent && constants.BatonAmount == value {
			loop.Baton = spend.TxId
			return loop, nil
		}
		if unspent && value > 0 {
			loop.Baton = spend.TxId
			loop.FalseBaton = true
			return loop, nil
		}
		txid = spend.TxId
	}

	if 0 == loop.Endorsers {
		return loop, nil // empty loop: nothing issued yet
	}
	// the last spender's own baton is neither unspent nor resolvable
	return nil, fault.ErrBadBatonTxid
}

// EndorserCount - endorsers in the loop as of a predecessor tx
//
// computed from the predecessor's outputs alone: the spent index may
// not yet reflect the transaction currently being validated, so a
// forward walk is not usable here
func EndorserCount(store ledger.Store, prevTxid merkle.Digest) (merkle.Digest, int, error) {
	tx, blockHash, err := store.GetTx(prevTxid)
	if nil != err {
		return merkle.Digest{}, 0, err
	}
	if blockHash.IsEmpty() || len(tx.Out) < 2 {
		return merkle.Digest{}, 0, fault.ErrTransactionNotFound
	}

	ld := opret.NewLoopData()
	switch lastOutOpret(tx, &ld) {

	case opret.CreateLoop:
		return prevTxid, 0, nil

	case opret.Issue:
		return ld.CreateTxId, 1, nil

	case opret.Transfer:
		n := 0
		for i := 0; i < len(tx.Out)-1; i += 1 {
			if !tx.Out[i].Script.IsPayToCryptoCondition() {
				continue
			}
			if _, ok := IsLockedInLoopVout(tx, i); ok {
				n += 1
			}
		}
		if 0 == n {
			return merkle.Digest{}, 0, fault.ErrEndorsersNumber
		}
		return ld.CreateTxId, n, nil

	default:
		return merkle.Digest{}, 0, fault.ErrNotLoopOpret
	}
}

// loopCreationData - merge the creation parameters of a loop into ld
//
// the trailing opret must really be a create opret before decoding,
// so data of another kind can never overwrite creation values
func loopCreationData(store ledger.Store, createTxid merkle.Digest, ld *opret.LoopData) error {
	tx, blockHash, err := store.GetTx(createTxid)
	if nil != err {
		return err
	}
	if blockHash.IsEmpty() || len(tx.Out) < 2 {
		return fault.ErrTransactionNotFound
	}

	last := tx.LastOut()
	data := last.Script.OpReturnData()
	if len(data) < 2 || constants.EvalCode != data[0] || byte(opret.CreateLoop) != data[1] {
		return fault.ErrNotLoopOpret
	}

	funcID, err := opret.DecodeLoop(data, constants.OpretVersionAny, ld)
	if nil != err {
		return err
	}
	if opret.CreateLoop != funcID {
		return fault.ErrNotLoopOpret
	}
	return nil
}

// SettlementTxid - the transaction that settled a loop, resolved by
// the spend of the issue tx's open/close marker
func SettlementTxid(store ledger.Store, issueTxid merkle.Digest) (merkle.Digest, error) {
	spend, err := store.SpentOf(issueTxid, constants.OpenCloseVout)
	if nil != err {
		return merkle.Digest{}, err
	}
	return spend.TxId, nil
}
