// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marmara

import (
	"bytes"

	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/transaction"
)

// ValidateStakeTx - decide whether a candidate stake transaction is
// a well formed marmara stake of the referenced utxo
//
// a stake tx has exactly one output and that output is a condition.
// its condition carried opret (the trailing vout holds proof of
// stake data, never the marmara opret) must parse as activated or
// locked-in-loop, must be byte equal to the opret of the utxo being
// staked, and the recomputed 1-of-2 address must equal destaddr.
// any mismatch is simply "not a stake", never an error
func ValidateStakeTx(destaddr string, vintxOpret []byte, stakeTx *transaction.Transaction, height int32) bool {

	if 1 != len(stakeTx.Out) {
		return false
	}
	s := stakeTx.Out[0].Script
	if !s.IsPayToCryptoCondition() {
		return false
	}

	data := s.ConditionData()
	if nil == data {
		return false
	}

	if activated, err := opret.DecodeActivated(data); nil == err {
		if !bytes.Equal(data, vintxOpret) {
			return false
		}
		return account.CC1of2Address(constants.EvalCode, activated.PublicKey) == destaddr
	}

	ld := opret.NewLoopData()
	if _, err := opret.DecodeLoop(data, constants.OpretVersionAny, &ld); nil == err {
		if !bytes.Equal(data, vintxOpret) {
			return false
		}
		derived := account.TxidPublicKey(ld.CreateTxId)
		return account.CC1of2Address(constants.EvalCode, derived) == destaddr
	}

	return false
}

// StakeMultiplier - reward weighting of a staked output
//
// outputs descending from the triple reward coinbase kind stake at
// three times weight, everything else at one
func StakeMultiplier(tx *transaction.Transaction, n int) int {
	if n < 0 || n >= len(tx.Out) {
		return 1
	}
	data := tx.Out[n].Script.ConditionData()
	if nil == data {
		return 1
	}
	if activated, err := opret.DecodeActivated(data); nil == err {
		if opret.Coinbase3x == activated.FuncID {
			return 3
		}
	}
	return 1
}
