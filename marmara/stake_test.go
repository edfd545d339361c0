// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marmara_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/marmara"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/script"
	"github.com/marmarachain/marmara/transaction"
)

// a stake tx replicates the staked output's script and condition opret
func makeStakeTx(staked transaction.TxOut) *transaction.Transaction {
	return &transaction.Transaction{
		In:  []transaction.TxIn{transaction.CoinbaseIn()},
		Out: []transaction.TxOut{staked},
	}
}

func TestStakeActivated(t *testing.T) {
	h := newHarness(t)
	staker := testKey(t, 1)

	prev := h.activated(staker, 700000)
	vintx, _, err := h.store.GetTx(prev.TxId)
	assert.NoError(t, err, "staked tx unavailable")

	staked := vintx.Out[0]
	vintxOpret := staked.Script.ConditionData()
	stakeTx := makeStakeTx(staked)

	destaddr := account.CC1of2Address(constants.EvalCode, staker)
	assert.True(t, marmara.ValidateStakeTx(destaddr, vintxOpret, stakeTx, baseHeight), "valid stake rejected")

	// wrong destination address
	other := account.CC1of2Address(constants.EvalCode, testKey(t, 9))
	assert.False(t, marmara.ValidateStakeTx(other, vintxOpret, stakeTx, baseHeight), "stake to foreign address accepted")

	// opret not byte equal to the staked utxo's opret
	foreign, _ := opret.EncodeActivated(opret.Activated, constants.OpretVersionDefault, testKey(t, 9), baseHeight, baseHeight+1000)
	assert.False(t, marmara.ValidateStakeTx(destaddr, foreign, stakeTx, baseHeight), "mismatched opret accepted")

	// two outputs is never a stake
	twoOut := makeStakeTx(staked)
	twoOut.Out = append(twoOut.Out, transaction.TxOut{Value: 1, Script: script.P2PKH(staker)})
	assert.False(t, marmara.ValidateStakeTx(destaddr, vintxOpret, twoOut, baseHeight), "two vout stake accepted")
}

func TestStakeLockedInLoop(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	receiver := testKey(t, 2)

	createTxid := h.createLoop(issuer, receiver, loopAmount, baseHeight+100)
	issueTxid := h.issue(createTxid, issuer, receiver, loopAmount)

	vintx, _, err := h.store.GetTx(issueTxid)
	assert.NoError(t, err, "issue tx unavailable")

	staked := vintx.Out[2] // the locked share
	vintxOpret := staked.Script.ConditionData()
	stakeTx := makeStakeTx(staked)

	derived := account.TxidPublicKey(createTxid)
	destaddr := account.CC1of2Address(constants.EvalCode, derived)
	assert.True(t, marmara.ValidateStakeTx(destaddr, vintxOpret, stakeTx, baseHeight), "valid locked stake rejected")

	// the owner address is not the loop address
	wrong := account.CC1of2Address(constants.EvalCode, receiver)
	assert.False(t, marmara.ValidateStakeTx(wrong, vintxOpret, stakeTx, baseHeight), "stake to owner address accepted")
}

func TestStakeMultiplier(t *testing.T) {
	h := newHarness(t)
	staker := testKey(t, 1)

	triple, err := opret.EncodeActivated(opret.Coinbase3x, constants.OpretVersionDefault, staker, baseHeight, baseHeight+1000)
	assert.NoError(t, err, "encode failed")

	tx := &transaction.Transaction{
		In: []transaction.TxIn{transaction.CoinbaseIn()},
		Out: []transaction.TxOut{
			{Value: 50000, Script: script.CC1of2(constants.EvalCode, account.GlobalKey(), staker, triple)},
		},
	}
	assert.Equal(t, 3, marmara.StakeMultiplier(tx, 0), "triple coinbase not weighted")

	prev := h.activated(staker, 50000)
	vintx, _, _ := h.store.GetTx(prev.TxId)
	assert.Equal(t, 1, marmara.StakeMultiplier(vintx, 0), "plain activated weighted")
}
