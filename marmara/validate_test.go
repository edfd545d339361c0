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
	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/marmara"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/script"
	"github.com/marmarachain/marmara/transaction"
)

const loopAmount = int64(1000000)

// create → issue → settle in full
func TestIssueAndFullSettlement(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	receiver := testKey(t, 2)

	createTxid := h.createLoop(issuer, receiver, loopAmount, baseHeight+10)

	issueTx := h.buildIssue(createTxid, issuer, receiver, loopAmount)
	assert.NoError(t, marmara.Validate(h.store, issueTx), "valid issue rejected")
	issueTxid := h.store.Confirm(issueTx)

	// loop must not settle before maturity
	h.setTip(baseHeight + 11)

	settlement, err := marmara.CreateSettlement(h.store, h.store, issueTxid)
	assert.NoError(t, err, "settlement driver failed")
	assert.False(t, settlement.IsPartial(), "full pot settled partially")
	assert.Equal(t, loopAmount, settlement.Settled, "wrong settled amount")
	assert.True(t, receiver.Equal(settlement.Holder), "wrong holder")

	assert.NoError(t, marmara.Validate(h.store, settlement.Tx), "driver settlement rejected")

	settleTxid := h.store.Confirm(settlement.Tx)

	// the open/close marker spend marks the loop terminal
	spender, err := marmara.SettlementTxid(h.store, issueTxid)
	assert.NoError(t, err, "settlement txid unresolved")
	assert.Equal(t, settleTxid, spender, "wrong settlement txid")
}

// create → issue → transfer → settle partially after losing a share
func TestTransferAndPartialSettlement(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	endorserB := testKey(t, 2)
	endorserC := testKey(t, 3)

	createTxid := h.createLoop(issuer, endorserB, loopAmount, baseHeight+10)
	issueTxid := h.issue(createTxid, issuer, endorserB, loopAmount)

	requestTxid := h.request(createTxid, endorserB, endorserC)
	transferTx := h.buildTransfer(createTxid, requestTxid, issueTxid,
		[]transaction.OutPoint{{TxId: issueTxid, N: 2}},
		endorserB, endorserC,
		[]keyedAmount{
			{key: endorserC, value: loopAmount / 2},
			{key: endorserB, value: loopAmount - loopAmount/2},
		},
		[]keyedAmount{{key: endorserB, value: loopAmount / 2}})

	assert.NoError(t, marmara.Validate(h.store, transferTx), "valid transfer rejected")
	transferTxid := h.store.Confirm(transferTx)

	// simulate the loss of one locked share
	h.store.Confirm(&transaction.Transaction{
		In:  []transaction.TxIn{ccIn(transaction.OutPoint{TxId: transferTxid, N: 3}, endorserB)},
		Out: []transaction.TxOut{{Value: loopAmount / 2, Script: script.P2PKH(endorserB)}},
	})

	h.setTip(baseHeight + 11)

	settlement, err := marmara.CreateSettlement(h.store, h.store, transferTxid)
	assert.NoError(t, err, "settlement driver failed")
	assert.True(t, settlement.IsPartial(), "short pot settled in full")
	assert.Equal(t, loopAmount/2, settlement.Settled, "wrong settled amount")
	assert.Equal(t, loopAmount/2, settlement.Remaining, "wrong remainder")
	assert.True(t, endorserC.Equal(settlement.Holder), "wrong holder")

	assert.NoError(t, marmara.Validate(h.store, settlement.Tx), "driver settlement rejected")
}

// requesting credit from oneself is rejected
func TestSelfCreditRejection(t *testing.T) {
	h := newHarness(t)
	party := testKey(t, 1)

	createTxid := h.createLoop(party, party, loopAmount, baseHeight+10)
	issueTx := h.buildIssue(createTxid, party, party, loopAmount)

	assert.Equal(t, fault.ErrSelfCredit, marmara.Validate(h.store, issueTx), "self credit accepted")
}

// settlement before maturity is rejected
func TestEarlySettlementRejection(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	receiver := testKey(t, 2)

	createTxid := h.createLoop(issuer, receiver, loopAmount, baseHeight+100)
	issueTxid := h.issue(createTxid, issuer, receiver, loopAmount)

	h.setTip(baseHeight + 50)

	// the driver refuses
	_, err := marmara.CreateSettlement(h.store, h.store, issueTxid)
	assert.Equal(t, fault.ErrLoopNotMatured, err, "driver settled early")

	// a hand built settlement is rejected by consensus
	settleTx := h.buildSettlement(opret.Settle, issueTxid, createTxid, receiver,
		[]transaction.OutPoint{{TxId: issueTxid, N: 2}}, loopAmount, 0)
	assert.Equal(t, fault.ErrLoopNotMatured, marmara.Validate(h.store, settleTx), "early settlement accepted")
}

// locked shares outside tolerance are rejected
func TestTamperedShareRejection(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	endorserB := testKey(t, 2)
	endorserC := testKey(t, 3)
	endorserD := testKey(t, 4)

	amount := int64(900000)
	createTxid := h.createLoop(issuer, endorserB, amount, baseHeight+1000)
	issueTxid := h.issue(createTxid, issuer, endorserB, amount)
	transferTxid := h.transfer(createTxid, issueTxid,
		[]transaction.OutPoint{{TxId: issueTxid, N: 2}},
		endorserB, endorserC, amount, []account.PublicKey{endorserB})

	// every share padded by 2ε: each vout individually out of range
	tampered := amount/3 + 2*constants.LoopTolerance
	requestTxid := h.request(createTxid, endorserC, endorserD)
	transferTx := h.buildTransfer(createTxid, requestTxid, transferTxid,
		[]transaction.OutPoint{
			{TxId: transferTxid, N: 2},
			{TxId: transferTxid, N: 3},
		},
		endorserC, endorserD,
		[]keyedAmount{
			{key: endorserD, value: tampered},
			{key: endorserC, value: tampered},
			{key: endorserB, value: tampered},
		},
		[]keyedAmount{
			{key: endorserC, value: amount / 3},
			{key: endorserB, value: amount / 3},
		})

	assert.Equal(t, fault.ErrLockedAmountIncorrect, marmara.Validate(h.store, transferTx), "tampered shares accepted")
}

// prior endorsers must get their shares back as normal outputs
func TestMissingRedistribution(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	endorserB := testKey(t, 2)
	endorserC := testKey(t, 3)

	createTxid := h.createLoop(issuer, endorserB, loopAmount, baseHeight+10)
	issueTxid := h.issue(createTxid, issuer, endorserB, loopAmount)

	// locked shares are correct but the payout to B is withheld
	requestTxid := h.request(createTxid, endorserB, endorserC)
	transferTx := h.buildTransfer(createTxid, requestTxid, issueTxid,
		[]transaction.OutPoint{{TxId: issueTxid, N: 2}},
		endorserB, endorserC,
		[]keyedAmount{
			{key: endorserC, value: loopAmount / 2},
			{key: endorserB, value: loopAmount - loopAmount/2},
		},
		nil)

	assert.Equal(t, fault.ErrRedistributionInvalid, marmara.Validate(h.store, transferTx), "withheld redistribution accepted")
}

// the endorser sets on inputs and outputs must chain exactly
func TestEndorserSetMismatch(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	endorserB := testKey(t, 2)
	endorserC := testKey(t, 3)

	createTxid := h.createLoop(issuer, endorserB, loopAmount, baseHeight+10)
	issueTxid := h.issue(createTxid, issuer, endorserB, loopAmount)

	// the transfer drops the prior endorser from the locked outputs
	requestTxid := h.request(createTxid, endorserB, endorserC)
	transferTx := h.buildTransfer(createTxid, requestTxid, issueTxid,
		[]transaction.OutPoint{{TxId: issueTxid, N: 2}},
		endorserB, endorserC,
		[]keyedAmount{{key: endorserC, value: loopAmount}},
		nil)

	assert.Error(t, marmara.Validate(h.store, transferTx), "missing endorser accepted")
}

// spending activated coins with the module key is rejected
func TestGlobalKeySpendRejection(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	receiver := testKey(t, 2)

	createTxid := h.createLoop(issuer, receiver, loopAmount, baseHeight+10)
	issueTx := h.buildIssue(createTxid, issuer, receiver, loopAmount)
	issueTx.In[0].Signer = account.GlobalKey()

	assert.Equal(t, fault.ErrGlobalPkSpend, marmara.Validate(h.store, issueTx), "global key spend accepted")
}

// kinds that never carry cc inputs are rejected outright
func TestInputLessKindsRejected(t *testing.T) {
	h := newHarness(t)
	issuer := testKey(t, 1)
	receiver := testKey(t, 2)

	createTxid := h.createLoop(issuer, receiver, loopAmount, baseHeight+10)
	createTx, _, err := h.store.GetTx(createTxid)
	assert.NoError(t, err, "create tx unavailable")
	assert.Equal(t, fault.ErrUnexpectedCreateFuncID, marmara.Validate(h.store, createTx), "create tx accepted")

	requestTxid := h.request(createTxid, receiver, testKey(t, 3))
	requestTx, _, err := h.store.GetTx(requestTxid)
	assert.NoError(t, err, "request tx unavailable")
	assert.Equal(t, fault.ErrUnexpectedRequestFuncID, marmara.Validate(h.store, requestTx), "request tx accepted")
}

// a transaction without any marmara opret is invalid
func TestNoOpreturns(t *testing.T) {
	h := newHarness(t)
	key := testKey(t, 1)

	tx := &transaction.Transaction{
		In:  []transaction.TxIn{transaction.CoinbaseIn()},
		Out: []transaction.TxOut{{Value: 5000, Script: script.P2PKH(key)}},
	}
	err := marmara.Validate(h.store, tx)
	assert.Equal(t, fault.ErrNoOpreturns, err, "opret-less tx accepted")
	assert.True(t, fault.IsErrInvalid(err), "wrong severity")
}

// simple kinds pass through for the stake validator to recheck
func TestSimpleKindsAccepted(t *testing.T) {
	h := newHarness(t)
	key := testKey(t, 1)

	prev := h.activated(key, 50000)
	activatedTx, _, err := h.store.GetTx(prev.TxId)
	assert.NoError(t, err, "activated tx unavailable")
	assert.NoError(t, marmara.Validate(h.store, activatedTx), "activated tx rejected")
}

// pool transactions must spend coinbases matching their own opret
func TestPoolTx(t *testing.T) {
	h := newHarness(t)
	miner := testKey(t, 1)

	coinbaseOpret, err := opret.EncodeActivated(opret.Coinbase, constants.OpretVersionDefault, miner, baseHeight, baseHeight+500)
	assert.NoError(t, err, "encode failed")

	coinbase := &transaction.Transaction{
		In: []transaction.TxIn{transaction.CoinbaseIn()},
		Out: []transaction.TxOut{
			{Value: 300000, Script: script.CC1of2(constants.EvalCode, account.GlobalKey(), miner, coinbaseOpret)},
			{Script: script.OpReturn(coinbaseOpret)},
		},
	}
	coinbaseTxid := h.store.Confirm(coinbase)

	poolTx := func(unlockHeight int32) *transaction.Transaction {
		poolOpret, err := opret.EncodeActivated(opret.Pool, constants.OpretVersionDefault, miner, baseHeight, unlockHeight)
		assert.NoError(t, err, "encode failed")
		return &transaction.Transaction{
			In: []transaction.TxIn{ccIn(transaction.OutPoint{TxId: coinbaseTxid, N: 0}, miner)},
			Out: []transaction.TxOut{
				{Value: 300000, Script: script.CC1of2(constants.EvalCode, account.GlobalKey(), miner, poolOpret)},
				{Script: script.OpReturn(poolOpret)},
			},
		}
	}

	assert.NoError(t, marmara.Validate(h.store, poolTx(baseHeight+500)), "valid pool tx rejected")
	assert.Equal(t, fault.ErrPoolOpretMismatch, marmara.Validate(h.store, poolTx(baseHeight+501)), "mismatched pool tx accepted")
}

// the fork gate picks the right rule set
func TestRuleSelection(t *testing.T) {
	legacy := marmara.RulesFor(constants.PoSImprovementsHeight-1, constants.June2020UpdateTimestamp)
	assert.Equal(t, marmara.LegacyRules(), legacy, "pre-fork height not legacy")

	legacy = marmara.RulesFor(constants.PoSImprovementsHeight, constants.June2020UpdateTimestamp-1)
	assert.Equal(t, marmara.LegacyRules(), legacy, "pre-update time not legacy")

	current := marmara.RulesFor(constants.PoSImprovementsHeight, constants.June2020UpdateTimestamp)
	assert.Equal(t, marmara.CurrentRules(), current, "post-fork not current")

	assert.True(t, legacy.MaxEndorsers < current.MaxEndorsers, "legacy endorser cap not lower")
	assert.True(t, legacy.RevalidateIssueOnSettle, "legacy must revalidate on settle")
	assert.False(t, current.RevalidateIssueOnSettle, "current must not revalidate on settle")
}
