// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marmara

import (
	"sort"

	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/ledger"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/mode"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/transaction"
)

// Validate - consensus verdict on a marmara tagged transaction
//
// nil means accepted.  a fault.InvalidError marks a malformed
// transaction; a fault.ProcessError marks a rule violation with a
// descriptive message.  no state is committed either way
//
// the rule set is selected from the tip height and median time past
// read through the store, never from the local clock
func Validate(store ledger.Store, tx *transaction.Transaction) error {
	if !mode.IsMarmara() {
		return fault.ErrNotMarmaraChain
	}

	if len(tx.Out) < 1 {
		return fault.ErrNoVouts
	}

	height := store.CurrentHeight()
	rules := RulesFor(height, store.TipMedianTime())

	if len(tx.In) > rules.MaxVins {
		return fault.ErrTooManyVins
	}

	// the set of function ids across all outputs decides the handler
	funcIDs := make(map[opret.FuncID]struct{})
	lclChecker := lockInLoopChecker(false)
	for n := range tx.Out {
		if data, _, carrier := getEitherOpret(activatedChecker, tx, n); CarrierNone != carrier {
			if a, err := opret.DecodeActivated(data); nil == err {
				funcIDs[a.FuncID] = struct{}{}
			}
		} else if data, _, carrier := getEitherOpret(lclChecker, tx, n); CarrierNone != carrier {
			ld := opret.NewLoopData()
			if funcID, err := opret.DecodeLoop(data, constants.OpretVersionAny, &ld); nil == err {
				funcIDs[funcID] = struct{}{}
			}
		}
	}

	if 0 == len(funcIDs) {
		return fault.ErrNoOpreturns
	}

	switch funcIDSetKey(funcIDs) {

	case "P": // pool: every cc vin must be a matching coinbase
		return checkPoolTx(store, tx)

	case "C", "E": // coinbase: shape already checked by block rules
		return nil

	case "A", "N": // activated: the stake validator rechecks
		return nil

	case "K": // locked in loop: the stake validator rechecks
		return nil

	case "O": // release to normal
		return nil

	// these kinds carry no cc inputs and are never validated here
	case "L":
		return fault.ErrUnexpectedLoopFuncID
	case "B":
		return fault.ErrUnexpectedCreateFuncID
	case "R":
		return fault.ErrUnexpectedRequestFuncID

	case "I", "IK", "AIK":
		return checkIssueTx(store, rules, tx, height)

	case "T", "KT", "AKT":
		return checkIssueTx(store, rules, tx, height)

	case "S", "D":
		return checkSettlementTx(store, rules, tx, height)

	default:
		return fault.ErrFallThrough
	}
}

// canonical key for a function id set: sorted funcid bytes
func funcIDSetKey(funcIDs map[opret.FuncID]struct{}) string {
	ids := make([]byte, 0, len(funcIDs))
	for f := range funcIDs {
		ids = append(ids, byte(f))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return string(ids)
}

// checkPoolTx - every marmara cc vin must spend a coinbase whose
// opret matches the pool tx's own opret
func checkPoolTx(store ledger.Store, tx *transaction.Transaction) error {
	last := tx.LastOut()
	data := last.Script.OpReturnData()
	poolOpret, err := opret.DecodeActivated(data)
	if nil != err {
		return fault.ErrPoolOpretMismatch
	}

	for i := range tx.In {
		if !tx.In[i].IsMarmara() {
			continue
		}
		vintx, _, err := store.GetTx(tx.In[i].PrevOut.TxId)
		if nil != err {
			return fault.ErrPoolVinTxMissing
		}
		if !vintx.IsCoinBase() {
			return fault.ErrPoolNonCoinbase
		}
		if 2 != len(vintx.Out) {
			return fault.ErrPoolCoinbaseVouts
		}
		vinOpret, err := opret.DecodeActivated(vintx.Out[1].Script.OpReturnData())
		if nil != err {
			return fault.ErrPoolOpretMismatch
		}
		if opret.Coinbase != vinOpret.FuncID ||
			!vinOpret.PublicKey.Equal(poolOpret.PublicKey) ||
			vinOpret.UnlockHeight != poolOpret.UnlockHeight {
			return fault.ErrPoolOpretMismatch
		}
	}
	return nil
}

// checkIssueTx - verify an issue or transfer transaction
//
// input layout: an optional run of activated cc vins funding the
// lock, then the request vin, then (transfers only) the baton vin,
// then the previous locked-in-loop vins
func checkIssueTx(store ledger.Store, rules RuleSet, tx *transaction.Transaction, height int32) error {
	if 0 == len(tx.Out) {
		return fault.ErrIssueNoVouts
	}

	ld := opret.NewLoopData()
	lastOutOpret(tx, &ld)
	if opret.Issue != ld.FuncID && opret.Transfer != ld.FuncID {
		return fault.ErrNotIssueTx
	}

	if opret.Issue == ld.FuncID {
		if ld.Params.EscrowOn && !rules.EscrowAllowed {
			return fault.ErrEscrowNotAllowed
		}
		if ld.Params.DisputeExpires > height+rules.DisputeExpiresOffset {
			return fault.ErrDisputeExpiryTooFar
		}
	}

	// the activated run ends at the first marmara cc vin that is not
	// activated coins: that vin is the request input
	requestVin := -1
scan:
	for i := range tx.In {
		in := &tx.In[i]
		if !in.IsCC() {
			continue scan
		}
		if !in.IsMarmara() {
			return fault.ErrForeignCCVin
		}
		vintx, _, err := store.GetTx(in.PrevOut.TxId)
		if nil != err {
			return fault.ErrVinTxUnavailable
		}
		if _, ok := IsActivatedVout(vintx, int(in.PrevOut.N)); ok {
			// disallow spending with the marmara global key
			if in.Signer.IsGlobal() {
				return fault.ErrGlobalPkSpend
			}
			continue scan
		}
		requestVin = i
		break scan
	}

	if requestVin < 0 {
		return fault.ErrNoRequestVin
	}

	err := checkRequestTx(store, tx.In[requestVin].PrevOut.TxId, ld.PublicKey, ld.FuncID, height)
	if nil != err {
		return err
	}

	// prev tx is the create tx for an issue, the baton tx for a transfer
	prevTxid := tx.In[requestVin].PrevOut.TxId
	startVin := requestVin + 1

	if opret.Transfer == ld.FuncID {
		batonVin := requestVin + 1
		if batonVin >= len(tx.In) {
			return fault.ErrNoBatonVin
		}
		vintx, _, err := store.GetTx(tx.In[batonVin].PrevOut.TxId)
		if nil != err {
			return fault.ErrVinTxUnavailable
		}
		if !vintx.HasMarmaraCCVin() {
			return fault.ErrBatonNotCC
		}
		prevTxid = tx.In[batonVin].PrevOut.TxId
		startVin = batonVin + 1
	}

	return checkLCLRedistribution(store, rules, tx, prevTxid, startVin)
}

// checkRequestTx - verify the request the issue or transfer answers
//
// the receiver named in the issue/transfer opret must have signed the
// request through normal inputs, the party credit is requested from
// must not have co-signed, and the loop must mature strictly in the
// future.  an issue answers the create tx itself; a transfer answers
// a request tx
func checkRequestTx(store ledger.Store, requestTxid merkle.Digest, receiverKey account.PublicKey, issueFuncID opret.FuncID, height int32) error {
	if requestTxid.IsEmpty() {
		return fault.ErrRequestTxidEmpty
	}

	createTxid, err := CreateTxidOf(store, requestTxid)
	if nil != err {
		return fault.ErrRequestNoCreateTxid
	}

	ld := opret.NewLoopData()
	if err := loopCreationData(store, createTxid, &ld); nil != err {
		return fault.ErrNoLoopCreationData
	}

	requestTx, blockHash, err := store.GetTx(requestTxid)
	if nil != err {
		return fault.ErrRequestTxUnavailable
	}
	if blockHash.IsEmpty() {
		return fault.ErrRequestTxInMempool
	}

	funcID := lastOutOpret(requestTx, &ld)
	if 0 == funcID || 0 == len(requestTx.Out) {
		return fault.ErrRequestTxOpret
	}

	// the opret merge leaves ld.PublicKey naming the party credit is
	// requested from
	if 0 == totalNormalInputs(store, requestTx, receiverKey) {
		return fault.ErrReceiverNotSigner
	}
	if totalNormalInputs(store, requestTx, ld.PublicKey) > 0 {
		return fault.ErrSelfCredit
	}
	if ld.Matures <= height {
		return fault.ErrMaturityNotFuture
	}

	if opret.Issue == issueFuncID && opret.CreateLoop != funcID {
		return fault.ErrNotCreateTx
	}
	if opret.Transfer == issueFuncID && opret.Request != funcID {
		return fault.ErrNotRequestTx
	}
	return nil
}

// checkLCLRedistribution - loop amount and redistribution arithmetic
//
// with N endorsers before this transaction, the locked outputs must
// split the loop amount into N+1 equal shares, each prior endorser
// must get one share back as a normal output, and the endorser key
// sets must chain exactly: vout keys = vin keys + the new endorser
func checkLCLRedistribution(store ledger.Store, rules RuleSet, tx *transaction.Transaction, prevTxid merkle.Digest, startVin int) error {

	createTxid, nPrevEndorsers, err := EndorserCount(store, prevTxid)
	if nil != err {
		return fault.ErrEndorsersNumber
	}
	if nPrevEndorsers+1 > rules.MaxEndorsers {
		return fault.ErrTooManyEndorsers
	}

	creation := opret.NewLoopData()
	if err := loopCreationData(store, createTxid, &creation); nil != err {
		return fault.ErrLoopCreationData
	}

	current := opret.NewLoopData()
	if 0 == lastOutOpret(tx, &current) {
		return fault.ErrIssueNoOpret
	}

	derived := account.TxidPublicKey(createTxid)
	share := creation.Amount / int64(nPrevEndorsers+1)

	// check loop endorsers are funded correctly
	lclAmount := int64(0)
	endorserKeys := []account.PublicKey{}
	for i := 0; i < len(tx.Out)-1; i += 1 {
		out := &tx.Out[i]
		if !out.Script.IsPayToCryptoCondition() {
			continue
		}
		data := out.Script.ConditionData()
		if nil == data {
			continue
		}
		vld := opret.NewLoopData()
		funcID, err := opret.DecodeLoop(data, constants.OpretVersionAny, &vld)
		if nil != err || opret.Locked != funcID {
			continue
		}

		expected := expectedCondition(derived, data, CarrierCC)
		if !out.Script.Equal(expected) {
			return fault.ErrLockedPubkeyMismatch
		}

		if !withinTolerance(out.Value-share, constants.LoopTolerance) {
			return fault.ErrLockedAmountIncorrect
		}

		lclAmount += out.Value
		endorserKeys = append(endorserKeys, vld.PublicKey)
	}

	// mass conservation over all shares
	massTolerance := int64(nPrevEndorsers+1) * constants.LoopTolerance
	if 0 == len(endorserKeys) || !withinTolerance(creation.Amount-lclAmount, massTolerance) {
		return fault.ErrLoopAmountInvalid
	}

	// the latest endorser heads the vout list and gets nothing back
	priorKeys := endorserKeys[1:]

	if nPrevEndorsers != len(priorKeys) {
		return fault.ErrEndorserPksNumber
	}

	if 0 != nPrevEndorsers {
		redistributed := int64(0)
		for i := range tx.Out {
			out := &tx.Out[i]
			if out.Script.IsPayToCryptoCondition() {
				continue
			}
			for _, publicKey := range priorKeys {
				if out.Script.PaysToPublicKey(publicKey) {
					if !withinTolerance(out.Value-share, constants.LoopTolerance) {
						return fault.ErrNormalPayoutIncorrect
					}
					redistributed += out.Value
				}
			}
		}

		// redistributed ≈ N/(N+1) of the locked amount
		aggregateTolerance := int64(nPrevEndorsers) * constants.LoopTolerance
		diff := lclAmount - lclAmount/int64(nPrevEndorsers+1) - redistributed
		if !withinTolerance(diff, aggregateTolerance) {
			return fault.ErrRedistributionInvalid
		}
	}

	// the spent locked-in-loop vins carry the prior endorser keys
	priorVinKeys := make(map[string]struct{})
	for i := startVin; i >= 0 && i < len(tx.In); i += 1 {
		in := &tx.In[i]
		if !in.IsCC() {
			continue
		}
		if !in.IsMarmara() {
			return fault.ErrForeignCCVin
		}
		if in.Signer.IsGlobal() {
			return fault.ErrGlobalPkSpend
		}
		vintx, _, err := store.GetTx(in.PrevOut.TxId)
		if nil != err {
			return fault.ErrVinTxUnavailable
		}
		publicKey, ok := IsLockedInLoopVout(vintx, int(in.PrevOut.N))
		if !ok {
			return fault.ErrUnexpectedNonLCLVin
		}
		priorVinKeys[string(publicKey)] = struct{}{}
	}

	priorSet := make(map[string]struct{})
	for _, publicKey := range priorKeys {
		priorSet[string(publicKey)] = struct{}{}
	}
	if !sameKeySet(priorSet, priorVinKeys) {
		return fault.ErrLoopPubkeysMismatch
	}
	return nil
}

// checkSettlementTx - verify a settlement or partial settlement
func checkSettlementTx(store ledger.Store, rules RuleSet, tx *transaction.Transaction, height int32) error {
	if 0 == len(tx.Out) {
		return fault.ErrSettleNoVouts
	}
	if 0 == len(tx.In) {
		return fault.ErrSettleNoVins
	}

	current := opret.NewLoopData()
	lastOutOpret(tx, &current)
	if opret.Settle != current.FuncID && opret.SettlePartial != current.FuncID {
		return fault.ErrNotSettlementTx
	}

	// vin0 must spend the open/close marker of the issue tx
	if constants.OpenCloseVout != tx.In[0].PrevOut.N {
		return fault.ErrSettleBadVin0
	}
	issueTxid := tx.In[0].PrevOut.TxId
	issueTx, _, err := store.GetTx(issueTxid)
	if nil != err {
		return fault.ErrIssueTxUnavailable
	}

	// the issue tx is never the tip transaction so the spent index is
	// settled enough to walk the loop forward here
	loop, err := GetBaton(store, issueTxid)
	if nil != err {
		return fault.ErrNoCreditLoop
	}
	if loop.IsEmpty() {
		return fault.ErrNoCreditLoop
	}

	creation := opret.NewLoopData()
	if err := loopCreationData(store, loop.CreateTxId, &creation); nil != err {
		return fault.ErrLoopCreationData
	}

	if height < creation.Matures {
		return fault.ErrLoopNotMatured
	}

	// legacy path: a matured loop's issue tx can no longer
	// revalidate, its request maturity check demands a future height.
	// a revalidation passing here means the loop is malformed
	if rules.RevalidateIssueOnSettle {
		if err := checkIssueTx(store, rules, issueTx, height); nil == err {
			return fault.ErrIssueTxRevalidates
		}
	}

	batonTx, _, err := store.GetTx(loop.Baton)
	if nil != err {
		return fault.ErrBatonTxUnavailable
	}
	if 0 == len(batonTx.Out) {
		return fault.ErrBatonNoVouts
	}

	batonData := opret.NewLoopData()
	lastOutOpret(batonTx, &batonData)
	if opret.Issue != batonData.FuncID && opret.Transfer != batonData.FuncID {
		return fault.ErrBatonNotIssueTransfer
	}
	holderKey := batonData.PublicKey

	// total the normal payments to the holder; condition outputs are
	// banned so stray loop deposits cannot leak through settlement
	settledAmount := int64(0)
	for i := range tx.Out {
		out := &tx.Out[i]
		if out.Script.IsPayToCryptoCondition() {
			return fault.ErrSettleCCVout
		}
		if out.Script.PaysToPublicKey(holderKey) {
			settledAmount += out.Value
		}
	}

	diff := creation.Amount - settledAmount
	if opret.Settle == current.FuncID && diff > 0 {
		return fault.ErrSettleFullIncorrect
	}
	if opret.SettlePartial == current.FuncID && diff <= 0 {
		return fault.ErrSettlePartIncorrect
	}
	return nil
}

func withinTolerance(diff int64, tolerance int64) bool {
	return diff >= -tolerance && diff <= tolerance
}

func sameKeySet(a map[string]struct{}, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
