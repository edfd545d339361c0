// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marmara

import (
	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/ledger"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/script"
	"github.com/marmarachain/marmara/transaction"
)

// Carrier - which site an opret was found at
type Carrier int

// the two carrying sites
const (
	CarrierNone     Carrier = iota
	CarrierCC               // inside the output's condition data blob
	CarrierLastVout         // the transaction's trailing null data vout
)

// an opretChecker validates one opret family and extracts its pubkey
type opretChecker struct {
	onlyCC bool
	check  func(data []byte) (account.PublicKey, bool)
}

// activated oprets ride in the condition blob only
var activatedChecker = opretChecker{
	onlyCC: true,
	check: func(data []byte) (account.PublicKey, bool) {
		a, err := opret.DecodeActivated(data)
		if nil != err {
			return nil, false
		}
		return a.PublicKey, true
	},
}

// loop oprets may ride at either site unless onlyCC is forced
func lockInLoopChecker(onlyCC bool) opretChecker {
	return opretChecker{
		onlyCC: onlyCC,
		check: func(data []byte) (account.PublicKey, bool) {
			ld := opret.NewLoopData()
			if _, err := opret.DecodeLoop(data, constants.OpretVersionAny, &ld); nil != err {
				return nil, false
			}
			return ld.PublicKey, true
		},
	}
}

// getEitherOpret - find an acceptable opret for an output
//
// the condition blob is primary; the trailing null data vout is the
// secondary site consulted only when the checker permits it and the
// examined output is not itself the trailing vout
func getEitherOpret(checker opretChecker, tx *transaction.Transaction, n int) ([]byte, account.PublicKey, Carrier) {

	if data := tx.Out[n].Script.ConditionData(); nil != data {
		if publicKey, ok := checker.check(data); ok {
			return data, publicKey, CarrierCC
		}
	}

	if !checker.onlyCC && n < len(tx.Out)-1 {
		if data := tx.LastOut().Script.OpReturnData(); nil != data {
			if publicKey, ok := checker.check(data); ok {
				return data, publicKey, CarrierLastVout
			}
		}
	}

	return nil, nil, CarrierNone
}

// rebuild the condition script an output must carry: the data blob is
// embedded only when the opret actually rode in the condition
func expectedCondition(publicKey2 account.PublicKey, data []byte, carrier Carrier) script.Script {
	if CarrierCC == carrier {
		return script.CC1of2(constants.EvalCode, account.GlobalKey(), publicKey2, data)
	}
	return script.CC1of2(constants.EvalCode, account.GlobalKey(), publicKey2, nil)
}

// IsActivatedVout - check an output is valid activated coins
//
// the opret must parse as a coinbase/activated kind and the output
// script must be the 1-of-2 condition of the module key with the very
// key the opret names.  activated outputs may be funded from any
// normal inputs, so no vin shape is demanded here
func IsActivatedVout(tx *transaction.Transaction, n int) (account.PublicKey, bool) {
	if n < 0 || n >= len(tx.Out) {
		return nil, false
	}

	data, publicKey, carrier := getEitherOpret(activatedChecker, tx, n)
	if CarrierNone == carrier {
		return nil, false
	}

	if !tx.Out[n].Script.Equal(expectedCondition(publicKey, data, carrier)) {
		return nil, false
	}
	return publicKey, true
}

// IsLockedInLoopVout - check an output is valid locked-in-loop coins
//
// the opret must parse as a loop kind carried by locked outputs, the
// script must be the 1-of-2 condition of the module key with the key
// derived from the loop's create txid, and the transaction itself
// must consume at least one marmara condition input so the coins
// descend from validated outputs rather than a self spend
func IsLockedInLoopVout(tx *transaction.Transaction, n int) (account.PublicKey, bool) {
	if n < 0 || n >= len(tx.Out) {
		return nil, false
	}

	data, publicKey, carrier := getEitherOpret(lockInLoopChecker(false), tx, n)
	if CarrierNone == carrier {
		return nil, false
	}

	ld := opret.NewLoopData()
	funcID, err := opret.DecodeLoop(data, constants.OpretVersionAny, &ld)
	if nil != err {
		return nil, false
	}
	switch funcID {
	case opret.Locked, opret.Issue, opret.Transfer:
	default:
		return nil, false
	}

	derived := account.TxidPublicKey(ld.CreateTxId)
	if !tx.Out[n].Script.Equal(expectedCondition(derived, data, carrier)) {
		return nil, false
	}

	if !tx.HasMarmaraCCVin() {
		return nil, false
	}
	return publicKey, true
}

// totalNormalInputs - total value a pubkey contributed through
// ordinary pay-to-pubkey-hash inputs of a transaction
//
// this is how "who signed" is established for request transactions
func totalNormalInputs(store ledger.Store, tx *transaction.Transaction, publicKey account.PublicKey) int64 {
	total := int64(0)
	for i := range tx.In {
		in := &tx.In[i]
		if in.IsCC() {
			continue
		}
		vintx, _, err := store.GetTx(in.PrevOut.TxId)
		if nil != err {
			continue
		}
		if int(in.PrevOut.N) >= len(vintx.Out) {
			continue
		}
		out := &vintx.Out[in.PrevOut.N]
		if out.Script.PaysToPublicKey(publicKey) {
			total += out.Value
		}
	}
	return total
}
