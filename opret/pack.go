// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package opret

import (
	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/currency"
	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/util"
)

// all encoders produce: eval code, function id, version, payload
//
// payload fields are concatenated in declaration order: public keys
// are 33 raw bytes, digests 32 raw bytes, integers little endian
// fixed width, booleans one byte, strings Varint64 length prefixed

func header(funcID FuncID, version byte) []byte {
	return []byte{constants.EvalCode, byte(funcID), version}
}

// EncodeActivated - coinbase and activated opret (C, E, A, N, P)
func EncodeActivated(funcID FuncID, version byte, publicKey account.PublicKey, height int32, unlockHeight int32) ([]byte, error) {
	if !funcID.IsActivated() {
		return nil, fault.ErrOpretFuncID
	}
	if account.KeyLength != len(publicKey) {
		return nil, fault.ErrNotPublicKey
	}

	message := header(funcID, version)
	message = append(message, publicKey...)
	message = util.ToUint32LE(message, uint32(height))
	message = util.ToUint32LE(message, uint32(unlockHeight))
	return message, nil
}

// EncodeCreateLoop - loop creation opret (B)
func EncodeCreateLoop(version byte, publicKey account.PublicKey, amount int64, matures int32, c currency.Currency) ([]byte, error) {
	if account.KeyLength != len(publicKey) {
		return nil, fault.ErrNotPublicKey
	}
	if !c.IsValid() {
		return nil, fault.ErrInvalidCurrency
	}

	message := header(CreateLoop, version)
	message = append(message, publicKey...)
	message = util.ToUint64LE(message, uint64(amount))
	message = util.ToUint32LE(message, uint32(matures))
	symbol := c.String()
	message = append(message, util.ToVarint64(uint64(len(symbol)))...)
	message = append(message, symbol...)
	return message, nil
}

// EncodeRequest - receive request opret (R)
func EncodeRequest(version byte, createTxId merkle.Digest, publicKey account.PublicKey) ([]byte, error) {
	if account.KeyLength != len(publicKey) {
		return nil, fault.ErrNotPublicKey
	}

	message := header(Request, version)
	message = append(message, createTxId[:]...)
	message = append(message, publicKey...)
	return message, nil
}

// EncodeIssue - issuance opret (I)
func EncodeIssue(version byte, createTxId merkle.Digest, publicKey account.PublicKey, params IssuerParams) ([]byte, error) {
	if account.KeyLength != len(publicKey) {
		return nil, fault.ErrNotPublicKey
	}

	message := header(Issue, version)
	message = append(message, createTxId[:]...)
	message = append(message, publicKey...)
	message = appendBool(message, params.AutoSettlement)
	message = appendBool(message, params.AutoInsurance)
	message = util.ToUint32LE(message, uint32(params.AvalCount))
	message = util.ToUint32LE(message, uint32(params.DisputeExpires))
	message = appendBool(message, params.EscrowOn)
	message = util.ToUint64LE(message, uint64(params.BlockageAmount))
	return message, nil
}

// EncodeTransfer - endorsement transfer opret (T)
func EncodeTransfer(version byte, createTxId merkle.Digest, publicKey account.PublicKey, avalCount int32) ([]byte, error) {
	if account.KeyLength != len(publicKey) {
		return nil, fault.ErrNotPublicKey
	}

	message := header(Transfer, version)
	message = append(message, createTxId[:]...)
	message = append(message, publicKey...)
	message = util.ToUint32LE(message, uint32(avalCount))
	return message, nil
}

// EncodeLocked - locked-in-loop opret (K)
func EncodeLocked(version byte, createTxId merkle.Digest, publicKey account.PublicKey) ([]byte, error) {
	if account.KeyLength != len(publicKey) {
		return nil, fault.ErrNotPublicKey
	}

	message := header(Locked, version)
	message = append(message, createTxId[:]...)
	message = append(message, publicKey...)
	return message, nil
}

// EncodeSettle - settlement opret (S or D)
//
// remaining is zero for a full settlement and the outstanding amount
// for a partial one
func EncodeSettle(funcID FuncID, version byte, createTxId merkle.Digest, publicKey account.PublicKey, remaining int64) ([]byte, error) {
	if Settle != funcID && SettlePartial != funcID {
		return nil, fault.ErrOpretFuncID
	}
	if account.KeyLength != len(publicKey) {
		return nil, fault.ErrNotPublicKey
	}

	message := header(funcID, version)
	message = append(message, createTxId[:]...)
	message = append(message, publicKey...)
	message = util.ToUint64LE(message, uint64(remaining))
	return message, nil
}

// EncodeRelease - deactivation marker opret (O), header only
func EncodeRelease(version byte) []byte {
	return header(Release, version)
}

func appendBool(buffer []byte, flag bool) []byte {
	if flag {
		return append(buffer, 1)
	}
	return append(buffer, 0)
}
