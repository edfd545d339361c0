// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import (
	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/script"
	"github.com/marmarachain/marmara/util"
)

// Packed - the canonical binary form of a transaction
type Packed []byte

// Pack - canonical serialisation, the digest of which is the txid
//
// layout:
//   Varint64 input count
//     32 byte previous txid, LE32 previous index,
//     kind byte, eval byte, Varint64 signer length + signer
//   Varint64 output count
//     LE64 value, Varint64 script length + script
func (tx *Transaction) Pack() Packed {
	message := util.ToVarint64(uint64(len(tx.In)))
	for i := range tx.In {
		in := &tx.In[i]
		message = append(message, in.PrevOut.TxId[:]...)
		message = util.ToUint32LE(message, in.PrevOut.N)
		message = append(message, byte(in.Kind), in.Eval)
		message = appendBytes(message, in.Signer)
	}
	message = append(message, util.ToVarint64(uint64(len(tx.Out)))...)
	for i := range tx.Out {
		out := &tx.Out[i]
		message = util.ToUint64LE(message, uint64(out.Value))
		message = appendBytes(message, out.Script)
	}
	return Packed(message)
}

// Unpack - turn a byte slice back into a transaction
func (record Packed) Unpack() (*Transaction, error) {

	tx := &Transaction{}
	n := 0

	inCount, inOffset := util.ClippedVarint64(record, 0, 8192)
	if 0 == inOffset {
		return nil, fault.ErrNotTransactionPack
	}
	n += inOffset

	tx.In = make([]TxIn, inCount)
	for i := 0; i < inCount; i += 1 {
		in := &tx.In[i]

		if len(record) < n+merkle.DigestLength {
			return nil, fault.ErrNotTransactionPack
		}
		copy(in.PrevOut.TxId[:], record[n:n+merkle.DigestLength])
		n += merkle.DigestLength

		prevN, count := util.FromUint32LE(record[n:])
		if 0 == count {
			return nil, fault.ErrNotTransactionPack
		}
		in.PrevOut.N = prevN
		n += count

		if len(record) < n+2 {
			return nil, fault.ErrNotTransactionPack
		}
		in.Kind = UnlockKind(record[n])
		in.Eval = record[n+1]
		n += 2

		signer, count := unpackBytes(record[n:])
		if count < 0 {
			return nil, fault.ErrNotTransactionPack
		}
		if 0 != len(signer) {
			in.Signer = account.PublicKey(signer)
		}
		n += count
	}

	outCount, outOffset := util.ClippedVarint64(record[n:], 0, 8192)
	if 0 == outOffset {
		return nil, fault.ErrNotTransactionPack
	}
	n += outOffset

	tx.Out = make([]TxOut, outCount)
	for i := 0; i < outCount; i += 1 {
		out := &tx.Out[i]

		value, count := util.FromUint64LE(record[n:])
		if 0 == count {
			return nil, fault.ErrNotTransactionPack
		}
		out.Value = int64(value)
		n += count

		s, count := unpackBytes(record[n:])
		if count < 0 {
			return nil, fault.ErrNotTransactionPack
		}
		if 0 != len(s) {
			out.Script = script.Script(s)
		}
		n += count
	}

	if n != len(record) {
		return nil, fault.ErrNotTransactionPack
	}
	return tx, nil
}

// append a byte string prefixed by its Varint64 length
func appendBytes(buffer []byte, data []byte) []byte {
	buffer = append(buffer, util.ToVarint64(uint64(len(data)))...)
	return append(buffer, data...)
}

// read a Varint64 length prefixed byte string
//
// returns a negative count on truncation
func unpackBytes(buffer []byte) ([]byte, int) {
	length, offset := util.FromVarint64(buffer)
	if 0 == offset || length > uint64(len(buffer)) {
		return nil, -1
	}
	if uint64(len(buffer)) < uint64(offset)+length {
		return nil, -1
	}
	data := make([]byte, length)
	copy(data, buffer[offset:uint64(offset)+length])
	return data, offset + int(length)
}
