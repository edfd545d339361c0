// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"

	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/ledger"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/transaction"
)

// ChainStore - database backed implementation of ledger.Store
type ChainStore struct{}

// key names in the chain pool
var (
	heightKey = []byte("height")
	mtpKey    = []byte("mtp")
)

var _ ledger.Store = (*ChainStore)(nil)

// Store - access the database as a ledger store
func Store() *ChainStore {
	return &ChainStore{}
}

// StoreTransaction - index a confirmed transaction and mark the
// outputs it spends
func (s *ChainStore) StoreTransaction(tx *transaction.Transaction, blockHash merkle.Digest, height int32) merkle.Digest {
	txid := tx.TxId()

	value := make([]byte, 0, merkle.DigestLength+4+64)
	value = append(value, blockHash[:]...)
	value = appendUint32(value, uint32(height))
	value = append(value, tx.Pack()...)
	Pool.Transactions.Put(txid[:], value)

	if !tx.IsCoinBase() {
		for i := range tx.In {
			prevOut := &tx.In[i].PrevOut

			spend := make([]byte, 0, merkle.DigestLength+8)
			spend = append(spend, txid[:]...)
			spend = appendUint32(spend, uint32(i))
			spend = appendUint32(spend, uint32(height))
			Pool.Spends.Put(outPointKey(prevOut.TxId, prevOut.N), spend)
		}
	}
	return txid
}

// SetTip - record the chain tip
func (s *ChainStore) SetTip(height int32, medianTime uint32) {
	Pool.Chain.Put(heightKey, appendUint32(nil, uint32(height)))
	Pool.Chain.Put(mtpKey, appendUint32(nil, medianTime))
}

// GetTx - load a transaction, ledger.Store interface
func (s *ChainStore) GetTx(txid merkle.Digest) (*transaction.Transaction, merkle.Digest, error) {
	value := Pool.Transactions.Get(txid[:])
	if nil == value || len(value) < merkle.DigestLength+4 {
		return nil, merkle.Digest{}, fault.ErrTransactionNotFound
	}

	var blockHash merkle.Digest
	copy(blockHash[:], value[:merkle.DigestLength])

	tx, err := transaction.Packed(value[merkle.DigestLength+4:]).Unpack()
	if nil != err {
		return nil, merkle.Digest{}, err
	}
	return tx, blockHash, nil
}

// SpentOf - resolve the spender of an output, ledger.Store interface
func (s *ChainStore) SpentOf(txid merkle.Digest, n uint32) (ledger.Spend, error) {
	value := Pool.Spends.Get(outPointKey(txid, n))
	if nil == value || merkle.DigestLength+8 != len(value) {
		return ledger.Spend{}, fault.ErrOutputNotSpent
	}

	var spend ledger.Spend
	copy(spend.TxId[:], value[:merkle.DigestLength])
	spend.Vin = int(binary.LittleEndian.Uint32(value[merkle.DigestLength:]))
	spend.Height = int32(binary.LittleEndian.Uint32(value[merkle.DigestLength+4:]))
	return spend, nil
}

// UtxoValue - value of an unspent confirmed output, ledger.Store interface
func (s *ChainStore) UtxoValue(txid merkle.Digest, n uint32) (int64, bool) {
	tx, blockHash, err := s.GetTx(txid)
	if nil != err || blockHash.IsEmpty() {
		return 0, false
	}
	if int(n) >= len(tx.Out) {
		return 0, false
	}
	if Pool.Spends.Has(outPointKey(txid, n)) {
		return 0, false
	}
	return tx.Out[n].Value, true
}

// CurrentHeight - height of the chain tip, ledger.Store interface
func (s *ChainStore) CurrentHeight() int32 {
	value := Pool.Chain.Get(heightKey)
	if 4 != len(value) {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(value))
}

// TipMedianTime - median time past of the tip, ledger.Store interface
func (s *ChainStore) TipMedianTime() uint32 {
	value := Pool.Chain.Get(mtpKey)
	if 4 != len(value) {
		return 0
	}
	return binary.LittleEndian.Uint32(value)
}

func outPointKey(txid merkle.Digest, n uint32) []byte {
	key := make([]byte, 0, merkle.DigestLength+4)
	key = append(key, txid[:]...)
	return appendUint32(key, n)
}

func appendUint32(buffer []byte, value uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, value)
	return append(buffer, b...)
}
