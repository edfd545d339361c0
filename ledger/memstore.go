// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sync"

	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/transaction"
)

// MemStore - a self contained chain view for tests and tools
//
// transactions are indexed as they are added; adding a confirmed
// transaction marks all of its previous outputs spent, so the spent
// index always mirrors what a real chain would hold
type MemStore struct {
	sync.RWMutex

	txs     map[merkle.Digest]*storedTx
	spends  map[transaction.OutPoint]Spend
	pool    map[merkle.Digest]struct{}
	height  int32
	tipTime uint32
}

type storedTx struct {
	tx        *transaction.Transaction
	blockHash merkle.Digest
	height    int32
}

// both ledger views are served
var _ Store = (*MemStore)(nil)
var _ MemPoolView = (*MemStore)(nil)

// NewMemStore - create an empty store
func NewMemStore() *MemStore {
	return &MemStore{
		txs:    make(map[merkle.Digest]*storedTx),
		spends: make(map[transaction.OutPoint]Spend),
		pool:   make(map[merkle.Digest]struct{}),
	}
}

// SetHeight - move the chain tip
func (m *MemStore) SetHeight(height int32, medianTime uint32) {
	m.Lock()
	defer m.Unlock()
	m.height = height
	m.tipTime = medianTime
}

// Confirm - store a transaction as confirmed at the current height
//
// previous outputs of its inputs become spent; a synthetic block
// digest derived from the txid stands in for the real block
func (m *MemStore) Confirm(tx *transaction.Transaction) merkle.Digest {
	m.Lock()
	defer m.Unlock()

	txid := tx.TxId()
	blockHash := merkle.NewDigest(append([]byte("block:"), txid[:]...))

	m.txs[txid] = &storedTx{
		tx:        tx,
		blockHash: blockHash,
		height:    m.height,
	}
	delete(m.pool, txid)

	if !tx.IsCoinBase() {
		for i := range tx.In {
			m.spends[tx.In[i].PrevOut] = Spend{
				TxId:   txid,
				Vin:    i,
				Height: m.height,
			}
		}
	}
	return txid
}

// AddToPool - store a transaction as mempool only
func (m *MemStore) AddToPool(tx *transaction.Transaction) merkle.Digest {
	m.Lock()
	defer m.Unlock()

	txid := tx.TxId()
	m.txs[txid] = &storedTx{tx: tx}
	m.pool[txid] = struct{}{}
	return txid
}

// Unspend - remove the record of an output's spend, for reorg
// simulation in tests
func (m *MemStore) Unspend(txid merkle.Digest, n uint32) {
	m.Lock()
	defer m.Unlock()
	delete(m.spends, transaction.OutPoint{TxId: txid, N: n})
}

// GetTx - load a transaction
func (m *MemStore) GetTx(txid merkle.Digest) (*transaction.Transaction, merkle.Digest, error) {
	m.RLock()
	defer m.RUnlock()

	stored, ok := m.txs[txid]
	if !ok {
		return nil, merkle.Digest{}, fault.ErrTransactionNotFound
	}
	return stored.tx, stored.blockHash, nil
}

// SpentOf - resolve the spender of an output
func (m *MemStore) SpentOf(txid merkle.Digest, n uint32) (Spend, error) {
	m.RLock()
	defer m.RUnlock()

	spend, ok := m.spends[transaction.OutPoint{TxId: txid, N: n}]
	if !ok {
		return Spend{}, fault.ErrOutputNotSpent
	}
	return spend, nil
}

// UtxoValue - value of an unspent confirmed output
func (m *MemStore) UtxoValue(txid merkle.Digest, n uint32) (int64, bool) {
	m.RLock()
	defer m.RUnlock()

	stored, ok := m.txs[txid]
	if !ok || stored.blockHash.IsEmpty() {
		return 0, false
	}
	if int(n) >= len(stored.tx.Out) {
		return 0, false
	}
	if _, spent := m.spends[transaction.OutPoint{TxId: txid, N: n}]; spent {
		return 0, false
	}
	return stored.tx.Out[n].Value, true
}

// CurrentHeight - height of the chain tip
func (m *MemStore) CurrentHeight() int32 {
	m.RLock()
	defer m.RUnlock()
	return m.height
}

// TipMedianTime - median time past of the chain tip
func (m *MemStore) TipMedianTime() uint32 {
	m.RLock()
	defer m.RUnlock()
	return m.tipTime
}

// Contains - mempool membership, MemPoolView interface
func (m *MemStore) Contains(txid merkle.Digest) bool {
	m.RLock()
	defer m.RUnlock()
	_, ok := m.pool[txid]
	return ok
}

// SpendsOutput - a pending transaction consumes the output,
// MemPoolView interface
func (m *MemStore) SpendsOutput(txid merkle.Digest, n uint32) bool {
	m.RLock()
	defer m.RUnlock()

	target := transaction.OutPoint{TxId: txid, N: n}
	for pending := range m.pool {
		tx := m.txs[pending].tx
		for i := range tx.In {
			if target == tx.In[i].PrevOut {
				return true
			}
		}
	}
	return false
}
