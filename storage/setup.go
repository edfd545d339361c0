// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/marmarachain/marmara/fault"
)

// exported storage pools, one per key prefix
type pools struct {
	Transactions *PoolHandle // prefix: T
	Spends       *PoolHandle // prefix: S
	Chain        *PoolHandle // prefix: C
}

// Pool - the set of exported pools
var Pool pools

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// holds the database handle
var poolData struct {
	sync.RWMutex
	db    *leveldb.DB
	log   *logger.L
	cache Cache
}

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Initialise - open up the database connection
//
// this must be called before any pool is accessed
func Initialise(database string, readOnly bool) error {
	poolData.Lock()
	defer poolData.Unlock()

	if nil != poolData.db {
		return fault.ErrAlreadyInitialised
	}

	poolData.log = logger.New("storage")
	poolData.log.Info("starting…")

	db, version, err := getDB(database, readOnly)
	if nil != err {
		return err
	}

	// ensure no database downgrade
	if version > currentDBVersion {
		poolData.log.Criticalf("database version: %d > current version: %d", version, currentDBVersion)
		db.Close()
		return fault.ErrAlreadyInitialised
	}
	if 0 == version && !readOnly {
		if err := putVersion(db, currentDBVersion); nil != err {
			db.Close()
			return err
		}
	}

	poolData.db = db
	poolData.cache = newCache()

	Pool.Transactions = &PoolHandle{prefix: 'T'}
	Pool.Spends = &PoolHandle{prefix: 'S'}
	Pool.Chain = &PoolHandle{prefix: 'C'}

	return nil
}

// Finalise - close the database connection
func Finalise() {
	poolData.Lock()
	defer poolData.Unlock()

	if nil == poolData.db {
		return
	}

	poolData.log.Info("shutting down…")
	poolData.cache.Clear()
	poolData.db.Close()
	poolData.db = nil

	Pool.Transactions = nil
	Pool.Spends = nil
	Pool.Chain = nil

	poolData.log.Flush()
}

// open the database and read its version record
func getDB(name string, readOnly bool) (*leveldb.DB, int, error) {
	opt := &ldb_opt.Options{
		ErrorIfExist:   false,
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	}

	db, err := leveldb.OpenFile(name, opt)
	if nil != err {
		return nil, 0, err
	}

	versionValue, err := db.Get(versionKey, nil)
	if leveldb.ErrNotFound == err {
		return db, 0, nil
	} else if nil != err {
		db.Close()
		return nil, 0, err
	}

	if 4 != len(versionValue) {
		db.Close()
		return nil, 0, fault.ErrNotInitialised
	}

	version := int(versionValue[0])<<24 + int(versionValue[1])<<16 + int(versionValue[2])<<8 + int(versionValue[3])
	return db, version, nil
}

// write the version record
func putVersion(db *leveldb.DB, version int) error {
	versionValue := make([]byte, 4)
	versionValue[0] = byte(version >> 24)
	versionValue[1] = byte(version >> 16)
	versionValue[2] = byte(version >> 8)
	versionValue[3] = byte(version)
	return db.Put(versionKey, versionValue, nil)
}
