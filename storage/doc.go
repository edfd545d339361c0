// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintains a LevelDB database with a single prefixed key space:
//
//   T<txid>        → block digest ‖ LE32 height ‖ packed transaction
//   S<txid><LE32>  → spender txid ‖ LE32 vin ‖ LE32 height
//   C"height"      → LE32 chain tip height
//   C"mtp"         → LE32 tip median time past
//
// the pools satisfy the ledger.Store contract so the consensus core
// can run directly against the database; a small write-through cache
// keeps recently touched records off the disk path
package storage
