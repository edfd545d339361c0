// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package constants - consensus significant values
//
// every value here is part of the network rules: changing any of them
// on a running chain is a hard fork
package constants

import (
	"math"
)

// EvalCode - the marmara contract evaluation code, first byte of
// every opret
const EvalCode byte = 0xEF

// opret versions
const (
	OpretVersionAny     byte = 0
	OpretVersionDefault byte = 1
	OpretVersionLoop12  byte = 2
)

// fixed vout positions
const (
	BatonVout      = 0
	LoopMarkerVout = 1
	RequestVout    = 0
	OpenCloseVout  = 3
	SettleVout     = 0
)

// fixed amounts in base units
const (
	ActivatedMarkerAmount int64 = 5000
	BatonAmount           int64 = 10000
	CreateTxAmount        int64 = 2 * BatonAmount
	LoopMarkerAmount      int64 = 10000
	OpenMarkerAmount      int64 = 10000
	RequestTxAmount       int64 = 10000
)

// loop arithmetic
const (
	GroupSize = 60

	// absorbs the rounding of amount/(N+1) share splits
	LoopTolerance int64 = 100
)

// V2LockHeight - sentinel unlock height meaning "lock to even"
const V2LockHeight int32 = math.MaxInt32 - 1

// limits, current rules
const (
	CCMaxVins    = 1024
	MaxEndorsers = 1000

	// one year of one minute blocks
	DisputeExpiresOffset int32 = 1 * 365 * 24 * 60
)

// limits, rules before the consensus updates of 2020
const (
	LegacyMaxVins              = CCMaxVins / 2
	LegacyMaxEndorsers         = 64
	LegacyDisputeExpiresOffset = 3 * 365 * 24 * 60
)

// consensus update activation points
const (
	// first update, fixing consensus issues, March 2020
	PoSImprovementsHeight int32 = 110777

	// second update (unlock/new loops), June 2020
	June2020UpdateTimestamp uint32 = 1593007200
)
