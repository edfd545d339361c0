// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package marmara - the credit loop consensus core
//
// a credit loop is a chain of endorsed, time locked obligations whose
// coins circulate as collateral, can be staked and are settled at
// maturity:
//
//   create → issue → transfer* → settle | settle-partial
//
// the package supplies the four consensus entry points the host
// daemon calls:
//
//   Validate        - verdict on any marmara tagged transaction
//   ValidateStakeTx - acceptance of proof of stake transactions
//   GetBaton        - credit loop reconstruction
//   CreateSettlement - assembly of settlement transactions
//
// every rule here is part of network consensus: a divergence forks
// the chain
package marmara
