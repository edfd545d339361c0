// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"github.com/btcsuite/btcd/btcec"

	"github.com/marmarachain/marmara/merkle"
)

// TxidPublicKey - deterministic hash-to-point derivation of a public
// key from a transaction id
//
// the X coordinate starts as the txid itself; the last byte is
// incremented until the result lies on the curve, so every node
// derives the identical key and nobody knows its private half
func TxidPublicKey(txid merkle.Digest) PublicKey {
	k := make(PublicKey, KeyLength)
	k[0] = 0x02
	copy(k[1:], txid[:])

	for i := 0; i < 256; i += 1 {
		if _, err := btcec.ParsePubKey(k, btcec.S256()); nil == err {
			return k
		}
		k[KeyLength-1] += 1
	}

	// every X candidate failed in 256 tweaks: probability ~2^-256
	panic("account: txid public key derivation failed")
}
