// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package account - compressed secp256k1 public keys and their
// address forms
package account

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec"
	"github.com/mr-tron/base58"

	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/script"
)

// KeyLength - number of bytes in a compressed public key
const KeyLength = 33

// AddressVersion - base58check version byte for pay-to-pubkey-hash
// addresses on marmara chains
const AddressVersion byte = 60

// PublicKey - a compressed secp256k1 public key
type PublicKey []byte

// the well known module public key: the second half of every 1-of-2
// condition; its private key is public knowledge so it can never be
// relied on as a spender
const globalKeyHex = "03afc5be570d0ff419425cfcc580cc762ab82baad88c148f5b028d7db7bfeee61d"

var globalKey PublicKey

func init() {
	k, err := hex.DecodeString(globalKeyHex)
	if nil != err || KeyLength != len(k) {
		panic("account: invalid global key constant")
	}
	globalKey = k
}

// GlobalKey - the module public key
func GlobalKey() PublicKey {
	return globalKey
}

// PublicKeyFromBytes - convert and validate a byte slice
func PublicKeyFromBytes(buffer []byte) (PublicKey, error) {
	if KeyLength != len(buffer) {
		return nil, fault.ErrNotPublicKey
	}
	if _, err := btcec.ParsePubKey(buffer, btcec.S256()); nil != err {
		return nil, fault.ErrNotPublicKey
	}
	k := make(PublicKey, KeyLength)
	copy(k, buffer)
	return k, nil
}

// PublicKeyFromHexString - convert and validate a hex string
func PublicKeyFromHexString(s string) (PublicKey, error) {
	buffer, err := hex.DecodeString(s)
	if nil != err {
		return nil, fault.ErrNotPublicKey
	}
	return PublicKeyFromBytes(buffer)
}

// IsValid - check the key is a well formed curve point
func (k PublicKey) IsValid() bool {
	if KeyLength != len(k) {
		return false
	}
	_, err := btcec.ParsePubKey(k, btcec.S256())
	return nil == err
}

// IsGlobal - check against the module public key
func (k PublicKey) IsGlobal() bool {
	return bytes.Equal(k, globalKey)
}

// Equal - byte equality of keys
func (k PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(k, other)
}

// String - hex form for display
func (k PublicKey) String() string {
	return hex.EncodeToString(k)
}

// MarshalText - hex form for JSON
func (k PublicKey) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(len(k)))
	hex.Encode(buffer, k)
	return buffer, nil
}

// UnmarshalText - hex form from JSON
func (k *PublicKey) UnmarshalText(s []byte) error {
	buffer := make([]byte, hex.DecodedLen(len(s)))
	if _, err := hex.Decode(buffer, s); nil != err {
		return err
	}
	*k = buffer
	return nil
}

// base58check of version byte + payload
func encodeAddress(payload []byte) string {
	buffer := make([]byte, 0, 1+len(payload)+4)
	buffer = append(buffer, AddressVersion)
	buffer = append(buffer, payload...)
	first := sha256.Sum256(buffer)
	second := sha256.Sum256(first[:])
	buffer = append(buffer, second[:4]...)
	return base58.Encode(buffer)
}

// Address - pay-to-pubkey-hash address of the key
func (k PublicKey) Address() string {
	return encodeAddress(script.Hash160(k))
}

// CC1of2Address - address of the 1-of-2 condition combining the
// module key with a second key
//
// the address covers only the condition itself, never the embedded
// data blob, so every output of one loop shares one address
func CC1of2Address(eval byte, publicKey2 PublicKey) string {
	condition := script.CC1of2(eval, globalKey, publicKey2, nil)
	return encodeAddress(script.Hash160(condition))
}
