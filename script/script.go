// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package script - output script encodings
//
// three shapes of output script exist on a marmara chain:
//
//   pay to pubkey hash   76 a9 14 <hash160> 88 ac
//   null data            6a <push opret>
//   crypto-condition     fc <eval> <m> <n> <n × 33 byte pubkey> [da <varint len> <data>]
//
// the crypto-condition form is the canonical serialisation of a
// 1-of-n threshold condition with an optional embedded data blob (the
// cc carried opret)
package script

import (
	"bytes"
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"

	"github.com/marmarachain/marmara/util"
)

// Script - a raw output script
type Script []byte

// script leading bytes
const (
	opDup         = 0x76
	opHash160     = 0xa9
	opEqualVerify = 0x88
	opCheckSig    = 0xac
	opReturn      = 0x6a
	opPushData1   = 0x4c

	tagCryptoCondition = 0xfc
	tagConditionData   = 0xda
)

// sizes
const (
	Hash160Length       = ripemd160.Size
	CompressedKeyLength = 33
)

// Hash160 - RIPEMD160(SHA256(data)), the standard short hash used in
// output scripts and addresses
func Hash160(data []byte) []byte {
	s := sha256.Sum256(data)
	r := ripemd160.New()
	r.Write(s[:])
	return r.Sum(nil)
}

// P2PKH - build a pay-to-pubkey-hash script for a compressed pubkey
func P2PKH(publicKey []byte) Script {
	s := make(Script, 0, 25)
	s = append(s, opDup, opHash160, Hash160Length)
	s = append(s, Hash160(publicKey)...)
	s = append(s, opEqualVerify, opCheckSig)
	return s
}

// IsP2PKH - check a script is pay-to-pubkey-hash
func (s Script) IsP2PKH() bool {
	return 25 == len(s) &&
		opDup == s[0] &&
		opHash160 == s[1] &&
		Hash160Length == s[2] &&
		opEqualVerify == s[23] &&
		opCheckSig == s[24]
}

// PaysToPublicKey - check that a script is the P2PKH template for a
// specific compressed pubkey
func (s Script) PaysToPublicKey(publicKey []byte) bool {
	return s.IsP2PKH() && bytes.Equal(s[3:23], Hash160(publicKey))
}

// OpReturn - build a null data script carrying a payload
func OpReturn(data []byte) Script {
	s := make(Script, 0, 2+len(data))
	s = append(s, opReturn)
	if len(data) < int(opPushData1) {
		s = append(s, byte(len(data)))
	} else {
		s = append(s, opPushData1, byte(len(data)))
	}
	return append(s, data...)
}

// OpReturnData - extract the payload of a null data script
//
// nil if the script is not null data or is malformed
func (s Script) OpReturnData() []byte {
	if len(s) < 2 || opReturn != s[0] {
		return nil
	}
	n := 2
	length := int(s[1])
	if opPushData1 == s[1] {
		if len(s) < 3 {
			return nil
		}
		length = int(s[2])
		n = 3
	}
	if len(s) != n+length {
		return nil
	}
	return s[n:]
}

// CC1of2 - build a 1-of-2 threshold crypto-condition script
//
// data is the optional cc carried opret; nil omits the data segment
func CC1of2(eval byte, publicKey1 []byte, publicKey2 []byte, data []byte) Script {
	s := make(Script, 0, 4+2*CompressedKeyLength+2+len(data))
	s = append(s, tagCryptoCondition, eval, 1, 2)
	s = append(s, publicKey1...)
	s = append(s, publicKey2...)
	if 0 != len(data) {
		s = append(s, tagConditionData)
		s = append(s, util.ToVarint64(uint64(len(data)))...)
		s = append(s, data...)
	}
	return s
}

// IsPayToCryptoCondition - check for the crypto-condition shape
func (s Script) IsPayToCryptoCondition() bool {
	return len(s) >= 4 && tagCryptoCondition == s[0]
}

// Eval - the evaluation code of a crypto-condition script, zero if
// the script is not a crypto-condition
func (s Script) Eval() byte {
	if !s.IsPayToCryptoCondition() {
		return 0
	}
	return s[1]
}

// ConditionPublicKeys - the pubkeys of a 1-of-n condition in script
// order, nil if malformed
func (s Script) ConditionPublicKeys() [][]byte {
	if !s.IsPayToCryptoCondition() {
		return nil
	}
	n := int(s[3])
	if len(s) < 4+n*CompressedKeyLength {
		return nil
	}
	keys := make([][]byte, n)
	for i := 0; i < n; i += 1 {
		offset := 4 + i*CompressedKeyLength
		keys[i] = s[offset : offset+CompressedKeyLength]
	}
	return keys
}

// ConditionData - the embedded data blob of a crypto-condition
// script, nil if absent or malformed
func (s Script) ConditionData() []byte {
	if !s.IsPayToCryptoCondition() {
		return nil
	}
	n := int(s[3])
	offset := 4 + n*CompressedKeyLength
	if len(s) <= offset || tagConditionData != s[offset] {
		return nil
	}
	length, count := util.FromVarint64(s[offset+1:])
	if 0 == count {
		return nil
	}
	start := offset + 1 + count
	if len(s) != start+int(length) {
		return nil
	}
	return s[start:]
}

// WithoutConditionData - a copy of a crypto-condition script with the
// data segment stripped
func (s Script) WithoutConditionData() Script {
	if !s.IsPayToCryptoCondition() {
		return s
	}
	n := int(s[3])
	offset := 4 + n*CompressedKeyLength
	if len(s) <= offset {
		return s
	}
	result := make(Script, offset)
	copy(result, s[:offset])
	return result
}

// Equal - byte equality of scripts
func (s Script) Equal(other Script) bool {
	return bytes.Equal(s, other)
}
