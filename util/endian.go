// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"encoding/binary"
)

// ToUint32LE - append a 32 bit value as little endian bytes
func ToUint32LE(buffer []byte, value uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, value)
	return append(buffer, b...)
}

// ToUint64LE - append a 64 bit value as little endian bytes
func ToUint64LE(buffer []byte, value uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, value)
	return append(buffer, b...)
}

// FromUint32LE - read a little endian 32 bit value
//
// returns zero count if the buffer is truncated
func FromUint32LE(buffer []byte) (uint32, int) {
	if len(buffer) < 4 {
		return 0, 0
	}
	return binary.LittleEndian.Uint32(buffer), 4
}

// FromUint64LE - read a little endian 64 bit value
//
// returns zero count if the buffer is truncated
func FromUint64LE(buffer []byte) (uint64, int) {
	if len(buffer) < 8 {
		return 0, 0
	}
	return binary.LittleEndian.Uint64(buffer), 8
}
