// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package script_test

import (
	"bytes"
	"testing"

	"github.com/marmarachain/marmara/script"
)

var (
	keyOne = bytes.Repeat([]byte{0x02}, 33)
	keyTwo = bytes.Repeat([]byte{0x03}, 33)
)

func TestP2PKH(t *testing.T) {
	s := script.P2PKH(keyOne)

	if !s.IsP2PKH() {
		t.Fatal("template not recognised")
	}
	if !s.PaysToPublicKey(keyOne) {
		t.Error("does not pay to its own key")
	}
	if s.PaysToPublicKey(keyTwo) {
		t.Error("pays to a foreign key")
	}
	if s.IsPayToCryptoCondition() {
		t.Error("P2PKH detected as crypto-condition")
	}
}

func TestOpReturn(t *testing.T) {
	payloads := [][]byte{
		[]byte{0xEF, 'B', 1},
		bytes.Repeat([]byte{0x55}, 200), // forces the pushdata1 form
	}

	for i, payload := range payloads {
		s := script.OpReturn(payload)
		back := s.OpReturnData()
		if !bytes.Equal(payload, back) {
			t.Errorf("%d: data round-trip failed: %x != %x", i, payload, back)
		}
	}

	if nil != script.P2PKH(keyOne).OpReturnData() {
		t.Error("P2PKH yielded op return data")
	}
}

func TestCC1of2(t *testing.T) {
	data := []byte{0xEF, 'K', 1, 0xAA, 0xBB}

	s := script.CC1of2(0xEF, keyOne, keyTwo, data)

	if !s.IsPayToCryptoCondition() {
		t.Fatal("condition not recognised")
	}
	if 0xEF != s.Eval() {
		t.Errorf("wrong eval: %x", s.Eval())
	}

	keys := s.ConditionPublicKeys()
	if 2 != len(keys) {
		t.Fatalf("wrong key count: %d", len(keys))
	}
	if !bytes.Equal(keyOne, keys[0]) || !bytes.Equal(keyTwo, keys[1]) {
		t.Error("keys do not round-trip")
	}

	if !bytes.Equal(data, s.ConditionData()) {
		t.Errorf("data does not round-trip: %x", s.ConditionData())
	}

	bare := script.CC1of2(0xEF, keyOne, keyTwo, nil)
	if nil != bare.ConditionData() {
		t.Error("bare condition yielded data")
	}
	if !bare.Equal(s.WithoutConditionData()) {
		t.Error("stripping data does not yield the bare condition")
	}
}
