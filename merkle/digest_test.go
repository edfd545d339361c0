// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle_test

import (
	"fmt"
	"testing"

	"github.com/marmarachain/marmara/merkle"
)

// hashing "abc" twice with SHA2-256
//
// echo -n abc | sha256sum | xxd -r -p | sha256sum
func TestDigest(t *testing.T) {
	d := merkle.NewDigest([]byte("abc"))

	expected := "58636c3ec08c12d55aedda056d602d5bcca72d8df6a69b519b72d32dc2428b4f"

	// string form is big endian so reverse the sum
	var e merkle.Digest
	n, err := fmt.Sscan(expected, &e)
	if nil != err {
		t.Fatalf("hex to digest error: %s", err)
	}
	if 1 != n {
		t.Fatalf("scanned %d items expected to scan 1", n)
	}

	if d != e {
		t.Errorf("digest: %#v  expected: %#v", d, e)
	}
}

// round-trip the text marshalling
func TestMarshalText(t *testing.T) {
	d := merkle.NewDigest([]byte("hello world"))

	buffer, err := d.MarshalText()
	if nil != err {
		t.Fatalf("marshal text error: %s", err)
	}

	var e merkle.Digest
	err = e.UnmarshalText(buffer)
	if nil != err {
		t.Fatalf("unmarshal text error: %s", err)
	}

	if d != e {
		t.Errorf("digest: %#v  expected: %#v", d, e)
	}
}

func TestIsEmpty(t *testing.T) {
	var zero merkle.Digest
	if !zero.IsEmpty() {
		t.Error("zero digest must be empty")
	}
	if merkle.NewDigest(nil).IsEmpty() {
		t.Error("digest of empty data must not be the zero digest")
	}
}
