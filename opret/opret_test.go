// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package opret_test

import (
	"bytes"
	"testing"

	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/currency"
	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/opret"
	"github.com/marmarachain/marmara/util"
)

var (
	testKey    = account.PublicKey(append([]byte{0x02}, bytes.Repeat([]byte{0x11}, 32)...))
	testCreate = merkle.NewDigest([]byte("create tx"))
)

// pin the exact wire layout of the create opret
func TestCreateLoopLayout(t *testing.T) {
	packed, err := opret.EncodeCreateLoop(constants.OpretVersionDefault, testKey, 1000000, 200, currency.Marmara)
	if nil != err {
		t.Fatalf("encode error: %s", err)
	}

	expected := []byte{0xef, 0x42, 0x01}
	expected = append(expected, testKey...)
	expected = append(expected,
		0x40, 0x42, 0x0f, 0x00, 0x00, 0x00, 0x00, 0x00, // amount
		0xc8, 0x00, 0x00, 0x00, // matures
		0x07, 'M', 'A', 'R', 'M', 'A', 'R', 'A', // currency
	)

	if !bytes.Equal(packed, expected) {
		t.Errorf("pack record: %x  expected: %x", packed, expected)
		t.Errorf("*** GENERATED Packed:\n%s", util.FormatBytes("expected", packed))
		t.Fatal("fatal error")
	}
}

// ensures that encode->decode returns the same original value for
// every loop function id
func TestLoopRoundTrip(t *testing.T) {

	issuerParams := opret.IssuerParams{
		AutoSettlement: true,
		AutoInsurance:  false,
		AvalCount:      2,
		DisputeExpires: 525600,
		EscrowOn:       false,
		BlockageAmount: 5555,
	}

	items := []struct {
		name   string
		funcID opret.FuncID
		pack   func() ([]byte, error)
		check  func(t *testing.T, ld *opret.LoopData)
	}{
		{
			name:   "create",
			funcID: opret.CreateLoop,
			pack: func() ([]byte, error) {
				return opret.EncodeCreateLoop(1, testKey, 1000000, 200, currency.Marmara)
			},
			check: func(t *testing.T, ld *opret.LoopData) {
				if !ld.HasCreate {
					t.Error("create flag not set")
				}
				if 1000000 != ld.Amount || 200 != ld.Matures || currency.Marmara != ld.Currency {
					t.Errorf("creation data mismatch: %+v", ld)
				}
			},
		},
		{
			name:   "request",
			funcID: opret.Request,
			pack: func() ([]byte, error) {
				return opret.EncodeRequest(1, testCreate, testKey)
			},
			check: func(t *testing.T, ld *opret.LoopData) {
				if testCreate != ld.CreateTxId {
					t.Error("create txid mismatch")
				}
			},
		},
		{
			name:   "issue",
			funcID: opret.Issue,
			pack: func() ([]byte, error) {
				return opret.EncodeIssue(1, testCreate, testKey, issuerParams)
			},
			check: func(t *testing.T, ld *opret.LoopData) {
				if !ld.HasIssuance {
					t.Error("issuance flag not set")
				}
				if issuerParams != ld.Params {
					t.Errorf("issuer params mismatch: %+v", ld.Params)
				}
			},
		},
		{
			name:   "transfer",
			funcID: opret.Transfer,
			pack: func() ([]byte, error) {
				return opret.EncodeTransfer(1, testCreate, testKey, 3)
			},
			check: func(t *testing.T, ld *opret.LoopData) {
				if 3 != ld.AvalCount {
					t.Errorf("aval count mismatch: %d", ld.AvalCount)
				}
			},
		},
		{
			name:   "locked",
			funcID: opret.Locked,
			pack: func() ([]byte, error) {
				return opret.EncodeLocked(1, testCreate, testKey)
			},
			check: func(t *testing.T, ld *opret.LoopData) {
				if testCreate != ld.CreateTxId {
					t.Error("create txid mismatch")
				}
			},
		},
		{
			name:   "settle",
			funcID: opret.Settle,
			pack: func() ([]byte, error) {
				return opret.EncodeSettle(opret.Settle, 1, testCreate, testKey, 0)
			},
			check: func(t *testing.T, ld *opret.LoopData) {
				if !ld.HasSettlement || 0 != ld.Remaining {
					t.Errorf("settlement data mismatch: %+v", ld)
				}
			},
		},
		{
			name:   "settle partial",
			funcID: opret.SettlePartial,
			pack: func() ([]byte, error) {
				return opret.EncodeSettle(opret.SettlePartial, 1, testCreate, testKey, 250000)
			},
			check: func(t *testing.T, ld *opret.LoopData) {
				if !ld.HasSettlement || 250000 != ld.Remaining {
					t.Errorf("settlement data mismatch: %+v", ld)
				}
			},
		},
	}

	for _, item := range items {
		packed, err := item.pack()
		if nil != err {
			t.Fatalf("%s: encode error: %s", item.name, err)
		}

		ld := opret.NewLoopData()
		funcID, err := opret.DecodeLoop(packed, constants.OpretVersionDefault, &ld)
		if nil != err {
			t.Fatalf("%s: decode error: %s", item.name, err)
		}
		if item.funcID != funcID {
			t.Fatalf("%s: funcid: %q  expected: %q", item.name, funcID, item.funcID)
		}
		if opret.CreateLoop != funcID && testCreate != ld.CreateTxId {
			t.Errorf("%s: create txid not recovered", item.name)
		}
		if !testKey.Equal(ld.PublicKey) {
			t.Errorf("%s: public key not recovered", item.name)
		}
		item.check(t, &ld)
	}
}

func TestActivatedRoundTrip(t *testing.T) {
	for _, funcID := range []opret.FuncID{opret.Coinbase, opret.Coinbase3x, opret.Activated, opret.ActivatedInitial, opret.Pool} {
		packed, err := opret.EncodeActivated(funcID, 1, testKey, 100, 164)
		if nil != err {
			t.Fatalf("%q: encode error: %s", funcID, err)
		}

		a, err := opret.DecodeActivated(packed)
		if nil != err {
			t.Fatalf("%q: decode error: %s", funcID, err)
		}
		if funcID != a.FuncID || 100 != a.Height || 164 != a.UnlockHeight || !testKey.Equal(a.PublicKey) {
			t.Errorf("%q: data mismatch: %+v", funcID, a)
		}

		// a loop decode must reject an activated opret
		ld := opret.NewLoopData()
		if _, err := opret.DecodeLoop(packed, constants.OpretVersionAny, &ld); nil == err {
			t.Errorf("%q: loop decode accepted an activated opret", funcID)
		}
	}
}

func TestRelease(t *testing.T) {
	packed := opret.EncodeRelease(1)
	if err := opret.DecodeRelease(packed); nil != err {
		t.Fatalf("decode error: %s", err)
	}
}

// merging create then issue data into one loop record
func TestLoopDataMerge(t *testing.T) {
	createOpret, _ := opret.EncodeCreateLoop(1, testKey, 1000000, 200, currency.Marmara)
	issueOpret, _ := opret.EncodeIssue(1, testCreate, testKey, opret.DefaultIssuerParams())

	ld := opret.NewLoopData()
	if _, err := opret.DecodeLoop(createOpret, constants.OpretVersionAny, &ld); nil != err {
		t.Fatalf("create decode error: %s", err)
	}
	if _, err := opret.DecodeLoop(issueOpret, constants.OpretVersionAny, &ld); nil != err {
		t.Fatalf("issue decode error: %s", err)
	}

	if !ld.HasCreate || !ld.HasIssuance {
		t.Fatal("merge flags wrong")
	}
	// creation values must survive the issuance merge
	if 1000000 != ld.Amount || 200 != ld.Matures {
		t.Errorf("creation data overwritten: %+v", ld)
	}
	if opret.Issue != ld.FuncID {
		t.Errorf("funcid not updated: %q", ld.FuncID)
	}
}

// bad headers, versions and truncations must error without panic
func TestDecodeRejects(t *testing.T) {
	good, _ := opret.EncodeIssue(1, testCreate, testKey, opret.DefaultIssuerParams())

	// truncations
	for n := 0; n < len(good)-1; n += 1 {
		ld := opret.NewLoopData()
		if _, err := opret.DecodeLoop(good[:n], constants.OpretVersionAny, &ld); nil == err {
			t.Errorf("truncation to %d bytes accepted", n)
		}
	}

	// foreign eval code
	foreign := append([]byte{}, good...)
	foreign[0] = 0xE4
	ld := opret.NewLoopData()
	if _, err := opret.DecodeLoop(foreign, constants.OpretVersionAny, &ld); fault.ErrNotMarmaraOpret != err {
		t.Errorf("unexpected error: %v", err)
	}

	// unknown funcid
	unknown := append([]byte{}, good...)
	unknown[1] = 'Z'
	if _, err := opret.DecodeLoop(unknown, constants.OpretVersionAny, &ld); fault.ErrNotLoopOpret != err {
		t.Errorf("unexpected error: %v", err)
	}

	// unknown version
	version := append([]byte{}, good...)
	version[2] = 9
	if _, err := opret.DecodeLoop(version, constants.OpretVersionAny, &ld); fault.ErrOpretVersion != err {
		t.Errorf("unexpected error: %v", err)
	}

	// trailing rubbish
	trailing := append(append([]byte{}, good...), 0x00)
	if _, err := opret.DecodeLoop(trailing, constants.OpretVersionAny, &ld); fault.ErrOpretTrailingBytes != err {
		t.Errorf("unexpected error: %v", err)
	}
}
