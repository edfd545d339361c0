// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package opret

import (
	"github.com/marmarachain/marmara/account"
	"github.com/marmarachain/marmara/constants"
	"github.com/marmarachain/marmara/currency"
	"github.com/marmarachain/marmara/fault"
	"github.com/marmarachain/marmara/merkle"
	"github.com/marmarachain/marmara/util"
)

// cursor over an opret payload
type reader struct {
	buffer []byte
	n      int
}

func (r *reader) publicKey() (account.PublicKey, error) {
	if len(r.buffer) < r.n+account.KeyLength {
		return nil, fault.ErrOpretTruncated
	}
	k := make(account.PublicKey, account.KeyLength)
	copy(k, r.buffer[r.n:r.n+account.KeyLength])
	r.n += account.KeyLength
	return k, nil
}

func (r *reader) digest() (merkle.Digest, error) {
	var d merkle.Digest
	if len(r.buffer) < r.n+merkle.DigestLength {
		return d, fault.ErrOpretTruncated
	}
	copy(d[:], r.buffer[r.n:r.n+merkle.DigestLength])
	r.n += merkle.DigestLength
	return d, nil
}

func (r *reader) int32() (int32, error) {
	value, count := util.FromUint32LE(r.buffer[r.n:])
	if 0 == count {
		return 0, fault.ErrOpretTruncated
	}
	r.n += count
	return int32(value), nil
}

func (r *reader) int64() (int64, error) {
	value, count := util.FromUint64LE(r.buffer[r.n:])
	if 0 == count {
		return 0, fault.ErrOpretTruncated
	}
	r.n += count
	return int64(value), nil
}

func (r *reader) bool() (bool, error) {
	if len(r.buffer) <= r.n {
		return false, fault.ErrOpretTruncated
	}
	flag := r.buffer[r.n]
	r.n += 1
	return 0 != flag, nil
}

func (r *reader) string() (string, error) {
	length, count := util.FromVarint64(r.buffer[r.n:])
	if 0 == count || length > uint64(len(r.buffer)) {
		return "", fault.ErrOpretTruncated
	}
	r.n += count
	if uint64(len(r.buffer)) < uint64(r.n)+length {
		return "", fault.ErrOpretTruncated
	}
	s := string(r.buffer[r.n : r.n+int(length)])
	r.n += int(length)
	return s, nil
}

func (r *reader) done() error {
	if r.n != len(r.buffer) {
		return fault.ErrOpretTrailingBytes
	}
	return nil
}

// check the three byte header, returning funcid and version
func splitHeader(data []byte) (FuncID, byte, error) {
	if len(data) < 3 {
		return 0, 0, fault.ErrOpretTooShort
	}
	if constants.EvalCode != data[0] {
		return 0, 0, fault.ErrNotMarmaraOpret
	}
	return FuncID(data[1]), data[2], nil
}

// DecodeActivated - parse a coinbase or activated opret (C, E, A, N, P)
func DecodeActivated(data []byte) (*ActivatedData, error) {
	funcID, version, err := splitHeader(data)
	if nil != err {
		return nil, err
	}
	if !funcID.IsActivated() {
		return nil, fault.ErrNotActivatedOpret
	}
	if constants.OpretVersionDefault != version {
		return nil, fault.ErrOpretVersion
	}

	r := &reader{buffer: data, n: 3}

	a := &ActivatedData{
		FuncID:  funcID,
		Version: version,
	}
	if a.PublicKey, err = r.publicKey(); nil != err {
		return nil, err
	}
	if a.Height, err = r.int32(); nil != err {
		return nil, err
	}
	if a.UnlockHeight, err = r.int32(); nil != err {
		return nil, err
	}
	if err = r.done(); nil != err {
		return nil, err
	}
	return a, nil
}

// DecodeLoop - parse a credit loop opret, merging fields into ld
//
// checkVersion restricts the accepted opret version; pass
// constants.OpretVersionAny to accept any known version.  returns the
// function id of the parsed opret
//
// fields of ld not supplied by this particular opret keep their
// previous values, allowing create and issuance data to be merged
// into one loop record
func DecodeLoop(data []byte, checkVersion byte, ld *LoopData) (FuncID, error) {
	funcID, version, err := splitHeader(data)
	if nil != err {
		return 0, err
	}

	switch checkVersion {
	case constants.OpretVersionAny:
		if constants.OpretVersionDefault != version && constants.OpretVersionLoop12 != version {
			return 0, fault.ErrOpretVersion
		}
	default:
		if checkVersion != version {
			return 0, fault.ErrOpretVersion
		}
	}

	r := &reader{buffer: data, n: 3}

	switch funcID {

	case CreateLoop:
		publicKey, err := r.publicKey()
		if nil != err {
			return 0, err
		}
		amount, err := r.int64()
		if nil != err {
			return 0, err
		}
		matures, err := r.int32()
		if nil != err {
			return 0, err
		}
		symbol, err := r.string()
		if nil != err {
			return 0, err
		}
		c, err := currency.FromString(symbol)
		if nil != err {
			return 0, err
		}
		if err := r.done(); nil != err {
			return 0, err
		}
		ld.FuncID = funcID
		ld.Version = version
		ld.PublicKey = publicKey
		ld.Amount = amount
		ld.Matures = matures
		ld.Currency = c
		ld.HasCreate = true
		return funcID, nil

	case Request, Locked:
		createTxId, err := r.digest()
		if nil != err {
			return 0, err
		}
		publicKey, err := r.publicKey()
		if nil != err {
			return 0, err
		}
		if err := r.done(); nil != err {
			return 0, err
		}
		ld.FuncID = funcID
		ld.Version = version
		ld.CreateTxId = createTxId
		ld.PublicKey = publicKey
		return funcID, nil

	case Issue:
		createTxId, err := r.digest()
		if nil != err {
			return 0, err
		}
		publicKey, err := r.publicKey()
		if nil != err {
			return 0, err
		}
		var params IssuerParams
		if params.AutoSettlement, err = r.bool(); nil != err {
			return 0, err
		}
		if params.AutoInsurance, err = r.bool(); nil != err {
			return 0, err
		}
		if params.AvalCount, err = r.int32(); nil != err {
			return 0, err
		}
		if params.DisputeExpires, err = r.int32(); nil != err {
			return 0, err
		}
		if params.EscrowOn, err = r.bool(); nil != err {
			return 0, err
		}
		if params.BlockageAmount, err = r.int64(); nil != err {
			return 0, err
		}
		if err := r.done(); nil != err {
			return 0, err
		}
		ld.FuncID = funcID
		ld.Version = version
		ld.CreateTxId = createTxId
		ld.PublicKey = publicKey
		ld.Params = params
		ld.AvalCount = params.AvalCount
		ld.HasIssuance = true
		return funcID, nil

	case Transfer:
		createTxId, err := r.digest()
		if nil != err {
			return 0, err
		}
		publicKey, err := r.publicKey()
		if nil != err {
			return 0, err
		}
		avalCount, err := r.int32()
		if nil != err {
			return 0, err
		}
		if err := r.done(); nil != err {
			return 0, err
		}
		ld.FuncID = funcID
		ld.Version = version
		ld.CreateTxId = createTxId
		ld.PublicKey = publicKey
		ld.AvalCount = avalCount
		return funcID, nil

	case Settle, SettlePartial:
		createTxId, err := r.digest()
		if nil != err {
			return 0, err
		}
		publicKey, err := r.publicKey()
		if nil != err {
			return 0, err
		}
		remaining, err := r.int64()
		if nil != err {
			return 0, err
		}
		if err := r.done(); nil != err {
			return 0, err
		}
		ld.FuncID = funcID
		ld.Version = version
		ld.CreateTxId = createTxId
		ld.PublicKey = publicKey
		ld.Remaining = remaining
		ld.HasSettlement = true
		return funcID, nil

	case Loop:
		// legacy marker, header only
		if err := r.done(); nil != err {
			return 0, err
		}
		ld.FuncID = funcID
		ld.Version = version
		return funcID, nil

	default:
		return 0, fault.ErrNotLoopOpret
	}
}

// DecodeRelease - parse a deactivation marker opret (O)
func DecodeRelease(data []byte) error {
	funcID, version, err := splitHeader(data)
	if nil != err {
		return err
	}
	if Release != funcID {
		return fault.ErrOpretFuncID
	}
	if constants.OpretVersionDefault != version {
		return fault.ErrOpretVersion
	}
	if 3 != len(data) {
		return fault.ErrOpretTrailingBytes
	}
	return nil
}

// DecodeAny - parse an opret of unknown kind, for display tools
//
// returns one of *ActivatedData or *LoopData; the data is nil for a
// release marker, which has no payload
func DecodeAny(data []byte) (interface{}, FuncID, error) {
	funcID, _, err := splitHeader(data)
	if nil != err {
		return nil, 0, err
	}

	switch {
	case funcID.IsActivated():
		a, err := DecodeActivated(data)
		if nil != err {
			return nil, 0, err
		}
		return a, funcID, nil

	case Release == funcID:
		if err := DecodeRelease(data); nil != err {
			return nil, 0, err
		}
		return nil, funcID, nil

	case funcID.IsLoop():
		ld := NewLoopData()
		if _, err := DecodeLoop(data, constants.OpretVersionAny, &ld); nil != err {
			return nil, 0, err
		}
		return &ld, funcID, nil

	default:
		return nil, 0, fault.ErrOpretFuncID
	}
}
