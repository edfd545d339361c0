// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package currency - the currency tag carried in loop creation oprets
package currency

import (
	"fmt"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/marmarachain/marmara/fault"
)

// Currency - currency enumeration
type Currency uint64

// possible currency values
const (
	Nothing      Currency = iota // this must be the first value
	Marmara      Currency = iota
	maximumValue Currency = iota // this must be the last value
	First        Currency = Nothing + 1
	Last         Currency = maximumValue - 1
	Count        int      = int(Last) // count of currencies
)

// internal conversion
func toString(c Currency) ([]byte, error) {
	switch c {
	case Nothing:
		return []byte{}, nil
	case Marmara:
		return []byte("MARMARA"), nil
	default:
		return []byte{}, fault.ErrInvalidCurrency
	}
}

// FromString - convert a string to a currency
func FromString(in string) (Currency, error) {
	switch strings.ToLower(in) {
	case "":
		return Nothing, nil
	case "marmara":
		return Marmara, nil
	default:
		return Nothing, fault.ErrInvalidCurrency
	}
}

// String - convert a currency to its string symbol
func (currency Currency) String() string {
	s, err := toString(currency)
	if nil != err {
		logger.Panicf("invalid currency enumeration: %d", currency)
	}
	return string(s)
}

// GoString - convert both enum value and symbol, for debugging
func (currency Currency) GoString() string {
	return fmt.Sprintf("<Currency#%d:%q>", currency, currency.String())
}

// IsValid - valid currency if in range of First to Last
//
// Nothing is not considered as valid
func (currency Currency) IsValid() bool {
	return currency >= First && currency <= Last
}
