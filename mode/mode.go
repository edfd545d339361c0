// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mode

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/marmarachain/marmara/chain"
	"github.com/marmarachain/marmara/fault"
)

// Mode - type to hold the mode
type Mode int

// all possible modes
const (
	Stopped Mode = iota
	Resynchronise
	Normal
	maximum
)

var globalData struct {
	sync.RWMutex
	log     *logger.L
	mode    Mode
	testing bool
	enabled bool
	chain   string

	// set once during initialise
	initialised bool
}

// Initialise - set up the mode system
//
// the marmara flag mirrors the chain bring-up parameter: once set it
// is immutable for the life of the process
func Initialise(chainName string, marmaraEnabled bool) error {

	// ensure start up in resynchronise mode
	globalData.Lock()
	defer globalData.Unlock()

	// no need to start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("mode")
	globalData.log.Info("starting…")

	// default mode
	globalData.mode = Resynchronise

	testing := false
	switch chainName {
	case chain.Marmara:
		testing = false
	case chain.Testing, chain.Local:
		testing = true
	default:
		globalData.log.Criticalf("invalid chain name: %s", chainName)
		logger.Panicf("mode.Initialise: invalid chain name: %s", chainName)
		return fault.ErrInvalidChain
	}
	globalData.testing = testing
	globalData.chain = chainName
	globalData.enabled = marmaraEnabled

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - shutdown mode handling
func Finalise() error {
	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	Set(Stopped)

	globalData.Lock()
	defer globalData.Unlock()

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	// finally...
	globalData.initialised = false

	return nil
}

// Set - change mode
func Set(mode Mode) {

	if mode >= Stopped && mode < maximum {
		globalData.Lock()
		globalData.mode = mode
		globalData.Unlock()

		globalData.log.Infof("set: %s", mode)
	} else {
		globalData.log.Errorf("ignore invalid set: %d", mode)
	}
}

// Is - detect mode
func Is(mode Mode) bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return mode == globalData.mode
}

// IsNot - detect not mode
func IsNot(mode Mode) bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return mode != globalData.mode
}

// IsTesting - special for testing
func IsTesting() bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.testing
}

// IsMarmara - true if the chain was brought up with the marmara
// contract enabled
func IsMarmara() bool {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.enabled
}

// ChainName - name of the current chain
func ChainName() string {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.chain
}

// String - current mode represented as a string
func (m Mode) String() string {
	switch m {
	case Stopped:
		return "Stopped"
	case Resynchronise:
		return "Resynchronise"
	case Normal:
		return "Normal"
	default:
		return "*Unknown*"
	}
}
