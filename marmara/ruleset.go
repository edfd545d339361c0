// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marmara

import (
	"github.com/marmarachain/marmara/constants"
)

// RuleSet - the fork gated limits threaded through validation
//
// selection happens per validated block from its height and median
// time past, never from the local clock, so that historic blocks
// always re-validate under the rules they were accepted with
type RuleSet struct {
	MaxVins              int
	MaxEndorsers         int
	DisputeExpiresOffset int32
	EscrowAllowed        bool

	// the legacy settlement path re-runs the issue tx checks and
	// demands they fail; a matured loop guarantees they do, since the
	// request maturity check wants a future height.  current rules
	// trust the acceptance-time validation of the issue tx instead
	RevalidateIssueOnSettle bool
}

// CurrentRules - limits after the 2020 consensus updates
func CurrentRules() RuleSet {
	return RuleSet{
		MaxVins:              constants.CCMaxVins,
		MaxEndorsers:         constants.MaxEndorsers,
		DisputeExpiresOffset: constants.DisputeExpiresOffset,
		EscrowAllowed:        true,
	}
}

// LegacyRules - limits before the 2020 consensus updates
func LegacyRules() RuleSet {
	return RuleSet{
		MaxVins:                 constants.LegacyMaxVins,
		MaxEndorsers:            constants.LegacyMaxEndorsers,
		DisputeExpiresOffset:    constants.LegacyDisputeExpiresOffset,
		EscrowAllowed:           false,
		RevalidateIssueOnSettle: true,
	}
}

// RulesFor - select the rule set for a block
func RulesFor(height int32, medianTime uint32) RuleSet {
	if height < constants.PoSImprovementsHeight || medianTime < constants.June2020UpdateTimestamp {
		return LegacyRules()
	}
	return CurrentRules()
}
