// SPDX-License-Identifier: ISC
// Copyright (c) 2019-2020 Marmara Chain Developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances
//
// Provides a single instance of errors to allow easy comparison
// without having to resort to partial string matches
//
// Two classes matter for consensus callers: InvalidError marks a
// malformed transaction (the containing block is rejected), while
// ProcessError marks a rule violation with a descriptive string the
// host surfaces.  NotFoundError marks missing chain data.
package fault
