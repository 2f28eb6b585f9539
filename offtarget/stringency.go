// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package offtarget

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// Stringency selects how many mismatches an off-target hit must carry, and
// where, before it is tolerated.
type Stringency uint8

const (
	// High tolerates an off-target with two or more PAM-proximal mismatches,
	// or with one proximal and at least two distal mismatches.
	High Stringency = iota
	// Maximum additionally requires five distal mismatches when there is a
	// single proximal one, and two when there are two proximal ones.
	Maximum
)

var stringencyNames = [...]string{High: "high", Maximum: "maximum"}

// String returns "high" or "maximum".
func (s Stringency) String() string {
	if int(s) < len(stringencyNames) {
		return stringencyNames[s]
	}
	return fmt.Sprintf("Stringency(%d)", s)
}

// ParseStringency parses "high" or "maximum".  Any other value is an
// errors.Invalid error.
func ParseStringency(name string) (Stringency, error) {
	for i, n := range stringencyNames {
		if n == name {
			return Stringency(i), nil
		}
	}
	return 0, errors.E(errors.Invalid,
		fmt.Sprintf("invalid stringency level %q: must be \"high\" or \"maximum\"", name))
}

// Disqualifies reports whether an off-target hit with the given numbers of
// distal and proximal mismatches is too close to a real target site for its
// guide to be trusted.  It must only be called for hits with at least one
// mismatch.
func (s Stringency) Disqualifies(distal, proximal int) bool {
	switch s {
	case Maximum:
		return proximal == 0 ||
			(proximal == 1 && distal < 5) ||
			(proximal == 2 && distal < 2)
	default:
		return proximal == 0 || (proximal == 1 && distal < 2)
	}
}
