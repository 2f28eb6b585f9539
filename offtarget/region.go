// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package offtarget

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/grna/dna"
)

const (
	// PAMZoneLength is the number of 3' bases forming the PAM zone.
	PAMZoneLength = 3
	// ProximalZoneLength is the number of bases immediately 5' of the PAM
	// zone forming the seed (proximal) zone.
	ProximalZoneLength = 12
	// MinSeqLength is the shortest aligned sequence that can be split.
	MinSeqLength = PAMZoneLength + ProximalZoneLength
)

// Regions is an aligned sequence cut into its three zones, 5'->3'.
type Regions struct {
	Distal, Proximal, PAM string
}

// Split cuts seq into its distal, proximal and PAM zones, measured from the
// 3' end.  The distal zone is empty when len(seq) == MinSeqLength.  A
// sequence shorter than MinSeqLength is an errors.Integrity error.
func Split(seq string) (Regions, error) {
	n := len(seq)
	if n < MinSeqLength {
		return Regions{}, errors.E(errors.Integrity,
			fmt.Sprintf("aligned sequence %q is shorter than %d nt", seq, MinSeqLength))
	}
	return Regions{
		Distal:   seq[:n-MinSeqLength],
		Proximal: seq[n-MinSeqLength : n-PAMZoneLength],
		PAM:      seq[n-PAMZoneLength:],
	}, nil
}

// Mismatches counts the lowercase letters of each zone of an aligned
// sequence.
type Mismatches struct {
	Distal, Proximal, PAM int
}

// Total returns the number of mismatches over the whole sequence.
func (m Mismatches) Total() int {
	return m.Distal + m.Proximal + m.PAM
}

// CountMismatches splits seq and counts the mismatches of each zone.
func CountMismatches(seq string) (Mismatches, error) {
	r, err := Split(seq)
	if err != nil {
		return Mismatches{}, err
	}
	return Mismatches{
		Distal:   dna.CountLower(r.Distal),
		Proximal: dna.CountLower(r.Proximal),
		PAM:      dna.CountLower(r.PAM),
	}, nil
}
