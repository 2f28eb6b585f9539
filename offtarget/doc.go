// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package offtarget filters guide RNAs by their genome-wide off-target
// hits.
//
// The input is the tabular output of an off-target aligner such as
// Cas-OFFinder: '#' header lines followed by tab-separated data lines whose
// field 0 is the guide ID and field 3 the aligned genomic sequence, with
// mismatched positions in lowercase.  Each aligned sequence is cut, from its
// 3' end, into a 3-nt PAM zone, a 12-nt proximal (seed) zone, and a distal
// zone holding the rest:
//
//   ACGTACGT ACGTACGTACGT AGG
//   distal   proximal     PAM
//
// A guide is accepted iff it has a zero-mismatch hit (its intended target)
// and none of its other hits is disqualified under the chosen Stringency.
package offtarget
