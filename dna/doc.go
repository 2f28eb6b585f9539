// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dna provides byte-level helpers for ASCII nucleotide sequences:
// reverse complementation, case normalization, and counting of the
// lowercase (mismatch) letters that alignment tools use to annotate hits.
//
// All functions are pure; none of them keep state between calls.
package dna
