// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

// isACGTTable[x] == 1 iff x is one of 'A', 'C', 'G', 'T'.
var isACGTTable = [256]byte{'A': 1, 'C': 1, 'G': 1, 'T': 1}

// IsACGT returns true iff b is an uppercase A, C, G or T.
func IsACGT(b byte) bool {
	return isACGTTable[b] == 1
}

// UpperInplace converts every lowercase ASCII letter in ascii8[] to
// uppercase. Other bytes are left alone.
func UpperInplace(ascii8 []byte) {
	for i, b := range ascii8 {
		if b >= 'a' && b <= 'z' {
			ascii8[i] = b - ('a' - 'A')
		}
	}
}

// CountLower returns the number of lowercase ASCII letters in s.  Alignment
// tools such as Cas-OFFinder print mismatched positions of a hit in
// lowercase, so this is the mismatch count of an annotated hit.
func CountLower(s string) int {
	cnt := 0
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			cnt++
		}
	}
	return cnt
}
