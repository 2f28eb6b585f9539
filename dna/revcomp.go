// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package dna

// revComp8Table maps 'A'/'a' to 'T', 'C'/'c' to 'G', 'G'/'g' to 'C', 'T'/'t'
// to 'A', and everything else to 'N'.
var revComp8Table = [256]byte{}

func init() {
	for i := range revComp8Table {
		revComp8Table[i] = 'N'
	}
	for _, p := range [...][2]byte{{'A', 'T'}, {'C', 'G'}, {'G', 'C'}, {'T', 'A'}} {
		revComp8Table[p[0]] = p[1]
		revComp8Table[p[0]|0x20] = p[1]
	}
}

// Complement returns the complement of a single ASCII base. Bases outside
// ACGT (either case) map to 'N'.
func Complement(b byte) byte {
	return revComp8Table[b]
}

// ReverseComp8Inplace reverse-complements ascii8[] in place.
func ReverseComp8Inplace(ascii8 []byte) {
	nByte := len(ascii8)
	nByteDiv2 := nByte >> 1
	for idx, invIdx := 0, nByte-1; idx != nByteDiv2; idx, invIdx = idx+1, invIdx-1 {
		ascii8[idx], ascii8[invIdx] = revComp8Table[ascii8[invIdx]], revComp8Table[ascii8[idx]]
	}
	if nByte&1 == 1 {
		ascii8[nByteDiv2] = revComp8Table[ascii8[nByteDiv2]]
	}
}

// ReverseComp8 writes the reverse-complement of src[] to dst[].
// It panics if len(dst) != len(src).
func ReverseComp8(dst, src []byte) {
	nByte := len(src)
	if len(dst) != nByte {
		panic("ReverseComp8 requires len(dst) == len(src).")
	}
	for idx, invIdx := 0, nByte-1; idx != nByte; idx, invIdx = idx+1, invIdx-1 {
		dst[idx] = revComp8Table[src[invIdx]]
	}
}

// ReverseComplement returns the reverse complement of seq as a new string.
func ReverseComplement(seq string) string {
	out := make([]byte, len(seq))
	for idx, invIdx := 0, len(seq)-1; invIdx >= 0; idx, invIdx = idx+1, invIdx-1 {
		out[idx] = revComp8Table[seq[invIdx]]
	}
	return string(out)
}
