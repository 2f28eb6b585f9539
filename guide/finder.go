// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package guide finds CRISPR guide-RNA candidates in a DNA sequence.  A
// candidate is a protospacer of fixed length immediately followed by an
// "NGG" PAM.  Both strands are scanned, and a reverse-strand hit whose
// reverse complement was already found on the forward strand is dropped.
package guide

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/grna/dna"
)

const (
	// MinLength is the shortest protospacer accepted by Find.
	MinLength = 12
	// DefaultLength is the usual SpCas9 protospacer length.
	DefaultLength = 20
	// PAMLength is the length of the "NGG" motif.
	PAMLength = 3
)

// Strand identifies the strand a candidate was found on.
type Strand uint8

const (
	// Forward is the strand of the input sequence.
	Forward Strand = iota
	// Reverse is the reverse-complement strand.
	Reverse
)

// String returns "+" or "-".
func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Guide is one candidate.  Seq is the protospacer followed by its PAM, read
// 5'->3' on Strand.  Start is the 0-based offset of the leftmost base of the
// site on the forward strand, so a reverse-strand site covers the same
// forward-strand interval [Start, Start+len(Seq)).
type Guide struct {
	Seq    string
	Strand Strand
	Start  int
}

// Candidates is the result of Find.
type Candidates struct {
	// Guides lists the forward hits in order of position, followed by the
	// reverse hits that survived strand deduplication, in order of position
	// on the reverse-complement sequence.
	Guides []Guide
	// Forward is the number of forward-strand hits.
	Forward int
	// Reverse is the number of reverse-strand hits before deduplication.
	Reverse int
	// UniqueReverse is the number of reverse-strand hits kept.
	UniqueReverse int
}

// Seqs returns the guide sequences in order.
func (c Candidates) Seqs() []string {
	seqs := make([]string, len(c.Guides))
	for i, g := range c.Guides {
		seqs[i] = g.Seq
	}
	return seqs
}

// scan appends to dst every window of length protoLen+PAMLength in seq whose
// bases are all ACGT and whose last two bases are "GG".  Every start offset
// is tried, so hits may overlap.  seq must already be uppercase.
func scan(dst []Guide, seq []byte, protoLen int, strand Strand) []Guide {
	width := protoLen + PAMLength
	run := 0 // number of consecutive ACGT bases ending at i.
	for i, b := range seq {
		if !dna.IsACGT(b) {
			run = 0
			continue
		}
		run++
		if run < width || b != 'G' || seq[i-1] != 'G' {
			continue
		}
		start := i + 1 - width
		g := Guide{Seq: string(seq[start : i+1]), Strand: strand, Start: start}
		if strand == Reverse {
			g.Start = len(seq) - (start + width)
		}
		dst = append(dst, g)
	}
	return dst
}

// Find lists the guide candidates with a protospacer of the given length in
// seq.  seq is case-insensitive and is not modified.  An empty result is not
// an error.  Find fails with an errors.Invalid error if protoLen < MinLength.
func Find(seq []byte, protoLen int) (Candidates, error) {
	if protoLen < MinLength {
		return Candidates{}, errors.E(errors.Invalid,
			fmt.Sprintf("invalid gRNA length %d: must be >= %d nt", protoLen, MinLength))
	}
	fwd := make([]byte, len(seq))
	copy(fwd, seq)
	dna.UpperInplace(fwd)
	rev := make([]byte, len(fwd))
	dna.ReverseComp8(rev, fwd)

	guides := scan(nil, fwd, protoLen, Forward)
	c := Candidates{Forward: len(guides)}
	fwdSet := make(map[string]struct{}, len(guides))
	for _, g := range guides {
		fwdSet[g.Seq] = struct{}{}
	}
	revGuides := scan(nil, rev, protoLen, Reverse)
	c.Reverse = len(revGuides)
	for _, g := range revGuides {
		if _, ok := fwdSet[dna.ReverseComplement(g.Seq)]; ok {
			continue
		}
		guides = append(guides, g)
		c.UniqueReverse++
	}
	c.Guides = guides
	return c, nil
}
