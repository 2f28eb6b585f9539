// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package casoffinder drives Cas-OFFinder, the external aligner that lists
// every genomic site matching a guide within a mismatch and bulge budget.
// The package writes the aligner's input file and runs the aligner; its
// output is consumed by package offtarget.
package casoffinder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/grna/fileio"
	"github.com/grailbio/grna/guide"
)

// Input is the content of a Cas-OFFinder input file.
type Input struct {
	// GenomePath is the genome directory or file handed to the aligner.
	GenomePath string
	// GuideLength is the protospacer length, excluding the PAM.
	GuideLength int
	// Mismatches is the mismatch budget of every guide.
	Mismatches int
	// Bulge is both the DNA and the RNA bulge budget.
	Bulge int
	// Guides are protospacer+PAM sequences.  The i'th one is named
	// guide.ID(i).
	Guides []string
}

func (in Input) validate() error {
	switch {
	case in.GenomePath == "":
		return errors.E(errors.Invalid, "empty genome path")
	case in.GuideLength < guide.MinLength:
		return errors.E(errors.Invalid, fmt.Sprintf("invalid gRNA length %d: must be >= %d nt", in.GuideLength, guide.MinLength))
	case in.Mismatches < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("invalid mismatch count %d", in.Mismatches))
	case in.Bulge < 0:
		return errors.E(errors.Invalid, fmt.Sprintf("invalid bulge size %d", in.Bulge))
	}
	return nil
}

// Pattern returns the target pattern line: N repeated GuideLength times,
// "NGG", then the DNA and RNA bulge sizes.
func (in Input) Pattern() string {
	b := strconv.Itoa(in.Bulge)
	return strings.Repeat("N", in.GuideLength) + "NGG " + b + " " + b
}

// Write writes the input file to w.  The first line is the genome path, the
// second the target pattern, and then one "<sequence> <mismatches> <id>" line
// per guide.
func (in Input) Write(w io.Writer) error {
	if err := in.validate(); err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(in.GenomePath)
	bw.WriteByte('\n')
	bw.WriteString(in.Pattern())
	bw.WriteByte('\n')
	mm := strconv.Itoa(in.Mismatches)
	for i, seq := range in.Guides {
		bw.WriteString(seq)
		bw.WriteByte(' ')
		bw.WriteString(mm)
		bw.WriteByte(' ')
		bw.WriteString(guide.ID(i))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteFile writes the input file to path.
func (in Input) WriteFile(ctx context.Context, path string) (err error) {
	if err = in.validate(); err != nil {
		return err
	}
	out, err := fileio.Create(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		if e := out.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return in.Write(out)
}
