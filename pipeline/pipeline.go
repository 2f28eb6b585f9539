// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package pipeline runs the guide RNA design pipeline end to end:
//
//   1. list the guide candidates of the input sequence (package guide),
//
//   2. write them as a Cas-OFFinder input file and run Cas-OFFinder against
//      the genome (package casoffinder),
//
//   3. keep the guides whose off-target hits pass the stringency filter
//      (package offtarget).
//
// Steps 1 and 3 are also exposed on their own as FindGuides and
// FilterOffTargets.
package pipeline

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/grna/casoffinder"
	"github.com/grailbio/grna/encoding/fasta"
	"github.com/grailbio/grna/fileio"
	"github.com/grailbio/grna/guide"
	"github.com/grailbio/grna/offtarget"
)

const (
	// SavedInputName is the name of the kept aligner input when
	// Opts.SaveTemp is set.
	SavedInputName = "Cas-OFFinder_input.txt"
	// SavedOutputName is the name of the kept aligner output when
	// Opts.SaveTemp is set.
	SavedOutputName = "Cas-OFFinder_output.txt"
)

// Opts configures Run.
type Opts struct {
	// InputPath is the DNA sequence to design guides for; plain text or a
	// single-record FASTA.
	InputPath string
	// GenomePath is passed verbatim to the aligner.
	GenomePath string
	// OutputPath receives the filtered aligner hits.
	OutputPath string
	// GuideLength is the protospacer length, excluding the PAM.
	GuideLength int
	// Mismatches is the per-guide mismatch budget of the aligner.
	Mismatches int
	// Bulge is the DNA and RNA bulge budget of the aligner.
	Bulge int
	// Stringency is "high" or "maximum".
	Stringency string
	// ToolPath is the aligner executable.
	ToolPath string
	// Device is the aligner device: "C", "G" or "A".
	Device string
	// SaveTemp keeps the aligner input and output in WorkDir under
	// SavedInputName and SavedOutputName.  Otherwise they live in a
	// temporary directory that is removed when Run returns.
	SaveTemp bool
	// WorkDir is where SaveTemp files go.  Empty means the current
	// directory.
	WorkDir string
	// TempDir is the parent of the temporary directory.  Empty means
	// os.TempDir().
	TempDir string
	// Timeout bounds the aligner run.  Zero means no limit.
	Timeout time.Duration
}

// DefaultOpts are the default pipeline options.
var DefaultOpts = Opts{
	OutputPath:  "output_GF.txt",
	GuideLength: guide.DefaultLength,
	Mismatches:  3,
	Bulge:       0,
	Stringency:  offtarget.High.String(),
	ToolPath:    casoffinder.DefaultPath,
	Device:      casoffinder.DefaultDevice,
}

// Summary describes a finished Run.
type Summary struct {
	Candidates guide.Candidates
	// NoCandidates is set when the input holds no guide candidate.  The
	// aligner is not run and no output is written in that case.
	NoCandidates bool
	// Result is the off-target classification.  It is nil if NoCandidates.
	Result *offtarget.Result
	// ToolInputPath and ToolOutputPath are set when Opts.SaveTemp is set.
	ToolInputPath, ToolOutputPath string
}

func (o Opts) validate() (offtarget.Stringency, error) {
	level, err := offtarget.ParseStringency(o.Stringency)
	if err != nil {
		return level, err
	}
	switch {
	case o.GuideLength < guide.MinLength:
		return level, errors.E(errors.Invalid, fmt.Sprintf("invalid gRNA length %d: must be >= %d nt", o.GuideLength, guide.MinLength))
	case o.Mismatches < 0:
		return level, errors.E(errors.Invalid, fmt.Sprintf("invalid mismatch count %d", o.Mismatches))
	case o.Bulge < 0:
		return level, errors.E(errors.Invalid, fmt.Sprintf("invalid bulge size %d", o.Bulge))
	case o.InputPath == "":
		return level, errors.E(errors.Invalid, "input path is required")
	case o.GenomePath == "":
		return level, errors.E(errors.Invalid, "genome path is required")
	case o.OutputPath == "":
		return level, errors.E(errors.Invalid, "output path is required")
	case o.Timeout < 0:
		return level, errors.E(errors.Invalid, fmt.Sprintf("invalid timeout %v", o.Timeout))
	}
	return level, casoffinder.Runner{Path: o.ToolPath, Device: o.Device}.Validate()
}

// FindGuides reads the sequence in inputPath and lists its guide candidates.
func FindGuides(ctx context.Context, inputPath string, guideLength int) (guide.Candidates, error) {
	if guideLength < guide.MinLength {
		// Fail before touching the input.
		return guide.Find(nil, guideLength)
	}
	in, err := fileio.Open(ctx, inputPath)
	if err != nil {
		return guide.Candidates{}, err
	}
	seq, err := fasta.ReadSequence(in)
	if e := in.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return guide.Candidates{}, errors.E(err, inputPath)
	}
	c, err := guide.Find(seq, guideLength)
	if err != nil {
		return c, err
	}
	log.Printf("Found %d forward gRNA candidates.", c.Forward)
	log.Printf("Found %d reverse gRNA candidates (%d unique after filtering).", c.Reverse, c.UniqueReverse)
	return c, nil
}

// FilterOffTargets classifies the aligner output in toolOutputPath and
// writes the hits of the accepted guides to outputPath.  The output is
// created only once the whole input has been read and validated, so a
// malformed input leaves no output behind.
func FilterOffTargets(ctx context.Context, toolOutputPath, outputPath string, level offtarget.Stringency) (result *offtarget.Result, err error) {
	in, err := fileio.Open(ctx, toolOutputPath)
	if err != nil {
		return nil, err
	}
	result, err = offtarget.Filter(in, level)
	if e := in.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return nil, err
	}
	for _, d := range result.Decisions {
		if !d.Accepted {
			log.Debug.Printf("%s: rejected: %s", d.Group.ID, d.Reason)
		}
	}
	out, err := fileio.Create(ctx, outputPath)
	if err != nil {
		return nil, err
	}
	err = result.Write(out)
	if e := out.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return nil, errors.E(err, "write", outputPath)
	}
	log.Printf("Filtering complete. Valid gRNAs: %d. Output: %s", result.NumAccepted(), outputPath)
	return result, nil
}

// Run runs the whole pipeline.  All options are checked before any file is
// read.  An input without candidates is not an error: Run returns with
// Summary.NoCandidates set.
func Run(ctx context.Context, opts Opts) (s Summary, err error) {
	level, err := opts.validate()
	if err != nil {
		return s, err
	}
	if s.Candidates, err = FindGuides(ctx, opts.InputPath, opts.GuideLength); err != nil {
		return s, err
	}
	if len(s.Candidates.Guides) == 0 {
		log.Printf("No gRNA candidates found in %s.", opts.InputPath)
		s.NoCandidates = true
		return s, nil
	}

	var toolIn, toolOut string
	if opts.SaveTemp {
		toolIn = filepath.Join(opts.WorkDir, SavedInputName)
		toolOut = filepath.Join(opts.WorkDir, SavedOutputName)
		s.ToolInputPath, s.ToolOutputPath = toolIn, toolOut
		log.Printf("Intermediate files will be saved: %s, %s", toolIn, toolOut)
	} else {
		dir, err := ioutil.TempDir(opts.TempDir, "grna")
		if err != nil {
			return s, err
		}
		defer func() {
			if e := os.RemoveAll(dir); e != nil {
				log.Error.Printf("remove %s: %v", dir, e)
			}
		}()
		toolIn = filepath.Join(dir, "input.txt")
		toolOut = filepath.Join(dir, "output.txt")
	}

	in := casoffinder.Input{
		GenomePath:  opts.GenomePath,
		GuideLength: opts.GuideLength,
		Mismatches:  opts.Mismatches,
		Bulge:       opts.Bulge,
		Guides:      s.Candidates.Seqs(),
	}
	if err = in.WriteFile(ctx, toolIn); err != nil {
		return s, err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	runner := casoffinder.Runner{Path: opts.ToolPath, Device: opts.Device}
	if err = runner.Run(ctx, toolIn, toolOut); err != nil {
		return s, err
	}
	log.Printf("Cas-OFFinder completed successfully.")
	if s.Result, err = FilterOffTargets(ctx, toolOut, opts.OutputPath, level); err != nil {
		return s, err
	}
	log.Printf("Pipeline completed. Output: %s", opts.OutputPath)
	return s, nil
}
