// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/grna/fileio"
	"github.com/grailbio/grna/guide"
	"github.com/grailbio/grna/offtarget"
	"github.com/grailbio/grna/pipeline"
	"v.io/x/lib/cmdline"
)

const stringencyHelp = `Off-target stringency, "high" or "maximum".
high rejects a guide with an off-target site that has no mismatch in the
12 PAM-proximal bases, or one proximal mismatch and fewer than two distal
mismatches. maximum additionally rejects one proximal mismatch with fewer
than five distal mismatches, and two proximal mismatches with fewer than two
distal mismatches.`

func newCmdFind() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "find",
		Short:    "List the guide RNA candidates of a sequence",
		ArgsName: "input [output]",
		Long: `
find lists every protospacer followed by an NGG PAM on both strands of the
input sequence.  The input is plain sequence text or a single-record FASTA
file.  The candidates are written as TSV to output, or to stdout if output is
omitted.  Reverse-strand candidates whose reverse complement is also a
forward-strand candidate are omitted.`,
	}
	length := cmd.Flags.Int("l", pipeline.DefaultOpts.GuideLength, "Protospacer length, excluding the PAM")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 1 || len(argv) > 2 {
			return fmt.Errorf("find takes input [output], but got %v", argv)
		}
		ctx := vcontext.Background()
		c, err := pipeline.FindGuides(ctx, argv[0], *length)
		if err != nil {
			return err
		}
		if len(argv) == 1 {
			return guide.WriteTSV(env.Stdout, c)
		}
		out, err := fileio.Create(ctx, argv[1])
		if err != nil {
			return err
		}
		return closeAfter(out, guide.WriteTSV(out, c))
	})
	return cmd
}

func newCmdFilter() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "filter",
		Short:    "Keep the guides whose off-target hits pass the stringency filter",
		ArgsName: "toolout output",
		Long: `
filter reads Cas-OFFinder output and writes the hits of every guide that has
a zero-mismatch hit and no disqualifying off-target hit.  Header lines are
kept, and zero-mismatch hits are marked with " # 0MM".  Running filter on its
own output leaves it unchanged.`,
	}
	stringency := cmd.Flags.String("s", pipeline.DefaultOpts.Stringency, stringencyHelp)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("filter takes toolout output, but got %v", argv)
		}
		level, err := offtarget.ParseStringency(*stringency)
		if err != nil {
			return err
		}
		_, err = pipeline.FilterOffTargets(vcontext.Background(), argv[0], argv[1], level)
		return err
	})
	return cmd
}

func newCmdRun() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "run",
		Short: "Find guide candidates, align them with Cas-OFFinder and filter the hits",
	}
	opts := pipeline.DefaultOpts
	cmd.Flags.StringVar(&opts.InputPath, "i", opts.InputPath, "Input sequence, plain text or single-record FASTA")
	cmd.Flags.StringVar(&opts.GenomePath, "g", opts.GenomePath, "Genome path passed to Cas-OFFinder")
	cmd.Flags.StringVar(&opts.OutputPath, "o", opts.OutputPath, "Output path")
	cmd.Flags.IntVar(&opts.GuideLength, "l", opts.GuideLength, "Protospacer length, excluding the PAM")
	cmd.Flags.IntVar(&opts.Mismatches, "m", opts.Mismatches, "Maximum mismatches per off-target site")
	cmd.Flags.IntVar(&opts.Bulge, "b", opts.Bulge, "DNA and RNA bulge size")
	cmd.Flags.StringVar(&opts.Stringency, "s", opts.Stringency, stringencyHelp)
	cmd.Flags.StringVar(&opts.ToolPath, "tool", opts.ToolPath, "Cas-OFFinder executable; looked up in $PATH unless it contains a '/'")
	cmd.Flags.StringVar(&opts.Device, "device", opts.Device, "Cas-OFFinder device: C (CPU), G (GPU) or A (accelerator)")
	cmd.Flags.BoolVar(&opts.SaveTemp, "save-temp", opts.SaveTemp,
		"Keep the Cas-OFFinder input and output as "+pipeline.SavedInputName+" and "+pipeline.SavedOutputName+" in -work-dir")
	cmd.Flags.StringVar(&opts.WorkDir, "work-dir", opts.WorkDir, "Directory for -save-temp files (default current directory)")
	cmd.Flags.StringVar(&opts.TempDir, "temp-dir", opts.TempDir, "Directory to write temporary files to (default os.TempDir())")
	cmd.Flags.DurationVar(&opts.Timeout, "timeout", opts.Timeout, "Cas-OFFinder deadline; 0 means none")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 0 {
			return fmt.Errorf("run takes no positional arguments, but got %v", argv)
		}
		s, err := pipeline.Run(vcontext.Background(), opts)
		if err != nil {
			return err
		}
		if s.NoCandidates {
			fmt.Fprintln(env.Stdout, "No gRNA candidates found.")
			return nil
		}
		fmt.Fprintf(env.Stdout, "Valid gRNAs: %d of %d\n", s.Result.NumAccepted(), len(s.Candidates.Guides))
		return nil
	})
	return cmd
}

func closeAfter(c io.Closer, err error) error {
	e := errors.Once{}
	e.Set(err)
	e.Set(c.Close())
	return e.Err()
}

// Root returns the bio-grna command tree.
func Root() *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-grna",
		Short:    "Design CRISPR guide RNAs with off-target filtering",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdRun(),
			newCmdFind(),
			newCmdFilter(),
		},
	}
}
