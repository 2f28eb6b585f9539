// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmd_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/grna/cmd/bio-grna/cmd"
	"github.com/grailbio/grna/fileio"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"v.io/x/lib/cmdline"
)

// 13 A's + "GG" gives one forward candidate of length 12 at offset 18, and the
// leading "GTCCT" one reverse candidate at offset 2.
const sequence = ">chrTest\nGTCCTAAAAAAAAAAAAC\nAAAAAAAAAAAAAGG\n"

const wantTSV = "#ID\tSEQUENCE\tSTRAND\tSTART\n" +
	"g1\tAAAAAAAAAAAAAGG\t+\t18\n" +
	"g2\tTTTTTTTTTTTTAGG\t-\t2\n"

const fakeTool = `#!/bin/sh
echo '#Id	Bulge Type	crRNA	DNA	Chromosome	Location	Direction	Mismatches	Bulge Size' > "$3"
tail -n +3 "$1" | while read seq mm id; do
  printf '%s\tX\t%s\t%s\tchr1\t7\t+\t0\t0\n' "$id" "$seq" "$seq" >> "$3"
done
`

func run(t *testing.T, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	env := &cmdline.Env{Stdout: &stdout, Stderr: &stderr, Vars: map[string]string{}}
	err := cmdline.ParseAndRun(cmd.Root(), env, args)
	return stdout.String(), err
}

func TestFind(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)
	input := filepath.Join(dir, "input.fa")
	require.NoError(t, ioutil.WriteFile(input, []byte(sequence), 0644))

	out, err := run(t, "find", "-l", "12", input)
	require.NoError(t, err)
	expect.EQ(t, out, wantTSV)

	// Output compression follows the path suffix.
	gz := filepath.Join(dir, "candidates.tsv.gz")
	_, err = run(t, "find", "-l", "12", input, gz)
	require.NoError(t, err)
	got, err := fileio.ReadFile(vcontext.Background(), gz)
	require.NoError(t, err)
	expect.EQ(t, string(got), wantTSV)

	_, err = run(t, "find", "-l", "11", input)
	assert.True(t, errors.Is(errors.Invalid, err), "err=%v", err)
	_, err = run(t, "find")
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)
	site := "GACGTACGTACGTACGTACGTGG"
	lines := []string{
		"#Id\tBulge Type\tcrRNA\tDNA\tChromosome\tLocation\tDirection\tMismatches\tBulge Size",
		"g1\tX\t" + site + "\t" + site + "\tchr1\t7\t+\t0\t0",
		"g1\tX\t" + site + "\tgACGTACGTACGTACGTACGTGG\tchr2\t9\t-\t1\t0",
		"g2\tX\t" + site + "\t" + site + "\tchr3\t1\t+\t0\t0",
		"g2\tX\t" + site + "\tgACGTACGtaCGTACGTACGTGG\tchr4\t2\t+\t3\t0",
	}
	toolOut := filepath.Join(dir, "toolout.txt")
	require.NoError(t, ioutil.WriteFile(toolOut, []byte(strings.Join(lines, "\n")+"\n"), 0644))

	for _, test := range []struct {
		level string
		want  []string
	}{
		{"high", []string{lines[0], lines[3] + " # 0MM", lines[4]}},
		{"maximum", []string{lines[0]}},
	} {
		output := filepath.Join(dir, test.level+".txt")
		_, err := run(t, "filter", "-s", test.level, toolOut, output)
		require.NoError(t, err)
		got, err := ioutil.ReadFile(output)
		require.NoError(t, err)
		expect.EQ(t, string(got), strings.Join(test.want, "\n")+"\n", "level=%s", test.level)
	}

	output := filepath.Join(dir, "bad.txt")
	_, err := run(t, "filter", "-s", "low", toolOut, output)
	assert.True(t, errors.Is(errors.Invalid, err), "err=%v", err)
	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}

func TestRun(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, dir)
	input := filepath.Join(dir, "input.fa")
	require.NoError(t, ioutil.WriteFile(input, []byte(sequence), 0644))
	tool := filepath.Join(dir, "cas-offinder")
	require.NoError(t, ioutil.WriteFile(tool, []byte(fakeTool), 0755))
	output := filepath.Join(dir, "output_GF.txt")

	out, err := run(t, "run", "-i", input, "-g", "/genome", "-o", output, "-l", "12",
		"-tool", tool, "-save-temp", "-work-dir", dir, "-timeout", "1m")
	require.NoError(t, err)
	expect.EQ(t, out, "Valid gRNAs: 2 of 2\n")
	got, err := ioutil.ReadFile(output)
	require.NoError(t, err)
	expect.EQ(t, string(got),
		"#Id\tBulge Type\tcrRNA\tDNA\tChromosome\tLocation\tDirection\tMismatches\tBulge Size\n"+
			"g1\tX\tAAAAAAAAAAAAAGG\tAAAAAAAAAAAAAGG\tchr1\t7\t+\t0\t0 # 0MM\n"+
			"g2\tX\tTTTTTTTTTTTTAGG\tTTTTTTTTTTTTAGG\tchr1\t7\t+\t0\t0 # 0MM\n")
	_, err = os.Stat(filepath.Join(dir, "Cas-OFFinder_input.txt"))
	assert.NoError(t, err)

	_, err = run(t, "run", "-i", input, "-g", "/genome", "-device", "X", "-tool", tool)
	assert.True(t, errors.Is(errors.Invalid, err), "err=%v", err)
	_, err = run(t, "run", "extra")
	assert.Error(t, err)
}

func TestMain(m *testing.M) {
	shutdown := grail.Init()
	defer shutdown()
	os.Exit(m.Run())
}
