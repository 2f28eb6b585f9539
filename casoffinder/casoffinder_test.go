// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package casoffinder_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/grna/casoffinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"v.io/x/lib/gosh"
	"v.io/x/lib/lookpath"
)

func TestWriteInput(t *testing.T) {
	in := casoffinder.Input{
		GenomePath:  "/data/hg38",
		GuideLength: 20,
		Mismatches:  3,
		Bulge:       1,
		Guides:      []string{"AAAAAAAAAAAAAAAAAAAAAGG", "CCCCCCCCCCCCCCCCCCCCTGG"},
	}
	var buf bytes.Buffer
	require.NoError(t, in.Write(&buf))
	assert.Equal(t, "/data/hg38\n"+
		"NNNNNNNNNNNNNNNNNNNNNGG 1 1\n"+
		"AAAAAAAAAAAAAAAAAAAAAGG 3 g1\n"+
		"CCCCCCCCCCCCCCCCCCCCTGG 3 g2\n", buf.String())
}

func TestWriteInputInvalid(t *testing.T) {
	valid := casoffinder.Input{GenomePath: "g", GuideLength: 20}
	for _, in := range []casoffinder.Input{
		{GuideLength: 20},
		{GenomePath: "g", GuideLength: 11},
		{GenomePath: "g", GuideLength: 20, Mismatches: -1},
		{GenomePath: "g", GuideLength: 20, Bulge: -1},
	} {
		var buf bytes.Buffer
		err := in.Write(&buf)
		assert.True(t, errors.Is(errors.Invalid, err), "in=%+v err=%v", in, err)
		assert.Equal(t, 0, buf.Len())
	}
	require.NoError(t, valid.Write(ioutil.Discard))
}

const fakeTool = `#!/bin/sh
# Usage: cas-offinder input device output
case "$1" in
  *slow*) exec sleep 10 ;;
esac
if [ "$2" != "C" ]; then
  echo "starting"
  echo "device $2 unavailable" >&2
  exit 3
fi
printf '#Id\tBulge Type\tcrRNA\tDNA\tChromosome\tLocation\tDirection\tMismatches\tBulge Size\n' > "$3"
tail -n +3 "$1" | while read seq mm id; do
  printf '%s\tX\t%s\t%s\tchr1\t100\t+\t0\t0\n' "$id" "$seq" "$seq" >> "$3"
done
`

func setupFakeTool(t *testing.T) (*gosh.Shell, string) {
	sh := gosh.NewShell(t)
	if _, err := lookpath.Look(sh.Vars, "sh"); err != nil {
		sh.Cleanup()
		t.Skipf("sh not found on the machine. Skipping the test")
	}
	dir := sh.MakeTempDir()
	tool := filepath.Join(dir, "cas-offinder")
	require.NoError(t, ioutil.WriteFile(tool, []byte(fakeTool), 0755))
	return sh, dir
}

func TestRun(t *testing.T) {
	sh, dir := setupFakeTool(t)
	defer sh.Cleanup()
	ctx := vcontext.Background()

	inPath := filepath.Join(dir, "in.txt")
	outPath := filepath.Join(dir, "out.txt")
	in := casoffinder.Input{GenomePath: dir, GuideLength: 12, Mismatches: 2, Guides: []string{"ACGTACGTACGTAGG"}}
	require.NoError(t, in.WriteFile(ctx, inPath))

	r := casoffinder.Runner{Path: filepath.Join(dir, "cas-offinder")}
	require.NoError(t, r.Run(ctx, inPath, outPath))
	got, err := ioutil.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "#Id\tBulge Type\tcrRNA\tDNA\tChromosome\tLocation\tDirection\tMismatches\tBulge Size\n"+
		"g1\tX\tACGTACGTACGTAGG\tACGTACGTACGTAGG\tchr1\t100\t+\t0\t0\n", string(got))
}

func TestRunFailure(t *testing.T) {
	sh, dir := setupFakeTool(t)
	defer sh.Cleanup()

	r := casoffinder.Runner{Path: filepath.Join(dir, "cas-offinder"), Device: "G"}
	err := r.Run(vcontext.Background(), filepath.Join(dir, "in.txt"), filepath.Join(dir, "out.txt"))
	require.Error(t, err)
	toolErr, ok := err.(*casoffinder.ToolError)
	require.True(t, ok, "err=%v", err)
	assert.Equal(t, "starting\n", toolErr.Stdout)
	assert.Equal(t, "device G unavailable\n", toolErr.Stderr)
	assert.Contains(t, err.Error(), "STDERR:\ndevice G unavailable")
}

func TestRunTimeout(t *testing.T) {
	sh, dir := setupFakeTool(t)
	defer sh.Cleanup()

	ctx, cancel := context.WithTimeout(vcontext.Background(), 100*time.Millisecond)
	defer cancel()
	r := casoffinder.Runner{Path: filepath.Join(dir, "cas-offinder")}
	err := r.Run(ctx, filepath.Join(dir, "slow.txt"), filepath.Join(dir, "out.txt"))
	assert.True(t, errors.Is(errors.Timeout, err), "err=%v", err)
}

func TestRunInvalid(t *testing.T) {
	ctx := vcontext.Background()
	err := casoffinder.Runner{Device: "X"}.Run(ctx, "in", "out")
	assert.True(t, errors.Is(errors.Invalid, err), "err=%v", err)

	err = casoffinder.Runner{Path: "no-such-aligner-binary"}.Run(ctx, "in", "out")
	assert.True(t, errors.Is(errors.NotExist, err), "err=%v", err)
}
