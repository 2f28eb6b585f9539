// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/grna/cmd/bio-grna/cmd"
	"v.io/x/lib/cmdline"
)

func main() {
	shutdown := grail.Init()
	cmdline.HideGlobalFlagsExcept()
	err := cmdline.ParseAndRun(cmd.Root(), cmdline.EnvFromOS(), os.Args[1:])
	shutdown()
	os.Exit(cmdline.ExitCode(err, os.Stderr))
}
