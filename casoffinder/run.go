// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package casoffinder

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"v.io/x/lib/envvar"
	"v.io/x/lib/lookpath"
)

const (
	// DefaultPath is the aligner executable looked up in $PATH.
	DefaultPath = "cas-offinder"
	// DefaultDevice runs the aligner on the CPU.
	DefaultDevice = "C"
)

// Runner runs the aligner.  The zero value runs DefaultPath on
// DefaultDevice.
type Runner struct {
	// Path is the aligner executable.  A name without a '/' is looked up in
	// $PATH.
	Path string
	// Device is "C" (CPU), "G" (GPU) or "A" (accelerator).
	Device string
}

// ToolError is returned when the aligner exits unsuccessfully.  It carries
// everything the aligner printed.
type ToolError struct {
	Args   []string
	Err    error
	Stdout string
	Stderr string
}

// Error implements error.
func (e *ToolError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stdout != "" {
		fmt.Fprintf(&b, "\nSTDOUT:\n%s", e.Stdout)
	}
	if e.Stderr != "" {
		fmt.Fprintf(&b, "\nSTDERR:\n%s", e.Stderr)
	}
	return b.String()
}

func (r Runner) path() (string, error) {
	path := r.Path
	if path == "" {
		path = DefaultPath
	}
	if strings.ContainsRune(path, '/') {
		return path, nil
	}
	abs, err := lookpath.Look(envvar.SliceToMap(os.Environ()), path)
	if err != nil {
		return "", errors.E(errors.NotExist, fmt.Sprintf("%s not found in PATH", path), err)
	}
	return abs, nil
}

func (r Runner) device() (string, error) {
	switch r.Device {
	case "":
		return DefaultDevice, nil
	case "C", "G", "A":
		return r.Device, nil
	}
	return "", errors.E(errors.Invalid, fmt.Sprintf("invalid device %q: must be C, G or A", r.Device))
}

// Validate checks the runner options without touching the file system.
func (r Runner) Validate() error {
	_, err := r.device()
	return err
}

// Run runs the aligner on inputPath, writing its hits to outputPath.  It
// blocks until the aligner exits or ctx is done, in which case the aligner
// is killed and an errors.Canceled or errors.Timeout error is returned.  A
// non-zero exit is reported as a *ToolError.
func (r Runner) Run(ctx context.Context, inputPath, outputPath string) error {
	device, err := r.device()
	if err != nil {
		return err
	}
	path, err := r.path()
	if err != nil {
		return err
	}
	args := []string{path, inputPath, device, outputPath}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debug.Printf("running %s", strings.Join(args, " "))
	err = cmd.Run()
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return errors.E(errors.Timeout, strings.Join(args, " "), ctx.Err())
	case context.Canceled:
		return errors.E(errors.Canceled, strings.Join(args, " "), ctx.Err())
	}
	if err != nil {
		return &ToolError{Args: args, Err: err, Stdout: stdout.String(), Stderr: stderr.String()}
	}
	return nil
}
