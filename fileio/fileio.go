// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fileio opens and creates the flat files of the guide pipeline
// through github.com/grailbio/base/file.  Compression is chosen by path
// suffix: ".gz" files are gzip streams and ".sz" files are snappy framed
// streams.  On read, any other compression format that base/compress
// recognizes from the content is also undone.
package fileio

import (
	"context"
	"io"
	"io/ioutil"
	"strings"

	"github.com/golang/snappy"
	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

type reader struct {
	io.Reader
	ctx context.Context
	f   file.File
	dec io.Closer
}

// Close closes the decompressor, if any, then the file.
func (r *reader) Close() error {
	once := errors.Once{}
	if r.dec != nil {
		once.Set(r.dec.Close())
	}
	once.Set(r.f.Close(r.ctx))
	return once.Err()
}

// Open opens path for reading.  The caller must Close the returned reader.
func Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := file.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	r := &reader{ctx: ctx, f: f}
	var in io.Reader = f.Reader(ctx)
	if strings.HasSuffix(path, ".sz") {
		r.Reader = snappy.NewReader(in)
		return r, nil
	}
	dec, _ := compress.NewReader(in)
	r.Reader, r.dec = dec, dec
	return r, nil
}

// ReadFile returns the uncompressed contents of path.
func ReadFile(ctx context.Context, path string) (data []byte, err error) {
	r, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := r.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if data, err = ioutil.ReadAll(r); err != nil {
		return nil, errors.E(err, "read", path)
	}
	return data, nil
}

// compressor is implemented by both gzip.Writer and snappy.Writer.
type compressor interface {
	io.Writer
	Close() error
}

type writer struct {
	io.Writer
	ctx  context.Context
	f    file.File
	comp compressor
}

// Close flushes the compressor, if any, then closes the file.
func (w *writer) Close() error {
	once := errors.Once{}
	if w.comp != nil {
		once.Set(w.comp.Close())
	}
	once.Set(w.f.Close(w.ctx))
	return once.Err()
}

// Create creates path for writing, truncating any existing file.  The file
// is complete only after Close returns nil.
func Create(ctx context.Context, path string) (io.WriteCloser, error) {
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, err
	}
	w := &writer{ctx: ctx, f: f}
	out := f.Writer(ctx)
	switch {
	case strings.HasSuffix(path, ".gz"):
		w.comp = gzip.NewWriter(out)
	case strings.HasSuffix(path, ".sz"):
		w.comp = snappy.NewBufferedWriter(out)
	}
	if w.comp != nil {
		w.Writer = w.comp
	} else {
		w.Writer = out
	}
	return w, nil
}
