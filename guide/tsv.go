// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package guide

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
)

// ID returns the identifier of the i'th (0-based) guide of a run.  The same
// identifiers are handed to the off-target aligner, so its hits can be
// matched back to the candidate list.
func ID(i int) string {
	return "g" + strconv.Itoa(i+1)
}

// WriteTSV writes one line per guide: ID, sequence, strand and forward-strand
// start, preceded by a '#' header line.
func WriteTSV(w io.Writer, c Candidates) (err error) {
	out := tsv.NewWriter(w)
	out.WriteString("#ID\tSEQUENCE\tSTRAND\tSTART")
	if err = out.EndLine(); err != nil {
		return
	}
	for i, g := range c.Guides {
		out.WriteString(ID(i))
		out.WriteString(g.Seq)
		out.WriteString(g.Strand.String())
		out.WriteInt64(int64(g.Start))
		if err = out.EndLine(); err != nil {
			return
		}
	}
	return out.Flush()
}
