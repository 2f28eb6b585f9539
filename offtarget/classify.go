// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package offtarget

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/base/errors"
)

const (
	// OnTargetMarker is appended to every zero-mismatch line in the output.
	OnTargetMarker = " # 0MM"

	idField  = 0
	seqField = 3
	// minFields is the number of tab-separated fields a data line needs
	// to carry both the guide ID and the aligned sequence.
	minFields = seqField + 1

	maxLineSize = 64 * 1024 * 1024
)

// Hit is one data line of the alignment tool output.
type Hit struct {
	// Line is the input line with surrounding whitespace, and any
	// OnTargetMarker, removed.
	Line string
	// LineNum is the 1-based line number in the input.
	LineNum int
	// Seq is the mismatch-annotated aligned sequence (field 3).
	Seq        string
	Mismatches Mismatches
}

// OnTarget reports whether the hit has no mismatch at all.
func (h Hit) OnTarget() bool {
	return h.Mismatches.Total() == 0
}

// Group is every hit of one guide, in input order.
type Group struct {
	ID   string
	Hits []Hit
}

// Hits is parsed alignment tool output.
type Hits struct {
	// Headers are the '#' lines, verbatim, in input order.
	Headers []string
	// Groups are ordered by the first appearance of their guide ID.
	Groups []*Group
}

// ReadHits parses alignment tool output.  Blank lines are dropped and lines
// starting with '#' are kept as headers.  A data line with fewer than four
// tab-separated fields, or whose aligned sequence cannot be split into zones,
// is an errors.Integrity error.
func ReadHits(r io.Reader) (*Hits, error) {
	var (
		hits    = &Hits{}
		byID    = map[string]*Group{}
		lineNum int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxLineSize)
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line[0] == '#' {
			hits.Headers = append(hits.Headers, line)
			continue
		}
		line = strings.TrimSuffix(line, OnTargetMarker)
		fields := strings.Split(line, "\t")
		if len(fields) < minFields {
			return nil, errors.E(errors.Integrity,
				fmt.Sprintf("line %d: expected at least %d tab-separated fields, found %d: %q",
					lineNum, minFields, len(fields), line))
		}
		mm, err := CountMismatches(fields[seqField])
		if err != nil {
			return nil, errors.E(errors.Integrity, fmt.Sprintf("line %d", lineNum), err)
		}
		id := fields[idField]
		g, ok := byID[id]
		if !ok {
			g = &Group{ID: id}
			byID[id] = g
			hits.Groups = append(hits.Groups, g)
		}
		g.Hits = append(g.Hits, Hit{Line: line, LineNum: lineNum, Seq: fields[seqField], Mismatches: mm})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return hits, nil
}

// Decision is the verdict on one guide.
type Decision struct {
	Group    *Group
	Accepted bool
	// Reason says why a guide was rejected.  It is empty for accepted
	// guides.
	Reason string
}

// decide accepts g iff it has an on-target hit and none of its other hits
// disqualifies it.  The scan stops at the first disqualifying hit.
func decide(g *Group, level Stringency) Decision {
	hasOnTarget := false
	for _, h := range g.Hits {
		if h.OnTarget() {
			hasOnTarget = true
			continue
		}
		if level.Disqualifies(h.Mismatches.Distal, h.Mismatches.Proximal) {
			return Decision{Group: g, Reason: fmt.Sprintf("off-target at line %d (distal=%d, proximal=%d)",
				h.LineNum, h.Mismatches.Distal, h.Mismatches.Proximal)}
		}
	}
	if !hasOnTarget {
		return Decision{Group: g, Reason: "no zero-mismatch hit"}
	}
	return Decision{Group: g, Accepted: true}
}

// Result is the outcome of classifying alignment tool output.
type Result struct {
	Level     Stringency
	Headers   []string
	Decisions []Decision
}

// Classify decides, for every guide in hits, whether its off-target profile
// is acceptable under the given stringency.
func Classify(hits *Hits, level Stringency) *Result {
	r := &Result{Level: level, Headers: hits.Headers, Decisions: make([]Decision, len(hits.Groups))}
	for i, g := range hits.Groups {
		r.Decisions[i] = decide(g, level)
	}
	return r
}

// Filter reads alignment tool output from in and classifies it.
func Filter(in io.Reader, level Stringency) (*Result, error) {
	hits, err := ReadHits(in)
	if err != nil {
		return nil, err
	}
	return Classify(hits, level), nil
}

// AcceptedIDs returns the IDs of the accepted guides, in input order.
func (r *Result) AcceptedIDs() []string {
	var ids []string
	for _, d := range r.Decisions {
		if d.Accepted {
			ids = append(ids, d.Group.ID)
		}
	}
	return ids
}

// RejectedIDs returns the IDs of the rejected guides, in input order.
func (r *Result) RejectedIDs() []string {
	var ids []string
	for _, d := range r.Decisions {
		if !d.Accepted {
			ids = append(ids, d.Group.ID)
		}
	}
	return ids
}

// NumAccepted returns the number of accepted guides.
func (r *Result) NumAccepted() int {
	n := 0
	for _, d := range r.Decisions {
		if d.Accepted {
			n++
		}
	}
	return n
}

// Write writes the headers followed by every hit of the accepted guides.
// Guides appear in input order and their hits in input order.  Zero-mismatch
// hits carry OnTargetMarker.
func (r *Result) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, h := range r.Headers {
		bw.WriteString(h)
		bw.WriteByte('\n')
	}
	for _, d := range r.Decisions {
		if !d.Accepted {
			continue
		}
		for _, h := range d.Group.Hits {
			bw.WriteString(h.Line)
			if h.OnTarget() {
				bw.WriteString(OnTargetMarker)
			}
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}
