// Package fasta reads the nucleotide input of the guide finder.  Two layouts
// are accepted:
//
// Plain sequence text, possibly wrapped over several lines:
//
// ACGTAC
// GAGGAC
//
// or FASTA, where each named sequence starts with a '>' line and may be
// interrupted by newlines:
//
// >chr7
// ACGTAC
// GAGGAC
// GCG
// >chr8
// ACGT
//
// Note: Sequence names are defined to be the stretch of characters excluding
// spaces immediately after '>'.  Any text appear after a space are ignored.
// For example, '>chr1 A viral sequence' becomes 'chr1'.
package fasta

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	bufferInitSize = 1024 * 1024 * 300 // 300 MB
)

// Record is one named sequence of a FASTA file.  Seq has all whitespace
// removed but is otherwise returned as found (case is preserved).
type Record struct {
	Name string
	Seq  []byte
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

// appendLine appends line to seq, dropping whitespace.
func appendLine(seq *bytes.Buffer, line []byte) {
	for _, c := range line {
		if !isSpace(c) {
			seq.WriteByte(c)
		}
	}
}

// Read parses FASTA-formatted data from r and returns its records in order
// of appearance.  Data lines that appear before the first '>' line make the
// input malformed.
func Read(r io.Reader) ([]Record, error) {
	var (
		records []Record
		seq     bytes.Buffer
	)
	flush := func() {
		if len(records) > 0 {
			records[len(records)-1].Seq = append([]byte(nil), seq.Bytes()...)
			seq.Reset()
		}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		if line[0] == '>' { // Start a new sequence.
			flush()
			name := ""
			if fields := strings.Fields(string(line[1:])); len(fields) > 0 {
				name = fields[0]
			}
			records = append(records, Record{Name: name})
			continue
		}
		if len(records) == 0 {
			return nil, errors.Errorf("malformed FASTA file: sequence data before the first '>' line")
		}
		appendLine(&seq, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read FASTA data")
	}
	flush()
	return records, nil
}

// ReadSequence reads a single DNA sequence from r.  The input is either
// plain sequence text, whose lines are joined into one sequence, or FASTA
// holding exactly one record.  The layout is decided by the first
// non-whitespace byte.  An empty input yields an empty sequence.
func ReadSequence(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	for {
		c, err := br.ReadByte()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "couldn't read sequence data")
		}
		if isSpace(c) {
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return nil, err
		}
		if c == '>' {
			return readSingleRecord(br)
		}
		return readPlain(br)
	}
}

func readSingleRecord(r io.Reader) ([]byte, error) {
	records, err := Read(r)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, errors.Errorf("expected one FASTA record, found %d", len(records))
	}
	return records[0].Seq, nil
}

func readPlain(r io.Reader) ([]byte, error) {
	var seq bytes.Buffer
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, bufferInitSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] == '>' {
			return nil, errors.Errorf("malformed sequence file: unexpected FASTA header %q", line)
		}
		appendLine(&seq, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "couldn't read sequence data")
	}
	return seq.Bytes(), nil
}
