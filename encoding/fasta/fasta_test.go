package fasta_test

import (
	"strings"
	"testing"

	"github.com/grailbio/grna/encoding/fasta"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	data := ">seq1\n" + "ACGTA\nCGTAC\nGT\n" + "\n>seq2 A viral sequence\n" + "ac gt\r\n" + "ACGT\n"
	records, err := fasta.Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 2)
	expect.EQ(t, records[0].Name, "seq1")
	expect.EQ(t, string(records[0].Seq), "ACGTACGTACGT")
	expect.EQ(t, records[1].Name, "seq2")
	expect.EQ(t, string(records[1].Seq), "acgtACGT")
}

func TestReadMalformed(t *testing.T) {
	_, err := fasta.Read(strings.NewReader("ACGT\n>seq1\nACGT\n"))
	require.Error(t, err)
}

func TestReadSequence(t *testing.T) {
	tests := []struct {
		data    string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"\n\n  \n", "", false},
		{"ACGT", "ACGT", false},
		{"acgt\nAAGG\r\n\n TTT\n", "acgtAAGGTTT", false},
		{"\n>chr1 description\nACG\nTT\n", "ACGTT", false},
		{">chr1\n", "", false},
		{">chr1\nAC\n>chr2\nGT\n", "", true},
		{"ACGT\n>chr1\nAC\n", "", true},
	}
	for _, test := range tests {
		got, err := fasta.ReadSequence(strings.NewReader(test.data))
		if test.wantErr {
			require.Error(t, err, "data=%q", test.data)
			continue
		}
		require.NoError(t, err, "data=%q", test.data)
		expect.EQ(t, string(got), test.want, "data=%q", test.data)
	}
}
