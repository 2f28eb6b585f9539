// Copyright 2019 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Command bio-grna designs CRISPR guide RNAs.  It lists every NGG-adjacent
  protospacer of an input sequence on both strands, aligns the candidates
  against a genome with Cas-OFFinder, and keeps the guides whose off-target
  hits pass a seed-region stringency filter.

  Usage:
    bio-grna run -i input.txt -g genome -o output_GF.txt
    bio-grna find -l 20 input.txt candidates.tsv
    bio-grna filter -s maximum Cas-OFFinder_output.txt output_GF.txt
*/
package main
