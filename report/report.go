// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report ranks differential expression result tables and renders
// them as delimited text files and diagnostic plots.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/biogo/eisa/de"
)

// UpDown returns the number of genes significantly up- and
// down-regulated at the adjusted p-value threshold alpha.
func UpDown(rows []de.Row, alpha float64) (up, down int) {
	for _, r := range rows {
		if !(r.AdjP < alpha) {
			continue
		}
		switch {
		case r.LogFC > 0:
			up++
		case r.LogFC < 0:
			down++
		}
	}
	return up, down
}

// Ratio returns the up to down count ratio. The result is +Inf when down
// is zero and up is not; this is reported, not trapped.
func Ratio(up, down int) float64 {
	return float64(up) / float64(down)
}

// Sort orders rows by adjusted p-value ascending, breaking ties by log
// fold-change descending. Rows without an adjusted p-value sort last.
func Sort(rows []de.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rows[i].AdjP, rows[j].AdjP
		switch {
		case math.IsNaN(pi):
			return false
		case math.IsNaN(pj):
			return true
		case pi != pj:
			return pi < pj
		}
		return rows[i].LogFC > rows[j].LogFC
	})
}

// WriteTable writes rows as a tab-delimited table with the gene
// identifier in the first column and no quoting. Missing statistics are
// written as NA.
func WriteTable(w io.Writer, rows []de.Row) error {
	b := bufio.NewWriter(w)
	fmt.Fprintln(b, "gene\tbaseMean\tlog2FoldChange\tpvalue\tpadj\tsymbol")
	for _, r := range rows {
		fmt.Fprintf(b, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, number(r.BaseMean), number(r.LogFC), number(r.PValue), number(r.AdjP), r.Symbol)
	}
	return b.Flush()
}

// WriteTableFile writes rows to the named file with WriteTable.
func WriteTableFile(path string, rows []de.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteTable(f, rows)
}

func number(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
