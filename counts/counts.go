// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package counts provides gene by sample read-count matrices and the
// preparation steps shared by the analysis pipelines.
package counts

import (
	"fmt"
)

// Matrix is a dense table of non-negative read counts with genes as rows
// and samples as columns. Subsetting operations return new matrices; a
// Matrix is never modified after construction.
type Matrix struct {
	genes   []string
	samples []string
	data    [][]float64 // Row major, parallel to genes.
	index   map[string]int
}

// New returns a matrix over the given gene and sample identifiers. The
// data slice is used directly and must not be modified afterwards. It is
// an error for gene identifiers to repeat, for row lengths to disagree
// with the number of samples, or for any count to be negative.
func New(genes, samples []string, data [][]float64) (*Matrix, error) {
	if len(data) != len(genes) {
		return nil, fmt.Errorf("counts: have %d rows for %d genes", len(data), len(genes))
	}
	index := make(map[string]int, len(genes))
	for i, g := range genes {
		if _, ok := index[g]; ok {
			return nil, fmt.Errorf("counts: duplicate gene identifier %q", g)
		}
		index[g] = i
		if len(data[i]) != len(samples) {
			return nil, fmt.Errorf("counts: row %q has %d values for %d samples", g, len(data[i]), len(samples))
		}
		for j, v := range data[i] {
			if v < 0 {
				return nil, fmt.Errorf("counts: negative count %v for gene %q sample %q", v, g, samples[j])
			}
		}
	}
	return &Matrix{genes: genes, samples: samples, data: data, index: index}, nil
}

// Len returns the number of genes in the matrix.
func (m *Matrix) Len() int { return len(m.genes) }

// Genes returns a copy of the matrix gene identifiers in row order.
func (m *Matrix) Genes() []string {
	g := make([]string, len(m.genes))
	copy(g, m.genes)
	return g
}

// Samples returns a copy of the matrix sample identifiers in column order.
func (m *Matrix) Samples() []string {
	s := make([]string, len(m.samples))
	copy(s, m.samples)
	return s
}

// Gene returns the identifier of the ith row.
func (m *Matrix) Gene(i int) string { return m.genes[i] }

// At returns the count for the ith gene in the jth sample.
func (m *Matrix) At(i, j int) float64 { return m.data[i][j] }

// Row returns a copy of the counts for the ith gene.
func (m *Matrix) Row(i int) []float64 {
	r := make([]float64, len(m.data[i]))
	copy(r, m.data[i])
	return r
}

// Column returns a copy of the counts for the jth sample.
func (m *Matrix) Column(j int) []float64 {
	col := make([]float64, len(m.data))
	for i, row := range m.data {
		col[i] = row[j]
	}
	return col
}

// ColumnSums returns the total count of each sample.
func (m *Matrix) ColumnSums() []float64 {
	sums := make([]float64, len(m.samples))
	for _, row := range m.data {
		for j, v := range row {
			sums[j] += v
		}
	}
	return sums
}

// SelectGenes returns a new matrix restricted to the named genes in the
// given order. Unknown genes are an error.
func (m *Matrix) SelectGenes(genes []string) (*Matrix, error) {
	data := make([][]float64, len(genes))
	names := make([]string, len(genes))
	for i, g := range genes {
		r, ok := m.index[g]
		if !ok {
			return nil, fmt.Errorf("counts: no gene %q", g)
		}
		names[i] = g
		data[i] = m.Row(r)
	}
	return New(names, m.Samples(), data)
}

// SelectSamples returns a new matrix restricted to the named samples in
// the given order. Unknown samples are an error.
func (m *Matrix) SelectSamples(keep []string) (*Matrix, error) {
	cols := make([]int, len(keep))
	for i, want := range keep {
		cols[i] = -1
		for j, s := range m.samples {
			if s == want {
				cols[i] = j
				break
			}
		}
		if cols[i] < 0 {
			return nil, fmt.Errorf("counts: no sample %q", want)
		}
	}
	names := make([]string, len(keep))
	copy(names, keep)
	data := make([][]float64, len(m.genes))
	for i, row := range m.data {
		data[i] = make([]float64, len(cols))
		for k, j := range cols {
			data[i][k] = row[j]
		}
	}
	return New(m.Genes(), names, data)
}

// Intersect restricts a and b to their shared gene set, returning two new
// matrices with identical row order. Row order follows the order of
// appearance in a.
func Intersect(a, b *Matrix) (*Matrix, *Matrix, error) {
	var shared []string
	for _, g := range a.genes {
		if _, ok := b.index[g]; ok {
			shared = append(shared, g)
		}
	}
	ra, err := a.SelectGenes(shared)
	if err != nil {
		return nil, nil, err
	}
	rb, err := b.SelectGenes(shared)
	if err != nil {
		return nil, nil, err
	}
	return ra, rb, nil
}

// ColumnMismatchError describes disagreement between the sample columns
// of two matrices that must be analysed jointly.
type ColumnMismatchError struct {
	A, B []string
}

func (e ColumnMismatchError) Error() string {
	return fmt.Sprintf("counts: mismatched sample columns: %v != %v", e.A, e.B)
}

// SameSamples returns a ColumnMismatchError unless a and b have identical
// sample identifiers in identical order.
func SameSamples(a, b *Matrix) error {
	if len(a.samples) != len(b.samples) {
		return ColumnMismatchError{A: a.Samples(), B: b.Samples()}
	}
	for j, s := range a.samples {
		if b.samples[j] != s {
			return ColumnMismatchError{A: a.Samples(), B: b.Samples()}
		}
	}
	return nil
}

// IntronFraction returns, for each sample, the fraction of the total
// signal attributable to the intron matrix. The result is informational
// only; samples with no signal in either matrix report NaN.
func IntronFraction(exon, intron *Matrix) ([]float64, error) {
	if err := SameSamples(exon, intron); err != nil {
		return nil, err
	}
	es := exon.ColumnSums()
	is := intron.ColumnSums()
	frac := make([]float64, len(es))
	for j := range frac {
		frac[j] = is[j] / (es[j] + is[j])
	}
	return frac, nil
}
