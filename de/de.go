// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package de provides differential expression analyses over read-count
// matrices: an exon-intron split analysis, a log-linear model comparison
// with a batch covariate, and a single-matrix Wald test.
package de

import (
	"errors"
	"math"

	"github.com/biogo/eisa/counts"
	"github.com/biogo/eisa/samples"
)

// Row is a single-gene differential expression result. LogFC is the log2
// fold-change between conditions; positive values indicate the gene is up
// in the treatment condition relative to the reference.
type Row struct {
	ID       string
	BaseMean float64 // Mean abundance, log2 scale.
	LogFC    float64
	PValue   float64
	AdjP     float64 // Benjamini-Hochberg adjusted p-value.
	Symbol   string
}

// Options configure an analysis. The zero value selects an adjusted
// p-value threshold of 0.05, a pseudocount of 8, no expression filter and
// median-of-ratios size factors.
type Options struct {
	// Alpha is the adjusted p-value significance threshold.
	Alpha float64

	// Pseudocount is added to normalised counts before log2
	// transformation.
	Pseudocount float64

	// MinMean is the minimum mean normalised count for a gene to be
	// tested.
	MinMean float64

	// Norm selects the size-factor strategy.
	Norm Norm

	// Recompute recomputes size factors after the expression filter
	// has been applied.
	Recompute bool

	// OwnFactors allows the intron matrix its own size factors. By
	// default intron factors are forced equal to the exon factors;
	// both matrices derive from the same libraries and must share
	// depth scaling.
	OwnFactors bool
}

func (o Options) withDefaults() Options {
	if o.Alpha == 0 {
		o.Alpha = 0.05
	}
	if o.Pseudocount == 0 {
		o.Pseudocount = 8
	}
	return o
}

// FitError records a failed statistical model fit, typically from a
// singular model matrix.
type FitError struct {
	Err error
}

func (e *FitError) Error() string { return "de: model fit failed: " + e.Err.Error() }

func (e *FitError) Unwrap() error { return e.Err }

// matchFactor confirms that the factor samples are exactly the matrix
// columns, in order.
func matchFactor(m *counts.Matrix, f *samples.Factor) error {
	ms := m.Samples()
	fs := f.Samples()
	if len(ms) != len(fs) {
		return errors.New("de: factor samples do not match matrix columns")
	}
	for i, s := range ms {
		if fs[i] != s {
			return errors.New("de: factor samples do not match matrix columns")
		}
	}
	return nil
}

// sameGenes confirms that a and b hold the same genes in the same order.
func sameGenes(a, b *counts.Matrix) error {
	if a.Len() != b.Len() {
		return errors.New("de: mismatched gene sets")
	}
	for i := 0; i < a.Len(); i++ {
		if a.Gene(i) != b.Gene(i) {
			return errors.New("de: mismatched gene sets")
		}
	}
	return nil
}

// normalise returns the matrix counts divided column-wise by the size
// factors.
func normalise(m *counts.Matrix, factors []float64) [][]float64 {
	norm := make([][]float64, m.Len())
	for i := range norm {
		row := m.Row(i)
		for j, v := range row {
			row[j] = v / factors[j]
		}
		norm[i] = row
	}
	return norm
}

// log2p returns log2(v+pseudo) applied elementwise to a fresh slice.
func log2p(row []float64, pseudo float64) []float64 {
	l := make([]float64, len(row))
	for j, v := range row {
		l[j] = math.Log2(v + pseudo)
	}
	return l
}

func mean(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

// split partitions v into reference and treatment values according to f.
func split(v []float64, f *samples.Factor) (ref, treat []float64) {
	for i, x := range v {
		if f.IsTreat(i) {
			treat = append(treat, x)
		} else {
			ref = append(ref, x)
		}
	}
	return ref, treat
}

// expressed returns the names of genes whose mean normalised count
// reaches min in every one of the given normalised matrices.
func expressed(m *counts.Matrix, min float64, norm ...[][]float64) []string {
	var keep []string
	for i := 0; i < m.Len(); i++ {
		ok := true
		for _, n := range norm {
			if mean(n[i]) < min {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, m.Gene(i))
		}
	}
	return keep
}
