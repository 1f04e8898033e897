// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package de

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/biogo/eisa/counts"
	"github.com/biogo/eisa/samples"
)

const minDispersion = 1e-8

// DESeq performs a single-matrix negative-binomial Wald test of the
// count matrix m under a two-level condition factor: median-of-ratios
// size factors, per-gene method-of-moments dispersion, and a normal
// approximation to the log2 fold-change standard error. Unlike EISA and
// GLM, genes failing the expression filter remain in the result with NaN
// statistics.
func DESeq(m *counts.Matrix, f *samples.Factor, opts Options) ([]Row, error) {
	opts = opts.withDefaults()
	if err := matchFactor(m, f); err != nil {
		return nil, err
	}

	factors := SizeFactors(m, opts.Norm)
	norm := normalise(m, factors)

	ps := opts.Pseudocount
	rows := make([]Row, m.Len())
	for i := range rows {
		ref, treat := split(norm[i], f)
		mr, vr := stat.MeanVariance(ref, nil)
		mt, vt := stat.MeanVariance(treat, nil)
		base := mean(norm[i])

		rows[i] = Row{
			ID:       m.Gene(i),
			BaseMean: math.Log2(base + ps),
			LogFC:    math.NaN(),
			PValue:   math.NaN(),
		}
		if base < opts.MinMean {
			continue
		}

		lfc := math.Log2((mt + ps) / (mr + ps))
		disp := dispersion(mr, vr, mt, vt)
		se := lfcStdErr(mr, vr, len(ref), mt, vt, len(treat), disp, ps)

		var pval float64
		switch {
		case se > 0:
			pval = 2 * distuv.UnitNormal.Survival(math.Abs(lfc)/se)
		case lfc == 0:
			pval = 1
		default:
			pval = 0
		}
		rows[i].LogFC = lfc
		rows[i].PValue = pval
	}
	AdjustBH(rows)
	return rows, nil
}

// dispersion estimates the negative binomial dispersion by the method of
// moments, pooling the two condition groups and flooring at a small
// positive value.
func dispersion(mr, vr, mt, vt float64) float64 {
	var sum float64
	var n int
	if mr > 0 && !math.IsNaN(vr) {
		d := (vr - mr) / (mr * mr)
		if d < 0 {
			d = 0
		}
		sum += d
		n++
	}
	if mt > 0 && !math.IsNaN(vt) {
		d := (vt - mt) / (mt * mt)
		if d < 0 {
			d = 0
		}
		sum += d
		n++
	}
	if n == 0 {
		return minDispersion
	}
	disp := sum / float64(n)
	if disp < minDispersion {
		disp = minDispersion
	}
	return disp
}

// lfcStdErr returns the delta-method standard error of the log2
// fold-change under negative binomial count variance mean+disp*mean².
func lfcStdErr(mr, vr float64, nr int, mt, vt float64, nt int, disp, ps float64) float64 {
	const ln2 = math.Ln2
	nbVar := func(m float64) float64 { return m + disp*m*m }
	ser := nbVar(mr) / (float64(nr) * (mr + ps) * (mr + ps))
	set := nbVar(mt) / (float64(nt) * (mt + ps) * (mt + ps))
	return math.Sqrt(ser+set) / ln2
}
