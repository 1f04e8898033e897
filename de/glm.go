// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package de

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/biogo/eisa/counts"
	"github.com/biogo/eisa/samples"
)

// GLM jointly models the exon and intron counts of each gene on the log2
// scale with a read-type batch covariate, comparing the full model
// (intercept, batch, condition) against the reduced model (intercept,
// batch) with an F test on residual sums of squares. The reported log
// fold-change is the condition coefficient; positive values are up in
// treatment. Genes failing the expression filter are excluded from the
// result.
func GLM(exon, intron *counts.Matrix, f *samples.Factor, opts Options) ([]Row, error) {
	opts = opts.withDefaults()
	if err := counts.SameSamples(exon, intron); err != nil {
		return nil, err
	}
	if err := sameGenes(exon, intron); err != nil {
		return nil, err
	}
	if err := matchFactor(exon, f); err != nil {
		return nil, err
	}

	se, si := factorPair(exon, intron, opts)
	ne := normalise(exon, se)
	ni := normalise(intron, si)

	keep := expressed(exon, opts.MinMean, ne, ni)
	if len(keep) != exon.Len() {
		var err error
		exon, err = exon.SelectGenes(keep)
		if err != nil {
			return nil, err
		}
		intron, err = intron.SelectGenes(keep)
		if err != nil {
			return nil, err
		}
		if opts.Recompute {
			se, si = factorPair(exon, intron, opts)
		}
		ne = normalise(exon, se)
		ni = normalise(intron, si)
	}

	n := f.Len()
	obs := 2 * n
	const p = 3 // intercept, batch, condition
	dof := obs - p
	if dof < 1 {
		return nil, &FitError{Err: errors.New("too few samples for model")}
	}

	// Observations are ordered exon samples then intron samples.
	full := mat.NewDense(obs, p, nil)
	reduced := mat.NewDense(obs, p-1, nil)
	for j := 0; j < n; j++ {
		cond := 0.0
		if f.IsTreat(j) {
			cond = 1
		}
		full.SetRow(j, []float64{1, 0, cond})
		full.SetRow(n+j, []float64{1, 1, cond})
		reduced.SetRow(j, []float64{1, 0})
		reduced.SetRow(n+j, []float64{1, 1})
	}

	nGenes := exon.Len()
	y := mat.NewDense(obs, nGenes, nil)
	for i := 0; i < nGenes; i++ {
		e := log2p(ne[i], opts.Pseudocount)
		in := log2p(ni[i], opts.Pseudocount)
		for j := 0; j < n; j++ {
			y.Set(j, i, e[j])
			y.Set(n+j, i, in[j])
		}
	}

	rssFull, coef, err := fit(full, y)
	if err != nil {
		return nil, err
	}
	rssReduced, _, err := fit(reduced, y)
	if err != nil {
		return nil, err
	}

	fdist := distuv.F{D1: 1, D2: float64(dof)}
	rows := make([]Row, nGenes)
	for i := range rows {
		var baseSum float64
		for o := 0; o < obs; o++ {
			baseSum += y.At(o, i)
		}
		num := rssReduced[i] - rssFull[i]
		if num < 0 {
			num = 0
		}
		var pval float64
		switch {
		case rssFull[i] > 0:
			pval = fdist.Survival(num / (rssFull[i] / float64(dof)))
		case num > 0:
			pval = 0
		default:
			pval = 1
		}
		rows[i] = Row{
			ID:       exon.Gene(i),
			BaseMean: baseSum / float64(obs),
			LogFC:    coef.At(p-1, i),
			PValue:   pval,
		}
	}
	AdjustBH(rows)
	return rows, nil
}

// fit solves the least squares problem y = x*b for every column of y,
// returning the per-column residual sum of squares and the coefficients.
// A rank deficient design is a FitError; a merely ill-conditioned one is
// tolerated.
func fit(x, y *mat.Dense) ([]float64, *mat.Dense, error) {
	var b mat.Dense
	err := b.Solve(x, y)
	if err != nil {
		cond, ok := err.(mat.Condition)
		if !ok || math.IsInf(float64(cond), 0) {
			return nil, nil, &FitError{Err: err}
		}
	}
	var pred mat.Dense
	pred.Mul(x, &b)
	var resid mat.Dense
	resid.Sub(y, &pred)

	obs, nGenes := y.Dims()
	rss := make([]float64, nGenes)
	for i := 0; i < nGenes; i++ {
		var sum float64
		for o := 0; o < obs; o++ {
			r := resid.At(o, i)
			sum += r * r
		}
		rss[i] = sum
	}
	return rss, &b, nil
}
