// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package de

import (
	"math"
	"sort"

	"github.com/biogo/eisa/counts"
)

// Norm selects the size-factor strategy used to place samples on a
// common scale.
type Norm int

const (
	// RelativeLog computes median-of-ratios factors following Anders
	// and Huber, http://genomebiology.com/2010/11/10/r106.
	RelativeLog Norm = iota

	// LibSize scales by sample total counts.
	LibSize

	// Unit applies no depth scaling.
	Unit
)

// SizeFactors returns per-sample factors for m according to the given
// strategy; normalised counts are obtained by dividing each column by its
// factor. Factors are scaled to unit geometric mean.
func SizeFactors(m *counts.Matrix, method Norm) []float64 {
	switch method {
	case LibSize:
		return expMeanLogScaled(m.ColumnSums())
	case Unit:
		return ones(len(m.Samples()))
	}
	return relativeLog(m)
}

// relativeLog returns median-of-ratios factors. Only genes observed in
// every sample contribute; when no gene qualifies the factors fall back
// to scaled library sizes.
func relativeLog(m *counts.Matrix) []float64 {
	nSamples := len(m.Samples())
	var (
		usable []int
		geo    []float64
	)
	for i := 0; i < m.Len(); i++ {
		var logSum float64
		ok := true
		for j := 0; j < nSamples; j++ {
			v := m.At(i, j)
			if v == 0 {
				ok = false
				break
			}
			logSum += math.Log(v)
		}
		if ok {
			usable = append(usable, i)
			geo = append(geo, math.Exp(logSum/float64(nSamples)))
		}
	}
	if len(usable) == 0 {
		return expMeanLogScaled(m.ColumnSums())
	}

	f := make([]float64, nSamples)
	rat := make([]float64, len(usable))
	for j := 0; j < nSamples; j++ {
		for k, i := range usable {
			rat[k] = m.At(i, j) / geo[k]
		}
		f[j] = median(rat)
	}
	return expMeanLogScaled(f)
}

// median returns the median of v, reordering v in the process.
func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

// expMeanLogScaled returns the float64 slice scaled by the exp mean of
// the logged values.
func expMeanLogScaled(f []float64) []float64 {
	var expMeanLog float64
	for _, v := range f {
		expMeanLog += math.Log(v)
	}
	expMeanLog = math.Exp(expMeanLog / float64(len(f)))
	if expMeanLog == 0 || math.IsNaN(expMeanLog) || math.IsInf(expMeanLog, 0) {
		return f
	}
	for i, v := range f {
		f[i] = v / expMeanLog
	}
	return f
}

// ones returns a slice of float64 n long, and populated with unit values.
func ones(n int) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = 1
	}
	return f
}

// factorPair returns the exon size factors and the intron size factors
// under the shared-scaling rule: unless opts.OwnFactors is set the intron
// matrix inherits the exon factors.
func factorPair(exon, intron *counts.Matrix, opts Options) (se, si []float64) {
	se = SizeFactors(exon, opts.Norm)
	if opts.OwnFactors {
		si = SizeFactors(intron, opts.Norm)
		return se, si
	}
	si = make([]float64, len(se))
	copy(si, se)
	return se, si
}
