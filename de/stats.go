// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package de

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// welch returns the two-sided p-value for Welch's unequal-variance t-test
// comparing the locations of a and b. Groups with fewer than two values
// are untestable and report 1.
func welch(a, b []float64) float64 {
	if len(a) < 2 || len(b) < 2 {
		return 1
	}
	na, nb := float64(len(a)), float64(len(b))
	ma, va := stat.MeanVariance(a, nil)
	mb, vb := stat.MeanVariance(b, nil)

	sea := va / na
	seb := vb / nb
	se := math.Sqrt(sea + seb)
	if se == 0 {
		if ma == mb {
			return 1
		}
		return 0
	}
	t := (mb - ma) / se

	// Welch-Satterthwaite degrees of freedom.
	df := (sea + seb) * (sea + seb) / (sea*sea/(na-1) + seb*seb/(nb-1))
	if df < 1 {
		df = 1
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.CDF(-math.Abs(t))
}

// AdjustBH sets the adjusted p-value of each row using the
// Benjamini-Hochberg step-up procedure. Rows without a p-value do not
// count towards the number of tests and keep a NaN adjustment.
func AdjustBH(rows []Row) {
	var idx []int
	for i, r := range rows {
		rows[i].AdjP = math.NaN()
		if !math.IsNaN(r.PValue) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return
	}
	sort.Slice(idx, func(i, j int) bool { return rows[idx[i]].PValue < rows[idx[j]].PValue })

	n := float64(len(idx))
	min := 1.0
	for i := len(idx) - 1; i >= 0; i-- {
		adjusted := rows[idx[i]].PValue * n / float64(i+1)
		if adjusted > 1 {
			adjusted = 1
		}
		if adjusted < min {
			min = adjusted
		} else {
			adjusted = min
		}
		rows[idx[i]].AdjP = adjusted
	}
}
