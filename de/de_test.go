// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package de

import (
	"math"
	"strconv"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
	check "gopkg.in/check.v1"

	"github.com/biogo/eisa/counts"
	"github.com/biogo/eisa/samples"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func mustNew(c *check.C, genes, names []string, data [][]float64) *counts.Matrix {
	m, err := counts.New(genes, names, data)
	c.Assert(err, check.IsNil)
	return m
}

func mustFactor(c *check.C, ids []string, ref, treat string) *samples.Factor {
	f, err := samples.NewFactor(ids, samples.Conditions(ids), ref, treat)
	c.Assert(err, check.IsNil)
	return f
}

// scenario returns the small worked example: one strongly regulated gene
// and one stable gene over two conditions, with intron counts at 0.3 of
// the exon signal.
func scenario(c *check.C) (exon, intron *counts.Matrix, f *samples.Factor) {
	ids := []string{"A_1", "A_2", "B_1", "B_2"}
	genes := []string{"G1", "G2"}
	exonData := [][]float64{
		{100, 120, 20, 25},
		{50, 55, 52, 48},
	}
	intronData := make([][]float64, len(exonData))
	for i, row := range exonData {
		intronData[i] = make([]float64, len(row))
		for j, v := range row {
			intronData[i][j] = 0.3 * v
		}
	}
	exon = mustNew(c, genes, ids, exonData)
	intron = mustNew(c, genes, ids, intronData)
	return exon, intron, mustFactor(c, ids, "A", "B")
}

func (s *S) TestAdjustBH(c *check.C) {
	rows := []Row{
		{ID: "a", PValue: 0.01},
		{ID: "b", PValue: 0.04},
		{ID: "c", PValue: 0.03},
		{ID: "d", PValue: 0.02},
	}
	AdjustBH(rows)
	for _, r := range rows {
		c.Check(r.AdjP, checkWithin, 0.04, 1e-12, check.Commentf("id=%s", r.ID))
	}

	rows = []Row{
		{ID: "a", PValue: 0.01},
		{ID: "b", PValue: math.NaN()},
		{ID: "c", PValue: 0.5},
	}
	AdjustBH(rows)
	c.Check(rows[0].AdjP, check.Equals, 0.02)
	c.Check(math.IsNaN(rows[1].AdjP), check.Equals, true)
	c.Check(rows[2].AdjP, check.Equals, 0.5)

	// Adjusted values never exceed 1.
	rows = []Row{{PValue: 0.6}, {PValue: 1}}
	AdjustBH(rows)
	c.Check(rows[0].AdjP, check.Equals, 1.0)
	c.Check(rows[1].AdjP, check.Equals, 1.0)
}

func (s *S) TestWelch(c *check.C) {
	// Clearly separated groups.
	p := welch([]float64{1, 1.1, 0.9, 1.05}, []float64{5, 5.2, 4.9, 5.1})
	c.Check(p < 0.001, check.Equals, true)

	// Identical groups.
	c.Check(welch([]float64{1, 2, 3}, []float64{1, 2, 3}), checkWithin, 1.0, 1e-9)

	// Untestable group sizes.
	c.Check(welch([]float64{1}, []float64{2, 3}), check.Equals, 1.0)

	// Zero variance, distinct locations.
	c.Check(welch([]float64{1, 1}, []float64{2, 2}), check.Equals, 0.0)
}

func (s *S) TestSizeFactors(c *check.C) {
	// Column two holds twice the depth of column one.
	m := mustNew(c,
		[]string{"G1", "G2", "G3"},
		[]string{"s1", "s2"},
		[][]float64{{10, 20}, {100, 200}, {50, 100}},
	)
	f := SizeFactors(m, RelativeLog)
	c.Assert(f, check.HasLen, 2)
	c.Check(f[1]/f[0], checkWithin, 2.0, 1e-12)
	// Unit geometric mean.
	c.Check(f[0]*f[1], checkWithin, 1.0, 1e-12)

	lib := SizeFactors(m, LibSize)
	c.Check(lib[1]/lib[0], checkWithin, 2.0, 1e-12)

	c.Check(SizeFactors(m, Unit), check.DeepEquals, []float64{1, 1})
}

func (s *S) TestSharedFactors(c *check.C) {
	exon, _, f := scenario(c)
	// Intron libraries sequenced at uneven relative depth, so the
	// intron matrix's own factors disagree with the exon factors.
	intron := mustNew(c,
		[]string{"G1", "G2"},
		[]string{"A_1", "A_2", "B_1", "B_2"},
		[][]float64{{30, 72, 6, 8}, {15, 33, 16, 14}},
	)

	an, err := EISA(exon, intron, f, Options{})
	c.Assert(err, check.IsNil)
	c.Check(an.IntronFactors, check.DeepEquals, an.ExonFactors)

	an, err = EISA(exon, intron, f, Options{OwnFactors: true})
	c.Assert(err, check.IsNil)
	c.Check(an.IntronFactors, check.Not(check.DeepEquals), an.ExonFactors)
}

func (s *S) TestEISAScenario(c *check.C) {
	exon, intron, f := scenario(c)

	an, err := EISA(exon, intron, f, Options{Norm: Unit})
	c.Assert(err, check.IsNil)
	c.Assert(an.Exon, check.HasLen, 2)

	g1, g2 := an.Exon[0], an.Exon[1]
	c.Check(g1.ID, check.Equals, "G1")
	c.Check(g1.AdjP < 0.05, check.Equals, true)
	c.Check(g1.LogFC < -1, check.Equals, true) // Down in treatment.
	c.Check(g2.AdjP > 0.3, check.Equals, true)

	// The intron counts track the exon counts, so the split analysis
	// sees no post-transcriptional signal.
	for _, r := range an.Interaction {
		c.Check(math.Abs(r.LogFC) < 1, check.Equals, true, check.Commentf("id=%s", r.ID))
	}
}

func (s *S) TestEISAFilter(c *check.C) {
	ids := []string{"A_1", "A_2", "B_1", "B_2"}
	exon := mustNew(c,
		[]string{"G1", "G2"},
		ids,
		[][]float64{{100, 120, 20, 25}, {1, 0, 1, 0}},
	)
	intron := mustNew(c,
		[]string{"G1", "G2"},
		ids,
		[][]float64{{30, 36, 6, 8}, {0, 1, 0, 1}},
	)
	f := mustFactor(c, ids, "A", "B")

	an, err := EISA(exon, intron, f, Options{Norm: Unit, MinMean: 5})
	c.Assert(err, check.IsNil)
	// Low expression genes are excluded entirely.
	c.Check(an.Interaction, check.HasLen, 1)
	c.Check(an.Interaction[0].ID, check.Equals, "G1")
}

func (s *S) TestEISAPreconditions(c *check.C) {
	exon, intron, f := scenario(c)

	other := mustNew(c, []string{"G1"}, []string{"A_1", "A_2", "B_1", "B_2"},
		[][]float64{{1, 2, 3, 4}})
	_, err := EISA(exon, other, f, Options{})
	c.Check(err, check.ErrorMatches, `de: mismatched gene sets`)

	swapped, err := intron.SelectSamples([]string{"B_1", "B_2", "A_1", "A_2"})
	c.Assert(err, check.IsNil)
	_, err = EISA(exon, swapped, f, Options{})
	c.Check(err, check.FitsTypeOf, counts.ColumnMismatchError{})
}

func (s *S) TestGLMScenario(c *check.C) {
	exon, intron, f := scenario(c)

	rows, err := GLM(exon, intron, f, Options{Norm: Unit})
	c.Assert(err, check.IsNil)
	c.Assert(rows, check.HasLen, 2)
	c.Check(rows[0].ID, check.Equals, "G1")
	c.Check(rows[0].AdjP < 0.05, check.Equals, true)
	c.Check(rows[0].LogFC < -1, check.Equals, true)
	c.Check(rows[1].AdjP > 0.1, check.Equals, true)
}

func (s *S) TestGLMFitError(c *check.C) {
	// A design with linearly dependent columns is rank deficient.
	x := mat.NewDense(4, 2, []float64{
		1, 2,
		1, 2,
		1, 2,
		1, 2,
	})
	y := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	_, _, err := fit(x, y)
	c.Check(err, check.FitsTypeOf, &FitError{})

	// A factor with no assigned samples leaves the model under
	// determined.
	exon := mustNew(c, []string{"G1"}, nil, [][]float64{{}})
	intron := mustNew(c, []string{"G1"}, nil, [][]float64{{}})
	_, err = GLM(exon, intron, &samples.Factor{Ref: "A", Treat: "B"}, Options{Norm: Unit})
	c.Check(err, check.FitsTypeOf, &FitError{})
}

func (s *S) TestDESeqScenario(c *check.C) {
	exon, _, f := scenario(c)

	rows, err := DESeq(exon, f, Options{Norm: Unit})
	c.Assert(err, check.IsNil)
	c.Assert(rows, check.HasLen, 2)
	c.Check(rows[0].AdjP < 0.05, check.Equals, true)
	c.Check(rows[0].LogFC < -1, check.Equals, true)
	c.Check(rows[1].AdjP > 0.3, check.Equals, true)
}

func (s *S) TestDESeqFilteredNA(c *check.C) {
	ids := []string{"A_1", "A_2", "B_1", "B_2"}
	m := mustNew(c,
		[]string{"G1", "G2"},
		ids,
		[][]float64{{100, 120, 20, 25}, {1, 0, 1, 0}},
	)
	f := mustFactor(c, ids, "A", "B")

	rows, err := DESeq(m, f, Options{Norm: Unit, MinMean: 5})
	c.Assert(err, check.IsNil)
	// Filtered genes are reported with NaN statistics, not dropped.
	c.Assert(rows, check.HasLen, 2)
	c.Check(math.IsNaN(rows[1].LogFC), check.Equals, true)
	c.Check(math.IsNaN(rows[1].PValue), check.Equals, true)
	c.Check(math.IsNaN(rows[1].AdjP), check.Equals, true)
	c.Check(math.IsNaN(rows[1].BaseMean), check.Equals, false)
	c.Check(math.IsNaN(rows[0].PValue), check.Equals, false)
}

// TestNullFDR checks false discovery control on data with no condition
// effect: the fraction of genes called at 0.05 must not systematically
// exceed the nominal rate.
func (s *S) TestNullFDR(c *check.C) {
	const (
		nGenes   = 400
		nSamples = 8
	)
	ids := []string{"A_1", "A_2", "A_3", "A_4", "B_1", "B_2", "B_3", "B_4"}
	exonPois := distuv.Poisson{Lambda: 100, Src: rand.NewSource(1)}
	intronPois := distuv.Poisson{Lambda: 30, Src: rand.NewSource(2)}

	genes := make([]string, nGenes)
	exonData := make([][]float64, nGenes)
	intronData := make([][]float64, nGenes)
	for i := range genes {
		genes[i] = "G" + strconv.Itoa(i)
		exonData[i] = make([]float64, nSamples)
		intronData[i] = make([]float64, nSamples)
		for j := 0; j < nSamples; j++ {
			exonData[i][j] = exonPois.Rand()
			intronData[i][j] = intronPois.Rand()
		}
	}
	exon := mustNew(c, genes, ids, exonData)
	intron := mustNew(c, genes, ids, intronData)
	f := mustFactor(c, ids, "A", "B")

	an, err := EISA(exon, intron, f, Options{})
	c.Assert(err, check.IsNil)
	for _, table := range [][]Row{an.Interaction, an.Exon, an.Intron} {
		var called int
		for _, r := range table {
			if r.AdjP < 0.05 {
				called++
			}
		}
		c.Check(float64(called)/float64(len(table)) < 0.06, check.Equals, true,
			check.Commentf("called %d of %d", called, len(table)))
	}
}

// checkWithin is a tolerance checker for float64 comparisons.
var checkWithin check.Checker = within{
	&check.CheckerInfo{Name: "Within", Params: []string{"obtained", "expected", "tolerance"}},
}

type within struct {
	*check.CheckerInfo
}

func (w within) Check(params []interface{}, names []string) (bool, string) {
	got, ok := params[0].(float64)
	if !ok {
		return false, "obtained is not a float64"
	}
	want, ok := params[1].(float64)
	if !ok {
		return false, "expected is not a float64"
	}
	tol, ok := params[2].(float64)
	if !ok {
		return false, "tolerance is not a float64"
	}
	return math.Abs(got-want) <= tol, ""
}
