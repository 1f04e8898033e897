// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/biogo/eisa/counts"
	"github.com/biogo/eisa/de"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

var table = []de.Row{
	{ID: "G1", BaseMean: 6.5, LogFC: -2, PValue: 0.001, AdjP: 0.004, Symbol: "AAA"},
	{ID: "G2", BaseMean: 5.1, LogFC: 0.1, PValue: 0.8, AdjP: 0.9},
	{ID: "G3", BaseMean: 4.2, LogFC: 1.5, PValue: 0.002, AdjP: 0.004, Symbol: "CCC"},
	{ID: "G4", BaseMean: 3.3, LogFC: math.NaN(), PValue: math.NaN(), AdjP: math.NaN()},
	{ID: "G5", BaseMean: 7.7, LogFC: 3, PValue: 0.0005, AdjP: 0.003, Symbol: "EEE"},
}

func (s *S) TestUpDown(c *check.C) {
	up, down := UpDown(table, 0.05)
	c.Check(up, check.Equals, 2)
	c.Check(down, check.Equals, 1)

	var sig int
	for _, r := range table {
		if r.AdjP < 0.05 {
			sig++
		}
	}
	c.Check(up+down <= sig, check.Equals, true)
}

func (s *S) TestRatio(c *check.C) {
	c.Check(Ratio(4, 2), check.Equals, 2.0)
	c.Check(math.IsInf(Ratio(3, 0), 1), check.Equals, true)
	c.Check(math.IsNaN(Ratio(0, 0)), check.Equals, true)
}

func (s *S) TestSort(c *check.C) {
	rows := append([]de.Row(nil), table...)
	Sort(rows)

	// Adjusted p-values are non-decreasing, NaN last.
	last := math.Inf(-1)
	for i, r := range rows {
		if math.IsNaN(r.AdjP) {
			for _, rest := range rows[i:] {
				c.Check(math.IsNaN(rest.AdjP), check.Equals, true)
			}
			break
		}
		c.Check(r.AdjP >= last, check.Equals, true)
		last = r.AdjP
	}

	// Ties broken by fold-change descending.
	c.Check(rows[0].ID, check.Equals, "G5")
	c.Check(rows[1].ID, check.Equals, "G3")
	c.Check(rows[2].ID, check.Equals, "G1")
	c.Check(rows[4].ID, check.Equals, "G4")
}

func (s *S) TestWriteTable(c *check.C) {
	var buf bytes.Buffer
	err := WriteTable(&buf, []de.Row{
		{ID: "G1", BaseMean: 6.5, LogFC: -2, PValue: 0.001, AdjP: 0.004, Symbol: "AAA"},
		{ID: "G4", BaseMean: 3.3, LogFC: math.NaN(), PValue: math.NaN(), AdjP: math.NaN()},
	})
	c.Assert(err, check.IsNil)
	c.Check(buf.String(), check.Equals, ""+
		"gene\tbaseMean\tlog2FoldChange\tpvalue\tpadj\tsymbol\n"+
		"G1\t6.5\t-2\t0.001\t0.004\tAAA\n"+
		"G4\t3.3\tNA\tNA\tNA\t\n")
}

func (s *S) TestMAPlot(c *check.C) {
	file := filepath.Join(c.MkDir(), "ma.png")
	err := MAPlot(file, table, 0.05, "test GSE X vs Y")
	c.Assert(err, check.IsNil)
	fi, err := os.Stat(file)
	c.Assert(err, check.IsNil)
	c.Check(fi.Size() > 0, check.Equals, true)
}

func (s *S) TestPCAPlot(c *check.C) {
	m, err := counts.New(
		[]string{"G1", "G2", "G3"},
		[]string{"A_1", "A_2", "B_1", "B_2"},
		[][]float64{
			{100, 110, 20, 25},
			{50, 55, 52, 48},
			{10, 12, 80, 90},
		},
	)
	c.Assert(err, check.IsNil)

	file := filepath.Join(c.MkDir(), "pca.png")
	err = PCAPlot(file, "test PCA", m)
	c.Assert(err, check.IsNil)
	fi, err := os.Stat(file)
	c.Assert(err, check.IsNil)
	c.Check(fi.Size() > 0, check.Equals, true)

	small, err := counts.New([]string{"G1"}, []string{"s1", "s2"}, [][]float64{{1, 2}})
	c.Assert(err, check.IsNil)
	err = PCAPlot(filepath.Join(c.MkDir(), "bad.png"), "bad", small)
	c.Check(err, check.NotNil)
}
