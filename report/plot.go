// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/biogo/eisa/counts"
	"github.com/biogo/eisa/de"
)

// MAPlot renders a mean abundance against log fold-change scatter of the
// result rows, colouring genes significant at alpha, and writes it to
// the named image file. The caption carries the up and down counts.
func MAPlot(file string, rows []de.Row, alpha float64, title string) error {
	p := plot.New()
	up, down := UpDown(rows, alpha)
	p.Title.Text = fmt.Sprintf("%s\nup=%d down=%d", title, up, down)
	p.X.Label.Text = "mean log2 expression"
	p.Y.Label.Text = "log2 fold change"

	var rest, sig plotter.XYs
	for _, r := range rows {
		if math.IsNaN(r.BaseMean) || math.IsNaN(r.LogFC) {
			continue
		}
		xy := plotter.XY{X: r.BaseMean, Y: r.LogFC}
		if r.AdjP < alpha {
			sig = append(sig, xy)
		} else {
			rest = append(rest, xy)
		}
	}
	if len(rest) != 0 {
		sc, err := plotter.NewScatter(rest)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = color.Gray{Y: 0x90}
		sc.GlyphStyle.Radius = vg.Points(1)
		p.Add(sc)
	}
	if len(sig) != 0 {
		sc, err := plotter.NewScatter(sig)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = color.RGBA{R: 0xc0, A: 0xff}
		sc.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("FDR < %v", alpha), sc)
		p.Legend.Top = true
	}

	return p.Save(6*vg.Inch, 5*vg.Inch, file)
}

// PCAPlot renders the first two principal components of the per-sample
// log2 count profiles of m, labelling each sample, and writes the result
// to the named image file.
func PCAPlot(file, title string, m *counts.Matrix) error {
	names := m.Samples()
	n := len(names)
	d := m.Len()
	if n < 2 || d < 2 {
		return errors.New("report: too few samples or genes for principal components")
	}

	data := mat.NewDense(n, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < n; j++ {
			data.Set(j, i, math.Log2(m.At(i, j)+1))
		}
	}
	// Centre the gene columns so the projection is of covariance
	// structure.
	col := make([]float64, n)
	for i := 0; i < d; i++ {
		mat.Col(col, i, data)
		mean := stat.Mean(col, nil)
		for j := range col {
			data.Set(j, i, col[j]-mean)
		}
	}

	var pc stat.PC
	if !pc.PrincipalComponents(data, nil) {
		return errors.New("report: principal component decomposition failed")
	}
	var vec mat.Dense
	pc.VectorsTo(&vec)
	var proj mat.Dense
	proj.Mul(data, vec.Slice(0, d, 0, 2))
	vars := pc.VarsTo(nil)
	total := floats.Sum(vars)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("PC1 (%.1f%%)", 100*vars[0]/total)
	p.Y.Label.Text = fmt.Sprintf("PC2 (%.1f%%)", 100*vars[1]/total)

	xys := make(plotter.XYs, n)
	for j := 0; j < n; j++ {
		xys[j] = plotter.XY{X: proj.At(j, 0), Y: proj.At(j, 1)}
	}
	sc, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Radius = vg.Points(2)
	lab, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: names})
	if err != nil {
		return err
	}
	p.Add(sc, lab)

	return p.Save(5*vg.Inch, 5*vg.Inch, file)
}
