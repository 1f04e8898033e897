// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// eisa runs the exon-intron split analysis pipeline over a dataset's
// exonic and intronic read-count tables: it derives condition labels
// from the sample identifiers, restricts both matrices to their shared
// gene set, performs the split analysis, a log-linear model comparison
// with a read-type batch covariate and a single-matrix Wald test,
// annotates the results with gene symbols and writes ranked tables, MA
// plots and PCA QC plots named by dataset and condition pair.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/biogo/eisa/counts"
	"github.com/biogo/eisa/de"
	"github.com/biogo/eisa/mart"
	"github.com/biogo/eisa/report"
	"github.com/biogo/eisa/samples"
)

var (
	dataset = flag.String("dataset", "", "dataset identifier (defaults to $DATASET).")
	dir     = flag.String("dir", ".", "directory holding count tables and receiving results.")
	ref     = flag.String("ref", "", "reference condition label (defaults to the first label seen).")
	treat   = flag.String("treat", "", "treatment condition label (defaults to the second label seen).")
	alpha   = flag.Float64("alpha", 0.05, "adjusted p-value significance threshold.")
	pseudo  = flag.Float64("pseudo", 8, "pseudocount added before log2 transformation.")
	minMean = flag.Float64("minmean", 5, "minimum mean normalised count to test a gene.")
	martURL = flag.String("mart", "", "annotation service URL override.")
	noAnnot = flag.Bool("noannot", false, "skip gene symbol annotation.")
	help    = flag.Bool("help", false, "help prints this message.")
)

// config collects the per-run settings handed to the pipeline steps.
type config struct {
	dataset    string
	dir        string
	ref, treat string
	alpha      float64
	opts       de.Options
	annotate   func([]de.Row) error
}

func main() {
	flag.Parse()
	if *help {
		flag.Usage()
		os.Exit(0)
	}
	ds := *dataset
	if ds == "" {
		ds = os.Getenv("DATASET")
	}
	if ds == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config{
		dataset: ds,
		dir:     *dir,
		ref:     *ref,
		treat:   *treat,
		alpha:   *alpha,
		opts: de.Options{
			Alpha:       *alpha,
			Pseudocount: *pseudo,
			MinMean:     *minMean,
			Recompute:   true,
		},
	}
	if *noAnnot {
		cfg.annotate = func([]de.Row) error { return nil }
	} else {
		client := &mart.Client{BaseURL: *martURL}
		cfg.annotate = client.Annotate
	}

	if err := run(cfg); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func run(cfg config) error {
	exon, err := counts.ReadFile(cfg.path("%s_ExonicCounts.txt", cfg.dataset))
	if err != nil {
		return fmt.Errorf("failed reading exonic counts: %v", err)
	}
	intron, err := counts.ReadFile(cfg.path("%s_IntronicCounts.txt", cfg.dataset))
	if err != nil {
		return fmt.Errorf("failed reading intronic counts: %v", err)
	}
	if err := counts.SameSamples(exon, intron); err != nil {
		return err
	}

	ids := exon.Samples()
	labels := samples.Conditions(ids)
	refLab, treatLab := conditionPair(labels, cfg.ref, cfg.treat)
	f, err := samples.NewFactor(ids, labels, refLab, treatLab)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s: comparing %s (treatment) against %s (reference), %d samples\n",
		cfg.dataset, treatLab, refLab, f.Len())

	exon, err = exon.SelectSamples(f.Samples())
	if err != nil {
		return err
	}
	intron, err = intron.SelectSamples(f.Samples())
	if err != nil {
		return err
	}
	exon, intron, err = counts.Intersect(exon, intron)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%s: %d genes shared between exonic and intronic tables\n", cfg.dataset, exon.Len())

	frac, err := counts.IntronFraction(exon, intron)
	if err != nil {
		return err
	}
	for j, id := range f.Samples() {
		fmt.Fprintf(os.Stderr, "%s: intronic signal fraction %s = %.3f\n", cfg.dataset, id, frac[j])
	}

	qcPlot(cfg.path("%s_PCA_exon.png", cfg.dataset), cfg.dataset+" exonic counts", exon)
	qcPlot(cfg.path("%s_PCA_intron.png", cfg.dataset), cfg.dataset+" intronic counts", intron)

	an, err := de.EISA(exon, intron, f, cfg.opts)
	if err != nil {
		return err
	}
	custom, err := de.GLM(exon, intron, f, cfg.opts)
	if err != nil {
		return err
	}
	deseq, err := de.DESeq(exon, f, cfg.opts)
	if err != nil {
		return err
	}

	pair := refLab + "." + treatLab
	for _, t := range []struct {
		rows  []de.Row
		table string
		plot  string
		title string
	}{
		{
			rows:  an.Interaction,
			table: cfg.path("%s_eisaDE_%s.txt", cfg.dataset, pair),
			plot:  cfg.path("%s_eisaMAplot_%s.png", cfg.dataset, pair),
			title: fmt.Sprintf("%s EISA %s vs %s", cfg.dataset, treatLab, refLab),
		},
		{
			rows:  an.Exon,
			plot:  cfg.path("%s_eisaMAplot_%s_exonic_%g.png", cfg.dataset, pair, cfg.alpha),
			title: fmt.Sprintf("%s exonic %s vs %s", cfg.dataset, treatLab, refLab),
		},
		{
			rows:  an.Intron,
			plot:  cfg.path("%s_eisaMAplot_%s_intronic_%g.png", cfg.dataset, pair, cfg.alpha),
			title: fmt.Sprintf("%s intronic %s vs %s", cfg.dataset, treatLab, refLab),
		},
		{
			rows:  custom,
			table: cfg.path("%s_eisaDEcustom_%s.txt", cfg.dataset, pair),
		},
		{
			rows:  deseq,
			table: cfg.path("%s_DESeq_%s.txt", cfg.dataset, pair),
			plot:  cfg.path("%s_DESeqMAplot_%s.png", cfg.dataset, pair),
			title: fmt.Sprintf("%s DESeq %s vs %s", cfg.dataset, treatLab, refLab),
		},
	} {
		if t.table != "" {
			if err := cfg.annotate(t.rows); err != nil {
				return err
			}
		}
		up, down := report.UpDown(t.rows, cfg.alpha)
		fmt.Fprintf(os.Stderr, "%s: %s: up=%d down=%d ratio=%v\n",
			cfg.dataset, filepath.Base(firstOf(t.table, t.plot)), up, down, report.Ratio(up, down))
		if t.plot != "" {
			if err := report.MAPlot(t.plot, t.rows, cfg.alpha, t.title); err != nil {
				return err
			}
		}
		if t.table != "" {
			report.Sort(t.rows)
			if err := report.WriteTableFile(t.table, t.rows); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c config) path(format string, args ...interface{}) string {
	return filepath.Join(c.dir, fmt.Sprintf(format, args...))
}

// conditionPair returns the reference and treatment labels, defaulting
// to the first two distinct labels in column order.
func conditionPair(labels []string, ref, treat string) (string, string) {
	if ref == "" {
		ref = labels[0]
	}
	if treat == "" {
		for _, l := range labels {
			if l != ref {
				treat = l
				break
			}
		}
	}
	return ref, treat
}

// qcPlot writes a PCA QC plot unless the file already exists. The plot
// is a supplementary diagnostic, not a pipeline result, so failures are
// reported but do not abort the run.
func qcPlot(file, title string, m *counts.Matrix) {
	if _, err := os.Stat(file); err == nil {
		return
	}
	if err := report.PCAPlot(file, title, m); err != nil {
		log.Printf("failed to write %q: %v", file, err)
	}
}

func firstOf(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
