// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package counts

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Read parses a tab-separated count table: a header row of sample
// identifiers followed by one row per gene with the gene identifier in
// the first column. The header may carry a leading label for the gene
// column or omit it, as written by common table writers.
func Read(r io.Reader) (*Matrix, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<24)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("counts: empty table")
	}
	header := strings.Split(strings.TrimRight(sc.Text(), "\r\n"), "\t")

	var (
		genes   []string
		data    [][]float64
		samples []string
	)
	for line := 2; sc.Scan(); line++ {
		text := strings.TrimRight(sc.Text(), "\r\n")
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if samples == nil {
			switch len(header) {
			case len(fields) - 1:
				samples = header
			case len(fields):
				samples = header[1:]
			default:
				return nil, fmt.Errorf("counts: header has %d fields for %d count columns", len(header), len(fields)-1)
			}
		}
		if len(fields)-1 != len(samples) {
			return nil, fmt.Errorf("counts: line %d has %d values for %d samples", line, len(fields)-1, len(samples))
		}
		row := make([]float64, len(fields)-1)
		for j, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("counts: line %d: %v", line, err)
			}
			row[j] = v
		}
		genes = append(genes, fields[0])
		data = append(data, row)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if samples == nil {
		return nil, fmt.Errorf("counts: table has no count rows")
	}
	return New(genes, samples, data)
}

// ReadFile parses the tab-separated count table in the named file.
func ReadFile(path string) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return m, nil
}

// WriteTo writes the matrix as a tab-separated table with a leading empty
// header field for the gene column.
func (m *Matrix) WriteTo(w io.Writer) error {
	b := bufio.NewWriter(w)
	for _, s := range m.samples {
		fmt.Fprintf(b, "\t%s", s)
	}
	fmt.Fprintln(b)
	for i, g := range m.genes {
		fmt.Fprint(b, g)
		for _, v := range m.data[i] {
			fmt.Fprintf(b, "\t%g", v)
		}
		fmt.Fprintln(b)
	}
	return b.Flush()
}
