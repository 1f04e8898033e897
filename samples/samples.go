// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package samples derives experimental condition labels from sequencing
// sample identifiers and groups samples into two-level condition factors.
package samples

import (
	"errors"
	"fmt"
	"regexp"
)

// Replicate affixes commonly attached to sample identifiers. Each rule is
// an idempotent no-op when the pattern is absent.
var affixes = []*regexp.Regexp{
	regexp.MustCompile(`^GSM[0-9]+_`),
	regexp.MustCompile(`^[0-9]+_`),
	regexp.MustCompile(`(?i)_rep[0-9]+$`),
	regexp.MustCompile(`_[0-9]+$`),
}

// Condition returns the condition label for the sample identifier id,
// removing known replicate affixes until none remains. Identifiers
// matching no rule are returned unchanged.
func Condition(id string) string {
	for {
		stripped := id
		for _, re := range affixes {
			stripped = re.ReplaceAllString(stripped, "")
		}
		if stripped == id {
			return id
		}
		id = stripped
	}
}

// Conditions returns the condition label for each of the given sample
// identifiers, preserving order.
func Conditions(ids []string) []string {
	labels := make([]string, len(ids))
	for i, id := range ids {
		labels[i] = Condition(id)
	}
	return labels
}

// Factor is an assignment of samples to one of two condition levels,
// reference and treatment. Samples carrying any other label are excluded
// from the factor.
type Factor struct {
	Ref   string
	Treat string

	samples []string
	treat   []bool
}

// NewFactor returns a two-level factor over the samples in ids whose
// parallel label is ref or treat. It is an error for ref and treat to be
// equal, or for either level to have no samples.
func NewFactor(ids, labels []string, ref, treat string) (*Factor, error) {
	if len(ids) != len(labels) {
		return nil, errors.New("samples: mismatched identifier and label lengths")
	}
	if ref == treat {
		return nil, fmt.Errorf("samples: indistinct condition levels %q", ref)
	}
	f := &Factor{Ref: ref, Treat: treat}
	for i, l := range labels {
		switch l {
		case ref:
			f.samples = append(f.samples, ids[i])
			f.treat = append(f.treat, false)
		case treat:
			f.samples = append(f.samples, ids[i])
			f.treat = append(f.treat, true)
		}
	}
	nRef, nTreat := f.Counts()
	if nRef == 0 || nTreat == 0 {
		return nil, fmt.Errorf("samples: no samples for condition pair %q/%q", ref, treat)
	}
	return f, nil
}

// Samples returns the identifiers of the samples assigned to the factor,
// in input order.
func (f *Factor) Samples() []string {
	s := make([]string, len(f.samples))
	copy(s, f.samples)
	return s
}

// Len returns the number of samples assigned to the factor.
func (f *Factor) Len() int { return len(f.samples) }

// IsTreat returns whether the ith assigned sample carries the treatment
// label.
func (f *Factor) IsTreat(i int) bool { return f.treat[i] }

// Counts returns the number of reference and treatment samples.
func (f *Factor) Counts() (ref, treat int) {
	for _, t := range f.treat {
		if t {
			treat++
		} else {
			ref++
		}
	}
	return ref, treat
}
