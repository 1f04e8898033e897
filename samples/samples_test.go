// Copyright ©2021 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package samples

import (
	"testing"

	check "gopkg.in/check.v1"
)

func Test(t *testing.T) { check.TestingT(t) }

type S struct{}

var _ = check.Suite(&S{})

func (s *S) TestCondition(c *check.C) {
	for _, t := range []struct {
		id   string
		want string
	}{
		{id: "liver_1", want: "liver"},
		{id: "liver_12", want: "liver"},
		{id: "liver_rep1", want: "liver"},
		{id: "liver_Rep2", want: "liver"},
		{id: "liver_REP10", want: "liver"},
		{id: "GSM123456_liver", want: "liver"},
		{id: "12_liver", want: "liver"},
		{id: "GSM123_12_liver", want: "liver"},
		{id: "GSM99_liver_rep2", want: "liver"},
		{id: "kidney_1_2", want: "kidney"},
		{id: "control", want: "control"},
		{id: "liver1", want: "liver1"},
		{id: "rep1", want: "rep1"},
		{id: "", want: ""},
	} {
		got := Condition(t.id)
		c.Check(got, check.Equals, t.want, check.Commentf("id=%q", t.id))

		// Labelling must be idempotent.
		c.Check(Condition(got), check.Equals, got, check.Commentf("id=%q", t.id))
	}
}

func (s *S) TestConditionsOrder(c *check.C) {
	got := Conditions([]string{"A_1", "A_2", "B_1", "B_2"})
	c.Check(got, check.DeepEquals, []string{"A", "A", "B", "B"})
}

func (s *S) TestNewFactor(c *check.C) {
	ids := []string{"A_1", "A_2", "B_1", "B_2", "C_1"}
	labels := Conditions(ids)

	f, err := NewFactor(ids, labels, "A", "B")
	c.Assert(err, check.IsNil)
	c.Check(f.Samples(), check.DeepEquals, []string{"A_1", "A_2", "B_1", "B_2"})
	c.Check(f.Len(), check.Equals, 4)
	nRef, nTreat := f.Counts()
	c.Check(nRef, check.Equals, 2)
	c.Check(nTreat, check.Equals, 2)
	c.Check(f.IsTreat(0), check.Equals, false)
	c.Check(f.IsTreat(2), check.Equals, true)
}

func (s *S) TestNewFactorErrors(c *check.C) {
	ids := []string{"A_1", "B_1"}
	labels := Conditions(ids)

	_, err := NewFactor(ids, labels, "A", "A")
	c.Check(err, check.ErrorMatches, `samples: indistinct condition levels .*`)

	_, err = NewFactor(ids, labels, "A", "Z")
	c.Check(err, check.ErrorMatches, `samples: no samples for condition pair .*`)

	_, err = NewFactor(ids, labels[:1], "A", "B")
	c.Check(err, check.ErrorMatches, `samples: mismatched identifier and label lengths`)
}
