// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// fix mask bits: the stages at which a fix runs
const (
	PostParticlesToGrid  = 1 << 0
	PostUpdateGridState  = 1 << 1
	PostAdvanceParticles = 1 << 2
)

// Fix is an external per-step callback attached at well-defined stages of the
// scheme. A fix sees post-reduction grid state.
type Fix interface {
	Id() string
	Mask() int
	PostParticlesToGrid(t float64)
	PostUpdateGridState(t float64)
	PostAdvanceParticles(t float64)
}

// NopFix provides empty hook bodies for fixes that attach to few stages
type NopFix struct{}

func (o NopFix) PostParticlesToGrid(t float64)  {}
func (o NopFix) PostUpdateGridState(t float64)  {}
func (o NopFix) PostAdvanceParticles(t float64) {}

// fallocators holds all available fixes. The value arguments are the per-axis
// functions; a nil function leaves that axis untouched.
var fallocators = make(map[string]func(m *MPM, id string, g *Group, vals [3]fun.Func) (Fix, error))

// NewFix instantiates the fix style under its group
func NewFix(m *MPM, style, id, group string, vals [3]fun.Func) (f Fix, err error) {
	alloc, ok := fallocators[style]
	if !ok {
		return nil, chk.Err("cannot find fix style %q", style)
	}
	g, err := m.Grps.Get(group)
	if err != nil {
		return
	}
	return alloc(m, id, g, vals)
}
