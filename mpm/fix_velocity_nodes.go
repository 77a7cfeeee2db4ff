// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// FixVelocityNodes prescribes nodal velocities (Dirichlet conditions) on a
// group of nodes. It runs after the grid update so the override sees all
// applied forces.
type FixVelocityNodes struct {
	NopFix
	m     *MPM
	id    string
	group *Group
	fcn   [3]fun.Func
}

func init() {
	fallocators["velocity_nodes"] = func(m *MPM, id string, g *Group, vals [3]fun.Func) (Fix, error) {
		if g.Pon != "nodes" && g.Pon != "all" {
			return nil, chk.Err("fix velocity_nodes needs to be given a group of nodes. %q is a group of %s", g.Name, g.Pon)
		}
		if vals[0] == nil && vals[1] == nil && vals[2] == nil {
			return nil, chk.Err("fix velocity_nodes %q: at least one axis value is required", id)
		}
		return &FixVelocityNodes{m: m, id: id, group: g, fcn: vals}, nil
	}
}

func (o *FixVelocityNodes) Id() string { return o.id }
func (o *FixVelocityNodes) Mask() int  { return PostUpdateGridState }

// PostUpdateGridState overrides the updated velocities on the group
func (o *FixVelocityNodes) PostUpdateGridState(t float64) {
	x := make([]float64, 3)
	for _, g := range o.m.Dom.Grids() {
		for in := 0; in < g.NnodesLocal+g.NnodesGhost; in++ {
			if g.Mask[in]&o.group.Bit == 0 {
				continue
			}
			copy(x, g.X0[3*in:3*in+3])
			for i := 0; i < 3; i++ {
				if o.fcn[i] == nil {
					continue
				}
				v := o.fcn[i].F(t, x)
				g.Vupdate[3*in+i] = v
				g.V[3*in+i] = v
			}
		}
	}
}
