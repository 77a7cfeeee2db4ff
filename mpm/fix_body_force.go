// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// FixBodyforce adds an external body force to the nodes of a group after the
// particle-to-grid projection. The per-axis values are functions of time and
// of the node reference position; the reduced total force is published to the
// variable store as <id>_x, <id>_y, <id>_z.
type FixBodyforce struct {
	NopFix
	m     *MPM
	id    string
	group *Group
	fcn   [3]fun.Func
}

func init() {
	fallocators["body_force"] = func(m *MPM, id string, g *Group, vals [3]fun.Func) (Fix, error) {
		if g.Pon != "nodes" && g.Pon != "all" {
			return nil, chk.Err("fix body_force needs to be given a group of nodes. %q is a group of %s", g.Name, g.Pon)
		}
		if vals[0] == nil && vals[1] == nil && vals[2] == nil {
			return nil, chk.Err("fix body_force %q: at least one axis value is required", id)
		}
		return &FixBodyforce{m: m, id: id, group: g, fcn: vals}, nil
	}
}

func (o *FixBodyforce) Id() string { return o.id }
func (o *FixBodyforce) Mask() int  { return PostParticlesToGrid }

// PostParticlesToGrid accumulates mass-proportional nodal forces on the group
func (o *FixBodyforce) PostParticlesToGrid(t float64) {
	var ftot [3]float64
	x := make([]float64, 3)
	for _, g := range o.m.Dom.Grids() {
		for in := 0; in < g.NnodesLocal+g.NnodesGhost; in++ {
			if g.Mass[in] <= 0 || g.Mask[in]&o.group.Bit == 0 {
				continue
			}
			copy(x, g.X0[3*in:3*in+3])
			for i := 0; i < 3; i++ {
				if o.fcn[i] == nil {
					continue
				}
				f := o.fcn[i].F(t, x) * g.Mass[in]
				g.Mb[3*in+i] += f
				if in < g.NnodesLocal {
					ftot[i] += f
				}
			}
		}
	}
	red := []float64{ftot[0], ftot[1], ftot[2]}
	w := make([]float64, 3)
	o.m.U.AllReduceSum(red, w)
	if o.fcn[0] != nil {
		o.m.Vars[o.id+"_x"] = red[0]
	}
	if o.fcn[1] != nil {
		o.m.Vars[o.id+"_y"] = red[1]
	}
	if o.fcn[2] != nil {
		o.m.Vars[o.id+"_z"] = red[2]
	}
}
