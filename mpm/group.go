// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
)

// Group names a set of grid nodes or particles selected by an axis-aligned
// region; membership is recorded as one bit in the mask arrays
type Group struct {
	Name string
	Pon  string // "particles" or "nodes"
	Bit  int    // mask bit
}

// Groups holds all groups of a simulation. The group "all" matches
// everything, on bit 1.
type Groups struct {
	m    *MPM
	list []*Group
}

// NewGroups returns the group table with the predefined "all" group
func NewGroups(m *MPM) (o *Groups) {
	o = &Groups{m: m}
	o.list = append(o.list, &Group{Name: "all", Pon: "all", Bit: 1})
	return
}

// Get returns a group by name
func (o *Groups) Get(name string) (g *Group, err error) {
	for _, g = range o.list {
		if g.Name == name {
			return
		}
	}
	return nil, chk.Err("cannot find group named %q", name)
}

// Create adds a group selecting the nodes or particles inside the region
// [lo,hi] and stamps their mask bits. Grids and solids must exist already.
func (o *Groups) Create(name, pon string, lo, hi [3]float64) {
	if pon != "particles" && pon != "nodes" {
		chk.Panic("group %q: pon must be \"particles\" or \"nodes\". got %q", name, pon)
	}
	if _, err := o.Get(name); err == nil {
		chk.Panic("group named %q already exists", name)
	}
	g := &Group{Name: name, Pon: pon, Bit: 1 << uint(len(o.list))}
	o.list = append(o.list, g)

	inside := func(x, y, z float64) bool {
		p := [3]float64{x, y, z}
		for d := 0; d < o.m.Dom.Dimension; d++ {
			if p[d] < lo[d] || p[d] > hi[d] {
				return false
			}
		}
		return true
	}
	if pon == "nodes" {
		for _, grid := range o.m.Dom.Grids() {
			for in := 0; in < grid.NnodesLocal+grid.NnodesGhost; in++ {
				if inside(grid.X0[3*in], grid.X0[3*in+1], grid.X0[3*in+2]) {
					grid.Mask[in] |= g.Bit
				}
			}
		}
		return
	}
	for _, s := range o.m.Dom.Solids {
		for ip := 0; ip < s.NpLocal; ip++ {
			if inside(s.X[3*ip], s.X[3*ip+1], s.X[3*ip+2]) {
				s.Mask[ip] |= g.Bit
			}
		}
	}
}
