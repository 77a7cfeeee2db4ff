// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/vacary/karamelo/shp"
)

func Test_grid01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grid01. 2D lattice, tags and node types")

	u := NewUniverse(false)
	dom := NewDomain(u, 2, [3]float64{0, 0, 0}, [3]float64{4, 3, 0}, 1.0)
	g := NewGrid(dom, u, shp.Get("cubic-spline"))

	chk.IntAssert(g.NxGlobal, 5)
	chk.IntAssert(g.NyGlobal, 4)
	chk.IntAssert(g.NzGlobal, 1)
	chk.IntAssert(g.NnodesLocal, 20)
	chk.IntAssert(g.NnodesGhost, 0)

	// tag resolution
	for i := 0; i < g.NxGlobal; i++ {
		for j := 0; j < g.NyGlobal; j++ {
			in, found := g.Find(g.TagOf(i, j, 0))
			if !found {
				tst.Errorf("tag (%d,%d) not found", i, j)
				return
			}
			chk.Float64(tst, "x0", 1e-15, g.X0[3*in], float64(i))
			chk.Float64(tst, "y0", 1e-15, g.X0[3*in+1], float64(j))
		}
	}
	if _, found := g.Find(-1); found {
		tst.Errorf("negative tag must miss")
	}

	// node types at corners and interior
	in, _ := g.Find(g.TagOf(0, 0, 0))
	chk.IntAssert(g.Ntype[3*in], shp.NtypeLower)
	chk.IntAssert(g.Ntype[3*in+1], shp.NtypeLower)
	in, _ = g.Find(g.TagOf(4, 3, 0))
	chk.IntAssert(g.Ntype[3*in], shp.NtypeUpper)
	chk.IntAssert(g.Ntype[3*in+1], shp.NtypeUpper)
	in, _ = g.Find(g.TagOf(2, 1, 0))
	chk.IntAssert(g.Ntype[3*in], shp.NtypeInterior)
	chk.IntAssert(g.Ntype[3*in+1], shp.NtypeInterior)
}

func Test_grid02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grid02. refined Bernstein lattice")

	u := NewUniverse(false)
	dom := NewDomain(u, 1, [3]float64{0, 0, 0}, [3]float64{4, 0, 0}, 1.0)
	g := NewGrid(dom, u, shp.Get("Bernstein-quadratic"))

	chk.IntAssert(g.NxGlobal, 9)
	chk.Float64(tst, "spacing", 1e-15, g.Spacing, 0.5)

	// parity node types: vertices even, midpoints odd
	for i := 0; i < g.NxGlobal; i++ {
		in, found := g.Find(g.TagOf(i, 0, 0))
		if !found {
			tst.Errorf("tag %d not found", i)
			return
		}
		chk.IntAssert(g.Ntype[3*in], i%2)
		chk.Float64(tst, "x0", 1e-15, g.X0[3*in], 0.5*float64(i))
	}
}

func Test_grid03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("grid03. grid velocity update")

	u := NewUniverse(false)
	dom := NewDomain(u, 1, [3]float64{0, 0, 0}, [3]float64{2, 0, 0}, 1.0)
	g := NewGrid(dom, u, shp.Get("linear"))

	in, _ := g.Find(0)
	g.Mass[in] = 2.0
	g.V[3*in] = 1.0 // velocity after normalisation
	g.F[3*in] = 4.0
	g.Mb[3*in] = 2.0

	dt := 0.1
	g.UpdateGridVelocities(dt)
	chk.Float64(tst, "v_update", 1e-15, g.Vupdate[3*in], 1.0+dt*(4.0+2.0)/2.0)

	// massless node gets a zero v_update
	jn, _ := g.Find(1)
	g.V[3*jn] = 3.0
	g.UpdateGridVelocities(dt)
	chk.Float64(tst, "massless v_update", 1e-17, g.Vupdate[3*jn], 0)
}
