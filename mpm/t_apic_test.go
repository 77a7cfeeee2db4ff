// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_apic01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("apic01. inertia tensor of interior particles")

	// quadratic spline: Dp = h²/4 I on the active axes; cubic: h²/3 I
	for shape, diag := range map[string]float64{"quadratic-spline": 0.25, "cubic-spline": 1.0 / 3.0} {

		m := testSim(2, [3]float64{0, 0, 0}, [3]float64{12, 12, 0}, 1.0, []string{"ulmpm", "APIC", shape}, "")
		mat := elasticMat(1, 1e3, 0)
		s := addSolid(m, "blob", mat, [3]float64{5, 5, 0}, [3]float64{7, 7, 0}, 2, [3]float64{0, 0, 0})

		m.Upd.Method.ComputeGridWeightFunctionsAndGradients()

		for ip := 0; ip < s.NpLocal; ip++ {
			chk.Float64(tst, io.Sf("%s Di00", shape), 1e-10, s.Di[9*ip], 1.0/diag)
			chk.Float64(tst, io.Sf("%s Di11", shape), 1e-10, s.Di[9*ip+4], 1.0/diag)
			chk.Float64(tst, io.Sf("%s Di22", shape), 1e-10, s.Di[9*ip+8], 1.0)
			chk.Float64(tst, io.Sf("%s Di01", shape), 1e-10, s.Di[9*ip+1], 0)
			if tst.Failed() {
				return
			}
		}
	}
}

func Test_apic02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("apic02. affine transfer reproduces a rigid rotation field")

	m := testSim(2, [3]float64{0, 0, 0}, [3]float64{12, 12, 0}, 1.0, []string{"ulmpm", "APIC", "quadratic-spline"}, "usl")
	mat := elasticMat(1, 1e3, 0)
	s := addSolid(m, "disc", mat, [3]float64{4, 4, 0}, [3]float64{8, 8, 0}, 2, [3]float64{0, 0, 0})

	// rigid rotation about the box centre: v = ω × (x - c)
	omega := 0.7
	cx, cy := 6.0, 6.0
	field := func(x, y float64) (vx, vy float64) {
		return -omega * (y - cy), omega * (x - cx)
	}
	for ip := 0; ip < s.NpLocal; ip++ {
		vx, vy := field(s.X[3*ip], s.X[3*ip+1])
		s.V[3*ip], s.V[3*ip+1] = vx, vy
	}

	mt := m.Upd.Method
	mt.ComputeGridWeightFunctionsAndGradients()

	// seed Bp with the exact affine matrix by gathering the exact nodal field
	g := m.Dom.Grid
	for in := 0; in < g.NnodesLocal; in++ {
		vx, vy := field(g.X0[3*in], g.X0[3*in+1])
		g.Vupdate[3*in], g.Vupdate[3*in+1] = vx, vy
	}
	for _, sl := range m.Dom.Solids {
		sl.ComputeRateDeformationGradientULAPIC()
	}

	// full scatter: every supporting node recovers the field exactly
	s.ComputeMassNodes(true)
	g.ReduceMassGhostNodes()
	s.ComputeVelocityNodesAPIC(true, false)
	g.ReduceGhostNodes(false)
	for in := 0; in < g.NnodesLocal; in++ {
		if g.Mass[in] <= 0 {
			continue
		}
		vx, vy := field(g.X0[3*in], g.X0[3*in+1])
		chk.Float64(tst, "node vx", 1e-10, g.V[3*in], vx)
		chk.Float64(tst, "node vy", 1e-10, g.V[3*in+1], vy)
		if tst.Failed() {
			return
		}
	}

	// gather: particle velocities reproduce the field at the particle
	copy(g.Vupdate, g.V)
	s.ComputeParticleVelocitiesAndPositions(0)
	for ip := 0; ip < s.NpLocal; ip++ {
		vx, vy := field(s.X[3*ip], s.X[3*ip+1])
		chk.Float64(tst, "particle vx", 1e-10, s.Vupdate[3*ip], vx)
		chk.Float64(tst, "particle vy", 1e-10, s.Vupdate[3*ip+1], vy)
		if tst.Failed() {
			return
		}
	}
	io.PfGreen("OK\n")
}

func Test_apic03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("apic03. affine scatter conserves linear momentum")

	m := testSim(2, [3]float64{0, 0, 0}, [3]float64{12, 12, 0}, 1.0, []string{"ulmpm", "APIC", "cubic-spline"}, "usl")
	mat := elasticMat(900, 1e4, 0)
	s := addSolid(m, "blob", mat, [3]float64{4, 4, 0}, [3]float64{7, 6, 0}, 2, [3]float64{0.4, 0.1, 0})

	mt := m.Upd.Method
	mt.ComputeGridWeightFunctionsAndGradients()

	// arbitrary affine matrices
	for ip := 0; ip < s.NpLocal; ip++ {
		s.Bp[9*ip] = 0.1
		s.Bp[9*ip+1] = -0.2
		s.Bp[9*ip+3] = 0.05
	}

	s.ComputeMassNodes(true)
	m.Dom.Grid.ReduceMassGhostNodes()
	s.ComputeVelocityNodesAPIC(true, false)
	m.Dom.Grid.ReduceGhostNodes(false)

	g := m.Dom.Grid
	var pn [3]float64
	for in := 0; in < g.NnodesLocal; in++ {
		for i := 0; i < 3; i++ {
			pn[i] += g.Mass[in] * g.V[3*in+i]
		}
	}
	pp := s.TotalMomentumLocal()
	chk.Vector(tst, "momentum APIC", 1e-7, pn[:], pp[:])
}
