// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/vacary/karamelo/shp"
)

// Method drives one time step of a material point method variant
type Method interface {
	Setup(args []string) (err error) // parses [PIC|FLIP|APIC, shape-function, [alpha]]
	ShapeFunction() *shp.Basis

	ComputeGridWeightFunctionsAndGradients()
	ParticlesToGrid()
	UpdateGridState()
	GridToPoints()
	AdvanceParticles()
	VelocitiesToGrid()
	ComputeRateDeformationGradient()
	UpdateDeformationGradient()
	UpdateStress()
	AdjustDt()
	Reset()
	ExchangeParticles()
}

// mallocators holds all available methods
var mallocators = make(map[string]func(m *MPM) Method)

// parseVariant reads the common method arguments: the particle-velocity
// update variant, the shape-function family and the FLIP blending coefficient
func parseVariant(args []string) (variant string, basis *shp.Basis, flip float64, err error) {
	if len(args) < 1 {
		err = chk.Err("illegal method command: not enough arguments")
		return
	}
	variant = args[0]
	flip = 0
	isFlip := false
	switch variant {
	case "PIC":
	case "APIC":
	case "FLIP":
		isFlip = true
		flip = 0.99
	default:
		err = chk.Err("method type %q not understood. expect: PIC, FLIP or APIC", variant)
		return
	}
	n := 1
	basis = shp.Get("linear")
	if len(args) > n {
		basis = shp.Get(args[n])
		if basis == nil {
			err = chk.Err("form function of type %q is unknown. available options are: linear, cubic-spline, quadratic-spline, Bernstein-quadratic", args[n])
			return
		}
		n++
	}
	if isFlip {
		if len(args) <= n {
			err = chk.Err("illegal method command: FLIP requires a blending coefficient")
			return
		}
		flip = io.Atof(args[n])
		if flip < 0 || flip > 1 {
			err = chk.Err("FLIP blending coefficient must be in [0,1]. got %g", flip)
			return
		}
		n++
	}
	if len(args) > n {
		err = chk.Err("illegal method command: too many arguments: %d expected, %d received", n, len(args))
	}
	return
}

// computeWeights rebuilds the neighbour lists of one solid. The particle
// anchor positions are the current ones unless ref is given (total
// Lagrangian), in which case the reference positions are used.
func computeWeights(s *Solid, basis *shp.Basis, ref bool) {

	g := s.Grid
	dom := s.dom
	ntot := g.NnodesLocal + g.NnodesGhost

	// (re)allocate and clear the transpose lists
	if len(s.NumneighNp) != ntot {
		s.NumneighNp = make([]int, ntot)
		s.NeighNp = make([][]int, ntot)
		s.WfNp = make([][]float64, ntot)
		s.WfdNp = make([][]float64, ntot)
	}
	for in := 0; in < ntot; in++ {
		s.NumneighNp[in] = 0
		s.NeighNp[in] = s.NeighNp[in][:0]
		s.WfNp[in] = s.WfNp[in][:0]
		s.WfdNp[in] = s.WfdNp[in][:0]
	}

	xp := s.X
	if ref {
		xp = s.X0
	}
	nn := [3]int{g.NxGlobal, g.NyGlobal, g.NzGlobal}
	var ssf, sd, r [3]float64

	for ip := 0; ip < s.NpLocal; ip++ {
		s.NumneighPn[ip] = 0
		if s.NeighPn[ip] != nil {
			s.NeighPn[ip] = s.NeighPn[ip][:0]
			s.WfPn[ip] = s.WfPn[ip][:0]
			s.WfdPn[ip] = s.WfdPn[ip][:0]
		}

		// stencil anchor
		var i0 [3]int
		for d := 0; d < dom.Dimension; d++ {
			i0[d] = basis.Anchor((xp[3*ip+d] - dom.Boxlo[d]) * g.InvCellsize)
		}

		// candidate nodes
		hi := [3]int{i0[0] + basis.Npa, 1, 1}
		if dom.Dimension >= 2 {
			hi[1] = i0[1] + basis.Npa
		}
		if dom.Dimension == 3 {
			hi[2] = i0[2] + basis.Npa
		}
		for i := i0[0]; i < hi[0]; i++ {
			if i < 0 || i >= nn[0] {
				continue
			}
			for j := max0(i0[1], dom.Dimension >= 2); j < hi[1]; j++ {
				if j < 0 || j >= nn[1] {
					continue
				}
				for k := max0(i0[2], dom.Dimension == 3); k < hi[2]; k++ {
					if k < 0 || k >= nn[2] {
						continue
					}
					in, found := g.Find(g.TagOf(i, j, k))
					if !found {
						continue
					}

					// per-axis values
					ok := true
					for d := 0; d < 3; d++ {
						ssf[d] = 1
						sd[d] = 0
						r[d] = 0
					}
					for d := 0; d < dom.Dimension; d++ {
						r[d] = (xp[3*ip+d] - g.X0[3*in+d]) * g.InvCellsize
						ssf[d] = basis.F(r[d], g.Ntype[3*in+d])
						if ssf[d] == 0 {
							ok = false
							break
						}
					}
					if !ok {
						continue
					}
					for d := 0; d < dom.Dimension; d++ {
						sd[d] = basis.D(r[d], g.Ntype[3*in+d], g.InvCellsize)
					}

					if s.Mat.Rigid {
						g.Rigid[in] = true
					}

					// tensor product
					wf := ssf[0] * ssf[1] * ssf[2]
					var wfd [3]float64
					switch dom.Dimension {
					case 1:
						wfd[0] = sd[0]
					case 2:
						wfd[0] = sd[0] * ssf[1]
						wfd[1] = ssf[0] * sd[1]
					case 3:
						wfd[0] = sd[0] * ssf[1] * ssf[2]
						wfd[1] = ssf[0] * sd[1] * ssf[2]
						wfd[2] = ssf[0] * ssf[1] * sd[2]
					}

					s.NeighPn[ip] = append(s.NeighPn[ip], in)
					s.WfPn[ip] = append(s.WfPn[ip], wf)
					s.WfdPn[ip] = append(s.WfdPn[ip], wfd[0], wfd[1], wfd[2])
					s.NumneighPn[ip]++

					s.NeighNp[in] = append(s.NeighNp[in], ip)
					s.WfNp[in] = append(s.WfNp[in], wf)
					s.WfdNp[in] = append(s.WfdNp[in], wfd[0], wfd[1], wfd[2])
					s.NumneighNp[in]++
				}
			}
		}
	}
}

// max0 returns lo for active axes and 0 for inactive ones
func max0(lo int, active bool) int {
	if active {
		return lo
	}
	return 0
}
