// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/vacary/karamelo/shp"
)

// ULMPM implements the updated-Lagrangian material point method: weights are
// rebuilt from the current particle positions every step and all solids share
// the domain grid
type ULMPM struct {
	m        *MPM
	UpdateWf bool       // rebuild the neighbour lists this step
	Variant  string     // PIC, FLIP or APIC
	FLIP     float64    // FLIP blending coefficient
	basis    *shp.Basis // shape-function family
}

func init() {
	mallocators["ulmpm"] = func(m *MPM) Method {
		return &ULMPM{m: m, UpdateWf: true, Variant: "FLIP", FLIP: 0.99, basis: shp.Get("linear")}
	}
}

// Setup parses the method arguments
func (o *ULMPM) Setup(args []string) (err error) {
	o.Variant, o.basis, o.FLIP, err = parseVariant(args)
	return
}

func (o *ULMPM) ShapeFunction() *shp.Basis { return o.basis }

// ComputeGridWeightFunctionsAndGradients rebuilds the neighbour lists of all
// solids from the current particle positions
func (o *ULMPM) ComputeGridWeightFunctionsAndGradients() {
	if !o.UpdateWf {
		return
	}
	for _, g := range o.m.Dom.Grids() {
		g.ResetRigid()
	}
	for _, s := range o.m.Dom.Solids {
		computeWeights(s, o.basis, false)
		if o.Variant == "APIC" {
			s.ComputeInertiaTensor(false)
		}
	}
}

// ParticlesToGrid projects mass, momentum and forces to the grid, reducing
// ghost nodes between the mass and the momentum/force scatters
func (o *ULMPM) ParticlesToGrid() {
	for isolid, s := range o.m.Dom.Solids {
		s.ComputeMassNodes(isolid == 0)
	}
	o.m.Dom.Grid.ReduceMassGhostNodes()

	for isolid, s := range o.m.Dom.Solids {
		reset := isolid == 0
		if o.Variant == "APIC" {
			s.ComputeVelocityNodesAPIC(reset, false)
		} else {
			s.ComputeVelocityNodes(reset)
		}
		s.ComputeExternalForcesNodes(reset)
		s.ComputeInternalForcesNodesUL(reset)
	}
	o.m.Dom.Grid.ReduceGhostNodes(false)
}

// UpdateGridState advances the nodal momenta under the reduced forces
func (o *ULMPM) UpdateGridState() {
	o.m.Dom.Grid.UpdateGridVelocities(o.m.Upd.Dt)
}

// GridToPoints gathers the updated nodal velocities back to the particles
func (o *ULMPM) GridToPoints() {
	for _, s := range o.m.Dom.Solids {
		s.ComputeParticleVelocitiesAndPositions(o.m.Upd.Dt)
		s.ComputeParticleAcceleration(o.m.Upd.Dt)
	}
}

// AdvanceParticles blends the PIC/FLIP particle velocity updates
func (o *ULMPM) AdvanceParticles() {
	flip := o.FLIP
	if o.Variant != "FLIP" {
		flip = 0
	}
	for _, s := range o.m.Dom.Solids {
		s.UpdateParticleVelocities(flip, o.m.Upd.Dt)
	}
}

// VelocitiesToGrid re-projects the advanced particle velocities (MUSL second
// pass). APIC skips the pass: its affine reconstruction replaces it.
func (o *ULMPM) VelocitiesToGrid() {
	if o.Variant == "APIC" {
		return
	}
	for isolid, s := range o.m.Dom.Solids {
		s.ComputeVelocityNodes(isolid == 0)
	}
	o.m.Dom.Grid.ReduceGhostNodes(true)
}

// ComputeRateDeformationGradient builds the velocity gradients
func (o *ULMPM) ComputeRateDeformationGradient() {
	musl := o.m.Upd.SchemeStyle == "musl"
	for _, s := range o.m.Dom.Solids {
		switch {
		case o.Variant == "APIC":
			s.ComputeRateDeformationGradientULAPIC()
		case musl:
			s.ComputeRateDeformationGradientULMUSL()
		default:
			s.ComputeRateDeformationGradientULUSL()
		}
	}
}

// UpdateDeformationGradient advances F and the particle volumes
func (o *ULMPM) UpdateDeformationGradient() {
	for _, s := range o.m.Dom.Solids {
		s.UpdateDeformationGradient(o.m.Upd.Dt, false)
	}
}

// UpdateStress runs the constitutive models
func (o *ULMPM) UpdateStress() {
	for _, s := range o.m.Dom.Solids {
		s.UpdateStress(o.m.Upd.Dt)
	}
}

// AdjustDt reduces the CFL-stable step over solids and processors
func (o *ULMPM) AdjustDt() {
	adjustDt(o.m)
}

// Reset zeroes the per-step accumulators
func (o *ULMPM) Reset() {
	resetStep(o.m)
}

// ExchangeParticles migrates departed particles to their new owners
func (o *ULMPM) ExchangeParticles() {
	exchangeParticles(o.m)
}

// shared method helpers //////////////////////////////////////////////////////////////////////////

// adjustDt reduces dtCFL over solids and processors and applies the dt policy
func adjustDt(m *MPM) {
	if m.Upd.DtConstant {
		return
	}
	dtCFL := 1e22
	for isolid, s := range m.Dom.Solids {
		if s.DtCFL < dtCFL {
			dtCFL = s.DtCFL
		}
		if dtCFL == 0 {
			chk.Panic("dtCFL == 0: solid %d (%q)", isolid, s.Id)
		}
		if math.IsNaN(dtCFL) {
			chk.Panic("dtCFL is NaN: solid %d (%q) has dtCFL = %g", isolid, s.Id, s.DtCFL)
		}
	}
	x := []float64{dtCFL}
	w := []float64{0}
	m.U.AllReduceMin(x, w)
	m.Upd.Dt = x[0] * m.Upd.DtFactor
	m.Vars["dt"] = m.Upd.Dt
}

// resetStep zeroes the per-step accumulators of all solids
func resetStep(m *MPM) {
	for _, s := range m.Dom.Solids {
		s.DtCFL = 1e22
		for i := 0; i < 3*s.NpLocal; i++ {
			s.Mbp[i] = 0
		}
	}
}

// exchangeParticles runs the all-to-all particle migration: departed
// particles are packed, sent to every other rank and unpacked by the rank
// whose subdomain contains them. Particles outside the global box are removed
// and counted.
func exchangeParticles(m *MPM) {
	u := m.U
	dom := m.Dom
	lost := 0.0
	for _, s := range dom.Solids {

		var bufSend []float64
		lostSolid := s.PartitionDepartures(dom.InsideSubdomain, &bufSend)

		if u.Distr {
			for sproc := 0; sproc < u.Nproc; sproc++ {
				if sproc == u.Rank {
					for rproc := 0; rproc < u.Nproc; rproc++ {
						if rproc == u.Rank {
							continue
						}
						u.SendInts([]int{len(bufSend)}, rproc)
						if len(bufSend) > 0 {
							u.SendDbls(bufSend, rproc)
						}
					}
				} else {
					size := make([]int, 1)
					u.RecvInts(size, sproc)
					if size[0] > 0 {
						bufRecv := make([]float64, size[0])
						u.RecvDbls(bufRecv, sproc)

						// keep the records landing in this subdomain
						var offsets []int
						for off := 0; off < size[0]; off += CommN {
							if dom.InsideSubdomain(bufRecv[off+CommX], bufRecv[off+CommX+1], bufRecv[off+CommX+2]) {
								offsets = append(offsets, off)
							}
						}
						if len(offsets) > 0 {
							s.Grow(s.NpLocal + len(offsets))
							s.UnpackParticle(s.NpLocal, offsets, bufRecv)
						}
					}
				}
			}
		}

		// account for particles that left the global box
		x := []float64{float64(lostSolid)}
		w := []float64{0}
		u.AllReduceSum(x, w)
		if x[0] > 0 {
			s.Np -= int(x[0] + 0.5)
			lost += x[0]
			if u.Root {
				io.PfRed("solid %q: %g particle(s) left the global box and were removed\n", s.Id, x[0])
			}
		}
	}
	m.Vars["np_lost"] += lost
}
