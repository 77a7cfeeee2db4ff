// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/vacary/karamelo/shp"
)

// TLMPM implements the total-Lagrangian material point method: each solid
// owns its grid, weights are computed once from the reference positions and
// internal forces use the first Piola-Kirchhoff stress
type TLMPM struct {
	m        *MPM
	UpdateWf bool
	Variant  string
	FLIP     float64
	basis    *shp.Basis
}

func init() {
	mallocators["tlmpm"] = func(m *MPM) Method {
		return &TLMPM{m: m, UpdateWf: true, Variant: "FLIP", FLIP: 0.99, basis: shp.Get("linear")}
	}
}

// Setup parses the method arguments
func (o *TLMPM) Setup(args []string) (err error) {
	o.Variant, o.basis, o.FLIP, err = parseVariant(args)
	return
}

func (o *TLMPM) ShapeFunction() *shp.Basis { return o.basis }

// ComputeGridWeightFunctionsAndGradients builds the neighbour lists once,
// from the reference particle positions
func (o *TLMPM) ComputeGridWeightFunctionsAndGradients() {
	if !o.UpdateWf {
		return
	}
	for _, g := range o.m.Dom.Grids() {
		g.ResetRigid()
	}
	for _, s := range o.m.Dom.Solids {
		computeWeights(s, o.basis, true)
		if o.Variant == "APIC" {
			s.ComputeInertiaTensor(true)
		}
	}
	o.UpdateWf = false
}

// ParticlesToGrid projects mass, momentum and the Piola-Kirchhoff internal
// forces to each solid's grid
func (o *TLMPM) ParticlesToGrid() {
	for _, s := range o.m.Dom.Solids {
		s.ComputeMassNodes(true)
		s.Grid.ReduceMassGhostNodes()
	}
	for _, s := range o.m.Dom.Solids {
		if o.Variant == "APIC" {
			s.ComputeVelocityNodesAPIC(true, true)
		} else {
			s.ComputeVelocityNodes(true)
		}
		s.ComputeExternalForcesNodes(true)
		s.ComputeInternalForcesNodesTL(true)
		s.Grid.ReduceGhostNodes(false)
	}
}

// UpdateGridState advances the nodal momenta of every solid grid
func (o *TLMPM) UpdateGridState() {
	for _, g := range o.m.Dom.Grids() {
		g.UpdateGridVelocities(o.m.Upd.Dt)
	}
}

// GridToPoints gathers the updated nodal velocities back to the particles
func (o *TLMPM) GridToPoints() {
	for _, s := range o.m.Dom.Solids {
		s.ComputeParticleVelocitiesAndPositions(o.m.Upd.Dt)
		s.ComputeParticleAcceleration(o.m.Upd.Dt)
	}
}

// AdvanceParticles blends the PIC/FLIP particle velocity updates
func (o *TLMPM) AdvanceParticles() {
	flip := o.FLIP
	if o.Variant != "FLIP" {
		flip = 0
	}
	for _, s := range o.m.Dom.Solids {
		s.UpdateParticleVelocities(flip, o.m.Upd.Dt)
	}
}

// VelocitiesToGrid re-projects the advanced particle velocities (MUSL second
// pass) on each solid grid
func (o *TLMPM) VelocitiesToGrid() {
	if o.Variant == "APIC" {
		return
	}
	for _, s := range o.m.Dom.Solids {
		s.ComputeVelocityNodes(true)
		s.Grid.ReduceGhostNodes(true)
	}
}

// ComputeRateDeformationGradient builds Fdot from the reference gradients
func (o *TLMPM) ComputeRateDeformationGradient() {
	musl := o.m.Upd.SchemeStyle == "musl"
	for _, s := range o.m.Dom.Solids {
		switch {
		case o.Variant == "APIC":
			s.ComputeRateDeformationGradientTLAPIC()
		case musl:
			s.ComputeRateDeformationGradientTL()
		default:
			s.ComputeRateDeformationGradientTLUSL()
		}
	}
}

// UpdateDeformationGradient integrates Fdot and converts it to the velocity
// gradient for the stress update
func (o *TLMPM) UpdateDeformationGradient() {
	for _, s := range o.m.Dom.Solids {
		s.UpdateDeformationGradient(o.m.Upd.Dt, true)
	}
}

// UpdateStress runs the constitutive models
func (o *TLMPM) UpdateStress() {
	for _, s := range o.m.Dom.Solids {
		s.UpdateStress(o.m.Upd.Dt)
	}
}

// AdjustDt reduces the CFL-stable step over solids and processors
func (o *TLMPM) AdjustDt() {
	adjustDt(o.m)
}

// Reset zeroes the per-step accumulators
func (o *TLMPM) Reset() {
	resetStep(o.m)
}

// ExchangeParticles is a no-op: the total-Lagrangian decomposition follows
// the reference positions, which never change, so particle ownership is
// pinned to the rank that created the particle
func (o *TLMPM) ExchangeParticles() {}
