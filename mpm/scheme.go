// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Scheme orders the stages of the method over one run. A scheme is a
// declarative stage list; adding a scheme means listing its stages.
type Scheme interface {
	Setup(args []string) (err error)
	Stages() []Stage
	Run(nsteps int) (err error)
}

// Stage is one named step action
type Stage struct {
	Name string
	Do   func()
}

// sallocators holds all available schemes
var sallocators = make(map[string]func(m *MPM) Scheme)

// runStages drives the common time loop: the stage list once per step, then
// computes, output and the time bookkeeping
func runStages(m *MPM, stages []Stage, nsteps int) (err error) {

	// initial state output
	m.WriteDumps()

	for istep := 0; istep < nsteps; istep++ {
		for _, stg := range stages {
			stg.Do()
		}
		for _, c := range m.Computes {
			c.ComputeValue()
		}
		m.Upd.UpdateTimestep()
		m.Upd.UpdateTime()
		m.WriteDumps()

		if m.Verbose && (m.Upd.Ntimestep%100 == 0 || istep == nsteps-1) {
			io.Pf("step %8d  time %12.6e  dt %12.6e\n", m.Upd.Ntimestep, m.Upd.Atime, m.Upd.Dt)
		}
	}
	return
}

// fixStages returns the stage hooks for one mask bit
func fixStages(m *MPM, mask int) Stage {
	name := "fixes"
	return Stage{name, func() {
		t := m.Upd.Atime
		for _, f := range m.Fixes {
			if f.Mask()&mask == 0 {
				continue
			}
			switch mask {
			case PostParticlesToGrid:
				f.PostParticlesToGrid(t)
			case PostUpdateGridState:
				f.PostUpdateGridState(t)
			case PostAdvanceParticles:
				f.PostAdvanceParticles(t)
			}
		}
	}}
}

// MUSL runs the modified-update-stress-last ordering: particle velocities are
// re-projected to the grid before the velocity gradients are built
type MUSL struct {
	m *MPM
}

func init() {
	sallocators["musl"] = func(m *MPM) Scheme { return &MUSL{m: m} }
}

func (o *MUSL) Setup(args []string) (err error) {
	if len(args) > 0 {
		err = chk.Err("illegal scheme command: too many arguments")
	}
	return
}

func (o *MUSL) Stages() []Stage {
	mt := func() Method { return o.m.Upd.Method }
	return []Stage{
		{"exchange_particles", func() { mt().ExchangeParticles() }},
		{"compute_weights", func() { mt().ComputeGridWeightFunctionsAndGradients() }},
		{"reset", func() { mt().Reset() }},
		{"particles_to_grid", func() { mt().ParticlesToGrid() }},
		fixStages(o.m, PostParticlesToGrid),
		{"update_grid_state", func() { mt().UpdateGridState() }},
		fixStages(o.m, PostUpdateGridState),
		{"grid_to_points", func() { mt().GridToPoints() }},
		{"advance_particles", func() { mt().AdvanceParticles() }},
		fixStages(o.m, PostAdvanceParticles),
		{"velocities_to_grid", func() { mt().VelocitiesToGrid() }},
		{"compute_rate_deformation_gradient", func() { mt().ComputeRateDeformationGradient() }},
		{"update_deformation_gradient", func() { mt().UpdateDeformationGradient() }},
		{"update_stress", func() { mt().UpdateStress() }},
		{"adjust_dt", func() { mt().AdjustDt() }},
	}
}

func (o *MUSL) Run(nsteps int) (err error) {
	return runStages(o.m, o.Stages(), nsteps)
}

// USL runs update-stress-last without the MUSL second projection
type USL struct {
	m *MPM
}

func init() {
	sallocators["usl"] = func(m *MPM) Scheme { return &USL{m: m} }
}

func (o *USL) Setup(args []string) (err error) {
	if len(args) > 0 {
		err = chk.Err("illegal scheme command: too many arguments")
	}
	return
}

func (o *USL) Stages() []Stage {
	mt := func() Method { return o.m.Upd.Method }
	return []Stage{
		{"exchange_particles", func() { mt().ExchangeParticles() }},
		{"compute_weights", func() { mt().ComputeGridWeightFunctionsAndGradients() }},
		{"reset", func() { mt().Reset() }},
		{"particles_to_grid", func() { mt().ParticlesToGrid() }},
		fixStages(o.m, PostParticlesToGrid),
		{"update_grid_state", func() { mt().UpdateGridState() }},
		fixStages(o.m, PostUpdateGridState),
		{"grid_to_points", func() { mt().GridToPoints() }},
		{"advance_particles", func() { mt().AdvanceParticles() }},
		fixStages(o.m, PostAdvanceParticles),
		{"compute_rate_deformation_gradient", func() { mt().ComputeRateDeformationGradient() }},
		{"update_deformation_gradient", func() { mt().UpdateDeformationGradient() }},
		{"update_stress", func() { mt().UpdateStress() }},
		{"adjust_dt", func() { mt().AdjustDt() }},
	}
}

func (o *USL) Run(nsteps int) (err error) {
	return runStages(o.m, o.Stages(), nsteps)
}

// USF runs update-stress-first: the stresses are advanced from the projected
// velocities before the grid forces are assembled
type USF struct {
	m *MPM
}

func init() {
	sallocators["usf"] = func(m *MPM) Scheme { return &USF{m: m} }
}

func (o *USF) Setup(args []string) (err error) {
	if len(args) > 0 {
		err = chk.Err("illegal scheme command: too many arguments")
	}
	return
}

func (o *USF) Stages() []Stage {
	mt := func() Method { return o.m.Upd.Method }
	return []Stage{
		{"exchange_particles", func() { mt().ExchangeParticles() }},
		{"compute_weights", func() { mt().ComputeGridWeightFunctionsAndGradients() }},
		{"reset", func() { mt().Reset() }},
		{"velocities_to_grid", func() { mt().VelocitiesToGrid() }},
		{"compute_rate_deformation_gradient", func() { mt().ComputeRateDeformationGradient() }},
		{"update_deformation_gradient", func() { mt().UpdateDeformationGradient() }},
		{"update_stress", func() { mt().UpdateStress() }},
		{"particles_to_grid", func() { mt().ParticlesToGrid() }},
		fixStages(o.m, PostParticlesToGrid),
		{"update_grid_state", func() { mt().UpdateGridState() }},
		fixStages(o.m, PostUpdateGridState),
		{"grid_to_points", func() { mt().GridToPoints() }},
		{"advance_particles", func() { mt().AdvanceParticles() }},
		fixStages(o.m, PostAdvanceParticles),
		{"adjust_dt", func() { mt().AdjustDt() }},
	}
}

func (o *USF) Run(nsteps int) (err error) {
	return runStages(o.m, o.Stages(), nsteps)
}
