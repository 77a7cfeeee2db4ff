// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
)

// Update holds the time-integration state: counters, the time-step policy and
// the scheme/method instances
type Update struct {
	m *MPM

	Atime     float64 // elapsed simulation time
	Atimestep int     // timestep at which Atime was last accumulated
	Ntimestep int     // current timestep

	Dt         float64 // current time step
	DtConstant bool    // dt fixed by the input; AdjustDt is a no-op
	DtFactor   float64 // CFL safety factor

	Scheme      Scheme // update scheme (e.g. MUSL)
	SchemeStyle string

	Method              Method // method variant (e.g. ULMPM)
	MethodStyle         string
	MethodShapeFunction string
}

// NewUpdate returns a new Update with the default MUSL scheme
func NewUpdate(m *MPM) (o *Update) {
	o = &Update{m: m, Dt: 1e-16, DtFactor: 0.9}
	o.CreateScheme([]string{"musl"})
	return
}

// CreateScheme instantiates the update scheme named args[0]
func (o *Update) CreateScheme(args []string) {
	if len(args) < 1 {
		chk.Panic("illegal scheme command: not enough arguments")
	}
	alloc, ok := sallocators[args[0]]
	if !ok {
		chk.Panic("illegal scheme style %q", args[0])
	}
	o.SchemeStyle = args[0]
	o.Scheme = alloc(o.m)
	if err := o.Scheme.Setup(args[1:]); err != nil {
		chk.Panic("cannot set up scheme %q:\n%v", args[0], err)
	}
}

// CreateMethod instantiates the method named args[0] and hands it the
// remaining arguments (variant, shape function, FLIP coefficient)
func (o *Update) CreateMethod(args []string) {
	if len(args) < 2 {
		chk.Panic("illegal method command: not enough arguments")
	}
	alloc, ok := mallocators[args[0]]
	if !ok {
		chk.Panic("illegal method style %q", args[0])
	}
	o.MethodStyle = args[0]
	o.Method = alloc(o.m)
	if err := o.Method.Setup(args[1:]); err != nil {
		chk.Panic("cannot set up method %q:\n%v", args[0], err)
	}
	o.MethodShapeFunction = o.Method.ShapeFunction().Name
}

// SetDt fixes the time step to a constant
func (o *Update) SetDt(dt float64) {
	if dt <= 0 {
		chk.Panic("illegal dt command: dt must be positive. dt=%g", dt)
	}
	o.Dt = dt
	o.DtConstant = true
	o.m.Vars["dt"] = dt
}

// SetDtFactor sets the CFL safety factor
func (o *Update) SetDtFactor(f float64) {
	if f <= 0 {
		chk.Panic("illegal dt_factor command: factor must be positive. factor=%g", f)
	}
	o.DtFactor = f
}

// UpdateTime accumulates the elapsed simulation time. Called at the end of
// each step, after the step's dt adjustment.
func (o *Update) UpdateTime() {
	o.Atime += float64(o.Ntimestep-o.Atimestep) * o.Dt
	o.Atimestep = o.Ntimestep
	o.m.Vars["time"] = o.Atime
}

// UpdateTimestep advances the timestep counter
func (o *Update) UpdateTimestep() int {
	o.Ntimestep++
	o.m.Vars["timestep"] = float64(o.Ntimestep)
	return o.Ntimestep
}
