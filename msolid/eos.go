// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msolid implements the constitutive models of solids: equations of
// state for the volumetric response, strength models for the deviatoric
// response and damage laws
package msolid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// EOS computes the pressure from the volumetric deformation
type EOS interface {
	Init(prms fun.Prms) (err error) // initialises model
	Rho0() float64                  // reference density
	K() float64                     // reference bulk modulus
	Pressure(J float64) float64     // pressure at volume ratio J = det(F)
}

// eosallocators holds all available equations of state
var eosallocators = make(map[string]func() EOS)

// NewEOS returns and initialises a new equation of state
func NewEOS(typ string, prms fun.Prms) (o EOS, err error) {
	alloc, ok := eosallocators[typ]
	if !ok {
		err = chk.Err("cannot find eos named %q", typ)
		return
	}
	o = alloc()
	err = o.Init(prms)
	return
}

// EosLinear implements the linear equation of state: p = K (1 - J)
type EosLinear struct {
	rho0 float64 // reference density
	kk   float64 // bulk modulus
}

func init() {
	eosallocators["linear"] = func() EOS { return new(EosLinear) }
}

// Init initialises model
func (o *EosLinear) Init(prms fun.Prms) (err error) {
	for _, p := range prms {
		switch p.N {
		case "rho0":
			o.rho0 = p.V
		case "K":
			o.kk = p.V
		default:
			return chk.Err("eos-linear: parameter named %q is incorrect", p.N)
		}
	}
	if o.rho0 <= 0 || o.kk <= 0 {
		return chk.Err("eos-linear: rho0 and K must be positive. rho0=%g K=%g", o.rho0, o.kk)
	}
	return
}

func (o *EosLinear) Rho0() float64 { return o.rho0 }
func (o *EosLinear) K() float64    { return o.kk }

// Pressure computes p = K (1 - J)
func (o *EosLinear) Pressure(J float64) float64 { return o.kk * (1.0 - J) }

// EosShock implements a Mie-Grüneisen shock equation of state (Us-Up form,
// thermal term dropped)
type EosShock struct {
	rho0 float64 // reference density
	c0   float64 // bulk sound speed
	s    float64 // linear Hugoniot slope
}

func init() {
	eosallocators["shock"] = func() EOS { return new(EosShock) }
}

// Init initialises model
func (o *EosShock) Init(prms fun.Prms) (err error) {
	for _, p := range prms {
		switch p.N {
		case "rho0":
			o.rho0 = p.V
		case "C0":
			o.c0 = p.V
		case "S":
			o.s = p.V
		default:
			return chk.Err("eos-shock: parameter named %q is incorrect", p.N)
		}
	}
	if o.rho0 <= 0 || o.c0 <= 0 {
		return chk.Err("eos-shock: rho0 and C0 must be positive. rho0=%g C0=%g", o.rho0, o.c0)
	}
	return
}

func (o *EosShock) Rho0() float64 { return o.rho0 }
func (o *EosShock) K() float64    { return o.rho0 * o.c0 * o.c0 }

// Pressure computes the Hugoniot pressure at compression mu = 1/J - 1
func (o *EosShock) Pressure(J float64) float64 {
	mu := 1.0/J - 1.0
	if mu < 0 { // tension: linear branch
		return o.rho0 * o.c0 * o.c0 * mu
	}
	d := 1.0 - o.s*mu
	return o.rho0 * o.c0 * o.c0 * mu * (1.0 + mu) / (d * d)
}

// auxiliary //////////////////////////////////////////////////////////////////////////////////////

// SignalVelocity returns the elastic wave speed sqrt((K + 4G/3)/rho)
func SignalVelocity(kk, gg, rho float64) float64 {
	return math.Sqrt((kk + 4.0*gg/3.0) / rho)
}
