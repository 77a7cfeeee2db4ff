// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/tsr"
)

// Nsig is the number of Mandel stress components
const Nsig = 6

// Strength updates the deviatoric part of the Cauchy stress
type Strength interface {
	Init(prms fun.Prms) (err error) // initialises model
	G() float64                     // shear modulus

	// UpdateDeviator writes the updated deviatoric stress (Mandel components)
	// into snew, given the current stress sig, the rate of deformation D, the
	// accumulated plastic strain ep and the previous-step rate epdot0. It
	// returns the new equivalent plastic strain rate.
	UpdateDeviator(snew, sig, D []float64, dt, ep, epdot0, damage float64) (epdot float64)
}

// strengthallocators holds all available strength models
var strengthallocators = make(map[string]func() Strength)

// NewStrength returns and initialises a new strength model
func NewStrength(typ string, prms fun.Prms) (o Strength, err error) {
	alloc, ok := strengthallocators[typ]
	if !ok {
		err = chk.Err("cannot find strength model named %q", typ)
		return
	}
	o = alloc()
	err = o.Init(prms)
	return
}

// StrengthLinear implements a linear elastic deviatoric response
type StrengthLinear struct {
	gg float64 // shear modulus
}

func init() {
	strengthallocators["linear"] = func() Strength { return new(StrengthLinear) }
}

// Init initialises model
func (o *StrengthLinear) Init(prms fun.Prms) (err error) {
	for _, p := range prms {
		switch p.N {
		case "G":
			o.gg = p.V
		default:
			return chk.Err("strength-linear: parameter named %q is incorrect", p.N)
		}
	}
	if o.gg <= 0 {
		return chk.Err("strength-linear: G must be positive. G=%g", o.gg)
	}
	return
}

func (o *StrengthLinear) G() float64 { return o.gg }

// UpdateDeviator computes s_new = dev(sig) + 2 G dev(D) dt
func (o *StrengthLinear) UpdateDeviator(snew, sig, D []float64, dt, ep, epdot0, damage float64) (epdot float64) {
	psig := tsr.M_p(sig) // -tr(sig)/3
	pd := tsr.M_p(D)
	for i := 0; i < Nsig; i++ {
		snew[i] = sig[i] + psig*tsr.Im[i] + dt*2.0*o.gg*(D[i]+pd*tsr.Im[i])
	}
	return 0
}

// StrengthJohnsonCook implements Johnson-Cook flow stress with radial return
type StrengthJohnsonCook struct {
	gg     float64 // shear modulus
	aa     float64 // initial yield stress
	bb     float64 // hardening modulus
	nn     float64 // hardening exponent
	cc     float64 // strain-rate coefficient
	epdot0 float64 // reference strain rate

	str []float64 // trial deviator workspace
}

func init() {
	strengthallocators["johnson-cook"] = func() Strength { return new(StrengthJohnsonCook) }
}

// Init initialises model
func (o *StrengthJohnsonCook) Init(prms fun.Prms) (err error) {
	o.epdot0 = 1.0
	for _, p := range prms {
		switch p.N {
		case "G":
			o.gg = p.V
		case "A":
			o.aa = p.V
		case "B":
			o.bb = p.V
		case "n":
			o.nn = p.V
		case "C":
			o.cc = p.V
		case "epdot0":
			o.epdot0 = p.V
		default:
			return chk.Err("strength-johnson-cook: parameter named %q is incorrect", p.N)
		}
	}
	if o.gg <= 0 || o.aa <= 0 {
		return chk.Err("strength-johnson-cook: G and A must be positive. G=%g A=%g", o.gg, o.aa)
	}
	o.str = make([]float64, Nsig)
	return
}

func (o *StrengthJohnsonCook) G() float64 { return o.gg }

// FlowStress returns the Johnson-Cook yield stress at plastic strain ep and rate epdot
func (o *StrengthJohnsonCook) FlowStress(ep, epdot, damage float64) float64 {
	sy := o.aa
	if ep > 0 {
		sy += o.bb * math.Pow(ep, o.nn)
	}
	if epdot > o.epdot0 {
		sy *= 1.0 + o.cc*math.Log(epdot/o.epdot0)
	}
	return (1.0 - damage) * sy
}

// UpdateDeviator performs an elastic predictor followed by radial return
func (o *StrengthJohnsonCook) UpdateDeviator(snew, sig, D []float64, dt, ep, epdot0, damage float64) (epdot float64) {

	// trial deviator
	psig := tsr.M_p(sig)
	pd := tsr.M_p(D)
	for i := 0; i < Nsig; i++ {
		o.str[i] = sig[i] + psig*tsr.Im[i] + dt*2.0*o.gg*(D[i]+pd*tsr.Im[i])
	}
	qtr := tsr.M_q(o.str)

	// yield check using the previous-step rate (explicit)
	sy := o.FlowStress(ep, epdot0, damage)
	if qtr <= sy || dt <= 0 {
		copy(snew, o.str)
		return 0
	}

	// radial return
	dep := (qtr - sy) / (3.0 * o.gg)
	f := sy / qtr
	for i := 0; i < Nsig; i++ {
		snew[i] = f * o.str[i]
	}
	return dep / dt
}
