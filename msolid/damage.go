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

// Damage accumulates the degradation of a material point
type Damage interface {
	Init(prms fun.Prms) (err error)

	// Update returns the new damage and damage-initiation values after a
	// plastic strain increment depl at stress sig (Mandel)
	Update(sig []float64, depl, epdot, damage, damageInit float64) (dnew, dinew float64)
}

// damageallocators holds all available damage laws
var damageallocators = make(map[string]func() Damage)

// NewDamage returns and initialises a new damage law
func NewDamage(typ string, prms fun.Prms) (o Damage, err error) {
	alloc, ok := damageallocators[typ]
	if !ok {
		err = chk.Err("cannot find damage law named %q", typ)
		return
	}
	o = alloc()
	err = o.Init(prms)
	return
}

// DamageJohnsonCook implements the Johnson-Cook failure-strain damage law
type DamageJohnsonCook struct {
	d1, d2, d3, d4 float64 // failure-strain coefficients
	epdot0         float64 // reference strain rate
}

func init() {
	damageallocators["johnson-cook"] = func() Damage { return new(DamageJohnsonCook) }
}

// Init initialises model
func (o *DamageJohnsonCook) Init(prms fun.Prms) (err error) {
	o.epdot0 = 1.0
	for _, p := range prms {
		switch p.N {
		case "D1":
			o.d1 = p.V
		case "D2":
			o.d2 = p.V
		case "D3":
			o.d3 = p.V
		case "D4":
			o.d4 = p.V
		case "epdot0":
			o.epdot0 = p.V
		default:
			return chk.Err("damage-johnson-cook: parameter named %q is incorrect", p.N)
		}
	}
	return
}

// FailureStrain returns the failure strain at stress triaxiality eta and rate epdot
func (o *DamageJohnsonCook) FailureStrain(eta, epdot float64) float64 {
	ef := o.d1 + o.d2*math.Exp(o.d3*eta)
	if epdot > o.epdot0 {
		ef *= 1.0 + o.d4*math.Log(epdot/o.epdot0)
	}
	return ef
}

// Update accumulates depl/ef into the initiation variable first and into the
// damage variable once initiation is complete
func (o *DamageJohnsonCook) Update(sig []float64, depl, epdot, damage, damageInit float64) (dnew, dinew float64) {
	dnew, dinew = damage, damageInit
	if depl <= 0 || damage >= 1 {
		return
	}
	q := tsr.M_q(sig)
	if q == 0 {
		return
	}
	sm := -tsr.M_p(sig) // mean stress, tension positive
	ef := o.FailureStrain(sm/q, epdot)
	if ef <= 0 {
		return
	}
	if dinew < 1 {
		dinew += depl / ef
		return
	}
	dnew += depl / ef
	if dnew > 1 {
		dnew = 1
	}
	return
}
