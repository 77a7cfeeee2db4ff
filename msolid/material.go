// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Material aggregates the constitutive models of one solid
type Material struct {
	Name     string
	Rigid    bool     // rigid body: no stress update
	Eos      EOS      // volumetric response
	Strength Strength // deviatoric response; may be nil for fluids
	Damage   Damage   // damage law; may be nil
}

// NewMaterial builds a material from model names and parameter sets.
// strengthType and damageType may be empty.
func NewMaterial(name string, rigid bool, eosType string, eosPrms fun.Prms,
	strengthType string, strengthPrms fun.Prms,
	damageType string, damagePrms fun.Prms) (o *Material, err error) {

	o = &Material{Name: name, Rigid: rigid}
	o.Eos, err = NewEOS(eosType, eosPrms)
	if err != nil {
		return nil, chk.Err("material %q: %v", name, err)
	}
	if strengthType != "" {
		o.Strength, err = NewStrength(strengthType, strengthPrms)
		if err != nil {
			return nil, chk.Err("material %q: %v", name, err)
		}
	}
	if damageType != "" {
		o.Damage, err = NewDamage(damageType, damagePrms)
		if err != nil {
			return nil, chk.Err("material %q: %v", name, err)
		}
	}
	return
}

// Rho0 returns the reference density
func (o *Material) Rho0() float64 { return o.Eos.Rho0() }

// G returns the shear modulus (zero without a strength model)
func (o *Material) G() float64 {
	if o.Strength == nil {
		return 0
	}
	return o.Strength.G()
}

// SignalVelocity returns the elastic wave speed at density rho
func (o *Material) SignalVelocity(rho float64) float64 {
	return SignalVelocity(o.Eos.K(), o.G(), rho)
}

// MatDb holds all materials of a simulation
type MatDb map[string]*Material

// Get returns a material by name
func (o MatDb) Get(name string) (m *Material, err error) {
	m, ok := o[name]
	if !ok {
		err = chk.Err("cannot find material named %q", name)
	}
	return
}

// Mandel helpers /////////////////////////////////////////////////////////////////////////////////

// SQ2 is sqrt(2), the Mandel off-diagonal scaling
var SQ2 = math.Sqrt(2.0)

// SymTen2Man packs the symmetric part of a flat row-major 3x3 tensor into
// Mandel components {t11, t22, t33, sqrt2*t12, sqrt2*t23, sqrt2*t13}
func SymTen2Man(man, t []float64) {
	man[0] = t[0]
	man[1] = t[4]
	man[2] = t[8]
	man[3] = SQ2 * 0.5 * (t[1] + t[3])
	man[4] = SQ2 * 0.5 * (t[5] + t[7])
	man[5] = SQ2 * 0.5 * (t[2] + t[6])
}

// Man2SymTen unpacks Mandel components into a flat row-major 3x3 tensor
func Man2SymTen(t, man []float64) {
	t[0], t[4], t[8] = man[0], man[1], man[2]
	t[1], t[3] = man[3]/SQ2, man[3]/SQ2
	t[5], t[7] = man[4]/SQ2, man[4]/SQ2
	t[2], t[6] = man[5]/SQ2, man[5]/SQ2
}
