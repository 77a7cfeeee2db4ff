// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
)

// Compute evaluates a reduced quantity each step and publishes it to the
// variable store under its id
type Compute interface {
	Id() string
	ComputeValue()
}

// callocators holds all available computes
var callocators = make(map[string]func(m *MPM, id string) (Compute, error))

// NewCompute instantiates the compute style
func NewCompute(m *MPM, style, id string) (c Compute, err error) {
	alloc, ok := callocators[style]
	if !ok {
		return nil, chk.Err("cannot find compute style %q", style)
	}
	return alloc(m, id)
}

// ComputeKineticEnergy publishes the global particle kinetic energy
type ComputeKineticEnergy struct {
	m  *MPM
	id string
}

func init() {
	callocators["kinetic_energy"] = func(m *MPM, id string) (Compute, error) {
		return &ComputeKineticEnergy{m: m, id: id}, nil
	}
}

func (o *ComputeKineticEnergy) Id() string { return o.id }

// ComputeValue reduces 1/2 Σ m v² over all particles and processors
func (o *ComputeKineticEnergy) ComputeValue() {
	ke := 0.0
	for _, s := range o.m.Dom.Solids {
		for ip := 0; ip < s.NpLocal; ip++ {
			v2 := s.V[3*ip]*s.V[3*ip] + s.V[3*ip+1]*s.V[3*ip+1] + s.V[3*ip+2]*s.V[3*ip+2]
			ke += 0.5 * s.Mass[ip] * v2
		}
	}
	x := []float64{ke}
	w := []float64{0}
	o.m.U.AllReduceSum(x, w)
	o.m.Vars[o.id] = x[0]
}
