// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"

	"github.com/vacary/karamelo/msolid"
)

// testSim builds a serial simulation skeleton with a shared grid
func testSim(dim int, lo, hi [3]float64, h float64, methodArgs []string, scheme string) *MPM {
	u := NewUniverse(false)
	m := &MPM{U: u, Vars: make(map[string]float64)}
	m.Upd = NewUpdate(m)
	if scheme != "" {
		m.Upd.CreateScheme([]string{scheme})
	}
	m.Upd.CreateMethod(methodArgs)
	m.Dom = NewDomain(u, dim, lo, hi, h)
	if m.Upd.MethodStyle != "tlmpm" {
		m.Dom.Grid = NewGrid(m.Dom, u, m.Upd.Method.ShapeFunction())
	}
	m.Grps = NewGroups(m)
	return m
}

// elasticMat returns a linear-elastic material; g == 0 gives a pressure-only
// (fluid-like) response
func elasticMat(rho0, kk, gg float64) *msolid.Material {
	strType := ""
	var strPrms fun.Prms
	if gg > 0 {
		strType = "linear"
		strPrms = fun.Prms{&fun.Prm{N: "G", V: gg}}
	}
	mat, err := msolid.NewMaterial("test", false,
		"linear", fun.Prms{&fun.Prm{N: "rho0", V: rho0}, &fun.Prm{N: "K", V: kk}},
		strType, strPrms, "", nil)
	if err != nil {
		chk.Panic("cannot create test material:\n%v", err)
	}
	return mat
}

// addSolid fills a region and registers the solid under the shared grid
func addSolid(m *MPM, id string, mat *msolid.Material, lo, hi [3]float64, nppc int, v0 [3]float64) *Solid {
	grid := m.Dom.Grid
	if m.Upd.MethodStyle == "tlmpm" {
		grid = NewGrid(m.Dom, m.U, m.Upd.Method.ShapeFunction())
	}
	tagBase := 0
	for _, s := range m.Dom.Solids {
		tagBase += s.Np
	}
	s := NewSolid(m.Dom, m.U, id, mat, grid, lo, hi, nppc, v0, tagBase)
	m.Dom.Solids = append(m.Dom.Solids, s)
	return s
}
