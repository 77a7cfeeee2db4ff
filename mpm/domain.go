// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"
)

// Domain holds the global simulation box, its decomposition into subdomains
// and the list of solids
type Domain struct {
	Dimension int        // space dimension: 1, 2 or 3
	Boxlo     [3]float64 // lower corner of the global box
	Boxhi     [3]float64 // upper corner of the global box
	Cellsize  float64    // background cell size

	Sublo [3]float64 // lower corner of this processor's subdomain
	Subhi [3]float64 // upper corner of this processor's subdomain

	Solids []*Solid // all solids, in declaration order
	Grid   *Grid    // shared background grid (updated-Lagrangian methods)

	u *Universe
}

// NewDomain returns a new Domain and computes the subdomain bounds from the
// processor grid
func NewDomain(u *Universe, dim int, boxlo, boxhi [3]float64, cellsize float64) (o *Domain) {
	if dim < 1 || dim > 3 {
		chk.Panic("domain dimension must be 1, 2 or 3. dim=%d", dim)
	}
	if cellsize <= 0 {
		chk.Panic("cellsize must be positive. cellsize=%g", cellsize)
	}
	for d := 0; d < dim; d++ {
		if boxhi[d] <= boxlo[d] {
			chk.Panic("invalid box along axis %d: [%g,%g]", d, boxlo[d], boxhi[d])
		}
	}
	o = &Domain{Dimension: dim, Boxlo: boxlo, Boxhi: boxhi, Cellsize: cellsize, u: u}

	var boxlen [3]float64
	for d := 0; d < 3; d++ {
		boxlen[d] = boxhi[d] - boxlo[d]
	}
	u.SetProcgrid(dim, boxlen)
	for d := 0; d < 3; d++ {
		p := u.Procgrid[d]
		m := u.Myloc[d]
		o.Sublo[d] = o.subBound(d, m)
		o.Subhi[d] = o.subBound(d, m+1)
		if p == 1 {
			o.Sublo[d] = boxlo[d]
			o.Subhi[d] = boxhi[d]
		}
	}
	return
}

// subBound returns the m-th subdomain boundary along axis d. All processors
// compute boundaries with the same expression so membership is consistent.
func (o *Domain) subBound(d, m int) float64 {
	p := o.u.Procgrid[d]
	return o.Boxlo[d] + (o.Boxhi[d]-o.Boxlo[d])*float64(m)/float64(p)
}

// InsideSubdomain tells whether point (x,y,z) belongs to this processor's
// subdomain. Subdomains are half-open; the global upper boundary is closed.
func (o *Domain) InsideSubdomain(x, y, z float64) bool {
	p := [3]float64{x, y, z}
	for d := 0; d < o.Dimension; d++ {
		if p[d] < o.Sublo[d] {
			return false
		}
		if p[d] >= o.Subhi[d] {
			last := o.u.Myloc[d] == o.u.Procgrid[d]-1
			if !(last && p[d] <= o.Boxhi[d]) {
				return false
			}
		}
	}
	return true
}

// InsideBox tells whether point (x,y,z) lies in the global box (closed)
func (o *Domain) InsideBox(x, y, z float64) bool {
	p := [3]float64{x, y, z}
	for d := 0; d < o.Dimension; d++ {
		if p[d] < o.Boxlo[d] || p[d] > o.Boxhi[d] {
			return false
		}
	}
	return true
}

// OwnerOf returns the rank owning point (x,y,z). Points on an internal
// subdomain boundary belong to the upper neighbour; the global upper boundary
// belongs to the last rank.
func (o *Domain) OwnerOf(x, y, z float64) int {
	p := [3]float64{x, y, z}
	var loc [3]int
	for d := 0; d < 3; d++ {
		pg := o.u.Procgrid[d]
		m := pg - 1
		for k := 0; k < pg-1; k++ {
			if p[d] < o.subBound(d, k+1) {
				m = k
				break
			}
		}
		loc[d] = m
	}
	return loc[0] + o.u.Procgrid[0]*(loc[1]+o.u.Procgrid[1]*loc[2])
}

// Grids returns the distinct grids referenced by the solids (the shared grid
// appears once)
func (o *Domain) Grids() (grids []*Grid) {
	seen := make(map[*Grid]bool)
	for _, s := range o.Solids {
		if s.Grid != nil && !seen[s.Grid] {
			seen[s.Grid] = true
			grids = append(grids, s.Grid)
		}
	}
	return
}

// NpGlobal returns the total number of particles over all solids
func (o *Domain) NpGlobal() (np int) {
	for _, s := range o.Solids {
		np += s.Np
	}
	return
}
