// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mpm implements the material point method: background grids, particle
// solids, update methods (total- and updated-Lagrangian), integration schemes
// and the distributed-memory machinery tying them together
package mpm

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"
)

// Universe holds the multiprocessing data of a simulation
type Universe struct {
	Rank     int    // my rank in the distributed cluster
	Nproc    int    // number of processors
	Root     bool   // am I root? (i.e. rank == 0)
	Distr    bool   // distributed simulation with more than one mpi processor
	Procgrid [3]int // number of subdomains along each axis
	Myloc    [3]int // my coordinates in the processor grid
}

// NewUniverse returns a new Universe structure
//  allowParallel -- allow parallel execution; otherwise run in serial mode
//                   regardless whether MPI is on or not
func NewUniverse(allowParallel bool) (o *Universe) {
	o = new(Universe)
	o.Nproc = 1
	o.Root = true
	if mpi.IsOn() && allowParallel {
		o.Rank = mpi.Rank()
		o.Nproc = mpi.Size()
		o.Root = o.Rank == 0
		o.Distr = o.Nproc > 1
	}
	o.Procgrid = [3]int{1, 1, 1}
	return
}

// SetProcgrid factorises Nproc into a processor grid minimising the subdomain
// surface for the given box edge lengths
func (o *Universe) SetProcgrid(dim int, boxlen [3]float64) {
	best := -1.0
	for px := 1; px <= o.Nproc; px++ {
		if o.Nproc%px != 0 {
			continue
		}
		rem := o.Nproc / px
		for py := 1; py <= rem; py++ {
			if rem%py != 0 {
				continue
			}
			pz := rem / py
			if (dim < 2 && py > 1) || (dim < 3 && pz > 1) {
				continue
			}
			// surface area of one subdomain
			lx := boxlen[0] / float64(px)
			ly := boxlen[1] / float64(py)
			lz := boxlen[2] / float64(pz)
			var surf float64
			switch dim {
			case 1:
				surf = 1
			case 2:
				surf = lx + ly
			default:
				surf = lx*ly + ly*lz + lz*lx
			}
			if best < 0 || surf < best {
				best = surf
				o.Procgrid = [3]int{px, py, pz}
			}
		}
	}
	if best < 0 {
		chk.Panic("cannot factorise %d processors into a grid", o.Nproc)
	}
	r := o.Rank
	o.Myloc[0] = r % o.Procgrid[0]
	r /= o.Procgrid[0]
	o.Myloc[1] = r % o.Procgrid[1]
	o.Myloc[2] = r / o.Procgrid[1]
}

// collectives ////////////////////////////////////////////////////////////////////////////////////

// AllReduceSum sums x over all processors, in place. w is a workspace with len(w) == len(x)
func (o *Universe) AllReduceSum(x, w []float64) {
	if !o.Distr {
		return
	}
	mpi.AllReduceSum(x, w)
}

// AllReduceMin takes the minimum of x over all processors, in place
func (o *Universe) AllReduceMin(x, w []float64) {
	if !o.Distr {
		return
	}
	mpi.AllReduceMin(x, w)
}

// point-to-point /////////////////////////////////////////////////////////////////////////////////

// SendInts sends a slice of ints to processor 'to'
func (o *Universe) SendInts(vals []int, to int) { mpi.IntSend(vals, to) }

// RecvInts receives a slice of ints from processor 'from'
func (o *Universe) RecvInts(vals []int, from int) { mpi.IntRecv(vals, from) }

// SendDbls sends a slice of doubles to processor 'to'
func (o *Universe) SendDbls(vals []float64, to int) { mpi.DblSend(vals, to) }

// RecvDbls receives a slice of doubles from processor 'from'
func (o *Universe) RecvDbls(vals []float64, from int) { mpi.DblRecv(vals, from) }
