// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"github.com/cpmech/gosl/chk"

	"github.com/vacary/karamelo/shp"
)

// Grid holds the background lattice of one solid or of the whole domain.
// Local node indices 0..NnodesLocal are owned by this processor; indices
// NnodesLocal..NnodesLocal+NnodesGhost are replicas of nodes owned elsewhere.
type Grid struct {

	// geometry
	Cellsize    float64 // background cell size
	InvCellsize float64 // 1/Cellsize
	Spacing     float64 // node spacing: Cellsize, or Cellsize/2 on the refined lattice
	Refined     bool    // nodes on the 2x-refined lattice (Bernstein-quadratic)
	NxGlobal    int     // global number of nodes along x
	NyGlobal    int     // global number of nodes along y
	NzGlobal    int     // global number of nodes along z

	// counts
	NnodesGlobal int // total number of nodes over all processors
	NnodesLocal  int // nodes owned by this processor
	NnodesGhost  int // ghost replicas held by this processor

	// nodal arrays, local followed by ghost
	Tag     []int     // global node tags
	Ntype   []int     // per-axis node types [stride 3]
	X0      []float64 // reference positions [stride 3]
	V       []float64 // momentum during scatter, velocity after reduction [stride 3]
	Vupdate []float64 // updated velocity [stride 3]
	F       []float64 // internal forces [stride 3]
	Mb      []float64 // external forces [stride 3]
	Mass    []float64 // nodal mass
	Mask    []int     // group mask
	Rigid   []bool    // node supports a rigid solid

	// tag resolution
	MapNtag map[int]int // tag => local index

	// communication plan
	dom     *Domain
	u       *Universe
	sendIdx [][]int // [nproc] owned local indices replicated on each rank, tag order
	recvIdx [][]int // [nproc] ghost local indices owned by each rank, tag order
}

// NewGrid builds the grid covering the global box, allocating owned nodes and
// the ghost halo required by the given basis family
func NewGrid(dom *Domain, u *Universe, basis *shp.Basis) (o *Grid) {

	o = &Grid{dom: dom, u: u}
	o.Cellsize = dom.Cellsize
	o.InvCellsize = 1.0 / dom.Cellsize
	o.Refined = basis.Refined
	o.Spacing = dom.Cellsize
	if o.Refined {
		o.Spacing = 0.5 * dom.Cellsize
	}

	// global node counts
	var ncells [3]int
	nn := [3]int{1, 1, 1}
	for d := 0; d < dom.Dimension; d++ {
		ncells[d] = int((dom.Boxhi[d]-dom.Boxlo[d])*o.InvCellsize + 0.5)
		if ncells[d] < 1 {
			chk.Panic("box along axis %d is smaller than one cell", d)
		}
		nn[d] = ncells[d] + 1
		if o.Refined {
			nn[d] = 2*ncells[d] + 1
		}
	}
	o.NxGlobal, o.NyGlobal, o.NzGlobal = nn[0], nn[1], nn[2]
	o.NnodesGlobal = nn[0] * nn[1] * nn[2]

	// halo extent
	halo := float64(basis.Halo) * o.Cellsize

	// collect owned nodes first, then ghosts
	o.MapNtag = make(map[int]int)
	var gTags []int
	var gNtype []int
	var gX0 []float64
	appendNode := func(tag int, x, y, z float64, tx, ty, tz int, ghost bool) {
		if ghost {
			gTags = append(gTags, tag)
			gNtype = append(gNtype, tx, ty, tz)
			gX0 = append(gX0, x, y, z)
			return
		}
		o.MapNtag[tag] = len(o.Tag)
		o.Tag = append(o.Tag, tag)
		o.Ntype = append(o.Ntype, tx, ty, tz)
		o.X0 = append(o.X0, x, y, z)
	}
	for i := 0; i < nn[0]; i++ {
		for j := 0; j < nn[1]; j++ {
			for k := 0; k < nn[2]; k++ {
				x := dom.Boxlo[0] + float64(i)*o.Spacing
				y := dom.Boxlo[1]
				z := dom.Boxlo[2]
				if dom.Dimension >= 2 {
					y += float64(j) * o.Spacing
				}
				if dom.Dimension == 3 {
					z += float64(k) * o.Spacing
				}
				owned := dom.OwnerOf(x, y, z) == u.Rank
				ghost := false
				if !owned {
					ghost = o.inHalo(x, y, z, halo)
					if !ghost {
						continue
					}
				}
				tx := o.nodeType(i, nn[0])
				ty := o.nodeType(j, nn[1])
				tz := o.nodeType(k, nn[2])
				appendNode(o.TagOf(i, j, k), x, y, z, tx, ty, tz, ghost)
			}
		}
	}
	o.NnodesLocal = len(o.Tag)
	o.NnodesGhost = len(gTags)
	for m, tag := range gTags {
		o.MapNtag[tag] = len(o.Tag)
		o.Tag = append(o.Tag, tag)
		o.Ntype = append(o.Ntype, gNtype[3*m], gNtype[3*m+1], gNtype[3*m+2])
		o.X0 = append(o.X0, gX0[3*m], gX0[3*m+1], gX0[3*m+2])
	}

	// state arrays
	ntot := o.NnodesLocal + o.NnodesGhost
	o.V = make([]float64, 3*ntot)
	o.Vupdate = make([]float64, 3*ntot)
	o.F = make([]float64, 3*ntot)
	o.Mb = make([]float64, 3*ntot)
	o.Mass = make([]float64, ntot)
	o.Mask = make([]int, ntot)
	o.Rigid = make([]bool, ntot)
	for in := 0; in < ntot; in++ {
		o.Mask[in] = 1
	}

	o.setupComm()
	return
}

// TagOf returns the global tag of lattice node (i,j,k)
func (o *Grid) TagOf(i, j, k int) int {
	if o.dom.Dimension == 3 {
		return o.NzGlobal*o.NyGlobal*i + o.NzGlobal*j + k
	}
	if o.dom.Dimension == 2 {
		return o.NyGlobal*i + j
	}
	return i
}

// Find resolves a global tag to a local index; found is false for nodes
// outside this processor's local+ghost slice
func (o *Grid) Find(tag int) (in int, found bool) {
	in, found = o.MapNtag[tag]
	return
}

// nodeType returns the per-axis node type of lattice index i
func (o *Grid) nodeType(i, n int) int {
	if o.Refined {
		return i % 2
	}
	if i == 0 {
		return shp.NtypeLower
	}
	if i == n-1 {
		return shp.NtypeUpper
	}
	return shp.NtypeInterior
}

// inHalo tells whether a point lies within halo distance of this subdomain
func (o *Grid) inHalo(x, y, z, halo float64) bool {
	p := [3]float64{x, y, z}
	for d := 0; d < o.dom.Dimension; d++ {
		if p[d] < o.dom.Sublo[d]-halo || p[d] > o.dom.Subhi[d]+halo {
			return false
		}
	}
	return true
}

// resets /////////////////////////////////////////////////////////////////////////////////////////

// ResetMass zeroes the nodal masses
func (o *Grid) ResetMass() {
	for in := range o.Mass {
		o.Mass[in] = 0
	}
}

// ResetMomentum zeroes the nodal momenta
func (o *Grid) ResetMomentum() {
	for i := range o.V {
		o.V[i] = 0
	}
}

// ResetForces zeroes internal and external nodal forces
func (o *Grid) ResetForces() {
	for i := range o.F {
		o.F[i] = 0
		o.Mb[i] = 0
	}
}

// ResetRigid clears the rigid flags (before a neighbour rebuild)
func (o *Grid) ResetRigid() {
	for in := range o.Rigid {
		o.Rigid[in] = false
	}
}

// communication //////////////////////////////////////////////////////////////////////////////////

// setupComm builds the ghost-reduction plan: which of my owned nodes are
// replicated on which ranks, and which ranks own my ghost slots
func (o *Grid) setupComm() {
	n := o.u.Nproc
	o.sendIdx = make([][]int, n)
	o.recvIdx = make([][]int, n)
	if !o.u.Distr {
		return
	}

	// owners of my ghost slots
	for in := o.NnodesLocal; in < o.NnodesLocal+o.NnodesGhost; in++ {
		r := o.dom.OwnerOf(o.X0[3*in], o.X0[3*in+1], o.X0[3*in+2])
		o.recvIdx[r] = append(o.recvIdx[r], in)
	}

	// every rank announces its ghost tags; owners record the replicas
	myGhostTags := make([]int, o.NnodesGhost)
	copy(myGhostTags, o.Tag[o.NnodesLocal:])
	for sproc := 0; sproc < n; sproc++ {
		if sproc == o.u.Rank {
			for rproc := 0; rproc < n; rproc++ {
				if rproc == o.u.Rank {
					continue
				}
				o.u.SendInts([]int{len(myGhostTags)}, rproc)
				if len(myGhostTags) > 0 {
					o.u.SendInts(myGhostTags, rproc)
				}
			}
		} else {
			size := make([]int, 1)
			o.u.RecvInts(size, sproc)
			if size[0] > 0 {
				tags := make([]int, size[0])
				o.u.RecvInts(tags, sproc)
				for _, tag := range tags {
					if in, ok := o.MapNtag[tag]; ok && in < o.NnodesLocal {
						o.sendIdx[sproc] = append(o.sendIdx[sproc], in)
					}
				}
			}
		}
	}
}

// passValues performs one barrier-free all-to-all pass: each source rank in
// turn sends the values packed at its 'src' indices; receivers apply 'recv'
// at their 'dst' indices. Ghost reductions run two passes: replicas into
// owners (add), then owners back to replicas (set).
func (o *Grid) passValues(src, dst [][]int, nv int, pack func(in int, buf []float64), recv func(in int, buf []float64)) {
	n := o.u.Nproc
	for sproc := 0; sproc < n; sproc++ {
		if sproc == o.u.Rank {
			for rproc := 0; rproc < n; rproc++ {
				if rproc == o.u.Rank {
					continue
				}
				idx := src[rproc]
				size := len(idx) * nv
				o.u.SendInts([]int{size}, rproc)
				if size == 0 {
					continue
				}
				buf := make([]float64, size)
				for m, in := range idx {
					pack(in, buf[m*nv:(m+1)*nv])
				}
				o.u.SendDbls(buf, rproc)
			}
		} else {
			idx := dst[sproc]
			size := make([]int, 1)
			o.u.RecvInts(size, sproc)
			if size[0] != len(idx)*nv {
				chk.Panic("ghost reduction size mismatch with proc %d: %d != %d", sproc, size[0], len(idx)*nv)
			}
			if size[0] == 0 {
				continue
			}
			buf := make([]float64, size[0])
			o.u.RecvDbls(buf, sproc)
			for m, in := range idx {
				recv(in, buf[m*nv:(m+1)*nv])
			}
		}
	}
}

// ReduceMassGhostNodes reduces the nodal mass of ghost nodes into their
// owners and pushes the sums back to the replicas
func (o *Grid) ReduceMassGhostNodes() {
	if !o.u.Distr {
		return
	}
	pack := func(in int, buf []float64) { buf[0] = o.Mass[in] }
	add := func(in int, buf []float64) { o.Mass[in] += buf[0] }
	set := func(in int, buf []float64) { o.Mass[in] = buf[0] }
	o.passValues(o.recvIdx, o.sendIdx, 1, pack, add)
	o.passValues(o.sendIdx, o.recvIdx, 1, pack, set)
}

// ReduceGhostNodes reduces nodal momentum and, unless reset is given, the
// external and internal forces; afterwards the momenta are normalised by the
// nodal masses to recover velocities. reset is used by the MUSL second pass,
// where only the freshly scattered momenta are exchanged.
func (o *Grid) ReduceGhostNodes(reset bool) {
	if o.u.Distr {
		nv := 9
		if reset {
			nv = 3
		}
		pack := func(in int, buf []float64) {
			copy(buf[:3], o.V[3*in:3*in+3])
			if nv == 9 {
				copy(buf[3:6], o.Mb[3*in:3*in+3])
				copy(buf[6:9], o.F[3*in:3*in+3])
			}
		}
		add := func(in int, buf []float64) {
			for i := 0; i < 3; i++ {
				o.V[3*in+i] += buf[i]
			}
			if nv == 9 {
				for i := 0; i < 3; i++ {
					o.Mb[3*in+i] += buf[3+i]
					o.F[3*in+i] += buf[6+i]
				}
			}
		}
		set := func(in int, buf []float64) {
			copy(o.V[3*in:3*in+3], buf[:3])
			if nv == 9 {
				copy(o.Mb[3*in:3*in+3], buf[3:6])
				copy(o.F[3*in:3*in+3], buf[6:9])
			}
		}
		o.passValues(o.recvIdx, o.sendIdx, nv, pack, add)
		o.passValues(o.sendIdx, o.recvIdx, nv, pack, set)
	}

	// momentum => velocity
	for in := 0; in < o.NnodesLocal+o.NnodesGhost; in++ {
		if o.Mass[in] > 0 {
			for i := 0; i < 3; i++ {
				o.V[3*in+i] /= o.Mass[in]
			}
		} else {
			for i := 0; i < 3; i++ {
				o.V[3*in+i] = 0
			}
		}
	}
}

// UpdateGridVelocities computes the updated nodal velocities
// v_update = v + dt (f + mb)/mass on every node with mass; massless nodes get
// v_update = 0. Dirichlet fixes override v_update afterwards.
func (o *Grid) UpdateGridVelocities(dt float64) {
	for in := 0; in < o.NnodesLocal+o.NnodesGhost; in++ {
		if o.Mass[in] > 0 {
			im := 1.0 / o.Mass[in]
			for i := 0; i < 3; i++ {
				o.Vupdate[3*in+i] = o.V[3*in+i] + dt*(o.F[3*in+i]+o.Mb[3*in+i])*im
			}
		} else {
			for i := 0; i < 3; i++ {
				o.Vupdate[3*in+i] = 0
			}
		}
	}
}
