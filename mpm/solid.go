// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/tsr"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/mat"

	"github.com/vacary/karamelo/msolid"
)

// particle communication schema: offsets of each field inside one packed
// record of CommN doubles
const (
	CommTag        = 0  // particle tag
	CommX          = 1  // current position (3)
	CommX0         = 4  // reference position (3)
	CommV          = 7  // velocity (3)
	CommF          = 10 // deformation gradient (9)
	CommSig        = 19 // Cauchy stress, Mandel (6)
	CommVol0       = 25 // reference volume
	CommVol        = 26 // current volume
	CommMass       = 27 // mass
	CommEp         = 28 // equivalent plastic strain
	CommEpdot      = 29 // equivalent plastic strain rate
	CommDamage     = 30 // damage
	CommDamageInit = 31 // damage initiation
	CommMb         = 32 // external body force (3)
	CommMask       = 35 // group mask
	CommN          = 36 // doubles per particle
)

// Solid holds the particles of one body, its background grid and its
// constitutive models. Particle data live in flat contiguous arrays; indices
// below NpLocal are residents, the migration step permutes them freely.
type Solid struct {
	Id  string
	Mat *msolid.Material

	Grid *Grid // background grid (shared for UL, per-solid for TL)

	Np      int // global number of particles (all processors)
	NpLocal int // particles on this processor

	// particle arrays; strides noted
	Ptag       []int     // particle tags
	X          []float64 // current positions [3]
	X0         []float64 // reference positions [3]
	V          []float64 // velocities [3]
	Vupdate    []float64 // PIC velocities gathered from the grid [3]
	A          []float64 // accelerations [3]
	Mbp        []float64 // external body forces [3]
	Fint       []float64 // internal forces (mass times acceleration) [3]
	Sig        []float64 // Cauchy stress, Mandel [6]
	F          []float64 // deformation gradient, row-major [9]
	L          []float64 // rate of deformation [9]
	Bp         []float64 // APIC affine matrix [9]
	Di         []float64 // APIC inverse inertia tensor [9]
	Vol0       []float64 // reference volumes
	Vol        []float64 // current volumes
	Mass       []float64 // masses
	Ep         []float64 // equivalent plastic strains
	Epdot      []float64 // equivalent plastic strain rates
	Damage     []float64 // damage
	DamageInit []float64 // damage initiation
	Mask       []int     // group masks

	// neighbour lists: particle => nodes and the transpose
	NumneighPn []int
	NeighPn    [][]int
	WfPn       [][]float64
	WfdPn      [][]float64 // [3] per entry
	NumneighNp []int
	NeighNp    [][]int
	WfNp       [][]float64
	WfdNp      [][]float64

	DtCFL float64 // stable time step from the last stress update

	dom *Domain
	u   *Universe
	cap int // allocated particle slots
}

// NewSolid creates a solid by filling an axis-aligned region with a regular
// particle lattice of nppc particles per cell per axis. Only particles inside
// this processor's subdomain are kept; tags are globally unique starting at
// tagBase+1.
func NewSolid(dom *Domain, u *Universe, id string, m *msolid.Material, grid *Grid,
	regionLo, regionHi [3]float64, nppc int, v0 [3]float64, tagBase int) (o *Solid) {

	if nppc < 1 {
		chk.Panic("solid %q: nppc must be >= 1. nppc=%d", id, nppc)
	}
	o = &Solid{Id: id, Mat: m, Grid: grid, dom: dom, u: u}
	o.DtCFL = 1e22

	dp := dom.Cellsize / float64(nppc)
	np := [3]int{1, 1, 1}
	for d := 0; d < dom.Dimension; d++ {
		np[d] = int((regionHi[d]-regionLo[d])/dp + 0.5)
		if np[d] < 1 {
			chk.Panic("solid %q: region along axis %d is smaller than one particle spacing", id, d)
		}
	}
	o.Np = np[0] * np[1] * np[2]
	o.Grow(o.Np/u.Nproc + 1)

	vol0 := math.Pow(dp, float64(dom.Dimension))
	mass := m.Rho0() * vol0

	tag := tagBase
	for i := 0; i < np[0]; i++ {
		for j := 0; j < np[1]; j++ {
			for k := 0; k < np[2]; k++ {
				tag++
				x := regionLo[0] + (float64(i)+0.5)*dp
				y, z := regionLo[1], regionLo[2]
				if dom.Dimension >= 2 {
					y += (float64(j) + 0.5) * dp
				}
				if dom.Dimension == 3 {
					z += (float64(k) + 0.5) * dp
				}
				if !dom.InsideSubdomain(x, y, z) {
					continue
				}
				ip := o.NpLocal
				o.Grow(ip + 1)
				o.NpLocal++
				o.Ptag[ip] = tag
				o.X[3*ip], o.X[3*ip+1], o.X[3*ip+2] = x, y, z
				o.X0[3*ip], o.X0[3*ip+1], o.X0[3*ip+2] = x, y, z
				for c := 0; c < 3; c++ {
					o.V[3*ip+c] = v0[c]
				}
				o.Vol0[ip] = vol0
				o.Vol[ip] = vol0
				o.Mass[ip] = mass
				o.Mask[ip] = 1
				o.F[9*ip], o.F[9*ip+4], o.F[9*ip+8] = 1, 1, 1
			}
		}
	}
	return
}

// Grow reallocates the particle arrays to hold at least n particles,
// preserving indices below NpLocal. Buffers never shrink.
func (o *Solid) Grow(n int) {
	if n <= o.cap {
		return
	}
	newcap := utl.Imax(n, 2*o.cap)
	growI := func(a []int) []int {
		b := make([]int, newcap)
		copy(b, a)
		return b
	}
	growD := func(a []float64, stride int) []float64 {
		b := make([]float64, stride*newcap)
		copy(b, a)
		return b
	}
	o.Ptag = growI(o.Ptag)
	o.Mask = growI(o.Mask)
	o.X = growD(o.X, 3)
	o.X0 = growD(o.X0, 3)
	o.V = growD(o.V, 3)
	o.Vupdate = growD(o.Vupdate, 3)
	o.A = growD(o.A, 3)
	o.Mbp = growD(o.Mbp, 3)
	o.Fint = growD(o.Fint, 3)
	o.Sig = growD(o.Sig, 6)
	o.F = growD(o.F, 9)
	o.L = growD(o.L, 9)
	o.Bp = growD(o.Bp, 9)
	o.Di = growD(o.Di, 9)
	o.Vol0 = growD(o.Vol0, 1)
	o.Vol = growD(o.Vol, 1)
	o.Mass = growD(o.Mass, 1)
	o.Ep = growD(o.Ep, 1)
	o.Epdot = growD(o.Epdot, 1)
	o.Damage = growD(o.Damage, 1)
	o.DamageInit = growD(o.DamageInit, 1)
	nn := growI(o.NumneighPn)
	o.NumneighPn = nn
	pn := make([][]int, newcap)
	copy(pn, o.NeighPn)
	o.NeighPn = pn
	wf := make([][]float64, newcap)
	copy(wf, o.WfPn)
	o.WfPn = wf
	wfd := make([][]float64, newcap)
	copy(wfd, o.WfdPn)
	o.WfdPn = wfd
	o.cap = newcap
}

// scatter kernels ////////////////////////////////////////////////////////////////////////////////

// ComputeMassNodes scatters the particle masses to the grid
func (o *Solid) ComputeMassNodes(reset bool) {
	g := o.Grid
	if reset {
		g.ResetMass()
	}
	for ip := 0; ip < o.NpLocal; ip++ {
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			g.Mass[in] += o.WfPn[ip][m] * o.Mass[ip]
		}
	}
}

// ComputeVelocityNodes scatters the particle momenta to the grid; the
// momentum is normalised into a velocity during the ghost reduction
func (o *Solid) ComputeVelocityNodes(reset bool) {
	g := o.Grid
	if reset {
		g.ResetMomentum()
	}
	for ip := 0; ip < o.NpLocal; ip++ {
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			c := o.WfPn[ip][m] * o.Mass[ip]
			for i := 0; i < 3; i++ {
				g.V[3*in+i] += c * o.V[3*ip+i]
			}
		}
	}
}

// ComputeVelocityNodesAPIC scatters the affine particle momenta
// m wf (v + Bp Di (xn - xp)) to the grid. With ref, offsets are taken in the
// reference configuration (total Lagrangian).
func (o *Solid) ComputeVelocityNodesAPIC(reset, ref bool) {
	g := o.Grid
	if reset {
		g.ResetMomentum()
	}
	xp := o.X
	if ref {
		xp = o.X0
	}
	var cp [9]float64
	var dx [3]float64
	for ip := 0; ip < o.NpLocal; ip++ {
		// Cp = Bp Di
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				s := 0.0
				for k := 0; k < 3; k++ {
					s += o.Bp[9*ip+3*i+k] * o.Di[9*ip+3*k+j]
				}
				cp[3*i+j] = s
			}
		}
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			c := o.WfPn[ip][m] * o.Mass[ip]
			for i := 0; i < 3; i++ {
				dx[i] = g.X0[3*in+i] - xp[3*ip+i]
			}
			for i := 0; i < 3; i++ {
				v := o.V[3*ip+i]
				for j := 0; j < 3; j++ {
					v += cp[3*i+j] * dx[j]
				}
				g.V[3*in+i] += c * v
			}
		}
	}
}

// ComputeExternalForcesNodes scatters the particle body forces to the grid
func (o *Solid) ComputeExternalForcesNodes(reset bool) {
	g := o.Grid
	if reset {
		for i := range g.Mb {
			g.Mb[i] = 0
		}
	}
	for ip := 0; ip < o.NpLocal; ip++ {
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			for i := 0; i < 3; i++ {
				g.Mb[3*in+i] += o.WfPn[ip][m] * o.Mbp[3*ip+i]
			}
		}
	}
}

// ComputeInternalForcesNodesUL scatters -vol σ ∇wf in the current
// configuration
func (o *Solid) ComputeInternalForcesNodesUL(reset bool) {
	g := o.Grid
	if reset {
		for i := range g.F {
			g.F[i] = 0
		}
	}
	for ip := 0; ip < o.NpLocal; ip++ {
		sig := o.Sig[6*ip : 6*ip+6]
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			wfd := o.WfdPn[ip][3*m : 3*m+3]
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					g.F[3*in+i] -= o.Vol[ip] * tsr.M2T(sig, i, j) * wfd[j]
				}
			}
		}
	}
}

// ComputeInternalForcesNodesTL scatters -vol0 P ∇0wf with the first
// Piola-Kirchhoff stress P = J σ F^{-T}
func (o *Solid) ComputeInternalForcesNodesTL(reset bool) {
	g := o.Grid
	if reset {
		for i := range g.F {
			g.F[i] = 0
		}
	}
	var pk1 [9]float64
	var fi mat.Dense
	for ip := 0; ip < o.NpLocal; ip++ {
		sig := o.Sig[6*ip : 6*ip+6]
		fm := mat.NewDense(3, 3, o.F[9*ip:9*ip+9])
		if err := fi.Inverse(fm); err != nil {
			chk.Panic("solid %q: singular deformation gradient at particle %d", o.Id, ip)
		}
		jac := mat.Det(fm)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				s := 0.0
				for k := 0; k < 3; k++ {
					s += tsr.M2T(sig, i, k) * fi.At(j, k) // F^{-T}[k][j] = Finv[j][k]
				}
				pk1[3*i+j] = jac * s
			}
		}
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			wfd := o.WfdPn[ip][3*m : 3*m+3]
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					g.F[3*in+i] -= o.Vol0[ip] * pk1[3*i+j] * wfd[j]
				}
			}
		}
	}
}

// gather kernels /////////////////////////////////////////////////////////////////////////////////

// ComputeParticleVelocitiesAndPositions gathers the updated nodal velocities
// into the PIC particle velocities and advects the positions
func (o *Solid) ComputeParticleVelocitiesAndPositions(dt float64) {
	g := o.Grid
	for ip := 0; ip < o.NpLocal; ip++ {
		var vpic [3]float64
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			for i := 0; i < 3; i++ {
				vpic[i] += o.WfPn[ip][m] * g.Vupdate[3*in+i]
			}
		}
		for i := 0; i < 3; i++ {
			o.Vupdate[3*ip+i] = vpic[i]
			o.X[3*ip+i] += dt * vpic[i]
		}
	}
}

// ComputeParticleAcceleration gathers (v_update - v)/dt from the nodes
func (o *Solid) ComputeParticleAcceleration(dt float64) {
	g := o.Grid
	for ip := 0; ip < o.NpLocal; ip++ {
		var a [3]float64
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			for i := 0; i < 3; i++ {
				a[i] += o.WfPn[ip][m] * (g.Vupdate[3*in+i] - g.V[3*in+i])
			}
		}
		for i := 0; i < 3; i++ {
			o.A[3*ip+i] = a[i] / dt
			o.Fint[3*ip+i] = o.Mass[ip] * o.A[3*ip+i]
		}
	}
}

// UpdateParticleVelocities blends the PIC and FLIP velocity updates:
// v = (1-α) v_pic + α (v + a dt). Positions always use the PIC update.
func (o *Solid) UpdateParticleVelocities(flip, dt float64) {
	for ip := 0; ip < o.NpLocal; ip++ {
		for i := 0; i < 3; i++ {
			o.V[3*ip+i] = (1.0-flip)*o.Vupdate[3*ip+i] + flip*(o.V[3*ip+i]+o.A[3*ip+i]*dt)
		}
	}
}

// deformation ////////////////////////////////////////////////////////////////////////////////////

// ComputeRateDeformationGradientULMUSL builds L = Σ v_n ⊗ ∇wf from the
// re-scattered nodal velocities (MUSL second pass)
func (o *Solid) ComputeRateDeformationGradientULMUSL() {
	o.rateFromNodes(o.Grid.V)
}

// ComputeRateDeformationGradientULUSL builds L = Σ v_update_n ⊗ ∇wf
func (o *Solid) ComputeRateDeformationGradientULUSL() {
	o.rateFromNodes(o.Grid.Vupdate)
}

func (o *Solid) rateFromNodes(vn []float64) {
	for ip := 0; ip < o.NpLocal; ip++ {
		lp := o.L[9*ip : 9*ip+9]
		for i := range lp {
			lp[i] = 0
		}
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			wfd := o.WfdPn[ip][3*m : 3*m+3]
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					lp[3*i+j] += vn[3*in+i] * wfd[j]
				}
			}
		}
	}
}

// ComputeRateDeformationGradientULAPIC builds the affine matrix
// Bp = Σ wf v_n (xn - xp)^T and the velocity gradient L = Bp Di
func (o *Solid) ComputeRateDeformationGradientULAPIC() {
	o.rateAPIC(false)
}

// ComputeRateDeformationGradientTLAPIC is the total-Lagrangian counterpart
// using reference offsets; L receives Fdot
func (o *Solid) ComputeRateDeformationGradientTLAPIC() {
	o.rateAPIC(true)
}

func (o *Solid) rateAPIC(ref bool) {
	g := o.Grid
	xp := o.X
	if ref {
		xp = o.X0
	}
	var dx [3]float64
	for ip := 0; ip < o.NpLocal; ip++ {
		bp := o.Bp[9*ip : 9*ip+9]
		for i := range bp {
			bp[i] = 0
		}
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			for i := 0; i < 3; i++ {
				dx[i] = g.X0[3*in+i] - xp[3*ip+i]
			}
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					bp[3*i+j] += o.WfPn[ip][m] * g.Vupdate[3*in+i] * dx[j]
				}
			}
		}
		lp := o.L[9*ip : 9*ip+9]
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				s := 0.0
				for k := 0; k < 3; k++ {
					s += bp[3*i+k] * o.Di[9*ip+3*k+j]
				}
				lp[3*i+j] = s
			}
		}
	}
}

// ComputeRateDeformationGradientTL builds Fdot = Σ v_n ⊗ ∇0wf (stored in L
// until UpdateDeformationGradient converts it to a velocity gradient)
func (o *Solid) ComputeRateDeformationGradientTL() {
	o.rateFromNodes(o.Grid.V)
}

// ComputeRateDeformationGradientTLUSL is the total-Lagrangian variant using
// the updated nodal velocities
func (o *Solid) ComputeRateDeformationGradientTLUSL() {
	o.rateFromNodes(o.Grid.Vupdate)
}

// UpdateDeformationGradient advances F and the particle volumes. For
// updated-Lagrangian methods F <- (I + L dt) F; total-Lagrangian methods
// integrate Fdot directly and then convert L into the velocity gradient
// Fdot F^{-1} for the stress update.
func (o *Solid) UpdateDeformationGradient(dt float64, tl bool) {
	var fnew [9]float64
	var fi mat.Dense
	for ip := 0; ip < o.NpLocal; ip++ {
		fp := o.F[9*ip : 9*ip+9]
		lp := o.L[9*ip : 9*ip+9]
		if tl {
			for i := 0; i < 9; i++ {
				fnew[i] = fp[i] + dt*lp[i]
			}
		} else {
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					s := fp[3*i+j]
					for k := 0; k < 3; k++ {
						s += dt * lp[3*i+k] * fp[3*k+j]
					}
					fnew[3*i+j] = s
				}
			}
		}
		copy(fp, fnew[:])
		fm := mat.NewDense(3, 3, fp)
		jac := mat.Det(fm)
		if jac <= 0 || math.IsNaN(jac) {
			chk.Panic("solid %q: det(F) = %g at particle %d (tag %d)", o.Id, jac, ip, o.Ptag[ip])
		}
		o.Vol[ip] = jac * o.Vol0[ip]
		if tl {
			if err := fi.Inverse(fm); err != nil {
				chk.Panic("solid %q: singular deformation gradient at particle %d", o.Id, ip)
			}
			var lv [9]float64
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					s := 0.0
					for k := 0; k < 3; k++ {
						s += lp[3*i+k] * fi.At(k, j)
					}
					lv[3*i+j] = s
				}
			}
			copy(lp, lv[:])
		}
	}
}

// UpdateStress updates the Cauchy stresses through the constitutive models
// and accumulates the CFL-stable time step
func (o *Solid) UpdateStress(dt float64) {
	if o.Mat.Rigid {
		return
	}
	dman := make([]float64, msolid.Nsig)
	snew := make([]float64, msolid.Nsig)
	for ip := 0; ip < o.NpLocal; ip++ {
		jac := o.Vol[ip] / o.Vol0[ip]
		p := o.Mat.Eos.Pressure(jac)
		sig := o.Sig[6*ip : 6*ip+6]

		if o.Mat.Strength != nil {
			msolid.SymTen2Man(dman, o.L[9*ip:9*ip+9])
			epdot := o.Mat.Strength.UpdateDeviator(snew, sig, dman, dt, o.Ep[ip], o.Epdot[ip], o.Damage[ip])
			if o.Mat.Damage != nil && epdot > 0 {
				o.Damage[ip], o.DamageInit[ip] = o.Mat.Damage.Update(sig, epdot*dt, epdot, o.Damage[ip], o.DamageInit[ip])
			}
			o.Epdot[ip] = epdot
			o.Ep[ip] += epdot * dt
			for i := 0; i < msolid.Nsig; i++ {
				sig[i] = snew[i] - p*tsr.Im[i]
			}
		} else {
			for i := 0; i < msolid.Nsig; i++ {
				sig[i] = -p * tsr.Im[i]
			}
		}

		// stable time step
		rho := o.Mass[ip] / o.Vol[ip]
		c := o.Mat.SignalVelocity(rho)
		vn := math.Sqrt(o.V[3*ip]*o.V[3*ip] + o.V[3*ip+1]*o.V[3*ip+1] + o.V[3*ip+2]*o.V[3*ip+2])
		dtp := o.Grid.Cellsize / (c + vn)
		if dtp < o.DtCFL {
			o.DtCFL = dtp
		}
	}
}

// APIC ///////////////////////////////////////////////////////////////////////////////////////////

// ComputeInertiaTensor caches the inverse APIC inertia tensor
// Di = [Σ wf (xn-xp)(xn-xp)^T]^{-1} for every particle. Inactive axes get a
// unit diagonal before the inversion. With ref, offsets are taken in the
// reference configuration.
func (o *Solid) ComputeInertiaTensor(ref bool) {
	g := o.Grid
	xp := o.X
	if ref {
		xp = o.X0
	}
	dp := la.MatAlloc(3, 3)
	di := la.MatAlloc(3, 3)
	var dx [3]float64
	for ip := 0; ip < o.NpLocal; ip++ {
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				dp[i][j] = 0
			}
		}
		for m, in := range o.NeighPn[ip][:o.NumneighPn[ip]] {
			for i := 0; i < 3; i++ {
				dx[i] = g.X0[3*in+i] - xp[3*ip+i]
			}
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					dp[i][j] += o.WfPn[ip][m] * dx[i] * dx[j]
				}
			}
		}
		for d := o.dom.Dimension; d < 3; d++ {
			dp[d][d] = 1
		}
		if _, err := la.MatInv(di, dp, 1e-14); err != nil {
			chk.Panic("solid %q: cannot invert inertia tensor of particle %d:\n%v", o.Id, ip, err)
		}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				o.Di[9*ip+3*i+j] = di[i][j]
			}
		}
	}
}

// migration //////////////////////////////////////////////////////////////////////////////////////

// PackParticle appends the CommN-double record of particle ip to buf
func (o *Solid) PackParticle(ip int, buf *[]float64) {
	rec := make([]float64, CommN)
	rec[CommTag] = float64(o.Ptag[ip])
	copy(rec[CommX:CommX+3], o.X[3*ip:3*ip+3])
	copy(rec[CommX0:CommX0+3], o.X0[3*ip:3*ip+3])
	copy(rec[CommV:CommV+3], o.V[3*ip:3*ip+3])
	copy(rec[CommF:CommF+9], o.F[9*ip:9*ip+9])
	copy(rec[CommSig:CommSig+6], o.Sig[6*ip:6*ip+6])
	rec[CommVol0] = o.Vol0[ip]
	rec[CommVol] = o.Vol[ip]
	rec[CommMass] = o.Mass[ip]
	rec[CommEp] = o.Ep[ip]
	rec[CommEpdot] = o.Epdot[ip]
	rec[CommDamage] = o.Damage[ip]
	rec[CommDamageInit] = o.DamageInit[ip]
	copy(rec[CommMb:CommMb+3], o.Mbp[3*ip:3*ip+3])
	rec[CommMask] = float64(o.Mask[ip])
	*buf = append(*buf, rec...)
}

// UnpackParticle appends the records starting at the given buffer offsets,
// writing particles base, base+1, ... The caller must Grow first; NpLocal is
// advanced here.
func (o *Solid) UnpackParticle(base int, offsets []int, buf []float64) {
	for m, off := range offsets {
		ip := base + m
		rec := buf[off : off+CommN]
		o.Ptag[ip] = int(rec[CommTag])
		copy(o.X[3*ip:3*ip+3], rec[CommX:CommX+3])
		copy(o.X0[3*ip:3*ip+3], rec[CommX0:CommX0+3])
		copy(o.V[3*ip:3*ip+3], rec[CommV:CommV+3])
		copy(o.F[9*ip:9*ip+9], rec[CommF:CommF+9])
		copy(o.Sig[6*ip:6*ip+6], rec[CommSig:CommSig+6])
		o.Vol0[ip] = rec[CommVol0]
		o.Vol[ip] = rec[CommVol]
		o.Mass[ip] = rec[CommMass]
		o.Ep[ip] = rec[CommEp]
		o.Epdot[ip] = rec[CommEpdot]
		o.Damage[ip] = rec[CommDamage]
		o.DamageInit[ip] = rec[CommDamageInit]
		copy(o.Mbp[3*ip:3*ip+3], rec[CommMb:CommMb+3])
		o.Mask[ip] = int(rec[CommMask])
	}
	o.NpLocal = base + len(offsets)
}

// CopyParticle copies particle src over particle dst (used by the
// swap-removal in the migration partition)
func (o *Solid) CopyParticle(src, dst int) {
	if src == dst {
		return
	}
	o.Ptag[dst] = o.Ptag[src]
	o.Mask[dst] = o.Mask[src]
	copy(o.X[3*dst:3*dst+3], o.X[3*src:3*src+3])
	copy(o.X0[3*dst:3*dst+3], o.X0[3*src:3*src+3])
	copy(o.V[3*dst:3*dst+3], o.V[3*src:3*src+3])
	copy(o.Vupdate[3*dst:3*dst+3], o.Vupdate[3*src:3*src+3])
	copy(o.A[3*dst:3*dst+3], o.A[3*src:3*src+3])
	copy(o.Mbp[3*dst:3*dst+3], o.Mbp[3*src:3*src+3])
	copy(o.Fint[3*dst:3*dst+3], o.Fint[3*src:3*src+3])
	copy(o.Sig[6*dst:6*dst+6], o.Sig[6*src:6*src+6])
	copy(o.F[9*dst:9*dst+9], o.F[9*src:9*src+9])
	copy(o.L[9*dst:9*dst+9], o.L[9*src:9*src+9])
	copy(o.Bp[9*dst:9*dst+9], o.Bp[9*src:9*src+9])
	copy(o.Di[9*dst:9*dst+9], o.Di[9*src:9*src+9])
	o.Vol0[dst] = o.Vol0[src]
	o.Vol[dst] = o.Vol[src]
	o.Mass[dst] = o.Mass[src]
	o.Ep[dst] = o.Ep[src]
	o.Epdot[dst] = o.Epdot[src]
	o.Damage[dst] = o.Damage[src]
	o.DamageInit[dst] = o.DamageInit[src]
}

// PartitionDepartures walks the resident particles, packs those for which
// inside() is false into buf and fills the holes with the last resident.
// Particles outside the global box are removed without packing; their count
// is returned.
func (o *Solid) PartitionDepartures(inside func(x, y, z float64) bool, buf *[]float64) (lost int) {
	npOld := o.NpLocal
	ip := 0
	for ip < o.NpLocal {
		x, y, z := o.X[3*ip], o.X[3*ip+1], o.X[3*ip+2]
		if !o.dom.InsideBox(x, y, z) {
			o.CopyParticle(o.NpLocal-1, ip)
			o.NpLocal--
			lost++
			continue
		}
		if !inside(x, y, z) {
			o.PackParticle(ip, buf)
			o.CopyParticle(o.NpLocal-1, ip)
			o.NpLocal--
			continue
		}
		ip++
	}
	if (npOld-o.NpLocal-lost)*CommN != len(*buf) {
		chk.Panic("solid %q: migration buffer does not match the number of departed particles: %d != %d",
			o.Id, (npOld-o.NpLocal-lost)*CommN, len(*buf))
	}
	return
}

// diagnostics ////////////////////////////////////////////////////////////////////////////////////

// TotalMassLocal sums the resident particle masses
func (o *Solid) TotalMassLocal() (m float64) {
	for ip := 0; ip < o.NpLocal; ip++ {
		m += o.Mass[ip]
	}
	return
}

// TotalMomentumLocal sums the resident particle momenta
func (o *Solid) TotalMomentumLocal() (p [3]float64) {
	for ip := 0; ip < o.NpLocal; ip++ {
		for i := 0; i < 3; i++ {
			p[i] += o.Mass[ip] * o.V[3*ip+i]
		}
	}
	return
}
