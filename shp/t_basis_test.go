// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// lattice builds the 1D node lattice of a [0,L] domain with unit cells for
// one family, returning node positions and node types
func lattice(b *Basis, ncells int) (xn []float64, ntype []int) {
	if b.Refined {
		nn := 2*ncells + 1
		xn = make([]float64, nn)
		ntype = make([]int, nn)
		for i := 0; i < nn; i++ {
			xn[i] = 0.5 * float64(i)
			ntype[i] = i % 2
		}
		return
	}
	nn := ncells + 1
	xn = make([]float64, nn)
	ntype = make([]int, nn)
	for i := 0; i < nn; i++ {
		xn[i] = float64(i)
		ntype[i] = NtypeInterior
	}
	ntype[0] = NtypeLower
	ntype[nn-1] = NtypeUpper
	return
}

// sums evaluates the weight and weight-gradient sums at particle position x
func sums(b *Basis, xn []float64, ntype []int, x float64) (sw, sd float64) {
	i0 := b.Anchor(x)
	for i := i0; i < i0+b.Npa; i++ {
		if i < 0 || i >= len(xn) {
			continue
		}
		r := x - xn[i]
		sw += b.F(r, ntype[i])
		sd += b.D(r, ntype[i], 1.0)
	}
	return
}

func Test_basis01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("basis01. partition of unity")

	ncells := 10
	for name, b := range factory {

		io.Pfyel("----------------------- %-20s-----------------------\n", name)

		xn, ntype := lattice(b, ncells)

		// sweep particle positions over the whole domain, walls included
		np := 400
		for i := 0; i <= np; i++ {
			x := float64(ncells) * float64(i) / float64(np)
			if i == np {
				x = float64(ncells) // exact upper wall
			}
			sw, sd := sums(b, xn, ntype, x)
			chk.Float64(tst, io.Sf("Σwf  @ x=%g", x), 1e-12, sw, 1.0)
			chk.Float64(tst, io.Sf("Σwfd @ x=%g", x), 1e-10, sd, 0.0)
			if tst.Failed() {
				return
			}
		}
		io.PfGreen("OK\n")
	}
}

func Test_basis02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("basis02. derivatives against central differences")

	h := 1e-6
	for name, b := range factory {
		for _, r := range []float64{-1.9, -1.2, -0.75, -0.3, -0.1, 0.1, 0.25, 0.6, 1.3, 1.8} {
			for _, nt := range []int{NtypeLower, NtypeInterior, NtypeUpper} {
				num := (b.F(r+h, nt) - b.F(r-h, nt)) / (2.0 * h)
				ana := b.D(r, nt, 1.0)
				// skip the kinks where the numerical stencil straddles two pieces
				if math.Abs(num-ana) > 1e-5 {
					if nearKink(b, r, h) {
						continue
					}
				}
				chk.Float64(tst, io.Sf("%s dN(%g,%d)", name, r, nt), 1e-5, ana, num)
				if tst.Failed() {
					return
				}
			}
		}
	}
}

// nearKink reports whether r±h straddles a breakpoint of the piecewise polynomial
func nearKink(b *Basis, r, h float64) bool {
	var brk []float64
	switch b.Name {
	case "linear":
		brk = []float64{-1, 0, 1}
	case "quadratic-spline":
		brk = []float64{-2.5, -1.5, -0.5, 0.5, 1.5, 2.5}
	case "cubic-spline":
		brk = []float64{-3, -2, -1, 0, 1, 2, 3}
	case "Bernstein-quadratic":
		brk = []float64{-1, -0.5, 0, 0.5, 1}
	}
	for _, x := range brk {
		if math.Abs(r-x) <= 2*h {
			return true
		}
	}
	return false
}

func Test_basis03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("basis03. support and continuity")

	for name, b := range factory {

		// zero outside support for interior nodes
		for _, r := range []float64{-b.Support - 1e-12, b.Support + 1e-12, -3, 3} {
			chk.Float64(tst, io.Sf("%s outside", name), 1e-17, b.F(r, NtypeInterior), 0)
			chk.Float64(tst, io.Sf("%s d outside", name), 1e-17, b.D(r, NtypeInterior, 1.0), 0)
		}

		// C0 at the support boundary
		eps := 1e-9
		chk.Float64(tst, io.Sf("%s C0 upper", name), 1e-8, b.F(b.Support-eps, NtypeInterior), 0)
		chk.Float64(tst, io.Sf("%s C0 lower", name), 1e-8, b.F(-b.Support+eps, NtypeInterior), 0)
	}
}

func Test_basis04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("basis04. Bernstein-quadratic at a domain corner")

	b := Get("Bernstein-quadratic")
	xn, ntype := lattice(b, 4)

	// particle sitting exactly on the corner node
	sw, _ := sums(b, xn, ntype, 0.0)
	if sw != 1.0 {
		tst.Errorf("corner partition of unity is not exact: %v", sw)
		return
	}

	// vertex carries the full weight there
	chk.Float64(tst, "corner vertex wf", 1e-17, b.F(0, 0), 1.0)
	chk.Float64(tst, "corner midpoint wf", 1e-17, b.F(-0.25, 1), 0.375)
	io.PfGreen("OK\n")
}
