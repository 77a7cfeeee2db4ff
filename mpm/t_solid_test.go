// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"sort"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_solid01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solid01. lattice fill")

	m := testSim(2, [3]float64{0, 0, 0}, [3]float64{10, 10, 0}, 1.0, []string{"ulmpm", "PIC", "linear"}, "")
	mat := elasticMat(1000, 1e6, 0)
	s := addSolid(m, "block", mat, [3]float64{2, 2, 0}, [3]float64{6, 5, 0}, 2, [3]float64{0, 0, 0})

	// 4x3 cells at 2 particles per cell per axis
	chk.IntAssert(s.Np, 8*6)
	chk.IntAssert(s.NpLocal, 48)

	// total mass equals rho0 times the region volume (unit thickness)
	chk.Float64(tst, "total mass", 1e-10, s.TotalMassLocal(), 1000.0*4*3)

	// particles inside the region, volumes consistent
	for ip := 0; ip < s.NpLocal; ip++ {
		if s.X[3*ip] < 2 || s.X[3*ip] > 6 || s.X[3*ip+1] < 2 || s.X[3*ip+1] > 5 {
			tst.Errorf("particle %d outside its region", ip)
			return
		}
		chk.Float64(tst, "vol0", 1e-15, s.Vol0[ip], 0.25)
		chk.Float64(tst, "F diagonal", 1e-17, s.F[9*ip], 1)
	}

	// tags unique
	seen := make(map[int]bool)
	for ip := 0; ip < s.NpLocal; ip++ {
		if seen[s.Ptag[ip]] {
			tst.Errorf("duplicate particle tag %d", s.Ptag[ip])
			return
		}
		seen[s.Ptag[ip]] = true
	}
}

func Test_solid02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solid02. grow, pack and unpack")

	m := testSim(3, [3]float64{0, 0, 0}, [3]float64{4, 4, 4}, 1.0, []string{"ulmpm", "FLIP", "cubic-spline", "0.99"}, "")
	mat := elasticMat(7850, 160e9, 80e9)
	s := addSolid(m, "cube", mat, [3]float64{1, 1, 1}, [3]float64{3, 3, 3}, 1, [3]float64{1, -2, 3})

	// stamp recognisable state on one particle
	ip := 3
	s.Sig[6*ip+0] = 11
	s.Sig[6*ip+3] = 12
	s.Ep[ip] = 0.25
	s.Damage[ip] = 0.5
	s.Mbp[3*ip+2] = -9
	s.F[9*ip+1] = 0.1

	var buf []float64
	s.PackParticle(ip, &buf)
	chk.IntAssert(len(buf), CommN)

	// grow far beyond the current size and check preservation
	old := s.NpLocal
	x := s.X[3*ip]
	s.Grow(10 * s.NpLocal)
	chk.IntAssert(s.NpLocal, old)
	chk.Float64(tst, "x preserved", 1e-17, s.X[3*ip], x)

	// unpack as a new particle and compare the full record
	base := s.NpLocal
	s.Grow(base + 1)
	s.UnpackParticle(base, []int{0}, buf)
	chk.IntAssert(s.NpLocal, base+1)
	chk.IntAssert(s.Ptag[base], s.Ptag[ip])
	var buf2 []float64
	s.PackParticle(base, &buf2)
	chk.Vector(tst, "pack/unpack round trip", 1e-17, buf2, buf)
}

func Test_solid03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("solid03. migration partition")

	m := testSim(2, [3]float64{0, 0, 0}, [3]float64{10, 10, 0}, 1.0, []string{"ulmpm", "PIC", "linear"}, "")
	mat := elasticMat(1, 1e3, 0)
	s := addSolid(m, "band", mat, [3]float64{0, 4, 0}, [3]float64{10, 5, 0}, 1, [3]float64{0, 0, 0})

	npOld := s.NpLocal
	massOld := s.TotalMassLocal()
	tagsOld := sortedTags(s)

	// pretend this rank only owns x < 6
	var buf []float64
	lost := s.PartitionDepartures(func(x, y, z float64) bool { return x < 6 }, &buf)
	chk.IntAssert(lost, 0)
	departed := npOld - s.NpLocal
	chk.IntAssert(len(buf), departed*CommN)
	if departed == 0 {
		tst.Errorf("some particles must have departed")
		return
	}

	// residents form a contiguous prefix inside the predicate
	for ip := 0; ip < s.NpLocal; ip++ {
		if s.X[3*ip] >= 6 {
			tst.Errorf("resident particle %d outside the predicate", ip)
			return
		}
	}

	// re-accept everything, as the receiving rank would
	var offsets []int
	for off := 0; off < len(buf); off += CommN {
		offsets = append(offsets, off)
	}
	s.Grow(s.NpLocal + len(offsets))
	s.UnpackParticle(s.NpLocal, offsets, buf)

	// count, mass and the tag multiset are conserved
	chk.IntAssert(s.NpLocal, npOld)
	chk.Float64(tst, "mass conserved", 1e-12, s.TotalMassLocal(), massOld)
	tagsNew := sortedTags(s)
	for i := range tagsOld {
		if tagsOld[i] != tagsNew[i] {
			tst.Errorf("tag multiset changed at %d: %d != %d", i, tagsOld[i], tagsNew[i])
			return
		}
	}

	// particles outside the global box are removed and counted
	s.X[0] = -1
	buf = buf[:0]
	lost = s.PartitionDepartures(func(x, y, z float64) bool { return true }, &buf)
	chk.IntAssert(lost, 1)
	chk.IntAssert(s.NpLocal, npOld-1)
	chk.IntAssert(len(buf), 0)
}

func sortedTags(s *Solid) []int {
	tags := make([]int, s.NpLocal)
	copy(tags, s.Ptag[:s.NpLocal])
	sort.Ints(tags)
	return tags
}
