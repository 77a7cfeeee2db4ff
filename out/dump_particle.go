// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package out implements the simulation output: particle snapshot dumps in
// plain text and compressed variants
package out

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"

	"github.com/DataDog/zstd"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/tsr"

	"github.com/vacary/karamelo/mpm"
)

// register dump styles
func init() {
	for _, style := range []string{"particle", "particle/gz", "particle/zst"} {
		style := style
		mpm.Dallocators[style] = func(m *mpm.MPM, id, fname string, every int) (mpm.Dump, error) {
			return &DumpParticle{m: m, id: id, fname: fname, style: style, every: every}, nil
		}
	}
}

// DumpParticle writes one text snapshot per requested timestep. The gz and
// zst styles wrap the same text in gzip or zstd compression. Ranks other than
// root stream their packed particle records to root, which writes the file.
type DumpParticle struct {
	m     *mpm.MPM
	id    string
	fname string
	style string
	every int
}

func (o *DumpParticle) Id() string { return o.id }
func (o *DumpParticle) Every() int { return o.every }

// Filename returns the output path for one timestep: a '*' in the template is
// replaced by the timestep; a template without '*' is used literally
func (o *DumpParticle) Filename(ntimestep int) string {
	fdump := o.fname
	if idx := strings.Index(fdump, "*"); idx >= 0 {
		fdump = fdump[:idx] + io.Sf("%d", ntimestep) + fdump[idx+1:]
	}
	if !filepath.IsAbs(fdump) && o.m.Sim != nil && o.m.Sim.DirOut != "" {
		fdump = filepath.Join(o.m.Sim.DirOut, fdump)
	}
	return fdump
}

// Write writes the snapshot of the current state
func (o *DumpParticle) Write(ntimestep int) (err error) {

	u := o.m.U
	dom := o.m.Dom

	// non-root ranks stream their records to root
	if !u.Root {
		for _, s := range dom.Solids {
			var pbuf []float64
			for ip := 0; ip < s.NpLocal; ip++ {
				s.PackParticle(ip, &pbuf)
			}
			u.SendInts([]int{len(pbuf)}, 0)
			if len(pbuf) > 0 {
				u.SendDbls(pbuf, 0)
			}
		}
		return
	}

	// header
	var buf bytes.Buffer
	io.Ff(&buf, "ITEM: TIMESTEP\n%d\n", ntimestep)
	io.Ff(&buf, "ITEM: NUMBER OF ATOMS\n%d\n", dom.NpGlobal())
	io.Ff(&buf, "ITEM: BOX BOUNDS sm sm sm\n")
	io.Ff(&buf, "%g %g\n%g %g\n%g %g\n", dom.Boxlo[0], dom.Boxhi[0], dom.Boxlo[1], dom.Boxhi[1], dom.Boxlo[2], dom.Boxhi[2])
	io.Ff(&buf, "ITEM: ATOMS id type x y z x0 y0 z0 vx vy vz s11 s22 s33 s12 s13 s23 seq damage damage_init volume mass bx by bz ep epdot\n")

	// particles: root's residents first, then each rank's stream, per solid
	id := 0
	for isolid, s := range dom.Solids {
		var pbuf []float64
		for ip := 0; ip < s.NpLocal; ip++ {
			s.PackParticle(ip, &pbuf)
		}
		id = writeRecords(&buf, isolid, id, pbuf)
		if u.Distr {
			for rproc := 1; rproc < u.Nproc; rproc++ {
				size := make([]int, 1)
				u.RecvInts(size, rproc)
				if size[0] > 0 {
					rbuf := make([]float64, size[0])
					u.RecvDbls(rbuf, rproc)
					id = writeRecords(&buf, isolid, id, rbuf)
				}
			}
		}
	}

	return o.save(ntimestep, &buf)
}

// save writes the text through the style's compressor
func (o *DumpParticle) save(ntimestep int, buf *bytes.Buffer) (err error) {
	fil, err := os.Create(o.Filename(ntimestep))
	if err != nil {
		return
	}
	defer fil.Close()
	switch o.style {
	case "particle/gz":
		gz := gzip.NewWriter(fil)
		if _, err = gz.Write(buf.Bytes()); err != nil {
			return
		}
		return gz.Close()
	case "particle/zst":
		zw := zstd.NewWriter(fil)
		if _, err = zw.Write(buf.Bytes()); err != nil {
			return
		}
		return zw.Close()
	}
	_, err = fil.Write(buf.Bytes())
	return
}

// writeRecords writes one line per packed particle record, returning the
// advanced running particle id
func writeRecords(buf *bytes.Buffer, isolid, id int, records []float64) int {
	for off := 0; off+mpm.CommN <= len(records); off += mpm.CommN {
		rec := records[off : off+mpm.CommN]
		sig := rec[mpm.CommSig : mpm.CommSig+6]
		id++
		io.Ff(buf, "%d %d %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g %g\n",
			id, isolid+1,
			rec[mpm.CommX], rec[mpm.CommX+1], rec[mpm.CommX+2],
			rec[mpm.CommX0], rec[mpm.CommX0+1], rec[mpm.CommX0+2],
			rec[mpm.CommV], rec[mpm.CommV+1], rec[mpm.CommV+2],
			tsr.M2T(sig, 0, 0), tsr.M2T(sig, 1, 1), tsr.M2T(sig, 2, 2),
			tsr.M2T(sig, 0, 1), tsr.M2T(sig, 0, 2), tsr.M2T(sig, 1, 2),
			tsr.M_q(sig),
			rec[mpm.CommDamage], rec[mpm.CommDamageInit],
			rec[mpm.CommVol], rec[mpm.CommMass],
			rec[mpm.CommMb], rec[mpm.CommMb+1], rec[mpm.CommMb+2],
			rec[mpm.CommEp], rec[mpm.CommEpdot])
	}
	return id
}
