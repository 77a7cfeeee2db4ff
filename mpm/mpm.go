// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mpm

import (
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"

	"github.com/vacary/karamelo/inp"
	"github.com/vacary/karamelo/msolid"
)

// Dump writes one snapshot of the simulation state
type Dump interface {
	Id() string
	Every() int
	Write(ntimestep int) (err error)
}

// Dallocators holds all available dump styles; the out package registers its
// writers here
var Dallocators = make(map[string]func(m *MPM, id, fname string, every int) (Dump, error))

// MPM holds all data of a material point method simulation
type MPM struct {
	Sim *inp.Simulation // input data
	U   *Universe       // multiprocessing data
	Dom *Domain         // global box, subdomains, solids and grid
	Upd *Update         // time integration state

	Mats     msolid.MatDb       // materials
	Grps     *Groups            // node/particle groups
	Fixes    []Fix              // per-step callbacks
	Computes []Compute          // per-step reduced quantities
	Dumps    []Dump             // output writers
	Vars     map[string]float64 // published variables: dt, time, timestep, fix forces

	Verbose bool
}

// NewMPM builds a simulation from its input data. Configuration errors are
// fatal and collective: every rank reads the same input and panics alike.
func NewMPM(sim *inp.Simulation, u *Universe, verbose bool) (o *MPM) {

	o = &MPM{Sim: sim, U: u, Vars: make(map[string]float64)}
	o.Verbose = verbose && u.Root

	// scheme and method
	o.Upd = NewUpdate(o)
	if sim.Scheme != "" {
		o.Upd.CreateScheme([]string{sim.Scheme})
	}
	if sim.Method.Style == "" {
		chk.Panic("no method defined in input")
	}
	o.Upd.CreateMethod(append([]string{sim.Method.Style}, sim.Method.Args...))

	// materials
	o.Mats = make(msolid.MatDb)
	for _, md := range sim.Materials {
		strType, strPrms := "", fun.Prms(nil)
		if md.Strength != nil {
			strType, strPrms = md.Strength.Type, md.Strength.Prms
		}
		dmgType, dmgPrms := "", fun.Prms(nil)
		if md.Damage != nil {
			dmgType, dmgPrms = md.Damage.Type, md.Damage.Prms
		}
		mat, err := msolid.NewMaterial(md.Name, md.Rigid, md.Eos.Type, md.Eos.Prms, strType, strPrms, dmgType, dmgPrms)
		if err != nil {
			chk.Panic("cannot create material:\n%v", err)
		}
		o.Mats[md.Name] = mat
	}

	// domain and grids
	o.Dom = NewDomain(u, sim.Dim, sim.Boxlo, sim.Boxhi, sim.Cellsize)
	basis := o.Upd.Method.ShapeFunction()
	perSolidGrids := o.Upd.MethodStyle == "tlmpm"
	if !perSolidGrids {
		o.Dom.Grid = NewGrid(o.Dom, u, basis)
	}

	// solids
	tagBase := 0
	for _, sd := range sim.Solids {
		mat, err := o.Mats.Get(sd.Mat)
		if err != nil {
			chk.Panic("solid %q:\n%v", sd.Id, err)
		}
		grid := o.Dom.Grid
		if perSolidGrids {
			grid = NewGrid(o.Dom, u, basis)
		}
		s := NewSolid(o.Dom, u, sd.Id, mat, grid, sd.RegionLo, sd.RegionHi, sd.Nppc, sd.V0, tagBase)
		tagBase += s.Np
		o.Dom.Solids = append(o.Dom.Solids, s)
	}
	if len(o.Dom.Solids) == 0 {
		chk.Panic("no solids defined in input")
	}

	// groups
	o.Grps = NewGroups(o)
	for _, gd := range sim.Groups {
		o.Grps.Create(gd.Name, gd.Pon, gd.RegionLo, gd.RegionHi)
	}

	// fixes
	for _, fd := range sim.Fixes {
		var vals [3]fun.Func
		var err error
		for i, s := range []string{fd.X, fd.Y, fd.Z} {
			vals[i], err = sim.ResolveValue(s)
			if err != nil {
				chk.Panic("fix %q:\n%v", fd.Id, err)
			}
		}
		group := fd.Group
		if group == "" {
			group = "all"
		}
		f, err := NewFix(o, fd.Style, fd.Id, group, vals)
		if err != nil {
			chk.Panic("cannot create fix %q:\n%v", fd.Id, err)
		}
		o.Fixes = append(o.Fixes, f)
	}

	// computes
	for _, cd := range sim.Computes {
		c, err := NewCompute(o, cd.Style, cd.Id)
		if err != nil {
			chk.Panic("cannot create compute %q:\n%v", cd.Id, err)
		}
		o.Computes = append(o.Computes, c)
	}

	// dumps
	for _, dd := range sim.Dumps {
		alloc, ok := Dallocators[dd.Style]
		if !ok {
			chk.Panic("cannot find dump style %q", dd.Style)
		}
		d, err := alloc(o, dd.Id, dd.File, dd.Every)
		if err != nil {
			chk.Panic("cannot create dump %q:\n%v", dd.Id, err)
		}
		o.Dumps = append(o.Dumps, d)
	}

	// time-step policy
	if sim.DtFactor > 0 {
		o.Upd.SetDtFactor(sim.DtFactor)
	}
	if sim.Dt > 0 {
		o.Upd.SetDt(sim.Dt)
	}
	o.Vars["dt"] = o.Upd.Dt
	o.Vars["time"] = 0
	o.Vars["timestep"] = 0
	return
}

// Run runs the simulation for the number of steps given in the input
func (o *MPM) Run() (err error) {
	cputime := time.Now()
	err = o.Upd.Scheme.Run(o.Sim.Nsteps)
	if err != nil {
		return
	}
	if o.Verbose {
		io.Pf("\nfinal time = %v\n", o.Upd.Atime)
		io.Pfblue2("cpu time   = %v\n", time.Now().Sub(cputime))
	}
	return
}

// WriteDumps writes every dump whose period divides the current timestep
func (o *MPM) WriteDumps() {
	for _, d := range o.Dumps {
		if d.Every() <= 0 || o.Upd.Ntimestep%d.Every() != 0 {
			continue
		}
		if err := d.Write(o.Upd.Ntimestep); err != nil {
			chk.Panic("dump %q failed:\n%v", d.Id(), err)
		}
	}
}
