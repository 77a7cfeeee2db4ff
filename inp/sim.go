// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a .sim JSON file
package inp

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"
)

// FuncData holds function definition
type FuncData struct {
	Name string   `json:"name"` // name of function. ex: grav, load1
	Type string   `json:"type"` // type of function. ex: cte, rmp
	Prms fun.Prms `json:"prms"` // parameters
}

// FuncsData holds all functions
type FuncsData []*FuncData

// Get returns function by name
func (o FuncsData) Get(name string) (fcn fun.Func, err error) {
	for _, f := range o {
		if f.Name == name {
			fcn, err = fun.New(f.Type, f.Prms)
			if err != nil {
				err = chk.Err("cannot get function named %q:\n%v", name, err)
			}
			return
		}
	}
	err = chk.Err("cannot find function named %q", name)
	return
}

// ModelData names one constitutive model and its parameters
type ModelData struct {
	Type string   `json:"type"` // model name; e.g. "linear", "johnson-cook"
	Prms fun.Prms `json:"prms"` // parameters
}

// MatData holds one material definition
type MatData struct {
	Name     string     `json:"name"`
	Rigid    bool       `json:"rigid"`
	Eos      ModelData  `json:"eos"`
	Strength *ModelData `json:"strength"` // may be absent (fluids)
	Damage   *ModelData `json:"damage"`   // may be absent
}

// SolidData holds one solid definition: a region filled with a particle
// lattice of nppc particles per cell per axis
type SolidData struct {
	Id       string     `json:"id"`
	Mat      string     `json:"mat"`
	RegionLo [3]float64 `json:"region_lo"`
	RegionHi [3]float64 `json:"region_hi"`
	Nppc     int        `json:"nppc"`
	V0       [3]float64 `json:"v0"` // initial velocity
}

// GroupData holds one node/particle group definition
type GroupData struct {
	Name     string     `json:"name"`
	Pon      string     `json:"pon"` // "particles" or "nodes"
	RegionLo [3]float64 `json:"region_lo"`
	RegionHi [3]float64 `json:"region_hi"`
}

// FixData holds one fix definition. The axis values are "NULL" (or empty) for
// unset, a number for a constant, or the name of a function
type FixData struct {
	Id    string `json:"id"`
	Style string `json:"style"` // e.g. "body_force", "velocity_nodes"
	Group string `json:"group"` // group name; "" means "all"
	X     string `json:"x"`
	Y     string `json:"y"`
	Z     string `json:"z"`
}

// ComputeData holds one compute definition
type ComputeData struct {
	Id    string `json:"id"`
	Style string `json:"style"` // e.g. "kinetic_energy"
}

// DumpData holds one dump definition. A '*' in the filename is replaced by
// the timestep; without '*' the filename is used literally.
type DumpData struct {
	Id    string `json:"id"`
	Style string `json:"style"` // "particle", "particle/gz" or "particle/zst"
	File  string `json:"file"`
	Every int    `json:"every"`
}

// MethodData holds the method command: style plus its arguments, e.g.
// {"style":"ulmpm", "args":["FLIP","cubic-spline","0.99"]}
type MethodData struct {
	Style string   `json:"style"`
	Args  []string `json:"args"`
}

// Simulation holds all input data
type Simulation struct {

	// essential
	Desc     string     `json:"desc"`
	Dim      int        `json:"dim"`
	Boxlo    [3]float64 `json:"boxlo"`
	Boxhi    [3]float64 `json:"boxhi"`
	Cellsize float64    `json:"cellsize"`
	Nsteps   int        `json:"nsteps"`

	// integration
	Scheme   string     `json:"scheme"`    // "" => musl
	Method   MethodData `json:"method"`    //
	Dt       float64    `json:"dt"`        // fixed time step; 0 => adaptive CFL
	DtFactor float64    `json:"dt_factor"` // CFL safety factor; 0 => default

	// entities
	Functions FuncsData      `json:"functions"`
	Materials []*MatData     `json:"materials"`
	Solids    []*SolidData   `json:"solids"`
	Groups    []*GroupData   `json:"groups"`
	Fixes     []*FixData     `json:"fixes"`
	Computes  []*ComputeData `json:"computes"`
	Dumps     []*DumpData    `json:"dumps"`

	// derived
	DirOut string // directory of input file; dumps go here unless absolute
	Key    string // simulation key; e.g. rod.sim => rod
}

// ReadSim reads the simulation input data from a .sim JSON file
func ReadSim(simfilepath string) (o *Simulation) {
	b, err := io.ReadFile(simfilepath)
	if err != nil {
		chk.Panic("cannot read simulation file %q:\n%v", simfilepath, err)
	}
	o = new(Simulation)
	if err = json.Unmarshal(b, o); err != nil {
		chk.Panic("cannot parse simulation file %q:\n%v", simfilepath, err)
	}
	o.DirOut = filepath.Dir(simfilepath)
	base := filepath.Base(simfilepath)
	o.Key = strings.TrimSuffix(base, filepath.Ext(base))
	if err = o.Check(); err != nil {
		chk.Panic("invalid simulation file %q:\n%v", simfilepath, err)
	}
	return
}

// Check validates the input data
func (o *Simulation) Check() (err error) {
	if o.Dim < 1 || o.Dim > 3 {
		return chk.Err("dim must be 1, 2 or 3. dim=%d", o.Dim)
	}
	if o.Cellsize <= 0 {
		return chk.Err("cellsize must be positive. cellsize=%g", o.Cellsize)
	}
	for d := 0; d < o.Dim; d++ {
		if o.Boxhi[d] <= o.Boxlo[d] {
			return chk.Err("invalid box along axis %d: [%g,%g]", d, o.Boxlo[d], o.Boxhi[d])
		}
	}
	if o.Nsteps < 0 {
		return chk.Err("nsteps must be non-negative. nsteps=%d", o.Nsteps)
	}
	names := make(map[string]bool)
	for _, m := range o.Materials {
		if names[m.Name] {
			return chk.Err("duplicate material name %q", m.Name)
		}
		names[m.Name] = true
	}
	return
}

// ResolveValue resolves one fix axis value: "" or "NULL" gives nil, a number
// gives a constant function, anything else is looked up in Functions
func (o *Simulation) ResolveValue(s string) (fcn fun.Func, err error) {
	if s == "" || s == "NULL" {
		return nil, nil
	}
	if v, perr := strconv.ParseFloat(s, 64); perr == nil {
		return fun.New("cte", fun.Prms{&fun.Prm{N: "c", V: v}})
	}
	return o.Functions.Get(s)
}
