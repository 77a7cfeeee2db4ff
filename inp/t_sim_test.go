// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const simExample = `{
  "desc": "2D taylor bar",
  "dim": 2,
  "boxlo": [0, 0, 0],
  "boxhi": [10, 20, 0],
  "cellsize": 0.5,
  "nsteps": 100,
  "scheme": "musl",
  "method": {"style": "ulmpm", "args": ["FLIP", "cubic-spline", "0.99"]},
  "dt_factor": 0.5,
  "functions": [
    {"name": "ramp", "type": "lin", "prms": [{"n": "m", "v": 2.0}]}
  ],
  "materials": [
    {"name": "copper", "eos": {"type": "shock", "prms": [
        {"n": "rho0", "v": 8960}, {"n": "C0", "v": 3933}, {"n": "S", "v": 1.5}]},
     "strength": {"type": "johnson-cook", "prms": [
        {"n": "G", "v": 48e9}, {"n": "A", "v": 90e6}, {"n": "B", "v": 292e6},
        {"n": "n", "v": 0.31}, {"n": "C", "v": 0.025}]}}
  ],
  "solids": [
    {"id": "bar", "mat": "copper", "region_lo": [4, 2, 0], "region_hi": [6, 12, 0],
     "nppc": 2, "v0": [0, -200, 0]}
  ],
  "groups": [
    {"name": "base", "pon": "nodes", "region_lo": [0, 0, 0], "region_hi": [10, 0, 0]}
  ],
  "fixes": [
    {"id": "wall", "style": "velocity_nodes", "group": "base", "x": "NULL", "y": "0"},
    {"id": "grav", "style": "body_force", "y": "-9.81"}
  ],
  "computes": [{"id": "ke", "style": "kinetic_energy"}],
  "dumps": [{"id": "d1", "style": "particle/gz", "file": "dump_*.gz", "every": 10}]
}`

func Test_sim01(tst *testing.T) {

	dir := tst.TempDir()
	fn := filepath.Join(dir, "taylor.sim")
	require.NoError(tst, os.WriteFile(fn, []byte(simExample), 0644))

	sim := ReadSim(fn)
	assert.Equal(tst, 2, sim.Dim)
	assert.Equal(tst, 0.5, sim.Cellsize)
	assert.Equal(tst, 100, sim.Nsteps)
	assert.Equal(tst, "musl", sim.Scheme)
	assert.Equal(tst, "ulmpm", sim.Method.Style)
	assert.Equal(tst, []string{"FLIP", "cubic-spline", "0.99"}, sim.Method.Args)
	assert.Equal(tst, "taylor", sim.Key)
	assert.Equal(tst, dir, sim.DirOut)

	require.Len(tst, sim.Materials, 1)
	assert.Equal(tst, "shock", sim.Materials[0].Eos.Type)
	require.NotNil(tst, sim.Materials[0].Strength)
	assert.Nil(tst, sim.Materials[0].Damage)

	require.Len(tst, sim.Solids, 1)
	assert.Equal(tst, [3]float64{0, -200, 0}, sim.Solids[0].V0)
	assert.Equal(tst, 2, sim.Solids[0].Nppc)

	require.Len(tst, sim.Fixes, 2)
	assert.Equal(tst, "velocity_nodes", sim.Fixes[0].Style)
	assert.Equal(tst, "", sim.Fixes[1].Group)

	require.Len(tst, sim.Dumps, 1)
	assert.Equal(tst, 10, sim.Dumps[0].Every)
}

func Test_sim02(tst *testing.T) {

	dir := tst.TempDir()
	fn := filepath.Join(dir, "taylor.sim")
	require.NoError(tst, os.WriteFile(fn, []byte(simExample), 0644))
	sim := ReadSim(fn)

	// NULL and empty give no function
	f, err := sim.ResolveValue("NULL")
	require.NoError(tst, err)
	assert.Nil(tst, f)
	f, err = sim.ResolveValue("")
	require.NoError(tst, err)
	assert.Nil(tst, f)

	// numbers give constants
	f, err = sim.ResolveValue("-9.81")
	require.NoError(tst, err)
	require.NotNil(tst, f)
	assert.InDelta(tst, -9.81, f.F(123.0, nil), 1e-15)

	// names resolve through the function table
	f, err = sim.ResolveValue("ramp")
	require.NoError(tst, err)
	require.NotNil(tst, f)

	// unknown names fail
	_, err = sim.ResolveValue("missing")
	assert.Error(tst, err)
}

func Test_sim03(tst *testing.T) {

	// invalid inputs must be rejected
	bad := []string{
		`{"dim": 4, "boxlo": [0,0,0], "boxhi": [1,1,1], "cellsize": 0.5}`,
		`{"dim": 2, "boxlo": [0,0,0], "boxhi": [1,1,0], "cellsize": 0}`,
		`{"dim": 2, "boxlo": [1,0,0], "boxhi": [0,1,0], "cellsize": 0.5}`,
		`not json`,
	}
	for i, content := range bad {
		dir := tst.TempDir()
		fn := filepath.Join(dir, "bad.sim")
		require.NoError(tst, os.WriteFile(fn, []byte(content), 0644))
		assert.Panics(tst, func() { ReadSim(fn) }, "case %d", i)
	}
}
