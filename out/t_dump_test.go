// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vacary/karamelo/inp"
	"github.com/vacary/karamelo/mpm"
)

const simTemplate = `{
  "desc": "dump test",
  "dim": 1,
  "boxlo": [0, 0, 0],
  "boxhi": [10, 0, 0],
  "cellsize": 1.0,
  "nsteps": 0,
  "method": {"style": "ulmpm", "args": ["PIC", "linear"]},
  "materials": [
    {"name": "water", "eos": {"type": "linear", "prms": [{"n": "rho0", "v": 1000}, {"n": "K", "v": 2.2e9}]}}
  ],
  "solids": [
    {"id": "rod", "mat": "water", "region_lo": [2, 0, 0], "region_hi": [6, 0, 0], "nppc": 2}
  ],
  "dumps": [
    {"id": "d1", "style": "particle", "file": "snap_*.txt", "every": 1},
    {"id": "d2", "style": "particle/gz", "file": "snap_*.gz", "every": 1},
    {"id": "d3", "style": "particle", "file": "final.txt", "every": 1}
  ]
}`

func buildSim(tst *testing.T) (*mpm.MPM, string) {
	dir := tst.TempDir()
	fn := filepath.Join(dir, "dump.sim")
	require.NoError(tst, os.WriteFile(fn, []byte(simTemplate), 0644))
	sim := inp.ReadSim(fn)
	u := mpm.NewUniverse(false)
	return mpm.NewMPM(sim, u, false), dir
}

func Test_dump01(tst *testing.T) {

	m, dir := buildSim(tst)
	require.Len(tst, m.Dumps, 3)

	// asterisk substitution and the literal fallback
	d1 := m.Dumps[0].(*DumpParticle)
	assert.Equal(tst, filepath.Join(dir, "snap_42.txt"), d1.Filename(42))
	d3 := m.Dumps[2].(*DumpParticle)
	assert.Equal(tst, filepath.Join(dir, "final.txt"), d3.Filename(42))

	require.NoError(tst, d1.Write(42))
	b, err := os.ReadFile(filepath.Join(dir, "snap_42.txt"))
	require.NoError(tst, err)
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")

	// header
	assert.Equal(tst, "ITEM: TIMESTEP", lines[0])
	assert.Equal(tst, "42", lines[1])
	assert.Equal(tst, "ITEM: NUMBER OF ATOMS", lines[2])
	assert.Equal(tst, "8", lines[3])
	assert.Equal(tst, "ITEM: BOX BOUNDS sm sm sm", lines[4])
	assert.Equal(tst, "0 10", lines[5])
	require.True(tst, strings.HasPrefix(lines[8], "ITEM: ATOMS id type x y z "))

	// one line per particle, 27 columns, 1-based ids, type isolid+1
	body := lines[9:]
	require.Len(tst, body, 8)
	for i, ln := range body {
		cols := strings.Fields(ln)
		require.Len(tst, cols, 27)
		assert.Equal(tst, strconv.Itoa(i+1), cols[0])
		assert.Equal(tst, "1", cols[1])
	}
}

func Test_dump02(tst *testing.T) {

	m, dir := buildSim(tst)
	d2 := m.Dumps[1].(*DumpParticle)
	require.NoError(tst, d2.Write(0))

	fil, err := os.Open(filepath.Join(dir, "snap_0.gz"))
	require.NoError(tst, err)
	defer fil.Close()
	gz, err := gzip.NewReader(fil)
	require.NoError(tst, err)
	defer gz.Close()

	var sb strings.Builder
	buf := make([]byte, 4096)
	for {
		n, rerr := gz.Read(buf)
		sb.Write(buf[:n])
		if rerr != nil {
			break
		}
	}
	text := sb.String()
	assert.True(tst, strings.HasPrefix(text, "ITEM: TIMESTEP\n0\n"))
	assert.Contains(tst, text, "ITEM: NUMBER OF ATOMS\n8\n")
}
