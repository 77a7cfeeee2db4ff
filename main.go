// Copyright 2019 The Karamelo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/vacary/karamelo/inp"
	"github.com/vacary/karamelo/mpm"
	_ "github.com/vacary/karamelo/out"
)

func main() {

	// catch errors
	failed := false
	defer func() {
		if err := recover(); err != nil {
			failed = true
			if mpi.Rank() == 0 {
				chk.Verbose = true
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
		if failed {
			os.Exit(1)
		}
	}()
	mpi.Start(false)

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)
	allowParallel := io.ArgToBool(2, true)

	// message
	if mpi.Rank() == 0 && verbose {
		io.PfWhite("\nKaramelo -- Parallel Material Point Method Simulator\n\n")
		io.Pf("%v\n", io.ArgsTable(
			"filename path", "fnamepath", fnamepath,
			"show messages", "verbose", verbose,
			"allow parallel run", "allowParallel", allowParallel,
		))
	}

	// build and run the simulation
	u := mpm.NewUniverse(allowParallel)
	sim := inp.ReadSim(fnamepath)
	m := mpm.NewMPM(sim, u, verbose)
	if err := m.Run(); err != nil {
		chk.Panic("run failed:\n%v", err)
	}
}
