/*
 * run.go, part of gocos.
 *
 * Copyright 2026 Raul Mera Adasme <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package opt

import (
	"fmt"

	cos "github.com/rmera/gocos"
	"gonum.org/v1/gonum/floats"
)

// Report summarizes an optimization.
type Report struct {
	Cycles      int
	State       State
	Convergence Convergence
	Images      int
	//Energies of the images in the last cycle.
	Energies []float64
}

// String returns a one-line summary of the report.
func (R *Report) String() string {
	return fmt.Sprintf("%s after %d cycles, %d images, rms force %.3g, max force %.3g", R.State, R.Cycles, R.Images, R.Convergence.RMSForce, R.Convergence.MaxForce)
}

// Run optimizes the chain until convergence, the end of the countdown, or
// MaxCycles. After each step is applied, a growing string is allowed to
// grow and reparametrize.
func (O *StringOptimizer) Run() (*Report, error) {
	R := &Report{}
	for O.cycle < O.o.MaxCycles {
		step, err := O.Step()
		if err != nil {
			return nil, cos.ErrDecorate(err, "StringOptimizer.Run")
		}
		R.Convergence = O.CheckConvergence()
		if O.o.Hook != nil {
			if err := O.o.Hook(O.cycle-1, O.c); err != nil {
				return nil, cos.ErrDecorate(err, "StringOptimizer.Run")
			}
		}
		if R.Convergence.Done() {
			break
		}
		coords := O.c.Coords()
		floats.Add(coords, step)
		if err := O.c.SetCoords(coords); err != nil {
			return nil, cos.ErrDecorate(err, "StringOptimizer.Run")
		}
		if O.grower != nil {
			if _, err := O.grower.Reparametrize(); err != nil {
				return nil, cos.ErrDecorate(err, "StringOptimizer.Run")
			}
		}
	}
	if !R.Convergence.Done() {
		O.state = Stopped
		O.log.Warn("Maximum number of cycles reached", "cycles", O.cycle)
	}
	R.Cycles = O.cycle
	R.State = O.state
	R.Images = O.c.Len()
	if n := len(O.energies); n > 0 {
		R.Energies = O.energies[n-1]
	}
	O.log.Info("Optimization finished", "state", O.state.String(), "cycles", O.cycle)
	return R, nil
}
