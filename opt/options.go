/*
 * options.go, part of gocos.
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
	"log/slog"

	cos "github.com/rmera/gocos"
)

// Options contains the options for a StringOptimizer.
type Options struct {
	//Inverse step length for conjugate gradient steps. 1.25 Hartree/bohr^2 is about 5 Hartree/A^2.
	Gamma float64
	//Largest absolute value allowed for any component of a step.
	MaxStep float64
	//Cycles to run once the string is fully grown. -1 means no limit.
	StopInWhenFull int
	//Size of the quasi-Newton history. 0 means conjugate gradient steps.
	KeepLast int
	//Only record history once the string is fully grown.
	LBFGSWhenFull bool
	//Scale the initial inverse Hessian with the newest history pair.
	GammaMult bool
	//Rigidly align the images on the first cycle and after each growth.
	Align bool

	RMSForce     float64
	MaxForce     float64
	RMSForceOnly bool
	MaxCycles    int

	Logger *slog.Logger
	//If not nil, called after every cycle with the chain as it was when
	//its forces were computed. A non-nil error stops the run.
	Hook func(cycle int, c cos.ChainOfStates) error
}

// DefaultOptions returns the usual settings for growing strings in atomic units.
func DefaultOptions() *Options {
	return &Options{
		Gamma:          1.25,
		MaxStep:        0.1,
		StopInWhenFull: -1,
		KeepLast:       10,
		LBFGSWhenFull:  true,
		GammaMult:      false,
		Align:          true,
		RMSForce:       1e-3,
		MaxForce:       1.5e-3,
		MaxCycles:      150,
	}
}

func (o *Options) check() error {
	switch {
	case o.KeepLast < 0:
		return cos.NewError(cos.ErrConfig, "opt.Options", "negative history size %d", o.KeepLast)
	case o.MaxStep <= 0:
		return cos.NewError(cos.ErrConfig, "opt.Options", "non-positive maximum step %g", o.MaxStep)
	case o.Gamma <= 0:
		return cos.NewError(cos.ErrConfig, "opt.Options", "non-positive gamma %g", o.Gamma)
	case o.StopInWhenFull < -1:
		return cos.NewError(cos.ErrConfig, "opt.Options", "invalid countdown %d", o.StopInWhenFull)
	case o.MaxCycles < 1:
		return cos.NewError(cos.ErrConfig, "opt.Options", "at least one cycle is needed, %d given", o.MaxCycles)
	}
	return nil
}
