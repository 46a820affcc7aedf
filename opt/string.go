/*
 * string.go, part of gocos.
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
	"math"

	cos "github.com/rmera/gocos"
	"github.com/rmera/gocos/align"
	"github.com/rmera/gocos/qn"
	"gonum.org/v1/gonum/floats"
)

// State is the stage of an optimization.
type State int

const (
	Growing State = iota
	FullCountdown
	Converged
	Stopped
)

func (s State) String() string {
	switch s {
	case Growing:
		return "growing"
	case FullCountdown:
		return "full countdown"
	case Converged:
		return "converged"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Convergence is the result of a convergence check. FullStop means the
// countdown started when the string became fully grown is over, which
// ends the optimization whatever Converged says.
type Convergence struct {
	Converged bool
	FullStop  bool
	RMSForce  float64
	MaxForce  float64
}

// Done returns true if the optimization should end.
func (c Convergence) Done() bool {
	return c.FullStop || c.Converged
}

// StringOptimizer optimizes a chain of states, which may be a growing
// string. Steps come from a limited-memory BFGS history that survives
// the growth of the string, or from conjugate gradient if no history is
// kept. Every component of a step is clamped to [-MaxStep, MaxStep].
// See Behn et al., J. Chem. Phys. 135, 224108 (2011), and
// Zimmerman, J. Chem. Phys. 138, 184102 (2013).
type StringOptimizer struct {
	c      cos.ChainOfStates
	grower cos.Grower //nil if c can't grow
	o      Options
	qo     *qn.Options
	ao     *align.Options
	log    *slog.Logger

	cycle    int
	stopIn   int
	state    State
	hist     *qn.History
	energies [][]float64
	forces   [][]float64
	coords   [][]float64
	steps    [][]float64
}

// NewStringOptimizer returns an optimizer for g, which must be a chain of states.
func NewStringOptimizer(g cos.Geometry, o *Options) (*StringOptimizer, error) {
	if o == nil {
		o = DefaultOptions()
	}
	c, ok := g.(cos.ChainOfStates)
	if !ok {
		return nil, cos.NewError(cos.ErrConfig, "NewStringOptimizer", "the optimizer needs a chain of states, got %T", g)
	}
	if err := o.check(); err != nil {
		return nil, cos.ErrDecorate(err, "NewStringOptimizer")
	}
	O := &StringOptimizer{c: c, o: *o}
	O.grower, _ = g.(cos.Grower)
	O.log = o.Logger
	if O.log == nil {
		O.log = slog.Default()
	}
	if o.LBFGSWhenFull && o.KeepLast == 0 {
		O.log.Warn("LBFGSWhenFull is set, but KeepLast is 0")
	}
	var err error
	if O.hist, err = qn.NewHistory(o.KeepLast); err != nil {
		return nil, cos.ErrDecorate(err, "NewStringOptimizer")
	}
	O.qo = qn.DefaultOptions()
	if o.GammaMult {
		O.qo.Curvature = qn.LatestPair
	}
	O.qo.Logger = O.log
	O.ao = align.DefaultOptions()
	O.ao.Logger = O.log
	//Decremented before being checked against 0.
	O.stopIn = o.StopInWhenFull + 1
	O.state = Growing
	if O.fullyGrown() {
		O.state = FullCountdown
	}
	return O, nil
}

// Cycle returns the number of steps taken.
func (O *StringOptimizer) Cycle() int { return O.cycle }

// State returns the current stage of the optimization.
func (O *StringOptimizer) State() State { return O.state }

// History returns the quasi-Newton history of the optimizer.
func (O *StringOptimizer) History() *qn.History { return O.hist }

// Energies returns the energies of the images recorded at each cycle.
func (O *StringOptimizer) Energies() [][]float64 { return O.energies }

func (O *StringOptimizer) fullyGrown() bool {
	return O.grower == nil || O.grower.FullyGrown()
}

func (O *StringOptimizer) newImageInds() []int {
	if O.grower == nil {
		return nil
	}
	return O.grower.NewImageInds()
}

// Step computes the next step for the chain. It does not apply it.
func (O *StringOptimizer) Step() ([]float64, error) {
	per := O.c.CoordsPerImage()
	size := O.c.Len()
	//Growth is measured against the forces of the last cycle, as
	//NewImageInds keeps reporting a growth until the next reparametrization.
	var newInds []int
	grew := false
	if n := len(O.forces); n > 0 && len(O.forces[n-1]) != size*per {
		prevSize := len(O.forces[n-1]) / per
		newInds = O.newImageInds()
		if len(newInds) != size-prevSize {
			return nil, cos.NewError(cos.ErrShape, "StringOptimizer.Step", "the chain went from %d to %d images, but %d are reported as new", prevSize, size, len(newInds))
		}
		grew = true
	}
	if O.o.Align && (O.cycle == 0 || grew) {
		if _, err := align.Chain(O.c, O.ao); err != nil {
			return nil, cos.ErrDecorate(err, "StringOptimizer.Step")
		}
	}
	forces, err := O.c.Forces()
	if err != nil {
		return nil, cos.ErrDecorate(err, "StringOptimizer.Step")
	}
	energies, err := O.c.Energies()
	if err != nil {
		return nil, cos.ErrDecorate(err, "StringOptimizer.Step")
	}
	coords := O.c.Coords()
	if len(forces) != len(coords) || len(coords) != size*per {
		return nil, cos.NewError(cos.ErrShape, "StringOptimizer.Step", "%d forces and %d coordinates for %d images of %d", len(forces), len(coords), size, per)
	}
	if grew {
		if err := O.hist.Remap(newInds, size); err != nil {
			return nil, cos.ErrDecorate(err, "StringOptimizer.Step")
		}
	}
	O.energies = append(O.energies, energies)
	O.forces = append(O.forces, forces)
	O.coords = append(O.coords, coords)

	record := O.o.KeepLast > 0 && O.cycle > 0 &&
		(!O.o.LBFGSWhenFull || (O.fullyGrown() && !grew))
	if record {
		if err := O.record(newInds, per, size); err != nil {
			return nil, cos.ErrDecorate(err, "StringOptimizer.Step")
		}
	}
	//Steepest descent if the history is empty.
	step, err := qn.Multiply(O.hist, forces, per, O.qo)
	if err != nil {
		return nil, cos.ErrDecorate(err, "StringOptimizer.Step")
	}
	if O.o.KeepLast == 0 && O.cycle > 0 && !grew {
		step = O.cgStep(forces)
	}
	clamped := clamp(step, O.o.MaxStep)
	O.log.Info("Step", "cycle", O.cycle, "images", size, "clamped", clamped, "max_step_comp", floats.Norm(step, math.Inf(1)))
	O.steps = append(O.steps, step)
	O.cycle++
	return append([]float64(nil), step...), nil
}

// record adds to the history the difference between the last two cycles.
// If the chain grew between them, the new images are left out.
func (O *StringOptimizer) record(newInds []int, per, size int) error {
	n := len(O.forces)
	cf, pf := O.forces[n-1], O.forces[n-2]
	cc, pc := O.coords[n-1], O.coords[n-2]
	inds := make([]int, size)
	for i := range inds {
		inds[i] = i
	}
	if len(cf) != len(pf) {
		inds = qn.Survivors(newInds, size)
		cf = gather(cf, inds, per)
		cc = gather(cc, inds, per)
		if len(cf) != len(pf) || len(cc) != len(pc) {
			return cos.NewError(cos.ErrShape, "StringOptimizer.record", "%d surviving images don't match the %d of the previous cycle", len(inds), len(pf)/per)
		}
	}
	y := make([]float64, len(pf))
	floats.SubTo(y, pf, cf)
	s := make([]float64, len(pc))
	floats.SubTo(s, cc, pc)
	return O.hist.Push(s, y, inds)
}

// cgStep returns a conjugate gradient step, f/gamma plus the previous
// step scaled by the ratio of squared force norms, capped at 1.
func (O *StringOptimizer) cgStep(forces []float64) []float64 {
	prevF := O.forces[len(O.forces)-2]
	prevStep := O.steps[len(O.steps)-1]
	step := make([]float64, len(forces))
	floats.ScaleTo(step, 1/O.o.Gamma, forces)
	prevNorm2 := floats.Dot(prevF, prevF)
	if prevNorm2 < O.qo.Threshold || len(prevStep) != len(step) {
		O.log.Warn("Conjugate gradient restart", "prev_force_norm2", prevNorm2, "kind", cos.ErrNumericDegeneracy)
		return step
	}
	quot := math.Min(floats.Dot(forces, forces)/prevNorm2, 1)
	floats.AddScaled(step, quot, prevStep)
	return step
}

// CheckConvergence checks the forces of the last step. Once the string is
// fully grown, every call advances the countdown set by StopInWhenFull.
func (O *StringOptimizer) CheckConvergence() Convergence {
	var c Convergence
	if len(O.forces) == 0 {
		return c
	}
	f := O.forces[len(O.forces)-1]
	c.RMSForce = floats.Norm(f, 2) / math.Sqrt(float64(len(f)))
	c.MaxForce = floats.Norm(f, math.Inf(1))
	full := O.fullyGrown()
	//A string that is still growing has not converged.
	if full {
		c.Converged = c.RMSForce <= O.o.RMSForce && (O.o.RMSForceOnly || c.MaxForce <= O.o.MaxForce)
		O.stopIn--
		if O.o.StopInWhenFull >= 0 {
			O.log.Info("String is fully grown", "stop_in", O.stopIn)
		}
		c.FullStop = O.stopIn == 0
	}
	switch {
	case c.FullStop:
		O.state = Stopped
	case c.Converged:
		O.state = Converged
	case full:
		O.state = FullCountdown
	default:
		O.state = Growing
	}
	return c
}

// clamp sets every component of step larger in absolute value than
// maxStep to maxStep with the same sign, and returns how many were changed.
func clamp(step []float64, maxStep float64) int {
	n := 0
	for i, v := range step {
		if math.Abs(v) > maxStep {
			step[i] = math.Copysign(maxStep, v)
			n++
		}
	}
	return n
}

// gather returns the coordinate blocks of v with the given indexes, in order.
func gather(v []float64, inds []int, per int) []float64 {
	ret := make([]float64, 0, len(inds)*per)
	for _, i := range inds {
		ret = append(ret, v[i*per:(i+1)*per]...)
	}
	return ret
}
