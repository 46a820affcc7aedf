/*
 * lbfgs.go, part of gocos.
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

package qn

import (
	"log/slog"
	"math"

	cos "github.com/rmera/gocos"
	"gonum.org/v1/gonum/floats"
)

// Curvature selects the initial inverse Hessian guess of the recursion.
type Curvature int

const (
	// Fixed scales by Options.Beta.
	Fixed Curvature = iota
	// LatestPair scales by s·y/y·y of the newest usable pair, or Beta if there is none.
	LatestPair
)

// Options for Multiply.
type Options struct {
	Curvature Curvature
	Beta      float64
	//pairs with |s·y| (or y·y, for the scaling) below this are ignored.
	Threshold float64
	Logger    *slog.Logger
}

// DefaultOptions returns a fixed unit curvature guess.
func DefaultOptions() *Options {
	return &Options{Curvature: Fixed, Beta: 1, Threshold: 1e-12}
}

// Multiply returns H·f, where H is the inverse Hessian given by BFGS updates
// with the pairs in the history, obtained with the two-loop recursion
// (Nocedal and Wright, Numerical Optimization, algorithm 7.4).
// f is a force, not a gradient, so the result is a descent step, and the
// Y of the entries are force differences f_old-f_new.
// f is divided in blocks of blockSize coordinates. An entry only acts on
// the blocks it lists, and leaves the rest alone. With an empty history
// the result is Beta*f.
func Multiply(H *History, f []float64, blockSize int, o *Options) ([]float64, error) {
	if o == nil {
		o = DefaultOptions()
	}
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	if blockSize <= 0 || len(f)%blockSize != 0 {
		return nil, cos.NewError(cos.ErrShape, "qn.Multiply", "%d elements can't be divided in blocks of %d", len(f), blockSize)
	}
	curSize := len(f) / blockSize
	n := H.Len()
	for i := 0; i < n; i++ {
		if err := checkCoverage(H.At(i), blockSize, curSize); err != nil {
			return nil, err
		}
	}
	q := append([]float64(nil), f...)
	alphas := make([]float64, n)
	rhos := make([]float64, n)
	usable := make([]bool, n)
	newest := -1
	for i := n - 1; i >= 0; i-- {
		e := H.At(i)
		sy := floats.Dot(e.S, e.Y)
		if math.Abs(sy) < o.Threshold || math.IsNaN(sy) {
			log.Warn("Skipping history pair with near-zero curvature", "pair", i, "sy", sy, "kind", cos.ErrNumericDegeneracy)
			continue
		}
		usable[i] = true
		if newest < 0 {
			newest = i
		}
		rhos[i] = 1 / sy
		sub := gather(q, e.Blocks, blockSize)
		alphas[i] = rhos[i] * floats.Dot(e.S, sub)
		floats.AddScaled(sub, -alphas[i], e.Y)
		scatter(q, sub, e.Blocks, blockSize)
	}
	scale := o.Beta
	if o.Curvature == LatestPair && newest >= 0 {
		e := H.At(newest)
		yy := floats.Dot(e.Y, e.Y)
		if yy > o.Threshold {
			scale = floats.Dot(e.S, e.Y) / yy
		} else {
			log.Warn("Zero force difference, using fixed curvature", "beta", o.Beta, "kind", cos.ErrNumericDegeneracy)
		}
	}
	r := q
	floats.Scale(scale, r)
	for i := 0; i < n; i++ {
		if !usable[i] {
			continue
		}
		e := H.At(i)
		sub := gather(r, e.Blocks, blockSize)
		beta := rhos[i] * floats.Dot(e.Y, sub)
		floats.AddScaled(sub, alphas[i]-beta, e.S)
		scatter(r, sub, e.Blocks, blockSize)
	}
	return r, nil
}

func checkCoverage(e Entry, blockSize, curSize int) error {
	if len(e.S) != len(e.Blocks)*blockSize || len(e.Y) != len(e.S) {
		return cos.NewError(cos.ErrShape, "qn.Multiply", "entry with %d elements for %d blocks of %d", len(e.S), len(e.Blocks), blockSize)
	}
	for _, b := range e.Blocks {
		if b < 0 || b >= curSize {
			return cos.NewError(cos.ErrShape, "qn.Multiply", "entry refers to block %d, only %d present", b, curSize)
		}
	}
	return nil
}

// gather returns a new slice with the given blocks of v, in order.
func gather(v []float64, blocks []int, blockSize int) []float64 {
	ret := make([]float64, 0, len(blocks)*blockSize)
	for _, b := range blocks {
		ret = append(ret, v[b*blockSize:(b+1)*blockSize]...)
	}
	return ret
}

// scatter is the inverse of gather.
func scatter(v, sub []float64, blocks []int, blockSize int) {
	for k, b := range blocks {
		copy(v[b*blockSize:(b+1)*blockSize], sub[k*blockSize:(k+1)*blockSize])
	}
}
