/*
 * lj.go, part of gocos.
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

package calc

import (
	"math"

	cos "github.com/rmera/gocos"
	v3 "github.com/rmera/gocos/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// LennardJones is a cluster of identical atoms interacting through
// a 12-6 Lennard-Jones potential.
type LennardJones struct {
	Epsilon float64
	Sigma   float64
}

// NewLennardJones returns a potential with the given well depth and
// zero-crossing distance.
func NewLennardJones(epsilon, sigma float64) (*LennardJones, error) {
	if epsilon <= 0 || sigma <= 0 {
		return nil, cos.NewError(cos.ErrConfig, "NewLennardJones", "epsilon (%g) and sigma (%g) must be positive", epsilon, sigma)
	}
	return &LennardJones{Epsilon: epsilon, Sigma: sigma}, nil
}

// Compute returns the energy and forces of the cluster.
func (L *LennardJones) Compute(atoms []string, coords []float64) (*cos.Result, error) {
	c, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, cos.WrapError(cos.ErrShape, err, "LennardJones.Compute")
	}
	n := c.NVecs()
	forces := v3.Zeros(n)
	var e float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := r3.Sub(c.Vec(i), c.Vec(j))
			r2 := r3.Norm2(d)
			if r2 == 0 {
				return nil, cos.NewError(cos.ErrCalculator, "LennardJones.Compute", "atoms %d and %d overlap", i, j)
			}
			sr6 := math.Pow(L.Sigma*L.Sigma/r2, 3)
			e += 4 * L.Epsilon * (sr6*sr6 - sr6)
			//-dE/dr / r
			fr := 24 * L.Epsilon * (2*sr6*sr6 - sr6) / r2
			f := r3.Scale(fr, d)
			forces.SetVec(i, r3.Add(forces.Vec(i), f))
			forces.SetVec(j, r3.Sub(forces.Vec(j), f))
		}
	}
	return &cos.Result{Energy: e, Forces: forces.RawMatrix().Data}, nil
}
