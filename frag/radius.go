/*
 * radius.go, part of gocos.
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

package frag

import (
	"math"

	cos "github.com/rmera/gocos"
	v3 "github.com/rmera/gocos/v3"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// MinRadiusSpread is the smallest spread (in bohr, ~0.5 A) of the atom-centroid
// distances used by MolecularRadius.
const MinRadiusSpread = 0.9452

// MolecularRadius estimates the radius of a set of atoms as the mean
// distance of the atoms to their centroid, plus twice the (population)
// standard deviation of those distances, the latter being at least
// MinRadiusSpread.
func MolecularRadius(coords *v3.Matrix) float64 {
	c := coords.Centroid()
	n := coords.NVecs()
	d := make([]float64, n)
	for i := range d {
		d[i] = r3.Norm(r3.Sub(coords.Vec(i), c))
	}
	var std float64
	if n > 1 {
		std = math.Sqrt(stat.PopVariance(d, nil))
	}
	return stat.Mean(d, nil) + 2*math.Max(MinRadiusSpread, std)
}

// checkFrags verifies that frags is a non-overlapping grouping of indexes of
// atoms in [0,natoms).
func checkFrags(frags [][]int, natoms int, caller string) error {
	if len(frags) == 0 {
		return cos.NewError(cos.ErrConfig, caller, "no fragments given")
	}
	seen := make(map[int]bool, natoms)
	for m, f := range frags {
		if len(f) == 0 {
			return cos.NewError(cos.ErrConfig, caller, "fragment %d is empty", m)
		}
		for _, a := range f {
			if a < 0 || a >= natoms {
				return cos.NewError(cos.ErrConfig, caller, "atom %d of fragment %d out of range", a, m)
			}
			if seen[a] {
				return cos.NewError(cos.ErrConfig, caller, "atom %d is in more than one fragment", a)
			}
			seen[a] = true
		}
	}
	return nil
}

// coords3D wraps a flat coordinate slice, checking its length.
func coords3D(coords []float64, natoms int, caller string) (*v3.Matrix, error) {
	if len(coords) != 3*natoms {
		return nil, cos.NewError(cos.ErrShape, caller, "%d coordinates given, %d expected", len(coords), 3*natoms)
	}
	m, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, cos.WrapError(cos.ErrShape, err, caller)
	}
	return m, nil
}

// centroid returns the geometric center of the atoms in frag.
func centroid(c *v3.Matrix, frag []int) r3.Vec {
	var ret r3.Vec
	for _, a := range frag {
		ret = r3.Add(ret, c.Vec(a))
	}
	return r3.Scale(1/float64(len(frag)), ret)
}

// subset returns a new matrix with the rows of c listed in frag.
func subset(c *v3.Matrix, frag []int) *v3.Matrix {
	ret := v3.Zeros(len(frag))
	ret.SomeVecs(c, frag)
	return ret
}
