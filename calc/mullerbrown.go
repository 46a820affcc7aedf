/*
 * mullerbrown.go, part of gocos.
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
)

// Parameters of the Müller-Brown surface, Theor. Chim. Acta 53, 75 (1979).
var (
	mbA  = [4]float64{-200, -100, -170, 15}
	mbx0 = [4]float64{1, 0, -0.5, -1}
	mby0 = [4]float64{0, 0.5, 1.5, 1}
	mba  = [4]float64{-1, -1, -6.5, 0.7}
	mbb  = [4]float64{0, 0, 11, 0.6}
	mbc  = [4]float64{-10, -10, -6.5, 0.7}
)

// MBMinima are the approximate positions of the three minima of the
// Müller-Brown surface, from the deepest to the shallowest.
var MBMinima = [3][2]float64{
	{-0.558224, 1.441726},
	{0.623499, 0.028038},
	{-0.050011, 0.466694},
}

// MullerBrown is the 2D Müller-Brown surface, evaluated on the x and y
// coordinates of a single atom. The z coordinate is ignored, and
// feels no force.
type MullerBrown struct{}

// Compute returns the energy and forces for the only atom in coords.
func (MullerBrown) Compute(atoms []string, coords []float64) (*cos.Result, error) {
	if len(coords) != 3 {
		return nil, cos.NewError(cos.ErrShape, "MullerBrown.Compute", "the surface takes one atom, %d coordinates given", len(coords))
	}
	e, gx, gy := MBEnergyGradient(coords[0], coords[1])
	return &cos.Result{Energy: e, Forces: []float64{-gx, -gy, 0}}, nil
}

// MBEnergyGradient returns the Müller-Brown energy at (x,y) and its gradient.
func MBEnergyGradient(x, y float64) (e, gx, gy float64) {
	for k := range mbA {
		dx := x - mbx0[k]
		dy := y - mby0[k]
		t := mbA[k] * math.Exp(mba[k]*dx*dx+mbb[k]*dx*dy+mbc[k]*dy*dy)
		e += t
		gx += t * (2*mba[k]*dx + mbb[k]*dy)
		gy += t * (mbb[k]*dx + 2*mbc[k]*dy)
	}
	return e, gx, gy
}
