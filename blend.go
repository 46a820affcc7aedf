/*
 * blend.go, part of gocos.
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

package cos

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ForceBlend defines how the forces on the images of a chain are combined
// into the forces of the chain as a whole.
type ForceBlend interface {
	Blend(C *Chain) ([]float64, error)
}

// Plain uses the forces on each image unchanged.
type Plain struct{}

// Blend returns the concatenated forces of all images.
func (Plain) Blend(C *Chain) ([]float64, error) {
	return C.rawForces()
}

// Perpendicular keeps only the component of the forces perpendicular to the
// path, using an energy-weighted upwind tangent. The end images get their
// full forces, or zero if the chain has FixEnds set.
type Perpendicular struct{}

// Blend returns the perpendicular forces of all images.
func (Perpendicular) Blend(C *Chain) ([]float64, error) {
	forces, err := C.rawForces()
	if err != nil {
		return nil, err
	}
	n := C.Len()
	l := C.coordsLength
	for i := 1; i < n-1; i++ {
		t := C.Tangent(i)
		f := forces[i*l : (i+1)*l]
		floats.AddScaled(f, -floats.Dot(f, t), t)
	}
	return forces, nil
}

// PerpForceNorms returns the norm of the perpendicular force on every image.
func PerpForceNorms(C *Chain) ([]float64, error) {
	f, err := Perpendicular{}.Blend(C)
	if err != nil {
		return nil, err
	}
	l := C.coordsLength
	ret := make([]float64, C.Len())
	for i := range ret {
		ret[i] = floats.Norm(f[i*l:(i+1)*l], 2)
	}
	return ret, nil
}

// Tangent returns the normalized tangent to the path at the inner image i,
// following Henkelman and Jonsson, J. Chem. Phys. 113, 9978 (2000).
// The images must have been evaluated. The end images get
// one-sided tangents.
func (C *Chain) Tangent(i int) []float64 {
	n := C.Len()
	l := C.coordsLength
	tp := make([]float64, l)
	tm := make([]float64, l)
	if i < n-1 {
		floats.SubTo(tp, C.images[i+1].coords, C.images[i].coords)
	}
	if i > 0 {
		floats.SubTo(tm, C.images[i].coords, C.images[i-1].coords)
	}
	var t []float64
	switch {
	case i == 0:
		t = tp
	case i == n-1:
		t = tm
	default:
		e := C.images[i].energy
		ep := C.images[i+1].energy
		em := C.images[i-1].energy
		if ep > e && e > em {
			t = tp
		} else if ep < e && e < em {
			t = tm
		} else {
			dmax := math.Max(math.Abs(ep-e), math.Abs(em-e))
			dmin := math.Min(math.Abs(ep-e), math.Abs(em-e))
			t = tp
			if dmax == 0 {
				floats.Add(t, tm)
			} else if ep > em {
				floats.Scale(dmax, t)
				floats.AddScaled(t, dmin, tm)
			} else {
				floats.Scale(dmin, t)
				floats.AddScaled(t, dmax, tm)
			}
		}
	}
	norm := floats.Norm(t, 2)
	if norm < degeneracyThreshold {
		//The neighbours are on top of each other. A zero tangent leaves the forces untouched.
		slog.Warn("Zero-length tangent", "image", i, "kind", ErrNumericDegeneracy)
		return make([]float64, l)
	}
	floats.Scale(1/norm, t)
	return t
}

const degeneracyThreshold = 1e-12
