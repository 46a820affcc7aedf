/*
 * image.go, part of gocos.
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
	v3 "github.com/rmera/gocos/v3"
)

// Coordinates are in bohr throughout gocos, energies in Hartree and forces
// in Hartree/bohr. Structure files, in Angstrom, are converted as they are
// read and written.
const (
	BohrToAngstrom = 0.529177210903
	AngstromToBohr = 1 / BohrToAngstrom
)

// Image is one molecular geometry along the path. Energy and forces are
// obtained from the calculator the first time they are requested, and
// forgotten every time the coordinates are written.
type Image struct {
	atoms  []string
	coords []float64
	calc   Calculator

	energy    float64
	forces    []float64
	computed  bool //energy and forces come from the calculator
	forcesSet bool //forces were set by hand, and must be kept
}

// NewImage returns an image with the given atoms and a copy of coords,
// which must contain 3 values per atom. calc can be nil, in which case
// the image can be moved around but not evaluated.
func NewImage(atoms []string, coords []float64, calc Calculator) (*Image, error) {
	if len(atoms) == 0 || len(coords) != 3*len(atoms) {
		return nil, NewError(ErrShape, "NewImage", "%d coordinates given for %d atoms", len(coords), len(atoms))
	}
	I := &Image{atoms: append([]string(nil), atoms...), calc: calc}
	I.coords = append([]float64(nil), coords...)
	return I, nil
}

// Atoms returns the atom symbols of the image. The slice should not be modified.
func (I *Image) Atoms() []string {
	return I.atoms
}

// Calculator returns the calculator attached to the image.
func (I *Image) Calculator() Calculator {
	return I.calc
}

// Len returns the number of coordinates in the image.
func (I *Image) Len() int {
	return len(I.coords)
}

// Coords returns a copy of the coordinates of the image.
func (I *Image) Coords() []float64 {
	return append([]float64(nil), I.coords...)
}

// Coords3D returns a copy of the coordinates as an Nx3 matrix.
func (I *Image) Coords3D() *v3.Matrix {
	m, _ := v3.NewMatrix(I.Coords()) //the length was checked on construction.
	return m
}

// SetCoords copies coords into the image, and invalidates the energy and forces.
func (I *Image) SetCoords(coords []float64) error {
	if len(coords) != len(I.coords) {
		return NewError(ErrShape, "Image.SetCoords", "%d coordinates given, %d expected", len(coords), len(I.coords))
	}
	copy(I.coords, coords)
	I.computed = false
	I.forcesSet = false
	I.forces = nil
	return nil
}

// SetForces overrides the forces of the image, until the next time the coordinates are set.
func (I *Image) SetForces(forces []float64) error {
	if len(forces) != len(I.coords) {
		return NewError(ErrShape, "Image.SetForces", "%d forces given, %d expected", len(forces), len(I.coords))
	}
	I.forces = append(I.forces[:0], forces...)
	I.forcesSet = true
	return nil
}

// Energy returns the energy of the image, computing it if needed.
func (I *Image) Energy() (float64, error) {
	if err := I.evaluate(); err != nil {
		return 0, err
	}
	return I.energy, nil
}

// Forces returns a copy of the forces on the image, computing them if needed.
func (I *Image) Forces() ([]float64, error) {
	if !I.forcesSet {
		if err := I.evaluate(); err != nil {
			return nil, err
		}
	}
	return append([]float64(nil), I.forces...), nil
}

func (I *Image) needsEvaluation() bool {
	return !I.computed
}

func (I *Image) evaluate() error {
	if I.computed {
		return nil
	}
	r, err := I.calculate()
	if err != nil {
		return err
	}
	I.setResult(r)
	return nil
}

// calculate calls the calculator without touching the state of the image,
// so it can run concurrently for different images.
func (I *Image) calculate() (*Result, error) {
	if I.calc == nil {
		return nil, NewError(ErrConfig, "Image.calculate", "image has no calculator")
	}
	r, err := I.calc.Compute(I.atoms, I.Coords())
	if err != nil {
		return nil, WrapError(ErrCalculator, err, "Image.calculate")
	}
	if r == nil || len(r.Forces) != len(I.coords) {
		return nil, NewError(ErrShape, "Image.calculate", "calculator returned a wrong number of forces")
	}
	return r, nil
}

func (I *Image) setResult(r *Result) {
	I.energy = r.Energy
	if !I.forcesSet {
		I.forces = append(I.forces[:0], r.Forces...)
	}
	I.computed = true
}
