/*
 * interfaces.go, part of gocos.
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

// Result is what a Calculator returns for one geometry.
type Result struct {
	Energy float64
	Forces []float64 //same length as the coordinates given.
}

// Calculator is anything that can obtain energy and forces for a set of atoms.
// Compute must be deterministic for fixed inputs. If a calculator is used on a
// chain with more than one worker, it must also be safe for concurrent use.
type Calculator interface {
	Compute(atoms []string, coords []float64) (*Result, error)
}

// ForceTerm is an auxiliary force generator, which only produces forces.
type ForceTerm interface {
	Forces(coords []float64) ([]float64, error)
}

// Geometry is the minimum an optimizer needs: coordinates that can be
// read and written as one flat slice, and the forces at those coordinates.
// A single Image is a Geometry, and so is any chain of states.
type Geometry interface {
	Coords() []float64
	SetCoords(coords []float64) error
	Forces() ([]float64, error)
}

// ChainOfStates is a Geometry made of an ordered sequence of images.
type ChainOfStates interface {
	Geometry

	//Energies returns the energy of each image, in chain order.
	Energies() ([]float64, error)

	//Images returns the images in the chain. They should not be modified.
	Images() []*Image

	//Len returns the number of images.
	Len() int

	//CoordsPerImage returns the length of the coordinate vector of each image.
	CoordsPerImage() int
}

// Grower is a chain of states that inserts images as it is optimized.
type Grower interface {
	ChainOfStates

	//NewImageInds returns the indexes of the images inserted in the last
	//call to Reparametrize, in the current ordering of the chain.
	NewImageInds() []int

	//FullyGrown is true once the chain has all its images.
	FullyGrown() bool

	//Reparametrize redistributes the images along the path, growing
	//the chain if needed. It returns true if anything was changed.
	Reparametrize() (bool, error)
}
