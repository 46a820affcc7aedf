/*
 * chain.go, part of gocos.
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
	"golang.org/x/sync/errgroup"
)

// Chain is an ordered sequence of images that share the same number of
// coordinates. How the per-image forces are combined into the forces of
// the chain is decided by its ForceBlend.
type Chain struct {
	images       []*Image
	coordsLength int
	blend        ForceBlend

	//FixEnds sets the forces on the first and last image to zero.
	FixEnds bool

	//Workers is the maximum number of images evaluated at the same time.
	//Values smaller than 2 mean sequential evaluation.
	Workers int
}

// NewChain returns a chain with the given images (at least 2) and force blend.
// blend can be nil, but then the chain can't produce forces.
func NewChain(images []*Image, blend ForceBlend) (*Chain, error) {
	if len(images) < 2 {
		return nil, NewError(ErrConfig, "NewChain", "a chain needs at least 2 images, %d given", len(images))
	}
	l := images[0].Len()
	for i, v := range images {
		if v.Len() != l {
			return nil, NewError(ErrShape, "NewChain", "image %d has %d coordinates, %d expected", i, v.Len(), l)
		}
	}
	C := &Chain{images: append([]*Image(nil), images...), coordsLength: l, blend: blend}
	return C, nil
}

// Images returns the images of the chain, in order.
func (C *Chain) Images() []*Image {
	return C.images
}

// Len returns the number of images in the chain.
func (C *Chain) Len() int {
	return len(C.images)
}

// CoordsPerImage returns the number of coordinates of each image.
func (C *Chain) CoordsPerImage() int {
	return C.coordsLength
}

// Atoms returns the atom symbols of the first image.
func (C *Chain) Atoms() []string {
	return C.images[0].Atoms()
}

// Coords returns one slice with the coordinates of all images, in chain order.
func (C *Chain) Coords() []float64 {
	ret := make([]float64, 0, len(C.images)*C.coordsLength)
	for _, v := range C.images {
		ret = append(ret, v.coords...)
	}
	return ret
}

// SetCoords distributes coords over the images. It is the inverse of Coords.
func (C *Chain) SetCoords(coords []float64) error {
	if len(coords)%C.coordsLength != 0 {
		return NewError(ErrShape, "Chain.SetCoords", "%d coordinates are not a multiple of %d", len(coords), C.coordsLength)
	}
	if n := len(coords) / C.coordsLength; n != len(C.images) {
		return NewError(ErrShape, "Chain.SetCoords", "coordinates for %d images given, the chain has %d", n, len(C.images))
	}
	for i, v := range C.images {
		if err := v.SetCoords(coords[i*C.coordsLength : (i+1)*C.coordsLength]); err != nil {
			return ErrDecorate(err, "Chain.SetCoords")
		}
	}
	return nil
}

// Forces returns the forces of the chain, as defined by its ForceBlend.
func (C *Chain) Forces() ([]float64, error) {
	if C.blend == nil {
		return nil, NewError(ErrConfig, "Chain.Forces", "the chain has no force blend")
	}
	f, err := C.blend.Blend(C)
	if err != nil {
		return nil, ErrDecorate(err, "Chain.Forces")
	}
	return f, nil
}

// Energies returns the energy of each image.
func (C *Chain) Energies() ([]float64, error) {
	if err := C.Evaluate(); err != nil {
		return nil, err
	}
	ret := make([]float64, len(C.images))
	for i, v := range C.images {
		ret[i] = v.energy
	}
	return ret, nil
}

// Evaluate obtains energy and forces for all images that need them. With
// more than one worker, images are evaluated concurrently, and the results
// are stored only after all of them are done.
func (C *Chain) Evaluate() error {
	todo := make([]int, 0, len(C.images))
	for i, v := range C.images {
		if v.needsEvaluation() {
			todo = append(todo, i)
		}
	}
	if len(todo) == 0 {
		return nil
	}
	results := make([]*Result, len(C.images))
	g := new(errgroup.Group)
	g.SetLimit(max(1, C.Workers))
	for _, i := range todo {
		i := i // per-iteration copy (Go 1.22 loop semantics on the go1.21 toolchain)
		g.Go(func() error {
			r, err := C.images[i].calculate()
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return ErrDecorate(err, "Chain.Evaluate")
	}
	for _, i := range todo {
		C.images[i].setResult(results[i])
	}
	return nil
}

// Interpolate replaces the chain by imageCount+2 images evenly spaced
// between the current first and last image. Atoms and calculator are
// taken from the first image.
func (C *Chain) Interpolate(imageCount int) error {
	if imageCount < 0 {
		return NewError(ErrConfig, "Chain.Interpolate", "negative number of images: %d", imageCount)
	}
	first := C.images[0]
	last := C.images[len(C.images)-1]
	ims, err := interpolateImages(first, last.coords, imageCount)
	if err != nil {
		return ErrDecorate(err, "Chain.Interpolate")
	}
	C.images = ims
	return nil
}

// FixEndpoints sets the forces of the first and last images to zero,
// whatever the calculator gave for them.
func (C *Chain) FixEndpoints() {
	zero := make([]float64, C.coordsLength)
	C.images[0].SetForces(zero) //the length is always right
	C.images[len(C.images)-1].SetForces(zero)
}

// rawForces evaluates all images and concatenates their forces,
// honoring FixEnds.
func (C *Chain) rawForces() ([]float64, error) {
	if err := C.Evaluate(); err != nil {
		return nil, err
	}
	if C.FixEnds {
		C.FixEndpoints()
	}
	ret := make([]float64, 0, len(C.images)*C.coordsLength)
	for _, v := range C.images {
		ret = append(ret, v.forces...)
	}
	return ret, nil
}

// interpolateImages returns imageCount+2 images going linearly from
// the coordinates of first to final.
func interpolateImages(first *Image, final []float64, imageCount int) ([]*Image, error) {
	initial := first.coords
	step := make([]float64, len(initial))
	for j := range step {
		step[j] = (final[j] - initial[j]) / float64(imageCount+1)
	}
	ret := make([]*Image, 0, imageCount+2)
	c := make([]float64, len(initial))
	for i := 0; i < imageCount+2; i++ {
		for j := range c {
			c[j] = initial[j] + float64(i)*step[j]
		}
		im, err := NewImage(first.atoms, c, first.calc)
		if err != nil {
			return nil, err
		}
		ret = append(ret, im)
	}
	return ret, nil
}
