/*
 * growing.go, part of gocos.
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

// GrowingOptions contains the options for a GrowingString.
type GrowingOptions struct {
	MaxNodes     int     //number of images between the two ends, once fully grown.
	PerpThresh   float64 //a frontier node with a perpendicular force norm below this lets the string grow.
	ReparamEvery int     //redistribute the nodes every this many calls to Reparametrize. Growth always redistributes.
	Workers      int     //see Chain.Workers
	Logger       *slog.Logger
}

// DefaultGrowingOptions returns reasonable options for small molecules in atomic units.
func DefaultGrowingOptions() *GrowingOptions {
	return &GrowingOptions{
		MaxNodes:     9,
		PerpThresh:   0.05,
		ReparamEvery: 2,
		Workers:      1,
	}
}

// GrowingString is a chain of states that starts with one node next to
// each end and adds nodes at the frontiers, once the forces perpendicular
// to the path on a frontier node become small enough. The nodes
// grown from the first image form the left string, the others
// the right string. See Peters et al., J. Chem. Phys. 120, 7877 (2004).
type GrowingString struct {
	*Chain
	o            GrowingOptions
	leftSize     int //images in the left string, including the first end.
	rightSize    int //images in the right string, including the last end.
	newImageInds []int
	calls        int
}

// NewGrowingString builds a growing string between first and last. The ends are
// fixed, and the forces are perpendicular to the path.
func NewGrowingString(first, last *Image, o *GrowingOptions) (*GrowingString, error) {
	if o == nil {
		o = DefaultGrowingOptions()
	}
	if o.MaxNodes < 1 || o.PerpThresh <= 0 || o.ReparamEvery < 1 {
		return nil, NewError(ErrConfig, "NewGrowingString", "invalid options %+v", *o)
	}
	if first.Len() != last.Len() {
		return nil, NewError(ErrShape, "NewGrowingString", "ends have %d and %d coordinates", first.Len(), last.Len())
	}
	G := &GrowingString{o: *o}
	delta := G.delta()
	images := []*Image{first}
	left, err := lerpImage(first, first.coords, last.coords, delta)
	if err != nil {
		return nil, ErrDecorate(err, "NewGrowingString")
	}
	images = append(images, left)
	G.leftSize = 2
	G.rightSize = 1
	if o.MaxNodes > 1 {
		right, err := lerpImage(first, first.coords, last.coords, 1-delta)
		if err != nil {
			return nil, ErrDecorate(err, "NewGrowingString")
		}
		images = append(images, right)
		G.rightSize = 2
	}
	images = append(images, last)
	G.Chain, err = NewChain(images, Perpendicular{})
	if err != nil {
		return nil, ErrDecorate(err, "NewGrowingString")
	}
	G.FixEnds = true
	G.Workers = o.Workers
	return G, nil
}

// NewImageInds returns the indexes of the images added in the last call to Reparametrize.
func (G *GrowingString) NewImageInds() []int {
	return append([]int(nil), G.newImageInds...)
}

// FullyGrown returns true if the string has all its nodes.
func (G *GrowingString) FullyGrown() bool {
	return G.Len() == G.o.MaxNodes+2
}

// LeftSize and RightSize return the number of images in the left and right strings,
// each including its end.
func (G *GrowingString) LeftSize() int  { return G.leftSize }
func (G *GrowingString) RightSize() int { return G.rightSize }

// Reparametrize grows the string where the frontier nodes allow it, and
// redistributes the nodes evenly along the path. It is meant to be called
// once per optimization cycle, after the new coordinates are set.
func (G *GrowingString) Reparametrize() (bool, error) {
	G.newImageInds = nil
	G.calls++
	grew := false
	if !G.FullyGrown() {
		var err error
		grew, err = G.grow()
		if err != nil {
			return false, ErrDecorate(err, "GrowingString.Reparametrize")
		}
	}
	if !grew && G.calls%G.o.ReparamEvery != 0 {
		return false, nil
	}
	moved := G.redistribute()
	return grew || moved, nil
}

func (G *GrowingString) grow() (bool, error) {
	norms, err := PerpForceNorms(G.Chain)
	if err != nil {
		return false, err
	}
	lf := G.leftSize - 1
	rf := G.leftSize
	growLeft := norms[lf] <= G.o.PerpThresh
	growRight := norms[rf] <= G.o.PerpThresh
	if growLeft && growRight && G.o.MaxNodes+2-G.Len() < 2 {
		growRight = false
	}
	if !growLeft && !growRight {
		return false, nil
	}
	sl := G.param(lf)
	sr := G.param(rf)
	xl := G.images[lf].coords
	xr := G.images[rf].coords
	first := G.images[0]
	var nl, nr *Image
	if growLeft {
		s := float64(G.leftSize) * G.delta()
		if nl, err = lerpImage(first, xl, xr, (s-sl)/(sr-sl)); err != nil {
			return false, err
		}
	}
	if growRight {
		s := 1 - float64(G.rightSize)*G.delta()
		if nr, err = lerpImage(first, xl, xr, (s-sl)/(sr-sl)); err != nil {
			return false, err
		}
	}
	if nl != nil {
		G.insert(G.leftSize, nl)
		G.newImageInds = append(G.newImageInds, G.leftSize)
		G.leftSize++
	}
	if nr != nil {
		G.insert(G.leftSize, nr)
		G.newImageInds = append(G.newImageInds, G.leftSize)
		G.rightSize++
	}
	G.logger().Info("String grew", "new_images", G.newImageInds, "images", G.Len(), "fully_grown", G.FullyGrown())
	return true, nil
}

// Interpolate is not available for a growing string, which places its own nodes.
func (G *GrowingString) Interpolate(imageCount int) error {
	return NewError(ErrConfig, "GrowingString.Interpolate", "a growing string can't be interpolated")
}

func (G *GrowingString) insert(i int, im *Image) {
	G.images = append(G.images, nil)
	copy(G.images[i+1:], G.images[i:])
	G.images[i] = im
}

func (G *GrowingString) delta() float64 {
	return 1 / float64(G.o.MaxNodes+1)
}

// param returns the path parameter (0 to 1) that the ith image should have.
func (G *GrowingString) param(i int) float64 {
	if i < G.leftSize {
		return float64(i) * G.delta()
	}
	return 1 - float64(G.Len()-1-i)*G.delta()
}

// redistribute moves the inner nodes so their position along the
// piecewise-linear path matches their parameter. Returns true if any node moved.
func (G *GrowingString) redistribute() bool {
	n := G.Len()
	l := G.coordsLength
	cum := make([]float64, n)
	seg := make([]float64, l)
	for i := 1; i < n; i++ {
		floats.SubTo(seg, G.images[i].coords, G.images[i-1].coords)
		cum[i] = cum[i-1] + floats.Norm(seg, 2)
	}
	total := cum[n-1]
	if total < degeneracyThreshold {
		return false
	}
	floats.Scale(1/total, cum)
	newcoords := make([][]float64, n)
	for i := 1; i < n-1; i++ {
		s := G.param(i)
		k := 1
		for k < n-1 && cum[k] < s {
			k++
		}
		span := cum[k] - cum[k-1]
		t := 0.0
		if span > degeneracyThreshold {
			t = (s - cum[k-1]) / span
		}
		c := make([]float64, l)
		lerpTo(c, G.images[k-1].coords, G.images[k].coords, t)
		newcoords[i] = c
	}
	moved := false
	for i := 1; i < n-1; i++ {
		if floats.Distance(newcoords[i], G.images[i].coords, math.Inf(1)) > degeneracyThreshold {
			G.images[i].SetCoords(newcoords[i]) //same length
			moved = true
		}
	}
	return moved
}

// lerpTo puts a+t*(b-a) in dst.
func lerpTo(dst, a, b []float64, t float64) {
	for j := range dst {
		dst[j] = a[j] + t*(b[j]-a[j])
	}
}

// lerpImage returns an image with the atoms and calculator of model, at a+t*(b-a).
func lerpImage(model *Image, a, b []float64, t float64) (*Image, error) {
	c := make([]float64, len(a))
	lerpTo(c, a, b, t)
	return NewImage(model.atoms, c, model.calc)
}

func (G *GrowingString) logger() *slog.Logger {
	if G.o.Logger != nil {
		return G.o.Logger
	}
	return slog.Default()
}
