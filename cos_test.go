/*
 * cos_test.go, part of gocos.
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
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harmonic has energy x.x and forces -2x.
type harmonic struct {
	calls atomic.Int64
}

func (H *harmonic) Compute(atoms []string, coords []float64) (*Result, error) {
	H.calls.Add(1)
	r := &Result{Forces: make([]float64, len(coords))}
	for i, v := range coords {
		r.Energy += v * v
		r.Forces[i] = -2 * v
	}
	return r, nil
}

// tilted is harmonic along x, with a constant unit force along y.
type tilted struct{}

func (tilted) Compute(atoms []string, coords []float64) (*Result, error) {
	r := &Result{Forces: make([]float64, len(coords))}
	for i := 0; i < len(coords); i += 3 {
		r.Energy += coords[i] * coords[i]
		r.Forces[i] = -2 * coords[i]
		r.Forces[i+1] = 1
	}
	return r, nil
}

type failing struct{}

var errFailing = errors.New("SCF did not converge")

func (failing) Compute(atoms []string, coords []float64) (*Result, error) {
	return nil, errFailing
}

type constantTerm []float64

func (c constantTerm) Forces(coords []float64) ([]float64, error) {
	return append([]float64(nil), c...), nil
}

func lineImage(Te *testing.T, x float64, calc Calculator) *Image {
	im, err := NewImage([]string{"X"}, []float64{x, 0, 0}, calc)
	require.NoError(Te, err)
	return im
}

func lineChain(Te *testing.T, calc Calculator, blend ForceBlend, xs ...float64) *Chain {
	ims := make([]*Image, 0, len(xs))
	for _, x := range xs {
		ims = append(ims, lineImage(Te, x, calc))
	}
	C, err := NewChain(ims, blend)
	require.NoError(Te, err)
	return C
}

func TestFlattenDistribute(Te *testing.T) {
	ims := make([]*Image, 3)
	for i := range ims {
		f := float64(i)
		im, err := NewImage([]string{"H", "H"}, []float64{f, 0, 0, f, 0, 0.74}, nil)
		require.NoError(Te, err)
		ims[i] = im
	}
	C, err := NewChain(ims, Plain{})
	require.NoError(Te, err)
	assert.Equal(Te, 6, C.CoordsPerImage())
	flat := C.Coords()
	require.Len(Te, flat, 18)
	assert.Equal(Te, []float64{1, 0, 0, 1, 0, 0.74}, flat[6:12])
	for i := range flat {
		flat[i] += 0.5
	}
	require.NoError(Te, C.SetCoords(flat))
	assert.Equal(Te, flat, C.Coords())
	assert.Equal(Te, flat[12:], C.Images()[2].Coords())

	err = C.SetCoords(flat[:17])
	assert.True(Te, errors.Is(err, ErrShape))
	err = C.SetCoords(flat[:12])
	assert.True(Te, errors.Is(err, ErrShape))
	//a failed write leaves the chain as it was.
	assert.Equal(Te, flat, C.Coords())
}

func TestConstructionErrors(Te *testing.T) {
	_, err := NewImage([]string{"H", "H"}, []float64{0, 0, 0}, nil)
	assert.True(Te, errors.Is(err, ErrShape))
	_, err = NewChain([]*Image{lineImage(Te, 0, nil)}, Plain{})
	assert.True(Te, errors.Is(err, ErrConfig))
	h2, err := NewImage([]string{"H", "H"}, make([]float64, 6), nil)
	require.NoError(Te, err)
	_, err = NewChain([]*Image{lineImage(Te, 0, nil), h2}, Plain{})
	assert.True(Te, errors.Is(err, ErrShape))
	C := lineChain(Te, &harmonic{}, Plain{}, 0, 1)
	assert.True(Te, errors.Is(C.Interpolate(-1), ErrConfig))
}

func TestInterpolate(Te *testing.T) {
	C := lineChain(Te, &harmonic{}, Plain{}, 0, 10)
	require.NoError(Te, C.Interpolate(3))
	require.Equal(Te, 5, C.Len())
	for i, x := range []float64{0, 2.5, 5, 7.5, 10} {
		assert.InDeltaSlice(Te, []float64{x, 0, 0}, C.Images()[i].Coords(), 1e-12)
	}
	//the new images can be evaluated.
	e, err := C.Energies()
	require.NoError(Te, err)
	assert.InDelta(Te, 6.25, e[1], 1e-12)
}

func TestFixEnds(Te *testing.T) {
	C := lineChain(Te, &harmonic{}, Plain{}, 1, 2, 3)
	f, err := C.Forces()
	require.NoError(Te, err)
	assert.Equal(Te, []float64{-2, 0, 0, -4, 0, 0, -6, 0, 0}, f)
	C.FixEnds = true
	require.NoError(Te, C.SetCoords(C.Coords()))
	f, err = C.Forces()
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0, 0, 0, -4, 0, 0, 0, 0, 0}, f)
	//fixed ends still have their energies.
	e, err := C.Energies()
	require.NoError(Te, err)
	assert.Equal(Te, []float64{1, 4, 9}, e)
}

func TestNoBlend(Te *testing.T) {
	C := lineChain(Te, &harmonic{}, nil, 0, 1)
	_, err := C.Forces()
	assert.True(Te, errors.Is(err, ErrConfig))
}

func TestPerpendicular(Te *testing.T) {
	C := lineChain(Te, tilted{}, Perpendicular{}, 1, 2, 3, 4)
	f, err := C.Forces()
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{-2, 1, 0}, f[:3], 1e-12)
	assert.InDeltaSlice(Te, []float64{0, 1, 0}, f[3:6], 1e-12)
	assert.InDeltaSlice(Te, []float64{0, 1, 0}, f[6:9], 1e-12)
	assert.InDeltaSlice(Te, []float64{-8, 1, 0}, f[9:], 1e-12)
	norms, err := PerpForceNorms(C)
	require.NoError(Te, err)
	assert.InDelta(Te, 1, norms[1], 1e-12)
	//energies increase along the chain, so the tangent points forward.
	assert.InDeltaSlice(Te, []float64{1, 0, 0}, C.Tangent(1), 1e-12)
}

func TestWithForceTerms(Te *testing.T) {
	calc := WithForceTerms(&harmonic{}, constantTerm{1, 1, 1}, constantTerm{0, 0, 2})
	r, err := calc.Compute([]string{"X"}, []float64{1, 0, 0})
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, r.Energy)
	assert.Equal(Te, []float64{-1, 1, 3}, r.Forces)
	bad := WithForceTerms(&harmonic{}, constantTerm{1})
	_, err = bad.Compute([]string{"X"}, []float64{1, 0, 0})
	assert.True(Te, errors.Is(err, ErrShape))
}

func TestParallelEvaluate(Te *testing.T) {
	H := &harmonic{}
	C := lineChain(Te, H, Plain{}, 0, 10)
	require.NoError(Te, C.Interpolate(4))
	C.Workers = 4
	par, err := C.Forces()
	require.NoError(Te, err)
	assert.EqualValues(Te, 6, H.calls.Load())
	_, err = C.Energies()
	require.NoError(Te, err)
	assert.EqualValues(Te, 6, H.calls.Load())

	S := lineChain(Te, &harmonic{}, Plain{}, 0, 10)
	require.NoError(Te, S.Interpolate(4))
	seq, err := S.Forces()
	require.NoError(Te, err)
	assert.Equal(Te, seq, par)

	require.NoError(Te, C.SetCoords(C.Coords()))
	_, err = C.Forces()
	require.NoError(Te, err)
	assert.EqualValues(Te, 12, H.calls.Load())
}

func TestCalculatorError(Te *testing.T) {
	C := lineChain(Te, failing{}, Plain{}, 0, 1, 2)
	C.Workers = 2
	_, err := C.Forces()
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, ErrCalculator))
	assert.True(Te, errors.Is(err, errFailing))
	assert.True(Te, strings.Contains(err.Error(), "Chain.Forces"))
	_, err = lineImage(Te, 0, nil).Energy()
	assert.True(Te, errors.Is(err, ErrConfig))
}

func TestGrowingString(Te *testing.T) {
	first := lineImage(Te, 0, &harmonic{})
	last := lineImage(Te, 4, &harmonic{})
	var logs bytes.Buffer
	G, err := NewGrowingString(first, last, &GrowingOptions{MaxNodes: 3, PerpThresh: 1e4, ReparamEvery: 2, Workers: 1, Logger: slog.New(slog.NewTextHandler(&logs, nil))})
	require.NoError(Te, err)
	assert.Equal(Te, 4, G.Len())
	assert.False(Te, G.FullyGrown())
	assert.InDeltaSlice(Te, []float64{0, 0, 0, 1, 0, 0, 3, 0, 0, 4, 0, 0}, G.Coords(), 1e-12)
	assert.True(Te, errors.Is(G.Interpolate(3), ErrConfig))

	//only one node is missing, so only the left string grows.
	changed, err := G.Reparametrize()
	require.NoError(Te, err)
	assert.True(Te, changed)
	assert.Equal(Te, []int{2}, G.NewImageInds())
	assert.Contains(Te, logs.String(), "String grew")
	assert.True(Te, G.FullyGrown())
	assert.Equal(Te, 3, G.LeftSize())
	assert.Equal(Te, 2, G.RightSize())
	assert.InDeltaSlice(Te, []float64{0, 0, 0, 1, 0, 0, 2, 0, 0, 3, 0, 0, 4, 0, 0}, G.Coords(), 1e-12)

	changed, err = G.Reparametrize()
	require.NoError(Te, err)
	assert.False(Te, changed)
	assert.Empty(Te, G.NewImageInds())

	one, err := NewGrowingString(first, last, &GrowingOptions{MaxNodes: 1, PerpThresh: 1, ReparamEvery: 1})
	require.NoError(Te, err)
	assert.Equal(Te, 3, one.Len())
	assert.True(Te, one.FullyGrown())

	_, err = NewGrowingString(first, last, &GrowingOptions{MaxNodes: 0, PerpThresh: 1, ReparamEvery: 1})
	assert.True(Te, errors.Is(err, ErrConfig))
}

func TestGrowingStringBlocked(Te *testing.T) {
	first := lineImage(Te, 0, tilted{})
	last := lineImage(Te, 4, tilted{})
	G, err := NewGrowingString(first, last, &GrowingOptions{MaxNodes: 5, PerpThresh: 0.5, ReparamEvery: 2})
	require.NoError(Te, err)
	changed, err := G.Reparametrize()
	require.NoError(Te, err)
	assert.False(Te, changed)
	assert.Equal(Te, 4, G.Len())
	assert.Empty(Te, G.NewImageInds())
}

func TestErrorDecorate(Te *testing.T) {
	err := ErrDecorate(NewError(ErrShape, "inner", "bad %d", 3), "outer")
	assert.True(Te, errors.Is(err, ErrShape))
	assert.Equal(Te, "goCos: shape mismatch: bad 3 (inner <- outer)", err.Error())
	var e Error
	require.True(Te, errors.As(err, &e))
	assert.True(Te, e.Critical())
	plain := errors.New("plain")
	assert.Equal(Te, plain, ErrDecorate(plain, "outer"))

	//two callers decorating the same error don't see each other.
	base := ErrDecorate(ErrDecorate(NewError(ErrShape, "a", "bad"), "b"), "c")
	left := ErrDecorate(base, "left")
	right := ErrDecorate(base, "right")
	assert.Equal(Te, "goCos: shape mismatch: bad (a <- b <- c <- left)", left.Error())
	assert.Equal(Te, "goCos: shape mismatch: bad (a <- b <- c <- right)", right.Error())
	assert.Equal(Te, "goCos: shape mismatch: bad (a <- b <- c)", base.Error())
}
