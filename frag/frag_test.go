/*
 * frag_test.go, part of gocos.
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
	"errors"
	"math"
	"testing"

	cos "github.com/rmera/gocos"
	v3 "github.com/rmera/gocos/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMolecularRadius(Te *testing.T) {
	one, _ := v3.NewMatrix([]float64{1, 2, 3})
	assert.InDelta(Te, 2*MinRadiusSpread, MolecularRadius(one), 1e-12)
	line, _ := v3.NewMatrix([]float64{-3, 0, 0, -1, 0, 0, 1, 0, 0, 3, 0, 0})
	//distances 3,1,1,3: mean 2, standard deviation 1.
	assert.InDelta(Te, 4.0, MolecularRadius(line), 1e-12)
}

func TestHardSphereOverlap(Te *testing.T) {
	frags := [][]int{{0}, {1}}
	coords := []float64{0, 0, 0, 0.5, 0, 0}
	o := &HardSphereOptions{Kappa: 1, Permutations: true, Radii: []float64{0.5, 0.5}}
	H, err := NewHardSphere(coords, frags, o)
	require.NoError(Te, err)
	f, err := H.Forces(coords)
	require.NoError(Te, err)
	assert.InDelta(Te, -1.0/6, f[0], 1e-12)
	assert.InDelta(Te, 1.0/6, f[3], 1e-12)
	for _, i := range []int{1, 2, 4, 5} {
		assert.Equal(Te, 0.0, f[i])
	}
	r, err := H.Compute([]string{"He", "He"}, coords)
	require.NoError(Te, err)
	assert.Equal(Te, 1.0, r.Energy)
	assert.Equal(Te, f, r.Forces)
}

func TestHardSphereNoOverlap(Te *testing.T) {
	frags := [][]int{{0}, {1}}
	o := &HardSphereOptions{Kappa: 1, Permutations: true, Radii: []float64{0.5, 0.5}}
	for _, d := range []float64{1.0, 1.5, 4} {
		coords := []float64{0, 0, 0, 0, d, 0}
		H, err := NewHardSphere(coords, frags, o)
		require.NoError(Te, err)
		f, err := H.Forces(coords)
		require.NoError(Te, err)
		assert.Equal(Te, make([]float64, 6), f, "distance %g", d)
	}
}

// Unordered pairs only push the first fragment of each pair.
func TestHardSphereCombinations(Te *testing.T) {
	frags := [][]int{{0, 1}, {2}}
	coords := []float64{-0.1, 0, 0, 0.1, 0, 0, 0.3, 0, 0}
	H, err := NewHardSphere(coords, frags, &HardSphereOptions{Kappa: 2, Radii: []float64{0.5, 0.5}})
	require.NoError(Te, err)
	f, err := H.Forces(coords)
	require.NoError(Te, err)
	//centroid distance 0.3, N = 1*3*2, phi = 2/6*(0.3-1)
	want := -(2.0 / 6 * 0.7)
	assert.InDelta(Te, want, f[0], 1e-12)
	assert.InDelta(Te, want, f[3], 1e-12)
	assert.Equal(Te, 0.0, f[6])
}

func TestHardSphereConfig(Te *testing.T) {
	coords := []float64{0, 0, 0, 1, 0, 0}
	_, err := NewHardSphere(coords, [][]int{{0, 1}, {1}}, nil)
	assert.True(Te, errors.Is(err, cos.ErrConfig))
	_, err = NewHardSphere(coords, [][]int{{0}, {2}}, nil)
	assert.True(Te, errors.Is(err, cos.ErrConfig))
	_, err = NewHardSphere(coords, [][]int{{0}, {1}}, &HardSphereOptions{Kappa: 1, Radii: []float64{1}})
	assert.True(Te, errors.Is(err, cos.ErrConfig))
	H, err := NewHardSphere(coords, [][]int{{0}, {1}}, nil)
	require.NoError(Te, err)
	_, err = H.Forces(coords[:3])
	assert.True(Te, errors.Is(err, cos.ErrShape))
}

func TestTransTorqueTranslation(Te *testing.T) {
	frags := [][]int{{0, 1}, {2}}
	A := []float64{0, 0, 0, 2, 0, 0, 10, 0, 0}
	B := []float64{1, 0, 0, 3, 0, 0, 10, 0, 0}
	aMats := map[[2]int][]int{{0, 1}: {0, 1}, {1, 0}: {}}
	bMats := map[[2]int][]int{{1, 0}: {0, 1}, {0, 1}: {}}
	T, err := NewTransTorque(frags, frags, B, aMats, bMats, nil)
	require.NoError(Te, err)
	assert.InDeltaSlice(Te, []float64{1.0 / 24, 0}, T.NInv(), 1e-14)
	f, err := T.Forces(A)
	require.NoError(Te, err)
	want := []float64{1.0 / 6, 0, 0, 1.0 / 6, 0, 0, 0, 0, 0}
	assert.InDeltaSlice(Te, want, f, 1e-12)
}

func TestTransTorqueZeroDisplacement(Te *testing.T) {
	frags := [][]int{{0, 1}, {2}}
	A := []float64{0, 0, 0, 2, 0, 0, 10, 0, 0}
	aMats := map[[2]int][]int{{0, 1}: {0, 1}, {1, 0}: {2}}
	bMats := map[[2]int][]int{{1, 0}: {0}, {0, 1}: {2}}
	T, err := NewTransTorque(frags, frags, A, aMats, bMats, nil)
	require.NoError(Te, err)
	f, err := T.Forces(A)
	require.NoError(Te, err)
	for i, v := range f {
		assert.False(Te, math.IsNaN(v) || math.IsInf(v, 0), "component %d", i)
	}
	//only atom 1 is displaced from its match, by -2 along x.
	assert.InDelta(Te, -2.0/12, f[0], 1e-12)
	assert.Equal(Te, 0.0, f[6])
}

func TestTransTorqueMissingTable(Te *testing.T) {
	frags := [][]int{{0}, {1}}
	coords := []float64{0, 0, 0, 1, 0, 0}
	_, err := NewTransTorque(frags, frags, coords, map[[2]int][]int{{0, 1}: {0}}, map[[2]int][]int{{1, 0}: {1}}, nil)
	assert.True(Te, errors.Is(err, cos.ErrConfig))
	o := DefaultTransTorqueOptions()
	o.Weighting = PairTable
	_, err = NewTransTorque(frags, frags, coords, nil, nil, o)
	assert.True(Te, errors.Is(err, cos.ErrConfig))
}
