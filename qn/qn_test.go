/*
 * qn_test.go, part of gocos.
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

package qn

import (
	"errors"
	"math"
	"testing"

	cos "github.com/rmera/gocos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyHistoryIsSteepestDescent(Te *testing.T) {
	H, err := NewHistory(0)
	require.NoError(Te, err)
	f := []float64{1, -2, 3, 0.5, 0, -1}
	o := DefaultOptions()
	o.Beta = 0.8
	r, err := Multiply(H, f, 3, o)
	require.NoError(Te, err)
	for i := range f {
		assert.InDelta(Te, 0.8*f[i], r[i], 1e-14)
	}
	//pushing to a zero-capacity history keeps nothing.
	require.NoError(Te, H.Push([]float64{1, 1, 1}, []float64{1, 1, 1}, []int{0}))
	assert.Equal(Te, 0, H.Len())
	_, err = NewHistory(-1)
	assert.True(Te, errors.Is(err, cos.ErrConfig))
}

func TestRingKeepsNewest(Te *testing.T) {
	H, err := NewHistory(2)
	require.NoError(Te, err)
	for i := 1; i <= 3; i++ {
		v := float64(i)
		require.NoError(Te, H.Push([]float64{v}, []float64{v}, []int{0}))
	}
	assert.Equal(Te, 2, H.Len())
	assert.Equal(Te, 2.0, H.At(0).S[0])
	assert.Equal(Te, 3.0, H.At(1).S[0])
}

// On a quadratic with Hessian A, a pair with y=A·s makes H·y == s (secant condition).
func TestSecantCondition(Te *testing.T) {
	H, _ := NewHistory(5)
	s := []float64{0.1, -0.2, 0.05}
	A := [3]float64{2, 5, 1} //diagonal Hessian
	y := make([]float64, 3)
	for i := range s {
		y[i] = A[i] * s[i]
	}
	require.NoError(Te, H.Push(s, y, []int{0}))
	r, err := Multiply(H, y, 3, DefaultOptions())
	require.NoError(Te, err)
	for i := range s {
		assert.InDelta(Te, s[i], r[i], 1e-12)
	}
}

// An entry recorded over the first 3 of 4 blocks must not touch the 4th.
func TestPartialEntryLeavesNewBlocks(Te *testing.T) {
	H, _ := NewHistory(3)
	s := []float64{0.1, 0, 0, 0, 0.2, 0, 0, 0, -0.1}
	y := []float64{0.3, 0, 0, 0, 0.1, 0, 0, 0, -0.2}
	require.NoError(Te, H.Push(s, y, []int{0, 1, 2}))
	f := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 7, -7, 2}
	o := DefaultOptions()
	o.Beta = 0.5
	r, err := Multiply(H, f, 3, o)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{3.5, -3.5, 1}, r[9:])
	changed := false
	for i := 0; i < 9; i++ {
		if math.Abs(r[i]-0.5*f[i]) > 1e-12 {
			changed = true
		}
	}
	assert.True(Te, changed)
}

func TestRemapFollowsImages(Te *testing.T) {
	H, _ := NewHistory(3)
	require.NoError(Te, H.Push([]float64{1, 2, 3}, []float64{1, 2, 3}, []int{0, 1, 2}))
	//the chain grows from 3 to 5 images, new ones at 1 and 3.
	require.NoError(Te, H.Remap([]int{1, 3}, 5))
	assert.Equal(Te, []int{0, 2, 4}, H.At(0).Blocks)
	assert.Equal(Te, []int{0, 2, 4}, Survivors([]int{1, 3}, 5))
	//a second remap for the same growth finds block 4 among 3 old images.
	err := H.Remap([]int{1, 3}, 5)
	assert.True(Te, errors.Is(err, cos.ErrShape))
	assert.Equal(Te, []int{0, 2, 4}, H.At(0).Blocks)
}

func TestDegeneratePairIsSkipped(Te *testing.T) {
	H, _ := NewHistory(3)
	require.NoError(Te, H.Push([]float64{1, 0, 0}, []float64{0, 1, 0}, []int{0})) //s·y == 0
	f := []float64{1, 2, 3}
	r, err := Multiply(H, f, 3, &Options{Curvature: LatestPair, Beta: 1, Threshold: 1e-12})
	require.NoError(Te, err)
	for i := range f {
		assert.False(Te, math.IsNaN(r[i]))
		assert.InDelta(Te, f[i], r[i], 1e-14)
	}
}

func TestCoverageCheck(Te *testing.T) {
	H, _ := NewHistory(3)
	require.NoError(Te, H.Push([]float64{1, 1, 1}, []float64{1, 1, 1}, []int{4}))
	_, err := Multiply(H, make([]float64, 6), 3, nil)
	assert.True(Te, errors.Is(err, cos.ErrShape))
	_, err = Multiply(H, make([]float64, 5), 3, nil)
	assert.True(Te, errors.Is(err, cos.ErrShape))
}
