/*
 * super.go, part of gocos.
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

package align

import (
	"math"

	cos "github.com/rmera/gocos"
	v3 "github.com/rmera/gocos/v3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation returns the 3x3 matrix R that, applied to the rows of test
// (as test*R), best superimposes them on the rows of templa, once both are
// centered on their centroids (Kabsch algorithm). Reflections are never
// returned.
func Rotation(test, templa *v3.Matrix) (*mat.Dense, error) {
	if test.NVecs() != templa.NVecs() {
		return nil, cos.NewError(cos.ErrShape, "align.Rotation", "%d and %d atoms can't be superimposed", test.NVecs(), templa.NVecs())
	}
	ctest := centered(test)
	ctempla := centered(templa)
	var H mat.Dense
	H.Mul(ctest.T(), ctempla)
	var svd mat.SVD
	if ok := svd.Factorize(&H, mat.SVDFull); !ok {
		return nil, cos.NewError(cos.ErrNumericDegeneracy, "align.Rotation", "SVD factorization failed")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	var R mat.Dense
	R.Mul(&U, V.T())
	//A negative determinant means a reflection, so we flip the last singular vector.
	if mat.Det(&R) < 0 {
		for i := 0; i < 3; i++ {
			V.Set(i, 2, -V.At(i, 2))
		}
		R.Mul(&U, V.T())
	}
	return &R, nil
}

// Super returns a copy of test rotated and translated to best superimpose templa.
func Super(test, templa *v3.Matrix) (*v3.Matrix, error) {
	R, err := Rotation(test, templa)
	if err != nil {
		return nil, err
	}
	ret := v3.Zeros(test.NVecs())
	ret.Mul(centered(test), R)
	ret.AddVec(ret, templa.Centroid())
	return ret, nil
}

// RMSD returns the root of the mean square deviation between the
// positions in test and templa, without superimposing them.
func RMSD(test, templa *v3.Matrix) (float64, error) {
	if test.NVecs() != templa.NVecs() {
		return 0, cos.NewError(cos.ErrShape, "align.RMSD", "%d and %d atoms", test.NVecs(), templa.NVecs())
	}
	var sum float64
	for i := 0; i < test.NVecs(); i++ {
		sum += r3.Norm2(r3.Sub(test.Vec(i), templa.Vec(i)))
	}
	return math.Sqrt(sum / float64(test.NVecs())), nil
}

// centered returns a copy of c with its centroid at the origin.
func centered(c *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(c.NVecs())
	ret.SubVec(c, c.Centroid())
	return ret
}
