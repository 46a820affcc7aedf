/*
 * matrix.go, part of gocos.
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

package v3

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const cols int = 3

// Matrix is a set of vectors in 3D space. Each row is one point,
// i.e. the cartesian coordinates of one atom.
type Matrix struct {
	*mat.Dense
}

// Dense2Matrix wraps a gonum Dense with 3 columns. Panics otherwise.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != cols {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

// NewMatrix returns a Matrix with 3 columns backed by data. Changes in
// the matrix are reflected in data and vice versa.
func NewMatrix(data []float64) (*Matrix, error) {
	l := len(data)
	if l == 0 || l%cols != 0 {
		return nil, Error{fmt.Sprintf("input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(l/cols, cols, data)}, nil
}

// Zeros returns a zero-filled Matrix with vecs vectors.
func Zeros(vecs int) *Matrix {
	return &Matrix{mat.NewDense(vecs, cols, nil)}
}

// NVecs returns the number of vectors (rows) in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != cols {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// Len is an alias for NVecs.
func (F *Matrix) Len() int {
	return F.NVecs()
}

// VecView returns a view of the ith vector of F.
func (F *Matrix) VecView(i int) *Matrix {
	return &Matrix{F.Dense.Slice(i, i+1, 0, cols).(*mat.Dense)}
}

// Vec returns a copy of the ith vector of F.
func (F *Matrix) Vec(i int) r3.Vec {
	return r3.Vec{X: F.At(i, 0), Y: F.At(i, 1), Z: F.At(i, 2)}
}

// SetVec sets the ith vector of F to v.
func (F *Matrix) SetVec(i int, v r3.Vec) {
	F.Set(i, 0, v.X)
	F.Set(i, 1, v.Y)
	F.Set(i, 2, v.Z)
}

// SomeVecs puts in F the vectors of A with indexes in clist, in the
// order given by clist. F must have exactly len(clist) vectors.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() != len(clist) {
		panic(ErrShape)
	}
	an := A.NVecs()
	for k, v := range clist {
		if v >= an {
			panic(ErrIndexOutOfRange)
		}
		F.SetVec(k, A.Vec(v))
	}
}

// SetVecs sets the vectors of F with index clist[k] to the kth vector of A.
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.NVecs() < len(clist) {
		panic(ErrShape)
	}
	fn := F.NVecs()
	for k, v := range clist {
		if v >= fn {
			panic(ErrIndexOutOfRange)
		}
		F.SetVec(v, A.Vec(k))
	}
}

// Centroid returns the geometric center of the vectors in F.
func (F *Matrix) Centroid() r3.Vec {
	var c r3.Vec
	n := F.NVecs()
	for i := 0; i < n; i++ {
		c = r3.Add(c, F.Vec(i))
	}
	return r3.Scale(1/float64(n), c)
}

// AddVec puts in F the vectors of A plus v. F and A can be the same.
func (F *Matrix) AddVec(A *Matrix, v r3.Vec) {
	n := A.NVecs()
	if F.NVecs() != n {
		panic(ErrShape)
	}
	for i := 0; i < n; i++ {
		F.SetVec(i, r3.Add(A.Vec(i), v))
	}
}

// SubVec puts in F the vectors of A minus v. F and A can be the same.
func (F *Matrix) SubVec(A *Matrix, v r3.Vec) {
	F.AddVec(A, r3.Scale(-1, v))
}

// String returns a neat representation of the matrix.
func (F *Matrix) String() string {
	n := F.NVecs()
	v := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v = append(v, fmt.Sprintf("%9.4f %9.4f %9.4f", F.At(i, 0), F.At(i, 1), F.At(i, 2)))
	}
	return "[" + strings.Join(v, "\n ") + "]"
}

//Errors

// Error is returned by the few functions in this package that do not panic.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		return append(slices.Clip(err.deco), dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("goCos/v3: A Matrix should have 3 columns")
	ErrShape           = PanicMsg("goCos/v3: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("goCos/v3: index out of range")
)
