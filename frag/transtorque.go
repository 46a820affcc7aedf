/*
 * transtorque.go, part of gocos.
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
	"log/slog"
	"math"

	cos "github.com/rmera/gocos"
	v3 "github.com/rmera/gocos/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Weighting selects the weight given to each matched pair of atoms.
type Weighting int

const (
	// Uniform gives weight 1 to every pair.
	Uniform Weighting = iota
	// PairTable takes the weight of the pair of fragments (m,n) from
	// TransTorqueOptions.PairWeights, 1 if absent.
	PairTable
)

// TransTorqueOptions contains the options for NewTransTorque.
type TransTorqueOptions struct {
	Kappa float64
	//If false, the pair (m,m) is also considered.
	Skip        bool
	Weighting   Weighting
	PairWeights map[[2]int]float64
	Logger      *slog.Logger
}

// DefaultTransTorqueOptions returns kappa 1, uniform weights, and skips m==n.
func DefaultTransTorqueOptions() *TransTorqueOptions {
	return &TransTorqueOptions{Kappa: 1, Skip: true, Weighting: Uniform}
}

// TransTorque produces translational and rotational forces that drive
// the fragments of a structure A towards the atoms they are matched to in
// a fixed structure B. See Habershon, J. Comput. Chem. 42, 1127 (2021),
// Eqs. (A3)-(A5).
type TransTorque struct {
	frags     [][]int
	iterFrags [][]int
	b         *v3.Matrix
	aMats     map[[2]int][]int
	bMats     map[[2]int][]int
	nInv      []float64
	o         TransTorqueOptions
	log       *slog.Logger
}

// NewTransTorque returns a kernel for the fragments frags of A. iterFrags are
// the fragments each fragment of A interacts with, bCoords the coordinates of B.
// aMats[[m,n]] holds the atoms of A in fragment m matched to fragment n, and
// bMats[[n,m]] the atoms of B matched to fragment m. Both must be present for
// every pair considered.
func NewTransTorque(frags, iterFrags [][]int, bCoords []float64, aMats, bMats map[[2]int][]int, o *TransTorqueOptions) (*TransTorque, error) {
	if o == nil {
		o = DefaultTransTorqueOptions()
	}
	b, err := coords3D(bCoords, len(bCoords)/3, "NewTransTorque")
	if err != nil {
		return nil, err
	}
	if len(frags) == 0 {
		return nil, cos.NewError(cos.ErrConfig, "NewTransTorque", "no fragments given")
	}
	if o.Weighting == PairTable && o.PairWeights == nil {
		return nil, cos.NewError(cos.ErrConfig, "NewTransTorque", "pair-table weighting without a table")
	}
	bAtoms := b.NVecs()
	T := &TransTorque{frags: frags, iterFrags: iterFrags, b: b, aMats: aMats, bMats: bMats, o: *o}
	T.log = o.Logger
	if T.log == nil {
		T.log = slog.Default()
	}
	T.nInv = make([]float64, len(frags))
	for m, mfrag := range frags {
		if len(mfrag) == 0 {
			return nil, cos.NewError(cos.ErrConfig, "NewTransTorque", "fragment %d is empty", m)
		}
		count := 0
		for n := range iterFrags {
			if o.Skip && m == n {
				continue
			}
			amn, ok := aMats[[2]int{m, n}]
			if !ok {
				return nil, cos.NewError(cos.ErrConfig, "NewTransTorque", "no A matching table for fragments (%d,%d)", m, n)
			}
			bnm, ok := bMats[[2]int{n, m}]
			if !ok {
				return nil, cos.NewError(cos.ErrConfig, "NewTransTorque", "no B matching table for fragments (%d,%d)", n, m)
			}
			for _, bi := range bnm {
				if bi < 0 || bi >= bAtoms {
					return nil, cos.NewError(cos.ErrConfig, "NewTransTorque", "atom %d of B out of range", bi)
				}
			}
			count += len(amn) * len(bnm)
		}
		count *= 3 * len(mfrag)
		if count > 0 {
			T.nInv[m] = 1 / float64(count)
		}
	}
	return T, nil
}

// NInv returns the normalization constant of each fragment.
func (T *TransTorque) NInv() []float64 {
	return append([]float64(nil), T.nInv...)
}

func (T *TransTorque) weight(m, n int) float64 {
	if T.o.Weighting == PairTable {
		if w, ok := T.o.PairWeights[[2]int{m, n}]; ok {
			return w
		}
	}
	return 1
}

// Forces returns the translation and torque forces on the atoms of A with
// coordinates coords. Atoms not in any fragment get zero forces.
func (T *TransTorque) Forces(coords []float64) ([]float64, error) {
	a, err := coords3D(coords, len(coords)/3, "TransTorque.Forces")
	if err != nil {
		return nil, err
	}
	natoms := a.NVecs()
	forces := make([]float64, len(coords))
	degenerate := 0
	for m, mfrag := range T.frags {
		for _, i := range mfrag {
			if i < 0 || i >= natoms {
				return nil, cos.NewError(cos.ErrShape, "TransTorque.Forces", "atom %d of fragment %d not in a geometry of %d atoms", i, m, natoms)
			}
		}
		gm := centroid(a, mfrag)
		var trans, rot r3.Vec
		for n := range T.iterFrags {
			if T.o.Skip && m == n {
				continue
			}
			w := T.weight(m, n)
			for _, ai := range T.aMats[[2]int{m, n}] {
				if ai < 0 || ai >= natoms {
					return nil, cos.NewError(cos.ErrShape, "TransTorque.Forces", "matched atom %d not in a geometry of %d atoms", ai, natoms)
				}
				pa := a.Vec(ai)
				gd := r3.Sub(pa, gm)
				for _, bi := range T.bMats[[2]int{n, m}] {
					rd := r3.Sub(T.b.Vec(bi), pa)
					rot = r3.Add(rot, r3.Scale(w, r3.Cross(rd, gd)))
					rn := r3.Norm(rd)
					if rn < degeneracyThreshold {
						degenerate++
						continue
					}
					trans = r3.Add(trans, r3.Scale(w*math.Abs(r3.Dot(rd, gd))/rn, rd))
				}
			}
		}
		trans = r3.Scale(T.nInv[m], trans)
		rot = r3.Scale(T.nInv[m], rot)
		for _, i := range mfrag {
			f := r3.Add(r3.Cross(r3.Scale(-1, rot), r3.Sub(a.Vec(i), gm)), trans)
			f = r3.Scale(T.o.Kappa, f)
			forces[3*i] = f.X
			forces[3*i+1] = f.Y
			forces[3*i+2] = f.Z
		}
	}
	if degenerate > 0 {
		T.log.Warn("Matched atoms on top of each other, translational term skipped", "pairs", degenerate, "kind", cos.ErrNumericDegeneracy)
	}
	return forces, nil
}

// Compute allows the kernel to be used as a calculator. The energy is always 1.
func (T *TransTorque) Compute(atoms []string, coords []float64) (*cos.Result, error) {
	f, err := T.Forces(coords)
	if err != nil {
		return nil, err
	}
	return &cos.Result{Energy: 1, Forces: f}, nil
}
