/*
 * hardsphere.go, part of gocos.
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

	cos "github.com/rmera/gocos"
	"gonum.org/v1/gonum/spatial/r3"
)

// HardSphereOptions contains the options for NewHardSphere.
type HardSphereOptions struct {
	Kappa float64
	//If true, both (m,n) and (n,m) are considered for each pair of fragments,
	//otherwise only (m,n) with m<n. The force of a pair acts on its first fragment.
	Permutations bool
	//Radius of each fragment. If nil, they are estimated with MolecularRadius.
	Radii []float64
}

// DefaultHardSphereOptions returns unordered pairs, kappa 1 and estimated radii.
func DefaultHardSphereOptions() *HardSphereOptions {
	return &HardSphereOptions{Kappa: 1}
}

// HardSphere is an intra-image, inter-fragment hard-sphere repulsion.
// Each fragment is a sphere with a radius fixed at construction; when two
// spheres overlap, the first fragment of the pair is pushed away from the
// second along the line joining their centroids.
// See Habershon, J. Comput. Chem. 42, 1127 (2021), Eq. (A1).
type HardSphere struct {
	frags     [][]int
	natoms    int
	kappa     float64
	radii     []float64
	pairs     [][2]int
	radiiSums []float64
}

// NewHardSphere builds the kernel for a geometry with coordinates coords
// and the fragments frags (lists of atom indexes).
func NewHardSphere(coords []float64, frags [][]int, o *HardSphereOptions) (*HardSphere, error) {
	if o == nil {
		o = DefaultHardSphereOptions()
	}
	natoms := len(coords) / 3
	c, err := coords3D(coords, natoms, "NewHardSphere")
	if err != nil {
		return nil, err
	}
	if err := checkFrags(frags, natoms, "NewHardSphere"); err != nil {
		return nil, err
	}
	if o.Kappa < 0 {
		return nil, cos.NewError(cos.ErrConfig, "NewHardSphere", "negative kappa %g", o.Kappa)
	}
	H := &HardSphere{frags: frags, natoms: natoms, kappa: o.Kappa}
	if o.Radii != nil {
		if len(o.Radii) != len(frags) {
			return nil, cos.NewError(cos.ErrConfig, "NewHardSphere", "%d radii given for %d fragments", len(o.Radii), len(frags))
		}
		H.radii = append([]float64(nil), o.Radii...)
	} else {
		H.radii = make([]float64, len(frags))
		for m, f := range frags {
			fc := subset(c, f)
			H.radii[m] = MolecularRadius(fc)
		}
	}
	for m := range frags {
		for n := range frags {
			if m == n || (!o.Permutations && n < m) {
				continue
			}
			H.pairs = append(H.pairs, [2]int{m, n})
			H.radiiSums = append(H.radiiSums, H.radii[m]+H.radii[n])
		}
	}
	return H, nil
}

// Radii returns the radius of each fragment.
func (H *HardSphere) Radii() []float64 {
	return append([]float64(nil), H.radii...)
}

// Forces returns the hard-sphere forces for the given coordinates.
func (H *HardSphere) Forces(coords []float64) ([]float64, error) {
	c, err := coords3D(coords, H.natoms, "HardSphere.Forces")
	if err != nil {
		return nil, err
	}
	centroids := make([]r3.Vec, len(H.frags))
	for m, f := range H.frags {
		centroids[m] = centroid(c, f)
	}
	gdiffs := make([]r3.Vec, len(H.pairs))
	gnorms := make([]float64, len(H.pairs))
	overlap := make([]bool, len(H.pairs))
	N := make([]float64, len(H.frags)) //overlapping pairs acting on each fragment
	for p, mn := range H.pairs {
		gdiffs[p] = r3.Sub(centroids[mn[0]], centroids[mn[1]])
		gnorms[p] = r3.Norm(gdiffs[p])
		overlap[p] = gnorms[p] < H.radiiSums[p]
		if overlap[p] {
			N[mn[0]]++
		}
	}
	forces := make([]float64, len(coords))
	for p, mn := range H.pairs {
		if !overlap[p] {
			continue
		}
		m := mn[0]
		if gnorms[p] < degeneracyThreshold {
			slog.Warn("Fragments with coincident centroids, no hard-sphere direction", "m", m, "n", mn[1], "kind", cos.ErrNumericDegeneracy)
			continue
		}
		dof := N[m] * 3 * float64(len(H.frags[m]))
		phi := H.kappa / dof * (gnorms[p] - H.radiiSums[p])
		//phi is negative for overlapping spheres, and -phi/|g|·g points away from n.
		ff := r3.Scale(-phi/gnorms[p], gdiffs[p])
		for _, a := range H.frags[m] {
			forces[3*a] += ff.X
			forces[3*a+1] += ff.Y
			forces[3*a+2] += ff.Z
		}
	}
	return forces, nil
}

// Compute allows the kernel to be used as a calculator. The energy is always 1,
// and carries no physical meaning.
func (H *HardSphere) Compute(atoms []string, coords []float64) (*cos.Result, error) {
	f, err := H.Forces(coords)
	if err != nil {
		return nil, err
	}
	return &cos.Result{Energy: 1, Forces: f}, nil
}

const degeneracyThreshold = 1e-12
