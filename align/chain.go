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

package align

import (
	"log/slog"

	cos "github.com/rmera/gocos"
	v3 "github.com/rmera/gocos/v3"
)

// Options contains the options for the Chain function.
type Options struct {
	//Images with fewer atoms are left untouched, as their orientation is
	//either meaningless or not defined.
	MinAtoms int
	Logger   *slog.Logger
}

// DefaultOptions returns reasonable options for molecular chains.
func DefaultOptions() *Options {
	return &Options{MinAtoms: 3}
}

// Chain rigidly superimposes every image of c onto the previous one,
// the first image being kept in place. The new coordinates are set
// with c.SetCoords, so cached energies and forces are discarded.
// It returns the largest RMSD between an image and its aligned version.
func Chain(c cos.ChainOfStates, o *Options) (float64, error) {
	if o == nil {
		o = DefaultOptions()
	}
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}
	per := c.CoordsPerImage()
	natoms := per / 3
	if natoms < o.MinAtoms {
		log.Debug("Too few atoms to align the chain", "atoms", natoms)
		return 0, nil
	}
	coords := c.Coords()
	n := c.Len()
	var maxRMSD float64
	prev, err := v3.NewMatrix(coords[:per])
	if err != nil {
		return 0, cos.WrapError(cos.ErrShape, err, "align.Chain")
	}
	for i := 1; i < n; i++ {
		cur, err := v3.NewMatrix(coords[i*per : (i+1)*per])
		if err != nil {
			return 0, cos.WrapError(cos.ErrShape, err, "align.Chain")
		}
		sup, err := Super(cur, prev)
		if err != nil {
			return 0, cos.ErrDecorate(err, "align.Chain")
		}
		rmsd, _ := RMSD(sup, cur)
		maxRMSD = max(maxRMSD, rmsd)
		//cur shares its data with coords.
		cur.Copy(sup)
		prev = cur
	}
	if err := c.SetCoords(coords); err != nil {
		return 0, cos.ErrDecorate(err, "align.Chain")
	}
	log.Debug("Aligned chain", "images", n, "maxRMSD", maxRMSD)
	return maxRMSD, nil
}
