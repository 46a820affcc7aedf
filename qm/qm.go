/*
 * qm.go, part of gocos.
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

package qm

import (
	"errors"
	"slices"
)

// Kinds of error specific to this package. Images wrap them in an
// error of kind cos.ErrCalculator.
var (
	ErrNotRunning = errors.New("qm: can't run the program")
	ErrNoGradient = errors.New("qm: can't read the gradient")
	ErrNoEnergy   = errors.New("qm: can't read the energy")
)

// dielectric2Solvent picks an implicit solvent from a dielectric constant.
var dielectric2Solvent = map[int]string{
	80: "h2o",
	5:  "chcl3",
	9:  "ch2cl2",
	21: "acetone",
	37: "acetonitrile",
	33: "methanol",
	2:  "toluene",
	7:  "thf",
	47: "dmso",
	38: "dmf",
}

func isInString(container []string, test string) bool {
	return slices.Contains(container, test)
}
