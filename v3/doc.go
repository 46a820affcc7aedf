/*
 * doc.go, part of gocos.
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

/*
Package v3 implements a Matrix type representing a row-major Nx3 matrix,
used for the cartesian coordinates of the atoms of one image in gocos.
It is based on gonum's (gonum.org/v1/gonum/mat) Dense type, with the
additional restriction of exactly 3 columns, and a few helpers that make
the interplay with the flat coordinate slices used by the optimizer easy:
a Matrix built with NewMatrix shares its data with the slice it was
built from.
*/
package v3
