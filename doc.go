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
Package cos is the main package of the goCos library. It provides the
chain-of-states objects used to find reaction paths between two
molecular structures: images (single geometries with lazily computed
energy and forces), chains of images that can be handled as one flat
coordinate vector, and the growing string, a chain that starts with a few
images and inserts new ones as the optimization proceeds.

	**goCos Capabilities**

	Flattens a chain of images into one coordinate vector and distributes
	such a vector back over the images.

	Interpolates evenly spaced images between the ends of a chain.

	Combines per-image forces in different ways (ForceBlend): plain forces
	or forces perpendicular to the path tangent, with optionally fixed ends.

	Grows a string from both ends until it has the requested number of
	nodes, reparametrizing it so nodes stay evenly spaced.

	Evaluates the images of a chain concurrently, if the calculator allows it.

	Adds auxiliary force terms (see the frag subpackage) on top of any
	calculator.

The optimizer that drives a growing string is in the opt subpackage, the
quasi-Newton history it uses is in qn, rigid alignment of images is in
align, model potentials are in calc, and trajectory files are handled by
traj.
*/
package cos
