/*
 * xyz.go, part of gocos.
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

// Package traj reads and writes chains of states as multi-structure XYZ
// files, optionally compressed, and as DCD trajectories. Files are in
// Angstrom and images in bohr. The conversion happens when frames become
// images and when images are written.
package traj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	cos "github.com/rmera/gocos"
	"gonum.org/v1/gonum/floats"
)

// Frame is one structure read from a multi-XYZ file. Coords are in
// Angstrom, as in the file.
type Frame struct {
	Atoms   []string
	Coords  []float64
	Comment string
}

// Image returns an image with the atoms and coordinates of the frame,
// the latter converted to bohr.
func (F *Frame) Image(calc cos.Calculator) (*cos.Image, error) {
	return cos.NewImage(F.Atoms, F.Bohr(), calc)
}

// Bohr returns the coordinates of the frame in bohr.
func (F *Frame) Bohr() []float64 {
	return scaled(F.Coords, cos.AngstromToBohr)
}

// ToAngstrom returns a copy of coords, given in bohr, in Angstrom.
func ToAngstrom(coords []float64) []float64 {
	return scaled(coords, cos.BohrToAngstrom)
}

func scaled(v []float64, factor float64) []float64 {
	ret := make([]float64, len(v))
	floats.ScaleTo(ret, factor, v)
	return ret
}

// WriteXYZ writes every image of c as one XYZ frame, in Angstrom. The ith
// comment, if given, goes in the comment line of the ith frame.
func WriteXYZ(w io.Writer, c cos.ChainOfStates, comments ...string) error {
	bw := bufio.NewWriter(w)
	for i, im := range c.Images() {
		comment := fmt.Sprintf("image %d", i)
		if i < len(comments) {
			comment = comments[i]
		}
		writeFrame(bw, im.Atoms(), ToAngstrom(im.Coords()), comment)
	}
	if err := bw.Flush(); err != nil {
		return cos.WrapError(ErrIO, err, "traj.WriteXYZ")
	}
	return nil
}

// WriteFrame writes F to w as a single XYZ structure.
func WriteFrame(w io.Writer, F *Frame) error {
	if len(F.Coords) != 3*len(F.Atoms) {
		return cos.NewError(cos.ErrShape, "traj.WriteFrame", "%d coordinates for %d atoms", len(F.Coords), len(F.Atoms))
	}
	bw := bufio.NewWriter(w)
	writeFrame(bw, F.Atoms, F.Coords, F.Comment)
	if err := bw.Flush(); err != nil {
		return cos.WrapError(ErrIO, err, "traj.WriteFrame")
	}
	return nil
}

func writeFrame(bw *bufio.Writer, atoms []string, coords []float64, comment string) {
	fmt.Fprintf(bw, "%d\n%s\n", len(atoms), strings.ReplaceAll(comment, "\n", " "))
	for j, s := range atoms {
		fmt.Fprintf(bw, "%-2s %16.10f %16.10f %16.10f\n", s, coords[3*j], coords[3*j+1], coords[3*j+2])
	}
}

// ReadXYZ reads all the frames in r.
func ReadXYZ(r io.Reader) ([]*Frame, error) {
	br := bufio.NewReader(r)
	var ret []*Frame
	for nframe := 0; ; nframe++ {
		line, err := br.ReadString('\n')
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			return ret, nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, cos.WrapError(ErrIO, err, "traj.ReadXYZ")
		}
		natoms, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || natoms <= 0 {
			return nil, cos.NewError(ErrFormat, "traj.ReadXYZ", "frame %d: bad atom count %q", nframe, strings.TrimSpace(line))
		}
		F := &Frame{Atoms: make([]string, natoms), Coords: make([]float64, 3*natoms)}
		comment, err := br.ReadString('\n')
		if err != nil {
			return nil, cos.NewError(ErrFormat, "traj.ReadXYZ", "frame %d: no comment line", nframe)
		}
		F.Comment = strings.TrimRight(comment, "\r\n")
		for i := 0; i < natoms; i++ {
			line, err := br.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				return nil, cos.NewError(ErrFormat, "traj.ReadXYZ", "frame %d: only %d of %d atoms", nframe, i, natoms)
			}
			fields := strings.Fields(line)
			if len(fields) < 4 {
				return nil, cos.NewError(ErrFormat, "traj.ReadXYZ", "frame %d: ill-formed line %d", nframe, i)
			}
			F.Atoms[i] = fields[0]
			for k := 0; k < 3; k++ {
				F.Coords[3*i+k], err = strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, cos.WrapError(ErrFormat, err, "traj.ReadXYZ")
				}
			}
		}
		ret = append(ret, F)
	}
}

// Chain builds a chain with one image per frame, all of them with calculator calc.
func Chain(frames []*Frame, calc cos.Calculator, blend cos.ForceBlend) (*cos.Chain, error) {
	images := make([]*cos.Image, 0, len(frames))
	for _, f := range frames {
		im, err := f.Image(calc)
		if err != nil {
			return nil, cos.ErrDecorate(err, "traj.Chain")
		}
		images = append(images, im)
	}
	return cos.NewChain(images, blend)
}

// Kinds of error specific to this package. Errors returned unwrap to one of them.
var (
	ErrIO     = errors.New("traj: I/O error")
	ErrFormat = errors.New("traj: ill-formed XYZ file")
)
