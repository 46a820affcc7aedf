/*
 * dcd.go, part of gocos.
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

package traj

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	cos "github.com/rmera/gocos"
)

const dcdTitleLen = 80

// DCDWriter writes structures as frames of a Charmm/NAMD binary
// trajectory, so whole optimizations can be followed in VMD and similar
// programs. Coordinates are stored in single precision.
type DCDWriter struct {
	w      io.WriteSeeker
	natoms int32
	frames int32
	fields [3][]float32
	endian binary.ByteOrder
}

// NewDCDWriter writes the header of a trajectory with natoms atoms to w.
func NewDCDWriter(w io.WriteSeeker, natoms int) (*DCDWriter, error) {
	if natoms <= 0 {
		return nil, cos.NewError(cos.ErrShape, "traj.NewDCDWriter", "%d atoms", natoms)
	}
	D := &DCDWriter{w: w, natoms: int32(natoms), endian: binary.LittleEndian}
	for i := range D.fields {
		D.fields[i] = make([]float32, natoms)
	}
	if err := D.writeHeader(); err != nil {
		return nil, err
	}
	return D, nil
}

// Frames returns the number of frames written so far.
func (D *DCDWriter) Frames() int {
	return int(D.frames)
}

func (D *DCDWriter) writeHeader() error {
	buf := new(bytes.Buffer)
	put := func(v any) {
		binary.Write(buf, D.endian, v) //writing to a bytes.Buffer doesn't fail
	}
	put(int32(84))
	put([]byte("CORD"))
	//frames, initial time, step interval.
	put([3]int32{0, 0, 1})
	//5 zeros plus natom-nfreat
	put([6]int32{})
	//delta time
	put(float32(1))
	//no unit cell, then 8 zeros, then the Charmm version.
	put(int32(0))
	put([8]int32{})
	put(int32(24))
	put(int32(84))

	put(int32(4 + 2*dcdTitleLen))
	put(int32(2))
	title := bytes.Repeat([]byte{' '}, 2*dcdTitleLen)
	copy(title, "Created by gocos")
	put(title)
	put(int32(4 + 2*dcdTitleLen))

	put(int32(4))
	put(D.natoms)
	put(int32(4))
	if _, err := D.w.Write(buf.Bytes()); err != nil {
		return cos.WrapError(ErrIO, err, "traj.DCDWriter.writeHeader")
	}
	return nil
}

// WriteFrame appends one structure, in Angstrom, to the trajectory.
func (D *DCDWriter) WriteFrame(coords []float64) error {
	if len(coords) != 3*int(D.natoms) {
		return cos.NewError(cos.ErrShape, "traj.DCDWriter.WriteFrame", "%d coordinates for %d atoms", len(coords), D.natoms)
	}
	for i := 0; i < int(D.natoms); i++ {
		for k := range D.fields {
			D.fields[k][i] = float32(coords[3*i+k])
		}
	}
	buf := new(bytes.Buffer)
	blocksize := 4 * D.natoms
	for _, f := range D.fields {
		binary.Write(buf, D.endian, blocksize)
		binary.Write(buf, D.endian, f)
		binary.Write(buf, D.endian, blocksize)
	}
	if _, err := D.w.Write(buf.Bytes()); err != nil {
		return cos.WrapError(ErrIO, err, "traj.DCDWriter.WriteFrame")
	}
	D.frames++
	return D.updateFrames()
}

// WriteChain appends every image of c as a frame, converted to Angstrom.
func (D *DCDWriter) WriteChain(c cos.ChainOfStates) error {
	for _, im := range c.Images() {
		if err := D.WriteFrame(ToAngstrom(im.Coords())); err != nil {
			return cos.ErrDecorate(err, "traj.DCDWriter.WriteChain")
		}
	}
	return nil
}

// DCD requires the number of frames at the beginning of the file.
func (D *DCDWriter) updateFrames() error {
	current, err := D.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return cos.WrapError(ErrIO, err, "traj.DCDWriter.updateFrames")
	}
	//the number of frames goes after the block size and the magic number.
	if _, err := D.w.Seek(8, io.SeekStart); err != nil {
		return cos.WrapError(ErrIO, err, "traj.DCDWriter.updateFrames")
	}
	if err := binary.Write(D.w, D.endian, D.frames); err != nil {
		return cos.WrapError(ErrIO, err, "traj.DCDWriter.updateFrames")
	}
	if _, err := D.w.Seek(current, io.SeekStart); err != nil {
		return cos.WrapError(ErrIO, err, "traj.DCDWriter.updateFrames")
	}
	return nil
}

// WriteDCDFile writes the images of c as the frames of the DCD file name.
func WriteDCDFile(name string, c cos.ChainOfStates) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return cos.WrapError(ErrIO, err, "traj.WriteDCDFile")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cos.WrapError(ErrIO, cerr, "traj.WriteDCDFile")
		}
	}()
	D, err := NewDCDWriter(f, c.CoordsPerImage()/3)
	if err != nil {
		return cos.ErrDecorate(err, "traj.WriteDCDFile")
	}
	return D.WriteChain(c)
}
