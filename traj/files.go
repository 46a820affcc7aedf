/*
 * files.go, part of gocos.
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
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	cos "github.com/rmera/gocos"
)

// WriteFile writes the chain c to the file name, compressed with zstd if
// the name ends in .zst, with gzip if it ends in .gz, and as plain text
// otherwise. An existing file is overwritten.
func WriteFile(name string, c cos.ChainOfStates, comments ...string) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return cos.WrapError(ErrIO, err, "traj.WriteFile")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cos.WrapError(ErrIO, cerr, "traj.WriteFile")
		}
	}()
	w, err := newWriter(name, f)
	if err != nil {
		return cos.WrapError(ErrIO, err, "traj.WriteFile")
	}
	if err := WriteXYZ(w, c, comments...); err != nil {
		w.Close()
		return cos.ErrDecorate(err, "traj.WriteFile")
	}
	//Closing the compressor flushes it.
	if err := w.Close(); err != nil {
		return cos.WrapError(ErrIO, err, "traj.WriteFile")
	}
	return nil
}

// ReadFile reads all the frames in the file name, decompressing it
// according to its extension, as in WriteFile.
func ReadFile(name string) ([]*Frame, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, cos.WrapError(ErrIO, err, "traj.ReadFile")
	}
	defer f.Close()
	r, err := newReader(name, f)
	if err != nil {
		return nil, cos.WrapError(ErrIO, err, "traj.ReadFile")
	}
	defer r.Close()
	frames, err := ReadXYZ(r)
	if err != nil {
		return nil, cos.ErrDecorate(err, "traj.ReadFile")
	}
	return frames, nil
}

func newWriter(name string, w io.Writer) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst":
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	case ".gz":
		return gzip.NewWriter(w), nil
	}
	return nopWriteCloser{w}, nil
}

func newReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst":
		d, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zstdReadCloser{d}, nil
	case ".gz":
		return gzip.NewReader(r)
	}
	return io.NopCloser(r), nil
}

// zstd.Decoder's Close returns nothing, so it is not an io.ReadCloser.
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
