/*
 * history.go, part of gocos.
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

package qn

import (
	"slices"

	cos "github.com/rmera/gocos"
)

// Entry is one recorded pair of displacement S and force difference Y.
// Blocks are the indexes of the images (coordinate blocks) the vectors
// refer to, in order, so len(S) == len(Y) == len(Blocks)*blockSize.
type Entry struct {
	S      []float64
	Y      []float64
	Blocks []int
}

// History is a ring of at most Cap() entries. Once full, pushing a new
// entry drops the oldest one. A History with capacity 0 keeps nothing.
type History struct {
	ring  []Entry
	start int
	n     int
}

// NewHistory returns an empty history with the given capacity.
func NewHistory(capacity int) (*History, error) {
	if capacity < 0 {
		return nil, cos.NewError(cos.ErrConfig, "qn.NewHistory", "negative history capacity %d", capacity)
	}
	return &History{ring: make([]Entry, capacity)}, nil
}

// Cap returns the maximum number of entries kept.
func (H *History) Cap() int {
	return len(H.ring)
}

// Len returns the number of entries currently kept.
func (H *History) Len() int {
	return H.n
}

// At returns the ith entry, 0 being the oldest one.
func (H *History) At(i int) Entry {
	if i < 0 || i >= H.n {
		panic("qn: history index out of range")
	}
	return H.ring[(H.start+i)%len(H.ring)]
}

// Push appends a new entry, dropping the oldest one if the history is full.
// The vectors are copied.
func (H *History) Push(s, y []float64, blocks []int) error {
	if len(s) != len(y) {
		return cos.NewError(cos.ErrShape, "History.Push", "s has %d elements and y %d", len(s), len(y))
	}
	if len(blocks) == 0 || len(s)%len(blocks) != 0 {
		return cos.NewError(cos.ErrShape, "History.Push", "%d elements can't be divided in %d blocks", len(s), len(blocks))
	}
	if len(H.ring) == 0 {
		return nil
	}
	e := Entry{S: slices.Clone(s), Y: slices.Clone(y), Blocks: slices.Clone(blocks)}
	if H.n < len(H.ring) {
		H.ring[(H.start+H.n)%len(H.ring)] = e
		H.n++
		return nil
	}
	H.ring[H.start] = e
	H.start = (H.start + 1) % len(H.ring)
	return nil
}

// Remap updates the block indexes of all entries after images were
// inserted at the positions newInds (given in the new ordering, for a
// chain that now has newSize images), so every entry keeps referring to
// the same images. An entry referring to an image the old chain could not
// have had is an ErrShape error, and leaves the history untouched.
func (H *History) Remap(newInds []int, newSize int) error {
	if len(newInds) == 0 || H.n == 0 {
		return nil
	}
	mapping := Survivors(newInds, newSize)
	for i := 0; i < H.n; i++ {
		for _, b := range H.ring[(H.start+i)%len(H.ring)].Blocks {
			if b < 0 || b >= len(mapping) {
				return cos.NewError(cos.ErrShape, "History.Remap", "block %d can't be remapped, only %d images before the growth", b, len(mapping))
			}
		}
	}
	for i := 0; i < H.n; i++ {
		e := &H.ring[(H.start+i)%len(H.ring)]
		for j, b := range e.Blocks {
			e.Blocks[j] = mapping[b]
		}
	}
	return nil
}

// Reset drops all entries.
func (H *History) Reset() {
	clear(H.ring)
	H.start = 0
	H.n = 0
}

// Survivors returns, in order, the indexes in [0,size) that are not in excluded.
// After images were inserted at excluded, the kth survivor is the new
// index of the image that had index k before the insertion.
func Survivors(excluded []int, size int) []int {
	ret := make([]int, 0, size)
	for i := 0; i < size; i++ {
		if !slices.Contains(excluded, i) {
			ret = append(ret, i)
		}
	}
	return ret
}
