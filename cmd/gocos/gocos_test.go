/*
 * gocos_test.go, part of gocos.
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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	cos "github.com/rmera/gocos"
	"github.com/rmera/gocos/calc"
	"github.com/rmera/gocos/qm"
	"github.com/rmera/gocos/traj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRunConfig(Te *testing.T) {
	c, err := ParseRunConfig([]byte(`
geoms: ends.xyz
out: path.xyz
cos:
  max_nodes: 7
opt:
  max_step: 0.05
  rms_force_only: true
`))
	require.NoError(Te, err)
	assert.Equal(Te, "mullerbrown", c.Calc.Type)
	assert.Equal(Te, "gs", c.COS.Type)
	assert.Equal(Te, 7, c.GrowingOptions().MaxNodes)
	assert.Equal(Te, cos.DefaultGrowingOptions().PerpThresh, c.GrowingOptions().PerpThresh)
	o := c.OptOptions()
	assert.Equal(Te, 0.05, o.MaxStep)
	assert.True(Te, o.RMSForceOnly)
	assert.Equal(Te, 10, o.KeepLast)
	assert.True(Te, o.LBFGSWhenFull)
}

func TestParseRunConfigErrors(Te *testing.T) {
	bad := []string{
		"out: path.xyz\n",
		"geoms: a.xyz\nout: b.xyz\ncalc:\n  type: dft\n",
		"geoms: a.xyz\nout: b.xyz\nopt:\n  max_step: -1\n",
		"geoms: a.xyz\nout: b.xyz\nopt:\n  stop_in_when_full: -2\n",
		"geoms: a.xyz\nout: b.xyz\ncalc:\n  hardsphere:\n    fragments: [[0, 1]]\n",
		"geoms: [a.xyz\n",
	}
	for _, b := range bad {
		_, err := ParseRunConfig([]byte(b))
		assert.True(Te, errors.Is(err, cos.ErrConfig), b)
	}
	_, err := LoadRunConfig(filepath.Join(Te.TempDir(), "none.yaml"))
	assert.Error(Te, err)
}

func TestSelfMatching(Te *testing.T) {
	frags := [][]int{{0, 1}, {2}, {3, 4}}
	a, b := selfMatching(frags)
	assert.Len(Te, a, 6)
	assert.Len(Te, b, 6)
	assert.Equal(Te, []int{0, 1}, a[[2]int{0, 2}])
	assert.Equal(Te, []int{0, 1}, b[[2]int{2, 0}])
	_, ok := a[[2]int{1, 1}]
	assert.False(Te, ok)
}

func TestBuildCalculator(Te *testing.T) {
	first := []float64{0, 0, 0, 0.5, 0, 0, 5, 0, 0}
	last := []float64{0, 1, 0, 0.5, 1, 0, 5, 1, 0}
	c := &CalcConfig{Type: "lj", Epsilon: 1, Sigma: 1,
		HardSphere:  &HardSphereConfig{Kappa: 1, Fragments: [][]int{{0, 1}, {2}}},
		TransTorque: &TransTorqueConfig{Kappa: 1, Fragments: [][]int{{0, 1}, {2}}},
	}
	C, err := buildCalculator(c, first, last)
	require.NoError(Te, err)
	r, err := C.Compute([]string{"Ar", "Ar", "Ar"}, last)
	require.NoError(Te, err)
	assert.Len(Te, r.Forces, 9)
	c.TransTorque.Fragments = [][]int{{0, 1}, {7}}
	_, err = buildCalculator(c, first, last)
	assert.True(Te, errors.Is(err, cos.ErrConfig))
}

func TestXTBCalculator(Te *testing.T) {
	c, err := ParseRunConfig([]byte("geoms: a.xyz\nout: b.xyz\ncalc:\n  type: xtb\n  xtb:\n    method: gfn1\n    charge: 1\n    ncpu: 2\n"))
	require.NoError(Te, err)
	C, err := buildCalculator(&c.Calc, []float64{0, 0, 0}, []float64{1, 0, 0})
	require.NoError(Te, err)
	x, ok := C.(*qm.XTB)
	require.True(Te, ok)
	assert.Equal(Te, "gfn1", x.Method)
	assert.Equal(Te, 1, x.Charge)
	assert.Equal(Te, 1, x.Multiplicity)
	assert.Equal(Te, 2, x.NCPU)
	_, err = ParseRunConfig([]byte("geoms: a.xyz\nout: b.xyz\ncalc:\n  type: xtb\n  xtb:\n    method: pm7\n"))
	assert.True(Te, errors.Is(err, cos.ErrConfig))
}

func writeEnds(Te *testing.T, dir string) string {
	name := filepath.Join(dir, "ends.xyz")
	//the minima, in Angstrom.
	a, b := calc.MBMinima[0], calc.MBMinima[1]
	s := cos.BohrToAngstrom
	data := fmt.Sprintf("1\nreactant\nX %.12f %.12f 0\n1\nproduct\nX %.12f %.12f 0\n", s*a[0], s*a[1], s*b[0], s*b[1])
	require.NoError(Te, os.WriteFile(name, []byte(data), 0o644))
	return name
}

func TestRunPath(Te *testing.T) {
	dir := Te.TempDir()
	c := DefaultRunConfig()
	c.Geoms = writeEnds(Te, dir)
	c.Out = filepath.Join(dir, "path.xyz.gz")
	c.Dump = filepath.Join(dir, "cycle")
	c.Plot = filepath.Join(dir, "profile.svg")
	c.Movie = filepath.Join(dir, "movie.dcd")
	c.COS.MaxNodes = 3
	c.COS.PerpThresh = 1e4
	c.Opt.MaxStep = 0.05
	c.Opt.StopInWhenFull = 2
	c.Opt.MaxCycles = 20
	require.NoError(Te, runPath(c))
	frames, err := traj.ReadFile(c.Out)
	require.NoError(Te, err)
	require.Len(Te, frames, 5)
	assert.Contains(Te, frames[0].Comment, "energy")
	//the fixed ends come back as they were read.
	a := calc.MBMinima[0]
	assert.InDeltaSlice(Te, []float64{a[0] * cos.BohrToAngstrom, a[1] * cos.BohrToAngstrom, 0}, frames[0].Coords, 1e-9)
	for _, name := range []string{"cycle_000.xyz", "movie.dcd", "profile.svg", "profile_evolution.svg"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(Te, err, name)
	}
}

func TestRunPathChain(Te *testing.T) {
	dir := Te.TempDir()
	c := DefaultRunConfig()
	c.Geoms = writeEnds(Te, dir)
	c.Out = filepath.Join(dir, "path.xyz")
	c.COS.Type = "chain"
	c.COS.MaxNodes = 4
	c.Opt.KeepLast = 0
	c.Opt.MaxCycles = 3
	require.NoError(Te, runPath(c))
	frames, err := traj.ReadFile(c.Out)
	require.NoError(Te, err)
	assert.Len(Te, frames, 6)
}
