/*
 * xtb.go, part of gocos.
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
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	cos "github.com/rmera/gocos"
	"github.com/rmera/gocos/traj"
)

const xtbName = "gocos"

// XTB computes energies and gradients with the xtb program. Coordinates
// are in bohr, energies in Hartree and forces in Hartree/bohr, as in the
// rest of gocos. The geometry is given to xtb in Angstrom.
// Note that the default method is NOT considered part of the API, so it
// can change.
type XTB struct {
	Command string
	//gfn0, gfn1, gfn2 or gfnff. Anything else means gfn2.
	Method       string
	Charge       int
	Multiplicity int
	//ALPB solvent. If empty, one is chosen from Dielectric, if possible.
	Solvent    string
	Dielectric float64
	NCPU       int
	//Parent of the scratch directories. Empty means the system default.
	Dir string
	//Keep the scratch directories.
	Keep   bool
	Logger *slog.Logger
}

// NewXTB returns an xtb calculator with the default settings.
func NewXTB() *XTB {
	X := new(XTB)
	X.SetDefaults()
	return X
}

// SetDefaults sets a neutral singlet GFN2 calculation using half the CPUs.
func (X *XTB) SetDefaults() {
	X.Command = os.ExpandEnv("xtb")
	X.Method = "gfn2"
	X.Multiplicity = 1
	X.NCPU = max(1, runtime.NumCPU()/2)
}

// Args returns the command-line arguments for a gradient calculation
// on the geometry in the file xyzname.
func (X *XTB) Args(xyzname string) []string {
	args := []string{xyzname, "--grad", "--chrg", strconv.Itoa(X.Charge), "--uhf", strconv.Itoa(max(0, X.Multiplicity-1))}
	if X.NCPU > 1 {
		args = append(args, "-P", strconv.Itoa(X.NCPU))
	}
	switch {
	case X.Method == "gfnff":
		args = append(args, "--gfnff")
	case isInString([]string{"gfn0", "gfn1", "gfn2"}, X.Method):
		args = append(args, "--gfn", strings.TrimPrefix(X.Method, "gfn"))
	default:
		args = append(args, "--gfn", "2")
	}
	solvent := X.Solvent
	if solvent == "" && X.Dielectric > 0 {
		solvent = dielectric2Solvent[int(X.Dielectric)]
	}
	//gfn0 doesn't support implicit solvation
	if solvent != "" && X.Method != "gfn0" {
		args = append(args, "--alpb", solvent)
	}
	return args
}

// Compute runs xtb on the given geometry.
func (X *XTB) Compute(atoms []string, coords []float64) (*cos.Result, error) {
	log := X.Logger
	if log == nil {
		log = slog.Default()
	}
	dir, err := os.MkdirTemp(X.Dir, "gocos-xtb-")
	if err != nil {
		return nil, cos.WrapError(ErrNotRunning, err, "XTB.Compute")
	}
	if X.Keep {
		log.Debug("xtb scratch directory", "dir", dir)
	} else {
		defer os.RemoveAll(dir)
	}
	xyzname := xtbName + ".xyz"
	if err := writeGeometry(filepath.Join(dir, xyzname), atoms, coords); err != nil {
		return nil, cos.ErrDecorate(err, "XTB.Compute")
	}
	if err := X.run(dir, xyzname); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(dir, "gradient"))
	if err != nil {
		return nil, cos.WrapError(ErrNoGradient, err, "XTB.Compute")
	}
	defer f.Close()
	energy, grad, err := ReadGradient(f)
	if err != nil {
		return nil, cos.ErrDecorate(err, "XTB.Compute")
	}
	if len(grad) != len(coords) {
		return nil, cos.NewError(ErrNoGradient, "XTB.Compute", "%d gradient components read, %d expected", len(grad), len(coords))
	}
	forces := make([]float64, len(grad))
	for i, g := range grad {
		forces[i] = -g
	}
	return &cos.Result{Energy: energy, Forces: forces}, nil
}

func (X *XTB) run(dir, xyzname string) error {
	out, err := os.Create(filepath.Join(dir, xtbName+".out"))
	if err != nil {
		return cos.WrapError(ErrNotRunning, err, "XTB.run")
	}
	defer out.Close()
	command := exec.Command(X.Command, X.Args(xyzname)...)
	command.Dir = dir
	command.Stdout = out
	command.Stderr = out
	command.Env = append(os.Environ(), fmt.Sprintf("OMP_NUM_THREADS=%d", max(1, X.NCPU)))
	if err := command.Run(); err != nil {
		return cos.WrapError(ErrNotRunning, err, "XTB.run")
	}
	if !normalTermination(filepath.Join(dir, xtbName+".out")) {
		return cos.NewError(ErrNotRunning, "XTB.run", "xtb terminated abnormally in %s", dir)
	}
	return nil
}

func writeGeometry(name string, atoms []string, coords []float64) error {
	F := &traj.Frame{Atoms: atoms, Coords: traj.ToAngstrom(coords), Comment: "gocos"}
	f, err := os.Create(name)
	if err != nil {
		return cos.WrapError(ErrNotRunning, err, "writeGeometry")
	}
	if err := traj.WriteFrame(f, F); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return cos.WrapError(ErrNotRunning, err, "writeGeometry")
	}
	return nil
}

// normalTermination checks that the xtb output doesn't report an abnormal termination.
func normalTermination(outname string) bool {
	data, err := os.ReadFile(outname)
	if err != nil {
		return false
	}
	return !strings.Contains(string(data), "abnormal termination of x")
}

// ReadGradient reads the energy and the Cartesian gradient, in atomic units, from
// the last cycle in a Turbomole-style gradient file, as written by xtb --grad.
func ReadGradient(r io.Reader) (float64, []float64, error) {
	var energy float64
	var grad []float64
	var cycle [][]string
	found := false
	s := bufio.NewScanner(r)
	flush := func() error {
		//a cycle has one line with 4 fields for each atom, then one with 3 fields.
		natoms := len(cycle) / 2
		if len(cycle)%2 != 0 || natoms == 0 {
			return cos.NewError(ErrNoGradient, "ReadGradient", "ill-formed cycle with %d lines", len(cycle))
		}
		grad = make([]float64, 0, 3*natoms)
		for _, fields := range cycle[natoms:] {
			if len(fields) != 3 {
				return cos.NewError(ErrNoGradient, "ReadGradient", "ill-formed gradient line %q", strings.Join(fields, " "))
			}
			for _, v := range fields {
				g, err := strconv.ParseFloat(strings.Replace(v, "D", "E", 1), 64)
				if err != nil {
					return cos.WrapError(ErrNoGradient, err, "ReadGradient")
				}
				grad = append(grad, g)
			}
		}
		cycle = cycle[:0]
		return nil
	}
	inCycle := false
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		switch {
		case strings.HasPrefix(line, "cycle"):
			if inCycle {
				if err := flush(); err != nil {
					return 0, nil, err
				}
			}
			e, err := cycleEnergy(line)
			if err != nil {
				return 0, nil, err
			}
			energy = e
			inCycle = true
			found = true
		case strings.HasPrefix(line, "$"):
			if inCycle {
				if err := flush(); err != nil {
					return 0, nil, err
				}
				inCycle = false
			}
		case inCycle && line != "":
			cycle = append(cycle, strings.Fields(line))
		}
	}
	if err := s.Err(); err != nil {
		return 0, nil, cos.WrapError(ErrNoGradient, err, "ReadGradient")
	}
	if inCycle {
		if err := flush(); err != nil {
			return 0, nil, err
		}
	}
	if !found {
		return 0, nil, cos.NewError(ErrNoGradient, "ReadGradient", "no gradient found")
	}
	return energy, grad, nil
}

// cycleEnergy gets the energy from a line like
// "cycle =      1    SCF energy =    -5.0705   |dE/dxyz| =  0.000000".
func cycleEnergy(line string) (float64, error) {
	_, after, ok := strings.Cut(line, "energy =")
	fields := strings.Fields(after)
	if !ok || len(fields) == 0 {
		return 0, cos.NewError(ErrNoEnergy, "ReadGradient", "no energy in %q", line)
	}
	e, err := strconv.ParseFloat(strings.Replace(fields[0], "D", "E", 1), 64)
	if err != nil {
		return 0, cos.WrapError(ErrNoEnergy, err, "ReadGradient")
	}
	return e, nil
}
