/*
 * run.go, part of gocos.
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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cos "github.com/rmera/gocos"
	"github.com/rmera/gocos/calc"
	"github.com/rmera/gocos/cosplot"
	"github.com/rmera/gocos/frag"
	"github.com/rmera/gocos/opt"
	"github.com/rmera/gocos/qm"
	"github.com/rmera/gocos/traj"
	"github.com/spf13/cobra"
)

var runFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Optimize a path as described in a run file",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := LoadRunConfig(runFile)
		if err != nil {
			return err
		}
		return runPath(c)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "config", "c", "run.yaml", "YAML run file")
	rootCmd.AddCommand(runCmd)
}

// readEnds returns the first and last frames of the file name.
func readEnds(name string) (first, last *traj.Frame, err error) {
	frames, err := traj.ReadFile(name)
	if err != nil {
		return nil, nil, err
	}
	if len(frames) < 2 {
		return nil, nil, cos.NewError(cos.ErrConfig, "readEnds", "%s has %d structures, at least 2 needed", name, len(frames))
	}
	return frames[0], frames[len(frames)-1], nil
}

// buildCalculator returns the calculator described in c, with its auxiliary
// forces. first and last are the coordinates, in bohr, of the ends of the path.
func buildCalculator(c *CalcConfig, first, last []float64) (cos.Calculator, error) {
	var base cos.Calculator
	switch c.Type {
	case "lj":
		lj, err := calc.NewLennardJones(c.Epsilon, c.Sigma)
		if err != nil {
			return nil, err
		}
		base = lj
	case "xtb":
		x := qm.NewXTB()
		x.Command = c.XTB.Command
		x.Method = c.XTB.Method
		x.Charge = c.XTB.Charge
		x.Multiplicity = c.XTB.Multiplicity
		x.Solvent = c.XTB.Solvent
		x.NCPU = c.XTB.NCPU
		x.Keep = c.XTB.Keep
		x.Logger = logger
		base = x
	default:
		base = calc.MullerBrown{}
	}
	var terms []cos.ForceTerm
	if hs := c.HardSphere; hs != nil {
		o := frag.DefaultHardSphereOptions()
		o.Kappa = hs.Kappa
		o.Permutations = hs.Permutations
		H, err := frag.NewHardSphere(first, hs.Fragments, o)
		if err != nil {
			return nil, err
		}
		logger.Info("Hard-sphere forces", "radii", H.Radii())
		terms = append(terms, H)
	}
	if tt := c.TransTorque; tt != nil {
		aMats, bMats := selfMatching(tt.Fragments)
		o := frag.DefaultTransTorqueOptions()
		o.Kappa = tt.Kappa
		o.Logger = logger
		T, err := frag.NewTransTorque(tt.Fragments, tt.Fragments, last, aMats, bMats, o)
		if err != nil {
			return nil, err
		}
		terms = append(terms, T)
	}
	if len(terms) == 0 {
		return base, nil
	}
	return cos.WithForceTerms(base, terms...), nil
}

// selfMatching matches each fragment m to the same atoms in B, whatever the
// fragment n it is paired with.
func selfMatching(frags [][]int) (aMats, bMats map[[2]int][]int) {
	aMats = make(map[[2]int][]int)
	bMats = make(map[[2]int][]int)
	for m, mfrag := range frags {
		for n := range frags {
			if m == n {
				continue
			}
			aMats[[2]int{m, n}] = mfrag
			bMats[[2]int{n, m}] = mfrag
		}
	}
	return aMats, bMats
}

// buildChain returns the chain of states described in c.
func buildChain(c *RunConfig, first, last *traj.Frame, calculator cos.Calculator) (cos.ChainOfStates, error) {
	a, err := first.Image(calculator)
	if err != nil {
		return nil, err
	}
	b, err := last.Image(calculator)
	if err != nil {
		return nil, err
	}
	if c.COS.Type == "gs" {
		G, err := cos.NewGrowingString(a, b, c.GrowingOptions())
		if err != nil {
			return nil, err
		}
		return G, nil
	}
	var blend cos.ForceBlend = cos.Plain{}
	if c.COS.Perpendicular {
		blend = cos.Perpendicular{}
	}
	C, err := cos.NewChain([]*cos.Image{a, b}, blend)
	if err != nil {
		return nil, err
	}
	if err := C.Interpolate(c.COS.MaxNodes); err != nil {
		return nil, err
	}
	C.FixEnds = true
	C.Workers = c.COS.Workers
	return C, nil
}

func runPath(c *RunConfig) error {
	first, last, err := readEnds(c.Geoms)
	if err != nil {
		return err
	}
	calculator, err := buildCalculator(&c.Calc, first.Bohr(), last.Bohr())
	if err != nil {
		return err
	}
	chain, err := buildChain(c, first, last, calculator)
	if err != nil {
		return err
	}
	var movie *traj.DCDWriter
	if c.Movie != "" {
		f, err := os.Create(c.Movie)
		if err != nil {
			return err
		}
		defer f.Close()
		if movie, err = traj.NewDCDWriter(f, chain.CoordsPerImage()/3); err != nil {
			return err
		}
	}
	o := c.OptOptions()
	o.Logger = logger
	var evolution [][]float64
	o.Hook = func(cycle int, ch cos.ChainOfStates) error {
		e, err := ch.Energies()
		if err != nil {
			return err
		}
		evolution = append(evolution, e)
		if movie != nil {
			if err := movie.WriteChain(ch); err != nil {
				return err
			}
		}
		if c.Dump == "" {
			return nil
		}
		return traj.WriteFile(fmt.Sprintf("%s_%03d.xyz", c.Dump, cycle), ch)
	}
	O, err := opt.NewStringOptimizer(chain, o)
	if err != nil {
		return err
	}
	R, err := O.Run()
	if err != nil {
		return err
	}
	logger.Info("Done", "report", R.String())
	comments := make([]string, chain.Len())
	for i := range comments {
		comments[i] = fmt.Sprintf("image %d", i)
		if i < len(R.Energies) {
			comments[i] = fmt.Sprintf("image %d energy %.10g", i, R.Energies[i])
		}
	}
	if err := traj.WriteFile(c.Out, chain, comments...); err != nil {
		return err
	}
	if c.Plot == "" {
		return nil
	}
	title := strings.TrimSuffix(filepath.Base(c.Out), filepath.Ext(c.Out))
	if err := cosplot.ChainProfile(chain, title, c.Plot); err != nil {
		return err
	}
	ext := filepath.Ext(c.Plot)
	return cosplot.EnergyEvolution(evolution, title, strings.TrimSuffix(c.Plot, ext)+"_evolution"+ext)
}
