/*
 * config.go, part of gocos.
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

	"github.com/go-playground/validator/v10"
	cos "github.com/rmera/gocos"
	"github.com/rmera/gocos/opt"
	"github.com/rmera/gocos/qm"
	"gopkg.in/yaml.v3"
)

// RunConfig is the content of a run file.
type RunConfig struct {
	//Multi-XYZ file. Its first and last frames are the ends of the path.
	Geoms string `yaml:"geoms" validate:"required"`
	//Final path. Compressed according to its extension.
	Out string `yaml:"out" validate:"required"`
	//If given, the trajectory of every cycle is written to files with this prefix.
	Dump string `yaml:"dump"`
	//If given, every image of every cycle is written to this DCD trajectory.
	Movie string `yaml:"movie"`
	//Energy profile image, png or svg.
	Plot string `yaml:"plot"`

	Calc CalcConfig `yaml:"calc"`
	COS  COSConfig  `yaml:"cos"`
	Opt  OptConfig  `yaml:"opt"`
}

// CalcConfig selects the calculator and the auxiliary forces.
type CalcConfig struct {
	Type        string             `yaml:"type" validate:"oneof=mullerbrown lj xtb"`
	//Lennard-Jones well depth (Hartree) and zero-crossing distance (bohr).
	Epsilon     float64            `yaml:"epsilon" validate:"gt=0"`
	Sigma       float64            `yaml:"sigma" validate:"gt=0"`
	XTB         XTBConfig          `yaml:"xtb"`
	HardSphere  *HardSphereConfig  `yaml:"hardsphere"`
	TransTorque *TransTorqueConfig `yaml:"transtorque"`
}

type XTBConfig struct {
	Command      string `yaml:"command" validate:"required"`
	Method       string `yaml:"method" validate:"oneof=gfn0 gfn1 gfn2 gfnff"`
	Charge       int    `yaml:"charge"`
	Multiplicity int    `yaml:"multiplicity" validate:"gte=1"`
	Solvent      string `yaml:"solvent"`
	NCPU         int    `yaml:"ncpu" validate:"gte=1"`
	Keep         bool   `yaml:"keep"`
}

type HardSphereConfig struct {
	Kappa        float64 `yaml:"kappa" validate:"gte=0"`
	Permutations bool    `yaml:"permutations"`
	Fragments    [][]int `yaml:"fragments" validate:"min=2,dive,min=1,dive,gte=0"`
}

// TransTorqueConfig pulls each fragment towards its own position
// in the last structure.
type TransTorqueConfig struct {
	Kappa     float64 `yaml:"kappa" validate:"gte=0"`
	Fragments [][]int `yaml:"fragments" validate:"min=2,dive,min=1,dive,gte=0"`
}

type COSConfig struct {
	Type          string  `yaml:"type" validate:"oneof=gs chain"`
	MaxNodes      int     `yaml:"max_nodes" validate:"gte=1"`
	PerpThresh    float64 `yaml:"perp_thresh" validate:"gt=0"`
	ReparamEvery  int     `yaml:"reparam_every" validate:"gte=1"`
	Workers       int     `yaml:"workers" validate:"gte=1"`
	Perpendicular bool    `yaml:"perpendicular"`
}

type OptConfig struct {
	Gamma          float64 `yaml:"gamma" validate:"gt=0"`
	MaxStep        float64 `yaml:"max_step" validate:"gt=0"`
	StopInWhenFull int     `yaml:"stop_in_when_full" validate:"gte=-1"`
	KeepLast       int     `yaml:"keep_last" validate:"gte=0"`
	LBFGSWhenFull  bool    `yaml:"lbfgs_when_full"`
	GammaMult      bool    `yaml:"gamma_mult"`
	Align          bool    `yaml:"align"`
	RMSForce       float64 `yaml:"rms_force" validate:"gt=0"`
	MaxForce       float64 `yaml:"max_force" validate:"gt=0"`
	RMSForceOnly   bool    `yaml:"rms_force_only"`
	MaxCycles      int     `yaml:"max_cycles" validate:"gte=1"`
}

// DefaultRunConfig returns a configuration with the library defaults.
// Only the file names need to be given.
func DefaultRunConfig() *RunConfig {
	g := cos.DefaultGrowingOptions()
	o := opt.DefaultOptions()
	x := qm.NewXTB()
	return &RunConfig{
		Calc: CalcConfig{
			Type:    "mullerbrown",
			Epsilon: 1,
			Sigma:   1,
			XTB: XTBConfig{
				Command:      x.Command,
				Method:       x.Method,
				Multiplicity: x.Multiplicity,
				NCPU:         x.NCPU,
			},
		},
		COS: COSConfig{
			Type:          "gs",
			MaxNodes:      g.MaxNodes,
			PerpThresh:    g.PerpThresh,
			ReparamEvery:  g.ReparamEvery,
			Workers:       g.Workers,
			Perpendicular: true,
		},
		Opt: OptConfig{
			Gamma:          o.Gamma,
			MaxStep:        o.MaxStep,
			StopInWhenFull: o.StopInWhenFull,
			KeepLast:       o.KeepLast,
			LBFGSWhenFull:  o.LBFGSWhenFull,
			GammaMult:      o.GammaMult,
			Align:          o.Align,
			RMSForce:       o.RMSForce,
			MaxForce:       o.MaxForce,
			RMSForceOnly:   o.RMSForceOnly,
			MaxCycles:      o.MaxCycles,
		},
	}
}

// ParseRunConfig reads a YAML run file. Fields absent from data keep
// their default values.
func ParseRunConfig(data []byte) (*RunConfig, error) {
	c := DefaultRunConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, cos.WrapError(cos.ErrConfig, err, "ParseRunConfig")
	}
	if err := validator.New().Struct(c); err != nil {
		return nil, cos.WrapError(cos.ErrConfig, err, "ParseRunConfig")
	}
	return c, nil
}

// LoadRunConfig reads and validates the run file name.
func LoadRunConfig(name string) (*RunConfig, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading run file: %w", err)
	}
	return ParseRunConfig(data)
}

// GrowingOptions translates the cos section.
func (c *RunConfig) GrowingOptions() *cos.GrowingOptions {
	return &cos.GrowingOptions{
		MaxNodes:     c.COS.MaxNodes,
		PerpThresh:   c.COS.PerpThresh,
		ReparamEvery: c.COS.ReparamEvery,
		Workers:      c.COS.Workers,
		Logger:       logger,
	}
}

// OptOptions translates the opt section. Logger and Hook are left unset.
func (c *RunConfig) OptOptions() *opt.Options {
	o := opt.DefaultOptions()
	oc := c.Opt
	o.Gamma = oc.Gamma
	o.MaxStep = oc.MaxStep
	o.StopInWhenFull = oc.StopInWhenFull
	o.KeepLast = oc.KeepLast
	o.LBFGSWhenFull = oc.LBFGSWhenFull
	o.GammaMult = oc.GammaMult
	o.Align = oc.Align
	o.RMSForce = oc.RMSForce
	o.MaxForce = oc.MaxForce
	o.RMSForceOnly = oc.RMSForceOnly
	o.MaxCycles = oc.MaxCycles
	return o
}
