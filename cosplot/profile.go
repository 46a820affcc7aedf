/*
 * profile.go, part of gocos.
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

// Package cosplot plots the energies along a chain of states.
package cosplot

import (
	"errors"
	"image/color"

	cos "github.com/rmera/gocos"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Size of the saved plots.
var (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

func basicPlot(title, xlabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Energy relative to the first image"
	p.Add(plotter.NewGrid())
	return p
}

// relative returns the points (x_i, e_i - e_0), where x_i is i, or
// i/(n-1) if normalized.
func relative(energies []float64, normalized bool) plotter.XYs {
	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i].X = float64(i)
		if normalized && len(energies) > 1 {
			pts[i].X /= float64(len(energies) - 1)
		}
		pts[i].Y = e - energies[0]
	}
	return pts
}

// EnergyProfile plots the energies of the images, one point per image,
// and saves the plot to filename. The format is given by the extension
// (png, svg, pdf, eps...).
func EnergyProfile(energies []float64, title, filename string) error {
	if len(energies) == 0 {
		return cos.NewError(cos.ErrShape, "cosplot.EnergyProfile", "no energies to plot")
	}
	p := basicPlot(title, "Image")
	line, points, err := plotter.NewLinePoints(relative(energies, false))
	if err != nil {
		return cos.WrapError(cos.ErrShape, err, "cosplot.EnergyProfile")
	}
	line.Color = color.RGBA{R: 200, A: 255}
	points.Color = color.RGBA{R: 200, A: 255}
	p.Add(line, points)
	return save(p, filename, "cosplot.EnergyProfile")
}

// ChainProfile plots the current energies of the images of c.
func ChainProfile(c cos.ChainOfStates, title, filename string) error {
	e, err := c.Energies()
	if err != nil {
		return cos.ErrDecorate(err, "cosplot.ChainProfile")
	}
	return EnergyProfile(e, title, filename)
}

// EnergyEvolution plots the energy profile of every cycle in cycles
// along the normalized position in the chain, so chains of different
// lengths can be compared. Older cycles are drawn in lighter colors.
func EnergyEvolution(cycles [][]float64, title, filename string) error {
	if len(cycles) == 0 {
		return cos.NewError(cos.ErrShape, "cosplot.EnergyEvolution", "no cycles to plot")
	}
	p := basicPlot(title, "Position along the chain")
	for i, e := range cycles {
		if len(e) == 0 {
			continue
		}
		line, err := plotter.NewLine(relative(e, true))
		if err != nil {
			return cos.WrapError(cos.ErrShape, err, "cosplot.EnergyEvolution")
		}
		//from light gray to full red
		frac := float64(i+1) / float64(len(cycles))
		line.Color = color.RGBA{R: uint8(200 + 55*frac), G: uint8(200 * (1 - frac)), B: uint8(200 * (1 - frac)), A: 255}
		p.Add(line)
	}
	return save(p, filename, "cosplot.EnergyEvolution")
}

func save(p *plot.Plot, filename, caller string) error {
	if err := p.Save(Width, Height, filename); err != nil {
		return cos.WrapError(errPlot, err, caller)
	}
	return nil
}

var errPlot = errors.New("cosplot: can't save plot")
