/*
 * interpolate.go, part of gocos.
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
	"github.com/rmera/gocos/traj"
	"github.com/spf13/cobra"
)

var (
	interpGeoms  string
	interpOut    string
	interpImages int
)

var interpolateCmd = &cobra.Command{
	Use:   "interpolate",
	Short: "Write a linear interpolation between two structures",
	RunE: func(cmd *cobra.Command, args []string) error {
		first, last, err := readEnds(interpGeoms)
		if err != nil {
			return err
		}
		C, err := traj.Chain([]*traj.Frame{first, last}, nil, nil)
		if err != nil {
			return err
		}
		if err := C.Interpolate(interpImages); err != nil {
			return err
		}
		logger.Info("Interpolated", "images", C.Len(), "out", interpOut)
		return traj.WriteFile(interpOut, C)
	},
}

func init() {
	interpolateCmd.Flags().StringVarP(&interpGeoms, "geoms", "g", "", "XYZ file with the two ends")
	interpolateCmd.Flags().StringVarP(&interpOut, "out", "o", "interpolated.xyz", "output file")
	interpolateCmd.Flags().IntVarP(&interpImages, "images", "n", 8, "images between the ends")
	_ = interpolateCmd.MarkFlagRequired("geoms")
	rootCmd.AddCommand(interpolateCmd)
}
