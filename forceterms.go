/*
 * forceterms.go, part of gocos.
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

package cos

import (
	"gonum.org/v1/gonum/floats"
)

type termsCalc struct {
	base  Calculator
	terms []ForceTerm
}

// WithForceTerms returns a calculator that takes the energy from base,
// and adds the forces of all the terms to the forces from base.
// The terms only contribute forces, never energy.
func WithForceTerms(base Calculator, terms ...ForceTerm) Calculator {
	return &termsCalc{base: base, terms: terms}
}

func (T *termsCalc) Compute(atoms []string, coords []float64) (*Result, error) {
	r, err := T.base.Compute(atoms, coords)
	if err != nil {
		return nil, err
	}
	ret := &Result{Energy: r.Energy, Forces: append([]float64(nil), r.Forces...)}
	for _, t := range T.terms {
		f, err := t.Forces(coords)
		if err != nil {
			return nil, ErrDecorate(err, "WithForceTerms")
		}
		if len(f) != len(ret.Forces) {
			return nil, NewError(ErrShape, "WithForceTerms", "force term gave %d forces, %d expected", len(f), len(ret.Forces))
		}
		floats.Add(ret.Forces, f)
	}
	return ret, nil
}
