/*
 * errors.go, part of gocos.
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
	"errors"
	"fmt"
	"slices"
	"strings"
)

// The kinds of error in goCos. Every Error unwraps to one of these, so
// callers can use errors.Is.
var (
	//Coordinate or force vectors with lengths inconsistent with the chain.
	ErrShape = errors.New("goCos: shape mismatch")
	//Invalid construction parameters.
	ErrConfig = errors.New("goCos: invalid configuration")
	//Near-zero denominators. These are normally absorbed and only logged.
	ErrNumericDegeneracy = errors.New("goCos: numeric degeneracy")
	//Failures in the external energy/force evaluator.
	ErrCalculator = errors.New("goCos: calculator error")
)

// Error is the error type returned by all packages in this library. The Decorate method allows to add
// information when the error is passed up, without changing its type.
type Error struct {
	message  string
	kind     error
	cause    error
	deco     []string
	critical bool
}

// NewError returns a critical Error of the given kind, created by the function caller.
func NewError(kind error, caller, format string, args ...any) Error {
	return Error{message: fmt.Sprintf(format, args...), kind: kind, deco: []string{caller}, critical: true}
}

// WrapError returns an Error of the given kind that also wraps cause.
func WrapError(kind, cause error, caller string) Error {
	return Error{message: cause.Error(), kind: kind, cause: cause, deco: []string{caller}, critical: true}
}

// Error returns a string with an error message.
func (err Error) Error() string {
	msg := err.message
	if err.kind != nil {
		msg = err.kind.Error() + ": " + msg
	}
	if len(err.deco) > 0 {
		msg += " (" + strings.Join(err.deco, " <- ") + ")"
	}
	return msg
}

// Decorate will add the dec string to a copy of the decoration slice of strings of the error,
// and return the resulting slice. An empty string just returns the current slice.
func (err Error) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	//Copies of an Error must not share the backing array.
	return append(slices.Clip(err.deco), dec)
}

// Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

// Unwrap gives the kind of the error and, if present, the wrapped error.
func (err Error) Unwrap() []error {
	ret := make([]error, 0, 2)
	if err.kind != nil {
		ret = append(ret, err.kind)
	}
	if err.cause != nil {
		ret = append(ret, err.cause)
	}
	return ret
}

// ErrDecorate adds the caller's name to err if err is an Error
// and returns it. Other errors are returned unchanged.
func ErrDecorate(err error, caller string) error {
	var e Error
	if errors.As(err, &e) {
		e.deco = e.Decorate(caller)
		return e
	}
	return err
}
