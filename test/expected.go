// This file is part of threemu.
//
// threemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// threemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with threemu.  If not, see <https://www.gnu.org/licenses/>.

package test

import (
	"fmt"
	"math"
	"testing"
)

// id returns a prefix for the failure message built from the tags given to
// the Expect and Demand functions. the tags are useful when the test is in a
// loop and the failing iteration needs to be identified.
func id(tags ...any) string {
	if len(tags) == 0 {
		return ""
	}
	s := ""
	for _, t := range tags {
		s = fmt.Sprintf("%s%v: ", s, t)
	}
	return s
}

// expect returns whether the value indicates success. bool values of false and
// error values that are not nil indicate failure. a nil value indicates
// success.
func expect(t *testing.T, v any, tags ...any) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		return v
	case error:
		return v == nil
	case nil:
		return true
	default:
		t.Fatalf("%sunsupported type (%T) for expectation testing", id(tags...), v)
	}

	return false
}

// ExpectFailure tests argument v for a failure condition suitable for its type.
// Types bool and error are treated thus:
//
//	bool == false
//	error != nil
//
// If type is nil then the test will fail.
func ExpectFailure(t *testing.T, v any, tags ...any) bool {
	t.Helper()

	if v == nil {
		t.Errorf("%sexpected failure (nil)", id(tags...))
		return false
	}

	if expect(t, v, tags...) {
		switch v.(type) {
		case bool:
			t.Errorf("%sexpected failure (bool)", id(tags...))
		case error:
			t.Errorf("%sexpected failure (error)", id(tags...))
		}
		return false
	}

	return true
}

// ExpectSuccess tests argument v for a success condition suitable for its type.
// Types bool and error are treated thus:
//
//	bool == true
//	error == nil
//
// If type is nil then the test will succeed.
func ExpectSuccess(t *testing.T, v any, tags ...any) bool {
	t.Helper()

	if !expect(t, v, tags...) {
		switch v := v.(type) {
		case bool:
			t.Errorf("%sexpected success (bool)", id(tags...))
		case error:
			t.Errorf("%sexpected success (error: %v)", id(tags...), v)
		}
		return false
	}

	return true
}

// ExpectEquality is used to test equality between one value and another.
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T, tags ...any) bool {
	t.Helper()
	if value != expectedValue {
		t.Errorf("%sequality test of type %T failed: '%v' does not equal '%v'", id(tags...), value, value, expectedValue)
		return false
	}
	return true
}

// ExpectInequality is used to test inequality between one value and another.
// In other words, the test does not want the values to be equal.
func ExpectInequality[T comparable](t *testing.T, value T, expectedValue T, tags ...any) bool {
	t.Helper()
	if value == expectedValue {
		t.Errorf("%sinequality test of type %T failed: '%v' does equal '%v'", id(tags...), value, value, expectedValue)
		return false
	}
	return true
}

// ExpectApproximate is used to test approximate equality between one value and
// another. Tolerance is a fraction of the expected value.
func ExpectApproximate[T ~int | ~uint32 | ~uint64 | ~float64](t *testing.T, value T, expectedValue T, tolerance float64, tags ...any) bool {
	t.Helper()
	tol := math.Abs(float64(expectedValue) * tolerance)
	diff := math.Abs(float64(value) - float64(expectedValue))
	if diff > tol {
		t.Errorf("%sapproximation test of type %T failed: '%v' is not within %.2f of '%v'", id(tags...), value, value, tolerance, expectedValue)
		return false
	}
	return true
}

// ExpectImplements tests whether an instance implements the specified type.
func ExpectImplements[T any](t *testing.T, instance any, tags ...any) bool {
	t.Helper()
	if _, ok := instance.(T); !ok {
		var implements T
		t.Errorf("%simplementation test failed: type %T does not implement %T", id(tags...), instance, &implements)
		return false
	}
	return true
}
