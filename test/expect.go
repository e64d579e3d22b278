// This file is part of GopherSpeccy.
//
// GopherSpeccy is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherSpeccy is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherSpeccy.  If not, see <https://www.gnu.org/licenses/>.

package test

import (
	"testing"
)

// ExpectEquality is used to test equality between one value and another.
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()
	if value != expectedValue {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v'", value, value, expectedValue)
		return false
	}
	return true
}

// ExpectInequality is used to test inequality between one value and
// another. In other words, the test passes if the values are not equal.
func ExpectInequality[T comparable](t *testing.T, value T, expectedValue T) bool {
	t.Helper()
	if value == expectedValue {
		t.Errorf("inequality test of type %T failed: '%v' does equal '%v'", value, value, expectedValue)
		return false
	}
	return true
}

// ExpectApproximate is used to test approximate equality between one value
// and another, within the given tolerance. A tolerance of 0.1 means that
// value must be within 10% of the expected value.
func ExpectApproximate[T ~float32 | ~float64 | ~int](t *testing.T, value T, expectedValue T, tolerance float64) bool {
	t.Helper()

	top := float64(expectedValue) * (1 + tolerance)
	bot := float64(expectedValue) * (1 - tolerance)
	if bot > top {
		top, bot = bot, top
	}

	if float64(value) < bot || float64(value) > top {
		t.Errorf("approximation test of type %T failed: '%v' is outside the range '%v' to '%v'", value, value, bot, top)
		return false
	}
	return true
}

// ExpectSuccess tests argument v for a success condition. Success
// conditions are:
//
//	bool == true
//	error == nil
//	nil
//
// Any other type will cause the test to fail.
func ExpectSuccess(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if !v {
			t.Errorf("success test of type %T failed", v)
			return false
		}
	case error:
		if v != nil {
			t.Errorf("success test of type %T failed: %v", v, v)
			return false
		}
	case nil:
		return true
	default:
		t.Fatalf("unsupported type (%T) for success test", v)
		return false
	}

	return true
}

// ExpectFailure tests argument v for a failure condition. Failure
// conditions are:
//
//	bool == false
//	error != nil
//
// Any other type will cause the test to fail.
func ExpectFailure(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if v {
			t.Errorf("failure test of type %T failed", v)
			return false
		}
	case error:
		if v == nil {
			t.Errorf("failure test of type %T failed", v)
			return false
		}
	case nil:
		t.Errorf("failure test of type %T failed", v)
		return false
	default:
		t.Fatalf("unsupported type (%T) for failure test", v)
		return false
	}

	return true
}
