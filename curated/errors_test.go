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

package curated_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jetsetilly/threemu/curated"
	"github.com/jetsetilly/threemu/test"
)

const testError = "test error: %v"
const testErrorB = "test error B: %v"

func TestDuplicateErrors(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	test.ExpectEquality(t, e.Error(), "test error: foo")

	// packing errors of the same type next to each other causes
	// one of them to be dropped
	f := curated.Errorf(testError, e)
	test.ExpectEquality(t, f.Error(), "test error: foo")
}

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	test.ExpectSuccess(t, curated.Is(e, testError))

	// Has() should fail because we haven't included testErrorB anywhere in the error
	test.ExpectFailure(t, curated.Has(e, testErrorB))

	// packing errors of the same type next to each other causes
	// one of them to be dropped
	f := curated.Errorf(testErrorB, e)
	test.ExpectFailure(t, curated.Is(f, testError))
	test.ExpectSuccess(t, curated.Is(f, testErrorB))
	test.ExpectSuccess(t, curated.Has(f, testError))
	test.ExpectSuccess(t, curated.Has(f, testErrorB))

	// IsAny should return true for these errors also
	test.ExpectSuccess(t, curated.IsAny(e))
	test.ExpectSuccess(t, curated.IsAny(f))
}

func TestPlainErrors(t *testing.T) {
	// test plain errors that haven't been curated
	e := fmt.Errorf("plain error")
	test.ExpectFailure(t, curated.IsAny(e))
	test.ExpectFailure(t, curated.Has(e, testError))

	// a plain error wrapping a curated error
	f := fmt.Errorf("wrapped: %w", curated.Errorf(testError, "foo"))
	test.ExpectSuccess(t, curated.Has(f, testError))
}

type typedFault struct {
	address uint32
}

func (f typedFault) Error() string {
	return fmt.Sprintf("fault at %08x", f.address)
}

func TestUnwrap(t *testing.T) {
	e := curated.Errorf(testError, typedFault{address: 0x10007000})

	var f typedFault
	test.ExpectSuccess(t, errors.As(e, &f))
	test.ExpectEquality(t, f.address, uint32(0x10007000))

	// curated error with no error values unwraps to nil
	test.ExpectEquality(t, errors.Unwrap(curated.Errorf(testError, "foo")), nil)
}
