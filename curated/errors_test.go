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

package curated_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/gopherspeccy/curated"
	"github.com/jetsetilly/gopherspeccy/test"
)

const (
	testError  = "test error: %v"
	wrapError  = "wrap error: %v"
	otherError = "other error"
)

func TestIdentity(t *testing.T) {
	e := curated.Errorf(testError, 10)
	test.ExpectSuccess(t, curated.IsAny(e))
	test.ExpectSuccess(t, curated.Is(e, testError))
	test.ExpectFailure(t, curated.Is(e, otherError))

	p := errors.New("plain error")
	test.ExpectFailure(t, curated.IsAny(p))
	test.ExpectFailure(t, curated.Is(p, testError))
	test.ExpectFailure(t, curated.Is(nil, testError))
}

func TestChains(t *testing.T) {
	e := curated.Errorf(testError, 10)
	w := curated.Errorf(wrapError, e)

	test.ExpectSuccess(t, curated.Has(w, wrapError))
	test.ExpectSuccess(t, curated.Has(w, testError))
	test.ExpectFailure(t, curated.Has(w, otherError))

	// Is() only looks at the outermost error
	test.ExpectFailure(t, curated.Is(w, testError))
}

func TestDeduplication(t *testing.T) {
	// adjacent duplicate message parts are removed...
	e := curated.Errorf("tape: %v", curated.Errorf("tape: no pilot tone"))
	test.ExpectEquality(t, e.Error(), "tape: no pilot tone")

	// ...but distinct parts are kept
	f := curated.Errorf("snapshot: %v", curated.Errorf("tape: no pilot tone"))
	test.ExpectEquality(t, f.Error(), "snapshot: tape: no pilot tone")
}

func TestHead(t *testing.T) {
	e := curated.Errorf(testError, 10)
	test.ExpectEquality(t, curated.Head(e), testError)
	test.ExpectEquality(t, curated.Head(errors.New("plain")), "plain")
}
