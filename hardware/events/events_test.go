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

package events_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/hardware/events"
	"github.com/jetsetilly/gopherspeccy/test"
)

func TestOrdering(t *testing.T) {
	q := events.NewQueue()

	var order []uint32
	q.RegisterHandler(events.TapeEdge, func(payload uint32) {
		order = append(order, payload)
	})

	q.Add(300, events.TapeEdge, 3)
	q.Add(100, events.TapeEdge, 1)
	q.Add(200, events.TapeEdge, 2)
	test.ExpectEquality(t, q.NextEvent, uint32(100))

	q.Tstates = 250
	q.Drain()
	test.ExpectEquality(t, len(order), 2)
	test.ExpectEquality(t, order[0], uint32(1))
	test.ExpectEquality(t, order[1], uint32(2))
	test.ExpectEquality(t, q.NextEvent, uint32(300))
}

func TestTieBreakFIFO(t *testing.T) {
	q := events.NewQueue()

	var order []uint32
	q.RegisterHandler(events.Line, func(payload uint32) {
		order = append(order, payload)
	})

	q.Add(100, events.Line, 1)
	q.Add(100, events.Line, 2)
	q.Add(100, events.Line, 3)

	q.Tstates = 100
	q.Drain()
	test.ExpectEquality(t, len(order), 3)
	test.ExpectEquality(t, order[0], uint32(1))
	test.ExpectEquality(t, order[1], uint32(2))
	test.ExpectEquality(t, order[2], uint32(3))
}

func TestRescheduleFromHandler(t *testing.T) {
	q := events.NewQueue()

	count := 0
	q.RegisterHandler(events.Frame, func(_ uint32) {
		count++
		if count < 3 {
			q.Add(q.Tstates+100, events.Frame, 0)
		}
	})

	q.Add(100, events.Frame, 0)
	q.Tstates = 100
	q.Drain()
	test.ExpectEquality(t, count, 1)
	test.ExpectEquality(t, q.NextEvent, uint32(200))

	q.Tstates = 250
	q.Drain()
	test.ExpectEquality(t, count, 2)
}

func TestCancellation(t *testing.T) {
	q := events.NewQueue()

	fired := false
	q.RegisterHandler(events.TapeEdge, func(_ uint32) { fired = true })

	q.Add(100, events.TapeEdge, 0)
	q.CancelKind(events.TapeEdge)
	test.ExpectSuccess(t, !q.Pending(events.TapeEdge))

	q.Tstates = 200
	q.Drain()
	test.ExpectFailure(t, fired)
}

func TestNewFrame(t *testing.T) {
	q := events.NewQueue()
	q.Add(70000, events.TapeEdge, 0)

	q.Tstates = 69888
	q.NewFrame(69888)
	test.ExpectEquality(t, q.Tstates, uint32(0))
	test.ExpectEquality(t, q.NextEvent, uint32(70000-69888))
}
