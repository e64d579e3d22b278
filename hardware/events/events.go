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

// Package events is the scheduler at the heart of the emulation: an
// ordered queue of things that must happen at a known T-state in the
// future. The main loop runs the CPU until the next due event and then
// drains the queue; handlers frequently reschedule themselves, which is
// how the frame interrupt, display lines, tape edges and disk timings all
// stay in step with the CPU.
//
// The queue also owns the T-state counter. At the end of every frame one
// frame's worth of T-states is subtracted from the counter and from every
// queued entry, so neither ever wraps.
package events

// Kind labels a queue entry. The set is closed: dispatch is a handler
// table indexed by Kind.
type Kind int

// List of valid Kind values.
const (
	// Null events are skipped on dispatch. cancellation rewrites an
	// entry's kind to Null rather than unlinking it
	Null Kind = iota

	Frame
	Line
	TapeEdge
	NMI
	IndexPulse
	CmdDone
	DebuggerTime
	Page
	Unpage

	numKinds
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Frame:
		return "frame"
	case Line:
		return "line"
	case TapeEdge:
		return "tape edge"
	case NMI:
		return "nmi"
	case IndexPulse:
		return "index pulse"
	case CmdDone:
		return "command done"
	case DebuggerTime:
		return "debugger time"
	case Page:
		return "page"
	case Unpage:
		return "unpage"
	}
	return "unknown"
}

// noEvents is a large value meaning no events are due.
const noEvents = 0xffffffff

// Handler is the function called when an event falls due.
type Handler func(payload uint32)

type entry struct {
	tstates uint32
	kind    Kind
	payload uint32
}

// Queue is a min-ordered list of future events plus the T-state counter
// they are measured against.
type Queue struct {
	// Tstates is the current time, advanced by the memory and port
	// implementations as the CPU works
	Tstates uint32

	// NextEvent caches the due time of the queue's head for the hot loop
	NextEvent uint32

	entries  []entry
	handlers [numKinds]Handler
}

// NewQueue is the preferred method of initialisation for the Queue type.
func NewQueue() *Queue {
	return &Queue{
		NextEvent: noEvents,
		entries:   make([]entry, 0, 16),
	}
}

// RegisterHandler attaches the dispatch function for a Kind. Registering
// replaces any previous handler.
func (q *Queue) RegisterHandler(kind Kind, handler Handler) {
	q.handlers[kind] = handler
}

// Add inserts an event at the correct place in the queue. Entries with
// equal due times dispatch in insertion order.
func (q *Queue) Add(tstates uint32, kind Kind, payload uint32) {
	e := entry{tstates: tstates, kind: kind, payload: payload}

	i := len(q.entries)
	for ; i > 0; i-- {
		if q.entries[i-1].tstates <= tstates {
			break
		}
	}
	q.entries = append(q.entries, entry{})
	copy(q.entries[i+1:], q.entries[i:])
	q.entries[i] = e

	if tstates < q.NextEvent {
		q.NextEvent = tstates
	}
}

// Drain pops and dispatches every entry that has fallen due. Handlers may
// add further events, including their own reschedule.
func (q *Queue) Drain() {
	for len(q.entries) > 0 && q.entries[0].tstates <= q.Tstates {
		e := q.entries[0]

		// remove the entry before dispatching so a handler that inspects
		// the queue sees a consistent state
		q.entries = q.entries[1:]
		q.updateNext()

		if e.kind == Null {
			continue
		}
		if h := q.handlers[e.kind]; h != nil {
			h(e.payload)
		}
	}
}

// CancelKind marks every entry of the given kind as Null. The entries are
// pruned lazily on dispatch.
func (q *Queue) CancelKind(kind Kind) {
	for i := range q.entries {
		if q.entries[i].kind == kind {
			q.entries[i].kind = Null
		}
	}
}

// Pending returns true if an entry of the given kind is queued.
func (q *Queue) Pending(kind Kind) bool {
	for i := range q.entries {
		if q.entries[i].kind == kind {
			return true
		}
	}
	return false
}

// NewFrame subtracts one frame's worth of T-states from the counter and
// from every queued entry.
func (q *Queue) NewFrame(tstatesPerFrame uint32) {
	q.Tstates -= tstatesPerFrame
	for i := range q.entries {
		q.entries[i].tstates -= tstatesPerFrame
	}
	q.updateNext()
}

// Reset empties the queue.
func (q *Queue) Reset() {
	q.entries = q.entries[:0]
	q.NextEvent = noEvents
}

func (q *Queue) updateNext() {
	if len(q.entries) == 0 {
		q.NextEvent = noEvents
		return
	}
	q.NextEvent = q.entries[0].tstates
}
