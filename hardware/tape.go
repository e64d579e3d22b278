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

package hardware

import (
	"github.com/jetsetilly/gopherspeccy/hardware/events"
	"github.com/jetsetilly/gopherspeccy/logger"
	"github.com/jetsetilly/gopherspeccy/tape"
)

// InsertTape loads a block list into the tape deck. Any playing tape
// stops first; the machine state is untouched, which is what lets a
// failed media load leave the previous medium in place: build the block
// list first, insert only on success.
func (s *Spectrum) InsertTape(blocks []tape.Block) {
	s.StopTape()
	s.Tape = tape.NewDeck(blocks)
	s.Tape.CyclesPerMs = s.Model.CyclesPerMs

	// a freshly inserted tape invites the phantom typist
	s.Typist = NewPhantomTypist(s)

	logger.Logf("tape", "inserted: %d blocks", len(blocks))
}

// EjectTape removes the tape.
func (s *Spectrum) EjectTape() {
	s.StopTape()
	s.Tape = nil
}

// PlayTape starts the tape rolling: the first edge is scheduled and the
// EAR input starts moving.
func (s *Spectrum) PlayTape() {
	if s.Tape == nil || s.tapePlaying {
		return
	}
	s.tapePlaying = true
	s.Events.Add(s.Events.Tstates+1, events.TapeEdge, 0)
	logger.Log("tape", "playing")
}

// StopTape stops the tape. Pending edge events are cancelled.
func (s *Spectrum) StopTape() {
	if !s.tapePlaying {
		return
	}
	s.tapePlaying = false
	s.Events.CancelKind(events.TapeEdge)
	logger.Log("tape", "stopped")
}

// TapePlaying reports whether the tape is rolling.
func (s *Spectrum) TapePlaying() bool {
	return s.tapePlaying
}

// tapeEdgeEvent advances the tape to its next edge, flipping the EAR
// level the ULA reads.
func (s *Spectrum) tapeEdgeEvent(_ uint32) {
	if s.Tape == nil || !s.tapePlaying {
		return
	}

	s.ULA.EarBit ^= 0x40

	tstates, flags := s.Tape.NextEdge()

	if flags&tape.FlagStop != 0 {
		s.StopTape()
		return
	}
	if flags&tape.FlagStop48 != 0 && !s.Model.Has128Paging {
		s.StopTape()
		return
	}

	s.Events.Add(s.Events.Tstates+tstates, events.TapeEdge, 0)
}
