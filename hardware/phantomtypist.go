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
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
)

// PhantomTypist types the tape-loading command after a reset with a tape
// queued: LOAD "" on a 48K BASIC prompt, a bare ENTER on the 128K
// loader menu. One keystroke spans several frames so the ROM's keyboard
// scan sees press and release.

// how many frames the machine is given to reach its prompt.
const typistBootDelay = 160

// frames per keystroke phase.
const typistKeyFrames = 4

type typistStroke struct {
	key   peripherals.Key
	shift bool
}

// PhantomTypist is the keystroke state machine.
type PhantomTypist struct {
	spec *Spectrum

	strokes []typistStroke

	wait    int
	stroke  int
	phase   int
	retired bool
}

// NewPhantomTypist is the preferred method of initialisation for the
// PhantomTypist type.
func NewPhantomTypist(s *Spectrum) *PhantomTypist {
	t := &PhantomTypist{spec: s}
	t.restart()
	return t
}

func (t *PhantomTypist) restart() {
	t.wait = typistBootDelay
	t.stroke = 0
	t.phase = 0
	t.retired = false

	if t.spec.Model.Has128Paging {
		// the 128K boot menu defaults to the tape loader
		t.strokes = []typistStroke{
			{key: peripherals.KeyEnter},
		}
	} else {
		// LOAD "" : the J keyword, two symbol-shifted Ps, enter
		t.strokes = []typistStroke{
			{key: peripherals.KeyJ},
			{key: peripherals.KeyP, shift: true},
			{key: peripherals.KeyP, shift: true},
			{key: peripherals.KeyEnter},
		}
	}
}

func (t *PhantomTypist) done() bool {
	return t.retired
}

// frame advances the typist by one video frame.
func (t *PhantomTypist) frame() {
	if t.retired {
		return
	}

	if t.wait > 0 {
		t.wait--
		return
	}

	if t.stroke >= len(t.strokes) {
		t.spec.ULA.ReleaseAll()
		t.retired = true
		t.spec.PlayTape()
		return
	}

	st := t.strokes[t.stroke]

	switch t.phase {
	case 0:
		if st.shift {
			t.spec.ULA.KeyDown(peripherals.KeySymShift)
		}
		t.spec.ULA.KeyDown(st.key)
	case typistKeyFrames:
		t.spec.ULA.KeyUp(st.key)
		t.spec.ULA.KeyUp(peripherals.KeySymShift)
	}

	t.phase++
	if t.phase > typistKeyFrames*2 {
		t.phase = 0
		t.stroke++
	}
}
