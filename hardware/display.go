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
	"github.com/jetsetilly/gopherspeccy/hardware/models"
)

// Display tracks which scanlines have been dirtied by memory writes and
// paces the frame with per-line events. Rendering belongs to the host:
// at the end of each frame the host receives the set of dirty lines and
// reads the screen memory itself.
type Display struct {
	spec *Spectrum

	dirty [models.ScreenLines]bool

	// the line most recently reached by the line events. a host drawing
	// mid-frame must not read below this line
	currentLine int

	// OnFrame receives the dirty line numbers at the end of each frame.
	// may be nil
	OnFrame func(lines []int)
}

func newDisplay(s *Spectrum) *Display {
	d := &Display{spec: s}

	s.Mem.DirtyByte = d.dirtyByte
	s.Mem.DirtyAll = d.DirtyAll

	return d
}

// DirtyAll marks every line for redraw.
func (d *Display) DirtyAll() {
	for i := range d.dirty {
		d.dirty[i] = true
	}
}

// dirtyByte marks the line a display file write lands on.
func (d *Display) dirtyByte(offset uint16) {
	if offset < 0x1800 {
		// invert the interleaved display file address
		line := offset>>5&0xc0 | offset>>2&0x38 | offset>>8&0x07
		d.dirty[line] = true
		return
	}
	if offset < 0x1b00 {
		// an attribute byte dirties its whole character row
		row := int(offset-0x1800) / 32
		for i := 0; i < 8; i++ {
			d.dirty[row*8+i] = true
		}
	}
}

// CurrentLine returns the line the ULA beam has reached.
func (d *Display) CurrentLine() int {
	return d.currentLine
}

// restart begins a fresh frame's line events.
func (d *Display) restart() {
	d.currentLine = 0
	d.DirtyAll()
	d.spec.Events.CancelKind(events.Line)
	d.spec.Events.Add(d.spec.Model.FirstScreenLine, events.Line, 0)
}

// lineEvent advances the beam and schedules the next line.
func (d *Display) lineEvent(_ uint32) {
	d.currentLine++
	if d.currentLine < models.ScreenLines {
		next := d.spec.Model.FirstScreenLine + uint32(d.currentLine)*d.spec.Model.TstatesPerLine
		d.spec.Events.Add(next, events.Line, 0)
	}
}

// endFrame hands the dirty set to the host and resets for the next
// frame. The host sees a consistent snapshot: this runs between
// instructions.
func (d *Display) endFrame() {
	if d.OnFrame != nil {
		lines := make([]int, 0, models.ScreenLines)
		for i, dirty := range d.dirty {
			if dirty {
				lines = append(lines, i)
			}
		}
		d.OnFrame(lines)
	}

	for i := range d.dirty {
		d.dirty[i] = false
	}

	d.currentLine = 0
	d.spec.Events.Add(d.spec.Model.FirstScreenLine, events.Line, 0)
}
