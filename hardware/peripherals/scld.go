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

package peripherals

import (
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
)

// Bits of the SCLD DEC register.
const (
	DECAltDFile   = 0x01
	DECExtColour  = 0x02
	DECHiRes      = 0x04
	DECHiResCol   = 0x38
	DECIntDisable = 0x40
	DECAltMemBank = 0x80
)

// SCLD is the Timex companion chip: the HSR register pages DOCK or EXROM
// chunks over the home map per 8K slot, and the DEC register selects
// video modes, which alternate bank the HSR refers to, and whether the
// frame interrupt reaches the CPU at all.
type SCLD struct {
	mem *memory.Memory

	// HSR: each set bit maps the corresponding 8K slot from the alternate
	// bank instead of the home map
	HSR uint8

	// DEC: the "display enhancement control" byte
	DEC uint8

	// Remap rebuilds the machine's memory map
	Remap func()

	// Retrigger re-checks frame interrupt delivery; called when the
	// interrupt disable bit is cleared
	Retrigger func()

	// DirtyAll marks the whole display for redraw
	DirtyAll func()
}

// NewSCLD is the preferred method of initialisation for the SCLD type.
func NewSCLD(mem *memory.Memory) *SCLD {
	return &SCLD{mem: mem}
}

// Reset clears both registers.
func (s *SCLD) Reset() {
	s.HSR = 0
	s.DEC = 0
}

// IntDisabled reports whether the DEC register is suppressing the frame
// interrupt.
func (s *SCLD) IntDisabled() bool {
	return s.DEC&DECIntDisable != 0
}

// AltMemBank reports which side the HSR pages in: true for EXROM.
func (s *SCLD) AltMemBank() bool {
	return s.DEC&DECAltMemBank != 0
}

// ApplySlots overlays the alternate bank onto the live slots per the HSR.
// Called from the machine's memory map builder after the home map has
// been laid down.
func (s *SCLD) ApplySlots() {
	if s.HSR == 0 {
		return
	}

	side := s.mem.Dock
	if s.AltMemBank() {
		side = s.mem.Exrom
	}

	for i := 0; i < 8; i++ {
		if s.HSR&(1<<i) != 0 {
			s.mem.MapSlot(i, side[i])
		}
	}
}

// HSRRead implements the ReadFunc for port 0xF4.
func (s *SCLD) HSRRead(_ uint16) (uint8, bool) {
	return s.HSR, true
}

// HSRWrite implements the WriteFunc for port 0xF4.
func (s *SCLD) HSRWrite(_ uint16, data uint8) {
	s.HSR = data
	if s.Remap != nil {
		s.Remap()
	}
}

// DECRead implements the ReadFunc for port 0xFF.
func (s *SCLD) DECRead(_ uint16) (uint8, bool) {
	return s.DEC, true
}

// DECWrite implements the WriteFunc for port 0xFF.
func (s *SCLD) DECWrite(_ uint16, data uint8) {
	old := s.DEC
	s.DEC = data

	// a change of screen mode or hires colour repaints everything
	if (old^data)&(DECAltDFile|DECExtColour|DECHiRes) != 0 ||
		(data&DECHiRes != 0 && (old^data)&DECHiResCol != 0) {
		if s.DirtyAll != nil {
			s.DirtyAll()
		}
	}

	// re-enabling interrupts inside the acceptance window raises any
	// suppressed frame interrupt
	if old&DECIntDisable != 0 && data&DECIntDisable == 0 {
		if s.Retrigger != nil {
			s.Retrigger()
		}
	}

	if (old^data)&DECAltMemBank != 0 {
		if s.Remap != nil {
			s.Remap()
		}
	}
}
