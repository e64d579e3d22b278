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

// Package usource implements the Currah uSource: an 8K assembler ROM
// that toggles itself over the system ROM on every opcode fetch of its
// magic address.
package usource

import (
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
)

// the opcode fetch that flips the interface in and out.
const toggleAddress = 0x2bae

// USource is the interface state.
type USource struct {
	mem *memory.Memory

	rom memory.Page

	active bool

	// Remap rebuilds the machine's memory map
	Remap func()

	// Event reports page/unpage transitions to the debugger. may be nil
	Event func(detail string)
}

// Attach creates a uSource and wires it to the memory map and the opcode
// fetch stream.
func Attach(mem *memory.Memory) *USource {
	u := &USource{mem: mem}
	u.rom = memory.Page{
		Data:   make([]uint8, memory.PageSize),
		Source: memory.SourceROMCS,
	}

	mem.AddMapper(u.mapper)
	mem.AddFetchHook(u.fetchHook)
	return u
}

// LoadROM copies the uSource ROM into place.
func (u *USource) LoadROM(image []uint8) {
	copy(u.rom.Data, image)
}

// Paged returns whether the ROM is currently paged in.
func (u *USource) Paged() bool { return u.active }

// Reset unpages the ROM.
func (u *USource) Reset() {
	u.active = false
	u.mem.ROMCS = false
	if u.Remap != nil {
		u.Remap()
	}
}

func (u *USource) fetchHook(address uint16) {
	if address != toggleAddress {
		return
	}

	u.active = !u.active
	u.mem.ROMCS = u.active
	if u.Remap != nil {
		u.Remap()
	}
	if u.Event != nil {
		if u.active {
			u.Event("page")
		} else {
			u.Event("unpage")
		}
	}
}

// mapper overlays the ROM on slot 0.
func (u *USource) mapper(m *memory.Memory) {
	if !u.active {
		return
	}
	m.MapSlot(0, &u.rom)
}
