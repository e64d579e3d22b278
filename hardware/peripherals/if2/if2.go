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

// Package if2 implements the Interface II cartridge slot: a 16K ROM that
// asserts ROMCS for as long as it is inserted.
package if2

import (
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/logger"
)

// IF2 is the cartridge slot.
type IF2 struct {
	mem *memory.Memory

	rom [2]memory.Page

	inserted bool

	// Remap rebuilds the machine's memory map
	Remap func()
}

// Attach creates an Interface II and wires it to the memory map.
func Attach(mem *memory.Memory) *IF2 {
	i := &IF2{mem: mem}

	for n := range i.rom {
		i.rom[n] = memory.Page{
			Data:           make([]uint8, memory.PageSize),
			Source:         memory.SourceCartridge,
			Offset:         uint16(n) * memory.PageSize,
			SaveToSnapshot: true,
		}
	}

	mem.AddMapper(i.mapper)
	return i
}

// Insert loads a cartridge image. Short images repeat the way a half
// populated ROM does on the real bus.
func (i *IF2) Insert(image []uint8) {
	for n := 0; n < 2*memory.PageSize; n++ {
		b := uint8(0xff)
		if len(image) > 0 {
			b = image[n%len(image)]
		}
		i.rom[n/memory.PageSize].Data[n%memory.PageSize] = b
	}

	i.inserted = true
	i.mem.ROMCS = true
	if i.Remap != nil {
		i.Remap()
	}
	logger.Log("if2", "cartridge inserted")
}

// Eject removes the cartridge.
func (i *IF2) Eject() {
	i.inserted = false
	i.mem.ROMCS = false
	if i.Remap != nil {
		i.Remap()
	}
	logger.Log("if2", "cartridge ejected")
}

// Inserted reports whether a cartridge is in the slot.
func (i *IF2) Inserted() bool { return i.inserted }

// ROM returns the cartridge contents, for snapshots.
func (i *IF2) ROM() []uint8 {
	out := make([]uint8, 0, 2*memory.PageSize)
	out = append(out, i.rom[0].Data...)
	out = append(out, i.rom[1].Data...)
	return out
}

// mapper overlays the cartridge on slots 0 and 1.
func (i *IF2) mapper(m *memory.Memory) {
	if !i.inserted {
		return
	}
	m.MapSlot(0, &i.rom[0])
	m.MapSlot(1, &i.rom[1])
}
