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

// Package zxcf implements the ZXCF CompactFlash interface: banked RAM
// over the system ROM controlled by the memctl register at port 0x10B4,
// with the CF card's ATA registers decoded from the high address bits.
package zxcf

import (
	"github.com/jetsetilly/gopherspeccy/disk/ide"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
)

// memctl bits.
const (
	// memctlUpload makes the banked RAM writable
	memctlUpload = 0x80

	// memctlBank selects which 16K RAM bank overlays the ROM
	memctlBank = 0x0f
)

// ZXCF is the interface state.
type ZXCF struct {
	mem *memory.Memory

	// IDE is the CompactFlash card
	IDE *ide.Interface

	ram [16][2]memory.Page

	memctl uint8
	active bool

	// Remap rebuilds the machine's memory map
	Remap func()
}

// Attach creates a ZXCF and wires it to the memory map and port
// registry.
func Attach(mem *memory.Memory, ports *peripherals.Ports, ideIface *ide.Interface) *ZXCF {
	z := &ZXCF{
		mem: mem,
		IDE: ideIface,
	}

	for bank := range z.ram {
		for half := range z.ram[bank] {
			z.ram[bank][half] = memory.Page{
				Data:           make([]uint8, memory.PageSize),
				Source:         memory.SourceROMCS,
				PageNum:        bank,
				Offset:         uint16(half) * memory.PageSize,
				SaveToSnapshot: true,
			}
		}
	}

	// memctl at 0x10B4; the CF registers share the decode with address
	// bit 11 set, register select on address bits 8-10
	ports.Register(peripherals.TypeZXCF, 0x18f4, 0x10b4, nil, z.memctlWrite)
	ports.Register(peripherals.TypeZXCF, 0x18f4, 0x18b4, z.ideRead, z.ideWrite)

	mem.AddMapper(z.mapper)

	return z
}

// Memctl returns the last memctl byte, for snapshots.
func (z *ZXCF) Memctl() uint8 { return z.memctl }

// Paged returns whether the banked RAM is currently paged in.
func (z *ZXCF) Paged() bool { return z.active }

// RAM returns a 16K bank of the onboard store, for snapshots.
func (z *ZXCF) RAM(bank int) ([]uint8, []uint8) {
	return z.ram[bank][0].Data, z.ram[bank][1].Data
}

// Reset clears memctl, pages the banked RAM in and resets the IDE channel.
func (z *ZXCF) Reset() {
	z.memctl = 0
	z.active = true // the ZXCF boots with its RAM paged in
	z.mem.ROMCS = true
	z.IDE.Reset()
	if z.Remap != nil {
		z.Remap()
	}
}

// SetMemctl installs a memctl value, as a snapshot load does.
func (z *ZXCF) SetMemctl(v uint8) {
	z.memctlWrite(0x10b4, v)
}

func (z *ZXCF) memctlWrite(_ uint16, data uint8) {
	z.memctl = data
	z.active = true
	z.mem.ROMCS = true
	if z.Remap != nil {
		z.Remap()
	}
}

func (z *ZXCF) ideRead(port uint16) (uint8, bool) {
	return z.IDE.Read(ide.Register(port >> 8 & 0x07)), true
}

func (z *ZXCF) ideWrite(port uint16, data uint8) {
	z.IDE.Write(ide.Register(port>>8&0x07), data)
}

// mapper overlays the selected RAM bank on slots 0 and 1.
func (z *ZXCF) mapper(m *memory.Memory) {
	if !z.active {
		return
	}

	bank := int(z.memctl & memctlBank)
	writable := z.memctl&memctlUpload != 0

	lower := z.ram[bank][0]
	lower.Writable = writable
	upper := z.ram[bank][1]
	upper.Writable = writable

	m.MapSlot(0, &lower)
	m.MapSlot(1, &upper)
}
