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

// Package beta128 implements the Beta 128 disk interface: an FD1793
// behind ports 0x1F/0x3F/0x5F/0x7F, a system register on port 0xFF, and
// a TR-DOS ROM that automaps on opcode fetches in the 0x3D00 window.
package beta128

import (
	"github.com/jetsetilly/gopherspeccy/disk/wd1770"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
	"github.com/jetsetilly/gopherspeccy/logger"
)

// System register bits, port 0xFF.
const (
	sysDrive   = 0x03
	sysReset   = 0x04
	sysHalt    = 0x08
	sysSide    = 0x10
	sysDensity = 0x40
)

// Beta128 is the interface state.
type Beta128 struct {
	mem *memory.Memory

	// FDC is the floppy controller with its four drives
	FDC *wd1770.FDC

	rom [2]memory.Page

	system uint8
	active bool

	// Remap rebuilds the machine's memory map
	Remap func()

	// Event reports page/unpage transitions to the debugger. may be nil
	Event func(detail string)
}

// Attach creates a Beta 128 and wires it to the memory map, the port
// registry and the opcode fetch stream.
func Attach(mem *memory.Memory, ports *peripherals.Ports) *Beta128 {
	b := &Beta128{
		mem: mem,
		FDC: wd1770.NewFDC(wd1770.FD1793, 4),
	}

	for n := range b.rom {
		b.rom[n] = memory.Page{
			Data:   make([]uint8, memory.PageSize),
			Source: memory.SourceROMCS,
			Offset: uint16(n) * memory.PageSize,
		}
	}

	ports.Register(peripherals.TypeBeta128, 0x00ff, 0x001f, b.srRead, b.crWrite)
	ports.Register(peripherals.TypeBeta128, 0x00ff, 0x003f, b.trRead, b.trWrite)
	ports.Register(peripherals.TypeBeta128, 0x00ff, 0x005f, b.secRead, b.secWrite)
	ports.Register(peripherals.TypeBeta128, 0x00ff, 0x007f, b.drRead, b.drWrite)
	ports.Register(peripherals.TypeBeta128, 0x00ff, 0x00ff, b.sysRead, b.sysWrite)

	mem.AddMapper(b.mapper)
	mem.AddFetchHook(b.fetchHook)

	return b
}

// LoadROM copies the TR-DOS ROM into place.
func (b *Beta128) LoadROM(image []uint8) {
	for i, v := range image {
		if i >= 2*memory.PageSize {
			break
		}
		b.rom[i/memory.PageSize].Data[i%memory.PageSize] = v
	}
}

// Paged returns whether TR-DOS is currently paged in.
func (b *Beta128) Paged() bool { return b.active }

// Reset unpages TR-DOS and resets the controller.
func (b *Beta128) Reset() {
	b.FDC.MasterReset()
	b.system = 0
	b.unpage()
}

// fetchHook automaps TR-DOS for fetches in the entry window and unmaps
// as soon as execution leaves the ROM area.
func (b *Beta128) fetchHook(address uint16) {
	if !b.active && address&0xff00 == 0x3d00 {
		b.page()
	} else if b.active && address >= 0x4000 {
		b.unpage()
	}
}

func (b *Beta128) srRead(_ uint16) (uint8, bool) {
	if !b.active {
		return 0xff, false
	}
	return b.FDC.StatusRead(), true
}

func (b *Beta128) crWrite(_ uint16, data uint8) {
	if b.active {
		b.FDC.CommandWrite(data)
	}
}

func (b *Beta128) trRead(_ uint16) (uint8, bool) {
	if !b.active {
		return 0xff, false
	}
	return b.FDC.TrackRead(), true
}

func (b *Beta128) trWrite(_ uint16, data uint8) {
	if b.active {
		b.FDC.TrackWrite(data)
	}
}

func (b *Beta128) secRead(_ uint16) (uint8, bool) {
	if !b.active {
		return 0xff, false
	}
	return b.FDC.SectorRead(), true
}

func (b *Beta128) secWrite(_ uint16, data uint8) {
	if b.active {
		b.FDC.SectorWrite(data)
	}
}

func (b *Beta128) drRead(_ uint16) (uint8, bool) {
	if !b.active {
		return 0xff, false
	}
	return b.FDC.DataRead(), true
}

func (b *Beta128) drWrite(_ uint16, data uint8) {
	if b.active {
		b.FDC.DataWrite(data)
	}
}

// sysRead returns INTRQ and DRQ on the top bits.
func (b *Beta128) sysRead(_ uint16) (uint8, bool) {
	if !b.active {
		return 0xff, false
	}
	ret := uint8(0x3f)
	if b.FDC.Intrq() {
		ret |= 0x80
	}
	if b.FDC.StatusRead()&wd1770.SRIdxDrq != 0 {
		ret |= 0x40
	}
	return ret, true
}

// sysWrite is the Beta's system register: drive select, side, density
// and controller reset.
func (b *Beta128) sysWrite(_ uint16, data uint8) {
	if !b.active {
		return
	}

	b.system = data

	b.FDC.SelectDrive(int(data & sysDrive))
	b.FDC.Current.Motor = true

	side := 0
	if data&sysSide == 0 {
		// the side line is inverted on this interface
		side = 1
	}
	b.FDC.SetSide(side)

	b.FDC.SetDoubleDensity(data&sysDensity == 0)

	if data&sysReset == 0 {
		b.FDC.MasterReset()
		logger.Log("beta128", "controller reset")
	}
}

func (b *Beta128) page() {
	b.active = true
	b.mem.ROMCS = true
	if b.Remap != nil {
		b.Remap()
	}
	if b.Event != nil {
		b.Event("page")
	}
}

func (b *Beta128) unpage() {
	if !b.active {
		return
	}
	b.active = false
	b.mem.ROMCS = false
	if b.Remap != nil {
		b.Remap()
	}
	if b.Event != nil {
		b.Event("unpage")
	}
}

// mapper overlays the TR-DOS ROM on slots 0 and 1.
func (b *Beta128) mapper(m *memory.Memory) {
	if !b.active {
		return
	}
	m.MapSlot(0, &b.rom[0])
	m.MapSlot(1, &b.rom[1])
}
