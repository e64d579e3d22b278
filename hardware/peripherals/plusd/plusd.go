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

// Package plusd implements the MGT +D disk and printer interface: a
// WD1772 with two drives, an 8K ROM and 8K of RAM paged over the system
// ROM, and a Centronics port. Paging is driven by reads and writes of
// port 0xE7: the ROM patches call it to flip the interface in and out.
package plusd

import (
	"github.com/jetsetilly/gopherspeccy/disk/wd1770"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
	"github.com/jetsetilly/gopherspeccy/logger"
)

// PlusD is the interface state.
type PlusD struct {
	mem *memory.Memory

	// FDC is the floppy controller with its two drives
	FDC *wd1770.FDC

	rom memory.Page
	ram memory.Page

	control uint8
	active  bool

	// Remap rebuilds the machine's memory map
	Remap func()

	// Event reports page/unpage transitions to the debugger. may be nil
	Event func(detail string)

	// PrinterWrite receives Centronics data bytes. may be nil
	PrinterWrite func(data uint8)

	// PrinterPresent gates the printer status port
	PrinterPresent bool
}

// Attach creates a +D and wires it to the memory map and port registry.
func Attach(mem *memory.Memory, ports *peripherals.Ports) *PlusD {
	p := &PlusD{
		mem: mem,
		FDC: wd1770.NewFDC(wd1770.WD1772, 2),
	}

	p.rom = memory.Page{
		Data:           make([]uint8, memory.PageSize),
		Source:         memory.SourceROMCS,
		SaveToSnapshot: true,
	}
	p.ram = memory.Page{
		Data:           make([]uint8, memory.PageSize),
		Writable:       true,
		Source:         memory.SourceROMCS,
		PageNum:        1,
		SaveToSnapshot: true,
	}

	ports.Register(peripherals.TypePlusD, 0x00ff, 0x00e3, p.srRead, p.crWrite)
	ports.Register(peripherals.TypePlusD, 0x00ff, 0x00eb, p.trRead, p.trWrite)
	ports.Register(peripherals.TypePlusD, 0x00ff, 0x00f3, p.secRead, p.secWrite)
	ports.Register(peripherals.TypePlusD, 0x00ff, 0x00fb, p.drRead, p.drWrite)
	ports.Register(peripherals.TypePlusD, 0x00ff, 0x00ef, nil, p.cnWrite)
	ports.Register(peripherals.TypePlusD, 0x00ff, 0x00e7, p.patchRead, p.patchWrite)
	ports.Register(peripherals.TypePlusD, 0x00ff, 0x00f7, p.printerRead, p.printerWrite)

	mem.AddMapper(p.mapper)

	return p
}

// LoadROM copies the +D system ROM into place.
func (p *PlusD) LoadROM(image []uint8) {
	copy(p.rom.Data, image)
}

// RAM returns the interface's RAM, for snapshots.
func (p *PlusD) RAM() []uint8 { return p.ram.Data }

// Control returns the control register, for snapshots.
func (p *PlusD) Control() uint8 { return p.control }

// Paged returns whether the interface is currently paged in.
func (p *PlusD) Paged() bool { return p.active }

// Reset unpages the interface and resets the controller.
func (p *PlusD) Reset() {
	p.FDC.MasterReset()
	p.unpage()
}

// Page maps the interface over the system ROM. The NMI button does this
// before pulling the line.
func (p *PlusD) Page() { p.page() }

// Unpage restores the system ROM.
func (p *PlusD) Unpage() { p.unpage() }

func (p *PlusD) srRead(_ uint16) (uint8, bool) { return p.FDC.StatusRead(), true }
func (p *PlusD) crWrite(_ uint16, data uint8)  { p.FDC.CommandWrite(data) }

func (p *PlusD) trRead(_ uint16) (uint8, bool) { return p.FDC.TrackRead(), true }
func (p *PlusD) trWrite(_ uint16, data uint8)  { p.FDC.TrackWrite(data) }

func (p *PlusD) secRead(_ uint16) (uint8, bool) { return p.FDC.SectorRead(), true }
func (p *PlusD) secWrite(_ uint16, data uint8)  { p.FDC.SectorWrite(data) }

// drRead returns the data register. With no ready drive selected the
// interface leaves the bus floating, which is what the observed +D
// revision does.
func (p *PlusD) drRead(_ uint16) (uint8, bool) {
	if p.FDC.Current == nil || !p.FDC.Current.Ready() {
		return 0xff, false
	}
	return p.FDC.DataRead(), true
}

func (p *PlusD) drWrite(_ uint16, data uint8) { p.FDC.DataWrite(data) }

// cnWrite is the control register: drive select on bits 0-1, printer
// strobe on bit 6, head select on bit 7.
func (p *PlusD) cnWrite(_ uint16, data uint8) {
	p.control = data

	drive := 0
	if data&0x03 == 2 {
		drive = 1
	}
	side := 0
	if data&0x80 != 0 {
		side = 1
	}

	p.FDC.SetSide(side)

	if p.FDC.Current != p.FDC.Drives[drive] {
		// the motor follows the selected drive
		motor := p.FDC.Current.Motor
		p.FDC.Current.Motor = false
		p.FDC.SelectDrive(drive)
		p.FDC.Current.Motor = motor
	}
}

// patchRead pages the interface in. The read itself attaches nothing:
// the value seen is the floating bus.
func (p *PlusD) patchRead(_ uint16) (uint8, bool) {
	p.page()
	return 0xff, false
}

func (p *PlusD) patchWrite(_ uint16, _ uint8) {
	p.unpage()
}

func (p *PlusD) printerRead(_ uint16) (uint8, bool) {
	if !p.PrinterPresent {
		return 0xff, true
	}
	// bit 7 is busy; this printer never is
	return 0x7f, true
}

func (p *PlusD) printerWrite(_ uint16, data uint8) {
	if p.PrinterWrite != nil {
		p.PrinterWrite(data)
	}
}

func (p *PlusD) page() {
	entering := !p.active
	p.active = true
	p.mem.ROMCS = true
	if p.Remap != nil {
		p.Remap()
	}
	if entering {
		logger.Log("plusd", "paged in")
		if p.Event != nil {
			p.Event("page")
		}
	}
}

func (p *PlusD) unpage() {
	if !p.active {
		return
	}
	p.active = false
	p.mem.ROMCS = false
	if p.Remap != nil {
		p.Remap()
	}
	logger.Log("plusd", "paged out")
	if p.Event != nil {
		p.Event("unpage")
	}
}

// mapper rewrites slots 0 and 1 while the interface is paged in: ROM
// below, RAM above.
func (p *PlusD) mapper(m *memory.Memory) {
	if !p.active {
		return
	}
	m.MapSlot(0, &p.rom)
	m.MapSlot(1, &p.ram)
}
