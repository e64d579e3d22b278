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

// Package divide implements the DivIDE interface: an IDE adapter whose
// firmware pages itself over the system ROM by watching the address bus
// for opcode fetches of the ROM's entry points. The same automapping
// logic serves the DivMMC, which differs only in the storage behind it.
package divide

import (
	"github.com/jetsetilly/gopherspeccy/disk/ide"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
	"github.com/jetsetilly/gopherspeccy/logger"
)

// Control register bits.
const (
	ControlConmem = 0x80
	ControlMapram = 0x40
)

// the number of 8K RAM banks on the original 32K board.
const ramBanks = 4

// DivIDE is the interface's paging state and onboard store.
type DivIDE struct {
	mem *memory.Memory

	// IDE is the attached ATA device
	IDE *ide.Interface

	// WriteProtect is the EPROM write-protect jumper
	WriteProtect bool

	control uint8

	// automap tracks whether the opcode stream has us between an entry
	// point and the exit window: whether DivIDE memory *would* be paged
	// in right now if the control flags allow it
	automap bool

	// active is true while our memory overlays slots 0 and 1
	active bool

	eprom memory.Page
	ram   [ramBanks]memory.Page

	// Remap rebuilds the machine's memory map
	Remap func()

	// Event reports page/unpage transitions to the debugger's event
	// breakpoints. may be nil
	Event func(detail string)
}

// Attach creates a DivIDE and wires it to the memory map, the port
// registry and the opcode fetch stream.
func Attach(mem *memory.Memory, ports *peripherals.Ports, ideIface *ide.Interface) *DivIDE {
	d := &DivIDE{
		mem: mem,
		IDE: ideIface,
	}

	d.eprom = memory.Page{
		Data:   make([]uint8, memory.PageSize),
		Source: memory.SourceROMCS,
	}
	for i := range d.ram {
		d.ram[i] = memory.Page{
			Data:           make([]uint8, memory.PageSize),
			Source:         memory.SourceROMCS,
			PageNum:        i,
			SaveToSnapshot: true,
		}
	}

	ports.Register(peripherals.TypeDivIDE, 0x00e3, 0x00a3, d.ideRead, d.ideWrite)
	ports.Register(peripherals.TypeDivIDE, 0x00ff, 0x00e3, nil, d.controlWrite)

	mem.AddMapper(d.mapper)
	mem.AddFetchHook(d.fetchHook)

	return d
}

// LoadEPROM copies a firmware image into the EPROM.
func (d *DivIDE) LoadEPROM(image []uint8) {
	copy(d.eprom.Data, image)
}

// Control returns the control register, for snapshots.
func (d *DivIDE) Control() uint8 { return d.control }

// Paged returns whether DivIDE memory is currently paged in.
func (d *DivIDE) Paged() bool { return d.active }

// RAM returns the given onboard RAM bank, for snapshots.
func (d *DivIDE) RAM(bank int) []uint8 { return d.ram[bank].Data }

// EPROM returns the EPROM contents, for snapshots.
func (d *DivIDE) EPROM() []uint8 { return d.eprom.Data }

// Reset handles the reset condition. DivIDE does not page in on reset;
// only a hard reset clears the sticky MAPRAM bit.
func (d *DivIDE) Reset(hard bool) {
	if hard {
		d.control = 0
	} else {
		d.control &= ControlMapram
	}
	d.automap = false
	d.refreshPageState()
	d.IDE.Reset()
}

// SetControl installs a control register value, as a snapshot load does.
func (d *DivIDE) SetControl(v uint8) {
	d.control = v
	d.refreshPageState()
}

func (d *DivIDE) controlWrite(_ uint16, data uint8) {
	// the MAPRAM bit cannot be reset, only set
	d.control = data | d.control&ControlMapram
	d.refreshPageState()
}

func (d *DivIDE) ideRead(port uint16) (uint8, bool) {
	return d.IDE.Read(portToIDERegister(port)), true
}

func (d *DivIDE) ideWrite(port uint16, data uint8) {
	d.IDE.Write(portToIDERegister(port), data)
}

// portToIDERegister maps the interface's port decode to the ATA register
// file: register select on bits 2-4 of ports 0xA3-0xBF.
func portToIDERegister(port uint16) ide.Register {
	switch port & 0xff {
	case 0xa3:
		return ide.RegData
	case 0xa7:
		return ide.RegError
	case 0xab:
		return ide.RegSectorCount
	case 0xaf:
		return ide.RegSector
	case 0xb3:
		return ide.RegCylinderLow
	case 0xb7:
		return ide.RegCylinderHigh
	case 0xbb:
		return ide.RegHeadDrive
	}
	return ide.RegStatus
}

// fetchHook watches the opcode stream for the automap entry and exit
// addresses. The remapping takes effect after the fetch that triggers it.
func (d *DivIDE) fetchHook(address uint16) {
	switch {
	case address == 0x0000 || address == 0x0008 || address == 0x0038 ||
		address == 0x0066 || address == 0x04c6 || address == 0x0562:
		d.setAutomap(true)
	case address >= 0x3d00 && address <= 0x3dff:
		// the TR-DOS entry window
		d.setAutomap(true)
	case address >= 0x1ff8 && address <= 0x1fff:
		d.setAutomap(false)
	}
}

func (d *DivIDE) setAutomap(state bool) {
	if state == d.automap {
		return
	}
	d.automap = state
	d.refreshPageState()
}

// refreshPageState applies the paging truth table: CONMEM forces us in;
// otherwise the EPROM write-protect jumper or the MAPRAM bit arm the
// automapper.
func (d *DivIDE) refreshPageState() {
	if d.control&ControlConmem != 0 {
		d.page()
	} else if d.WriteProtect || d.control&ControlMapram != 0 {
		if d.automap {
			d.page()
		} else {
			d.unpage()
		}
	} else {
		d.unpage()
	}
}

func (d *DivIDE) page() {
	entering := !d.active
	d.active = true
	d.mem.ROMCS = true

	// remap even when already paged in: a control write may have changed
	// the RAM bank on show
	if d.Remap != nil {
		d.Remap()
	}

	if entering {
		logger.Log("divide", "paged in")
		if d.Event != nil {
			d.Event("page")
		}
	}
}

func (d *DivIDE) unpage() {
	if !d.active {
		return
	}
	d.active = false
	d.mem.ROMCS = false
	if d.Remap != nil {
		d.Remap()
	}
	logger.Log("divide", "paged out")
	if d.Event != nil {
		d.Event("unpage")
	}
}

// mapper rewrites slots 0 and 1 while we are paged in.
func (d *DivIDE) mapper(m *memory.Memory) {
	if !d.active {
		return
	}

	// low bits of the control register give the RAM bank for the upper
	// 8K; only the lowest two bits exist on the original 32K board
	upper := int(d.control) & (ramBanks - 1)

	var lower memory.Page
	upperPage := d.ram[upper]

	if d.control&ControlConmem != 0 {
		lower = d.eprom
		lower.Writable = !d.WriteProtect
		upperPage.Writable = true
	} else if d.control&ControlMapram != 0 {
		lower = d.ram[3]
		lower.Writable = false
		upperPage.Writable = upper != 3
	} else {
		lower = d.eprom
		lower.Writable = false
		upperPage.Writable = true
	}

	m.MapSlot(0, &lower)
	m.MapSlot(1, &upperPage)
}
