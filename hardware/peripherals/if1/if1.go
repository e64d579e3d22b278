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

// Package if1 implements the Sinclair Interface I: the shadow ROM that
// pages in over the error restart, and the microdrive ULA with its chain
// of up to eight drives. The RS232 and network sides of the ULA are
// stubbed: they decode but carry nothing.
package if1

import (
	"github.com/jetsetilly/gopherspeccy/disk/microdrive"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
	"github.com/jetsetilly/gopherspeccy/logger"
)

// Control port bits as written to port 0xEF.
const (
	ctrlCommsData = 0x01
	ctrlCommsClk  = 0x02
	ctrlRW        = 0x04
	ctrlErase     = 0x08
)

// Status bits as read from port 0xEF. An active-low interface: the bit
// drops to zero when the condition holds.
const (
	statusWrProt = 0x01
	statusGap    = 0x02
	statusSync   = 0x04
)

// the number of consecutive status reads for which the gap and sync
// pattern holds before flipping. the ROM polls these bits in a tight
// loop; what matters is that both states are seen
const gapLength = 15

// IF1 is the interface state.
type IF1 struct {
	mem *memory.Memory

	rom memory.Page

	active bool

	// Drives holds up to eight cartridges; nil means no cartridge in
	// that drive
	Drives [8]*microdrive.Cartridge

	// the motor chain: one bit per drive, shifted on the falling edge of
	// the comms clock
	motors uint8

	commsData bool
	commsClk  bool

	gapCounter int
	gapState   bool

	// Remap rebuilds the machine's memory map
	Remap func()

	// Event reports page/unpage transitions to the debugger. may be nil
	Event func(detail string)
}

// Attach creates an Interface I and wires it to the memory map, the port
// registry and the opcode fetch stream.
func Attach(mem *memory.Memory, ports *peripherals.Ports) *IF1 {
	i := &IF1{mem: mem}

	i.rom = memory.Page{
		Data:   make([]uint8, memory.PageSize),
		Source: memory.SourceROMCS,
	}

	// the ULA decodes address bits 3 and 4 only
	ports.Register(peripherals.TypeIF1, 0x0018, 0x0000, i.dataRead, i.dataWrite)
	ports.Register(peripherals.TypeIF1, 0x0018, 0x0008, i.controlRead, i.controlWrite)
	ports.Register(peripherals.TypeIF1, 0x0018, 0x0010, i.networkRead, i.networkWrite)

	mem.AddMapper(i.mapper)
	mem.AddFetchHook(i.fetchHook)

	return i
}

// LoadROM copies the Interface I shadow ROM into place.
func (i *IF1) LoadROM(image []uint8) {
	copy(i.rom.Data, image)
}

// Paged returns whether the shadow ROM is currently paged in.
func (i *IF1) Paged() bool { return i.active }

// Reset unpages the shadow ROM and stops every motor.
func (i *IF1) Reset() {
	i.motors = 0
	i.commsData = false
	i.commsClk = false
	i.unpage()
}

// selected returns the cartridge in the lowest-numbered running drive.
func (i *IF1) selected() *microdrive.Cartridge {
	for n := 0; n < 8; n++ {
		if i.motors&(1<<n) != 0 {
			return i.Drives[n]
		}
	}
	return nil
}

// fetchHook pages the shadow ROM on the error restart and the CLOSE#
// entry, and unpages on the shadow ROM's return address.
func (i *IF1) fetchHook(address uint16) {
	switch address {
	case 0x0008, 0x1708:
		i.page()
	case 0x0700:
		i.unpage()
	}
}

func (i *IF1) dataRead(_ uint16) (uint8, bool) {
	c := i.selected()
	if c == nil {
		return 0xff, true
	}
	return c.ReadHead(), true
}

func (i *IF1) dataWrite(_ uint16, data uint8) {
	if c := i.selected(); c != nil {
		c.WriteHead(data)
	}
}

// controlRead is the microdrive status: write-protect, gap and sync of
// the running drive.
func (i *IF1) controlRead(_ uint16) (uint8, bool) {
	ret := uint8(0xff)

	c := i.selected()
	if c == nil {
		return ret, true
	}

	if c.WriteProtect {
		ret &^= statusWrProt
	}

	// the tape loop alternates between gap and data as it spins
	i.gapCounter++
	if i.gapCounter >= gapLength {
		i.gapCounter = 0
		i.gapState = !i.gapState
	}
	if i.gapState {
		ret &^= statusGap | statusSync
	}

	return ret, true
}

// controlWrite drives the microdrive ULA. The falling edge of the comms
// clock rotates the motor chain, shifting the comms data bit in at drive
// one. COMMS_OUT is taken as non-inverted, which is how the reference
// implementation behaves.
func (i *IF1) controlWrite(_ uint16, data uint8) {
	clk := data&ctrlCommsClk != 0

	if i.commsClk && !clk {
		i.motors <<= 1
		if i.commsData {
			i.motors |= 1
		}
		logger.Logf("if1", "motor chain now %08b", i.motors)
	}

	i.commsData = data&ctrlCommsData != 0
	i.commsClk = clk

	if data&ctrlErase != 0 {
		if c := i.selected(); c != nil && !c.WriteProtect {
			// erasure records zeroes as the loop spins
			c.WriteHead(0)
		}
	}
}

func (i *IF1) networkRead(_ uint16) (uint8, bool) {
	// network and RS232 input: nothing on the wire
	return 0xff, true
}

func (i *IF1) networkWrite(_ uint16, _ uint8) {
}

func (i *IF1) page() {
	if i.active {
		return
	}
	i.active = true
	i.mem.ROMCS = true
	if i.Remap != nil {
		i.Remap()
	}
	if i.Event != nil {
		i.Event("page")
	}
}

func (i *IF1) unpage() {
	if !i.active {
		return
	}
	i.active = false
	i.mem.ROMCS = false
	if i.Remap != nil {
		i.Remap()
	}
	if i.Event != nil {
		i.Event("unpage")
	}
}

// mapper overlays the shadow ROM on slot 0.
func (i *IF1) mapper(m *memory.Memory) {
	if !i.active {
		return
	}
	m.MapSlot(0, &i.rom)
}
