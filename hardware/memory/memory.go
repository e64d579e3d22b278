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

// Package memory implements the banked, contended address space shared by
// every machine in the family. The 64K seen by the Z80 is eight 8K slots,
// each separately resolved for reading and writing; machine paging,
// Timex DOCK/EXROM switching and ROMCS interface overlays all work by
// rewriting the slots.
//
// All page buffers live in one arena owned by the Memory type. Slots and
// bank maps refer to them by Page values whose Data slices point into the
// arena, so there are no cyclic references to chase.
package memory

import (
	"github.com/jetsetilly/gopherspeccy/hardware/events"
)

// ROMPages is the number of 8K chunks in the ROM arena: up to four 16K
// ROMs (the +3 has four).
const ROMPages = 8

// RAMPages is the number of 8K chunks in the RAM arena: sixteen 16K pages
// covers the Scorpion's 256K.
const RAMPages = 32

// FetchHook is an observer of opcode fetches. Storage interfaces that
// automap on entry/exit addresses register one of these.
type FetchHook func(address uint16)

// Mapper rewrites the live slots on behalf of a ROMCS interface. Mappers
// run, in registration order, whenever the memory map is rebuilt while the
// ROMCS line is asserted.
type Mapper func(m *Memory)

// Memory is the Z80-visible address space.
type Memory struct {
	clk *events.Queue

	// ContendDelay returns the ULA delay for the current T-state. nil on
	// machines with no contention
	ContendDelay func(tstates uint32) uint32

	// the arena. every page buffer used by the base machine lives here;
	// interfaces with their own store (DivIDE, +D) keep theirs alongside
	// and splice it in through a Mapper
	ROM [ROMPages]Page
	RAM [RAMPages]Page

	// the home map is what the machine's own paging resolves to before
	// any Timex or ROMCS overlay is applied. Dock and Exrom are the Timex
	// alternate banks, backed by their own arenas below
	Home  [8]*Page
	Dock  [8]*Page
	Exrom [8]*Page

	DockPages  [8]Page
	ExromPages [8]Page

	// the live slots. remapping copies Page values in, meaning the hot
	// path never chases more than one pointer
	readMap  [8]Page
	writeMap [8]Page

	// which RAM page holds the current screen, and the mask applied to
	// offsets when deciding whether a write dirties the display
	CurrentScreen int
	ScreenMask    uint16

	// ROMCS is asserted when an interface is overriding slots 0 and 1
	ROMCS bool

	mappers    []Mapper
	fetchHooks []FetchHook

	// debugger checks, set only while relevant breakpoints exist
	CheckRead  func(address uint16)
	CheckWrite func(address uint16)

	// display callbacks. DirtyByte is raised for writes that change the
	// current screen; DirtyAll when the whole display must be redrawn
	// (screen page switch, Timex mode change)
	DirtyByte func(offset uint16)
	DirtyAll  func()
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory(clk *events.Queue) *Memory {
	m := &Memory{
		clk:           clk,
		CurrentScreen: 5,
		ScreenMask:    0xffff,
	}

	for i := range m.ROM {
		m.ROM[i] = Page{
			Data:    make([]uint8, PageSize),
			Source:  SourceROM,
			PageNum: i / 2,
			Offset:  uint16(i%2) * PageSize,
		}
	}
	for i := range m.RAM {
		m.RAM[i] = Page{
			Data:     make([]uint8, PageSize),
			Writable: true,
			Source:   SourceRAM,
			PageNum:  i / 2,
			Offset:   uint16(i%2) * PageSize,
		}
	}

	// the Timex alternate banks float high until a cartridge or system
	// EXROM is loaded into them
	for i := 0; i < 8; i++ {
		m.DockPages[i] = Page{
			Data:    make([]uint8, PageSize),
			Source:  SourceDock,
			PageNum: i,
		}
		m.ExromPages[i] = Page{
			Data:    make([]uint8, PageSize),
			Source:  SourceExrom,
			PageNum: i,
		}
		for j := 0; j < PageSize; j++ {
			m.DockPages[i].Data[j] = 0xff
			m.ExromPages[i].Data[j] = 0xff
		}
		m.Dock[i] = &m.DockPages[i]
		m.Exrom[i] = &m.ExromPages[i]
	}

	// a sane default map: ROM 0 and RAM 5, 2, 0 in the 48K arrangement
	m.Home[0] = &m.ROM[0]
	m.Home[1] = &m.ROM[1]
	m.Home[2] = &m.RAM[10]
	m.Home[3] = &m.RAM[11]
	m.Home[4] = &m.RAM[4]
	m.Home[5] = &m.RAM[5]
	m.Home[6] = &m.RAM[0]
	m.Home[7] = &m.RAM[1]
	m.MapHome()

	return m
}

// AddMapper registers a ROMCS interface's slot rewriter.
func (m *Memory) AddMapper(fn Mapper) {
	m.mappers = append(m.mappers, fn)
}

// AddFetchHook registers an opcode fetch observer.
func (m *Memory) AddFetchHook(fn FetchHook) {
	m.fetchHooks = append(m.fetchHooks, fn)
}

// MapHome copies the home map into the live slots.
func (m *Memory) MapHome() {
	for i := range m.Home {
		m.readMap[i] = *m.Home[i]
		m.writeMap[i] = *m.Home[i]
	}
}

// MapSlot copies the given page into both the read and write resolution
// of a slot.
func (m *Memory) MapSlot(slot int, p *Page) {
	m.readMap[slot] = *p
	m.writeMap[slot] = *p
}

// MapSlotSplit maps different pages for reading and writing in a slot.
func (m *Memory) MapSlotSplit(slot int, read, write *Page) {
	m.readMap[slot] = *read
	m.writeMap[slot] = *write
}

// MapROMCS runs the registered interface mappers. At most one interface
// asserts ROMCS at a time so the mappers do not fight; each checks its own
// paged state before touching the slots.
func (m *Memory) MapROMCS() {
	if !m.ROMCS {
		return
	}
	for _, fn := range m.mappers {
		fn(m)
	}
}

// SlotPage returns a copy of the page currently resolved for reads in the
// given slot.
func (m *Memory) SlotPage(slot int) Page {
	return m.readMap[slot]
}

// contend applies the ULA delay for a contended address and advances the
// clock by the base cost of the access.
func (m *Memory) contend(address uint16, base uint32) {
	if m.readMap[address>>13].Contended && m.ContendDelay != nil {
		m.clk.Tstates += m.ContendDelay(m.clk.Tstates)
	}
	m.clk.Tstates += base
}

// Contended returns true if the given address resolves to a contended
// page. Used for port contention, which keys off the address on the bus.
func (m *Memory) Contended(address uint16) bool {
	return m.readMap[address>>13].Contended
}

// ReadOpcode performs an M1 fetch. The registered fetch hooks run after
// the byte has been read: an automapping interface changes what the
// following fetch sees, not this one.
func (m *Memory) ReadOpcode(address uint16) uint8 {
	if m.CheckRead != nil {
		m.CheckRead(address)
	}
	m.contend(address, 4)
	data := m.readMap[address>>13].Data[address&0x1fff]
	for _, fn := range m.fetchHooks {
		fn(address)
	}
	return data
}

// Read a byte with the three T-state cost of a data access.
func (m *Memory) Read(address uint16) uint8 {
	if m.CheckRead != nil {
		m.CheckRead(address)
	}
	m.contend(address, 3)
	return m.readMap[address>>13].Data[address&0x1fff]
}

// Write a byte with the three T-state cost of a data access. Writes to
// non-writable pages are silently discarded.
func (m *Memory) Write(address uint16, data uint8) {
	if m.CheckWrite != nil {
		m.CheckWrite(address)
	}
	m.contend(address, 3)
	m.writeInternal(address, data)
}

// ContendReadNoMreq accounts for internal machine cycles with the given
// address on the bus.
func (m *Memory) ContendReadNoMreq(address uint16, cycles int) {
	contended := m.readMap[address>>13].Contended && m.ContendDelay != nil
	for i := 0; i < cycles; i++ {
		if contended {
			m.clk.Tstates += m.ContendDelay(m.clk.Tstates)
		}
		m.clk.Tstates++
	}
}

// ReadInternal reads a byte with no timing, no breakpoint matching and no
// fetch hooks. The debugger and the snapshot code come through here.
func (m *Memory) ReadInternal(address uint16) uint8 {
	return m.readMap[address>>13].Data[address&0x1fff]
}

// WriteInternal writes a byte with no timing and no breakpoint matching.
func (m *Memory) WriteInternal(address uint16, data uint8) {
	m.writeInternal(address, data)
}

func (m *Memory) writeInternal(address uint16, data uint8) {
	p := &m.writeMap[address>>13]
	if !p.Writable {
		return
	}

	// writes that change the current screen dirty the display
	if p.Source == SourceRAM && p.PageNum == m.CurrentScreen && m.DirtyByte != nil {
		offset := (address & 0x1fff) + p.Offset
		if offset&m.ScreenMask < 0x1b00 && p.Data[address&0x1fff] != data {
			m.DirtyByte(offset & m.ScreenMask)
		}
	}

	p.Data[address&0x1fff] = data
}

// SetScreen selects the RAM page holding the current screen. Changing the
// selection dirties the whole display exactly once.
func (m *Memory) SetScreen(page int) {
	if page == m.CurrentScreen {
		return
	}
	m.CurrentScreen = page
	if m.DirtyAll != nil {
		m.DirtyAll()
	}
}

// ScreenRead returns a byte of the current screen without touching the
// clock. The ULA's floating bus is fed from here.
func (m *Memory) ScreenRead(offset uint16) uint8 {
	return m.RAM[m.CurrentScreen*2+int(offset>>13)].Data[offset&0x1fff]
}

// LoadROM copies a ROM image into the arena at the given 16K ROM number.
func (m *Memory) LoadROM(rom int, image []uint8) {
	for i, b := range image {
		if i >= 2*PageSize {
			break
		}
		m.ROM[rom*2+i/PageSize].Data[i%PageSize] = b
	}
}

// ResetRAM zeroes the RAM arena.
func (m *Memory) ResetRAM() {
	for i := range m.RAM {
		for j := range m.RAM[i].Data {
			m.RAM[i].Data[j] = 0
		}
	}
}
