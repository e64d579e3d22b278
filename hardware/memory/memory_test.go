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

package memory_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/curated"
	"github.com/jetsetilly/gopherspeccy/hardware/events"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/test"
)

func newTestMemory() *memory.Memory {
	return memory.NewMemory(events.NewQueue())
}

func TestROMWritesDiscarded(t *testing.T) {
	m := newTestMemory()

	// the default map has ROM in slots 0 and 1. writes never trap, they
	// just vanish
	m.WriteInternal(0x0000, 0x42)
	test.ExpectEquality(t, m.ReadInternal(0x0000), uint8(0))

	// RAM writes stick
	m.WriteInternal(0x8000, 0x42)
	test.ExpectEquality(t, m.ReadInternal(0x8000), uint8(0x42))
}

func TestTiming(t *testing.T) {
	clk := events.NewQueue()
	m := memory.NewMemory(clk)

	m.ReadOpcode(0x8000)
	test.ExpectEquality(t, clk.Tstates, uint32(4))

	m.Read(0x8000)
	test.ExpectEquality(t, clk.Tstates, uint32(7))

	m.Write(0x8000, 1)
	test.ExpectEquality(t, clk.Tstates, uint32(10))

	m.ContendReadNoMreq(0x8000, 5)
	test.ExpectEquality(t, clk.Tstates, uint32(15))

	// internal accesses are free
	m.ReadInternal(0x8000)
	m.WriteInternal(0x8000, 2)
	test.ExpectEquality(t, clk.Tstates, uint32(15))
}

func TestDirtyTracking(t *testing.T) {
	m := newTestMemory()

	var dirtied []uint16
	m.DirtyByte = func(offset uint16) { dirtied = append(dirtied, offset) }

	// the default 48K arrangement has the screen in RAM page 5, mapped
	// at 0x4000
	m.WriteInternal(0x4000, 0xff)
	test.ExpectEquality(t, len(dirtied), 1)
	test.ExpectEquality(t, dirtied[0], uint16(0))

	// writing the same value again is not a change
	m.WriteInternal(0x4000, 0xff)
	test.ExpectEquality(t, len(dirtied), 1)

	// writes beyond the display and attribute files do not dirty
	m.WriteInternal(0x4000+0x1b00, 0x55)
	test.ExpectEquality(t, len(dirtied), 1)
}

func TestFetchHooks(t *testing.T) {
	m := newTestMemory()

	var fetches []uint16
	m.AddFetchHook(func(address uint16) { fetches = append(fetches, address) })

	m.ReadOpcode(0x0038)
	m.Read(0x0039) // not an M1 fetch
	m.ReadOpcode(0x1ff8)

	test.ExpectEquality(t, len(fetches), 2)
	test.ExpectEquality(t, fetches[0], uint16(0x0038))
	test.ExpectEquality(t, fetches[1], uint16(0x1ff8))
}

func TestROMCSMapping(t *testing.T) {
	m := newTestMemory()

	shadow := memory.Page{
		Data:   make([]uint8, memory.PageSize),
		Source: memory.SourceROMCS,
	}
	for i := range shadow.Data {
		shadow.Data[i] = 0xe0
	}

	paged := false
	m.AddMapper(func(m *memory.Memory) {
		if paged {
			m.MapSlot(0, &shadow)
		}
	})

	// the mapper only runs while ROMCS is asserted
	m.MapHome()
	m.MapROMCS()
	test.ExpectEquality(t, m.ReadInternal(0x0000), uint8(0))

	paged = true
	m.ROMCS = true
	m.MapHome()
	m.MapROMCS()
	test.ExpectEquality(t, m.ReadInternal(0x0000), uint8(0xe0))

	// only slots 0 and 1 are ever touched by ROMCS; slot 2 still reads
	// from the home map
	test.ExpectEquality(t, m.SlotPage(2).Source, memory.SourceRAM)
}

func TestLoadDCK(t *testing.T) {
	m := newTestMemory()

	// a DOCK bank with one ROM page in slot 4 and one empty RAM page in
	// slot 5
	img := []uint8{0x00}
	access := [8]uint8{0, 0, 0, 0, 1, 2, 0, 0}
	img = append(img, access[:]...)
	page := make([]uint8, memory.PageSize)
	for i := range page {
		page[i] = 0xdc
	}
	img = append(img, page...)

	err := m.LoadDCK(img)
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, m.DockPages[4].Data[0], uint8(0xdc))
	test.ExpectFailure(t, m.DockPages[4].Writable)
	test.ExpectEquality(t, m.DockPages[5].Data[0], uint8(0))
	test.ExpectSuccess(t, m.DockPages[5].Writable)

	// pages with no record keep floating high
	test.ExpectEquality(t, m.DockPages[0].Data[0], uint8(0xff))
}

func TestLoadDCKTruncated(t *testing.T) {
	m := newTestMemory()

	img := []uint8{0x00, 1, 0, 0, 0, 0, 0, 0, 0, 0x12, 0x34}
	err := m.LoadDCK(img)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, memory.CorruptInput))
}
