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

package memory

// PageSize is the size of each CPU-visible memory chunk: 8K, half of a
// hardware 16K bank. Working in 8K chunks is what lets the Timex DOCK,
// DivIDE and friends overlay half-banks cleanly.
const PageSize = 0x2000

// Source identifies where a page of memory came from. Snapshots and the
// debugger use it to name an address unambiguously.
type Source int

// List of valid Source values.
const (
	SourceNone Source = iota
	SourceROM
	SourceRAM
	SourceDock
	SourceExrom
	SourceCartridge
	SourceROMCS
)

func (s Source) String() string {
	switch s {
	case SourceROM:
		return "ROM"
	case SourceRAM:
		return "RAM"
	case SourceDock:
		return "DOCK"
	case SourceExrom:
		return "EXROM"
	case SourceCartridge:
		return "cartridge"
	case SourceROMCS:
		return "ROMCS"
	}
	return "none"
}

// Page describes one 8K chunk of the address space. The live slots hold
// copies of Page values; the backing buffer is shared through the Data
// slice, which points into the arena owned by the Memory type.
type Page struct {
	Data      []uint8
	Writable  bool
	Contended bool
	Source    Source

	// which page of the source, and how far into that page this chunk
	// starts. used for snapshot identification
	PageNum int
	Offset  uint16

	// set if this page should be saved to snapshots even though pages
	// from its source would not normally be
	SaveToSnapshot bool
}
