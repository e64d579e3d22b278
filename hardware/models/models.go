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

// Package models is the machine catalogue: one declarative record per
// member of the Spectrum family, describing timing, contention, paging
// capability and the peripheral complement. The hardware package reads
// these records when assembling a machine; nothing here executes.
package models

// Contention selects the delay pattern the ULA applies to contended
// accesses.
type Contention int

// List of valid Contention values.
const (
	// ContentionNone: Russian clones run RAM and ULA from separate buses
	ContentionNone Contention = iota

	// Contention65432100 is the Sinclair pattern: delays of 6,5,4,3,2,1,0,0
	// across each eight T-states of the contended area
	Contention65432100

	// Contention76543210 is the +2A/+3 gate array pattern
	Contention76543210
)

// Delay returns the ULA delay at the given T-state, for a machine with
// the given timing.
func (c Contention) Delay(spec *Spec, tstates uint32) uint32 {
	if c == ContentionNone || tstates < spec.ContentionBase {
		return 0
	}

	ts := tstates - spec.ContentionBase
	line := ts / spec.TstatesPerLine
	if line >= ScreenLines {
		return 0
	}
	col := ts % spec.TstatesPerLine
	if col >= ScreenTstatesPerLine {
		return 0
	}

	switch c {
	case Contention65432100:
		switch col % 8 {
		case 0:
			return 6
		case 1:
			return 5
		case 2:
			return 4
		case 3:
			return 3
		case 4:
			return 2
		case 5:
			return 1
		}
	case Contention76543210:
		switch col % 8 {
		case 0:
			return 7
		case 1:
			return 6
		case 2:
			return 5
		case 3:
			return 4
		case 4:
			return 3
		case 5:
			return 2
		case 6:
			return 1
		}
	}
	return 0
}

// Display geometry shared by the whole family.
const (
	// ScreenLines is the number of pixel lines
	ScreenLines = 192

	// ScreenTstatesPerLine is how long the ULA spends fetching screen and
	// attribute bytes on each pixel line
	ScreenTstatesPerLine = 128

	// ScreenColumns is the number of character columns
	ScreenColumns = 32
)

// Machine enumerates the catalogue.
type Machine int

// List of valid Machine values.
const (
	Spec16 Machine = iota
	Spec48
	Spec128
	SpecPlus2
	SpecPlus2A
	SpecPlus3
	TC2048
	TC2068
	TS2068
	Pentagon
	Scorpion
)

// Spec is one machine's declarative record.
type Spec struct {
	Machine Machine
	ID      string
	Label   string

	TstatesPerFrame uint32
	TstatesPerLine  uint32

	// FirstScreenLine is the T-state at which the ULA starts drawing the
	// first pixel line; also the frame interrupt to screen relationship
	// used by the display and the floating bus
	FirstScreenLine uint32

	// InterruptLength is the width of the ULA's interrupt pulse: a
	// maskable interrupt is only accepted this many T-states into a frame
	InterruptLength uint32

	// ContentionBase is the T-state of the first contended access window
	ContentionBase uint32
	Contention     Contention

	// CyclesPerMs converts tape pause fields to T-states
	CyclesPerMs uint32

	// RAMPages is the number of 16K RAM pages fitted
	RAMPages int

	// ROMCount is the number of 16K ROMs fitted
	ROMCount int

	Timex          bool
	HasAY          bool
	Has128Paging   bool
	HasPlus3Paging bool

	// FloatingBus: reads of unattached ULA-decoded ports see the byte the
	// video circuitry is fetching
	FloatingBus bool

	// KempstonFullDecode: the built-in interface decodes all eight low
	// port bits rather than just bits 5-7
	KempstonFullDecode bool

	// ContendedPage reports whether a 16K RAM page is contended
	ContendedPage func(page int) bool
}

func pageIs5(page int) bool  { return page == 5 }
func pageOdd(page int) bool  { return page < 8 && page&1 == 1 }
func pageHigh(page int) bool { return page >= 4 && page < 8 }
func pageNone(_ int) bool    { return false }

var catalogue = map[Machine]*Spec{
	Spec16: {
		Machine: Spec16, ID: "16", Label: "ZX Spectrum 16K",
		TstatesPerFrame: 69888, TstatesPerLine: 224, FirstScreenLine: 14336,
		InterruptLength: 32, ContentionBase: 14339, Contention: Contention65432100,
		CyclesPerMs: 3500, RAMPages: 1, ROMCount: 1,
		FloatingBus: true, ContendedPage: pageIs5,
	},
	Spec48: {
		Machine: Spec48, ID: "48", Label: "ZX Spectrum 48K",
		TstatesPerFrame: 69888, TstatesPerLine: 224, FirstScreenLine: 14336,
		InterruptLength: 32, ContentionBase: 14339, Contention: Contention65432100,
		CyclesPerMs: 3500, RAMPages: 3, ROMCount: 1,
		FloatingBus: true, ContendedPage: pageIs5,
	},
	Spec128: {
		Machine: Spec128, ID: "128", Label: "ZX Spectrum 128K",
		TstatesPerFrame: 70908, TstatesPerLine: 228, FirstScreenLine: 14361,
		InterruptLength: 32, ContentionBase: 14365, Contention: Contention65432100,
		CyclesPerMs: 3547, RAMPages: 8, ROMCount: 2,
		HasAY: true, Has128Paging: true,
		FloatingBus: true, ContendedPage: pageOdd,
	},
	SpecPlus2: {
		Machine: SpecPlus2, ID: "plus2", Label: "ZX Spectrum +2",
		TstatesPerFrame: 70908, TstatesPerLine: 228, FirstScreenLine: 14361,
		InterruptLength: 32, ContentionBase: 14365, Contention: Contention65432100,
		CyclesPerMs: 3547, RAMPages: 8, ROMCount: 2,
		HasAY: true, Has128Paging: true,
		FloatingBus: true, ContendedPage: pageOdd,
	},
	SpecPlus2A: {
		Machine: SpecPlus2A, ID: "plus2a", Label: "ZX Spectrum +2A",
		TstatesPerFrame: 70908, TstatesPerLine: 228, FirstScreenLine: 14361,
		InterruptLength: 32, ContentionBase: 14365, Contention: Contention76543210,
		CyclesPerMs: 3547, RAMPages: 8, ROMCount: 4,
		HasAY: true, Has128Paging: true, HasPlus3Paging: true,
		ContendedPage: pageHigh,
	},
	SpecPlus3: {
		Machine: SpecPlus3, ID: "plus3", Label: "ZX Spectrum +3",
		TstatesPerFrame: 70908, TstatesPerLine: 228, FirstScreenLine: 14361,
		InterruptLength: 32, ContentionBase: 14365, Contention: Contention76543210,
		CyclesPerMs: 3547, RAMPages: 8, ROMCount: 4,
		HasAY: true, Has128Paging: true, HasPlus3Paging: true,
		ContendedPage: pageHigh,
	},
	TC2048: {
		Machine: TC2048, ID: "2048", Label: "Timex TC2048",
		TstatesPerFrame: 69888, TstatesPerLine: 224, FirstScreenLine: 14336,
		InterruptLength: 32, ContentionBase: 14339, Contention: Contention65432100,
		CyclesPerMs: 3500, RAMPages: 3, ROMCount: 1,
		Timex: true, FloatingBus: false, KempstonFullDecode: true,
		ContendedPage: pageIs5,
	},
	TC2068: {
		Machine: TC2068, ID: "2068", Label: "Timex TC2068",
		TstatesPerFrame: 69888, TstatesPerLine: 224, FirstScreenLine: 14336,
		InterruptLength: 32, ContentionBase: 14339, Contention: Contention65432100,
		CyclesPerMs: 3500, RAMPages: 3, ROMCount: 1,
		Timex: true, HasAY: true, KempstonFullDecode: true,
		ContendedPage: pageIs5,
	},
	TS2068: {
		// contention treated identically to the TC2068, which shares its
		// memory map in the reference implementation
		Machine: TS2068, ID: "ts2068", Label: "Timex TS2068",
		TstatesPerFrame: 69888, TstatesPerLine: 224, FirstScreenLine: 14336,
		InterruptLength: 32, ContentionBase: 14339, Contention: Contention65432100,
		CyclesPerMs: 3500, RAMPages: 3, ROMCount: 1,
		Timex: true, HasAY: true, KempstonFullDecode: true,
		ContendedPage: pageIs5,
	},
	Pentagon: {
		Machine: Pentagon, ID: "pentagon", Label: "Pentagon 128K",
		TstatesPerFrame: 71680, TstatesPerLine: 224, FirstScreenLine: 17988,
		InterruptLength: 36, ContentionBase: 0, Contention: ContentionNone,
		CyclesPerMs: 3500, RAMPages: 8, ROMCount: 2,
		HasAY: true, Has128Paging: true,
		ContendedPage: pageNone,
	},
	Scorpion: {
		Machine: Scorpion, ID: "scorpion", Label: "Scorpion ZS 256",
		TstatesPerFrame: 69888, TstatesPerLine: 224, FirstScreenLine: 14336,
		InterruptLength: 32, ContentionBase: 0, Contention: ContentionNone,
		CyclesPerMs: 3500, RAMPages: 16, ROMCount: 2,
		HasAY: true, Has128Paging: true,
		ContendedPage: pageNone,
	},
}

// Get returns the record for a machine.
func Get(m Machine) *Spec {
	return catalogue[m]
}

// GetByID returns the record matching a user-facing machine ID, or nil.
func GetByID(id string) *Spec {
	for _, spec := range catalogue {
		if spec.ID == id {
			return spec
		}
	}
	return nil
}

// IDs returns the catalogue's machine IDs.
func IDs() []string {
	ids := make([]string, 0, len(catalogue))
	for _, spec := range catalogue {
		ids = append(ids, spec.ID)
	}
	return ids
}
