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

// Package snapshot exchanges machine state with the host's .z80/.szx/
// .sna collaborator through a tagged, machine-independent record. The
// core fills the record from a paused machine and rebuilds a machine
// from one; file formats stay the collaborator's business.
//
// Loading validates the whole record before touching the machine: a
// refused snapshot leaves the machine exactly as it was.
package snapshot

import (
	"github.com/jetsetilly/gopherspeccy/curated"
	"github.com/jetsetilly/gopherspeccy/hardware"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/models"
)

// Pattern constants for errors raised by this package.
const (
	// CorruptInput is raised for a malformed record
	CorruptInput = "snapshot: corrupt input: %v"

	// UnsupportedFeature is raised for a record naming hardware this
	// machine does not have
	UnsupportedFeature = "snapshot: unsupported feature: %v"
)

// DivIDESnap holds the DivIDE interface's state.
type DivIDESnap struct {
	Control      uint8
	Paged        bool
	WriteProtect bool
	EPROM        []uint8
	RAM          [][]uint8
}

// Snap is the machine-independent state record.
type Snap struct {
	Machine string

	// processor
	AF, BC, DE, HL     uint16
	AF_, BC_, DE_, HL_ uint16
	IX, IY, SP, PC     uint16
	I, R               uint8
	IFF1, IFF2         bool
	IM                 uint8
	Halted             bool
	Tstates            uint32

	// ULA
	Border uint8
	EarBit uint8

	// paging
	Port7FFD     uint8
	Port1FFD     uint8
	PagingLocked bool

	// Timex SCLD
	HSR, DEC uint8

	// AY register file; nil when the machine has no AY
	AYSelected  uint8
	AYRegisters []uint8

	// RAM holds each populated 16K page by page number
	RAM map[int][]uint8

	// DivIDE state; nil when not fitted
	DivIDE *DivIDESnap
}

// FromMachine fills a record from a paused machine.
func FromMachine(s *hardware.Spectrum) *Snap {
	z := s.CPU

	sn := &Snap{
		Machine: s.Model.ID,

		AF: z.AF(), BC: z.BC(), DE: z.DE(), HL: z.HL(),
		AF_: uint16(z.A_)<<8 | uint16(z.F_),
		BC_: uint16(z.B_)<<8 | uint16(z.C_),
		DE_: uint16(z.D_)<<8 | uint16(z.E_),
		HL_: uint16(z.H_)<<8 | uint16(z.L_),
		IX:  z.IX(), IY: z.IY(), SP: z.SP, PC: z.PC,
		I: z.I, R: z.RR(),
		IFF1: z.IFF1, IFF2: z.IFF2,
		IM:     z.IM,
		Halted: z.Halted,

		Tstates: s.Events.Tstates,

		Border: s.ULA.Border,
		EarBit: s.ULA.EarBit,

		Port7FFD:     s.Last7FFD(),
		Port1FFD:     s.Last1FFD(),
		PagingLocked: s.PagingLocked(),

		RAM: make(map[int][]uint8),
	}

	if s.SCLD != nil {
		sn.HSR = s.SCLD.HSR
		sn.DEC = s.SCLD.DEC
	}

	if s.AY != nil {
		sn.AYSelected = s.AY.Selected
		sn.AYRegisters = make([]uint8, 16)
		copy(sn.AYRegisters, s.AY.Registers[:])
	}

	for page := 0; page < s.Model.RAMPages; page++ {
		data := make([]uint8, 2*memory.PageSize)
		copy(data, s.Mem.RAM[2*page].Data)
		copy(data[memory.PageSize:], s.Mem.RAM[2*page+1].Data)
		sn.RAM[page] = data
	}

	if s.DivIDE != nil {
		d := &DivIDESnap{
			Control:      s.DivIDE.Control(),
			Paged:        s.DivIDE.Paged(),
			WriteProtect: s.DivIDE.WriteProtect,
			EPROM:        append([]uint8(nil), s.DivIDE.EPROM()...),
		}
		for bank := 0; bank < 4; bank++ {
			d.RAM = append(d.RAM, append([]uint8(nil), s.DivIDE.RAM(bank)...))
		}
		sn.DivIDE = d
	}

	return sn
}

// validate checks a record against the machine it is destined for.
func (sn *Snap) validate(s *hardware.Spectrum) error {
	model := models.GetByID(sn.Machine)
	if model == nil {
		return curated.Errorf(UnsupportedFeature, "unknown machine "+sn.Machine)
	}
	if model.Machine != s.Model.Machine {
		return curated.Errorf(UnsupportedFeature, "snapshot is for machine "+sn.Machine)
	}

	if sn.IM > 2 {
		return curated.Errorf(CorruptInput, "impossible interrupt mode")
	}

	for page, data := range sn.RAM {
		if page < 0 || page >= s.Model.RAMPages {
			return curated.Errorf(UnsupportedFeature, "RAM page out of range")
		}
		if len(data) != 2*memory.PageSize {
			return curated.Errorf(CorruptInput, "RAM page is the wrong size")
		}
	}

	if sn.DivIDE != nil && s.DivIDE == nil {
		return curated.Errorf(UnsupportedFeature, "snapshot carries DivIDE state")
	}

	if sn.AYRegisters != nil && len(sn.AYRegisters) != 16 {
		return curated.Errorf(CorruptInput, "AY register file is the wrong size")
	}

	return nil
}

// ToMachine installs a record into a machine. On error the machine is
// untouched.
func (sn *Snap) ToMachine(s *hardware.Spectrum) error {
	if err := sn.validate(s); err != nil {
		return err
	}

	z := s.CPU
	z.SetAF(sn.AF)
	z.SetBC(sn.BC)
	z.SetDE(sn.DE)
	z.SetHL(sn.HL)
	z.A_, z.F_ = uint8(sn.AF_>>8), uint8(sn.AF_)
	z.B_, z.C_ = uint8(sn.BC_>>8), uint8(sn.BC_)
	z.D_, z.E_ = uint8(sn.DE_>>8), uint8(sn.DE_)
	z.H_, z.L_ = uint8(sn.HL_>>8), uint8(sn.HL_)
	z.SetIX(sn.IX)
	z.SetIY(sn.IY)
	z.SP = sn.SP
	z.PC = sn.PC
	z.I = sn.I
	z.SetR(sn.R)
	z.IFF1 = sn.IFF1
	z.IFF2 = sn.IFF2
	z.IM = sn.IM
	z.Halted = sn.Halted

	s.Events.Tstates = sn.Tstates

	s.ULA.Write(0xfe, sn.Border)
	s.ULA.EarBit = sn.EarBit

	for page, data := range sn.RAM {
		copy(s.Mem.RAM[2*page].Data, data[:memory.PageSize])
		copy(s.Mem.RAM[2*page+1].Data, data[memory.PageSize:])
	}

	if s.AY != nil && sn.AYRegisters != nil {
		copy(s.AY.Registers[:], sn.AYRegisters)
		s.AY.Selected = sn.AYSelected
	}

	if s.SCLD != nil {
		s.SCLD.HSR = sn.HSR
		s.SCLD.DEC = sn.DEC
	}

	if s.DivIDE != nil && sn.DivIDE != nil {
		s.DivIDE.WriteProtect = sn.DivIDE.WriteProtect
		copy(s.DivIDE.EPROM(), sn.DivIDE.EPROM)
		for bank := 0; bank < 4 && bank < len(sn.DivIDE.RAM); bank++ {
			copy(s.DivIDE.RAM(bank), sn.DivIDE.RAM[bank])
		}
		s.DivIDE.SetControl(sn.DivIDE.Control)
	}

	s.SetPaging(sn.Port7FFD, sn.Port1FFD, sn.PagingLocked)

	return nil
}
