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

package hardware_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/hardware"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/models"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
	"github.com/jetsetilly/gopherspeccy/tape"
	"github.com/jetsetilly/gopherspeccy/test"
)

func new48K() *hardware.Spectrum {
	return hardware.NewSpectrum(models.Get(models.Spec48))
}

func new128K() *hardware.Spectrum {
	return hardware.NewSpectrum(models.Get(models.Spec128))
}

func putProgram(s *hardware.Spectrum, origin uint16, bytes ...uint8) {
	for i, b := range bytes {
		s.Mem.WriteInternal(origin+uint16(i), b)
	}
	s.CPU.PC = origin
}

func TestPortContention(t *testing.T) {
	s := new48K()

	// IN A,(0xFE) from uncontended memory, starting on the first
	// contended line: base 11 T-states plus one of contention on the
	// ULA port read
	putProgram(s, 0x8000, 0xdb, 0xfe)
	s.CPU.A = 0
	s.Events.Tstates = 14336

	s.CPU.Step()
	test.ExpectEquality(t, s.Events.Tstates, uint32(14336+12))
}

func TestMemoryContention(t *testing.T) {
	s := new48K()

	// a data read of screen memory in the top border sees no delay
	putProgram(s, 0x8000, 0x3a, 0x00, 0x40) // LD A,(0x4000)
	s.Events.Tstates = 1000
	s.CPU.Step()
	test.ExpectEquality(t, s.Events.Tstates, uint32(1000+13))

	// the same read timed so the final access lands on the first slot of
	// the contention pattern picks up the full six T-state delay
	putProgram(s, 0x8000, 0x3a, 0x00, 0x40)
	s.Events.Tstates = 14337
	s.CPU.Step()
	test.ExpectEquality(t, s.Events.Tstates, uint32(14337+13+6))
}

func TestScreenPageSwitchDirtiesOnce(t *testing.T) {
	s := new128K()

	dirtied := 0
	s.Mem.DirtyAll = func() { dirtied++ }

	// switching the screen page raises a full-screen dirty mark exactly
	// once
	s.Ports.WriteInternal(0x7ffd, 0x08)
	test.ExpectEquality(t, dirtied, 1)

	// writing the same value again does not
	s.Ports.WriteInternal(0x7ffd, 0x08)
	test.ExpectEquality(t, dirtied, 1)

	// and back
	s.Ports.WriteInternal(0x7ffd, 0x00)
	test.ExpectEquality(t, dirtied, 2)
}

func Test128Paging(t *testing.T) {
	s := new128K()

	// page 1 into the top slot and write through it
	s.Ports.WriteInternal(0x7ffd, 0x01)
	s.Mem.WriteInternal(0xc000, 0x42)
	test.ExpectEquality(t, s.Mem.RAM[2].Data[0], uint8(0x42))

	// page 3 in: the value is hidden
	s.Ports.WriteInternal(0x7ffd, 0x03)
	test.ExpectEquality(t, s.Mem.ReadInternal(0xc000), uint8(0))

	// page 1 back: the value returns
	s.Ports.WriteInternal(0x7ffd, 0x01)
	test.ExpectEquality(t, s.Mem.ReadInternal(0xc000), uint8(0x42))
}

func TestPagingLock(t *testing.T) {
	s := new128K()

	// bit 5 latches the paging port shut
	s.Ports.WriteInternal(0x7ffd, 0x20|0x01)
	test.ExpectSuccess(t, s.PagingLocked())

	s.Ports.WriteInternal(0x7ffd, 0x03)
	test.ExpectEquality(t, s.Last7FFD(), uint8(0x21))

	// only a hard reset unlocks it
	s.Reset(true)
	test.ExpectFailure(t, s.PagingLocked())
}

func TestHaltInterruptAcrossFrame(t *testing.T) {
	s := new48K()
	s.CPU.IM = 1

	// EI then HALT: the CPU spins until the frame interrupt
	putProgram(s, 0x8000, 0xfb, 0x76)
	s.CPU.SP = 0xff00

	frames := 0
	s.FrameEnd = func() { frames++ }
	s.Run(func() bool { return frames == 0 })

	// HALT is exited, the address after the HALT was pushed, and
	// execution resumed at the IM1 vector
	test.ExpectFailure(t, s.CPU.Halted)
	test.ExpectEquality(t, s.Mem.ReadInternal(0xfeff), uint8(0x80))
	test.ExpectEquality(t, s.Mem.ReadInternal(0xfefe), uint8(0x02))

	// by the time the run loop yields the CPU is already executing the
	// interrupt routine
	test.ExpectFailure(t, s.CPU.IFF1)
}

func TestIM2InterruptAcrossFrame(t *testing.T) {
	s := new48K()
	s.CPU.IM = 2
	s.CPU.I = 0x80
	s.Mem.WriteInternal(0x80ff, 0x00)
	s.Mem.WriteInternal(0x8100, 0x90)

	// EI then HALT; the IM2 vector table points at 0x9000
	putProgram(s, 0x8000, 0xfb, 0x76)
	s.Mem.WriteInternal(0x9000, 0x00) // NOP at the handler
	s.CPU.SP = 0xff00

	frames := 0
	s.FrameEnd = func() { frames++ }
	s.Run(func() bool { return frames == 0 })

	test.ExpectEquality(t, s.CPU.MEMPTR, uint16(0x9000))
	test.ExpectFailure(t, s.CPU.Halted)
}

func TestFloatingBus(t *testing.T) {
	s := new48K()

	// seed the first screen byte and its attribute
	s.Mem.RAM[10].Data[0] = 0x5a
	s.Mem.RAM[10].Data[0x1800] = 0x47

	// in the top border the bus floats high
	s.Events.Tstates = 1000
	test.ExpectEquality(t, s.Ports.ReadInternal(0x40ff), uint8(0xff))

	// at the very first screen fetch the data byte is on the bus
	s.Events.Tstates = s.Model.FirstScreenLine
	test.ExpectEquality(t, s.Ports.ReadInternal(0x40ff), uint8(0x5a))

	// one T-state later its attribute
	s.Events.Tstates = s.Model.FirstScreenLine + 1
	test.ExpectEquality(t, s.Ports.ReadInternal(0x40ff), uint8(0x47))

	// the idle half of the fetch pattern floats high
	s.Events.Tstates = s.Model.FirstScreenLine + 4
	test.ExpectEquality(t, s.Ports.ReadInternal(0x40ff), uint8(0xff))
}

func TestTapeEdgesReachEAR(t *testing.T) {
	s := new48K()

	s.InsertTape([]tape.Block{
		&tape.PureToneBlock{Length: 1000, Pulses: 100},
	})
	s.Typist = nil
	s.PlayTape()
	test.ExpectSuccess(t, s.TapePlaying())

	ear := s.ULA.EarBit

	// run across a few edges and watch the EAR level move
	start := s.Events.Tstates
	s.Run(func() bool { return s.Events.Tstates < start+5000 })
	test.ExpectInequality(t, s.ULA.EarBit, ear)
}

func TestTimexDockPaging(t *testing.T) {
	s := hardware.NewSpectrum(models.Get(models.TC2048))

	// the dock floats high until a cartridge is loaded
	s.Mem.DockPages[4].Data[0] = 0xdc
	s.Mem.ExromPages[4].Data[0] = 0xee

	// HSR bit 4 pages the dock into slot 4 (0x8000)
	s.Ports.WriteInternal(0xf4, 0x10)
	test.ExpectEquality(t, s.Mem.ReadInternal(0x8000), uint8(0xdc))

	// the altmembank bit switches the same slot to the EXROM side
	s.Ports.WriteInternal(0xff, 0x80)
	test.ExpectEquality(t, s.Mem.ReadInternal(0x8000), uint8(0xee))

	// clearing the HSR bit restores home RAM
	s.Ports.WriteInternal(0xf4, 0x00)
	test.ExpectEquality(t, s.Mem.SlotPage(4).Source, memory.SourceRAM)
}

func TestTimexInterruptDisable(t *testing.T) {
	s := hardware.NewSpectrum(models.Get(models.TC2048))
	s.CPU.IM = 1
	s.CPU.SP = 0xff00

	// EI, then disable the frame interrupt at the SCLD, then HALT. the
	// CPU spins through the frame boundary without being interrupted
	putProgram(s, 0x8000, 0xfb, 0x76)
	s.Ports.WriteInternal(0xff, 0x40)

	frames := 0
	s.FrameEnd = func() { frames++ }
	s.Run(func() bool { return frames == 0 })
	test.ExpectSuccess(t, s.CPU.Halted)

	// clearing the disable bit inside the acceptance window raises the
	// suppressed interrupt
	s.Ports.WriteInternal(0xff, 0x00)
	test.ExpectFailure(t, s.CPU.Halted)
	test.ExpectEquality(t, s.CPU.PC, uint16(0x0038))
}

func TestULAKeyboard(t *testing.T) {
	s := new48K()

	// no keys: all five bits high on every row
	v := s.Ports.ReadInternal(0xfefe)
	test.ExpectEquality(t, v&0x1f, uint8(0x1f))

	// press CAPS SHIFT (row 0, bit 0), selected by high byte 0xFE
	s.ULA.KeyDown(peripherals.KeyCapsShift)
	v = s.Ports.ReadInternal(0xfefe)
	test.ExpectEquality(t, v&0x1f, uint8(0x1e))

	// a read selecting a different row sees nothing
	v = s.Ports.ReadInternal(0xfdfe)
	test.ExpectEquality(t, v&0x1f, uint8(0x1f))
}
