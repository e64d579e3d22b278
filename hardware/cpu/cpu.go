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

package cpu

import (
	"github.com/jetsetilly/gopherspeccy/hardware/bus"
)

// Z80 implements the processor found in every member of the Spectrum
// family. Pair access logic is in registers.go, flag tables in flags.go.
type Z80 struct {
	A, F, B, C, D, E, H, L uint8

	// the shadow register set. exchanged wholesale by EXX and EX AF,AF'
	A_, F_, B_, C_, D_, E_, H_, L_ uint8

	IXH, IXL uint8
	IYH, IYL uint8

	SP uint16
	PC uint16

	I uint8

	// R is the low seven bits of the refresh register and increments once
	// per M1 cycle. R7 latches bit 7, which only LD R,A can change.
	R  uint8
	R7 uint8

	IFF1 bool
	IFF2 bool
	IM   uint8

	// Halted is set by the HALT instruction. while set the CPU refetches
	// the HALT opcode (PC is wound back one byte) so that refresh and
	// timing behave as on real hardware.
	Halted bool

	// MEMPTR (sometimes called WZ) is the internal address latch. its only
	// observable effect is on the undocumented flag bits of BIT n,(HL)
	// but we carry it everywhere it is set on real silicon.
	MEMPTR uint16

	mem bus.Memory
	io  bus.IO

	// LastEI is set when the instruction just executed was EI. a maskable
	// interrupt must not be accepted until the instruction after EI has
	// completed
	LastEI bool

	// number of instructions executed since the last call to
	// ResetInstructionCount. used by RZX-style playback counting
	Instructions int
}

// NewZ80 is the preferred method of initialisation for the Z80 type.
func NewZ80(mem bus.Memory, io bus.IO) *Z80 {
	z := &Z80{mem: mem, io: io}
	z.Reset(true)
	return z
}

// Snapshot creates a copy of the CPU in its current state.
func (z *Z80) Snapshot() *Z80 {
	n := *z
	return &n
}

// Plumb a new memory and IO implementation into the CPU.
func (z *Z80) Plumb(mem bus.Memory, io bus.IO) {
	z.mem = mem
	z.io = io
}

// Reset the CPU. A hard reset also clears the register file; the real chip
// only guarantees PC, I, R and the interrupt state.
func (z *Z80) Reset(hard bool) {
	if hard {
		z.A, z.F, z.B, z.C, z.D, z.E, z.H, z.L = 0xff, 0xff, 0, 0, 0, 0, 0, 0
		z.A_, z.F_, z.B_, z.C_, z.D_, z.E_, z.H_, z.L_ = 0, 0, 0, 0, 0, 0, 0, 0
		z.IXH, z.IXL, z.IYH, z.IYL = 0, 0, 0, 0
		z.SP = 0xffff
		z.MEMPTR = 0
	}
	z.PC = 0
	z.I = 0
	z.R = 0
	z.R7 = 0
	z.IFF1 = false
	z.IFF2 = false
	z.IM = 0
	z.Halted = false
}

// ResetInstructionCount zeroes the per-frame instruction counter.
func (z *Z80) ResetInstructionCount() {
	z.Instructions = 0
}

// fetchOpcode performs an M1 cycle: four T-states of contended fetch and a
// refresh increment. Prefix bytes go through here too, which is how they
// come to cost four T-states and an R increment each.
func (z *Z80) fetchOpcode() uint8 {
	opcode := z.mem.ReadOpcode(z.PC)
	z.PC++
	z.R = (z.R + 1) & 0x7f
	return opcode
}

// Step advances the CPU by exactly one instruction. It cannot fail.
func (z *Z80) Step() {
	z.Instructions++
	z.LastEI = false
	z.execute(z.fetchOpcode())
}

// execute dispatches an opcode fetched by an M1 cycle. Prefixes re-enter
// with a secondary fetch.
func (z *Z80) execute(opcode uint8) {
	switch opcode {
	case 0xcb:
		z.executeCB(z.fetchOpcode())
	case 0xed:
		z.executeED(z.fetchOpcode())
	case 0xdd:
		z.executePrefixed(&z.IXH, &z.IXL)
	case 0xfd:
		z.executePrefixed(&z.IYH, &z.IYL)
	default:
		z.executeBase(opcode, nil)
	}
}

// index carries the register pair that stands in for HL while a DD or FD
// prefix is in effect.
type index struct {
	hi *uint8
	lo *uint8
}

func (ix *index) get() uint16  { return uint16(*ix.hi)<<8 | uint16(*ix.lo) }
func (ix *index) set(v uint16) { *ix.hi = uint8(v >> 8); *ix.lo = uint8(v) }

// executePrefixed resolves the instruction following a DD or FD prefix.
func (z *Z80) executePrefixed(hi, lo *uint8) {
	opcode := z.fetchOpcode()

	switch opcode {
	case 0xcb:
		// the three byte DD CB d op form. neither the displacement nor the
		// final byte is an M1 fetch so R is not incremented for them
		d := z.mem.Read(z.PC)
		z.PC++
		address := (uint16(*hi)<<8 | uint16(*lo)) + uint16(int8(d))
		op := z.mem.Read(z.PC)
		z.mem.ContendReadNoMreq(z.PC, 2)
		z.PC++
		z.MEMPTR = address
		z.executeIndexCB(address, op)
	case 0xdd, 0xfd, 0xed:
		// an unrecognised prefix pair: the leading prefix decays to a four
		// T-state NOP and the trailing byte is decoded fresh, so chains of
		// prefixes collapse to the innermost one
		z.execute(opcode)
	default:
		z.executeBase(opcode, &index{hi: hi, lo: lo})
	}
}

// hlGet returns HL, or IX/IY when an index prefix is in effect.
func (z *Z80) hlGet(ix *index) uint16 {
	if ix == nil {
		return z.HL()
	}
	return ix.get()
}

// hlSet sets HL, or IX/IY when an index prefix is in effect.
func (z *Z80) hlSet(ix *index, v uint16) {
	if ix == nil {
		z.SetHL(v)
		return
	}
	ix.set(v)
}

// indexedAddress resolves the address of a (HL) operand. With an index
// prefix in effect the displacement byte is fetched and five cycles of
// internal address arithmetic are accounted for.
func (z *Z80) indexedAddress(ix *index) uint16 {
	if ix == nil {
		return z.HL()
	}
	d := z.mem.Read(z.PC)
	z.mem.ContendReadNoMreq(z.PC, 5)
	z.PC++
	address := ix.get() + uint16(int8(d))
	z.MEMPTR = address
	return address
}

// r8 returns a pointer to the 8 bit register with the given operand
// number. Register six, the (HL) operand, is resolved by the instruction
// itself and must not come through here. H and L redirect to the index
// register halves while a DD or FD prefix is in effect.
func (z *Z80) r8(num uint8, ix *index) *uint8 {
	switch num {
	case 0:
		return &z.B
	case 1:
		return &z.C
	case 2:
		return &z.D
	case 3:
		return &z.E
	case 4:
		if ix != nil {
			return ix.hi
		}
		return &z.H
	case 5:
		if ix != nil {
			return ix.lo
		}
		return &z.L
	case 7:
		return &z.A
	}
	panic("r8: operand six is not a register")
}

// condition tests the flag condition with the given operand number:
// NZ Z NC C PO PE P M.
func (z *Z80) condition(num uint8) bool {
	switch num {
	case 0:
		return z.F&FlagZ == 0
	case 1:
		return z.F&FlagZ != 0
	case 2:
		return z.F&FlagC == 0
	case 3:
		return z.F&FlagC != 0
	case 4:
		return z.F&FlagP == 0
	case 5:
		return z.F&FlagP != 0
	case 6:
		return z.F&FlagS == 0
	}
	return z.F&FlagS != 0
}

// irAddress is the address formed by the I and R registers. some internal
// machine cycles keep it on the bus, which matters for contention.
func (z *Z80) irAddress() uint16 {
	return uint16(z.I)<<8 | uint16(z.RR())
}

func (z *Z80) push16(v uint16) {
	z.SP--
	z.mem.Write(z.SP, uint8(v>>8))
	z.SP--
	z.mem.Write(z.SP, uint8(v))
}

func (z *Z80) pop16() uint16 {
	lo := z.mem.Read(z.SP)
	z.SP++
	hi := z.mem.Read(z.SP)
	z.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// read16 reads a little-endian word operand at PC.
func (z *Z80) read16() uint16 {
	lo := z.mem.Read(z.PC)
	z.PC++
	hi := z.mem.Read(z.PC)
	z.PC++
	return uint16(hi)<<8 | uint16(lo)
}

// MaskableInterrupt delivers a maskable interrupt. The caller is
// responsible for the acceptance window; the CPU only honours its
// interrupt enable flip-flop.
func (z *Z80) MaskableInterrupt() {
	if !z.IFF1 {
		return
	}

	if z.Halted {
		z.PC++
		z.Halted = false
	}

	z.IFF1 = false
	z.IFF2 = false
	z.R = (z.R + 1) & 0x7f

	// the interrupt acknowledge cycle before the stack pushes
	switch z.IM {
	case 0, 1:
		if z.IM == 0 {
			z.mem.ContendReadNoMreq(z.PC, 6)
		} else {
			z.mem.ContendReadNoMreq(z.PC, 7)
		}
		z.push16(z.PC)
		z.PC = 0x0038
	case 2:
		z.mem.ContendReadNoMreq(z.PC, 7)
		z.push16(z.PC)
		vector := uint16(z.I)<<8 | 0x00ff
		lo := z.mem.Read(vector)
		hi := z.mem.Read(vector + 1)
		z.PC = uint16(hi)<<8 | uint16(lo)
	}

	z.MEMPTR = z.PC
}

// NonMaskableInterrupt delivers an NMI: push PC and jump to 0x0066.
func (z *Z80) NonMaskableInterrupt() {
	if z.Halted {
		z.PC++
		z.Halted = false
	}

	z.R = (z.R + 1) & 0x7f
	z.mem.ContendReadNoMreq(z.PC, 5)
	z.push16(z.PC)
	z.PC = 0x0066
}
