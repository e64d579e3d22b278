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

import "fmt"

// The 16 bit register pairs are stored as their 8 bit halves, which is how
// the instruction set accesses them most of the time. The pair accessors
// below compose and decompose the architectural high/low ordering.

// AF returns the AF register pair.
func (z *Z80) AF() uint16 { return uint16(z.A)<<8 | uint16(z.F) }

// BC returns the BC register pair.
func (z *Z80) BC() uint16 { return uint16(z.B)<<8 | uint16(z.C) }

// DE returns the DE register pair.
func (z *Z80) DE() uint16 { return uint16(z.D)<<8 | uint16(z.E) }

// HL returns the HL register pair.
func (z *Z80) HL() uint16 { return uint16(z.H)<<8 | uint16(z.L) }

// IX returns the IX register.
func (z *Z80) IX() uint16 { return uint16(z.IXH)<<8 | uint16(z.IXL) }

// IY returns the IY register.
func (z *Z80) IY() uint16 { return uint16(z.IYH)<<8 | uint16(z.IYL) }

// SetAF sets the AF register pair.
func (z *Z80) SetAF(v uint16) { z.A = uint8(v >> 8); z.F = uint8(v) }

// SetBC sets the BC register pair.
func (z *Z80) SetBC(v uint16) { z.B = uint8(v >> 8); z.C = uint8(v) }

// SetDE sets the DE register pair.
func (z *Z80) SetDE(v uint16) { z.D = uint8(v >> 8); z.E = uint8(v) }

// SetHL sets the HL register pair.
func (z *Z80) SetHL(v uint16) { z.H = uint8(v >> 8); z.L = uint8(v) }

// SetIX sets the IX register.
func (z *Z80) SetIX(v uint16) { z.IXH = uint8(v >> 8); z.IXL = uint8(v) }

// SetIY sets the IY register.
func (z *Z80) SetIY(v uint16) { z.IYH = uint8(v >> 8); z.IYL = uint8(v) }

// RR returns the R register as seen by LD A,R: the incrementing low seven
// bits combined with the bit 7 latch.
func (z *Z80) RR() uint8 { return z.R7 | (z.R & 0x7f) }

// SetR sets the R register, splitting the value into the incrementing low
// seven bits and the bit 7 latch.
func (z *Z80) SetR(v uint8) { z.R = v & 0x7f; z.R7 = v & 0x80 }

func (z *Z80) String() string {
	return fmt.Sprintf("AF=%04x BC=%04x DE=%04x HL=%04x IX=%04x IY=%04x SP=%04x PC=%04x I=%02x R=%02x IFF1=%v IM=%d",
		z.AF(), z.BC(), z.DE(), z.HL(), z.IX(), z.IY(), z.SP, z.PC, z.I, z.RR(), z.IFF1, z.IM)
}
