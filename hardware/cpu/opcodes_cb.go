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

// shift applies the CB-set rotate/shift with the given operation number:
// RLC RRC RL RR SLA SRA SLL SRL.
func (z *Z80) shift(op, value uint8) uint8 {
	switch op {
	case 0:
		return z.rlc(value)
	case 1:
		return z.rrc(value)
	case 2:
		return z.rl(value)
	case 3:
		return z.rr(value)
	case 4:
		return z.sla(value)
	case 5:
		return z.sra(value)
	case 6:
		return z.sll(value)
	}
	return z.srl(value)
}

// executeCB handles the CB-prefixed set. The whole page is regular:
// opcode bits 3-5 select the operation or bit number, bits 0-2 the
// register, with (HL) in slot six.
func (z *Z80) executeCB(opcode uint8) {
	y := (opcode >> 3) & 0x07
	operand := opcode & 0x07

	switch opcode >> 6 {
	case 0: // rotates and shifts
		if operand == 6 {
			address := z.HL()
			value := z.mem.Read(address)
			z.mem.ContendReadNoMreq(address, 1)
			z.mem.Write(address, z.shift(y, value))
			return
		}
		r := z.r8(operand, nil)
		*r = z.shift(y, *r)

	case 1: // BIT b,r
		if operand == 6 {
			address := z.HL()
			value := z.mem.Read(address)
			z.mem.ContendReadNoMreq(address, 1)
			z.bitMemptr(y, value)
			return
		}
		z.bit(y, *z.r8(operand, nil))

	case 2: // RES b,r
		if operand == 6 {
			address := z.HL()
			value := z.mem.Read(address)
			z.mem.ContendReadNoMreq(address, 1)
			z.mem.Write(address, value&^(1<<y))
			return
		}
		*z.r8(operand, nil) &^= 1 << y

	case 3: // SET b,r
		if operand == 6 {
			address := z.HL()
			value := z.mem.Read(address)
			z.mem.ContendReadNoMreq(address, 1)
			z.mem.Write(address, value|1<<y)
			return
		}
		*z.r8(operand, nil) |= 1 << y
	}
}

// executeIndexCB handles the DD CB d op and FD CB d op forms. The address
// has already been resolved from the displacement byte. For opcodes that
// also name a register the operation acts on memory and the result is
// copied into the register as well.
func (z *Z80) executeIndexCB(address uint16, opcode uint8) {
	y := (opcode >> 3) & 0x07
	operand := opcode & 0x07

	value := z.mem.Read(address)
	z.mem.ContendReadNoMreq(address, 1)

	switch opcode >> 6 {
	case 0:
		value = z.shift(y, value)
	case 1:
		z.bitMemptr(y, value)
		return
	case 2:
		value &^= 1 << y
	case 3:
		value |= 1 << y
	}

	z.mem.Write(address, value)
	if operand != 6 {
		*z.r8(operand, nil) = value
	}
}
