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

// Package cpu implements the Z80 as fitted to every machine in the ZX
// Spectrum family. The full documented and undocumented instruction set is
// covered, including the DDCB/FDCB register-copy forms, the undocumented
// flag bits 5 and 3, and MEMPTR behaviour.
//
// The CPU does no T-state arithmetic of its own beyond internal machine
// cycles: every memory and port access is routed through the bus package
// interfaces, whose implementations advance the clock with contention
// applied. An instruction's documented timing therefore emerges from the
// sequence of bus accesses it performs, which is the only way to get
// contended timing right.
//
// Step() advances the CPU by exactly one instruction. It cannot fail:
// every one of the 256 primary opcodes (and every prefixed combination) is
// defined. Interrupt and NMI acceptance happen strictly between
// instructions, triggered by the machine and never from within Step().
package cpu
