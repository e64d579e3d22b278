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

// Package peripherals implements the port dispatcher and the devices that
// hang off it. A device registers one or more (mask, value) pairs; a port
// access runs the callbacks of every active device whose pair matches the
// full sixteen bit port address. Reads of a port no device attached to
// return the machine's floating bus value.
package peripherals

import (
	"github.com/jetsetilly/gopherspeccy/hardware/events"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
)

// Type identifies a device in the activation set. The set is closed: the
// machine catalogue decides which devices exist and which are active.
type Type int

// List of valid Type values.
const (
	TypeULA Type = iota
	TypeULAFullDecode
	TypeKempston
	TypeKempstonLoose
	TypeAY
	TypeAYFullDecode
	Type128Paging
	TypePlus3Paging
	TypeSCLD
	TypeZXPrinter
	TypeMelodik
	TypeDivIDE
	TypePlusD
	TypeBeta128
	TypeIF1
	TypeIF2
	TypeUSource
	TypeZXCF

	numTypes
)

// ReadFunc is a device's port read callback. The second return value
// reports whether the device attached itself to the bus for this access.
type ReadFunc func(port uint16) (uint8, bool)

// WriteFunc is a device's port write callback.
type WriteFunc func(port uint16, data uint8)

type handler struct {
	mask  uint16
	value uint16
	read  ReadFunc
	write WriteFunc
	typ   Type
}

// Ports is the registry of port handlers and the port I/O entry points
// used by the CPU.
type Ports struct {
	clk *events.Queue
	mem *memory.Memory

	handlers []handler
	active   [numTypes]bool

	// UnattachedPort supplies the value read from a port no device
	// attached to. On most machines this is the floating bus
	UnattachedPort func(port uint16) uint8

	// PortFromULA reports whether the ULA itself decodes the port, which
	// changes the shape of the contention applied to the access
	PortFromULA func(port uint16) bool

	// debugger checks, set only while relevant breakpoints exist
	CheckRead  func(port uint16)
	CheckWrite func(port uint16)
}

// NewPorts is the preferred method of initialisation for the Ports type.
func NewPorts(clk *events.Queue, mem *memory.Memory) *Ports {
	return &Ports{
		clk: clk,
		mem: mem,
		UnattachedPort: func(_ uint16) uint8 {
			return 0xff
		},
		PortFromULA: func(port uint16) bool {
			return port&0x0001 == 0
		},
	}
}

// Register adds a handler matched by (port & mask) == value.
func (p *Ports) Register(typ Type, mask, value uint16, read ReadFunc, write WriteFunc) {
	p.handlers = append(p.handlers, handler{
		mask:  mask,
		value: value,
		read:  read,
		write: write,
		typ:   typ,
	})
}

// Clear removes every registered handler. Activation state is untouched.
func (p *Ports) Clear() {
	p.handlers = p.handlers[:0]
}

// SetActive marks a device type as present on the bus.
func (p *Ports) SetActive(typ Type, active bool) {
	p.active[typ] = active
}

// Active returns whether a device type is present on the bus.
func (p *Ports) Active(typ Type) bool {
	return p.active[typ]
}

// contention for the early part of an I/O machine cycle: one T-state,
// preceded by a ULA delay if the address on the bus is contended.
func (p *Ports) contendEarly(port uint16) {
	if p.mem.Contended(port) && p.mem.ContendDelay != nil {
		p.clk.Tstates += p.mem.ContendDelay(p.clk.Tstates)
	}
	p.clk.Tstates++
}

// contention for the remainder of the I/O cycle. A ULA-decoded port sees
// one delayed access; any other port over a contended address sees the
// bus sampled three times.
func (p *Ports) contendLate(port uint16) {
	ulaDecoded := p.PortFromULA != nil && p.PortFromULA(port)

	switch {
	case ulaDecoded && p.mem.ContendDelay != nil:
		p.clk.Tstates += p.mem.ContendDelay(p.clk.Tstates)
		p.clk.Tstates += 2
	case p.mem.Contended(port) && p.mem.ContendDelay != nil:
		p.clk.Tstates += p.mem.ContendDelay(p.clk.Tstates)
		p.clk.Tstates++
		p.clk.Tstates += p.mem.ContendDelay(p.clk.Tstates)
		p.clk.Tstates++
		p.clk.Tstates += p.mem.ContendDelay(p.clk.Tstates)
	default:
		p.clk.Tstates += 2
	}
}

// PortRead performs a timed port read on behalf of the CPU.
func (p *Ports) PortRead(port uint16) uint8 {
	if p.CheckRead != nil {
		p.CheckRead(port)
	}

	p.contendEarly(port)
	p.contendLate(port)
	value := p.ReadInternal(port)
	p.clk.Tstates++

	return value
}

// ReadInternal dispatches a port read with no timing. The debugger's
// port examination comes through here.
func (p *Ports) ReadInternal(port uint16) uint8 {
	value := uint8(0xff)
	attached := false

	for i := range p.handlers {
		h := &p.handlers[i]
		if h.read == nil || !p.active[h.typ] {
			continue
		}
		if port&h.mask == h.value {
			v, a := h.read(port)
			if a {
				value &= v
				attached = true
			}
		}
	}

	if !attached {
		return p.UnattachedPort(port)
	}
	return value
}

// PortWrite performs a timed port write on behalf of the CPU.
func (p *Ports) PortWrite(port uint16, data uint8) {
	if p.CheckWrite != nil {
		p.CheckWrite(port)
	}

	p.contendEarly(port)
	p.contendLate(port)
	p.WriteInternal(port, data)
	p.clk.Tstates++
}

// WriteInternal dispatches a port write with no timing.
func (p *Ports) WriteInternal(port uint16, data uint8) {
	for i := range p.handlers {
		h := &p.handlers[i]
		if h.write == nil || !p.active[h.typ] {
			continue
		}
		if port&h.mask == h.value {
			h.write(port, data)
		}
	}
}
