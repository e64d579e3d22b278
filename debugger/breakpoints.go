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

package debugger

import (
	"fmt"

	"github.com/jetsetilly/gopherspeccy/hardware/memory"
)

// Kind of a breakpoint.
type Kind int

// List of valid Kind values.
const (
	KindExecute Kind = iota
	KindRead
	KindWrite
	KindPortRead
	KindPortWrite
	KindTime
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindExecute:
		return "Execute"
	case KindRead:
		return "Read"
	case KindWrite:
		return "Write"
	case KindPortRead:
		return "Port Read"
	case KindPortWrite:
		return "Port Write"
	case KindTime:
		return "Time"
	case KindEvent:
		return "Event"
	}
	return "unknown"
}

// Life of a breakpoint.
type Life int

// List of valid Life values.
const (
	Permanent Life = iota
	OneShot
)

// PageAny matches an address breakpoint in whatever page is mapped.
const PageAny = -1

// Page encodings for address breakpoints, in the style of the snapshot
// identification scheme: a bank base plus the page number within it.
const (
	PageBaseRAM   = 0
	PageBaseROM   = 32
	PageBaseDock  = 40
	PageBaseExrom = 48
	PageBaseROMCS = 56
)

// PageCode encodes a memory page for breakpoint matching.
func PageCode(p memory.Page) int {
	switch p.Source {
	case memory.SourceROM:
		return PageBaseROM + p.PageNum
	case memory.SourceDock, memory.SourceCartridge:
		return PageBaseDock + p.PageNum
	case memory.SourceExrom:
		return PageBaseExrom + p.PageNum
	case memory.SourceROMCS:
		return PageBaseROMCS + p.PageNum
	}
	return PageBaseRAM + p.PageNum
}

// Breakpoint is one entry in the debugger's table.
type Breakpoint struct {
	ID   uint32
	Kind Kind
	Life Life

	// address target, for execute/read/write kinds. Page is PageAny or a
	// PageCode value
	Address uint16
	Page    int

	// port target, for the port kinds: matches (port & Mask) == Port
	Port     uint16
	PortMask uint16

	// time target, in T-states from the start of a frame
	Tstates uint32

	// event target: a type tag such as "divide" or "tape" and a detail
	// such as "page"
	EventType   string
	EventDetail string

	// Ignore skips this many hits before halting
	Ignore uint32

	// Condition guards the breakpoint; nil is unconditional
	Condition *Expression

	// Commands is a semicolon-separated script executed on the hit
	Commands string
}

func (bp *Breakpoint) String() string {
	life := ""
	if bp.Life == OneShot {
		life = " (one shot)"
	}

	switch bp.Kind {
	case KindExecute, KindRead, KindWrite:
		page := "any page"
		if bp.Page != PageAny {
			page = fmt.Sprintf("page %d", bp.Page)
		}
		return fmt.Sprintf("%d: %s %04x (%s)%s", bp.ID, bp.Kind, bp.Address, page, life)
	case KindPortRead, KindPortWrite:
		return fmt.Sprintf("%d: %s %04x mask %04x%s", bp.ID, bp.Kind, bp.Port, bp.PortMask, life)
	case KindTime:
		return fmt.Sprintf("%d: %s %d%s", bp.ID, bp.Kind, bp.Tstates, life)
	}
	return fmt.Sprintf("%d: %s %s:%s%s", bp.ID, bp.Kind, bp.EventType, bp.EventDetail, life)
}

// Add inserts a breakpoint and returns its ID. IDs are assigned
// monotonically and never reused within a run.
func (d *Debugger) Add(bp *Breakpoint) uint32 {
	d.nextID++
	bp.ID = d.nextID
	d.breakpoints = append(d.breakpoints, bp)
	d.sync()
	return bp.ID
}

// Remove deletes the breakpoint with the given ID.
func (d *Debugger) Remove(id uint32) bool {
	for i, bp := range d.breakpoints {
		if bp.ID == id {
			d.breakpoints = append(d.breakpoints[:i], d.breakpoints[i+1:]...)
			d.sync()
			return true
		}
	}
	return false
}

// Clear deletes every breakpoint.
func (d *Debugger) Clear() {
	d.breakpoints = d.breakpoints[:0]
	d.sync()
}

// Breakpoints returns the current table.
func (d *Debugger) Breakpoints() []*Breakpoint {
	return d.breakpoints
}

// Lookup returns the breakpoint with the given ID.
func (d *Debugger) Lookup(id uint32) *Breakpoint {
	for _, bp := range d.breakpoints {
		if bp.ID == id {
			return bp
		}
	}
	return nil
}

// has reports whether any breakpoint of one of the kinds exists.
func (d *Debugger) has(kinds ...Kind) bool {
	for _, bp := range d.breakpoints {
		for _, k := range kinds {
			if bp.Kind == k {
				return true
			}
		}
	}
	return false
}

// hit processes a matching breakpoint: the ignore count, the condition,
// then the halt, the one-shot removal and the attached commands.
func (d *Debugger) hit(bp *Breakpoint) {
	if bp.Ignore > 0 {
		bp.Ignore--
		return
	}

	if bp.Condition != nil {
		v, err := bp.Condition.Evaluate(d)
		if err != nil {
			// evaluation errors are reported without halting
			d.printf("breakpoint %d condition: %v", bp.ID, err)
			return
		}
		if v == 0 {
			return
		}
	}

	d.halt(bp)

	if bp.Life == OneShot {
		d.Remove(bp.ID)
	}

	if bp.Commands != "" {
		d.RunCommands(bp.Commands)
	}
}

// checkExecute is consulted on every M1 fetch while execute breakpoints
// exist. Returning true halts the run loop.
func (d *Debugger) checkExecute(pc uint16) bool {
	// the instruction resumed from after a halt must not re-trigger
	if d.resumed && pc == d.resumedPC {
		d.resumed = false
		return false
	}

	for _, bp := range d.breakpoints {
		if bp.Kind != KindExecute || bp.Address != pc {
			continue
		}
		if bp.Page != PageAny && bp.Page != PageCode(d.spec.Mem.SlotPage(int(pc>>13))) {
			continue
		}
		d.hit(bp)
		if d.halted() {
			return true
		}
	}
	return false
}

// checkAddress serves the read and write probes.
func (d *Debugger) checkAddress(kind Kind, address uint16) {
	for _, bp := range d.breakpoints {
		if bp.Kind != kind || bp.Address != address {
			continue
		}
		if bp.Page != PageAny && bp.Page != PageCode(d.spec.Mem.SlotPage(int(address>>13))) {
			continue
		}
		d.hit(bp)
	}
}

// checkPort serves the port probes.
func (d *Debugger) checkPort(kind Kind, port uint16) {
	for _, bp := range d.breakpoints {
		if bp.Kind != kind {
			continue
		}
		if port&bp.PortMask == bp.Port&bp.PortMask {
			d.hit(bp)
		}
	}
}

// checkTime serves the scheduler's time events.
func (d *Debugger) checkTime() {
	now := d.spec.Events.Tstates
	for _, bp := range d.breakpoints {
		if bp.Kind == KindTime && now >= bp.Tstates {
			d.hit(bp)
		}
	}
}

// EventRaised is called by paging, tape and disk code at points
// identified by string tags.
func (d *Debugger) EventRaised(eventType, detail string) {
	for _, bp := range d.breakpoints {
		if bp.Kind != KindEvent {
			continue
		}
		if bp.EventType == eventType && (bp.EventDetail == "" || bp.EventDetail == detail) {
			d.hit(bp)
		}
	}
}
