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

	"github.com/jetsetilly/gopherspeccy/debugger/terminal"
	"github.com/jetsetilly/gopherspeccy/hardware"
	"github.com/jetsetilly/gopherspeccy/hardware/events"
)

// Mode of the debugger.
type Mode int

// List of valid Mode values.
const (
	// ModeRunning: the emulation proceeds at full speed
	ModeRunning Mode = iota

	// ModeHalted: the emulation is suspended and the debugger owns the
	// machine
	ModeHalted

	// ModeStepping: resume for exactly one instruction
	ModeStepping
)

// Debugger owns the breakpoint table and the run control of one machine.
type Debugger struct {
	spec *hardware.Spectrum

	breakpoints []*Breakpoint
	nextID      uint32

	mode Mode

	term terminal.Terminal

	// set when resuming from a halt so the breakpoint that caused the
	// halt does not immediately re-fire
	resumed   bool
	resumedPC uint16

	// the breakpoint that caused the current halt
	lastHit *Breakpoint

	// QuitRequested is set by the QUIT command
	QuitRequested bool

	// ScriptRunner runs a Lua script file against this debugger. wired
	// by the host; nil when scripting is unavailable
	ScriptRunner func(filename string) error
}

// NewDebugger is the preferred method of initialisation for the Debugger
// type. The terminal may be nil for a purely programmatic debugger.
func NewDebugger(spec *hardware.Spectrum, term terminal.Terminal) *Debugger {
	d := &Debugger{
		spec: spec,
		term: term,
	}

	spec.TimeEvent = d.checkTime

	// paging interfaces report their transitions as debugger events
	if spec.DivIDE != nil {
		spec.DivIDE.Event = func(detail string) { d.EventRaised("divide", detail) }
	}
	if spec.PlusD != nil {
		spec.PlusD.Event = func(detail string) { d.EventRaised("plusd", detail) }
	}
	if spec.Beta != nil {
		spec.Beta.Event = func(detail string) { d.EventRaised("beta128", detail) }
	}
	if spec.IF1 != nil {
		spec.IF1.Event = func(detail string) { d.EventRaised("if1", detail) }
	}
	if spec.USource != nil {
		spec.USource.Event = func(detail string) { d.EventRaised("usource", detail) }
	}

	return d
}

// Machine returns the machine under debug.
func (d *Debugger) Machine() *hardware.Spectrum {
	return d.spec
}

// Mode returns the debugger's current mode.
func (d *Debugger) Mode() Mode {
	return d.mode
}

func (d *Debugger) halted() bool {
	return d.mode == ModeHalted
}

// halt suspends the emulation.
func (d *Debugger) halt(bp *Breakpoint) {
	d.mode = ModeHalted
	d.lastHit = bp
	if bp != nil {
		d.printf("break on %s", bp)
	}
	d.printf("%s", d.spec.CPU.String())
}

// sync installs or removes the machine probes according to which
// breakpoint kinds exist. The probes are nil while unused so the hot
// paths pay nothing.
func (d *Debugger) sync() {
	if d.has(KindExecute) {
		d.spec.CheckExecute = d.checkExecute
	} else {
		d.spec.CheckExecute = nil
	}

	if d.has(KindRead) {
		d.spec.Mem.CheckRead = func(address uint16) { d.checkAddress(KindRead, address) }
	} else {
		d.spec.Mem.CheckRead = nil
	}

	if d.has(KindWrite) {
		d.spec.Mem.CheckWrite = func(address uint16) { d.checkAddress(KindWrite, address) }
	} else {
		d.spec.Mem.CheckWrite = nil
	}

	if d.has(KindPortRead) {
		d.spec.Ports.CheckRead = func(port uint16) { d.checkPort(KindPortRead, port) }
	} else {
		d.spec.Ports.CheckRead = nil
	}

	if d.has(KindPortWrite) {
		d.spec.Ports.CheckWrite = func(port uint16) { d.checkPort(KindPortWrite, port) }
	} else {
		d.spec.Ports.CheckWrite = nil
	}

	// time breakpoints ride the scheduler
	d.spec.Events.CancelKind(events.DebuggerTime)
	for _, bp := range d.breakpoints {
		if bp.Kind == KindTime && bp.Tstates > d.spec.Events.Tstates {
			d.spec.Events.Add(bp.Tstates, events.DebuggerTime, bp.ID)
		}
	}
}

// SingleStep resumes the emulation for exactly one instruction.
func (d *Debugger) SingleStep() {
	d.resumed = true
	d.resumedPC = d.spec.CPU.PC
	d.mode = ModeStepping
	d.spec.Step()
	d.mode = ModeHalted
	d.printf("%s", d.spec.CPU.String())
}

// StepOver runs the instruction at PC to completion: a CALL, RST, DJNZ,
// HALT or repeating block instruction runs until control returns to the
// following instruction. Anything else is a single step.
func (d *Debugger) StepOver() {
	pc := d.spec.CPU.PC
	mn, length := Disassemble(d.spec.Mem.ReadInternal, pc)

	if !stepsOver(mn) {
		d.SingleStep()
		return
	}

	d.Add(&Breakpoint{
		Kind:    KindExecute,
		Address: pc + length,
		Page:    PageAny,
		Life:    OneShot,
	})
	d.Run()
}

// Run resumes the emulation until a breakpoint hits or the host stops
// it.
func (d *Debugger) Run() {
	d.resumed = true
	d.resumedPC = d.spec.CPU.PC
	d.mode = ModeRunning

	d.spec.Run(func() bool {
		return d.mode == ModeRunning && !d.QuitRequested
	})

	if d.mode == ModeRunning {
		d.mode = ModeHalted
	}
}

// Halt suspends the emulation from outside: the host's break key.
func (d *Debugger) Halt() {
	d.halt(nil)
}

func (d *Debugger) printf(format string, values ...interface{}) {
	if d.term == nil {
		return
	}
	d.term.Print(fmt.Sprintf(format, values...))
}
