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

package debugger_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/debugger"
	"github.com/jetsetilly/gopherspeccy/hardware"
	"github.com/jetsetilly/gopherspeccy/hardware/models"
	"github.com/jetsetilly/gopherspeccy/test"
)

func newTestDebugger() (*debugger.Debugger, *hardware.Spectrum) {
	spec := hardware.NewSpectrum(models.Get(models.Spec48))
	dbg := debugger.NewDebugger(spec, nil)
	return dbg, spec
}

func putProgram(s *hardware.Spectrum, origin uint16, bytes ...uint8) {
	for i, b := range bytes {
		s.Mem.WriteInternal(origin+uint16(i), b)
	}
	s.CPU.PC = origin
}

func TestExecuteBreakpoint(t *testing.T) {
	dbg, spec := newTestDebugger()

	// a run of NOPs with a breakpoint in the middle
	putProgram(spec, 0x8000, 0x00, 0x00, 0x00, 0x00)
	dbg.Add(&debugger.Breakpoint{
		Kind:    debugger.KindExecute,
		Address: 0x8002,
		Page:    debugger.PageAny,
	})

	dbg.Run()
	test.ExpectEquality(t, spec.CPU.PC, uint16(0x8002))
	test.ExpectEquality(t, dbg.Mode(), debugger.ModeHalted)

	// resuming does not immediately re-trigger on the same address
	dbg.SingleStep()
	test.ExpectEquality(t, spec.CPU.PC, uint16(0x8003))
}

func TestOneShotBreakpoint(t *testing.T) {
	dbg, spec := newTestDebugger()

	putProgram(spec, 0x8000, 0x00, 0x00)
	dbg.Add(&debugger.Breakpoint{
		Kind:    debugger.KindExecute,
		Address: 0x8001,
		Page:    debugger.PageAny,
		Life:    debugger.OneShot,
	})

	dbg.Run()
	test.ExpectEquality(t, spec.CPU.PC, uint16(0x8001))

	// the breakpoint removed itself the instant it fired
	test.ExpectEquality(t, len(dbg.Breakpoints()), 0)
}

func TestIgnoreCount(t *testing.T) {
	dbg, spec := newTestDebugger()

	// JP 0x8000: an infinite loop through the breakpoint address
	putProgram(spec, 0x8000, 0xc3, 0x00, 0x80)
	id := dbg.Add(&debugger.Breakpoint{
		Kind:    debugger.KindExecute,
		Address: 0x8000,
		Page:    debugger.PageAny,
		Ignore:  3,
	})

	dbg.Run()

	// three hits were swallowed
	test.ExpectEquality(t, dbg.Lookup(id).Ignore, uint32(0))
	test.ExpectEquality(t, spec.CPU.PC, uint16(0x8000))
}

func TestConditionalBreakpoint(t *testing.T) {
	dbg, spec := newTestDebugger()

	// INC A; JP 0x8000 - break when A reaches 5
	putProgram(spec, 0x8000, 0x3c, 0xc3, 0x00, 0x80)

	expr, err := debugger.ParseExpression("A == 5")
	test.ExpectSuccess(t, err)

	dbg.Add(&debugger.Breakpoint{
		Kind:      debugger.KindExecute,
		Address:   0x8000,
		Page:      debugger.PageAny,
		Condition: expr,
	})

	spec.CPU.A = 0
	dbg.Run()
	test.ExpectEquality(t, spec.CPU.A, uint8(5))
}

func TestWriteBreakpoint(t *testing.T) {
	dbg, spec := newTestDebugger()

	// LD A,0x42 ; LD (0x9000),A ; NOP
	putProgram(spec, 0x8000, 0x3e, 0x42, 0x32, 0x00, 0x90, 0x00)
	dbg.Add(&debugger.Breakpoint{
		Kind:    debugger.KindWrite,
		Address: 0x9000,
		Page:    debugger.PageAny,
	})

	dbg.Run()
	test.ExpectEquality(t, dbg.Mode(), debugger.ModeHalted)
	test.ExpectEquality(t, spec.Mem.ReadInternal(0x9000), uint8(0x42))
}

func TestPortBreakpoint(t *testing.T) {
	dbg, spec := newTestDebugger()

	// OUT (0xFE),A
	putProgram(spec, 0x8000, 0xd3, 0xfe, 0x00)
	dbg.Add(&debugger.Breakpoint{
		Kind:     debugger.KindPortWrite,
		Port:     0x00fe,
		PortMask: 0x00ff,
	})

	dbg.Run()
	test.ExpectEquality(t, dbg.Mode(), debugger.ModeHalted)
}

func TestStepOver(t *testing.T) {
	dbg, spec := newTestDebugger()

	// CALL 0x9000 ; NOP / subroutine: RET
	putProgram(spec, 0x8000, 0xcd, 0x00, 0x90, 0x00)
	spec.Mem.WriteInternal(0x9000, 0xc9)
	spec.CPU.SP = 0xff00

	dbg.StepOver()
	test.ExpectEquality(t, spec.CPU.PC, uint16(0x8003))
}

func TestExpressionEvaluation(t *testing.T) {
	dbg, spec := newTestDebugger()
	spec.CPU.SetHL(0x9234)
	spec.CPU.A = 0x80
	spec.CPU.F = 0x01 // carry set
	spec.Mem.WriteInternal(0x9234, 0x56)

	eval := func(src string) uint32 {
		t.Helper()
		expr, err := debugger.ParseExpression(src)
		test.ExpectSuccess(t, err)
		v, err := expr.Evaluate(dbg)
		test.ExpectSuccess(t, err)
		return v
	}

	test.ExpectEquality(t, eval("HL"), uint32(0x9234))
	test.ExpectEquality(t, eval("HL + 1"), uint32(0x9235))
	test.ExpectEquality(t, eval("[HL]"), uint32(0x56))
	test.ExpectEquality(t, eval("A == 0x80"), uint32(1))
	test.ExpectEquality(t, eval("carry"), uint32(1))
	test.ExpectEquality(t, eval("zero"), uint32(0))
	test.ExpectEquality(t, eval("(A + 1) & 0xff"), uint32(0x81))
	test.ExpectEquality(t, eval("A > 0x10 && carry"), uint32(1))
	test.ExpectEquality(t, eval("%1010"), uint32(10))

	_, err := debugger.ParseExpression("QQ + 1")
	test.ExpectFailure(t, err)
	_, err = debugger.ParseExpression("A +")
	test.ExpectFailure(t, err)
}

func TestDisassembler(t *testing.T) {
	dbg, spec := newTestDebugger()
	_ = dbg

	check := func(expected string, expectedLen uint16, bytes ...uint8) {
		t.Helper()
		for i, b := range bytes {
			spec.Mem.WriteInternal(0x8000+uint16(i), b)
		}
		mn, length := debugger.Disassemble(spec.Mem.ReadInternal, 0x8000)
		test.ExpectEquality(t, mn, expected)
		test.ExpectEquality(t, length, expectedLen)
	}

	check("NOP", 1, 0x00)
	check("LD BC,0x1234", 3, 0x01, 0x34, 0x12)
	check("LD B,(HL)", 1, 0x46)
	check("HALT", 1, 0x76)
	check("ADD A,B", 1, 0x80)
	check("CALL 0x9000", 3, 0xcd, 0x00, 0x90)
	check("RST 0x38", 1, 0xff)
	check("RLC B", 2, 0xcb, 0x00)
	check("BIT 7,(HL)", 2, 0xcb, 0x7e)
	check("LDIR", 2, 0xed, 0xb0)
	check("IN B,(C)", 2, 0xed, 0x40)
	check("LD (0x4000),BC", 4, 0xed, 0x43, 0x00, 0x40)
	check("LD A,(IX+5)", 3, 0xdd, 0x7e, 0x05)
	check("LD IX,0x8000", 4, 0xdd, 0x21, 0x00, 0x80)
	check("BIT 1,(IY-1)", 4, 0xfd, 0xcb, 0xff, 0x4e)
	check("JR 0x8000", 2, 0x18, 0xfe)
}

func TestCommandInterface(t *testing.T) {
	dbg, spec := newTestDebugger()

	dbg.RunCommands("break 0x8005; poke 0x8000 0x3c")
	test.ExpectEquality(t, len(dbg.Breakpoints()), 1)
	test.ExpectEquality(t, spec.Mem.ReadInternal(0x8000), uint8(0x3c))

	dbg.RunCommand("delete 1")
	test.ExpectEquality(t, len(dbg.Breakpoints()), 0)
}
