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
	"strconv"
	"strings"
)

// RunCommands executes a semicolon-separated command script, as attached
// to a breakpoint or typed at the prompt.
func (d *Debugger) RunCommands(script string) {
	for _, command := range strings.Split(script, ";") {
		command = strings.TrimSpace(command)
		if command == "" {
			continue
		}
		d.RunCommand(command)
		if d.QuitRequested {
			return
		}
	}
}

// parseValue accepts decimal, 0x hex and % binary numbers.
func parseValue(s string) (uint32, bool) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		s = s[2:]
	} else if strings.HasPrefix(s, "%") {
		base = 2
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// RunCommand executes a single debugger command.
func (d *Debugger) RunCommand(command string) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return
	}

	verb := strings.ToUpper(fields[0])
	args := fields[1:]

	switch verb {
	case "BREAK", "B":
		d.cmdBreak(args, Permanent)
	case "TBREAK", "TB":
		d.cmdBreak(args, OneShot)
	case "DELETE", "DEL":
		d.cmdDelete(args)
	case "IGNORE":
		d.cmdIgnore(args)
	case "CONDITION", "COND":
		d.cmdCondition(args, command)
	case "COMMANDS":
		d.cmdCommands(args, command)
	case "LIST", "BLIST":
		d.cmdList()
	case "STEP", "S":
		d.SingleStep()
	case "NEXT", "N":
		d.StepOver()
	case "CONTINUE", "RUN", "C", "R":
		d.Run()
	case "REGS", "CPU":
		d.printf("%s", d.spec.CPU.String())
	case "TSTATES":
		d.printf("tstates: %d", d.spec.Events.Tstates)
	case "MEM", "M":
		d.cmdMem(args)
	case "POKE":
		d.cmdPoke(args)
	case "IN":
		d.cmdIn(args)
	case "OUT":
		d.cmdOut(args)
	case "DISASM", "DIS":
		d.cmdDisasm(args)
	case "PRINT", "P":
		d.cmdPrint(command)
	case "SCRIPT":
		d.cmdScript(args)
	case "QUIT", "Q", "EXIT":
		d.QuitRequested = true
	case "HELP", "?":
		d.cmdHelp()
	default:
		d.printf("unknown command %s. try HELP", verb)
	}
}

func (d *Debugger) cmdBreak(args []string, life Life) {
	if len(args) == 0 {
		d.printf("usage: BREAK [READ|WRITE|PORT|TIME|EVENT] target")
		return
	}

	bp := &Breakpoint{Kind: KindExecute, Page: PageAny, Life: life}

	switch strings.ToUpper(args[0]) {
	case "READ":
		bp.Kind = KindRead
		args = args[1:]
	case "WRITE":
		bp.Kind = KindWrite
		args = args[1:]
	case "PORT":
		if len(args) < 3 {
			d.printf("usage: BREAK PORT READ|WRITE port [mask]")
			return
		}
		if strings.ToUpper(args[1]) == "WRITE" {
			bp.Kind = KindPortWrite
		} else {
			bp.Kind = KindPortRead
		}
		port, ok := parseValue(args[2])
		if !ok {
			d.printf("bad port %s", args[2])
			return
		}
		bp.Port = uint16(port)
		bp.PortMask = 0xffff
		if len(args) > 3 {
			if mask, ok := parseValue(args[3]); ok {
				bp.PortMask = uint16(mask)
			}
		}
		d.printf("breakpoint %d added", d.Add(bp))
		return
	case "TIME":
		if len(args) < 2 {
			d.printf("usage: BREAK TIME tstates")
			return
		}
		bp.Kind = KindTime
		v, ok := parseValue(args[1])
		if !ok {
			d.printf("bad tstate count %s", args[1])
			return
		}
		bp.Tstates = v
		d.printf("breakpoint %d added", d.Add(bp))
		return
	case "EVENT":
		if len(args) < 2 {
			d.printf("usage: BREAK EVENT type [detail]")
			return
		}
		bp.Kind = KindEvent
		bp.EventType = args[1]
		if len(args) > 2 {
			bp.EventDetail = args[2]
		}
		d.printf("breakpoint %d added", d.Add(bp))
		return
	}

	// an address breakpoint: execute, read or write
	if len(args) == 0 {
		d.printf("address missing")
		return
	}
	address, ok := parseValue(args[0])
	if !ok {
		d.printf("bad address %s", args[0])
		return
	}
	bp.Address = uint16(address)

	if len(args) > 1 {
		if page, ok := parseValue(args[1]); ok {
			bp.Page = int(page)
		}
	}

	d.printf("breakpoint %d added", d.Add(bp))
}

func (d *Debugger) cmdDelete(args []string) {
	if len(args) == 0 {
		d.Clear()
		d.printf("all breakpoints deleted")
		return
	}
	id, ok := parseValue(args[0])
	if !ok || !d.Remove(uint32(id)) {
		d.printf("no breakpoint %s", args[0])
		return
	}
	d.printf("breakpoint %d deleted", id)
}

func (d *Debugger) cmdIgnore(args []string) {
	if len(args) < 2 {
		d.printf("usage: IGNORE id count")
		return
	}
	id, ok1 := parseValue(args[0])
	count, ok2 := parseValue(args[1])
	bp := d.Lookup(uint32(id))
	if !ok1 || !ok2 || bp == nil {
		d.printf("no breakpoint %s", args[0])
		return
	}
	bp.Ignore = count
}

func (d *Debugger) cmdCondition(args []string, command string) {
	if len(args) < 2 {
		d.printf("usage: CONDITION id expression")
		return
	}
	id, ok := parseValue(args[0])
	bp := d.Lookup(uint32(id))
	if !ok || bp == nil {
		d.printf("no breakpoint %s", args[0])
		return
	}

	// the expression is everything after the id, with original spacing
	idx := strings.Index(command, args[0]) + len(args[0])
	source := strings.TrimSpace(command[idx:])

	expr, err := ParseExpression(source)
	if err != nil {
		d.printf("%v", err)
		return
	}
	bp.Condition = expr
}

func (d *Debugger) cmdCommands(args []string, command string) {
	if len(args) < 2 {
		d.printf("usage: COMMANDS id command[;command...]")
		return
	}
	id, ok := parseValue(args[0])
	bp := d.Lookup(uint32(id))
	if !ok || bp == nil {
		d.printf("no breakpoint %s", args[0])
		return
	}

	idx := strings.Index(command, args[0]) + len(args[0])
	bp.Commands = strings.TrimSpace(command[idx:])
}

func (d *Debugger) cmdList() {
	if len(d.breakpoints) == 0 {
		d.printf("no breakpoints")
		return
	}
	for _, bp := range d.breakpoints {
		d.printf("%s", bp)
	}
}

func (d *Debugger) cmdMem(args []string) {
	if len(args) == 0 {
		d.printf("usage: MEM address [length]")
		return
	}
	address, ok := parseValue(args[0])
	if !ok {
		d.printf("bad address %s", args[0])
		return
	}
	length := uint32(64)
	if len(args) > 1 {
		if v, ok := parseValue(args[1]); ok {
			length = v
		}
	}

	for row := uint32(0); row < length; row += 8 {
		line := strings.Builder{}
		for col := uint32(0); col < 8 && row+col < length; col++ {
			if col > 0 {
				line.WriteString(" ")
			}
			a := uint16(address + row + col)
			line.WriteString(strings.ToLower(strconv.FormatUint(uint64(d.spec.Mem.ReadInternal(a))|0x100, 16)[1:]))
		}
		d.printf("%04x: %s", uint16(address+row), line.String())
	}
}

func (d *Debugger) cmdPoke(args []string) {
	if len(args) < 2 {
		d.printf("usage: POKE address value")
		return
	}
	address, ok1 := parseValue(args[0])
	value, ok2 := parseValue(args[1])
	if !ok1 || !ok2 {
		d.printf("bad POKE")
		return
	}
	d.spec.Mem.WriteInternal(uint16(address), uint8(value))
}

func (d *Debugger) cmdIn(args []string) {
	if len(args) == 0 {
		d.printf("usage: IN port")
		return
	}
	port, ok := parseValue(args[0])
	if !ok {
		d.printf("bad port %s", args[0])
		return
	}
	d.printf("%04x: %02x", uint16(port), d.spec.Ports.ReadInternal(uint16(port)))
}

func (d *Debugger) cmdOut(args []string) {
	if len(args) < 2 {
		d.printf("usage: OUT port value")
		return
	}
	port, ok1 := parseValue(args[0])
	value, ok2 := parseValue(args[1])
	if !ok1 || !ok2 {
		d.printf("bad OUT")
		return
	}
	d.spec.Ports.WriteInternal(uint16(port), uint8(value))
}

func (d *Debugger) cmdDisasm(args []string) {
	address := uint32(d.spec.CPU.PC)
	if len(args) > 0 {
		if v, ok := parseValue(args[0]); ok {
			address = v
		}
	}

	a := uint16(address)
	for i := 0; i < 8; i++ {
		mn, length := Disassemble(d.spec.Mem.ReadInternal, a)
		d.printf("%04x: %s", a, mn)
		a += length
	}
}

func (d *Debugger) cmdPrint(command string) {
	idx := strings.IndexAny(command, " \t")
	if idx < 0 {
		d.printf("usage: PRINT expression")
		return
	}
	expr, err := ParseExpression(strings.TrimSpace(command[idx:]))
	if err != nil {
		d.printf("%v", err)
		return
	}
	v, err := expr.Evaluate(d)
	if err != nil {
		d.printf("%v", err)
		return
	}
	d.printf("%d (0x%04x)", v, v)
}

func (d *Debugger) cmdScript(args []string) {
	if len(args) == 0 {
		d.printf("usage: SCRIPT file.lua")
		return
	}
	if d.ScriptRunner == nil {
		d.printf("scripting not available")
		return
	}
	if err := d.ScriptRunner(args[0]); err != nil {
		d.printf("%v", err)
	}
}

func (d *Debugger) cmdHelp() {
	for _, line := range []string{
		"BREAK addr [page]            break on execute",
		"BREAK READ|WRITE addr        break on memory access",
		"BREAK PORT READ|WRITE p [m]  break on port access",
		"BREAK TIME tstates           break at a frame time",
		"BREAK EVENT type [detail]    break on a named event",
		"TBREAK ...                   as BREAK, one shot",
		"DELETE [id]                  delete breakpoint(s)",
		"IGNORE id n                  skip n hits",
		"CONDITION id expr            guard with an expression",
		"COMMANDS id cmds             run commands on hit",
		"LIST                         list breakpoints",
		"STEP / NEXT / CONTINUE       run control",
		"REGS / TSTATES / MEM / POKE  inspection",
		"IN / OUT / DISASM / PRINT    inspection",
		"SCRIPT file.lua              run a Lua script",
		"QUIT                         leave the debugger",
	} {
		d.printf("%s", line)
	}
}
