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

// Package script embeds a Lua interpreter in the debugger. A script sees
// the machine through a small API:
//
//	peek(addr)         read a byte, no timing, no breakpoints
//	poke(addr, v)      write a byte
//	reg("HL")          read a register or flag by expression
//	step()             execute one instruction
//	cmd("break 0x8000") run any debugger command
//
// Scripts run with the machine paused; they resume it only through
// cmd("run"), the same way a keyboard user would.
package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/jetsetilly/gopherspeccy/debugger"
)

// Runner binds a debugger to a Lua state factory. Wire its Run method
// into Debugger.ScriptRunner.
type Runner struct {
	dbg *debugger.Debugger
}

// NewRunner is the preferred method of initialisation for the Runner
// type.
func NewRunner(dbg *debugger.Debugger) *Runner {
	return &Runner{dbg: dbg}
}

// Run executes a Lua script file.
func (r *Runner) Run(filename string) error {
	L := lua.NewState()
	defer L.Close()
	r.register(L)
	return L.DoFile(filename)
}

// RunString executes Lua source.
func (r *Runner) RunString(source string) error {
	L := lua.NewState()
	defer L.Close()
	r.register(L)
	return L.DoString(source)
}

func (r *Runner) register(L *lua.LState) {
	spec := r.dbg.Machine()

	L.SetGlobal("peek", L.NewFunction(func(L *lua.LState) int {
		address := uint16(L.CheckInt(1))
		L.Push(lua.LNumber(spec.Mem.ReadInternal(address)))
		return 1
	}))

	L.SetGlobal("poke", L.NewFunction(func(L *lua.LState) int {
		address := uint16(L.CheckInt(1))
		value := uint8(L.CheckInt(2))
		spec.Mem.WriteInternal(address, value)
		return 0
	}))

	L.SetGlobal("reg", L.NewFunction(func(L *lua.LState) int {
		expr, err := debugger.ParseExpression(L.CheckString(1))
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		v, err := expr.Evaluate(r.dbg)
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		L.Push(lua.LNumber(v))
		return 1
	}))

	L.SetGlobal("step", L.NewFunction(func(L *lua.LState) int {
		r.dbg.SingleStep()
		return 0
	}))

	L.SetGlobal("cmd", L.NewFunction(func(L *lua.LState) int {
		r.dbg.RunCommands(L.CheckString(1))
		return 0
	}))
}
