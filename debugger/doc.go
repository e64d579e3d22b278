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

// Package debugger implements the typed-breakpoint debugger: execute,
// read, write, port, time and event breakpoints, each optionally guarded
// by a conditional expression and carrying a command script that runs on
// the hit.
//
// The debugger installs its probes into the machine only while matching
// breakpoints exist: an idle debugger costs the emulation nothing.
//
// The interactive loop lives in loop.go and talks to the user through
// the terminal package; breakpoint command scripts reuse the same
// command parser. Lua scripting is in the script package.
package debugger
