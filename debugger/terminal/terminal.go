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

// Package terminal defines the interface between the debugger and
// whatever the user types into. The plainterm implementation works
// anywhere; colorterm needs a real tty and gives line editing and
// history in return.
package terminal

// Terminal is the debugger's user interface.
type Terminal interface {
	// ReadLine prompts for and returns one line of input, without the
	// line terminator
	ReadLine(prompt string) (string, error)

	// Print writes one line of output
	Print(s string)

	// Close releases the terminal, restoring any altered tty state
	Close() error
}
