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

// Package plainterm is the debugger terminal of last resort: plain
// buffered stdin and stdout, no editing, no colour. It works when piped,
// which colorterm does not.
package plainterm

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// PlainTerminal implements the terminal.Terminal interface.
type PlainTerminal struct {
	input  *bufio.Reader
	output io.Writer
}

// NewTerminal is the preferred method of initialisation for the
// PlainTerminal type.
func NewTerminal() *PlainTerminal {
	return &PlainTerminal{
		input:  bufio.NewReader(os.Stdin),
		output: os.Stdout,
	}
}

// NewTerminalWith builds a terminal over arbitrary streams.
func NewTerminalWith(input io.Reader, output io.Writer) *PlainTerminal {
	return &PlainTerminal{
		input:  bufio.NewReader(input),
		output: output,
	}
}

// ReadLine implements the terminal.Terminal interface.
func (pt *PlainTerminal) ReadLine(prompt string) (string, error) {
	io.WriteString(pt.output, prompt)
	line, err := pt.input.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Print implements the terminal.Terminal interface.
func (pt *PlainTerminal) Print(s string) {
	io.WriteString(pt.output, s)
	io.WriteString(pt.output, "\n")
}

// Close implements the terminal.Terminal interface.
func (pt *PlainTerminal) Close() error {
	return nil
}
