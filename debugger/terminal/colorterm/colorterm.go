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

// Package colorterm is the debugger terminal to use on a real tty: a
// coloured prompt, in-line editing and input history, built over the
// termios wrappers in github.com/pkg/term.
package colorterm

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// ansi attributes used by the terminal.
const (
	ansiPrompt = "\033[1;34m"
	ansiInput  = "\033[1m"
	ansiNormal = "\033[0m"
)

// ColorTerm implements the terminal.Terminal interface.
type ColorTerm struct {
	input  *os.File
	output *os.File

	canAttr    unix.Termios
	cbreakAttr unix.Termios

	history    []string
	historyIdx int
}

// NewTerminal is the preferred method of initialisation for the
// ColorTerm type. It fails if stdin is not a tty.
func NewTerminal() (*ColorTerm, error) {
	ct := &ColorTerm{
		input:  os.Stdin,
		output: os.Stdout,
	}

	if err := termios.Tcgetattr(ct.input.Fd(), &ct.canAttr); err != nil {
		return nil, fmt.Errorf("colorterm: stdin is not a terminal: %w", err)
	}

	ct.cbreakAttr = ct.canAttr
	termios.Cfmakecbreak(&ct.cbreakAttr)

	return ct, nil
}

// Close implements the terminal.Terminal interface, restoring the tty's
// canonical state.
func (ct *ColorTerm) Close() error {
	return termios.Tcsetattr(ct.input.Fd(), termios.TCSANOW, &ct.canAttr)
}

// Print implements the terminal.Terminal interface.
func (ct *ColorTerm) Print(s string) {
	io.WriteString(ct.output, s)
	io.WriteString(ct.output, "\n")
}

// ReadLine implements the terminal.Terminal interface: cbreak input with
// backspace, ctrl-u kill, and up/down history.
func (ct *ColorTerm) ReadLine(prompt string) (string, error) {
	if err := termios.Tcsetattr(ct.input.Fd(), termios.TCSANOW, &ct.cbreakAttr); err != nil {
		return "", err
	}
	defer termios.Tcsetattr(ct.input.Fd(), termios.TCSANOW, &ct.canAttr)

	line := []byte{}
	ct.historyIdx = len(ct.history)

	redraw := func() {
		fmt.Fprintf(ct.output, "\r\033[K%s%s%s%s%s", ansiPrompt, prompt, ansiInput, string(line), ansiNormal)
	}
	redraw()

	buf := make([]byte, 1)
	for {
		if _, err := ct.input.Read(buf); err != nil {
			return "", err
		}

		switch buf[0] {
		case '\n', '\r':
			io.WriteString(ct.output, "\n")
			s := string(line)
			if s != "" {
				ct.history = append(ct.history, s)
			}
			return s, nil

		case 0x7f, 0x08: // backspace
			if len(line) > 0 {
				line = line[:len(line)-1]
				redraw()
			}

		case 0x15: // ctrl-u
			line = line[:0]
			redraw()

		case 0x04: // ctrl-d
			if len(line) == 0 {
				io.WriteString(ct.output, "\n")
				return "", io.EOF
			}

		case 0x03: // ctrl-c
			io.WriteString(ct.output, "\n")
			return "", fmt.Errorf("colorterm: interrupted")

		case 0x1b: // escape sequence
			seq := make([]byte, 2)
			if _, err := ct.input.Read(seq[:1]); err != nil {
				return "", err
			}
			if seq[0] != '[' {
				continue
			}
			if _, err := ct.input.Read(seq[1:]); err != nil {
				return "", err
			}

			switch seq[1] {
			case 'A': // up
				if ct.historyIdx > 0 {
					ct.historyIdx--
					line = []byte(ct.history[ct.historyIdx])
					redraw()
				}
			case 'B': // down
				if ct.historyIdx < len(ct.history)-1 {
					ct.historyIdx++
					line = []byte(ct.history[ct.historyIdx])
				} else {
					ct.historyIdx = len(ct.history)
					line = line[:0]
				}
				redraw()
			}

		default:
			if buf[0] >= 0x20 {
				line = append(line, buf[0])
				redraw()
			}
		}
	}
}
