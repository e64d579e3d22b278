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

// Loop is the interactive session: read a command, execute it, repeat
// until QUIT. Resuming commands (RUN, STEP, NEXT) give the machine the
// thread; it comes back on the next halt.
func (d *Debugger) Loop() error {
	d.mode = ModeHalted
	d.printf("%s", d.spec.CPU.String())

	var last string

	for !d.QuitRequested {
		input, err := d.term.ReadLine("(gopherspeccy) ")
		if err != nil {
			return err
		}

		// an empty line repeats the previous command, which makes
		// stepping comfortable
		if input == "" {
			input = last
		} else {
			last = input
		}
		if input == "" {
			continue
		}

		d.RunCommands(input)
	}

	return nil
}
