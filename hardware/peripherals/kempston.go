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

package peripherals

// Kempston joystick bit assignments.
const (
	KempstonRight = 0x01
	KempstonLeft  = 0x02
	KempstonDown  = 0x04
	KempstonUp    = 0x08
	KempstonFire  = 0x10
)

// Kempston is the joystick interface. Most machines decode it loosely
// (any port with bits 5-7 clear); the TC2048's built-in interface uses
// full decoding of port 0x1F. The machine catalogue registers whichever
// applies.
type Kempston struct {
	// State is the current joystick state: a set bit is a pressed
	// direction or button
	State uint8
}

// NewKempston is the preferred method of initialisation for the Kempston
// type.
func NewKempston() *Kempston {
	return &Kempston{}
}

// Read implements the ReadFunc for the joystick port.
func (k *Kempston) Read(_ uint16) (uint8, bool) {
	return k.State, true
}
