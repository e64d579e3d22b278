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

// ayUnusedBits masks the bits of each AY register that exist in silicon.
// Reading a register returns only these bits; the rest read back zero.
var ayUnusedBits = [16]uint8{
	0xff, 0x0f, 0xff, 0x0f, 0xff, 0x0f, 0x1f, 0xff,
	0x1f, 0x1f, 0x1f, 0xff, 0xff, 0x0f, 0xff, 0xff,
}

// AY is the AY-3-8912 sound generator's register file. Sample generation
// belongs to the audio collaborator; the core emulates the register
// behaviour the Z80 can observe.
type AY struct {
	Registers [16]uint8
	Selected  uint8

	// RegisterWrite is raised for every data port write so the audio
	// collaborator can track the register stream in time. may be nil
	RegisterWrite func(reg uint8, data uint8)
}

// NewAY is the preferred method of initialisation for the AY type.
func NewAY() *AY {
	return &AY{}
}

// Reset the register file.
func (ay *AY) Reset() {
	for i := range ay.Registers {
		ay.Registers[i] = 0
	}
	ay.Selected = 0
}

// SelectRead implements the ReadFunc for the register port (0xFFFD).
func (ay *AY) SelectRead(_ uint16) (uint8, bool) {
	return ay.Registers[ay.Selected&0x0f] & ayUnusedBits[ay.Selected&0x0f], true
}

// SelectWrite implements the WriteFunc for the register port (0xFFFD).
func (ay *AY) SelectWrite(_ uint16, data uint8) {
	ay.Selected = data & 0x0f
}

// DataWrite implements the WriteFunc for the data port (0xBFFD).
func (ay *AY) DataWrite(_ uint16, data uint8) {
	ay.Registers[ay.Selected] = data
	if ay.RegisterWrite != nil {
		ay.RegisterWrite(ay.Selected, data)
	}
}
