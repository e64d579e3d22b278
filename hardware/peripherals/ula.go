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

// Key identifies a key on the Spectrum's 8x5 keyboard matrix.
type Key struct {
	Row  int
	Mask uint8
}

// The keyboard matrix. Each row is selected by a zero bit in the high
// byte of a port 0xFE read.
var (
	KeyCapsShift = Key{0, 0x01}
	KeyZ         = Key{0, 0x02}
	KeyX         = Key{0, 0x04}
	KeyC         = Key{0, 0x08}
	KeyV         = Key{0, 0x10}
	KeyA         = Key{1, 0x01}
	KeyS         = Key{1, 0x02}
	KeyD         = Key{1, 0x04}
	KeyF         = Key{1, 0x08}
	KeyG         = Key{1, 0x10}
	KeyQ         = Key{2, 0x01}
	KeyW         = Key{2, 0x02}
	KeyE         = Key{2, 0x04}
	KeyR         = Key{2, 0x08}
	KeyT         = Key{2, 0x10}
	Key1         = Key{3, 0x01}
	Key2         = Key{3, 0x02}
	Key3         = Key{3, 0x04}
	Key4         = Key{3, 0x08}
	Key5         = Key{3, 0x10}
	Key0         = Key{4, 0x01}
	Key9         = Key{4, 0x02}
	Key8         = Key{4, 0x04}
	Key7         = Key{4, 0x08}
	Key6         = Key{4, 0x10}
	KeyP         = Key{5, 0x01}
	KeyO         = Key{5, 0x02}
	KeyI         = Key{5, 0x04}
	KeyU         = Key{5, 0x08}
	KeyY         = Key{5, 0x10}
	KeyEnter     = Key{6, 0x01}
	KeyL         = Key{6, 0x02}
	KeyK         = Key{6, 0x04}
	KeyJ         = Key{6, 0x08}
	KeyH         = Key{6, 0x10}
	KeySpace     = Key{7, 0x01}
	KeySymShift  = Key{7, 0x02}
	KeyM         = Key{7, 0x04}
	KeyN         = Key{7, 0x08}
	KeyB         = Key{7, 0x10}
)

// ULA is the device behind port 0xFE: keyboard in, EAR in, border and
// MIC/speaker out.
type ULA struct {
	// keyboard matrix rows. a zero bit is a pressed key
	rows [8]uint8

	// Border colour, and the MIC and speaker levels, as last written
	Border  uint8
	Mic     bool
	Speaker bool

	// EarBit is the tape input level: 0x40 when high, 0 when low. the
	// tape deck flips it on every edge
	EarBit uint8

	// LastByte is the last value written to the port, kept for snapshots
	LastByte uint8

	// BorderChange is raised when the border colour changes. may be nil
	BorderChange func(colour uint8)
}

// NewULA is the preferred method of initialisation for the ULA type.
func NewULA() *ULA {
	ula := &ULA{}
	for i := range ula.rows {
		ula.rows[i] = 0x1f
	}
	return ula
}

// KeyDown presses a key on the matrix.
func (ula *ULA) KeyDown(k Key) {
	ula.rows[k.Row] &^= k.Mask
}

// KeyUp releases a key on the matrix.
func (ula *ULA) KeyUp(k Key) {
	ula.rows[k.Row] |= k.Mask
}

// ReleaseAll releases every key on the matrix.
func (ula *ULA) ReleaseAll() {
	for i := range ula.rows {
		ula.rows[i] = 0x1f
	}
}

// Read implements the ReadFunc for port 0xFE. Each zero bit in the high
// byte of the port selects a keyboard row; selected rows are ANDed
// together.
func (ula *ULA) Read(port uint16) (uint8, bool) {
	keys := uint8(0x1f)
	selector := uint8(port >> 8)
	for row := 0; row < 8; row++ {
		if selector&(1<<row) == 0 {
			keys &= ula.rows[row]
		}
	}
	return keys | 0xa0 | ula.EarBit, true
}

// Write implements the WriteFunc for port 0xFE.
func (ula *ULA) Write(_ uint16, data uint8) {
	ula.LastByte = data
	ula.Mic = data&0x08 != 0
	ula.Speaker = data&0x10 != 0
	if border := data & 0x07; border != ula.Border {
		ula.Border = border
		if ula.BorderChange != nil {
			ula.BorderChange(border)
		}
	}
}
