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

package microdrive_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/disk/microdrive"
	"github.com/jetsetilly/gopherspeccy/test"
)

func TestMDRRoundTrip(t *testing.T) {
	img := make([]uint8, microdrive.ImageSize+1)
	img[0] = 0x12
	img[microdrive.ImageSize-1] = 0x34
	img[microdrive.ImageSize] = 1 // write protected

	c, err := microdrive.ReadMDR(img)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, c.WriteProtect)
	test.ExpectEquality(t, c.Data[0], uint8(0x12))

	out := c.WriteMDR()
	test.ExpectEquality(t, len(out), microdrive.ImageSize+1)
	test.ExpectEquality(t, out[0], uint8(0x12))
	test.ExpectEquality(t, out[microdrive.ImageSize], uint8(1))

	// the image without the trailing flag byte is accepted too
	c, err = microdrive.ReadMDR(img[:microdrive.ImageSize])
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, c.WriteProtect)

	_, err = microdrive.ReadMDR(img[:100])
	test.ExpectFailure(t, err)
}

func TestHeadWrap(t *testing.T) {
	c := microdrive.NewBlank()

	// spin the whole loop past the head and wrap
	for i := 0; i < microdrive.ImageSize; i++ {
		c.Advance()
	}
	test.ExpectEquality(t, c.Pos(), 0)

	c.Advance()
	test.ExpectEquality(t, c.Pos(), 1)

	c.AdvanceSector()
	test.ExpectEquality(t, c.Pos(), microdrive.SectorSize)
}

func TestWriteProtect(t *testing.T) {
	c := microdrive.NewBlank()

	c.WriteHead(0x42)
	test.ExpectEquality(t, c.Data[0], uint8(0x42))
	test.ExpectSuccess(t, c.Dirty)

	c.WriteProtect = true
	c.WriteHead(0x99)
	test.ExpectEquality(t, c.Data[1], uint8(0))

	// the loop still advanced under the protected write
	test.ExpectEquality(t, c.Pos(), 2)
}
