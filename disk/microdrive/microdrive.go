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

// Package microdrive models the endless tape loop inside a ZX Microdrive
// cartridge. The Interface I peripheral spins the loop and reads or
// writes the byte under the head; the sector and gap structure is the
// 543 byte unit the .mdr format stores.
package microdrive

import (
	"github.com/jetsetilly/gopherspeccy/curated"
)

// Pattern constants for errors raised by this package.
const (
	// CorruptInput is raised for a malformed .mdr image
	CorruptInput = "microdrive: corrupt input: %v"
)

// ImageSize is the exact byte length of a cartridge image. A .mdr file
// is this plus one trailing write-protect byte.
const ImageSize = 137922

// SectorSize is the length of one sector-plus-gap unit on the loop.
const SectorSize = 543

// Cartridge is one microdrive cartridge.
type Cartridge struct {
	Data         [ImageSize]uint8
	WriteProtect bool

	// head position around the loop; wraps at ImageSize
	pos int

	// modified since load
	Dirty bool
}

// ReadMDR decodes a .mdr file: the image bytes plus one write-protect
// byte.
func ReadMDR(data []uint8) (*Cartridge, error) {
	if len(data) != ImageSize && len(data) != ImageSize+1 {
		return nil, curated.Errorf(CorruptInput, "MDR image is the wrong size")
	}

	c := &Cartridge{}
	copy(c.Data[:], data[:ImageSize])
	if len(data) == ImageSize+1 {
		c.WriteProtect = data[ImageSize] != 0
	}
	return c, nil
}

// WriteMDR encodes the cartridge as a .mdr file.
func (c *Cartridge) WriteMDR() []uint8 {
	out := make([]uint8, ImageSize+1)
	copy(out, c.Data[:])
	if c.WriteProtect {
		out[ImageSize] = 1
	}
	return out
}

// NewBlank creates an unformatted cartridge.
func NewBlank() *Cartridge {
	return &Cartridge{}
}

// Pos returns the head position.
func (c *Cartridge) Pos() int {
	return c.pos
}

// Advance moves the tape loop one byte past the head.
func (c *Cartridge) Advance() {
	c.pos++
	if c.pos >= ImageSize {
		c.pos = 0
	}
}

// AdvanceSector spins the loop to the start of the next 543 byte unit.
func (c *Cartridge) AdvanceSector() {
	c.pos = (c.pos/SectorSize + 1) * SectorSize
	if c.pos >= ImageSize {
		c.pos = 0
	}
}

// ReadHead returns the byte under the head and advances the loop.
func (c *Cartridge) ReadHead() uint8 {
	b := c.Data[c.pos]
	c.Advance()
	return b
}

// WriteHead writes the byte under the head and advances the loop. Writes
// to a protected cartridge spin the loop without recording.
func (c *Cartridge) WriteHead(b uint8) {
	if !c.WriteProtect {
		c.Data[c.pos] = b
		c.Dirty = true
	}
	c.Advance()
}
