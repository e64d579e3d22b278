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

package wd1770

import (
	"github.com/jetsetilly/gopherspeccy/curated"
)

// Pattern constants for errors raised by this package.
const (
	// CorruptInput is raised for a disk image of impossible size
	CorruptInput = "disk: corrupt input: %v"
)

// Disk is a double-sided floppy image with uniform geometry, which covers
// the formats the +D, Disciple and Beta 128 shipped with.
type Disk struct {
	Sides      int
	Tracks     int
	Sectors    int
	SectorSize int

	// FirstSectorID is the ID of the first sector on each track: one for
	// MGT and TR-DOS formats
	FirstSectorID int

	Data []uint8

	WriteProtect bool
}

// MGT geometry: 2 sides, 80 tracks, 10 sectors of 512 bytes.
const mgtSize = 2 * 80 * 10 * 512

// TRD geometry: 2 sides, 80 tracks, 16 sectors of 256 bytes.
const trdSize = 2 * 80 * 16 * 256

// NewMGT decodes a +D/Disciple .mgt image.
func NewMGT(data []uint8) (*Disk, error) {
	if len(data) != mgtSize {
		return nil, curated.Errorf(CorruptInput, "MGT image is the wrong size")
	}
	d := &Disk{
		Sides: 2, Tracks: 80, Sectors: 10, SectorSize: 512,
		FirstSectorID: 1,
		Data:          make([]uint8, len(data)),
	}
	copy(d.Data, data)
	return d, nil
}

// NewTRD decodes a Beta 128 .trd image.
func NewTRD(data []uint8) (*Disk, error) {
	if len(data) > trdSize || len(data)%256 != 0 {
		return nil, curated.Errorf(CorruptInput, "TRD image is the wrong size")
	}
	d := &Disk{
		Sides: 2, Tracks: 80, Sectors: 16, SectorSize: 256,
		FirstSectorID: 1,
		Data:          make([]uint8, trdSize),
	}
	copy(d.Data, data)
	return d, nil
}

// NewBlank creates an unformatted image with the given geometry.
func NewBlank(sides, tracks, sectors, sectorSize int) *Disk {
	return &Disk{
		Sides: sides, Tracks: tracks, Sectors: sectors, SectorSize: sectorSize,
		FirstSectorID: 1,
		Data:          make([]uint8, sides*tracks*sectors*sectorSize),
	}
}

// sectorOffset returns the offset of a sector's data in the image. MGT
// images interleave by track: track 0 side 0, track 0 side 1, and so on.
func (d *Disk) sectorOffset(track, side, sector int) (int, bool) {
	if track < 0 || track >= d.Tracks || side < 0 || side >= d.Sides {
		return 0, false
	}
	sector -= d.FirstSectorID
	if sector < 0 || sector >= d.Sectors {
		return 0, false
	}
	trackSize := d.Sectors * d.SectorSize
	return (track*d.Sides+side)*trackSize + sector*d.SectorSize, true
}

// ReadSector returns the data of one sector, or false if the address is
// off the disk.
func (d *Disk) ReadSector(track, side, sector int) ([]uint8, bool) {
	offset, ok := d.sectorOffset(track, side, sector)
	if !ok {
		return nil, false
	}
	return d.Data[offset : offset+d.SectorSize], true
}
