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

package wd1770_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/disk/wd1770"
	"github.com/jetsetilly/gopherspeccy/test"
)

// a controller with no scheduler attached completes commands immediately,
// which is what these tests rely on.
func newTestFDC() *wd1770.FDC {
	f := wd1770.NewFDC(wd1770.WD1770, 2)
	d := wd1770.NewBlank(2, 80, 10, 512)
	for track := 0; track < 80; track++ {
		for sector := 1; sector <= 10; sector++ {
			data, _ := d.ReadSector(track, 0, sector)
			for i := range data {
				data[i] = uint8(track ^ sector)
			}
		}
	}
	f.Current.Disk = d
	return f
}

func TestRestoreAndSeek(t *testing.T) {
	f := newTestFDC()
	f.Current.Track = 40

	// RESTORE homes the head
	f.CommandWrite(0x00)
	test.ExpectEquality(t, f.TrackRead(), uint8(0))
	test.ExpectEquality(t, f.Current.Track, 0)
	test.ExpectSuccess(t, f.Intrq())
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRBusy == 0)

	// reading the status register clears INTRQ
	test.ExpectFailure(t, f.Intrq())

	// SEEK to the track in the data register
	f.DataWrite(20)
	f.CommandWrite(0x10)
	test.ExpectEquality(t, f.TrackRead(), uint8(20))
	test.ExpectEquality(t, f.Current.Track, 20)
}

func TestStep(t *testing.T) {
	f := newTestFDC()

	// STEP IN with track register update
	f.CommandWrite(0x50)
	test.ExpectEquality(t, f.Current.Track, 1)
	test.ExpectEquality(t, f.TrackRead(), uint8(1))

	// STEP repeats the last direction
	f.CommandWrite(0x30)
	test.ExpectEquality(t, f.Current.Track, 2)

	// STEP OUT, and the head stops at track zero
	f.CommandWrite(0x70)
	f.CommandWrite(0x70)
	f.CommandWrite(0x70)
	test.ExpectEquality(t, f.Current.Track, 0)

	// type I status reports track zero
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRTrk0Lst != 0)
}

func TestReadSector(t *testing.T) {
	f := newTestFDC()

	f.DataWrite(3)
	f.CommandWrite(0x10) // seek to track 3
	f.SectorWrite(5)
	f.CommandWrite(0x80) // read sector

	// the whole sector streams through the data register
	for i := 0; i < 512; i++ {
		test.ExpectEquality(t, f.DataRead(), uint8(3^5))
	}

	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRBusy == 0)
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRRnf == 0)
}

func TestReadSectorNotFound(t *testing.T) {
	f := newTestFDC()

	f.SectorWrite(99)
	f.CommandWrite(0x80)
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRRnf != 0)
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRBusy == 0)
}

func TestWriteSector(t *testing.T) {
	f := newTestFDC()

	f.SectorWrite(1)
	f.CommandWrite(0xa0)
	for i := 0; i < 512; i++ {
		f.DataWrite(0xe5)
	}

	data, ok := f.Current.Disk.ReadSector(0, 0, 1)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, data[0], uint8(0xe5))
	test.ExpectEquality(t, data[511], uint8(0xe5))
}

func TestWriteProtect(t *testing.T) {
	f := newTestFDC()
	f.Current.Disk.WriteProtect = true

	f.SectorWrite(1)
	f.CommandWrite(0xa0)
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRWrProt != 0)
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRBusy == 0)
}

func TestReadAddress(t *testing.T) {
	f := newTestFDC()
	f.DataWrite(7)
	f.CommandWrite(0x10)

	f.CommandWrite(0xc0)

	id := make([]uint8, 6)
	for i := range id {
		id[i] = f.DataRead()
	}
	test.ExpectEquality(t, id[0], uint8(7)) // track
	test.ExpectEquality(t, id[1], uint8(0)) // side
	test.ExpectEquality(t, id[3], uint8(2)) // 512 byte length code

	// the track address also lands in the sector register
	test.ExpectEquality(t, f.SectorRead(), uint8(7))
}

func TestForceInterrupt(t *testing.T) {
	f := newTestFDC()

	f.SectorWrite(1)
	f.CommandWrite(0x80)
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRBusy != 0)

	f.CommandWrite(0xd0)
	test.ExpectSuccess(t, f.StatusRead()&wd1770.SRBusy == 0)
	test.ExpectFailure(t, f.Intrq())

	// force interrupt with a condition raises INTRQ
	f.CommandWrite(0xd8)
	test.ExpectSuccess(t, f.Intrq())
}

func TestImageGeometry(t *testing.T) {
	_, err := wd1770.NewMGT(make([]uint8, 2*80*10*512))
	test.ExpectSuccess(t, err)

	_, err = wd1770.NewMGT(make([]uint8, 1000))
	test.ExpectFailure(t, err)

	_, err = wd1770.NewTRD(make([]uint8, 2*80*16*256))
	test.ExpectSuccess(t, err)
}
