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

// Package wd1770 models the Western Digital floppy controller family as
// fitted to the +D, Disciple and Beta 128 interfaces. The CPU-facing
// registers stay readable and writable while a command runs; command
// completion, stepping and index pulses arrive through the machine's
// event scheduler, which calls back into the controller.
package wd1770

import (
	"github.com/jetsetilly/gopherspeccy/logger"
)

// Status register bits.
const (
	SRBusy    = 0x01 // command under execution
	SRIdxDrq  = 0x02 // index pulse (type I) / data request (type II/III)
	SRTrk0Lst = 0x04 // track zero (type I) / lost data (type II/III)
	SRCrcErr  = 0x08
	SRRnf     = 0x10 // record not found
	SRSpinUp  = 0x20 // spin-up complete (type I) / record type (type II)
	SRWrProt  = 0x40
	SRMotorOn = 0x80
)

// Variant selects which member of the family is fitted. The WD1773 and
// FD1793 have a head-load line in place of spin-up.
type Variant int

// List of valid Variant values.
const (
	WD1770 Variant = iota
	WD1772
	WD1773
	FD1793
)

// state of the command sequencer.
type state int

const (
	stateNone state = iota
	stateSeek
	stateSeekDelay
	stateVerify
	stateRead
	stateWrite
	stateReadTrack
	stateWriteTrack
	stateReadID
)

// statusType selects how the status register is composed.
type statusType int

const (
	statusType1 statusType = iota
	statusType2
)

// Drive is one disk drive attached to the controller.
type Drive struct {
	Disk *Disk

	// physical head position, as opposed to the track register
	Track int

	// head select
	Side int

	Motor bool

	IndexPulse bool
}

// Ready reports whether a disk is loaded.
func (d *Drive) Ready() bool {
	return d.Disk != nil
}

// FDC is the controller.
type FDC struct {
	Variant Variant

	Drives  []*Drive
	Current *Drive

	// T-states per millisecond for command latency conversion
	CyclesPerMs uint32

	// the stepping rates selected by the low two command bits, in ms
	rates [4]uint32

	command uint8
	status  uint8
	track   uint8
	sector  uint8
	data    uint8

	direction int // +1 rimwards, -1 spindlewards
	dden      bool
	intrq     bool
	headLoad  bool

	state      state
	statusType statusType

	// id fields captured by the last address mark search
	idTrack  uint8
	idSide   uint8
	idSector uint8
	idLength uint8

	crc uint16
	rev int

	// transfer state
	buffer      []uint8
	bufferPos   int
	multisector bool

	// line callbacks into the interface that owns the controller
	SetIntrq   func()
	ResetIntrq func()
	SetDatarq  func()
	ResetDatarq func()

	// ScheduleDone asks the machine to call CommandDone after the given
	// number of T-states
	ScheduleDone func(delay uint32)
}

// NewFDC is the preferred method of initialisation for the FDC type.
func NewFDC(variant Variant, drives int) *FDC {
	f := &FDC{
		Variant:     variant,
		CyclesPerMs: 3500,
		rates:       [4]uint32{6, 12, 20, 30},
	}
	if variant == WD1772 {
		f.rates = [4]uint32{2, 3, 5, 6}
	}
	for i := 0; i < drives; i++ {
		f.Drives = append(f.Drives, &Drive{})
	}
	f.Current = f.Drives[0]
	f.MasterReset()
	return f
}

// MasterReset returns the controller to its power-on state.
func (f *FDC) MasterReset() {
	f.command = 0x03
	f.status = 0
	f.track = 0
	f.sector = 0
	f.data = 0
	f.direction = 1
	f.state = stateNone
	f.statusType = statusType1
	f.rev = 0
	f.buffer = nil
	f.setIntrqLine(false)
	f.setDatarqLine(false)
}

// SelectDrive points the controller at one of its drives.
func (f *FDC) SelectDrive(n int) {
	if n >= 0 && n < len(f.Drives) {
		f.Current = f.Drives[n]
	}
}

// SetSide drives the head-select line.
func (f *FDC) SetSide(side int) {
	for _, d := range f.Drives {
		d.Side = side
	}
}

// SetDoubleDensity drives the density line.
func (f *FDC) SetDoubleDensity(dd bool) {
	f.dden = dd
}

// Intrq returns the state of the INTRQ line.
func (f *FDC) Intrq() bool {
	return f.intrq
}

func (f *FDC) setIntrqLine(v bool) {
	if v == f.intrq {
		return
	}
	f.intrq = v
	if v {
		if f.SetIntrq != nil {
			f.SetIntrq()
		}
	} else if f.ResetIntrq != nil {
		f.ResetIntrq()
	}
}

func (f *FDC) setDatarqLine(v bool) {
	if v {
		f.status |= SRIdxDrq
		if f.SetDatarq != nil {
			f.SetDatarq()
		}
	} else {
		if f.statusType == statusType2 {
			f.status &^= SRIdxDrq
		}
		if f.ResetDatarq != nil {
			f.ResetDatarq()
		}
	}
}

func (f *FDC) schedule(ms uint32) {
	if f.ScheduleDone != nil {
		f.ScheduleDone(ms * f.CyclesPerMs)
		return
	}
	// no scheduler attached: seeks complete immediately, transfers
	// complete through the data register
	switch f.state {
	case stateSeek, stateSeekDelay, stateVerify:
		f.CommandDone()
	}
}

// IndexPulse is called by the machine once per disk revolution.
func (f *FDC) IndexPulse() {
	if f.Current == nil || !f.Current.Motor {
		return
	}
	if f.state != stateNone {
		f.rev--
		if f.rev <= 0 {
			// the search has run out of revolutions
			f.status |= SRRnf
			f.finish()
		}
	}
}

// StatusRead returns the status register. Reading it clears INTRQ.
func (f *FDC) StatusRead() uint8 {
	f.setIntrqLine(false)

	sr := f.status

	if f.statusType == statusType1 {
		sr &^= SRIdxDrq | SRTrk0Lst
		if f.Current != nil {
			if f.Current.IndexPulse {
				sr |= SRIdxDrq
			}
			if f.Current.Track == 0 {
				sr |= SRTrk0Lst
			}
			if f.Current.Disk != nil && f.Current.Disk.WriteProtect {
				sr |= SRWrProt
			}
		}
	}

	if f.Current != nil && f.Current.Motor {
		sr |= SRMotorOn
	} else {
		sr &^= SRMotorOn
	}

	return sr
}

// TrackRead returns the track register.
func (f *FDC) TrackRead() uint8 { return f.track }

// TrackWrite sets the track register.
func (f *FDC) TrackWrite(v uint8) { f.track = v }

// SectorRead returns the sector register.
func (f *FDC) SectorRead() uint8 { return f.sector }

// SectorWrite sets the sector register.
func (f *FDC) SectorWrite(v uint8) { f.sector = v }

// DataRead returns the data register, streaming transfer data while a
// read command is in progress.
func (f *FDC) DataRead() uint8 {
	if f.buffer != nil && (f.state == stateRead || f.state == stateReadTrack || f.state == stateReadID) {
		f.data = f.buffer[f.bufferPos]
		f.crc = crcAdd(f.crc, f.data)
		f.bufferPos++
		if f.bufferPos >= len(f.buffer) {
			f.endTransfer()
		}
	}
	return f.data
}

// DataWrite sets the data register, consuming transfer data while a write
// command is in progress.
func (f *FDC) DataWrite(v uint8) {
	f.data = v
	if f.buffer != nil && (f.state == stateWrite || f.state == stateWriteTrack) {
		f.buffer[f.bufferPos] = v
		f.crc = crcAdd(f.crc, v)
		f.bufferPos++
		if f.bufferPos >= len(f.buffer) {
			f.endTransfer()
		}
	}
}

// endTransfer completes a sector transfer, continuing with the next
// sector for multisector commands.
func (f *FDC) endTransfer() {
	if f.multisector {
		f.sector++
		if f.locateSector() {
			f.bufferPos = 0
			return
		}
	}
	f.buffer = nil
	f.setDatarqLine(false)
	f.finish()
}

// finish completes the running command: busy clears, INTRQ rises.
func (f *FDC) finish() {
	f.state = stateNone
	f.status &^= SRBusy
	f.buffer = nil
	f.setDatarqLine(false)
	f.setIntrqLine(true)
}

// CommandDone is called by the machine when a scheduled command latency
// expires.
func (f *FDC) CommandDone() {
	switch f.state {
	case stateSeek, stateSeekDelay:
		f.completeSeek()
	case stateVerify:
		f.completeVerify()
	case stateRead, stateWrite, stateReadTrack, stateWriteTrack, stateReadID:
		// transfers complete through the data register; a latency expiry
		// here means the CPU never serviced the request
		if f.buffer != nil {
			f.status |= SRTrk0Lst // lost data
			f.finish()
		}
	default:
		f.finish()
	}
}

// CommandWrite decodes a command register write.
func (f *FDC) CommandWrite(v uint8) {
	// force interrupt is honoured even while busy
	if v&0xf0 == 0xd0 {
		f.command = v
		f.forceInterrupt(v)
		return
	}

	if f.status&SRBusy != 0 {
		return
	}

	f.command = v
	f.setIntrqLine(false)
	f.status |= SRBusy
	f.crc = 0xffff

	if f.Current != nil {
		f.Current.Motor = true
	}

	switch v >> 4 {
	case 0x0: // RESTORE
		f.statusType = statusType1
		f.state = stateSeek
		f.track = 0xff
		f.data = 0
		f.beginSeek()
	case 0x1: // SEEK
		f.statusType = statusType1
		f.state = stateSeek
		f.beginSeek()
	case 0x2, 0x3: // STEP
		f.statusType = statusType1
		f.state = stateSeekDelay
		f.beginStep(v&0x10 != 0)
	case 0x4, 0x5: // STEP IN
		f.direction = 1
		f.statusType = statusType1
		f.state = stateSeekDelay
		f.beginStep(v&0x10 != 0)
	case 0x6, 0x7: // STEP OUT
		f.direction = -1
		f.statusType = statusType1
		f.state = stateSeekDelay
		f.beginStep(v&0x10 != 0)
	case 0x8, 0x9: // READ SECTOR
		f.statusType = statusType2
		f.state = stateRead
		f.multisector = v&0x10 != 0
		f.beginReadWrite(false)
	case 0xa, 0xb: // WRITE SECTOR
		f.statusType = statusType2
		f.state = stateWrite
		f.multisector = v&0x10 != 0
		f.beginReadWrite(true)
	case 0xc: // READ ADDRESS
		f.statusType = statusType2
		f.state = stateReadID
		f.beginReadAddress()
	case 0xe: // READ TRACK
		f.statusType = statusType2
		f.state = stateReadTrack
		f.beginReadTrack()
	case 0xf: // WRITE TRACK
		f.statusType = statusType2
		f.state = stateWriteTrack
		f.beginWriteTrack()
	}
}

func (f *FDC) forceInterrupt(v uint8) {
	f.state = stateNone
	f.status &^= SRBusy
	f.buffer = nil
	f.statusType = statusType1
	f.setDatarqLine(false)

	// an immediate interrupt is requested by the low bits; 0xd0 alone
	// just terminates
	if v&0x0f != 0 {
		f.setIntrqLine(true)
	}
}

func (f *FDC) beginSeek() {
	steps := int(f.data) - int(f.track)
	if steps > 0 {
		f.direction = 1
	} else if steps < 0 {
		f.direction = -1
		steps = -steps
	}
	if steps == 0 {
		steps = 1
	}
	f.schedule(uint32(steps) * f.rates[f.command&0x03])
}

func (f *FDC) beginStep(updateTrack bool) {
	if updateTrack {
		f.track = uint8(int(f.track) + f.direction)
	}
	f.schedule(f.rates[f.command&0x03])
}

func (f *FDC) completeSeek() {
	if f.state == stateSeek {
		// the physical head follows the register on a completed seek
		f.track = f.data
		if f.Current != nil {
			f.Current.Track = int(f.track)
		}
	} else if f.Current != nil {
		// a step moves the head one track regardless of the registers
		f.Current.Track += f.direction
		if f.Current.Track < 0 {
			f.Current.Track = 0
		}
	}

	f.status |= SRSpinUp

	// verify: check an ID field on the new track matches the track
	// register
	if f.command&0x04 != 0 {
		f.state = stateVerify
		f.rev = 5
		f.schedule(15)
		return
	}

	f.finish()
}

func (f *FDC) completeVerify() {
	if f.Current == nil || !f.Current.Ready() {
		f.status |= SRRnf
		f.finish()
		return
	}
	if f.Current.Track != int(f.track) {
		f.status |= SRRnf
	}
	f.finish()
}

// locateSector finds the addressed sector under the head and primes the
// transfer buffer.
func (f *FDC) locateSector() bool {
	if f.Current == nil || !f.Current.Ready() {
		return false
	}

	data, ok := f.Current.Disk.ReadSector(f.Current.Track, f.Current.Side, int(f.sector))
	if !ok {
		return false
	}

	f.idTrack = uint8(f.Current.Track)
	f.idSide = uint8(f.Current.Side)
	f.idSector = f.sector
	f.idLength = sectorLengthCode(f.Current.Disk.SectorSize)

	f.buffer = data
	f.bufferPos = 0
	return true
}

func sectorLengthCode(size int) uint8 {
	switch size {
	case 128:
		return 0
	case 256:
		return 1
	case 512:
		return 2
	}
	return 3
}

func (f *FDC) beginReadWrite(write bool) {
	f.rev = 5

	if !f.locateSector() {
		f.status |= SRRnf
		f.finish()
		return
	}

	if write && f.Current.Disk.WriteProtect {
		f.status |= SRWrProt
		f.finish()
		return
	}

	f.setDatarqLine(true)

	// a generous latency: if the CPU has not transferred the whole sector
	// by then it lost data
	f.schedule(400)
}

func (f *FDC) beginReadAddress() {
	if f.Current == nil || !f.Current.Ready() {
		f.status |= SRRnf
		f.finish()
		return
	}

	disk := f.Current.Disk

	// the six ID bytes: track, side, sector, length code, CRC
	f.crc = 0xffff
	id := []uint8{
		uint8(f.Current.Track),
		uint8(f.Current.Side),
		uint8(disk.FirstSectorID),
		sectorLengthCode(disk.SectorSize),
	}
	crc := uint16(0xffff)
	for _, b := range []uint8{0xa1, 0xa1, 0xa1, 0xfe} {
		crc = crcAdd(crc, b)
	}
	for _, b := range id {
		crc = crcAdd(crc, b)
	}
	id = append(id, uint8(crc>>8), uint8(crc))

	// the sector register receives the track address read
	f.sector = id[0]

	f.buffer = id
	f.bufferPos = 0
	f.setDatarqLine(true)
	f.schedule(100)
}

func (f *FDC) beginReadTrack() {
	if f.Current == nil || !f.Current.Ready() {
		f.status |= SRRnf
		f.finish()
		return
	}

	disk := f.Current.Disk
	trackSize := disk.Sectors * disk.SectorSize
	offset, ok := disk.sectorOffset(f.Current.Track, f.Current.Side, disk.FirstSectorID)
	if !ok {
		f.status |= SRRnf
		f.finish()
		return
	}

	// the raw track: the gap and mark structure is not stored in sector
	// images so the data area alone is streamed
	f.buffer = disk.Data[offset : offset+trackSize]
	f.bufferPos = 0
	f.setDatarqLine(true)
	f.schedule(400)
}

func (f *FDC) beginWriteTrack() {
	if f.Current == nil || !f.Current.Ready() {
		f.status |= SRRnf
		f.finish()
		return
	}
	if f.Current.Disk.WriteProtect {
		f.status |= SRWrProt
		f.finish()
		return
	}

	disk := f.Current.Disk
	trackSize := disk.Sectors * disk.SectorSize
	offset, ok := disk.sectorOffset(f.Current.Track, f.Current.Side, disk.FirstSectorID)
	if !ok {
		f.status |= SRRnf
		f.finish()
		return
	}

	logger.Logf("wd1770", "write track %d side %d", f.Current.Track, f.Current.Side)

	f.buffer = disk.Data[offset : offset+trackSize]
	f.bufferPos = 0
	f.setDatarqLine(true)
	f.schedule(400)
}

// crcAdd accumulates the CRC-CCITT used for address and data marks.
func crcAdd(crc uint16, b uint8) uint16 {
	crc ^= uint16(b) << 8
	for i := 0; i < 8; i++ {
		if crc&0x8000 != 0 {
			crc = crc<<1 ^ 0x1021
		} else {
			crc <<= 1
		}
	}
	return crc
}
