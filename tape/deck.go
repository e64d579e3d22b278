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

package tape

// Pattern constants for errors raised by this package.
const (
	// CorruptInput is raised for a malformed TAP/TZX stream
	CorruptInput = "tape: corrupt input: %v"

	// UnsupportedFeature is raised for a recognised but unsupported field
	UnsupportedFeature = "tape: unsupported feature: %v"
)

// Flags accompany the result of NextEdge.
type Flags int

// List of Flags values. Flags are a bitmask.
const (
	// FlagEndOfBlock: this edge finished the current block
	FlagEndOfBlock Flags = 1 << iota

	// FlagStop: the tape has stopped
	FlagStop

	// FlagStop48: stop the tape only if running as a 48K machine
	FlagStop48
)

// Deck owns a tape's block list and the transient state of the edge
// generator.
type Deck struct {
	blocks  []Block
	current int

	loopBlock int
	loopCount int

	// CyclesPerMs converts millisecond pause fields to T-states. The
	// machine sets this on attach; the default is the 3.5MHz value
	CyclesPerMs uint32
}

// NewDeck is the preferred method of initialisation for the Deck type.
func NewDeck(blocks []Block) *Deck {
	d := &Deck{
		blocks:      blocks,
		CyclesPerMs: 3500,
	}
	d.Rewind()
	return d
}

// Blocks returns the deck's block list.
func (d *Deck) Blocks() []Block {
	return d.blocks
}

// CurrentBlock returns the index of the block the edge generator is in.
func (d *Deck) CurrentBlock() int {
	return d.current
}

// Rewind returns to the first block.
func (d *Deck) Rewind() {
	d.current = 0
	d.loopBlock = 0
	d.loopCount = 0
	if len(d.blocks) > 0 {
		d.initBlock(d.blocks[0])
	}
}

// SelectBlock moves the edge generator to the numbered block.
func (d *Deck) SelectBlock(n int) {
	if n < 0 || n >= len(d.blocks) {
		return
	}
	d.current = n
	d.initBlock(d.blocks[n])
}

// initBlock resets a block's transient edge state on entry.
func (d *Deck) initBlock(b Block) {
	switch b := b.(type) {
	case *ROMBlock:
		// the pilot count depends on whether this is a header or a data
		// block, flagged by bit 7 of the first byte
		b.ds = dataState{
			edgeCount:         PilotsHeader,
			bytesThroughBlock: -1,
			bitsThroughByte:   7,
			state:             phasePilot,
		}
		if len(b.Data) > 0 && b.Data[0]&0x80 != 0 {
			b.ds.edgeCount = PilotsData
		}
	case *TurboBlock:
		b.ds = dataState{
			edgeCount:         b.PilotPulses,
			bytesThroughBlock: -1,
			bitsThroughByte:   7,
			state:             phasePilot,
		}
	case *PureToneBlock:
		b.edgeCount = b.Pulses
	case *PulsesBlock:
		b.edgeCount = 0
	case *PureDataBlock:
		b.ds = dataState{
			bytesThroughBlock: -1,
			bitsThroughByte:   7,
		}
		b.nextBit()
	case *RawDataBlock:
		b.ds = dataState{
			state:             phaseData1,
			bytesThroughBlock: -1,
			bitsThroughByte:   7,
		}
		if len(b.Data) > 0 {
			b.lastBit = b.Data[0] & 0x80
		}
		b.nextBit()
	}
}

// pauseTstates converts a millisecond pause to T-states at the attached
// machine's clock rate.
func (d *Deck) pauseTstates(ms uint32) uint32 {
	return ms * d.CyclesPerMs
}

// NextEdge returns the number of T-states until the next edge on the EAR
// line, with flags describing block boundaries and stop conditions. The
// caller schedules the next tape-edge event that far into the future.
func (d *Deck) NextEdge() (uint32, Flags) {
	if len(d.blocks) == 0 {
		return 0, FlagStop
	}

	var tstates uint32
	var flags Flags
	endOfBlock := false
	noAdvance := false

	switch b := d.blocks[d.current].(type) {
	case *ROMBlock:
		tstates, endOfBlock = b.edge(d)
	case *TurboBlock:
		tstates, endOfBlock = b.edge(d)
	case *PureToneBlock:
		if b.edgeCount == 0 {
			// a degenerate zero-pulse tone
			endOfBlock = true
			break
		}
		tstates = b.Length
		b.edgeCount--
		endOfBlock = b.edgeCount == 0
	case *PulsesBlock:
		if b.edgeCount >= len(b.Lengths) {
			endOfBlock = true
			break
		}
		tstates = b.Lengths[b.edgeCount]
		b.edgeCount++
		endOfBlock = b.edgeCount == len(b.Lengths)
	case *PureDataBlock:
		tstates, endOfBlock = b.edge(d)
	case *RawDataBlock:
		tstates, endOfBlock = b.edge(d)

	case *PauseBlock:
		tstates = d.pauseTstates(b.Length)
		endOfBlock = true
		if tstates == 0 {
			flags |= FlagStop
		}

	case *JumpBlock:
		d.current += b.Offset
		if d.current < 0 || d.current >= len(d.blocks) {
			// a jump off either end of the tape stops it
			d.current = 0
			d.initBlock(d.blocks[0])
			return 0, FlagStop | FlagEndOfBlock
		}
		endOfBlock = true
		noAdvance = true

	case *LoopStartBlock:
		d.loopBlock = d.current + 1
		d.loopCount = b.Count
		endOfBlock = true

	case *LoopEndBlock:
		d.loopCount--
		if d.loopCount != 0 {
			d.current = d.loopBlock
			noAdvance = true
		}
		endOfBlock = true

	case *Stop48Block:
		flags |= FlagStop48
		endOfBlock = true

	default:
		// blocks with no audio contribution: zero T-states so the next
		// block is reached immediately
		endOfBlock = true
	}

	if endOfBlock {
		flags |= FlagEndOfBlock

		if !noAdvance {
			d.current++
			if d.current >= len(d.blocks) {
				// end of the tape: stop and rewind to the start
				flags |= FlagStop
				d.current = 0
			}
		}

		d.initBlock(d.blocks[d.current])
	}

	return tstates, flags
}

// edge functions for the data-bearing blocks. Each returns the length of
// the next edge and whether the block has finished.

func (b *ROMBlock) edge(d *Deck) (uint32, bool) {
	switch b.ds.state {
	case phasePilot:
		b.ds.edgeCount--
		if b.ds.edgeCount == 0 {
			b.ds.state = phaseSync1
		}
		return TimingPilot, false
	case phaseSync1:
		b.ds.state = phaseSync2
		return TimingSync1, false
	case phaseSync2:
		b.nextBit()
		return TimingSync2, false
	case phaseData1:
		b.ds.state = phaseData2
		return b.ds.bitTstates, false
	case phaseData2:
		b.nextBit()
		return b.ds.bitTstates, false
	}
	// phasePause
	return d.pauseTstates(b.Pause), true
}

func (b *ROMBlock) nextBit() {
	b.ds.nextBit(b.Data, 8, TimingData0, TimingData1)
}

func (b *TurboBlock) edge(d *Deck) (uint32, bool) {
	switch b.ds.state {
	case phasePilot:
		b.ds.edgeCount--
		if b.ds.edgeCount == 0 {
			b.ds.state = phaseSync1
		}
		return b.PilotLength, false
	case phaseSync1:
		b.ds.state = phaseSync2
		return b.Sync1Length, false
	case phaseSync2:
		b.nextBit()
		return b.Sync2Length, false
	case phaseData1:
		b.ds.state = phaseData2
		return b.ds.bitTstates, false
	case phaseData2:
		b.nextBit()
		return b.ds.bitTstates, false
	}
	return d.pauseTstates(b.Pause), true
}

func (b *TurboBlock) nextBit() {
	b.ds.nextBit(b.Data, b.BitsInLastByte, b.Bit0Length, b.Bit1Length)
}

func (b *PureDataBlock) edge(d *Deck) (uint32, bool) {
	switch b.ds.state {
	case phaseData1:
		b.ds.state = phaseData2
		return b.ds.bitTstates, false
	case phaseData2:
		b.nextBit()
		return b.ds.bitTstates, false
	}
	return d.pauseTstates(b.Pause), true
}

func (b *PureDataBlock) nextBit() {
	b.ds.nextBit(b.Data, b.BitsInLastByte, b.Bit0Length, b.Bit1Length)
}

// nextBit advances the data cursor, setting the timing for the next bit
// pair or moving to the trailing pause at the end of the data.
func (ds *dataState) nextBit(data []uint8, bitsInLastByte int, bit0, bit1 uint32) {
	ds.bitsThroughByte++
	if ds.bitsThroughByte == 8 {
		ds.bytesThroughBlock++
		if ds.bytesThroughBlock == len(data) {
			ds.state = phasePause
			return
		}

		ds.currentByte = data[ds.bytesThroughBlock]

		// the last byte may carry fewer than eight bits
		if ds.bytesThroughBlock == len(data)-1 {
			ds.bitsThroughByte = 8 - bitsInLastByte
		} else {
			ds.bitsThroughByte = 0
		}
	}

	// take the high bit and shift the byte out leftwards
	if ds.currentByte&0x80 != 0 {
		ds.bitTstates = bit1
	} else {
		ds.bitTstates = bit0
	}
	ds.currentByte <<= 1
	ds.state = phaseData1
}

func (b *RawDataBlock) edge(d *Deck) (uint32, bool) {
	switch b.ds.state {
	case phaseData1:
		tstates := b.ds.bitTstates
		b.nextBit()
		return tstates, false
	}
	return d.pauseTstates(b.Pause), true
}

// nextBit for a direct recording: step through the samples until the
// level changes, accumulating the run length.
func (b *RawDataBlock) nextBit() {
	if b.ds.bytesThroughBlock == len(b.Data) {
		b.ds.state = phasePause
		return
	}

	b.ds.state = phaseData1

	length := uint32(0)
	for {
		length++
		b.ds.bitsThroughByte++
		if b.ds.bitsThroughByte == 8 {
			b.ds.bytesThroughBlock++
			if b.ds.bytesThroughBlock == len(b.Data)-1 {
				b.ds.bitsThroughByte = 8 - b.BitsInLastByte
			} else {
				b.ds.bitsThroughByte = 0
			}
			if b.ds.bytesThroughBlock >= len(b.Data) {
				break
			}
		}
		if b.Data[b.ds.bytesThroughBlock]<<b.ds.bitsThroughByte&0x80 == b.lastBit {
			break
		}
	}

	b.ds.bitTstates = length * b.BitLength
	b.lastBit ^= 0x80
}
