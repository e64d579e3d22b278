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

// Block is one entry in a tape's block list. The concrete types form a
// closed sum; the edge generator in deck.go switches over them.
type Block interface {
	Description() string
}

// phase of the edge state machine within an audio-bearing block.
type phase int

const (
	phasePilot phase = iota
	phaseSync1
	phaseSync2
	phaseData1
	phaseData2
	phasePause
)

// Timings and pulse counts for the standard ROM loader.
//
// The pilot counts disagree with the TZX specification (they are one
// less), but are correct: entering the loop at 0x04D8 in the 48K ROM with
// HL holding one produces the first sync pulse, not a pilot pulse.
const (
	TimingPilot = 2168
	TimingSync1 = 667
	TimingSync2 = 735
	TimingData0 = 855
	TimingData1 = 1710

	PilotsHeader = 0x1f7f
	PilotsData   = 0x0c97
)

// dataState is the cursor shared by every block kind with a data phase.
type dataState struct {
	state             phase
	edgeCount         uint32
	bytesThroughBlock int
	bitsThroughByte   int
	currentByte       uint8
	bitTstates        uint32
}

// ROMBlock is a standard-speed data block: the shape written by the ROM
// SAVE routine.
type ROMBlock struct {
	Data []uint8

	// Pause after the block in milliseconds
	Pause uint32

	ds dataState
}

func (b *ROMBlock) Description() string { return "Standard Speed Data Block" }

// TurboBlock has the standard loader's shape but with every timing field
// explicit.
type TurboBlock struct {
	Data []uint8

	PilotLength uint32
	Sync1Length uint32
	Sync2Length uint32
	Bit0Length  uint32
	Bit1Length  uint32
	PilotPulses uint32

	// BitsInLastByte is the number of bits used in the final data byte
	BitsInLastByte int

	Pause uint32

	ds dataState
}

func (b *TurboBlock) Description() string { return "Turbo Speed Data Block" }

// PureToneBlock is a run of identical pulses.
type PureToneBlock struct {
	Length uint32
	Pulses uint32

	edgeCount uint32
}

func (b *PureToneBlock) Description() string { return "Pure Tone Block" }

// PulsesBlock is an explicit list of pulse lengths.
type PulsesBlock struct {
	Lengths []uint32

	edgeCount int
}

func (b *PulsesBlock) Description() string { return "List of Pulses" }

// PureDataBlock is data bits with no pilot or sync.
type PureDataBlock struct {
	Data []uint8

	Bit0Length     uint32
	Bit1Length     uint32
	BitsInLastByte int
	Pause          uint32

	ds dataState
}

func (b *PureDataBlock) Description() string { return "Pure Data Block" }

// RawDataBlock is a direct recording: one bit per sample period, an edge
// wherever the level changes.
type RawDataBlock struct {
	Data []uint8

	// BitLength is the T-states per sample
	BitLength      uint32
	BitsInLastByte int
	Pause          uint32

	ds      dataState
	lastBit uint8
}

func (b *RawDataBlock) Description() string { return "Raw Data Block" }

// PauseBlock is silence. A zero length means stop the tape.
type PauseBlock struct {
	// Length of the pause in milliseconds
	Length uint32
}

func (b *PauseBlock) Description() string { return "Pause Block" }

// GroupStartBlock opens a named group of blocks.
type GroupStartBlock struct {
	Name string
}

func (b *GroupStartBlock) Description() string { return "Group Start Block" }

// GroupEndBlock closes a group.
type GroupEndBlock struct{}

func (b *GroupEndBlock) Description() string { return "Group End Block" }

// JumpBlock moves the current-block pointer by a signed offset, measured
// in blocks.
type JumpBlock struct {
	Offset int
}

func (b *JumpBlock) Description() string { return "Jump Block" }

// LoopStartBlock begins a repeated run of blocks.
type LoopStartBlock struct {
	Count int
}

func (b *LoopStartBlock) Description() string { return "Loop Start Block" }

// LoopEndBlock closes a repeated run.
type LoopEndBlock struct{}

func (b *LoopEndBlock) Description() string { return "Loop End Block" }

// SelectBlock offers the user a choice of places to continue from.
type SelectBlock struct {
	Offsets      []int
	Descriptions []string
}

func (b *SelectBlock) Description() string { return "Select Block" }

// Stop48Block stops the tape only when running in 48K mode.
type Stop48Block struct{}

func (b *Stop48Block) Description() string { return "Stop Tape If In 48K Mode Block" }

// CommentBlock is free text.
type CommentBlock struct {
	Text string
}

func (b *CommentBlock) Description() string { return "Comment Block" }

// MessageBlock is text to show the user for a number of seconds.
type MessageBlock struct {
	Time int
	Text string
}

func (b *MessageBlock) Description() string { return "Message Block" }

// ArchiveInfoBlock is the publisher/author/title metadata record.
type ArchiveInfoBlock struct {
	IDs     []uint8
	Strings []string
}

func (b *ArchiveInfoBlock) Description() string { return "Archive Info Block" }

// HardwareBlock records what hardware the tape runs on.
type HardwareBlock struct {
	Types  []uint8
	IDs    []uint8
	Values []uint8
}

func (b *HardwareBlock) Description() string { return "Hardware Information Block" }

// CustomBlock is an opaque extension record.
type CustomBlock struct {
	Label string
	Data  []uint8
}

func (b *CustomBlock) Description() string { return "Custom Info Block" }

// ConcatBlock marks the glue point of two concatenated TZX files. ReadTZX
// keeps it in the block list; WriteTZX does not write it.
type ConcatBlock struct{}

func (b *ConcatBlock) Description() string { return "Concatenation Block" }
