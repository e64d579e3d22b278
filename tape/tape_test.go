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

package tape_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/curated"
	"github.com/jetsetilly/gopherspeccy/tape"
	"github.com/jetsetilly/gopherspeccy/test"
)

func TestStandardLoaderTiming(t *testing.T) {
	// a header block (bit 7 of the first byte clear): the edges before the
	// first data bit are 8063 pilot pulses and two sync pulses
	deck := tape.NewDeck([]tape.Block{
		&tape.ROMBlock{Data: []uint8{0x00}, Pause: 0},
	})

	var total uint64
	for i := 0; i < 8063; i++ {
		ts, flags := deck.NextEdge()
		test.ExpectEquality(t, ts, uint32(2168))
		test.ExpectEquality(t, flags, tape.Flags(0))
		total += uint64(ts)
	}

	ts, _ := deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(667))
	total += uint64(ts)

	ts, _ = deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(735))
	total += uint64(ts)

	test.ExpectEquality(t, total, uint64(8063*2168+667+735))

	// the single data byte is zero: eight bits, each a pair of 855
	// T-state pulses
	for i := 0; i < 16; i++ {
		ts, flags := deck.NextEdge()
		test.ExpectEquality(t, ts, uint32(855))
		test.ExpectEquality(t, flags, tape.Flags(0))
	}

	// zero pause after the last bit of the last block: the end of the
	// tape stops it
	ts, flags := deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(0))
	test.ExpectSuccess(t, flags&tape.FlagEndOfBlock != 0)
	test.ExpectSuccess(t, flags&tape.FlagStop != 0)
}

func TestDataBlockPilotCount(t *testing.T) {
	// bit 7 of the first byte set: the shorter data-block pilot
	deck := tape.NewDeck([]tape.Block{
		&tape.ROMBlock{Data: []uint8{0xff}, Pause: 0},
	})

	count := 0
	for {
		ts, _ := deck.NextEdge()
		if ts != 2168 {
			break
		}
		count++
	}
	test.ExpectEquality(t, count, 3223)
}

func TestPauseConversion(t *testing.T) {
	deck := tape.NewDeck([]tape.Block{
		&tape.PauseBlock{Length: 100},
		&tape.PauseBlock{Length: 0},
	})

	// pauses convert at the machine's cycles-per-millisecond rate
	ts, flags := deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(100*3500))
	test.ExpectSuccess(t, flags&tape.FlagStop == 0)

	// a zero length pause stops the tape
	_, flags = deck.NextEdge()
	test.ExpectSuccess(t, flags&tape.FlagStop != 0)

	// a machine with a different clock changes the conversion
	deck = tape.NewDeck([]tape.Block{&tape.PauseBlock{Length: 100}})
	deck.CyclesPerMs = 3547
	ts, _ = deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(100*3547))
}

func TestLoop(t *testing.T) {
	deck := tape.NewDeck([]tape.Block{
		&tape.LoopStartBlock{Count: 3},
		&tape.PureToneBlock{Length: 100, Pulses: 1},
		&tape.LoopEndBlock{},
		&tape.Stop48Block{},
	})

	// loop start consumes nothing
	ts, flags := deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(0))
	test.ExpectSuccess(t, flags&tape.FlagEndOfBlock != 0)

	// the tone plays three times
	for i := 0; i < 3; i++ {
		ts, _ = deck.NextEdge()
		test.ExpectEquality(t, ts, uint32(100))
		ts, _ = deck.NextEdge() // loop end
		test.ExpectEquality(t, ts, uint32(0))
	}

	// and then the stop-48 marker is reached
	_, flags = deck.NextEdge()
	test.ExpectSuccess(t, flags&tape.FlagStop48 != 0)
}

func TestJump(t *testing.T) {
	deck := tape.NewDeck([]tape.Block{
		&tape.JumpBlock{Offset: 2},
		&tape.PureToneBlock{Length: 100, Pulses: 1},
		&tape.PureToneBlock{Length: 200, Pulses: 1},
	})

	// the jump skips the first tone
	ts, flags := deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(0))
	test.ExpectSuccess(t, flags&tape.FlagEndOfBlock != 0)

	ts, _ = deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(200))
}

func TestMetaBlocksAreSilent(t *testing.T) {
	deck := tape.NewDeck([]tape.Block{
		&tape.GroupStartBlock{Name: "loader"},
		&tape.CommentBlock{Text: "a comment"},
		&tape.GroupEndBlock{},
		&tape.PureToneBlock{Length: 50, Pulses: 1},
	})

	for i := 0; i < 3; i++ {
		ts, flags := deck.NextEdge()
		test.ExpectEquality(t, ts, uint32(0))
		test.ExpectSuccess(t, flags&tape.FlagEndOfBlock != 0)
	}

	ts, _ := deck.NextEdge()
	test.ExpectEquality(t, ts, uint32(50))
}

func TestTAPRoundTrip(t *testing.T) {
	img := []uint8{
		0x03, 0x00, 0xaa, 0xbb, 0xcc,
		0x01, 0x00, 0xdd,
	}

	blocks, err := tape.ReadTAP(img)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(blocks), 2)

	rom := blocks[0].(*tape.ROMBlock)
	test.ExpectEquality(t, len(rom.Data), 3)
	test.ExpectEquality(t, rom.Data[0], uint8(0xaa))

	out, err := tape.WriteTAP(blocks)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(out), len(img))
	for i := range img {
		test.ExpectEquality(t, out[i], img[i])
	}
}

func TestTAPTruncation(t *testing.T) {
	_, err := tape.ReadTAP([]uint8{0x05, 0x00, 0xaa})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, tape.CorruptInput))

	_, err = tape.ReadTAP([]uint8{0x05})
	test.ExpectFailure(t, err)
}

func TestTZXRoundTrip(t *testing.T) {
	// the block kinds with lossless round-trips
	blocks := []tape.Block{
		&tape.ROMBlock{Data: []uint8{0x00, 0x01, 0x02}, Pause: 1000},
		&tape.TurboBlock{
			Data:        []uint8{0xaa, 0x55},
			PilotLength: 2000, Sync1Length: 600, Sync2Length: 700,
			Bit0Length: 800, Bit1Length: 1600, PilotPulses: 4000,
			BitsInLastByte: 6, Pause: 500,
		},
		&tape.PureDataBlock{
			Data:       []uint8{0x12, 0x34},
			Bit0Length: 855, Bit1Length: 1710, BitsInLastByte: 8, Pause: 0,
		},
		&tape.PauseBlock{Length: 250},
		&tape.GroupStartBlock{Name: "level data"},
		&tape.GroupEndBlock{},
		&tape.ArchiveInfoBlock{
			IDs:     []uint8{0x00, 0x01},
			Strings: []string{"Title", "Publisher"},
		},
	}

	img, err := tape.WriteTZX(blocks)
	test.ExpectSuccess(t, err)

	back, err := tape.ReadTZX(img)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(back), len(blocks))

	rom := back[0].(*tape.ROMBlock)
	test.ExpectEquality(t, rom.Pause, uint32(1000))
	test.ExpectEquality(t, len(rom.Data), 3)

	turbo := back[1].(*tape.TurboBlock)
	test.ExpectEquality(t, turbo.PilotLength, uint32(2000))
	test.ExpectEquality(t, turbo.PilotPulses, uint32(4000))
	test.ExpectEquality(t, turbo.BitsInLastByte, 6)

	pure := back[2].(*tape.PureDataBlock)
	test.ExpectEquality(t, pure.Bit1Length, uint32(1710))

	pause := back[3].(*tape.PauseBlock)
	test.ExpectEquality(t, pause.Length, uint32(250))

	group := back[4].(*tape.GroupStartBlock)
	test.ExpectEquality(t, group.Name, "level data")

	info := back[6].(*tape.ArchiveInfoBlock)
	test.ExpectEquality(t, info.Strings[1], "Publisher")
}

func TestTZXUnknownID(t *testing.T) {
	img := []uint8{'Z', 'X', 'T', 'a', 'p', 'e', '!', 0x1a, 1, 20, 0x99}
	_, err := tape.ReadTZX(img)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, tape.CorruptInput))
}

func TestTZXBadSignature(t *testing.T) {
	_, err := tape.ReadTZX([]uint8{'n', 'o', 't', 'a', 't', 'a', 'p', 'e', 1, 20})
	test.ExpectFailure(t, err)
}

func TestRawData(t *testing.T) {
	// alternating samples produce one edge per sample period
	deck := tape.NewDeck([]tape.Block{
		&tape.RawDataBlock{
			Data:           []uint8{0xaa}, // 10101010
			BitLength:      79,
			BitsInLastByte: 8,
			Pause:          0,
		},
	})

	for i := 0; i < 7; i++ {
		ts, flags := deck.NextEdge()
		test.ExpectEquality(t, ts, uint32(79))
		test.ExpectEquality(t, flags, tape.Flags(0))
	}
}
