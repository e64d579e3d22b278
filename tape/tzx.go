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

import (
	"github.com/jetsetilly/gopherspeccy/curated"
)

// the TZX signature and the version this implementation writes.
var tzxSignature = []uint8{'Z', 'X', 'T', 'a', 'p', 'e', '!', 0x1a}

const (
	tzxMajorVersion = 1
	tzxMinorVersion = 20
)

// TZX block IDs.
const (
	tzxROM         = 0x10
	tzxTurbo       = 0x11
	tzxPureTone    = 0x12
	tzxPulses      = 0x13
	tzxPureData    = 0x14
	tzxRawData     = 0x15
	tzxPause       = 0x20
	tzxGroupStart  = 0x21
	tzxGroupEnd    = 0x22
	tzxJump        = 0x23
	tzxLoopStart   = 0x24
	tzxLoopEnd     = 0x25
	tzxSelect      = 0x28
	tzxStop48      = 0x2a
	tzxComment     = 0x30
	tzxMessage     = 0x31
	tzxArchiveInfo = 0x32
	tzxHardware    = 0x33
	tzxCustom      = 0x35
	tzxConcat      = 0x5a
)

// tzxReader is a cursor over the byte stream. Running off the end is
// remembered rather than returned at every step; the caller checks once
// per block.
type tzxReader struct {
	data      []uint8
	pos       int
	truncated bool
}

func (r *tzxReader) byte() uint8 {
	if r.pos >= len(r.data) {
		r.truncated = true
		return 0
	}
	b := r.data[r.pos]
	r.pos++
	return b
}

func (r *tzxReader) word() uint32 {
	lo := uint32(r.byte())
	return lo | uint32(r.byte())<<8
}

func (r *tzxReader) triple() uint32 {
	lo := r.word()
	return lo | uint32(r.byte())<<16
}

func (r *tzxReader) dword() uint32 {
	lo := r.word()
	return lo | r.word()<<16
}

func (r *tzxReader) bytes(n int) []uint8 {
	if r.pos+n > len(r.data) {
		r.truncated = true
		r.pos = len(r.data)
		return make([]uint8, n)
	}
	b := make([]uint8, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b
}

func (r *tzxReader) string(n int) string {
	return string(r.bytes(n))
}

func (r *tzxReader) more() bool {
	return r.pos < len(r.data)
}

// ReadTZX decodes a TZX image. Unknown block IDs are a hard error: a
// block of unknown shape poisons everything after it.
func ReadTZX(data []uint8) ([]Block, error) {
	if len(data) < len(tzxSignature)+2 {
		return nil, curated.Errorf(CorruptInput, "TZX signature truncated")
	}
	for i, b := range tzxSignature {
		if data[i] != b {
			return nil, curated.Errorf(CorruptInput, "not a TZX file")
		}
	}

	// major version byte. a file from a future major version cannot be
	// trusted to parse
	if data[len(tzxSignature)] > tzxMajorVersion {
		return nil, curated.Errorf(UnsupportedFeature, "TZX major version too new")
	}

	r := &tzxReader{data: data, pos: len(tzxSignature) + 2}
	blocks := make([]Block, 0, 16)

	for r.more() {
		id := r.byte()

		var block Block

		switch id {
		case tzxROM:
			b := &ROMBlock{}
			b.Pause = r.word()
			b.Data = r.bytes(int(r.word()))
			block = b

		case tzxTurbo:
			b := &TurboBlock{}
			b.PilotLength = r.word()
			b.Sync1Length = r.word()
			b.Sync2Length = r.word()
			b.Bit0Length = r.word()
			b.Bit1Length = r.word()
			b.PilotPulses = r.word()
			b.BitsInLastByte = int(r.byte())
			b.Pause = r.word()
			b.Data = r.bytes(int(r.triple()))
			block = b

		case tzxPureTone:
			b := &PureToneBlock{}
			b.Length = r.word()
			b.Pulses = r.word()
			block = b

		case tzxPulses:
			count := int(r.byte())
			b := &PulsesBlock{Lengths: make([]uint32, count)}
			for i := 0; i < count; i++ {
				b.Lengths[i] = r.word()
			}
			block = b

		case tzxPureData:
			b := &PureDataBlock{}
			b.Bit0Length = r.word()
			b.Bit1Length = r.word()
			b.BitsInLastByte = int(r.byte())
			b.Pause = r.word()
			b.Data = r.bytes(int(r.triple()))
			block = b

		case tzxRawData:
			b := &RawDataBlock{}
			b.BitLength = r.word()
			b.Pause = r.word()
			b.BitsInLastByte = int(r.byte())
			b.Data = r.bytes(int(r.triple()))
			block = b

		case tzxPause:
			block = &PauseBlock{Length: r.word()}

		case tzxGroupStart:
			block = &GroupStartBlock{Name: r.string(int(r.byte()))}

		case tzxGroupEnd:
			block = &GroupEndBlock{}

		case tzxJump:
			block = &JumpBlock{Offset: int(int16(r.word()))}

		case tzxLoopStart:
			block = &LoopStartBlock{Count: int(r.word())}

		case tzxLoopEnd:
			block = &LoopEndBlock{}

		case tzxSelect:
			r.word() // total length, implied by the counts that follow
			count := int(r.byte())
			b := &SelectBlock{
				Offsets:      make([]int, count),
				Descriptions: make([]string, count),
			}
			for i := 0; i < count; i++ {
				b.Offsets[i] = int(int16(r.word()))
				b.Descriptions[i] = r.string(int(r.byte()))
			}
			block = b

		case tzxStop48:
			r.dword() // block length, always zero
			block = &Stop48Block{}

		case tzxComment:
			block = &CommentBlock{Text: r.string(int(r.byte()))}

		case tzxMessage:
			b := &MessageBlock{}
			b.Time = int(r.byte())
			b.Text = r.string(int(r.byte()))
			block = b

		case tzxArchiveInfo:
			r.word() // total length
			count := int(r.byte())
			b := &ArchiveInfoBlock{
				IDs:     make([]uint8, count),
				Strings: make([]string, count),
			}
			for i := 0; i < count; i++ {
				b.IDs[i] = r.byte()
				b.Strings[i] = r.string(int(r.byte()))
			}
			block = b

		case tzxHardware:
			count := int(r.byte())
			b := &HardwareBlock{
				Types:  make([]uint8, count),
				IDs:    make([]uint8, count),
				Values: make([]uint8, count),
			}
			for i := 0; i < count; i++ {
				b.Types[i] = r.byte()
				b.IDs[i] = r.byte()
				b.Values[i] = r.byte()
			}
			block = b

		case tzxCustom:
			b := &CustomBlock{}
			b.Label = r.string(16)
			b.Data = r.bytes(int(r.dword()))
			block = b

		case tzxConcat:
			// the glue point of two concatenated files: the remainder of a
			// second signature follows the ID byte
			r.bytes(9)
			block = &ConcatBlock{}

		default:
			return nil, curated.Errorf(CorruptInput, "unknown TZX block ID")
		}

		if r.truncated {
			return nil, curated.Errorf(CorruptInput, "TZX block truncated")
		}

		blocks = append(blocks, block)
	}

	return blocks, nil
}

// tzxWriter builds the byte stream.
type tzxWriter struct {
	data []uint8
}

func (w *tzxWriter) byte(b uint8)    { w.data = append(w.data, b) }
func (w *tzxWriter) word(v uint32)   { w.data = append(w.data, uint8(v), uint8(v>>8)) }
func (w *tzxWriter) triple(v uint32) { w.data = append(w.data, uint8(v), uint8(v>>8), uint8(v>>16)) }
func (w *tzxWriter) dword(v uint32)  { w.word(v & 0xffff); w.word(v >> 16) }
func (w *tzxWriter) bytes(b []uint8) { w.data = append(w.data, b...) }

func (w *tzxWriter) pascal(s string) {
	w.byte(uint8(len(s)))
	w.data = append(w.data, s...)
}

// WriteTZX encodes a block list as a TZX image.
func WriteTZX(blocks []Block) ([]uint8, error) {
	w := &tzxWriter{data: make([]uint8, 0, 1024)}
	w.bytes(tzxSignature)
	w.byte(tzxMajorVersion)
	w.byte(tzxMinorVersion)

	for _, block := range blocks {
		switch b := block.(type) {
		case *ROMBlock:
			w.byte(tzxROM)
			w.word(b.Pause)
			w.word(uint32(len(b.Data)))
			w.bytes(b.Data)

		case *TurboBlock:
			w.byte(tzxTurbo)
			w.word(b.PilotLength)
			w.word(b.Sync1Length)
			w.word(b.Sync2Length)
			w.word(b.Bit0Length)
			w.word(b.Bit1Length)
			w.word(b.PilotPulses)
			w.byte(uint8(b.BitsInLastByte))
			w.word(b.Pause)
			w.triple(uint32(len(b.Data)))
			w.bytes(b.Data)

		case *PureToneBlock:
			w.byte(tzxPureTone)
			w.word(b.Length)
			w.word(b.Pulses)

		case *PulsesBlock:
			w.byte(tzxPulses)
			w.byte(uint8(len(b.Lengths)))
			for _, l := range b.Lengths {
				w.word(l)
			}

		case *PureDataBlock:
			w.byte(tzxPureData)
			w.word(b.Bit0Length)
			w.word(b.Bit1Length)
			w.byte(uint8(b.BitsInLastByte))
			w.word(b.Pause)
			w.triple(uint32(len(b.Data)))
			w.bytes(b.Data)

		case *RawDataBlock:
			w.byte(tzxRawData)
			w.word(b.BitLength)
			w.word(b.Pause)
			w.byte(uint8(b.BitsInLastByte))
			w.triple(uint32(len(b.Data)))
			w.bytes(b.Data)

		case *PauseBlock:
			w.byte(tzxPause)
			w.word(b.Length)

		case *GroupStartBlock:
			w.byte(tzxGroupStart)
			w.pascal(b.Name)

		case *GroupEndBlock:
			w.byte(tzxGroupEnd)

		case *JumpBlock:
			w.byte(tzxJump)
			w.word(uint32(uint16(int16(b.Offset))))

		case *LoopStartBlock:
			w.byte(tzxLoopStart)
			w.word(uint32(b.Count))

		case *LoopEndBlock:
			w.byte(tzxLoopEnd)

		case *SelectBlock:
			w.byte(tzxSelect)
			length := 1
			for _, d := range b.Descriptions {
				length += 3 + len(d)
			}
			w.word(uint32(length))
			w.byte(uint8(len(b.Offsets)))
			for i := range b.Offsets {
				w.word(uint32(uint16(int16(b.Offsets[i]))))
				w.pascal(b.Descriptions[i])
			}

		case *Stop48Block:
			w.byte(tzxStop48)
			w.dword(0)

		case *CommentBlock:
			w.byte(tzxComment)
			w.pascal(b.Text)

		case *MessageBlock:
			w.byte(tzxMessage)
			w.byte(uint8(b.Time))
			w.pascal(b.Text)

		case *ArchiveInfoBlock:
			w.byte(tzxArchiveInfo)
			length := 1
			for _, s := range b.Strings {
				length += 2 + len(s)
			}
			w.word(uint32(length))
			w.byte(uint8(len(b.IDs)))
			for i := range b.IDs {
				w.byte(b.IDs[i])
				w.pascal(b.Strings[i])
			}

		case *HardwareBlock:
			w.byte(tzxHardware)
			w.byte(uint8(len(b.Types)))
			for i := range b.Types {
				w.byte(b.Types[i])
				w.byte(b.IDs[i])
				w.byte(b.Values[i])
			}

		case *CustomBlock:
			w.byte(tzxCustom)
			label := b.Label
			for len(label) < 16 {
				label += " "
			}
			w.bytes([]uint8(label[:16]))
			w.dword(uint32(len(b.Data)))
			w.bytes(b.Data)

		case *ConcatBlock:
			// never written: the block only marks a historical glue point

		default:
			return nil, curated.Errorf(UnsupportedFeature, "TZX cannot hold a "+block.Description())
		}
	}

	return w.data, nil
}
