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

// the pause written after every TAP block. the format carries no timing
// information so the standard one second is assumed
const tapPause = 1000

// ReadTAP decodes a TAP image: a sequence of (length, data) records, each
// a standard-loader block. Truncation is a hard error.
func ReadTAP(data []uint8) ([]Block, error) {
	blocks := make([]Block, 0, 16)

	for len(data) > 0 {
		if len(data) < 2 {
			return nil, curated.Errorf(CorruptInput, "TAP block length truncated")
		}
		length := int(data[0]) | int(data[1])<<8
		data = data[2:]

		if len(data) < length {
			return nil, curated.Errorf(CorruptInput, "TAP block data truncated")
		}

		block := &ROMBlock{
			Data:  make([]uint8, length),
			Pause: tapPause,
		}
		copy(block.Data, data[:length])
		blocks = append(blocks, block)

		data = data[length:]
	}

	return blocks, nil
}

// WriteTAP encodes a block list as a TAP image. Only standard-loader
// blocks can be represented; anything else refuses the write.
func WriteTAP(blocks []Block) ([]uint8, error) {
	out := make([]uint8, 0, 1024)

	for _, b := range blocks {
		rom, ok := b.(*ROMBlock)
		if !ok {
			return nil, curated.Errorf(UnsupportedFeature, "TAP cannot hold a "+b.Description())
		}
		if len(rom.Data) > 0xffff {
			return nil, curated.Errorf(UnsupportedFeature, "TAP block too long")
		}
		out = append(out, uint8(len(rom.Data)), uint8(len(rom.Data)>>8))
		out = append(out, rom.Data...)
	}

	return out, nil
}
