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

package memory

import (
	"github.com/jetsetilly/gopherspeccy/curated"
	"github.com/jetsetilly/gopherspeccy/logger"
)

// Pattern constants for errors raised by this package.
const (
	// CorruptInput is raised for a malformed .dck image
	CorruptInput = "memory: corrupt input: %v"
)

// .dck bank identifiers.
const (
	dckBankDock  = 0
	dckBankExrom = 254
	dckBankHome  = 255
)

// .dck per-page access codes.
const (
	dckPageNull = iota
	dckPageROM
	dckPageRAMEmpty
	dckPageRAM
)

// LoadDCK decodes a Warajevo .dck Timex cartridge into the DOCK, EXROM
// and HOME banks. Each record names a bank and eight access codes, one
// per 8K page, followed by the data for the pages that carry any.
func (m *Memory) LoadDCK(data []uint8) error {
	for len(data) > 0 {
		if len(data) < 9 {
			return curated.Errorf(CorruptInput, "DCK record truncated")
		}

		bank := data[0]
		access := data[1:9]
		data = data[9:]

		var pages *[8]Page
		switch bank {
		case dckBankDock:
			pages = &m.DockPages
		case dckBankExrom:
			pages = &m.ExromPages
		case dckBankHome:
			// home bank records overlay the system pages directly
			pages = nil
		default:
			return curated.Errorf(CorruptInput, "DCK bank ID unsupported")
		}

		for i := 0; i < 8; i++ {
			var target *Page
			if pages != nil {
				target = &pages[i]
			} else {
				target = m.Home[i]
			}

			switch access[i] {
			case dckPageNull:
				// nothing fitted: the page keeps floating high

			case dckPageROM:
				if len(data) < PageSize {
					return curated.Errorf(CorruptInput, "DCK page data truncated")
				}
				copy(target.Data, data[:PageSize])
				target.Writable = false
				target.Source = SourceCartridge
				data = data[PageSize:]

			case dckPageRAMEmpty:
				for j := range target.Data {
					target.Data[j] = 0
				}
				target.Writable = true

			case dckPageRAM:
				if len(data) < PageSize {
					return curated.Errorf(CorruptInput, "DCK page data truncated")
				}
				copy(target.Data, data[:PageSize])
				target.Writable = true
				data = data[PageSize:]

			default:
				return curated.Errorf(CorruptInput, "DCK page access code unsupported")
			}
		}

		logger.Logf("dck", "bank %d loaded", bank)
	}

	return nil
}
