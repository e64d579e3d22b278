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

// Package tape produces the stream of edges the Z80 sees on the EAR input
// when a tape is playing. A tape is an ordered list of blocks; NextEdge()
// returns the number of T-states to the next signal edge, stepping a
// small state machine through the pilot tone, sync pulses, data bits and
// trailing pause of each audio-bearing block. Blocks with no audio
// content (groups, comments, loop markers) consume zero T-states.
//
// TAP and TZX files are read into and written from the same block list;
// see tap.go and tzx.go. Sampled audio (WAV, MP3) is ingested as a single
// raw-data block; see soundload.go.
package tape
