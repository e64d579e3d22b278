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

// Package curated is how errors are created and interrogated throughout the
// emulator. Errors are built from a pattern string; the pattern doubles as
// the error's identity, meaning callers can ask whether an error is of a
// particular kind without the package having to export sentinel values.
//
// Packages declare their patterns as constants near the code that raises
// them. For example, the tape package declares:
//
//	const CorruptInput = "tape: corrupt input: %v"
//
// and raises it with:
//
//	curated.Errorf(tape.CorruptInput, reason)
//
// Callers then test with curated.Is(err, tape.CorruptInput) for an exact
// match, or curated.Has() to look anywhere in the chain.
package curated
