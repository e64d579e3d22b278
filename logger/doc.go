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

// Package logger is the central log for the emulator. Hardware and media
// packages record noteworthy events (paging decisions, media changes,
// unsupported fields) with a short tag and a detail string:
//
//	logger.Log("divide", "automap entered")
//
// The log is bounded. Old entries are dropped once the maximum number of
// entries is reached. The SetEcho() function connects the log to an
// io.Writer so entries can be seen as they happen, which is useful for
// command line instances of the emulator.
package logger
