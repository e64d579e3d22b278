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

// Package test contains the assertion helpers used by the emulator's
// tests. They are deliberately small: a failed expectation reports through
// the testing package and the test continues.
package test
