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

package snapshot_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/curated"
	"github.com/jetsetilly/gopherspeccy/hardware"
	"github.com/jetsetilly/gopherspeccy/hardware/models"
	"github.com/jetsetilly/gopherspeccy/snapshot"
	"github.com/jetsetilly/gopherspeccy/test"
)

func TestRoundTrip(t *testing.T) {
	src := hardware.NewSpectrum(models.Get(models.Spec128))

	src.CPU.SetAF(0x1234)
	src.CPU.SetBC(0x5678)
	src.CPU.SetIX(0x9abc)
	src.CPU.PC = 0x8000
	src.CPU.SP = 0xfffe
	src.CPU.I = 0x3f
	src.CPU.IM = 1
	src.CPU.IFF1 = true
	src.CPU.IFF2 = true
	src.Ports.WriteInternal(0x7ffd, 0x07)
	src.Mem.WriteInternal(0xc000, 0x42)
	src.Ports.WriteInternal(0xfffd, 3)
	src.Ports.WriteInternal(0xbffd, 0x55)

	sn := snapshot.FromMachine(src)
	test.ExpectEquality(t, sn.Machine, "128")
	test.ExpectEquality(t, sn.AF, uint16(0x1234))

	dst := hardware.NewSpectrum(models.Get(models.Spec128))
	err := sn.ToMachine(dst)
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, dst.CPU.AF(), uint16(0x1234))
	test.ExpectEquality(t, dst.CPU.BC(), uint16(0x5678))
	test.ExpectEquality(t, dst.CPU.IX(), uint16(0x9abc))
	test.ExpectEquality(t, dst.CPU.PC, uint16(0x8000))
	test.ExpectEquality(t, dst.CPU.IM, uint8(1))
	test.ExpectSuccess(t, dst.CPU.IFF1)
	test.ExpectEquality(t, dst.Last7FFD(), uint8(0x07))
	test.ExpectEquality(t, dst.AY.Registers[3], uint8(0x55))

	// RAM page 7 was the top slot when 0xc000 was written
	test.ExpectEquality(t, dst.Mem.ReadInternal(0xc000), uint8(0x42))
}

func TestMachineMismatch(t *testing.T) {
	src := hardware.NewSpectrum(models.Get(models.Spec128))
	sn := snapshot.FromMachine(src)

	dst := hardware.NewSpectrum(models.Get(models.Spec48))
	dst.CPU.PC = 0x4444

	err := sn.ToMachine(dst)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, snapshot.UnsupportedFeature))

	// the refused load left the machine untouched
	test.ExpectEquality(t, dst.CPU.PC, uint16(0x4444))
}

func TestCorruptRecord(t *testing.T) {
	src := hardware.NewSpectrum(models.Get(models.Spec48))
	sn := snapshot.FromMachine(src)

	sn.RAM[2] = []uint8{1, 2, 3}

	dst := hardware.NewSpectrum(models.Get(models.Spec48))
	err := sn.ToMachine(dst)
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Is(err, snapshot.CorruptInput))
}
