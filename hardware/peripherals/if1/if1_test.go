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

package if1_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/disk/microdrive"
	"github.com/jetsetilly/gopherspeccy/hardware/events"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals/if1"
	"github.com/jetsetilly/gopherspeccy/test"
)

func newTestRig() (*if1.IF1, *memory.Memory, *peripherals.Ports) {
	clk := events.NewQueue()
	mem := memory.NewMemory(clk)
	ports := peripherals.NewPorts(clk, mem)
	ports.SetActive(peripherals.TypeIF1, true)

	i := if1.Attach(mem, ports)
	i.Remap = func() {
		mem.MapHome()
		mem.MapROMCS()
	}

	rom := make([]uint8, memory.PageSize)
	for n := range rom {
		rom[n] = 0x1f
	}
	i.LoadROM(rom)

	return i, mem, ports
}

// spin the motor chain so drive one is running.
func startDrive(ports *peripherals.Ports) {
	// clock a one into the chain: data high, clock high then low
	ports.WriteInternal(0xef, 0x03)
	ports.WriteInternal(0xef, 0x01)
}

func TestShadowROMPaging(t *testing.T) {
	i, mem, _ := newTestRig()

	test.ExpectFailure(t, i.Paged())

	// the error restart pages the shadow ROM in
	mem.ReadOpcode(0x0008)
	test.ExpectSuccess(t, i.Paged())
	test.ExpectEquality(t, mem.ReadInternal(0x0000), uint8(0x1f))

	// slot 1 is untouched by the 8K overlay
	test.ExpectEquality(t, mem.SlotPage(1).Source, memory.SourceROM)

	// the shadow ROM's return address unpages it
	mem.ReadOpcode(0x0700)
	test.ExpectFailure(t, i.Paged())
	test.ExpectEquality(t, mem.ReadInternal(0x0000), uint8(0))
}

func TestMotorChain(t *testing.T) {
	i, _, ports := newTestRig()
	c := microdrive.NewBlank()
	i.Drives[0] = c

	// with no motor running the data port floats
	v := ports.ReadInternal(0xe7)
	test.ExpectEquality(t, v, uint8(0xff))

	startDrive(ports)

	// now the cartridge streams under the head
	c.Data[0] = 0x42
	c.Data[1] = 0x43
	test.ExpectEquality(t, ports.ReadInternal(0xe7), uint8(0x42))
	test.ExpectEquality(t, ports.ReadInternal(0xe7), uint8(0x43))

	// shifting an empty bit through moves the motor to drive two
	ports.WriteInternal(0xef, 0x02)
	ports.WriteInternal(0xef, 0x00)
	test.ExpectEquality(t, ports.ReadInternal(0xe7), uint8(0xff))
}

func TestStatusPort(t *testing.T) {
	i, _, ports := newTestRig()
	c := microdrive.NewBlank()
	c.WriteProtect = true
	i.Drives[0] = c
	startDrive(ports)

	// the write-protect bit reads back low
	v := ports.ReadInternal(0xef)
	test.ExpectEquality(t, v&0x01, uint8(0))

	// the gap and sync bits move as the loop spins
	seenLow := false
	seenHigh := false
	for n := 0; n < 64; n++ {
		v = ports.ReadInternal(0xef)
		if v&0x02 == 0 {
			seenLow = true
		} else {
			seenHigh = true
		}
	}
	test.ExpectSuccess(t, seenLow)
	test.ExpectSuccess(t, seenHigh)
}

func TestDataWrite(t *testing.T) {
	i, _, ports := newTestRig()
	c := microdrive.NewBlank()
	i.Drives[0] = c
	startDrive(ports)

	ports.WriteInternal(0xe7, 0xaa)
	ports.WriteInternal(0xe7, 0x55)
	test.ExpectEquality(t, c.Data[0], uint8(0xaa))
	test.ExpectEquality(t, c.Data[1], uint8(0x55))
	test.ExpectSuccess(t, c.Dirty)
}
