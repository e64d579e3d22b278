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

package peripherals_test

import (
	"testing"

	"github.com/jetsetilly/gopherspeccy/hardware/events"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
	"github.com/jetsetilly/gopherspeccy/test"
)

func newTestPorts() *peripherals.Ports {
	clk := events.NewQueue()
	return peripherals.NewPorts(clk, memory.NewMemory(clk))
}

func TestDecoding(t *testing.T) {
	p := newTestPorts()

	// a loose-decoded device: any port with bits 5-7 clear
	hits := 0
	p.Register(peripherals.TypeKempstonLoose, 0x00e0, 0x0000,
		func(_ uint16) (uint8, bool) { hits++; return 0x00, true }, nil)
	p.SetActive(peripherals.TypeKempstonLoose, true)

	p.ReadInternal(0x001f)
	p.ReadInternal(0xff1f)
	test.ExpectEquality(t, hits, 2)

	// bits 5-7 set misses
	p.ReadInternal(0x00ff)
	test.ExpectEquality(t, hits, 2)
}

func TestActivation(t *testing.T) {
	p := newTestPorts()

	p.Register(peripherals.TypeULA, 0x0001, 0x0000,
		func(_ uint16) (uint8, bool) { return 0x55, true }, nil)

	// inactive devices never see the bus
	test.ExpectEquality(t, p.ReadInternal(0x00fe), uint8(0xff))

	p.SetActive(peripherals.TypeULA, true)
	test.ExpectEquality(t, p.ReadInternal(0x00fe), uint8(0x55))
}

func TestUnattachedPort(t *testing.T) {
	p := newTestPorts()

	p.UnattachedPort = func(_ uint16) uint8 { return 0xa5 }
	test.ExpectEquality(t, p.ReadInternal(0x1234), uint8(0xa5))

	// a matching device whose read declines to attach still leaves the
	// bus floating
	p.Register(peripherals.TypePlusD, 0x00ff, 0x0034,
		func(_ uint16) (uint8, bool) { return 0x00, false }, nil)
	p.SetActive(peripherals.TypePlusD, true)
	test.ExpectEquality(t, p.ReadInternal(0x1234), uint8(0xa5))
}

func TestMultipleDevicesAND(t *testing.T) {
	p := newTestPorts()

	p.Register(peripherals.TypeULA, 0x0001, 0x0000,
		func(_ uint16) (uint8, bool) { return 0xf0, true }, nil)
	p.Register(peripherals.TypeSCLD, 0x00ff, 0x00fe,
		func(_ uint16) (uint8, bool) { return 0x3f, true }, nil)
	p.SetActive(peripherals.TypeULA, true)
	p.SetActive(peripherals.TypeSCLD, true)

	// two devices driving the bus together wire-AND their values
	test.ExpectEquality(t, p.ReadInternal(0x00fe), uint8(0x30))
}

func TestWriteDispatch(t *testing.T) {
	p := newTestPorts()

	var last uint8
	p.Register(peripherals.TypeAY, 0xc002, 0xc000, nil,
		func(_ uint16, data uint8) { last = data })
	p.SetActive(peripherals.TypeAY, true)

	p.WriteInternal(0xfffd, 0x0e)
	test.ExpectEquality(t, last, uint8(0x0e))

	// a non-matching port leaves the device alone
	p.WriteInternal(0x7ffd, 0x55)
	test.ExpectEquality(t, last, uint8(0x0e))
}
