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

// Package hardware assembles a complete machine from the component
// packages: CPU, memory, ports, scheduler, tape deck, disk interfaces.
// The Spectrum type is the single record that owns everything; there is
// no package-level state, so two machines can run side by side.
//
// The emulation is cooperatively single threaded. Host callbacks (keys,
// media, snapshots) must arrive between frames or between instructions,
// never while Step or Run is executing.
package hardware

import (
	"github.com/jetsetilly/gopherspeccy/disk/ide"
	"github.com/jetsetilly/gopherspeccy/hardware/cpu"
	"github.com/jetsetilly/gopherspeccy/hardware/events"
	"github.com/jetsetilly/gopherspeccy/hardware/memory"
	"github.com/jetsetilly/gopherspeccy/hardware/models"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals/beta128"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals/divide"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals/if1"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals/if2"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals/plusd"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals/usource"
	"github.com/jetsetilly/gopherspeccy/hardware/peripherals/zxcf"
	"github.com/jetsetilly/gopherspeccy/logger"
	"github.com/jetsetilly/gopherspeccy/tape"
)

// the interval between disk index pulses: a 300rpm spindle
const indexPulseInterval = 700000

// payloads distinguishing whose command-done event fired
const (
	cmdDonePlusD = iota
	cmdDoneBeta
)

// Spectrum is a complete machine.
type Spectrum struct {
	Model *models.Spec

	Events *events.Queue
	Mem    *memory.Memory
	Ports  *peripherals.Ports
	CPU    *cpu.Z80

	ULA      *peripherals.ULA
	AY       *peripherals.AY
	Kempston *peripherals.Kempston
	SCLD     *peripherals.SCLD

	Display *Display

	// the tape deck. nil until a tape is inserted
	Tape        *tape.Deck
	tapePlaying bool

	// storage interfaces. nil unless attached
	DivIDE  *divide.DivIDE
	PlusD   *plusd.PlusD
	IF1     *if1.IF1
	IF2     *if2.IF2
	USource *usource.USource
	Beta    *beta128.Beta128
	ZXCF    *zxcf.ZXCF

	// 128K paging state. bit 5 of the primary paging byte locks further
	// writes out until a hard reset
	last7FFD     uint8
	last1FFD     uint8
	pagingLocked bool

	// the frame interrupt stays pending through the acceptance window so
	// that EI or a Timex interrupt-enable inside the window still sees it
	interruptPending bool

	// frames since the last reset
	frames int

	// Typist is the phantom typist, present while it has typing to do
	Typist *PhantomTypist

	// RZX is the playback instruction counter. nil outside playback
	RZX *RZXPlayback

	// CheckExecute is the debugger's execute-breakpoint probe. returning
	// true halts the run loop. nil when no breakpoints exist
	CheckExecute func(pc uint16) bool

	// TimeEvent is the debugger's time-breakpoint notification
	TimeEvent func()

	// FrameEnd is called at the end of every frame, between instructions:
	// the host delivers input and media changes from here
	FrameEnd func()
}

// NewSpectrum is the preferred method of initialisation for the Spectrum
// type.
func NewSpectrum(model *models.Spec) *Spectrum {
	s := &Spectrum{Model: model}

	s.Events = events.NewQueue()
	s.Mem = memory.NewMemory(s.Events)
	s.Ports = peripherals.NewPorts(s.Events, s.Mem)
	s.CPU = cpu.NewZ80(s.Mem, s.Ports)

	s.ULA = peripherals.NewULA()
	s.Kempston = peripherals.NewKempston()
	if model.HasAY {
		s.AY = peripherals.NewAY()
	}
	if model.Timex {
		s.SCLD = peripherals.NewSCLD(s.Mem)
		s.SCLD.Remap = s.MemoryMap
		s.SCLD.Retrigger = s.tryInterrupt
	}

	s.Display = newDisplay(s)
	if s.SCLD != nil {
		s.SCLD.DirtyAll = s.Display.DirtyAll
	}

	s.Mem.ContendDelay = func(tstates uint32) uint32 {
		return model.Contention.Delay(model, tstates)
	}

	// contended RAM pages are fixed per machine
	for page := 0; page < memory.RAMPages/2; page++ {
		contended := model.ContendedPage(page)
		s.Mem.RAM[2*page].Contended = contended
		s.Mem.RAM[2*page+1].Contended = contended
	}

	s.Ports.UnattachedPort = s.unattachedPort
	s.Ports.PortFromULA = s.portFromULA

	s.registerPeripherals()
	s.wireEvents()

	s.Reset(true)

	return s
}

// registerPeripherals builds the port registry for the model.
func (s *Spectrum) registerPeripherals() {
	p := s.Ports

	if s.Model.Timex {
		// the Timex ULA decodes its ports fully
		p.Register(peripherals.TypeULAFullDecode, 0x00ff, 0x00fe, s.ULA.Read, s.ULA.Write)
		p.SetActive(peripherals.TypeULAFullDecode, true)

		p.Register(peripherals.TypeSCLD, 0x00ff, 0x00f4, s.SCLD.HSRRead, s.SCLD.HSRWrite)
		p.Register(peripherals.TypeSCLD, 0x00ff, 0x00ff, s.SCLD.DECRead, s.SCLD.DECWrite)
		p.SetActive(peripherals.TypeSCLD, true)
	} else {
		p.Register(peripherals.TypeULA, 0x0001, 0x0000, s.ULA.Read, s.ULA.Write)
		p.SetActive(peripherals.TypeULA, true)
	}

	if s.Model.KempstonFullDecode {
		p.Register(peripherals.TypeKempston, 0x00ff, 0x001f, s.Kempston.Read, nil)
		p.SetActive(peripherals.TypeKempston, true)
	} else {
		p.Register(peripherals.TypeKempstonLoose, 0x00e0, 0x0000, s.Kempston.Read, nil)
		p.SetActive(peripherals.TypeKempstonLoose, true)
	}

	if s.AY != nil {
		p.Register(peripherals.TypeAY, 0xc002, 0xc000, s.AY.SelectRead, s.AY.SelectWrite)
		p.Register(peripherals.TypeAY, 0xc002, 0x8000, nil, s.AY.DataWrite)
		p.SetActive(peripherals.TypeAY, true)
	}

	if s.Model.Has128Paging {
		if s.Model.HasPlus3Paging {
			p.Register(peripherals.Type128Paging, 0xc002, 0x4000, nil, s.memoryPortWrite)
			p.Register(peripherals.TypePlus3Paging, 0xf002, 0x1000, nil, s.memoryPort2Write)
			p.SetActive(peripherals.TypePlus3Paging, true)
		} else {
			p.Register(peripherals.Type128Paging, 0x8002, 0x0000, nil, s.memoryPortWrite)
		}
		p.SetActive(peripherals.Type128Paging, true)
	}
}

// AttachMelodik fits the AY interface 48K machines took their sound
// from. A machine with its own AY ignores the call.
func (s *Spectrum) AttachMelodik() {
	if s.AY != nil {
		return
	}
	s.AY = peripherals.NewAY()
	s.Ports.Register(peripherals.TypeMelodik, 0xc002, 0xc000, s.AY.SelectRead, s.AY.SelectWrite)
	s.Ports.Register(peripherals.TypeMelodik, 0xc002, 0x8000, nil, s.AY.DataWrite)
	s.Ports.SetActive(peripherals.TypeMelodik, true)
	logger.Log("melodik", "attached")
}

// AttachDivIDE fits a DivIDE with the given CF/HD image.
func (s *Spectrum) AttachDivIDE(eprom []uint8, image []uint8) (*divide.DivIDE, error) {
	iface := ide.NewInterface()
	if image != nil {
		if err := iface.Insert(image); err != nil {
			return nil, err
		}
	}

	s.DivIDE = divide.Attach(s.Mem, s.Ports, iface)
	s.DivIDE.Remap = s.MemoryMap
	s.DivIDE.LoadEPROM(eprom)
	s.Ports.SetActive(peripherals.TypeDivIDE, true)
	return s.DivIDE, nil
}

// AttachPlusD fits a +D interface.
func (s *Spectrum) AttachPlusD(rom []uint8) *plusd.PlusD {
	s.PlusD = plusd.Attach(s.Mem, s.Ports)
	s.PlusD.Remap = s.MemoryMap
	s.PlusD.LoadROM(rom)
	s.PlusD.FDC.CyclesPerMs = s.Model.CyclesPerMs
	s.PlusD.FDC.ScheduleDone = func(delay uint32) {
		s.Events.Add(s.Events.Tstates+delay, events.CmdDone, cmdDonePlusD)
	}
	s.Ports.SetActive(peripherals.TypePlusD, true)
	s.startIndexPulses()
	return s.PlusD
}

// AttachBeta128 fits a Beta 128 interface.
func (s *Spectrum) AttachBeta128(rom []uint8) *beta128.Beta128 {
	s.Beta = beta128.Attach(s.Mem, s.Ports)
	s.Beta.Remap = s.MemoryMap
	s.Beta.LoadROM(rom)
	s.Beta.FDC.CyclesPerMs = s.Model.CyclesPerMs
	s.Beta.FDC.ScheduleDone = func(delay uint32) {
		s.Events.Add(s.Events.Tstates+delay, events.CmdDone, cmdDoneBeta)
	}
	s.Ports.SetActive(peripherals.TypeBeta128, true)
	s.startIndexPulses()
	return s.Beta
}

// AttachIF1 fits an Interface I.
func (s *Spectrum) AttachIF1(rom []uint8) *if1.IF1 {
	s.IF1 = if1.Attach(s.Mem, s.Ports)
	s.IF1.Remap = s.MemoryMap
	s.IF1.LoadROM(rom)
	s.Ports.SetActive(peripherals.TypeIF1, true)
	return s.IF1
}

// AttachIF2 fits an Interface II cartridge slot.
func (s *Spectrum) AttachIF2() *if2.IF2 {
	s.IF2 = if2.Attach(s.Mem)
	s.IF2.Remap = s.MemoryMap
	return s.IF2
}

// AttachUSource fits a uSource interface.
func (s *Spectrum) AttachUSource(rom []uint8) *usource.USource {
	s.USource = usource.Attach(s.Mem)
	s.USource.Remap = s.MemoryMap
	s.USource.LoadROM(rom)
	return s.USource
}

// AttachZXCF fits a ZXCF interface with the given card image.
func (s *Spectrum) AttachZXCF(image []uint8) (*zxcf.ZXCF, error) {
	iface := ide.NewInterface()
	if image != nil {
		if err := iface.Insert(image); err != nil {
			return nil, err
		}
	}
	s.ZXCF = zxcf.Attach(s.Mem, s.Ports, iface)
	s.ZXCF.Remap = s.MemoryMap
	s.Ports.SetActive(peripherals.TypeZXCF, true)
	return s.ZXCF, nil
}

// wireEvents attaches the scheduler's dispatch handlers.
func (s *Spectrum) wireEvents() {
	s.Events.RegisterHandler(events.Frame, s.frameEvent)
	s.Events.RegisterHandler(events.Line, s.Display.lineEvent)
	s.Events.RegisterHandler(events.TapeEdge, s.tapeEdgeEvent)
	s.Events.RegisterHandler(events.NMI, func(_ uint32) {
		s.CPU.NonMaskableInterrupt()
	})
	s.Events.RegisterHandler(events.IndexPulse, s.indexPulseEvent)
	s.Events.RegisterHandler(events.CmdDone, s.cmdDoneEvent)
	s.Events.RegisterHandler(events.DebuggerTime, func(_ uint32) {
		if s.TimeEvent != nil {
			s.TimeEvent()
		}
	})
}

// LoadROM installs a system ROM image.
func (s *Spectrum) LoadROM(rom int, image []uint8) {
	s.Mem.LoadROM(rom, image)
}

// Reset the machine. A hard reset clears RAM and the sticky paging
// state.
func (s *Spectrum) Reset(hard bool) {
	s.CPU.Reset(hard)

	if hard {
		s.Mem.ResetRAM()
	}

	s.last7FFD = 0
	s.last1FFD = 0
	s.pagingLocked = false

	if s.SCLD != nil {
		s.SCLD.Reset()
	}
	if s.DivIDE != nil {
		s.DivIDE.Reset(hard)
	}
	if s.PlusD != nil {
		s.PlusD.Reset()
	}
	if s.Beta != nil {
		s.Beta.Reset()
	}
	if s.IF1 != nil {
		s.IF1.Reset()
	}
	if s.USource != nil {
		s.USource.Reset()
	}
	if s.ZXCF != nil {
		s.ZXCF.Reset()
	}
	if s.AY != nil {
		s.AY.Reset()
	}

	s.MemoryMap()

	s.Events.Reset()
	s.Events.Tstates = 0
	s.Events.Add(s.Model.TstatesPerFrame, events.Frame, 0)
	s.Display.restart()
	s.interruptPending = false

	// any rolling tape lost its scheduled edge with the queue
	s.tapePlaying = false

	if s.PlusD != nil || s.Beta != nil {
		s.startIndexPulses()
	}

	// a queued tape invites the phantom typist to the keyboard
	if s.Tape != nil && s.Typist != nil {
		s.Typist.restart()
	}
}

// selectROM points the home map's first 16K at a system ROM.
func (s *Spectrum) selectROM(rom int) {
	s.Mem.Home[0] = &s.Mem.ROM[2*rom]
	s.Mem.Home[1] = &s.Mem.ROM[2*rom+1]
}

// selectPage points the home map's top 16K at a RAM page.
func (s *Spectrum) selectPage(page int) {
	s.Mem.Home[6] = &s.Mem.RAM[2*page]
	s.Mem.Home[7] = &s.Mem.RAM[2*page+1]
}

// MemoryMap rebuilds the eight live slots from the paging state: the
// machine's base map, then the Timex overlay, then any ROMCS interface.
func (s *Spectrum) MemoryMap() {
	if s.Model.HasPlus3Paging && s.last1FFD&0x01 != 0 {
		// +3 special paging: all-RAM configurations
		configs := [4][4]int{
			{0, 1, 2, 3},
			{4, 5, 6, 7},
			{4, 5, 6, 3},
			{4, 7, 6, 3},
		}
		config := configs[(s.last1FFD&0x06)>>1]
		for slot, page := range config {
			s.Mem.Home[2*slot] = &s.Mem.RAM[2*page]
			s.Mem.Home[2*slot+1] = &s.Mem.RAM[2*page+1]
		}
	} else {
		if s.Model.Has128Paging {
			page := int(s.last7FFD & 0x07)
			rom := int(s.last7FFD&0x10) >> 4
			if s.Model.HasPlus3Paging {
				rom |= int(s.last1FFD&0x04) >> 1
			}

			screen := 5
			if s.last7FFD&0x08 != 0 {
				screen = 7
			}
			s.Mem.SetScreen(screen)

			s.selectROM(rom)
			s.selectPage(page)
		}
	}

	s.Mem.MapHome()

	if s.SCLD != nil {
		s.SCLD.ApplySlots()
	}

	s.Mem.MapROMCS()
}

// memoryPortWrite handles the primary 128K paging port. Bit 5 latches
// the port shut until a hard reset.
func (s *Spectrum) memoryPortWrite(_ uint16, data uint8) {
	if s.pagingLocked {
		return
	}
	s.last7FFD = data
	s.MemoryMap()
	s.pagingLocked = data&0x20 != 0
}

// memoryPort2Write handles the +3's secondary paging port.
func (s *Spectrum) memoryPort2Write(_ uint16, data uint8) {
	if s.pagingLocked {
		return
	}
	s.last1FFD = data
	s.MemoryMap()
}

// Last7FFD returns the primary paging byte, for snapshots.
func (s *Spectrum) Last7FFD() uint8 { return s.last7FFD }

// Last1FFD returns the secondary paging byte, for snapshots.
func (s *Spectrum) Last1FFD() uint8 { return s.last1FFD }

// PagingLocked returns the paging lock latch, for snapshots.
func (s *Spectrum) PagingLocked() bool { return s.pagingLocked }

// SetPaging installs paging state, as a snapshot load does.
func (s *Spectrum) SetPaging(port7FFD, port1FFD uint8, locked bool) {
	s.last7FFD = port7FFD
	s.last1FFD = port1FFD
	s.pagingLocked = false
	s.MemoryMap()
	s.pagingLocked = locked
}

// portFromULA reports whether the ULA decodes the port, which shapes the
// contention on the access.
func (s *Spectrum) portFromULA(port uint16) bool {
	if s.Model.Timex {
		// ports F4, FE and FF are supplied by the Timex ULA
		low := port & 0xff
		return low == 0xf4 || low == 0xfe || low == 0xff
	}
	return port&0x0001 == 0
}

// unattachedPort is the floating bus: a read of a port no device
// attached to sees whatever byte the ULA is fetching this T-state.
func (s *Spectrum) unattachedPort(_ uint16) uint8 {
	if !s.Model.FloatingBus {
		return 0xff
	}

	ts := s.Events.Tstates
	if ts < s.Model.FirstScreenLine {
		return 0xff
	}
	ts -= s.Model.FirstScreenLine

	line := ts / s.Model.TstatesPerLine
	col := ts % s.Model.TstatesPerLine
	if line >= models.ScreenLines || col >= models.ScreenTstatesPerLine {
		return 0xff
	}

	// per eight T-states the ULA fetches a data byte, its attribute, the
	// next data byte and its attribute, then idles
	column := uint16(col/8) * 2
	switch col % 8 {
	case 0:
		return s.Mem.ScreenRead(screenDataAddress(uint16(line), column))
	case 1:
		return s.Mem.ScreenRead(screenAttrAddress(uint16(line), column))
	case 2:
		return s.Mem.ScreenRead(screenDataAddress(uint16(line), column+1))
	case 3:
		return s.Mem.ScreenRead(screenAttrAddress(uint16(line), column+1))
	}
	return 0xff
}

// screenDataAddress composes the interleaved display file address of a
// pixel line and character column.
func screenDataAddress(line, column uint16) uint16 {
	return line&0xc0<<5 | line&0x07<<8 | line&0x38<<2 | column
}

// screenAttrAddress composes the attribute file address.
func screenAttrAddress(line, column uint16) uint16 {
	return 0x1800 | line>>3<<5 | column
}

// frameEvent fires at the end of every frame.
func (s *Spectrum) frameEvent(_ uint32) {
	s.endOfFrame(s.Model.TstatesPerFrame)
}

// endOfFrame rebases the clock, schedules the next frame event and
// delivers the ULA interrupt. The rebase is normally one frame's worth
// of T-states; RZX playback ends frames early.
func (s *Spectrum) endOfFrame(rebase uint32) {
	s.frames++
	s.Events.NewFrame(rebase)
	s.Events.CancelKind(events.Frame)
	s.Events.Add(s.Model.TstatesPerFrame, events.Frame, 0)

	s.interruptPending = true
	s.tryInterrupt()

	s.CPU.ResetInstructionCount()
	if s.RZX != nil {
		s.RZX.nextFrame()
	}

	s.Display.endFrame()

	if s.Typist != nil {
		s.Typist.frame()
		if s.Typist.done() {
			s.Typist = nil
		}
	}

	if s.FrameEnd != nil {
		s.FrameEnd()
	}
}

// tryInterrupt delivers the pending frame interrupt if the acceptance
// window is still open and nothing is suppressing it.
func (s *Spectrum) tryInterrupt() {
	if !s.interruptPending {
		return
	}
	if s.Events.Tstates >= s.Model.InterruptLength {
		// the window has closed
		s.interruptPending = false
		return
	}
	if s.SCLD != nil && s.SCLD.IntDisabled() {
		// suppressed, but still pending: clearing the disable bit inside
		// the window retriggers
		return
	}
	if !s.CPU.IFF1 || s.CPU.LastEI {
		return
	}

	s.CPU.MaskableInterrupt()
	s.interruptPending = false
}

// NMI pulls the non-maskable interrupt line, as the +D and Multiface
// buttons do. The +D pages itself in before the CPU fetches from 0x0066.
func (s *Spectrum) NMI() {
	if s.PlusD != nil {
		s.PlusD.Page()
	}
	s.Events.Add(s.Events.Tstates, events.NMI, 0)
}

// startIndexPulses begins the spindle's index pulse train.
func (s *Spectrum) startIndexPulses() {
	if !s.Events.Pending(events.IndexPulse) {
		s.Events.Add(s.Events.Tstates+indexPulseInterval, events.IndexPulse, 0)
	}
}

func (s *Spectrum) indexPulseEvent(_ uint32) {
	if s.PlusD != nil {
		s.PlusD.FDC.IndexPulse()
	}
	if s.Beta != nil {
		s.Beta.FDC.IndexPulse()
	}
	s.Events.Add(s.Events.Tstates+indexPulseInterval, events.IndexPulse, 0)
}

func (s *Spectrum) cmdDoneEvent(payload uint32) {
	switch payload {
	case cmdDonePlusD:
		if s.PlusD != nil {
			s.PlusD.FDC.CommandDone()
		}
	case cmdDoneBeta:
		if s.Beta != nil {
			s.Beta.FDC.CommandDone()
		}
	}
}
