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

package hardware

// Step executes exactly one instruction, delivering any pending frame
// interrupt first and draining due events afterwards. This is the
// debugger's single-step.
func (s *Spectrum) Step() {
	s.tryInterrupt()
	s.CPU.Step()
	if s.Events.Tstates >= s.Events.NextEvent {
		s.Events.Drain()
	}
}

// Run executes instructions until the running callback returns false or
// the debugger's execute probe asks for a halt. The callback is polled
// between instructions; there is no preemption.
func (s *Spectrum) Run(running func() bool) {
	for running() {
		for s.Events.Tstates < s.Events.NextEvent {
			// a non-execute breakpoint can halt mid-stream; notice before
			// the next instruction, not at the next event boundary
			if !running() {
				return
			}

			s.tryInterrupt()

			// RZX playback pins the frame length to an instruction count
			// rather than a T-state count
			if s.RZX != nil && s.RZX.frameDone(s.CPU.Instructions) {
				s.endOfFrame(s.Events.Tstates)
				break
			}

			if s.CheckExecute != nil && s.CheckExecute(s.CPU.PC) {
				return
			}

			s.CPU.Step()
		}
		s.Events.Drain()
	}
}

// RunFrame runs until the end of the current frame.
func (s *Spectrum) RunFrame() {
	target := s.frames + 1
	s.Run(func() bool {
		return s.frames < target
	})
}
