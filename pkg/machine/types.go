// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import (
	"bufio"
	"time"

	"github.com/sirupsen/logrus"
)

// FrameSink renders the current frame when a program requests a video flush.
// The machine hands over its memory and knows nothing about pixel formats.
type FrameSink interface {
	Flush(mem []byte) error
}

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type Random interface {
	Uint16() uint16
}

type DeviceHandler struct {
	Keyboard *bufio.Reader
	Display  *bufio.Writer
	Video    FrameSink
	Clock    Clock
	Random   Random
}

type MachineState struct {
	Registers [8]uint32

	// PC, always the next byte to fetch
	Program uint32

	// -I---ZNC
	Procstat uint8

	Memory []byte
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint32, mc *Machine)
	Write(addr uint32, mc *Machine)
	Trap(mc *Machine)
}

type Machine struct {
	Devices  *DeviceHandler
	State    MachineState
	Debugger MachineDebugger
	Logger   *logrus.Logger

	isa    *opcodePage
	rng    Random
	halted bool
	status uint32
	fault  error
}
