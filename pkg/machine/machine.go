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
	"context"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// New creates a machine with size bytes of zeroed memory, already reset.
// Sizes outside (0, MEMSIZE] select the full 24-bit address space.
func New(size int) *Machine {
	if size <= 0 || size > MEMSIZE {
		size = MEMSIZE
	}

	mc := &Machine{isa: instructionSet, rng: NewRandom(rand.Int63())}
	mc.State.Memory = make([]byte, size)
	mc.Reset()

	return mc
}

// Reset reinitializes registers, flags and PC, and clears any halt. Memory
// is left untouched.
func (mc *Machine) Reset() {
	mc.State.Reset()

	mc.halted = false
	mc.status = 0
	mc.fault = nil
}

func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x000000
	}

	mc.Registers[REG_SP] = MEMSPACE_STACK
	mc.Registers[REG_BP] = MEMSPACE_STACK
	mc.Program = MEMSPACE_PROGRAM
	mc.Procstat = FLAG_INT
}

// Step executes one instruction. Once halted, Step does nothing until the
// machine is reset.
func (mc *Machine) Step() (halted bool, status uint32) {
	if !mc.halted {
		mc.step()

		if mc.Debugger != nil && !mc.halted {
			mc.Debugger.Step(mc)
		}
	}

	return mc.halted, mc.status
}

func (mc *Machine) step() {
	defer func() {
		if r := recover(); r != nil {
			switch err := r.(type) {
			case *MemoryFault:
				mc.logger().WithField("pc", mc.State.Program).Error(err)
				mc.abort(err)
			case *DeviceError:
				mc.logger().WithField("pc", mc.State.Program).Error(err)
				mc.abort(err)
			default:
				panic(r)
			}
		}
	}()

	if mc.isa == nil {
		mc.isa = instructionSet
	}

	if log := mc.logger(); log.IsLevelEnabled(logrus.TraceLevel) {
		log.WithFields(logrus.Fields{
			"pc":     mc.State.Program,
			"opcode": mc.ReadByte(mc.State.Program),
			"ps":     mc.State.Procstat,
		}).Trace("step")
	}

	if mc.isa.dispatch(mc) {
		mc.halted = true
	}
}

// Run steps the machine until it halts or ctx is done, and returns the final
// status. The error is the fault that stopped execution, if any.
func (mc *Machine) Run(ctx context.Context) (uint32, error) {
	for {
		if err := ctx.Err(); err != nil {
			return mc.status, err
		}

		if halted, status := mc.Step(); halted {
			return status, mc.fault
		}
	}
}

func (mc *Machine) Halted() bool {
	return mc.halted
}

func (mc *Machine) Status() uint32 {
	return mc.status
}

func (mc *Machine) Fault() error {
	return mc.fault
}

func (mc *Machine) abort(err error) {
	mc.fault = err
	mc.status = 1
	mc.halted = true
}

func (mc *Machine) logger() *logrus.Logger {
	if mc.Logger != nil {
		return mc.Logger
	}

	return logrus.StandardLogger()
}
