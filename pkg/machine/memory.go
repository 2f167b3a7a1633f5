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
	"io"

	"github.com/pkg/errors"

	"github.com/lassandro/gogc24/pkg/encoding"
)

// LoadImage resets the machine and copies a raw program image into memory
// starting at base. It returns the number of bytes loaded.
func (mc *Machine) LoadImage(reader io.Reader, base uint32) (int, error) {
	mc.Reset()

	if int(base) >= len(mc.State.Memory) {
		return 0, errors.Errorf(
			"load address %06X outside memory (size %#x)",
			base,
			len(mc.State.Memory),
		)
	}

	n, err := io.ReadFull(reader, mc.State.Memory[base:])

	switch err {
	case nil:
		var scratch [1]byte
		if extra, _ := reader.Read(scratch[:]); extra > 0 {
			return n, errors.Errorf(
				"image does not fit in memory above %06X", base,
			)
		}
	case io.EOF, io.ErrUnexpectedEOF:
	default:
		return n, errors.Wrap(err, "reading image")
	}

	return n, nil
}

func (mc *Machine) check(addr uint32) uint32 {
	addr &= encoding.Mask24

	if int(addr) >= len(mc.State.Memory) {
		panic(&MemoryFault{Addr: addr, Size: len(mc.State.Memory)})
	}

	return addr
}

// The exported accessors below bypass the debugger hooks and are meant for
// loaders and inspectors. Addresses wrap at 24 bits; an address beyond the
// memory size panics with *MemoryFault.

func (mc *Machine) ReadByte(addr uint32) uint8 {
	return mc.State.Memory[mc.check(addr)]
}

func (mc *Machine) WriteByte(addr uint32, value uint8) {
	mc.State.Memory[mc.check(addr)] = value
}

func (mc *Machine) ReadWord(addr uint32) uint16 {
	return uint16(mc.ReadByte(addr)) | uint16(mc.ReadByte(addr+1))<<8
}

func (mc *Machine) WriteWord(addr uint32, value uint16) {
	mc.WriteByte(addr, uint8(value))
	mc.WriteByte(addr+1, uint8(value>>8))
}

func (mc *Machine) Read24(addr uint32) uint32 {
	addr &= encoding.Mask24

	if int(addr)+3 <= len(mc.State.Memory) {
		return encoding.Uint24(mc.State.Memory[addr:])
	}

	return uint32(mc.ReadByte(addr)) |
		uint32(mc.ReadByte(addr+1))<<8 |
		uint32(mc.ReadByte(addr+2))<<16
}

func (mc *Machine) Write24(addr uint32, value uint32) {
	addr &= encoding.Mask24

	if int(addr)+3 <= len(mc.State.Memory) {
		encoding.PutUint24(mc.State.Memory[addr:], value)
		return
	}

	mc.WriteByte(addr, uint8(value))
	mc.WriteByte(addr+1, uint8(value>>8))
	mc.WriteByte(addr+2, uint8(value>>16))
}

func (mc *Machine) read(addr uint32) {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr&encoding.Mask24, mc)
	}
}

func (mc *Machine) write(addr uint32) {
	if mc.Debugger != nil {
		mc.Debugger.Write(addr&encoding.Mask24, mc)
	}
}

func (mc *Machine) load8(addr uint32) uint8 {
	value := mc.ReadByte(addr)
	mc.read(addr)
	return value
}

func (mc *Machine) load16(addr uint32) uint16 {
	value := mc.ReadWord(addr)
	mc.read(addr)
	return value
}

func (mc *Machine) load24(addr uint32) uint32 {
	value := mc.Read24(addr)
	mc.read(addr)
	return value
}

func (mc *Machine) store8(addr uint32, value uint8) {
	mc.WriteByte(addr, value)
	mc.write(addr)
}

func (mc *Machine) store16(addr uint32, value uint16) {
	mc.WriteWord(addr, value)
	mc.write(addr)
}

// Push stores the low 24 bits of value below SP, most significant byte at
// SP, and moves SP down by 3.
func (mc *Machine) Push(value uint32) {
	sp := mc.State.Registers[REG_SP]

	mc.WriteByte(sp, uint8(value>>16))
	mc.WriteByte(sp-1, uint8(value>>8))
	mc.WriteByte(sp-2, uint8(value))
	mc.write(sp - 2)

	mc.setReg(REG_SP, sp-3)
}

// Pop moves SP up by 3 and returns the slot it now covers.
func (mc *Machine) Pop() uint32 {
	mc.setReg(REG_SP, mc.State.Registers[REG_SP]+3)
	return mc.load24(mc.State.Registers[REG_SP] - 2)
}

func (mc *Machine) reg(index int) uint32 {
	return mc.State.Registers[index&0x7]
}

func (mc *Machine) setReg(index int, value uint32) {
	mc.State.Registers[index&0x7] = value & encoding.Mask24
}

func (mc *Machine) flag(mask uint8) bool {
	return mc.State.Procstat&mask != 0
}

func (mc *Machine) setFlag(mask uint8, on bool) {
	if on {
		mc.State.Procstat |= mask
	} else {
		mc.State.Procstat &= ^mask
	}
}
