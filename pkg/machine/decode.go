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

import "github.com/lassandro/gogc24/pkg/encoding"

// Cluster |--|x    |y    |
// ------- [ _ _ _ _ _ _ _ _ ]
func decodeCluster(cluster uint8) (x, y int) {
	return int(cluster>>3) & 0x7, int(cluster) & 0x7
}

// Register encoded in the low bits of an 8-wide opcode range
func opcodeReg(opcode, base uint8) int {
	return int(opcode-base) & 0x7
}

// Operand bytes trail the opcode and are fetched without debugger hooks.

func (mc *Machine) fetch(offset uint32) uint8 {
	return mc.ReadByte(mc.State.Program + offset)
}

func (mc *Machine) operandReg() int {
	return int(mc.fetch(1)) & 0x7
}

func (mc *Machine) operandCluster() (x, y int) {
	return decodeCluster(mc.fetch(1))
}

func (mc *Machine) operandCode() uint8 {
	return mc.fetch(1)
}

func (mc *Machine) operandImm() uint32 {
	return mc.Read24(mc.State.Program + 1)
}

func (mc *Machine) advance(width uint32) {
	mc.State.Program = (mc.State.Program + width) & encoding.Mask24
}

func (mc *Machine) jump(target uint32) {
	mc.State.Program = target & encoding.Mask24
}
