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

// HLT  |00|                   Halt
func opHalt(mc *Machine, opcode uint8) bool {
	return true
}

// TRAP |01|                   Break into the attached debugger
func opTrap(mc *Machine, opcode uint8) bool {
	if mc.Debugger != nil {
		mc.Debugger.Trap(mc)
	}

	mc.advance(WIDTH_OP)
	return false
}

// INX  |20+r|                 Increment register
// DEX  |28+r|                 Decrement register
func opIncReg(mc *Machine, opcode uint8) bool {
	r := opcodeReg(opcode, OP_INXR)
	mc.setReg(r, mc.reg(r)+1)
	mc.advance(WIDTH_OP)
	return false
}

func opDecReg(mc *Machine, opcode uint8) bool {
	r := opcodeReg(opcode, OP_DEXR)
	mc.setReg(r, mc.reg(r)-1)
	mc.advance(WIDTH_OP)
	return false
}

// INX  |30|addr24   |         Increment byte[addr]
// DEX  |32|addr24   |         Decrement byte[addr]
func opIncByte(mc *Machine, opcode uint8) bool {
	addr := mc.operandImm()
	mc.store8(addr, mc.load8(addr)+1)
	mc.advance(WIDTH_IMM)
	return false
}

func opDecByte(mc *Machine, opcode uint8) bool {
	addr := mc.operandImm()
	mc.store8(addr, mc.load8(addr)-1)
	mc.advance(WIDTH_IMM)
	return false
}

// INX  |40|addr24   |         Increment word[addr]
// DEX  |42|addr24   |         Decrement word[addr]
func opIncWord(mc *Machine, opcode uint8) bool {
	addr := mc.operandImm()
	mc.store16(addr, mc.load16(addr)+1)
	mc.advance(WIDTH_IMM)
	return false
}

func opDecWord(mc *Machine, opcode uint8) bool {
	addr := mc.operandImm()
	mc.store16(addr, mc.load16(addr)-1)
	mc.advance(WIDTH_IMM)
	return false
}

// ADD  |47|rc|                x += y
func opAddCluster(mc *Machine, opcode uint8) bool {
	x, y := mc.operandCluster()
	mc.setReg(x, mc.reg(x)+mc.reg(y))
	mc.advance(WIDTH_CLUSTER)
	return false
}

// ADD  |48+r|imm24    |       r += imm
func opAddImm(mc *Machine, opcode uint8) bool {
	r := opcodeReg(opcode, OP_ADDRI)
	mc.setReg(r, mc.reg(r)+mc.operandImm())
	mc.advance(WIDTH_IMM)
	return false
}

// ADD  |50+r|addr24   |       r += byte[addr]
func opAddByte(mc *Machine, opcode uint8) bool {
	r := opcodeReg(opcode, OP_ADDRB)
	mc.setReg(r, mc.reg(r)+uint32(mc.load8(mc.operandImm())))
	mc.advance(WIDTH_IMM)
	return false
}

// ADD  |58+r|addr24   |       r += word[addr]
func opAddWord(mc *Machine, opcode uint8) bool {
	r := opcodeReg(opcode, OP_ADDRW)
	mc.setReg(r, mc.reg(r)+uint32(mc.load16(mc.operandImm())))
	mc.advance(WIDTH_IMM)
	return false
}

// ADD  |60+r|addr24   |       byte[addr] += r
func opAddToByte(mc *Machine, opcode uint8) bool {
	r := opcodeReg(opcode, OP_ADDBR)
	addr := mc.operandImm()
	mc.store8(addr, mc.load8(addr)+uint8(mc.reg(r)))
	mc.advance(WIDTH_IMM)
	return false
}

// ADD  |68+r|addr24   |       word[addr] += r
func opAddToWord(mc *Machine, opcode uint8) bool {
	r := opcodeReg(opcode, OP_ADDWR)
	addr := mc.operandImm()
	mc.store16(addr, mc.load16(addr)+uint16(mc.reg(r)))
	mc.advance(WIDTH_IMM)
	return false
}

// CMP  |70+r|imm24    |       Set Z and N from r - imm, C untouched
func opCmpImm(mc *Machine, opcode uint8) bool {
	r := opcodeReg(opcode, OP_CMPRI)
	diff := encoding.SignExtend(mc.reg(r), 24) -
		encoding.SignExtend(mc.operandImm(), 24)

	mc.setFlag(FLAG_ZERO, diff == 0)
	mc.setFlag(FLAG_NEG, diff < 0)
	mc.advance(WIDTH_IMM)
	return false
}

// LODB |7F|rc|                y = byte[x]; x += 1
// LODW |8F|rc|                y = word[x]; x += 2
// LODH |9F|rc|                y = triple[x]; x += 3
func opLoadByte(mc *Machine, opcode uint8) bool {
	x, y := mc.operandCluster()
	mc.setReg(y, uint32(mc.load8(mc.reg(x))))
	mc.setReg(x, mc.reg(x)+1)
	mc.advance(WIDTH_CLUSTER)
	return false
}

func opLoadWord(mc *Machine, opcode uint8) bool {
	x, y := mc.operandCluster()
	mc.setReg(y, uint32(mc.load16(mc.reg(x))))
	mc.setReg(x, mc.reg(x)+2)
	mc.advance(WIDTH_CLUSTER)
	return false
}

func opLoadTriple(mc *Machine, opcode uint8) bool {
	x, y := mc.operandCluster()
	mc.setReg(y, mc.load24(mc.reg(x)))
	mc.setReg(x, mc.reg(x)+3)
	mc.advance(WIDTH_CLUSTER)
	return false
}

// JMP  |86|addr24   |
func opJump(mc *Machine, opcode uint8) bool {
	mc.jump(mc.operandImm())
	return false
}

// Jcc  |A0+cc|addr24   |
//
// A taken branch on a set flag clears that flag. JS branches when N is
// clear, JN when it is set.
func branch(mask uint8, set bool) handler {
	return func(mc *Machine, opcode uint8) bool {
		if mc.flag(mask) != set {
			mc.advance(WIDTH_IMM)
			return false
		}

		mc.jump(mc.operandImm())

		if set {
			mc.setFlag(mask, false)
		}

		return false
	}
}

// PUSH |B0|imm24    |
func opPushImm(mc *Machine, opcode uint8) bool {
	mc.Push(mc.operandImm())
	mc.advance(WIDTH_IMM)
	return false
}

// PUSH |B5|r |
func opPushReg(mc *Machine, opcode uint8) bool {
	mc.Push(mc.reg(mc.operandReg()))
	mc.advance(WIDTH_REG)
	return false
}

// MOV  |C0+r|imm24    |       r = imm
func opMovImm(mc *Machine, opcode uint8) bool {
	mc.setReg(opcodeReg(opcode, OP_MOVRI), mc.operandImm())
	mc.advance(WIDTH_IMM)
	return false
}

// MOV  |CF|rc|                x = y
func opMovCluster(mc *Machine, opcode uint8) bool {
	x, y := mc.operandCluster()
	mc.setReg(x, mc.reg(y))
	mc.advance(WIDTH_CLUSTER)
	return false
}

// MOV  |D0+r|addr24   |       r = byte[addr]
func opMovByte(mc *Machine, opcode uint8) bool {
	mc.setReg(opcodeReg(opcode, OP_MOVRB), uint32(mc.load8(mc.operandImm())))
	mc.advance(WIDTH_IMM)
	return false
}

// MOV  |D8+r|addr24   |       r = word[addr]
func opMovWord(mc *Machine, opcode uint8) bool {
	mc.setReg(opcodeReg(opcode, OP_MOVRW), uint32(mc.load16(mc.operandImm())))
	mc.advance(WIDTH_IMM)
	return false
}

// MOV  |E0+r|addr24   |       byte[addr] = r
func opStoreByte(mc *Machine, opcode uint8) bool {
	mc.store8(mc.operandImm(), uint8(mc.reg(opcodeReg(opcode, OP_MOVBR))))
	mc.advance(WIDTH_IMM)
	return false
}

// MOV  |E8+r|addr24   |       word[addr] = r
func opStoreWord(mc *Machine, opcode uint8) bool {
	mc.store16(mc.operandImm(), uint16(mc.reg(opcodeReg(opcode, OP_MOVWR))))
	mc.advance(WIDTH_IMM)
	return false
}
