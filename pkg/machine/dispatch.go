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

import "github.com/sirupsen/logrus"

type handler func(mc *Machine, opcode uint8) (halt bool)

// An opcodePage maps every opcode byte to a handler. Pages chain through
// escape opcodes, each of which consumes one extra byte and redispatches
// through the next page.
type opcodePage struct {
	// Escape byte leading into this page, 0 for the primary page
	prefix   uint8
	handlers [256]handler
}

func newOpcodePage(prefix uint8) *opcodePage {
	page := &opcodePage{prefix: prefix}

	for i := range page.handlers {
		page.handlers[i] = page.illegal
	}

	return page
}

func (p *opcodePage) set(opcode uint8, h handler) {
	p.handlers[opcode] = h
}

func (p *opcodePage) setRange(base uint8, count int, h handler) {
	for i := 0; i < count; i++ {
		p.handlers[int(base)+i] = h
	}
}

func (p *opcodePage) escape(opcode uint8, next *opcodePage) {
	p.handlers[opcode] = func(mc *Machine, _ uint8) bool {
		mc.advance(WIDTH_OP)
		return next.dispatch(mc)
	}
}

func (p *opcodePage) dispatch(mc *Machine) bool {
	opcode := mc.fetch(0)
	return p.handlers[opcode](mc, opcode)
}

func (p *opcodePage) illegal(mc *Machine, opcode uint8) bool {
	err := &IllegalInstructionError{
		Page:   p.prefix,
		Opcode: opcode,
		Addr:   mc.State.Program,
	}

	mc.logger().WithFields(logrus.Fields{
		"page":   p.prefix,
		"opcode": opcode,
		"pc":     mc.State.Program,
	}).Error("Illegal instruction")

	mc.abort(err)
	return true
}

var instructionSet = newInstructionSet()

func newInstructionSet() *opcodePage {
	primary := newOpcodePage(0)

	primary.set(OP_HLT, opHalt)
	primary.set(OP_TRAP, opTrap)
	primary.escape(OP_PAGE0F, newOpcodePage(OP_PAGE0F))

	primary.setRange(OP_INXR, 8, opIncReg)
	primary.setRange(OP_DEXR, 8, opDecReg)
	primary.set(OP_INXB, opIncByte)
	primary.set(OP_DEXB, opDecByte)
	primary.set(OP_INXW, opIncWord)
	primary.set(OP_DEXW, opDecWord)

	primary.set(OP_INT, opInterrupt)

	primary.set(OP_ADDRC, opAddCluster)
	primary.setRange(OP_ADDRI, 8, opAddImm)
	primary.setRange(OP_ADDRB, 8, opAddByte)
	primary.setRange(OP_ADDRW, 8, opAddWord)
	primary.setRange(OP_ADDBR, 8, opAddToByte)
	primary.setRange(OP_ADDWR, 8, opAddToWord)
	primary.setRange(OP_CMPRI, 8, opCmpImm)

	primary.set(OP_LODB, opLoadByte)
	primary.set(OP_LODW, opLoadWord)
	primary.set(OP_LODH, opLoadTriple)

	primary.set(OP_JMP, opJump)
	primary.set(OP_JE, branch(FLAG_ZERO, true))
	primary.set(OP_JNE, branch(FLAG_ZERO, false))
	primary.set(OP_JC, branch(FLAG_CARRY, true))
	primary.set(OP_JNC, branch(FLAG_CARRY, false))
	primary.set(OP_JS, branch(FLAG_NEG, false))
	primary.set(OP_JN, branch(FLAG_NEG, true))
	primary.set(OP_JI, branch(FLAG_INT, true))
	primary.set(OP_JNI, branch(FLAG_INT, false))

	primary.set(OP_PUSHI, opPushImm)
	primary.set(OP_PUSHR, opPushReg)

	primary.setRange(OP_MOVRI, 8, opMovImm)
	primary.set(OP_MOVRC, opMovCluster)
	primary.setRange(OP_MOVRB, 8, opMovByte)
	primary.setRange(OP_MOVRW, 8, opMovWord)
	primary.setRange(OP_MOVBR, 8, opStoreByte)
	primary.setRange(OP_MOVWR, 8, opStoreWord)

	return primary
}
