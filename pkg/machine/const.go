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

// Addressable registers
const (
	REG_AX = iota
	REG_BX
	REG_CX
	REG_DX
	REG_SI
	REG_GI
	REG_SP
	REG_BP
)

// Procstat layout: -I---ZNC
const (
	FLAG_CARRY uint8 = 1 << 0
	FLAG_NEG   uint8 = 1 << 1
	FLAG_ZERO  uint8 = 1 << 2
	FLAG_INT   uint8 = 1 << 6
)

// Host-service interrupts, valid below INT_CUSTOM
const (
	INT_EXIT        uint8 = 0x00
	INT_READ        uint8 = 0x01
	INT_WRITE       uint8 = 0x02
	INT_RESET       uint8 = 0x03
	INT_VIDEO_FLUSH uint8 = 0x11
	INT_RAND        uint8 = 0x21
	INT_DATE        uint8 = 0x22
	INT_WAIT        uint8 = 0x23

	INT_CUSTOM uint8 = 0x80
)

const (
	MEMSPACE_BOOT    uint32 = 0x000000
	MEMSPACE_PROGRAM uint32 = 0x030000
	MEMSPACE_STACK   uint32 = 0xFEFFFF
	MEMSPACE_VECTORS uint32 = 0xFF0000

	MEMSIZE = 1 << 24
)

// Longest WAIT the host timer accepts, in milliseconds
const WAIT_LIMIT = 0xFFFF

const (
	OP_HLT    uint8 = 0x00
	OP_TRAP   uint8 = 0x01
	OP_PAGE0F uint8 = 0x0F
	OP_INXR   uint8 = 0x20
	OP_DEXR   uint8 = 0x28
	OP_INXB   uint8 = 0x30
	OP_DEXB   uint8 = 0x32
	OP_INXW   uint8 = 0x40
	OP_INT    uint8 = 0x41
	OP_DEXW   uint8 = 0x42
	OP_ADDRC  uint8 = 0x47
	OP_ADDRI  uint8 = 0x48
	OP_ADDRB  uint8 = 0x50
	OP_ADDRW  uint8 = 0x58
	OP_ADDBR  uint8 = 0x60
	OP_ADDWR  uint8 = 0x68
	OP_CMPRI  uint8 = 0x70
	OP_LODB   uint8 = 0x7F
	OP_JMP    uint8 = 0x86
	OP_LODW   uint8 = 0x8F
	OP_LODH   uint8 = 0x9F
	OP_JE     uint8 = 0xA0
	OP_JNE    uint8 = 0xA1
	OP_JC     uint8 = 0xA2
	OP_JNC    uint8 = 0xA3
	OP_JS     uint8 = 0xA4
	OP_JN     uint8 = 0xA5
	OP_JI     uint8 = 0xA6
	OP_JNI    uint8 = 0xA7
	OP_PUSHI  uint8 = 0xB0
	OP_PUSHR  uint8 = 0xB5
	OP_MOVRI  uint8 = 0xC0
	OP_MOVRC  uint8 = 0xCF
	OP_MOVRB  uint8 = 0xD0
	OP_MOVRW  uint8 = 0xD8
	OP_MOVBR  uint8 = 0xE0
	OP_MOVWR  uint8 = 0xE8
)

// Encoded instruction widths, opcode byte included
const (
	WIDTH_OP      uint32 = 1
	WIDTH_REG     uint32 = 2
	WIDTH_CLUSTER uint32 = 2
	WIDTH_INT     uint32 = 2
	WIDTH_IMM     uint32 = 4
)
