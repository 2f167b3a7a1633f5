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

import "fmt"

type IllegalInstructionError struct {
	// Escape byte of the opcode page, 0 for the primary page
	Page   uint8
	Opcode uint8
	Addr   uint32
}

func (e *IllegalInstructionError) Error() string {
	if e.Page != 0 {
		return fmt.Sprintf(
			"illegal instruction %02X:%02X at %06X", e.Page, e.Opcode, e.Addr,
		)
	}

	return fmt.Sprintf("illegal instruction %02X at %06X", e.Opcode, e.Addr)
}

type IllegalInterruptError struct {
	Code uint8
	Addr uint32
}

func (e *IllegalInterruptError) Error() string {
	return fmt.Sprintf("illegal hardware interrupt $%02X at %06X", e.Code, e.Addr)
}

// MemoryFault is raised when an access lands outside the memory the machine
// was created with.
type MemoryFault struct {
	Addr uint32
	Size int
}

func (e *MemoryFault) Error() string {
	return fmt.Sprintf(
		"memory fault at %06X (memory size %#x)", e.Addr, e.Size,
	)
}

type DeviceError struct {
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Device, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
