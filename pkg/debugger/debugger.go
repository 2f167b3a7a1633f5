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

package debugger

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/lassandro/gogc24/pkg/machine"
)

func (dbg *Debugger) Step(mc *machine.Machine) {
	if dbg.Break.Load() {
		dbg.HandleBreak(dbg, mc)
		return
	}

	for _, breakpoint := range dbg.Breakpoints {
		if mc.State.Program == breakpoint.Addr {
			dbg.HandleBreak(dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Read(addr uint32, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == WriteWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleRead(addr, dbg, mc)
			break
		}
	}
}

func (dbg *Debugger) Write(addr uint32, mc *machine.Machine) {
	for _, watchpoint := range dbg.Watchpoints {
		if watchpoint.Type == ReadWatch {
			continue
		}

		if addr == watchpoint.Addr {
			dbg.HandleWrite(addr, dbg, mc)
			break
		}
	}
}

// Trap stops at the instruction following a trap.
func (dbg *Debugger) Trap(mc *machine.Machine) {
	dbg.Break.Store(true)
}

// Reload puts the image back into memory and resets the machine.
func (dbg *Debugger) Reload(mc *machine.Machine) error {
	if dbg.Image == nil {
		mc.Reset()
		return nil
	}

	if _, err := dbg.Image.Seek(0, io.SeekStart); err != nil {
		return err
	}

	_, err := mc.LoadImage(dbg.Image, dbg.ImageBase)
	return err
}

func (dbg *Debugger) output() io.Writer {
	if dbg.Output != nil {
		return dbg.Output
	}

	return os.Stdout
}

func (dbg *Debugger) PrintMem(mc *machine.MachineState, addr, count uint32) {
	out := dbg.output()

	for i := addr; i < addr+count; i++ {
		if int(i) >= len(mc.Memory) {
			break
		}

		if i == addr {
			fmt.Fprintf(out, "\033[1m[%06X]\033[0m ", i)
		} else if (i-addr)%16 == 0 {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "\033[1m[%06X]\033[0m ", i)
		}

		result := mc.Memory[i]

		if result == 0 {
			fmt.Fprintf(out, "\033[1;30m%02X\033[0m ", result)
		} else {
			fmt.Fprintf(out, "%02X ", result)
		}
	}

	fmt.Fprintln(out)
}

var regNames = [8]string{"AX", "BX", "CX", "DX", "SI", "GI", "SP", "BP"}

func RegisterName(index int) string {
	return regNames[index&0x7]
}

// RegisterIndex resolves a register name, -1 if there is none.
func RegisterIndex(name string) int {
	for i, reg := range regNames {
		if reg == name {
			return i
		}
	}

	return -1
}

func (dbg *Debugger) PrintRegs(mc *machine.MachineState) {
	regTable := table.NewWriter()
	regTable.SetOutputMirror(dbg.output())

	header := table.Row{}
	row := table.Row{}

	for i, register := range mc.Registers {
		header = append(header, regNames[i])
		row = append(row, fmt.Sprintf("%06X", register))
	}

	header = append(header, "PC", "PS -I---ZNC")
	row = append(row,
		fmt.Sprintf("%06X", mc.Program),
		fmt.Sprintf("%08b", mc.Procstat),
	)

	regTable.AppendHeader(header)
	regTable.AppendRow(row)
	regTable.Render()
}
