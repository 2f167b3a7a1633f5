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

package main

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/shibukawa/configdir"
	"github.com/sirupsen/logrus"

	"github.com/lassandro/gogc24/pkg/debugger"
	"github.com/lassandro/gogc24/pkg/encoding"
	"github.com/lassandro/gogc24/pkg/machine"
)

var lastcmd []string
var rl *readline.Instance

// Command errors go to stderr so they stay apart from program output
var replLog *logrus.Entry

func debugBreak(dbg *debugger.Debugger, args []string) {
	const usage = "break [add|list|remove]"

	if len(args) == 0 {
		args = append(args, "l")
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "break add [0x######]"

		if len(args) != 1 {
			replLog.Warn(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			replLog.Error(err)
			return
		}

		exists := false

		for _, breakpoint := range dbg.Breakpoints {
			if breakpoint.Addr == addr {
				exists = true
				break
			}
		}

		if !exists {
			dbg.Breakpoints = append(
				dbg.Breakpoints,
				debugger.Breakpoint{Addr: addr},
			)

			fmt.Printf("Breakpoint added [%06X]\n", addr)
		}

	case "l", "ls", "list":
		if len(args) != 0 {
			fmt.Println("break list")
			return
		}

		fmtstring := indexFormat(len(dbg.Breakpoints), "%06X\n")

		for i, breakpoint := range dbg.Breakpoints {
			fmt.Printf(fmtstring, i, breakpoint.Addr)
		}

	case "r", "rm", "remove":
		const usage = "break remove [#]"

		i, ok := parseIndex(args, len(dbg.Breakpoints), usage)

		if !ok {
			return
		}

		dbg.Breakpoints[i] = dbg.Breakpoints[len(dbg.Breakpoints)-1]
		dbg.Breakpoints = dbg.Breakpoints[:len(dbg.Breakpoints)-1]
		fmt.Printf("Breakpoint removed [%d]\n", i)

	case "clear":
		dbg.Breakpoints = make([]debugger.Breakpoint, 0)
		fmt.Println("Breakpoints reset")

	default:
		replLog.Warnf("break: '%s' is not a valid command\n%s", cmd, usage)
	}
}

var watchNames = map[debugger.WatchpointType]string{
	debugger.ReadWatch:      "read",
	debugger.WriteWatch:     "write",
	debugger.ReadWriteWatch: "rwrite",
}

func debugWatch(dbg *debugger.Debugger, args []string) {
	const usage = "watch [add|list|rm]"

	if len(args) == 0 {
		replLog.Warn(usage)
		return
	}

	cmd := args[0]
	args = args[1:]

	switch cmd {
	case "a", "add":
		const usage = "watch add [0x######] [read|write|readwrite]"

		if len(args) != 2 {
			replLog.Warn(usage)
			return
		}

		addr, err := encoding.DecodeHex(args[0])

		if err != nil {
			replLog.Error(err)
			return
		}

		var wtype debugger.WatchpointType

		switch args[1] {
		case "r", "read":
			wtype = debugger.ReadWatch
		case "w", "write":
			wtype = debugger.WriteWatch
		case "rw", "rwrite", "readwrite":
			wtype = debugger.ReadWriteWatch
		default:
			replLog.Warn(usage)
			return
		}

		for _, watchpoint := range dbg.Watchpoints {
			if watchpoint.Addr == addr && watchpoint.Type == wtype {
				return
			}
		}

		dbg.Watchpoints = append(
			dbg.Watchpoints,
			debugger.Watchpoint{Addr: addr, Type: wtype},
		)

		fmt.Printf("Watchpoint added [%06X] (%s)\n", addr, watchNames[wtype])

	case "l", "ls", "list":
		if len(args) != 0 {
			fmt.Println("watch list")
			return
		}

		fmtstring := indexFormat(len(dbg.Watchpoints), "%06X %s\n")

		for i, watchpoint := range dbg.Watchpoints {
			fmt.Printf(fmtstring, i, watchpoint.Addr, watchNames[watchpoint.Type])
		}

	case "r", "rm", "remove":
		const usage = "watch rm [#]"

		i, ok := parseIndex(args, len(dbg.Watchpoints), usage)

		if !ok {
			return
		}

		dbg.Watchpoints[i] = dbg.Watchpoints[len(dbg.Watchpoints)-1]
		dbg.Watchpoints = dbg.Watchpoints[:len(dbg.Watchpoints)-1]
		fmt.Printf("Watchpoint removed [%d]\n", i)

	case "clear":
		dbg.Watchpoints = make([]debugger.Watchpoint, 0)
		fmt.Println("Watchpoints reset")

	default:
		replLog.Warnf("watch: '%s' is not a valid command", cmd)
	}
}

func indexFormat(count int, suffix string) string {
	digits := math.Floor(math.Log10(float64(count + 1)))
	return fmt.Sprintf("#%%0%dd: ", int64(digits)+1) + suffix
}

func parseIndex(args []string, count int, usage string) (int, bool) {
	if len(args) != 1 {
		replLog.Warn(usage)
		return 0, false
	}

	i, err := strconv.ParseInt(args[0], 10, 64)

	if err != nil {
		replLog.Error(err)
		return 0, false
	}

	if i < 0 || i >= int64(count) {
		replLog.Warn("invalid index")
		return 0, false
	}

	return int(i), true
}

func debugReg(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "register [AX..BP|PC|PS] [0x######]"

	if len(args) == 0 {
		dbg.PrintRegs(mc)
		return
	}

	if len(args) != 2 {
		replLog.Warn(usage)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		replLog.Error(err)
		return
	}

	name := strings.ToUpper(args[0])

	switch name {
	case "PC":
		mc.Program = value
	case "PS":
		mc.Procstat = uint8(value)
	default:
		i := debugger.RegisterIndex(name)

		if i < 0 {
			replLog.Warn("invalid register")
			return
		}

		mc.Registers[i] = value
	}

	fmt.Printf("\033[1m%s:\033[0m %06X\n", name, value)
}

func debugJump(mc *machine.MachineState, args []string) {
	const usage = "jump [0x######]"

	if len(args) != 1 {
		replLog.Warn(usage)
		return
	}

	addr, err := encoding.DecodeHex(args[0])

	if err != nil {
		replLog.Error(err)
		return
	}

	mc.Program = addr
	fmt.Printf("\033[1mPC:\033[0m %06X\n", addr)
}

func debugMemory(dbg *debugger.Debugger, mc *machine.MachineState, args []string) {
	const usage = "memory [0x######|#] [#]"

	if len(args) > 2 {
		replLog.Warn(usage)
		return
	}

	var size uint32 = 16
	var addr uint32 = mc.Program
	var err error

	if len(args) > 0 {
		addr, err = encoding.DecodeHex(args[0])

		if err != nil {
			var value int64
			value, err = strconv.ParseInt(args[0], 10, 32)

			if err != nil {
				replLog.Error(err)
				return
			}

			addr = mc.Program
			size = uint32(value)
		}
	}

	if len(args) > 1 {
		var value int64
		value, err = strconv.ParseInt(args[1], 10, 32)

		if err != nil {
			replLog.Error(err)
			return
		}

		size = uint32(value)
	}

	dbg.PrintMem(mc, addr, size)
}

func debugSet(dbg *debugger.Debugger, mc *machine.Machine, args []string) {
	const usage = "set [0x######] [0x##]"

	if len(args) != 2 {
		replLog.Warn(usage)
		return
	}

	addr, err := encoding.DecodeHex(args[0])

	if err != nil {
		replLog.Error(err)
		return
	}

	value, err := encoding.DecodeHex(args[1])

	if err != nil {
		replLog.Error(err)
		return
	}

	if int(addr) >= len(mc.State.Memory) {
		replLog.Warn("address outside memory")
		return
	}

	mc.WriteByte(addr, uint8(value))
	dbg.PrintMem(&mc.State, addr, 1)
}

func readlineInstance() (*readline.Instance, error) {
	if rl != nil {
		return rl, nil
	}

	configDirs := configdir.New("gogc24", "debugger")
	cacheDir := configDirs.QueryCacheFolder()
	historyPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		historyPath = filepath.Join(cacheDir.Path, "history")
	}

	var err error
	rl, err = readline.NewEx(&readline.Config{
		Prompt:          "\033[1;30m(dbg)\033[0m ",
		InterruptPrompt: "\n",
		HistoryFile:     historyPath,
	})

	return rl, err
}

func debugREPL(dbg *debugger.Debugger, mc *machine.Machine) error {
	if err := exitRawTerm(); err != nil {
		return err
	}

	defer func() {
		if termRestore != nil {
			enterRawTerm()
		}
	}()

	rl, err := readlineInstance()

	if err != nil {
		return err
	}

	for {
		line, err := rl.Readline()

		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			fmt.Println()
			shouldexit = true
			return nil
		} else if err != nil {
			return err
		}

		args := strings.Fields(line)

		if len(args) == 0 {
			if len(lastcmd) == 0 {
				continue
			}
			args = lastcmd
		} else {
			lastcmd = make([]string, len(args))
			copy(lastcmd, args)
		}

		cmd := args[0]
		args = args[1:]

		switch cmd {
		case "b", "bp", "break", "breakpoint":
			debugBreak(dbg, args)

		case "w", "wp", "watch", "watchpoint":
			debugWatch(dbg, args)

		case "r", "reg", "register", "registers":
			debugReg(dbg, &mc.State, args)

		case "j", "jmp", "jump":
			debugJump(&mc.State, args)

		case "m", "mem", "memory":
			debugMemory(dbg, &mc.State, args)

		case "set":
			debugSet(dbg, mc, args)

		case "c", "continue":
			dbg.Break.Store(false)
			return nil

		case "n", "next":
			dbg.Break.Store(true)
			return nil

		case "q", "quit", "exit":
			shouldexit = true
			return nil

		case "clear":
			fmt.Print("\033[H\033[2J")

		case "reset":
			if err := dbg.Reload(mc); err != nil {
				replLog.Error(err)
			} else {
				fmt.Println("Machine reset")
			}

		default:
			replLog.Warnf("'%s' is not a valid command", cmd)
		}
	}
}

func stopped(dbg *debugger.Debugger, mc *machine.Machine) {
	if err := debugREPL(dbg, mc); err != nil {
		log.Error(err)
		shouldexit = true
	}
}

func handleBreak(dbg *debugger.Debugger, mc *machine.Machine) {
	if !dbg.Break.Load() {
		fmt.Println()
		fmt.Println("Program stopped")
	}
	dbg.PrintRegs(&mc.State)
	stopped(dbg, mc)
}

func handleRead(addr uint32, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped (read)")
	dbg.PrintMem(&mc.State, addr, 1)
	stopped(dbg, mc)
}

func handleWrite(addr uint32, dbg *debugger.Debugger, mc *machine.Machine) {
	fmt.Println()
	fmt.Println("Program stopped (write)")
	dbg.PrintMem(&mc.State, addr, 1)
	stopped(dbg, mc)
}
