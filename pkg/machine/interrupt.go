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
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// INT  |41|code|
//
// Ignored while FLAG_INT is clear. Codes from INT_CUSTOM up jump through the
// vector table without pushing a return address, lower codes are serviced by
// the host.
func opInterrupt(mc *Machine, opcode uint8) bool {
	if !mc.flag(FLAG_INT) {
		mc.advance(WIDTH_INT)
		return false
	}

	code := mc.operandCode()

	if code >= INT_CUSTOM {
		mc.jump(mc.load24(vectorAddr(code)))
		return false
	}

	switch code {
	case INT_EXIT:
		mc.status = mc.Pop()
		return true

	case INT_RESET:
		mc.Reset()
		return false

	case INT_READ:
		mc.Push(mc.readKey())

	case INT_WRITE:
		mc.writeChar(uint8(mc.Pop()))

	case INT_VIDEO_FLUSH:
		if mc.Devices != nil && mc.Devices.Video != nil {
			if err := mc.Devices.Video.Flush(mc.State.Memory); err != nil {
				panic(&DeviceError{Device: "video", Err: err})
			}
		}

	case INT_RAND:
		mc.setReg(REG_DX, uint32(mc.random().Uint16()))

	case INT_DATE:
		mc.setReg(REG_DX, PackDate(mc.clock().Now()))

	case INT_WAIT:
		ms := mc.reg(REG_DX)
		if ms > WAIT_LIMIT {
			ms = WAIT_LIMIT
		}
		mc.clock().Sleep(time.Duration(ms) * time.Millisecond)

	default:
		err := &IllegalInterruptError{Code: code, Addr: mc.State.Program}

		mc.logger().WithFields(logrus.Fields{
			"code": code,
			"pc":   mc.State.Program,
		}).Error("Illegal hardware interrupt")

		mc.abort(err)
		return true
	}

	mc.advance(WIDTH_INT)
	return false
}

func vectorAddr(code uint8) uint32 {
	return MEMSPACE_VECTORS + uint32(code-INT_CUSTOM)*3
}

// PackDate encodes t for INT_DATE:
//
// |hour |year-2000    |month  |day    |
// [ 20-16 | 15-9        | 8-5   | 4-0   ]
func PackDate(t time.Time) uint32 {
	year := uint32(t.Year()-2000) & 0x7F

	return uint32(t.Hour())<<16 |
		year<<9 |
		uint32(t.Month())<<5 |
		uint32(t.Day())
}

// Console input pushes 0xFFFFFF once the keyboard runs dry.
func (mc *Machine) readKey() uint32 {
	if mc.Devices == nil || mc.Devices.Keyboard == nil {
		return 0xFFFFFF
	}

	key, err := mc.Devices.Keyboard.ReadByte()

	if err == io.EOF {
		return 0xFFFFFF
	} else if err != nil {
		panic(&DeviceError{Device: "keyboard", Err: err})
	}

	return uint32(key)
}

func (mc *Machine) writeChar(c uint8) {
	if mc.Devices == nil || mc.Devices.Display == nil {
		return
	}

	if err := mc.Devices.Display.WriteByte(c); err != nil {
		panic(&DeviceError{Device: "display", Err: err})
	}

	if err := mc.Devices.Display.Flush(); err != nil {
		panic(&DeviceError{Device: "display", Err: err})
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

type mathRandom struct {
	rng *rand.Rand
}

func (r *mathRandom) Uint16() uint16 {
	return uint16(r.rng.Uint32())
}

// NewRandom returns a Random backed by math/rand, seeded with seed.
func NewRandom(seed int64) Random {
	return &mathRandom{rng: rand.New(rand.NewSource(seed))}
}

func (mc *Machine) clock() Clock {
	if mc.Devices != nil && mc.Devices.Clock != nil {
		return mc.Devices.Clock
	}

	return systemClock{}
}

func (mc *Machine) random() Random {
	if mc.Devices != nil && mc.Devices.Random != nil {
		return mc.Devices.Random
	}

	if mc.rng == nil {
		mc.rng = NewRandom(rand.Int63())
	}

	return mc.rng
}
