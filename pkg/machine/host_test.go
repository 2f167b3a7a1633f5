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

package machine_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/lassandro/gogc24/pkg/machine"
)

var _ = Describe("Machine", func() {
	var (
		mockCtrl *gomock.Controller
		video    *MockFrameSink
		clock    *MockClock
		random   *MockRandom
		mc       *machine.Machine
	)

	load := func(program ...byte) {
		for i, b := range program {
			mc.WriteByte(pc+uint32(i), b)
		}
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		video = NewMockFrameSink(mockCtrl)
		clock = NewMockClock(mockCtrl)
		random = NewMockRandom(mockCtrl)

		mc = machine.New(machine.MEMSIZE)
		mc.Devices = &machine.DeviceHandler{
			Video:  video,
			Clock:  clock,
			Random: random,
		}
		mc.Logger = logrus.New()
		mc.Logger.SetOutput(io.Discard)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("Reset", func() {
		It("should restore the power-on registers and flags", func() {
			mc.State.Registers = [8]uint32{1, 2, 3, 4, 5, 6, 7, 8}
			mc.State.Program = 0x000123
			mc.State.Procstat = machine.FLAG_ZERO | machine.FLAG_NEG | machine.FLAG_CARRY
			mc.WriteByte(0x000010, 0xAA)

			mc.Reset()

			Expect(mc.State.Registers).To(Equal([8]uint32{
				0, 0, 0, 0, 0, 0, 0xFEFFFF, 0xFEFFFF,
			}))
			Expect(mc.State.Program).To(Equal(uint32(0x030000)))
			Expect(mc.State.Procstat).To(Equal(machine.FLAG_INT))
			Expect(mc.ReadByte(0x000010)).To(Equal(uint8(0xAA)))
		})

		It("should clear a previous halt", func() {
			load(0x00)

			halted, status := mc.Step()
			Expect(halted).To(BeTrue())
			Expect(status).To(Equal(uint32(0)))

			halted, _ = mc.Step()
			Expect(halted).To(BeTrue())

			mc.Reset()
			Expect(mc.Halted()).To(BeFalse())
		})
	})

	Context("Host-service interrupts", func() {
		It("should hand memory to the frame sink on video flush", func() {
			load(0x41, 0x11)
			video.EXPECT().Flush(gomock.Any()).DoAndReturn(func(mem []byte) error {
				Expect(mem).To(HaveLen(machine.MEMSIZE))
				return nil
			})

			halted, _ := mc.Step()

			Expect(halted).To(BeFalse())
			Expect(mc.State.Program).To(Equal(pc + 2))
		})

		It("should halt when the frame sink fails", func() {
			load(0x41, 0x11)
			video.EXPECT().Flush(gomock.Any()).Return(errors.New("closed"))

			halted, status := mc.Step()

			Expect(halted).To(BeTrue())
			Expect(status).To(Equal(uint32(1)))

			var deviceErr *machine.DeviceError
			Expect(errors.As(mc.Fault(), &deviceErr)).To(BeTrue())
			Expect(deviceErr.Device).To(Equal("video"))
		})

		It("should load a random word into DX", func() {
			load(0x41, 0x21)
			random.EXPECT().Uint16().Return(uint16(0xBEEF))

			mc.Step()

			Expect(mc.State.Registers[machine.REG_DX]).To(Equal(uint32(0xBEEF)))
			Expect(mc.State.Program).To(Equal(pc + 2))
		})

		It("should load the packed date into DX", func() {
			load(0x41, 0x22)
			clock.EXPECT().Now().
				Return(time.Date(2024, time.March, 15, 13, 45, 0, 0, time.UTC))

			mc.Step()

			Expect(mc.State.Registers[machine.REG_DX]).
				To(Equal(uint32(13<<16 | 24<<9 | 3<<5 | 15)))
		})

		It("should sleep for DX milliseconds", func() {
			load(0x41, 0x23)
			mc.State.Registers[machine.REG_DX] = 250
			clock.EXPECT().Sleep(250 * time.Millisecond)

			mc.Step()

			Expect(mc.State.Program).To(Equal(pc + 2))
		})

		It("should cap the delay at the host timer range", func() {
			load(0x41, 0x23)
			mc.State.Registers[machine.REG_DX] = 0xFFFFFF
			clock.EXPECT().Sleep(time.Duration(machine.WAIT_LIMIT) * time.Millisecond)

			mc.Step()
		})

		It("should only advance PC while interrupts are disabled", func() {
			for code := 0; code < 256; code++ {
				mc.Reset()
				mc.State.Procstat = machine.FLAG_ZERO
				load(0x41, uint8(code))

				halted, status := mc.Step()

				Expect(halted).To(BeFalse())
				Expect(status).To(Equal(uint32(0)))
				Expect(mc.State.Program).To(Equal(pc + 2))
				Expect(mc.State.Procstat).To(Equal(machine.FLAG_ZERO))
				Expect(mc.State.Registers).To(Equal([8]uint32{
					0, 0, 0, 0, 0, 0, 0xFEFFFF, 0xFEFFFF,
				}))
			}
		})

		It("should write and read through the console devices", func() {
			var out bytes.Buffer
			mc.Devices.Keyboard = bufio.NewReader(strings.NewReader("k"))
			mc.Devices.Display = bufio.NewWriter(&out)

			// int read; int write; int exit with 0x05
			load(0x41, 0x01, 0x41, 0x02, 0xB0, 0x05, 0x00, 0x00, 0x41, 0x00)

			status, err := mc.Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(uint32(5)))
			Expect(out.String()).To(Equal("k"))
			Expect(mc.State.Registers[machine.REG_SP]).To(Equal(uint32(0xFEFFFF)))
		})
	})

	Context("Vector table", func() {
		It("should jump to entry n for code 0x80+n", func() {
			for n := uint32(0); n < 128; n++ {
				mc.Write24(machine.MEMSPACE_VECTORS+n*3, 0x010000+n*0x10)
			}

			for n := 0; n < 128; n++ {
				mc.Reset()
				load(0x41, uint8(0x80+n))

				mc.Step()

				Expect(mc.State.Program).To(Equal(uint32(0x010000 + n*0x10)))
				Expect(mc.State.Registers[machine.REG_SP]).To(Equal(uint32(0xFEFFFF)))
			}
		})
	})

	Context("Arithmetic", func() {
		values := []uint32{0, 1, 0x7FFFFF, 0x800000, 0xFFFFFF, 0x123456}

		It("should add immediates modulo 2^24 without touching flags", func() {
			for r := 0; r < 8; r++ {
				for _, old := range values {
					for _, v := range values {
						mc.Reset()
						mc.State.Procstat = 0b01000101
						mc.State.Registers[r] = old
						load(0x48+uint8(r), uint8(v), uint8(v>>8), uint8(v>>16))

						mc.Step()

						Expect(mc.State.Registers[r]).To(Equal((old + v) & 0xFFFFFF))
						Expect(mc.State.Procstat).To(Equal(uint8(0b01000101)))
					}
				}
			}
		})

		It("should compare as signed 24-bit values and keep carry", func() {
			for _, a := range values {
				for _, b := range values {
					for _, carry := range []uint8{0, machine.FLAG_CARRY} {
						mc.Reset()
						mc.State.Procstat = carry
						mc.State.Registers[machine.REG_CX] = a
						load(0x72, uint8(b), uint8(b>>8), uint8(b>>16))

						mc.Step()

						diff := signed(a) - signed(b)
						Expect(mc.State.Procstat&machine.FLAG_ZERO != 0).To(Equal(a == b))
						Expect(mc.State.Procstat&machine.FLAG_NEG != 0).To(Equal(diff < 0))
						Expect(mc.State.Procstat & machine.FLAG_CARRY).To(Equal(carry))
					}
				}
			}
		})
	})

	Context("Stack", func() {
		It("should round-trip pushed values", func() {
			for _, v := range []uint32{0, 0x42, 0xFFFFFF, 0x1234567, 0xFFFFFFFF} {
				sp := mc.State.Registers[machine.REG_SP]

				mc.Push(v)
				Expect(mc.State.Registers[machine.REG_SP]).To(Equal(sp - 3))

				Expect(mc.Pop()).To(Equal(v & 0xFFFFFF))
				Expect(mc.State.Registers[machine.REG_SP]).To(Equal(sp))
			}
		})

		It("should wrap below address zero", func() {
			mc.State.Registers[machine.REG_SP] = 0x000001

			mc.Push(0xABCDEF)

			Expect(mc.State.Registers[machine.REG_SP]).To(Equal(uint32(0xFFFFFE)))
			Expect(mc.ReadByte(0x000001)).To(Equal(uint8(0xAB)))
			Expect(mc.ReadByte(0x000000)).To(Equal(uint8(0xCD)))
			Expect(mc.ReadByte(0xFFFFFF)).To(Equal(uint8(0xEF)))
			Expect(mc.Pop()).To(Equal(uint32(0xABCDEF)))
		})
	})

	Context("Load cluster", func() {
		It("should auto-increment the source register by the read width", func() {
			mc.Write24(0x000100, 0x332211)

			for i, op := range []uint8{0x7F, 0x8F, 0x9F} {
				width := uint32(i + 1)

				mc.Reset()
				mc.State.Registers[machine.REG_SI] = 0x000100
				load(op, 0b00_100_011)

				mc.Step()

				mask := uint32(1)<<(8*width) - 1
				Expect(mc.State.Registers[machine.REG_SI]).To(Equal(0x000100 + width))
				Expect(mc.State.Registers[machine.REG_DX]).To(Equal(0x332211 & mask))
			}
		})
	})

	Context("Run", func() {
		It("should stop when the context is cancelled", func() {
			load(0x86, 0x00, 0x00, 0x03)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
			defer cancel()

			status, err := mc.Run(ctx)

			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(status).To(Equal(uint32(0)))
			Expect(mc.Halted()).To(BeFalse())
		})

		It("should report memory faults", func() {
			mc = machine.New(0x040000)
			mc.Logger = logrus.New()
			mc.Logger.SetOutput(io.Discard)
			load(0xD0, 0x00, 0x00, 0x10)

			status, err := mc.Run(context.Background())

			Expect(status).To(Equal(uint32(1)))

			var fault *machine.MemoryFault
			Expect(errors.As(err, &fault)).To(BeTrue())
			Expect(fault.Addr).To(Equal(uint32(0x100000)))
		})

		It("should report the illegal interrupt code", func() {
			load(0x41, 0x42)

			status, err := mc.Run(context.Background())

			Expect(status).To(Equal(uint32(1)))
			Expect(err).To(MatchError("illegal hardware interrupt $42 at 030000"))
		})
	})

	Context("LoadImage", func() {
		It("should place the image at the base address", func() {
			n, err := mc.LoadImage(bytes.NewReader([]byte{0xC0, 0x01, 0x02, 0x03}), pc)

			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(4))
			Expect(mc.Read24(pc + 1)).To(Equal(uint32(0x030201)))
			Expect(mc.State.Program).To(Equal(pc))
		})

		It("should reject images that overflow memory", func() {
			mc = machine.New(0x000010)

			_, err := mc.LoadImage(bytes.NewReader(make([]byte, 0x20)), 0)

			Expect(err).To(HaveOccurred())
		})

		It("should reject a base outside memory", func() {
			mc = machine.New(0x000010)

			_, err := mc.LoadImage(bytes.NewReader([]byte{0x00}), 0x000010)

			Expect(err).To(HaveOccurred())
		})
	})
})

func signed(v uint32) int32 {
	return int32(v<<8) >> 8
}
