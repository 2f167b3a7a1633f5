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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

const Mask24 uint32 = 0xFFFFFF

func DecodeHex(s string) (uint32, error) {
	s = strings.TrimPrefix(s, "$")

	if i := strings.IndexAny(s, "xX"); i == 0 {
		s = "0" + s
	} else if i == -1 {
		s = "0x" + s
	} else if i != 1 {
		return 0, errors.New("Invalid hex string")
	}

	result, err := strconv.ParseUint(s, 0, 24)

	if err != nil {
		return 0, err
	}

	return uint32(result), nil
}

// Uint24 decodes a little-endian 24-bit value from the first three bytes of b.
func Uint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16
}

// PutUint24 stores the low 24 bits of value into b, least significant byte
// first.
func PutUint24(b []byte, value uint32) {
	_ = b[2]
	b[0] = byte(value)
	b[1] = byte(value >> 8)
	b[2] = byte(value >> 16)
}

func SignExtend(value uint32, bitcount uint32) int32 {
	value &= (1 << bitcount) - 1

	if (value>>(bitcount-1))&0x1 == 1 {
		value |= ^uint32(0) << bitcount
	}

	return int32(value)
}
