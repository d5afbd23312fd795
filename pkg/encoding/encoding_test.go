// Copyright (C) 2024  ivanW2353

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

package encoding_test

import (
	"testing"

	"github.com/ivanW2353/ICS-2024-laba/pkg/encoding"
)

func TestDecodeInteger(t *testing.T) {
	tests := []struct {
		Name  string
		Input string
		Value int16
		OK    bool
	}{
		{"BareDecimal", "12", 12, true},
		{"PrefixedDecimal", "#12", 12, true},
		{"ExplicitPlus", "+12", 12, true},
		{"ExplicitMinus", "-12", -12, true},
		{"PrefixedPlus", "#+12", 12, true},
		{"PrefixedMinus", "#-12", -12, true},
		{"Hex", "x12", 18, true},
		{"HexMixedCase", "xAb", 171, true},
		{"Binary", "b101", 5, true},
		{"Int16Max", "#32767", 32767, true},
		{"Int16Min", "#-32768", -32768, true},
		{"Uint16MaxWraps", "#65535", -1, true},
		{"HexWraps", "xFFFF", -1, true},
		{"BinaryWraps", "b1111111111111111", -1, true},
		{"AboveWindow", "65536", 0, false},
		{"BelowWindow", "-32769", 0, false},
		{"HexAboveWindow", "x10000", 0, false},
		{"AbsurdlyLong", "99999999999999999999", 0, false},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			value, ok := encoding.DecodeInteger(test.Input)

			if ok != test.OK {
				t.Fatalf("Decode status mismatch\nwant:%v\nhave:%v", test.OK, ok)
			}

			if ok && value != test.Value {
				t.Fatalf("Decode value mismatch\nwant:%d\nhave:%d", test.Value, value)
			}
		})
	}
}

func TestSignExtend(t *testing.T) {
	tests := []struct {
		Name     string
		Value    uint16
		Bitcount uint16
		Want     uint16
	}{
		{"PositiveFiveBit", 0x000F, 5, 0x000F},
		{"NegativeFiveBit", 0x001F, 5, 0xFFFF},
		{"NegativeNineBit", 0x01FE, 9, 0xFFFE},
		{"PositiveNineBit", 0x00FF, 9, 0x00FF},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			if have := encoding.SignExtend(test.Value, test.Bitcount); have != test.Want {
				t.Fatalf(
					"Sign extension mismatch\nwant:%#04x\nhave:%#04x",
					test.Want,
					have,
				)
			}
		})
	}
}
