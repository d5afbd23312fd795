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

package assembler_test

import (
	"reflect"
	"testing"

	"github.com/ivanW2353/ICS-2024-laba/pkg/assembler"
)

type assembleCase struct {
	Name    string
	Input   string
	Start   uint16
	Words   []uint16
	Symbols map[string]uint16
}

type assembleFailCase struct {
	Name  string
	Input string
	Err   error
}

// assemble runs the full pipeline over input. A parse failure returns a
// nil assembler, mirroring the front-end's early exit on the sentinel
// instruction.
func assemble(input string) ([]uint16, *assembler.Assembler, *assembler.DiagnosticList) {
	diags := &assembler.DiagnosticList{}

	parser := assembler.NewParser(input, diags)
	instructions := parser.ParseInstructions()

	if len(instructions) == 1 && instructions[0].IsUnknown() {
		return nil, nil, diags
	}

	asm := assembler.NewAssembler(instructions, diags)
	return asm.Run(), asm, diags
}

func testAssembleSuccess(t *testing.T, test *assembleCase) {
	words, asm, diags := assemble(test.Input)

	if !diags.Empty() {
		t.Fatal(diags.Diagnostics()[0])
	}

	if !reflect.DeepEqual(words, test.Words) {
		t.Fatalf(
			"Word stream mismatch\nwant:%04X\nhave:%04X",
			test.Words,
			words,
		)
	}

	if have := asm.StartAddress(); have != test.Start {
		t.Fatalf(
			"Start address mismatch\nwant:%#04x\nhave:%#04x",
			test.Start,
			have,
		)
	}

	for label, want := range test.Symbols {
		have, ok := asm.Lookup(label)

		if !ok {
			t.Fatalf("Missing symbol\nwant:%s -> %#04x\nhave:nil", label, want)
		}

		if have != want {
			t.Fatalf(
				"Symbol address mismatch for %s\nwant:%#04x\nhave:%#04x",
				label,
				want,
				have,
			)
		}
	}
}

func testAssembleFail(t *testing.T, test *assembleFailCase) {
	words, _, diags := assemble(test.Input)

	if len(words) != 0 {
		t.Fatalf("Expected an empty word stream\nhave:%04X", words)
	}

	if diags.Empty() {
		t.Fatalf("Assembly emitted no diagnostic\nwant:%T", test.Err)
	}

	have := diags.Diagnostics()[0]
	if reflect.TypeOf(have) != reflect.TypeOf(test.Err) {
		t.Fatalf(
			"Diagnostic type mismatch\nwant:%T\nhave:%T (%v)",
			test.Err,
			have,
			have,
		)
	}
}

func TestAssembleInstructions(t *testing.T) {
	tests := []assembleCase{
		{
			Name:  "AddRegisterForm",
			Input: ".ORIG x3000\nADD R1, R2, R3\n.END\n",
			Start: 0x3000,
			Words: []uint16{0x1283},
		},
		{
			Name:  "BackwardBranch",
			Input: ".ORIG x3000\nLOOP ADD R1, R1, #-1\nBRp LOOP\n.END\n",
			Start: 0x3000,
			// The word stream starts at the origin, but the first real
			// instruction is assigned origin+1 because .ORIG itself
			// advances the location counter. LOOP is x3001 and BRp sits
			// at x3002, so the offset is -2.
			Words:   []uint16{0x127F, 0x03FE},
			Symbols: map[string]uint16{"LOOP": 0x3001},
		},
		{
			Name:  "ForwardReference",
			Input: ".ORIG x3000\nLD R2, DATA\nHALT\nDATA .FILL xBEEF\n.END\n",
			Start: 0x3000,
			Words: []uint16{0x2401, 0xF025, 0xBEEF},
			Symbols: map[string]uint16{
				"DATA": 0x3003,
			},
		},
		{
			Name:  "Subroutine",
			Input: ".ORIG x3000\nJSR SUB\nSUB ADD R0, R0, #0\n.END\n",
			Start: 0x3000,
			Words: []uint16{0x4800, 0x1020},
			Symbols: map[string]uint16{
				"SUB": 0x3002,
			},
		},
		{
			Name:  "BranchWithImmediateOperand",
			Input: ".ORIG x3000\nBR #5\n.END\n",
			Start: 0x3000,
			// An immediate branch target is written into the offset
			// field directly, for every condition code alike.
			Words: []uint16{0x0E05},
		},
		{
			Name:  "RegisterControlFlow",
			Input: ".ORIG x3000\nJMP R2\nJSRR R3\nRET\nRTI\n.END\n",
			Start: 0x3000,
			Words: []uint16{0xC080, 0x40C0, 0xC1C0, 0x8000},
		},
		{
			Name:  "BaseOffsetLoadsAndStores",
			Input: ".ORIG x3000\nLDR R4, R2, #-5\nSTR R1, R5, #7\n.END\n",
			Start: 0x3000,
			Words: []uint16{0x68BB, 0x7347},
		},
		{
			Name:  "Complement",
			Input: ".ORIG x3000\nNOT R3, R4\n.END\n",
			Start: 0x3000,
			Words: []uint16{0x973F},
		},
		{
			Name:  "TrapsNamedAndNumbered",
			Input: ".ORIG x3000\nGETC\nOUT\nPUTS\nIN\nPUTSP\nHALT\nTRAP x21\n.END\n",
			Start: 0x3000,
			Words: []uint16{
				0xF020, 0xF021, 0xF022, 0xF023, 0xF024, 0xF025, 0xF021,
			},
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.Name, func(t *testing.T) {
			testAssembleSuccess(t, test)
		})
	}
}

func TestAssemblePseudoOps(t *testing.T) {
	tests := []assembleCase{
		{
			Name:  "Stringz",
			Input: ".ORIG x3000\nHELLO .STRINGZ \"Hi\"\n.END\n",
			Start: 0x3000,
			Words: []uint16{0x48, 0x69, 0x0000},
			Symbols: map[string]uint16{
				"HELLO": 0x3001,
			},
		},
		{
			Name:  "EmptyStringz",
			Input: ".ORIG x3000\n.STRINGZ \"\"\n.END\n",
			Start: 0x3000,
			Words: []uint16{0x0000},
		},
		{
			Name:  "FillNegative",
			Input: ".ORIG x3000\n.FILL #-1\n.FILL x7FFF\n.END\n",
			Start: 0x3000,
			Words: []uint16{0xFFFF, 0x7FFF},
		},
		{
			// .BLKW advances the location counter by its count; the
			// label after the block lands past the reserved words.
			Name:  "BlockReservation",
			Input: ".ORIG x3000\nA .FILL #1\n.BLKW 3\nB .FILL #2\nLEA R0, B\n.END\n",
			Start: 0x3000,
			Words: []uint16{1, 0, 0, 0, 2, 0xE1FE},
			Symbols: map[string]uint16{
				"A": 0x3001,
				"B": 0x3005,
			},
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.Name, func(t *testing.T) {
			testAssembleSuccess(t, test)
		})
	}
}

func TestAssembleFail(t *testing.T) {
	tests := []assembleFailCase{
		{
			Name:  "ImmediateOutOfRange",
			Input: ".ORIG x3000\nADD R1, R2, #16\n.END\n",
			Err:   &assembler.OversizedLiteralError{},
		},
		{
			Name:  "RedefinedLabel",
			Input: ".ORIG x3000\nFOO .FILL x1\nFOO .FILL x2\n.END\n",
			Err:   &assembler.RedeclaredLabelError{},
		},
		{
			Name:  "MissingOrig",
			Input: "ADD R1, R2, R3\n.END\n",
			Err:   &assembler.MissingOrigError{},
		},
		{
			Name:  "DuplicateOrig",
			Input: ".ORIG x3000\n.ORIG x4000\n.END\n",
			Err:   &assembler.MultipleOrigError{},
		},
		{
			Name:  "UnknownLabel",
			Input: ".ORIG x3000\nBRnzp NOWHERE\n.END\n",
			Err:   &assembler.UnknownLabelError{},
		},
		{
			Name:  "OffsetOutOfRange",
			Input: ".ORIG x3000\nLD R0, FAR\n.BLKW 300\nFAR .FILL #0\n.END\n",
			Err:   &assembler.OversizedLabelError{},
		},
		{
			Name:  "JSROffsetOutOfRange",
			Input: ".ORIG x3000\nJSR FAR\n.BLKW 2000\nFAR .FILL #0\n.END\n",
			Err:   &assembler.OversizedLabelError{},
		},
		{
			Name:  "LabelOnOrig",
			Input: "START .ORIG x3000\n.END\n",
			Err:   &assembler.LabelNotAllowedError{},
		},
		{
			Name:  "ArityMismatch",
			Input: ".ORIG x3000\nADD R1, R2\n.END\n",
			Err:   &assembler.InvalidNumArgumentsError{},
		},
		{
			Name:  "TypeMismatch",
			Input: ".ORIG x3000\nLD DATA, R0\nDATA .FILL #0\n.END\n",
			Err:   &assembler.InvalidOperandError{},
		},
	}

	for i := range tests {
		test := &tests[i]
		t.Run(test.Name, func(t *testing.T) {
			testAssembleFail(t, test)
		})
	}
}

// The word stream starts at the origin, while pass-1 addresses count
// .ORIG as one word, so each label sits at the origin plus its first
// word's index plus one, whatever mix of instructions and data
// directives precedes it.
func TestAssembleAddressing(t *testing.T) {
	input := ".ORIG x3000\n" +
		"LEA R0, MSG\n" +
		"PUTS\n" +
		"HALT\n" +
		"MSG .STRINGZ \"ok\"\n" +
		"COUNT .FILL #0\n" +
		".END\n"

	words, asm, diags := assemble(input)

	if !diags.Empty() {
		t.Fatal(diags.Diagnostics()[0])
	}

	// LEA@x3001, PUTS@x3002, HALT@x3003, MSG@x3004 ("o" "k" NUL),
	// COUNT@x3007.
	if want, have := uint16(0x3004), mustLookup(t, asm, "MSG"); want != have {
		t.Fatalf("MSG address\nwant:%#04x\nhave:%#04x", want, have)
	}

	if want, have := uint16(0x3007), mustLookup(t, asm, "COUNT"); want != have {
		t.Fatalf("COUNT address\nwant:%#04x\nhave:%#04x", want, have)
	}

	want := []uint16{
		0xE002,        // LEA R0, MSG: offset = x3004 - x3001 - 1 = 2
		0xF022,        // PUTS
		0xF025,        // HALT
		0x6F, 0x6B, 0, // "ok" and the terminator
		0, // COUNT
	}

	if !reflect.DeepEqual(words, want) {
		t.Fatalf("Word stream mismatch\nwant:%04X\nhave:%04X", want, words)
	}

	if asm.StartAddress() != 0x3000 {
		t.Fatalf("Start address\nwant:0x3000\nhave:%#04x", asm.StartAddress())
	}
}

func mustLookup(t *testing.T, asm *assembler.Assembler, label string) uint16 {
	t.Helper()

	address, ok := asm.Lookup(label)
	if !ok {
		t.Fatalf("Label %s not in symbol table", label)
	}

	return address
}

// Assembly stops at the first failing instruction, so a program with one
// out-of-range immediate leaves exactly one diagnostic in the sink.
func TestSingleDiagnosticOnValidationFailure(t *testing.T) {
	input := ".ORIG x3000\n" +
		"ADD R1, R2, #16\n" + // validation error, reported first
		".END\n"

	_, _, diags := assemble(input)

	if len(diags.Diagnostics()) != 1 {
		t.Fatalf(
			"Expected a single diagnostic, have %d: %v",
			len(diags.Diagnostics()),
			diags.Diagnostics(),
		)
	}
}
