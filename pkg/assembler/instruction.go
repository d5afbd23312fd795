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

package assembler

import "strings"

type Opcode uint8

const (
	// Sentinel for a failed parse.
	OPCODE_UNKNOWN Opcode = iota

	OPCODE_ADD
	OPCODE_AND
	OPCODE_BR
	OPCODE_BRn
	OPCODE_BRz
	OPCODE_BRp
	OPCODE_BRzp
	OPCODE_BRnp
	OPCODE_BRnz
	OPCODE_BRnzp
	OPCODE_JMP
	OPCODE_JSR
	OPCODE_JSRR
	OPCODE_LD
	OPCODE_LDI
	OPCODE_LDR
	OPCODE_LEA
	OPCODE_NOT
	OPCODE_RET
	OPCODE_RTI
	OPCODE_ST
	OPCODE_STI
	OPCODE_STR
	OPCODE_TRAP

	// Named trap routines.
	OPCODE_GETC
	OPCODE_OUT
	OPCODE_PUTS
	OPCODE_IN
	OPCODE_PUTSP
	OPCODE_HALT

	// Pseudo-ops.
	OPCODE_ORIG
	OPCODE_FILL
	OPCODE_BLKW
	OPCODE_STRINGZ
	OPCODE_END
)

var opcodeSpellings = map[Opcode]string{
	OPCODE_ADD:     "ADD",
	OPCODE_AND:     "AND",
	OPCODE_BR:      "BR",
	OPCODE_BRn:     "BRn",
	OPCODE_BRz:     "BRz",
	OPCODE_BRp:     "BRp",
	OPCODE_BRzp:    "BRzp",
	OPCODE_BRnp:    "BRnp",
	OPCODE_BRnz:    "BRnz",
	OPCODE_BRnzp:   "BRnzp",
	OPCODE_JMP:     "JMP",
	OPCODE_JSR:     "JSR",
	OPCODE_JSRR:    "JSRR",
	OPCODE_LD:      "LD",
	OPCODE_LDI:     "LDI",
	OPCODE_LDR:     "LDR",
	OPCODE_LEA:     "LEA",
	OPCODE_NOT:     "NOT",
	OPCODE_RET:     "RET",
	OPCODE_RTI:     "RTI",
	OPCODE_ST:      "ST",
	OPCODE_STI:     "STI",
	OPCODE_STR:     "STR",
	OPCODE_TRAP:    "TRAP",
	OPCODE_GETC:    "GETC",
	OPCODE_OUT:     "OUT",
	OPCODE_PUTS:    "PUTS",
	OPCODE_IN:      "IN",
	OPCODE_PUTSP:   "PUTSP",
	OPCODE_HALT:    "HALT",
	OPCODE_ORIG:    ".ORIG",
	OPCODE_FILL:    ".FILL",
	OPCODE_BLKW:    ".BLKW",
	OPCODE_STRINGZ: ".STRINGZ",
	OPCODE_END:     ".END",
}

// opcodesBySpelling maps the case-sensitive source spelling, including
// the leading dot of pseudo-ops, back to the opcode. The lexer uses it
// to classify identifier runs.
var opcodesBySpelling = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeSpellings))
	for opcode, spelling := range opcodeSpellings {
		m[spelling] = opcode
	}
	return m
}()

func (op Opcode) String() string {
	if spelling, ok := opcodeSpellings[op]; ok {
		return spelling
	}
	return "UnknownOp"
}

// Instruction is one parsed source statement: an optional label, an
// opcode, its operands, and the address assigned during the assembler's
// first pass.
type Instruction struct {
	Label    string
	Opcode   Opcode
	Operands []Operand
	Address  uint16
}

// IsUnknown reports whether this is the sentinel instruction the parser
// returns after an unrecoverable error.
func (in *Instruction) IsUnknown() bool {
	return in.Opcode == OPCODE_UNKNOWN
}

func (in *Instruction) HasLabel() bool {
	return in.Label != ""
}

func (in *Instruction) setOpcode(spelling string) {
	in.Opcode = opcodesBySpelling[spelling]
}

// addOperand constructs an operand from tok and appends it.
func (in *Instruction) addOperand(src string, tok Token) OperandError {
	operand, err := OperandFromToken(src, tok)
	if err != OperandOK {
		return err
	}

	in.Operands = append(in.Operands, operand)
	return OperandOK
}

// String renders the instruction in source form: the optional label, the
// opcode spelling, and the comma-separated operand list.
func (in *Instruction) String() string {
	var sb strings.Builder

	if in.HasLabel() {
		sb.WriteString(in.Label)
		sb.WriteByte(' ')
	}

	sb.WriteString(in.Opcode.String())

	for i, operand := range in.Operands {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(operand.String())
	}

	return sb.String()
}
