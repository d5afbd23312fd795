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

import "math"

// allowsLabel reports whether a label may be attached. Only .ORIG and
// .END forbid one.
func (in *Instruction) allowsLabel() bool {
	return in.Opcode != OPCODE_ORIG && in.Opcode != OPCODE_END
}

// expectedOperandTypes returns the operand type tuples the opcode
// accepts. Every tuple of one opcode has the same length.
func (in *Instruction) expectedOperandTypes() [][]OperandType {
	switch in.Opcode {
	case OPCODE_ADD, OPCODE_AND:
		return [][]OperandType{
			{OPERAND_REGISTER, OPERAND_REGISTER, OPERAND_REGISTER},
			{OPERAND_REGISTER, OPERAND_REGISTER, OPERAND_IMMEDIATE},
		}

	case OPCODE_BR, OPCODE_BRn, OPCODE_BRz, OPCODE_BRp,
		OPCODE_BRzp, OPCODE_BRnp, OPCODE_BRnz, OPCODE_BRnzp,
		OPCODE_JSR:
		return [][]OperandType{
			{OPERAND_LABEL},
			{OPERAND_IMMEDIATE},
		}

	case OPCODE_JMP, OPCODE_JSRR:
		return [][]OperandType{{OPERAND_REGISTER}}

	case OPCODE_LD, OPCODE_LDI, OPCODE_LEA, OPCODE_ST, OPCODE_STI:
		return [][]OperandType{{OPERAND_REGISTER, OPERAND_LABEL}}

	case OPCODE_LDR, OPCODE_STR:
		return [][]OperandType{
			{OPERAND_REGISTER, OPERAND_REGISTER, OPERAND_IMMEDIATE},
		}

	case OPCODE_NOT:
		return [][]OperandType{{OPERAND_REGISTER, OPERAND_REGISTER}}

	case OPCODE_TRAP, OPCODE_ORIG, OPCODE_FILL:
		return [][]OperandType{{OPERAND_IMMEDIATE}}

	case OPCODE_BLKW:
		return [][]OperandType{{OPERAND_NUMBER}}

	case OPCODE_STRINGZ:
		return [][]OperandType{{OPERAND_STRING}}

	default:
		// RET, RTI, the named traps, and .END take no operands.
		return [][]OperandType{{}}
	}
}

// immediateRange returns the inclusive bound on the opcode's immediate
// operand, where it has one.
func (in *Instruction) immediateRange() (int16, int16) {
	switch in.Opcode {
	case OPCODE_ADD, OPCODE_AND:
		// imm5
		return -16, 15

	case OPCODE_BR, OPCODE_BRn, OPCODE_BRz, OPCODE_BRp,
		OPCODE_BRzp, OPCODE_BRnp, OPCODE_BRnz, OPCODE_BRnzp,
		OPCODE_LD, OPCODE_LDI, OPCODE_LEA, OPCODE_ST, OPCODE_STI:
		// PCoffset9
		return -256, 255

	case OPCODE_JSR:
		// PCoffset11
		return -1024, 1023

	case OPCODE_LDR, OPCODE_STR:
		// offset6
		return -32, 31

	case OPCODE_TRAP:
		// trapvect8
		return 0, 255

	case OPCODE_ORIG, OPCODE_FILL, OPCODE_BLKW:
		return math.MinInt16, math.MaxInt16

	default:
		return 0, 0
	}
}

// Validate checks the instruction's label permission, operand count,
// operand types and immediate range, in that order, emitting one
// diagnostic and returning false at the first violation.
func (in *Instruction) Validate(sink Sink) bool {
	if !in.allowsLabel() && in.HasLabel() {
		sink.Emit(&LabelNotAllowedError{Instr: in})
		return false
	}

	expected := in.expectedOperandTypes()

	required := len(expected[0])
	if len(in.Operands) != required {
		sink.Emit(&InvalidNumArgumentsError{
			Instr:    in,
			Required: required,
			Received: len(in.Operands),
		})
		return false
	}

	// Try each accepted tuple, accepting the first full match. On
	// failure, report the mismatch against the last tuple tried.
	mismatchIndex := 0
	var mismatchType OperandType

	for _, tuple := range expected {
		mismatchIndex = len(in.Operands)
		for i, operand := range in.Operands {
			if operand.Type() != tuple[i] {
				mismatchIndex = i
				mismatchType = tuple[i]
				break
			}
		}
		if mismatchIndex == len(in.Operands) {
			break
		}
	}

	if mismatchIndex != len(in.Operands) {
		sink.Emit(&InvalidOperandError{
			Instr:    in,
			Index:    mismatchIndex,
			Required: mismatchType,
			Received: in.Operands[mismatchIndex].Type(),
		})
		return false
	}

	// Range-check the first immediate or number operand, if any.
	for _, operand := range in.Operands {
		if operand.Type() != OPERAND_IMMEDIATE && operand.Type() != OPERAND_NUMBER {
			continue
		}

		value := operand.ImmediateValue()
		min, max := in.immediateRange()

		if value < min || value > max {
			sink.Emit(&OversizedLiteralError{
				Instr:   in,
				Operand: operand,
				Min:     min,
				Max:     max,
			})
			return false
		}
		break
	}

	return true
}
