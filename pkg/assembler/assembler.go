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

// Assembler turns a parsed instruction list into machine words. Run
// validates every instruction, assigns addresses, scans labels into the
// symbol table, and translates instruction by instruction.
type Assembler struct {
	instructions []Instruction
	symbols      map[string]uint16
	sink         Sink
}

func NewAssembler(instructions []Instruction, sink Sink) *Assembler {
	return &Assembler{
		instructions: instructions,
		symbols:      make(map[string]uint16),
		sink:         sink,
	}
}

func (a *Assembler) Instructions() []Instruction {
	return a.instructions
}

// StartAddress returns the origin of the program, the .ORIG operand.
// Valid only after Run.
func (a *Assembler) StartAddress() uint16 {
	return a.instructions[0].Address
}

// Lookup resolves a label in the symbol table.
func (a *Assembler) Lookup(label string) (uint16, bool) {
	address, ok := a.symbols[label]
	return address, ok
}

// Symbols returns the symbol table built during the label scan.
func (a *Assembler) Symbols() map[string]uint16 {
	return a.symbols
}

// Run assembles the program and returns the emitted word stream. Any
// validation, label or translation error aborts assembly with a nil
// result; the diagnostics sit in the sink.
func (a *Assembler) Run() []uint16 {
	for i := range a.instructions {
		if !a.instructions[i].Validate(a.sink) {
			return nil
		}
	}

	if len(a.instructions) == 0 {
		return nil
	}

	if a.instructions[0].Opcode != OPCODE_ORIG {
		a.sink.Emit(&MissingOrigError{Instr: &a.instructions[0]})
		return nil
	}

	for i := 1; i < len(a.instructions); i++ {
		if a.instructions[i].Opcode == OPCODE_ORIG {
			a.sink.Emit(&MultipleOrigError{Instr: &a.instructions[i]})
			return nil
		}
	}

	a.assignAddresses()

	if !a.scanLabels() {
		return nil
	}

	return a.translate()
}

// assignAddresses is the first pass: it walks the instruction list
// assigning each instruction its address, starting from the .ORIG
// operand. Every instruction advances the location counter by one word
// except .BLKW and .STRINGZ, which advance by the number of words they
// will emit. .ORIG itself also counts one word, so the instruction
// after it sits at origin+1 even though the word stream starts at the
// origin. Arithmetic is unsigned 16-bit and wraps.
func (a *Assembler) assignAddresses() {
	address := uint16(a.instructions[0].Operands[0].ImmediateValue())

	for i := range a.instructions {
		instr := &a.instructions[i]
		instr.Address = address

		switch instr.Opcode {
		case OPCODE_BLKW:
			address += uint16(instr.Operands[0].RegularDecimal())
		case OPCODE_STRINGZ:
			address += uint16(len(instr.Operands[0].StringLiteral()) + 1)
		default:
			address++
		}
	}
}

// scanLabels is pass 2a: it collects every labelled instruction into
// the symbol table. A label seen twice aborts the scan.
func (a *Assembler) scanLabels() bool {
	for i := range a.instructions {
		instr := &a.instructions[i]

		if !instr.HasLabel() {
			continue
		}

		if _, exists := a.symbols[instr.Label]; exists {
			a.sink.Emit(&RedeclaredLabelError{Instr: instr})
			return false
		}

		a.symbols[instr.Label] = instr.Address
	}

	return true
}

// translate is pass 2b: it encodes each instruction into its words.
// Pseudo-ops emit zero or more data words; real instructions emit
// exactly one.
func (a *Assembler) translate() []uint16 {
	var words []uint16

	for i := range a.instructions {
		instr := &a.instructions[i]

		switch instr.Opcode {
		case OPCODE_ORIG, OPCODE_END:
			// Directives only; no words.

		case OPCODE_FILL:
			words = append(words, uint16(instr.Operands[0].ImmediateValue()))

		case OPCODE_BLKW:
			if count := instr.Operands[0].RegularDecimal(); count > 0 {
				words = append(words, make([]uint16, count)...)
			}

		case OPCODE_STRINGZ:
			literal := instr.Operands[0].StringLiteral()
			for j := 0; j < len(literal); j++ {
				words = append(words, uint16(literal[j]))
			}
			words = append(words, 0)

		default:
			word, ok := a.translateInstruction(instr)
			if !ok {
				return nil
			}
			words = append(words, word)
		}
	}

	return words
}

// opcodeBits returns the 4-bit operation selector for bits 15..12.
func opcodeBits(op Opcode) uint16 {
	switch op {
	case OPCODE_ADD:
		return 0b0001
	case OPCODE_AND:
		return 0b0101
	case OPCODE_BR, OPCODE_BRn, OPCODE_BRz, OPCODE_BRp,
		OPCODE_BRzp, OPCODE_BRnp, OPCODE_BRnz, OPCODE_BRnzp:
		return 0b0000
	case OPCODE_JMP, OPCODE_RET:
		return 0b1100
	case OPCODE_JSR, OPCODE_JSRR:
		return 0b0100
	case OPCODE_LD:
		return 0b0010
	case OPCODE_LDI:
		return 0b1010
	case OPCODE_LDR:
		return 0b0110
	case OPCODE_LEA:
		return 0b1110
	case OPCODE_NOT:
		return 0b1001
	case OPCODE_RTI:
		return 0b1000
	case OPCODE_ST:
		return 0b0011
	case OPCODE_STI:
		return 0b1011
	case OPCODE_STR:
		return 0b0111
	case OPCODE_TRAP, OPCODE_GETC, OPCODE_OUT, OPCODE_PUTS,
		OPCODE_IN, OPCODE_PUTSP, OPCODE_HALT:
		return 0b1111
	default:
		return 0b1101
	}
}

// condMask returns the three-bit nzp selector of a branch opcode.
func condMask(op Opcode) uint16 {
	switch op {
	case OPCODE_BRn:
		return 0b100
	case OPCODE_BRz:
		return 0b010
	case OPCODE_BRp:
		return 0b001
	case OPCODE_BRzp:
		return 0b011
	case OPCODE_BRnp:
		return 0b101
	case OPCODE_BRnz:
		return 0b110
	default:
		// BR is BRnzp.
		return 0b111
	}
}

// registerBits places a register operand's id at the given bit position.
func registerBits(operand Operand, position uint) uint16 {
	return uint16(operand.RegisterID()) << position
}

// immediateBits truncates an immediate operand to its field width. The
// value was range-checked during validation, so truncation preserves the
// two's-complement encoding.
func immediateBits(operand Operand, bits uint) uint16 {
	return uint16(operand.ImmediateValue()) & (1<<bits - 1)
}

// pcOffsetBits resolves a label operand to the PC-relative offset
// (target - address - 1) and truncates it to the field width, checking
// that it fits as a signed value.
func (a *Assembler) pcOffsetBits(instr *Instruction, index int, bits uint) (uint16, bool) {
	operand := instr.Operands[index]

	target, ok := a.symbols[operand.Label()]
	if !ok {
		a.sink.Emit(&UnknownLabelError{Operand: operand, Instr: instr})
		return 0, false
	}

	offset := int16(target - instr.Address - 1)

	max := int16(1)<<(bits-1) - 1
	min := -(int16(1) << (bits - 1))

	if offset < min || offset > max {
		a.sink.Emit(&OversizedLabelError{
			Operand: operand,
			Instr:   instr,
			Offset:  offset,
		})
		return 0, false
	}

	return uint16(offset) & (1<<bits - 1), true
}

// branchTarget encodes the target field of BR* and JSR. A label operand
// is PC-relative; an immediate operand is written into the field
// directly. Every condition code is treated the same way.
func (a *Assembler) branchTarget(instr *Instruction, index int, bits uint) (uint16, bool) {
	if instr.Operands[index].Type() == OPERAND_LABEL {
		return a.pcOffsetBits(instr, index, bits)
	}
	return immediateBits(instr.Operands[index], bits), true
}

// translateInstruction encodes one real instruction into its 16-bit
// word per the LC-3 instruction formats.
func (a *Assembler) translateInstruction(instr *Instruction) (uint16, bool) {
	word := opcodeBits(instr.Opcode) << 12

	switch instr.Opcode {
	case OPCODE_ADD, OPCODE_AND:
		word |= registerBits(instr.Operands[0], 9)
		word |= registerBits(instr.Operands[1], 6)
		if instr.Operands[2].Type() == OPERAND_IMMEDIATE {
			word |= 1 << 5
			word |= immediateBits(instr.Operands[2], 5)
		} else {
			word |= registerBits(instr.Operands[2], 0)
		}

	case OPCODE_BR, OPCODE_BRn, OPCODE_BRz, OPCODE_BRp,
		OPCODE_BRzp, OPCODE_BRnp, OPCODE_BRnz, OPCODE_BRnzp:
		word |= condMask(instr.Opcode) << 9
		target, ok := a.branchTarget(instr, 0, 9)
		if !ok {
			return 0, false
		}
		word |= target

	case OPCODE_JMP, OPCODE_JSRR:
		word |= registerBits(instr.Operands[0], 6)

	case OPCODE_JSR:
		word |= 1 << 11
		target, ok := a.branchTarget(instr, 0, 11)
		if !ok {
			return 0, false
		}
		word |= target

	case OPCODE_LD, OPCODE_LDI, OPCODE_LEA, OPCODE_ST, OPCODE_STI:
		word |= registerBits(instr.Operands[0], 9)
		offset, ok := a.pcOffsetBits(instr, 1, 9)
		if !ok {
			return 0, false
		}
		word |= offset

	case OPCODE_LDR, OPCODE_STR:
		word |= registerBits(instr.Operands[0], 9)
		word |= registerBits(instr.Operands[1], 6)
		word |= immediateBits(instr.Operands[2], 6)

	case OPCODE_NOT:
		word |= registerBits(instr.Operands[0], 9)
		word |= registerBits(instr.Operands[1], 6)
		word |= 0b111111

	case OPCODE_RET:
		word |= 0b111 << 6

	case OPCODE_RTI:
		// Bits 11..0 are zero.

	case OPCODE_TRAP:
		word |= immediateBits(instr.Operands[0], 8)

	case OPCODE_GETC:
		word |= 0x20
	case OPCODE_OUT:
		word |= 0x21
	case OPCODE_PUTS:
		word |= 0x22
	case OPCODE_IN:
		word |= 0x23
	case OPCODE_PUTSP:
		word |= 0x24
	case OPCODE_HALT:
		word |= 0x25
	}

	return word, true
}
