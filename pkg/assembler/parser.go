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

// Parser consumes the token stream of one source buffer and builds the
// instruction list. Diagnostics go to the sink as they are found.
type Parser struct {
	lexer *Lexer
	tok   Token
	sink  Sink
}

func NewParser(src string, sink Sink) *Parser {
	return &Parser{lexer: NewLexer(src), sink: sink}
}

func (p *Parser) Source() string {
	return p.lexer.Source()
}

// CurrentToken returns the most recently lexed token.
func (p *Parser) CurrentToken() Token {
	return p.tok
}

// NextToken advances to and returns the next token.
func (p *Parser) NextToken() Token {
	p.tok = p.lexer.NextToken()
	return p.tok
}

// ParseInstructions parses the whole source into an instruction list.
// Parsing stops at the end of the source or just after a successfully
// parsed .END. On any error the result is a single sentinel unknown
// instruction; the diagnostics already sit in the sink.
func (p *Parser) ParseInstructions() []Instruction {
	instructions := []Instruction{}

	p.NextToken()

	for {
		switch p.tok.Kind {
		case TOKEN_EOL:
			p.NextToken()

		case TOKEN_END:
			return instructions

		default:
			instr := p.parseInstruction()
			if instr.IsUnknown() {
				return []Instruction{{}}
			}

			instructions = append(instructions, instr)

			if instr.Opcode == OPCODE_END {
				return instructions
			}
		}
	}
}

// parseInstruction parses one statement starting at the current token:
// an optional label, the opcode, and the operand list. A label may sit
// on a line of its own, so EOL tokens between label and opcode are
// skipped.
func (p *Parser) parseInstruction() Instruction {
	var instr Instruction

	if p.tok.Kind == TOKEN_LABEL {
		instr.Label = p.tok.Lexeme(p.Source())
		p.NextToken()
	}

	for p.tok.Kind == TOKEN_EOL {
		p.NextToken()
	}

	if p.tok.Kind != TOKEN_OPCODE && p.tok.Kind != TOKEN_PSEUDO {
		p.sink.Emit(&UnexpectedOpcodeError{
			Received: p.tok.Kind,
			Content:  p.tok.DisplayContent(p.Source()),
		})
		return Instruction{}
	}

	instr.setOpcode(p.tok.Lexeme(p.Source()))
	p.NextToken()

	return p.parseOperandList(instr)
}

// parseOperandList parses a comma-separated operand list. LC-3 has no
// marker for the start of the list and some instructions take no
// operands, so a first token of a non-operand kind simply means the list
// is empty. Everything after a comma must be an operand.
func (p *Parser) parseOperandList(instr Instruction) Instruction {
	switch err := instr.addOperand(p.Source(), p.tok); err {
	case OperandInvalidTokenKind:
		// Not the start of an operand list. The token stays current for
		// the caller's next iteration.
		return instr

	case OperandOK:

	default:
		p.sink.Emit(&OperandConstructionError{
			Err:     err,
			Content: p.tok.DisplayContent(p.Source()),
		})
		return Instruction{}
	}

	for p.NextToken().Kind == TOKEN_COMMA {
		tok := p.NextToken()

		if err := instr.addOperand(p.Source(), tok); err != OperandOK {
			p.sink.Emit(&OperandConstructionError{
				Err:     err,
				Content: tok.DisplayContent(p.Source()),
			})
			return Instruction{}
		}
	}

	// The trailing EOL stays current; the instruction loop consumes it.
	return instr
}
