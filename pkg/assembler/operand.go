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

import (
	"fmt"

	"github.com/ivanW2353/ICS-2024-laba/pkg/encoding"
)

type OperandType uint8

const (
	OPERAND_REGISTER OperandType = iota
	OPERAND_IMMEDIATE
	OPERAND_NUMBER
	OPERAND_LABEL
	OPERAND_STRING
)

func (t OperandType) String() string {
	switch t {
	case OPERAND_REGISTER:
		return "Register"
	case OPERAND_IMMEDIATE:
		return "Immediate"
	case OPERAND_NUMBER:
		return "Number"
	case OPERAND_LABEL:
		return "Label"
	case OPERAND_STRING:
		return "StringLiteral"
	default:
		return "UnknownOperandType"
	}
}

// Operand is a typed instruction operand. Only the payload matching the
// type is meaningful; the constructors below are the only way to build
// one.
type Operand struct {
	typ      OperandType
	register uint8
	value    int16
	text     string
}

func RegisterOperand(id uint8) Operand {
	return Operand{typ: OPERAND_REGISTER, register: id}
}

func ImmediateOperand(value int16) Operand {
	return Operand{typ: OPERAND_IMMEDIATE, value: value}
}

func NumberOperand(value int16) Operand {
	return Operand{typ: OPERAND_NUMBER, value: value}
}

func LabelOperand(name string) Operand {
	return Operand{typ: OPERAND_LABEL, text: name}
}

func StringOperand(content string) Operand {
	return Operand{typ: OPERAND_STRING, text: content}
}

func (o Operand) Type() OperandType {
	return o.typ
}

// RegisterID returns the register number for a Register operand.
func (o Operand) RegisterID() uint8 {
	return o.register
}

// ImmediateValue returns the value of an Immediate operand.
func (o Operand) ImmediateValue() int16 {
	return o.value
}

// RegularDecimal returns the value of a bare Number operand, the .BLKW
// word count.
func (o Operand) RegularDecimal() int16 {
	return o.value
}

// Label returns the label text of a Label operand.
func (o Operand) Label() string {
	return o.text
}

// StringLiteral returns the content of a StringLiteral operand, without
// the surrounding quotes.
func (o Operand) StringLiteral() string {
	return o.text
}

func (o Operand) String() string {
	switch o.typ {
	case OPERAND_REGISTER:
		return fmt.Sprintf("R%d", o.register)
	case OPERAND_IMMEDIATE:
		// Immediates always display in decimal, whatever base they were
		// written in.
		return fmt.Sprintf("#%d", o.value)
	case OPERAND_NUMBER:
		return fmt.Sprintf("%d", o.value)
	case OPERAND_LABEL:
		return o.text
	case OPERAND_STRING:
		return fmt.Sprintf("%q", o.text)
	default:
		return "UnknownOperand"
	}
}

// OperandError classifies the ways operand construction can fail.
type OperandError uint8

const (
	OperandOK OperandError = iota
	// The token kind can never be an operand (EOL, comma, ...).
	OperandInvalidTokenKind
	// The token looks numeric but is not a number, such as a bare prefix
	// ('#', 'x', 'b'), a bare sign, or a prefix followed only by a sign.
	OperandInvalidNumber
	// The numeric value falls outside [-32768, 65535].
	OperandIntegerOverflow
	// The string literal has no closing quote on its line.
	OperandMissingQuote
)

func (e OperandError) String() string {
	switch e {
	case OperandOK:
		return "NoError"
	case OperandInvalidTokenKind:
		return "InvalidTokenKind"
	case OperandInvalidNumber:
		return "InvalidNumber"
	case OperandIntegerOverflow:
		return "IntegerOverflow"
	case OperandMissingQuote:
		return "MissingQuote"
	default:
		return "Unknown"
	}
}

// isValidNumber reports whether a lexically numeric token spells an
// actual number. The lexer guarantees the character classes; what is
// left to reject is a lone prefix, a lone sign, and a prefix followed
// only by a sign.
func isValidNumber(content string) bool {
	switch content[0] {
	case '#', 'x', 'b':
		if len(content) == 1 {
			return false
		}
		if len(content) == 2 {
			return content[1] != '+' && content[1] != '-'
		}
		return true

	case '+', '-':
		return len(content) > 1

	default:
		return true
	}
}

// OperandFromToken builds an Operand from a token, classifying failures
// into OperandError kinds. Register and Label tokens always succeed.
func OperandFromToken(src string, tok Token) (Operand, OperandError) {
	switch tok.Kind {
	case TOKEN_REGISTER:
		// Register tokens are exactly 'R' followed by the digit.
		return RegisterOperand(src[tok.Begin+1] - '0'), OperandOK

	case TOKEN_LABEL:
		return LabelOperand(tok.Lexeme(src)), OperandOK

	case TOKEN_IMMEDIATE, TOKEN_NUMBER:
		content := tok.Lexeme(src)

		if !isValidNumber(content) {
			return Operand{}, OperandInvalidNumber
		}

		value, ok := encoding.DecodeInteger(content)
		if !ok {
			return Operand{}, OperandIntegerOverflow
		}

		if tok.Kind == TOKEN_IMMEDIATE {
			return ImmediateOperand(value), OperandOK
		}
		return NumberOperand(value), OperandOK

	case TOKEN_STRING:
		// The token includes the opening quote; a closed literal is at
		// least two characters and ends in '"'.
		if tok.Size() > 1 && src[tok.End-1] == '"' {
			return StringOperand(src[tok.Begin+1 : tok.End-1]), OperandOK
		}
		return Operand{}, OperandMissingQuote

	default:
		return Operand{}, OperandInvalidTokenKind
	}
}
