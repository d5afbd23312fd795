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

package main

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/ivanW2353/ICS-2024-laba/pkg/assembler"
)

var (
	outvar     string
	tokensvar  bool
	instrsvar  bool
	debugvar   bool
	binaryvar  bool
	symbolsvar string
)

var errFailed = errors.New("assembly failed")

var rootCmd = &cobra.Command{
	Use:   "lc3as [flags] <input.asm>",
	Short: "LC-3 assembler",
	Long: `lc3as assembles LC-3 assembly source into 16-bit machine words.

By default it writes one line per emitted word in the form
"(<ADDR>) <16-bit binary>", with the address column starting at the
.ORIG operand. The -t and -I flags stop after lexing or parsing and
dump the intermediate form instead.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)
}

func init() {
	rootCmd.Flags().StringVarP(
		&outvar, "output", "o", "",
		"write output here instead of standard output",
	)
	rootCmd.Flags().BoolVarP(
		&tokensvar, "tokens", "t", false,
		"dump every token produced by the lexer, then exit",
	)
	rootCmd.Flags().BoolVarP(
		&instrsvar, "instructions", "I", false,
		"dump every parsed instruction, then exit",
	)
	rootCmd.Flags().BoolVarP(
		&debugvar, "debug", "d", false,
		"pretty-print the parsed instruction list, then exit",
	)
	rootCmd.Flags().BoolVarP(
		&binaryvar, "binary", "b", false,
		"write raw big-endian machine words instead of the text listing",
	)
	rootCmd.Flags().StringVarP(
		&symbolsvar, "symbols", "s", "",
		"after assembling, write the gob-encoded symbol table here",
	)
}

func openOutput() (io.Writer, func() error, error) {
	if outvar == "" {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := os.Create(outvar)
	if err != nil {
		return nil, nil, err
	}

	return file, file.Close, nil
}

func dumpTokens(out io.Writer, source string) {
	lexer := assembler.NewLexer(source)

	for {
		tok := lexer.NextToken()
		fmt.Fprintf(out, "%s '%s'\n", tok.Kind, tok.DisplayContent(source))

		if tok.Kind == assembler.TOKEN_END {
			return
		}
	}
}

func flushDiagnostics(diags *assembler.DiagnosticList) {
	for _, diag := range diags.Diagnostics() {
		log.Printf("error: %s", diag)
	}
}

func run(input string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		log.Println(err)
		return errFailed
	}

	log.SetPrefix(fmt.Sprintf("\033[1m%s:\033[0m", filepath.Base(input)))

	source := string(data)

	out, closeOut, err := openOutput()
	if err != nil {
		log.Println(err)
		return errFailed
	}
	defer closeOut()

	buffered := bufio.NewWriter(out)
	defer buffered.Flush()

	if tokensvar {
		dumpTokens(buffered, source)
		return nil
	}

	diags := &assembler.DiagnosticList{}

	parser := assembler.NewParser(source, diags)
	instructions := parser.ParseInstructions()

	if len(instructions) == 1 && instructions[0].IsUnknown() {
		flushDiagnostics(diags)
		return errFailed
	}

	if instrsvar {
		for i := range instructions {
			fmt.Fprintln(buffered, instructions[i].String())
		}
		return nil
	}

	if debugvar {
		pp.Fprintln(buffered, instructions)
		return nil
	}

	asm := assembler.NewAssembler(instructions, diags)
	words := asm.Run()

	flushDiagnostics(diags)

	if len(words) == 0 {
		return errFailed
	}

	if binaryvar {
		if err := binary.Write(buffered, binary.BigEndian, words); err != nil {
			log.Println(err)
			return errFailed
		}
	} else {
		start := asm.StartAddress()
		for i, word := range words {
			fmt.Fprintf(buffered, "(%X) %016b\n", start+uint16(i), word)
		}
	}

	if symbolsvar != "" {
		if err := writeSymbols(symbolsvar, asm.Symbols()); err != nil {
			log.Println(err)
			return errFailed
		}
	}

	return nil
}

func writeSymbols(path string, symbols map[string]uint16) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(symbols)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			log.Println(err)
		}
		os.Exit(1)
	}
}
