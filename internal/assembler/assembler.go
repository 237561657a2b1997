// Package assembler assembles CHIP-8 assembly source into program bytes.
//
// The accepted syntax is the one written by the disasm package: one statement
// per line, optional labels terminated by a colon, comments starting with a
// semicolon, numbers as $hex, 0xhex or decimal and the directives .org,
// .byte and .word.
package assembler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/retroenv/retrochip8/internal/chip8"
)

// Errors returned by Assemble, wrapped with the source line.
var (
	ErrUnknownMnemonic  = errors.New("unknown mnemonic")
	ErrUnknownDirective = errors.New("unknown directive")
	ErrInvalidOperands  = errors.New("invalid operands")
	ErrUndefinedLabel   = errors.New("undefined label")
	ErrDuplicateLabel   = errors.New("duplicate label")
	ErrValueOutOfRange  = errors.New("value out of range")
	ErrInvalidOrigin    = errors.New("invalid origin")
)

type program struct {
	Lines []*line `parser:"@@*"`
}

type line struct {
	Pos lexer.Position

	Label     *string    `parser:"( @Ident \":\" )?"`
	Statement *statement `parser:"@@? EOL"`
}

type statement struct {
	Pos lexer.Position

	Name     string     `parser:"@(Directive | Ident)"`
	Operands []*operand `parser:"( @@ ( \",\" @@ )* )?"`
}

type operand struct {
	Indirect *string `parser:"  \"[\" @Ident \"]\""`
	Number   *string `parser:"| @Number"`
	Name     *string `parser:"| @Ident"`
}

var asmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `;[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "EOL", Pattern: `\n`},
	{Name: "Directive", Pattern: `\.[a-zA-Z]+`},
	{Name: "Number", Pattern: `\$[0-9a-fA-F]+|0[xX][0-9a-fA-F]+|[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[,:\[\]]`},
})

var parser = participle.MustBuild[program](
	participle.Lexer(asmLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)

// assembler holds the state of both passes.
type assembler struct {
	labels map[string]uint16
	output []byte
}

// Assemble translates the source into the program bytes that get loaded at
// chip8.ProgramStart.
func Assemble(source string) ([]byte, error) {
	if !strings.HasSuffix(source, "\n") {
		source += "\n"
	}

	prog, err := parser.ParseString("", source)
	if err != nil {
		return nil, fmt.Errorf("parsing source: %w", err)
	}

	a := &assembler{
		labels: map[string]uint16{},
	}
	if err := a.collectLabels(prog); err != nil {
		return nil, err
	}
	if err := a.encode(prog); err != nil {
		return nil, err
	}
	return a.output, nil
}

// collectLabels assigns addresses to all labels.
func (a *assembler) collectLabels(prog *program) error {
	address := uint16(chip8.ProgramStart)

	for _, l := range prog.Lines {
		if l.Label != nil {
			if _, ok := a.labels[*l.Label]; ok {
				return fmt.Errorf("line %d: %s: %w", l.Pos.Line, *l.Label, ErrDuplicateLabel)
			}
			a.labels[*l.Label] = address
		}
		if l.Statement == nil {
			continue
		}

		next, err := a.advance(l.Statement, address)
		if err != nil {
			return fmt.Errorf("line %d: %w", l.Statement.Pos.Line, err)
		}
		address = next
	}
	return nil
}

// advance returns the address following the statement.
func (a *assembler) advance(st *statement, address uint16) (uint16, error) {
	if !isDirective(st.Name) {
		return address + 2, nil
	}

	switch strings.ToLower(st.Name) {
	case ".org":
		if len(st.Operands) != 1 || st.Operands[0].Number == nil {
			return 0, fmt.Errorf(".org expects a number: %w", ErrInvalidOperands)
		}
		origin, err := parseNumber(*st.Operands[0].Number)
		if err != nil {
			return 0, err
		}
		if origin < chip8.ProgramStart || origin < uint64(address) || origin >= chip8.MemorySize {
			return 0, fmt.Errorf("origin $%04X at $%04X: %w", origin, address, ErrInvalidOrigin)
		}
		return uint16(origin), nil

	case ".byte":
		return address + uint16(len(st.Operands)), nil

	case ".word":
		return address + 2*uint16(len(st.Operands)), nil

	default:
		return 0, fmt.Errorf("%s: %w", st.Name, ErrUnknownDirective)
	}
}

// encode writes the bytes of all statements.
func (a *assembler) encode(prog *program) error {
	for _, l := range prog.Lines {
		if l.Statement == nil {
			continue
		}

		var err error
		if isDirective(l.Statement.Name) {
			err = a.encodeDirective(l.Statement)
		} else {
			err = a.encodeInstruction(l.Statement)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", l.Statement.Pos.Line, err)
		}
	}
	return nil
}

func (a *assembler) encodeDirective(st *statement) error {
	name := strings.ToLower(st.Name)
	if name == ".org" {
		origin, err := parseNumber(*st.Operands[0].Number)
		if err != nil {
			return err
		}
		size := int(origin) - chip8.ProgramStart
		a.output = append(a.output, make([]byte, size-len(a.output))...)
		return nil
	}

	limit := uint64(0xFF)
	if name == ".word" {
		limit = 0xFFFF
	}

	for _, op := range st.Operands {
		arg, err := a.resolve(op)
		if err != nil {
			return err
		}
		if arg.kind != kindValue {
			return fmt.Errorf("%s expects values: %w", name, ErrInvalidOperands)
		}
		if arg.value > limit {
			return fmt.Errorf("%s value $%X: %w", name, arg.value, ErrValueOutOfRange)
		}

		if name == ".word" {
			a.output = append(a.output, byte(arg.value>>8), byte(arg.value))
		} else {
			a.output = append(a.output, byte(arg.value))
		}
	}
	return nil
}

func (a *assembler) encodeInstruction(st *statement) error {
	mnemonic := strings.ToLower(st.Name)
	patterns, ok := instructionPatterns[mnemonic]
	if !ok {
		return fmt.Errorf("%s: %w", st.Name, ErrUnknownMnemonic)
	}

	args := make([]argument, 0, len(st.Operands))
	for _, op := range st.Operands {
		arg, err := a.resolve(op)
		if err != nil {
			return err
		}
		args = append(args, arg)
	}

	for _, p := range patterns {
		if !p.matches(args) {
			continue
		}
		ins, err := p.instruction(args)
		if err != nil {
			return fmt.Errorf("%s: %w", mnemonic, err)
		}
		opcode := ins.Encode()
		a.output = append(a.output, byte(opcode>>8), byte(opcode))
		return nil
	}
	return fmt.Errorf("%s: %w", mnemonic, ErrInvalidOperands)
}

func isDirective(name string) bool {
	return strings.HasPrefix(name, ".")
}
