package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// CommentMarker starts a comment that runs to the end of the line.
// Symbols and state names therefore cannot contain it.
const CommentMarker = ";"

// MaxLineBytes is the longest rule line Parse accepts.
const MaxLineBytes = 1 << 20

// Parser is responsible for converting rule program text into a Program.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Compile parses source text. See Parser.Parse.
func Compile(source string) (*domain.Program, error) {
	return NewParser().Parse(strings.NewReader(source))
}

// Parse reads one rule per line:
//
//	old_state read_symbol write_symbol direction new_state   ; comment
//
// Later rules silently overwrite earlier ones with the same key. A line
// longer than MaxLineBytes is reported as a FormatError for that line.
func (p *Parser) Parse(r io.Reader) (*domain.Program, error) {
	exact := make(map[domain.Key]domain.Rule)
	wildcard := make(map[string]domain.Rule)
	finals := make(map[string]struct{})
	initial := ""

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		rule, ok, err := parseLine(lineNo, scanner.Text())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if initial == "" {
			initial = rule.State
		}
		if domain.IsFinalName(rule.NextState) {
			finals[rule.NextState] = struct{}{}
		}
		if rule.IsWildcard() {
			wildcard[rule.State] = rule
		} else {
			exact[domain.Key{State: rule.State, Read: rule.Read}] = rule
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &domain.FormatError{
				Line:   lineNo + 1,
				Reason: fmt.Sprintf("line longer than %d bytes", MaxLineBytes),
			}
		}
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	if initial == "" {
		return nil, domain.ErrEmptyProgram
	}

	return domain.NewProgram(exact, wildcard, initial, finals), nil
}

// parseLine returns ok=false for blank and comment-only lines.
func parseLine(lineNo int, raw string) (domain.Rule, bool, error) {
	line, _, _ := strings.Cut(raw, CommentMarker)
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.Rule{}, false, nil
	}

	fields := strings.Fields(line)
	if len(fields) != 5 {
		return domain.Rule{}, false, &domain.FormatError{
			Line:   lineNo,
			Text:   line,
			Reason: fmt.Sprintf("expected 5 fields, got %d", len(fields)),
		}
	}

	move, err := domain.ParseDirection(fields[3])
	if err != nil {
		return domain.Rule{}, false, &domain.FormatError{Line: lineNo, Text: line, Reason: err.Error()}
	}

	return domain.Rule{
		State: fields[0],
		Read:  domain.Symbol(fields[1]),
		Action: domain.Action{
			Write:     domain.Symbol(fields[2]),
			Move:      move,
			NextState: fields[4],
		},
		Line: lineNo,
	}, true, nil
}
