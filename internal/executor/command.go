// This file splits a manifest command string into an argv. Commands are
// executed directly, never through a shell, so the splitter supports just
// enough quoting for real build invocations: single quotes (literal),
// double quotes (backslash escapes) and bare words.
package executor

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// splitCommand tokenizes a command string into argv form.
func splitCommand(command string) ([]string, error) {
	var argv []string
	var current strings.Builder
	inToken := false

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			inToken = true
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '\'' {
					end = j
					break
				}
			}
			if end == -1 {
				return nil, fmt.Errorf("unbalanced single quote in command %q", command)
			}
			current.WriteString(string(runes[i+1 : end]))
			i = end
		case r == '"':
			inToken = true
			closed := false
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '\\' && j+1 < len(runes) {
					current.WriteRune(runes[j+1])
					j++
					i = j
					continue
				}
				if runes[j] == '"' {
					closed = true
					i = j
					break
				}
				current.WriteRune(runes[j])
				i = j
			}
			if !closed {
				return nil, fmt.Errorf("unbalanced double quote in command %q", command)
			}
		case r == '\\' && i+1 < len(runes):
			inToken = true
			current.WriteRune(runes[i+1])
			i++
		case unicode.IsSpace(r):
			if inToken {
				argv = append(argv, current.String())
				current.Reset()
				inToken = false
			}
		default:
			inToken = true
			current.WriteRune(r)
		}
	}
	if inToken {
		argv = append(argv, current.String())
	}

	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	return argv, nil
}
