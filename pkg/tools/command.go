package tools

import (
	"strings"
	"unicode"
)

// Prefix marks a line as a tool command.
const Prefix = "/"

// Command is a parsed "/name [argument]" line.
type Command struct {
	Name     string
	Argument string
}

// Parse splits a prefixed line into a case-folded name and an optional
// argument, separated by the first run of whitespace. It returns false when
// line does not start with Prefix.
func Parse(line string) (Command, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, Prefix) {
		return Command{}, false
	}

	name, arg := strings.TrimPrefix(line, Prefix), ""
	if i := strings.IndexFunc(name, unicode.IsSpace); i >= 0 {
		name, arg = name[:i], name[i:]
	}

	return Command{
		Name:     strings.ToLower(name),
		Argument: strings.TrimSpace(arg),
	}, true
}
