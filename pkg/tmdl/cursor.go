package tmdl

import "strings"

// cursor indexes a text buffer as a sequence of lines and tracks the
// current read position. Construct parsers share one cursor and are each
// responsible for consuming their own block before returning.
type cursor struct {
	lines []string
	pos   int
}

func newCursor(content string) *cursor {
	return &cursor{lines: strings.Split(content, "\n")}
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.lines)
}

// line returns the current line, or "" past the end of the buffer.
func (c *cursor) line() string {
	if c.eof() {
		return ""
	}
	return c.lines[c.pos]
}

func (c *cursor) advance() {
	c.pos++
}

// indentOf measures a line's indentation: the count of leading tabs and
// spaces. Nesting in TMDL is encoded purely by this count.
func indentOf(line string) int {
	return len(line) - len(strings.TrimLeft(line, "\t "))
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
