package tmdl

import "fmt"

// ParseError reports a construct the parser could not recognize, with the
// 1-based line number it was found on.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tmdl: parse error at line %d: %s", e.Line, e.Message)
}

func (p *Parser) errorf(format string, args ...any) *ParseError {
	return &ParseError{Line: p.cur.pos + 1, Message: fmt.Sprintf(format, args...)}
}
