// Package dax performs structural validation of DAX expressions before
// they are written into TMDL files. It is not a DAX parser; it only
// rejects text that can never be a well-formed expression.
package dax

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmpty rejects blank expressions.
	ErrEmpty = errors.New("dax: expression cannot be empty")
	// ErrUnmatchedCloseParen reports a ')' with no matching '('.
	ErrUnmatchedCloseParen = errors.New("dax: unmatched closing parenthesis")
	// ErrUnmatchedOpenParen reports a '(' with no matching ')'.
	ErrUnmatchedOpenParen = errors.New("dax: unmatched opening parenthesis")
	// ErrUnmatchedCloseBracket reports a ']' with no matching '['.
	ErrUnmatchedCloseBracket = errors.New("dax: unmatched closing bracket")
	// ErrUnmatchedOpenBracket reports a '[' with no matching ']'.
	ErrUnmatchedOpenBracket = errors.New("dax: unmatched opening bracket")
	// ErrUnmatchedQuote reports an odd double quote.
	ErrUnmatchedQuote = errors.New("dax: unmatched quotes")
	// ErrTrailingComma reports an expression ending in ','.
	ErrTrailingComma = errors.New("dax: expression cannot end with a comma")
	// ErrEmptyCall reports a bare '()' call.
	ErrEmptyCall = errors.New("dax: empty function calls are not allowed")
)

var reQuoted = regexp.MustCompile(`"[^"]*"`)

// Validate runs the structural checks over expression and returns the
// first violation found, or nil.
func Validate(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return ErrEmpty
	}

	depth := 0
	for _, r := range expression {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return ErrUnmatchedCloseParen
		}
	}
	if depth != 0 {
		return ErrUnmatchedOpenParen
	}

	depth = 0
	for _, r := range expression {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth < 0 {
			return ErrUnmatchedCloseBracket
		}
	}
	if depth != 0 {
		return ErrUnmatchedOpenBracket
	}

	// String literals pair up greedily; a lone quote survives removal.
	if strings.Contains(reQuoted.ReplaceAllString(expression, ""), `"`) {
		return ErrUnmatchedQuote
	}

	if strings.HasSuffix(strings.TrimSpace(expression), ",") {
		return ErrTrailingComma
	}
	if strings.Contains(expression, "()") {
		return ErrEmptyCall
	}

	return nil
}
