package text

import (
	"fmt"
	"strconv"
)

// UndefinedVariableError occurs when a Substituter configured to abort
// on undefined variables encounters a reference to a variable that
// its Dereferencer doesn't know.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return `undefined variable "` + e.Name + `"`
}

// SyntaxError occurs when a Substituter configured to abort on syntax
// errors sees a malformed reference like an unterminated "${".
type SyntaxError struct {
	// Input is the complete string being processed.
	Input string

	// Pos is the byte offset of the start of the bad reference.
	Pos int

	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d in %s", e.Msg, e.Pos, strconv.Quote(e.Input))
}

// RangeError reports a number that can't be represented.
type RangeError struct {
	N   int
	Min int
	Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%d is out of range [%d,%d]", e.N, e.Min, e.Max)
}
