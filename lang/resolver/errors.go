package resolver

import (
	"fmt"

	"github.com/uwconv/toolchain/lang/token"
)

// NameError reports a reference to an undeclared variable, function, or
// label.
type NameError struct {
	Pos token.Position
	Msg string
}

func (e *NameError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// TypeError reports a use that is inconsistent with a symbol's inferred
// semantic type (integer, string, or array).
type TypeError struct {
	Pos token.Position
	Msg string
}

func (e *TypeError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }
