package symbols

import "errors"

var (
	// ErrDuplicateSymbol is returned when a name is declared twice in one scope.
	ErrDuplicateSymbol = errors.New("duplicate declaration")
	// ErrScopeSealed is returned when declaring into a scope owned by a struct definition.
	ErrScopeSealed = errors.New("scope is sealed")
	// ErrFormalsAlreadyAdded is returned by a second AddFormals call.
	ErrFormalsAlreadyAdded = errors.New("formals already added")
	// ErrParamCountMismatch is returned when the formals disagree with the declared count.
	ErrParamCountMismatch = errors.New("parameter count mismatch")
	// ErrStructNotDefined is returned when a struct name resolves to nothing.
	ErrStructNotDefined = errors.New("struct type is not defined")
	// ErrNotAStruct is returned when a struct name resolves to a non-struct symbol.
	ErrNotAStruct = errors.New("name is not a struct type")
)
