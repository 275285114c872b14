package layout

import (
	"fmt"
	"strings"

	"minic/internal/types"
)

// LayoutErrorKind enumerates layout failures.
type LayoutErrorKind uint8

const (
	// LayoutErrNoStorage is reported for types that cannot be stored (void, function, struct definition).
	LayoutErrNoStorage LayoutErrorKind = iota + 1
	// LayoutErrUnknownStruct is reported when a struct name has no definition.
	LayoutErrUnknownStruct
	// LayoutErrRecursive is reported when a struct contains itself by value.
	LayoutErrRecursive
	// LayoutErrFrameTooLarge is reported when a frame offset overflows 32 bits.
	LayoutErrFrameTooLarge
)

// LayoutError represents an error during size or offset computation.
type LayoutError struct {
	Kind  LayoutErrorKind
	Type  types.Type
	Cycle []string // struct names, for LayoutErrRecursive
	Err   error
}

func (e *LayoutError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case LayoutErrNoStorage:
		return fmt.Sprintf("type %s has no storage", e.Type)
	case LayoutErrUnknownStruct:
		if e.Err != nil {
			return fmt.Sprintf("cannot lay out %s: %v", e.Type, e.Err)
		}
		return fmt.Sprintf("cannot lay out %s: struct is not defined", e.Type)
	case LayoutErrRecursive:
		return fmt.Sprintf("recursive struct has infinite size (cycle: %s)", strings.Join(e.Cycle, " -> "))
	case LayoutErrFrameTooLarge:
		return fmt.Sprintf("frame too large: %v", e.Err)
	default:
		return fmt.Sprintf("layout error kind=%d type %s", e.Kind, e.Type)
	}
}

func (e *LayoutError) Unwrap() error { return e.Err }
