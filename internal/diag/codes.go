package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// manifest (declaration list) problems
	DeclInfo          Code = 1000
	DeclParseError    Code = 1001
	DeclUnknownKind   Code = 1002
	DeclMissingName   Code = 1003
	DeclUnexpectedKey Code = 1004

	// семантические
	SemaInfo            Code = 3000
	SemaError           Code = 3001
	SemaDuplicateSymbol Code = 3002
	SemaUnknownType     Code = 3003
	SemaUndefinedStruct Code = 3004
	SemaNotAStruct      Code = 3005
	SemaVoidStorage     Code = 3006
	SemaFormalsMismatch Code = 3007
	SemaEmptyStruct     Code = 3008
	SemaFrameLayout     Code = 3009
)

var codeTitles = map[Code]string{
	UnknownCode:         "Unknown error",
	DeclInfo:            "Manifest information",
	DeclParseError:      "Manifest is not valid TOML",
	DeclUnknownKind:     "Unknown declaration kind",
	DeclMissingName:     "Declaration without a name",
	DeclUnexpectedKey:   "Unexpected manifest key",
	SemaInfo:            "Semantic information",
	SemaError:           "Semantic error",
	SemaDuplicateSymbol: "Duplicate declaration",
	SemaUnknownType:     "Unknown type",
	SemaUndefinedStruct: "Undefined struct type",
	SemaNotAStruct:      "Name is not a struct type",
	SemaVoidStorage:     "Value declared with void type",
	SemaFormalsMismatch: "Formals do not match the declared parameter count",
	SemaEmptyStruct:     "Struct has no fields",
	SemaFrameLayout:     "Frame layout failed",
}

// ID returns the stable short identifier, e.g. "SEM3002".
func (c Code) ID() string {
	switch {
	case c >= 1000 && c < 2000:
		return fmt.Sprintf("DCL%04d", uint16(c))
	case c >= 3000 && c < 4000:
		return fmt.Sprintf("SEM%04d", uint16(c))
	default:
		return fmt.Sprintf("E%04d", uint16(c))
	}
}

// Title returns the human readable description of the code.
func (c Code) Title() string {
	if title, ok := codeTitles[c]; ok {
		return title
	}
	return codeTitles[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
