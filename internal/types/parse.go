package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned by Parse for text that names no type.
var ErrUnknownType = errors.New("unknown type")

// Parse reads the textual form used by declaration manifests: one of the
// builtin names (int, bool, void, string) or "struct <Name>".
func Parse(text string) (Type, error) {
	fields := strings.Fields(text)
	switch len(fields) {
	case 1:
		switch fields[0] {
		case "int":
			return Int, nil
		case "bool":
			return Bool, nil
		case "void":
			return Void, nil
		case "string":
			return String, nil
		}
	case 2:
		if fields[0] == "struct" {
			return MakeStruct(fields[1]), nil
		}
	}
	return Type{}, fmt.Errorf("%w: %q", ErrUnknownType, text)
}
