package types

import (
	"errors"
	"testing"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Int, "int"},
		{Bool, "bool"},
		{Void, "void"},
		{String, "string"},
		{MakeStruct("Point"), "Point"},
		{Function, "function"},
		{StructDef, "struct"},
		{Error, "error"},
		{Type{}, "?"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestStructuralEquality(t *testing.T) {
	if !MakeStruct("P").Equal(MakeStruct("P")) {
		t.Fatalf("same-named struct types must be equal")
	}
	if MakeStruct("P") == MakeStruct("Q") {
		t.Fatalf("different struct names must differ")
	}
	if Function == StructDef {
		t.Fatalf("sentinels must differ")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Type
		wantErr bool
	}{
		{"int", Int, false},
		{" bool ", Bool, false},
		{"void", Void, false},
		{"string", String, false},
		{"struct Point", MakeStruct("Point"), false},
		{"struct  Point ", MakeStruct("Point"), false},
		{"Point", Type{}, true},
		{"struct", Type{}, true},
		{"", Type{}, true},
		{"function", Type{}, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownType) {
				t.Errorf("Parse(%q): expected ErrUnknownType, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("Parse(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestHasStorage(t *testing.T) {
	for _, typ := range []Type{Int, Bool, String, MakeStruct("S")} {
		if !typ.HasStorage() {
			t.Errorf("%v should have storage", typ)
		}
	}
	for _, typ := range []Type{Void, Function, StructDef, Error, {}} {
		if typ.HasStorage() {
			t.Errorf("%v should not have storage", typ)
		}
	}
}
