package decl

import (
	"bytes"

	"github.com/BurntSushi/toml"
)

// Declaration kinds accepted in a manifest.
const (
	KindStruct = "struct"
	KindVar    = "var"
	KindFn     = "fn"
)

// Manifest is the decoded declaration list of one unit.
type Manifest struct {
	Unit  UnitHeader `toml:"unit"`
	Decls []Entry    `toml:"decl"`
}

// UnitHeader is the [unit] table.
type UnitHeader struct {
	Name string `toml:"name"`
}

// Entry is one [[decl]] table. Which keys matter depends on Kind:
// struct uses Fields, var uses Type, fn uses Returns, Params and Locals.
type Entry struct {
	Kind    string    `toml:"kind"`
	Name    string    `toml:"name"`
	Type    string    `toml:"type"`
	Returns string    `toml:"returns"`
	Fields  []Binding `toml:"fields"`
	Params  []Binding `toml:"params"`
	Locals  []Binding `toml:"locals"`
}

// Binding is a name with its type text, e.g. { name = "x", type = "int" }.
type Binding struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
}

// DecodeManifest parses manifest bytes. Keys that map to nothing are
// returned so the caller can warn about them.
func DecodeManifest(content []byte) (*Manifest, []string, error) {
	var m Manifest
	md, err := toml.NewDecoder(bytes.NewReader(content)).Decode(&m)
	if err != nil {
		return nil, nil, err
	}
	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return &m, unknown, nil
}
