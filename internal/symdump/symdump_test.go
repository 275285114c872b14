package symdump

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"minic/internal/decl"
	"minic/internal/source"
)

const demoManifest = `[unit]
name = "demo"

[[decl]]
kind = "struct"
name = "Point"
fields = [{ name = "x", type = "int" }, { name = "y", type = "int" }]

[[decl]]
kind = "var"
name = "origin"
type = "struct Point"

[[decl]]
kind = "fn"
name = "add"
returns = "int"
params = [{ name = "a", type = "int" }, { name = "b", type = "struct Point" }]
locals = [{ name = "tmp", type = "bool" }, { name = "p", type = "struct Point" }]
`

func demoSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("demo.toml", []byte(demoManifest))
	unit, bag, err := decl.Load(context.Background(), fs, id, decl.Options{})
	if err != nil || bag.Len() != 0 {
		t.Fatalf("Load: %v, %v", err, bag.Items())
	}
	return Capture(unit)
}

func TestRenderTextGolden(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, demoSnapshot(t), TextOptions{}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	want := strings.Join([]string{
		"unit demo",
		"NAME    KIND               TYPE      STORAGE    DETAIL",
		"Point   struct-definition  struct    global     size=8",
		"  x     variable           int       +0         size=4",
		"  y     variable           int       +4         size=4",
		"origin  struct-instance    Point     global     size=8",
		"add     function           function  global     int,Point->int params=12 locals=12",
		"  a     variable           int       local 0    size=4",
		"  b     struct-instance    Point     local -4   size=8",
		"  tmp   variable           bool      local -20  size=4",
		"  p     struct-instance    Point     local -24  size=8",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("table mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderTextTruncates(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderText(&buf, demoSnapshot(t), TextOptions{MaxCell: 10}); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if !strings.Contains(buf.String(), "struct-...") || !strings.Contains(buf.String(), "int,Poi...") {
		t.Fatalf("expected truncated cells:\n%s", buf.String())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := demoSnapshot(t)
	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, snap)
	}
}

func TestDecodeSchemaMismatch(t *testing.T) {
	data, err := msgpack.Marshal(&Snapshot{Schema: SchemaVersion + 1, Unit: "old"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeSnapshot(bytes.NewReader(data)); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSON(&buf, demoSnapshot(t)); err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(decoded.Globals) != 3 || decoded.Globals[0].Offset != nil {
		t.Fatalf("globals = %+v", decoded.Globals)
	}
	add := decoded.Globals[2]
	if add.Signature != "int,Point->int" || len(add.Locals) != 4 {
		t.Fatalf("add = %+v", add)
	}
	if tmp := add.Locals[2]; tmp.Name != "tmp" || tmp.Offset == nil || *tmp.Offset != -20 {
		t.Fatalf("tmp = %+v", tmp)
	}
	if !strings.Contains(buf.String(), `"struct": "Point"`) {
		t.Fatalf("struct instance should name its struct:\n%s", buf.String())
	}
}

func TestCaptureNilUnit(t *testing.T) {
	snap := Capture(nil)
	if snap.Schema != SchemaVersion || len(snap.Globals) != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestRenderJSONAll(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderJSONAll(&buf, []*Snapshot{demoSnapshot(t), {Schema: SchemaVersion, Unit: "empty"}}); err != nil {
		t.Fatalf("RenderJSONAll: %v", err)
	}
	var decoded []Snapshot
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if len(decoded) != 2 || len(decoded[0].Globals) != 3 || decoded[1].Unit != "empty" {
		t.Fatalf("decoded = %+v", decoded)
	}

	buf.Reset()
	if err := RenderJSONAll(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Fatalf("no snapshots: %q", got)
	}
}
