package diagfmt

import (
	"encoding/json"
	"io"
	"sort"

	"minic/internal/diag"
	"minic/internal/source"
)

const (
	sarifVersion = "2.1.0"
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SarifLog is the root object of a SARIF 2.1.0 document. Only the
// properties the declaration loader can fill are modelled.
type SarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SarifRun `json:"runs"`
}

type SarifRun struct {
	Tool        SarifTool         `json:"tool"`
	Invocations []SarifInvocation `json:"invocations,omitempty"`
	Results     []SarifResult     `json:"results"`
}

type SarifTool struct {
	Driver SarifDriver `json:"driver"`
}

type SarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []SarifRule `json:"rules,omitempty"`
}

type SarifRule struct {
	ID               string       `json:"id"`
	ShortDescription SarifMessage `json:"shortDescription"`
}

type SarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type SarifMessage struct {
	Text string `json:"text"`
}

type SarifResult struct {
	RuleID           string          `json:"ruleId"`
	Level            string          `json:"level"`
	Message          SarifMessage    `json:"message"`
	Locations        []SarifLocation `json:"locations,omitempty"`
	RelatedLocations []SarifLocation `json:"relatedLocations,omitempty"`
}

type SarifLocation struct {
	ID               *int                   `json:"id,omitempty"`
	Message          *SarifMessage          `json:"message,omitempty"`
	PhysicalLocation *SarifPhysicalLocation `json:"physicalLocation,omitempty"`
}

type SarifPhysicalLocation struct {
	ArtifactLocation SarifArtifactLocation `json:"artifactLocation"`
	Region           *SarifRegion          `json:"region,omitempty"`
}

type SarifArtifactLocation struct {
	URI string `json:"uri"`
}

type SarifRegion struct {
	StartLine   uint32 `json:"startLine,omitempty"`
	StartColumn uint32 `json:"startColumn,omitempty"`
	EndLine     uint32 `json:"endLine,omitempty"`
	EndColumn   uint32 `json:"endColumn,omitempty"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

// SarifInput pairs a bag with the file set its spans point into.
type SarifInput struct {
	Bag   *diag.Bag
	Files *source.FileSet
}

// BuildSarif собирает один run из нескольких bag'ов. Rules содержат
// только реально встретившиеся коды, отсортированные по ID.
func BuildSarif(meta SarifRunMeta, inputs ...SarifInput) SarifLog {
	run := SarifRun{
		Tool: SarifTool{Driver: SarifDriver{
			Name:    meta.ToolName,
			Version: meta.ToolVersion,
		}},
		Results: []SarifResult{},
	}

	seen := make(map[diag.Code]struct{})
	success := true
	for _, in := range inputs {
		if in.Bag == nil {
			continue
		}
		if in.Bag.HasErrors() {
			success = false
		}
		items := in.Bag.Items()
		for i := range items {
			d := &items[i]
			seen[d.Code] = struct{}{}
			run.Results = append(run.Results, sarifResult(d, in.Files))
		}
	}

	codes := make([]diag.Code, 0, len(seen))
	for c := range seen {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, c := range codes {
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, SarifRule{
			ID:               c.ID(),
			ShortDescription: SarifMessage{Text: c.Title()},
		})
	}

	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []SarifInvocation{{
			Arguments:           append([]string(nil), meta.InvocationArgs...),
			ExecutionSuccessful: success,
		}}
	}

	return SarifLog{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs:    []SarifRun{run},
	}
}

func sarifResult(d *diag.Diagnostic, fs *source.FileSet) SarifResult {
	res := SarifResult{
		RuleID:  d.Code.ID(),
		Level:   sarifLevel(d.Severity),
		Message: SarifMessage{Text: d.Message},
	}
	if loc, ok := physicalLocation(d.Primary, fs); ok {
		res.Locations = []SarifLocation{{PhysicalLocation: loc}}
	}
	for i, note := range d.Notes {
		id := i + 1
		related := SarifLocation{
			ID:      &id,
			Message: &SarifMessage{Text: note.Msg},
		}
		if loc, ok := physicalLocation(note.Span, fs); ok {
			related.PhysicalLocation = loc
		}
		res.RelatedLocations = append(res.RelatedLocations, related)
	}
	return res
}

func physicalLocation(span source.Span, fs *source.FileSet) (*SarifPhysicalLocation, bool) {
	if fs == nil {
		return nil, false
	}
	f := fs.Get(span.File)
	if f == nil {
		return nil, false
	}
	start, end := fs.Resolve(span)
	length := uint32(0)
	if span.End > span.Start {
		length = span.End - span.Start
	}
	return &SarifPhysicalLocation{
		ArtifactLocation: SarifArtifactLocation{URI: f.FormatPath("relative", fs.BaseDir())},
		Region: &SarifRegion{
			StartLine:   start.Line,
			StartColumn: start.Col,
			EndLine:     end.Line,
			EndColumn:   end.Col,
			ByteOffset:  span.Start,
			ByteLength:  length,
		},
	}, true
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "note"
	}
}

// Sarif пишет SARIF 2.1.0 документ для одного bag.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	return WriteSarif(w, BuildSarif(meta, SarifInput{Bag: bag, Files: fs}))
}

// WriteSarif encodes log with two-space indentation.
func WriteSarif(w io.Writer, log SarifLog) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(log)
}
