package diag

// Severity orders diagnostics; a higher value is more severe.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	// SevError makes the manifest fail; Bag.HasErrors reports it.
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}
