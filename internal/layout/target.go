package layout

// Target describes the machine the frame layout is computed for.
type Target struct {
	Name            string
	WordSize        int // bytes; size of int, bool and string handles
	ControlLinkSize int // bytes between the parameter block and the first local
}

// DefaultTarget is a 32-bit machine whose frames keep the return address and
// the caller's frame pointer between parameters and locals.
func DefaultTarget() Target {
	return Target{
		Name:            "mips32",
		WordSize:        4,
		ControlLinkSize: 8,
	}
}

func (t Target) word() int {
	if t.WordSize <= 0 {
		return 4
	}
	return t.WordSize
}
