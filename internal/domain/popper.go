package domain

// PopperState is the open/closed state of a tag popper dialog.
// There are no other states.
type PopperState struct {
	Open bool
}

// Toggle flips the state and returns the new value.
func (p *PopperState) Toggle() bool {
	p.Open = !p.Open
	return p.Open
}

// ParsePopperState reads the popper query parameter ("open" opens it).
func ParsePopperState(v string) PopperState {
	return PopperState{Open: v == "open"}
}
