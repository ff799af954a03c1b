package schema

import "fmt"

// State lifecycle of metas, fields and constraint handlers, transitions once from Building to Finalized
type State int

const (
	Building State = iota
	Finalized
)

func (s State) String() string {
	if s == Finalized {
		return "finalized"
	}
	return "building"
}

func (s State) needsBuilding(subject string) error {
	if s != Building {
		return fmt.Errorf("%w: %s is already finalized", ErrState, subject)
	}
	return nil
}

func (s State) needsFinalized(subject string) error {
	if s != Finalized {
		return fmt.Errorf("%w: %s is not owned yet", ErrState, subject)
	}
	return nil
}
