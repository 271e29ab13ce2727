package monitor

import (
	"fmt"
	"strings"
	"time"
)

// State is the coarse load classification of the watched directory.
type State int

const (
	StateEmpty State = iota
	StateNormal
	StateOverloaded
)

// OverloadThreshold is the highest file count still classified as normal.
const OverloadThreshold = 20

// Classify maps a file count to a State. It keeps no history.
func Classify(count int) State {
	switch {
	case count <= 0:
		return StateEmpty
	case count > OverloadThreshold:
		return StateOverloaded
	default:
		return StateNormal
	}
}

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateNormal:
		return "normal"
	case StateOverloaded:
		return "overloaded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Color is the display colour associated with the state.
func (s State) Color() string {
	switch s {
	case StateEmpty:
		return "red"
	case StateNormal:
		return "green"
	case StateOverloaded:
		return "orange"
	default:
		return ""
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	switch s {
	case StateEmpty, StateNormal, StateOverloaded:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("monitor: invalid state %d", int(s))
	}
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState converts a state name back into a State.
func ParseState(value string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "empty":
		return StateEmpty, nil
	case "normal":
		return StateNormal, nil
	case "overloaded":
		return StateOverloaded, nil
	default:
		return StateEmpty, fmt.Errorf("monitor: unknown state %q", value)
	}
}

// Snapshot is one classification result.
type Snapshot struct {
	State   State     `json:"state"`
	Files   []string  `json:"files"`
	Dir     string    `json:"dir"`
	TakenAt time.Time `json:"taken_at"`
}

// Count returns the number of files in the snapshot.
func (s Snapshot) Count() int {
	return len(s.Files)
}

// StatusLine renders "Status: <state> (<n> files)".
func (s Snapshot) StatusLine() string {
	return fmt.Sprintf("Status: %s (%d files)", s.State, s.Count())
}
