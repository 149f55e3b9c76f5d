package dict

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadDirection is returned by ParseDirection for unknown names.
var ErrBadDirection = errors.New("unknown conversion direction")

// Direction selects which index a conversion goes through.
type Direction int

const (
	// Forward converts traditional spelling to the alternate spelling.
	Forward Direction = iota
	// Reverse converts the alternate spelling back to traditional spelling.
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// ParseDirection accepts "forward"/"fwd"/"f" and "reverse"/"rev"/"r".
// The empty string means Forward.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward", "fwd", "f":
		return Forward, nil
	case "reverse", "rev", "r":
		return Reverse, nil
	default:
		return Forward, fmt.Errorf("%w: %q", ErrBadDirection, s)
	}
}
