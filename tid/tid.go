package tid

import (
	"github.com/bluesky-social/indigo/atproto/syntax"
)

var c = syntax.NewTIDClock(0)

// TID returns the next timestamp identifier from the process clock. Values
// are strictly increasing, even for calls within the same microsecond.
func TID() string {
	return c.Next().String()
}

// MarkerID returns a fresh marker identifier.
func MarkerID() string {
	return "marker-" + TID()
}

// PhotoName returns a fresh photo filename.
func PhotoName() string {
	return "photo-" + TID() + ".jpg"
}
