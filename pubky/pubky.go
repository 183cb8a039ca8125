// Package pubky holds identity keys and the object paths derived from them.
package pubky

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tv42/zbase32"
)

const (
	Scheme = "pubky://"

	// AppRoot is the namespace this application writes to.
	AppRoot       = "/pub/geostories.app/"
	MarkersDir    = AppRoot + "markers/"
	FollowsDir    = "/pub/pubky.app/follows/"
	ProfileFile   = "/pub/pubky.app/profile.json"
	AppCapability = AppRoot + ":rw"

	keyLen = 52
)

var ErrInvalidKey = errors.New("invalid pubky identity key")

// Key is the z-base-32 public key of an identity. It is also the root of
// that identity's storage namespace.
type Key string

// ParseKey validates s as a 32 byte z-base-32 key. A leading "pubky" or
// "pubky://" is tolerated.
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, Scheme)
	if len(s) == keyLen+len("pubky") {
		s = strings.TrimPrefix(s, "pubky")
	}
	if len(s) != keyLen {
		return "", fmt.Errorf("%w: %q has length %d", ErrInvalidKey, s, len(s))
	}
	raw, err := zbase32.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	// 52 characters carry 260 bits; the trailing 4 are padding.
	if len(raw) < 32 {
		return "", fmt.Errorf("%w: decoded to %d bytes", ErrInvalidKey, len(raw))
	}
	return Key(s), nil
}

func (k Key) String() string {
	return string(k)
}

// Short is the 16 character prefix used when no profile name is known.
func (k Key) Short() string {
	if len(k) <= 16 {
		return string(k)
	}
	return string(k[:16]) + "..."
}

// URL joins an absolute path under the key's namespace.
func (k Key) URL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return Scheme + string(k) + path
}

func (k Key) MarkersURL() string {
	return k.URL(MarkersDir)
}

func (k Key) MarkerURL(id string) string {
	return k.URL(MarkerPath(id))
}

func (k Key) PhotoURL(id, photo string) string {
	return k.URL(PhotoPath(id, photo))
}

func (k Key) FollowsURL() string {
	return k.URL(FollowsDir)
}

func (k Key) ProfileURL() string {
	return k.URL(ProfileFile)
}

// MarkerPath is the namespace-relative path of a marker's metadata object.
func MarkerPath(id string) string {
	return MarkersDir + id + ".json"
}

// PhotoPath is the namespace-relative path of a photo attached to a marker.
func PhotoPath(id, photo string) string {
	return MarkersDir + id + "/" + photo
}

// SplitURL breaks a pubky:// address into its key and absolute path.
func SplitURL(u string) (Key, string, error) {
	rest, ok := strings.CutPrefix(u, Scheme)
	if !ok {
		return "", "", fmt.Errorf("not a pubky url: %q", u)
	}
	key, path, found := strings.Cut(rest, "/")
	if !found || key == "" {
		return "", "", fmt.Errorf("pubky url has no path: %q", u)
	}
	return Key(key), "/" + path, nil
}

// LastSegment returns the final non-empty path segment of u.
func LastSegment(u string) string {
	u = strings.TrimRight(u, "/")
	if i := strings.LastIndex(u, "/"); i >= 0 {
		return u[i+1:]
	}
	return u
}

// IsMarkerObject reports whether u is one of k's marker metadata objects:
// a .json object directly under the markers directory. Photos and anything
// nested deeper are not.
func (k Key) IsMarkerObject(u string) bool {
	name, ok := strings.CutPrefix(u, k.MarkersURL())
	return ok && name != ".json" && !strings.Contains(name, "/") && strings.HasSuffix(name, ".json")
}
