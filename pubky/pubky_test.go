package pubky

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 52 'y' characters decode to 32 zero bytes.
var zeroKey = strings.Repeat("y", 52)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Key
		wantErr bool
	}{
		{name: "bare", in: zeroKey, want: Key(zeroKey)},
		{name: "scheme", in: "pubky://" + zeroKey, want: Key(zeroKey)},
		{name: "prefix", in: "pubky" + zeroKey, want: Key(zeroKey)},
		{name: "whitespace", in: "  " + zeroKey + "\n", want: Key(zeroKey)},
		{name: "short", in: "yyyy", wantErr: true},
		{name: "bad alphabet", in: strings.Repeat("l", 52), wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaths(t *testing.T) {
	k := Key("alice")

	assert.Equal(t, "pubky://alice/pub/geostories.app/markers/", k.MarkersURL())
	assert.Equal(t, "pubky://alice/pub/geostories.app/markers/m1.json", k.MarkerURL("m1"))
	assert.Equal(t, "pubky://alice/pub/geostories.app/markers/m1/photo-1.jpg", k.PhotoURL("m1", "photo-1.jpg"))
	assert.Equal(t, "pubky://alice/pub/pubky.app/follows/", k.FollowsURL())
	assert.Equal(t, "pubky://alice/pub/pubky.app/profile.json", k.ProfileURL())
}

func TestSplitURL(t *testing.T) {
	key, path, err := SplitURL("pubky://alice/pub/geostories.app/markers/m1.json")
	require.NoError(t, err)
	assert.Equal(t, Key("alice"), key)
	assert.Equal(t, "/pub/geostories.app/markers/m1.json", path)

	_, _, err = SplitURL("https://example.com/x")
	assert.Error(t, err)

	_, _, err = SplitURL("pubky://alice")
	assert.Error(t, err)
}

func TestLastSegment(t *testing.T) {
	assert.Equal(t, "bob", LastSegment("pubky://alice/pub/pubky.app/follows/bob"))
	assert.Equal(t, "bob", LastSegment("pubky://alice/pub/pubky.app/follows/bob/"))
	assert.Equal(t, "bob", LastSegment("bob"))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "yyyyyyyyyyyyyyyy...", Key(zeroKey).Short())
	assert.Equal(t, "abc", Key("abc").Short())
}

func TestIsMarkerObject(t *testing.T) {
	k := Key("alice")
	tests := []struct {
		url  string
		want bool
	}{
		{"pubky://alice/pub/geostories.app/markers/m1.json", true},
		{"pubky://alice/pub/geostories.app/markers/m1/photo-1.jpg", false},
		{"pubky://alice/pub/geostories.app/markers/m1/meta.json", false},
		{"pubky://alice/pub/geostories.app/markers/.json", false},
		{"pubky://alice/pub/geostories.app/profile.json", false},
		{"pubky://bob/pub/geostories.app/markers/m1.json", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, k.IsMarkerObject(tt.url), tt.url)
	}
}
