package models

import (
	"testing"

	"geostories.app/core/pubky"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMarker(t *testing.T) {
	m, err := DecodeMarker([]byte(`{
		"id": "marker-1",
		"latitude": 29.9511,
		"longitude": -90.0715,
		"title": "Jazz Fest",
		"timestamp": 1714000000000,
		"photos": ["photo-1.jpg", null, ""],
		"author": "alice"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "marker-1", m.Id)
	assert.Equal(t, 29.9511, m.Latitude)
	assert.Equal(t, -90.0715, m.Longitude)
	assert.Equal(t, "Jazz Fest", m.Title)
	assert.Equal(t, "", m.Description)
	assert.Equal(t, int64(1714000000000), m.Timestamp)
	assert.Equal(t, []string{"photo-1.jpg"}, m.Photos)
	assert.Equal(t, pubky.Key("alice"), m.Author)
}

func TestDecodeMarker_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{`},
		{"missing id", `{"latitude":1,"longitude":2,"author":"a"}`},
		{"empty id", `{"id":"","latitude":1,"longitude":2,"author":"a"}`},
		{"missing author", `{"id":"x","latitude":1,"longitude":2}`},
		{"missing longitude", `{"id":"x","latitude":1,"author":"a"}`},
		{"string latitude", `{"id":"x","latitude":"1","longitude":2,"author":"a"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMarker([]byte(tt.in))
			assert.ErrorIs(t, err, ErrMalformedMarker)
		})
	}
}

func TestDecodeProfile(t *testing.T) {
	p := DecodeProfile([]byte(`{"name":"Bob","links":[{"title":"site","url":"https://bob.example"},{"title":"empty"}]}`))
	assert.True(t, p.Known)
	assert.Equal(t, "Bob", p.Name)
	assert.Equal(t, "", p.Bio)
	assert.Empty(t, p.Malformed)
	assert.Equal(t, []ProfileLink{{Title: "site", Url: "https://bob.example"}}, p.Links)

	p = DecodeProfile([]byte(`{"name":5,"bio":"hi","image":null,"links":"nope"}`))
	assert.False(t, p.Known)
	assert.Equal(t, []string{"name", "links"}, p.Malformed)
	assert.Equal(t, "", p.Name)
	assert.Equal(t, "hi", p.Bio)
	assert.Empty(t, p.Links)

	unknown := DecodeProfile([]byte(`nope`))
	assert.False(t, unknown.Known)
	assert.Empty(t, unknown.Links)
}

func TestFriendDisplayName(t *testing.T) {
	f := Friend{Key: pubky.Key("abcdefghijklmnopqrstuvwxyz")}
	assert.Equal(t, "abcdefghijklmnop...", f.DisplayName())

	f.Profile.Name = "Carol"
	assert.Equal(t, "Carol", f.DisplayName())
}

func TestSortNewestFirst(t *testing.T) {
	ms := []*Marker{
		{Id: "a", Timestamp: 1},
		{Id: "c", Timestamp: 3},
		{Id: "b", Timestamp: 3},
	}
	SortNewestFirst(ms)
	assert.Equal(t, "b", ms[0].Id)
	assert.Equal(t, "c", ms[1].Id)
	assert.Equal(t, "a", ms[2].Id)
}

func TestClone(t *testing.T) {
	m := &Marker{Id: "a", Photos: []string{"p"}}
	c := m.Clone()
	c.Photos[0] = "q"
	assert.Equal(t, "p", m.Photos[0])

	empty := (&Marker{Id: "b"}).Clone()
	assert.NotNil(t, empty.Photos)
}
