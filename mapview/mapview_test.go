package mapview

import (
	"encoding/json"
	"math"
	"testing"

	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconColor(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"", IconBlue},
		{"#FF6B6B", IconRed},
		{"#ff6b6b", IconRed},
		{"#4ECDC4", IconGreen},
		{"#98D8C8", IconGreen},
		{"#FFA07A", IconOrange},
		{"#F7B731", IconYellow},
		{"#A29BFE", IconViolet},
		{"#123456", IconBlue},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IconColor(tt.hex), tt.hex)
	}
}

func TestNewPin(t *testing.T) {
	m := &models.Marker{Id: "m1", Latitude: 1, Longitude: 2, Title: "t", Author: "alice", Timestamp: 5}

	own := NewPin(m, "", "alice")
	assert.True(t, own.Owned)
	assert.Equal(t, IconBlue, own.Icon)

	friend := NewPin(m, "#5F27CD", "bob")
	assert.False(t, friend.Owned)
	assert.Equal(t, IconViolet, friend.Icon)
	assert.Equal(t, "#5F27CD", friend.Color)
}

func TestCanvas(t *testing.T) {
	c := NewCanvas()
	c.Place(Pin{MarkerID: "a", Lat: 10, Lon: 20, Author: "alice", Timestamp: 1})
	c.Place(Pin{MarkerID: "b", Lat: -5, Lon: 40, Author: "alice", Timestamp: 3})
	c.Place(Pin{MarkerID: "c", Lat: 50, Lon: -10, Author: "bob", Timestamp: 2})

	pins := c.Pins()
	require.Len(t, pins, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{pins[0].MarkerID, pins[1].MarkerID, pins[2].MarkerID})

	// replacing keeps one pin per marker
	c.Place(Pin{MarkerID: "a", Lat: 11, Lon: 20, Author: "alice", Timestamp: 1})
	assert.Equal(t, 3, c.Len())
	p, ok := c.Pin("a")
	require.True(t, ok)
	assert.Equal(t, 11.0, p.Lat)

	b, ok := c.Bounds("")
	require.True(t, ok)
	assert.Equal(t, Bounds{South: -5, West: -10, North: 50, East: 40}, b)

	b, ok = c.Bounds("alice")
	require.True(t, ok)
	assert.Equal(t, Bounds{South: -5, West: 20, North: 11, East: 40}, b)

	_, ok = c.Bounds(pubky.Key("carol"))
	assert.False(t, ok)

	c.Remove("a")
	_, ok = c.Pin("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Bounds("")
	assert.False(t, ok)
}

func TestCanvas_GeoJSON(t *testing.T) {
	c := NewCanvas()
	c.Place(NewPin(&models.Marker{Id: "m1", Latitude: 29.9511, Longitude: -90.0715, Title: "Jazz Fest", Author: "alice"}, "", "alice"))
	c.Select(&models.Location{Lat: 1, Lon: 2})

	data, err := c.GeoJSON()
	require.NoError(t, err)

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type        string    `json:"type"`
				Coordinates []float64 `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 2)

	f := fc.Features[0]
	assert.Equal(t, "m1", f.ID)
	assert.Equal(t, "Point", f.Geometry.Type)
	assert.Equal(t, []float64{-90.0715, 29.9511}, f.Geometry.Coordinates)
	assert.Equal(t, "Jazz Fest", f.Properties["title"])
	assert.Equal(t, "<strong>Jazz Fest</strong>", f.Properties["popup"])
	assert.Equal(t, IconBlue, f.Properties["icon"])
	assert.Equal(t, true, f.Properties["owned"])

	assert.Equal(t, "selection", fc.Features[1].ID)
	assert.Equal(t, SelectionIcon, fc.Features[1].Properties["icon"])
}

func TestCanvas_InvalidCoordinates(t *testing.T) {
	c := NewCanvas()
	c.Place(Pin{MarkerID: "good", Lat: 10, Lon: 20, Author: "alice", Timestamp: 1})
	c.Place(Pin{MarkerID: "nan", Lat: math.NaN(), Lon: 20, Author: "alice", Timestamp: 2})
	c.Place(Pin{MarkerID: "inf", Lat: 10, Lon: math.Inf(1), Author: "bob", Timestamp: 3})

	b, ok := c.Bounds("")
	require.True(t, ok)
	assert.Equal(t, Bounds{South: 10, West: 20, North: 10, East: 20}, b)

	_, ok = c.Bounds("bob")
	assert.False(t, ok)

	_, err := c.GeoJSON()
	assert.Error(t, err)

	c.Remove("nan")
	c.Remove("inf")
	c.Select(&models.Location{Lat: math.NaN(), Lon: 0})
	_, err = c.GeoJSON()
	assert.ErrorContains(t, err, "selection")

	c.Select(nil)
	_, err = c.GeoJSON()
	assert.NoError(t, err)
}

func TestPin_Popup(t *testing.T) {
	p := Pin{Title: "Rock & Roll", Description: `Said "hi" <script>x</script>`}
	assert.Equal(t, "<strong>Rock &amp; Roll</strong><br>Said &#34;hi&#34;", p.Popup())

	p = Pin{Title: "Cafe"}
	assert.Equal(t, "<strong>Cafe</strong>", p.Popup())
}
