package mapview

import (
	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"geostories.app/core/validator"
)

// Pin is the visual for one marker.
type Pin struct {
	MarkerID    string    `json:"markerId"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   int64     `json:"timestamp"`
	Author      pubky.Key `json:"author"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon"`
	Owned       bool      `json:"owned"`
}

// NewPin builds the pin for m as seen by viewer. color is the author's
// friend colour, or empty for the viewer's own markers.
func NewPin(m *models.Marker, color string, viewer pubky.Key) Pin {
	return Pin{
		MarkerID:    m.Id,
		Lat:         m.Latitude,
		Lon:         m.Longitude,
		Title:       m.Title,
		Description: m.Description,
		Timestamp:   m.Timestamp,
		Author:      m.Author,
		Color:       color,
		Icon:        IconColor(color),
		Owned:       m.OwnedBy(viewer),
	}
}

// Surface is whatever draws pins. Place replaces any pin with the same
// marker id.
type Surface interface {
	Place(pin Pin)
	Remove(markerID string)
	Clear()
}

var popupText = validator.New()

// Popup renders the pin's title and description as html for a map popup.
// Both are user text and are escaped here.
func (p Pin) Popup() string {
	html := "<strong>" + popupText.Sanitize(p.Title) + "</strong>"
	if d := popupText.Sanitize(p.Description); d != "" {
		html += "<br>" + d
	}
	return html
}
