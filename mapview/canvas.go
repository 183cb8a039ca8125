package mapview

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"github.com/peterstace/simplefeatures/geom"
)

// Canvas is an in-memory Surface that can be exported as GeoJSON.
type Canvas struct {
	mu        sync.RWMutex
	pins      map[string]Pin
	selection *models.Location
}

var _ Surface = &Canvas{}

func NewCanvas() *Canvas {
	return &Canvas{pins: make(map[string]Pin)}
}

func (c *Canvas) Place(pin Pin) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pins[pin.MarkerID] = pin
}

func (c *Canvas) Remove(markerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pins, markerID)
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.pins)
}

// Select shows the temporary selection pin at loc; nil hides it.
func (c *Canvas) Select(loc *models.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = loc
}

func (c *Canvas) Pin(markerID string) (Pin, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.pins[markerID]
	return p, ok
}

// Pins returns every pin, newest first.
func (c *Canvas) Pins() []Pin {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pins := make([]Pin, 0, len(c.pins))
	for _, p := range c.pins {
		pins = append(pins, p)
	}
	slices.SortFunc(pins, func(a, b Pin) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		}
		return strings.Compare(a.MarkerID, b.MarkerID)
	})
	return pins
}

func (c *Canvas) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pins)
}

// Bounds is a lat/lon box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

func point(lat, lon float64) (geom.Point, error) {
	pt, err := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: lon, Y: lat}})
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid point (%v, %v): %w", lat, lon, err)
	}
	return pt, nil
}

// Bounds returns the envelope of the pins by author, or of every pin when
// author is empty. Pins whose coordinates do not form a valid point are
// left out. ok is false when there is nothing to fit.
func (c *Canvas) Bounds(author pubky.Key) (Bounds, bool) {
	var pts []geom.Point
	for _, p := range c.Pins() {
		if author != "" && p.Author != author {
			continue
		}
		pt, err := point(p.Lat, p.Lon)
		if err != nil {
			continue
		}
		pts = append(pts, pt)
	}
	if len(pts) == 0 {
		return Bounds{}, false
	}

	env := geom.NewMultiPoint(pts).Envelope()
	min, max, ok := env.MinMaxXYs()
	if !ok {
		return Bounds{}, false
	}
	return Bounds{
		South: min.Y,
		West:  min.X,
		North: max.Y,
		East:  max.X,
	}, true
}

// GeoJSON renders the pins as a FeatureCollection. The selection pin, when
// set, is included with the id "selection".
func (c *Canvas) GeoJSON() ([]byte, error) {
	pins := c.Pins()

	fc := make(geom.GeoJSONFeatureCollection, 0, len(pins)+1)
	for _, p := range pins {
		pt, err := point(p.Lat, p.Lon)
		if err != nil {
			return nil, fmt.Errorf("pin %s: %w", p.MarkerID, err)
		}
		fc = append(fc, geom.GeoJSONFeature{
			ID:       p.MarkerID,
			Geometry: pt.AsGeometry(),
			Properties: map[string]interface{}{
				"title":       p.Title,
				"description": p.Description,
				"popup":       p.Popup(),
				"timestamp":   p.Timestamp,
				"author":      p.Author.String(),
				"color":       p.Color,
				"icon":        p.Icon,
				"iconUrl":     IconURL(p.Icon),
				"owned":       p.Owned,
			},
		})
	}

	c.mu.RLock()
	sel := c.selection
	c.mu.RUnlock()
	if sel != nil {
		pt, err := point(sel.Lat, sel.Lon)
		if err != nil {
			return nil, fmt.Errorf("selection: %w", err)
		}
		fc = append(fc, geom.GeoJSONFeature{
			ID:       "selection",
			Geometry: pt.AsGeometry(),
			Properties: map[string]interface{}{
				"icon":    SelectionIcon,
				"iconUrl": IconURL(SelectionIcon),
			},
		})
	}

	return json.Marshal(fc)
}
