package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"geostories.app/core/pubky"
)

type Marker struct {
	Id          string    `json:"id"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   int64     `json:"timestamp"`
	Photos      []string  `json:"photos"`
	Author      pubky.Key `json:"author"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (m *Marker) Location() Location {
	return Location{Lat: m.Latitude, Lon: m.Longitude}
}

func (m *Marker) Created() time.Time {
	return time.UnixMilli(m.Timestamp)
}

func (m *Marker) URL() string {
	return m.Author.MarkerURL(m.Id)
}

func (m *Marker) PhotoURLs() []string {
	urls := make([]string, 0, len(m.Photos))
	for _, p := range m.Photos {
		urls = append(urls, m.Author.PhotoURL(m.Id, p))
	}
	return urls
}

func (m *Marker) OwnedBy(k pubky.Key) bool {
	return k != "" && m.Author == k
}

// Clone returns a copy that does not share the photos slice.
func (m *Marker) Clone() *Marker {
	c := *m
	c.Photos = slices.Clone(m.Photos)
	if c.Photos == nil {
		c.Photos = []string{}
	}
	return &c
}

var ErrMalformedMarker = errors.New("malformed marker object")

// wire form with every field optional so presence can be checked
type markerWire struct {
	Id          *string   `json:"id"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Timestamp   *float64  `json:"timestamp"`
	Photos      []*string `json:"photos"`
	Author      *string   `json:"author"`
}

// DecodeMarker parses a stored marker object. id, author and coordinates
// are required; the remaining fields default to empty values.
func DecodeMarker(data []byte) (*Marker, error) {
	var w markerWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMarker, err)
	}

	switch {
	case w.Id == nil || *w.Id == "":
		return nil, fmt.Errorf("%w: missing id", ErrMalformedMarker)
	case w.Author == nil || *w.Author == "":
		return nil, fmt.Errorf("%w: missing author", ErrMalformedMarker)
	case w.Latitude == nil || w.Longitude == nil:
		return nil, fmt.Errorf("%w: missing coordinates", ErrMalformedMarker)
	}

	m := &Marker{
		Id:        *w.Id,
		Latitude:  *w.Latitude,
		Longitude: *w.Longitude,
		Author:    pubky.Key(*w.Author),
		Photos:    []string{},
	}
	if w.Title != nil {
		m.Title = *w.Title
	}
	if w.Description != nil {
		m.Description = *w.Description
	}
	if w.Timestamp != nil {
		m.Timestamp = int64(*w.Timestamp)
	}
	for _, p := range w.Photos {
		if p != nil && *p != "" {
			m.Photos = append(m.Photos, *p)
		}
	}

	return m, nil
}

// SortNewestFirst orders markers by descending timestamp, ties broken by id.
func SortNewestFirst(markers []*Marker) {
	slices.SortStableFunc(markers, func(a, b *Marker) int {
		if a.Timestamp != b.Timestamp {
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		}
		if a.Id < b.Id {
			return -1
		} else if a.Id > b.Id {
			return 1
		}
		return 0
	})
}
