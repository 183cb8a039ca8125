package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"geostories.app/core/app"
	"geostories.app/core/models"
	"geostories.app/core/pubky"
	"geostories.app/core/registry"
)

func State(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, a.State())
	}
}

type locationRequest struct {
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Label string   `json:"label"`
}

// Location selects where the next marker goes. A label marks the location
// as a geocoder search result.
func Location(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req locationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(w, r, "Location", fmt.Errorf("%w: %w", registry.ErrValidation, err))
			return
		}
		if req.Lat == nil || req.Lon == nil {
			fail(w, r, "Location", fmt.Errorf("%w: lat and lon are required", registry.ErrValidation))
			return
		}

		cmd := app.Command{
			Name:     app.CmdSelectLocation,
			Location: &models.Location{Lat: *req.Lat, Lon: *req.Lon},
		}
		if req.Label != "" {
			cmd.Name = app.CmdGeocodeResult
			cmd.Label = req.Label
		}

		res, err := a.Dispatch(r.Context(), cmd)
		if err != nil {
			fail(w, r, "Location", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

type tabRequest struct {
	Tab app.Tab `json:"tab"`
}

func Tab(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tabRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			fail(w, r, "Tab", fmt.Errorf("%w: %w", registry.ErrValidation, err))
			return
		}
		res, err := a.Dispatch(r.Context(), app.Command{Name: app.CmdSwitchTab, Tab: req.Tab})
		if err != nil {
			fail(w, r, "Tab", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tab": res})
	}
}

func MapGeoJSON(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := a.GeoJSON()
		if err != nil {
			fail(w, r, "MapGeoJSON", err)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(data)
	}
}

// MapBounds reports the box around every pin, or around ?author='s pins.
func MapBounds(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var author pubky.Key
		if v := r.URL.Query().Get("author"); v != "" {
			k, err := pubky.ParseKey(v)
			if err != nil {
				fail(w, r, "MapBounds", err)
				return
			}
			author = k
		}

		b, ok := a.Bounds(author)
		if !ok {
			fail(w, r, "MapBounds", app.ErrNoMarkers)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}
