package handler

import (
	"net/http"

	"geostories.app/core/app"
	"geostories.app/core/log"
	"geostories.app/core/mapview"
	"geostories.app/core/models"
	"geostories.app/core/pagination"
	"geostories.app/core/pubky"
	"github.com/go-chi/chi/v5"
)

type markerList struct {
	Author  pubky.Key        `json:"author,omitempty"`
	Total   int              `json:"total"`
	Markers []*models.Marker `json:"markers"`
}

// Markers lists the markers currently on the map, newest first. It never
// reloads; see MarkersLoad.
func Markers(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := a.Markers()
		writeJSON(w, http.StatusOK, markerList{
			Author:  a.State().Viewing,
			Total:   len(all),
			Markers: pagination.Slice(all, pagination.FromContext(r.Context())),
		})
	}
}

// MarkersLoad replaces the map contents with the markers of ?author=, or
// of the session identity.
func MarkersLoad(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd := app.Command{Name: app.CmdLoadMarkers}
		if v := r.URL.Query().Get("author"); v != "" {
			k, err := pubky.ParseKey(v)
			if err != nil {
				fail(w, r, "MarkersLoad", err)
				return
			}
			cmd.Author = k
		}

		res, err := a.Dispatch(r.Context(), cmd)
		if err != nil {
			fail(w, r, "MarkersLoad", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// markerView is a marker with the pin it is drawn as.
type markerView struct {
	*models.Marker
	Pin *mapview.Pin `json:"pin,omitempty"`
}

func Marker(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := a.Marker(chi.URLParam(r, "id"))
		if err != nil {
			fail(w, r, "Marker", err)
			return
		}
		v := markerView{Marker: m}
		if pin, ok := a.Canvas().Pin(m.Id); ok {
			v.Pin = &pin
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// createdMarker is the create response. PhotoError is set when the marker
// was stored but its photo upload failed; retrying the create would add a
// second marker, so clients should update this one instead.
type createdMarker struct {
	*models.Marker
	PhotoError string `json:"photoError,omitempty"`
}

func MarkerCreate(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseMarkerForm(r)
		if err != nil {
			fail(w, r, "MarkerCreate", err)
			return
		}

		res, err := a.Dispatch(r.Context(), app.Command{
			Name:        app.CmdCreateMarker,
			Title:       f.Title,
			Description: f.Description,
			Location:    f.Location,
			Photo:       f.Photo,
		})
		m, _ := res.(*models.Marker)
		if m == nil {
			fail(w, r, "MarkerCreate", err)
			return
		}

		out := createdMarker{Marker: m}
		if err != nil {
			log.FromContext(r.Context()).Warn("marker stored without its photo", "id", m.Id, "err", err)
			out.PhotoError = err.Error()
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func MarkerUpdate(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseMarkerForm(r)
		if err != nil {
			fail(w, r, "MarkerUpdate", err)
			return
		}

		res, err := a.Dispatch(r.Context(), app.Command{
			Name:        app.CmdUpdateMarker,
			MarkerID:    chi.URLParam(r, "id"),
			Title:       f.Title,
			Description: f.Description,
			Location:    f.Location,
			Photo:       f.Photo,
		})
		if err != nil {
			fail(w, r, "MarkerUpdate", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func MarkerDelete(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, err := a.Dispatch(r.Context(), app.Command{
			Name:     app.CmdDeleteMarker,
			MarkerID: chi.URLParam(r, "id"),
		})
		if err != nil {
			fail(w, r, "MarkerDelete", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// MarkerEdit starts editing: the next create request updates this marker.
func MarkerEdit(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := a.Dispatch(r.Context(), app.Command{
			Name:     app.CmdEditMarker,
			MarkerID: chi.URLParam(r, "id"),
		})
		if err != nil {
			fail(w, r, "MarkerEdit", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func MarkerFocus(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := a.Dispatch(r.Context(), app.Command{
			Name:     app.CmdFocusMarker,
			MarkerID: chi.URLParam(r, "id"),
		})
		if err != nil {
			fail(w, r, "MarkerFocus", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
