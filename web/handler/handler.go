package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"geostories.app/core/log"
	"geostories.app/core/models"
	"geostories.app/core/registry"
	"geostories.app/core/web/apierr"
	"github.com/dustin/go-humanize"
)

const MaxPhotoSize = 10 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func fail(w http.ResponseWriter, r *http.Request, handler string, err error) {
	e, status := apierr.FromError(err)
	l := log.FromContext(r.Context()).With("handler", handler)
	if status >= 500 {
		l.Error("request failed", "status", status, "err", err)
	} else {
		l.Debug("request rejected", "status", status, "err", err)
	}
	apierr.Write(w, e, status)
}

// markerForm is the body of create and update requests.
type markerForm struct {
	Title       string
	Description string
	Location    *models.Location
	Photo       []byte
}

func parseMarkerForm(r *http.Request) (markerForm, error) {
	var f markerForm

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxPhotoSize); err != nil {
			return f, fmt.Errorf("%w: %w", registry.ErrValidation, err)
		}
	} else if err := r.ParseForm(); err != nil {
		return f, fmt.Errorf("%w: %w", registry.ErrValidation, err)
	}

	f.Title = r.FormValue("title")
	f.Description = r.FormValue("description")

	lat, lon := r.FormValue("latitude"), r.FormValue("longitude")
	if lat != "" || lon != "" {
		loc, err := parseLocation(lat, lon)
		if err != nil {
			return f, err
		}
		f.Location = loc
	}

	file, header, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("%w: photo: %w", registry.ErrValidation, err)
	}
	defer file.Close()

	if header.Size > MaxPhotoSize {
		return f, fmt.Errorf("%w: photo is %s, limit is %s", registry.ErrValidation,
			humanize.IBytes(uint64(header.Size)), humanize.IBytes(MaxPhotoSize))
	}
	f.Photo, err = io.ReadAll(io.LimitReader(file, MaxPhotoSize+1))
	if err != nil {
		return f, fmt.Errorf("reading photo: %w", err)
	}
	return f, nil
}

func parseLocation(lat, lon string) (*models.Location, error) {
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude %q", registry.ErrValidation, lat)
	}
	lo, err := strconv.ParseFloat(lon, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude %q", registry.ErrValidation, lon)
	}
	return &models.Location{Lat: la, Lon: lo}, nil
}
