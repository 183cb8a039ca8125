package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"geostories.app/core/app"
	"geostories.app/core/pubky"
	"geostories.app/core/rbac"
	"geostories.app/core/registry"
	"geostories.app/core/session"
)

type APIError struct {
	Tag     string `json:"error"`
	Message string `json:"message"`
}

func (x APIError) Error() string {
	if x.Message != "" {
		return fmt.Sprintf("%s: %s", x.Tag, x.Message)
	}
	return x.Tag
}

func NewAPIError(opts ...ErrOpt) APIError {
	x := APIError{}
	for _, o := range opts {
		o(&x)
	}

	return x
}

type ErrOpt = func(xerr *APIError)

func WithTag(tag string) ErrOpt {
	return func(xerr *APIError) {
		xerr.Tag = tag
	}
}

func WithMessage[S ~string](s S) ErrOpt {
	return func(xerr *APIError) {
		xerr.Message = string(s)
	}
}

func WithError(e error) ErrOpt {
	return func(xerr *APIError) {
		xerr.Message = e.Error()
	}
}

var NoSessionError = NewAPIError(
	WithTag("NoSession"),
	WithMessage("no session configured"),
)

// mapping from sentinel errors to tag and status; first match wins
var table = []struct {
	err    error
	tag    string
	status int
}{
	{registry.ErrPermissionDenied, "PermissionDenied", http.StatusForbidden},
	{session.ErrCapability, "Capability", http.StatusForbidden},
	{registry.ErrNoSession, "NoSession", http.StatusBadRequest},
	{registry.ErrNoLocation, "NoLocation", http.StatusBadRequest},
	{registry.ErrValidation, "Validation", http.StatusBadRequest},
	{app.ErrUnknownCommand, "UnknownCommand", http.StatusBadRequest},
	{app.ErrUnknownTab, "UnknownTab", http.StatusBadRequest},
	{pubky.ErrInvalidKey, "InvalidKey", http.StatusBadRequest},
	{rbac.ErrInvalidCapability, "InvalidCapability", http.StatusBadRequest},
	{registry.ErrNotFound, "NotFound", http.StatusNotFound},
	{app.ErrNoMarkers, "NotFound", http.StatusNotFound},
	{registry.ErrRemote, "Remote", http.StatusBadGateway},
}

// FromError classifies err into an API error and its http status.
func FromError(err error) (APIError, int) {
	for _, e := range table {
		if errors.Is(err, e.err) {
			return NewAPIError(WithTag(e.tag), WithError(err)), e.status
		}
	}
	return NewAPIError(WithTag("Internal"), WithError(err)), http.StatusInternalServerError
}

func Write(w http.ResponseWriter, e APIError, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(e)
}

// WriteErr writes err with the status FromError picks.
func WriteErr(w http.ResponseWriter, err error) {
	e, status := FromError(err)
	Write(w, e, status)
}
