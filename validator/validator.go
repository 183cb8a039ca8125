package validator

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"geostories.app/core/models"
	"github.com/microcosm-cc/bluemonday"
)

const (
	MaxTitleLength       = 140
	MaxDescriptionLength = 5000
)

var ErrValidation = errors.New("validation failed")

type Validator struct {
	policy *bluemonday.Policy
}

func New() *Validator {
	return &Validator{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize strips all markup from s and escapes what is left, for
// rendering user text into html.
func (v *Validator) Sanitize(s string) string {
	return strings.TrimSpace(v.policy.Sanitize(s))
}

func (v *Validator) ValidateLocation(loc models.Location) error {
	var err error

	if math.IsNaN(loc.Lat) || loc.Lat < -90 || loc.Lat > 90 {
		err = errors.Join(err, fmt.Errorf("latitude %v out of range", loc.Lat))
	}

	if math.IsNaN(loc.Lon) || loc.Lon < -180 || loc.Lon > 180 {
		err = errors.Join(err, fmt.Errorf("longitude %v out of range", loc.Lon))
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

// ValidateMarker checks the user supplied fields of m. Title and
// description are trimmed and otherwise stored as written; markup is only
// stripped to decide whether anything readable is left.
func (v *Validator) ValidateMarker(m *models.Marker) error {
	var err error

	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)

	if v.Sanitize(m.Title) == "" {
		err = errors.Join(err, fmt.Errorf("title is empty"))
	}

	if utf8.RuneCountInString(m.Title) > MaxTitleLength {
		err = errors.Join(err, fmt.Errorf("title too long"))
	}

	if utf8.RuneCountInString(m.Description) > MaxDescriptionLength {
		err = errors.Join(err, fmt.Errorf("description too long"))
	}

	if err != nil {
		err = fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return errors.Join(err, v.ValidateLocation(m.Location()))
}
