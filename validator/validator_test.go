package validator

import (
	"strings"
	"testing"

	"geostories.app/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMarker(t *testing.T) {
	tests := []struct {
		name    string
		marker  models.Marker
		wantErr string
	}{
		{
			name:   "valid",
			marker: models.Marker{Title: "Jazz Fest", Latitude: 29.9511, Longitude: -90.0715},
		},
		{
			name:    "empty title",
			marker:  models.Marker{Title: "  "},
			wantErr: "title is empty",
		},
		{
			name:    "markup only title",
			marker:  models.Marker{Title: "<b></b>"},
			wantErr: "title is empty",
		},
		{
			name:    "long title",
			marker:  models.Marker{Title: strings.Repeat("a", MaxTitleLength+1)},
			wantErr: "title too long",
		},
		{
			name:    "long description",
			marker:  models.Marker{Title: "ok", Description: strings.Repeat("a", MaxDescriptionLength+1)},
			wantErr: "description too long",
		},
		{
			name:    "latitude",
			marker:  models.Marker{Title: "ok", Latitude: 90.5},
			wantErr: "latitude",
		},
		{
			name:    "longitude",
			marker:  models.Marker{Title: "ok", Longitude: -180.01},
			wantErr: "longitude",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.marker
			err := v.ValidateMarker(&m)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateMarker_KeepsText(t *testing.T) {
	v := New()
	m := models.Marker{
		Title:       "  Rock & Roll ",
		Description: `Said "hi" <3`,
	}
	require.NoError(t, v.ValidateMarker(&m))
	assert.Equal(t, "Rock & Roll", m.Title)
	assert.Equal(t, `Said "hi" <3`, m.Description)

	// the limit counts characters as typed, not their html escapes
	m = models.Marker{Title: strings.Repeat("&", 40)}
	assert.NoError(t, v.ValidateMarker(&m))
}

func TestSanitize(t *testing.T) {
	v := New()
	assert.Equal(t, "Jazz Fest", v.Sanitize(`<script>alert(1)</script>Jazz <b>Fest</b>`))
	assert.Equal(t, "great music", v.Sanitize(`<img src=x onerror=alert(1)>great music`))
	assert.Equal(t, "Rock &amp; Roll", v.Sanitize("Rock & Roll"))
}
