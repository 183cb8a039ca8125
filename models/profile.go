package models

import (
	"encoding/json"
	"slices"

	"geostories.app/core/pubky"
)

type ProfileLink struct {
	Title string `json:"title"`
	Url   string `json:"url"`
}

// Profile is the read-only pubky.app profile of an identity. Known is false
// when the profile could not be fetched or decoded, or when any field is
// present with the wrong shape; Malformed names those fields. Absent fields
// are simply empty.
type Profile struct {
	Known     bool          `json:"known"`
	Name      string        `json:"name,omitempty"`
	Bio       string        `json:"bio,omitempty"`
	Image     string        `json:"image,omitempty"`
	Links     []ProfileLink `json:"links"`
	Malformed []string      `json:"malformed,omitempty"`
}

func UnknownProfile() Profile {
	return Profile{Links: []ProfileLink{}}
}

func DecodeProfile(data []byte) Profile {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return UnknownProfile()
	}

	p := Profile{Links: []ProfileLink{}}
	for field, dst := range map[string]*string{"name": &p.Name, "bio": &p.Bio, "image": &p.Image} {
		if !decodeString(raw[field], dst) {
			p.Malformed = append(p.Malformed, field)
		}
	}
	slices.Sort(p.Malformed)

	if msg, ok := raw["links"]; ok && !isNull(msg) {
		var links []json.RawMessage
		if err := json.Unmarshal(msg, &links); err != nil {
			p.Malformed = append(p.Malformed, "links")
		}
		for _, l := range links {
			var link ProfileLink
			if err := json.Unmarshal(l, &link); err == nil && link.Url != "" {
				p.Links = append(p.Links, link)
			}
		}
	}

	p.Known = len(p.Malformed) == 0
	return p
}

func isNull(msg json.RawMessage) bool {
	return len(msg) == 0 || string(msg) == "null"
}

// decodeString fills dst from msg. It reports false when msg is present but
// not a string.
func decodeString(msg json.RawMessage, dst *string) bool {
	if isNull(msg) {
		return true
	}
	return json.Unmarshal(msg, dst) == nil
}

// Friend is a followed identity that has published at least one marker.
type Friend struct {
	Key         pubky.Key `json:"pubky"`
	MarkerCount int       `json:"markerCount"`
	Profile     Profile   `json:"profile"`
	Color       string    `json:"color"`
}

// DisplayName is the profile name, or the shortened key when unknown.
func (f *Friend) DisplayName() string {
	if f.Profile.Name != "" {
		return f.Profile.Name
	}
	return f.Key.Short()
}
