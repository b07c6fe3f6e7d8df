package ccsession

import (
	"encoding/json"
	"strings"

	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/httpapi"
	"github.com/Harshit-Bhuju/CultureConnect-sub001/internal/stores"
)

// Normalizer converts raw server payloads into [User] values. It is pure
// and idempotent: feeding a normalized user's fields back through produces
// the same result, so callers may re-normalize defensively.
type Normalizer struct {
	assetBase     string
	defaultAvatar string
}

// NewNormalizer builds a Normalizer. assetBaseURL is the absolute root for
// relative avatar paths; defaultAvatar is the avatar used when the server
// sends none (relative paths are resolved against assetBaseURL).
func NewNormalizer(assetBaseURL, defaultAvatar string) *Normalizer {
	return &Normalizer{
		assetBase:     strings.TrimRight(strings.TrimSpace(assetBaseURL), "/"),
		defaultAvatar: strings.TrimSpace(defaultAvatar),
	}
}

// User normalizes a raw payload. Missing or junk optional fields collapse
// to their defaults; an unrecognized role collapses to RoleUser.
func (n *Normalizer) User(raw RawUser) User {
	avatar := raw.Avatar
	if missingField(avatar) {
		// Google sign-in payloads carry the photo under "picture".
		avatar = raw.Picture
	}

	return User{
		ID:        httpapi.StringID(raw.ID),
		Email:     stores.CanonicalEmail(raw.Email),
		Name:      displayName(raw),
		Role:      parseRole(raw.Role),
		SellerID:  httpapi.StringID(raw.SellerID),
		TeacherID: httpapi.StringID(raw.TeacherID),
		Avatar:    n.avatarURL(avatar),
		Location:  flattenLocation(raw.Location),
		Gender:    cleanOptional(raw.Gender),
	}
}

func displayName(raw RawUser) string {
	if name := cleanOptional(raw.Name); name != "" {
		return name
	}
	return cleanOptional(raw.FullName)
}

func parseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(RoleAdmin):
		return RoleAdmin
	case string(RoleDelivery):
		return RoleDelivery
	default:
		return RoleUser
	}
}

// avatarURL resolves an avatar reference to an absolute URL. Empty and the
// junk literals fall back to the default avatar; relative paths are joined
// to the asset base; absolute URLs pass through untouched, which is what
// makes a second application a no-op.
func (n *Normalizer) avatarURL(raw string) string {
	avatar := raw
	if missingField(avatar) {
		avatar = n.defaultAvatar
	}
	if avatar == "" {
		return ""
	}
	if isAbsoluteURL(avatar) {
		return avatar
	}
	if n.assetBase == "" {
		return avatar
	}
	return n.assetBase + "/" + strings.TrimLeft(avatar, "/")
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "data:")
}

// flattenLocation renders the location field as display text. The backend
// sends either a plain string or a structured province/district/
// municipality/ward object; both collapse to one comma-separated line.
func flattenLocation(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return cleanOptional(asString)
	}

	var loc httpapi.RawLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		return ""
	}

	municipality := cleanOptional(loc.Municipality)
	if ward := httpapi.StringID(loc.Ward); ward != "" && municipality != "" {
		municipality += "-" + ward
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{municipality, cleanOptional(loc.District), cleanOptional(loc.Province)} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func cleanOptional(s string) string {
	s = strings.TrimSpace(s)
	if s == "null" || s == "undefined" {
		return ""
	}
	return s
}

func missingField(s string) bool {
	return cleanOptional(s) == ""
}
