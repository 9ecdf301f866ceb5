// Package tenant models the organization (church) a user is working within.
package tenant

import (
	"errors"
	"strings"
)

// State is the tenant selection state. There is no transition back to Unselected.
type State string

const (
	StateUnselected State = "unselected"
	StateSelected   State = "selected"
)

// Organization is the public organization record returned by GET /organizations/public.
type Organization struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
	LogoURL *string `json:"logo_url,omitempty"`
}

// Selection is the currently selected organization.
type Selection struct {
	OrganizationID int64  `json:"organization_id"`
	Slug           string `json:"slug"`
	DisplayName    string `json:"display_name"`
}

var (
	errInvalidID   = errors.New("organization id must be positive")
	errMissingSlug = errors.New("organization slug is required")
)

// NewSelection validates and builds a selection. A blank display name is
// resolved through the static directory.
func NewSelection(id int64, slug, displayName string) (Selection, error) {
	slug = strings.TrimSpace(slug)
	if id <= 0 {
		return Selection{}, errInvalidID
	}
	if slug == "" {
		return Selection{}, errMissingSlug
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = DisplayName(slug)
	}
	return Selection{OrganizationID: id, Slug: slug, DisplayName: name}, nil
}

// FromOrganization builds a selection from a listed organization.
func FromOrganization(org Organization) (Selection, error) {
	return NewSelection(org.ID, org.Slug, org.Name)
}

// FallbackDisplayName is used for slugs missing from the directory.
const FallbackDisplayName = "Sua Igreja"

var directory = map[string]string{
	"pibg-greenville":    "PIBG - Primeira Igreja Brasileira de Greenville",
	"comunidade-cristã":  "Comunidade Cristã do Brasil",
	"templo-pentecostal": "Templo Pentecostal Brasileiro",
}

// DisplayName looks a slug up in the static directory.
func DisplayName(slug string) string {
	if name, ok := directory[slug]; ok {
		return name
	}
	return FallbackDisplayName
}

// Find returns the organization with slug from orgs.
func Find(orgs []Organization, slug string) (Organization, bool) {
	for _, o := range orgs {
		if o.Slug == slug {
			return o, true
		}
	}
	return Organization{}, false
}

// OrganizationList is the data of GET /organizations/public.
type OrganizationList struct {
	Results []Organization `json:"results"`
}
