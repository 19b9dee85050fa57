package domain

import "strings"

// UnknownDistance marks results whose provider did not report a distance.
// They sort after every known distance.
const UnknownDistance = -1

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Address struct {
	Formatted string `json:"formatted,omitempty"`
	Street    string `json:"street,omitempty"`
	District  string `json:"district,omitempty"`
	City      string `json:"city,omitempty"`
}

// Line renders the address the way the result cards do: the formatted
// address when present, otherwise the non-empty parts joined by commas.
func (a Address) Line() string {
	if a.Formatted != "" {
		return a.Formatted
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.District, a.City} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type SourceID struct {
	Provider   string `json:"provider"`
	ExternalID string `json:"external_id"`
}

func (s SourceID) Key() string {
	return s.Provider + ":" + s.ExternalID
}

// SearchResultItem is one geosearch hit. Produced by the geosearch
// collaborator and treated as read-only from then on.
type SearchResultItem struct {
	Source         SourceID    `json:"source"`
	Name           string      `json:"name"`
	Category       string      `json:"category,omitempty"`
	Coordinates    Coordinates `json:"coordinates"`
	DistanceMeters float64     `json:"distance_meters"`
	Rating         *Rating     `json:"rating,omitempty"`
	Address        Address     `json:"address"`
}

// Fingerprint identifies one search response's item set. Two responses
// with equal fingerprints are "the same list" for dedup purposes.
func Fingerprint(items []SearchResultItem) string {
	keys := make([]string, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Source.Key())
	}
	return strings.Join(keys, "|")
}

type SearchFilters struct {
	Distance int    `json:"distance"`
	Category string `json:"category,omitempty"`
	OpenNow  bool   `json:"openNow"`
}

// SearchRequest is the query sent to the geosearch collaborator.
type SearchRequest struct {
	Lat      float64
	Lng      float64
	Radius   int
	Category string
	Query    string
	OpenNow  bool
	Page     int
	Limit    int
}
