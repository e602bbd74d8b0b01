package models

import "time"

// Persona is the API representation of a stored persona profile.
type Persona struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	Budget               float64            `json:"budget"`
	MaxTravelTimeMinutes float64            `json:"maxTravelTimeMinutes"`
	Abilities            []string           `json:"abilities,omitempty"`
	Capabilities         []string           `json:"capabilities,omitempty"`
	Preferences          []string           `json:"preferences,omitempty"`
	Attributes           map[string]float64 `json:"attributes,omitempty"`
	TripNeeds            map[string]int     `json:"tripNeeds,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`
}

// PagedPersonas is a paginated persona list.
type PagedPersonas struct {
	Items []Persona `json:"items"`
	Meta  PagedMeta `json:"meta"`
}

// PagedMeta carries pagination metadata.
type PagedMeta struct {
	Limit      int     `json:"limit"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// Health is the operational health response.
type Health struct {
	Status  string                 `json:"status"`
	Time    time.Time              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}
