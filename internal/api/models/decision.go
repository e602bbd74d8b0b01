// Package models provides API request and response types.
package models

// PersonaInput is an inline persona definition in API requests.
type PersonaInput struct {
	Name                 string             `json:"name"`
	Budget               float64            `json:"budget"`
	MaxTravelTimeMinutes float64            `json:"maxTravelTimeMinutes"`
	Abilities            []string           `json:"abilities,omitempty"`
	Capabilities         []string           `json:"capabilities,omitempty"`
	Preferences          []string           `json:"preferences,omitempty"`
	Attributes           map[string]float64 `json:"attributes,omitempty"`
	TripNeeds            map[string]int     `json:"tripNeeds,omitempty"`
}

// TripInput describes the trip to evaluate. DistanceKm is a pointer so an
// explicit zero-distance trip is distinguishable from an omitted distance,
// which is resolved through the trip computer instead.
type TripInput struct {
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	DistanceKm     *float64 `json:"distanceKm,omitempty"`
	RefTimeMinutes float64  `json:"refTimeMinutes,omitempty"`
	Purpose        string   `json:"purpose,omitempty"`
	TimeOfDay      string   `json:"timeOfDay,omitempty"`
}

// Weights overrides the engine's utility weights for one request.
type Weights struct {
	Cost float64 `json:"cost"`
	Time float64 `json:"time"`
}

// DecisionRequest is the request for POST /v1/decisions:evaluate.
// Exactly one of PersonaID and Persona must be set.
type DecisionRequest struct {
	PersonaID        *string       `json:"personaId,omitempty"`
	Persona          *PersonaInput `json:"persona,omitempty"`
	Trip             TripInput     `json:"trip"`
	Weights          *Weights      `json:"weights,omitempty"`
	ModesUnavailable []string      `json:"modesUnavailable,omitempty"`
}

// Evaluation is the per-alternative API result.
type Evaluation struct {
	Mode              string   `json:"mode"`
	Cost              float64  `json:"cost"`
	TravelTimeMinutes float64  `json:"travelTimeMinutes"`
	EnergyKJ          float64  `json:"energyKJ,omitempty"`
	Accessible        bool     `json:"accessible"`
	Affordable        bool     `json:"affordable"`
	Timely            bool     `json:"timely"`
	Decent            bool     `json:"decent"`
	Score             float64  `json:"score"`
	Reasons           []string `json:"reasons,omitempty"`
}

// DecisionResponse is the response for POST /v1/decisions:evaluate.
type DecisionResponse struct {
	PersonaID        string       `json:"personaId"`
	Origin           string       `json:"origin"`
	Destination      string       `json:"destination"`
	Chosen           *string      `json:"chosen,omitempty"`
	MobilityDeprived bool         `json:"mobilityDeprived"`
	Evaluations      []Evaluation `json:"evaluations"`
}
