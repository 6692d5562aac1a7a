package dto

type PinRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

type RouteNameRequest struct {
	Name string `json:"name"`
}

type RouteNameResponse struct {
	Name      string `json:"name"`
	Truncated bool   `json:"truncated"`
}

type RestoreRequest struct {
	Fragment string `json:"fragment"`
}

type ShareResponse struct {
	Fragment string `json:"fragment"`
}

type PinResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type AddressResponse struct {
	Status  string `json:"status"`
	Address string `json:"address,omitempty"`
}

type SessionResponse struct {
	ID                 string            `json:"id"`
	Pins               []PinResponse     `json:"pins"`
	Addresses          []AddressResponse `json:"addresses"`
	IsRoundTrip        bool              `json:"is_round_trip"`
	ShowSteepHighlight bool              `json:"show_steep_highlight"`
	RouteName          string            `json:"route_name"`
	NameOverridden     bool              `json:"name_overridden"`
	CanUndo            bool              `json:"can_undo"`
	Computing          bool              `json:"computing"`
	RouteError         string            `json:"route_error,omitempty"`
}

type ImportResponse struct {
	Imported  int  `json:"imported"`
	Truncated bool `json:"truncated"`
}
