package dto

type SegmentResponse struct {
	StartKm         float64 `json:"start_km"`
	EndKm           float64 `json:"end_km"`
	AverageGradient float64 `json:"average_gradient"`
	IsSteep         bool    `json:"is_steep"`
	LengthMeters    float64 `json:"length_meters"`
}

type ProfilePointResponse struct {
	DistanceMeters float64 `json:"distance_meters"`
	Elevation      float64 `json:"elevation"`
	IsSteep        bool    `json:"is_steep"`
}

type RouteResponse struct {
	DistanceMeters    float64                `json:"distance_meters"`
	DistanceLabel     string                 `json:"distance_label"`
	ElevationGainM    float64                `json:"elevation_gain_m"`
	SteepUphillMeters float64                `json:"steep_uphill_meters"`
	Segments          []SegmentResponse      `json:"segments"`
	Profile           []ProfilePointResponse `json:"profile"`
}
