package dto

type PlaceResponse struct {
	Name      string  `json:"name"`
	PlaceName string  `json:"place_name"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

type SearchResponse struct {
	Places []PlaceResponse `json:"places"`
}
