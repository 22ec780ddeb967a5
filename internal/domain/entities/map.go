package entities

// FacilityLocation is a facility's entry in the address book
type FacilityLocation struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// MapMarker is one pin on the frontend map. JSON names follow the chat
// frontend's contract.
type MapMarker struct {
	Name      string  `json:"nome"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Address   string  `json:"endereco"`
	Image     string  `json:"imagem,omitempty"`
}

// LocationResult is either MapData or NoLocatedFacilities
type LocationResult interface {
	isLocationResult()
}

// MapData centres the map on the first marker
type MapData struct {
	Center  [2]float64  `json:"center"`
	Markers []MapMarker `json:"markers"`
}

// NoLocatedFacilities means none of the translated facilities had geo data
type NoLocatedFacilities struct {
	Facilities []string
}

func (MapData) isLocationResult()             {}
func (NoLocatedFacilities) isLocationResult() {}
