package models

// GeoPoint is a GeoJSON point as persisted under a 2dsphere index.
// Coordinates are [longitude, latitude].
type GeoPoint struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
}

// NewGeoPoint builds a GeoJSON point from a longitude/latitude pair
func NewGeoPoint(longitude, latitude float64, address string) *GeoPoint {
	return &GeoPoint{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
		Address:     address,
	}
}

// LocationPayload is the location fragment accepted on create/update requests.
// Both coordinates must be present for the fragment to be applied.
type LocationPayload struct {
	Coordinates []float64 `json:"coordinates"`
	Address     string    `json:"address,omitempty"`
}

// UpdateLocationRequest defines the request body for a position update.
// Pointer fields distinguish an absent coordinate from a zero one.
type UpdateLocationRequest struct {
	Longitude *float64 `json:"longitude"`
	Latitude  *float64 `json:"latitude"`
	Address   string   `json:"address,omitempty"`
}

// Valid reports whether the payload carries a usable coordinate pair
func (l *LocationPayload) Valid() bool {
	return l != nil && len(l.Coordinates) == 2
}

// ToGeoPoint converts a valid payload into the persisted GeoJSON form
func (l *LocationPayload) ToGeoPoint() *GeoPoint {
	if !l.Valid() {
		return nil
	}
	return NewGeoPoint(l.Coordinates[0], l.Coordinates[1], l.Address)
}
