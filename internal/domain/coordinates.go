package domain

// Coordinates locate a customer or the hub once an address is geocoded.
type Coordinates struct {
	Lon float64
	Lat float64
}

// CoordsToList returns [lon, lat], the order routing APIs expect.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }
