package passbook

// Location is a place where the pass is relevant.
// Coordinates are exact decimals so they serialize without float artifacts.
type Location struct {
	Latitude     Decimal
	Longitude    Decimal
	Altitude     Decimal
	RelevantText string
}

// NewLocation returns a location at sea level.
func NewLocation(latitude, longitude Decimal) Location {
	return Location{Latitude: latitude, Longitude: longitude}
}

// WithAltitude returns a copy of l at the given altitude in meters.
func (l Location) WithAltitude(altitude Decimal) Location {
	l.Altitude = altitude
	return l
}

// WithRelevantText returns a copy of l with lock screen text set.
func (l Location) WithRelevantText(text string) Location {
	l.RelevantText = text
	return l
}

type locationJSON struct {
	Latitude     Decimal `json:"latitude"`
	Longitude    Decimal `json:"longitude"`
	Altitude     Decimal `json:"altitude"`
	RelevantText string  `json:"relevantText"`
}

// MarshalJSON emits all four location attributes.
func (l Location) MarshalJSON() ([]byte, error) {
	return encodeJSON(locationJSON(l))
}
