package data

import (
	"errors"
	"net"
)

// ErrNotFound is returned when the database has no record for an address.
var ErrNotFound = errors.New("address not found in database")

// Lookup defines the read-only geolocation lookups served by the API.
// Implementations must be safe for concurrent use.
type Lookup interface {
	// City returns the city-level record for the given IP address.
	// Returns ErrNotFound if the address has no entry.
	City(ip net.IP) (*CityRecord, error)

	// Country returns the country-level record for the given IP address.
	// Returns ErrNotFound if the address has no entry.
	Country(ip net.IP) (*CountryRecord, error)

	// Close releases any resources held by the lookup implementation.
	Close() error
}
