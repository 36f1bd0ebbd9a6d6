package data

// Records decode every top-level section generically so the JSON output keeps
// the database's native field names and values below the top level.

// CityRecord is the city-level projection of a GeoIP2/GeoLite2 record.
type CityRecord struct {
	City               any `maxminddb:"city" json:"city,omitempty"`
	Continent          any `maxminddb:"continent" json:"continent,omitempty"`
	Country            any `maxminddb:"country" json:"country,omitempty"`
	Location           any `maxminddb:"location" json:"location,omitempty"`
	Postal             any `maxminddb:"postal" json:"postal,omitempty"`
	RegisteredCountry  any `maxminddb:"registered_country" json:"registered_country,omitempty"`
	RepresentedCountry any `maxminddb:"represented_country" json:"represented_country,omitempty"`
	Subdivisions       any `maxminddb:"subdivisions" json:"subdivisions,omitempty"`
	Traits             any `maxminddb:"traits" json:"traits,omitempty"`
}

// CountryRecord is the country-level projection of a GeoIP2/GeoLite2 record.
type CountryRecord struct {
	Continent          any `maxminddb:"continent" json:"continent,omitempty"`
	Country            any `maxminddb:"country" json:"country,omitempty"`
	RegisteredCountry  any `maxminddb:"registered_country" json:"registered_country,omitempty"`
	RepresentedCountry any `maxminddb:"represented_country" json:"represented_country,omitempty"`
	Traits             any `maxminddb:"traits" json:"traits,omitempty"`
}
